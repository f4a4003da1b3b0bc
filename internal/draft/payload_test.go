package draft

import (
	"bytes"
	"io"
	"mime"
	"mime/multipart"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildSubmissionPayload_CreateMode(t *testing.T) {
	dir := t.TempDir()
	m := newManager(t, Options{})
	fillValid(t, m)
	require.NoError(t, m.SetChecked(FieldAccuracyConfirm, false))
	m.AddMilestone()
	m.AddMilestone()
	require.NoError(t, m.SetMilestone(1, "Engines", "1000"))
	require.NoError(t, m.SetMilestone(2, "Launch", "5000"))

	sel, err := SelectPaths(writeTemp(t, dir, "plan.pdf", "%PDF-1.4"))
	require.NoError(t, err)
	m.AddFiles(CategoryDocuments, sel)
	m.Files(CategoryDocuments).Add(RemoteFile{URL: "https://cdn.example.com/old.pdf"})

	p, err := m.BuildSubmissionPayload()
	require.NoError(t, err)

	title, ok := p.Value(FieldTitle)
	require.True(t, ok)
	require.Equal(t, "Europa Ice Probe", title)

	require.Equal(t, []string{"Engines", "Launch"}, p.Values("milestoneName[]"))
	require.Equal(t, []string{"1000", "5000"}, p.Values("milestoneTarget[]"))

	terms, ok := p.Value(FieldTermsAgree)
	require.True(t, ok)
	require.Equal(t, "on", terms)
	_, ok = p.Value(FieldAccuracyConfirm)
	require.False(t, ok, "unchecked boxes are omitted")

	docs := p.FilesFor("documents")
	require.Len(t, docs, 1, "remote files are never uploaded")
	require.Equal(t, "plan.pdf", docs[0].Name)

	_, ok = p.Value("deleteDocuments")
	require.False(t, ok, "deletion arrays are edit-only")
}

func TestBuildSubmissionPayload_SeededNoChanges(t *testing.T) {
	m := newManager(t, Options{Mode: ModeEdit, MissionID: "1"})
	m.Seed(&MissionRecord{
		Title:  "Lunar Relay",
		Images: []string{"https://cdn.example.com/a.jpg"},
		Videos: []string{"https://cdn.example.com/b.mp4"},
	})

	p, err := m.BuildSubmissionPayload()
	require.NoError(t, err)
	require.Empty(t, p.Files)
	for _, c := range Categories {
		raw, ok := p.Value(c.DeleteField())
		require.True(t, ok)
		require.Equal(t, "[]", raw)
	}
}

func TestPayload_Write(t *testing.T) {
	dir := t.TempDir()
	m := newManager(t, Options{})
	fillValid(t, m)
	sel, err := SelectPaths(writeTemp(t, dir, "a.png", "png-bytes"))
	require.NoError(t, err)
	m.AddFiles(CategoryImages, sel)

	p, err := m.BuildSubmissionPayload()
	require.NoError(t, err)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, p.Write(mw))

	_, params, err := mime.ParseMediaType(mw.FormDataContentType())
	require.NoError(t, err)
	mr := multipart.NewReader(&buf, params["boundary"])

	fields := map[string]string{}
	var fileName, fileType, fileBody string
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		body, err := io.ReadAll(part)
		require.NoError(t, err)
		if part.FileName() != "" {
			require.Equal(t, "images", part.FormName())
			fileName = part.FileName()
			fileType = part.Header.Get("Content-Type")
			fileBody = string(body)
			continue
		}
		fields[part.FormName()] = string(body)
	}

	require.Equal(t, "planetary", fields[FieldType])
	require.Equal(t, "a.png", fileName)
	require.Equal(t, "image/png", fileType)
	require.Equal(t, "png-bytes", fileBody)
}

func TestPayload_Manifest(t *testing.T) {
	p := &Payload{
		Fields: []FormField{{Name: "title", Value: "x"}, {Name: "milestoneName[]", Value: "a"}, {Name: "milestoneName[]", Value: "b"}},
		Files:  []FilePart{{Field: "images", File: NewFile{Path: "/tmp/a.png", Size: 2048}}},
	}
	man := p.Manifest()
	require.Equal(t, []string{"a", "b"}, man.Fields["milestoneName[]"])
	require.Equal(t, []string{"/tmp/a.png (2.0 KB)"}, man.Files["images"])
}
