package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/orbitfund/orbitfund/internal/api"
	"github.com/orbitfund/orbitfund/internal/auth"
	"github.com/orbitfund/orbitfund/internal/config"
	"github.com/orbitfund/orbitfund/internal/draft"
)

const draftYAML = `title: Europa Ice Probe
description: |
  Drill through the ice shell.
  Then look around.
goals: Find liquid water.
type: planetary
funding_goal: 250000
launch_date: 2025-01-05
end_time: 2025-03-01
terms_agree: true
accuracy_confirm: true
milestones:
  - name: Prototype
    target: 50000
images:
  - media/probe.png
documents:
  - media/plan.pdf
`

func writeDraft(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "media"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "media", "probe.png"), []byte("\x89PNG\r\n\x1a\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "media", "plan.pdf"), []byte("%PDF-1.4"), 0o644))
	path := filepath.Join(dir, "mission.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func testApp(t *testing.T, baseURL string) *app {
	t.Helper()
	return &app{
		cfg:    &config.Config{APIURL: baseURL, PreviewWorkers: 2},
		client: api.New(baseURL),
		creds:  auth.NewStore(filepath.Join(t.TempDir(), "credentials.yml")),
	}
}

func testCmd(out *bytes.Buffer) *cobra.Command {
	cmd := &cobra.Command{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetContext(context.Background())
	return cmd
}

func TestDraftFile_Apply(t *testing.T) {
	path := writeDraft(t, draftYAML)
	a := testApp(t, "http://localhost:0/api")

	mgr, err := prepareFromFile(a, path)
	require.NoError(t, err)

	require.Equal(t, "250000", mgr.Value(draft.FieldFundingGoal))
	require.Equal(t, "2025-01-05", mgr.Value(draft.FieldLaunchDate))
	require.Equal(t, "Drill through the ice shell.\nThen look around.\n", mgr.Value(draft.FieldDescription))
	require.True(t, mgr.Checked(draft.FieldTermsAgree))
	require.Len(t, mgr.Milestones(), 1)
	require.Equal(t, "50000", mgr.Milestones()[0].Target)
	require.Equal(t, 1, mgr.Files(draft.CategoryImages).Len())
	require.Equal(t, 1, mgr.Files(draft.CategoryDocuments).Len())
}

func TestDraftFile_Invalid(t *testing.T) {
	a := testApp(t, "http://localhost:0/api")

	t.Run("end before launch", func(t *testing.T) {
		path := writeDraft(t, "title: x\ndescription: d\ngoals: g\ntype: lunar\nfunding_goal: 5\nlaunch_date: 2025-03-01\nend_time: 2025-01-01\n")
		_, err := prepareFromFile(a, path)
		var ve *draft.ValidationError
		require.ErrorAs(t, err, &ve)
		require.Equal(t, draft.FieldEndTime, ve.Field)
	})

	t.Run("wrong category", func(t *testing.T) {
		path := writeDraft(t, "title: x\nimages:\n  - media/plan.pdf\n")
		_, err := prepareFromFile(a, path)
		require.ErrorContains(t, err, "not accepted for Mission Images")
	})

	t.Run("missing file", func(t *testing.T) {
		path := writeDraft(t, "title: x\nvideo:\n  - media/launch.mp4\n")
		_, err := prepareFromFile(a, path)
		require.Error(t, err)
	})
}

func TestSubmitFromFile_DryRun(t *testing.T) {
	submitFlags.plain = true
	t.Cleanup(func() { submitFlags.plain = false })

	path := writeDraft(t, draftYAML)
	a := testApp(t, "http://localhost:0/api")
	var out bytes.Buffer

	require.NoError(t, submitFromFile(testCmd(&out), a, path, true))

	var m draft.Manifest
	require.NoError(t, json.Unmarshal(out.Bytes(), &m))
	require.Equal(t, []string{"Europa Ice Probe"}, m.Fields[draft.FieldTitle])
	require.Equal(t, []string{"Prototype"}, m.Fields["milestoneName[]"])
	require.Equal(t, []string{"on"}, m.Fields[draft.FieldAccuracyConfirm])
	require.Len(t, m.Files["images"], 1)
	require.Len(t, m.Files["documents"], 1)
	require.NotContains(t, m.Fields, "deleteImages")
}

func TestSubmitFromFile_Sends(t *testing.T) {
	var gotAuth string
	var gotFiles int
	r := chi.NewRouter()
	r.Post("/api/submission", func(w http.ResponseWriter, req *http.Request) {
		gotAuth = req.Header.Get("Authorization")
		if err := req.ParseMultipartForm(1 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		for _, hs := range req.MultipartForm.File {
			gotFiles += len(hs)
		}
		_, _ = w.Write([]byte(`{"message":"Mission queued for review"}`))
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	t.Setenv(auth.TokenEnv, "tok-123")
	path := writeDraft(t, draftYAML)
	a := testApp(t, srv.URL+"/api")
	var out bytes.Buffer

	require.NoError(t, submitFromFile(testCmd(&out), a, path, false))
	require.Equal(t, "Bearer tok-123", gotAuth)
	require.Equal(t, 2, gotFiles)
	require.Contains(t, out.String(), "Mission queued for review")
}

func TestSubmitFromFile_ServerRejection(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/api/submission", func(w http.ResponseWriter, req *http.Request) {
		_ = req.ParseMultipartForm(1 << 20)
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"message":"Funding goal too high"}`))
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	t.Setenv(auth.TokenEnv, "tok-123")
	path := writeDraft(t, draftYAML)
	a := testApp(t, srv.URL+"/api")
	var out bytes.Buffer

	err := submitFromFile(testCmd(&out), a, path, false)
	require.EqualError(t, err, "Failed to launch mission: Funding goal too high")
}
