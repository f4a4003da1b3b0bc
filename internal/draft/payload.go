package draft

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"strings"
)

// FormField is one scalar multipart field.
type FormField struct {
	Name  string
	Value string
}

// FilePart is one file upload.
type FilePart struct {
	Field string
	File  NewFile
}

// Payload is the multipart submission body, kept as parts so it can be
// encoded more than once (retries) and inspected.
type Payload struct {
	Fields []FormField
	Files  []FilePart
}

// Value returns the first value of a scalar field.
func (p *Payload) Value(name string) (string, bool) {
	for _, f := range p.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

// Values returns every value of a scalar field in order.
func (p *Payload) Values(name string) []string {
	var out []string
	for _, f := range p.Fields {
		if f.Name == name {
			out = append(out, f.Value)
		}
	}
	return out
}

// FilesFor returns the file parts uploaded under a field.
func (p *Payload) FilesFor(field string) []NewFile {
	var out []NewFile
	for _, fp := range p.Files {
		if fp.Field == field {
			out = append(out, fp.File)
		}
	}
	return out
}

// Write encodes every part into mw and closes it.
func (p *Payload) Write(mw *multipart.Writer) error {
	for _, f := range p.Fields {
		if err := mw.WriteField(f.Name, f.Value); err != nil {
			return fmt.Errorf("writing field %s: %w", f.Name, err)
		}
	}
	for _, fp := range p.Files {
		if err := writeFilePart(mw, fp); err != nil {
			return err
		}
	}
	return mw.Close()
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func writeFilePart(mw *multipart.Writer, fp FilePart) error {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(fp.Field), quoteEscaper.Replace(fp.File.Name)))
	contentType := fp.File.MIMEType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h.Set("Content-Type", contentType)

	w, err := mw.CreatePart(h)
	if err != nil {
		return fmt.Errorf("creating part for %s: %w", fp.File.Name, err)
	}
	src, err := fp.File.Open()
	if err != nil {
		return fmt.Errorf("opening %s: %w", fp.File.Name, err)
	}
	defer func() { _ = src.Close() }()

	if _, err := io.Copy(w, src); err != nil {
		return fmt.Errorf("copying %s: %w", fp.File.Name, err)
	}
	return nil
}

// Manifest summarizes a payload without file contents.
type Manifest struct {
	Fields map[string][]string `json:"fields"`
	Files  map[string][]string `json:"files"`
}

// Manifest returns a JSON friendly summary, used for dry runs.
func (p *Payload) Manifest() Manifest {
	m := Manifest{Fields: make(map[string][]string), Files: make(map[string][]string)}
	for _, f := range p.Fields {
		m.Fields[f.Name] = append(m.Fields[f.Name], f.Value)
	}
	for _, fp := range p.Files {
		m.Files[fp.Field] = append(m.Files[fp.Field], fmt.Sprintf("%s (%s)", fp.File.Path, humanSize(fp.File.Size)))
	}
	return m
}

// BuildSubmissionPayload serializes the form: scalar fields, milestone
// arrays, checked affirmations, every new file under its category field, and
// in edit mode the deletion queues as JSON arrays. Remote files are never
// uploaded.
func (m *Manager) BuildSubmissionPayload() (*Payload, error) {
	p := &Payload{}

	for _, sec := range m.sections {
		for _, f := range sec.Fields {
			switch f.Kind {
			case KindFiles:
				for _, nf := range m.files[f.Category].NewFiles() {
					p.Files = append(p.Files, FilePart{Field: f.Category.FieldName(), File: nf})
				}
			case KindCheckbox:
				// Unchecked boxes are left out, like a browser form
				if m.Checked(f.Name) {
					p.Fields = append(p.Fields, FormField{Name: f.Name, Value: "on"})
				}
			default:
				p.Fields = append(p.Fields, FormField{Name: f.Name, Value: m.values[f.Name]})
			}
		}
		if sec.Milestones {
			for _, ms := range m.milestones {
				p.Fields = append(p.Fields,
					FormField{Name: "milestoneName[]", Value: ms.Name},
					FormField{Name: "milestoneTarget[]", Value: ms.Target},
				)
			}
		}
	}

	if m.opts.Mode == ModeEdit {
		for _, c := range Categories {
			data, err := json.Marshal(m.deletions[c].URLs())
			if err != nil {
				return nil, fmt.Errorf("encoding %s: %w", c.DeleteField(), err)
			}
			p.Fields = append(p.Fields, FormField{Name: c.DeleteField(), Value: string(data)})
		}
	}

	return p, nil
}
