// Package draft implements the mission draft manager: the state behind the
// multi-step mission submission and edit wizard. It owns step navigation,
// rule-table validation, staged files with their deletion queues, milestones,
// and building and reconciling the submission. It renders nothing; View
// describes the current state for whatever front end draws it.
package draft

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/orbitfund/orbitfund/internal/logger"
)

// Mode is whether the draft creates a new mission or edits an existing one.
type Mode int

const (
	ModeCreate Mode = iota
	ModeEdit
)

func (m Mode) String() string {
	if m == ModeEdit {
		return "edit"
	}
	return "create"
}

var (
	// ErrAuthRequired means no usable credential exists. Callers send the
	// user to login and do not retry the submission.
	ErrAuthRequired = errors.New("authentication required")
	// ErrNoCredential is what a CredentialSource returns when nothing usable
	// is stored. Any other error means the store itself is broken.
	ErrNoCredential = errors.New("no credential stored")
	// ErrSubmitInFlight is returned while a submission is awaiting its response.
	ErrSubmitInFlight = errors.New("submission already in progress")
	// ErrUnknownField is returned when setting a field the form does not have.
	ErrUnknownField = errors.New("unknown field")
)

// CredentialSource supplies the bearer token. Token returns an error wrapping
// ErrNoCredential when the user has not logged in.
type CredentialSource interface {
	Token() (string, error)
}

// Transport sends a built payload to the backend and returns its message.
type Transport interface {
	CreateSubmission(ctx context.Context, token string, p *Payload) (string, error)
	UpdateMission(ctx context.Context, token, id string, p *Payload) (string, error)
}

// Recorder receives draft activity, e.g. a local journal.
type Recorder interface {
	Record(ctx context.Context, kind string, meta map[string]any) error
}

// Options configures a Manager.
type Options struct {
	Mode           Mode
	MissionID      string
	Sections       []Section
	Credentials    CredentialSource
	Transport      Transport
	Recorder       Recorder
	PreviewWorkers int
}

// Manager owns all draft state for one wizard run. It is not safe for
// concurrent use except for RunProbes and SubmitRequest.Send.
type Manager struct {
	opts       Options
	sections   []Section
	current    int
	values     map[string]string
	files      map[Category]*FileCollection
	deletions  map[Category]*DeletionQueue
	milestones []Milestone
	original   map[string]string
	probes     *probeStore

	submitting bool
	done       bool
	lastErr    error
	notice     string
}

// New creates a manager positioned on step 1.
func New(opts Options) (*Manager, error) {
	if len(opts.Sections) == 0 {
		opts.Sections = DefaultSections()
	}
	if opts.Mode == ModeEdit && strings.TrimSpace(opts.MissionID) == "" {
		return nil, fmt.Errorf("edit mode requires a mission id")
	}
	if opts.PreviewWorkers < 1 {
		opts.PreviewWorkers = 4
	}

	m := &Manager{
		opts:      opts,
		sections:  opts.Sections,
		current:   1,
		values:    make(map[string]string),
		files:     make(map[Category]*FileCollection),
		deletions: make(map[Category]*DeletionQueue),
		probes:    newProbeStore(),
	}
	for _, c := range Categories {
		m.files[c] = newFileCollection()
		m.deletions[c] = newDeletionQueue()
	}
	return m, nil
}

// Mode returns the draft mode.
func (m *Manager) Mode() Mode { return m.opts.Mode }

// MissionID returns the mission being edited.
func (m *Manager) MissionID() string { return m.opts.MissionID }

// Step returns the current 1-based step.
func (m *Manager) Step() int { return m.current }

// TotalSteps returns the number of sections.
func (m *Manager) TotalSteps() int { return len(m.sections) }

// Sections returns the form layout.
func (m *Manager) Sections() []Section { return m.sections }

// Done reports whether the draft was submitted successfully.
func (m *Manager) Done() bool { return m.done }

// Submitting reports whether a submission awaits its response.
func (m *Manager) Submitting() bool { return m.submitting }

// Err returns the last surfaced error.
func (m *Manager) Err() error { return m.lastErr }

// Advance validates the current step and moves forward one step. On failure
// the step is unchanged and the first invalid field is returned.
func (m *Manager) Advance() error {
	if err := m.ValidateStep(m.current); err != nil {
		m.lastErr = err
		logger.Debug("Step %d blocked: %v", m.current, err)
		return err
	}
	m.lastErr = nil
	if m.current < len(m.sections) {
		m.current++
	}
	return nil
}

// Retreat moves back one step without validating.
func (m *Manager) Retreat() bool {
	m.lastErr = nil
	if m.current > 1 {
		m.current--
		return true
	}
	return false
}

// Field looks up a field definition by name.
func (m *Manager) Field(name string) (Field, bool) {
	for _, sec := range m.sections {
		for _, f := range sec.Fields {
			if f.Name == name {
				return f, true
			}
		}
	}
	return Field{}, false
}

// SetValue sets a scalar field or a generated milestone input.
func (m *Manager) SetValue(name, value string) error {
	if idx, target, ok := m.milestoneInput(name); ok {
		if target {
			m.milestones[idx].Target = value
		} else {
			m.milestones[idx].Name = value
		}
		return nil
	}
	f, ok := m.Field(name)
	if !ok || f.Kind == KindFiles {
		return fmt.Errorf("%w: %s", ErrUnknownField, name)
	}
	if f.Kind == KindCheckbox {
		return m.SetChecked(name, value != "")
	}
	m.values[name] = value
	return nil
}

// Value returns a scalar field or milestone input value.
func (m *Manager) Value(name string) string {
	if idx, target, ok := m.milestoneInput(name); ok {
		if target {
			return m.milestones[idx].Target
		}
		return m.milestones[idx].Name
	}
	return m.values[name]
}

// SetChecked sets a checkbox field.
func (m *Manager) SetChecked(name string, checked bool) error {
	f, ok := m.Field(name)
	if !ok || f.Kind != KindCheckbox {
		return fmt.Errorf("%w: %s", ErrUnknownField, name)
	}
	if checked {
		m.values[name] = "on"
	} else {
		delete(m.values, name)
	}
	return nil
}

// Checked reports whether a checkbox field is checked.
func (m *Manager) Checked(name string) bool {
	return m.values[name] == "on"
}

// AddFiles stages every file of the selection that is not staged yet, then
// clears the selection. Duplicates are absorbed silently. Returns the number
// of files added.
func (m *Manager) AddFiles(c Category, sel *Selection) int {
	coll, ok := m.files[c]
	if !ok || sel == nil {
		return 0
	}
	added := 0
	for _, f := range sel.Files() {
		if coll.Add(f) {
			m.probes.stage(f.Key())
			added++
		}
	}
	logger.Debug("Staged %d of %d selected %s", added, sel.Len(), c)
	sel.Clear()
	return added
}

// RemoveFile unstages a file. Removing a remote file queues its URL for
// deletion. Unknown keys are a no-op.
func (m *Manager) RemoveFile(c Category, key FileKey) bool {
	coll, ok := m.files[c]
	if !ok {
		return false
	}
	f, ok := coll.Remove(key)
	if !ok {
		return false
	}
	if rf, isRemote := f.(RemoteFile); isRemote {
		m.deletions[c].Enqueue(rf.URL)
		logger.Debug("Queued %s for deletion (%s)", rf.URL, c)
	} else {
		m.probes.drop(key)
	}
	return true
}

// Files returns the staged files of a category.
func (m *Manager) Files(c Category) *FileCollection { return m.files[c] }

// Deletions returns the queued deletion URLs of a category.
func (m *Manager) Deletions(c Category) []string { return m.deletions[c].URLs() }

// Opened records that the draft was opened.
func (m *Manager) Opened(ctx context.Context) {
	m.record(ctx, "draft.opened", map[string]any{})
}

func (m *Manager) record(ctx context.Context, kind string, meta map[string]any) {
	if m.opts.Recorder == nil {
		return
	}
	meta["mode"] = m.opts.Mode.String()
	if m.opts.MissionID != "" {
		meta["mission_id"] = m.opts.MissionID
	}
	if err := m.opts.Recorder.Record(ctx, kind, meta); err != nil {
		logger.Warn("Failed to record %s: %v", kind, err)
	}
}
