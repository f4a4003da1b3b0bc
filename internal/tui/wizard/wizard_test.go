package wizard

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/require"

	"github.com/orbitfund/orbitfund/internal/draft"
)

type staticToken string

func (s staticToken) Token() (string, error) { return string(s), nil }

type fakeTransport struct {
	calls   int
	message string
	err     error
}

func (f *fakeTransport) CreateSubmission(context.Context, string, *draft.Payload) (string, error) {
	f.calls++
	return f.message, f.err
}

func (f *fakeTransport) UpdateMission(context.Context, string, string, *draft.Payload) (string, error) {
	f.calls++
	return f.message, f.err
}

type rejection struct{ msg string }

func (r rejection) Error() string   { return r.msg }
func (r rejection) Display() string { return r.msg }

func newWizard(t *testing.T, opts draft.Options) (*Model, *draft.Manager) {
	t.Helper()
	mgr, err := draft.New(opts)
	require.NoError(t, err)
	m := NewModel(context.Background(), mgr)
	m.Init()
	_, _ = m.Update(tea.WindowSizeMsg{Width: 120, Height: 60})
	return m, mgr
}

func fill(t *testing.T, mgr *draft.Manager) {
	t.Helper()
	values := map[string]string{
		draft.FieldTitle:       "Europa Ice Probe",
		draft.FieldDescription: "Drill through the ice shell.",
		draft.FieldGoals:       "Find liquid water.",
		draft.FieldType:        "planetary",
		draft.FieldFundingGoal: "250000",
		draft.FieldLaunchDate:  "2025-01-05",
		draft.FieldEndTime:     "2025-03-01",
	}
	for name, v := range values {
		require.NoError(t, mgr.SetValue(name, v))
	}
	require.NoError(t, mgr.SetChecked(draft.FieldTermsAgree, true))
	require.NoError(t, mgr.SetChecked(draft.FieldAccuracyConfirm, true))
}

func press(m *Model, key tea.KeyPressMsg) tea.Cmd {
	_, cmd := m.Update(key)
	return cmd
}

func typeText(m *Model, s string) {
	for _, r := range s {
		press(m, tea.KeyPressMsg{Code: r, Text: string(r)})
	}
}

func ctrl(r rune) tea.KeyPressMsg { return tea.KeyPressMsg{Code: r, Mod: tea.ModCtrl} }

// deliver runs cmd and feeds its message back into the model.
func deliver(t *testing.T, m *Model, cmd tea.Cmd) tea.Msg {
	t.Helper()
	require.NotNil(t, cmd)
	msg := cmd()
	_, _ = m.Update(msg)
	return msg
}

func TestWizard_EscOnFirstStepCancels(t *testing.T) {
	m, _ := newWizard(t, draft.Options{})
	cmd := press(m, tea.KeyPressMsg{Code: tea.KeyEscape})
	require.NotNil(t, cmd)
	require.True(t, m.Result().Cancelled)
}

func TestWizard_TypingUpdatesDraft(t *testing.T) {
	m, mgr := newWizard(t, draft.Options{})
	require.Equal(t, draft.FieldTitle, m.form.Focused())

	typeText(m, "Relay")
	require.Equal(t, "Relay", mgr.Value(draft.FieldTitle))
}

func TestWizard_NextBlockedFocusesInvalidField(t *testing.T) {
	m, mgr := newWizard(t, draft.Options{})
	require.NoError(t, mgr.SetValue(draft.FieldTitle, "Relay"))

	press(m, ctrl('n'))
	require.Equal(t, 1, mgr.Step())
	require.Equal(t, draft.FieldDescription, m.form.Focused())
	require.Contains(t, mgr.View().Error, "Mission Description is required")
}

func TestWizard_WalkStepsAndBack(t *testing.T) {
	m, mgr := newWizard(t, draft.Options{})
	fill(t, mgr)

	for step := 2; step <= 4; step++ {
		press(m, ctrl('n'))
		require.Equal(t, step, mgr.Step())
	}
	// already on the last step
	press(m, ctrl('n'))
	require.Equal(t, 4, mgr.Step())

	press(m, tea.KeyPressMsg{Code: tea.KeyEscape})
	require.Equal(t, 3, mgr.Step())
	require.False(t, m.Result().Cancelled)

	press(m, ctrl('b'))
	require.Equal(t, 2, mgr.Step())
	require.Equal(t, draft.FieldFundingGoal, m.form.Focused())
}

func TestWizard_ButtonsFollowStep(t *testing.T) {
	m, mgr := newWizard(t, draft.Options{})
	fill(t, mgr)

	_, _ = m.Update(ButtonPressedMsg{ID: buttonNext})
	require.Equal(t, 2, mgr.Step())

	_, _ = m.Update(ButtonPressedMsg{ID: buttonBack})
	require.Equal(t, 1, mgr.Step())

	ids := []string{}
	for _, it := range m.form.items {
		if it.kind == itemButton {
			ids = append(ids, it.name)
		}
	}
	require.Equal(t, []string{buttonNext}, ids)
}

func TestWizard_ChoiceCycles(t *testing.T) {
	m, mgr := newWizard(t, draft.Options{})
	m.form.FocusField(draft.FieldType)

	press(m, tea.KeyPressMsg{Code: tea.KeyRight})
	require.Equal(t, draft.MissionTypes[0], mgr.Value(draft.FieldType))
	press(m, tea.KeyPressMsg{Code: tea.KeyRight})
	require.Equal(t, draft.MissionTypes[1], mgr.Value(draft.FieldType))
	press(m, tea.KeyPressMsg{Code: tea.KeyLeft})
	press(m, tea.KeyPressMsg{Code: tea.KeyLeft})
	require.Equal(t, draft.MissionTypes[len(draft.MissionTypes)-1], mgr.Value(draft.FieldType))
}

func TestWizard_Milestones(t *testing.T) {
	m, mgr := newWizard(t, draft.Options{})
	fill(t, mgr)
	press(m, ctrl('n'))
	require.Equal(t, 2, mgr.Step())

	m.form.FocusField(milestoneControls)
	press(m, tea.KeyPressMsg{Code: '+', Text: "+"})
	require.Len(t, mgr.Milestones(), 1)
	require.Equal(t, "milestoneName-1", m.form.Focused())

	typeText(m, "Prototype")
	press(m, tea.KeyPressMsg{Code: tea.KeyTab})
	require.Equal(t, "milestoneTarget-1", m.form.Focused())
	typeText(m, "-5")

	press(m, ctrl('n'))
	require.Equal(t, 2, mgr.Step())
	require.Equal(t, "milestoneTarget-1", m.form.Focused())

	m.form.FocusField(milestoneControls)
	press(m, tea.KeyPressMsg{Code: '-', Text: "-"})
	require.Empty(t, mgr.Milestones())
	require.Equal(t, milestoneControls, m.form.Focused())
}

func TestWizard_CheckboxToggle(t *testing.T) {
	m, mgr := newWizard(t, draft.Options{})
	fill(t, mgr)
	for mgr.Step() < 4 {
		press(m, ctrl('n'))
	}
	require.NoError(t, mgr.SetChecked(draft.FieldTermsAgree, false))

	m.form.FocusField(draft.FieldTermsAgree)
	press(m, tea.KeyPressMsg{Code: tea.KeySpace, Text: " "})
	require.True(t, mgr.Checked(draft.FieldTermsAgree))
	press(m, tea.KeyPressMsg{Code: tea.KeySpace, Text: " "})
	require.False(t, mgr.Checked(draft.FieldTermsAgree))
}

func writeFiles(t *testing.T, names ...string) []string {
	t.Helper()
	dir := t.TempDir()
	var paths []string
	for _, n := range names {
		p := filepath.Join(dir, n)
		require.NoError(t, os.WriteFile(p, []byte("\x89PNG\r\n\x1a\n0000"), 0o644))
		paths = append(paths, p)
	}
	return paths
}

func TestWizard_PickFilesProbesAndRemove(t *testing.T) {
	m, mgr := newWizard(t, draft.Options{})
	fill(t, mgr)
	press(m, ctrl('n'))
	press(m, ctrl('n'))
	require.Equal(t, 3, mgr.Step())

	paths := writeFiles(t, "a.png", "b.png")
	_, cmd := m.Update(FilesPickedMsg{Category: draft.CategoryImages, Paths: paths})
	require.Equal(t, 2, mgr.Files(draft.CategoryImages).Len())

	msg := deliver(t, m, cmd)
	done, ok := msg.(ProbesDoneMsg)
	require.True(t, ok)
	require.NoError(t, done.Err)
	for _, p := range mgr.Previews(draft.CategoryImages) {
		require.NotEmpty(t, p.Detail)
	}

	// picking the same files again stages nothing
	_, cmd = m.Update(FilesPickedMsg{Category: draft.CategoryImages, Paths: paths})
	require.Nil(t, cmd)
	require.Equal(t, 2, mgr.Files(draft.CategoryImages).Len())

	m.form.FocusField(draft.CategoryImages.FieldName())
	press(m, tea.KeyPressMsg{Code: tea.KeyRight})
	press(m, tea.KeyPressMsg{Code: 'x', Text: "x"})
	previews := mgr.Previews(draft.CategoryImages)
	require.Len(t, previews, 1)
	require.Equal(t, "a.png", previews[0].Name)
}

func TestWizard_OpenPickerAndCancel(t *testing.T) {
	m, mgr := newWizard(t, draft.Options{})
	fill(t, mgr)
	press(m, ctrl('n'))
	press(m, ctrl('n'))

	m.form.FocusField(draft.CategoryDocuments.FieldName())
	cmd := press(m, tea.KeyPressMsg{Code: tea.KeyEnter})
	deliver(t, m, cmd)
	require.NotNil(t, m.picker)
	require.True(t, strings.Contains(m.picker.View(), "Add Technical Documents"))

	cmd = press(m, tea.KeyPressMsg{Code: tea.KeyEscape})
	deliver(t, m, cmd)
	require.Nil(t, m.picker)
	require.Equal(t, 3, mgr.Step())
}

func TestWizard_SubmitWithoutCredentialRedirects(t *testing.T) {
	tr := &fakeTransport{}
	m, mgr := newWizard(t, draft.Options{Transport: tr})
	fill(t, mgr)
	for mgr.Step() < 4 {
		press(m, ctrl('n'))
	}

	cmd := press(m, ctrl('s'))
	require.NotNil(t, cmd)
	require.True(t, m.Result().AuthRequired)
	require.Zero(t, tr.calls)
}

func TestWizard_SubmitOnlyOnLastStep(t *testing.T) {
	tr := &fakeTransport{}
	m, mgr := newWizard(t, draft.Options{Transport: tr, Credentials: staticToken("tok")})
	fill(t, mgr)

	require.Nil(t, press(m, ctrl('s')))
	require.False(t, mgr.Submitting())
}

func TestWizard_SubmitFailureThenRetry(t *testing.T) {
	tr := &fakeTransport{err: rejection{msg: "Title already taken"}}
	m, mgr := newWizard(t, draft.Options{Transport: tr, Credentials: staticToken("tok")})
	fill(t, mgr)
	for mgr.Step() < 4 {
		press(m, ctrl('n'))
	}

	cmd := press(m, ctrl('s'))
	require.True(t, mgr.Submitting())
	// a second submit while in flight is ignored
	require.Nil(t, press(m, ctrl('s')))

	deliver(t, m, cmd)
	require.False(t, mgr.Submitting())
	require.False(t, m.Result().Done)
	require.Equal(t, "Failed to launch mission: Title already taken", mgr.View().Error)

	tr.err = nil
	tr.message = "Mission created"
	cmd = press(m, ctrl('s'))
	deliver(t, m, cmd)
	require.Equal(t, 2, tr.calls)
	require.True(t, m.Result().Done)
	require.Equal(t, "Mission created", m.Result().Message)

	// any key leaves once done
	require.NotNil(t, press(m, tea.KeyPressMsg{Code: tea.KeyEnter}))
}

func TestWizard_FieldEdited(t *testing.T) {
	m, mgr := newWizard(t, draft.Options{})
	_, _ = m.Update(FieldEditedMsg{Field: draft.FieldDescription, Content: "line one\nline two"})
	require.Equal(t, "line one\nline two", mgr.Value(draft.FieldDescription))

	m.form.FocusField(draft.FieldDescription)
	cmd := press(m, tea.KeyPressMsg{Code: tea.KeyEnter})
	msg := cmd()
	require.Equal(t, EditFieldMsg{Field: draft.FieldDescription}, msg)

	_, _ = m.Update(EditorFailedMsg{Err: errors.New("no editor")})
	require.Contains(t, m.renderStep(), "Editor unavailable")
}

func TestWizard_ViewShowsTitleAndProgress(t *testing.T) {
	m, _ := newWizard(t, draft.Options{Mode: draft.ModeEdit, MissionID: "7"})
	out := m.renderModal(m.renderStep())
	require.Contains(t, out, "Edit Mission - Step 1 of 4: Mission Basics")
	require.Contains(t, out, "Funding & Timeline")

	v := m.View()
	require.True(t, v.AltScreen)
}

func TestChangeDiff(t *testing.T) {
	require.Empty(t, changeDiff(nil))
	out := changeDiff([]draft.Change{{Field: "title", Label: "Mission Title", Old: "Relay", New: "Relay II"}})
	require.Contains(t, out, "a/title")
	require.Contains(t, out, "-Relay")
	require.Contains(t, out, "+Relay II")
}

func TestReviewMarkdown(t *testing.T) {
	mgr, err := draft.New(draft.Options{})
	require.NoError(t, err)
	fill(t, mgr)
	mgr.AddMilestone()
	require.NoError(t, mgr.SetMilestone(1, "Prototype", "1000"))

	md := reviewMarkdown(mgr)
	require.Contains(t, md, "# Europa Ice Probe")
	require.Contains(t, md, "1. Prototype (1000)")
	require.Contains(t, md, "- Mission Images: 0 new, 0 existing")
}
