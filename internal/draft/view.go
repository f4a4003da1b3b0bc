package draft

import (
	"errors"
	"fmt"
)

// SectionView is one entry of the progress indicator.
type SectionView struct {
	Number int
	Title  string
	Active bool
	Done   bool
}

// FieldView is one field of the active section.
type FieldView struct {
	Field
	Value    string
	Checked  bool
	Invalid  bool
	Previews []Preview // KindFiles only
	Queued   int       // KindFiles only: URLs queued for deletion
}

// MilestoneView is one generated milestone input pair.
type MilestoneView struct {
	Milestone
	Invalid bool
}

// View is the render description of the draft. It holds no references to
// manager state.
type View struct {
	Mode       Mode
	Title      string
	Step       int
	TotalSteps int
	Progress   float64
	Sections   []SectionView

	Fields         []FieldView
	ShowMilestones bool
	Milestones     []MilestoneView

	ShowPrev       bool
	ShowNext       bool
	ShowSubmit     bool
	SubmitLabel    string
	SubmitDisabled bool

	Error  string
	Focus  string // field name of the first invalid field
	Notice string
	Done   bool
}

// View describes the current state. Call it again after every mutation.
func (m *Manager) View() View {
	sec := m.sections[m.current-1]
	v := View{
		Mode:           m.opts.Mode,
		Title:          m.heading(sec),
		Step:           m.current,
		TotalSteps:     len(m.sections),
		Progress:       float64(m.current) / float64(len(m.sections)),
		ShowPrev:       m.current > 1,
		ShowNext:       m.current < len(m.sections),
		ShowSubmit:     m.current == len(m.sections),
		SubmitLabel:    m.submitLabel(),
		SubmitDisabled: m.submitting,
		Error:          DisplayError(m.opts.Mode, m.lastErr),
		Notice:         m.notice,
		Done:           m.done,
	}

	var ve *ValidationError
	if errors.As(m.lastErr, &ve) {
		v.Focus = ve.Field
	}

	for i, s := range m.sections {
		v.Sections = append(v.Sections, SectionView{
			Number: i + 1,
			Title:  s.Title,
			Active: i+1 == m.current,
			Done:   i+1 < m.current,
		})
	}

	for _, f := range sec.Fields {
		fv := FieldView{Field: f, Value: m.values[f.Name], Invalid: f.Name == v.Focus}
		switch f.Kind {
		case KindCheckbox:
			fv.Checked = m.Checked(f.Name)
		case KindFiles:
			fv.Previews = m.Previews(f.Category)
			fv.Queued = m.deletions[f.Category].Len()
		}
		v.Fields = append(v.Fields, fv)
	}

	if sec.Milestones {
		v.ShowMilestones = true
		for _, ms := range m.milestones {
			v.Milestones = append(v.Milestones, MilestoneView{
				Milestone: ms,
				Invalid:   ms.TargetField() == v.Focus || ms.NameField() == v.Focus,
			})
		}
	}
	return v
}

func (m *Manager) heading(sec Section) string {
	verb := "Launch Mission"
	if m.opts.Mode == ModeEdit {
		verb = "Edit Mission"
	}
	return fmt.Sprintf("%s - Step %d of %d: %s", verb, m.current, len(m.sections), sec.Title)
}
