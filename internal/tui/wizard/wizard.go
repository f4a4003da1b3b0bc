package wizard

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	uv "github.com/charmbracelet/ultraviolet"

	"github.com/orbitfund/orbitfund/internal/draft"
	"github.com/orbitfund/orbitfund/internal/logger"
)

// Result is how the wizard ended.
type Result struct {
	Cancelled    bool   // user quit before submitting
	AuthRequired bool   // submission halted for a missing credential
	Done         bool   // submission accepted
	Message      string // notice shown after success
}

// Model is the Bubbletea model driving a draft through its steps.
type Model struct {
	ctx    context.Context
	mgr    *draft.Manager
	form   *FormStep
	review *ReviewPanel
	picker *FilePicker
	result Result
	width  int
	height int
	status string // transient message, e.g. editor failures
}

// NewModel creates a wizard for mgr.
func NewModel(ctx context.Context, mgr *draft.Manager) *Model {
	m := &Model{
		ctx:    ctx,
		mgr:    mgr,
		form:   NewFormStep(mgr),
		review: NewReviewPanel(),
		width:  80,
		height: 30,
	}
	m.review.Load(mgr)
	return m
}

// Run shows the wizard until the user submits or quits.
func Run(ctx context.Context, mgr *draft.Manager) (*Result, error) {
	m := NewModel(ctx, mgr)
	mgr.Opened(ctx)

	p := tea.NewProgram(m, tea.WithContext(ctx))
	finalModel, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("wizard failed: %w", err)
	}
	wiz, ok := finalModel.(*Model)
	if !ok {
		return nil, fmt.Errorf("unexpected model type")
	}
	return &wiz.result, nil
}

// Result returns the outcome so far.
func (m *Model) Result() Result { return m.result }

// Init focuses the first field.
func (m *Model) Init() tea.Cmd {
	return m.form.Refresh()
}

// Update handles messages for the wizard.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateSizes()
		return m, nil

	case tea.KeyPressMsg:
		if msg.String() == "ctrl+c" {
			m.result.Cancelled = !m.result.Done
			return m, tea.Quit
		}
		if m.mgr.Done() {
			return m, tea.Quit
		}
		if m.picker != nil {
			return m, m.picker.Update(msg)
		}
		m.status = ""
		switch msg.String() {
		case "esc", "ctrl+b":
			if m.mgr.Step() == 1 && msg.String() == "esc" {
				m.result.Cancelled = true
				return m, tea.Quit
			}
			return m, m.back()
		case "ctrl+n":
			return m, m.next()
		case "ctrl+s":
			if m.mgr.Step() == m.mgr.TotalSteps() {
				return m, m.submit()
			}
			return m, nil
		case "pgup", "pgdown":
			if m.onReview() {
				return m, m.review.Update(msg)
			}
		}

	case ButtonPressedMsg:
		switch msg.ID {
		case buttonBack:
			return m, m.back()
		case buttonNext:
			return m, m.next()
		case buttonSubmit:
			return m, m.submit()
		}
		return m, nil

	case OpenPickerMsg:
		m.picker = NewFilePicker(msg.Category, "")
		m.updateSizes()
		return m, nil

	case PickerClosedMsg:
		m.picker = nil
		return m, nil

	case FilesPickedMsg:
		m.picker = nil
		return m, m.addFiles(msg)

	case ProbesDoneMsg:
		if msg.Err != nil {
			logger.Warn("Preview probing of %s stopped: %v", msg.Category, msg.Err)
		}
		return m, nil

	case EditFieldMsg:
		return m, openEditor(msg.Field, m.mgr.Value(msg.Field))

	case FieldEditedMsg:
		if err := m.mgr.SetValue(msg.Field, msg.Content); err != nil {
			m.status = err.Error()
		}
		return m, m.form.Refresh()

	case EditorFailedMsg:
		m.status = "Editor unavailable: " + msg.Err.Error()
		return m, nil

	case SubmitResultMsg:
		m.mgr.FinishSubmit(m.ctx, msg.Message, msg.Err)
		if m.mgr.Done() {
			m.result.Done = true
			m.result.Message = m.mgr.View().Notice
		}
		return m, m.form.Refresh()
	}

	if m.picker != nil {
		return m, m.picker.Update(msg)
	}
	return m, m.form.Update(msg)
}

func (m *Model) onReview() bool {
	return m.mgr.Step() == m.mgr.TotalSteps()
}

func (m *Model) next() tea.Cmd {
	if err := m.mgr.Advance(); err != nil {
		var ve *draft.ValidationError
		if errors.As(err, &ve) {
			return m.form.FocusField(ve.Field)
		}
		return nil
	}
	if m.onReview() {
		m.review.Load(m.mgr)
	}
	return m.form.Refresh()
}

func (m *Model) back() tea.Cmd {
	if !m.mgr.Retreat() {
		return nil
	}
	return m.form.Refresh()
}

func (m *Model) submit() tea.Cmd {
	req, err := m.mgr.BeginSubmit(m.ctx)
	if err != nil {
		var ve *draft.ValidationError
		switch {
		case errors.Is(err, draft.ErrAuthRequired):
			m.result.AuthRequired = true
			return tea.Quit
		case errors.As(err, &ve):
			return m.form.FocusField(ve.Field)
		case errors.Is(err, draft.ErrSubmitInFlight):
			return nil
		default:
			m.status = err.Error()
			return nil
		}
	}

	ctx := m.ctx
	return func() tea.Msg {
		message, err := req.Send(ctx)
		return SubmitResultMsg{Message: message, Err: err}
	}
}

// addFiles stages the picked paths and probes the new files in the background.
func (m *Model) addFiles(msg FilesPickedMsg) tea.Cmd {
	sel, err := draft.SelectPaths(msg.Paths...)
	if err != nil {
		m.status = err.Error()
		return nil
	}
	added := m.mgr.AddFiles(msg.Category, sel)
	if added == 0 {
		m.status = "Those files are already staged"
		return nil
	}

	pending := m.mgr.PendingProbes(msg.Category)
	mgr, ctx, c := m.mgr, m.ctx, msg.Category
	return func() tea.Msg {
		return ProbesDoneMsg{Category: c, Err: mgr.RunProbes(ctx, pending)}
	}
}

func (m *Model) updateSizes() {
	contentWidth := max(m.modalWidth()-6, 40)
	contentHeight := max(m.height-10, 10)
	m.form.SetSize(contentWidth, contentHeight)
	m.review.SetSize(contentWidth, max(contentHeight/3, 5))
	if m.picker != nil {
		m.picker.SetSize(contentWidth, contentHeight)
	}
}

func (m *Model) modalWidth() int {
	w := m.width - 10
	if w < 60 {
		w = 60
	}
	if w > 100 {
		w = 100
	}
	return w
}

// View renders the wizard UI.
func (m *Model) View() tea.View {
	var view tea.View
	view.AltScreen = true

	var body string
	if m.picker != nil {
		body = m.picker.View()
	} else {
		body = m.renderStep()
	}
	content := m.renderModal(body)

	canvas := uv.NewScreenBuffer(m.width, m.height)
	uv.NewStyledString(content).Draw(canvas, uv.Rectangle{
		Min: uv.Position{X: 0, Y: 0},
		Max: uv.Position{X: m.width, Y: m.height},
	})

	view.Content = lipgloss.NewLayer(canvas.Render())
	return view
}

func (m *Model) renderStep() string {
	v := m.mgr.View()
	var sections []string

	sections = append(sections, renderProgress(v), "")
	if v.Done {
		sections = append(sections,
			styleNotice.Render("✓ "+v.Notice),
			"",
			styleMuted.Render("Press any key to exit"),
		)
		return strings.Join(sections, "\n")
	}
	if m.onReview() {
		sections = append(sections, m.review.View(), "")
	}
	sections = append(sections, m.form.View())
	if m.status != "" {
		sections = append(sections, "", styleQueued.Render(m.status))
	}
	return strings.Join(sections, "\n")
}

func renderProgress(v draft.View) string {
	steps := make([]string, 0, len(v.Sections))
	for _, s := range v.Sections {
		label := fmt.Sprintf("%d %s", s.Number, s.Title)
		switch {
		case s.Active:
			steps = append(steps, styleStepActive.Render(label))
		case s.Done:
			steps = append(steps, styleStepDone.Render("✓ "+label))
		default:
			steps = append(steps, styleStepPending.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Center, steps...)
}

// renderModal wraps the step content in the modal container with its title.
func (m *Model) renderModal(body string) string {
	title := styleModalTitle.Render(m.mgr.View().Title)
	content := strings.Join([]string{title, "", body}, "\n")

	modal := styleModalContainer.Width(m.modalWidth()).Render(content)
	return lipgloss.Place(m.width, m.height,
		lipgloss.Center, lipgloss.Center,
		modal,
	)
}
