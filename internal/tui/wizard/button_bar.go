package wizard

import (
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/orbitfund/orbitfund/internal/draft"
)

// ButtonState represents the visual state of a button.
type ButtonState int

const (
	ButtonNormal ButtonState = iota
	ButtonDisabled
	ButtonFocused
)

// Button ids used as focus targets.
const (
	buttonBack   = "back"
	buttonNext   = "next"
	buttonSubmit = "submit"
)

// Button is a single button in the button bar.
type Button struct {
	ID    string
	Label string
	State ButtonState
}

// ButtonBar renders a row of buttons with consistent styling.
type ButtonBar struct {
	buttons []Button
	width   int
}

// NewButtonBar creates a button bar.
func NewButtonBar(buttons []Button) *ButtonBar {
	return &ButtonBar{buttons: buttons, width: 60}
}

// SetWidth updates the width the bar is centered in.
func (b *ButtonBar) SetWidth(width int) {
	b.width = width
}

// Buttons returns the buttons in display order.
func (b *ButtonBar) Buttons() []Button {
	return b.buttons
}

var (
	buttonNormalStyle = lipgloss.NewStyle().
				Foreground(colorText).
				Background(colorSurface0).
				Padding(0, 2).
				MarginLeft(1).
				MarginRight(1)

	buttonDisabledStyle = lipgloss.NewStyle().
				Foreground(colorOverlay0).
				Background(colorMantle).
				Padding(0, 2).
				MarginLeft(1).
				MarginRight(1)

	buttonFocusedStyle = lipgloss.NewStyle().
				Foreground(colorBase).
				Background(colorSecondary).
				Bold(true).
				Padding(0, 2).
				MarginLeft(1).
				MarginRight(1)
)

// Render renders the centered button bar.
func (b *ButtonBar) Render() string {
	if len(b.buttons) == 0 {
		return ""
	}

	rendered := make([]string, 0, len(b.buttons))
	for _, btn := range b.buttons {
		switch btn.State {
		case ButtonDisabled:
			rendered = append(rendered, buttonDisabledStyle.Render(btn.Label))
		case ButtonFocused:
			rendered = append(rendered, buttonFocusedStyle.Render(btn.Label))
		default:
			rendered = append(rendered, buttonNormalStyle.Render(btn.Label))
		}
	}

	return lipgloss.Place(b.width, 1, lipgloss.Center, lipgloss.Center, strings.Join(rendered, ""))
}

// ButtonsForView builds the Back / Next / Submit set from the draft view:
// back hidden on step 1, submit only on the last step, next everywhere else.
// focused is the id of the focused button, if any.
func ButtonsForView(v draft.View, focused string) []Button {
	var buttons []Button
	add := func(id, label string, disabled bool) {
		state := ButtonNormal
		switch {
		case disabled:
			state = ButtonDisabled
		case id == focused:
			state = ButtonFocused
		}
		buttons = append(buttons, Button{ID: id, Label: label, State: state})
	}

	if v.ShowPrev {
		add(buttonBack, "← Back", v.SubmitDisabled)
	}
	if v.ShowNext {
		add(buttonNext, "Next →", false)
	}
	if v.ShowSubmit {
		add(buttonSubmit, v.SubmitLabel, v.SubmitDisabled)
	}
	return buttons
}
