package wizard

import (
	"strings"

	"charm.land/lipgloss/v2"
)

// Color palette (Catppuccin Mocha)
var (
	colorPrimary       = lipgloss.Color("#cba6f7") // Mauve
	colorSecondary     = lipgloss.Color("#b4befe") // Lavender
	colorText          = lipgloss.Color("#cdd6f4") // Text
	colorBase          = lipgloss.Color("#1e1e2e") // Base
	colorMantle        = lipgloss.Color("#181825") // Mantle
	colorSurface0      = lipgloss.Color("#313244") // Surface0
	colorSurface2      = lipgloss.Color("#585b70") // Surface2
	colorOverlay0      = lipgloss.Color("#6c7086") // Overlay0
	colorSubtext0      = lipgloss.Color("#a6adc8") // Subtext0
	colorSubtext1      = lipgloss.Color("#bac2de") // Subtext1
	colorRed           = lipgloss.Color("#f38ba8") // Red
	colorGreen         = lipgloss.Color("#a6e3a1") // Green
	colorYellow        = lipgloss.Color("#f9e2af") // Yellow
	colorBlue          = lipgloss.Color("#89b4fa") // Blue
	colorBorderFocused = colorSecondary
)

var (
	styleModalContainer = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorBorderFocused).
				Background(colorBase).
				Padding(1, 2)

	styleModalTitle = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true).
			Align(lipgloss.Center)

	styleLabel         = lipgloss.NewStyle().Foreground(colorSubtext0)
	styleLabelFocused  = lipgloss.NewStyle().Foreground(colorSecondary).Bold(true)
	styleRequired      = lipgloss.NewStyle().Foreground(colorRed)
	styleError         = lipgloss.NewStyle().Foreground(colorRed)
	styleNotice        = lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
	styleMuted         = lipgloss.NewStyle().Foreground(colorOverlay0).Italic(true)
	styleValue         = lipgloss.NewStyle().Foreground(colorText)
	styleCursorRow     = lipgloss.NewStyle().Foreground(colorPrimary).Background(colorSurface0).Bold(true)
	styleStepActive    = lipgloss.NewStyle().Foreground(colorBase).Background(colorPrimary).Bold(true).Padding(0, 1)
	styleStepDone      = lipgloss.NewStyle().Foreground(colorGreen).Padding(0, 1)
	styleStepPending   = lipgloss.NewStyle().Foreground(colorOverlay0).Padding(0, 1)
	styleQueued        = lipgloss.NewStyle().Foreground(colorYellow)
	styleDiffAdd       = lipgloss.NewStyle().Foreground(colorGreen)
	styleDiffDel       = lipgloss.NewStyle().Foreground(colorRed)
	styleDiffHunk      = lipgloss.NewStyle().Foreground(colorBlue)
	styleSectionHeader = lipgloss.NewStyle().Foreground(colorBlue).Bold(true)
)

// Hint bar styles
var (
	styleHintKey = lipgloss.NewStyle().
			Foreground(colorSubtext1).
			Bold(true)

	styleHintDesc = lipgloss.NewStyle().
			Foreground(colorSubtext0)

	styleHintSeparator = lipgloss.NewStyle().
				Foreground(colorSurface2)
)

// renderHintBar renders key-description pairs.
// Example: renderHintBar("tab", "next", "esc", "back") -> "tab next • esc back"
func renderHintBar(pairs ...string) string {
	if len(pairs) == 0 || len(pairs)%2 != 0 {
		return ""
	}

	var b strings.Builder
	for i := 0; i < len(pairs); i += 2 {
		if i > 0 {
			b.WriteString(" " + styleHintSeparator.Render("•") + " ")
		}
		b.WriteString(styleHintKey.Render(pairs[i]) + " " + styleHintDesc.Render(pairs[i+1]))
	}
	return b.String()
}
