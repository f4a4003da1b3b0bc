package wizard

import (
	"fmt"
	"strings"

	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	"charm.land/glamour/v2"
	"github.com/aymanbagabas/go-udiff"

	"github.com/orbitfund/orbitfund/internal/draft"
	"github.com/orbitfund/orbitfund/internal/logger"
)

// ReviewPanel shows a scrollable summary of the draft on the last step: the
// mission rendered as markdown and, when editing, a diff of changed fields.
type ReviewPanel struct {
	viewport viewport.Model
	width    int
}

// NewReviewPanel creates an empty review panel.
func NewReviewPanel() *ReviewPanel {
	vp := viewport.New(
		viewport.WithWidth(60),
		viewport.WithHeight(10),
	)
	vp.MouseWheelEnabled = true
	vp.MouseWheelDelta = 3
	return &ReviewPanel{viewport: vp, width: 60}
}

// SetSize updates the panel dimensions.
func (r *ReviewPanel) SetSize(width, height int) {
	r.width = width
	r.viewport.SetWidth(width)
	r.viewport.SetHeight(max(height, 5))
}

// Load renders the manager state into the panel.
func (r *ReviewPanel) Load(mgr *draft.Manager) {
	content := renderMarkdown(reviewMarkdown(mgr), r.width)
	if diff := changeDiff(mgr.Changes()); diff != "" {
		content += "\n" + styleSectionHeader.Render("Changes") + "\n" + diff
	}
	r.viewport.SetContent(content)
	r.viewport.GotoTop()
}

// Update scrolls the panel.
func (r *ReviewPanel) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	r.viewport, cmd = r.viewport.Update(msg)
	return cmd
}

// View renders the panel.
func (r *ReviewPanel) View() string {
	return r.viewport.View()
}

// renderMarkdown renders markdown with glamour, falling back to the raw text.
func renderMarkdown(content string, width int) string {
	if width < 20 {
		width = 20
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		logger.Warn("Markdown renderer unavailable: %v", err)
		return content
	}
	out, err := renderer.Render(content)
	if err != nil {
		logger.Warn("Markdown render failed: %v", err)
		return content
	}
	return strings.TrimRight(out, "\n")
}

// reviewMarkdown summarizes the draft as a markdown document.
func reviewMarkdown(mgr *draft.Manager) string {
	val := func(name string) string {
		if v := strings.TrimSpace(mgr.Value(name)); v != "" {
			return v
		}
		return "_not set_"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", val(draft.FieldTitle))
	fmt.Fprintf(&b, "**Type:** %s  \n", val(draft.FieldType))
	fmt.Fprintf(&b, "**Funding goal:** %s  \n", val(draft.FieldFundingGoal))
	fmt.Fprintf(&b, "**Campaign:** %s to %s\n\n", val(draft.FieldLaunchDate), val(draft.FieldEndTime))

	fmt.Fprintf(&b, "## Description\n\n%s\n\n", val(draft.FieldDescription))
	fmt.Fprintf(&b, "## Goals\n\n%s\n\n", val(draft.FieldGoals))

	if ms := mgr.Milestones(); len(ms) > 0 {
		b.WriteString("## Milestones\n\n")
		for _, m := range ms {
			fmt.Fprintf(&b, "%d. %s (%s)\n", m.Label, m.Name, m.Target)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Media & Documents\n\n")
	for _, c := range draft.Categories {
		coll := mgr.Files(c)
		line := fmt.Sprintf("- %s: %d new, %d existing",
			c.Label(), len(coll.NewFiles()), len(coll.RemoteFiles()))
		if n := len(mgr.Deletions(c)); n > 0 {
			line += fmt.Sprintf(", %d to delete", n)
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

// changeDiff renders edited fields as a colored unified diff.
func changeDiff(changes []draft.Change) string {
	if len(changes) == 0 {
		return ""
	}
	var b strings.Builder
	for _, c := range changes {
		diff := udiff.Unified("a/"+c.Field, "b/"+c.Field, c.Old+"\n", c.New+"\n")
		for _, line := range strings.Split(strings.TrimRight(diff, "\n"), "\n") {
			switch {
			case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
				b.WriteString(styleLabel.Render(line))
			case strings.HasPrefix(line, "+"):
				b.WriteString(styleDiffAdd.Render(line))
			case strings.HasPrefix(line, "-"):
				b.WriteString(styleDiffDel.Render(line))
			case strings.HasPrefix(line, "@@"):
				b.WriteString(styleDiffHunk.Render(line))
			default:
				b.WriteString(line)
			}
			b.WriteString("\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
