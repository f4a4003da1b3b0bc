package wizard

import (
	"fmt"
	"slices"
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/orbitfund/orbitfund/internal/draft"
	"github.com/orbitfund/orbitfund/internal/logger"
)

type itemKind int

const (
	itemInput itemKind = iota
	itemLongText
	itemChoice
	itemCheckbox
	itemFiles
	itemMilestones
	itemButton
)

// milestoneControls is the focus name of the add/remove milestone row.
const milestoneControls = "milestones"

// focusItem is one focusable row of the form.
type focusItem struct {
	kind  itemKind
	name  string // field name, milestone input name or button id
	label string
	field draft.Field
	input *textinput.Model
}

// FormStep renders the active section of a draft and edits it in place.
// Every edit goes straight to the manager; the step holds only widgets.
type FormStep struct {
	mgr        *draft.Manager
	step       int
	items      []*focusItem
	focus      int
	fileCursor map[draft.Category]int
	width      int
	height     int
}

// NewFormStep creates a form for the manager's current step.
func NewFormStep(mgr *draft.Manager) *FormStep {
	f := &FormStep{
		mgr:        mgr,
		fileCursor: make(map[draft.Category]int),
		width:      60,
		height:     20,
	}
	f.rebuild("")
	return f
}

func newInput(placeholder string, width int) *textinput.Model {
	in := textinput.New()
	in.Placeholder = placeholder
	in.Prompt = ""
	in.SetStyles(textinput.Styles{
		Focused: textinput.StyleState{
			Text:        lipgloss.NewStyle().Foreground(colorText),
			Placeholder: lipgloss.NewStyle().Foreground(colorOverlay0),
			Prompt:      lipgloss.NewStyle().Foreground(colorSecondary),
		},
		Blurred: textinput.StyleState{
			Text:        lipgloss.NewStyle().Foreground(colorSubtext0),
			Placeholder: lipgloss.NewStyle().Foreground(colorOverlay0),
			Prompt:      lipgloss.NewStyle().Foreground(colorOverlay0),
		},
		Cursor: textinput.CursorStyle{
			Color: colorPrimary,
			Shape: tea.CursorBar,
			Blink: true,
		},
	})
	in.SetWidth(width)
	return &in
}

func placeholderFor(k draft.FieldKind) string {
	switch k {
	case draft.KindDate:
		return "YYYY-MM-DD"
	case draft.KindNumber:
		return "0"
	case draft.KindLongText:
		return "Type here or press ctrl+e for $EDITOR"
	default:
		return ""
	}
}

// rebuild recreates the focus items from the manager. Focus moves to keep
// when it names an item, otherwise to the first item.
func (f *FormStep) rebuild(keep string) tea.Cmd {
	v := f.mgr.View()
	f.step = v.Step
	f.items = f.items[:0]
	inputWidth := f.width - 10
	if inputWidth < 20 {
		inputWidth = 20
	}

	for _, fv := range v.Fields {
		item := &focusItem{name: fv.Name, label: fv.Label, field: fv.Field}
		switch fv.Kind {
		case draft.KindChoice:
			item.kind = itemChoice
		case draft.KindCheckbox:
			item.kind = itemCheckbox
		case draft.KindFiles:
			item.kind = itemFiles
		case draft.KindLongText:
			if strings.Contains(fv.Value, "\n") {
				item.kind = itemLongText
				break
			}
			fallthrough
		default:
			item.kind = itemInput
			item.input = newInput(placeholderFor(fv.Kind), inputWidth)
			item.input.SetValue(fv.Value)
		}
		f.items = append(f.items, item)
	}

	if v.ShowMilestones {
		for _, ms := range v.Milestones {
			name := &focusItem{
				kind:  itemInput,
				name:  ms.NameField(),
				label: fmt.Sprintf("Milestone %d name", ms.Label),
				input: newInput("e.g. Prototype complete", inputWidth),
			}
			name.input.SetValue(ms.Name)
			target := &focusItem{
				kind:  itemInput,
				name:  ms.TargetField(),
				label: fmt.Sprintf("Milestone %d target", ms.Label),
				input: newInput("0", inputWidth),
			}
			target.input.SetValue(ms.Target)
			f.items = append(f.items, name, target)
		}
		f.items = append(f.items, &focusItem{kind: itemMilestones, name: milestoneControls, label: "Milestones"})
	}

	for _, btn := range ButtonsForView(v, "") {
		if btn.State == ButtonDisabled {
			continue
		}
		f.items = append(f.items, &focusItem{kind: itemButton, name: btn.ID, label: btn.Label})
	}

	idx := 0
	for i, it := range f.items {
		if it.name == keep {
			idx = i
			break
		}
	}
	return f.focusAt(idx)
}

// Refresh rebuilds the widgets after the manager changed underneath, e.g.
// after a step change or an external edit.
func (f *FormStep) Refresh() tea.Cmd {
	keep := ""
	if it := f.current(); it != nil && f.step == f.mgr.Step() {
		keep = it.name
	}
	return f.rebuild(keep)
}

// FocusField moves focus to the named field. Returns nil when the field is
// not on the current step.
func (f *FormStep) FocusField(name string) tea.Cmd {
	for i, it := range f.items {
		if it.name == name {
			return f.focusAt(i)
		}
	}
	return nil
}

// Focused returns the name of the focused item.
func (f *FormStep) Focused() string {
	if it := f.current(); it != nil {
		return it.name
	}
	return ""
}

func (f *FormStep) focusAt(i int) tea.Cmd {
	if len(f.items) == 0 {
		f.focus = 0
		return nil
	}
	if i < 0 {
		i = len(f.items) - 1
	}
	if i >= len(f.items) {
		i = 0
	}
	f.focus = i
	var cmd tea.Cmd
	for j, it := range f.items {
		if it.input == nil {
			continue
		}
		if j == i {
			cmd = it.input.Focus()
		} else {
			it.input.Blur()
		}
	}
	return cmd
}

func (f *FormStep) current() *focusItem {
	if f.focus >= 0 && f.focus < len(f.items) {
		return f.items[f.focus]
	}
	return nil
}

// SetSize updates the available dimensions.
func (f *FormStep) SetSize(width, height int) {
	f.width = width
	f.height = height
	for _, it := range f.items {
		if it.input != nil {
			it.input.SetWidth(max(width-10, 20))
		}
	}
}

// Update handles key presses for the focused item and forwards everything
// else to the focused text input.
func (f *FormStep) Update(msg tea.Msg) tea.Cmd {
	item := f.current()
	if item == nil {
		return nil
	}

	key, ok := msg.(tea.KeyPressMsg)
	if !ok {
		if item.input != nil {
			var cmd tea.Cmd
			*item.input, cmd = item.input.Update(msg)
			return cmd
		}
		return nil
	}

	switch key.String() {
	case "tab", "down":
		return f.focusAt(f.focus + 1)
	case "shift+tab", "up":
		return f.focusAt(f.focus - 1)
	}

	switch item.kind {
	case itemInput:
		switch key.String() {
		case "enter":
			return f.focusAt(f.focus + 1)
		case "ctrl+e":
			if item.field.Kind == draft.KindLongText {
				return editField(item.name)
			}
			return nil
		}
		var cmd tea.Cmd
		*item.input, cmd = item.input.Update(msg)
		if err := f.mgr.SetValue(item.name, item.input.Value()); err != nil {
			logger.Warn("Dropping input for %s: %v", item.name, err)
		}
		return cmd

	case itemLongText:
		switch key.String() {
		case "enter", "ctrl+e":
			return editField(item.name)
		}

	case itemChoice:
		switch key.String() {
		case "left", "h":
			f.cycleChoice(item, -1)
		case "right", "l", "space":
			f.cycleChoice(item, 1)
		}

	case itemCheckbox:
		switch key.String() {
		case "space", "enter", "x":
			_ = f.mgr.SetChecked(item.name, !f.mgr.Checked(item.name))
		}

	case itemFiles:
		c := item.field.Category
		n := f.mgr.Files(c).Len()
		switch key.String() {
		case "left", "h":
			if f.fileCursor[c] > 0 {
				f.fileCursor[c]--
			}
		case "right", "l":
			if f.fileCursor[c] < n-1 {
				f.fileCursor[c]++
			}
		case "x", "delete":
			f.removeFile(c)
		case "enter", "a":
			return func() tea.Msg { return OpenPickerMsg{Category: c} }
		}

	case itemMilestones:
		switch key.String() {
		case "+", "=", "enter":
			label := f.mgr.AddMilestone()
			return f.rebuild(draft.Milestone{Label: label}.NameField())
		case "-":
			if f.mgr.RemoveMilestone() {
				return f.rebuild(milestoneControls)
			}
		}

	case itemButton:
		switch key.String() {
		case "enter", "space":
			id := item.name
			return func() tea.Msg { return ButtonPressedMsg{ID: id} }
		case "left":
			return f.focusAt(f.focus - 1)
		case "right":
			return f.focusAt(f.focus + 1)
		}
	}
	return nil
}

func editField(name string) tea.Cmd {
	return func() tea.Msg { return EditFieldMsg{Field: name} }
}

func (f *FormStep) cycleChoice(item *focusItem, dir int) {
	choices := item.field.Choices
	if len(choices) == 0 {
		return
	}
	idx := slices.Index(choices, f.mgr.Value(item.name))
	switch {
	case idx < 0 && dir > 0:
		idx = 0
	case idx < 0:
		idx = len(choices) - 1
	default:
		idx = (idx + dir + len(choices)) % len(choices)
	}
	_ = f.mgr.SetValue(item.name, choices[idx])
}

func (f *FormStep) removeFile(c draft.Category) {
	previews := f.mgr.Previews(c)
	idx := f.fileCursor[c]
	if idx < 0 || idx >= len(previews) {
		return
	}
	f.mgr.RemoveFile(c, previews[idx].Key)
	if idx >= len(previews)-1 && idx > 0 {
		f.fileCursor[c] = idx - 1
	}
}

// View renders the fields of the active section and the button bar.
func (f *FormStep) View() string {
	v := f.mgr.View()
	fields := make(map[string]draft.FieldView, len(v.Fields))
	for _, fv := range v.Fields {
		fields[fv.Name] = fv
	}
	invalid := func(name string) bool { return name == v.Focus }

	var b strings.Builder
	var focusedButton string
	for i, it := range f.items {
		isFocused := i == f.focus
		switch it.kind {
		case itemButton:
			if isFocused {
				focusedButton = it.name
			}
			continue
		case itemMilestones:
			b.WriteString(f.renderMilestoneControls(isFocused, len(v.Milestones)))
			b.WriteString("\n\n")
			continue
		}

		b.WriteString(f.renderLabel(it, isFocused, invalid(it.name)))
		b.WriteString("\n")

		switch it.kind {
		case itemInput:
			b.WriteString(it.input.View())
		case itemLongText:
			b.WriteString(renderLongText(fields[it.name].Value))
		case itemChoice:
			b.WriteString(renderChoice(fields[it.name].Value, isFocused))
		case itemCheckbox:
			box := "[ ]"
			if fields[it.name].Checked {
				box = "[✓]"
			}
			b.WriteString(styleValue.Render(box))
		case itemFiles:
			b.WriteString(f.renderFiles(fields[it.name], isFocused))
		}
		b.WriteString("\n\n")
	}

	bar := NewButtonBar(ButtonsForView(v, focusedButton))
	bar.SetWidth(f.width)
	b.WriteString(bar.Render())
	b.WriteString("\n")

	if v.Error != "" {
		b.WriteString("\n")
		b.WriteString(styleError.Render("✗ " + v.Error))
		b.WriteString("\n")
	}
	if v.Notice != "" {
		b.WriteString("\n")
		b.WriteString(styleNotice.Render("✓ " + v.Notice))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(f.hints())
	return b.String()
}

func (f *FormStep) renderLabel(it *focusItem, focused, invalid bool) string {
	label := styleLabel.Render(it.label)
	if focused {
		label = styleLabelFocused.Render(it.label)
	}
	if it.field.Required {
		label += styleRequired.Render(" *")
	}
	if invalid {
		label += styleError.Render(" ← fix this")
	}
	return label
}

func renderLongText(value string) string {
	lines := strings.Split(value, "\n")
	first := lines[0]
	if len(first) > 60 {
		first = first[:57] + "..."
	}
	out := styleValue.Render(first)
	if len(lines) > 1 {
		out += styleMuted.Render(fmt.Sprintf("  (+%d more lines, enter to edit)", len(lines)-1))
	}
	return out
}

func renderChoice(value string, focused bool) string {
	if value == "" {
		value = "select..."
	}
	if focused {
		return styleCursorRow.Render("◂ " + value + " ▸")
	}
	return styleValue.Render(value)
}

func previewIcon(k draft.PreviewKind) string {
	switch k {
	case draft.PreviewImage:
		return "🖼"
	case draft.PreviewVideo:
		return "🎞"
	default:
		return "📄"
	}
}

func (f *FormStep) renderFiles(fv draft.FieldView, focused bool) string {
	var b strings.Builder
	if len(fv.Previews) == 0 {
		b.WriteString(styleMuted.Render("No files staged"))
	}
	cursor := f.fileCursor[fv.Category]
	for i, p := range fv.Previews {
		line := previewIcon(p.Kind) + " " + p.Name
		if p.Existing {
			line += " (existing)"
		}
		if p.Detail != "" {
			line += " · " + p.Detail
		}
		if focused && i == cursor {
			b.WriteString(styleCursorRow.Render("▸ " + line))
		} else {
			b.WriteString("  " + styleValue.Render(line))
		}
		if i < len(fv.Previews)-1 {
			b.WriteString("\n")
		}
	}
	if fv.Queued > 0 {
		b.WriteString("\n")
		b.WriteString(styleQueued.Render(pluralize(fv.Queued, "file") + " queued for deletion"))
	}
	return b.String()
}

func (f *FormStep) renderMilestoneControls(focused bool, n int) string {
	text := fmt.Sprintf("%s  + add  - remove", pluralize(n, "milestone"))
	if focused {
		return styleCursorRow.Render(text)
	}
	return styleLabel.Render(text)
}

func (f *FormStep) hints() string {
	item := f.current()
	pairs := []string{"tab", "next field"}
	if item != nil {
		switch item.kind {
		case itemInput:
			if item.field.Kind == draft.KindLongText {
				pairs = append(pairs, "ctrl+e", "editor")
			}
		case itemLongText:
			pairs = append(pairs, "enter", "editor")
		case itemChoice:
			pairs = append(pairs, "←→", "choose")
		case itemCheckbox:
			pairs = append(pairs, "space", "toggle")
		case itemFiles:
			pairs = append(pairs, "enter", "add files", "←→", "select", "x", "remove")
		case itemMilestones:
			pairs = append(pairs, "+/-", "add/remove")
		}
	}
	pairs = append(pairs, "ctrl+n", "next", "esc", "back")
	return renderHintBar(pairs...)
}

func pluralize(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
