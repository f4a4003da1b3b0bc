package wizard

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/orbitfund/orbitfund/internal/draft"
)

// FileItem is a file or directory in the file picker.
type FileItem struct {
	name  string
	path  string
	isDir bool
}

// Render returns the display line, truncated to width.
func (f *FileItem) Render(width int) string {
	icon := "📄"
	if f.isDir {
		icon = "📁"
	}
	display := icon + " " + f.name
	if width > 8 && len(display) > width-2 {
		display = display[:width-5] + "..."
	}
	return display
}

// FilePicker browses directories and marks files of one category. Marks
// survive directory changes so files can be collected from several places.
type FilePicker struct {
	category    draft.Category
	currentPath string
	items       []*FileItem
	selectedIdx int
	marked      map[string]bool
	order       []string // marked paths in the order they were marked
	err         string
	width       int
	height      int
}

// NewFilePicker opens a picker for category in dir (the working directory
// when empty).
func NewFilePicker(category draft.Category, dir string) *FilePicker {
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			cwd = "."
		}
		dir = cwd
	}
	fp := &FilePicker{
		category: category,
		marked:   make(map[string]bool),
		width:    60,
		height:   10,
	}
	if err := fp.loadDirectory(dir); err != nil {
		fp.err = err.Error()
	}
	return fp
}

// loadDirectory lists dir: parent entry, directories, then files the
// category accepts.
func (f *FilePicker) loadDirectory(path string) error {
	entries, err := os.ReadDir(path)
	if err != nil {
		return err
	}

	f.items = f.items[:0]
	if abs, err := filepath.Abs(path); err == nil && abs != filepath.Dir(abs) {
		f.items = append(f.items, &FileItem{name: "..", path: filepath.Dir(abs), isDir: true})
	}

	var dirs, files []*FileItem
	for _, entry := range entries {
		full := filepath.Join(path, entry.Name())
		if entry.IsDir() {
			if strings.HasPrefix(entry.Name(), ".") {
				continue
			}
			dirs = append(dirs, &FileItem{name: entry.Name(), path: full, isDir: true})
			continue
		}
		if f.category.Accepts(entry.Name()) {
			files = append(files, &FileItem{name: entry.Name(), path: full})
		}
	}

	byName := func(items []*FileItem) {
		sort.Slice(items, func(i, j int) bool {
			return strings.ToLower(items[i].name) < strings.ToLower(items[j].name)
		})
	}
	byName(dirs)
	byName(files)

	f.items = append(f.items, dirs...)
	f.items = append(f.items, files...)
	f.currentPath = path
	f.selectedIdx = 0
	f.err = ""
	return nil
}

// SetSize updates the available dimensions.
func (f *FilePicker) SetSize(width, height int) {
	f.width = width
	f.height = height
}

// Marked returns the marked paths in marking order.
func (f *FilePicker) Marked() []string {
	out := make([]string, len(f.order))
	copy(out, f.order)
	return out
}

// ClearMarks empties the selection so the same files can be marked again.
func (f *FilePicker) ClearMarks() {
	f.marked = make(map[string]bool)
	f.order = nil
}

func (f *FilePicker) toggle(path string) {
	if f.marked[path] {
		delete(f.marked, path)
		for i, p := range f.order {
			if p == path {
				f.order = append(f.order[:i], f.order[i+1:]...)
				break
			}
		}
		return
	}
	f.marked[path] = true
	f.order = append(f.order, path)
}

// Update handles key presses. Confirming emits FilesPickedMsg, cancelling
// emits PickerClosedMsg.
func (f *FilePicker) Update(msg tea.Msg) tea.Cmd {
	keyMsg, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return nil
	}

	switch keyMsg.String() {
	case "up", "k":
		if f.selectedIdx > 0 {
			f.selectedIdx--
		}
	case "down", "j":
		if f.selectedIdx < len(f.items)-1 {
			f.selectedIdx++
		}
	case "space":
		if item := f.current(); item != nil && !item.isDir {
			f.toggle(item.path)
			if f.selectedIdx < len(f.items)-1 {
				f.selectedIdx++
			}
		}
	case "enter":
		item := f.current()
		if item != nil && item.isDir {
			if err := f.loadDirectory(item.path); err != nil {
				f.err = err.Error()
			}
			return nil
		}
		paths := f.Marked()
		if len(paths) == 0 && item != nil {
			paths = []string{item.path}
		}
		if len(paths) == 0 {
			return nil
		}
		category := f.category
		return func() tea.Msg {
			return FilesPickedMsg{Category: category, Paths: paths}
		}
	case "backspace":
		parent := filepath.Dir(f.currentPath)
		if parent != f.currentPath {
			if err := f.loadDirectory(parent); err != nil {
				f.err = err.Error()
			}
		}
	case "esc":
		return func() tea.Msg { return PickerClosedMsg{} }
	}
	return nil
}

func (f *FilePicker) current() *FileItem {
	if f.selectedIdx >= 0 && f.selectedIdx < len(f.items) {
		return f.items[f.selectedIdx]
	}
	return nil
}

// View renders the picker.
func (f *FilePicker) View() string {
	var b strings.Builder

	b.WriteString(styleSectionHeader.Render("Add " + f.category.Label()))
	b.WriteString("\n")
	b.WriteString(styleLabel.Render(f.currentPath))
	b.WriteString("\n\n")

	if f.err != "" {
		b.WriteString(styleError.Render("✗ " + f.err))
		b.WriteString("\n\n")
	}

	// keep the cursor visible in tall directories
	visible := f.height - 6
	if visible < 3 {
		visible = 3
	}
	start := 0
	if f.selectedIdx >= visible {
		start = f.selectedIdx - visible + 1
	}
	end := start + visible
	if end > len(f.items) {
		end = len(f.items)
	}

	hasFiles := false
	for _, item := range f.items {
		if !item.isDir {
			hasFiles = true
			break
		}
	}

	for i := start; i < end; i++ {
		item := f.items[i]
		mark := "  "
		if f.marked[item.path] {
			mark = "✓ "
		}
		line := mark + item.Render(f.width-4)
		if i == f.selectedIdx {
			line = styleCursorRow.Render("▸ " + line)
		} else {
			line = "  " + line
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	if !hasFiles {
		b.WriteString(styleMuted.Render("No matching files in this directory"))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if n := len(f.order); n > 0 {
		b.WriteString(styleNotice.Render(pluralize(n, "file") + " marked"))
		b.WriteString("\n")
	}
	b.WriteString(renderHintBar(
		"↑↓", "navigate",
		"space", "mark",
		"enter", "open/add",
		"backspace", "up",
		"esc", "cancel",
	))
	return b.String()
}
