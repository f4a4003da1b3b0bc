package wizard

import (
	"fmt"
	"os"
	"strings"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/x/editor"
)

// openEditor writes content to a temp file and launches $EDITOR on it. The
// edited text comes back as FieldEditedMsg, failures as EditorFailedMsg.
func openEditor(field, content string) tea.Cmd {
	tmpfile, err := os.CreateTemp("", "orbitfund_"+field+"_*.md")
	if err != nil {
		return editorFailed(err)
	}
	if _, err := tmpfile.WriteString(content); err != nil {
		_ = tmpfile.Close()
		_ = os.Remove(tmpfile.Name())
		return editorFailed(err)
	}
	_ = tmpfile.Close()

	cmd, err := editor.Command("orbitfund", tmpfile.Name())
	if err != nil {
		_ = os.Remove(tmpfile.Name())
		return editorFailed(err)
	}

	path := tmpfile.Name()
	return tea.ExecProcess(cmd, func(err error) tea.Msg {
		defer func() { _ = os.Remove(path) }()
		if err != nil {
			return EditorFailedMsg{Err: fmt.Errorf("editor exited: %w", err)}
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return EditorFailedMsg{Err: err}
		}
		return FieldEditedMsg{Field: field, Content: strings.TrimRight(string(data), "\n")}
	})
}

func editorFailed(err error) tea.Cmd {
	return func() tea.Msg { return EditorFailedMsg{Err: err} }
}
