package wizard

import "github.com/orbitfund/orbitfund/internal/draft"

// FilesPickedMsg is sent when the picker confirms a batch of files.
type FilesPickedMsg struct {
	Category draft.Category
	Paths    []string
}

// PickerClosedMsg is sent when the picker is dismissed without picking.
type PickerClosedMsg struct{}

// OpenPickerMsg asks the wizard to open the picker for a category.
type OpenPickerMsg struct {
	Category draft.Category
}

// ProbesDoneMsg is sent when preview probing of a category finished.
type ProbesDoneMsg struct {
	Category draft.Category
	Err      error
}

// ButtonPressedMsg is sent when enter is pressed on a focused button.
type ButtonPressedMsg struct {
	ID string
}

// EditFieldMsg asks the wizard to open $EDITOR for a field.
type EditFieldMsg struct {
	Field string
}

// FieldEditedMsg is sent when the external editor returns with new content.
type FieldEditedMsg struct {
	Field   string
	Content string
}

// EditorFailedMsg is sent when the external editor could not be used.
type EditorFailedMsg struct {
	Err error
}

// SubmitResultMsg carries the outcome of the network call.
type SubmitResultMsg struct {
	Message string
	Err     error
}
