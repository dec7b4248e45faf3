package components

import (
	"charm.land/bubbles/v2/textarea"
	tea "charm.land/bubbletea/v2"
)

// TextArea wraps bubbles/textarea for answer editing. A single-line area
// treats enter as submit instead of inserting a newline.
type TextArea struct {
	Model     textarea.Model
	Multiline bool
}

// NewTextArea creates an unfocused editor.
func NewTextArea(placeholder string, multiline bool, width int) TextArea {
	ta := textarea.New()
	ta.Placeholder = placeholder
	ta.ShowLineNumbers = false
	ta.SetWidth(width)
	if multiline {
		ta.SetHeight(5)
	} else {
		ta.SetHeight(1)
	}
	return TextArea{Model: ta, Multiline: multiline}
}

// Focus focuses the editor and returns the cursor blink command.
func (t *TextArea) Focus() tea.Cmd {
	return t.Model.Focus()
}

// Blur removes focus.
func (t *TextArea) Blur() {
	t.Model.Blur()
}

// Focused reports whether the editor has focus.
func (t TextArea) Focused() bool {
	return t.Model.Focused()
}

// SetValue replaces the editor content.
func (t *TextArea) SetValue(s string) {
	t.Model.SetValue(s)
}

// Value returns the editor content.
func (t TextArea) Value() string {
	return t.Model.Value()
}

// Update forwards messages to the editor. Enter is swallowed for
// single-line editors.
func (t TextArea) Update(msg tea.Msg) (TextArea, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok && !t.Multiline && kmsg.String() == "enter" {
		return t, nil
	}
	var cmd tea.Cmd
	t.Model, cmd = t.Model.Update(msg)
	return t, cmd
}

// View renders the editor.
func (t TextArea) View() string {
	return t.Model.View()
}
