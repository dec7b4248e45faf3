package components

import (
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/changeagent/internal/ui/theme"
)

// TextInput wraps bubbles/textinput with the app styling.
type TextInput struct {
	Model    textinput.Model
	MaxWidth int
	busy     bool
}

// NewTextInput creates a new focused text input.
func NewTextInput(placeholder string, maxWidth int) TextInput {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Prompt = "› "
	ti.Focus()

	if maxWidth > 0 {
		ti.CharLimit = maxWidth
	}

	return TextInput{
		Model:    ti,
		MaxWidth: maxWidth,
	}
}

// Init returns the initial command.
func (t TextInput) Init() tea.Cmd {
	return t.Model.Focus()
}

// Update handles messages. Keys are dropped while the input is busy.
func (t TextInput) Update(msg tea.Msg) (TextInput, tea.Cmd) {
	if _, ok := msg.(tea.KeyMsg); ok && t.busy {
		return t, nil
	}

	var cmd tea.Cmd
	t.Model, cmd = t.Model.Update(msg)
	return t, cmd
}

// View renders the text input.
func (t TextInput) View() string {
	view := t.Model.View()
	if t.busy {
		view += " " + lipgloss.NewStyle().Foreground(theme.Accent).Render("…")
	}
	return view
}

// Value returns the current input value.
func (t TextInput) Value() string {
	return t.Model.Value()
}

// Reset clears the input for the next entry.
func (t *TextInput) Reset() {
	t.Model.Reset()
}

// SetWidth sets the visible width of the input.
func (t *TextInput) SetWidth(w int) {
	t.Model.SetWidth(w)
}

// SetBusy locks the input while a request is in flight.
func (t *TextInput) SetBusy(busy bool) {
	t.busy = busy
}

// Busy reports whether the input is locked.
func (t TextInput) Busy() bool {
	return t.busy
}
