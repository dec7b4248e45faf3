package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/changeagent/internal/ui/layout"
)

// Screen defines the interface for all application screens.
type Screen interface {
	// Init returns an initial command when the screen is first created.
	Init() tea.Cmd

	// Update handles messages and returns updated screen + command.
	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View renders the screen content (excluding header/footer).
	View(width, height int) string

	// Title returns the screen name for the header.
	Title() string
}

// KeyHintProvider is an optional interface that screens can implement
// to provide custom footer key hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// InputCapturer is implemented by screens that own the keyboard while a
// text field is being edited. Esc is then delivered to the screen instead
// of popping it.
type InputCapturer interface {
	CapturingInput() bool
}

// Flusher is implemented by screens holding unsaved edits. The app flushes
// the active screen before quitting.
type Flusher interface {
	Flush() error
}
