package components

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/changeagent/internal/ui/theme"
)

// Choice is one radio or checkbox option line.
type Choice struct {
	Label    string
	Multiple bool
	Checked  bool
	Focused  bool
}

// Mark returns the option's box: (•)/( ) for radios, [x]/[ ] for checkboxes.
func (c Choice) Mark() string {
	switch {
	case c.Multiple && c.Checked:
		return "[x]"
	case c.Multiple:
		return "[ ]"
	case c.Checked:
		return "(•)"
	}
	return "( )"
}

// View renders the option.
func (c Choice) View() string {
	prefix := "    "
	if c.Focused {
		prefix = "  ▸ "
	}
	line := prefix + c.Mark() + " " + c.Label

	switch {
	case c.Focused:
		return lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render(line)
	case c.Checked:
		return lipgloss.NewStyle().Foreground(theme.Success).Render(line)
	}
	return lipgloss.NewStyle().Foreground(theme.Text).Render(line)
}
