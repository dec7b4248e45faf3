package placeholder

import (
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/changeagent/internal/screen"
	"github.com/abhisek/changeagent/internal/ui/theme"
)

// NotAvailableMessage is shown for lessons whose content is not authored yet.
const NotAvailableMessage = "This lesson is not yet available.\nCheck back soon!"

// PlaceholderScreen is a generic "not yet available" screen.
type PlaceholderScreen struct {
	title   string
	message string
}

var _ screen.Screen = (*PlaceholderScreen)(nil)

// New creates a PlaceholderScreen. An empty message uses NotAvailableMessage.
func New(title, message string) *PlaceholderScreen {
	if message == "" {
		message = NotAvailableMessage
	}
	return &PlaceholderScreen{title: title, message: message}
}

func (p *PlaceholderScreen) Init() tea.Cmd {
	return nil
}

func (p *PlaceholderScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	return p, nil
}

func (p *PlaceholderScreen) View(width, height int) string {
	heading := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render(p.title)
	body := lipgloss.NewStyle().Foreground(theme.Text).Render(p.message)

	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center).
		Render("╌╌ " + heading + " ╌╌\n\n" + body)
}

func (p *PlaceholderScreen) Title() string {
	return p.title
}
