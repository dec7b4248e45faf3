// Package printview shows the course progress report.
package printview

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/changeagent/internal/report"
	"github.com/abhisek/changeagent/internal/router"
	"github.com/abhisek/changeagent/internal/screen"
	"github.com/abhisek/changeagent/internal/ui/layout"
	"github.com/abhisek/changeagent/internal/ui/theme"
)

// PrintViewScreen is a scrollable rendition of the report.
type PrintViewScreen struct {
	build  func() *report.Report
	lines  []string
	offset int
	page   int
}

var _ screen.Screen = (*PrintViewScreen)(nil)

// New creates the screen. build is called on open and whenever the screen
// is resumed so the report reflects the latest answers.
func New(build func() *report.Report) *PrintViewScreen {
	p := &PrintViewScreen{build: build}
	p.refresh()
	return p
}

func (p *PrintViewScreen) refresh() {
	text := strings.TrimRight(p.build().Text(), "\n")
	p.lines = strings.Split(text, "\n")
}

func (p *PrintViewScreen) Init() tea.Cmd {
	return nil
}

func (p *PrintViewScreen) Title() string {
	return "Print View"
}

// KeyHints returns the key binding hints for the footer.
func (p *PrintViewScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Scroll"},
		{Key: "PgUp/PgDn", Description: "Page"},
		{Key: "Esc", Description: "Back"},
	}
}

func (p *PrintViewScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case router.ResumedMsg:
		p.refresh()
	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			p.offset--
		case "down", "j":
			p.offset++
		case "pgup":
			p.offset -= p.page
		case "pgdown", "space":
			p.offset += p.page
		case "home", "g":
			p.offset = 0
		case "end", "G":
			p.offset = len(p.lines)
		case "q":
			return p, func() tea.Msg { return router.PopScreenMsg{} }
		}
	}
	return p, nil
}

func (p *PrintViewScreen) View(width, height int) string {
	p.page = height - 1
	if p.page < 1 {
		p.page = 1
	}
	last := len(p.lines) - height
	if p.offset > last {
		p.offset = last
	}
	if p.offset < 0 {
		p.offset = 0
	}
	end := p.offset + height
	if end > len(p.lines) {
		end = len(p.lines)
	}

	body := lipgloss.NewStyle().
		Width(layout.ReadingWidth(width)).
		Foreground(theme.Text).
		Render(strings.Join(p.lines[p.offset:end], "\n"))
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, body)
}
