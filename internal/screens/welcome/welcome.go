package welcome

import (
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/changeagent/internal/router"
	"github.com/abhisek/changeagent/internal/screen"
	"github.com/abhisek/changeagent/internal/ui/theme"
)

const (
	tickInterval = 100 * time.Millisecond
	phase1End    = 500 * time.Millisecond
	phase2End    = 1500 * time.Millisecond
	totalDur     = 4500 * time.Millisecond
)

// Tagline is shown under the banner.
const Tagline = "Lead the AI-native change in your organization."

const signalArt = `    ╭─────────╮
    │  ◇ → ◆  │
    ╰────┬────╯
   ╭─────┴─────╮
   │  ○  ○  ○  │
   ╰───────────╯`

// pulse frames cycle around the signal
var pulseFrames = []string{"·", "•", "●", "•"}

type tickMsg time.Time

// WelcomeScreen shows a splash animation before transitioning to the dashboard.
type WelcomeScreen struct {
	homeFactory  func() screen.Screen
	subtitle     string
	elapsed      time.Duration
	tickCount    int
	transitioned bool
}

var _ screen.Screen = (*WelcomeScreen)(nil)

// New creates a WelcomeScreen that will transition to the screen produced
// by homeFactory. subtitle is shown under the tagline, e.g. course length.
func New(homeFactory func() screen.Screen, subtitle string) *WelcomeScreen {
	return &WelcomeScreen{
		homeFactory: homeFactory,
		subtitle:    subtitle,
	}
}

func (w *WelcomeScreen) Title() string {
	return ""
}

func (w *WelcomeScreen) Init() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (w *WelcomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg.(type) {
	case tickMsg:
		if w.transitioned {
			return w, nil
		}
		if w.elapsed < totalDur {
			w.elapsed += tickInterval
		}
		w.tickCount++
		return w, tea.Tick(tickInterval, func(t time.Time) tea.Msg {
			return tickMsg(t)
		})

	case tea.KeyPressMsg:
		// Any key skips the rest of the animation.
		return w, w.transition()
	}

	return w, nil
}

func (w *WelcomeScreen) transition() tea.Cmd {
	if w.transitioned {
		return nil
	}
	w.transitioned = true
	homeScreen := w.homeFactory()
	return func() tea.Msg {
		return router.ReplaceScreenMsg{Screen: homeScreen}
	}
}

func (w *WelcomeScreen) View(width, height int) string {
	var sections []string

	rendered := lipgloss.NewStyle().Foreground(theme.Secondary).Render(signalArt)

	// Phase 2+: pulse on both sides of the signal
	if w.elapsed >= phase1End {
		pulse := pulseFrames[w.tickCount%len(pulseFrames)]
		accent := lipgloss.NewStyle().Foreground(theme.Accent).Render(pulse)

		lines := strings.Split(rendered, "\n")
		if len(lines) > 4 {
			lines[1] = accent + "  " + lines[1] + "  " + accent
			lines[4] = accent + "  " + lines[4] + "  " + accent
		}
		rendered = strings.Join(lines, "\n")
	}

	sections = append(sections, rendered)

	// Phase 3+: banner + tagline
	if w.elapsed >= phase2End {
		sections = append(sections, "", RenderBanner(width), "")

		tagline := lipgloss.NewStyle().
			Foreground(theme.Text).
			Bold(true).
			Render(Tagline)
		sections = append(sections, tagline)

		if w.subtitle != "" {
			sections = append(sections, theme.Subtitle.Render(w.subtitle))
		}

		sections = append(sections, "", theme.Hint.Render("press any key to continue"))
	}

	content := strings.Join(sections, "\n")

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}
