package app

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/changeagent/internal/navigation"
	"github.com/abhisek/changeagent/internal/report"
	"github.com/abhisek/changeagent/internal/router"
	"github.com/abhisek/changeagent/internal/screen"
	"github.com/abhisek/changeagent/internal/screens/home"
	"github.com/abhisek/changeagent/internal/screens/lesson"
	"github.com/abhisek/changeagent/internal/screens/printview"
	"github.com/abhisek/changeagent/internal/screens/welcome"
	"github.com/abhisek/changeagent/internal/ui/layout"
)

// Options configures the TUI.
type Options struct {
	home.Deps
	// SkipWelcome opens the dashboard directly.
	SkipWelcome bool
	// Open, when not the home route, is opened on top of the dashboard.
	Open navigation.Route
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router *router.Router
	opts   Options
	width  int
	height int
}

// newAppModel creates a new AppModel starting at the welcome screen.
func newAppModel(opts Options) AppModel {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	factory := func() screen.Screen { return home.New(opts.Deps) }

	target := routeScreen(opts, opts.Open)
	var first screen.Screen
	if opts.SkipWelcome || target != nil {
		first = factory()
	} else {
		course := opts.Repo.Course()
		subtitle := fmt.Sprintf("%s • %d lessons", course.EstimatedDuration, course.TotalLessons)
		first = welcome.New(factory, subtitle)
	}

	r := router.New(first)
	if target != nil {
		r.Push(target)
	}
	return AppModel{
		router: r,
		opts:   opts,
	}
}

// routeScreen builds the screen for a deep link, or nil for the dashboard.
func routeScreen(opts Options, route navigation.Route) screen.Screen {
	switch route.Kind {
	case navigation.RouteLesson:
		return lesson.NewAt(opts.Deps.Deps, route.Address)
	case navigation.RoutePrintView:
		return printview.New(func() *report.Report {
			return report.Build(opts.Progress, opts.Puzzles, opts.Now())
		})
	}
	return nil
}

func (m AppModel) Init() tea.Cmd {
	if active := m.router.Active(); active != nil {
		return active.Init()
	}
	return nil
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.flushActive()
			return m, tea.Quit
		case "esc":
			if c, ok := m.router.Active().(screen.InputCapturer); ok && c.CapturingInput() {
				break
			}
			if m.router.Depth() > 1 {
				m.flushActive()
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
			return m, nil
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

// flushActive commits unsaved edits of the active screen.
func (m AppModel) flushActive() {
	f, ok := m.router.Active().(screen.Flusher)
	if !ok {
		return
	}
	if err := f.Flush(); err != nil && m.opts.Log != nil {
		m.opts.Log.Error("flush on exit failed", "error", err)
	}
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}

	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	active := m.router.Active()
	title := ""
	if active != nil {
		title = active.Title()
	}

	percent := -1
	if m.opts.Progress != nil && title != "" {
		percent = m.opts.Progress.OverallPercent()
	}
	header := layout.RenderHeader(title, percent, m.width)

	var footerHints []layout.KeyHint
	if p, ok := active.(screen.KeyHintProvider); ok {
		footerHints = p.KeyHints()
	} else if m.router.Depth() > 1 {
		footerHints = []layout.KeyHint{
			{Key: "Esc", Description: "Back"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	} else {
		footerHints = []layout.KeyHint{
			{Key: "Any key", Description: "Continue"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}

	footer := layout.RenderFooter(footerHints, m.width)

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := m.height - headerHeight - footerHeight
	if contentHeight < 0 {
		contentHeight = 0
	}

	content := m.router.View(m.width, contentHeight)
	frame := layout.RenderFrame(header, content, footer, m.width, m.height)

	v.SetContent(frame)
	return v
}

// Run starts the Bubble Tea program and blocks until it exits.
func Run(ctx context.Context, opts Options) error {
	p := tea.NewProgram(newAppModel(opts), tea.WithContext(ctx))
	_, err := p.Run()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}
