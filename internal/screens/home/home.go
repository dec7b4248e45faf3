package home

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	helper "github.com/abhisek/changeagent/internal/chat"
	"github.com/abhisek/changeagent/internal/platform/logger"
	"github.com/abhisek/changeagent/internal/progress"
	"github.com/abhisek/changeagent/internal/report"
	"github.com/abhisek/changeagent/internal/router"
	"github.com/abhisek/changeagent/internal/screen"
	chatscreen "github.com/abhisek/changeagent/internal/screens/chat"
	"github.com/abhisek/changeagent/internal/screens/lesson"
	"github.com/abhisek/changeagent/internal/screens/placeholder"
	"github.com/abhisek/changeagent/internal/screens/printview"
	"github.com/abhisek/changeagent/internal/ui/components"
	"github.com/abhisek/changeagent/internal/ui/layout"
	"github.com/abhisek/changeagent/internal/ui/theme"
)

// Deps are the services the dashboard hands to the screens it opens.
type Deps struct {
	lesson.Deps
	Chat *helper.Service
	Now  func() time.Time
	// OutputDir receives exported progress and saved transcripts.
	OutputDir string
}

type exportedMsg struct {
	path string
	err  error
}

// HomeScreen is the course dashboard.
type HomeScreen struct {
	deps       Deps
	menu       components.Menu
	offset     int
	confirming bool
	status     string
}

var _ screen.Screen = (*HomeScreen)(nil)

// New creates the dashboard.
func New(deps Deps) *HomeScreen {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Log == nil {
		deps.Log = logger.Nop()
	}
	h := &HomeScreen{deps: deps}
	h.menu = components.NewMenu(h.items())
	return h
}

func (h *HomeScreen) items() []components.MenuItem {
	var items []components.MenuItem
	course := h.deps.Repo.Course()

	for _, entry := range course.Lessons {
		id, title := entry.ID, entry.Title
		items = append(items, components.MenuItem{
			Label:  h.lessonLabel(id, title),
			Action: func() tea.Cmd { return push(h.openLesson(id, title)) },
		})
	}

	items = append(items,
		components.MenuItem{Label: "Chat helper", Action: func() tea.Cmd {
			if h.deps.Chat == nil {
				return push(placeholder.New("Chat Helper", chatscreen.Unconfigured))
			}
			return push(chatscreen.New(h.deps.Chat, h.deps.OutputDir, h.deps.Now, h.deps.Log))
		}},
		components.MenuItem{Label: "Print view", Action: func() tea.Cmd {
			return push(printview.New(h.buildReport))
		}},
		components.MenuItem{Label: "Export progress", Action: h.export},
		components.MenuItem{Label: "Clear progress", Action: func() tea.Cmd {
			h.confirming = true
			h.status = ""
			return nil
		}},
		components.MenuItem{Label: "Quit", Action: func() tea.Cmd { return tea.Quit }},
	)
	return items
}

func push(s screen.Screen) tea.Cmd {
	return func() tea.Msg { return router.PushScreenMsg{Screen: s} }
}

func (h *HomeScreen) openLesson(id int, title string) screen.Screen {
	if _, ok := h.deps.Repo.Lesson(id); !ok {
		return placeholder.New(fmt.Sprintf("Lesson %d: %s", id, title), "")
	}
	return lesson.New(h.deps.Deps, id)
}

func (h *HomeScreen) lessonLabel(id int, title string) string {
	if _, ok := h.deps.Repo.Lesson(id); !ok {
		return fmt.Sprintf("%2d. %s  (coming soon)", id, title)
	}
	pct := h.deps.Progress.LessonPercent(id)
	mark := ""
	if pct == 100 {
		mark = "  ✓"
	}
	return fmt.Sprintf("%2d. %s  %d%%%s", id, title, pct, mark)
}

func (h *HomeScreen) buildReport() *report.Report {
	return report.Build(h.deps.Progress, h.deps.Puzzles, h.deps.Now())
}

func (h *HomeScreen) export() tea.Cmd {
	name, data, err := h.deps.Progress.Export(h.deps.Now())
	if err != nil {
		return func() tea.Msg { return exportedMsg{err: err} }
	}
	path := filepath.Join(h.deps.OutputDir, name)
	return func() tea.Msg {
		return exportedMsg{path: path, err: os.WriteFile(path, data, 0o644)}
	}
}

// refresh recomputes the lesson percentages after returning from a lesson.
func (h *HomeScreen) refresh() {
	selected := h.menu.Selected
	h.menu = components.NewMenu(h.items())
	h.menu.Selected = selected
}

func (h *HomeScreen) Init() tea.Cmd {
	return nil
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case router.ResumedMsg:
		h.refresh()
		return h, nil

	case exportedMsg:
		if msg.err != nil {
			h.deps.Log.Error("export progress failed", "error", msg.err)
			h.status = "Export failed: " + msg.err.Error()
		} else {
			h.deps.Log.Info("progress exported", "path", msg.path)
			h.status = "Exported to " + msg.path
		}
		return h, nil

	case tea.KeyMsg:
		if h.confirming {
			h.confirming = false
			if msg.String() != "y" {
				h.status = "Nothing was cleared."
				return h, nil
			}
			if _, err := h.deps.Progress.Clear(context.Background(), nil); err != nil {
				h.status = "Could not clear progress: " + err.Error()
			} else {
				h.status = "All progress cleared."
			}
			h.refresh()
			return h, nil
		}
	}

	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) View(width, height int) string {
	cw := layout.ReadingWidth(width)
	if cw > 72 {
		cw = 72
	}
	course := h.deps.Repo.Course()

	lines := []string{
		theme.Title.Render(course.Title),
		theme.Subtitle.Render(fmt.Sprintf("%s • %d lessons", course.EstimatedDuration, course.TotalLessons)),
		"",
		components.NewProgressBar("Overall", float64(h.deps.Progress.OverallPercent())/100, true, cw).View(),
		"",
	}

	menuTop := len(lines)
	lines = append(lines, strings.Split(strings.TrimRight(h.menu.View(), "\n"), "\n")...)

	var footer []string
	switch {
	case h.confirming:
		footer = []string{"", theme.Warning.Render(progress.ClearPrompt), theme.Hint.Render("Press y to confirm, any other key to cancel.")}
	case h.status != "":
		footer = []string{"", theme.Warning.Render(h.status)}
	}

	focus := menuTop + h.menu.Selected
	visible, offset := layout.ScrollWindow(lines, h.offset, focus, focus+1, height-len(footer))
	h.offset = offset

	body := lipgloss.NewStyle().Width(cw).Render(strings.Join(append(visible, footer...), "\n"))
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, body)
}

func (h *HomeScreen) Title() string {
	return "Dashboard"
}

// KeyHints returns the key binding hints for the footer.
func (h *HomeScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Open"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}
