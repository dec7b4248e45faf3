package app

import (
	"context"
	"sync"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/changeagent/internal/content"
	"github.com/abhisek/changeagent/internal/navigation"
	"github.com/abhisek/changeagent/internal/progress"
	"github.com/abhisek/changeagent/internal/router"
	"github.com/abhisek/changeagent/internal/screen"
	"github.com/abhisek/changeagent/internal/screens/home"
	"github.com/abhisek/changeagent/internal/screens/lesson"
	"github.com/abhisek/changeagent/internal/screens/printview"
	"github.com/abhisek/changeagent/internal/screens/welcome"
)

type memDocs struct {
	mu   sync.Mutex
	data map[string][]byte
}

func (m *memDocs) Get(_ context.Context, k string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[k]
	return v, ok, nil
}

func (m *memDocs) Put(_ context.Context, k string, v []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[k] = append([]byte(nil), v...)
	return nil
}

func (m *memDocs) Delete(_ context.Context, k string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, k)
	return nil
}

// editorScreen is a stub screen that captures input while editing.
type editorScreen struct {
	editing bool
	flushed int
	got     []string
}

func (e *editorScreen) Init() tea.Cmd { return nil }

func (e *editorScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		e.got = append(e.got, k.String())
	}
	return e, nil
}

func (e *editorScreen) View(int, int) string { return "editor" }
func (e *editorScreen) Title() string        { return "Editor" }
func (e *editorScreen) CapturingInput() bool { return e.editing }

func (e *editorScreen) Flush() error {
	e.flushed++
	return nil
}

func testOptions(t *testing.T, skipWelcome bool) Options {
	t.Helper()
	repo, err := content.Load()
	if err != nil {
		t.Fatalf("load content: %v", err)
	}
	store, err := progress.NewStore(context.Background(), &memDocs{data: map[string][]byte{}}, repo, nil)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return Options{
		Deps:        home.Deps{Deps: lesson.Deps{Repo: repo, Progress: store}, OutputDir: t.TempDir()},
		SkipWelcome: skipWelcome,
	}
}

func esc() tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: tea.KeyEscape}
}

func TestStartsAtWelcome(t *testing.T) {
	m := newAppModel(testOptions(t, false))
	if _, ok := m.router.Active().(*welcome.WelcomeScreen); !ok {
		t.Errorf("active = %T, want welcome", m.router.Active())
	}
}

func TestSkipWelcomeOpensDashboard(t *testing.T) {
	m := newAppModel(testOptions(t, true))
	if _, ok := m.router.Active().(*home.HomeScreen); !ok {
		t.Errorf("active = %T, want dashboard", m.router.Active())
	}
}

func TestEscPopsAndFlushes(t *testing.T) {
	m := newAppModel(testOptions(t, true))
	ed := &editorScreen{}
	m.router.Push(ed)

	_, cmd := m.Update(esc())
	if cmd == nil {
		t.Fatal("expected a pop command")
	}
	if _, ok := cmd().(router.PopScreenMsg); !ok {
		t.Error("esc should pop the screen")
	}
	if ed.flushed != 1 {
		t.Errorf("flushed = %d, want 1", ed.flushed)
	}
}

func TestEscForwardedWhileCapturing(t *testing.T) {
	m := newAppModel(testOptions(t, true))
	ed := &editorScreen{editing: true}
	m.router.Push(ed)

	m.Update(esc())
	if len(ed.got) != 1 || ed.got[0] != "esc" {
		t.Errorf("screen got %v, want [esc]", ed.got)
	}
	if m.router.Depth() != 2 {
		t.Error("screen should stay open")
	}
}

func TestEscOnRootDoesNothing(t *testing.T) {
	m := newAppModel(testOptions(t, true))
	if _, cmd := m.Update(esc()); cmd != nil {
		t.Error("esc on the dashboard should do nothing")
	}
}

func TestCtrlCFlushesAndQuits(t *testing.T) {
	m := newAppModel(testOptions(t, true))
	ed := &editorScreen{editing: true}
	m.router.Push(ed)

	_, cmd := m.Update(tea.KeyPressMsg{Code: 'c', Mod: tea.ModCtrl})
	if cmd == nil {
		t.Fatal("expected quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("ctrl+c should quit")
	}
	if ed.flushed != 1 {
		t.Errorf("flushed = %d, want 1", ed.flushed)
	}
}

func TestOpenRoutePushesLesson(t *testing.T) {
	opts := testOptions(t, false)
	route, err := navigation.ParseRoute("/lesson/1/1.2")
	if err != nil {
		t.Fatalf("parse route: %v", err)
	}
	opts.Open = route

	m := newAppModel(opts)
	if m.router.Depth() != 2 {
		t.Fatalf("depth = %d, want 2", m.router.Depth())
	}
	if _, ok := m.router.Active().(*lesson.LessonScreen); !ok {
		t.Errorf("active = %T, want lesson", m.router.Active())
	}

	_, cmd := m.Update(esc())
	if cmd == nil {
		t.Fatal("esc should pop back to the dashboard")
	}
}

func TestOpenPrintView(t *testing.T) {
	opts := testOptions(t, true)
	opts.Open = navigation.Route{Kind: navigation.RoutePrintView}

	m := newAppModel(opts)
	if _, ok := m.router.Active().(*printview.PrintViewScreen); !ok {
		t.Errorf("active = %T, want print view", m.router.Active())
	}
}
