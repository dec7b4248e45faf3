package lesson

import (
	"context"
	"strings"
	"sync"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/changeagent/internal/content"
	"github.com/abhisek/changeagent/internal/matching"
	"github.com/abhisek/changeagent/internal/navigation"
	"github.com/abhisek/changeagent/internal/progress"
	"github.com/abhisek/changeagent/internal/router"
	"github.com/abhisek/changeagent/internal/screens/board"
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

func testDeps(t *testing.T) Deps {
	t.Helper()
	repo, err := content.Load()
	if err != nil {
		t.Fatalf("load content: %v", err)
	}
	puzzles, err := matching.DefaultRegistry()
	if err != nil {
		t.Fatalf("load puzzles: %v", err)
	}
	store, err := progress.NewStore(context.Background(), &memDocs{data: map[string][]byte{}}, repo, nil)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return Deps{Repo: repo, Progress: store, Puzzles: puzzles}
}

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func special(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

func typeText(s *LessonScreen, text string) {
	for _, r := range text {
		s.Update(keyPress(r))
	}
}

func storedText(t *testing.T, d Deps, lessonID int, ref progress.ContainerRef, exerciseID string) string {
	t.Helper()
	ans, ok := d.Progress.ExerciseAnswer(lessonID, ref, exerciseID)
	if !ok {
		return ""
	}
	s, _ := ans.Answer.AsText()
	return s
}

func TestNewRedirectsToFirstSubLesson(t *testing.T) {
	s := New(testDeps(t), 1)

	want := navigation.Address{LessonID: 1, SubLessonID: "1.1"}
	if s.Address() != want {
		t.Fatalf("address = %+v, want %+v", s.Address(), want)
	}
	if s.State() != navigation.ShowSubLesson {
		t.Fatalf("state = %v, want show-sub-lesson", s.State())
	}
	if len(s.rows) != 1 || s.rows[0].kind != rowText {
		t.Fatalf("expected a single text row, got %d rows", len(s.rows))
	}
	if s.Title() != "Lesson 1" {
		t.Errorf("title = %q", s.Title())
	}
}

func TestEditingCapturesEscAndSavesOnExit(t *testing.T) {
	d := testDeps(t)
	s := New(d, 1)

	s.Update(special(tea.KeyEnter))
	if !s.CapturingInput() {
		t.Fatal("enter on a text row should start editing")
	}
	typeText(s, "hi")

	s.Update(special(tea.KeyEscape))
	if s.CapturingInput() {
		t.Fatal("esc should stop editing")
	}
	if got := storedText(t, d, 1, progress.SubLessonRef("1.1"), "1.1.1"); got != "hi" {
		t.Errorf("stored answer = %q, want %q", got, "hi")
	}
}

func TestStaleCommitIsIgnored(t *testing.T) {
	d := testDeps(t)
	s := New(d, 1)
	r := s.rows[0]

	first, err := r.setText("dra")
	if err != nil {
		t.Fatalf("setText: %v", err)
	}
	second, err := r.setText("draft")
	if err != nil {
		t.Fatalf("setText: %v", err)
	}

	s.Update(commitMsg{pending: first})
	if got := storedText(t, d, 1, progress.SubLessonRef("1.1"), "1.1.1"); got != "" {
		t.Fatalf("stale tick wrote %q", got)
	}

	s.Update(commitMsg{pending: second})
	if got := storedText(t, d, 1, progress.SubLessonRef("1.1"), "1.1.1"); got != "draft" {
		t.Errorf("stored answer = %q, want %q", got, "draft")
	}
}

func TestFlushCommitsUnsavedEdit(t *testing.T) {
	d := testDeps(t)
	s := New(d, 1)

	s.Update(special(tea.KeyEnter))
	typeText(s, "x")
	if err := s.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if got := storedText(t, d, 1, progress.SubLessonRef("1.1"), "1.1.1"); got != "x" {
		t.Errorf("stored answer = %q, want %q", got, "x")
	}
}

func TestStepOptionSavesImmediately(t *testing.T) {
	d := testDeps(t)
	s := NewAt(d, navigation.Address{LessonID: 1, SubLessonID: "1.2"})

	// step-1 text, then the three step-2 options, then step-3.
	if len(s.rows) != 5 {
		t.Fatalf("rows = %d, want 5", len(s.rows))
	}
	s.Update(special(tea.KeyDown))
	s.Update(special(tea.KeyDown))
	s.Update(special(tea.KeySpace))

	ans, ok := d.Progress.ExerciseAnswer(1, progress.SubLessonRef("1.2"), "1.2.1")
	if !ok {
		t.Fatal("no answer stored")
	}
	if got, _ := ans.StepAnswers["step-2"].AsText(); got != "POC Graveyard" {
		t.Errorf("step-2 = %q, want %q", got, "POC Graveyard")
	}
}

func TestCompleteMarksAndAdvances(t *testing.T) {
	d := testDeps(t)
	s := New(d, 1)

	s.Update(keyPress('c'))
	if !d.Progress.SubLessonCompleted(1, "1.1") {
		t.Fatal("sub-lesson 1.1 should be complete")
	}
	want := navigation.Address{LessonID: 1, SubLessonID: "1.2"}
	if s.Address() != want {
		t.Errorf("address = %+v, want %+v", s.Address(), want)
	}
}

func TestNextAndPrevious(t *testing.T) {
	s := New(testDeps(t), 1)

	s.Update(keyPress('n'))
	if s.Address().SubLessonID != "1.2" {
		t.Fatalf("next went to %+v", s.Address())
	}
	s.Update(keyPress('p'))
	if s.Address().SubLessonID != "1.1" {
		t.Fatalf("previous went to %+v", s.Address())
	}
	s.Update(keyPress('p'))
	if !strings.Contains(s.status, "first page") {
		t.Errorf("status = %q", s.status)
	}
}

func TestComponentRowPushesBoard(t *testing.T) {
	s := NewAt(testDeps(t), navigation.Address{LessonID: 2, ActivityID: "activity-2"})
	if len(s.rows) != 1 || s.rows[0].kind != rowComponent {
		t.Fatalf("expected a component row")
	}

	_, cmd := s.Update(special(tea.KeyEnter))
	if cmd == nil {
		t.Fatal("expected a push command")
	}
	push, ok := cmd().(router.PushScreenMsg)
	if !ok {
		t.Fatalf("expected PushScreenMsg, got %T", cmd())
	}
	if _, ok := push.Screen.(*board.BoardScreen); !ok {
		t.Fatalf("pushed %T, want *board.BoardScreen", push.Screen)
	}
}

func TestOutlineJumpsToPage(t *testing.T) {
	s := New(testDeps(t), 1)

	s.Update(keyPress('o'))
	if !s.CapturingInput() {
		t.Fatal("outline should capture esc")
	}
	s.Update(special(tea.KeyDown))
	s.Update(special(tea.KeyEnter))

	if s.Address().SubLessonID != "1.2" {
		t.Errorf("outline opened %+v", s.Address())
	}
	if s.CapturingInput() {
		t.Error("opening a page closes the outline")
	}

	s.Update(keyPress('o'))
	s.Update(special(tea.KeyEscape))
	if s.CapturingInput() {
		t.Error("esc closes the outline")
	}
}

func TestUnknownLessonIsNotAvailable(t *testing.T) {
	s := New(testDeps(t), 99)
	if s.State() != navigation.NotAvailable {
		t.Fatalf("state = %v, want not-available", s.State())
	}
	if view := s.View(100, 30); !strings.Contains(view, "not yet available") {
		t.Errorf("view should explain the lesson is unavailable")
	}
}

func TestViewShowsPage(t *testing.T) {
	s := New(testDeps(t), 1)
	view := s.View(120, 40)
	if !strings.Contains(view, "Failed Projects") {
		t.Errorf("view missing page title")
	}
	if !strings.Contains(view, "Complete & continue") {
		t.Errorf("view missing complete button")
	}
}
