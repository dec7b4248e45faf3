package welcome

import (
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/changeagent/internal/router"
	"github.com/abhisek/changeagent/internal/screen"
)

// stubScreen is a minimal screen implementation for testing.
type stubScreen struct{}

func (s *stubScreen) Init() tea.Cmd                          { return nil }
func (s *stubScreen) Update(tea.Msg) (screen.Screen, tea.Cmd) { return s, nil }
func (s *stubScreen) View(int, int) string                   { return "dashboard" }
func (s *stubScreen) Title() string                          { return "Dashboard" }

func newTestWelcomeWithCounter() (*WelcomeScreen, *int) {
	callCount := 0
	factory := func() screen.Screen {
		callCount++
		return &stubScreen{}
	}
	return New(factory, "8 hours • 10 lessons"), &callCount
}

func sendTicks(w *WelcomeScreen, n int) (screen.Screen, tea.Cmd) {
	var s screen.Screen = w
	var cmd tea.Cmd
	for i := 0; i < n; i++ {
		s, cmd = s.Update(tickMsg(time.Now()))
	}
	return s, cmd
}

func TestPhaseTransitions(t *testing.T) {
	w, _ := newTestWelcomeWithCounter()

	view := w.View(100, 30)
	if strings.Contains(view, Tagline) {
		t.Error("tagline should not be visible at start")
	}

	sendTicks(w, 5)
	if w.elapsed != phase1End {
		t.Errorf("expected elapsed %v, got %v", phase1End, w.elapsed)
	}

	sendTicks(w, 10)
	if w.elapsed != phase2End {
		t.Errorf("expected elapsed %v, got %v", phase2End, w.elapsed)
	}

	view = w.View(100, 30)
	if !strings.Contains(view, Tagline) {
		t.Error("tagline should be visible after phase 2")
	}
	if !strings.Contains(view, "10 lessons") {
		t.Error("subtitle should be visible after phase 2")
	}
}

func TestKeypressDuringAnimationSkipsToTransition(t *testing.T) {
	w, callCount := newTestWelcomeWithCounter()
	sendTicks(w, 3)

	_, cmd := w.Update(tea.KeyPressMsg{Code: ' '})
	if cmd == nil {
		t.Fatal("keypress during animation should trigger transition")
	}
	msg := cmd()
	replaceMsg, ok := msg.(router.ReplaceScreenMsg)
	if !ok {
		t.Fatalf("expected ReplaceScreenMsg, got %T", msg)
	}
	if replaceMsg.Screen == nil {
		t.Error("replace screen should not be nil")
	}
	if *callCount != 1 {
		t.Errorf("factory should be called once, got %d", *callCount)
	}
}

func TestNoAutoTransition(t *testing.T) {
	w, callCount := newTestWelcomeWithCounter()

	// Ticks keep the pulse going but never leave the screen on their own.
	sendTicks(w, 60)
	if *callCount != 0 {
		t.Errorf("factory should not be called without keypress, got %d", *callCount)
	}
	if w.elapsed != totalDur {
		t.Errorf("expected elapsed capped at %v, got %v", totalDur, w.elapsed)
	}
}

func TestFactoryCalledOnce(t *testing.T) {
	w, callCount := newTestWelcomeWithCounter()

	w.Update(tea.KeyPressMsg{Code: 'a'})
	_, cmd := w.Update(tea.KeyPressMsg{Code: 'b'})
	if cmd != nil {
		t.Error("second keypress should not produce a command")
	}
	if *callCount != 1 {
		t.Errorf("factory should be called exactly once, got %d", *callCount)
	}
}

func TestTicksStopAfterTransition(t *testing.T) {
	w, _ := newTestWelcomeWithCounter()
	w.Update(tea.KeyPressMsg{Code: 'a'})

	if _, cmd := w.Update(tickMsg(time.Now())); cmd != nil {
		t.Error("no further ticks after transition")
	}
}

func TestBannerFallsBackWhenNarrow(t *testing.T) {
	if got := RenderBanner(40); !strings.Contains(got, bannerCompact) {
		t.Errorf("narrow banner = %q", got)
	}
}
