// Package board is the keyboard rendition of the drag-and-drop matching
// activities: pick a label, then drop it on a target.
package board

import (
	"errors"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/changeagent/internal/matching"
	"github.com/abhisek/changeagent/internal/platform/logger"
	"github.com/abhisek/changeagent/internal/progress"
	"github.com/abhisek/changeagent/internal/router"
	"github.com/abhisek/changeagent/internal/screen"
	"github.com/abhisek/changeagent/internal/ui/layout"
	"github.com/abhisek/changeagent/internal/ui/theme"
)

// Saver persists the board state. *capture.Field satisfies it.
type Saver interface {
	SetComponent(v progress.Value) error
}

type column int

const (
	columnLabels column = iota
	columnTargets
)

// BoardScreen plays one matching puzzle.
type BoardScreen struct {
	board *matching.Board
	saver Saver
	log   *logger.Logger

	column      column
	labelCursor int
	targetCur   int
	offset      int
	status      string
}

var _ screen.Screen = (*BoardScreen)(nil)

// New creates a board screen over b. Every change is written through saver.
func New(b *matching.Board, saver Saver, log *logger.Logger) *BoardScreen {
	if log == nil {
		log = logger.Nop()
	}
	return &BoardScreen{board: b, saver: saver, log: log}
}

// Board returns the underlying board.
func (s *BoardScreen) Board() *matching.Board {
	return s.board
}

func (s *BoardScreen) Init() tea.Cmd {
	return nil
}

func (s *BoardScreen) Title() string {
	return s.board.Puzzle().Title
}

// KeyHints returns the key binding hints for the footer.
func (s *BoardScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Move"},
		{Key: "Tab", Description: "Switch column"},
		{Key: "Enter", Description: "Pick/Drop"},
		{Key: "X", Description: "Remove"},
		{Key: "C", Description: "Check"},
		{Key: "R", Description: "Reset"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *BoardScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return s, nil
	}

	switch kmsg.String() {
	case "tab", "left", "right", "h", "l":
		if s.column == columnLabels {
			s.column = columnTargets
		} else {
			s.column = columnLabels
		}
	case "up", "k":
		s.move(-1)
	case "down", "j":
		s.move(1)
	case "enter", "space":
		s.activate()
	case "x", "backspace", "delete":
		s.remove()
	case "c":
		s.check()
	case "r":
		if err := s.board.Restore(progress.Value{}); err == nil {
			s.status = "Board cleared."
			s.save()
		}
	case "q":
		return s, func() tea.Msg { return router.PopScreenMsg{} }
	}
	return s, nil
}

func (s *BoardScreen) move(delta int) {
	if s.column == columnLabels {
		n := len(s.board.Available())
		s.labelCursor = clamp(s.labelCursor+delta, n)
		return
	}
	s.targetCur = clamp(s.targetCur+delta, len(s.board.Puzzle().Targets))
}

func clamp(i, n int) int {
	if i >= n {
		i = n - 1
	}
	if i < 0 {
		i = 0
	}
	return i
}

func (s *BoardScreen) currentTarget() string {
	targets := s.board.Puzzle().Targets
	if s.targetCur >= len(targets) {
		return ""
	}
	return targets[s.targetCur].ID
}

func (s *BoardScreen) activate() {
	s.status = ""
	if s.column == columnLabels {
		avail := s.board.Available()
		if len(avail) == 0 {
			return
		}
		label := avail[clamp(s.labelCursor, len(avail))]
		if err := s.board.Pick(label.ID); err != nil {
			s.status = err.Error()
			return
		}
		s.column = columnTargets
		s.status = fmt.Sprintf("Holding %q. Choose where it goes.", label.Title())
		return
	}

	err := s.board.Drop(s.currentTarget())
	switch {
	case errors.Is(err, matching.ErrNothingPicked):
		s.status = "Pick a label first."
		return
	case errors.Is(err, matching.ErrBucketFull):
		s.status = "That group is full. Remove one first."
		return
	case err != nil:
		s.status = err.Error()
		return
	}
	s.labelCursor = clamp(s.labelCursor, len(s.board.Available()))
	if len(s.board.Available()) > 0 {
		s.column = columnLabels
	}
	s.save()
}

func (s *BoardScreen) remove() {
	if s.column != columnTargets {
		return
	}
	target := s.currentTarget()
	if len(s.board.Placed(target)) == 0 {
		return
	}
	if err := s.board.Remove(target); err != nil {
		s.status = err.Error()
		return
	}
	s.status = ""
	s.save()
}

func (s *BoardScreen) check() {
	_, err := s.board.Check()
	switch {
	case errors.Is(err, matching.ErrIncomplete):
		done, need := s.board.Filled()
		s.status = fmt.Sprintf("Place everything before checking (%d/%d).", done, need)
		return
	case errors.Is(err, matching.ErrNoAnswerKey):
		s.status = "There is no single right answer here. Discuss your choices with your group."
		return
	case err != nil:
		s.status = err.Error()
		return
	}
	correct, total := s.board.Score()
	s.status = fmt.Sprintf("%d of %d correct.", correct, total)
	s.save()
}

func (s *BoardScreen) save() {
	if s.saver == nil {
		return
	}
	v, err := s.board.Answer()
	if err == nil {
		err = s.saver.SetComponent(v)
	}
	if err != nil {
		s.log.Error("save board failed", "component", s.board.Puzzle().Component, "error", err)
		s.status = "Could not save: " + err.Error()
	}
}

func (s *BoardScreen) View(width, height int) string {
	p := s.board.Puzzle()
	cw := layout.ReadingWidth(width)
	leftW := cw / 3
	rightW := cw - leftW - 3

	var head []string
	if p.Instructions != "" {
		head = append(head, strings.Split(lipgloss.NewStyle().Width(cw).Foreground(theme.Text).Render(p.Instructions), "\n")...)
	}
	done, need := s.board.Filled()
	head = append(head, theme.Hint.Render(fmt.Sprintf("%d/%d placed", done, need)), "")

	left, leftFocus := s.labelLines(leftW)
	right, rightStart, rightEnd := s.targetLines(rightW)

	rows := len(left)
	if len(right) > rows {
		rows = len(right)
	}
	lines := head
	for i := 0; i < rows; i++ {
		l, r := "", ""
		if i < len(left) {
			l = left[i]
		}
		if i < len(right) {
			r = right[i]
		}
		if pad := leftW - lipgloss.Width(l); pad > 0 {
			l += strings.Repeat(" ", pad)
		}
		lines = append(lines, l+" │ "+r)
	}

	focusStart, focusEnd := len(head)+leftFocus, len(head)+leftFocus+1
	if s.column == columnTargets {
		focusStart, focusEnd = len(head)+rightStart, len(head)+rightEnd
	}

	footer := []string{"", theme.Warning.Render(s.status)}
	if summary := s.summary(); summary != "" {
		footer = append(footer, strings.Split(lipgloss.NewStyle().Width(cw).Foreground(theme.TextDim).Render(summary), "\n")...)
	}

	visible, offset := layout.ScrollWindow(lines, s.offset, focusStart, focusEnd, height-len(footer))
	s.offset = offset
	body := strings.Join(append(visible, footer...), "\n")
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, lipgloss.NewStyle().Width(cw).Render(body))
}

func (s *BoardScreen) summary() string {
	if _, shown := s.board.Feedback(); !shown {
		return ""
	}
	return s.board.Puzzle().Summary
}

func (s *BoardScreen) labelLines(width int) ([]string, int) {
	p := s.board.Puzzle()
	heading := p.LabelsHeading
	if heading == "" {
		heading = "Labels"
	}
	lines := []string{theme.Label.Render(heading)}
	focus := 0

	avail := s.board.Available()
	if len(avail) == 0 {
		lines = append(lines, theme.Hint.Render("All placed"))
	}
	for i, it := range avail {
		prefix := "  "
		style := theme.Unselected
		if s.column == columnLabels && i == s.labelCursor {
			prefix = "▸ "
			style = theme.Selected
			focus = len(lines)
		}
		if it.ID == s.board.Picked() {
			style = lipgloss.NewStyle().Foreground(theme.Accent).Bold(true)
			prefix = "✋"
		}
		text := lipgloss.NewStyle().Width(width - 2).Render(it.Title())
		for j, ln := range strings.Split(text, "\n") {
			if j > 0 {
				prefix = "  "
			}
			lines = append(lines, prefix+style.Render(ln))
		}
	}
	return lines, focus
}

func (s *BoardScreen) targetLines(width int) ([]string, int, int) {
	p := s.board.Puzzle()
	heading := p.TargetsHeading
	if heading == "" {
		heading = "Targets"
	}
	lines := []string{theme.Label.Render(heading)}
	start, end := 0, 1

	verdicts := make(map[string]matching.Feedback)
	if fb, shown := s.board.Feedback(); shown {
		for _, f := range fb {
			verdicts[f.Target+"/"+f.Label] = f
		}
	}
	wrap := lipgloss.NewStyle().Width(width - 2)

	for i, t := range p.Targets {
		first := len(lines)
		prefix := "  "
		style := theme.Body.Bold(true)
		if s.column == columnTargets && i == s.targetCur {
			prefix = "▸ "
			style = theme.Selected
		}
		title := t.Name
		if t.Capacity > 0 && p.Mode == matching.ModeSort {
			title += fmt.Sprintf(" (max %d)", t.Capacity)
		}
		lines = append(lines, prefix+style.Render(title))
		if t.Name != "" && t.Description != "" {
			for _, ln := range strings.Split(wrap.Foreground(theme.TextDim).Render(t.Description), "\n") {
				lines = append(lines, "  "+ln)
			}
		}

		placed := s.board.Placed(t.ID)
		if len(placed) == 0 {
			lines = append(lines, "  "+theme.Hint.Render("→ (empty)"))
		}
		for _, it := range placed {
			line := "  → " + it.Title()
			if f, ok := verdicts[t.ID+"/"+it.ID]; ok {
				if f.Correct {
					line = theme.Correct.Render(line + "  ✓")
				} else {
					line = theme.Incorrect.Render(line + "  ✗")
				}
				lines = append(lines, line)
				if f.Message != "" {
					for _, ln := range strings.Split(wrap.Foreground(theme.TextDim).Render(f.Message), "\n") {
						lines = append(lines, "    "+ln)
					}
				}
				continue
			}
			lines = append(lines, theme.Body.Render(line))
		}
		lines = append(lines, "")

		if s.column == columnTargets && i == s.targetCur {
			start, end = first, len(lines)
		}
	}
	return lines, start, end
}
