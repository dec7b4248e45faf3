// Package lesson is the page view of a lesson: content, exercise forms,
// completion and page-to-page navigation.
package lesson

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/changeagent/internal/capture"
	"github.com/abhisek/changeagent/internal/content"
	"github.com/abhisek/changeagent/internal/matching"
	"github.com/abhisek/changeagent/internal/navigation"
	"github.com/abhisek/changeagent/internal/platform/logger"
	"github.com/abhisek/changeagent/internal/progress"
	"github.com/abhisek/changeagent/internal/router"
	"github.com/abhisek/changeagent/internal/screen"
	"github.com/abhisek/changeagent/internal/screens/board"
	"github.com/abhisek/changeagent/internal/screens/placeholder"
	"github.com/abhisek/changeagent/internal/ui/components"
	"github.com/abhisek/changeagent/internal/ui/layout"
	"github.com/abhisek/changeagent/internal/ui/theme"
)

// maxRedirects bounds redirect chains when resolving an address.
const maxRedirects = 4

// Deps are the services a lesson page needs.
type Deps struct {
	Repo     *content.Repository
	Progress *progress.Store
	Puzzles  *matching.Registry
	Log      *logger.Logger
}

// commitMsg fires when a debounce period ends.
type commitMsg struct {
	pending capture.Pending
}

// LessonScreen shows one page of a lesson at a time.
type LessonScreen struct {
	deps Deps
	addr navigation.Address
	res  navigation.Result
	form *capture.Form
	rows []row

	cursor  int
	offset  int
	editing bool
	editor  components.TextArea

	outline       bool
	outlineCursor int

	status string
}

var (
	_ screen.Screen        = (*LessonScreen)(nil)
	_ screen.InputCapturer = (*LessonScreen)(nil)
	_ screen.Flusher       = (*LessonScreen)(nil)
)

// New opens a lesson at its entry page.
func New(deps Deps, lessonID int) *LessonScreen {
	return NewAt(deps, navigation.Address{LessonID: lessonID})
}

// NewAt opens the page at addr, following redirects.
func NewAt(deps Deps, addr navigation.Address) *LessonScreen {
	if deps.Log == nil {
		deps.Log = logger.Nop()
	}
	s := &LessonScreen{deps: deps}
	s.load(addr)
	return s
}

// Address returns the page currently shown.
func (s *LessonScreen) Address() navigation.Address {
	return s.addr
}

// State returns the resolver state of the current page.
func (s *LessonScreen) State() navigation.State {
	return s.res.State
}

func (s *LessonScreen) load(addr navigation.Address) {
	s.flushForm()

	var done navigation.Completion
	if s.deps.Progress != nil {
		done = s.deps.Progress
	}
	res := navigation.Resolve(s.deps.Repo, done, addr)
	for i := 0; res.State == navigation.Redirect && i < maxRedirects; i++ {
		res = navigation.Resolve(s.deps.Repo, done, res.Target)
	}

	s.addr = res.Target
	s.res = res
	s.form = nil
	s.rows = nil
	s.cursor = 0
	s.offset = 0
	s.editing = false
	s.outline = false

	exercises := s.exercises()
	if len(exercises) == 0 || s.deps.Progress == nil {
		return
	}
	ref, err := s.addr.Ref()
	if err != nil {
		s.deps.Log.Warn("page has no container", "path", s.addr.Path(), "error", err)
		return
	}
	s.form = capture.NewForm(context.Background(), s.deps.Progress, s.addr.LessonID, ref, exercises, capture.Manual())
	s.rows = buildRows(s.form)
}

func (s *LessonScreen) exercises() []content.Exercise {
	switch s.res.State {
	case navigation.ShowSubLesson:
		return s.res.SubLesson.Exercises
	case navigation.ShowActivity:
		return s.res.Activity.Exercises
	}
	return nil
}

func (s *LessonScreen) showingPage() bool {
	return s.res.State == navigation.ShowSubLesson || s.res.State == navigation.ShowActivity
}

func (s *LessonScreen) pageCompleted() bool {
	if s.deps.Progress == nil {
		return false
	}
	switch s.res.State {
	case navigation.ShowSubLesson:
		return s.deps.Progress.SubLessonCompleted(s.addr.LessonID, s.addr.SubLessonID)
	case navigation.ShowActivity:
		ref, err := s.addr.Ref()
		return err == nil && s.deps.Progress.ActivityCompleted(s.addr.LessonID, ref)
	}
	return false
}

func (s *LessonScreen) flushForm() {
	if s.form == nil {
		return
	}
	if err := s.form.Flush(); err != nil {
		s.fail("save answers", err)
	}
}

// Flush commits every pending edit on the page.
func (s *LessonScreen) Flush() error {
	if s.form == nil {
		return nil
	}
	return s.form.Flush()
}

// CapturingInput reports whether esc belongs to the screen: while editing
// text or browsing the outline.
func (s *LessonScreen) CapturingInput() bool {
	return s.editing || s.outline
}

func (s *LessonScreen) fail(action string, err error) {
	s.deps.Log.Error("lesson "+action+" failed", "path", s.addr.Path(), "error", err)
	s.status = fmt.Sprintf("Could not %s: %v", action, err)
}

func (s *LessonScreen) Init() tea.Cmd {
	return nil
}

func (s *LessonScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case commitMsg:
		if err := msg.pending.Commit(); err != nil {
			s.fail("save answer", err)
		}
		return s, nil

	case router.ResumedMsg:
		// Component boards write through the same fields; nothing to reload.
		return s, nil

	case tea.KeyMsg:
		if s.editing {
			return s, s.updateEditor(msg)
		}
		if s.outline {
			return s, s.updateOutline(msg)
		}
		return s, s.updatePage(msg)
	}

	if s.editing {
		var cmd tea.Cmd
		s.editor, cmd = s.editor.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *LessonScreen) updatePage(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "up", "k":
		if s.cursor > 0 {
			s.cursor--
		}
	case "down", "j":
		if s.cursor < len(s.rows)-1 {
			s.cursor++
		}
	case "enter", "space":
		return s.activate()
	case "c":
		s.complete()
	case "n":
		s.step(navigation.Next, "This is the last page of the lesson.")
	case "p":
		s.step(navigation.Previous, "This is the first page of the lesson.")
	case "o":
		if s.res.Lesson != nil {
			s.outline = true
			s.outlineCursor = s.currentPageIndex()
		}
	case "q":
		s.flushForm()
		return func() tea.Msg { return router.PopScreenMsg{} }
	}
	return nil
}

func (s *LessonScreen) step(move func(*content.Repository, navigation.Address) (navigation.Address, bool), edge string) {
	if !s.showingPage() {
		return
	}
	next, ok := move(s.deps.Repo, s.addr)
	if !ok {
		s.status = edge
		return
	}
	s.status = ""
	s.load(next)
}

func (s *LessonScreen) complete() {
	if !s.showingPage() || s.deps.Progress == nil {
		return
	}
	s.flushForm()
	next, ok, err := navigation.Complete(context.Background(), s.deps.Progress, s.deps.Repo, s.addr)
	if err != nil {
		s.fail("mark complete", err)
		return
	}
	if !ok {
		s.status = "Lesson complete! Press esc to return to the dashboard."
		return
	}
	s.load(next)
	s.status = "Marked complete."
}

func (s *LessonScreen) activate() tea.Cmd {
	if s.cursor >= len(s.rows) {
		return nil
	}
	r := s.rows[s.cursor]
	s.status = ""

	switch r.kind {
	case rowText, rowFollowUp, rowStepText:
		s.editor = components.NewTextArea(r.placeholder(), r.multiline(), layout.MaxReadingWidth-4)
		s.editor.SetValue(r.text())
		s.editing = true
		return s.editor.Focus()

	case rowOption:
		var err error
		if b := r.field.Exercise.Body.(content.ChoiceBody); b.Multiple {
			err = r.field.Toggle(r.option)
		} else {
			err = r.field.Select(r.option)
		}
		if err != nil {
			s.fail("save choice", err)
		}

	case rowStepOption:
		if err := r.field.SelectStep(r.step.ID, r.option); err != nil {
			s.fail("save choice", err)
		}

	case rowComponent:
		return s.openBoard(r.field)

	case rowLink:
		b := r.field.Exercise.Body.(content.LinkBody)
		s.status = "Open " + b.URL + " in your browser."
	}
	return nil
}

func (s *LessonScreen) openBoard(f *capture.Field) tea.Cmd {
	name := f.Exercise.Body.(content.ComponentBody).Component
	if s.deps.Puzzles == nil {
		s.status = "Interactive activities are unavailable."
		return nil
	}
	b, err := s.deps.Puzzles.Board(name)
	if err != nil {
		s.fail("open "+name, err)
		return nil
	}
	if err := b.Restore(f.Component()); err != nil {
		s.deps.Log.Warn("stored board ignored", "component", name, "error", err)
	}
	bs := board.New(b, f, s.deps.Log)
	return func() tea.Msg { return router.PushScreenMsg{Screen: bs} }
}

func (s *LessonScreen) updateEditor(msg tea.KeyMsg) tea.Cmd {
	r := s.rows[s.cursor]
	key := msg.String()
	if key == "esc" || (key == "enter" && !r.multiline()) {
		s.editing = false
		s.editor.Blur()
		if err := r.field.Flush(); err != nil {
			s.fail("save answer", err)
		}
		return nil
	}

	before := s.editor.Value()
	var cmd tea.Cmd
	s.editor, cmd = s.editor.Update(msg)
	after := s.editor.Value()
	if after == before {
		return cmd
	}

	pending, err := r.setText(after)
	if err != nil {
		s.fail("save answer", err)
		return cmd
	}
	commit := tea.Tick(pending.Buffer.Delay(), func(time.Time) tea.Msg {
		return commitMsg{pending: pending}
	})
	return tea.Batch(cmd, commit)
}

func (s *LessonScreen) pages() []navigation.Address {
	if s.res.Lesson == nil {
		return nil
	}
	return navigation.Pages(s.res.Lesson)
}

func (s *LessonScreen) currentPageIndex() int {
	for i, p := range s.pages() {
		if p == s.addr {
			return i
		}
	}
	return 0
}

func (s *LessonScreen) updateOutline(msg tea.KeyMsg) tea.Cmd {
	pages := s.pages()
	switch msg.String() {
	case "up", "k":
		if s.outlineCursor > 0 {
			s.outlineCursor--
		}
	case "down", "j":
		if s.outlineCursor < len(pages)-1 {
			s.outlineCursor++
		}
	case "enter":
		if s.outlineCursor < len(pages) {
			s.status = ""
			s.load(pages[s.outlineCursor])
		}
	case "esc", "o":
		s.outline = false
	}
	return nil
}

func (s *LessonScreen) Title() string {
	if s.res.Lesson != nil {
		return fmt.Sprintf("Lesson %d", s.res.Lesson.ID)
	}
	if s.res.Title != "" {
		return s.res.Title
	}
	return fmt.Sprintf("Lesson %d", s.addr.LessonID)
}

// KeyHints returns the key binding hints for the footer.
func (s *LessonScreen) KeyHints() []layout.KeyHint {
	switch {
	case s.editing:
		hints := []layout.KeyHint{{Key: "Esc", Description: "Done"}}
		if s.cursor < len(s.rows) && !s.rows[s.cursor].multiline() {
			hints = append(hints, layout.KeyHint{Key: "Enter", Description: "Done"})
		}
		return hints
	case s.outline:
		return []layout.KeyHint{
			{Key: "↑↓", Description: "Navigate"},
			{Key: "Enter", Description: "Open"},
			{Key: "Esc", Description: "Close"},
		}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Move"},
		{Key: "Enter", Description: "Answer"},
		{Key: "C", Description: "Complete"},
		{Key: "N/P", Description: "Next/Prev"},
		{Key: "O", Description: "Outline"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *LessonScreen) View(width, height int) string {
	switch s.res.State {
	case navigation.Loading:
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, theme.Hint.Render("Loading lesson…"))
	case navigation.NotAvailable:
		return placeholder.New(s.Title(), "").View(width, height)
	case navigation.NotFound:
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
			theme.Incorrect.Render("Page not found: "+s.addr.Path()))
	}

	if s.outline {
		return s.viewOutline(width, height)
	}

	cw := layout.ReadingWidth(width)
	lines := s.pageHeader(cw)

	focusStart, focusEnd := 0, 0
	for i, r := range s.rows {
		editor := ""
		if s.editing && i == s.cursor {
			editor = s.editor.View()
		}
		summary := ""
		if r.kind == rowComponent {
			summary = s.componentSummary(r.field)
		}
		rendered := renderRow(r, i == s.cursor, editor, cw-4, summary)
		if i == s.cursor {
			focusStart, focusEnd = len(lines), len(lines)+len(rendered)
		}
		lines = append(lines, rendered...)
	}

	footer := s.footer(cw)
	bodyHeight := height - len(footer)
	visible, offset := layout.ScrollWindow(lines, s.offset, focusStart, focusEnd, bodyHeight)
	s.offset = offset

	for len(visible) < bodyHeight {
		visible = append(visible, "")
	}
	body := strings.Join(append(visible, footer...), "\n")
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, lipgloss.NewStyle().Width(cw).Render(body))
}

func (s *LessonScreen) pageHeader(width int) []string {
	var lines []string
	l := s.res.Lesson

	crumb := fmt.Sprintf("Lesson %d · %s", l.ID, l.Title)
	if s.res.SubLesson != nil && s.res.Activity != nil {
		crumb += " › " + s.res.SubLesson.Title
	}
	lines = append(lines, theme.Subtitle.Render(crumb))

	var title, meta, body string
	if a := s.res.Activity; a != nil {
		title, meta, body = a.Title, pageMeta(a), a.Content
	} else if sub := s.res.SubLesson; sub != nil {
		title, meta, body = sub.Title, sub.Duration, sub.Content
	}

	heading := theme.Title.Render(title)
	if s.pageCompleted() {
		heading += "  " + theme.Complete.Render("✓ Completed")
	}
	lines = append(lines, heading)
	if meta != "" {
		lines = append(lines, theme.Hint.Render(meta))
	}
	if body != "" {
		lines = append(lines, "")
		lines = append(lines, strings.Split(lipgloss.NewStyle().Width(width).Foreground(theme.Text).Render(body), "\n")...)
	}
	return lines
}

func (s *LessonScreen) footer(width int) []string {
	_, hasPrev := navigation.Previous(s.deps.Repo, s.addr)
	_, hasNext := navigation.Next(s.deps.Repo, s.addr)

	completeLabel := "Complete & continue"
	if !hasNext {
		completeLabel = "Complete lesson"
	}
	buttons := lipgloss.JoinHorizontal(lipgloss.Center,
		components.NewButton("Previous", hasPrev).View(), " ",
		components.NewButton(completeLabel, !s.pageCompleted()).View(), " ",
		components.NewButton("Next", hasNext).View(),
	)

	status := ""
	if s.status != "" {
		status = theme.Warning.Render(s.status)
	}
	out := []string{"", status}
	return append(out, strings.Split(buttons, "\n")...)
}

func (s *LessonScreen) componentSummary(f *capture.Field) string {
	name := f.Exercise.Body.(content.ComponentBody).Component
	if s.deps.Puzzles == nil {
		return name
	}
	b, err := s.deps.Puzzles.Board(name)
	if err != nil {
		return name
	}
	_ = b.Restore(f.Component())

	done, need := b.Filled()
	summary := fmt.Sprintf("%s  (%d/%d placed", b.Puzzle().Title, done, need)
	if _, shown := b.Feedback(); shown {
		correct, total := b.Score()
		summary += fmt.Sprintf(", %d/%d correct", correct, total)
	}
	return summary + ")"
}

func (s *LessonScreen) viewOutline(width, height int) string {
	l := s.res.Lesson
	lines := []string{theme.Title.Render(fmt.Sprintf("Lesson %d: %s", l.ID, l.Title)), ""}

	pages := s.pages()
	for i, p := range pages {
		res := navigation.Resolve(s.deps.Repo, nil, p)
		label := pageLabel(l, res.SubLesson, res.Activity)

		mark := "○"
		if s.pageDone(p) {
			mark = theme.Complete.Render("✓")
		}
		prefix := "    "
		style := theme.Unselected
		if i == s.outlineCursor {
			prefix = "  ▸ "
			style = theme.Selected
		}
		if p == s.addr {
			label += "  (current)"
		}
		lines = append(lines, prefix+mark+" "+style.Render(label))
	}

	focus := s.outlineCursor + 2
	visible, _ := layout.ScrollWindow(lines, 0, focus, focus+1, height)
	return lipgloss.PlaceHorizontal(width, lipgloss.Center,
		lipgloss.NewStyle().Width(layout.ReadingWidth(width)).Render(strings.Join(visible, "\n")))
}

func (s *LessonScreen) pageDone(p navigation.Address) bool {
	if s.deps.Progress == nil {
		return false
	}
	if p.ActivityID == "" {
		return s.deps.Progress.SubLessonCompleted(p.LessonID, p.SubLessonID)
	}
	ref, err := p.Ref()
	if err != nil {
		return false
	}
	return s.deps.Progress.ActivityCompleted(p.LessonID, ref)
}
