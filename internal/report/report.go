// Package report renders the course progress report: every authored lesson
// with its completion count and the learner's answers.
package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/abhisek/changeagent/internal/content"
	"github.com/abhisek/changeagent/internal/matching"
	"github.com/abhisek/changeagent/internal/progress"
)

const (
	notAnswered    = "Not yet answered"
	interactive    = "Interactive exercise, open it in the course to work on it."
	headerTitle    = "AI-Native Change Agent"
	headerSubtitle = "Course Progress Report"
)

// Report is a rendered-ready view of the learner's progress.
type Report struct {
	Title    string
	Subtitle string
	Date     string
	Overall  int
	Lessons  []Lesson
}

// Lesson is one lesson section.
type Lesson struct {
	ID        int
	Title     string
	Completed int
	Total     int
	Sections  []Section
}

// Complete reports whether every unit of the lesson is done.
func (l Lesson) Complete() bool {
	return l.Total > 0 && l.Completed == l.Total
}

// Section is an activity or a sub-lesson heading with its entries.
type Section struct {
	Number    string
	Title     string
	Meta      string
	Complete  bool
	Heading   bool
	Exercises []Entry
}

// Entry is one exercise and its rendered answer lines.
type Entry struct {
	Index    int
	Label    string
	Answer   []string
	FollowUp string
}

// Build assembles the report from content and progress. puzzles may be nil,
// in which case component answers are not summarised.
func Build(store *progress.Store, puzzles *matching.Registry, now time.Time) *Report {
	repo := store.Content()
	r := &Report{
		Title:    headerTitle,
		Subtitle: headerSubtitle,
		Date:     now.Format("Monday, January 2, 2006"),
		Overall:  store.OverallPercent(),
	}
	b := builder{store: store, puzzles: puzzles}

	for _, l := range repo.Lessons() {
		done, total := store.LessonUnits(l.ID)
		lr := Lesson{ID: l.ID, Title: l.Title, Completed: done, Total: total}

		for i := range l.SubLessons {
			sub := &l.SubLessons[i]
			lr.Sections = append(lr.Sections, Section{
				Number:    sub.ID,
				Title:     sub.Title,
				Meta:      sub.Duration,
				Heading:   true,
				Complete:  store.SubLessonCompleted(l.ID, sub.ID),
				Exercises: b.entries(l.ID, progress.SubLessonRef(sub.ID), sub.Exercises),
			})
			for j := range sub.Activities {
				a := &sub.Activities[j]
				ref := progress.NestedActivityRef(sub.ID, a.ID)
				lr.Sections = append(lr.Sections, b.activity(l.ID, ref, a, fmt.Sprintf("%s.%d", sub.ID, j+1)))
			}
		}
		for j := range l.Activities {
			a := &l.Activities[j]
			lr.Sections = append(lr.Sections, b.activity(l.ID, progress.ActivityRef(a.ID), a, fmt.Sprintf("%d.%d", l.ID, j+1)))
		}
		r.Lessons = append(r.Lessons, lr)
	}
	return r
}

type builder struct {
	store   *progress.Store
	puzzles *matching.Registry
}

func (b builder) activity(lessonID int, ref progress.ContainerRef, a *content.Activity, number string) Section {
	var meta []string
	if a.Type != "" {
		meta = append(meta, strings.ReplaceAll(string(a.Type), "-", " "))
	}
	if a.Duration != "" {
		meta = append(meta, a.Duration)
	}
	return Section{
		Number:    number,
		Title:     a.Title,
		Meta:      strings.Join(meta, " • "),
		Complete:  b.store.ActivityCompleted(lessonID, ref),
		Exercises: b.entries(lessonID, ref, a.Exercises),
	}
}

func (b builder) entries(lessonID int, ref progress.ContainerRef, exercises []content.Exercise) []Entry {
	var out []Entry
	for i := range exercises {
		ex := &exercises[i]
		e := Entry{Index: i + 1, Label: ex.Label}
		ans, _ := b.store.ExerciseAnswer(lessonID, ref, ex.ID)
		e.Answer = b.answerLines(ex, ans)
		if ans != nil && ans.FollowUpAnswer != nil && strings.TrimSpace(*ans.FollowUpAnswer) != "" {
			e.FollowUp = *ans.FollowUpAnswer
		}
		out = append(out, e)
	}
	return out
}

func (b builder) answerLines(ex *content.Exercise, ans *progress.ExerciseAnswer) []string {
	switch body := ex.Body.(type) {
	case content.LinkBody:
		text := body.Text
		if text == "" {
			text = body.URL
		}
		return []string{text + " <" + body.URL + ">"}
	case content.ComponentBody:
		return b.componentLines(body.Component, ans)
	case content.StepsBody:
		var lines []string
		for _, st := range body.Steps {
			v := progress.Value{}
			if ans != nil {
				v = ans.StepAnswers[st.ID]
			}
			lines = append(lines, st.Label+": "+firstOr(valueLines(v), notAnswered))
		}
		return lines
	case content.ChoiceBody:
		if ans == nil {
			return []string{notAnswered}
		}
		if items := valueLines(ans.Answer); len(items) > 0 {
			for i := range items {
				items[i] = "• " + items[i]
			}
			return items
		}
		return []string{notAnswered}
	default:
		if ans == nil {
			return []string{notAnswered}
		}
		if lines := valueLines(ans.Answer); len(lines) > 0 {
			return lines
		}
		return []string{notAnswered}
	}
}

func (b builder) componentLines(component string, ans *progress.ExerciseAnswer) []string {
	if ans == nil || ans.Answer.IsZero() || b.puzzles == nil {
		return []string{interactive}
	}
	board, err := b.puzzles.Board(component)
	if err != nil || board.Restore(ans.Answer) != nil {
		return []string{interactive}
	}

	var lines []string
	for _, t := range board.Puzzle().Targets {
		var names []string
		for _, it := range board.Placed(t.ID) {
			names = append(names, it.Title())
		}
		if len(names) == 0 {
			continue
		}
		lines = append(lines, t.Title()+": "+strings.Join(names, ", "))
	}
	if len(lines) == 0 {
		return []string{interactive}
	}
	if _, checked := board.Feedback(); checked {
		correct, total := board.Score()
		lines = append(lines, fmt.Sprintf("Score: %d/%d", correct, total))
	}
	return lines
}

// valueLines flattens a stored answer: a string, a list of strings or, for
// anything else, its sorted top-level keys.
func valueLines(v progress.Value) []string {
	if v.IsZero() {
		return nil
	}
	if s, ok := v.AsText(); ok {
		if strings.TrimSpace(s) == "" {
			return nil
		}
		return []string{s}
	}
	if items, ok := v.Strings(); ok {
		return items
	}
	var m map[string]any
	if v.Decode(&m) == nil {
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var lines []string
		for _, k := range keys {
			lines = append(lines, fmt.Sprintf("%s: %v", k, m[k]))
		}
		return lines
	}
	return []string{string(v.Raw())}
}

func firstOr(lines []string, def string) string {
	if len(lines) == 0 {
		return def
	}
	return strings.Join(lines, ", ")
}
