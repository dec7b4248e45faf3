package navigation

import (
	"github.com/abhisek/changeagent/internal/content"
	"github.com/abhisek/changeagent/internal/progress"
)

// State is the outcome of resolving an address.
type State int

const (
	Loading State = iota
	NotAvailable
	Redirect
	ShowSubLesson
	ShowActivity
	NotFound
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case NotAvailable:
		return "not-available"
	case Redirect:
		return "redirect"
	case ShowSubLesson:
		return "show-sub-lesson"
	case ShowActivity:
		return "show-activity"
	case NotFound:
		return "not-found"
	}
	return "unknown"
}

// Address identifies a page within a lesson. Empty SubLessonID and
// ActivityID address the lesson itself.
type Address struct {
	LessonID    int
	SubLessonID string
	ActivityID  string
}

// Ref returns the progress container for the page.
func (a Address) Ref() (progress.ContainerRef, error) {
	return progress.Ref(a.SubLessonID, a.ActivityID)
}

// Result describes what to show for an address. For Redirect, Target is
// where to go; otherwise it echoes the resolved address.
type Result struct {
	State     State
	Target    Address
	Title     string
	Lesson    *content.Lesson
	SubLesson *content.SubLesson
	Activity  *content.Activity
}

// Completion reports sub-lesson completion. *progress.Store satisfies it.
type Completion interface {
	SubLessonCompleted(lessonID int, subID string) bool
}

// Resolve decides what the lesson screen shows for addr. A nil repository
// means content has not been loaded yet.
func Resolve(repo *content.Repository, done Completion, addr Address) Result {
	if repo == nil {
		return Result{State: Loading, Target: addr}
	}

	lesson, ok := repo.Lesson(addr.LessonID)
	if !ok {
		title, _ := repo.Course().LessonTitle(addr.LessonID)
		return Result{State: NotAvailable, Target: addr, Title: title}
	}
	res := Result{Target: addr, Lesson: lesson, Title: lesson.Title}
	nothingGiven := addr.SubLessonID == "" && addr.ActivityID == ""

	if nothingGiven && lesson.HasTrailingActivities() && allSubLessonsDone(lesson, done) {
		res.State = Redirect
		res.Target = Address{LessonID: lesson.ID, ActivityID: lesson.Activities[0].ID}
		return res
	}

	if nothingGiven && lesson.Structured() {
		res.State = Redirect
		res.Target = firstPageOf(lesson.ID, &lesson.SubLessons[0])
		return res
	}

	if addr.SubLessonID != "" {
		sub, ok := lesson.SubLesson(addr.SubLessonID)
		if !ok {
			res.State = NotFound
			return res
		}
		res.SubLesson = sub
		if addr.ActivityID != "" {
			act, ok := sub.Activity(addr.ActivityID)
			if !ok {
				res.State = NotFound
				return res
			}
			res.Activity = act
			res.State = ShowActivity
			return res
		}
		if len(sub.Activities) > 0 {
			res.State = Redirect
			res.Target = firstPageOf(lesson.ID, sub)
			return res
		}
		res.State = ShowSubLesson
		return res
	}

	if addr.ActivityID == "" {
		if len(lesson.Activities) == 0 {
			res.State = NotFound
			return res
		}
		res.State = Redirect
		res.Target = Address{LessonID: lesson.ID, ActivityID: lesson.Activities[0].ID}
		return res
	}

	act, ok := lesson.Activity(addr.ActivityID)
	if !ok {
		res.State = NotFound
		return res
	}
	res.Activity = act
	res.State = ShowActivity
	return res
}

func allSubLessonsDone(l *content.Lesson, done Completion) bool {
	if done == nil {
		return false
	}
	for _, s := range l.SubLessons {
		if !done.SubLessonCompleted(l.ID, s.ID) {
			return false
		}
	}
	return true
}

// firstPageOf is the sub-lesson's first activity, or the sub-lesson itself
// when it holds exercises directly.
func firstPageOf(lessonID int, sub *content.SubLesson) Address {
	if len(sub.Activities) > 0 {
		return Address{LessonID: lessonID, SubLessonID: sub.ID, ActivityID: sub.Activities[0].ID}
	}
	return Address{LessonID: lessonID, SubLessonID: sub.ID}
}
