package navigation

import (
	"context"
	"fmt"

	"github.com/abhisek/changeagent/internal/content"
	"github.com/abhisek/changeagent/internal/progress"
)

// Pages lists the leaf pages of a lesson in reading order: nested
// activities (or the sub-lesson itself when it has none), then direct
// activities.
func Pages(l *content.Lesson) []Address {
	var pages []Address
	for i := range l.SubLessons {
		sub := &l.SubLessons[i]
		if len(sub.Activities) == 0 {
			pages = append(pages, Address{LessonID: l.ID, SubLessonID: sub.ID})
			continue
		}
		for _, a := range sub.Activities {
			pages = append(pages, Address{LessonID: l.ID, SubLessonID: sub.ID, ActivityID: a.ID})
		}
	}
	for _, a := range l.Activities {
		pages = append(pages, Address{LessonID: l.ID, ActivityID: a.ID})
	}
	return pages
}

func indexOf(repo *content.Repository, addr Address) ([]Address, int) {
	l, ok := repo.Lesson(addr.LessonID)
	if !ok {
		return nil, -1
	}
	pages := Pages(l)
	for i, p := range pages {
		if p == addr {
			return pages, i
		}
	}
	return pages, -1
}

// Next returns the page after addr within its lesson.
func Next(repo *content.Repository, addr Address) (Address, bool) {
	pages, i := indexOf(repo, addr)
	if i < 0 || i+1 >= len(pages) {
		return Address{}, false
	}
	return pages[i+1], true
}

// Previous returns the page before addr within its lesson.
func Previous(repo *content.Repository, addr Address) (Address, bool) {
	pages, i := indexOf(repo, addr)
	if i <= 0 {
		return Address{}, false
	}
	return pages[i-1], true
}

// Marker records completion flags. *progress.Store satisfies it.
type Marker interface {
	MarkSubLessonComplete(ctx context.Context, lessonID int, subID string) error
	MarkActivityComplete(ctx context.Context, lessonID int, ref progress.ContainerRef) error
}

// Complete marks the page at addr complete and returns the next page, if
// any. Finishing the last activity of a sub-lesson also completes the
// sub-lesson.
func Complete(ctx context.Context, m Marker, repo *content.Repository, addr Address) (Address, bool, error) {
	res := Resolve(repo, nil, addr)
	switch res.State {
	case ShowSubLesson:
		if err := m.MarkSubLessonComplete(ctx, addr.LessonID, addr.SubLessonID); err != nil {
			return Address{}, false, err
		}
	case ShowActivity:
		ref, err := addr.Ref()
		if err != nil {
			return Address{}, false, err
		}
		if err := m.MarkActivityComplete(ctx, addr.LessonID, ref); err != nil {
			return Address{}, false, err
		}
		if sub := res.SubLesson; sub != nil && sub.Activities[len(sub.Activities)-1].ID == addr.ActivityID {
			if err := m.MarkSubLessonComplete(ctx, addr.LessonID, sub.ID); err != nil {
				return Address{}, false, err
			}
		}
	default:
		return Address{}, false, fmt.Errorf("complete %s: page is %s", addr.Path(), res.State)
	}

	next, ok := Next(repo, addr)
	return next, ok, nil
}
