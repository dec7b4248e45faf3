package progress

import (
	"math"

	"github.com/abhisek/changeagent/internal/content"
)

// LessonUnits returns how many completion units of the lesson are done and
// how many there are. Unknown lessons report 0, 0.
func (s *Store) LessonUnits(lessonID int) (done, total int) {
	if s.content == nil {
		return 0, 0
	}
	l, ok := s.content.Lesson(lessonID)
	if !ok {
		return 0, 0
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.record.unitsDone(l), len(l.Units())
}

func (r *Record) unitsDone(l *content.Lesson) int {
	done := 0
	for _, u := range l.Units() {
		if u.SubLessonID != "" {
			if sub := r.subLesson(l.ID, u.SubLessonID); sub != nil && sub.Completed {
				done++
			}
			continue
		}
		if a := r.activity(l.ID, ActivityRef(u.ActivityID)); a != nil && a.Completed {
			done++
		}
	}
	return done
}

// LessonPercent is the rounded share of completed units in the lesson.
func (s *Store) LessonPercent(lessonID int) int {
	done, total := s.LessonUnits(lessonID)
	return percent(float64(done), float64(total))
}

// OverallPercent averages the lesson percentages over the course's total
// lesson count. Lessons that are listed but not authored count as 0.
func (s *Store) OverallPercent() int {
	if s.content == nil {
		return 0
	}
	total := s.content.Course().TotalLessons
	if n := len(s.content.Lessons()); total < n {
		total = n
	}
	if total == 0 {
		return 0
	}

	var sum float64
	for _, l := range s.content.Lessons() {
		done, units := s.LessonUnits(l.ID)
		if units > 0 {
			sum += float64(done) / float64(units)
		}
	}
	return percent(sum, float64(total))
}

func percent(part, whole float64) int {
	if whole <= 0 {
		return 0
	}
	return int(math.Round(100 * part / whole))
}
