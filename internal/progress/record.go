package progress

import "maps"

// RecordVersion is the format version written into every saved record.
// Imports are accepted when their major version matches.
const RecordVersion = "v1.0.0"

// Record is the learner's progress: answers and completion flags keyed by
// lesson, then sub-lesson or activity, then exercise.
type Record struct {
	Version string                  `json:"version,omitempty"`
	Lessons map[int]*LessonProgress `json:"lessons"`
}

// LessonProgress holds the progress of one lesson.
type LessonProgress struct {
	SubLessons map[string]*SubLessonProgress `json:"subLessons,omitempty"`
	Activities map[string]*ActivityProgress  `json:"activities,omitempty"`
}

// SubLessonProgress holds a sub-lesson's own completion flag, the progress
// of its nested activities, and answers to exercises placed directly on it.
type SubLessonProgress struct {
	Completed  bool                         `json:"completed"`
	Activities map[string]*ActivityProgress `json:"activities,omitempty"`
	Exercises  map[string]*ExerciseAnswer   `json:"exercises,omitempty"`
}

// ActivityProgress holds an activity's completion flag and answers.
type ActivityProgress struct {
	Completed bool                       `json:"completed"`
	Exercises map[string]*ExerciseAnswer `json:"exercises,omitempty"`
}

// ExerciseAnswer is the learner's stored answer. Answer and StepAnswers are
// independent and may coexist.
type ExerciseAnswer struct {
	Answer         Value            `json:"answer"`
	FollowUpAnswer *string          `json:"followUpAnswer,omitempty"`
	StepAnswers    map[string]Value `json:"stepAnswers,omitempty"`
}

func newRecord() Record {
	return Record{Version: RecordVersion, Lessons: make(map[int]*LessonProgress)}
}

// Clone returns a deep copy of the record.
func (r Record) Clone() Record {
	out := Record{Version: r.Version, Lessons: make(map[int]*LessonProgress, len(r.Lessons))}
	for id, l := range r.Lessons {
		out.Lessons[id] = l.clone()
	}
	return out
}

func (l *LessonProgress) clone() *LessonProgress {
	if l == nil {
		return nil
	}
	out := &LessonProgress{}
	if l.SubLessons != nil {
		out.SubLessons = make(map[string]*SubLessonProgress, len(l.SubLessons))
		for id, s := range l.SubLessons {
			out.SubLessons[id] = s.clone()
		}
	}
	out.Activities = cloneActivities(l.Activities)
	return out
}

func (s *SubLessonProgress) clone() *SubLessonProgress {
	if s == nil {
		return nil
	}
	return &SubLessonProgress{
		Completed:  s.Completed,
		Activities: cloneActivities(s.Activities),
		Exercises:  cloneExercises(s.Exercises),
	}
}

func cloneActivities(in map[string]*ActivityProgress) map[string]*ActivityProgress {
	if in == nil {
		return nil
	}
	out := make(map[string]*ActivityProgress, len(in))
	for id, a := range in {
		if a == nil {
			out[id] = nil
			continue
		}
		out[id] = &ActivityProgress{Completed: a.Completed, Exercises: cloneExercises(a.Exercises)}
	}
	return out
}

func cloneExercises(in map[string]*ExerciseAnswer) map[string]*ExerciseAnswer {
	if in == nil {
		return nil
	}
	out := make(map[string]*ExerciseAnswer, len(in))
	for id, e := range in {
		out[id] = e.clone()
	}
	return out
}

func (e *ExerciseAnswer) clone() *ExerciseAnswer {
	if e == nil {
		return nil
	}
	out := &ExerciseAnswer{Answer: e.Answer, StepAnswers: maps.Clone(e.StepAnswers)}
	if e.FollowUpAnswer != nil {
		f := *e.FollowUpAnswer
		out.FollowUpAnswer = &f
	}
	return out
}

// exercises returns the exercise map addressed by ref, or nil.
func (r *Record) exercises(lessonID int, ref ContainerRef) map[string]*ExerciseAnswer {
	switch ref.kind {
	case refSubLesson:
		if s := r.subLesson(lessonID, ref.subLessonID); s != nil {
			return s.Exercises
		}
	case refActivity, refNestedActivity:
		if a := r.activity(lessonID, ref); a != nil {
			return a.Exercises
		}
	}
	return nil
}

func (r *Record) subLesson(lessonID int, subID string) *SubLessonProgress {
	l := r.Lessons[lessonID]
	if l == nil {
		return nil
	}
	return l.SubLessons[subID]
}

func (r *Record) activity(lessonID int, ref ContainerRef) *ActivityProgress {
	l := r.Lessons[lessonID]
	if l == nil {
		return nil
	}
	switch ref.kind {
	case refActivity:
		return l.Activities[ref.activityID]
	case refNestedActivity:
		if s := l.SubLessons[ref.subLessonID]; s != nil {
			return s.Activities[ref.activityID]
		}
	}
	return nil
}

// ensureLesson and friends create missing nodes with completed=false.
// Maps are only allocated on the path being written.
func (r *Record) ensureLesson(lessonID int) *LessonProgress {
	if r.Lessons == nil {
		r.Lessons = make(map[int]*LessonProgress)
	}
	l := r.Lessons[lessonID]
	if l == nil {
		l = &LessonProgress{}
		r.Lessons[lessonID] = l
	}
	return l
}

func (r *Record) ensureSubLesson(lessonID int, subID string) *SubLessonProgress {
	l := r.ensureLesson(lessonID)
	if l.SubLessons == nil {
		l.SubLessons = make(map[string]*SubLessonProgress)
	}
	s := l.SubLessons[subID]
	if s == nil {
		s = &SubLessonProgress{}
		l.SubLessons[subID] = s
	}
	return s
}

func (r *Record) ensureActivity(lessonID int, ref ContainerRef) *ActivityProgress {
	var parent *map[string]*ActivityProgress
	switch ref.kind {
	case refActivity:
		parent = &r.ensureLesson(lessonID).Activities
	case refNestedActivity:
		parent = &r.ensureSubLesson(lessonID, ref.subLessonID).Activities
	default:
		return nil
	}
	if *parent == nil {
		*parent = make(map[string]*ActivityProgress)
	}
	a := (*parent)[ref.activityID]
	if a == nil {
		a = &ActivityProgress{}
		(*parent)[ref.activityID] = a
	}
	return a
}

func (r *Record) ensureExercise(lessonID int, ref ContainerRef, exerciseID string) *ExerciseAnswer {
	var parent *map[string]*ExerciseAnswer
	switch ref.kind {
	case refSubLesson:
		parent = &r.ensureSubLesson(lessonID, ref.subLessonID).Exercises
	case refActivity, refNestedActivity:
		parent = &r.ensureActivity(lessonID, ref).Exercises
	default:
		return nil
	}
	if *parent == nil {
		*parent = make(map[string]*ExerciseAnswer)
	}
	e := (*parent)[exerciseID]
	if e == nil {
		e = &ExerciseAnswer{}
		(*parent)[exerciseID] = e
	}
	return e
}
