package progress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/abhisek/changeagent/internal/content"
	"github.com/abhisek/changeagent/internal/platform/logger"
)

// DocumentKey is the key the progress record is stored under.
const DocumentKey = "ai-change-agent-course-progress"

// ErrNotActivity is returned when an activity operation is given a
// sub-lesson reference.
var ErrNotActivity = errors.New("container reference is not an activity")

// Documents is the durable key/value backend. store.DocumentRepo satisfies it.
type Documents interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
}

// Store owns the learner's progress record. Every mutation is written
// through to Documents before it returns.
type Store struct {
	mu      sync.RWMutex
	docs    Documents
	content *content.Repository
	log     *logger.Logger
	record  Record
}

// NewStore loads the saved record once. Unreadable or malformed data is
// logged and treated as no prior progress.
func NewStore(ctx context.Context, docs Documents, repo *content.Repository, log *logger.Logger) (*Store, error) {
	if log == nil {
		log = logger.Nop()
	}
	s := &Store{docs: docs, content: repo, log: log, record: newRecord()}

	data, ok, err := docs.Get(ctx, DocumentKey)
	if err != nil {
		return nil, fmt.Errorf("load progress: %w", err)
	}
	if !ok {
		return s, nil
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		log.Warn("saved progress is malformed, starting fresh", "error", err)
		return s, nil
	}
	if rec.Lessons == nil {
		rec.Lessons = make(map[int]*LessonProgress)
	}
	if rec.Version == "" {
		rec.Version = RecordVersion
	}
	s.record = rec
	return s, nil
}

// persist writes the current record. Callers hold s.mu.
func (s *Store) persist(ctx context.Context) error {
	data, err := json.Marshal(s.record)
	if err != nil {
		return fmt.Errorf("encode progress: %w", err)
	}
	if err := s.docs.Put(ctx, DocumentKey, data); err != nil {
		s.log.Error("saving progress failed", "error", err)
		return fmt.Errorf("save progress: %w", err)
	}
	return nil
}

// UpdateExerciseAnswer upserts the answer and follow-up answer for an
// exercise, creating missing parents. Step answers are kept.
func (s *Store) UpdateExerciseAnswer(ctx context.Context, lessonID int, ref ContainerRef, exerciseID string, answer Value, followUp *string) error {
	if !ref.valid() {
		return fmt.Errorf("update answer %s: %w", exerciseID, errEmptyRef)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.record.ensureExercise(lessonID, ref, exerciseID)
	e.Answer = answer
	if followUp != nil {
		f := *followUp
		e.FollowUpAnswer = &f
	} else {
		e.FollowUpAnswer = nil
	}
	return s.persist(ctx)
}

// UpdateStepAnswer upserts one step's answer of a multi-step exercise.
func (s *Store) UpdateStepAnswer(ctx context.Context, lessonID int, ref ContainerRef, exerciseID, stepID string, answer Value) error {
	if !ref.valid() {
		return fmt.Errorf("update step %s/%s: %w", exerciseID, stepID, errEmptyRef)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.record.ensureExercise(lessonID, ref, exerciseID)
	if e.StepAnswers == nil {
		e.StepAnswers = make(map[string]Value)
	}
	e.StepAnswers[stepID] = answer
	return s.persist(ctx)
}

// MarkSubLessonComplete sets the sub-lesson's completed flag.
func (s *Store) MarkSubLessonComplete(ctx context.Context, lessonID int, subID string) error {
	if subID == "" {
		return fmt.Errorf("mark sub-lesson complete: %w", errEmptyRef)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.record.ensureSubLesson(lessonID, subID).Completed = true
	return s.persist(ctx)
}

// MarkActivityComplete sets the activity's completed flag.
func (s *Store) MarkActivityComplete(ctx context.Context, lessonID int, ref ContainerRef) error {
	return s.setActivity(ctx, lessonID, ref, true)
}

// MarkActivityIncomplete clears the activity's completed flag.
func (s *Store) MarkActivityIncomplete(ctx context.Context, lessonID int, ref ContainerRef) error {
	return s.setActivity(ctx, lessonID, ref, false)
}

func (s *Store) setActivity(ctx context.Context, lessonID int, ref ContainerRef, completed bool) error {
	if !ref.IsActivity() || !ref.valid() {
		return fmt.Errorf("mark %s: %w", ref, ErrNotActivity)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.record.ensureActivity(lessonID, ref).Completed = completed
	return s.persist(ctx)
}

// ExerciseAnswer returns a copy of the stored answer, if any. Authored
// defaults are not substituted.
func (s *Store) ExerciseAnswer(lessonID int, ref ContainerRef, exerciseID string) (*ExerciseAnswer, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.record.exercises(lessonID, ref)[exerciseID]
	if !ok || e == nil {
		return nil, false
	}
	return e.clone(), true
}

// SubLessonCompleted reports the sub-lesson's completed flag.
func (s *Store) SubLessonCompleted(lessonID int, subID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sub := s.record.subLesson(lessonID, subID)
	return sub != nil && sub.Completed
}

// ActivityCompleted reports the activity's completed flag.
func (s *Store) ActivityCompleted(lessonID int, ref ContainerRef) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a := s.record.activity(lessonID, ref)
	return a != nil && a.Completed
}

// Snapshot returns a deep copy of the record.
func (s *Store) Snapshot() Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.record.Clone()
}

// Content returns the content repository the store computes percentages
// against.
func (s *Store) Content() *content.Repository {
	return s.content
}
