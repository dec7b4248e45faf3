package capture

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/abhisek/changeagent/internal/content"
	"github.com/abhisek/changeagent/internal/progress"
)

// ErrWrongKind is returned when an input does not apply to the exercise.
var ErrWrongKind = errors.New("input does not apply to this exercise")

// Store is the slice of the progress store the capture layer uses.
// *progress.Store satisfies it.
type Store interface {
	UpdateExerciseAnswer(ctx context.Context, lessonID int, ref progress.ContainerRef, exerciseID string, answer progress.Value, followUp *string) error
	UpdateStepAnswer(ctx context.Context, lessonID int, ref progress.ContainerRef, exerciseID, stepID string, answer progress.Value) error
	ExerciseAnswer(lessonID int, ref progress.ContainerRef, exerciseID string) (*progress.ExerciseAnswer, bool)
}

// Pending identifies a debounced write. Commit is a no-op once a newer
// edit has superseded it.
type Pending struct {
	Buffer *Buffer
	Gen    uint64
}

// Commit writes the pending value if it is still current.
func (p Pending) Commit() error {
	if p.Buffer == nil {
		return nil
	}
	return p.Buffer.CommitIf(p.Gen)
}

// Field captures the answer to one exercise.
type Field struct {
	Exercise *content.Exercise

	answer   *Buffer
	followUp *Buffer
	steps    map[string]*Buffer
}

// NewField builds a field seeded from the stored answer, falling back to
// the authored default.
func NewField(ctx context.Context, store Store, lessonID int, ref progress.ContainerRef, ex *content.Exercise, opts ...Option) *Field {
	f := &Field{Exercise: ex}
	stored, _ := store.ExerciseAnswer(lessonID, ref, ex.ID)
	if stored == nil {
		stored = &progress.ExerciseAnswer{}
	}

	saveAnswer := func(v progress.Value) error {
		var follow *string
		if f.followUp != nil {
			if s, ok := f.followUp.Value().AsText(); ok {
				follow = &s
			}
		}
		return store.UpdateExerciseAnswer(ctx, lessonID, ref, ex.ID, v, follow)
	}

	switch b := ex.Body.(type) {
	case content.TextBody:
		initial := stored.Answer
		if initial.IsZero() && b.Default != "" {
			initial = progress.Text(b.Default)
		}
		f.answer = NewBuffer(initial, saveAnswer, opts...)

	case content.ChoiceBody:
		initial := stored.Answer
		if initial.IsZero() && len(b.Defaults) > 0 {
			if b.Multiple {
				initial = progress.List(b.Defaults...)
			} else {
				initial = progress.Text(b.Defaults[0])
			}
		}
		f.answer = NewBuffer(initial, saveAnswer, opts...)
		if b.FollowUp != nil {
			var follow progress.Value
			if stored.FollowUpAnswer != nil {
				follow = progress.Text(*stored.FollowUpAnswer)
			}
			f.followUp = NewBuffer(follow, func(progress.Value) error {
				return saveAnswer(f.answer.Value())
			}, opts...)
		}

	case content.StepsBody:
		f.steps = make(map[string]*Buffer, len(b.Steps))
		for _, st := range b.Steps {
			stepID := st.ID
			f.steps[stepID] = NewBuffer(stored.StepAnswers[stepID], func(v progress.Value) error {
				return store.UpdateStepAnswer(ctx, lessonID, ref, ex.ID, stepID, v)
			}, opts...)
		}

	case content.ComponentBody:
		f.answer = NewBuffer(stored.Answer, saveAnswer, opts...)
	}
	return f
}

// Kind is the exercise's type tag.
func (f *Field) Kind() content.Kind {
	return f.Exercise.Kind()
}

// Text returns the current free-text or radio answer.
func (f *Field) Text() string {
	if f.answer == nil {
		return ""
	}
	s, _ := f.answer.Value().AsText()
	return s
}

// Selected returns the current checkbox selection, or the radio choice as a
// one-element list.
func (f *Field) Selected() []string {
	if f.answer == nil {
		return nil
	}
	v := f.answer.Value()
	if items, ok := v.Strings(); ok {
		return items
	}
	if s, ok := v.AsText(); ok && s != "" {
		return []string{s}
	}
	return nil
}

// FollowUp returns the current follow-up text.
func (f *Field) FollowUp() string {
	if f.followUp == nil {
		return ""
	}
	s, _ := f.followUp.Value().AsText()
	return s
}

// Step returns the current answer to a step.
func (f *Field) Step(stepID string) progress.Value {
	if b, ok := f.steps[stepID]; ok {
		return b.Value()
	}
	return progress.Value{}
}

// StepText returns a step's answer as text.
func (f *Field) StepText(stepID string) string {
	s, _ := f.Step(stepID).AsText()
	return s
}

// Component returns the component's opaque state.
func (f *Field) Component() progress.Value {
	if f.answer == nil {
		return progress.Value{}
	}
	return f.answer.Value()
}

// SetText updates a text or textarea answer. The write is debounced.
func (f *Field) SetText(s string) (Pending, error) {
	if _, ok := f.Exercise.Body.(content.TextBody); !ok {
		return Pending{}, fmt.Errorf("set text on %s exercise %s: %w", f.Kind(), f.Exercise.ID, ErrWrongKind)
	}
	return Pending{Buffer: f.answer, Gen: f.answer.Set(progress.Text(s))}, nil
}

// Select picks a radio option. The write is immediate.
func (f *Field) Select(option string) error {
	b, ok := f.Exercise.Body.(content.ChoiceBody)
	if !ok || b.Multiple {
		return fmt.Errorf("select on %s exercise %s: %w", f.Kind(), f.Exercise.ID, ErrWrongKind)
	}
	return f.answer.Replace(progress.Text(option))
}

// Toggle adds or removes a checkbox option. The write is immediate.
func (f *Field) Toggle(option string) error {
	b, ok := f.Exercise.Body.(content.ChoiceBody)
	if !ok || !b.Multiple {
		return fmt.Errorf("toggle on %s exercise %s: %w", f.Kind(), f.Exercise.ID, ErrWrongKind)
	}
	cur := f.Selected()
	if i := slices.Index(cur, option); i >= 0 {
		cur = slices.Delete(slices.Clone(cur), i, i+1)
	} else {
		cur = append(slices.Clone(cur), option)
	}
	return f.answer.Replace(progress.List(cur...))
}

// SetFollowUp updates the free-text part of a radio-with-text exercise.
// The write is debounced.
func (f *Field) SetFollowUp(s string) (Pending, error) {
	if f.followUp == nil {
		return Pending{}, fmt.Errorf("follow-up on %s exercise %s: %w", f.Kind(), f.Exercise.ID, ErrWrongKind)
	}
	return Pending{Buffer: f.followUp, Gen: f.followUp.Set(progress.Text(s))}, nil
}

// SetStepText updates a free-text step. The write is debounced.
func (f *Field) SetStepText(stepID, s string) (Pending, error) {
	b, ok := f.steps[stepID]
	if !ok {
		return Pending{}, fmt.Errorf("step %q of exercise %s: %w", stepID, f.Exercise.ID, ErrWrongKind)
	}
	return Pending{Buffer: b, Gen: b.Set(progress.Text(s))}, nil
}

// SelectStep picks an option of a choice step. The write is immediate.
func (f *Field) SelectStep(stepID, option string) error {
	b, ok := f.steps[stepID]
	if !ok {
		return fmt.Errorf("step %q of exercise %s: %w", stepID, f.Exercise.ID, ErrWrongKind)
	}
	return b.Replace(progress.Text(option))
}

// SetComponent replaces the component's state wholesale. The write is
// immediate.
func (f *Field) SetComponent(v progress.Value) error {
	if _, ok := f.Exercise.Body.(content.ComponentBody); !ok {
		return fmt.Errorf("component state on %s exercise %s: %w", f.Kind(), f.Exercise.ID, ErrWrongKind)
	}
	return f.answer.Replace(v)
}

// Flush commits every pending edit of the field.
func (f *Field) Flush() error {
	var errs []error
	for _, b := range f.buffers() {
		errs = append(errs, b.Flush())
	}
	return errors.Join(errs...)
}

func (f *Field) buffers() []*Buffer {
	var out []*Buffer
	if f.answer != nil {
		out = append(out, f.answer)
	}
	if f.followUp != nil {
		out = append(out, f.followUp)
	}
	if s, ok := f.Exercise.Body.(content.StepsBody); ok {
		for _, st := range s.Steps {
			out = append(out, f.steps[st.ID])
		}
	}
	return out
}

// Form is the set of fields shown on one page.
type Form struct {
	Fields []*Field
}

// NewForm builds fields for every exercise on a page.
func NewForm(ctx context.Context, store Store, lessonID int, ref progress.ContainerRef, exercises []content.Exercise, opts ...Option) *Form {
	f := &Form{}
	for i := range exercises {
		f.Fields = append(f.Fields, NewField(ctx, store, lessonID, ref, &exercises[i], opts...))
	}
	return f
}

// Field returns the field for an exercise ID.
func (f *Form) Field(exerciseID string) (*Field, bool) {
	for _, fd := range f.Fields {
		if fd.Exercise.ID == exerciseID {
			return fd, true
		}
	}
	return nil, false
}

// Flush commits every pending edit on the page.
func (f *Form) Flush() error {
	var errs []error
	for _, fd := range f.Fields {
		errs = append(errs, fd.Flush())
	}
	return errors.Join(errs...)
}
