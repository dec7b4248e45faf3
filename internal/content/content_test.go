package content

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadEmbedded(t *testing.T) *Repository {
	t.Helper()
	r, err := Load()
	require.NoError(t, err)
	return r
}

func TestLoad_Embedded(t *testing.T) {
	r := loadEmbedded(t)

	course := r.Course()
	assert.Equal(t, "AI-Native Change Agent", course.Title)
	assert.Equal(t, 10, course.TotalLessons)

	lessons := r.Lessons()
	require.Len(t, lessons, 10)
	for i, l := range lessons {
		assert.Equal(t, i+1, l.ID, "lessons sorted by ID")
	}
}

func TestLessonShapes(t *testing.T) {
	r := loadEmbedded(t)

	tests := []struct {
		id         int
		structured bool
		trailing   bool
		subs       int
		activities int
	}{
		{1, true, false, 4, 0},
		{2, false, false, 0, 4},
		{5, true, true, 2, 1},
		{6, true, false, 6, 0},
		{10, false, false, 0, 1},
	}
	for _, tt := range tests {
		l, ok := r.Lesson(tt.id)
		require.True(t, ok, "lesson %d", tt.id)
		assert.Equal(t, tt.structured, l.Structured(), "lesson %d structured", tt.id)
		assert.Equal(t, tt.trailing, l.HasTrailingActivities(), "lesson %d trailing", tt.id)
		assert.Len(t, l.SubLessons, tt.subs, "lesson %d sub-lessons", tt.id)
		assert.Len(t, l.Activities, tt.activities, "lesson %d activities", tt.id)
	}
}

func TestExerciseKinds(t *testing.T) {
	r := loadEmbedded(t)

	sub, ok := r.SubLesson(1, "1.2")
	require.True(t, ok)
	ex, ok := sub.Exercise("1.2.1")
	require.True(t, ok)
	assert.Equal(t, KindMultiStep, ex.Kind())
	steps := ex.Body.(StepsBody)
	require.Len(t, steps.Steps, 3)
	assert.Equal(t, StepText, steps.Steps[0].Kind)
	assert.Equal(t, StepRadio, steps.Steps[1].Kind)
	assert.Equal(t, []string{"Value Gap", "POC Graveyard", "Hype vs. Reality"}, steps.Steps[1].Options)

	act, ok := r.Activity(2, "", "activity-2")
	require.True(t, ok)
	ex, ok = act.Exercise("2.2.1")
	require.True(t, ok)
	assert.Equal(t, KindComponent, ex.Kind())
	assert.Equal(t, "MatchTheMethodDragDrop", ex.Body.(ComponentBody).Component)

	act, ok = r.Activity(5, "5.1", "5.1.2")
	require.True(t, ok)
	ex, ok = act.Exercise("5.1.2.1")
	require.True(t, ok)
	assert.Equal(t, KindRadioWithText, ex.Kind())

	act, ok = r.Activity(2, "", "activity-1")
	require.True(t, ok)
	assert.Equal(t, KindTextarea, act.Exercises[0].Kind())
}

func TestActivityLookupMisses(t *testing.T) {
	r := loadEmbedded(t)

	_, ok := r.Activity(99, "", "activity-1")
	assert.False(t, ok)
	_, ok = r.Activity(5, "9.9", "5.1.1")
	assert.False(t, ok)
	_, ok = r.Activity(5, "5.1", "nope")
	assert.False(t, ok)
	_, ok = r.SubLesson(2, "2.1")
	assert.False(t, ok, "flat lesson has no sub-lessons")
}

func TestComponents(t *testing.T) {
	r := loadEmbedded(t)
	assert.Equal(t, []string{
		"MatchTheMethodDragDrop",
		"NinetyDayDashDragDrop",
		"OperationalDebtDragDrop",
		"PatternMatchingDragDrop",
		"RiskRadarDragDrop",
		"StakeholderDragDrop",
	}, r.Components())
}

const testCourse = `
title: Test Course
totalLessons: 2
lessons:
  - id: 1
    title: One
  - id: 2
    title: Two
`

func TestLoadFS_UnknownExerciseType(t *testing.T) {
	fsys := fstest.MapFS{
		"d/course.yaml": {Data: []byte(testCourse)},
		"d/lesson-1.yaml": {Data: []byte(`
id: 1
title: One
activities:
  - id: a
    exercises:
      - id: e
        type: slider
`)},
	}
	_, err := LoadFS(fsys, "d")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown type "slider"`)
}

func TestLoadFS_DefaultsAndLinks(t *testing.T) {
	fsys := fstest.MapFS{
		"d/course.yaml": {Data: []byte(testCourse)},
		"d/lesson-1.yaml": {Data: []byte(`
id: 1
title: One
activities:
  - id: a
    exercises:
      - id: pick
        type: checkbox
        options: [x, y, z]
        answer: [x, z]
      - id: note
        type: text
        answer: hello
      - id: read
        type: link
        link: https://example.com/guide
        linkText: Guide
`)},
	}
	r, err := LoadFS(fsys, "d")
	require.NoError(t, err)

	a, ok := r.Activity(1, "", "a")
	require.True(t, ok)

	pick, _ := a.Exercise("pick")
	assert.Equal(t, KindCheckbox, pick.Kind())
	assert.Equal(t, []string{"x", "z"}, pick.Body.(ChoiceBody).Defaults)

	note, _ := a.Exercise("note")
	assert.Equal(t, "hello", note.Body.(TextBody).Default)

	read, _ := a.Exercise("read")
	assert.Equal(t, KindLink, read.Kind())
	assert.Equal(t, LinkBody{URL: "https://example.com/guide", Text: "Guide"}, read.Body)

	title, ok := r.Course().LessonTitle(2)
	assert.True(t, ok)
	assert.Equal(t, "Two", title)
}

func TestValidate_CollectsAllProblems(t *testing.T) {
	lessons := []Lesson{
		{
			ID: 1,
			Activities: []Activity{
				{ID: "a", Exercises: []Exercise{
					{ID: "e", Body: ChoiceBody{}},
					{ID: "e", Body: TextBody{}},
				}},
				{ID: "a"},
			},
		},
		{ID: 2},
	}
	_, err := New(Course{TotalLessons: 2}, lessons)
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, "choice exercise has no options")
	assert.Contains(t, msg, `duplicate lesson 1 activity "a" exercise ID: "e"`)
	assert.Contains(t, msg, `duplicate lesson 1 activity ID: "a"`)
	assert.Contains(t, msg, "lesson 2: has neither sub-lessons nor activities")
}

func TestUnits(t *testing.T) {
	r := loadEmbedded(t)

	l5, _ := r.Lesson(5)
	assert.Equal(t, []Unit{{SubLessonID: "5.1"}, {SubLessonID: "5.2"}, {ActivityID: "5.7"}}, l5.Units())

	l2, _ := r.Lesson(2)
	units := l2.Units()
	require.Len(t, units, 4)
	assert.Equal(t, "activity-1", units[0].ActivityID)
	assert.Empty(t, units[0].SubLessonID)
}

func TestExerciseLookup(t *testing.T) {
	r := loadEmbedded(t)

	e, ok := r.Exercise(1, "1.1", "", "1.1.1")
	require.True(t, ok)
	assert.Equal(t, KindTextarea, e.Kind())

	e, ok = r.Exercise(5, "5.1", "5.1.2", "5.1.2.1")
	require.True(t, ok)
	assert.Equal(t, KindRadioWithText, e.Kind())

	e, ok = r.Exercise(2, "", "activity-2", "2.2.1")
	require.True(t, ok)
	assert.Equal(t, KindComponent, e.Kind())

	_, ok = r.Exercise(2, "", "activity-2", "missing")
	assert.False(t, ok)
	_, ok = r.Exercises(1, "9.9", "")
	assert.False(t, ok)
}
