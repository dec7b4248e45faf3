package navigation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/changeagent/internal/content"
	"github.com/abhisek/changeagent/internal/progress"
)

// doneSet is a Completion keyed by "lesson/sub".
type doneSet map[string]bool

func (d doneSet) SubLessonCompleted(lessonID int, subID string) bool {
	return d[key(lessonID, subID)]
}

func key(lessonID int, subID string) string {
	return Address{LessonID: lessonID, SubLessonID: subID}.Path()
}

// testRepo: lesson 1 is structured with a trailing reflection, lesson 2 is
// flat, lesson 3 is listed but not authored.
func testRepo(t *testing.T) *content.Repository {
	t.Helper()
	course := content.Course{
		Title:        "Test",
		TotalLessons: 3,
		Lessons: []content.CourseEntry{
			{ID: 1, Title: "One"}, {ID: 2, Title: "Two"}, {ID: 3, Title: "Three"},
		},
	}
	lessons := []content.Lesson{
		{
			ID:    1,
			Title: "One",
			SubLessons: []content.SubLesson{
				{ID: "1.1", Activities: []content.Activity{{ID: "a"}, {ID: "b"}}},
				{ID: "1.2"},
			},
			Activities: []content.Activity{{ID: "wrap-up"}},
		},
		{
			ID:         2,
			Title:      "Two",
			Activities: []content.Activity{{ID: "activity-1"}, {ID: "activity-2"}},
		},
	}
	repo, err := content.New(course, lessons)
	require.NoError(t, err)
	return repo
}

func TestResolve(t *testing.T) {
	repo := testRepo(t)
	allDone := doneSet{key(1, "1.1"): true, key(1, "1.2"): true}

	tests := []struct {
		name   string
		done   doneSet
		addr   Address
		state  State
		target Address
	}{
		{"unauthored lesson", nil, Address{LessonID: 3}, NotAvailable, Address{LessonID: 3}},
		{"unknown lesson", nil, Address{LessonID: 99}, NotAvailable, Address{LessonID: 99}},
		{"structured goes to first page", nil, Address{LessonID: 1}, Redirect, Address{LessonID: 1, SubLessonID: "1.1", ActivityID: "a"}},
		{"finished lesson lands on trailing activity", allDone, Address{LessonID: 1}, Redirect, Address{LessonID: 1, ActivityID: "wrap-up"}},
		{"sub-lesson with activities", nil, Address{LessonID: 1, SubLessonID: "1.1"}, Redirect, Address{LessonID: 1, SubLessonID: "1.1", ActivityID: "a"}},
		{"sub-lesson with exercises", nil, Address{LessonID: 1, SubLessonID: "1.2"}, ShowSubLesson, Address{LessonID: 1, SubLessonID: "1.2"}},
		{"unknown sub-lesson", nil, Address{LessonID: 1, SubLessonID: "1.9"}, NotFound, Address{LessonID: 1, SubLessonID: "1.9"}},
		{"nested activity", nil, Address{LessonID: 1, SubLessonID: "1.1", ActivityID: "b"}, ShowActivity, Address{LessonID: 1, SubLessonID: "1.1", ActivityID: "b"}},
		{"unknown nested activity", nil, Address{LessonID: 1, SubLessonID: "1.1", ActivityID: "z"}, NotFound, Address{LessonID: 1, SubLessonID: "1.1", ActivityID: "z"}},
		{"trailing activity directly", nil, Address{LessonID: 1, ActivityID: "wrap-up"}, ShowActivity, Address{LessonID: 1, ActivityID: "wrap-up"}},
		{"flat lesson goes to first activity", nil, Address{LessonID: 2}, Redirect, Address{LessonID: 2, ActivityID: "activity-1"}},
		{"flat activity", nil, Address{LessonID: 2, ActivityID: "activity-2"}, ShowActivity, Address{LessonID: 2, ActivityID: "activity-2"}},
		{"unknown flat activity", nil, Address{LessonID: 2, ActivityID: "nope"}, NotFound, Address{LessonID: 2, ActivityID: "nope"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Resolve(repo, tt.done, tt.addr)
			assert.Equal(t, tt.state, res.State, "state %s", res.State)
			assert.Equal(t, tt.target, res.Target)
		})
	}
}

func TestResolve_NotAvailableUsesCourseTitle(t *testing.T) {
	res := Resolve(testRepo(t), nil, Address{LessonID: 3})
	assert.Equal(t, "Three", res.Title)
}

func TestResolve_LoadingWithoutContent(t *testing.T) {
	res := Resolve(nil, nil, Address{LessonID: 1})
	assert.Equal(t, Loading, res.State)
}

func TestResolve_PartiallyDoneStillGoesToFirstSubLesson(t *testing.T) {
	res := Resolve(testRepo(t), doneSet{key(1, "1.1"): true}, Address{LessonID: 1})
	assert.Equal(t, Redirect, res.State)
	assert.Equal(t, "1.1", res.Target.SubLessonID)
}

func TestResolve_Idempotent(t *testing.T) {
	repo := testRepo(t)
	addr := Address{LessonID: 1}
	assert.Equal(t, Resolve(repo, nil, addr), Resolve(repo, nil, addr))
}

func TestResolve_EmbeddedContent(t *testing.T) {
	repo, err := content.Load()
	require.NoError(t, err)

	res := Resolve(repo, nil, Address{LessonID: 5})
	require.Equal(t, Redirect, res.State)
	assert.Equal(t, Address{LessonID: 5, SubLessonID: "5.1", ActivityID: "5.1.1"}, res.Target)

	res = Resolve(repo, nil, Address{LessonID: 1, SubLessonID: "1.2"})
	assert.Equal(t, ShowSubLesson, res.State)
}

func TestRoutes(t *testing.T) {
	tests := []struct {
		path string
		want Route
	}{
		{"/", Route{Kind: RouteHome}},
		{"/print-view", Route{Kind: RoutePrintView}},
		{"/lesson/4", Route{Kind: RouteLesson, Address: Address{LessonID: 4}}},
		{"/lesson/1/1.2", Route{Kind: RouteLesson, Address: Address{LessonID: 1, SubLessonID: "1.2"}}},
		{"/lesson/2/activity/activity-3", Route{Kind: RouteLesson, Address: Address{LessonID: 2, ActivityID: "activity-3"}}},
		{"/lesson/5/5.1/activity/5.1.2", Route{Kind: RouteLesson, Address: Address{LessonID: 5, SubLessonID: "5.1", ActivityID: "5.1.2"}}},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := ParseRoute(tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.path, got.Path())
		})
	}

	for _, bad := range []string{"/lessons/1", "/lesson/x", "/lesson/1/a/b", "/lesson/1/a/b/c/d"} {
		_, err := ParseRoute(bad)
		assert.Error(t, err, bad)
	}
}

func TestNextPrevious(t *testing.T) {
	repo := testRepo(t)

	pages := Pages(mustLesson(t, repo, 1))
	require.Equal(t, []Address{
		{LessonID: 1, SubLessonID: "1.1", ActivityID: "a"},
		{LessonID: 1, SubLessonID: "1.1", ActivityID: "b"},
		{LessonID: 1, SubLessonID: "1.2"},
		{LessonID: 1, ActivityID: "wrap-up"},
	}, pages)

	next, ok := Next(repo, pages[1])
	require.True(t, ok)
	assert.Equal(t, pages[2], next)

	_, ok = Next(repo, pages[3])
	assert.False(t, ok)

	prev, ok := Previous(repo, pages[2])
	require.True(t, ok)
	assert.Equal(t, pages[1], prev)

	_, ok = Previous(repo, pages[0])
	assert.False(t, ok)
}

type docs map[string][]byte

func (d docs) Get(_ context.Context, k string) ([]byte, bool, error) { v, ok := d[k]; return v, ok, nil }
func (d docs) Put(_ context.Context, k string, v []byte) error     { d[k] = v; return nil }
func (d docs) Delete(_ context.Context, k string) error            { delete(d, k); return nil }

func TestComplete_CascadesOnlyFromLastActivity(t *testing.T) {
	ctx := context.Background()
	repo := testRepo(t)
	store, err := progress.NewStore(ctx, docs{}, repo, nil)
	require.NoError(t, err)

	next, ok, err := Complete(ctx, store, repo, Address{LessonID: 1, SubLessonID: "1.1", ActivityID: "a"})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "b", next.ActivityID)
	assert.True(t, store.ActivityCompleted(1, progress.NestedActivityRef("1.1", "a")))
	assert.False(t, store.SubLessonCompleted(1, "1.1"))

	next, ok, err = Complete(ctx, store, repo, next)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, Address{LessonID: 1, SubLessonID: "1.2"}, next)
	assert.True(t, store.SubLessonCompleted(1, "1.1"))

	next, ok, err = Complete(ctx, store, repo, next)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, store.SubLessonCompleted(1, "1.2"))

	// Every sub-lesson done: the lesson now opens on its reflection.
	res := Resolve(repo, store, Address{LessonID: 1})
	assert.Equal(t, Address{LessonID: 1, ActivityID: "wrap-up"}, res.Target)

	_, ok, err = Complete(ctx, store, repo, next)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 100, store.LessonPercent(1))
}

func TestComplete_RejectsNonPage(t *testing.T) {
	ctx := context.Background()
	repo := testRepo(t)
	store, err := progress.NewStore(ctx, docs{}, repo, nil)
	require.NoError(t, err)

	_, _, err = Complete(ctx, store, repo, Address{LessonID: 1, SubLessonID: "nope"})
	assert.Error(t, err)
}

func mustLesson(t *testing.T, repo *content.Repository, id int) *content.Lesson {
	t.Helper()
	l, ok := repo.Lesson(id)
	require.True(t, ok)
	return l
}
