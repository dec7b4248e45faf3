package content

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed data/*.yaml
var dataFS embed.FS

const courseFile = "course.yaml"

// Repository is the read-only, indexed course content.
type Repository struct {
	course  Course
	lessons []Lesson
	byID    map[int]*Lesson
}

// Load parses the course content embedded in the binary.
func Load() (*Repository, error) {
	return LoadFS(dataFS, "data")
}

// LoadFS parses course.yaml and every lesson-*.yaml file under dir.
func LoadFS(fsys fs.FS, dir string) (*Repository, error) {
	raw, err := fs.ReadFile(fsys, path.Join(dir, courseFile))
	if err != nil {
		return nil, fmt.Errorf("read course metadata: %w", err)
	}
	var course Course
	if err := yaml.Unmarshal(raw, &course); err != nil {
		return nil, fmt.Errorf("parse course metadata: %w", err)
	}

	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("list lessons: %w", err)
	}

	var lessons []Lesson
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, "lesson-") || !strings.HasSuffix(name, ".yaml") {
			continue
		}
		data, err := fs.ReadFile(fsys, path.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		var l Lesson
		if err := yaml.Unmarshal(data, &l); err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		lessons = append(lessons, l)
	}

	return New(course, lessons)
}

// New builds a repository from already-decoded content and validates it.
func New(course Course, lessons []Lesson) (*Repository, error) {
	sorted := make([]Lesson, len(lessons))
	copy(sorted, lessons)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	r := &Repository{
		course:  course,
		lessons: sorted,
		byID:    make(map[int]*Lesson, len(sorted)),
	}
	for i := range r.lessons {
		r.byID[r.lessons[i].ID] = &r.lessons[i]
	}

	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// Course returns the course metadata.
func (r *Repository) Course() Course {
	return r.course
}

// Lessons returns all authored lessons ordered by ID.
func (r *Repository) Lessons() []*Lesson {
	out := make([]*Lesson, len(r.lessons))
	for i := range r.lessons {
		out[i] = &r.lessons[i]
	}
	return out
}

// Lesson returns the authored lesson with the given ID.
func (r *Repository) Lesson(id int) (*Lesson, bool) {
	l, ok := r.byID[id]
	return l, ok
}

// SubLesson looks up a sub-lesson by lesson and sub-lesson ID.
func (r *Repository) SubLesson(lessonID int, subID string) (*SubLesson, bool) {
	l, ok := r.byID[lessonID]
	if !ok {
		return nil, false
	}
	return l.SubLesson(subID)
}

// Activity looks up an activity. An empty subID addresses a direct activity
// of the lesson.
func (r *Repository) Activity(lessonID int, subID, activityID string) (*Activity, bool) {
	l, ok := r.byID[lessonID]
	if !ok {
		return nil, false
	}
	if subID == "" {
		return l.Activity(activityID)
	}
	s, ok := l.SubLesson(subID)
	if !ok {
		return nil, false
	}
	return s.Activity(activityID)
}

// Components returns the distinct component names referenced by exercises,
// sorted.
func (r *Repository) Components() []string {
	seen := make(map[string]bool)
	visit := func(exs []Exercise) {
		for _, e := range exs {
			if b, ok := e.Body.(ComponentBody); ok {
				seen[b.Component] = true
			}
		}
	}
	for i := range r.lessons {
		l := &r.lessons[i]
		for _, a := range l.Activities {
			visit(a.Exercises)
		}
		for _, s := range l.SubLessons {
			visit(s.Exercises)
			for _, a := range s.Activities {
				visit(a.Exercises)
			}
		}
	}

	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Exercises returns the exercises shown on a page: a sub-lesson's direct
// exercises when activityID is empty, otherwise the activity's exercises.
func (r *Repository) Exercises(lessonID int, subID, activityID string) ([]Exercise, bool) {
	if activityID == "" {
		s, ok := r.SubLesson(lessonID, subID)
		if !ok {
			return nil, false
		}
		return s.Exercises, true
	}
	a, ok := r.Activity(lessonID, subID, activityID)
	if !ok {
		return nil, false
	}
	return a.Exercises, true
}

// Exercise looks up a single exercise on a page.
func (r *Repository) Exercise(lessonID int, subID, activityID, exerciseID string) (*Exercise, bool) {
	exs, ok := r.Exercises(lessonID, subID, activityID)
	if !ok {
		return nil, false
	}
	return findExercise(exs, exerciseID)
}
