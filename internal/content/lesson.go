package content

// ActivityType tags the pedagogical role of an activity.
type ActivityType string

const (
	ActivityDiscussion ActivityType = "discussion"
	ActivityExercise   ActivityType = "exercise"
	ActivityReflection ActivityType = "reflection"
	ActivityGroupWork  ActivityType = "group-work"
)

// Lesson is a top-level course unit. A lesson is either flat (only
// Activities) or structured (SubLessons). Activities on a structured lesson
// are trailing activities, revealed once every sub-lesson is complete.
type Lesson struct {
	ID          int         `yaml:"id"`
	Title       string      `yaml:"title"`
	Duration    string      `yaml:"duration"`
	Description string      `yaml:"description"`
	SubLessons  []SubLesson `yaml:"subLessons"`
	Activities  []Activity  `yaml:"activities"`
}

// Structured reports whether the lesson is organised into sub-lessons.
func (l *Lesson) Structured() bool {
	return len(l.SubLessons) > 0
}

// HasTrailingActivities reports whether a structured lesson also carries
// direct activities.
func (l *Lesson) HasTrailingActivities() bool {
	return l.Structured() && len(l.Activities) > 0
}

// SubLesson returns the sub-lesson with the given ID.
func (l *Lesson) SubLesson(id string) (*SubLesson, bool) {
	for i := range l.SubLessons {
		if l.SubLessons[i].ID == id {
			return &l.SubLessons[i], true
		}
	}
	return nil, false
}

// Activity returns the direct activity with the given ID.
func (l *Lesson) Activity(id string) (*Activity, bool) {
	return findActivity(l.Activities, id)
}

// SubLesson groups related activities, or holds exercises directly.
type SubLesson struct {
	ID         string     `yaml:"id"`
	Title      string     `yaml:"title"`
	Duration   string     `yaml:"duration"`
	Content    string     `yaml:"content"`
	Activities []Activity `yaml:"activities"`
	Exercises  []Exercise `yaml:"exercises"`
}

// Activity returns the nested activity with the given ID.
func (s *SubLesson) Activity(id string) (*Activity, bool) {
	return findActivity(s.Activities, id)
}

// Exercise returns the sub-lesson's own exercise with the given ID.
func (s *SubLesson) Exercise(id string) (*Exercise, bool) {
	return findExercise(s.Exercises, id)
}

// Activity is one page of content plus its exercises. Whether it is
// complete lives in the progress store, not here.
type Activity struct {
	ID        string       `yaml:"id"`
	Title     string       `yaml:"title"`
	Duration  string       `yaml:"duration"`
	Type      ActivityType `yaml:"type"`
	Content   string       `yaml:"content"`
	Exercises []Exercise   `yaml:"exercises"`
}

// Exercise returns the activity's exercise with the given ID.
func (a *Activity) Exercise(id string) (*Exercise, bool) {
	return findExercise(a.Exercises, id)
}

func findActivity(activities []Activity, id string) (*Activity, bool) {
	for i := range activities {
		if activities[i].ID == id {
			return &activities[i], true
		}
	}
	return nil, false
}

func findExercise(exercises []Exercise, id string) (*Exercise, bool) {
	for i := range exercises {
		if exercises[i].ID == id {
			return &exercises[i], true
		}
	}
	return nil, false
}

// Course is the course-level metadata. It lists every planned lesson,
// including ones whose content has not been authored yet.
type Course struct {
	Title             string        `yaml:"title"`
	EstimatedDuration string        `yaml:"estimatedDuration"`
	TotalLessons      int           `yaml:"totalLessons"`
	Lessons           []CourseEntry `yaml:"lessons"`
}

// CourseEntry names a planned lesson.
type CourseEntry struct {
	ID    int    `yaml:"id"`
	Title string `yaml:"title"`
}

// LessonTitle returns the planned title of a lesson.
func (c Course) LessonTitle(id int) (string, bool) {
	for _, e := range c.Lessons {
		if e.ID == id {
			return e.Title, true
		}
	}
	return "", false
}

// Unit is one countable completion unit of a lesson: either a sub-lesson or
// a direct activity. Exactly one of the fields is set.
type Unit struct {
	SubLessonID string
	ActivityID  string
}

// Units returns the completion units of the lesson in page order. A flat
// lesson counts its activities; a structured lesson counts each sub-lesson
// once plus each trailing activity.
func (l *Lesson) Units() []Unit {
	units := make([]Unit, 0, len(l.SubLessons)+len(l.Activities))
	for _, s := range l.SubLessons {
		units = append(units, Unit{SubLessonID: s.ID})
	}
	for _, a := range l.Activities {
		units = append(units, Unit{ActivityID: a.ID})
	}
	return units
}
