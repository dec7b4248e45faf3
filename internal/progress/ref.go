package progress

import (
	"errors"
	"fmt"
)

type refKind uint8

const (
	refSubLesson refKind = iota + 1
	refActivity
	refNestedActivity
)

// ContainerRef addresses the immediate parent of an exercise in the
// progress record: a sub-lesson, a direct activity of a lesson, or an
// activity nested inside a sub-lesson. Sub-lesson and activity IDs live in
// separate namespaces; the kind is explicit, never inferred from the ID.
type ContainerRef struct {
	kind        refKind
	subLessonID string
	activityID  string
}

// SubLessonRef addresses exercises that hang directly off a sub-lesson.
func SubLessonRef(subLessonID string) ContainerRef {
	return ContainerRef{kind: refSubLesson, subLessonID: subLessonID}
}

// ActivityRef addresses a direct (flat or trailing) activity of a lesson.
func ActivityRef(activityID string) ContainerRef {
	return ContainerRef{kind: refActivity, activityID: activityID}
}

// NestedActivityRef addresses an activity inside a sub-lesson.
func NestedActivityRef(subLessonID, activityID string) ContainerRef {
	return ContainerRef{kind: refNestedActivity, subLessonID: subLessonID, activityID: activityID}
}

var errEmptyRef = errors.New("container reference needs a sub-lesson or an activity")

// Ref builds the reference for a page address. An empty activityID yields a
// sub-lesson reference; an empty subLessonID yields a direct activity.
func Ref(subLessonID, activityID string) (ContainerRef, error) {
	switch {
	case subLessonID == "" && activityID == "":
		return ContainerRef{}, errEmptyRef
	case activityID == "":
		return SubLessonRef(subLessonID), nil
	case subLessonID == "":
		return ActivityRef(activityID), nil
	}
	return NestedActivityRef(subLessonID, activityID), nil
}

// IsActivity reports whether the reference addresses an activity.
func (r ContainerRef) IsActivity() bool {
	return r.kind == refActivity || r.kind == refNestedActivity
}

// SubLessonID returns the sub-lesson part of the reference, if any.
func (r ContainerRef) SubLessonID() string { return r.subLessonID }

// ActivityID returns the activity part of the reference, if any.
func (r ContainerRef) ActivityID() string { return r.activityID }

func (r ContainerRef) valid() bool {
	switch r.kind {
	case refSubLesson:
		return r.subLessonID != ""
	case refActivity:
		return r.activityID != ""
	case refNestedActivity:
		return r.subLessonID != "" && r.activityID != ""
	}
	return false
}

func (r ContainerRef) String() string {
	switch r.kind {
	case refSubLesson:
		return "sub-lesson " + r.subLessonID
	case refActivity:
		return "activity " + r.activityID
	case refNestedActivity:
		return fmt.Sprintf("sub-lesson %s activity %s", r.subLessonID, r.activityID)
	}
	return "invalid container"
}
