package content

import (
	"fmt"
	"strings"
)

// Validate checks structural invariants: non-empty and unique identifiers
// within each parent, choice exercises with options, multi-step exercises
// with identified steps, and component exercises naming a component.
// All problems are reported together.
func (r *Repository) Validate() error {
	var errs []string

	seenLessons := make(map[int]bool, len(r.lessons))
	for i := range r.lessons {
		l := &r.lessons[i]
		if seenLessons[l.ID] {
			errs = append(errs, fmt.Sprintf("duplicate lesson ID: %d", l.ID))
		}
		seenLessons[l.ID] = true

		prefix := fmt.Sprintf("lesson %d", l.ID)
		if l.ID <= 0 {
			errs = append(errs, fmt.Sprintf("%s: ID must be positive", prefix))
		}
		if len(l.SubLessons) == 0 && len(l.Activities) == 0 {
			errs = append(errs, fmt.Sprintf("%s: has neither sub-lessons nor activities", prefix))
		}

		subIDs := make(map[string]bool, len(l.SubLessons))
		for _, s := range l.SubLessons {
			errs = append(errs, checkID(prefix+" sub-lesson", s.ID, subIDs)...)
			sp := fmt.Sprintf("%s sub-lesson %q", prefix, s.ID)
			errs = append(errs, validateActivities(sp, s.Activities)...)
			errs = append(errs, validateExercises(sp, s.Exercises)...)
		}
		errs = append(errs, validateActivities(prefix, l.Activities)...)
	}

	if r.course.TotalLessons < len(r.lessons) {
		errs = append(errs, fmt.Sprintf("course lists %d lessons but %d are authored", r.course.TotalLessons, len(r.lessons)))
	}

	if len(errs) > 0 {
		return fmt.Errorf("content validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}

func validateActivities(prefix string, activities []Activity) []string {
	var errs []string
	ids := make(map[string]bool, len(activities))
	for _, a := range activities {
		errs = append(errs, checkID(prefix+" activity", a.ID, ids)...)
		errs = append(errs, validateExercises(fmt.Sprintf("%s activity %q", prefix, a.ID), a.Exercises)...)
	}
	return errs
}

func validateExercises(prefix string, exercises []Exercise) []string {
	var errs []string
	ids := make(map[string]bool, len(exercises))
	for _, e := range exercises {
		errs = append(errs, checkID(prefix+" exercise", e.ID, ids)...)
		ep := fmt.Sprintf("%s exercise %q", prefix, e.ID)

		switch b := e.Body.(type) {
		case ChoiceBody:
			if len(b.Options) == 0 {
				errs = append(errs, ep+": choice exercise has no options")
			}
		case StepsBody:
			if len(b.Steps) == 0 {
				errs = append(errs, ep+": multi-step exercise has no steps")
			}
			stepIDs := make(map[string]bool, len(b.Steps))
			for _, s := range b.Steps {
				errs = append(errs, checkID(ep+" step", s.ID, stepIDs)...)
				if (s.Kind == StepRadio || s.Kind == StepCheckbox) && len(s.Options) == 0 {
					errs = append(errs, fmt.Sprintf("%s step %q: choice step has no options", ep, s.ID))
				}
			}
		case ComponentBody:
			if b.Component == "" {
				errs = append(errs, ep+": component exercise names no component")
			}
		case LinkBody:
			if b.URL == "" {
				errs = append(errs, ep+": link exercise has no URL")
			}
		case nil:
			errs = append(errs, ep+": missing body")
		}
	}
	return errs
}

func checkID(what, id string, seen map[string]bool) []string {
	if id == "" {
		return []string{what + " has empty ID"}
	}
	if seen[id] {
		return []string{fmt.Sprintf("duplicate %s ID: %q", what, id)}
	}
	seen[id] = true
	return nil
}
