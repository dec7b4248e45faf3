package matching

import (
	"errors"
	"fmt"
)

// Mode selects how a board is filled.
type Mode string

const (
	// ModeMatch pairs each target with exactly one label.
	ModeMatch Mode = "match"
	// ModeSort drops labels into buckets, optionally capacity-limited.
	ModeSort Mode = "sort"
)

// Item is a draggable label or a drop target.
type Item struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	// Capacity limits how many labels a sort-mode target holds; 0 is
	// unlimited. Match-mode targets always hold one.
	Capacity int `yaml:"capacity"`
}

// Title returns the name, or the description when there is no name.
func (i Item) Title() string {
	if i.Name != "" {
		return i.Name
	}
	return i.Description
}

// Puzzle is the static definition of a matching exercise.
type Puzzle struct {
	Component      string `yaml:"component"`
	Title          string `yaml:"title"`
	Instructions   string `yaml:"instructions"`
	Mode           Mode   `yaml:"mode"`
	LabelsHeading  string `yaml:"labelsHeading"`
	TargetsHeading string `yaml:"targetsHeading"`
	Labels         []Item `yaml:"labels"`
	Targets        []Item `yaml:"targets"`
	// Group nests a sort-mode answer under one key.
	Group string `yaml:"group"`
	// Answer is target to label for match mode and label to target for
	// sort mode. Empty means the puzzle has no answer key.
	Answer map[string]string `yaml:"answer"`
	// Feedback is target to label to message (match mode).
	Feedback map[string]map[string]string `yaml:"feedback"`
	// Summary is shown after a check.
	Summary string `yaml:"summary"`
}

// Label returns a label by ID.
func (p *Puzzle) Label(id string) (Item, bool) {
	return find(p.Labels, id)
}

// Target returns a target by ID.
func (p *Puzzle) Target(id string) (Item, bool) {
	return find(p.Targets, id)
}

func find(items []Item, id string) (Item, bool) {
	for _, it := range items {
		if it.ID == id {
			return it, true
		}
	}
	return Item{}, false
}

func (p *Puzzle) capacity(target Item) int {
	if p.Mode == ModeMatch {
		return 1
	}
	return target.Capacity
}

// validate checks the puzzle's internal references.
func (p *Puzzle) validate() error {
	var errs []error
	wrap := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("puzzle %s: "+format, append([]any{p.Component}, args...)...))
	}

	if p.Component == "" {
		errs = append(errs, errors.New("puzzle has no component name"))
	}
	if p.Mode != ModeMatch && p.Mode != ModeSort {
		wrap("unknown mode %q", p.Mode)
	}
	if len(p.Labels) == 0 || len(p.Targets) == 0 {
		wrap("needs labels and targets")
	}
	seen := make(map[string]bool)
	for _, it := range p.Labels {
		if it.ID == "" || seen["l:"+it.ID] {
			wrap("empty or duplicate label ID %q", it.ID)
		}
		seen["l:"+it.ID] = true
	}
	for _, it := range p.Targets {
		if it.ID == "" || seen["t:"+it.ID] {
			wrap("empty or duplicate target ID %q", it.ID)
		}
		seen["t:"+it.ID] = true
		if it.Capacity < 0 {
			wrap("target %q has negative capacity", it.ID)
		}
	}
	if p.Mode == ModeMatch && len(p.Labels) < len(p.Targets) {
		wrap("%d labels cannot fill %d targets", len(p.Labels), len(p.Targets))
	}

	for k, v := range p.Answer {
		target, label := k, v
		if p.Mode == ModeSort {
			target, label = v, k
		}
		if !seen["t:"+target] || !seen["l:"+label] {
			wrap("answer %s=%s references unknown IDs", k, v)
		}
	}
	return errors.Join(errs...)
}
