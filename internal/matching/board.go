package matching

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/abhisek/changeagent/internal/progress"
)

var (
	// ErrIncomplete is returned by Check before the board is ready.
	ErrIncomplete = errors.New("board is not complete")
	// ErrNoAnswerKey is returned by Check for puzzles without a key.
	ErrNoAnswerKey = errors.New("puzzle has no answer key")
	// ErrNothingPicked is returned by Drop when no label is picked.
	ErrNothingPicked = errors.New("no label picked")
	// ErrBucketFull is returned when a capacity-limited bucket is full.
	ErrBucketFull = errors.New("bucket is full")
)

// Feedback is the verdict for one placed label.
type Feedback struct {
	Target  string
	Label   string
	Correct bool
	Message string
}

// Board is the mutable state of one puzzle.
type Board struct {
	puzzle   *Puzzle
	placed   map[string][]string
	picked   string
	checked  bool
	feedback []Feedback
}

// NewBoard returns an empty board for p.
func NewBoard(p *Puzzle) *Board {
	return &Board{puzzle: p, placed: make(map[string][]string)}
}

// Puzzle returns the board's definition.
func (b *Board) Puzzle() *Puzzle {
	return b.puzzle
}

// Picked returns the label currently held, if any.
func (b *Board) Picked() string {
	return b.picked
}

// Pick holds an available label for a later Drop.
func (b *Board) Pick(label string) error {
	if _, ok := b.puzzle.Label(label); !ok {
		return fmt.Errorf("pick: unknown label %q", label)
	}
	if b.targetOf(label) != "" {
		return fmt.Errorf("pick: label %q is already placed", label)
	}
	b.picked = label
	return nil
}

// Drop places the picked label on target.
func (b *Board) Drop(target string) error {
	if b.picked == "" {
		return ErrNothingPicked
	}
	if err := b.Assign(b.picked, target); err != nil {
		return err
	}
	b.picked = ""
	return nil
}

// Assign places label on target. The label leaves any previous target.
// A single-slot target gives its prior occupant back to the pool.
func (b *Board) Assign(label, target string) error {
	if _, ok := b.puzzle.Label(label); !ok {
		return fmt.Errorf("assign: unknown label %q", label)
	}
	t, ok := b.puzzle.Target(target)
	if !ok {
		return fmt.Errorf("assign: unknown target %q", target)
	}
	if slices.Contains(b.placed[target], label) {
		return nil
	}

	limit := b.puzzle.capacity(t)
	if limit > 1 && len(b.placed[target]) >= limit {
		return fmt.Errorf("assign %q to %q: %w", label, target, ErrBucketFull)
	}

	b.unplace(label)
	if limit == 1 {
		b.placed[target] = nil
	}
	b.placed[target] = append(b.placed[target], label)
	if b.picked == label {
		b.picked = ""
	}
	b.invalidate()
	return nil
}

// Remove returns labels on target to the pool. With no labels given the
// target is emptied.
func (b *Board) Remove(target string, labels ...string) error {
	if _, ok := b.puzzle.Target(target); !ok {
		return fmt.Errorf("remove: unknown target %q", target)
	}
	if len(labels) == 0 {
		delete(b.placed, target)
	} else {
		b.placed[target] = slices.DeleteFunc(b.placed[target], func(l string) bool {
			return slices.Contains(labels, l)
		})
		if len(b.placed[target]) == 0 {
			delete(b.placed, target)
		}
	}
	b.invalidate()
	return nil
}

func (b *Board) unplace(label string) {
	if t := b.targetOf(label); t != "" {
		b.placed[t] = slices.DeleteFunc(b.placed[t], func(l string) bool { return l == label })
		if len(b.placed[t]) == 0 {
			delete(b.placed, t)
		}
	}
}

func (b *Board) targetOf(label string) string {
	for t, ls := range b.placed {
		if slices.Contains(ls, label) {
			return t
		}
	}
	return ""
}

func (b *Board) invalidate() {
	b.checked = false
	b.feedback = nil
}

// Available returns the labels not yet placed, in authored order.
func (b *Board) Available() []Item {
	var out []Item
	for _, l := range b.puzzle.Labels {
		if b.targetOf(l.ID) == "" {
			out = append(out, l)
		}
	}
	return out
}

// Placed returns the labels on target in placement order.
func (b *Board) Placed(target string) []Item {
	var out []Item
	for _, id := range b.placed[target] {
		if it, ok := b.puzzle.Label(id); ok {
			out = append(out, it)
		}
	}
	return out
}

// Filled returns how many targets (match) or labels (sort) are placed and
// how many are needed.
func (b *Board) Filled() (done, need int) {
	if b.puzzle.Mode == ModeMatch {
		for _, t := range b.puzzle.Targets {
			if len(b.placed[t.ID]) > 0 {
				done++
			}
		}
		return done, len(b.puzzle.Targets)
	}
	if b.bounded() {
		for _, t := range b.puzzle.Targets {
			done += len(b.placed[t.ID])
			need += t.Capacity
		}
		return done, need
	}
	for _, ls := range b.placed {
		done += len(ls)
	}
	return done, len(b.puzzle.Labels)
}

// bounded reports whether every sort bucket has a capacity.
func (b *Board) bounded() bool {
	for _, t := range b.puzzle.Targets {
		if t.Capacity == 0 {
			return false
		}
	}
	return true
}

// Ready reports whether the board can be checked.
func (b *Board) Ready() bool {
	done, need := b.Filled()
	return done == need
}

// Check scores the board and reveals feedback until the next mutation.
func (b *Board) Check() ([]Feedback, error) {
	if !b.Ready() {
		return nil, ErrIncomplete
	}
	if len(b.puzzle.Answer) == 0 {
		return nil, ErrNoAnswerKey
	}

	var out []Feedback
	for _, t := range b.puzzle.Targets {
		for _, label := range b.placed[t.ID] {
			fb := Feedback{Target: t.ID, Label: label}
			if b.puzzle.Mode == ModeMatch {
				fb.Correct = b.puzzle.Answer[t.ID] == label
				fb.Message = b.puzzle.Feedback[t.ID][label]
			} else {
				want := b.puzzle.Answer[label]
				fb.Correct = want == t.ID
				if !fb.Correct {
					if wt, ok := b.puzzle.Target(want); ok {
						fb.Message = "Belongs in " + wt.Title()
					}
				}
			}
			out = append(out, fb)
		}
	}
	b.checked = true
	b.feedback = out
	return slices.Clone(out), nil
}

// Feedback returns the last check's verdicts while they are still valid.
func (b *Board) Feedback() ([]Feedback, bool) {
	if !b.checked {
		return nil, false
	}
	return slices.Clone(b.feedback), true
}

// Score counts correct verdicts of the last check.
func (b *Board) Score() (correct, total int) {
	for _, fb := range b.feedback {
		if fb.Correct {
			correct++
		}
	}
	return correct, len(b.feedback)
}

// Answer encodes the board for the progress store. Match boards encode as
// {target: label}. Sort boards encode as {target: [labels]}, with
// single-slot targets as a string or null, nested under Group when set.
func (b *Board) Answer() (progress.Value, error) {
	if b.puzzle.Mode == ModeMatch {
		m := make(map[string]string, len(b.placed))
		for t, ls := range b.placed {
			if len(ls) > 0 {
				m[t] = ls[0]
			}
		}
		return progress.ValueOf(m)
	}

	buckets := make(map[string]any, len(b.puzzle.Targets))
	for _, t := range b.puzzle.Targets {
		ls := b.placed[t.ID]
		if t.Capacity == 1 && b.puzzle.Group == "" {
			if len(ls) == 0 {
				buckets[t.ID] = nil
			} else {
				buckets[t.ID] = ls[0]
			}
			continue
		}
		if ls == nil {
			ls = []string{}
		}
		buckets[t.ID] = ls
	}
	if b.puzzle.Group == "" {
		return progress.ValueOf(buckets)
	}
	return progress.ValueOf(map[string]any{
		b.puzzle.Group: buckets,
		"showFeedback": b.checked,
	})
}

// Restore replaces the board state with a stored answer. Unknown IDs are
// skipped; a stored check is replayed.
func (b *Board) Restore(v progress.Value) error {
	b.placed = make(map[string][]string)
	b.picked = ""
	b.invalidate()
	if v.IsZero() {
		return nil
	}

	if b.puzzle.Mode == ModeMatch {
		var m map[string]string
		if err := v.Decode(&m); err != nil {
			return fmt.Errorf("restore %s: %w", b.puzzle.Component, err)
		}
		for _, t := range b.puzzle.Targets {
			if label, ok := m[t.ID]; ok {
				_ = b.Assign(label, t.ID)
			}
		}
		return nil
	}

	raw := make(map[string]json.RawMessage)
	if err := v.Decode(&raw); err != nil {
		return fmt.Errorf("restore %s: %w", b.puzzle.Component, err)
	}
	showFeedback := false
	if b.puzzle.Group != "" {
		_ = json.Unmarshal(raw["showFeedback"], &showFeedback)
		nested := make(map[string]json.RawMessage)
		if g, ok := raw[b.puzzle.Group]; ok {
			if err := json.Unmarshal(g, &nested); err != nil {
				return fmt.Errorf("restore %s: %w", b.puzzle.Component, err)
			}
		}
		raw = nested
	}
	for _, t := range b.puzzle.Targets {
		for _, label := range decodeLabels(raw[t.ID]) {
			_ = b.Assign(label, t.ID)
		}
	}
	if showFeedback {
		_, _ = b.Check()
	}
	return nil
}

// decodeLabels accepts a list of IDs, a single ID or null.
func decodeLabels(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var list []string
	if json.Unmarshal(raw, &list) == nil {
		return list
	}
	var one string
	if json.Unmarshal(raw, &one) == nil && one != "" {
		return []string{one}
	}
	return nil
}
