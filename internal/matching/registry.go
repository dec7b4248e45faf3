package matching

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/abhisek/changeagent/internal/content"
)

//go:embed data/*.yaml
var puzzleFS embed.FS

// Registry maps component names to puzzles.
type Registry struct {
	puzzles map[string]*Puzzle
}

// DefaultRegistry loads the puzzles embedded in the binary.
func DefaultRegistry() (*Registry, error) {
	return LoadFS(puzzleFS, "data")
}

// LoadFS parses every *.yaml puzzle under dir.
func LoadFS(fsys fs.FS, dir string) (*Registry, error) {
	names, err := fs.Glob(fsys, path.Join(dir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("list puzzles: %w", err)
	}
	var puzzles []Puzzle
	for _, name := range names {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		var p Puzzle
		if err := yaml.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		puzzles = append(puzzles, p)
	}
	return NewRegistry(puzzles...)
}

// NewRegistry validates and indexes puzzles.
func NewRegistry(puzzles ...Puzzle) (*Registry, error) {
	r := &Registry{puzzles: make(map[string]*Puzzle, len(puzzles))}
	var errs []error
	for i := range puzzles {
		p := &puzzles[i]
		if err := p.validate(); err != nil {
			errs = append(errs, err)
			continue
		}
		if _, dup := r.puzzles[p.Component]; dup {
			errs = append(errs, fmt.Errorf("duplicate puzzle for component %s", p.Component))
			continue
		}
		r.puzzles[p.Component] = p
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return r, nil
}

// Puzzle returns the puzzle registered for a component name.
func (r *Registry) Puzzle(component string) (*Puzzle, bool) {
	p, ok := r.puzzles[component]
	return p, ok
}

// Board returns a fresh board for a component name.
func (r *Registry) Board(component string) (*Board, error) {
	p, ok := r.puzzles[component]
	if !ok {
		return nil, fmt.Errorf("unknown component %q", component)
	}
	return NewBoard(p), nil
}

// Names returns the registered component names, sorted.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.puzzles))
	for n := range r.puzzles {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Validate fails when content references a component that has no puzzle.
func (r *Registry) Validate(repo *content.Repository) error {
	var errs []error
	for _, name := range repo.Components() {
		if _, ok := r.puzzles[name]; !ok {
			errs = append(errs, fmt.Errorf("content references unknown component %q", name))
		}
	}
	return errors.Join(errs...)
}
