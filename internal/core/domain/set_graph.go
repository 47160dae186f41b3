package domain

import (
	"iter"
	"slices"
	"strings"

	"go.trai.ch/zerr"
)

// SetDecl declares a named dependency set whose children are referenced by name.
type SetDecl struct {
	Name     InternedString
	Baseline Version
	Entries  []DependencyEntry
	Children []InternedString
}

// SetGraph collects set declarations and builds them into NestedDependencies
// in dependency order.
type SetGraph struct {
	decls      map[InternedString]SetDecl
	buildOrder []InternedString
}

// NewSetGraph creates an empty SetGraph.
func NewSetGraph() *SetGraph {
	return &SetGraph{
		decls: make(map[InternedString]SetDecl),
	}
}

// AddSet adds a declaration. Names must be unique.
func (g *SetGraph) AddSet(d *SetDecl) error {
	if _, exists := g.decls[d.Name]; exists {
		return zerr.With(zerr.Wrap(ErrSetAlreadyExists, "failed to add set"), "set", d.Name.String())
	}
	g.decls[d.Name] = *d
	return nil
}

// Validate checks that every child reference resolves and that references are acyclic.
// On success it fixes the build order, children first.
func (g *SetGraph) Validate() error {
	g.buildOrder = make([]InternedString, 0, len(g.decls))
	state := make(map[InternedString]int) // 0: unvisited, 1: visiting, 2: visited
	var path []InternedString

	var visit func(u InternedString) error
	visit = func(u InternedString) error {
		state[u] = 1
		path = append(path, u)

		decl := g.decls[u]
		for _, child := range decl.Children {
			if _, exists := g.decls[child]; !exists {
				return zerr.With(
					zerr.With(zerr.Wrap(ErrMissingDependency, "unknown child set"), "set", u.String()),
					"missing_dependency", child.String(),
				)
			}
			switch state[child] {
			case 1:
				return buildCycleError(path, child)
			case 0:
				if err := visit(child); err != nil {
					return err
				}
			}
		}

		state[u] = 2
		path = path[:len(path)-1]
		g.buildOrder = append(g.buildOrder, u)
		return nil
	}

	for _, name := range g.sortedNames() {
		if state[name] == 0 {
			if err := visit(name); err != nil {
				return err
			}
		}
	}

	return nil
}

func (g *SetGraph) sortedNames() []InternedString {
	names := make([]InternedString, 0, len(g.decls))
	for name := range g.decls {
		names = append(names, name)
	}
	slices.SortFunc(names, func(a, b InternedString) int {
		return strings.Compare(a.String(), b.String())
	})
	return names
}

func buildCycleError(path []InternedString, dep InternedString) error {
	start := slices.Index(path, dep)
	parts := make([]string, 0, len(path)-start+1)
	for _, name := range path[start:] {
		parts = append(parts, name.String())
	}
	parts = append(parts, dep.String())
	return zerr.With(zerr.Wrap(ErrCycleDetected, "set references form a cycle"), "cycle", strings.Join(parts, " -> "))
}

// Build validates the graph and constructs every set. Shared children are built
// once and referenced by pointer from every parent.
func (g *SetGraph) Build() (map[InternedString]*NestedDependencies, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}

	built := make(map[InternedString]*NestedDependencies, len(g.decls))
	for _, name := range g.buildOrder {
		decl := g.decls[name]
		children := make([]*NestedDependencies, len(decl.Children))
		for i, child := range decl.Children {
			children[i] = built[child]
		}
		set, err := NewNestedDependencies(decl.Baseline, decl.Entries, children...)
		if err != nil {
			return nil, zerr.With(err, "set", name.String())
		}
		built[name] = set
	}
	return built, nil
}

// Walk yields declarations in build order. It assumes Validate returned nil.
func (g *SetGraph) Walk() iter.Seq[SetDecl] {
	return func(yield func(SetDecl) bool) {
		for _, name := range g.buildOrder {
			if !yield(g.decls[name]) {
				return
			}
		}
	}
}
