package registry

import (
	"context"
	"sort"

	"github.com/sygaldry-ai/sygaldry/internal/manifest"
)

// ResolvedSet is the closure of a root component set over registry
// dependencies: every name referenced by any component's
// registry_dependencies is itself a key in Components.
type ResolvedSet struct {
	Components map[string]*manifest.Manifest
	// Edges maps each component to its direct registry dependencies.
	Edges map[string][]string
}

// Names returns the component names in the set in ascending order.
func (s *ResolvedSet) Names() []string {
	names := make([]string, 0, len(s.Components))
	for name := range s.Components {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// node colors for the depth-first expansion.
const (
	colorWhite = iota // not yet visited
	colorGray         // on the current expansion path
	colorBlack        // fully expanded
)

// frame is one entry on the explicit expansion stack.
type frame struct {
	name string
	deps []string
	next int
}

// BuildGraph expands the root names into the full transitive dependency set.
// A missing manifest aborts resolution immediately; a cycle is reported with
// its exact path. Partial graphs are never returned.
func BuildGraph(ctx context.Context, src Source, roots []string) (*ResolvedSet, error) {
	set := &ResolvedSet{
		Components: make(map[string]*manifest.Manifest),
		Edges:      make(map[string][]string),
	}
	state := make(map[string]int)

	var stack []*frame
	var path []string

	push := func(name string) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		m, err := src.Fetch(ctx, name)
		if err != nil {
			return err
		}

		deps := append([]string(nil), m.RegistryDependencies...)
		sort.Strings(deps)

		set.Components[name] = m
		set.Edges[name] = deps
		state[name] = colorGray
		stack = append(stack, &frame{name: name, deps: deps})
		path = append(path, name)
		return nil
	}

	sortedRoots := append([]string(nil), roots...)
	sort.Strings(sortedRoots)

	for _, root := range sortedRoots {
		if state[root] == colorBlack {
			continue
		}
		if err := push(root); err != nil {
			return nil, err
		}

		for len(stack) > 0 {
			f := stack[len(stack)-1]

			if f.next < len(f.deps) {
				dep := f.deps[f.next]
				f.next++

				switch state[dep] {
				case colorBlack:
					// Already expanded elsewhere in the graph.
				case colorGray:
					return nil, &CycleError{Path: cyclePath(path, dep)}
				default:
					if err := push(dep); err != nil {
						return nil, err
					}
				}
			} else {
				state[f.name] = colorBlack
				stack = stack[:len(stack)-1]
				path = path[:len(path)-1]
			}
		}
	}

	return set, nil
}

// cyclePath slices the current expansion path from the re-entered name to the
// end and closes the loop, e.g. path [c, a, b] re-entering a yields [a, b, a].
func cyclePath(path []string, reentered string) []string {
	start := 0
	for i, name := range path {
		if name == reentered {
			start = i
			break
		}
	}
	cycle := append([]string(nil), path[start:]...)
	return append(cycle, reentered)
}
