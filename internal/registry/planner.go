package registry

import (
	"sort"

	"github.com/sygaldry-ai/sygaldry/internal/manifest"
)

// Plan orders a resolved set into an installation sequence where every
// dependency precedes its dependents (Kahn's algorithm). Ties among ready
// nodes are broken by ascending component name, so identical inputs always
// produce identical plans.
func Plan(set *ResolvedSet) ([]*manifest.Manifest, error) {
	// indegree counts unsatisfied dependencies per component.
	indegree := make(map[string]int, len(set.Components))
	// dependents inverts the edges: dependency -> components that need it.
	dependents := make(map[string][]string)

	for name := range set.Components {
		indegree[name] = 0
	}
	for name, deps := range set.Edges {
		for _, dep := range deps {
			indegree[name]++
			dependents[dep] = append(dependents[dep], name)
		}
	}

	var ready []string
	for name, degree := range indegree {
		if degree == 0 {
			ready = append(ready, name)
		}
	}
	sort.Strings(ready)

	ordered := make([]*manifest.Manifest, 0, len(set.Components))
	for len(ready) > 0 {
		name := ready[0]
		ready = ready[1:]
		ordered = append(ordered, set.Components[name])

		for _, dependent := range dependents[name] {
			indegree[dependent]--
			if indegree[dependent] == 0 {
				ready = insertSorted(ready, dependent)
			}
		}
	}

	// Unreachable if BuildGraph did its job, but a surviving cycle must
	// never produce a truncated plan.
	if len(ordered) != len(set.Components) {
		var remaining []string
		for name, degree := range indegree {
			if degree > 0 {
				remaining = append(remaining, name)
			}
		}
		sort.Strings(remaining)
		return nil, &CycleError{Path: remaining}
	}

	return ordered, nil
}

// insertSorted inserts name into a sorted slice, keeping it sorted.
func insertSorted(s []string, name string) []string {
	i := sort.SearchStrings(s, name)
	s = append(s, "")
	copy(s[i+1:], s[i:])
	s[i] = name
	return s
}
