package registry

import (
	"fmt"
	"strings"
)

// ManifestNotFoundError reports a component name the source does not know.
// It is never retried: a bad reference stays bad.
type ManifestNotFoundError struct {
	Name string
}

func (e *ManifestNotFoundError) Error() string {
	return fmt.Sprintf("component %q not found in registry", e.Name)
}

// FetchError reports a transport failure after the retry budget is exhausted.
type FetchError struct {
	Name     string
	Attempts int
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetching %q failed after %d attempts: %v", e.Name, e.Attempts, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// CycleError reports a dependency cycle. Path holds the full cycle from the
// point of re-entry back to itself, e.g. [a, b, a].
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("cyclic registry dependency: %s", strings.Join(e.Path, " -> "))
}

// VersionConflictError reports irreconcilable python version constraints for
// one package, naming the components that declared them.
type VersionConflictError struct {
	Package     string
	Components  []string
	Constraints []string
}

func (e *VersionConflictError) Error() string {
	return fmt.Sprintf("conflicting version constraints for %q: %s (declared by %s)",
		e.Package, strings.Join(e.Constraints, " vs "), strings.Join(e.Components, ", "))
}
