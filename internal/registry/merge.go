package registry

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/sygaldry-ai/sygaldry/internal/manifest"
)

// Requirements is the union of every component's python and environment
// variable requirements, deduplicated and reconciled.
type Requirements struct {
	Python []manifest.PythonDependency
	Env    []manifest.EnvVar
}

// declaration ties one python constraint to the component that declared it.
type declaration struct {
	component  string
	constraint string
}

// MergeRequirements unions python_dependencies and environment_variables
// across a resolved set. Differing version constraints for the same package
// are intersected; irreconcilable constraints produce a
// *VersionConflictError naming the package and the declaring components.
func MergeRequirements(set *ResolvedSet) (*Requirements, error) {
	pythonDecls := make(map[string][]declaration)
	envByName := make(map[string]manifest.EnvVar)

	for _, name := range set.Names() {
		m := set.Components[name]

		for _, dep := range m.PythonDependencies {
			pythonDecls[dep.Name] = append(pythonDecls[dep.Name], declaration{
				component:  name,
				constraint: dep.Constraint,
			})
		}

		for _, ev := range m.EnvironmentVariables {
			merged, ok := envByName[ev.Name]
			if !ok {
				envByName[ev.Name] = ev
				continue
			}
			// A variable required by any component stays required.
			merged.Required = merged.Required || ev.Required
			if merged.Description == "" {
				merged.Description = ev.Description
			}
			envByName[ev.Name] = merged
		}
	}

	reqs := &Requirements{}

	var packages []string
	for pkg := range pythonDecls {
		packages = append(packages, pkg)
	}
	sort.Strings(packages)

	for _, pkg := range packages {
		constraint, err := intersectConstraints(pkg, pythonDecls[pkg])
		if err != nil {
			return nil, err
		}
		reqs.Python = append(reqs.Python, manifest.PythonDependency{
			Name:       pkg,
			Constraint: constraint,
		})
	}

	var envNames []string
	for name := range envByName {
		envNames = append(envNames, name)
	}
	sort.Strings(envNames)
	for _, name := range envNames {
		reqs.Env = append(reqs.Env, envByName[name])
	}

	return reqs, nil
}

// intersectConstraints reconciles all constraints declared for one package.
// Identical (or absent) constraints collapse to one. Differing constraints
// are ANDed and checked for satisfiability; an empty intersection is a
// conflict, never a silent pick.
func intersectConstraints(pkg string, decls []declaration) (string, error) {
	unique := make([]string, 0, len(decls))
	seen := make(map[string]bool)
	for _, d := range decls {
		if d.constraint == "" || seen[d.constraint] {
			continue
		}
		seen[d.constraint] = true
		unique = append(unique, d.constraint)
	}

	switch len(unique) {
	case 0:
		return "", nil
	case 1:
		return unique[0], nil
	}

	normalized := make([]string, len(unique))
	for i, c := range unique {
		normalized[i] = pipToSemver(c)
	}

	combined, err := semver.NewConstraint(strings.Join(normalized, ", "))
	if err != nil {
		return "", fmt.Errorf("package %q: unparseable version constraints %v (declared by %s): %w",
			pkg, unique, strings.Join(declaringComponents(decls), ", "), err)
	}

	if !satisfiable(combined, normalized) {
		return "", &VersionConflictError{
			Package:     pkg,
			Components:  declaringComponents(decls),
			Constraints: unique,
		}
	}

	return simplify(unique), nil
}

func declaringComponents(decls []declaration) []string {
	seen := make(map[string]bool)
	var names []string
	for _, d := range decls {
		if !seen[d.component] {
			seen[d.component] = true
			names = append(names, d.component)
		}
	}
	sort.Strings(names)
	return names
}

// pipToSemver translates pip specifier operators into the syntax the semver
// constraint parser understands: "==1.2.3" -> "=1.2.3". The compatible-release
// operator pins everything but the last given segment, so "~=1.2" allows the
// whole 1.x line (caret) while "~=1.2.3" only allows 1.2.x (tilde).
func pipToSemver(c string) string {
	parts := strings.Split(c, ",")
	for i, p := range parts {
		p = strings.TrimSpace(p)
		switch {
		case strings.HasPrefix(p, "=="):
			p = "=" + strings.TrimPrefix(p, "==")
		case strings.HasPrefix(p, "~="):
			v := strings.TrimPrefix(p, "~=")
			if strings.Count(v, ".") == 1 {
				p = "^" + v
			} else {
				p = "~" + v
			}
		}
		parts[i] = p
	}
	return strings.Join(parts, ", ")
}

var versionLiteral = regexp.MustCompile(`\d+(\.\d+){0,2}`)

// satisfiable probes the combined constraint with witness versions derived
// from the version literals appearing in the constraints: each literal plus
// its neighboring bumps and decrements. Conservative by construction — it
// can miss exotic satisfiable combinations, but an accepted intersection is
// always genuinely non-empty.
func satisfiable(combined *semver.Constraints, normalized []string) bool {
	witnesses := map[string]*semver.Version{}
	add := func(v *semver.Version) {
		witnesses[v.String()] = v
	}

	if zero, err := semver.NewVersion("0.0.0"); err == nil {
		add(zero)
	}

	for _, c := range normalized {
		for _, lit := range versionLiteral.FindAllString(c, -1) {
			v, err := semver.NewVersion(lit)
			if err != nil {
				continue
			}
			add(v)
			for _, bumped := range []semver.Version{v.IncPatch(), v.IncMinor(), v.IncMajor()} {
				b := bumped
				add(&b)
			}
			for _, dec := range decrements(v) {
				add(dec)
			}
		}
	}

	for _, w := range witnesses {
		if combined.Check(w) {
			return true
		}
	}
	return false
}

// decrements returns versions just below v at each position.
func decrements(v *semver.Version) []*semver.Version {
	var out []*semver.Version
	mk := func(major, minor, patch uint64) {
		nv, err := semver.NewVersion(fmt.Sprintf("%d.%d.%d", major, minor, patch))
		if err == nil {
			out = append(out, nv)
		}
	}
	if v.Patch() > 0 {
		mk(v.Major(), v.Minor(), v.Patch()-1)
	}
	if v.Minor() > 0 {
		mk(v.Major(), v.Minor()-1, 0)
	}
	if v.Major() > 0 {
		mk(v.Major()-1, 0, 0)
	}
	return out
}

// simplify renders the merged constraint back into pip syntax. When every
// declared constraint is a plain lower bound, the tightest one wins
// (">=1.0" ∩ ">=2.0" is ">=2.0"); otherwise the constraints are ANDed with
// the pip comma separator.
func simplify(constraints []string) string {
	var best string
	var bestVersion *semver.Version

	for _, c := range constraints {
		trimmed := strings.TrimSpace(c)
		if !strings.HasPrefix(trimmed, ">=") || strings.Contains(trimmed, ",") {
			bestVersion = nil
			break
		}
		v, err := semver.NewVersion(strings.TrimSpace(strings.TrimPrefix(trimmed, ">=")))
		if err != nil {
			bestVersion = nil
			break
		}
		if bestVersion == nil || v.GreaterThan(bestVersion) {
			bestVersion = v
			best = trimmed
		}
	}

	if bestVersion != nil {
		return best
	}
	return strings.Join(constraints, ",")
}
