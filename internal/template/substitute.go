package template

import (
	"fmt"
	"regexp"

	"github.com/sygaldry-ai/sygaldry/internal/manifest"
)

// varPattern matches {{name}} placeholders. Names follow identifier rules so
// stray double braces in payload code are left untouched.
var varPattern = regexp.MustCompile(`\{\{([A-Za-z_][A-Za-z0-9_]*)\}\}`)

// MissingVariableError reports a placeholder that resolved under no tier.
// Partial substitution is never written to disk.
type MissingVariableError struct {
	File     string
	Variable string
}

func (e *MissingVariableError) Error() string {
	return fmt.Sprintf("template variable %q in %s has no value (no override, project default, or manifest default)", e.Variable, e.File)
}

// Scan returns the placeholder names referenced in content, unique, in order
// of first appearance.
func Scan(content []byte) []string {
	seen := make(map[string]bool)
	var names []string
	for _, match := range varPattern.FindAllSubmatch(content, -1) {
		name := string(match[1])
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	return names
}

// Resolve computes the effective value of every template variable for one
// component. Precedence, highest first: per-invocation overrides, project
// defaults, the manifest's own defaults. Overrides and project defaults for
// variables the manifest never declares are carried too, since payload files
// may reference project-wide variables like "provider" directly.
func Resolve(m *manifest.Manifest, projectDefaults, overrides map[string]string) map[string]string {
	values := make(map[string]string, len(m.TemplateVariables))
	for name, def := range m.TemplateVariables {
		values[name] = def
	}
	for name, v := range projectDefaults {
		values[name] = v
	}
	for name, v := range overrides {
		values[name] = v
	}
	return values
}

// Substitute replaces every resolvable placeholder in content. Placeholders
// without a value are left as-is; callers that require completeness use
// SubstituteStrict. Pure bytes-in, bytes-out.
func Substitute(content []byte, values map[string]string) []byte {
	return varPattern.ReplaceAllFunc(content, func(match []byte) []byte {
		name := string(varPattern.FindSubmatch(match)[1])
		if v, ok := values[name]; ok {
			return []byte(v)
		}
		return match
	})
}

// SubstituteStrict replaces every placeholder in content, failing with a
// *MissingVariableError naming the file and variable if any placeholder has
// no resolved value.
func SubstituteStrict(file string, content []byte, values map[string]string) ([]byte, error) {
	for _, name := range Scan(content) {
		if _, ok := values[name]; !ok {
			return nil, &MissingVariableError{File: file, Variable: name}
		}
	}
	return Substitute(content, values), nil
}
