package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// pythonDependencyObject is the long-form JSON shape for a python dependency.
type pythonDependencyObject struct {
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
}

// UnmarshalJSON accepts both the shorthand string form ("httpx>=0.27.0") and
// the object form ({"name": "httpx", "version": ">=0.27.0"}).
func (d *PythonDependency) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		name, constraint := splitRequirement(s)
		if name == "" {
			return fmt.Errorf("invalid python dependency %q", s)
		}
		d.Name = name
		d.Constraint = constraint
		return nil
	}

	var obj pythonDependencyObject
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	if obj.Name == "" {
		return fmt.Errorf("python dependency object missing 'name'")
	}
	d.Name = obj.Name
	d.Constraint = obj.Version
	return nil
}

// MarshalJSON emits the object form so round-tripped manifests stay explicit.
func (d PythonDependency) MarshalJSON() ([]byte, error) {
	return json.Marshal(pythonDependencyObject{Name: d.Name, Version: d.Constraint})
}

// splitRequirement splits a pip requirement string into name and constraint.
// "httpx>=0.27.0" -> ("httpx", ">=0.27.0"); "httpx" -> ("httpx", "").
func splitRequirement(s string) (string, string) {
	s = strings.TrimSpace(s)
	idx := strings.IndexAny(s, "><=!~")
	if idx == -1 {
		return s, ""
	}
	return strings.TrimSpace(s[:idx]), strings.TrimSpace(s[idx:])
}

// ParseBytes parses and validates a component.json document.
// Required fields are checked here so malformed manifests fail fast instead
// of surfacing as missing-key errors deep inside planning.
func ParseBytes(data []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}

	if m.Name == "" {
		return nil, fmt.Errorf("manifest missing required 'name' field")
	}
	if m.Version == "" {
		return nil, fmt.Errorf("manifest %s missing required 'version' field", m.Name)
	}
	if _, err := ParseType(string(m.Type)); err != nil {
		return nil, fmt.Errorf("manifest %s: %w", m.Name, err)
	}
	if len(m.Files) == 0 {
		return nil, fmt.Errorf("manifest %s has no files_to_copy entries", m.Name)
	}
	for i, f := range m.Files {
		if f.Source == "" || f.Destination == "" {
			return nil, fmt.Errorf("manifest %s: files_to_copy[%d] needs both source and destination", m.Name, i)
		}
	}
	if m.TargetDirectoryKey == "" {
		return nil, fmt.Errorf("manifest %s missing required 'target_directory_key' field", m.Name)
	}
	if _, err := ParseType(m.TargetDirectoryKey); err != nil {
		return nil, fmt.Errorf("manifest %s: target_directory_key: %w", m.Name, err)
	}
	for _, dep := range m.RegistryDependencies {
		if dep == m.Name {
			return nil, fmt.Errorf("manifest %s lists itself as a registry dependency", m.Name)
		}
	}

	return &m, nil
}

// Parse reads and parses a component.json file from disk.
func Parse(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest %s: %w", path, err)
	}
	m, err := ParseBytes(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}
