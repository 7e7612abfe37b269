package manifest

import (
	"fmt"
	"strings"
)

// ComponentType is the closed set of component kinds the registry serves.
type ComponentType string

// Component type constants for the type discriminator field.
const (
	TypeAgent          ComponentType = "agent"
	TypeTool           ComponentType = "tool"
	TypePromptTemplate ComponentType = "prompt_template"
	TypeResponseModel  ComponentType = "response_model"
	TypeEval           ComponentType = "eval"
)

// ValidTypes contains all valid component type values.
var ValidTypes = []ComponentType{
	TypeAgent,
	TypeTool,
	TypePromptTemplate,
	TypeResponseModel,
	TypeEval,
}

// ParseType converts a string into a ComponentType, rejecting unknown values.
func ParseType(s string) (ComponentType, error) {
	for _, t := range ValidTypes {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown component type %q (valid: %s)", s, joinTypes())
}

func joinTypes() string {
	parts := make([]string, len(ValidTypes))
	for i, t := range ValidTypes {
		parts[i] = string(t)
	}
	return strings.Join(parts, ", ")
}

// FileEntry describes one file to be copied during installation.
type FileEntry struct {
	Source      string `json:"source"`
	Destination string `json:"destination"`
	Kind        string `json:"type,omitempty"`
}

// PythonDependency is a single python package requirement. Constraint is a
// pip-style version specifier ("" means unconstrained).
type PythonDependency struct {
	Name       string
	Constraint string
}

// String renders the dependency back into pip requirement syntax.
func (d PythonDependency) String() string {
	return d.Name + d.Constraint
}

// EnvVar describes an environment variable a component reads at runtime.
type EnvVar struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Required    bool   `json:"required,omitempty"`
}

// Manifest is the typed representation of a component.json file.
// Manifests are immutable once parsed; resolution never mutates them.
type Manifest struct {
	Name                  string             `json:"name"`
	Version               string             `json:"version"`
	Type                  ComponentType      `json:"type"`
	Description           string             `json:"description,omitempty"`
	Files                 []FileEntry        `json:"files_to_copy"`
	TargetDirectoryKey    string             `json:"target_directory_key"`
	PythonDependencies    []PythonDependency `json:"python_dependencies,omitempty"`
	RegistryDependencies  []string           `json:"registry_dependencies,omitempty"`
	EnvironmentVariables  []EnvVar           `json:"environment_variables,omitempty"`
	TemplateVariables     map[string]string  `json:"template_variables,omitempty"`
	SupportsLilypad       bool               `json:"supports_lilypad,omitempty"`
	SupportsObservability bool               `json:"supports_observability,omitempty"`
	MCPCompatible         bool               `json:"mcp_compatible,omitempty"`
}

// Slug returns the manifest name with its type suffix stripped, per the
// registry naming convention: "pdf_search_tool" -> "pdf_search". Names
// without the suffix are returned unchanged.
func (m *Manifest) Slug() string {
	suffix := "_" + string(m.Type)
	if strings.HasSuffix(m.Name, suffix) && len(m.Name) > len(suffix) {
		return strings.TrimSuffix(m.Name, suffix)
	}
	return m.Name
}
