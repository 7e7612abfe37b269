package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"go.yaml.in/yaml/v3"

	"github.com/sygaldry-ai/sygaldry/internal/manifest"
)

// ConfigFileNames is the lookup order for project configuration files.
var ConfigFileNames = []string{"funcn.json", "sygaldry.json", "sygaldry.yaml"}

// rawConfig mirrors the on-disk shape with one directory field per type.
type rawConfig struct {
	AgentDirectory          string            `json:"agentDirectory" yaml:"agentDirectory"`
	ToolDirectory           string            `json:"toolDirectory" yaml:"toolDirectory"`
	PromptTemplateDirectory string            `json:"promptTemplateDirectory" yaml:"promptTemplateDirectory"`
	ResponseModelDirectory  string            `json:"responseModelDirectory" yaml:"responseModelDirectory"`
	EvalDirectory           string            `json:"evalDirectory" yaml:"evalDirectory"`
	Aliases                 map[string]string `json:"aliases,omitempty" yaml:"aliases,omitempty"`
	DefaultProvider         string            `json:"defaultProvider,omitempty" yaml:"defaultProvider,omitempty"`
	DefaultModel            string            `json:"defaultModel,omitempty" yaml:"defaultModel,omitempty"`
	Stream                  bool              `json:"stream,omitempty" yaml:"stream,omitempty"`
}

// Config is the validated project configuration. The directory map is total
// over the component type enum, so DirectoryFor never fails at install time.
type Config struct {
	directories     map[manifest.ComponentType]string
	Aliases         map[string]string
	DefaultProvider string
	DefaultModel    string
	Stream          bool

	// Path is the file the config was loaded from (empty for defaults).
	Path string
}

// DirectoryFor returns the destination directory for a component type,
// relative to the project root.
func (c *Config) DirectoryFor(t manifest.ComponentType) string {
	return c.directories[t]
}

// TemplateDefaults returns the project-level template variable defaults
// derived from provider/model/stream settings.
func (c *Config) TemplateDefaults() map[string]string {
	defaults := make(map[string]string)
	if c.DefaultProvider != "" {
		defaults["provider"] = c.DefaultProvider
	}
	if c.DefaultModel != "" {
		defaults["model"] = c.DefaultModel
	}
	defaults["stream"] = strconv.FormatBool(c.Stream)
	return defaults
}

// fromRaw validates the raw shape and builds the total directory map.
func fromRaw(raw *rawConfig, path string) (*Config, error) {
	dirs := map[manifest.ComponentType]string{
		manifest.TypeAgent:          raw.AgentDirectory,
		manifest.TypeTool:           raw.ToolDirectory,
		manifest.TypePromptTemplate: raw.PromptTemplateDirectory,
		manifest.TypeResponseModel:  raw.ResponseModelDirectory,
		manifest.TypeEval:           raw.EvalDirectory,
	}
	for _, t := range manifest.ValidTypes {
		if dirs[t] == "" {
			return nil, fmt.Errorf("%s: missing directory for component type %q", path, t)
		}
	}

	return &Config{
		directories:     dirs,
		Aliases:         raw.Aliases,
		DefaultProvider: raw.DefaultProvider,
		DefaultModel:    raw.DefaultModel,
		Stream:          raw.Stream,
		Path:            path,
	}, nil
}

// Load finds and parses the project configuration in dir.
func Load(dir string) (*Config, error) {
	for _, name := range ConfigFileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		return LoadFile(path)
	}
	return nil, fmt.Errorf("no project configuration found in %s (looked for %v); run 'sygaldry init' first", dir, ConfigFileNames)
}

// LoadFile parses a specific project configuration file.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading project config %s: %w", path, err)
	}

	var raw rawConfig
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parsing project config %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parsing project config %s: %w", path, err)
		}
	}

	return fromRaw(&raw, path)
}

// defaultRaw is the configuration written by 'sygaldry init'.
func defaultRaw() *rawConfig {
	return &rawConfig{
		AgentDirectory:          "src/agents",
		ToolDirectory:           "src/tools",
		PromptTemplateDirectory: "src/prompts",
		ResponseModelDirectory:  "src/response_models",
		EvalDirectory:           "src/evals",
		Aliases:                 map[string]string{},
		DefaultProvider:         "openai",
		DefaultModel:            "gpt-4o-mini",
		Stream:                  false,
	}
}

// WriteDefault writes a default sygaldry.json into dir. It refuses to
// overwrite an existing configuration.
func WriteDefault(dir string) (string, error) {
	for _, name := range ConfigFileNames {
		existing := filepath.Join(dir, name)
		if _, err := os.Stat(existing); err == nil {
			return "", fmt.Errorf("project already initialized: %s exists", existing)
		}
	}

	path := filepath.Join(dir, "sygaldry.json")
	data, err := json.MarshalIndent(defaultRaw(), "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling default config: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("writing project config: %w", err)
	}
	return path, nil
}
