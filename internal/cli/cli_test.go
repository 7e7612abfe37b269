package cli

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/sygaldry-ai/sygaldry/internal/manifest"
	"github.com/sygaldry-ai/sygaldry/internal/project"
	"github.com/sygaldry-ai/sygaldry/internal/registry"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil error", nil, exitOK},
		{"collision sentinel", errUnresolvedCollisions, exitCollision},
		{"wrapped collision sentinel", fmt.Errorf("add: %w", errUnresolvedCollisions), exitCollision},
		{"fatal error", errors.New("boom"), exitFatal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestInitHelpMatchesWrittenDefaults(t *testing.T) {
	dir := t.TempDir()
	if _, err := project.WriteDefault(dir); err != nil {
		t.Fatal(err)
	}
	cfg, err := project.Load(dir)
	if err != nil {
		t.Fatal(err)
	}

	for _, typ := range manifest.ValidTypes {
		if want := cfg.DirectoryFor(typ); !strings.Contains(initCmd.Long, want) {
			t.Errorf("init help does not mention default %s directory %q", typ, want)
		}
	}
}

func TestParseOverrides(t *testing.T) {
	defer func() {
		addProvider, addModel, addVars = "", "", nil
	}()

	addProvider = "anthropic"
	addModel = ""
	addVars = []string{"stream=true", "model=claude-sonnet"}

	got, err := parseOverrides()
	if err != nil {
		t.Fatalf("parseOverrides: %v", err)
	}
	want := map[string]string{
		"provider": "anthropic",
		"stream":   "true",
		"model":    "claude-sonnet",
	}
	if len(got) != len(want) {
		t.Fatalf("got %d overrides, want %d: %v", len(got), len(want), got)
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("override %q = %q, want %q", k, got[k], v)
		}
	}
}

func TestParseOverridesRejectsMalformedVar(t *testing.T) {
	defer func() { addVars = nil }()

	for _, bad := range []string{"novalue", "=empty"} {
		addVars = []string{bad}
		if _, err := parseOverrides(); err == nil {
			t.Errorf("parseOverrides accepted --var %q", bad)
		}
	}
}

func TestFilterEntries(t *testing.T) {
	entries := []registry.IndexEntry{
		{Name: "pdf_search_tool", Type: "tool", Description: "Search PDFs"},
		{Name: "research_agent", Type: "agent", Description: "Web research with PDF export"},
		{Name: "summarizer", Type: "agent", Description: "Summarize text"},
	}

	got := filterEntries(entries, "pdf", "")
	if len(got) != 2 {
		t.Fatalf("filterEntries(pdf) returned %d entries, want 2", len(got))
	}

	got = filterEntries(entries, "pdf", "agent")
	if len(got) != 1 || got[0].Name != "research_agent" {
		t.Fatalf("filterEntries(pdf, agent) = %v, want just research_agent", got)
	}

	if got := filterEntries(entries, "nomatch", ""); len(got) != 0 {
		t.Fatalf("filterEntries(nomatch) = %v, want empty", got)
	}
}
