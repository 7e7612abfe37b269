package registry

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeComponent(t *testing.T, root, name, manifestJSON string, files map[string]string) {
	t.Helper()
	dir := filepath.Join(root, name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "component.json"), []byte(manifestJSON), 0644); err != nil {
		t.Fatal(err)
	}
	for path, content := range files {
		full := filepath.Join(dir, path)
		if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(full, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestLocalSource_Fetch(t *testing.T) {
	root := t.TempDir()
	writeComponent(t, root, "pdf_search_tool", toolManifestJSON, map[string]string{
		"tool.py": "print('hi')\n",
	})

	src, err := NewLocalSource(root)
	if err != nil {
		t.Fatal(err)
	}

	m, err := src.Fetch(context.Background(), "pdf_search_tool")
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if m.Name != "pdf_search_tool" {
		t.Errorf("Name = %q, want pdf_search_tool", m.Name)
	}

	data, err := src.FetchFile(context.Background(), "pdf_search_tool", "tool.py")
	if err != nil {
		t.Fatalf("FetchFile error: %v", err)
	}
	if string(data) != "print('hi')\n" {
		t.Errorf("FetchFile = %q", data)
	}
}

func TestLocalSource_NotFound(t *testing.T) {
	src, err := NewLocalSource(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	_, err = src.Fetch(context.Background(), "ghost_tool")
	var notFound *ManifestNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected *ManifestNotFoundError, got %v", err)
	}
}

func TestLocalSource_RejectsEscapingPaths(t *testing.T) {
	root := t.TempDir()
	writeComponent(t, root, "pdf_search_tool", toolManifestJSON, nil)

	src, err := NewLocalSource(root)
	if err != nil {
		t.Fatal(err)
	}

	for _, path := range []string{"../secret", "/etc/passwd"} {
		if _, err := src.FetchFile(context.Background(), "pdf_search_tool", path); err == nil {
			t.Errorf("FetchFile(%q) succeeded, want error", path)
		}
	}
}

func TestLocalSource_List(t *testing.T) {
	root := t.TempDir()
	writeComponent(t, root, "pdf_search_tool", toolManifestJSON, nil)
	writeComponent(t, root, "web_search_tool", `{
  "name": "web_search_tool",
  "version": "2.0.0",
  "type": "tool",
  "description": "Web search",
  "files_to_copy": [{"source": "tool.py", "destination": "tool.py"}],
  "target_directory_key": "tool"
}`, nil)
	// A directory without a manifest is not a component.
	if err := os.MkdirAll(filepath.Join(root, "scratch"), 0755); err != nil {
		t.Fatal(err)
	}

	src, err := NewLocalSource(root)
	if err != nil {
		t.Fatal(err)
	}

	index, err := src.List(context.Background())
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(index) != 2 {
		t.Fatalf("index len = %d, want 2: %+v", len(index), index)
	}
	if index[0].Name != "pdf_search_tool" || index[1].Name != "web_search_tool" {
		t.Errorf("index order = %s, %s; want sorted by name", index[0].Name, index[1].Name)
	}
	if index[1].Description != "Web search" {
		t.Errorf("Description = %q, want Web search", index[1].Description)
	}
}
