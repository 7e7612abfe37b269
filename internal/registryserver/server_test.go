package registryserver

import (
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/sygaldry-ai/sygaldry/internal/registry"
)

func newTestRegistry(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	dir := filepath.Join(root, "pdf_search_tool")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	manifestJSON := `{
  "name": "pdf_search_tool",
  "version": "1.0.0",
  "type": "tool",
  "files_to_copy": [{"source": "tool.py", "destination": "tool.py"}],
  "target_directory_key": "tool"
}`
	if err := os.WriteFile(filepath.Join(dir, "component.json"), []byte(manifestJSON), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "tool.py"), []byte("# payload\n"), 0644); err != nil {
		t.Fatal(err)
	}
	return root
}

// The served tree must round-trip through the HTTP source unchanged.
func TestServer_RoundTripWithHTTPSource(t *testing.T) {
	handler, err := New(newTestRegistry(t))
	if err != nil {
		t.Fatal(err)
	}
	srv := httptest.NewServer(handler)
	defer srv.Close()

	src := registry.NewHTTPSource(srv.URL)

	index, err := src.List(context.Background())
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(index) != 1 || index[0].Name != "pdf_search_tool" {
		t.Fatalf("index = %+v", index)
	}

	m, err := src.Fetch(context.Background(), "pdf_search_tool")
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if m.Version != "1.0.0" {
		t.Errorf("Version = %q", m.Version)
	}

	data, err := src.FetchFile(context.Background(), "pdf_search_tool", "tool.py")
	if err != nil {
		t.Fatalf("FetchFile error: %v", err)
	}
	if string(data) != "# payload\n" {
		t.Errorf("payload = %q", data)
	}
}

func TestServer_UnknownComponent(t *testing.T) {
	handler, err := New(newTestRegistry(t))
	if err != nil {
		t.Fatal(err)
	}
	srv := httptest.NewServer(handler)
	defer srv.Close()

	src := registry.NewHTTPSource(srv.URL)
	_, err = src.Fetch(context.Background(), "ghost_tool")
	if err == nil {
		t.Fatal("expected error for unknown component")
	}
}
