package registry

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

const toolManifestJSON = `{
  "name": "pdf_search_tool",
  "version": "1.0.0",
  "type": "tool",
  "files_to_copy": [{"source": "tool.py", "destination": "tool.py"}],
  "target_directory_key": "tool"
}`

func newTestHTTPSource(t *testing.T, handler http.Handler) *HTTPSource {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	src := NewHTTPSource(srv.URL)
	src.Backoff = time.Millisecond
	return src
}

func TestHTTPSource_Fetch(t *testing.T) {
	src := newTestHTTPSource(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/pdf_search_tool/component.json" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(toolManifestJSON))
	}))

	m, err := src.Fetch(context.Background(), "pdf_search_tool")
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if m.Name != "pdf_search_tool" || m.Version != "1.0.0" {
		t.Errorf("got %s@%s, want pdf_search_tool@1.0.0", m.Name, m.Version)
	}
}

func TestHTTPSource_NotFoundIsNotRetried(t *testing.T) {
	var hits atomic.Int64
	src := newTestHTTPSource(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.NotFound(w, r)
	}))

	_, err := src.Fetch(context.Background(), "ghost_tool")
	var notFound *ManifestNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected *ManifestNotFoundError, got %v", err)
	}
	if notFound.Name != "ghost_tool" {
		t.Errorf("Name = %q, want ghost_tool", notFound.Name)
	}
	if hits.Load() != 1 {
		t.Errorf("server hit %d times, want exactly 1 (no retries on 404)", hits.Load())
	}
}

func TestHTTPSource_RetriesTransientErrors(t *testing.T) {
	var hits atomic.Int64
	src := newTestHTTPSource(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		w.Write([]byte(toolManifestJSON))
	}))

	m, err := src.Fetch(context.Background(), "pdf_search_tool")
	if err != nil {
		t.Fatalf("Fetch error after retries: %v", err)
	}
	if m.Name != "pdf_search_tool" {
		t.Errorf("Name = %q, want pdf_search_tool", m.Name)
	}
	if hits.Load() != 3 {
		t.Errorf("server hit %d times, want 3", hits.Load())
	}
}

func TestHTTPSource_RetryBudgetExhausted(t *testing.T) {
	var hits atomic.Int64
	src := newTestHTTPSource(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.Error(w, "boom", http.StatusInternalServerError)
	}))

	_, err := src.Fetch(context.Background(), "pdf_search_tool")
	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected *FetchError, got %v", err)
	}
	if fetchErr.Attempts != defaultMaxAttempts {
		t.Errorf("Attempts = %d, want %d", fetchErr.Attempts, defaultMaxAttempts)
	}
	if hits.Load() != int64(defaultMaxAttempts) {
		t.Errorf("server hit %d times, want %d", hits.Load(), defaultMaxAttempts)
	}
}

func TestHTTPSource_List(t *testing.T) {
	src := newTestHTTPSource(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/index.json" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`[{"name":"pdf_search_tool","version":"1.0.0","type":"tool"}]`))
	}))

	index, err := src.List(context.Background())
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(index) != 1 || index[0].Name != "pdf_search_tool" {
		t.Errorf("index = %+v, want one pdf_search_tool entry", index)
	}
}

func TestHTTPSource_NameMismatchRejected(t *testing.T) {
	src := newTestHTTPSource(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(toolManifestJSON))
	}))

	if _, err := src.Fetch(context.Background(), "other_tool"); err == nil {
		t.Fatal("expected error when manifest name does not match the requested name")
	}
}
