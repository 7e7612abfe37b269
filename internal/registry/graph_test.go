package registry

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/sygaldry-ai/sygaldry/internal/manifest"
)

// fakeSource is an in-memory Source for planning tests.
type fakeSource struct {
	mu         sync.Mutex
	manifests  map[string]*manifest.Manifest
	files      map[string][]byte // keyed "name/path"
	fetchCount map[string]int
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		manifests:  make(map[string]*manifest.Manifest),
		files:      make(map[string][]byte),
		fetchCount: make(map[string]int),
	}
}

// add registers a minimal tool manifest with the given registry dependencies.
func (f *fakeSource) add(name string, deps ...string) *manifest.Manifest {
	m := &manifest.Manifest{
		Name:                 name,
		Version:              "1.0.0",
		Type:                 manifest.TypeTool,
		Files:                []manifest.FileEntry{{Source: "tool.py", Destination: "tool.py"}},
		TargetDirectoryKey:   "tool",
		RegistryDependencies: deps,
	}
	f.manifests[name] = m
	f.files[name+"/tool.py"] = []byte("# " + name + "\n")
	return m
}

func (f *fakeSource) Fetch(ctx context.Context, name string) (*manifest.Manifest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetchCount[name]++
	m, ok := f.manifests[name]
	if !ok {
		return nil, &ManifestNotFoundError{Name: name}
	}
	return m, nil
}

func (f *fakeSource) FetchFile(ctx context.Context, name, path string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.files[name+"/"+path]
	if !ok {
		return nil, fmt.Errorf("no file %s for component %s", path, name)
	}
	return data, nil
}

func (f *fakeSource) List(ctx context.Context) ([]IndexEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var index []IndexEntry
	for name, m := range f.manifests {
		index = append(index, IndexEntry{Name: name, Version: m.Version, Type: string(m.Type)})
	}
	return index, nil
}

func TestBuildGraph_Closure(t *testing.T) {
	src := newFakeSource()
	src.add("tool_a")
	src.add("tool_b", "tool_a")
	src.add("agent_c", "tool_a", "tool_b")

	set, err := BuildGraph(context.Background(), src, []string{"agent_c"})
	if err != nil {
		t.Fatalf("BuildGraph error: %v", err)
	}

	if len(set.Components) != 3 {
		t.Fatalf("Components len = %d, want 3", len(set.Components))
	}
	for name, deps := range set.Edges {
		for _, dep := range deps {
			if _, ok := set.Components[dep]; !ok {
				t.Errorf("closure violated: %s depends on %s, which is not in the set", name, dep)
			}
		}
	}
}

func TestBuildGraph_DiamondFetchesOnce(t *testing.T) {
	src := newFakeSource()
	src.add("shared_tool")
	src.add("left_tool", "shared_tool")
	src.add("right_tool", "shared_tool")
	src.add("top_agent", "left_tool", "right_tool")

	cached := NewCachingSource(src)
	set, err := BuildGraph(context.Background(), cached, []string{"top_agent"})
	if err != nil {
		t.Fatalf("BuildGraph error: %v", err)
	}
	if len(set.Components) != 4 {
		t.Fatalf("Components len = %d, want 4", len(set.Components))
	}
	if got := src.fetchCount["shared_tool"]; got != 1 {
		t.Errorf("shared_tool fetched %d times, want 1", got)
	}
}

func TestBuildGraph_Cycle(t *testing.T) {
	src := newFakeSource()
	src.add("a_tool", "b_tool")
	src.add("b_tool", "a_tool")

	_, err := BuildGraph(context.Background(), src, []string{"a_tool"})
	var cycleErr *CycleError
	if !errors.As(err, &cycleErr) {
		t.Fatalf("expected *CycleError, got %v", err)
	}
	if len(cycleErr.Path) < 3 {
		t.Fatalf("cycle path %v too short", cycleErr.Path)
	}
	if cycleErr.Path[0] != cycleErr.Path[len(cycleErr.Path)-1] {
		t.Errorf("cycle path %v does not close on itself", cycleErr.Path)
	}
}

func TestBuildGraph_MissingDependencyIsFatal(t *testing.T) {
	src := newFakeSource()
	src.add("agent_a", "ghost_tool")

	_, err := BuildGraph(context.Background(), src, []string{"agent_a"})
	var notFound *ManifestNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected *ManifestNotFoundError, got %v", err)
	}
	if notFound.Name != "ghost_tool" {
		t.Errorf("Name = %q, want ghost_tool", notFound.Name)
	}
}

func TestBuildGraph_Cancelled(t *testing.T) {
	src := newFakeSource()
	src.add("tool_a")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := BuildGraph(ctx, src, []string{"tool_a"}); err == nil {
		t.Fatal("expected error from cancelled context")
	}
}

func TestCachingSource_DeduplicatesConcurrentFetches(t *testing.T) {
	src := newFakeSource()
	src.add("tool_a")
	cached := NewCachingSource(src)

	var wg sync.WaitGroup
	var failures atomic.Int64
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := cached.Fetch(context.Background(), "tool_a"); err != nil {
				failures.Add(1)
			}
		}()
	}
	wg.Wait()

	if failures.Load() != 0 {
		t.Fatalf("%d fetches failed", failures.Load())
	}
	if got := src.fetchCount["tool_a"]; got != 1 {
		t.Errorf("underlying source fetched %d times, want 1", got)
	}
}

func TestPrefetch_WarmsCache(t *testing.T) {
	src := newFakeSource()
	src.add("tool_a")
	src.add("tool_b")
	cached := NewCachingSource(src)

	Prefetch(context.Background(), cached, []string{"tool_a", "tool_b", "tool_a"}, 2)

	if got := src.fetchCount["tool_a"]; got != 1 {
		t.Errorf("tool_a fetched %d times, want 1", got)
	}
	if got := src.fetchCount["tool_b"]; got != 1 {
		t.Errorf("tool_b fetched %d times, want 1", got)
	}
}
