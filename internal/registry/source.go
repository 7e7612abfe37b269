package registry

import (
	"context"
	"sync"

	"github.com/sygaldry-ai/sygaldry/internal/manifest"
)

// IndexEntry is one row of a source's component index.
type IndexEntry struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
}

// Source supplies component manifests and their payload files.
type Source interface {
	// Fetch returns the manifest for a component name. Unknown names yield
	// *ManifestNotFoundError; transport failures yield *FetchError.
	Fetch(ctx context.Context, name string) (*manifest.Manifest, error)

	// FetchFile returns the raw bytes of one of a component's payload files.
	FetchFile(ctx context.Context, name, path string) ([]byte, error)

	// List enumerates every component the source knows about.
	List(ctx context.Context) ([]IndexEntry, error)
}

// call tracks a single in-flight or completed fetch.
type call struct {
	done chan struct{}
	m    *manifest.Manifest
	err  error
}

// cachingSource memoizes fetches per invocation and deduplicates concurrent
// fetches for the same name, so a diamond-shaped dependency graph hits the
// underlying source exactly once per manifest.
type cachingSource struct {
	src Source

	mu    sync.Mutex
	calls map[string]*call
}

// NewCachingSource wraps src with per-invocation memoization and in-flight
// request deduplication.
func NewCachingSource(src Source) Source {
	return &cachingSource{
		src:   src,
		calls: make(map[string]*call),
	}
}

func (c *cachingSource) Fetch(ctx context.Context, name string) (*manifest.Manifest, error) {
	c.mu.Lock()
	if cl, ok := c.calls[name]; ok {
		c.mu.Unlock()
		select {
		case <-cl.done:
			return cl.m, cl.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	cl := &call{done: make(chan struct{})}
	c.calls[name] = cl
	c.mu.Unlock()

	cl.m, cl.err = c.src.Fetch(ctx, name)
	close(cl.done)
	return cl.m, cl.err
}

func (c *cachingSource) FetchFile(ctx context.Context, name, path string) ([]byte, error) {
	return c.src.FetchFile(ctx, name, path)
}

func (c *cachingSource) List(ctx context.Context) ([]IndexEntry, error) {
	return c.src.List(ctx)
}

// DefaultPrefetchWorkers bounds concurrent manifest fetches during prefetch.
const DefaultPrefetchWorkers = 4

// Prefetch warms a source with the given names using a bounded worker count.
// Fetch errors are ignored here; they resurface when the graph builder asks
// for the same name.
func Prefetch(ctx context.Context, src Source, names []string, workers int) {
	if workers <= 0 {
		workers = DefaultPrefetchWorkers
	}

	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for _, name := range names {
		select {
		case <-ctx.Done():
			wg.Wait()
			return
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(n string) {
			defer wg.Done()
			defer func() { <-sem }()
			_, _ = src.Fetch(ctx, n)
		}(name)
	}

	wg.Wait()
}
