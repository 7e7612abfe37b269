// Package cache provides an optional on-disk manifest cache layered over a
// registry source. Fresh entries short-circuit the network; stale entries are
// refreshed and kept as a fallback for transient fetch failures.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sygaldry-ai/sygaldry/internal/manifest"
	"github.com/sygaldry-ai/sygaldry/internal/registry"
)

// DefaultMaxAge is how long a cached manifest is served without revalidation.
const DefaultMaxAge = 24 * time.Hour

// entry is the on-disk cache record, keyed by component name+version.
type entry struct {
	Name      string             `json:"name"`
	Version   string             `json:"version"`
	FetchedAt time.Time          `json:"fetched_at"`
	Manifest  *manifest.Manifest `json:"manifest"`
}

// DiskCache wraps a Source with manifest caching under Dir.
type DiskCache struct {
	Src    registry.Source
	Dir    string
	MaxAge time.Duration
}

// New returns a DiskCache over src storing entries in dir.
func New(src registry.Source, dir string) *DiskCache {
	return &DiskCache{Src: src, Dir: dir, MaxAge: DefaultMaxAge}
}

func (c *DiskCache) Fetch(ctx context.Context, name string) (*manifest.Manifest, error) {
	cached, err := c.load(name)
	if err == nil && time.Since(cached.FetchedAt) <= c.MaxAge {
		return cached.Manifest, nil
	}

	m, fetchErr := c.Src.Fetch(ctx, name)
	if fetchErr != nil {
		// A stale cache entry still beats a transient network failure.
		// Bad references stay fatal.
		var fe *registry.FetchError
		if cached != nil && errors.As(fetchErr, &fe) {
			return cached.Manifest, nil
		}
		return nil, fetchErr
	}

	if err := c.store(m); err != nil {
		// Cache write failures must not fail the fetch.
		return m, nil
	}
	return m, nil
}

func (c *DiskCache) FetchFile(ctx context.Context, name, path string) ([]byte, error) {
	return c.Src.FetchFile(ctx, name, path)
}

func (c *DiskCache) List(ctx context.Context) ([]registry.IndexEntry, error) {
	return c.Src.List(ctx)
}

// load reads the newest cache entry for a component name, any version.
func (c *DiskCache) load(name string) (*entry, error) {
	matches, err := filepath.Glob(filepath.Join(c.Dir, name+"@*.json"))
	if err != nil || len(matches) == 0 {
		return nil, fmt.Errorf("no cache entry for %s", name)
	}

	var newest *entry
	for _, path := range matches {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var e entry
		if err := json.Unmarshal(data, &e); err != nil || e.Manifest == nil {
			continue
		}
		if newest == nil || e.FetchedAt.After(newest.FetchedAt) {
			newest = &e
		}
	}
	if newest == nil {
		return nil, fmt.Errorf("no readable cache entry for %s", name)
	}
	return newest, nil
}

func (c *DiskCache) store(m *manifest.Manifest) error {
	if err := os.MkdirAll(c.Dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(entry{
		Name:      m.Name,
		Version:   m.Version,
		FetchedAt: time.Now().UTC(),
		Manifest:  m,
	}, "", "  ")
	if err != nil {
		return err
	}

	path := filepath.Join(c.Dir, fmt.Sprintf("%s@%s.json", m.Name, m.Version))
	return os.WriteFile(path, data, 0644)
}
