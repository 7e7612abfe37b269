package registry

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sygaldry-ai/sygaldry/internal/manifest"
)

// manifestFileName is the manifest file every component directory must carry.
const manifestFileName = "component.json"

// LocalSource serves components from a registry directory tree where each
// component lives at <root>/<name>/component.json alongside its payload files.
type LocalSource struct {
	Root string
}

// NewLocalSource returns a source over a local registry tree.
func NewLocalSource(root string) (*LocalSource, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("registry path %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("registry path %s is not a directory", root)
	}
	return &LocalSource{Root: root}, nil
}

func (s *LocalSource) Fetch(ctx context.Context, name string) (*manifest.Manifest, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := filepath.Join(s.Root, name, manifestFileName)
	if _, err := os.Stat(path); err != nil {
		return nil, &ManifestNotFoundError{Name: name}
	}

	m, err := manifest.Parse(path)
	if err != nil {
		return nil, err
	}
	if m.Name != name {
		return nil, fmt.Errorf("manifest at %s declares name %q, expected %q", path, m.Name, name)
	}
	return m, nil
}

func (s *LocalSource) FetchFile(ctx context.Context, name, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Payload paths are manifest-relative; reject escapes from the
	// component directory.
	clean := filepath.Clean(path)
	if filepath.IsAbs(clean) || strings.HasPrefix(clean, "..") {
		return nil, fmt.Errorf("component %s: invalid file path %q", name, path)
	}

	full := filepath.Join(s.Root, name, clean)
	data, err := os.ReadFile(full)
	if err != nil {
		return nil, fmt.Errorf("reading %s file %s: %w", name, path, err)
	}
	return data, nil
}

func (s *LocalSource) List(ctx context.Context) ([]IndexEntry, error) {
	entries, err := os.ReadDir(s.Root)
	if err != nil {
		return nil, fmt.Errorf("listing registry %s: %w", s.Root, err)
	}

	var index []IndexEntry
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}

		m, err := manifest.Parse(filepath.Join(s.Root, entry.Name(), manifestFileName))
		if err != nil {
			continue // directories without a parseable manifest are not components
		}
		index = append(index, IndexEntry{
			Name:        m.Name,
			Version:     m.Version,
			Type:        string(m.Type),
			Description: m.Description,
		})
	}

	sort.Slice(index, func(i, j int) bool { return index[i].Name < index[j].Name })
	return index, nil
}
