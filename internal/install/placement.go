package install

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sygaldry-ai/sygaldry/internal/manifest"
	"github.com/sygaldry-ai/sygaldry/internal/project"
)

// FileStatus classifies the outcome planned or recorded for one file.
type FileStatus string

const (
	StatusWritten          FileStatus = "written"
	StatusSkippedExisting  FileStatus = "skipped_existing"
	StatusSkippedIdentical FileStatus = "skipped_identical"
	StatusFailed           FileStatus = "failed"
)

// CollisionError records a destination that exists with different content.
// Collisions are per-file and non-fatal; the run surfaces them and exits
// non-zero unless --force resolved them.
type CollisionError struct {
	Component   string
	Destination string
}

func (e *CollisionError) Error() string {
	return fmt.Sprintf("%s: destination %s exists with different content (use --force to overwrite)", e.Component, e.Destination)
}

// PlacedFile is one file of an install step with its resolved destination,
// rendered content, and classification.
type PlacedFile struct {
	Source      string
	Destination string
	Content     []byte
	Status      FileStatus
}

// ComponentDir returns the destination root for a component:
// <project>/<directory_map[target_directory_key]>/<slug>.
func ComponentDir(projectRoot string, cfg *project.Config, m *manifest.Manifest) (string, error) {
	key, err := manifest.ParseType(m.TargetDirectoryKey)
	if err != nil {
		return "", fmt.Errorf("component %s: %w", m.Name, err)
	}
	return filepath.Join(projectRoot, cfg.DirectoryFor(key), m.Slug()), nil
}

// Place computes the destination path and collision classification for every
// rendered file of a component. Existing identical files are idempotent
// no-ops; differing files become collisions unless force is set. Creating
// directories is never a collision.
func Place(m *manifest.Manifest, destRoot string, rendered map[string][]byte, force bool) ([]PlacedFile, []CollisionError, error) {
	var placed []PlacedFile
	var collisions []CollisionError

	for _, entry := range m.Files {
		content, ok := rendered[entry.Source]
		if !ok {
			return nil, nil, fmt.Errorf("component %s: no rendered content for %s", m.Name, entry.Source)
		}

		dest := filepath.Join(destRoot, filepath.FromSlash(entry.Destination))
		status, err := classify(dest, content, force)
		if err != nil {
			return nil, nil, fmt.Errorf("component %s: inspecting %s: %w", m.Name, dest, err)
		}
		if status == StatusSkippedExisting {
			collisions = append(collisions, CollisionError{Component: m.Name, Destination: dest})
		}

		placed = append(placed, PlacedFile{
			Source:      entry.Source,
			Destination: dest,
			Content:     content,
			Status:      status,
		})
	}

	return placed, collisions, nil
}

// classify compares the about-to-be-written content with what is on disk.
func classify(dest string, content []byte, force bool) (FileStatus, error) {
	existing, err := os.ReadFile(dest)
	if os.IsNotExist(err) {
		return StatusWritten, nil
	}
	if err != nil {
		return StatusFailed, err
	}

	if bytes.Equal(existing, content) {
		return StatusSkippedIdentical, nil
	}
	if force {
		return StatusWritten, nil
	}
	return StatusSkippedExisting, nil
}
