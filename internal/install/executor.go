package install

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sygaldry-ai/sygaldry/internal/manifest"
	"github.com/sygaldry-ai/sygaldry/internal/project"
	"github.com/sygaldry-ai/sygaldry/internal/registry"
	"github.com/sygaldry-ai/sygaldry/internal/template"
)

// Options control a single install run.
type Options struct {
	Force     bool
	DryRun    bool
	Overrides map[string]string
	// PrefetchWorkers bounds concurrent manifest fetches (0 = default).
	PrefetchWorkers int
	// Confirm, when set, is called with the fully planned result before any
	// file is written. Returning false cancels the run.
	Confirm func(*Result) bool
}

// StepResult is the outcome of one component's installation.
type StepResult struct {
	Component string
	Version   string
	Type      manifest.ComponentType
	Files     []PlacedFile
}

// Result is the structured outcome of a run, including the merged
// requirement lists for the caller to hand to an external package manager.
type Result struct {
	Steps      []StepResult
	Python     []manifest.PythonDependency
	Env        []manifest.EnvVar
	Collisions []CollisionError
	DryRun     bool
	Cancelled  bool
}

// Written counts files actually (or, for dry runs, about to be) written.
func (r *Result) Written() int {
	n := 0
	for _, step := range r.Steps {
		for _, f := range step.Files {
			if f.Status == StatusWritten {
				n++
			}
		}
	}
	return n
}

// Executor orchestrates resolution, planning, merging, substitution,
// placement, and the final writes for an install run.
type Executor struct {
	Source      registry.Source
	Config      *project.Config
	ProjectRoot string
}

// Run installs the root components and their transitive dependencies.
// All planning-phase failures (missing manifest, cycle, version conflict,
// missing template variable) abort before any file is touched. Write
// failures abort the remaining steps but completed steps stand: each file
// write is independently atomic and the whole run is safely re-runnable.
func (e *Executor) Run(ctx context.Context, roots []string, opts Options) (*Result, error) {
	src := registry.NewCachingSource(e.Source)
	registry.Prefetch(ctx, src, roots, opts.PrefetchWorkers)

	set, err := registry.BuildGraph(ctx, src, roots)
	if err != nil {
		return nil, err
	}

	plan, err := registry.Plan(set)
	if err != nil {
		return nil, err
	}

	reqs, err := registry.MergeRequirements(set)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Python: reqs.Python,
		Env:    reqs.Env,
		DryRun: opts.DryRun,
	}

	// Resolve templates and placements for the whole plan before writing
	// anything, so no fatal error can leave the run half-applied.
	for _, m := range plan {
		values := template.Resolve(m, e.Config.TemplateDefaults(), opts.Overrides)

		rendered := make(map[string][]byte, len(m.Files))
		for _, entry := range m.Files {
			content, err := src.FetchFile(ctx, m.Name, entry.Source)
			if err != nil {
				return nil, err
			}
			out, err := template.SubstituteStrict(m.Name+"/"+entry.Source, content, values)
			if err != nil {
				return nil, err
			}
			rendered[entry.Source] = out
		}

		destRoot, err := ComponentDir(e.ProjectRoot, e.Config, m)
		if err != nil {
			return nil, err
		}

		placed, collisions, err := Place(m, destRoot, rendered, opts.Force)
		if err != nil {
			return nil, err
		}
		result.Collisions = append(result.Collisions, collisions...)
		result.Steps = append(result.Steps, StepResult{
			Component: m.Name,
			Version:   m.Version,
			Type:      m.Type,
			Files:     placed,
		})
	}

	if opts.DryRun {
		return result, nil
	}

	if opts.Confirm != nil && !opts.Confirm(result) {
		result.Cancelled = true
		return result, nil
	}

	// Write pass, sequential in plan order. Cancellation is honored
	// between steps; an interrupted run leaves every touched file either
	// fully written or untouched.
	for i := range result.Steps {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		step := &result.Steps[i]
		for j := range step.Files {
			f := &step.Files[j]
			if f.Status != StatusWritten {
				continue
			}
			if err := writeFileAtomic(f.Destination, f.Content); err != nil {
				f.Status = StatusFailed
				return result, fmt.Errorf("writing %s for %s: %w", f.Destination, step.Component, err)
			}
		}
	}

	return result, nil
}

// writeFileAtomic writes data to a temporary file in the destination's
// directory and renames it into place, so a crash mid-write never leaves a
// truncated file.
func writeFileAtomic(dest string, data []byte) error {
	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".sygaldry-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, dest); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
