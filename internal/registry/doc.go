// Package registry handles component manifest retrieval, dependency graph
// resolution, install ordering, and cross-component requirement merging.
// Sources (local directory trees or HTTP registries) are consumed through the
// Source interface; the planning code is pure computation over fetched
// manifests.
package registry
