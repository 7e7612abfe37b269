// Package manifest handles parsing and validation of component.json manifests.
// It exposes a strongly typed Manifest record with required fields checked at
// parse time, and JSON Schema validation for richer diagnostics.
package manifest
