// Package install maps resolved components onto the project's directory
// layout and performs the actual file writes. Each file is written atomically
// (temp file plus rename); collisions with differently-edited existing files
// are reported, never silently overwritten.
package install
