// Package scratch manages run-scoped temporary directories.
//
// A scratch directory holds downloaded archives and cloned repositories for
// the duration of one run. It is created before traversal starts and removed
// on every exit path (success, validation failure, fetch failure) by
// deferring Close, so repeated runs in one process never leak state.
package scratch

import (
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Dir is a process-scoped temporary directory.
type Dir struct {
	ID   string // unique run identifier
	Path string // absolute directory path, empty after Close
}

// New creates a uuid-named scratch directory under the system temp dir.
func New() (*Dir, error) {
	id := uuid.NewString()
	path := filepath.Join(os.TempDir(), "cratemap-"+id)
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, err
	}
	return &Dir{ID: id, Path: path}, nil
}

// Sub creates (if needed) and returns a subdirectory of the scratch dir.
func (d *Dir) Sub(parts ...string) (string, error) {
	path := filepath.Join(append([]string{d.Path}, parts...)...)
	if err := os.MkdirAll(path, 0755); err != nil {
		return "", err
	}
	return path, nil
}

// Close removes the scratch directory and everything in it.
// Close is safe to call more than once.
func (d *Dir) Close() error {
	if d == nil || d.Path == "" {
		return nil
	}
	err := os.RemoveAll(d.Path)
	d.Path = ""
	return err
}
