// Package workspace provides a request-scoped scratch directory that is
// removed as a whole when the request ends.
package workspace

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"gitlab.com/tozd/go/errors"
)

// Workspace is a temporary directory owned by one request
type Workspace struct {
	dir  string
	seq  atomic.Int64
	done atomic.Bool
}

// New creates a workspace below parent (os.TempDir() when empty)
func New(parent string) (*Workspace, error) {
	if parent != "" {
		if err := os.MkdirAll(parent, 0o755); err != nil {
			return nil, errors.Errorf("failed to create workspace parent: %w", err)
		}
	}
	dir, err := os.MkdirTemp(parent, "sheetreplace-*")
	if err != nil {
		return nil, errors.Errorf("failed to create workspace: %w", err)
	}
	return &Workspace{dir: dir}, nil
}

// Dir returns the workspace directory
func (w *Workspace) Dir() string {
	return w.dir
}

// Write stores r under a fresh file named after name and returns its path.
// Only the base of name is used, so entry paths cannot escape the workspace.
func (w *Workspace) Write(name string, r io.Reader) (string, error) {
	if w.done.Load() {
		return "", errors.New("workspace is closed")
	}

	base := filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	if base == "." || base == "/" || base == ".." {
		base = "file"
	}
	p := filepath.Join(w.dir, fmt.Sprintf("%04d-%s", w.seq.Add(1), base))

	f, err := os.OpenFile(p, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return "", errors.Errorf("failed to create %s: %w", base, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return "", errors.Errorf("failed to write %s: %w", base, err)
	}
	if err := f.Close(); err != nil {
		return "", errors.Errorf("failed to close %s: %w", base, err)
	}
	return p, nil
}

// Close removes the workspace and everything in it. Safe to call twice.
func (w *Workspace) Close() error {
	if w.done.Swap(true) {
		return nil
	}
	if err := os.RemoveAll(w.dir); err != nil {
		return errors.Errorf("failed to remove workspace: %w", err)
	}
	return nil
}
