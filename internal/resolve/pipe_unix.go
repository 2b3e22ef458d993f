//go:build unix

package resolve

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// NamedPipe is a filesystem fifo allocated for feeding raw samples to one
// external-tool input. The engine only allocates; opening, writing, and
// closing are the caller's responsibility, and Close must run after the
// external process exits or on any abort path.
type NamedPipe struct {
	dir  string
	path string
}

// NewNamedPipe creates a fifo in a fresh private temp directory.
func NewNamedPipe() (*NamedPipe, error) {
	dir, err := os.MkdirTemp("", "rawmux-pipe-")
	if err != nil {
		return nil, fmt.Errorf("allocate pipe dir: %w", err)
	}
	path := filepath.Join(dir, "stream")
	if err := unix.Mkfifo(path, 0o600); err != nil {
		os.RemoveAll(dir)
		return nil, fmt.Errorf("mkfifo %s: %w", path, err)
	}
	return &NamedPipe{dir: dir, path: path}, nil
}

// Path returns the fifo's filesystem path, used as the input url.
func (p *NamedPipe) Path() string { return p.path }

// OpenWriter opens the fifo for writing. The call blocks until the reading
// side (the external process) opens it.
func (p *NamedPipe) OpenWriter() (*os.File, error) {
	return os.OpenFile(p.path, os.O_WRONLY, 0)
}

// Close removes the fifo and its directory.
func (p *NamedPipe) Close() error {
	return os.RemoveAll(p.dir)
}
