package storage

import (
	"fmt"
	"os"
)

// LocalFilesystem creates catalog directories on the local disk. It
// satisfies the domain Filesystem port.
type LocalFilesystem struct {
	// Perm is the mode for created directories; 0o755 when zero.
	Perm os.FileMode
}

// MkdirAll creates the directory and any missing parents. Creating an
// existing directory is a no-op, so retries are idempotent.
func (fs LocalFilesystem) MkdirAll(path string) error {
	perm := fs.Perm
	if perm == 0 {
		perm = 0o755
	}
	if err := os.MkdirAll(path, perm); err != nil {
		return fmt.Errorf("mkdir %s: %w", path, err)
	}
	return nil
}
