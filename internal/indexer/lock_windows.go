//go:build windows

package indexer

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

const lockFile = "index.lock"

// Lock is an exclusive lock on the index.
// Windows has no flock; this is a best-effort PID file.
type Lock struct {
	path string
	file *os.File
}

// AcquireLock writes a PID lock file under the .orc directory.
func AcquireLock(orcDir string) (*Lock, error) {
	if err := os.MkdirAll(orcDir, 0755); err != nil {
		return nil, fmt.Errorf("creating .orc directory: %w", err)
	}

	path := filepath.Join(orcDir, lockFile)

	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_TRUNC, 0644)
	if err != nil {
		return nil, fmt.Errorf("opening lock file: %w", err)
	}

	if _, err := file.WriteString(strconv.Itoa(os.Getpid())); err != nil {
		file.Close()
		return nil, fmt.Errorf("writing PID to lock file: %w", err)
	}

	return &Lock{path: path, file: file}, nil
}

// Release drops the lock and removes the lock file.
func (l *Lock) Release() {
	if l == nil || l.file == nil {
		return
	}
	l.file.Close()
	os.Remove(l.path)
}
