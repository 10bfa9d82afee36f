//go:build !windows

package indexer

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	orcerrors "orc/internal/errors"
)

const lockFile = "index.lock"

// Lock is an exclusive lock on the index, held for the duration of a run.
type Lock struct {
	path string
	file *os.File
}

// AcquireLock takes an exclusive non-blocking lock under the .orc directory.
// The holder's PID goes into the lock file for diagnostics.
func AcquireLock(orcDir string) (*Lock, error) {
	if err := os.MkdirAll(orcDir, 0755); err != nil {
		return nil, fmt.Errorf("creating .orc directory: %w", err)
	}

	path := filepath.Join(orcDir, lockFile)

	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("opening lock file: %w", err)
	}

	err = syscall.Flock(int(file.Fd()), syscall.LOCK_EX|syscall.LOCK_NB)
	if err != nil {
		_ = file.Close()

		msg := "index is locked by another process"
		if content, readErr := os.ReadFile(path); readErr == nil && len(content) > 0 {
			msg = fmt.Sprintf("index is locked by another process (PID %s)", strings.TrimSpace(string(content)))
		}
		return nil, orcerrors.New(orcerrors.IndexLocked, msg, err)
	}

	if err := file.Truncate(0); err != nil {
		_ = syscall.Flock(int(file.Fd()), syscall.LOCK_UN)
		_ = file.Close()
		return nil, fmt.Errorf("truncating lock file: %w", err)
	}
	if _, err := file.Seek(0, 0); err != nil {
		_ = syscall.Flock(int(file.Fd()), syscall.LOCK_UN)
		_ = file.Close()
		return nil, fmt.Errorf("seeking lock file: %w", err)
	}
	if _, err := file.WriteString(strconv.Itoa(os.Getpid())); err != nil {
		_ = syscall.Flock(int(file.Fd()), syscall.LOCK_UN)
		_ = file.Close()
		return nil, fmt.Errorf("writing PID to lock file: %w", err)
	}

	return &Lock{path: path, file: file}, nil
}

// Release drops the lock and removes the lock file.
func (l *Lock) Release() {
	if l == nil || l.file == nil {
		return
	}
	_ = syscall.Flock(int(l.file.Fd()), syscall.LOCK_UN)
	_ = l.file.Close()
	_ = os.Remove(l.path)
}
