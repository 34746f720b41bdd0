// SPDX-License-Identifier: MPL-2.0

//go:build linux

package envmgr

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// lockFileName is the well-known lock file shared by all enva processes. The
// zero-byte file is harmless if orphaned — the kernel releases the flock when
// the fd closes, including on process crash.
const lockFileName = "enva-create.lock"

// errFlockUnavailable exists for cross-platform compatibility with
// create_lock_other.go. On Linux, acquireCreateLock() never returns it.
var errFlockUnavailable = errors.New("flock not available on this platform")

// createLock holds a blocking exclusive flock on a well-known file,
// serializing environment creation across enva processes. Two processes
// creating the same environment concurrently would corrupt the package
// manager's prefix directory.
//
// The lock file lives in $XDG_RUNTIME_DIR (per-user tmpfs, auto-cleaned)
// with a fallback to os.TempDir() when the env var is unset.
type createLock struct {
	file *os.File
}

// acquireCreateLock opens (or creates) the lock file and takes a blocking
// exclusive flock.
func acquireCreateLock() (*createLock, error) {
	return acquireCreateLockAt(lockFilePath())
}

// acquireCreateLockAt locks the file at an explicit path. Split out so tests
// can lock inside a temp directory.
func acquireCreateLockAt(lockPath string) (*createLock, error) {
	f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open lock file %s: %w", lockPath, err)
	}

	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX); err != nil {
		f.Close()
		return nil, fmt.Errorf("flock %s: %w", lockPath, err)
	}

	return &createLock{file: f}, nil
}

// Release unlocks the flock and closes the file descriptor. Safe to call
// multiple times and on a nil receiver.
func (l *createLock) Release() {
	if l == nil || l.file == nil {
		return
	}
	// LOCK_UN before Close for explicitness; Close also releases the flock.
	if err := unix.Flock(int(l.file.Fd()), unix.LOCK_UN); err != nil {
		slog.Debug("flock unlock failed", "error", err)
	}
	if err := l.file.Close(); err != nil {
		slog.Debug("lock file close failed", "error", err)
	}
	l.file = nil
}

// lockFilePath returns the path for the cross-process lock file.
func lockFilePath() string {
	return lockFilePathWith(os.Getenv)
}

// lockFilePathWith resolves the lock path using the provided getenv
// function. This enables testing without mutating process-global state.
func lockFilePathWith(getenv func(string) string) string {
	dir := getenv("XDG_RUNTIME_DIR")
	if dir == "" {
		dir = os.TempDir()
	}
	return filepath.Join(dir, lockFileName)
}
