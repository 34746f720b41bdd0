// SPDX-License-Identifier: MPL-2.0

//go:build linux

package envmgr

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func TestAcquireCreateLockCreatesFile(t *testing.T) {
	t.Parallel()

	lockPath := filepath.Join(t.TempDir(), "test.lock")
	lock, err := acquireCreateLockAt(lockPath)
	if err != nil {
		t.Fatalf("acquireCreateLockAt() error: %v", err)
	}
	defer lock.Release()

	if _, statErr := os.Stat(lockPath); statErr != nil {
		t.Errorf("lock file not found at %s: %v", lockPath, statErr)
	}
}

func TestAcquireCreateLockBlocksConcurrent(t *testing.T) {
	t.Parallel()

	lockPath := filepath.Join(t.TempDir(), "test.lock")
	lockA, err := acquireCreateLockAt(lockPath)
	if err != nil {
		t.Fatalf("acquireCreateLockAt A: %v", err)
	}

	var acquired atomic.Bool
	done := make(chan struct{})
	go func() {
		defer close(done)
		lockB, bErr := acquireCreateLockAt(lockPath)
		if bErr != nil {
			t.Errorf("acquireCreateLockAt B: %v", bErr)
			return
		}
		acquired.Store(true)
		lockB.Release()
	}()

	// Give goroutine B time to attempt the lock. It should be blocked.
	time.Sleep(100 * time.Millisecond)
	if acquired.Load() {
		t.Fatal("goroutine B acquired the lock while A still held it")
	}

	lockA.Release()

	select {
	case <-done:
		if !acquired.Load() {
			t.Fatal("goroutine B never acquired the lock after A released")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for goroutine B to acquire the lock")
	}
}

func TestCreateLockReleaseIdempotent(t *testing.T) {
	t.Parallel()

	lockPath := filepath.Join(t.TempDir(), "test.lock")
	lock, err := acquireCreateLockAt(lockPath)
	if err != nil {
		t.Fatalf("acquireCreateLockAt() error: %v", err)
	}

	lock.Release()
	lock.Release()

	var nilLock *createLock
	nilLock.Release()
}

func TestLockFilePathWith(t *testing.T) {
	t.Parallel()

	if got := lockFilePathWith(func(string) string { return "" }); got != filepath.Join(os.TempDir(), lockFileName) {
		t.Errorf("lockFilePathWith(empty) = %q", got)
	}

	customDir := t.TempDir()
	got := lockFilePathWith(func(key string) string {
		if key == "XDG_RUNTIME_DIR" {
			return customDir
		}
		return ""
	})
	if got != filepath.Join(customDir, lockFileName) {
		t.Errorf("lockFilePathWith(XDG) = %q", got)
	}
}
