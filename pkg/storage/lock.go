package storage

import (
	"fmt"
	"os"
)

// LockSuffix is appended to the database path to form the lock marker path
const LockSuffix = ".lock"

// FileLock is a process-level exclusive lock on a database file, implemented
// as a sidecar marker file whose existence is the lock.
//
// Known limitation: if the process dies without calling Release, the marker
// stays on disk and blocks future opens until it is removed manually
// (rm <path>.lock). There is no stale-lock detection.
type FileLock struct {
	path string
}

// AcquireFileLock creates the lock marker for dbPath. It fails immediately
// with ErrDatabaseBusy if the marker already exists; there is no retry or wait.
func AcquireFileLock(dbPath string) (*FileLock, error) {
	path := dbPath + LockSuffix

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		if os.IsExist(err) {
			return nil, fmt.Errorf("%w: lock file exists: %s", ErrDatabaseBusy, path)
		}
		return nil, fmt.Errorf("failed to create lock file: %w", err)
	}

	// The marker's existence is the lock; its content is irrelevant.
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to close lock file: %w", err)
	}

	return &FileLock{path: path}, nil
}

// Path returns the location of the lock marker
func (l *FileLock) Path() string {
	return l.path
}

// Release removes the lock marker. Releasing an already-removed marker is not
// an error, so Release is safe on every exit path.
func (l *FileLock) Release() error {
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove lock file: %w", err)
	}
	return nil
}
