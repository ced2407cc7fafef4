package store

import (
	"errors"
	"fmt"

	"github.com/gofrs/flock"
)

// ErrLocked is returned when another process already holds the instance lock.
var ErrLocked = errors.New("another avradar instance is already running")

// InstanceLock is an advisory file lock that keeps two bot processes from
// long-polling the same token.
type InstanceLock struct {
	fl *flock.Flock
}

// AcquireLock takes the lock at path without blocking.
func AcquireLock(path string) (*InstanceLock, error) {
	fl := flock.New(path)
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("locking %s: %w", path, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w (lock file %s)", ErrLocked, path)
	}
	return &InstanceLock{fl: fl}, nil
}

// LockPath returns the lock file that guards the database at dbPath.
func LockPath(dbPath string) string {
	return dbPath + ".lock"
}

// Release drops the lock.
func (l *InstanceLock) Release() error {
	return l.fl.Unlock()
}
