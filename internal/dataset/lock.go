package dataset

import (
	"fmt"
	"os"
	"path/filepath"
)

// LockName is the per-class lock file. It is dot-prefixed so it never
// shows up as a dataset member.
const LockName = ".gestureprep.lock"

// ClassLock serializes mutation of one class directory between processes.
type ClassLock struct {
	f *os.File
}

// Lock blocks until the exclusive lock on classDir is held.
func Lock(classDir string) (*ClassLock, error) {
	f, err := os.OpenFile(filepath.Join(classDir, LockName), os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, fmt.Errorf("opening class lock: %w", err)
	}
	if err := lockFile(f); err != nil {
		f.Close()
		return nil, fmt.Errorf("locking %s: %w", classDir, err)
	}
	return &ClassLock{f: f}, nil
}

// Unlock releases the lock. The lock file itself is left in place.
func (l *ClassLock) Unlock() error {
	if l == nil || l.f == nil {
		return nil
	}
	err := unlockFile(l.f)
	if cerr := l.f.Close(); err == nil {
		err = cerr
	}
	l.f = nil
	return err
}
