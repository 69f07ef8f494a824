package locker

import (
	"context"
	"fmt"

	"github.com/gofrs/flock"
)

type FSLocker struct {
	lock *flock.Flock
}

func NewFSLocker(filePath string) *FSLocker {
	return &FSLocker{
		lock: flock.New(filePath),
	}
}

func (l *FSLocker) Lock(_ context.Context) error {
	locked, err := l.lock.TryLock()
	if err != nil {
		return fmt.Errorf("error locking file %s: %w", l.lock.Path(), err)
	}

	if !locked {
		return ErrNotAcquired
	}

	return nil
}

func (l *FSLocker) Unlock(_ context.Context) error {
	return l.lock.Unlock()
}
