// Package runlock guards against two ingestion runs writing at once, across
// processes as well as within one.
package runlock

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/amishk599/frontfeed/internal/model"
)

// Lock is an exclusive advisory lock on a file.
type Lock struct {
	fl *flock.Flock
}

// New returns an unlocked Lock on path. The parent directory is created if
// needed.
func New(path string) (*Lock, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating lock directory: %w", err)
		}
	}
	return &Lock{fl: flock.New(path)}, nil
}

// TryLock takes the lock without blocking. It returns model.ErrRunInProgress
// when another holder has it.
func (l *Lock) TryLock() error {
	ok, err := l.fl.TryLock()
	if err != nil {
		return fmt.Errorf("locking %s: %w", l.fl.Path(), err)
	}
	if !ok {
		return fmt.Errorf("%w (lock %s)", model.ErrRunInProgress, l.fl.Path())
	}
	return nil
}

// Unlock releases the lock. Unlocking an unheld lock is a no-op.
func (l *Lock) Unlock() error {
	if err := l.fl.Unlock(); err != nil {
		return fmt.Errorf("unlocking %s: %w", l.fl.Path(), err)
	}
	return nil
}

// Path returns the lock file path.
func (l *Lock) Path() string {
	return l.fl.Path()
}
