package ledger

import (
	"fmt"

	"github.com/gofrs/flock"

	"sermoncast/internal/config"
)

// Lock provides cross-process mutual exclusion over the ledger. Only one run
// may hold it at a time; a contending run fails fast with ErrLocked instead of
// blocking, since the scheduler's next invocation will retry naturally.
type Lock struct {
	path string
	fl   *flock.Flock
}

// NewLock constructs an advisory lock over the configured lock file.
func NewLock(cfg *config.Config) *Lock {
	path := cfg.LockPath()
	return &Lock{path: path, fl: flock.New(path)}
}

// Acquire takes the lock without blocking. ErrLocked is returned when another
// process already holds it.
func (l *Lock) Acquire() error {
	ok, err := l.fl.TryLock()
	if err != nil {
		return fmt.Errorf("acquire ledger lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrLocked, l.path)
	}
	return nil
}

// Release drops the lock. Safe to call when the lock was never acquired.
func (l *Lock) Release() error {
	return l.fl.Unlock()
}

// Path returns the lock file location.
func (l *Lock) Path() string {
	return l.path
}
