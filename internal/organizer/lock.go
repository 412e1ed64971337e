package organizer

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"filesorter/internal/faults"
	"filesorter/internal/logging"
)

// LockPath returns the lock file guarding target under lockDir.
func LockPath(lockDir, target string) string {
	sum := sha256.Sum256([]byte(target))
	return filepath.Join(lockDir, hex.EncodeToString(sum[:8])+".lock")
}

// lock takes the advisory lock for the current target. The returned function
// releases it.
func (o *Organizer) lock() (func(), error) {
	if o.lockDir == "" {
		return func() {}, nil
	}
	if err := os.MkdirAll(o.lockDir, 0o755); err != nil {
		return nil, faults.Wrap(nil, "organizer", "prepare lock", fmt.Sprintf("Cannot create %s", o.lockDir), err)
	}
	path := LockPath(o.lockDir, o.target)
	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, faults.Wrap(nil, "organizer", "acquire lock", path, err)
	}
	if !ok {
		return nil, faults.Wrap(faults.ErrLocked, "organizer", "acquire lock",
			fmt.Sprintf("Another filesorter process is working on %s", o.target), nil)
	}
	return func() {
		if err := lock.Unlock(); err != nil {
			o.logger.Warn("failed to release target lock", logging.String("lock", path), logging.Error(err))
		}
	}, nil
}
