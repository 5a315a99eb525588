package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/juju/errors"
)

const lockFileName = "tgbot.lock"

// lockGracePeriod is how long a lock remains valid after being written.
// It must outlast the watcher's debounce window so the reload triggered by
// a self-initiated write still sees the lock.
const lockGracePeriod = 5 * time.Second

// lockPath returns the lock file guarding the config file at configPath.
func lockPath(configPath string) string {
	return filepath.Join(filepath.Dir(configPath), lockFileName)
}

// AcquireConfigLock marks configPath as being rewritten by this process so
// WatchConfig skips the resulting change event.
func AcquireConfigLock(configPath string) error {
	f, err := os.Create(lockPath(configPath))
	if err != nil {
		return errors.Annotate(err, "creating lock file")
	}
	return f.Close()
}

// IsConfigLocked reports whether a lock for configPath was written within
// the grace period. The lock is never removed; it simply expires.
func IsConfigLocked(configPath string) bool {
	info, err := os.Stat(lockPath(configPath))
	if err != nil {
		return false
	}
	return time.Since(info.ModTime()) < lockGracePeriod
}
