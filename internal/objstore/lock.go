package objstore

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gofrs/flock"
)

// lockFileName is the name of the repository lock file within the index
// directory, holding the owning process id (spec §5).
const lockFileName = ".lock"

// DefaultStaleTTL is how long a lock file may sit unreclaimed before a
// contending process is allowed to break it (spec §5: "stale locks older
// than a configurable TTL may be reclaimed").
const DefaultStaleTTL = 10 * time.Minute

// RepoLock is the single-writer lock for one repository's index directory.
// It wraps gofrs/flock the same way the teacher's embed.FileLock does, but
// additionally records the owning pid in the lock file and allows a
// contending process to reclaim a lock whose owner's mtime has gone stale.
type RepoLock struct {
	path     string
	fl       *flock.Flock
	locked   bool
	staleTTL time.Duration
}

// NewRepoLock creates a lock for the repository's index directory dir
// (typically Store.IndexPath()). The lock file is <dir>/.lock.
func NewRepoLock(dir string) *RepoLock {
	return NewRepoLockWithTTL(dir, DefaultStaleTTL)
}

// NewRepoLockWithTTL is NewRepoLock with an explicit staleness TTL.
func NewRepoLockWithTTL(dir string, ttl time.Duration) *RepoLock {
	p := filepath.Join(dir, lockFileName)
	return &RepoLock{path: p, fl: flock.New(p), staleTTL: ttl}
}

// Lock acquires the lock, blocking until it is available. If an existing
// lock file is older than the staleness TTL, Lock reclaims it first by
// removing it, on the assumption its owning process died without cleaning
// up (spec §5).
func (l *RepoLock) Lock() error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return translateErr(err, filepath.Dir(l.path))
	}
	l.reclaimIfStale()

	if err := l.fl.Lock(); err != nil {
		return translateErr(err, l.path)
	}
	l.locked = true
	return l.writeOwner()
}

// TryLock attempts to acquire the lock without blocking, first reclaiming
// a stale lock file if one is present.
func (l *RepoLock) TryLock() (bool, error) {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return false, translateErr(err, filepath.Dir(l.path))
	}
	l.reclaimIfStale()

	ok, err := l.fl.TryLock()
	if err != nil {
		return false, translateErr(err, l.path)
	}
	if ok {
		l.locked = true
		if err := l.writeOwner(); err != nil {
			return true, err
		}
	}
	return ok, nil
}

// Unlock releases the lock. Safe to call on an unlocked RepoLock.
func (l *RepoLock) Unlock() error {
	if !l.locked {
		return nil
	}
	_ = os.Remove(l.path)
	if err := l.fl.Unlock(); err != nil {
		l.locked = false
		return translateErr(err, l.path)
	}
	l.locked = false
	return nil
}

// IsLocked reports whether this RepoLock instance currently holds the lock.
func (l *RepoLock) IsLocked() bool { return l.locked }

// Path returns the lock file path.
func (l *RepoLock) Path() string { return l.path }

func (l *RepoLock) writeOwner() error {
	return os.WriteFile(l.path, []byte(strconv.Itoa(os.Getpid())), 0o644)
}

// reclaimIfStale removes the lock file if it exists and its last-modified
// time is older than staleTTL. flock's OS-level advisory lock is unaffected
// by removing the file out from under a live holder that still has it open
// by fd, so this only helps when the owning process is truly gone; it is a
// best-effort recovery for crashed writers, not a correctness mechanism.
func (l *RepoLock) reclaimIfStale() {
	info, err := os.Stat(l.path)
	if err != nil {
		return
	}
	if time.Since(info.ModTime()) < l.staleTTL {
		return
	}
	_ = os.Remove(l.path)
}

// Owner reads the pid recorded in the lock file, if any.
func Owner(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, translateErr(err, path)
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("malformed lock file %s: %w", path, err)
	}
	return pid, nil
}
