package archive

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ragit-kb/ragit/internal/objstore"
	"github.com/ragit-kb/ragit/internal/ragiterr"
	"github.com/ragit-kb/ragit/internal/repokb"
)

// Manager tracks every in-flight push session and mediates access to
// each target repository's single-writer lock during finalize.
type Manager struct {
	baseDir string
	expiry  time.Duration

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager returns a Manager that stages session uploads under
// baseDir (one subdirectory per session id) and expires an Open
// session after expiry with no finalize-push.
func NewManager(baseDir string, expiry time.Duration) *Manager {
	if expiry <= 0 {
		expiry = DefaultExpiry
	}
	return &Manager{baseDir: baseDir, expiry: expiry, sessions: make(map[string]*Session)}
}

// BeginPush allocates a new session for repoRoot, failing with
// ragiterr.IndexNotFound if repoRoot has no repository and with
// ragiterr.ServerBusy if the repository's single-writer lock is
// currently held (most often by another session's finalize-push, but
// equally by a concurrent build or add, since it is the same lock).
func (m *Manager) BeginPush(repoRoot string) (*Session, error) {
	repo, err := repokb.Open(repoRoot)
	if err != nil {
		return nil, err
	}

	lock := repo.Lock()
	ok, err := lock.TryLock()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ragiterr.ServerBusy(repoRoot)
	}
	if err := lock.Unlock(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sweepLocked()

	id := uuid.New().String()
	dir := filepath.Join(m.baseDir, id)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, ragiterr.FileError(ragiterr.IOKindOther, dir, err)
	}

	sess := &Session{
		ID:         id,
		RepoRoot:   repoRoot,
		Dir:        dir,
		State:      StateOpen,
		CreatedAt:  now(),
		archiveIDs: make(map[string]struct{}),
	}
	m.sessions[id] = sess
	return sess, nil
}

// Archive appends a labeled archive blob to an Open session. archiveID
// must be unique within the session and free of path-traversal
// characters, since it is used verbatim as a file name.
func (m *Manager) Archive(sessionID, archiveID string, data []byte) error {
	if archiveID == "" || filepath.Base(archiveID) != archiveID || archiveID == "." || archiveID == ".." {
		return ragiterr.PathTraversal(archiveID)
	}

	m.mu.Lock()
	sess, err := m.lookupOpenLocked(sessionID)
	if err != nil {
		m.mu.Unlock()
		return err
	}
	if _, dup := sess.archiveIDs[archiveID]; dup {
		m.mu.Unlock()
		return fmt.Errorf("archive-id %q already uploaded in session %q", archiveID, sessionID)
	}
	sess.archiveIDs[archiveID] = struct{}{}
	m.mu.Unlock()

	path := filepath.Join(sess.Dir, archiveID)
	return objstore.WriteFile(path, data, objstore.AlwaysCreate)
}

// FinalizePush reads every archive blob the session collected, merges
// them in archive-id order into the target repository under its
// single-writer lock, and deletes the session directory regardless of
// outcome. Calling FinalizePush twice with the same session id fails
// the second time, since the session no longer exists.
func (m *Manager) FinalizePush(sessionID string) (State, repokb.MergeReport, error) {
	m.mu.Lock()
	sess, err := m.lookupOpenLocked(sessionID)
	if err != nil {
		m.mu.Unlock()
		return StateFailed, repokb.MergeReport{}, err
	}
	delete(m.sessions, sessionID)
	m.mu.Unlock()

	defer os.RemoveAll(sess.Dir)

	repo, err := repokb.Open(sess.RepoRoot)
	if err != nil {
		return StateFailed, repokb.MergeReport{}, err
	}
	lock := repo.Lock()
	if err := lock.Lock(); err != nil {
		return StateFailed, repokb.MergeReport{}, err
	}
	defer lock.Unlock()

	report, err := extractAndMerge(repo, sess.Dir)
	if err != nil {
		return StateFailed, report, err
	}
	return StateCompleted, report, nil
}

// Sweep expires every Open session older than the manager's expiry and
// removes its staging directory. Callers that run a long-lived server
// should call this periodically; BeginPush also calls it opportunistically.
func (m *Manager) Sweep() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sweepLocked()
}

func (m *Manager) sweepLocked() {
	for id, sess := range m.sessions {
		if sess.State == StateOpen && now().Sub(sess.CreatedAt) > m.expiry {
			sess.State = StateExpired
			os.RemoveAll(sess.Dir)
			delete(m.sessions, id)
		}
	}
}

func (m *Manager) lookupOpenLocked(sessionID string) (*Session, error) {
	sess, ok := m.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("no such push session: %q", sessionID)
	}
	if sess.State != StateOpen {
		return nil, fmt.Errorf("push session %q is %s, not open", sessionID, sess.State)
	}
	return sess, nil
}

// now is a seam so tests can control session staleness without
// depending on wall-clock timing.
var now = time.Now
