// Package archive implements the push-session protocol of spec §4.G:
// begin-push allocates a session, archive appends labeled bundle blobs
// to it, and finalize-push extracts every blob in id order and merges
// it into the target repository under the repository's single-writer
// lock. A session is a staging area on disk, not a repository: nothing
// it holds is visible to the target until finalize succeeds.
package archive

import "time"

// State is a push session's position in the state machine described in
// spec §4.G:
//
//	[none] --begin-push--> Open --(archive)*--> Open --finalize-push--> {Completed, Failed}
//	                              \--(timeout)---------------------> Expired
type State int

const (
	StateOpen State = iota
	StateCompleted
	StateFailed
	StateExpired
)

func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	case StateExpired:
		return "expired"
	default:
		return "unknown"
	}
}

// DefaultExpiry is how long an Open session may sit without a
// finalize-push before Sweep reclaims it.
const DefaultExpiry = 30 * time.Minute

// Session is one push transaction bracketing one or more archive
// uploads and exactly one finalize (spec §4.G GLOSSARY "Session").
type Session struct {
	ID        string
	RepoRoot  string
	Dir       string
	State     State
	CreatedAt time.Time

	archiveIDs map[string]struct{}
}

// ArchiveIDs returns the archive-ids uploaded so far, in no particular
// order; extraction itself always sorts by id regardless.
func (s *Session) ArchiveIDs() []string {
	ids := make([]string, 0, len(s.archiveIDs))
	for id := range s.archiveIDs {
		ids = append(ids, id)
	}
	return ids
}
