package repokb

import (
	"github.com/ragit-kb/ragit/internal/chunkpipe"
)

// AddOutcome reports what happened to one path during AddPaths, so the
// CLI can print one line per file and keep going on a per-file failure
// (spec §7: batch operations report partial success rather than
// aborting).
type AddOutcome struct {
	Path   string
	Result chunkpipe.AddResult
	Err    error
}

// AddPaths stages every path under mode, continuing past individual
// failures (AddReject against an already-processed path is the only
// case that can fail per-file). The header is saved once at the end.
func (r *Repository) AddPaths(paths []string, mode chunkpipe.AddMode) ([]AddOutcome, error) {
	outcomes := make([]AddOutcome, 0, len(paths))
	for _, p := range paths {
		result, err := chunkpipe.Add(r.Store, &r.Header, p, mode)
		outcomes = append(outcomes, AddOutcome{Path: p, Result: result, Err: err})
	}
	return outcomes, r.Save()
}

// Remove drops path from staged or processed, garbage-collecting its
// chunks, and persists the header.
func (r *Repository) Remove(path string) error {
	if err := chunkpipe.Remove(r.Store, &r.Header, path); err != nil {
		return err
	}
	return r.Save()
}

// RemoveAuto removes every processed file that no longer exists on
// disk, returning the removed paths.
func (r *Repository) RemoveAuto() ([]string, error) {
	removed, err := chunkpipe.RemoveAuto(r.Store, &r.Header, r.Root)
	if err != nil {
		return removed, err
	}
	return removed, r.Save()
}

// Discover walks the repository root for files `add` can stage in
// bulk, honoring .gitignore (spec §4.C).
func (r *Repository) Discover() ([]string, error) {
	return chunkpipe.Discover(r.Root)
}
