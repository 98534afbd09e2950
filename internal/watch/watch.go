// Package watch auto-stages files as they change on disk, using
// fsnotify the way the teacher's internal/watcher.HybridWatcher does,
// trimmed down to the one thing `ragit watch` needs: turn a raw stream
// of filesystem events into calls against a repository's add/remove
// pipeline, debounced so a burst of writes to the same file only
// triggers one re-add.
package watch

import (
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ragit-kb/ragit/internal/chunkpipe"
	"github.com/ragit-kb/ragit/internal/gitignore"
	"github.com/ragit-kb/ragit/internal/repokb"
	"github.com/ragit-kb/ragit/internal/rlog"
)

// Options configures a Watcher.
type Options struct {
	DebounceWindow time.Duration
	IgnorePatterns []string
}

func (o Options) withDefaults() Options {
	if o.DebounceWindow <= 0 {
		o.DebounceWindow = 300 * time.Millisecond
	}
	return o
}

// Watcher auto-adds and removes files from a repository as they change
// on disk, for a long-running `ragit watch` session.
type Watcher struct {
	repo      *repokb.Repository
	fsWatcher *fsnotify.Watcher
	ignore    *gitignore.Matcher
	debounce  *debouncer
	log       *slog.Logger
}

// New starts watching repo's root, failing if fsnotify cannot be
// initialized (there is no polling fallback here: a headless CI box
// without inotify should fail loudly rather than silently busy-poll).
func New(repo *repokb.Repository, opts Options, log *slog.Logger) (*Watcher, error) {
	opts = opts.withDefaults()
	if log == nil {
		log = rlog.Discard()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	ignore := gitignore.New()
	for _, p := range opts.IgnorePatterns {
		ignore.AddPattern(p)
	}
	ignore.AddPattern(".ragit/")
	ignore.AddPattern(".ragit/**")
	ignore.AddPattern(".git/")

	w := &Watcher{
		repo:      repo,
		fsWatcher: fsw,
		ignore:    ignore,
		debounce:  newDebouncer(opts.DebounceWindow),
		log:       log,
	}
	if err := w.addTree(repo.Root); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.fsWatcher.Close()
}

// Run blocks, applying every debounced filesystem change to the
// repository's staged/processed state until stop is closed.
func (w *Watcher) Run(stop <-chan struct{}) error {
	go w.debounce.run(w.applyPath, stop)

	for {
		select {
		case <-stop:
			return nil
		case ev, ok := <-w.fsWatcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(ev)
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return nil
			}
			w.log.Error("watch error", "error", err)
		}
	}
}

func (w *Watcher) handleEvent(ev fsnotify.Event) {
	rel, err := filepath.Rel(w.repo.Root, ev.Name)
	if err != nil {
		return
	}
	info, statErr := os.Stat(ev.Name)
	isDir := statErr == nil && info.IsDir()
	if w.ignore.Match(rel, isDir) {
		return
	}

	if ev.Op&fsnotify.Create != 0 && isDir {
		_ = w.addTree(ev.Name)
		return
	}
	if isDir {
		return
	}
	w.debounce.touch(rel, ev.Op&fsnotify.Remove != 0 || ev.Op&fsnotify.Rename != 0)
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		rel, relErr := filepath.Rel(w.repo.Root, path)
		if relErr == nil && w.ignore.Match(rel, true) {
			return filepath.SkipDir
		}
		return w.fsWatcher.Add(path)
	})
}

// applyPath stages a changed file or untracks a deleted one. Force mode
// is used for staging since a watched file is, by construction, usually
// already processed and the whole point of watch is to keep it current.
func (w *Watcher) applyPath(path string, removed bool) {
	lock := w.repo.Lock()
	if err := lock.Lock(); err != nil {
		w.log.Warn("watch could not acquire repository lock", "path", path, "error", err)
		return
	}
	defer lock.Unlock()

	if removed {
		if err := w.repo.Remove(path); err != nil {
			w.log.Warn("watch remove failed", "path", path, "error", err)
		}
		return
	}
	if _, err := w.repo.AddPaths([]string{path}, chunkpipe.AddForce); err != nil {
		w.log.Warn("watch add failed", "path", path, "error", err)
	}
}
