// Package repokb wires the object store, the ingestion pipeline, the
// TF-IDF engine, and the meta/config store into the single
// "repository" concept the CLI and the archive protocol operate on
// (spec §2 SYSTEM OVERVIEW / §6 index.json).
package repokb

import (
	"github.com/ragit-kb/ragit/internal/chunkpipe"
	"github.com/ragit-kb/ragit/internal/objstore"
	"github.com/ragit-kb/ragit/internal/ragiterr"
)

// Repository is one opened ragit index: its root directory, the object
// store rooted there, and the in-memory header. Callers must call Save
// after any operation that mutates Header to persist it.
type Repository struct {
	Root   string
	Store  *objstore.Store
	Header chunkpipe.Header
}

// Init creates a fresh repository at root. It fails with
// ragiterr.AlreadyExists if root already has an index directory.
func Init(root, ragitVersion string) (*Repository, error) {
	store := objstore.New(root)
	if exists, err := objstore.Exists(store.IndexPath()); err != nil {
		return nil, err
	} else if exists {
		return nil, ragiterr.AlreadyExists(root)
	}

	if err := store.EnsureLayout(); err != nil {
		return nil, err
	}
	header := chunkpipe.NewHeader(ragitVersion)
	if err := header.Save(store); err != nil {
		return nil, err
	}
	return &Repository{Root: root, Store: store, Header: header}, nil
}

// Open loads an existing repository at root, failing with
// ragiterr.IndexNotFound if none exists.
func Open(root string) (*Repository, error) {
	store := objstore.New(root)
	exists, err := objstore.Exists(store.IndexPath())
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ragiterr.IndexNotFound(root)
	}

	header, err := chunkpipe.LoadHeader(store, "")
	if err != nil {
		return nil, err
	}
	return &Repository{Root: root, Store: store, Header: header}, nil
}

// Save persists the repository's header.
func (r *Repository) Save() error {
	return r.Header.Save(r.Store)
}

// Lock returns the repository's single-writer lock (spec §5) without
// acquiring it. Callers that mutate the index directory (add, build,
// remove, gc, reset, merge) are expected to hold it for the duration of
// the operation.
func (r *Repository) Lock() *objstore.RepoLock {
	return objstore.NewRepoLock(r.Store.IndexPath())
}
