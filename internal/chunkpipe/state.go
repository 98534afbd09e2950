package chunkpipe

import (
	"os"
	"path/filepath"

	"github.com/ragit-kb/ragit/internal/chunkmodel"
	"github.com/ragit-kb/ragit/internal/objstore"
	"github.com/ragit-kb/ragit/internal/ragiterr"
	"github.com/ragit-kb/ragit/internal/uidkit"
)

// AddMode controls what add does when path is already processed.
type AddMode int

const (
	AddIgnore AddMode = iota
	AddForce
	AddReject
)

// AddResult reports what add actually did, so the CLI can print a
// meaningful line per file (spec §4.C).
type AddResult string

const (
	AddResultStaged   AddResult = "staged"
	AddResultIgnored  AddResult = "ignored"
	AddResultUpdated  AddResult = "updated"
)

// Add inserts path into the staged queue (Untracked/Processed -> Staged).
// If path is already processed: Ignore is a no-op returning Ignored;
// Force unregisters the old file-uid (scheduling its chunks for GC) and
// re-stages, returning Updated; Reject fails.
func Add(store *objstore.Store, h *Header, path string, mode AddMode) (AddResult, error) {
	if _, processed := h.ProcessedFiles[path]; processed {
		switch mode {
		case AddIgnore:
			return AddResultIgnored, nil
		case AddReject:
			return "", ragiterr.FileError(ragiterr.IOKindAlreadyExists, path, nil)
		case AddForce:
			if err := gcFile(store, path); err != nil {
				return "", err
			}
			delete(h.ProcessedFiles, path)
			h.stage(path)
			return AddResultUpdated, nil
		}
	}

	h.stage(path)
	return AddResultStaged, nil
}

// Remove drops path from whichever map contains it (staged or processed),
// then garbage-collects any chunks whose source file is no longer
// referenced by any processed file.
func Remove(store *objstore.Store, h *Header, path string) error {
	found := h.isStaged(path)
	if _, ok := h.ProcessedFiles[path]; ok {
		found = true
		delete(h.ProcessedFiles, path)
	}
	if !found {
		return ragiterr.FileError(ragiterr.IOKindNotFound, path, nil)
	}
	h.unstage(path)
	if h.CurrProcessingFile != nil && *h.CurrProcessingFile == path {
		h.CurrProcessingFile = nil
	}
	return gcFile(store, path)
}

// RemoveAuto removes every processed entry whose path no longer exists on
// disk, returning the removed paths.
func RemoveAuto(store *objstore.Store, h *Header, repoRoot string) ([]string, error) {
	var removed []string
	for _, path := range h.sortedProcessedPaths() {
		if _, err := os.Stat(filepath.Join(repoRoot, path)); os.IsNotExist(err) {
			delete(h.ProcessedFiles, path)
			if err := gcFile(store, path); err != nil {
				return removed, err
			}
			removed = append(removed, path)
		}
	}
	return removed, nil
}

// AllChunks decodes every chunk currently on disk, satisfying
// tfidf.ChunkProvider for callers that want to build or scan an index
// straight from the object store.
func AllChunks(store *objstore.Store) ([]chunkmodel.Chunk, error) {
	var chunks []chunkmodel.Chunk
	err := walkChunks(store, func(_ uidkit.Uid, c chunkmodel.Chunk) error {
		chunks = append(chunks, c)
		return nil
	})
	return chunks, err
}

// gcFile deletes every chunk blob sourced from path. Chunk files are
// content-addressed and not indexed by source path, so this scans the
// chunk store the same way scan-mode TF-IDF does (spec §4.E); repositories
// large enough for that to matter are expected to be on inverted-index
// mode instead.
func gcFile(store *objstore.Store, path string) error {
	return walkChunks(store, func(u uidkit.Uid, c chunkmodel.Chunk) error {
		if c.Source.Path() != path {
			return nil
		}
		blobPath := store.ChunkPath(u)
		if err := os.Remove(blobPath); err != nil && !os.IsNotExist(err) {
			return ragiterr.FileError(ragiterr.IOKindOther, blobPath, err)
		}
		return nil
	})
}

// walkChunks visits every chunk currently on disk, decoding each blob and
// invoking fn. Read errors for an individual shard are surfaced; a
// completely absent chunks directory is not an error (spec §4.B: readers
// tolerate missing optional files).
func walkChunks(store *objstore.Store, fn func(uidkit.Uid, chunkmodel.Chunk) error) error {
	root := store.ChunksDir()
	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return ragiterr.FileError(ragiterr.IOKindOther, root, err)
	}

	for _, shard := range entries {
		if !shard.IsDir() {
			continue
		}
		shardDir := filepath.Join(root, shard.Name())
		files, err := os.ReadDir(shardDir)
		if err != nil {
			return ragiterr.FileError(ragiterr.IOKindOther, shardDir, err)
		}
		for _, f := range files {
			if f.IsDir() {
				continue
			}
			hex := shard.Name() + trimChunkExt(f.Name())
			u, err := uidkit.Parse(hex)
			if err != nil {
				continue
			}
			blobPath := filepath.Join(shardDir, f.Name())
			data, err := os.ReadFile(blobPath)
			if err != nil {
				if os.IsNotExist(err) {
					continue
				}
				return ragiterr.FileError(ragiterr.IOKindOther, blobPath, err)
			}
			chunk, err := chunkmodel.Unmarshal(data)
			if err != nil {
				continue
			}
			if err := fn(u, chunk); err != nil {
				return err
			}
		}
	}
	return nil
}

func trimChunkExt(name string) string {
	const ext = ".chunk"
	if len(name) > len(ext) && name[len(name)-len(ext):] == ext {
		return name[:len(name)-len(ext)]
	}
	return name
}
