package repokb

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/ragit-kb/ragit/internal/objstore"
	"github.com/ragit-kb/ragit/internal/ragiterr"
	"github.com/ragit-kb/ragit/internal/uidkit"
)

// GcReport counts what a Gc pass removed.
type GcReport struct {
	ChunksRemoved int
	ImagesRemoved int
}

// Gc deletes every chunk whose source path is neither staged nor
// processed, then every image no remaining chunk references. This
// generalizes the per-path sweep chunkpipe.Remove already performs
// (spec §3: "removing a file removes unreferenced chunks") to a
// whole-repository pass, for recovering space after a crash left
// orphaned blobs behind or after repeated force-adds.
func (r *Repository) Gc() (GcReport, error) {
	tracked := make(map[string]struct{}, len(r.Header.StagedFiles)+len(r.Header.ProcessedFiles))
	for _, p := range r.Header.StagedFiles {
		tracked[p] = struct{}{}
	}
	for p := range r.Header.ProcessedFiles {
		tracked[p] = struct{}{}
	}

	chunks, err := r.AllChunks()
	if err != nil {
		return GcReport{}, err
	}

	var report GcReport
	referenced := make(map[uidkit.Uid]struct{})
	for _, c := range chunks {
		if _, ok := tracked[c.Source.Path()]; !ok {
			blobPath := r.Store.ChunkPath(c.Uid)
			if err := os.Remove(blobPath); err != nil && !os.IsNotExist(err) {
				return report, ragiterr.FileError(ragiterr.IOKindOther, blobPath, err)
			}
			report.ChunksRemoved++
			continue
		}
		for _, u := range c.Images {
			referenced[u] = struct{}{}
		}
	}

	allImages, err := listImageUids(r.Store)
	if err != nil {
		return report, err
	}
	for _, u := range allImages {
		if _, ok := referenced[u]; ok {
			continue
		}
		blobPath := r.Store.ImageBlobPath(u)
		sidecarPath := r.Store.ImageSidecarPath(u)
		if err := os.Remove(blobPath); err != nil && !os.IsNotExist(err) {
			return report, ragiterr.FileError(ragiterr.IOKindOther, blobPath, err)
		}
		if err := os.Remove(sidecarPath); err != nil && !os.IsNotExist(err) {
			return report, ragiterr.FileError(ragiterr.IOKindOther, sidecarPath, err)
		}
		report.ImagesRemoved++
	}

	return report, nil
}

// listImageUids scans store.ImagesDir() for every blob currently on
// disk, the image-store counterpart of chunkpipe's chunk walk.
func listImageUids(store *objstore.Store) ([]uidkit.Uid, error) {
	root := store.ImagesDir()
	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, ragiterr.FileError(ragiterr.IOKindOther, root, err)
	}

	var uids []uidkit.Uid
	for _, shard := range entries {
		if !shard.IsDir() {
			continue
		}
		shardDir := filepath.Join(root, shard.Name())
		files, err := os.ReadDir(shardDir)
		if err != nil {
			return nil, ragiterr.FileError(ragiterr.IOKindOther, shardDir, err)
		}
		for _, f := range files {
			if f.IsDir() || !strings.HasSuffix(f.Name(), ".png") {
				continue
			}
			hex := shard.Name() + strings.TrimSuffix(f.Name(), ".png")
			u, err := uidkit.Parse(hex)
			if err != nil {
				continue
			}
			uids = append(uids, u)
		}
	}
	return uids, nil
}
