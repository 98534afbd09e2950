package repokb

import (
	"os"

	"github.com/ragit-kb/ragit/internal/chunkpipe"
	"github.com/ragit-kb/ragit/internal/ragiterr"
)

// ResetSoft clears the in-flight build state (curr_processing_file; the
// staged list is kept) without touching any chunk or image already
// on disk, for recovering from a build that left the header pointing
// at a file whose re-chunking is no longer wanted this session. Any
// path named by curr_processing_file is re-staged first so it is not
// silently dropped.
func (r *Repository) ResetSoft() error {
	if r.Header.CurrProcessingFile != nil {
		p := *r.Header.CurrProcessingFile
		if _, ok := r.Header.ProcessedFiles[p]; !ok {
			found := false
			for _, s := range r.Header.StagedFiles {
				if s == p {
					found = true
					break
				}
			}
			if !found {
				r.Header.StagedFiles = append(r.Header.StagedFiles, p)
			}
		}
		r.Header.CurrProcessingFile = nil
	}
	return r.Save()
}

// ResetHard wipes every chunk, image, archive, and inverted-index
// shard, then reinitializes the header to empty (every processed and
// staged file reverts to untracked). It preserves meta.json, the
// config blocks, and the model catalog, since those are user settings
// rather than ingested content.
func (r *Repository) ResetHard() error {
	for _, dir := range []string{r.Store.ChunksDir(), r.Store.ImagesDir(), r.Store.ArchivesDir(), r.Store.IIDir()} {
		if err := os.RemoveAll(dir); err != nil {
			return ragiterr.FileError(ragiterr.IOKindOther, dir, err)
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return ragiterr.FileError(ragiterr.IOKindOther, dir, err)
		}
	}

	version := r.Header.RagitVersion
	apiConfig, buildConfig, queryConfig := r.Header.APIConfig, r.Header.BuildConfig, r.Header.QueryConfig
	r.Header = chunkpipe.NewHeader(version)
	r.Header.APIConfig, r.Header.BuildConfig, r.Header.QueryConfig = apiConfig, buildConfig, queryConfig
	return r.Save()
}
