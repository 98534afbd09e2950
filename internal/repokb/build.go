package repokb

import (
	"context"

	"github.com/ragit-kb/ragit/internal/chunkpipe"
	"github.com/ragit-kb/ragit/internal/llm"
)

// Build chunks every staged file under the repository lock, running
// cfg.Parallelism workers concurrently when it is greater than one
// (spec §5: ingestion holds the single-writer lock for the duration of
// a build). onProgress, if non-nil, is invoked once per completed file.
func (r *Repository) Build(ctx context.Context, provider llm.Provider, cfg chunkpipe.BuildConfig, onProgress chunkpipe.ProgressFunc) error {
	lock := r.Lock()
	if err := lock.Lock(); err != nil {
		return err
	}
	defer lock.Unlock()

	if cfg.RagitVersion == "" {
		cfg.RagitVersion = r.Header.RagitVersion
	}

	if cfg.Parallelism > 1 {
		return chunkpipe.BuildParallel(ctx, r.Store, &r.Header, r.Root, provider, cfg, onProgress)
	}
	return chunkpipe.Build(ctx, r.Store, &r.Header, r.Root, provider, cfg, onProgress)
}
