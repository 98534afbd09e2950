package cmd

import (
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/ragit-kb/ragit/internal/chunkpipe"
	"github.com/ragit-kb/ragit/internal/meta"
	"github.com/ragit-kb/ragit/internal/objstore"
	"github.com/ragit-kb/ragit/internal/progressui"
	"github.com/ragit-kb/ragit/internal/repokb"
	"github.com/ragit-kb/ragit/pkg/version"
)

func newBuildCmd() *cobra.Command {
	var parallelism int
	var model string
	var quiet bool
	var dashboard bool

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Chunk and summarize every staged file into the knowledge base",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repokb.Open(repoRoot)
			if err != nil {
				return err
			}
			lock := r.Lock()
			if err := lock.Lock(); err != nil {
				return err
			}
			defer lock.Unlock()

			cfg, err := loadBuildConfig(r.Store)
			if err != nil {
				return err
			}
			if parallelism > 0 {
				cfg.Parallelism = parallelism
			}
			if model != "" {
				cfg.Model = model
			}
			if cfg.Model == "" {
				cfg.Model = ambient.DefaultModel
			}
			cfg.RagitVersion = version.Version

			provider, err := resolveProvider(r.Store, cfg.Model)
			if err != nil {
				return err
			}
			provider, closeUsage, err := trackUsage(r.Store, cfg.Model, provider)
			if err != nil {
				return err
			}
			defer closeUsage()

			var onProgress chunkpipe.ProgressFunc
			var renderer progressui.Renderer
			if !quiet {
				total := len(r.Header.StagedFiles)
				current := 0
				renderer = progressui.New(progressui.Config{Output: cmd.OutOrStdout(), ForcePlain: !dashboard})
				if err := renderer.Start(cmd.Context()); err != nil {
					return err
				}
				onProgress = func(res chunkpipe.FileResult) {
					current++
					renderer.Update(progressui.FileEvent{
						Path: res.Path, Chunks: res.Chunks, Err: res.Err,
						Current: current, Total: total,
					})
				}
			}

			build := chunkpipe.Build
			if cfg.Parallelism > 1 {
				build = chunkpipe.BuildParallel
			}
			buildStart := time.Now()
			buildErr := build(cmd.Context(), r.Store, &r.Header, r.Root, provider, cfg, onProgress)
			if renderer != nil {
				errCount := 0
				if buildErr != nil {
					errCount = 1
				}
				renderer.Complete(progressui.CompletionStats{
					Files:    len(r.Header.ProcessedFiles),
					Chunks:   int(r.Header.ChunkCount),
					Duration: time.Since(buildStart),
					Errors:   errCount,
				})
				_ = renderer.Stop()
			}
			if buildErr != nil {
				return buildErr
			}
			return r.Save()
		},
	}

	cmd.Flags().IntVar(&parallelism, "parallelism", 0, "override the build config's worker-pool factor")
	cmd.Flags().StringVar(&model, "model", "", "override the build config's model")
	cmd.Flags().BoolVar(&quiet, "quiet", false, "suppress per-file progress output")
	cmd.Flags().BoolVar(&dashboard, "dashboard", false, "render an interactive progress dashboard instead of plain per-file lines")
	return cmd
}

// loadBuildConfig reads the "build" config block into a typed
// chunkpipe.BuildConfig, the same pattern query.LoadConfig uses for its
// own block.
func loadBuildConfig(store *objstore.Store) (chunkpipe.BuildConfig, error) {
	block, err := meta.LoadBlock(store, "build")
	if err != nil {
		return chunkpipe.BuildConfig{}, err
	}
	cfg := chunkpipe.BuildConfig{Model: block["model"]}
	if v, ok := block.Get("token_budget"); ok {
		cfg.TokenBudget, _ = strconv.Atoi(v)
	}
	if v, ok := block.Get("overlap_tokens"); ok {
		cfg.OverlapTokens, _ = strconv.Atoi(v)
	}
	if v, ok := block.Get("parallelism"); ok {
		cfg.Parallelism, _ = strconv.Atoi(v)
	}
	if v, ok := block.Get("max_retry"); ok {
		cfg.MaxRetry, _ = strconv.Atoi(v)
	}
	if v, ok := block.Get("schema_max_try"); ok {
		cfg.SchemaMaxTry, _ = strconv.Atoi(v)
	}
	return cfg, nil
}
