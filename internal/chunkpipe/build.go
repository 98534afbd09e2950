package chunkpipe

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ragit-kb/ragit/internal/chunkmodel"
	"github.com/ragit-kb/ragit/internal/llm"
	"github.com/ragit-kb/ragit/internal/objstore"
	"github.com/ragit-kb/ragit/internal/pdl"
	"github.com/ragit-kb/ragit/internal/ragiterr"
	"github.com/ragit-kb/ragit/internal/schema"
	"github.com/ragit-kb/ragit/internal/uidkit"
)

// BuildConfig parameterizes one build run (spec §4.C chunking algorithm
// and §5 concurrency model).
type BuildConfig struct {
	TokenBudget   int
	OverlapTokens int
	Parallelism   int // worker-pool factor N; <=1 runs sequentially
	MaxRetry      int
	SchemaMaxTry  int
	Model         string
	RagitVersion  string
	CodeLoader    Loader // optional; nil disables tree-sitter loading
}

func (c BuildConfig) withDefaults() BuildConfig {
	if c.TokenBudget <= 0 {
		c.TokenBudget = 800
	}
	if c.Parallelism <= 0 {
		c.Parallelism = 1
	}
	if c.MaxRetry <= 0 {
		c.MaxRetry = 3
	}
	if c.SchemaMaxTry <= 0 {
		c.SchemaMaxTry = 3
	}
	return c
}

var titleSummarySchema = schema.Object(
	schema.Field{Key: "title", Schema: schema.Str()},
	schema.Field{Key: "summary", Schema: schema.Str()},
)

// FileResult reports the outcome of building one staged file.
type FileResult struct {
	Path    string
	FileUid uidkit.Uid
	Chunks  int
	Err     error
}

// ProgressFunc is invoked once per completed file, for a CLI dashboard.
type ProgressFunc func(FileResult)

// Build pops every staged file, chunks it, and moves it to processed,
// persisting the header after each file so curr_processing_file gives
// crash-safe resume (spec §4.C / §5). A non-nil onProgress is called once
// per file, successful or not; a file error aborts the whole build with
// that file left in curr_processing_file and put back into staged_files,
// for the next `build` invocation to pick back up.
func Build(ctx context.Context, store *objstore.Store, h *Header, repoRoot string, provider llm.Provider, cfg BuildConfig, onProgress ProgressFunc) error {
	cfg = cfg.withDefaults()
	counter := NewTokenCounter()

	for {
		path, ok := h.popStaged()
		if !ok {
			return h.Save(store)
		}
		h.CurrProcessingFile = &path
		if err := h.Save(store); err != nil {
			return err
		}

		result := buildOne(ctx, store, repoRoot, path, provider, cfg, counter)
		if result.Err != nil {
			// path goes back into StagedFiles and CurrProcessingFile still
			// names it, so a resumed build retries this exact file.
			h.stage(path)
			if onProgress != nil {
				onProgress(result)
			}
			_ = h.Save(store)
			return result.Err
		}

		h.ProcessedFiles[path] = result.FileUid.String()
		h.CurrProcessingFile = nil
		h.ChunkCount += uint64(result.Chunks)
		if err := h.Save(store); err != nil {
			return err
		}
		if onProgress != nil {
			onProgress(result)
		}
	}
}

// BuildParallel runs up to cfg.Parallelism files concurrently. Each
// worker chunks and summarizes its file completely before the header's
// processed_files map is updated under the caller-held repository lock
// (spec §5: "updated under the repository lock once per completed
// file"); the lock itself is the caller's responsibility (objstore.RepoLock),
// this function only serializes header mutation among its own workers.
func BuildParallel(ctx context.Context, store *objstore.Store, h *Header, repoRoot string, provider llm.Provider, cfg BuildConfig, onProgress ProgressFunc) error {
	cfg = cfg.withDefaults()
	if cfg.Parallelism <= 1 {
		return Build(ctx, store, h, repoRoot, provider, cfg, onProgress)
	}
	counter := NewTokenCounter()

	var paths []string
	for {
		p, ok := h.popStaged()
		if !ok {
			break
		}
		paths = append(paths, p)
	}
	if len(paths) == 0 {
		return h.Save(store)
	}

	var mu sync.Mutex
	inFlight := make([]string, 0, cfg.Parallelism)
	sem := make(chan struct{}, cfg.Parallelism)
	g, gctx := errgroup.WithContext(ctx)

	for _, path := range paths {
		path := path
		g.Go(func() error {
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-gctx.Done():
				return gctx.Err()
			}

			mu.Lock()
			inFlight = append(inFlight, path)
			h.CurrProcessingFile = currProcessingMarker(inFlight)
			saveErr := h.Save(store)
			mu.Unlock()
			if saveErr != nil {
				return saveErr
			}

			result := buildOne(gctx, store, repoRoot, path, provider, cfg, counter)

			mu.Lock()
			defer mu.Unlock()
			inFlight = removeFromSlice(inFlight, path)
			if result.Err != nil {
				h.stage(path)
				h.CurrProcessingFile = currProcessingMarker(inFlight)
				_ = h.Save(store)
				if onProgress != nil {
					onProgress(result)
				}
				return result.Err
			}
			h.ProcessedFiles[path] = result.FileUid.String()
			h.ChunkCount += uint64(result.Chunks)
			h.CurrProcessingFile = currProcessingMarker(inFlight)
			if onProgress != nil {
				onProgress(result)
			}
			return h.Save(store)
		})
	}

	err := g.Wait()
	mu.Lock()
	h.CurrProcessingFile = nil
	saveErr := h.Save(store)
	mu.Unlock()
	if err != nil {
		return err
	}
	return saveErr
}

func currProcessingMarker(inFlight []string) *string {
	if len(inFlight) == 0 {
		return nil
	}
	joined := inFlight[0]
	for _, p := range inFlight[1:] {
		joined += "\x1f" + p
	}
	return &joined
}

func removeFromSlice(s []string, v string) []string {
	out := s[:0]
	for _, x := range s {
		if x != v {
			out = append(out, x)
		}
	}
	return out
}

// buildOne loads, packs, summarizes, and persists the chunks for a single
// file. Every packed chunk is summarized; a chunk whose uid already exists
// in the store is not written again. The uid covers the title, summary and
// build timestamp, so a chunk rebuilt later gets a new uid rather than
// matching an earlier blob.
func buildOne(ctx context.Context, store *objstore.Store, repoRoot, path string, provider llm.Provider, cfg BuildConfig, counter TokenCounter) FileResult {
	data, err := os.ReadFile(filepath.Join(repoRoot, path))
	if err != nil {
		return FileResult{Path: path, Err: ragiterr.FileError(ragiterr.IOKindNotFound, path, err)}
	}

	loader := DefaultLoaderFor(path, cfg.CodeLoader)
	units, err := loader.Load(path, data)
	if err != nil {
		return FileResult{Path: path, Err: err}
	}

	packed := Pack(units, counter, cfg.TokenBudget, cfg.OverlapTokens)

	var chunkUids []uidkit.Uid
	for index, pc := range packed {
		chunkText, images, err := resolveImages(store, pc)
		if err != nil {
			return FileResult{Path: path, Err: err}
		}

		source := chunkmodel.NewFileSource(path, index, pc.Page)
		title, summary, err := summarize(ctx, provider, cfg, chunkText)
		if err != nil {
			return FileResult{Path: path, Err: err}
		}

		chunk := chunkmodel.Chunk{
			Data:      chunkText,
			Images:    images,
			Title:     title,
			Summary:   summary,
			Source:    source,
			Timestamp: time.Now().UTC(),
			BuildInfo: chunkmodel.BuildInfo{Model: cfg.Model, RagitVersion: cfg.RagitVersion},
		}
		chunk.ComputeUid()

		blobPath := store.ChunkPath(chunk.Uid)
		if exists, _ := objstore.Exists(blobPath); !exists {
			blob, err := chunkmodel.Marshal(chunk)
			if err != nil {
				return FileResult{Path: path, Err: err}
			}
			if err := objstore.WriteFile(blobPath, blob, objstore.Atomic); err != nil {
				return FileResult{Path: path, Err: err}
			}
		}
		chunkUids = append(chunkUids, chunk.Uid)
	}

	return FileResult{Path: path, FileUid: chunkmodel.ComputeFileUid(chunkUids), Chunks: len(chunkUids)}
}

// resolveImages writes out every image a PackedChunk collected and
// substitutes each imgPlaceholder with the image's real img_<uid> token,
// in the order images were extracted (spec §4.C).
func resolveImages(store *objstore.Store, pc PackedChunk) (string, []uidkit.Uid, error) {
	text := pc.Text
	uids := make([]uidkit.Uid, 0, len(pc.Images))
	for i, img := range pc.Images {
		chunkImg := chunkmodel.Image{Blob: img.Bytes}
		chunkImg.ComputeUid()

		blobPath := store.ImageBlobPath(chunkImg.Uid)
		if exists, _ := objstore.Exists(blobPath); !exists {
			if err := objstore.WriteFile(blobPath, chunkImg.Blob, objstore.Atomic); err != nil {
				return "", nil, err
			}
		}

		placeholder := imgPlaceholder(i)
		text = strings.ReplaceAll(text, placeholder, chunkmodel.ImgToken(chunkImg.Uid))
		uids = append(uids, chunkImg.Uid)
	}
	return text, uids, nil
}

// summarize asks provider for a chunk's title and summary, validating
// the response against titleSummarySchema and re-asking on a schema
// violation up to cfg.SchemaMaxTry times (spec §4.H), and retrying the
// call itself up to cfg.MaxRetry times on transport failure. On repeated
// failure the build aborts with a surfaced error (spec §4.C).
func summarize(ctx context.Context, provider llm.Provider, cfg BuildConfig, data string) (title, summary string, err error) {
	prompt := fmt.Sprintf(
		"Summarize the following content for a search index. Respond with JSON {\"title\": string, \"summary\": string}.\n\n%s",
		data,
	)
	messages := []pdl.Message{pdl.SimpleMessage(pdl.RoleUser, prompt)}

	var lastErr error
	for attempt := 0; attempt < cfg.MaxRetry; attempt++ {
		resp, sendErr := provider.Send(ctx, llm.Request{Model: cfg.Model, Messages: messages})
		if sendErr != nil {
			lastErr = sendErr
			continue
		}

		value, valErr := titleSummarySchema.Validate(resp.Text)
		if valErr == nil {
			obj, _ := value.(map[string]interface{})
			t, _ := obj["title"].(string)
			s, _ := obj["summary"].(string)
			return t, s, nil
		}

		lastErr = valErr
		for retry := 0; retry < cfg.SchemaMaxTry; retry++ {
			messages = append(messages,
				pdl.SimpleMessage(pdl.RoleAssistant, resp.Text),
				pdl.SimpleMessage(pdl.RoleUser, "Your response did not match the required schema: "+valErr.Error()+". Reply again with corrected JSON only."),
			)
			resp, sendErr = provider.Send(ctx, llm.Request{Model: cfg.Model, Messages: messages})
			if sendErr != nil {
				lastErr = sendErr
				break
			}
			value, valErr = titleSummarySchema.Validate(resp.Text)
			if valErr == nil {
				obj, _ := value.(map[string]interface{})
				t, _ := obj["title"].(string)
				s, _ := obj["summary"].(string)
				return t, s, nil
			}
			lastErr = valErr
		}
	}
	return "", "", ragiterr.RetriesExhausted(cfg.MaxRetry, lastErr)
}
