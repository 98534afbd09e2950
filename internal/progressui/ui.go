// Package progressui renders ragit build's per-file progress (spec §6
// "build"), adapted from the teacher's indexing dashboard down to the
// single stage ragit's pipeline actually has: chunking-and-summarizing one
// staged file at a time (internal/chunkpipe.Build/BuildParallel).
package progressui

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
)

// FileEvent reports one completed file, mirroring
// chunkpipe.FileResult without importing chunkpipe (progressui stays a
// leaf package any CLI command can use).
type FileEvent struct {
	Path    string
	Chunks  int
	Err     error
	Current int
	Total   int
}

// CompletionStats summarizes a finished build.
type CompletionStats struct {
	Files    int
	Chunks   int
	Errors   int
	Duration time.Duration
}

// Renderer displays build progress. TUIRenderer is used on an
// interactive terminal; PlainRenderer otherwise (CI, pipes, or `build`
// run without --dashboard).
type Renderer interface {
	Start(ctx context.Context) error
	Update(event FileEvent)
	Complete(stats CompletionStats)
	Stop() error
}

// Config configures the renderer.
type Config struct {
	Output     io.Writer
	ForcePlain bool
	NoColor    bool
}

// New picks a Renderer for cfg: plain text for non-TTY output, CI
// environments, or ForcePlain (`build` without --dashboard); the bubbletea dashboard
// otherwise, falling back to plain on any TUI init failure.
func New(cfg Config) Renderer {
	if cfg.ForcePlain || !IsTTY(cfg.Output) || DetectCI() {
		return NewPlainRenderer(cfg)
	}
	tui, err := NewTUIRenderer(cfg)
	if err != nil {
		return NewPlainRenderer(cfg)
	}
	return tui
}

// IsTTY reports whether w is a terminal file descriptor.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// DetectCI reports whether common CI environment variables are set.
func DetectCI() bool {
	for _, v := range []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL"} {
		if _, ok := os.LookupEnv(v); ok {
			return true
		}
	}
	return false
}

// DetectNoColor reports whether NO_COLOR is set.
func DetectNoColor() bool {
	_, ok := os.LookupEnv("NO_COLOR")
	return ok
}
