package progressui

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"
)

// PlainRenderer logs one line per file, for CI logs and piped output.
type PlainRenderer struct {
	mu  sync.Mutex
	out io.Writer
}

func NewPlainRenderer(cfg Config) *PlainRenderer {
	return &PlainRenderer{out: cfg.Output}
}

func (r *PlainRenderer) Start(ctx context.Context) error { return nil }

func (r *PlainRenderer) Update(event FileEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if event.Err != nil {
		fmt.Fprintf(r.out, "[%d/%d] %s: error: %v\n", event.Current, event.Total, event.Path, event.Err)
		return
	}
	fmt.Fprintf(r.out, "[%d/%d] %s: %d chunks\n", event.Current, event.Total, event.Path, event.Chunks)
}

func (r *PlainRenderer) Complete(stats CompletionStats) {
	r.mu.Lock()
	defer r.mu.Unlock()

	fmt.Fprintf(r.out, "built %d files, %d chunks in %s", stats.Files, stats.Chunks, stats.Duration.Round(time.Millisecond*100))
	if stats.Errors > 0 {
		fmt.Fprintf(r.out, " (%d errors)", stats.Errors)
	}
	fmt.Fprintln(r.out)
}

func (r *PlainRenderer) Stop() error { return nil }
