// Package ragitctx defines the explicit context object threaded through
// every ragit operation, per the design note in spec §9: the teacher
// keeps its log file path in process-wide state, but ragit never does —
// every call that needs a logger or a repository root takes a
// *Context argument instead of reaching for ambient globals.
package ragitctx

import (
	"log/slog"

	"github.com/ragit-kb/ragit/internal/rlog"
)

// Context bundles the per-call dependencies an operation needs: where the
// repository lives on disk and where to log. It is deliberately not
// context.Context (which carries cancellation/deadlines, passed alongside
// this where relevant) — it carries configuration, not control flow.
type Context struct {
	Logger *slog.Logger
	Root   string // repository root directory (parent of the index directory)
}

// New creates a Context rooted at root, logging to logger.
func New(root string, logger *slog.Logger) *Context {
	if logger == nil {
		logger = rlog.Discard()
	}
	return &Context{Logger: logger, Root: root}
}

// Background returns a Context suitable for tests and one-off tooling:
// silent logging, rooted at root.
func Background(root string) *Context {
	return &Context{Logger: rlog.Discard(), Root: root}
}

// WithLogger returns a shallow copy of c using logger instead.
func (c *Context) WithLogger(logger *slog.Logger) *Context {
	cp := *c
	cp.Logger = logger
	return &cp
}
