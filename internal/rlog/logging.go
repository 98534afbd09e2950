// Package rlog provides structured logging for ragit.
//
// Per the design note in spec §9 ("global mutable log path"), the log
// path and logger are never kept in package-level mutable state: every
// entry point threads a *ragitctx.Context (see internal/ragitctx) through
// explicitly.
package rlog

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Config configures file-based structured logging for one repository or
// CLI invocation.
type Config struct {
	Level         string // debug, info, warn, error
	FilePath      string // target log file; caller resolves this (e.g. <root>/<INDEX_DIR>/logs/ragit.log)
	MaxSizeMB     int
	MaxFiles      int
	WriteToStderr bool
}

// DefaultConfig returns sensible defaults given an already-resolved path.
func DefaultConfig(path string) Config {
	return Config{
		Level:         "info",
		FilePath:      path,
		MaxSizeMB:     10,
		MaxFiles:      5,
		WriteToStderr: true,
	}
}

// Setup initializes file-based logging and returns the logger plus a
// cleanup func the caller must invoke before exiting.
func Setup(cfg Config) (*slog.Logger, func(), error) {
	if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0o755); err != nil {
		return nil, nil, err
	}

	writer, err := NewRotatingWriter(cfg.FilePath, cfg.MaxSizeMB, cfg.MaxFiles)
	if err != nil {
		return nil, nil, err
	}

	var output io.Writer = writer
	if cfg.WriteToStderr {
		output = io.MultiWriter(writer, os.Stderr)
	}

	handler := slog.NewJSONHandler(output, &slog.HandlerOptions{Level: parseLevel(cfg.Level)})
	logger := slog.New(handler)

	cleanup := func() {
		_ = writer.Sync()
		_ = writer.Close()
	}
	return logger, cleanup, nil
}

// Discard returns a logger that writes nowhere, useful for tests and for
// read-only operations that spec §5 says never take the repository lock.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
