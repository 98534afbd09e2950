// Package main provides the ragit-logs command, a small tail/follow
// viewer over a repository's .ragit/logs/ragit.log (structured JSON
// lines written by internal/rlog).
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"regexp"
	"strings"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/ragit-kb/ragit/pkg/version"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type options struct {
	follow  bool
	lines   int
	level   string
	filter  string
	logFile string
	repo    string
}

func newRootCmd() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:     "ragit-logs",
		Short:   "View ragit's structured log file",
		Version: version.Version,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.logFile == "" {
				root := opts.repo
				if root == "" {
					wd, err := os.Getwd()
					if err != nil {
						return err
					}
					root = wd
				}
				opts.logFile = filepath.Join(root, ".ragit", "logs", "ragit.log")
			}
			return run(cmd.Context(), opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.follow, "follow", "f", false, "follow new entries (like tail -f)")
	cmd.Flags().IntVarP(&opts.lines, "lines", "n", 50, "number of lines to show")
	cmd.Flags().StringVar(&opts.level, "level", "", "filter by level (debug|info|warn|error)")
	cmd.Flags().StringVar(&opts.filter, "filter", "", "filter by message pattern (regex)")
	cmd.Flags().StringVar(&opts.logFile, "file", "", "path to the log file (overrides --repo)")
	cmd.Flags().StringVar(&opts.repo, "repo", "", "repository root (default: current directory)")
	return cmd
}

// entry mirrors the fields slog.JSONHandler emits, loosely enough to
// tolerate handler-option changes to extra attributes.
type entry struct {
	Time  string `json:"time"`
	Level string `json:"level"`
	Msg   string `json:"msg"`
}

func run(ctx context.Context, opts options) error {
	var pattern *regexp.Regexp
	if opts.filter != "" {
		p, err := regexp.Compile(opts.filter)
		if err != nil {
			return fmt.Errorf("invalid filter pattern: %w", err)
		}
		pattern = p
	}

	matches, err := tail(opts.logFile, opts.lines, opts.level, pattern)
	if err != nil {
		return err
	}
	for _, line := range matches {
		fmt.Println(line)
	}

	if !opts.follow {
		return nil
	}
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()
	return follow(ctx, opts.logFile, opts.level, pattern)
}

// tail reads the whole file (log files are rotated by internal/rlog at
// a small size cap, so this never reads something unbounded) and
// returns the last n lines that pass the level/pattern filters.
func tail(path string, n int, level string, pattern *regexp.Regexp) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var all []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		line := scanner.Text()
		if matchesFilter(line, level, pattern) {
			all = append(all, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(all) > n {
		all = all[len(all)-n:]
	}
	return all, nil
}

func matchesFilter(line, level string, pattern *regexp.Regexp) bool {
	var e entry
	if json.Unmarshal([]byte(line), &e) != nil {
		return pattern == nil || pattern.MatchString(line)
	}
	if level != "" && !strings.EqualFold(e.Level, level) {
		return false
	}
	if pattern != nil && !pattern.MatchString(e.Msg) {
		return false
	}
	return true
}

// follow watches path for appended writes via fsnotify and prints new
// lines as they land, the same event-driven approach internal/watch
// uses for source files rather than polling stat() in a loop.
func follow(ctx context.Context, path, level string, pattern *regexp.Regexp) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	if err := w.Add(filepath.Dir(path)); err != nil {
		return err
	}

	offset, err := currentSize(path)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != filepath.Clean(path) {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			lines, newOffset, err := readFrom(path, offset)
			if err != nil {
				continue
			}
			offset = newOffset
			for _, line := range lines {
				if matchesFilter(line, level, pattern) {
					fmt.Println(line)
				}
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			return err
		}
	}
}

func currentSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

func readFrom(path string, offset int64) ([]string, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, offset, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, offset, err
	}
	if info.Size() < offset {
		offset = 0 // file was rotated out from under us
	}
	if _, err := f.Seek(offset, 0); err != nil {
		return nil, offset, err
	}

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	return lines, info.Size(), scanner.Err()
}
