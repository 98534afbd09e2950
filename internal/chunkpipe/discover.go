package chunkpipe

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ragit-kb/ragit/internal/gitignore"
	"github.com/ragit-kb/ragit/internal/objstore"
)

// DefaultMaxFileSize skips files larger than this during discovery; a
// file this big is almost certainly not meant for chunking.
const DefaultMaxFileSize = 32 * 1024 * 1024

// Discover walks repoRoot and returns every file path (relative to
// repoRoot, slash-separated) not excluded by repoRoot's own .gitignore or
// by the repository's own index directory, for `ragit add` to stage in
// bulk. .gitignore files in subdirectories are not read. Submodule traversal is out of scope (spec §4.C names
// only per-file staging, not a submodule model).
func Discover(repoRoot string) ([]string, error) {
	var matcher *gitignore.Matcher
	if data, err := os.ReadFile(filepath.Join(repoRoot, ".gitignore")); err == nil {
		matcher = gitignore.New()
		for _, p := range gitignore.ParsePatterns(string(data)) {
			matcher.AddPattern(p)
		}
	}

	var paths []string
	err := filepath.WalkDir(repoRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		rel, relErr := filepath.Rel(repoRoot, path)
		if relErr != nil || rel == "." {
			return nil
		}

		if d.IsDir() {
			if d.Name() == objstore.IndexDir || d.Name() == ".git" {
				return filepath.SkipDir
			}
			if matcher != nil && matcher.Match(rel, true) {
				return filepath.SkipDir
			}
			return nil
		}

		if matcher != nil && matcher.Match(rel, false) {
			return nil
		}

		info, err := d.Info()
		if err != nil || info.Size() > DefaultMaxFileSize {
			return nil
		}

		paths = append(paths, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return paths, nil
}
