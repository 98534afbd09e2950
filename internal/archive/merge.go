package archive

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/ragit-kb/ragit/internal/ragiterr"
	"github.com/ragit-kb/ragit/internal/repokb"
)

// extractAndMerge reads every archive blob in dir, sorts them by
// archive-id (spec §4.G "Ordering": ids may arrive out of order, the
// server sorts by id before extraction), and merges each one in turn
// into target using the same union algorithm as the local `merge`
// command. Callers are expected to already hold target's lock, the
// same discipline Repository.Build follows for its own long operation.
func extractAndMerge(target *repokb.Repository, dir string) (repokb.MergeReport, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return repokb.MergeReport{}, ragiterr.FileError(ragiterr.IOKindOther, dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var total repokb.MergeReport
	for _, name := range names {
		extracted, err := os.MkdirTemp("", "ragit-archive-extract-*")
		if err != nil {
			return total, ragiterr.FileError(ragiterr.IOKindOther, name, err)
		}
		if err := extractOne(filepath.Join(dir, name), extracted); err != nil {
			os.RemoveAll(extracted)
			return total, err
		}

		report, err := target.Merge(extracted)
		os.RemoveAll(extracted)
		if err != nil {
			return total, err
		}
		total.ChunksCopied += report.ChunksCopied
		total.ImagesCopied += report.ImagesCopied
		total.Conflicts = append(total.Conflicts, report.Conflicts...)
	}
	return total, nil
}

func extractOne(blobPath, destRoot string) error {
	f, err := os.Open(blobPath)
	if err != nil {
		return ragiterr.FileError(ragiterr.IOKindOther, blobPath, err)
	}
	defer f.Close()
	return ExtractBundle(f, destRoot)
}
