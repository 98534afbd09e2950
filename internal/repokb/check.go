package repokb

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"github.com/ragit-kb/ragit/internal/chunkmodel"
	"github.com/ragit-kb/ragit/internal/objstore"
	"github.com/ragit-kb/ragit/internal/uidkit"
)

// Issue is one consistency problem Check found. It is informational:
// Check never mutates the repository, matching spec §7's "failures are
// recorded, not fatal" propagation policy for read-only audits.
type Issue struct {
	Path    string
	Message string
}

var imgTokenRE = regexp.MustCompile(`img_[0-9a-f]{64}`)

// Check audits the repository's invariants (spec §3 file/chunk
// lifecycle, spec §8 testable properties). With recursive set, it also
// re-derives every processed file's uid from its on-disk chunks and
// verifies every image reference actually resolves, which requires a
// full chunk-store walk; without it, Check inspects the header and
// whether each processed file still exists on disk.
func (r *Repository) Check(recursive bool) ([]Issue, error) {
	var issues []Issue

	for _, staged := range r.Header.StagedFiles {
		if _, ok := r.Header.ProcessedFiles[staged]; ok {
			issues = append(issues, Issue{Path: staged, Message: "listed as both staged and processed"})
		}
	}
	if r.Header.CurrProcessingFile != nil {
		p := *r.Header.CurrProcessingFile
		if _, ok := r.Header.ProcessedFiles[p]; ok {
			issues = append(issues, Issue{Path: p, Message: "curr_processing_file also appears in processed_files"})
		}
	}
	for path, hex := range r.Header.ProcessedFiles {
		if _, err := uidkit.Parse(hex); err != nil {
			issues = append(issues, Issue{Path: path, Message: fmt.Sprintf("processed_files hash %q does not parse as a uid", hex)})
		}
		if !recursive {
			if _, err := os.Stat(filepath.Join(r.Root, path)); os.IsNotExist(err) {
				issues = append(issues, Issue{Path: path, Message: "file no longer exists on disk (run remove --auto)"})
			}
		}
	}

	if !recursive {
		return issues, nil
	}

	chunks, err := r.AllChunks()
	if err != nil {
		return issues, err
	}

	byPath := make(map[string][]chunkmodel.Chunk)
	for _, c := range chunks {
		byPath[c.Source.Path()] = append(byPath[c.Source.Path()], c)
	}

	for path, hex := range r.Header.ProcessedFiles {
		if _, err := os.Stat(filepath.Join(r.Root, path)); os.IsNotExist(err) {
			issues = append(issues, Issue{Path: path, Message: "file no longer exists on disk (run remove --auto)"})
		}

		group := byPath[path]
		sort.Slice(group, func(i, j int) bool { return group[i].Source.Index() < group[j].Source.Index() })
		for i, c := range group {
			if c.Source.Index() != i {
				issues = append(issues, Issue{Path: path, Message: fmt.Sprintf("chunk indices are not a dense 0-based sequence (gap at %d)", i)})
				break
			}
		}

		uids := make([]uidkit.Uid, len(group))
		for i, c := range group {
			uids[i] = c.Uid
		}
		fileUid := chunkmodel.ComputeFileUid(uids)
		if fileUid.String() != hex {
			issues = append(issues, Issue{Path: path, Message: "recomputed file uid does not match processed_files entry"})
		}
	}

	for _, c := range chunks {
		for _, token := range imgTokenRE.FindAllString(c.Data, -1) {
			hex := token[len("img_"):]
			u, err := uidkit.Parse(hex)
			if err != nil {
				continue
			}
			if !c.HasImage(u) {
				issues = append(issues, Issue{Path: c.Source.Path(), Message: fmt.Sprintf("chunk data references %s not listed in images", token)})
			}
		}
		for _, u := range c.Images {
			if exists, _ := objstore.Exists(r.Store.ImageBlobPath(u)); !exists {
				issues = append(issues, Issue{Path: c.Source.Path(), Message: fmt.Sprintf("image %s has no blob on disk", u.String())})
			}
		}
	}

	return issues, nil
}
