package repokb

import (
	"os"
	"path/filepath"

	"github.com/ragit-kb/ragit/internal/meta"
	"github.com/ragit-kb/ragit/internal/objstore"
	"github.com/ragit-kb/ragit/internal/ragiterr"
)

// MergeReport summarizes an extract-and-merge pass (spec §4.G "Merge
// semantics"), the same union algorithm the archive protocol's
// finalize-push applies to an extracted archive, exposed here for the
// CLI's local `merge <path>` command.
type MergeReport struct {
	ChunksCopied int
	ImagesCopied int
	Conflicts    []string // paths where incoming and existing file-uids disagreed; incoming won
}

// Merge unions srcRoot's repository into r: chunks and images are
// unioned by uid (duplicates skipped), files are unioned by path with
// the incoming side winning on conflict, the header and meta are
// merged field-by-field, and configs/prompts are overwritten wholesale
// from the incoming side (spec §4.G).
func (r *Repository) Merge(srcRoot string) (MergeReport, error) {
	src, err := Open(srcRoot)
	if err != nil {
		return MergeReport{}, err
	}

	var report MergeReport

	srcChunks, err := src.AllChunks()
	if err != nil {
		return report, err
	}
	for _, c := range srcChunks {
		blobPath := r.Store.ChunkPath(c.Uid)
		if ok, _ := objstore.Exists(blobPath); ok {
			continue
		}
		srcBlob, err := os.ReadFile(src.Store.ChunkPath(c.Uid))
		if err != nil {
			return report, ragiterr.FileError(ragiterr.IOKindOther, src.Store.ChunkPath(c.Uid), err)
		}
		if err := objstore.WriteFile(blobPath, srcBlob, objstore.Atomic); err != nil {
			return report, err
		}
		report.ChunksCopied++
	}

	srcImages, err := listImageUids(src.Store)
	if err != nil {
		return report, err
	}
	for _, u := range srcImages {
		blobPath := r.Store.ImageBlobPath(u)
		if ok, _ := objstore.Exists(blobPath); ok {
			continue
		}
		blob, err := os.ReadFile(src.Store.ImageBlobPath(u))
		if err != nil {
			return report, ragiterr.FileError(ragiterr.IOKindOther, src.Store.ImageBlobPath(u), err)
		}
		if err := objstore.WriteFile(blobPath, blob, objstore.Atomic); err != nil {
			return report, err
		}
		if sidecar, err := os.ReadFile(src.Store.ImageSidecarPath(u)); err == nil {
			if err := objstore.WriteFile(r.Store.ImageSidecarPath(u), sidecar, objstore.Atomic); err != nil {
				return report, err
			}
		}
		report.ImagesCopied++
	}

	for path, hex := range src.Header.ProcessedFiles {
		if existing, ok := r.Header.ProcessedFiles[path]; ok && existing != hex {
			report.Conflicts = append(report.Conflicts, path)
		}
		r.Header.ProcessedFiles[path] = hex
		removeFromStaged(&r.Header.StagedFiles, path)
	}
	for _, path := range src.Header.StagedFiles {
		if _, ok := r.Header.ProcessedFiles[path]; ok {
			continue
		}
		alreadyStaged := false
		for _, s := range r.Header.StagedFiles {
			if s == path {
				alreadyStaged = true
				break
			}
		}
		if !alreadyStaged {
			r.Header.StagedFiles = append(r.Header.StagedFiles, path)
		}
	}

	if len(r.Header.APIConfig) == 0 {
		r.Header.APIConfig = src.Header.APIConfig
	}
	if len(r.Header.BuildConfig) == 0 {
		r.Header.BuildConfig = src.Header.BuildConfig
	}
	if len(r.Header.QueryConfig) == 0 {
		r.Header.QueryConfig = src.Header.QueryConfig
	}

	mergedChunks, err := r.AllChunks()
	if err != nil {
		return report, err
	}
	r.Header.ChunkCount = uint64(len(mergedChunks))

	if err := mergeMeta(r.Store, src.Store); err != nil {
		return report, err
	}
	if err := overwriteDir(src.Store.ConfigsDir(), r.Store.ConfigsDir()); err != nil {
		return report, err
	}
	if err := overwriteDir(src.Store.PromptsDir(), r.Store.PromptsDir()); err != nil {
		return report, err
	}

	return report, r.Save()
}

func removeFromStaged(staged *[]string, path string) {
	out := (*staged)[:0]
	for _, p := range *staged {
		if p != path {
			out = append(out, p)
		}
	}
	*staged = out
}

func mergeMeta(dst, src *objstore.Store) error {
	dstMeta, err := meta.Load(dst)
	if err != nil {
		return err
	}
	srcMeta, err := meta.Load(src)
	if err != nil {
		return err
	}
	for _, k := range srcMeta.Keys() {
		v, _ := srcMeta.Get(k)
		dstMeta.Set(k, v)
	}
	return dstMeta.Save(dst)
}

// overwriteDir copies every regular file from srcDir into dstDir,
// overwriting any same-named file already there (spec §4.G "configs
// and prompts are overwritten from the incoming side").
func overwriteDir(srcDir, dstDir string) error {
	entries, err := os.ReadDir(srcDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return ragiterr.FileError(ragiterr.IOKindOther, srcDir, err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(srcDir, e.Name()))
		if err != nil {
			return ragiterr.FileError(ragiterr.IOKindOther, filepath.Join(srcDir, e.Name()), err)
		}
		if err := objstore.WriteFile(filepath.Join(dstDir, e.Name()), data, objstore.CreateOrTruncate); err != nil {
			return err
		}
	}
	return nil
}

