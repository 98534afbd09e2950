package archive

import (
	"archive/tar"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ragit-kb/ragit/internal/objstore"
	"github.com/ragit-kb/ragit/internal/ragiterr"
)

// WriteBundle tars and gzips the index directory of the repository
// rooted at repoRoot into w. The archive holds paths relative to
// repoRoot (".ragit/index.json", ".ragit/chunks/<shard>/<uid>.chunk",
// ...) so ExtractBundle can lay it back out under any destination root.
func WriteBundle(w io.Writer, repoRoot string) error {
	gw := gzip.NewWriter(w)
	tw := tar.NewWriter(gw)

	store := objstore.New(repoRoot)
	err := filepath.Walk(store.IndexPath(), func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(repoRoot, path)
		if err != nil {
			return err
		}
		hdr, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return err
		}
		hdr.Name = filepath.ToSlash(rel)
		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		_, err = io.Copy(tw, f)
		return err
	})
	if err != nil {
		return ragiterr.FileError(ragiterr.IOKindOther, store.IndexPath(), err)
	}
	if err := tw.Close(); err != nil {
		return err
	}
	return gw.Close()
}

// ExtractBundle unpacks an archive written by WriteBundle under
// destRoot. Every entry is checked against path traversal before being
// written: a cleaned name that escapes destRoot, or that resolves
// outside of destRoot's ".ragit" subtree, is rejected rather than
// silently skipped, since a malicious bundle is exactly what this
// check exists to catch (spec §6 "Path components must be checked
// against traversal").
func ExtractBundle(r io.Reader, destRoot string) error {
	gr, err := gzip.NewReader(r)
	if err != nil {
		return ragiterr.FileError(ragiterr.IOKindOther, destRoot, err)
	}
	defer gr.Close()
	tr := tar.NewReader(gr)

	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return ragiterr.FileError(ragiterr.IOKindOther, destRoot, err)
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}

		target, err := safeJoin(destRoot, hdr.Name)
		if err != nil {
			return err
		}

		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return ragiterr.FileError(ragiterr.IOKindOther, filepath.Dir(target), err)
		}
		f, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
		if err != nil {
			return ragiterr.FileError(ragiterr.IOKindOther, target, err)
		}
		if _, err := io.Copy(f, tr); err != nil {
			f.Close()
			return ragiterr.FileError(ragiterr.IOKindOther, target, err)
		}
		if err := f.Close(); err != nil {
			return ragiterr.FileError(ragiterr.IOKindOther, target, err)
		}
	}
}

// safeJoin joins name onto root, rejecting any entry that would land
// outside root or outside root's index directory.
func safeJoin(root, name string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(name))
	if filepath.IsAbs(clean) || strings.HasPrefix(clean, "..") {
		return "", ragiterr.PathTraversal(name)
	}
	if !strings.HasPrefix(clean, objstore.IndexDir+string(filepath.Separator)) && clean != objstore.IndexDir {
		return "", ragiterr.PathTraversal(name)
	}
	target := filepath.Join(root, clean)
	if !strings.HasPrefix(target, filepath.Clean(root)+string(filepath.Separator)) {
		return "", ragiterr.PathTraversal(name)
	}
	return target, nil
}
