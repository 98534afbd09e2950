// Package objstore implements the on-disk repository layout of spec §4.B:
// a two-level sharded directory tree for chunks, images, and archives
// under <root>/.ragit/, plus the write-mode discipline ("a write is
// considered durable once the file exists at its final path with its
// full content") and the single-writer repository lock.
package objstore

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ragit-kb/ragit/internal/ragiterr"
	"github.com/ragit-kb/ragit/internal/uidkit"
)

// IndexDir is the name of the repository's hidden index directory.
const IndexDir = ".ragit"

// Store resolves paths within one repository's object store and performs
// the write-mode-aware I/O spec §4.B requires.
type Store struct {
	Root string // repository root (parent of .ragit/)
}

// New returns a Store rooted at root. It does not touch the filesystem.
func New(root string) *Store {
	return &Store{Root: root}
}

// IndexPath returns <root>/.ragit.
func (s *Store) IndexPath() string { return filepath.Join(s.Root, IndexDir) }

func (s *Store) HeaderPath() string  { return filepath.Join(s.IndexPath(), "index.json") }
func (s *Store) MetaPath() string    { return filepath.Join(s.IndexPath(), "meta.json") }
func (s *Store) ModelsPath() string  { return filepath.Join(s.IndexPath(), "models.json") }
func (s *Store) ConfigsDir() string  { return filepath.Join(s.IndexPath(), "configs") }
func (s *Store) PromptsDir() string  { return filepath.Join(s.IndexPath(), "prompts") }
func (s *Store) ChunksDir() string   { return filepath.Join(s.IndexPath(), "chunks") }
func (s *Store) ImagesDir() string   { return filepath.Join(s.IndexPath(), "images") }
func (s *Store) ArchivesDir() string { return filepath.Join(s.IndexPath(), "archives") }
func (s *Store) IIDir() string       { return filepath.Join(s.IndexPath(), "ii") }
func (s *Store) LogsDir() string     { return filepath.Join(s.IndexPath(), "logs") }

func (s *Store) ConfigPath(name string) string { return filepath.Join(s.ConfigsDir(), name+".json") }
func (s *Store) PromptPath(name string) string { return filepath.Join(s.PromptsDir(), name+".pdl") }

// ChunkPath returns the sharded path for a chunk uid, e.g.
// .ragit/chunks/<xx>/<62hex>.chunk
func (s *Store) ChunkPath(u uidkit.Uid) string {
	return filepath.Join(s.ChunksDir(), u.ShardPrefix(), u.ShardSuffix()+".chunk")
}

// ImageBlobPath and ImageSidecarPath return the sharded paths for an
// image's binary blob and its JSON sidecar (spec §3/§4.B).
func (s *Store) ImageBlobPath(u uidkit.Uid) string {
	return filepath.Join(s.ImagesDir(), u.ShardPrefix(), u.ShardSuffix()+".png")
}

func (s *Store) ImageSidecarPath(u uidkit.Uid) string {
	return filepath.Join(s.ImagesDir(), u.ShardPrefix(), u.ShardSuffix()+".json")
}

// ArchivePath returns the path for a named archive bundle.
func (s *Store) ArchivePath(key string) string {
	return filepath.Join(s.ArchivesDir(), key)
}

// EnsureLayout creates every directory the layout in spec §4.B names.
func (s *Store) EnsureLayout() error {
	dirs := []string{
		s.IndexPath(), s.ConfigsDir(), s.PromptsDir(),
		s.ChunksDir(), s.ImagesDir(), s.ArchivesDir(), s.IIDir(), s.LogsDir(),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return translateErr(err, d)
		}
	}
	return nil
}

// WriteMode selects the durability/overwrite discipline for a write, per
// spec §4.B.
type WriteMode int

const (
	// AlwaysAppend appends to an existing file, failing if it is missing.
	AlwaysAppend WriteMode = iota
	// AppendOrCreate appends, creating the file if it does not exist.
	AppendOrCreate
	// CreateOrTruncate overwrites any existing content.
	CreateOrTruncate
	// AlwaysCreate fails if the file already exists.
	AlwaysCreate
	// Atomic writes to a temp file in the same directory and renames it
	// into place, so concurrent readers never observe a partial file.
	Atomic
)

// WriteFile writes data to path under the given mode, creating parent
// directories as needed. It returns *ragiterr.Error on failure.
func WriteFile(path string, data []byte, mode WriteMode) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return translateErr(err, filepath.Dir(path))
	}

	switch mode {
	case AlwaysAppend:
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return translateErr(err, path)
		}
		defer f.Close()
		_, err = f.Write(data)
		return translateErr(err, path)

	case AppendOrCreate:
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0o644)
		if err != nil {
			return translateErr(err, path)
		}
		defer f.Close()
		_, err = f.Write(data)
		return translateErr(err, path)

	case CreateOrTruncate:
		return translateErr(os.WriteFile(path, data, 0o644), path)

	case AlwaysCreate:
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err != nil {
			return translateErr(err, path)
		}
		defer f.Close()
		_, err = f.Write(data)
		return translateErr(err, path)

	case Atomic:
		tmp := path + fmt.Sprintf(".tmp-%d", os.Getpid())
		if err := os.WriteFile(tmp, data, 0o644); err != nil {
			return translateErr(err, tmp)
		}
		if err := os.Rename(tmp, path); err != nil {
			_ = os.Remove(tmp)
			return translateErr(err, path)
		}
		return nil

	default:
		return fmt.Errorf("unknown write mode %d", mode)
	}
}

// ReadFile reads a file, tolerating missing *optional* files by letting
// the caller check ragiterr.CodeSemanticIndexNotFound-free 404 and
// substitute their own default, per spec §4.B.
func ReadFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, translateErr(err, path)
	}
	return data, nil
}

// ReadFileOrDefault reads path, returning def if the file does not exist.
func ReadFileOrDefault(path string, def []byte) ([]byte, error) {
	data, err := ReadFile(path)
	if err != nil {
		if e, ok := err.(*ragiterr.Error); ok && e.Code == "ERR_201_NOT_FOUND" {
			return def, nil
		}
		return nil, err
	}
	return data, nil
}

// Exists reports whether path exists, translating unexpected errors.
func Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, translateErr(err, path)
}

func translateErr(err error, path string) error {
	if err == nil {
		return nil
	}
	switch {
	case os.IsNotExist(err):
		return ragiterr.FileError(ragiterr.IOKindNotFound, path, err)
	case os.IsPermission(err):
		return ragiterr.FileError(ragiterr.IOKindPermissionDenied, path, err)
	case os.IsExist(err):
		return ragiterr.FileError(ragiterr.IOKindAlreadyExists, path, err)
	default:
		return ragiterr.FileError(ragiterr.IOKindOther, path, err)
	}
}
