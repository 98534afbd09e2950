package chunkmodel

import "fmt"

// Source identifies where a chunk came from. It is a tagged union; File is
// currently the only variant (spec §3), but the type is shaped to grow new
// variants the way the teacher's parser.Node union does.
type Source struct {
	Type SourceType `json:"type"`
	File *FileSource `json:"file,omitempty"`
}

type SourceType string

const SourceTypeFile SourceType = "file"

// FileSource locates a chunk within a source file by ordinal position.
type FileSource struct {
	Path  string `json:"path"`
	Index int    `json:"index"`          // 0-based, dense and unique per file
	Page  *int   `json:"page,omitempty"` // 1-based, present only for paginated loaders
}

// NewFileSource builds a Source for the File variant.
func NewFileSource(path string, index int, page *int) Source {
	return Source{Type: SourceTypeFile, File: &FileSource{Path: path, Index: index, Page: page}}
}

// HashStr is the string folded into a chunk's uid computation (spec §3
// invariant c). It must capture everything that distinguishes two sources
// at the same path.
func (s Source) HashStr() string {
	switch s.Type {
	case SourceTypeFile:
		f := s.File
		pageStr := ""
		if f.Page != nil {
			pageStr = fmt.Sprintf("p%d", *f.Page)
		}
		return fmt.Sprintf("%s%d%s", f.Path, f.Index, pageStr)
	default:
		return ""
	}
}

// SortableString yields a string whose lexicographic order matches the
// intended merge order across files: grouped by path, then dense index.
// Page numbers are deliberately excluded — index is mandatory, unique, and
// sequential, while page is whatever the loader reports.
func (s Source) SortableString() string {
	switch s.Type {
	case SourceTypeFile:
		return fmt.Sprintf("file: %s-%09d", s.File.Path, s.File.Index)
	default:
		return ""
	}
}

// Render produces the human-facing description shown to an LLM or a user,
// e.g. "3rd chunk of src/main.go (page 2)".
func (s Source) Render() string {
	switch s.Type {
	case SourceTypeFile:
		f := s.File
		ordinal := ordinalOf(f.Index)
		pageSuffix := ""
		if f.Page != nil {
			pageSuffix = fmt.Sprintf(" (page %d)", *f.Page)
		}
		return fmt.Sprintf("%s chunk of %s%s", ordinal, f.Path, pageSuffix)
	default:
		return ""
	}
}

// ordinalOf renders a 0-based index as an English ordinal: 0->"1st",
// 1->"2nd", 2->"3rd", n->"{n+1}th" otherwise.
func ordinalOf(index int) string {
	switch index {
	case 0:
		return "1st"
	case 1:
		return "2nd"
	case 2:
		return "3rd"
	default:
		return fmt.Sprintf("%dth", index+1)
	}
}

// Path returns the source's underlying file path, for variants that have one.
func (s Source) Path() string {
	switch s.Type {
	case SourceTypeFile:
		return s.File.Path
	default:
		return ""
	}
}

// Index returns the source's ordinal position within its file.
func (s Source) Index() int {
	switch s.Type {
	case SourceTypeFile:
		return s.File.Index
	default:
		return 0
	}
}

// WithPath returns a copy of s with its path replaced, used when a file is
// renamed without rebuilding its chunks.
func (s Source) WithPath(newPath string) Source {
	cp := s
	if s.Type == SourceTypeFile {
		f := *s.File
		f.Path = newPath
		cp.File = &f
	}
	return cp
}
