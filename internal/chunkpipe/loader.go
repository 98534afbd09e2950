// Package chunkpipe implements the ingestion pipeline of spec §4.C: the
// per-file state machine (Untracked→Staged→Processing→Processed), the
// add/build/remove/remove_auto operations, and the greedy token-budget
// packer that turns a loader's logical units into chunks.
package chunkpipe

import (
	"bufio"
	"bytes"
	"path/filepath"
	"strconv"
	"strings"
)

// Unit is one logical piece of a source file a Loader yields: a line, a
// PDF page, a function body — whatever granularity the loader works at.
// The packer never splits a Unit across chunks.
type Unit struct {
	Text  string
	Page  *int // 1-based, nil when the loader has no page concept
	Image *ImageUnit
}

// ImageUnit carries an inline image a Loader extracted from the source,
// to be persisted to the image store and referenced from chunk data by
// its img_<uid> token (spec §4.C).
type ImageUnit struct {
	Bytes []byte
	Ext   string // file extension, e.g. "png", used to pick an image type
}

// Loader turns a file's raw bytes into an ordered stream of Units. The
// default LineLoader treats every line as its own unit; a code-aware
// loader can instead yield one unit per function or class.
type Loader interface {
	Load(path string, data []byte) ([]Unit, error)
}

// LineLoader is the default Loader: one Unit per line, blank lines kept
// (so overlap/packing sees the file's real line structure) but trimmed
// of trailing carriage returns.
type LineLoader struct{}

func (LineLoader) Load(_ string, data []byte) ([]Unit, error) {
	var units []Unit
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSuffix(scanner.Text(), "\r")
		units = append(units, Unit{Text: line + "\n"})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return units, nil
}

// DefaultLoaderFor picks a Loader for path: the code-aware loader for a
// handful of recognized languages, LineLoader otherwise.
func DefaultLoaderFor(path string, code Loader) Loader {
	if code != nil && isCodeFile(path) {
		return code
	}
	return LineLoader{}
}

func isCodeFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".go", ".py", ".js", ".jsx", ".ts", ".tsx":
		return true
	default:
		return false
	}
}

// imgPlaceholder marks an image unit's position inside an in-progress
// chunk's text before the image has been written to the object store;
// build.go replaces it with the real img_<uid> token once the uid is
// known, the same "extract then substitute" order spec §4.C requires.
func imgPlaceholder(index int) string {
	return "\x00img" + strconv.Itoa(index) + "\x00"
}
