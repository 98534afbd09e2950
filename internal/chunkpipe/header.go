package chunkpipe

import (
	"encoding/json"
	"sort"

	"github.com/ragit-kb/ragit/internal/objstore"
	"github.com/ragit-kb/ragit/internal/ragiterr"
)

// Header is the repository header persisted at index.json (spec §6). It
// carries both the fields the protocol requires to be present and the
// per-file state machine chunkpipe drives.
type Header struct {
	RagitVersion       string            `json:"ragit_version"`
	ChunkCount         uint64            `json:"chunk_count"`
	StagedFiles        []string          `json:"staged_files"`
	ProcessedFiles     map[string]string `json:"processed_files"` // path -> file-uid hex
	CurrProcessingFile *string           `json:"curr_processing_file"`
	APIConfig          json.RawMessage   `json:"api_config,omitempty"`
	BuildConfig        json.RawMessage   `json:"build_config,omitempty"`
	QueryConfig        json.RawMessage   `json:"query_config,omitempty"`
}

// NewHeader returns an empty header for a freshly initialized repository.
func NewHeader(version string) Header {
	return Header{
		RagitVersion:   version,
		ProcessedFiles: map[string]string{},
	}
}

// LoadHeader reads index.json, tolerating a missing file by returning a
// fresh header (spec §4.B: readers substitute an empty default).
func LoadHeader(store *objstore.Store, version string) (Header, error) {
	data, err := objstore.ReadFileOrDefault(store.HeaderPath(), nil)
	if err != nil {
		return Header{}, err
	}
	if data == nil {
		return NewHeader(version), nil
	}
	var h Header
	if err := json.Unmarshal(data, &h); err != nil {
		return Header{}, ragiterr.SchemaError(ragiterr.CodeSchemaInvalidValue, "index.json is not valid JSON", err)
	}
	if h.ProcessedFiles == nil {
		h.ProcessedFiles = map[string]string{}
	}
	return h, nil
}

// Save writes the header atomically, so a reader never observes a torn
// index.json mid-write (spec §4.B write-mode discipline).
func (h Header) Save(store *objstore.Store) error {
	data, err := json.MarshalIndent(h, "", "  ")
	if err != nil {
		return err
	}
	return objstore.WriteFile(store.HeaderPath(), data, objstore.Atomic)
}

// isStaged reports whether path is already in the staged queue.
func (h Header) isStaged(path string) bool {
	for _, p := range h.StagedFiles {
		if p == path {
			return true
		}
	}
	return false
}

func (h *Header) stage(path string) {
	if !h.isStaged(path) {
		h.StagedFiles = append(h.StagedFiles, path)
	}
}

func (h *Header) unstage(path string) {
	out := h.StagedFiles[:0]
	for _, p := range h.StagedFiles {
		if p != path {
			out = append(out, p)
		}
	}
	h.StagedFiles = out
}

// popStaged removes and returns the next staged path in insertion order,
// or ok=false if nothing is staged.
func (h *Header) popStaged() (string, bool) {
	if len(h.StagedFiles) == 0 {
		return "", false
	}
	path := h.StagedFiles[0]
	h.StagedFiles = h.StagedFiles[1:]
	return path, true
}

// sortedProcessedPaths returns processed_files' keys in sorted order, for
// deterministic iteration (gc, remove_auto).
func (h Header) sortedProcessedPaths() []string {
	paths := make([]string, 0, len(h.ProcessedFiles))
	for p := range h.ProcessedFiles {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}
