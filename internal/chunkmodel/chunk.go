// Package chunkmodel implements the chunk and image object types of spec
// §3/§4.D: canonical serialization, uid derivation, and the human-facing
// rendering helpers used by retrieval and the CLI.
package chunkmodel

import (
	"bytes"
	"encoding/json"
	"sort"
	"time"

	"github.com/ragit-kb/ragit/internal/uidkit"
)

// BuildInfo records what produced a chunk, folded into its uid so that
// rebuilding with a different model never collides with the old chunk.
type BuildInfo struct {
	Model        string `json:"model"`
	RagitVersion string `json:"ragit_version"`
}

// Chunk is the unit of retrieval (spec §3).
type Chunk struct {
	Uid       uidkit.Uid   `json:"-"`
	Data      string       `json:"data"`
	Images    []uidkit.Uid `json:"images"`
	Title     string       `json:"title"`
	Summary   string       `json:"summary"`
	Source    Source       `json:"source"`
	Timestamp time.Time    `json:"timestamp"`
	BuildInfo BuildInfo    `json:"build_info"`
}

// canonicalChunk mirrors Chunk's JSON-visible fields in a fixed field
// order, so that encoding/json's per-struct field ordering (always
// declaration order, never map iteration order) gives us the "stable key
// order" canonical form spec §4.D requires. Images are sorted so that
// construction order never affects the uid.
type canonicalChunk struct {
	Data      string    `json:"data"`
	Images    []string  `json:"images"`
	Title     string    `json:"title"`
	Summary   string    `json:"summary"`
	SourceKey string    `json:"source"`
	Timestamp int64     `json:"timestamp"`
	BuildInfo BuildInfo `json:"build_info"`
}

// CanonicalBytes returns the canonical JSON representation a chunk's uid is
// computed from (spec §4.D / §3 invariant c).
func (c Chunk) CanonicalBytes() []byte {
	images := make([]string, len(c.Images))
	for i, u := range c.Images {
		images[i] = u.String()
	}
	sort.Strings(images)

	cc := canonicalChunk{
		Data:      c.Data,
		Images:    images,
		Title:     c.Title,
		Summary:   c.Summary,
		SourceKey: c.Source.HashStr(),
		Timestamp: c.Timestamp.UTC().UnixNano(),
		BuildInfo: c.BuildInfo,
	}
	// json.Marshal of a struct always emits fields in declaration order,
	// giving a deterministic byte sequence without hand-rolled encoding.
	buf, err := json.Marshal(cc)
	if err != nil {
		// cc contains only strings, a slice of strings, an int64, and a
		// nested plain struct: none of these can fail to marshal.
		panic(err)
	}
	return buf
}

// ComputeUid derives and sets c.Uid from its canonical bytes. Callers must
// invoke this after every field that participates in the canonical form is
// finalized; Chunk never recomputes its uid implicitly; it is never
// mutated after creation (spec §3 Chunk lifecycle).
func (c *Chunk) ComputeUid() {
	c.Uid = uidkit.Compute(uidkit.KindChunk, uint64(len(c.Data)), c.CanonicalBytes())
}

// HasImage reports whether uid is a member of c.Images.
func (c Chunk) HasImage(uid uidkit.Uid) bool {
	for _, u := range c.Images {
		if u == uid {
			return true
		}
	}
	return false
}

// Equal reports byte-for-byte canonical equality, used by merge/dedup logic.
func (c Chunk) Equal(other Chunk) bool {
	return bytes.Equal(c.CanonicalBytes(), other.CanonicalBytes())
}

// Image is a binary blob (spec §3) plus its derived metadata sidecar.
type Image struct {
	Uid  uidkit.Uid  `json:"-"`
	Blob []byte      `json:"-"`
	Meta ImageMeta   `json:"meta"`
}

// ImageMeta is the JSON sidecar persisted alongside an image blob.
type ImageMeta struct {
	ExtractedText string `json:"extracted_text"`
	Explanation   string `json:"explanation"`
}

// ComputeUid derives an image's uid from its blob alone (spec §3 invariant:
// "the blob and sidecar share a uid derived from the blob only").
func (img *Image) ComputeUid() {
	img.Uid = uidkit.Compute(uidkit.KindImage, uint64(len(img.Blob)), img.Blob)
}

// ImgToken is the inline token a chunk's Data uses to reference an image,
// e.g. "img_<uid>" (spec §3).
func ImgToken(uid uidkit.Uid) string {
	return "img_" + uid.String()
}
