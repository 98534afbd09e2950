package chunkmodel

import (
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/ragit-kb/ragit/internal/uidkit"
)

// wireChunk is the on-disk binary representation of a chunk blob
// (chunks/<xx>/<62-hex>.chunk, spec §4.B). CBOR gives a compact binary
// framing without hand-rolling one, the same way the teacher's store
// package reaches for an off-the-shelf binary codec rather than a custom
// format.
type wireChunk struct {
	Data      string   `cbor:"data"`
	Images    []string `cbor:"images"`
	Title     string   `cbor:"title"`
	Summary   string   `cbor:"summary"`
	Source    Source   `cbor:"source"`
	Timestamp int64    `cbor:"timestamp"`
	BuildInfo BuildInfo `cbor:"build_info"`
}

// Marshal encodes a chunk to its on-disk binary form. c.Uid must already be
// computed; Marshal does not recompute it.
func Marshal(c Chunk) ([]byte, error) {
	images := make([]string, len(c.Images))
	for i, u := range c.Images {
		images[i] = u.String()
	}
	w := wireChunk{
		Data:      c.Data,
		Images:    images,
		Title:     c.Title,
		Summary:   c.Summary,
		Source:    c.Source,
		Timestamp: c.Timestamp.UTC().UnixNano(),
		BuildInfo: c.BuildInfo,
	}
	return cbor.Marshal(w)
}

// Unmarshal decodes a chunk blob and recomputes its uid from the decoded
// canonical bytes, so a corrupted blob is caught by a uid mismatch at the
// call site rather than trusted blindly.
func Unmarshal(blob []byte) (Chunk, error) {
	var w wireChunk
	if err := cbor.Unmarshal(blob, &w); err != nil {
		return Chunk{}, err
	}

	images := make([]uidkit.Uid, 0, len(w.Images))
	for _, s := range w.Images {
		u, err := uidkit.Parse(s)
		if err != nil {
			return Chunk{}, err
		}
		images = append(images, u)
	}

	c := Chunk{
		Data:      w.Data,
		Images:    images,
		Title:     w.Title,
		Summary:   w.Summary,
		Source:    w.Source,
		Timestamp: time.Unix(0, w.Timestamp).UTC(),
		BuildInfo: w.BuildInfo,
	}
	c.ComputeUid()
	return c, nil
}
