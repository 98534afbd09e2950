package chunkmodel

import (
	"testing"
	"time"

	"github.com/ragit-kb/ragit/internal/uidkit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleChunk() Chunk {
	c := Chunk{
		Data:      "hello world",
		Title:     "greeting",
		Summary:   "a greeting",
		Source:    NewFileSource("docs/readme.md", 0, nil),
		Timestamp: time.Unix(1700000000, 0).UTC(),
		BuildInfo: BuildInfo{Model: "gpt-4o-mini", RagitVersion: "0.1.0"},
	}
	c.ComputeUid()
	return c
}

func TestComputeUid_Deterministic(t *testing.T) {
	a := sampleChunk()
	b := sampleChunk()
	assert.Equal(t, a.Uid, b.Uid)
}

func TestComputeUid_ChangesWithSource(t *testing.T) {
	a := sampleChunk()
	b := sampleChunk()
	b.Source = NewFileSource("docs/readme.md", 1, nil)
	b.ComputeUid()
	assert.NotEqual(t, a.Uid, b.Uid)
}

func TestComputeUid_ImageOrderDoesNotMatter(t *testing.T) {
	img1 := uidkit.Compute(uidkit.KindImage, 1, []byte("one"))
	img2 := uidkit.Compute(uidkit.KindImage, 1, []byte("two"))

	a := sampleChunk()
	a.Images = []uidkit.Uid{img1, img2}
	a.ComputeUid()

	b := sampleChunk()
	b.Images = []uidkit.Uid{img2, img1}
	b.ComputeUid()

	assert.Equal(t, a.Uid, b.Uid, "canonical form sorts images before hashing")
}

func TestSource_Render_Ordinals(t *testing.T) {
	cases := []struct {
		index int
		want  string
	}{
		{0, "1st chunk of a.go"},
		{1, "2nd chunk of a.go"},
		{2, "3rd chunk of a.go"},
		{3, "4th chunk of a.go"},
		{20, "21th chunk of a.go"},
	}
	for _, c := range cases {
		s := NewFileSource("a.go", c.index, nil)
		assert.Equal(t, c.want, s.Render())
	}
}

func TestSource_Render_WithPage(t *testing.T) {
	page := 3
	s := NewFileSource("doc.pdf", 4, &page)
	assert.Equal(t, "5th chunk of doc.pdf (page 3)", s.Render())
}

func TestSource_SortableString_IgnoresPage(t *testing.T) {
	pageA, pageB := 1, 99
	a := NewFileSource("z.go", 5, &pageA)
	b := NewFileSource("z.go", 5, &pageB)
	assert.Equal(t, a.SortableString(), b.SortableString())
	assert.Equal(t, "file: z.go-000000005", a.SortableString())
}

func TestValidateImageReferences(t *testing.T) {
	img := uidkit.Compute(uidkit.KindImage, 1, []byte("pixel"))
	data := "see " + ImgToken(img)

	assert.True(t, ValidateImageReferences(data, []uidkit.Uid{img}))
	assert.False(t, ValidateImageReferences(data, nil))
}

func TestMarshalUnmarshal_RoundTrip(t *testing.T) {
	c := sampleChunk()
	blob, err := Marshal(c)
	require.NoError(t, err)

	got, err := Unmarshal(blob)
	require.NoError(t, err)
	assert.Equal(t, c.Uid, got.Uid)
	assert.Equal(t, c.Data, got.Data)
	assert.Equal(t, c.Source, got.Source)
}

func TestComputeFileUid_OrderMatters(t *testing.T) {
	u1 := uidkit.Compute(uidkit.KindChunk, 1, []byte("a"))
	u2 := uidkit.Compute(uidkit.KindChunk, 1, []byte("b"))

	f1 := ComputeFileUid([]uidkit.Uid{u1, u2})
	f2 := ComputeFileUid([]uidkit.Uid{u2, u1})
	assert.NotEqual(t, f1, f2)
}

func TestComputeKnowledgeBaseUid_OrderIndependent(t *testing.T) {
	f1 := uidkit.Compute(uidkit.KindFile, 1, []byte("file-a"))
	f2 := uidkit.Compute(uidkit.KindFile, 1, []byte("file-b"))

	kb1 := ComputeKnowledgeBaseUid([]uidkit.Uid{f1, f2})
	kb2 := ComputeKnowledgeBaseUid([]uidkit.Uid{f2, f1})
	assert.Equal(t, kb1, kb2)
}
