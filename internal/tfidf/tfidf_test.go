package tfidf

import (
	"testing"

	"github.com/ragit-kb/ragit/internal/chunkmodel"
	"github.com/ragit-kb/ragit/internal/objstore"
	"github.com/ragit-kb/ragit/internal/tokenize"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	chunks []chunkmodel.Chunk
}

func (f fakeProvider) AllChunks() ([]chunkmodel.Chunk, error) { return f.chunks, nil }

func mkChunk(data, summary, path string, index int) chunkmodel.Chunk {
	c := chunkmodel.Chunk{
		Data:    data,
		Summary: summary,
		Source:  chunkmodel.NewFileSource(path, index, nil),
	}
	c.ComputeUid()
	return c
}

func sampleCorpus() []chunkmodel.Chunk {
	return []chunkmodel.Chunk{
		mkChunk("the quick brown fox jumps over the lazy dog", "a fox story", "a.txt", 0),
		mkChunk("go programming language concurrency channels", "about golang", "b.txt", 0),
		mkChunk("dogs and cats are common pets", "pet summary", "c.txt", 0),
	}
}

func TestScan_RanksMoreRelevantChunkHigher(t *testing.T) {
	tok := tokenize.New()
	results, err := Scan(fakeProvider{sampleCorpus()}, Keywords{Raw: "golang channels"}, tok)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, FieldData, results[0].Matched)
}

func TestScan_NoMatchesReturnsEmpty(t *testing.T) {
	tok := tokenize.New()
	results, err := Scan(fakeProvider{sampleCorpus()}, Keywords{Raw: "zzznomatch"}, tok)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestScan_TieBreakByUid(t *testing.T) {
	tok := tokenize.New()
	a := mkChunk("shared term", "", "a.txt", 0)
	b := mkChunk("shared term", "", "b.txt", 0)
	results, err := Scan(fakeProvider{[]chunkmodel.Chunk{b, a}}, Keywords{Raw: "shared term"}, tok)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.InDelta(t, results[0].Score, results[1].Score, 1e-9)
	assert.True(t, results[0].Uid.String() < results[1].Uid.String())
}

func TestBuildII_MatchesScanResults(t *testing.T) {
	dir := t.TempDir()
	store := objstore.New(dir)
	require.NoError(t, store.EnsureLayout())

	tok := tokenize.New()
	provider := fakeProvider{sampleCorpus()}

	idx, err := BuildII(store, provider, tok)
	require.NoError(t, err)

	kw := Keywords{Raw: "fox"}
	iiResults := idx.Query(kw, tok)
	scanResults, err := Scan(provider, kw, tok)
	require.NoError(t, err)

	require.Len(t, iiResults, 1)
	require.Len(t, scanResults, 1)
	assert.Equal(t, scanResults[0].Uid, iiResults[0].Uid)
}

func TestBuildII_IdempotentWhenUnchanged(t *testing.T) {
	dir := t.TempDir()
	store := objstore.New(dir)
	require.NoError(t, store.EnsureLayout())

	tok := tokenize.New()
	provider := fakeProvider{sampleCorpus()}

	_, err := BuildII(store, provider, tok)
	require.NoError(t, err)

	second, err := BuildII(store, provider, tok)
	require.NoError(t, err)
	assert.Equal(t, len(sampleCorpus()), second.N)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	store := objstore.New(dir)
	require.NoError(t, store.EnsureLayout())

	tok := tokenize.New()
	idx, err := Build(fakeProvider{sampleCorpus()}, tok)
	require.NoError(t, err)
	require.NoError(t, Save(store, idx))

	loaded, err := Load(store)
	require.NoError(t, err)
	assert.Equal(t, idx.Data["fox"], loaded.Data["fox"])
}

func TestMemoizedScanner_CachesRepeatedQuery(t *testing.T) {
	tok := tokenize.New()
	provider := fakeProvider{sampleCorpus()}
	m, err := NewMemoizedScanner(provider, tok, 8)
	require.NoError(t, err)

	first, err := m.Scan(Keywords{Raw: "fox"})
	require.NoError(t, err)
	second, err := m.Scan(Keywords{Raw: "fox"})
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
