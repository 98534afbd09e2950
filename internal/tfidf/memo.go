package tfidf

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/ragit-kb/ragit/internal/tokenize"
)

// MemoizedScanner wraps Scan with an LRU cache keyed by (chunk-set
// fingerprint, query), so repeated queries against an unchanged scan-mode
// repository skip re-tokenizing every chunk. Any chunk write invalidates
// the corpus fingerprint and naturally misses the cache (spec §4.E:
// inverted-index "invalidated by any chunk write" applies here too, since
// scan mode recomputes from the same chunk set).
type MemoizedScanner struct {
	provider ChunkProvider
	tok      *tokenize.Tokenizer
	cache    *lru.Cache[string, []Result]
}

// NewMemoizedScanner builds a scanner caching up to size distinct queries.
func NewMemoizedScanner(provider ChunkProvider, tok *tokenize.Tokenizer, size int) (*MemoizedScanner, error) {
	cache, err := lru.New[string, []Result](size)
	if err != nil {
		return nil, err
	}
	return &MemoizedScanner{provider: provider, tok: tok, cache: cache}, nil
}

// Scan returns Scan(provider, kw, tok), serving a cached result when the
// corpus hasn't changed since the last identical query.
func (m *MemoizedScanner) Scan(kw Keywords) ([]Result, error) {
	chunks, err := m.provider.AllChunks()
	if err != nil {
		return nil, err
	}
	key := fmt.Sprintf("%s\x00%v\x00%s", fingerprintOfUids(chunkUids(chunks)), kw.Extra, kw.Raw)

	if cached, ok := m.cache.Get(key); ok {
		return cached, nil
	}
	results, err := scoreChunks(chunks, kw, m.tok)
	if err != nil {
		return nil, err
	}
	m.cache.Add(key, results)
	return results, nil
}

// Purge drops every cached query result.
func (m *MemoizedScanner) Purge() { m.cache.Purge() }
