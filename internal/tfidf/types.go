// Package tfidf implements the retrieval scoring engine of spec §4.E: a
// scan mode that tokenizes every chunk on the fly and an inverted-index
// mode that precomputes postings under the object store's ii/ directory.
package tfidf

import (
	"math"
	"sort"

	"github.com/ragit-kb/ragit/internal/chunkmodel"
	"github.com/ragit-kb/ragit/internal/tokenize"
	"github.com/ragit-kb/ragit/internal/uidkit"
)

// Field names which of a chunk's two scored text fields produced a result.
type Field string

const (
	FieldData    Field = "data"
	FieldSummary Field = "summary"
)

// Keywords bundles a raw query with synonym/expansion terms, all OR-scored
// together (spec §4.E "Keywords").
type Keywords struct {
	Raw   string
	Extra []string
}

// Tokens tokenizes every term in k using tok and returns their union, query
// terms repeated across Raw/Extra only counted once per occurrence (OR
// semantics come from summing per-token scores, not from deduplication, so
// duplicates are kept).
func (k Keywords) Tokens(tok *tokenize.Tokenizer) []string {
	var tokens []string
	tokens = append(tokens, tok.Tokenize(k.Raw)...)
	for _, e := range k.Extra {
		tokens = append(tokens, tok.Tokenize(e)...)
	}
	return tokens
}

// Result is one chunk's score for a query, with provenance for which field
// produced the winning score (spec §4.E).
type Result struct {
	Uid     uidkit.Uid
	Score   float64
	Matched Field
}

// ChunkProvider iterates every chunk in a repository, used by scan mode and
// by index building. Implementations decide storage (object store, test
// fixture, ...); this package only needs iteration order to be stable.
type ChunkProvider interface {
	AllChunks() ([]chunkmodel.Chunk, error)
}

// logTF is the logarithmic term-frequency weight (spec §4.E "logarithmic
// term frequency"): 0 when the term is absent, 1+ln(tf) otherwise.
func logTF(tf int) float64 {
	if tf <= 0 {
		return 0
	}
	return 1 + math.Log(float64(tf))
}

// smoothedIDF is the smoothed inverse-document-frequency weight (spec §4.E
// "smoothed inverse document frequency"): guaranteed positive and finite
// even when df == n (every document contains the term) or df == 0.
func smoothedIDF(n, df int) float64 {
	return math.Log(1+float64(n)) - math.Log(1+float64(df)) + 1
}

// sortResults ranks by descending score, breaking ties by ascending uid
// hex string (spec §4.E "Ties broken by chunk uid lexicographic order").
func sortResults(results []Result) {
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Uid.String() < results[j].Uid.String()
	})
}

func countTerms(tokens []string) map[string]int {
	counts := make(map[string]int, len(tokens))
	for _, t := range tokens {
		counts[t]++
	}
	return counts
}
