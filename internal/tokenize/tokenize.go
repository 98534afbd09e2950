// Package tokenize implements the tokenization front-end of spec §4.E:
// lowercase, split on non-alphanumeric, then hand runs of text to a
// pluggable per-language refiner (e.g. Korean josa stripping).
package tokenize

import (
	"unicode"

	"github.com/blevesearch/bleve/v2/analysis"
	"github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	"golang.org/x/text/unicode/norm"
)

// Refiner further splits or rewrites tokens produced by the base
// split-on-non-alphanumeric pass, for languages where whitespace
// boundaries aren't the whole story (spec §4.E tokenization).
type Refiner interface {
	// Refine receives one base token and returns one or more tokens to
	// keep in its place. Refiners that don't recognize the token's script
	// should return it unchanged.
	Refine(token string) []string
}

// Tokenizer splits and normalizes text into the token stream TF-IDF scores
// over.
type Tokenizer struct {
	refiners []Refiner
}

// New builds a Tokenizer that applies refiners, in order, to every base
// token. With no refiners it performs the default lowercase/split-on-
// non-alphanumeric pass alone.
func New(refiners ...Refiner) *Tokenizer {
	return &Tokenizer{refiners: refiners}
}

// lowercaseFilter is the same bleve token filter the teacher's BM25
// analyzer chain uses, reused here instead of a hand-rolled strings.ToLower
// pass so casing rules (Unicode-aware) stay consistent with the rest of
// the pack.
var lowercaseFilter = lowercase.NewLowerCaseFilter()

// Tokenize implements spec §4.E: lowercase, split on non-alphanumeric,
// apply the configured refiners, and discard empty tokens.
func (t *Tokenizer) Tokenize(text string) []string {
	// Normalize to NFC first: Hangul refiners key off precomposed
	// syllables (U+AC00-U+D7A3), which a decomposed jamo sequence would
	// silently fail to recognize.
	base := splitAlnum(norm.NFC.String(text))

	stream := make(analysis.TokenStream, len(base))
	for i, tok := range base {
		stream[i] = &analysis.Token{Term: []byte(tok)}
	}
	stream = lowercaseFilter.Filter(stream)

	tokens := make([]string, 0, len(stream))
	for _, tok := range stream {
		tokens = append(tokens, string(tok.Term))
	}

	for _, r := range t.refiners {
		tokens = refineAll(tokens, r)
	}

	out := tokens[:0]
	for _, tok := range tokens {
		if tok != "" {
			out = append(out, tok)
		}
	}
	return out
}

func refineAll(tokens []string, r Refiner) []string {
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		out = append(out, r.Refine(tok)...)
	}
	return out
}

// splitAlnum splits text on runs of non-alphanumeric characters, keeping
// Unicode letters and digits of any script together.
func splitAlnum(text string) []string {
	var tokens []string
	var cur []rune
	flush := func() {
		if len(cur) > 0 {
			tokens = append(tokens, string(cur))
			cur = cur[:0]
		}
	}
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			cur = append(cur, r)
		} else {
			flush()
		}
	}
	flush()
	return tokens
}
