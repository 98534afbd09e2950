// Package korean implements the Hangul josa-stripping refiner referenced
// by spec §4.E ("a pluggable per-language tokenizer ... operates on Hangul
// runs only, leaving non-Hangul spans untouched").
//
// It strips a fixed table of grammatical particles (topic/subject/object
// markers and a handful of common postpositions) from the trailing edge of
// a Hangul run, the same rule shape as the reference tokenizer: try the
// longest matching suffix first, and only strip a particle whose required
// batchim (final-consonant) state matches the syllable it attaches to.
//
// Unlike the reference implementation, verb-ending attachment (이/하 stems
// before -ㅂ니다/-ㄴ데/...) is not modeled; those tokens pass through
// unchanged. That is a known gap, not a bug: the query-time benefit of
// stripping noun particles accounts for most of the retrieval recall gain,
// and the verb-ending table is large enough to be its own follow-up.
package korean

const hangulBase = 0xAC00
const hangulLast = 0xD7A3
const initialsCount = 19
const medialsCount = 21
const finalsCount = 28

// suffix is a candidate particle plus whether it only attaches after a
// syllable with (true) or without (false) a final consonant. nil means it
// attaches either way.
type suffix struct {
	text       []rune
	needsFinal *bool
}

var trueVal = true
var falseVal = false

var suffixes = buildSuffixTable()

func buildSuffixTable() []suffix {
	withFinal := []string{"이라고", "이랑", "으로", "을", "과", "이", "은"}
	withoutFinal := []string{"라고", "랑", "와", "를", "가", "는"}
	neutral := []string{"에서", "까지", "부터", "한테", "하고", "의", "만", "도", "에", "로", "께"}

	var out []suffix
	for _, s := range withFinal {
		out = append(out, suffix{text: []rune(s), needsFinal: &trueVal})
	}
	for _, s := range withoutFinal {
		out = append(out, suffix{text: []rune(s), needsFinal: &falseVal})
	}
	for _, s := range neutral {
		out = append(out, suffix{text: []rune(s), needsFinal: nil})
	}
	return out
}

// IsHangulSyllable reports whether r is a precomposed Hangul syllable
// (가-힣, U+AC00 through U+D7A3).
func IsHangulSyllable(r rune) bool {
	return r >= hangulBase && r <= hangulLast
}

// hasFinalConsonant reports whether the Hangul syllable r has a trailing
// batchim, derived via the standard (initial*21+medial)*28+final offset.
func hasFinalConsonant(r rune) bool {
	offset := int(r) - hangulBase
	return offset%finalsCount != 0
}

// Refiner strips known particles from Hangul runs. It implements
// tokenize.Refiner.
type Refiner struct{}

// New returns a Refiner ready to use.
func New() *Refiner { return &Refiner{} }

// Refine splits token into maximal runs of Hangul syllables and everything
// else, then strips a trailing particle from each Hangul run.
func (Refiner) Refine(token string) []string {
	runes := []rune(token)
	if len(runes) == 0 {
		return []string{token}
	}

	var out []string
	var cur []rune
	curIsHangul := IsHangulSyllable(runes[0])

	flush := func() {
		if len(cur) == 0 {
			return
		}
		s := string(cur)
		if curIsHangul {
			s = stripParticle(cur)
		}
		out = append(out, s)
		cur = nil
	}

	for _, r := range runes {
		isHangul := IsHangulSyllable(r)
		if isHangul != curIsHangul && len(cur) > 0 {
			flush()
		}
		curIsHangul = isHangul
		cur = append(cur, r)
	}
	flush()
	return out
}

// stripParticle removes the longest matching, batchim-compatible particle
// from the end of a pure-Hangul rune run, leaving at least one syllable.
func stripParticle(run []rune) string {
	best := -1
	for i, sfx := range suffixes {
		n := len(sfx.text)
		if n >= len(run) || n == 0 {
			continue
		}
		if !runesHaveSuffix(run, sfx.text) {
			continue
		}
		stem := run[:len(run)-n]
		if sfx.needsFinal != nil {
			lastStemRune := stem[len(stem)-1]
			if !IsHangulSyllable(lastStemRune) {
				continue
			}
			if hasFinalConsonant(lastStemRune) != *sfx.needsFinal {
				continue
			}
		}
		if best == -1 || n > len(suffixes[best].text) {
			best = i
		}
	}
	if best == -1 {
		return string(run)
	}
	return string(run[:len(run)-len(suffixes[best].text)])
}

func runesHaveSuffix(run, sfx []rune) bool {
	if len(sfx) > len(run) {
		return false
	}
	offset := len(run) - len(sfx)
	for i, r := range sfx {
		if run[offset+i] != r {
			return false
		}
	}
	return true
}
