package chunkpipe

import (
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

// TokenCounter counts tokens the same way the LLM that generates a
// chunk's title/summary will, so the packer's budget is real rather
// than a char/4 heuristic.
type TokenCounter interface {
	Count(s string) int
}

// tiktokenCounter wraps tiktoken-go's cl100k_base encoder, the same
// encoding yanqian-ai-helloworld's chunker reaches for, and the closest
// open byte-pair encoding to what most hosted providers actually use.
type tiktokenCounter struct {
	enc *tiktoken.Tiktoken
}

// NewTokenCounter returns a tiktoken-backed TokenCounter, falling back
// to a whitespace-word heuristic if the encoding table can't load
// (e.g. no network access to fetch its vocabulary file).
func NewTokenCounter() TokenCounter {
	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		return wordCounter{}
	}
	return tiktokenCounter{enc: enc}
}

func (c tiktokenCounter) Count(s string) int {
	return len(c.enc.Encode(s, nil, nil))
}

type wordCounter struct{}

func (wordCounter) Count(s string) int {
	n := 0
	inWord := false
	for _, r := range s {
		if r == ' ' || r == '\n' || r == '\t' || r == '\r' {
			inWord = false
			continue
		}
		if !inWord {
			n++
			inWord = true
		}
	}
	return n
}

// PackedChunk is one packer output: a run of units concatenated into a
// single data string, plus the image units encountered inside it (still
// carrying their imgPlaceholder tokens, substituted to real img_<uid>
// tokens once the image has been written to the object store).
type PackedChunk struct {
	Text   string
	Images []ImageUnit
	Page   *int // the first unit's page, when the loader reports one
}

// Pack greedily accumulates units until budget tokens is reached, then
// starts a new chunk carrying the last overlapTokens worth of the
// previous chunk's text as its opening context (spec §4.C). A single
// unit that alone exceeds budget becomes its own chunk rather than
// being split mid-unit.
func Pack(units []Unit, counter TokenCounter, budget, overlapTokens int) []PackedChunk {
	if budget <= 0 {
		budget = 800
	}
	if overlapTokens < 0 {
		overlapTokens = 0
	}
	if overlapTokens >= budget {
		overlapTokens = budget / 4
	}

	var chunks []PackedChunk
	var b strings.Builder
	var images []ImageUnit
	var page *int
	tokens := 0
	imgIndex := 0

	flush := func() {
		if b.Len() == 0 {
			return
		}
		chunks = append(chunks, PackedChunk{Text: b.String(), Images: images, Page: page})
		b.Reset()
		images = nil
		page = nil
		tokens = 0
		imgIndex = 0
	}

	// startOverlap seeds a new chunk's builder with the tail of the text
	// just flushed, so the two chunks share overlapTokens of context.
	// Image placeholders are stripped from the carried-over tail: each
	// chunk numbers its own placeholders from 0, so a raw placeholder
	// surviving into the next chunk would collide with an unrelated image.
	startOverlap := func(prevText string) {
		if overlapTokens == 0 || prevText == "" {
			return
		}
		tail := stripPlaceholders(tailByTokens(prevText, counter, overlapTokens))
		b.WriteString(tail)
		tokens = counter.Count(tail)
	}

	for _, u := range units {
		if u.Image != nil {
			token := imgPlaceholder(imgIndex)
			imgIndex++
			b.WriteString(token)
			images = append(images, *u.Image)
			continue
		}

		uTokens := counter.Count(u.Text)
		if page == nil {
			page = u.Page
		}

		if uTokens > budget {
			// This unit alone exceeds the budget: flush whatever came
			// before it, emit it as its own chunk, never split it.
			prev := b.String()
			flush()
			chunks = append(chunks, PackedChunk{Text: u.Text, Page: u.Page})
			startOverlap(prev)
			continue
		}

		if tokens > 0 && tokens+uTokens > budget {
			prev := b.String()
			flush()
			startOverlap(prev)
		}

		b.WriteString(u.Text)
		tokens += uTokens
	}
	flush()

	return chunks
}

// tailByTokens returns the suffix of text covering roughly n tokens,
// decoding back from the encoder's ids when available so the cut lands
// on a token boundary rather than an arbitrary byte offset.
func tailByTokens(text string, counter TokenCounter, n int) string {
	tc, ok := counter.(tiktokenCounter)
	if !ok {
		return tailByWords(text, n)
	}
	ids := tc.enc.Encode(text, nil, nil)
	if len(ids) <= n {
		return text
	}
	return tc.enc.Decode(ids[len(ids)-n:])
}

func tailByWords(text string, n int) string {
	fields := strings.Fields(text)
	if len(fields) <= n {
		return text
	}
	return strings.Join(fields[len(fields)-n:], " ")
}

// stripPlaceholders removes every "\x00imgN\x00" token from s.
func stripPlaceholders(s string) string {
	const marker = '\x00'
	var b strings.Builder
	for i := 0; i < len(s); {
		if s[i] == marker {
			end := strings.IndexByte(s[i+1:], marker)
			if end >= 0 {
				i = i + 1 + end + 1
				continue
			}
		}
		b.WriteByte(s[i])
		i++
	}
	return b.String()
}
