package uidkit

import (
	"testing"

	"github.com/ragit-kb/ragit/internal/ragiterr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompute_Deterministic(t *testing.T) {
	// Given: the same kind, size, and canonical bytes

	// When: computing a uid twice

	// Then: the results are byte-for-byte identical (spec §8 invariant 1)
	a := Compute(KindChunk, 3, []byte("hello world"))
	b := Compute(KindChunk, 3, []byte("hello world"))
	assert.Equal(t, a, b)
}

func TestCompute_DifferentBytesDifferentUid(t *testing.T) {
	a := Compute(KindChunk, 1, []byte("alpha"))
	b := Compute(KindChunk, 1, []byte("beta"))
	assert.NotEqual(t, a, b)
}

func TestCompute_KindRecoverableFromUid(t *testing.T) {
	for _, k := range []Kind{KindChunk, KindImage, KindFile, KindKnowledgeBase} {
		u := Compute(k, 42, []byte("payload"))
		assert.Equal(t, k, u.Kind(), "kind should round-trip through the uid")
		assert.Equal(t, uint64(42), u.Size())
	}
}

func TestParse_RoundTrip(t *testing.T) {
	u := Compute(KindFile, 7, []byte("some file contents"))
	parsed, err := Parse(u.String())
	require.NoError(t, err)
	assert.Equal(t, u, parsed)
}

func TestParse_RejectsBadInput(t *testing.T) {
	cases := []string{
		"",
		"not-hex",
		"AABBCC", // uppercase and too short
		Compute(KindChunk, 0, []byte("x")).String()[:63],
	}
	for _, c := range cases {
		_, err := Parse(c)
		require.Error(t, err)
		assert.Equal(t, ragiterr.CodeUidInvalidHex, ragiterr.Code(err))
	}
}

func TestShardPrefixSuffix(t *testing.T) {
	u := Compute(KindImage, 0, []byte("png-bytes"))
	s := u.String()
	assert.Equal(t, s[:2], u.ShardPrefix())
	assert.Equal(t, s[2:], u.ShardSuffix())
	assert.Len(t, u.ShardPrefix(), 2)
	assert.Len(t, u.ShardSuffix(), 62)
}

func TestLookup_AmbiguousPrefixErrors(t *testing.T) {
	// Given: two uids that happen to share their first 4 hex characters
	var a, b Uid
	for i := 0; ; i++ {
		a = Compute(KindChunk, 0, []byte{byte(i)})
		b = Compute(KindChunk, 0, []byte{byte(i + 1)})
		if a.String()[:4] == b.String()[:4] {
			break
		}
		if i > 1<<16 {
			t.Skip("could not find a colliding 4-char prefix in a reasonable number of tries")
		}
	}

	// When: looking up that shared prefix

	// Then: Lookup reports MultipleMatches (spec §8 invariant 8)
	_, err := Lookup(a.String()[:4], []Uid{a, b})
	require.Error(t, err)
	assert.Equal(t, ragiterr.CodeUidMultipleMatches, ragiterr.Code(err))
}

func TestLookup_UniqueMatch(t *testing.T) {
	a := Compute(KindChunk, 0, []byte("one"))
	b := Compute(KindChunk, 0, []byte("two"))
	got, err := Lookup(a.String()[:8], []Uid{a, b})
	require.NoError(t, err)
	assert.Equal(t, a, got)
}

func TestLookup_NoMatch(t *testing.T) {
	a := Compute(KindChunk, 0, []byte("one"))
	_, err := Lookup("ffffffff", []Uid{a})
	require.Error(t, err)
	assert.Equal(t, ragiterr.CodeUidNoMatch, ragiterr.Code(err))
}
