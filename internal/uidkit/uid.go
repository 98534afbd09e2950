// Package uidkit implements the 256-bit content-addressed identifier
// described in spec §3/§4.A: a blake3 hash of an object's canonical
// bytes with its low 64 bits overwritten by a packed (size, kind) pair.
package uidkit

import (
	"encoding/hex"
	"strings"

	"github.com/ragit-kb/ragit/internal/ragiterr"
	"lukechampine.com/blake3"
)

// Kind distinguishes the four uid-bearing object types named in spec §3.
type Kind uint8

const (
	KindChunk Kind = iota
	KindImage
	KindFile
	KindKnowledgeBase
)

func (k Kind) String() string {
	switch k {
	case KindChunk:
		return "chunk"
	case KindImage:
		return "image"
	case KindFile:
		return "file"
	case KindKnowledgeBase:
		return "knowledge-base"
	default:
		return "unknown"
	}
}

// tagBits is the width of the kind tag packed into the low bits of the
// uid's final 64-bit word; the remaining bits hold the size field.
const tagBits = 4
const tagMask = uint64(1)<<tagBits - 1

// Uid is a 256-bit content-addressed identifier, rendered as 64 lowercase
// hex characters. The zero value is not a valid Uid.
type Uid [32]byte

// Compute derives a Uid for kind from size (a byte count or chunk count,
// depending on kind — see spec §3) and the object's canonical byte
// representation. compute is deterministic: identical (kind, size, bytes)
// always yields the same Uid (spec §8 invariant 1).
func Compute(kind Kind, size uint64, canonical []byte) Uid {
	h := blake3.Sum256(canonical)

	var u Uid
	copy(u[:24], h[:24])

	low := (size << tagBits) | (uint64(kind) & tagMask)
	for i := 0; i < 8; i++ {
		u[24+i] = byte(low >> (8 * (7 - i)))
	}
	return u
}

// Kind recovers the kind tag from the uid alone (spec §4.A invariant c).
func (u Uid) Kind() Kind {
	return Kind(u.lowWord() & tagMask)
}

// Size recovers the packed size field.
func (u Uid) Size() uint64 {
	return u.lowWord() >> tagBits
}

func (u Uid) lowWord() uint64 {
	var w uint64
	for i := 0; i < 8; i++ {
		w = (w << 8) | uint64(u[24+i])
	}
	return w
}

// String renders the uid as 64 lowercase hex characters.
func (u Uid) String() string {
	return hex.EncodeToString(u[:])
}

// IsZero reports whether u is the zero value (never a valid content uid).
func (u Uid) IsZero() bool {
	return u == Uid{}
}

// Parse accepts exactly 64 lowercase hex characters.
func Parse(s string) (Uid, error) {
	if len(s) != 64 {
		return Uid{}, ragiterr.InvalidUid(s)
	}
	for _, c := range s {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f')) {
			return Uid{}, ragiterr.InvalidUid(s)
		}
	}
	raw, err := hex.DecodeString(s)
	if err != nil || len(raw) != 32 {
		return Uid{}, ragiterr.InvalidUid(s)
	}
	var u Uid
	copy(u[:], raw)
	return u, nil
}

// ShardPrefix returns the first two hex characters, used as the shard
// directory name in the object store layout (spec §4.A/§4.B).
func (u Uid) ShardPrefix() string {
	return u.String()[:2]
}

// ShardSuffix returns the remaining 62 hex characters, used as the file
// name within the shard directory.
func (u Uid) ShardSuffix() string {
	return u.String()[2:]
}

// PrefixMatch reports whether u's hex string starts with prefix.
// Callers are expected to require len(prefix) >= 4 for abbreviated
// references, per spec §4.A, but PrefixMatch itself does not enforce a
// minimum length.
func (u Uid) PrefixMatch(prefix string) bool {
	return strings.HasPrefix(u.String(), strings.ToLower(prefix))
}

// Lookup resolves an abbreviated hex prefix against a set of known uids.
// It returns ragiterr.MultipleMatches if more than one uid matches, or
// ragiterr.NoMatch if none do (spec §4.A / §8 invariant 8).
func Lookup(prefix string, known []Uid) (Uid, error) {
	var matches []Uid
	for _, u := range known {
		if u.PrefixMatch(prefix) {
			matches = append(matches, u)
		}
	}
	switch len(matches) {
	case 0:
		return Uid{}, ragiterr.NoMatch(prefix)
	case 1:
		return matches[0], nil
	default:
		strs := make([]string, len(matches))
		for i, m := range matches {
			strs[i] = m.String()
		}
		return Uid{}, ragiterr.MultipleMatches(prefix, strs)
	}
}
