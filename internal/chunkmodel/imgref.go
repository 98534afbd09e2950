package chunkmodel

import (
	"regexp"

	"github.com/ragit-kb/ragit/internal/uidkit"
)

var imgTokenRe = regexp.MustCompile(`img_([0-9a-f]{64})`)

// ImageReferences extracts every img_<uid> token present in data, in order
// of appearance, ignoring tokens that are not valid uids.
func ImageReferences(data string) []uidkit.Uid {
	matches := imgTokenRe.FindAllStringSubmatch(data, -1)
	uids := make([]uidkit.Uid, 0, len(matches))
	for _, m := range matches {
		u, err := uidkit.Parse(m[1])
		if err != nil {
			continue
		}
		uids = append(uids, u)
	}
	return uids
}

// ValidateImageReferences checks spec §3 invariant (a): every img_<uid>
// token in data must appear in images.
func ValidateImageReferences(data string, images []uidkit.Uid) bool {
	known := make(map[uidkit.Uid]struct{}, len(images))
	for _, u := range images {
		known[u] = struct{}{}
	}
	for _, ref := range ImageReferences(data) {
		if _, ok := known[ref]; !ok {
			return false
		}
	}
	return true
}
