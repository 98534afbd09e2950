package chunkmodel

import (
	"sort"

	"github.com/ragit-kb/ragit/internal/uidkit"
)

// ComputeFileUid derives a file's uid from the ordered list of its chunk
// uids (spec §3: "the file-uid is derived from the ordered list of chunk
// uids belonging to that file"). Order matters: two files with the same
// chunks in different order are different files.
func ComputeFileUid(chunkUids []uidkit.Uid) uidkit.Uid {
	var buf []byte
	for _, u := range chunkUids {
		buf = append(buf, u[:]...)
	}
	return uidkit.Compute(uidkit.KindFile, uint64(len(chunkUids)), buf)
}

// ComputeKnowledgeBaseUid derives the repository-wide content hash from the
// sorted list of file uids (spec §3). Sorting makes the result independent
// of the order files were processed in.
func ComputeKnowledgeBaseUid(fileUids []uidkit.Uid) uidkit.Uid {
	sorted := make([]uidkit.Uid, len(fileUids))
	copy(sorted, fileUids)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].String() < sorted[j].String()
	})

	var buf []byte
	for _, u := range sorted {
		buf = append(buf, u[:]...)
	}
	return uidkit.Compute(uidkit.KindKnowledgeBase, uint64(len(sorted)), buf)
}
