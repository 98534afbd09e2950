package repokb

import (
	"github.com/ragit-kb/ragit/internal/chunkmodel"
	"github.com/ragit-kb/ragit/internal/uidkit"
)

// KnowledgeBaseUid derives the repository-wide content hash from every
// processed file's uid (spec §3 "Knowledge-base uid").
func (r *Repository) KnowledgeBaseUid() (uidkit.Uid, error) {
	fileUids := make([]uidkit.Uid, 0, len(r.Header.ProcessedFiles))
	for _, hex := range r.Header.ProcessedFiles {
		u, err := uidkit.Parse(hex)
		if err != nil {
			return uidkit.Uid{}, err
		}
		fileUids = append(fileUids, u)
	}
	return chunkmodel.ComputeKnowledgeBaseUid(fileUids), nil
}
