package repokb

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ragit-kb/ragit/internal/chunkmodel"
	"github.com/ragit-kb/ragit/internal/uidkit"
	"github.com/stretchr/testify/require"
)

func TestCheck_NonRecursiveFlagsStagedAndProcessedOverlap(t *testing.T) {
	root := t.TempDir()
	repo, err := Init(root, "0.1.0")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(root, "dup.txt"), []byte("x"), 0o644))
	repo.Header.StagedFiles = []string{"dup.txt"}
	repo.Header.ProcessedFiles["dup.txt"] = "deadbeef"
	require.NoError(t, repo.Save())

	issues, err := repo.Check(false)
	require.NoError(t, err)
	require.Len(t, issues, 2) // overlap + malformed hash ("deadbeef" isn't a 64-hex uid)
}

func TestCheck_RecursiveVerifiesFileUid(t *testing.T) {
	root := t.TempDir()
	repo, err := Init(root, "0.1.0")
	require.NoError(t, err)

	c0 := writeChunk(t, repo.Store, chunkmodel.Chunk{Data: "a", Source: chunkmodel.NewFileSource("doc.txt", 0, nil)})
	c1 := writeChunk(t, repo.Store, chunkmodel.Chunk{Data: "b", Source: chunkmodel.NewFileSource("doc.txt", 1, nil)})
	fileUid := chunkmodel.ComputeFileUid([]uidkit.Uid{c0.Uid, c1.Uid})
	repo.Header.ProcessedFiles["doc.txt"] = fileUid.String()
	require.NoError(t, repo.Save())

	issues, err := repo.Check(true)
	require.NoError(t, err)
	for _, issue := range issues {
		require.NotContains(t, issue.Message, "recomputed file uid")
	}
}

func TestCheck_RecursiveCatchesMismatchedFileUid(t *testing.T) {
	root := t.TempDir()
	repo, err := Init(root, "0.1.0")
	require.NoError(t, err)

	writeChunk(t, repo.Store, chunkmodel.Chunk{Data: "a", Source: chunkmodel.NewFileSource("doc.txt", 0, nil)})
	repo.Header.ProcessedFiles["doc.txt"] = strings.Repeat("0", 64)
	require.NoError(t, repo.Save())

	issues, err := repo.Check(true)
	require.NoError(t, err)
	found := false
	for _, issue := range issues {
		if issue.Path == "doc.txt" {
			found = true
		}
	}
	require.True(t, found)
}

func TestCheck_RecursiveCatchesDanglingImageReference(t *testing.T) {
	root := t.TempDir()
	repo, err := Init(root, "0.1.0")
	require.NoError(t, err)

	missingUid, err := uidkit.Parse(strings.Repeat("1", 64))
	require.NoError(t, err)

	c := writeChunk(t, repo.Store, chunkmodel.Chunk{
		Data:   "see " + chunkmodel.ImgToken(missingUid),
		Source: chunkmodel.NewFileSource("doc.txt", 0, nil),
	})
	fileUid := chunkmodel.ComputeFileUid([]uidkit.Uid{c.Uid})
	repo.Header.ProcessedFiles["doc.txt"] = fileUid.String()
	require.NoError(t, repo.Save())

	issues, err := repo.Check(true)
	require.NoError(t, err)
	foundDangling := false
	for _, issue := range issues {
		if issue.Path == "doc.txt" {
			foundDangling = true
		}
	}
	require.True(t, foundDangling)
}
