package repokb

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ragit-kb/ragit/internal/chunkpipe"
	"github.com/stretchr/testify/require"
)

func TestAddPaths_StagesEachAndReportsOutcome(t *testing.T) {
	root := t.TempDir()
	repo, err := Init(root, "0.1.0")
	require.NoError(t, err)

	outcomes, err := repo.AddPaths([]string{"a.txt", "b.txt"}, chunkpipe.AddIgnore)
	require.NoError(t, err)
	require.Len(t, outcomes, 2)
	require.Equal(t, chunkpipe.AddResultStaged, outcomes[0].Result)
	require.Equal(t, chunkpipe.AddResultStaged, outcomes[1].Result)

	reopened, err := Open(root)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"a.txt", "b.txt"}, reopened.Header.StagedFiles)
}

func TestAddPaths_RejectFailurePreservesOtherOutcomes(t *testing.T) {
	root := t.TempDir()
	repo, err := Init(root, "0.1.0")
	require.NoError(t, err)
	repo.Header.ProcessedFiles["already.txt"] = "deadbeef"

	outcomes, err := repo.AddPaths([]string{"already.txt", "new.txt"}, chunkpipe.AddReject)
	require.NoError(t, err) // AddPaths itself never fails; per-path errors are reported
	require.Error(t, outcomes[0].Err)
	require.NoError(t, outcomes[1].Err)
	require.Equal(t, chunkpipe.AddResultStaged, outcomes[1].Result)
}

func TestRemove_PersistsHeader(t *testing.T) {
	root := t.TempDir()
	repo, err := Init(root, "0.1.0")
	require.NoError(t, err)
	_, err = repo.AddPaths([]string{"a.txt"}, chunkpipe.AddIgnore)
	require.NoError(t, err)

	require.NoError(t, repo.Remove("a.txt"))

	reopened, err := Open(root)
	require.NoError(t, err)
	require.Empty(t, reopened.Header.StagedFiles)
}

func TestRemoveAuto_DropsMissingProcessedFiles(t *testing.T) {
	root := t.TempDir()
	repo, err := Init(root, "0.1.0")
	require.NoError(t, err)
	repo.Header.ProcessedFiles["gone.txt"] = "deadbeef"
	require.NoError(t, os.WriteFile(filepath.Join(root, "present.txt"), []byte("x"), 0o644))
	repo.Header.ProcessedFiles["present.txt"] = "cafebabe"
	require.NoError(t, repo.Save())

	removed, err := repo.RemoveAuto()
	require.NoError(t, err)
	require.Equal(t, []string{"gone.txt"}, removed)

	reopened, err := Open(root)
	require.NoError(t, err)
	_, stillThere := reopened.Header.ProcessedFiles["present.txt"]
	require.True(t, stillThere)
	_, goneStillThere := reopened.Header.ProcessedFiles["gone.txt"]
	require.False(t, goneStillThere)
}

func TestDiscover_FindsFilesUnderRoot(t *testing.T) {
	root := t.TempDir()
	repo, err := Init(root, "0.1.0")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(root, "doc.txt"), []byte("hello"), 0o644))

	paths, err := repo.Discover()
	require.NoError(t, err)
	require.Contains(t, paths, "doc.txt")
}
