package repokb

import (
	"testing"

	"github.com/ragit-kb/ragit/internal/chunkmodel"
	"github.com/ragit-kb/ragit/internal/objstore"
	"github.com/stretchr/testify/require"
)

func TestResetSoft_RestagesInFlightFileAndClearsMarker(t *testing.T) {
	root := t.TempDir()
	repo, err := Init(root, "0.1.0")
	require.NoError(t, err)
	inFlight := "stuck.txt"
	repo.Header.CurrProcessingFile = &inFlight
	require.NoError(t, repo.Save())

	require.NoError(t, repo.ResetSoft())

	require.Nil(t, repo.Header.CurrProcessingFile)
	require.Contains(t, repo.Header.StagedFiles, "stuck.txt")
}

func TestResetSoft_LeavesChunksUntouched(t *testing.T) {
	root := t.TempDir()
	repo, err := Init(root, "0.1.0")
	require.NoError(t, err)
	c := writeChunk(t, repo.Store, chunkmodel.Chunk{Data: "a", Source: chunkmodel.NewFileSource("doc.txt", 0, nil)})

	require.NoError(t, repo.ResetSoft())

	stillThere, _ := objstore.Exists(repo.Store.ChunkPath(c.Uid))
	require.True(t, stillThere)
}

func TestResetHard_WipesChunksButKeepsMeta(t *testing.T) {
	root := t.TempDir()
	repo, err := Init(root, "0.1.0")
	require.NoError(t, err)
	c := writeChunk(t, repo.Store, chunkmodel.Chunk{Data: "a", Source: chunkmodel.NewFileSource("doc.txt", 0, nil)})
	repo.Header.ProcessedFiles["doc.txt"] = c.Uid.String()
	require.NoError(t, objstore.WriteFile(repo.Store.MetaPath(), []byte(`{"author":"alice"}`), objstore.Atomic))
	require.NoError(t, repo.Save())

	require.NoError(t, repo.ResetHard())

	gone, _ := objstore.Exists(repo.Store.ChunkPath(c.Uid))
	require.False(t, gone)
	require.Empty(t, repo.Header.ProcessedFiles)
	require.Empty(t, repo.Header.StagedFiles)

	metaStillThere, _ := objstore.Exists(repo.Store.MetaPath())
	require.True(t, metaStillThere)
}
