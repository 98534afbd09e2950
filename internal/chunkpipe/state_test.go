package chunkpipe

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ragit-kb/ragit/internal/chunkmodel"
	"github.com/ragit-kb/ragit/internal/objstore"
	"github.com/stretchr/testify/require"
)

func TestAdd_NewPathStages(t *testing.T) {
	h := NewHeader("0.1.0")
	store := objstore.New(t.TempDir())

	result, err := Add(store, &h, "a.txt", AddIgnore)
	require.NoError(t, err)
	require.Equal(t, AddResultStaged, result)
	require.True(t, h.isStaged("a.txt"))
}

func TestAdd_IgnoreModeIsNoopWhenProcessed(t *testing.T) {
	h := NewHeader("0.1.0")
	h.ProcessedFiles["a.txt"] = "deadbeef"
	store := objstore.New(t.TempDir())

	result, err := Add(store, &h, "a.txt", AddIgnore)
	require.NoError(t, err)
	require.Equal(t, AddResultIgnored, result)
	require.False(t, h.isStaged("a.txt"))
}

func TestAdd_RejectModeFailsWhenProcessed(t *testing.T) {
	h := NewHeader("0.1.0")
	h.ProcessedFiles["a.txt"] = "deadbeef"
	store := objstore.New(t.TempDir())

	_, err := Add(store, &h, "a.txt", AddReject)
	require.Error(t, err)
}

func TestAdd_ForceModeUnregistersAndRestages(t *testing.T) {
	h := NewHeader("0.1.0")
	h.ProcessedFiles["a.txt"] = "deadbeef"
	store := objstore.New(t.TempDir())

	result, err := Add(store, &h, "a.txt", AddForce)
	require.NoError(t, err)
	require.Equal(t, AddResultUpdated, result)
	require.True(t, h.isStaged("a.txt"))
	_, stillProcessed := h.ProcessedFiles["a.txt"]
	require.False(t, stillProcessed)
}

func TestRemove_DropsStagedEntry(t *testing.T) {
	h := NewHeader("0.1.0")
	h.stage("a.txt")
	store := objstore.New(t.TempDir())

	require.NoError(t, Remove(store, &h, "a.txt"))
	require.False(t, h.isStaged("a.txt"))
}

func TestRemove_UnknownPathFails(t *testing.T) {
	h := NewHeader("0.1.0")
	store := objstore.New(t.TempDir())
	require.Error(t, Remove(store, &h, "nope.txt"))
}

func TestRemove_ClearsCurrProcessingFileIfMatching(t *testing.T) {
	h := NewHeader("0.1.0")
	path := "a.txt"
	h.ProcessedFiles[path] = "deadbeef"
	h.CurrProcessingFile = &path
	store := objstore.New(t.TempDir())

	require.NoError(t, Remove(store, &h, path))
	require.Nil(t, h.CurrProcessingFile)
}

func TestRemoveAuto_DropsEntriesForMissingFiles(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "present.txt"), []byte("x"), 0o644))

	h := NewHeader("0.1.0")
	h.ProcessedFiles["present.txt"] = "deadbeef"
	h.ProcessedFiles["gone.txt"] = "deadbeef"
	store := objstore.New(root)

	removed, err := RemoveAuto(store, &h, root)
	require.NoError(t, err)
	require.Equal(t, []string{"gone.txt"}, removed)
	_, stillThere := h.ProcessedFiles["present.txt"]
	require.True(t, stillThere)
}

func TestGcFile_RemovesOnlyChunksForThatPath(t *testing.T) {
	root := t.TempDir()
	store := objstore.New(root)

	keep := chunkmodel.Chunk{Data: "keep", Source: chunkmodel.NewFileSource("keep.txt", 0, nil)}
	keep.ComputeUid()
	drop := chunkmodel.Chunk{Data: "drop", Source: chunkmodel.NewFileSource("drop.txt", 0, nil)}
	drop.ComputeUid()

	for _, c := range []chunkmodel.Chunk{keep, drop} {
		blob, err := chunkmodel.Marshal(c)
		require.NoError(t, err)
		require.NoError(t, objstore.WriteFile(store.ChunkPath(c.Uid), blob, objstore.Atomic))
	}

	require.NoError(t, gcFile(store, "drop.txt"))

	keepExists, _ := objstore.Exists(store.ChunkPath(keep.Uid))
	dropExists, _ := objstore.Exists(store.ChunkPath(drop.Uid))
	require.True(t, keepExists)
	require.False(t, dropExists)
}
