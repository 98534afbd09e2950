package repokb

import (
	"testing"

	"github.com/ragit-kb/ragit/internal/chunkmodel"
	"github.com/ragit-kb/ragit/internal/objstore"
	"github.com/ragit-kb/ragit/internal/uidkit"
	"github.com/stretchr/testify/require"
)

func TestMerge_UnionsChunksAndImagesByUid(t *testing.T) {
	dstRoot, srcRoot := t.TempDir(), t.TempDir()
	dst, err := Init(dstRoot, "0.1.0")
	require.NoError(t, err)
	src, err := Init(srcRoot, "0.1.0")
	require.NoError(t, err)

	img := writeImage(t, src.Store, []byte("png"))
	c := writeChunk(t, src.Store, chunkmodel.Chunk{
		Data:   "x " + chunkmodel.ImgToken(img.Uid),
		Images: []uidkit.Uid{img.Uid},
		Source: chunkmodel.NewFileSource("doc.txt", 0, nil),
	})
	fileUid := chunkmodel.ComputeFileUid([]uidkit.Uid{c.Uid})
	src.Header.ProcessedFiles["doc.txt"] = fileUid.String()
	require.NoError(t, src.Save())

	report, err := dst.Merge(srcRoot)
	require.NoError(t, err)
	require.Equal(t, 1, report.ChunksCopied)
	require.Equal(t, 1, report.ImagesCopied)
	require.Empty(t, report.Conflicts)

	copiedChunk, _ := objstore.Exists(dst.Store.ChunkPath(c.Uid))
	require.True(t, copiedChunk)
	copiedImg, _ := objstore.Exists(dst.Store.ImageBlobPath(img.Uid))
	require.True(t, copiedImg)
	require.Equal(t, fileUid.String(), dst.Header.ProcessedFiles["doc.txt"])
}

func TestMerge_IncomingWinsOnConflictWithWarning(t *testing.T) {
	dstRoot, srcRoot := t.TempDir(), t.TempDir()
	dst, err := Init(dstRoot, "0.1.0")
	require.NoError(t, err)
	src, err := Init(srcRoot, "0.1.0")
	require.NoError(t, err)

	dst.Header.ProcessedFiles["doc.txt"] = "aaaa"
	require.NoError(t, dst.Save())
	src.Header.ProcessedFiles["doc.txt"] = "bbbb"
	require.NoError(t, src.Save())

	report, err := dst.Merge(srcRoot)
	require.NoError(t, err)
	require.Len(t, report.Conflicts, 1)
	require.Equal(t, "bbbb", dst.Header.ProcessedFiles["doc.txt"])
}

func TestMerge_DoesNotReStageAlreadyProcessedFile(t *testing.T) {
	dstRoot, srcRoot := t.TempDir(), t.TempDir()
	dst, err := Init(dstRoot, "0.1.0")
	require.NoError(t, err)
	src, err := Init(srcRoot, "0.1.0")
	require.NoError(t, err)

	dst.Header.ProcessedFiles["doc.txt"] = "aaaa"
	require.NoError(t, dst.Save())
	src.Header.StagedFiles = []string{"doc.txt"}
	require.NoError(t, src.Save())

	_, err = dst.Merge(srcRoot)
	require.NoError(t, err)
	require.NotContains(t, dst.Header.StagedFiles, "doc.txt")
}
