package chunkpipe

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/ragit-kb/ragit/internal/llm"
	"github.com/ragit-kb/ragit/internal/objstore"
	"github.com/stretchr/testify/require"
)

func writeRepoFile(t *testing.T, root, path, content string) {
	t.Helper()
	full := filepath.Join(root, path)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
}

func TestBuild_ProcessesStagedFileIntoChunks(t *testing.T) {
	root := t.TempDir()
	writeRepoFile(t, root, "notes.txt", "hello world\nsecond line\n")

	store := objstore.New(root)
	h := NewHeader("0.1.0")
	h.stage("notes.txt")

	provider := llm.NewTestProvider("test", llm.Response{Text: `{"title":"Notes","summary":"A short note"}`})

	var results []FileResult
	err := Build(context.Background(), store, &h, root, provider, BuildConfig{RagitVersion: "0.1.0"}, func(r FileResult) {
		results = append(results, r)
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.NoError(t, results[0].Err)
	require.Equal(t, 1, results[0].Chunks)

	require.Empty(t, h.StagedFiles)
	require.Nil(t, h.CurrProcessingFile)
	require.Contains(t, h.ProcessedFiles, "notes.txt")
}

func TestBuild_LeavesCurrProcessingFileOnFailure(t *testing.T) {
	root := t.TempDir()
	writeRepoFile(t, root, "notes.txt", "hello\n")

	store := objstore.New(root)
	h := NewHeader("0.1.0")
	h.stage("notes.txt")

	failing := llm.NewTestProvider("broken")
	failing.Err = assertError{}

	err := Build(context.Background(), store, &h, root, failing, BuildConfig{RagitVersion: "0.1.0", MaxRetry: 1, SchemaMaxTry: 1}, nil)
	require.Error(t, err)
	require.NotNil(t, h.CurrProcessingFile)
	require.Equal(t, "notes.txt", *h.CurrProcessingFile)
	require.Contains(t, h.StagedFiles, "notes.txt")
}

func TestSummarize_RetriesOnSchemaViolationThenSucceeds(t *testing.T) {
	provider := llm.NewTestProvider("test",
		llm.Response{Text: "not json at all"},
		llm.Response{Text: `{"title":"T","summary":"S"}`},
	)
	title, summary, err := summarize(context.Background(), provider, BuildConfig{MaxRetry: 1, SchemaMaxTry: 2}, "chunk text")
	require.NoError(t, err)
	require.Equal(t, "T", title)
	require.Equal(t, "S", summary)
}

func TestResolveImages_SubstitutesPlaceholderWithRealToken(t *testing.T) {
	store := objstore.New(t.TempDir())
	pc := PackedChunk{
		Text:   "before " + imgPlaceholder(0) + " after",
		Images: []ImageUnit{{Bytes: []byte{1, 2, 3}, Ext: "png"}},
	}
	text, uids, err := resolveImages(store, pc)
	require.NoError(t, err)
	require.Len(t, uids, 1)
	require.NotContains(t, text, imgPlaceholder(0))
	require.Contains(t, text, "img_"+uids[0].String())
}

type assertError struct{}

func (assertError) Error() string { return "synthetic provider failure" }
