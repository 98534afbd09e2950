package main

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTail_FiltersByLevelAndLimitsLines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ragit.log")
	content := `{"time":"t1","level":"INFO","msg":"build started"}
{"time":"t2","level":"ERROR","msg":"build failed"}
{"time":"t3","level":"INFO","msg":"build finished"}
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	lines, err := tail(path, 10, "INFO", nil)
	require.NoError(t, err)
	require.Len(t, lines, 2)
}

func TestTail_LimitsToLastN(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ragit.log")
	content := `{"time":"t1","level":"INFO","msg":"a"}
{"time":"t2","level":"INFO","msg":"b"}
{"time":"t3","level":"INFO","msg":"c"}
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	lines, err := tail(path, 2, "", nil)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	require.Contains(t, lines[1], `"c"`)
}

func TestTail_MissingFileReturnsEmpty(t *testing.T) {
	lines, err := tail(filepath.Join(t.TempDir(), "missing.log"), 10, "", nil)
	require.NoError(t, err)
	require.Nil(t, lines)
}

func TestMatchesFilter_PatternAgainstMessage(t *testing.T) {
	line := `{"time":"t1","level":"INFO","msg":"build started for doc.txt"}`
	require.True(t, matchesFilter(line, "", regexp.MustCompile("doc.txt")))
	require.False(t, matchesFilter(line, "", regexp.MustCompile("other.txt")))
}

func TestReadFrom_ReturnsOnlyAppendedLines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ragit.log")
	require.NoError(t, os.WriteFile(path, []byte("line1\n"), 0o644))

	_, offset, err := readFrom(path, 0)
	require.NoError(t, err)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString("line2\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	lines, _, err := readFrom(path, offset)
	require.NoError(t, err)
	require.Equal(t, []string{"line2"}, lines)
}
