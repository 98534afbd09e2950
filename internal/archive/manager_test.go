package archive

import (
	"bytes"
	"testing"
	"time"

	"github.com/ragit-kb/ragit/internal/chunkmodel"
	"github.com/ragit-kb/ragit/internal/repokb"
	"github.com/stretchr/testify/require"
)

func bundleOf(t *testing.T, root string) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, WriteBundle(&buf, root))
	return buf.Bytes()
}

func TestBeginPush_FailsForMissingRepository(t *testing.T) {
	m := NewManager(t.TempDir(), time.Hour)
	_, err := m.BeginPush(t.TempDir())
	require.Error(t, err)
}

func TestBeginPush_FailsWhileRepositoryLockHeld(t *testing.T) {
	repoRoot := t.TempDir()
	repo, err := repokb.Init(repoRoot, "0.1.0")
	require.NoError(t, err)
	lock := repo.Lock()
	ok, err := lock.TryLock()
	require.NoError(t, err)
	require.True(t, ok)
	defer lock.Unlock()

	m := NewManager(t.TempDir(), time.Hour)
	_, err = m.BeginPush(repoRoot)
	require.Error(t, err)
}

func TestPushSession_EndToEndMergesArchive(t *testing.T) {
	srcRoot := t.TempDir()
	src, err := repokb.Init(srcRoot, "0.1.0")
	require.NoError(t, err)
	c := writeChunk(t, src.Store, chunkmodel.Chunk{Data: "hello", Source: chunkmodel.NewFileSource("doc.txt", 0, nil)})
	src.Header.ProcessedFiles["doc.txt"] = c.Uid.String()
	require.NoError(t, src.Save())

	dstRoot := t.TempDir()
	_, err = repokb.Init(dstRoot, "0.1.0")
	require.NoError(t, err)

	m := NewManager(t.TempDir(), time.Hour)
	sess, err := m.BeginPush(dstRoot)
	require.NoError(t, err)
	require.NoError(t, m.Archive(sess.ID, "00", bundleOf(t, srcRoot)))

	state, report, err := m.FinalizePush(sess.ID)
	require.NoError(t, err)
	require.Equal(t, StateCompleted, state)
	require.Equal(t, 1, report.ChunksCopied)

	dst, err := repokb.Open(dstRoot)
	require.NoError(t, err)
	require.Equal(t, c.Uid.String(), dst.Header.ProcessedFiles["doc.txt"])

	_, _, err = m.FinalizePush(sess.ID)
	require.Error(t, err, "finalizing an already-finalized session must fail")
}

func TestArchive_DuplicateArchiveIdFails(t *testing.T) {
	root := t.TempDir()
	_, err := repokb.Init(root, "0.1.0")
	require.NoError(t, err)

	m := NewManager(t.TempDir(), time.Hour)
	sess, err := m.BeginPush(root)
	require.NoError(t, err)
	require.NoError(t, m.Archive(sess.ID, "00", []byte("a")))
	err = m.Archive(sess.ID, "00", []byte("b"))
	require.Error(t, err)
}

func TestArchive_RejectsPathTraversalId(t *testing.T) {
	root := t.TempDir()
	_, err := repokb.Init(root, "0.1.0")
	require.NoError(t, err)

	m := NewManager(t.TempDir(), time.Hour)
	sess, err := m.BeginPush(root)
	require.NoError(t, err)
	require.Error(t, m.Archive(sess.ID, "../escape", []byte("a")))
	require.Error(t, m.Archive(sess.ID, "a/b", []byte("a")))
}

func TestSweep_ExpiresStaleOpenSessions(t *testing.T) {
	root := t.TempDir()
	_, err := repokb.Init(root, "0.1.0")
	require.NoError(t, err)

	m := NewManager(t.TempDir(), time.Millisecond)
	sess, err := m.BeginPush(root)
	require.NoError(t, err)

	old := now
	now = func() time.Time { return old().Add(time.Hour) }
	defer func() { now = old }()

	m.Sweep()
	err = m.Archive(sess.ID, "00", []byte("x"))
	require.Error(t, err, "expired session must no longer accept archive uploads")
}

func TestFinalizePush_OutOfOrderArchiveIdsStillMerge(t *testing.T) {
	dstRoot := t.TempDir()
	_, err := repokb.Init(dstRoot, "0.1.0")
	require.NoError(t, err)

	srcA := t.TempDir()
	a, err := repokb.Init(srcA, "0.1.0")
	require.NoError(t, err)
	ca := writeChunk(t, a.Store, chunkmodel.Chunk{Data: "a", Source: chunkmodel.NewFileSource("a.txt", 0, nil)})
	a.Header.ProcessedFiles["a.txt"] = ca.Uid.String()
	require.NoError(t, a.Save())

	srcB := t.TempDir()
	b, err := repokb.Init(srcB, "0.1.0")
	require.NoError(t, err)
	cb := writeChunk(t, b.Store, chunkmodel.Chunk{Data: "b", Source: chunkmodel.NewFileSource("b.txt", 0, nil)})
	b.Header.ProcessedFiles["b.txt"] = cb.Uid.String()
	require.NoError(t, b.Save())

	m := NewManager(t.TempDir(), time.Hour)
	sess, err := m.BeginPush(dstRoot)
	require.NoError(t, err)
	require.NoError(t, m.Archive(sess.ID, "01", bundleOf(t, srcB)))
	require.NoError(t, m.Archive(sess.ID, "00", bundleOf(t, srcA)))

	state, report, err := m.FinalizePush(sess.ID)
	require.NoError(t, err)
	require.Equal(t, StateCompleted, state)
	require.Equal(t, 2, report.ChunksCopied)
}
