package meta

import (
	"testing"

	"github.com/ragit-kb/ragit/internal/objstore"
	"github.com/ragit-kb/ragit/internal/ragiterr"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileYieldsEmptyStore(t *testing.T) {
	store := objstore.New(t.TempDir())
	m, err := Load(store)
	require.NoError(t, err)
	require.Empty(t, m)
}

func TestStore_SetSaveLoadRoundTrips(t *testing.T) {
	store := objstore.New(t.TempDir())
	m, err := Load(store)
	require.NoError(t, err)

	m.Set("author", "alice")
	require.NoError(t, m.Save(store))

	loaded, err := Load(store)
	require.NoError(t, err)
	v, ok := loaded.Get("author")
	require.True(t, ok)
	require.Equal(t, "alice", v)
}

func TestStore_RemoveAndKeys(t *testing.T) {
	m := Store{"a": "1", "b": "2"}
	require.Equal(t, []string{"a", "b"}, m.Keys())
	m.Remove("a")
	_, ok := m.Get("a")
	require.False(t, ok)
}

func TestBlock_SetRejectsUnknownKey(t *testing.T) {
	b := Block{}
	err := b.Set("build", "not_a_real_key", "1")
	require.Error(t, err)
	require.Equal(t, ragiterr.CodeSemanticInvalidConfigKey, ragiterr.Code(err))
}

func TestBlock_SetAcceptsKnownKey(t *testing.T) {
	b := Block{}
	require.NoError(t, b.Set("build", "token_budget", "800"))
	v, ok := b.Get("token_budget")
	require.True(t, ok)
	require.Equal(t, "800", v)
}

func TestBlock_SaveLoadRoundTrips(t *testing.T) {
	store := objstore.New(t.TempDir())
	b := Block{}
	require.NoError(t, b.Set("query", "k1", "40"))
	require.NoError(t, b.Save(store, "query"))

	loaded, err := LoadBlock(store, "query")
	require.NoError(t, err)
	v, _ := loaded.Get("k1")
	require.Equal(t, "40", v)
}

func TestKnownKeys_UnknownBlockReturnsNil(t *testing.T) {
	require.Nil(t, KnownKeys("not-a-block"))
	require.NotEmpty(t, KnownKeys("build"))
}

