package persist

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newStores builds one store per backend so each test exercises both.
func newStores(t *testing.T) map[string]Store {
	t.Helper()
	fs, err := NewFileSystemStore(t.TempDir())
	require.NoError(t, err)
	bs, err := NewBoltStore(filepath.Join(t.TempDir(), "dumps.db"))
	require.NoError(t, err)
	stores := map[string]Store{"filesystem": fs, "bolt": bs}
	t.Cleanup(func() {
		for _, s := range stores {
			_ = s.Close()
		}
	})
	return stores
}

func TestSaveLoadRoundTrip(t *testing.T) {
	for name, store := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			blob := []byte{0x01, 0xde, 0xad, 0xbe, 0xef}
			require.NoError(t, store.SaveDump(1, blob))

			dump, err := store.LoadDump(1)
			require.NoError(t, err)
			assert.Equal(t, blob, dump.Data)
			assert.False(t, dump.Timestamp.IsZero())
		})
	}
}

func TestSaveReplacesPrevious(t *testing.T) {
	for name, store := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.SaveDump(1, []byte("old")))
			require.NoError(t, store.SaveDump(1, []byte("new")))

			dump, err := store.LoadDump(1)
			require.NoError(t, err)
			assert.Equal(t, []byte("new"), dump.Data)
		})
	}
}

func TestLoadMissingDump(t *testing.T) {
	for name, store := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := store.LoadDump(99)
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestDumpExists(t *testing.T) {
	for name, store := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			exists, err := store.DumpExists(1)
			require.NoError(t, err)
			assert.False(t, exists)

			require.NoError(t, store.SaveDump(1, []byte("x")))
			exists, err = store.DumpExists(1)
			require.NoError(t, err)
			assert.True(t, exists)
		})
	}
}

func TestDeleteDump(t *testing.T) {
	for name, store := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.SaveDump(1, []byte("x")))
			require.NoError(t, store.DeleteDump(1))

			exists, err := store.DumpExists(1)
			require.NoError(t, err)
			assert.False(t, exists)

			// deleting a namespace that has no dump is not an error
			assert.NoError(t, store.DeleteDump(1))
		})
	}
}

func TestListNamespaces(t *testing.T) {
	for name, store := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			for _, ns := range []int16{5, 1, 3} {
				require.NoError(t, store.SaveDump(ns, []byte{byte(ns)}))
			}
			namespaces, err := store.ListNamespaces()
			require.NoError(t, err)
			assert.Equal(t, []int16{1, 3, 5}, namespaces)
		})
	}
}

func TestNamespacesAreIndependent(t *testing.T) {
	for name, store := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.SaveDump(1, []byte("conversations")))
			require.NoError(t, store.SaveDump(2, []byte("profile")))
			require.NoError(t, store.DeleteDump(1))

			dump, err := store.LoadDump(2)
			require.NoError(t, err)
			assert.Equal(t, []byte("profile"), dump.Data)
		})
	}
}

func TestNewStoreFactory(t *testing.T) {
	s, err := NewStore(Config{Type: StoreTypeFileSystem, Path: t.TempDir()})
	require.NoError(t, err)
	_, ok := s.(*FileSystemStore)
	assert.True(t, ok)
	require.NoError(t, s.Close())

	s, err = NewStore(Config{Type: StoreTypeBolt, Path: filepath.Join(t.TempDir(), "d.db")})
	require.NoError(t, err)
	_, ok = s.(*BoltStore)
	assert.True(t, ok)
	require.NoError(t, s.Close())

	_, err = NewStore(Config{Type: "redis"})
	assert.Error(t, err)
}
