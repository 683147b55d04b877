package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openSQLite(t *testing.T, path string) *SQLiteStorage {
	s, err := OpenSQLite(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStorageContract(t *testing.T) {
	impls := map[string]func(t *testing.T) Storage{
		"memory": func(*testing.T) Storage { return NewMemoryStorage() },
		"sqlite": func(t *testing.T) Storage { return openSQLite(t, filepath.Join(t.TempDir(), "store.db")) },
	}

	for name, newStorage := range impls {
		t.Run(name, func(t *testing.T) {
			s := newStorage(t)
			ctx := context.Background()

			_, err := s.Get(ctx, "guestCart")
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, s.Set(ctx, "guestCart", []byte(`[1]`)))
			require.NoError(t, s.Set(ctx, "guestCart", []byte(`[1,2]`)))
			v, err := s.Get(ctx, "guestCart")
			require.NoError(t, err)
			assert.Equal(t, `[1,2]`, string(v))

			require.NoError(t, s.Delete(ctx, "guestCart"))
			_, err = s.Get(ctx, "guestCart")
			assert.ErrorIs(t, err, ErrNotFound)

			// deleting a missing key is fine
			assert.NoError(t, s.Delete(ctx, "guestCart"))
		})
	}
}

func TestSQLite_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.db")
	ctx := context.Background()

	first, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, "session", []byte(`{"email":"ada@example.com"}`)))
	require.NoError(t, first.Close())

	second := openSQLite(t, path)
	v, err := second.Get(ctx, "session")
	require.NoError(t, err)
	assert.JSONEq(t, `{"email":"ada@example.com"}`, string(v))
}

func TestMemoryStorage_CopiesValues(t *testing.T) {
	s := NewMemoryStorage()
	ctx := context.Background()

	buf := []byte("abc")
	require.NoError(t, s.Set(ctx, "k", buf))
	buf[0] = 'x'

	v, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(v))
}
