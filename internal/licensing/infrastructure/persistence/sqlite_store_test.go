package persistence

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/felixgeelhaar/markpro/internal/licensing/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLiteStore(t *testing.T) *SQLiteSlotStore {
	t.Helper()
	ctx := context.Background()
	db, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "markpro.db"))
	require.NoError(t, err)
	store, err := NewSQLiteSlotStore(ctx, db)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteSlotStore_GetMissing(t *testing.T) {
	store := newTestSQLiteStore(t)

	value, ok, err := store.Get(context.Background(), domain.SlotLicense)

	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, value)
}

func TestSQLiteSlotStore_Upsert(t *testing.T) {
	store := newTestSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, domain.SlotDraft, "# one"))
	require.NoError(t, store.Set(ctx, domain.SlotDraft, "# two"))

	value, ok, err := store.Get(ctx, domain.SlotDraft)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "# two", value)
}

func TestSQLiteSlotStore_DeleteAndPing(t *testing.T) {
	store := newTestSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, domain.SlotLicense, "ABCDEFGHIJK"))
	require.NoError(t, store.Delete(ctx, domain.SlotLicense))

	_, ok, err := store.Get(ctx, domain.SlotLicense)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, store.Ping(ctx))
}

func TestSQLiteSlotStore_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "markpro.db")
	ctx := context.Background()

	db, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	store, err := NewSQLiteSlotStore(ctx, db)
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, domain.SlotLicense, "PERSISTED-KEY"))
	require.NoError(t, store.Close())

	db, err = OpenSQLite(ctx, path)
	require.NoError(t, err)
	reopened, err := NewSQLiteSlotStore(ctx, db)
	require.NoError(t, err)
	defer reopened.Close()

	value, ok, err := reopened.Get(ctx, domain.SlotLicense)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "PERSISTED-KEY", value)
}
