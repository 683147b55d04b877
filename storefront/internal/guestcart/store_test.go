package guestcart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/fjod/ecomart/storefront/internal/storage"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func product(id string, price string, stock int) Product {
	return Product{ID: id, Slug: "p-" + id, Name: "Product " + id, Price: decimal.RequireFromString(price), StockQuantity: stock}
}

func newTestStore(t *testing.T) (*Store, *storage.MemoryStorage) {
	t.Helper()
	mem := storage.NewMemoryStorage()
	s := NewStore(mem, zerolog.Nop())
	n := 0
	s.newID = func() string {
		n++
		return fmt.Sprintf("line-%d", n)
	}
	require.NoError(t, s.Load(context.Background()))
	return s, mem
}

func persisted(t *testing.T, mem *storage.MemoryStorage) []Item {
	t.Helper()
	raw, err := mem.Get(context.Background(), StorageKey)
	require.NoError(t, err)
	var snap snapshot
	require.NoError(t, json.Unmarshal(raw, &snap))
	return snap.Items
}

func TestTotalsAndCount(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.AddItem(ctx, product("A", "10", 5), 2))
	require.NoError(t, s.AddItem(ctx, product("B", "5", 5), 1))

	assert.True(t, s.Total().Equal(decimal.NewFromInt(25)))
	assert.Equal(t, 3, s.Count())
}

func TestAddItem_MergesByProduct(t *testing.T) {
	s, mem := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.AddItem(ctx, product("A", "10", 5), 1))
	require.NoError(t, s.AddItem(ctx, product("A", "10", 5), 1))

	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)
	assert.Equal(t, "line-1", items[0].ID)
	assert.Equal(t, items, persisted(t, mem))
}

func TestAddItem_ClampsQuantityAndIgnoresStock(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.AddItem(ctx, product("A", "10", 1), 0))
	require.NoError(t, s.AddItem(ctx, product("B", "10", 1), 7))

	items := s.Items()
	assert.Equal(t, 1, items[0].Quantity)
	assert.Equal(t, 7, items[1].Quantity)
	assert.Equal(t, 1, items[1].StockQuantity)
}

func TestUpdateQuantity(t *testing.T) {
	s, mem := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.AddItem(ctx, product("A", "10", 5), 3))
	id := s.Items()[0].ID

	require.NoError(t, s.UpdateQuantity(ctx, id, 0))
	require.NoError(t, s.UpdateQuantity(ctx, id, -4))
	assert.Equal(t, 3, s.Items()[0].Quantity)

	require.NoError(t, s.UpdateQuantity(ctx, "missing", 9))
	assert.Equal(t, 3, s.Count())

	require.NoError(t, s.UpdateQuantity(ctx, id, 5))
	assert.Equal(t, 5, s.Items()[0].Quantity)
	assert.Equal(t, 5, persisted(t, mem)[0].Quantity)
}

func TestRemoveItem(t *testing.T) {
	s, mem := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.AddItem(ctx, product("A", "10", 5), 1))
	require.NoError(t, s.AddItem(ctx, product("B", "5", 5), 1))

	require.NoError(t, s.RemoveItem(ctx, "missing"))
	require.NoError(t, s.RemoveItem(ctx, s.Items()[0].ID))

	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "B", items[0].ProductID)
	assert.Len(t, persisted(t, mem), 1)
}

func TestClear_ErasesKey(t *testing.T) {
	s, mem := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.AddItem(ctx, product("A", "10", 5), 1))

	require.NoError(t, s.Clear(ctx))

	assert.True(t, s.IsEmpty())
	_, err := mem.Get(ctx, StorageKey)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestLoad_RestoresSnapshot(t *testing.T) {
	s, mem := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.AddItem(ctx, product("A", "19.99", 5), 2))

	reopened := NewStore(mem, zerolog.Nop())
	require.NoError(t, reopened.Load(ctx))
	assert.Equal(t, s.Items(), reopened.Items())
	assert.True(t, reopened.Total().Equal(decimal.RequireFromString("39.98")))
}

func TestLoad_OnlyOnce(t *testing.T) {
	s, mem := newTestStore(t)
	ctx := context.Background()

	other := NewStore(mem, zerolog.Nop())
	require.NoError(t, other.AddItem(ctx, product("A", "10", 5), 1))

	require.NoError(t, s.Load(ctx))
	assert.True(t, s.IsEmpty())
}

func TestLoad_CorruptSnapshot(t *testing.T) {
	mem := storage.NewMemoryStorage()
	ctx := context.Background()
	require.NoError(t, mem.Set(ctx, StorageKey, []byte("{not json")))

	s := NewStore(mem, zerolog.Nop())
	require.NoError(t, s.Load(ctx))
	assert.True(t, s.IsEmpty())

	require.NoError(t, s.AddItem(ctx, product("A", "10", 5), 1))
	assert.Len(t, persisted(t, mem), 1)
}

func TestMutation_LoadsLazily(t *testing.T) {
	mem := storage.NewMemoryStorage()
	ctx := context.Background()
	seed := NewStore(mem, zerolog.Nop())
	require.NoError(t, seed.AddItem(ctx, product("A", "10", 5), 1))

	s := NewStore(mem, zerolog.Nop())
	require.NoError(t, s.AddItem(ctx, product("B", "5", 5), 1))
	assert.Equal(t, 2, s.Count())
}

type failingStorage struct {
	*storage.MemoryStorage
}

func (failingStorage) Set(context.Context, string, []byte) error {
	return errors.New("disk full")
}

func TestMutation_RollsBackOnWriteFailure(t *testing.T) {
	s := NewStore(failingStorage{storage.NewMemoryStorage()}, zerolog.Nop())
	ctx := context.Background()

	err := s.AddItem(ctx, product("A", "10", 5), 1)
	require.Error(t, err)
	assert.True(t, s.IsEmpty())
}

func TestItems_ReturnsCopy(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.AddItem(ctx, product("A", "10", 5), 1))

	items := s.Items()
	items[0].Quantity = 99
	assert.Equal(t, 1, s.Count())
}
