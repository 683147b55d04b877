package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/fjod/ecomart/product-service/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRepo(t *testing.T) *MemoryRepository {
	repo := NewMemoryRepository()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	seed := []domain.Product{
		{Slug: "laptop", Name: "Laptop", Price: decimal.RequireFromString("999.99"), Category: "computers", CategoryName: "Computers", StockQuantity: 5, Featured: true, Tags: []string{"portable"}},
		{Slug: "mouse", Name: "Mouse", Price: decimal.RequireFromString("19.50"), Category: "accessories", CategoryName: "Accessories", StockQuantity: 0},
		{Slug: "keyboard", Name: "Keyboard", Price: decimal.RequireFromString("49.00"), Category: "accessories", CategoryName: "Accessories", StockQuantity: 12, Featured: true},
	}
	for i := range seed {
		seed[i].CreatedAt = base.Add(time.Duration(i) * time.Hour)
		require.NoError(t, repo.Insert(context.Background(), &seed[i]))
	}
	return repo
}

func TestMemoryRepository_InsertDerivesInStock(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	mouse, err := repo.GetBySlug(ctx, "mouse")
	require.NoError(t, err)
	assert.False(t, mouse.InStock)
	assert.Len(t, mouse.ID, 24)

	byID, err := repo.GetByID(ctx, mouse.ID)
	require.NoError(t, err)
	assert.Equal(t, "mouse", byID.Slug)
}

func TestMemoryRepository_GetByID_Errors(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	_, err := repo.GetByID(ctx, "not-an-id")
	assert.ErrorIs(t, err, ErrInvalidID)

	_, err = repo.GetByID(ctx, "0123456789abcdef01234567")
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestMemoryRepository_List_Filters(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	yes := true

	products, total, err := repo.List(ctx, domain.ListFilter{Category: "accessories", Limit: 10, Page: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, products, 2)

	products, total, err = repo.List(ctx, domain.ListFilter{InStock: &yes, Sort: domain.SortPrice, Limit: 10, Page: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Equal(t, "keyboard", products[0].Slug)
	assert.Equal(t, "laptop", products[1].Slug)

	minPrice := decimal.NewFromInt(20)
	maxPrice := decimal.NewFromInt(100)
	products, _, err = repo.List(ctx, domain.ListFilter{MinPrice: &minPrice, MaxPrice: &maxPrice, Limit: 10, Page: 1})
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "keyboard", products[0].Slug)

	products, _, err = repo.List(ctx, domain.ListFilter{Query: "PORT", Limit: 10, Page: 1})
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "laptop", products[0].Slug)
}

func TestMemoryRepository_List_Pagination(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	products, total, err := repo.List(ctx, domain.ListFilter{Sort: domain.SortName, Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, products, 1)
	assert.Equal(t, "mouse", products[0].Slug)

	products, _, err = repo.List(ctx, domain.ListFilter{Page: 5, Limit: 2})
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestMemoryRepository_Featured_NewestFirst(t *testing.T) {
	repo := setupRepo(t)

	featured, err := repo.Featured(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, featured, 2)
	assert.Equal(t, "keyboard", featured[0].Slug)

	featured, err = repo.Featured(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, featured, 1)
}

func TestMemoryRepository_SetStock_RecomputesInStock(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	laptop, err := repo.GetBySlug(ctx, "laptop")
	require.NoError(t, err)

	updated, err := repo.SetStock(ctx, laptop.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, updated.StockQuantity)
	assert.False(t, updated.InStock)

	updated, err = repo.SetStock(ctx, laptop.ID, 3)
	require.NoError(t, err)
	assert.True(t, updated.InStock)

	_, err = repo.SetStock(ctx, "0123456789abcdef01234567", 1)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestMemoryRepository_ConcurrentSetStock(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	laptop, err := repo.GetBySlug(ctx, "laptop")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(q int) {
			defer wg.Done()
			_, _ = repo.SetStock(ctx, laptop.ID, q)
			_, _ = repo.GetByID(ctx, laptop.ID)
		}(i)
	}
	wg.Wait()

	final, err := repo.GetByID(ctx, laptop.ID)
	require.NoError(t, err)
	assert.Equal(t, final.StockQuantity > 0, final.InStock)
}
