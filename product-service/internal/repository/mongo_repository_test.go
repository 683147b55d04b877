package repository

import (
	"context"
	"testing"

	"github.com/fjod/ecomart/pkg/mongodb"
	"github.com/fjod/ecomart/product-service/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcmongo "github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/mongo"
)

func setupMongo(t *testing.T) (*mongo.Database, func()) {
	if testing.Short() {
		t.Skip("skipping MongoDB container test in short mode")
	}
	ctx := context.Background()

	mongoContainer, err := tcmongo.Run(ctx, "mongo:7")
	require.NoError(t, err)

	uri, err := mongoContainer.ConnectionString(ctx)
	require.NoError(t, err)

	db, err := mongodb.Connect(ctx, mongodb.Options{URI: uri, Database: "testdb"})
	require.NoError(t, err)

	cleanup := func() {
		_ = mongodb.Disconnect(db)
		if err := mongoContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}
	return db, cleanup
}

func setupTestDB(t *testing.T) (*MongoRepository, func()) {
	db, cleanup := setupMongo(t)
	repo := NewMongoRepository(db)
	require.NoError(t, repo.CreateIndexes(context.Background()))
	return repo, cleanup
}

func TestMongoRepository_InsertAndGet(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	p := &domain.Product{Slug: "laptop", Name: "Laptop", Price: decimal.RequireFromString("999.99"), StockQuantity: 2}
	require.NoError(t, repo.Insert(ctx, p))
	require.Len(t, p.ID, 24)

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Laptop", got.Name)
	assert.True(t, got.Price.Equal(decimal.RequireFromString("999.99")))
	assert.True(t, got.InStock)

	got, err = repo.GetBySlug(ctx, "laptop")
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)

	_, err = repo.GetBySlug(ctx, "nope")
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestMongoRepository_ListWithPriceRange(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	for _, p := range []*domain.Product{
		{Slug: "a", Name: "Cable", Price: decimal.RequireFromString("9.99"), StockQuantity: 1, Category: "acc"},
		{Slug: "b", Name: "Mouse", Price: decimal.RequireFromString("25.00"), StockQuantity: 1, Category: "acc"},
		{Slug: "c", Name: "Monitor", Price: decimal.RequireFromString("300"), StockQuantity: 0, Category: "screens"},
	} {
		require.NoError(t, repo.Insert(ctx, p))
	}

	minPrice := decimal.NewFromInt(10)
	products, total, err := repo.List(ctx, domain.ListFilter{MinPrice: &minPrice, Sort: domain.SortPrice, Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, products, 2)
	assert.Equal(t, "b", products[0].Slug)

	products, _, err = repo.List(ctx, domain.ListFilter{Query: "mon", Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "c", products[0].Slug)
}

func TestMongoRepository_SetStock(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	p := &domain.Product{Slug: "laptop", Name: "Laptop", Price: decimal.NewFromInt(1), StockQuantity: 2}
	require.NoError(t, repo.Insert(ctx, p))

	updated, err := repo.SetStock(ctx, p.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, updated.StockQuantity)
	assert.False(t, updated.InStock)

	_, err = repo.SetStock(ctx, "bad", 1)
	assert.ErrorIs(t, err, ErrInvalidID)

	_, err = repo.SetStock(ctx, "0123456789abcdef01234567", 1)
	assert.ErrorIs(t, err, ErrProductNotFound)
}
