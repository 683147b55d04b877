package repository

import (
	"context"
	"testing"
	"time"

	"github.com/fjod/ecomart/cart-service/internal/domain"
	"github.com/fjod/ecomart/pkg/mongodb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcmongo "github.com/testcontainers/testcontainers-go/modules/mongodb"
)

func setupTestDB(t *testing.T) (CartRepository, func()) {
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

	repo := NewMongoRepository(db)
	require.NoError(t, repo.(IndexCreator).CreateIndexes(ctx))

	cleanup := func() {
		_ = mongodb.Disconnect(db)
		if err := mongoContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}

	return repo, cleanup
}

func newCart(userID string, items ...domain.CartItem) *domain.Cart {
	return &domain.Cart{UserID: userID, Items: items}
}

func TestGetCart_NotFound(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	cart, err := repo.GetCart(context.Background(), "nonexistent")

	assert.ErrorIs(t, err, ErrCartNotFound)
	assert.Nil(t, cart)
}

func TestUpsertCart_CreatesAndReplaces(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()
	userID := "user123"

	err := repo.UpsertCart(ctx, newCart(userID, domain.CartItem{ID: "i1", ProductID: "p1", Quantity: 3, AddedAt: time.Now()}))
	require.NoError(t, err)

	cart, err := repo.GetCart(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, userID, cart.UserID)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, "p1", cart.Items[0].ProductID)
	assert.Equal(t, 3, cart.Items[0].Quantity)
	created := cart.CreatedAt

	cart.Items[0].Quantity = 5
	cart.Items = append(cart.Items, domain.CartItem{ID: "i2", ProductID: "p2", Quantity: 1})
	require.NoError(t, repo.UpsertCart(ctx, cart))

	cart, err = repo.GetCart(ctx, userID)
	require.NoError(t, err)
	require.Len(t, cart.Items, 2)
	assert.Equal(t, 5, cart.Items[0].Quantity)
	assert.WithinDuration(t, created, cart.CreatedAt, time.Millisecond)
}

func TestRemoveItem(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()
	userID := "user123"

	require.NoError(t, repo.UpsertCart(ctx, newCart(userID,
		domain.CartItem{ID: "i1", ProductID: "p1", Quantity: 1},
		domain.CartItem{ID: "i2", ProductID: "p2", Quantity: 2},
	)))

	require.NoError(t, repo.RemoveItem(ctx, userID, "i1"))

	cart, err := repo.GetCart(ctx, userID)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, "i2", cart.Items[0].ID)

	assert.ErrorIs(t, repo.RemoveItem(ctx, userID, "i1"), ErrItemNotFound)
	assert.ErrorIs(t, repo.RemoveItem(ctx, "other", "i2"), ErrItemNotFound)
}

func TestDeleteCart(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, repo.UpsertCart(ctx, newCart("user123", domain.CartItem{ID: "i1", ProductID: "p1", Quantity: 1})))
	require.NoError(t, repo.DeleteCart(ctx, "user123"))

	_, err := repo.GetCart(ctx, "user123")
	assert.ErrorIs(t, err, ErrCartNotFound)
	assert.ErrorIs(t, repo.DeleteCart(ctx, "user123"), ErrCartNotFound)
}

func TestUniqueUserIndex(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, repo.UpsertCart(ctx, newCart("user123")))
	require.NoError(t, repo.UpsertCart(ctx, newCart("user123")))

	cart, err := repo.GetCart(ctx, "user123")
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
}
