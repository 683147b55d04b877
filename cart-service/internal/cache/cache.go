package cache

import (
	"context"
	"errors"

	"github.com/fjod/ecomart/cart-service/internal/domain"
)

// CartCache holds whole carts. Set is the write-through after a mutation and
// never replaces a newer entry; Fill stores a freshly read cart only when no
// entry exists, so a slow read cannot overwrite a later write.
type CartCache interface {
	Get(ctx context.Context, userID string) (*domain.Cart, error)
	Set(ctx context.Context, userID string, cart *domain.Cart) error
	Fill(ctx context.Context, userID string, cart *domain.Cart) error
	Delete(ctx context.Context, userID string) error
}

var ErrCacheMiss = errors.New("cache miss")
