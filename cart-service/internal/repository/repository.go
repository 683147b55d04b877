package repository

import (
	"context"
	"errors"

	"github.com/fjod/ecomart/cart-service/internal/domain"
)

var (
	ErrCartNotFound = errors.New("cart not found")
	ErrItemNotFound = errors.New("item not found in cart")
)

// CartRepository defines the interface for cart data operations
// Consumers define this interface, not the MongoDB implementation
type CartRepository interface {
	GetCart(ctx context.Context, userID string) (*domain.Cart, error)
	// UpsertCart replaces the whole document. There is no version check, so
	// concurrent writers for one user can lose updates.
	UpsertCart(ctx context.Context, cart *domain.Cart) error
	RemoveItem(ctx context.Context, userID, itemID string) error
	DeleteCart(ctx context.Context, userID string) error
}
