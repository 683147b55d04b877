package repository

import (
	"context"
	"errors"

	"github.com/fjod/ecomart/product-service/internal/domain"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrInvalidID       = errors.New("invalid product id")
)

type ProductRepository interface {
	List(ctx context.Context, filter domain.ListFilter) ([]domain.Product, int64, error)
	Featured(ctx context.Context, limit int) ([]domain.Product, error)
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Product, error)
	// SetStock overwrites stockQuantity and recomputes inStock in one
	// single-document write. There is no expected-version check.
	SetStock(ctx context.Context, id string, quantity int) (*domain.Product, error)
	Insert(ctx context.Context, p *domain.Product) error
}
