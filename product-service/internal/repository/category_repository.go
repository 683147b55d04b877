package repository

import (
	"context"
	"errors"

	"github.com/fjod/ecomart/product-service/internal/domain"
)

var (
	ErrCategoryNotFound  = errors.New("category not found")
	ErrInvalidCategoryID = errors.New("invalid category id")
)

type CategoryRepository interface {
	// List returns categories newest first. A nil featured lists all of them.
	List(ctx context.Context, featured *bool) ([]domain.Category, error)
	GetByID(ctx context.Context, id string) (*domain.Category, error)
	Insert(ctx context.Context, c *domain.Category) error
}
