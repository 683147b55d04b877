package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/fjod/ecomart/product-service/internal/domain"
	"github.com/fjod/ecomart/product-service/internal/repository"
	"github.com/rs/zerolog"
)

const (
	DefaultPageSize     = 12
	MaxPageSize         = 100
	DefaultFeaturedSize = 10
)

var (
	ErrNegativeStock = errors.New("stockQuantity must be a non-negative integer")
	ErrEmptyQuery    = errors.New("search query is required")
)

type CatalogService struct {
	repo repository.ProductRepository
	log  zerolog.Logger
}

func NewCatalogService(repo repository.ProductRepository, log zerolog.Logger) *CatalogService {
	return &CatalogService{repo: repo, log: log}
}

func (s *CatalogService) List(ctx context.Context, f domain.ListFilter) (*domain.ProductPage, error) {
	f.Page, f.Limit = normalizePage(f.Page, f.Limit)

	products, total, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return &domain.ProductPage{
		Products:   nonNil(products),
		Pagination: domain.NewPagination(f.Page, f.Limit, total),
	}, nil
}

func (s *CatalogService) Search(ctx context.Context, f domain.ListFilter) (*domain.ProductPage, error) {
	if f.Query == "" {
		return nil, ErrEmptyQuery
	}
	return s.List(ctx, f)
}

func (s *CatalogService) Featured(ctx context.Context, limit int) ([]domain.Product, error) {
	if limit <= 0 {
		limit = DefaultFeaturedSize
	}
	limit = min(limit, MaxPageSize)

	products, err := s.repo.Featured(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("featured products: %w", err)
	}
	return nonNil(products), nil
}

func (s *CatalogService) Get(ctx context.Context, id string) (*domain.Product, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *CatalogService) GetBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	return s.repo.GetBySlug(ctx, slug)
}

// UpdateStock overwrites the stock level of one product. Callers send the
// absolute value they computed; concurrent writers race and the last one wins.
func (s *CatalogService) UpdateStock(ctx context.Context, id string, quantity int) (*domain.Product, error) {
	if quantity < 0 {
		return nil, ErrNegativeStock
	}

	p, err := s.repo.SetStock(ctx, id, quantity)
	if err != nil {
		return nil, err
	}
	s.log.Info().
		Str("product_id", id).
		Int("stock_quantity", p.StockQuantity).
		Bool("in_stock", p.InStock).
		Msg("stock updated")
	return p, nil
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = DefaultPageSize
	}
	return page, min(limit, MaxPageSize)
}

func nonNil(ps []domain.Product) []domain.Product {
	if ps == nil {
		return []domain.Product{}
	}
	return ps
}
