package service

import (
	"context"
	"fmt"

	"github.com/fjod/ecomart/product-service/internal/domain"
	"github.com/fjod/ecomart/product-service/internal/repository"
)

// DefaultCategoryPageSize is the page size of a category's product listing.
const DefaultCategoryPageSize = 20

type CategoryService struct {
	categories repository.CategoryRepository
	products   repository.ProductRepository
}

func NewCategoryService(categories repository.CategoryRepository, products repository.ProductRepository) *CategoryService {
	return &CategoryService{categories: categories, products: products}
}

func (s *CategoryService) List(ctx context.Context, featuredOnly bool) ([]domain.Category, error) {
	var featured *bool
	if featuredOnly {
		featured = &featuredOnly
	}
	categories, err := s.categories.List(ctx, featured)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	if categories == nil {
		categories = []domain.Category{}
	}
	return categories, nil
}

func (s *CategoryService) Get(ctx context.Context, id string) (*domain.Category, error) {
	return s.categories.GetByID(ctx, id)
}

// Products lists the products filed under category id. Only the sort and
// paging fields of f are used.
func (s *CategoryService) Products(ctx context.Context, id string, f domain.ListFilter) (*domain.CategoryProductPage, error) {
	category, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if f.Limit <= 0 {
		f.Limit = DefaultCategoryPageSize
	}
	page, limit := normalizePage(f.Page, f.Limit)
	filter := domain.ListFilter{
		Category: category.ID,
		Sort:     f.Sort,
		Desc:     f.Desc,
		Page:     page,
		Limit:    limit,
	}

	products, total, err := s.products.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list category products: %w", err)
	}
	return &domain.CategoryProductPage{
		Category:   category.Summary(),
		Products:   nonNil(products),
		Pagination: domain.NewPagination(page, limit, total),
	}, nil
}
