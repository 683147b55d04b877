package repository

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fjod/ecomart/product-service/internal/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryRepository implements ProductRepository with in-memory storage. It
// backs local development and the handler tests.
type MemoryRepository struct {
	mu       sync.RWMutex
	products map[string]*domain.Product // id -> product
	order    []string                   // insertion order
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		products: make(map[string]*domain.Product),
	}
}

func (s *MemoryRepository) List(_ context.Context, f domain.ListFilter) ([]domain.Product, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]domain.Product, 0, len(s.order))
	for _, id := range s.order {
		p := s.products[id]
		if matches(p, f) {
			matched = append(matched, clone(p))
		}
	}

	sortProducts(matched, f.Sort, f.Desc)

	total := int64(len(matched))
	start := min(int(f.Skip()), len(matched))
	end := len(matched)
	if f.Limit > 0 {
		end = min(start+f.Limit, len(matched))
	}
	return matched[start:end], total, nil
}

func (s *MemoryRepository) Featured(_ context.Context, limit int) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var featured []domain.Product
	for _, id := range s.order {
		if p := s.products[id]; p.Featured {
			featured = append(featured, clone(p))
		}
	}
	sortProducts(featured, domain.SortCreatedAt, true)
	if limit > 0 && len(featured) > limit {
		featured = featured[:limit]
	}
	return featured, nil
}

func (s *MemoryRepository) GetByID(_ context.Context, id string) (*domain.Product, error) {
	if !primitive.IsValidObjectID(id) {
		return nil, ErrInvalidID
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	p, exists := s.products[id]
	if !exists {
		return nil, ErrProductNotFound
	}
	c := clone(p)
	return &c, nil
}

func (s *MemoryRepository) GetBySlug(_ context.Context, slug string) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.products {
		if p.Slug == slug {
			c := clone(p)
			return &c, nil
		}
	}
	return nil, ErrProductNotFound
}

func (s *MemoryRepository) SetStock(_ context.Context, id string, quantity int) (*domain.Product, error) {
	if !primitive.IsValidObjectID(id) {
		return nil, ErrInvalidID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, exists := s.products[id]
	if !exists {
		return nil, ErrProductNotFound
	}
	p.SetStock(quantity, time.Now())
	c := clone(p)
	return &c, nil
}

func (s *MemoryRepository) Insert(_ context.Context, p *domain.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.ID == "" {
		p.ID = primitive.NewObjectID().Hex()
	} else if !primitive.IsValidObjectID(p.ID) {
		return ErrInvalidID
	}
	now := time.Now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.SetStock(p.StockQuantity, now)

	c := clone(p)
	if _, exists := s.products[p.ID]; !exists {
		s.order = append(s.order, p.ID)
	}
	s.products[p.ID] = &c
	return nil
}

func matches(p *domain.Product, f domain.ListFilter) bool {
	if f.Category != "" && p.Category != f.Category {
		return false
	}
	if f.Featured != nil && p.Featured != *f.Featured {
		return false
	}
	if f.InStock != nil && p.InStock != *f.InStock {
		return false
	}
	if f.MinPrice != nil && p.Price.LessThan(*f.MinPrice) {
		return false
	}
	if f.MaxPrice != nil && p.Price.GreaterThan(*f.MaxPrice) {
		return false
	}
	if f.Query != "" {
		q := strings.ToLower(f.Query)
		hit := strings.Contains(strings.ToLower(p.Name), q) ||
			strings.Contains(strings.ToLower(p.CategoryName), q) ||
			strings.Contains(strings.ToLower(p.Description), q) ||
			slices.ContainsFunc(p.Tags, func(t string) bool { return strings.Contains(strings.ToLower(t), q) })
		if !hit {
			return false
		}
	}
	return true
}

func sortProducts(ps []domain.Product, field domain.SortField, desc bool) {
	less := func(a, b domain.Product) bool {
		switch field {
		case domain.SortPrice:
			return a.Price.LessThan(b.Price)
		case domain.SortName:
			return a.Name < b.Name
		case domain.SortRating:
			return a.Rating < b.Rating
		default:
			return a.CreatedAt.Before(b.CreatedAt)
		}
	}
	sort.SliceStable(ps, func(i, j int) bool {
		if desc {
			return less(ps[j], ps[i])
		}
		return less(ps[i], ps[j])
	})
}

func clone(p *domain.Product) domain.Product {
	c := *p
	c.Tags = slices.Clone(p.Tags)
	if p.CompareAtPrice != nil {
		v := *p.CompareAtPrice
		c.CompareAtPrice = &v
	}
	return c
}
