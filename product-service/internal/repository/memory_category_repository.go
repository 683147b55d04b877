package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/fjod/ecomart/product-service/internal/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type MemoryCategoryRepository struct {
	mu         sync.RWMutex
	categories map[string]domain.Category
	order      []string
}

func NewMemoryCategoryRepository() *MemoryCategoryRepository {
	return &MemoryCategoryRepository{categories: make(map[string]domain.Category)}
}

func (s *MemoryCategoryRepository) List(_ context.Context, featured *bool) ([]domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Category, 0, len(s.order))
	for _, id := range s.order {
		c := s.categories[id]
		if featured != nil && c.Featured != *featured {
			continue
		}
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *MemoryCategoryRepository) GetByID(_ context.Context, id string) (*domain.Category, error) {
	if !primitive.IsValidObjectID(id) {
		return nil, ErrInvalidCategoryID
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.categories[id]
	if !ok {
		return nil, ErrCategoryNotFound
	}
	return &c, nil
}

func (s *MemoryCategoryRepository) Insert(_ context.Context, c *domain.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.ID == "" {
		c.ID = primitive.NewObjectID().Hex()
	} else if !primitive.IsValidObjectID(c.ID) {
		return ErrInvalidCategoryID
	}
	now := time.Now()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now

	if _, exists := s.categories[c.ID]; !exists {
		s.order = append(s.order, c.ID)
	}
	s.categories[c.ID] = *c
	return nil
}
