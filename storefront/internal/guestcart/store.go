package guestcart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/fjod/ecomart/storefront/internal/storage"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// StorageKey is where the snapshot is kept.
const StorageKey = "guestCart"

type Store struct {
	mu          sync.Mutex
	storage     storage.Storage
	log         zerolog.Logger
	items       []Item
	initialized bool
	newID       func() string
}

func NewStore(s storage.Storage, log zerolog.Logger) *Store {
	return &Store{
		storage: s,
		log:     log,
		newID:   uuid.NewString,
	}
}

// Load reads the persisted snapshot. Only the first call touches storage;
// later writes by other processes are not picked up.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

func (s *Store) load(ctx context.Context) error {
	if s.initialized {
		return nil
	}

	raw, err := s.storage.Get(ctx, StorageKey)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		s.items = nil
	case err != nil:
		return fmt.Errorf("load guest cart: %w", err)
	default:
		var snap snapshot
		if err := json.Unmarshal(raw, &snap); err != nil {
			s.log.Warn().Err(err).Msg("guest cart snapshot is corrupt, starting empty")
			s.items = nil
		} else {
			s.items = snap.Items
		}
	}
	s.initialized = true
	return nil
}

// AddItem merges into the existing line for the product or appends a new
// one. A quantity below 1 counts as 1. Stock is not checked here.
func (s *Store) AddItem(ctx context.Context, p Product, quantity int) error {
	if quantity < 1 {
		quantity = 1
	}
	return s.mutate(ctx, func() bool {
		if i := slices.IndexFunc(s.items, func(it Item) bool { return it.ProductID == p.ID }); i >= 0 {
			s.items[i].Quantity += quantity
			return true
		}
		s.items = append(s.items, Item{
			ID:            s.newID(),
			ProductID:     p.ID,
			Slug:          p.Slug,
			Name:          p.Name,
			Price:         p.Price,
			Image:         p.Image,
			CategoryName:  p.CategoryName,
			Quantity:      quantity,
			StockQuantity: p.StockQuantity,
		})
		return true
	})
}

// UpdateQuantity ignores n < 1; removal goes through RemoveItem.
func (s *Store) UpdateQuantity(ctx context.Context, itemID string, n int) error {
	if n < 1 {
		return nil
	}
	return s.mutate(ctx, func() bool {
		i := s.index(itemID)
		if i < 0 {
			return false
		}
		s.items[i].Quantity = n
		return true
	})
}

func (s *Store) RemoveItem(ctx context.Context, itemID string) error {
	return s.mutate(ctx, func() bool {
		i := s.index(itemID)
		if i < 0 {
			return false
		}
		s.items = slices.Delete(s.items, i, i+1)
		return true
	})
}

// Clear empties the cart and erases the persisted key.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.storage.Delete(ctx, StorageKey); err != nil {
		return fmt.Errorf("clear guest cart: %w", err)
	}
	s.items = nil
	s.initialized = true
	return nil
}

func (s *Store) Items() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.items)
}

func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, it := range s.items {
		n += it.Quantity
	}
	return n
}

func (s *Store) Total() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Subtotal(s.items)
}

func (s *Store) IsEmpty() bool {
	return s.Count() == 0
}

// Subtotal sums price x quantity over items.
func Subtotal(items []Item) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.LineTotal())
	}
	return total
}

func (s *Store) index(itemID string) int {
	return slices.IndexFunc(s.items, func(it Item) bool { return it.ID == itemID })
}

// mutate applies fn and persists when fn reports a change. The in-memory
// state is rolled back if the write fails.
func (s *Store) mutate(ctx context.Context, fn func() bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.load(ctx); err != nil {
		return err
	}
	before := slices.Clone(s.items)
	if !fn() {
		return nil
	}
	if err := s.persist(ctx); err != nil {
		s.items = before
		return err
	}
	return nil
}

func (s *Store) persist(ctx context.Context) error {
	items := s.items
	if items == nil {
		items = []Item{}
	}
	raw, err := json.Marshal(snapshot{Items: items})
	if err != nil {
		return fmt.Errorf("encode guest cart: %w", err)
	}
	if err := s.storage.Set(ctx, StorageKey, raw); err != nil {
		return fmt.Errorf("save guest cart: %w", err)
	}
	return nil
}
