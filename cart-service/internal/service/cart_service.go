package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fjod/ecomart/cart-service/internal/cache"
	"github.com/fjod/ecomart/cart-service/internal/catalog"
	"github.com/fjod/ecomart/cart-service/internal/domain"
	"github.com/fjod/ecomart/cart-service/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

const (
	// enrichConcurrency bounds parallel catalog lookups for one cart.
	enrichConcurrency = 4
	// loadTimeout bounds a shared cart load, which outlives any one caller.
	loadTimeout  = 5 * time.Second
	cacheTimeout = time.Second
)

// ProductLookup is the catalog dependency of the cart.
type ProductLookup interface {
	GetProduct(ctx context.Context, productID string) (*domain.Product, error)
}

type CartService struct {
	repo    repository.CartRepository
	cache   cache.CartCache
	catalog ProductLookup
	log     zerolog.Logger
	sfg     singleflight.Group // Prevents cache stampede
	now     func() time.Time
}

func NewCartService(repo repository.CartRepository, cache cache.CartCache, catalog ProductLookup, log zerolog.Logger) *CartService {
	return &CartService{
		repo:    repo,
		cache:   cache,
		catalog: catalog,
		log:     log,
		now:     time.Now,
	}
}

// GetCart returns the user's cart joined with live product data. A user
// without a stored cart gets an empty one.
func (s *CartService) GetCart(ctx context.Context, userID string) (*domain.CartView, error) {
	cart, err := s.loadCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, cart)
}

// AddItem adds quantity of a product. When the product is already in the
// cart the quantities are summed and the sum is checked against stock.
func (s *CartService) AddItem(ctx context.Context, userID, productID string, quantity int) (*domain.CartView, error) {
	product, err := s.lookup(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !product.InStock {
		return nil, ErrOutOfStock
	}

	cart, err := s.repo.GetCart(ctx, userID)
	if errors.Is(err, repository.ErrCartNotFound) {
		cart = &domain.Cart{UserID: userID}
	} else if err != nil {
		return nil, err
	}

	if i, ok := cart.FindByProduct(productID); ok {
		total := cart.Items[i].Quantity + quantity
		if total > product.StockQuantity {
			return nil, &InsufficientStockError{Available: product.StockQuantity}
		}
		cart.Items[i].Quantity = total
	} else {
		if quantity > product.StockQuantity {
			return nil, &InsufficientStockError{Available: product.StockQuantity}
		}
		cart.Items = append(cart.Items, domain.CartItem{
			ID:        uuid.NewString(),
			ProductID: productID,
			Quantity:  quantity,
			AddedAt:   s.now(),
		})
	}

	return s.commit(ctx, cart, s.save)
}

// UpdateQuantity sets a line's quantity. Zero removes the line.
func (s *CartService) UpdateQuantity(ctx context.Context, userID, itemID string, quantity int) (*domain.CartView, error) {
	cart, err := s.repo.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	i, ok := cart.FindItem(itemID)
	if !ok {
		return nil, repository.ErrItemNotFound
	}

	if quantity == 0 {
		cart.RemoveAt(i)
	} else {
		product, err := s.lookup(ctx, cart.Items[i].ProductID)
		if err != nil {
			return nil, err
		}
		if quantity > product.StockQuantity {
			return nil, &InsufficientStockError{Available: product.StockQuantity}
		}
		cart.Items[i].Quantity = quantity
	}

	return s.commit(ctx, cart, s.save)
}

func (s *CartService) RemoveItem(ctx context.Context, userID, itemID string) (*domain.CartView, error) {
	cart, err := s.repo.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	i, ok := cart.FindItem(itemID)
	if !ok {
		return nil, repository.ErrItemNotFound
	}
	cart.RemoveAt(i)

	return s.commit(ctx, cart, func(ctx context.Context, cart *domain.Cart) error {
		if err := s.repo.RemoveItem(ctx, userID, itemID); err != nil {
			s.log.Warn().Err(err).Str("user_id", userID).Str("item_id", itemID).Msg("repo remove item failed")
			return err
		}
		cart.UpdatedAt = s.now()
		s.refreshCache(ctx, cart)
		return nil
	})
}

// ClearCart always succeeds for a missing cart.
func (s *CartService) ClearCart(ctx context.Context, userID string) (*domain.CartView, error) {
	err := s.repo.DeleteCart(ctx, userID)
	if err != nil && !errors.Is(err, repository.ErrCartNotFound) {
		s.log.Error().Err(err).Str("user_id", userID).Msg("repo delete cart failed")
		return nil, err
	}
	s.refreshCache(ctx, &domain.Cart{UserID: userID, UpdatedAt: s.now()})
	return domain.NewCartView(nil), nil
}

// commit enriches the mutated cart before persisting it. The stored cart
// only changes once the response can be built.
func (s *CartService) commit(ctx context.Context, cart *domain.Cart, persist func(context.Context, *domain.Cart) error) (*domain.CartView, error) {
	view, err := s.view(ctx, cart)
	if err != nil {
		return nil, err
	}
	if err := persist(ctx, cart); err != nil {
		return nil, err
	}
	return view, nil
}

func (s *CartService) loadCart(ctx context.Context, userID string) (*domain.Cart, error) {
	// Use singleflight to prevent multiple concurrent cache misses for same key
	v, err, _ := s.sfg.Do(userID, func() (interface{}, error) {
		// joined callers must not fail because the first one went away
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), loadTimeout)
		defer cancel()

		cart, err := s.cache.Get(loadCtx, userID)
		if err == nil {
			return cart, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.log.Warn().Err(err).Str("user_id", userID).Msg("cache get failed")
		}

		cart, err = s.repo.GetCart(loadCtx, userID)
		if errors.Is(err, repository.ErrCartNotFound) {
			now := s.now()
			return &domain.Cart{UserID: userID, CreatedAt: now, UpdatedAt: now}, nil
		}
		if err != nil {
			return nil, err
		}

		if err := s.cache.Fill(loadCtx, userID, cart); err != nil {
			s.log.Warn().Err(err).Str("user_id", userID).Msg("cache fill failed")
		}
		return cart, nil
	})
	if err != nil {
		return nil, err
	}

	// singleflight callers share the pointer; hand each one its own copy.
	shared := v.(*domain.Cart)
	cart := *shared
	cart.Items = append([]domain.CartItem(nil), shared.Items...)
	return &cart, nil
}

func (s *CartService) save(ctx context.Context, cart *domain.Cart) error {
	cart.UpdatedAt = s.now()
	if err := s.repo.UpsertCart(ctx, cart); err != nil {
		s.log.Error().Err(err).Str("user_id", cart.UserID).Msg("repo upsert cart failed")
		return err
	}
	s.refreshCache(ctx, cart)
	return nil
}

func (s *CartService) lookup(ctx context.Context, productID string) (*domain.Product, error) {
	p, err := s.catalog.GetProduct(ctx, productID)
	if errors.Is(err, catalog.ErrProductNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lookup product %s: %w", productID, err)
	}
	return p, nil
}

// view joins stored lines with the catalog. Lines whose product has been
// deleted are dropped from the response but stay in storage.
func (s *CartService) view(ctx context.Context, cart *domain.Cart) (*domain.CartView, error) {
	lines := make([]*domain.CartLine, len(cart.Items))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(enrichConcurrency)
	for i, item := range cart.Items {
		g.Go(func() error {
			p, err := s.catalog.GetProduct(gctx, item.ProductID)
			if errors.Is(err, catalog.ErrProductNotFound) {
				s.log.Warn().Str("product_id", item.ProductID).Str("user_id", cart.UserID).Msg("cart references missing product")
				return nil
			}
			if err != nil {
				return fmt.Errorf("lookup product %s: %w", item.ProductID, err)
			}
			lines[i] = &domain.CartLine{
				ID:            item.ID,
				ProductID:     item.ProductID,
				Quantity:      item.Quantity,
				Name:          p.Name,
				Price:         p.Price,
				Image:         p.Image,
				InStock:       p.InStock,
				StockQuantity: p.StockQuantity,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]domain.CartLine, 0, len(lines))
	for _, l := range lines {
		if l != nil {
			out = append(out, *l)
		}
	}
	return domain.NewCartView(out), nil
}

// refreshCache writes the stored cart through to the cache. Loads already
// in flight are forgotten so later readers start from the repository. If
// the write fails the entry is dropped instead.
func (s *CartService) refreshCache(ctx context.Context, cart *domain.Cart) {
	s.sfg.Forget(cart.UserID)

	cacheCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cacheTimeout)
	defer cancel()
	err := s.cache.Set(cacheCtx, cart.UserID, cart)
	if err == nil {
		return
	}
	s.log.Warn().Err(err).Str("user_id", cart.UserID).Msg("cache write-through failed")
	if err := s.cache.Delete(cacheCtx, cart.UserID); err != nil {
		s.log.Warn().Err(err).Str("user_id", cart.UserID).Msg("cache invalidate failed")
	}
}
