package checkout

import (
	"context"
	"errors"

	"github.com/fjod/ecomart/storefront/internal/api"
	"github.com/fjod/ecomart/storefront/internal/guestcart"
	"github.com/fjod/ecomart/storefront/internal/session"
)

type call struct {
	Kind      string
	ProductID string
	Stock     int
}

// recorder is shared by the fakes so tests can assert call order.
type recorder struct {
	calls []call
}

type fakeStock struct {
	rec  *recorder
	fail map[string]error
	ctxs []context.Context
}

func (f *fakeStock) PatchStock(ctx context.Context, productID string, stockQuantity int) (*api.Product, error) {
	f.rec.calls = append(f.rec.calls, call{Kind: "patch", ProductID: productID, Stock: stockQuantity})
	f.ctxs = append(f.ctxs, ctx)
	if err := f.fail[productID]; err != nil {
		return nil, err
	}
	return &api.Product{ID: productID, StockQuantity: stockQuantity, InStock: stockQuantity > 0}, nil
}

type fakeNotifier struct {
	rec   *recorder
	err   error
	sent  []api.OrderEmail
	panic bool
}

func (f *fakeNotifier) SendOrderEmail(_ context.Context, e api.OrderEmail) error {
	f.rec.calls = append(f.rec.calls, call{Kind: "email"})
	if f.panic {
		panic("template exploded")
	}
	f.sent = append(f.sent, e)
	return f.err
}

type fakeSessions struct {
	sess *session.Session
}

func (f fakeSessions) Current() (session.Session, bool) {
	if f.sess == nil {
		return session.Session{}, false
	}
	return *f.sess, true
}

// clearFailingCart wraps a real store but refuses to clear.
type clearFailingCart struct {
	*guestcart.Store
}

func (clearFailingCart) Clear(context.Context) error {
	return errors.New("storage is read-only")
}
