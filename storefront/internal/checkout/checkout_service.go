// Package checkout turns the guest cart into stock adjustments and an
// order confirmation email.
package checkout

import (
	"context"
	"fmt"
	"time"

	"github.com/fjod/ecomart/storefront/internal/api"
	"github.com/fjod/ecomart/storefront/internal/guestcart"
	"github.com/fjod/ecomart/storefront/internal/session"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DefaultCustomerName is used when the session carries no name.
const DefaultCustomerName = "Valued Customer"

type Cart interface {
	Items() []guestcart.Item
	Clear(ctx context.Context) error
}

type Sessions interface {
	Current() (session.Session, bool)
}

type StockUpdater interface {
	PatchStock(ctx context.Context, productID string, stockQuantity int) (*api.Product, error)
}

type Notifier interface {
	SendOrderEmail(ctx context.Context, e api.OrderEmail) error
}

type Options struct {
	Pricing Pricing
	// StepTimeout bounds each outbound call. Zero leaves it to the HTTP client.
	StepTimeout time.Duration
}

type Service struct {
	cart     Cart
	sessions Sessions
	stock    StockUpdater
	notifier Notifier
	log      zerolog.Logger
	opts     Options

	newOrderID func() (string, error)
	now        func() time.Time
}

func NewService(cart Cart, sessions Sessions, stock StockUpdater, notifier Notifier, log zerolog.Logger, opts Options) *Service {
	return &Service{
		cart:       cart,
		sessions:   sessions,
		stock:      stock,
		notifier:   notifier,
		log:        log,
		opts:       opts,
		newOrderID: newOrderID,
		now:        time.Now,
	}
}

func newOrderID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// Checkout places the order for the current cart. Stock patches and the
// email are best-effort: their failures land on the Result and the cart is
// still cleared. Only ErrEmptyCart, ErrAuthenticationRequired and
// *UnexpectedCheckoutError are returned, and in those cases the cart is
// untouched.
//
// Once past the pre-flight checks the calls are not cancelled with ctx.
func (s *Service) Checkout(ctx context.Context) (res *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error().Interface("panic", r).Msg("checkout aborted")
			res, err = nil, &UnexpectedCheckoutError{Stage: "checkout", Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	items := s.cart.Items()
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}
	sess, ok := s.sessions.Current()
	if !ok || sess.Token == "" || sess.Expired(s.now()) {
		return nil, ErrAuthenticationRequired
	}

	ctx = context.WithoutCancel(ctx)

	orderID, err := s.newOrderID()
	if err != nil {
		return nil, &UnexpectedCheckoutError{Stage: "order id", Err: err}
	}
	log := s.log.With().Str("order_id", orderID).Logger()
	res = &Result{OrderID: orderID}

	s.adjustStock(ctx, log, items, res)

	res.Totals = s.opts.Pricing.Totals(guestcart.Subtotal(items))
	s.sendConfirmation(ctx, log, sess, items, res)

	if err := s.cart.Clear(ctx); err != nil {
		return nil, &UnexpectedCheckoutError{Stage: "clear cart", Err: err}
	}

	log.Info().
		Int("adjusted", len(res.Adjusted)).
		Int("skipped", len(res.Skipped)).
		Int("failed", len(res.Failed)).
		Bool("email_sent", res.EmailSent).
		Str("total", res.Totals.Total.StringFixed(2)).
		Msg("checkout complete")
	return res, nil
}

func (s *Service) stepContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.opts.StepTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.opts.StepTimeout)
}
