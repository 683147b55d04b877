package checkout

import (
	"context"

	"github.com/fjod/ecomart/storefront/internal/api"
	"github.com/fjod/ecomart/storefront/internal/guestcart"
	"github.com/fjod/ecomart/storefront/internal/session"
	"github.com/rs/zerolog"
)

// sendConfirmation makes the single email call for the order. Its failure
// is recorded and logged only.
func (s *Service) sendConfirmation(ctx context.Context, log zerolog.Logger, sess session.Session, items []guestcart.Item, res *Result) {
	email := orderEmail(sess, res.OrderID, items, res.Totals)

	stepCtx, cancel := s.stepContext(ctx)
	defer cancel()

	if err := s.notifier.SendOrderEmail(stepCtx, email); err != nil {
		log.Error().Err(err).Str("to", email.To).Msg("order confirmation email failed")
		res.Notification = &NotificationDispatchError{OrderID: res.OrderID, Err: err}
		return
	}
	res.EmailSent = true
}

func orderEmail(sess session.Session, orderID string, items []guestcart.Item, totals Totals) api.OrderEmail {
	name := sess.Name
	if name == "" {
		name = DefaultCustomerName
	}
	lines := make([]api.OrderLine, len(items))
	for i, it := range items {
		lines[i] = api.OrderLine{Name: it.Name, Quantity: it.Quantity, Price: it.Price}
	}
	return api.OrderEmail{
		To:           sess.Email,
		CustomerName: name,
		OrderID:      orderID,
		TotalAmount:  totals.Total,
		Items:        lines,
	}
}
