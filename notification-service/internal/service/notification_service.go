package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fjod/ecomart/notification-service/internal/domain"
	"github.com/fjod/ecomart/notification-service/internal/events"
	"github.com/fjod/ecomart/notification-service/internal/mailer"
	"github.com/rs/zerolog"
)

const publishTimeout = 5 * time.Second

type Renderer interface {
	Render(e domain.OrderEmail) (mailer.Message, error)
}

type NotificationService struct {
	renderer  Renderer
	mailer    mailer.Mailer
	publisher events.Publisher
	log       zerolog.Logger
	now       func() time.Time
	pending   sync.WaitGroup
}

func NewNotificationService(r Renderer, m mailer.Mailer, p events.Publisher, log zerolog.Logger) *NotificationService {
	return &NotificationService{
		renderer:  r,
		mailer:    m,
		publisher: p,
		log:       log,
		now:       time.Now,
	}
}

// SendOrderEmail validates, renders and sends one confirmation. There is
// no retry. The order-placed event is published in the background whether
// or not the send succeeded, so the reply never waits on the broker; a
// publish failure is only logged.
func (s *NotificationService) SendOrderEmail(ctx context.Context, e domain.OrderEmail) error {
	if err := e.Validate(); err != nil {
		return err
	}

	msg, err := s.renderer.Render(e)
	if err != nil {
		return fmt.Errorf("render order %s: %w", e.OrderID, err)
	}

	sendErr := s.mailer.Send(ctx, msg)
	if sendErr != nil {
		s.log.Error().Err(sendErr).Str("order_id", e.OrderID).Str("to", e.To).Msg("order email failed")
	} else {
		s.log.Info().Str("order_id", e.OrderID).Str("to", e.To).Msg("order email sent")
	}

	ev := domain.NewOrderPlaced(e, sendErr == nil, s.now().UTC())
	pubCtx := context.WithoutCancel(ctx)
	s.pending.Go(func() { s.publish(pubCtx, ev) })
	return sendErr
}

// Wait blocks until every background publish has finished.
func (s *NotificationService) Wait() {
	s.pending.Wait()
}

func (s *NotificationService) publish(ctx context.Context, ev domain.OrderPlaced) {
	pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	if err := s.publisher.PublishOrderPlaced(pubCtx, ev); err != nil {
		s.log.Warn().Err(err).Str("order_id", ev.OrderID).Msg("order-placed publish failed")
	}
}
