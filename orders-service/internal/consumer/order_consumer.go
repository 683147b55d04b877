package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fjod/ecomart/orders-service/internal/domain"
	"github.com/fjod/ecomart/orders-service/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
)

const (
	TopicOrderPlaced = "order-placed"
	GroupID          = "orders-service"
)

// eventItem mirrors the item shape notification-service publishes.
type eventItem struct {
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

type OrderPlacedEvent struct {
	OrderID       string          `json:"orderId"`
	CustomerEmail string          `json:"customerEmail"`
	CustomerName  string          `json:"customerName"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	Currency      string          `json:"currency"`
	Items         []eventItem     `json:"items"`
	EmailSent     bool            `json:"emailSent"`
	PlacedAt      time.Time       `json:"placedAt"`
}

// MessageReader is satisfied by *kafka.Reader. Offsets are committed
// explicitly, only once a message is settled.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

const commitTimeout = 5 * time.Second

type Consumer struct {
	repo   repository.OrderRepository
	reader MessageReader
	log    zerolog.Logger
	// backoff is the pause after a read or write error so a dead broker or
	// database is not spun on.
	backoff time.Duration
}

func NewConsumer(repo repository.OrderRepository, log zerolog.Logger, topic string, brokers ...string) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  GroupID,
		MaxBytes: 10e6, // 10MB
	})
	return NewConsumerWithReader(repo, reader, log)
}

func NewConsumerWithReader(repo repository.OrderRepository, reader MessageReader, log zerolog.Logger) *Consumer {
	return &Consumer{repo: repo, reader: reader, log: log, backoff: time.Second}
}

func (c *Consumer) Run(ctx context.Context) {
	for ctx.Err() == nil {
		c.processMessage(ctx)
	}
}

func (c *Consumer) Close() {
	if err := c.reader.Close(); err != nil {
		c.log.Error().Err(err).Msg("error closing kafka reader")
	}
}

func (c *Consumer) processMessage(ctx context.Context) {
	m, err := c.reader.FetchMessage(ctx)
	if err != nil {
		if ctx.Err() != nil || errors.Is(err, context.Canceled) {
			return
		}
		c.log.Error().Err(err).Msg("error reading message")
		c.wait(ctx)
		return
	}

	if !c.handle(ctx, m) {
		return
	}

	commitCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), commitTimeout)
	defer cancel()
	if err := c.reader.CommitMessages(commitCtx, m); err != nil {
		c.log.Error().Err(err).Int64("offset", m.Offset).Int("partition", m.Partition).Msg("failed to commit offset")
	}
}

// handle reports whether m is settled: recorded, already recorded or
// malformed. A failing write is retried until it succeeds or ctx ends, and
// an unsettled message is never committed.
func (c *Consumer) handle(ctx context.Context, m kafka.Message) bool {
	order, err := toOrder(m.Value)
	if err != nil {
		c.log.Warn().Err(err).Int64("offset", m.Offset).Int("partition", m.Partition).Msg("dropping malformed order event")
		return true
	}

	for {
		err := c.repo.CreateOrder(ctx, order)
		if err == nil {
			c.log.Info().Str("order_id", order.ID.String()).Str("order_ref", order.OrderRef).Msg("order recorded")
			return true
		}
		if errors.Is(err, repository.ErrDuplicateOrder) {
			c.log.Info().Str("order_ref", order.OrderRef).Msg("order already recorded, skipping")
			return true
		}
		c.log.Error().Err(err).Str("order_ref", order.OrderRef).Msg("failed to record order, retrying")
		if !c.wait(ctx) {
			return false
		}
	}
}

// wait sleeps for the backoff and reports false if ctx ended first.
func (c *Consumer) wait(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(c.backoff):
		return true
	}
}

func toOrder(payload []byte) (*domain.Order, error) {
	var event OrderPlacedEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("parse event: %w", err)
	}
	if strings.TrimSpace(event.OrderID) == "" {
		return nil, errors.New("event has no orderId")
	}
	if strings.TrimSpace(event.CustomerEmail) == "" {
		return nil, errors.New("event has no customerEmail")
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generate order id: %w", err)
	}

	currency := event.Currency
	if currency == "" {
		currency = "INR"
	}
	placedAt := event.PlacedAt
	if placedAt.IsZero() {
		placedAt = time.Now().UTC()
	}

	items := make([]domain.OrderItem, len(event.Items))
	for i, item := range event.Items {
		items[i] = domain.OrderItem{
			Name:     item.Name,
			Quantity: item.Quantity,
			Price:    item.Price,
		}
	}

	return &domain.Order{
		ID:            id,
		OrderRef:      event.OrderID,
		CustomerEmail: strings.ToLower(event.CustomerEmail),
		CustomerName:  event.CustomerName,
		TotalAmount:   event.TotalAmount,
		Currency:      currency,
		Status:        domain.OrderStatusPending,
		EmailSent:     event.EmailSent,
		Items:         items,
		PlacedAt:      placedAt,
	}, nil
}
