package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fjod/ecomart/notification-service/internal/domain"
	"github.com/segmentio/kafka-go"
)

const (
	TopicOrderPlaced = "order-placed"
	EventTypeHeader  = "event_type"
	EventOrderPlaced = "OrderPlaced"
)

type Publisher interface {
	PublishOrderPlaced(ctx context.Context, ev domain.OrderPlaced) error
	Close() error
}

// MessageWriter is satisfied by *kafka.Writer.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	writer MessageWriter
}

func NewKafkaPublisher(topic string, brokers ...string) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
		WriteTimeout:           5 * time.Second,
		RequiredAcks:           kafka.RequireOne,
	}
	return &KafkaPublisher{writer: w}
}

func NewKafkaPublisherWithWriter(w MessageWriter) *KafkaPublisher {
	return &KafkaPublisher{writer: w}
}

// PublishOrderPlaced keys messages by order id so redeliveries land on the
// same partition.
func (p *KafkaPublisher) PublishOrderPlaced(ctx context.Context, ev domain.OrderPlaced) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal order-placed: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(ev.OrderID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: EventTypeHeader, Value: []byte(EventOrderPlaced)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write order-placed %s: %w", ev.OrderID, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NopPublisher drops events. Used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) PublishOrderPlaced(context.Context, domain.OrderPlaced) error { return nil }
func (NopPublisher) Close() error                                                  { return nil }
