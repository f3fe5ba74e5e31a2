// Package events publishes purchase order lifecycle notifications.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
)

// Type names a lifecycle event.
type Type string

const (
	OrderCreated  Type = "purchase_order.created"
	OrderReceived Type = "purchase_order.received"
)

// Event is the JSON payload written to the topic.
type Event struct {
	Type          Type      `json:"type"`
	OrderID       int       `json:"order_id"`
	ProductID     int       `json:"product_id"`
	WarehouseID   int       `json:"warehouse_id"`
	Quantity      int       `json:"quantity"`
	CapacityIssue bool      `json:"capacity_issue"`
	Trigger       string    `json:"trigger,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// Publisher delivers events after the state change they describe has committed.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// NopPublisher discards events. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
func (NopPublisher) Close() error                         { return nil }

// Limits on a single Publish; it runs on the request path after commit.
const (
	publishTimeout  = 2 * time.Second
	publishAttempts = 2
	brokerIOTimeout = time.Second
)

// KafkaPublisher writes events to a Kafka topic keyed by order ID, so all
// events for one order land on the same partition in order.
type KafkaPublisher struct {
	writer *kafka.Writer
}

// NewKafkaPublisher creates a publisher for the given brokers and topic.
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			BatchTimeout: 10 * time.Millisecond,
			RequiredAcks: kafka.RequireOne,
			MaxAttempts:  publishAttempts,
			WriteTimeout: brokerIOTimeout,
			ReadTimeout:  brokerIOTimeout,
		},
	}
}

// Publish serializes e and writes it synchronously, giving up after publishTimeout.
func (p *KafkaPublisher) Publish(ctx context.Context, e Event) error {
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", e.Type, err)
	}
	msg := kafka.Message{
		Key:   []byte(strconv.Itoa(e.OrderID)),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(e.Type)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write %s event for order %d: %w", e.Type, e.OrderID, err)
	}
	return nil
}

// Close flushes pending writes and releases the connection.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
