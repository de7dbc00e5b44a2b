package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"overcooked-pos/pos-svc/internal/domain"

	"github.com/segmentio/kafka-go"
)

type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// DefaultPublishTimeout bounds one event write so a stalled broker cannot
// hold up the request that committed the event.
const DefaultPublishTimeout = 250 * time.Millisecond

// KafkaPublisher mirrors committed domain events to the events topic for
// downstream consumers. Messages are keyed by tenant to keep per-tenant order.
type KafkaPublisher struct {
	Writer  MessageWriter
	Timeout time.Duration
}

func NewKafkaPublisher(writer MessageWriter) *KafkaPublisher {
	return &KafkaPublisher{Writer: writer, Timeout: DefaultPublishTimeout}
}

func (p *KafkaPublisher) Publish(ctx context.Context, tenantID string, event domain.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event %s: %w", event.Name, err)
	}
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = DefaultPublishTimeout
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	return p.Writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(tenantID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event", Value: []byte(event.Name)},
		},
	})
}
