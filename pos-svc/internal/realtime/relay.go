package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"overcooked-pos/pos-svc/internal/domain"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const channelPrefix = "pos:events:"

func channelFor(tenantID string) string {
	return channelPrefix + tenantID
}

type envelope struct {
	Origin string          `json:"origin"`
	Event  json.RawMessage `json:"event"`
}

// Relay carries events between instances over Redis pub/sub. Each instance
// delivers its own events to its hub directly and ignores its own echoes.
type Relay struct {
	Client *redis.Client
	Hub    *Hub
	Logger *zap.Logger
	origin string
}

func NewRelay(client *redis.Client, hub *Hub, logger *zap.Logger) *Relay {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Relay{Client: client, Hub: hub, Logger: logger, origin: uuid.NewString()}
}

func (r *Relay) Publish(ctx context.Context, tenantID string, event domain.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event %s: %w", event.Name, err)
	}
	msg, err := json.Marshal(envelope{Origin: r.origin, Event: data})
	if err != nil {
		return err
	}
	return r.Client.Publish(ctx, channelFor(tenantID), msg).Err()
}

// Run forwards events published by other instances to the local hub until
// ctx is cancelled.
func (r *Relay) Run(ctx context.Context) error {
	sub := r.Client.PSubscribe(ctx, channelPrefix+"*")
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s*: %w", channelPrefix, err)
	}
	r.Logger.Info("event relay subscribed", zap.String("pattern", channelPrefix+"*"))

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			r.forward(msg)
		}
	}
}

func (r *Relay) forward(msg *redis.Message) {
	tenantID := strings.TrimPrefix(msg.Channel, channelPrefix)
	var env envelope
	if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
		r.Logger.Warn("decode relayed event", zap.String("channel", msg.Channel), zap.Error(err))
		return
	}
	if env.Origin == r.origin || tenantID == "" {
		return
	}
	r.Hub.BroadcastRaw(tenantID, env.Event)
}
