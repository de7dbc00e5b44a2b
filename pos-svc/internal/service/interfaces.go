package service

import (
	"context"
	"errors"
	"time"

	"overcooked-pos/pos-svc/internal/domain"
	"overcooked-pos/pos-svc/internal/metrics"
	"overcooked-pos/pos-svc/internal/storage"

	"go.uber.org/zap"
)

type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// EventPublisher delivers committed events. Implementations must not block
// on slow consumers.
type EventPublisher interface {
	Publish(ctx context.Context, tenantID string, event domain.Event) error
}

type SettingsProvider interface {
	Settings(ctx context.Context, tenantID string) (domain.TenantSettings, error)
}

type Locker interface {
	AcquireLock(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, key, value string) error
	SweepLockKey(tenantID string) string
}

var (
	_ Locker         = (*storage.RedisCache)(nil)
	_ EventPublisher = (*storage.KafkaPublisher)(nil)
)

// Deps carries what every engine shares.
type Deps struct {
	UoW       storage.UnitOfWork
	Settings  SettingsProvider
	Publisher EventPublisher
	Clock     Clock
	Logger    *zap.Logger
	Metrics   *metrics.Metrics
}

func (d Deps) withDefaults() Deps {
	if d.Clock == nil {
		d.Clock = SystemClock{}
	}
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Metrics == nil {
		d.Metrics = metrics.NewUnregistered()
	}
	if d.Publisher == nil {
		d.Publisher = Fanout{}
	}
	return d
}

func (d Deps) settings(ctx context.Context, tenantID string) (domain.TenantSettings, error) {
	s, err := d.Settings.Settings(ctx, tenantID)
	if err != nil {
		if _, ok := domain.AsError(err); ok {
			return s, err
		}
		return s, domain.Internal(err, "load settings for tenant %s", tenantID)
	}
	return s, nil
}

// publish runs after commit. Delivery failures are logged, never returned:
// the state change already happened.
func (d Deps) publish(ctx context.Context, tenantID string, events []domain.Event) {
	for _, ev := range events {
		ev.TenantID = tenantID
		if ev.OccurredAt.IsZero() {
			ev.OccurredAt = d.Clock.Now()
		}
		if err := d.Publisher.Publish(ctx, tenantID, ev); err != nil {
			d.Metrics.EventsPublished.WithLabelValues("failed").Inc()
			d.Logger.Warn("publish event",
				zap.String("tenant_id", tenantID), zap.String("event", ev.Name), zap.Error(err))
			continue
		}
		d.Metrics.EventsPublished.WithLabelValues("ok").Inc()
	}
}

// Fanout publishes to every sink and joins their errors.
type Fanout []EventPublisher

func (f Fanout) Publish(ctx context.Context, tenantID string, event domain.Event) error {
	var errs []error
	for _, p := range f {
		if err := p.Publish(ctx, tenantID, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// notFound maps a repository miss to a typed not-found error with code.
func notFound(err error, code, what, id string) error {
	if errors.Is(err, storage.ErrNotFound) {
		return domain.NotFound(code, "%s %s not found", what, id).With("id", id)
	}
	return err
}

func actorFrom(ctx context.Context, min domain.Privilege) (domain.Actor, error) {
	actor, ok := domain.ActorFrom(ctx)
	if !ok {
		return actor, domain.Forbidden("missing identity claim")
	}
	if err := actor.Require(min); err != nil {
		return actor, err
	}
	return actor, nil
}
