package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"overcooked-pos/pos-svc/internal/domain"
	"overcooked-pos/pos-svc/internal/metrics"
	"overcooked-pos/pos-svc/internal/mocks"
	"overcooked-pos/pos-svc/internal/service"
	"overcooked-pos/pos-svc/internal/storage"
	"overcooked-pos/pos-svc/internal/storage/memory"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const tenantA = "tenant-a"

type fixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fixedClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func (c *fixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func baseSettings() domain.TenantSettings {
	hours := make(map[time.Weekday]domain.OpeningHours)
	for d := time.Sunday; d <= time.Saturday; d++ {
		hours[d] = domain.OpeningHours{Open: 12 * 60, Close: 23 * 60}
	}
	return domain.TenantSettings{
		TaxRate:            decimal.RequireFromString("0.16"),
		SalesWarehouseID:   "main",
		OverrideCodes:      []string{"4321"},
		TicketWarning:      10 * time.Minute,
		TicketCritical:     20 * time.Minute,
		Location:           time.UTC,
		OperatingHours:     hours,
		SlotGranularity:    30 * time.Minute,
		ReservationLength:  2 * time.Hour,
		ReservationGrace:   15 * time.Minute,
		AutoConfirm:        true,
		PointsPerUnit:      decimal.RequireFromString("0.01"),
		MinRedeemable:      100,
		Tiers:              []domain.Tier{{Name: "silver", Threshold: 1000}, {Name: "gold", Threshold: 5000}},
		AlternativeOffered: 3,
	}
}

type fixture struct {
	store     *memory.Store
	clock     *fixedClock
	publisher *mocks.EventPublisher
	deps      service.Deps
}

func newFixture(t *testing.T, settings domain.TenantSettings) *fixture {
	t.Helper()

	provider := mocks.NewSettingsProvider(t)
	provider.On("Settings", mock.Anything, tenantA).Return(settings, nil).Maybe()
	provider.On("Settings", mock.Anything, mock.Anything).
		Return(domain.TenantSettings{}, domain.Forbidden("unknown tenant")).Maybe()

	publisher := mocks.NewEventPublisher(t)
	publisher.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()

	f := &fixture{
		store:     memory.NewStore(),
		clock:     &fixedClock{now: time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)},
		publisher: publisher,
	}
	f.deps = service.Deps{
		UoW:       f.store,
		Settings:  provider,
		Publisher: publisher,
		Clock:     f.clock,
		Metrics:   metrics.NewUnregistered(),
	}
	return f
}

func (f *fixture) seed(t *testing.T, fn func(ctx context.Context, r storage.Repos) error) {
	t.Helper()
	require.NoError(t, f.store.RunInTransaction(context.Background(), tenantA, fn))
}

func (f *fixture) addTables(t *testing.T, tables ...domain.Table) {
	t.Helper()
	f.seed(t, func(ctx context.Context, r storage.Repos) error {
		for i := range tables {
			tables[i].Active = true
			if tables[i].State == "" {
				tables[i].State = domain.TableFree
			}
			if err := r.Tables().Create(ctx, &tables[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

func (f *fixture) addProducts(t *testing.T, products ...domain.Product) {
	t.Helper()
	f.seed(t, func(ctx context.Context, r storage.Repos) error {
		for i := range products {
			if err := r.Products().Create(ctx, &products[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

func (f *fixture) table(t *testing.T, id string) *domain.Table {
	t.Helper()
	var table *domain.Table
	f.seed(t, func(ctx context.Context, r storage.Repos) error {
		var err error
		table, err = r.Tables().Get(ctx, id)
		return err
	})
	return table
}

// published returns the names of every event delivered so far, in order.
func (f *fixture) published() []string {
	var names []string
	for _, call := range f.publisher.Calls {
		if call.Method != "Publish" {
			continue
		}
		names = append(names, call.Arguments.Get(2).(domain.Event).Name)
	}
	return names
}

func as(p domain.Privilege) context.Context {
	return domain.WithActor(context.Background(), domain.Actor{TenantID: tenantA, StaffID: "staff-1", Privilege: p})
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func codeOf(t *testing.T, err error) string {
	t.Helper()
	de, ok := domain.AsError(err)
	require.True(t, ok, "expected a typed error, got %v", err)
	return de.Code
}
