package service

import (
	"context"
	"time"

	"overcooked-pos/pos-svc/internal/storage"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Sweeper runs the reservation sweep for every tenant on a fixed interval.
// With a Locker, only one instance sweeps a given tenant at a time.
type Sweeper struct {
	Engine   *ReservationEngine
	Tenants  storage.TenantLister
	Locker   Locker
	Interval time.Duration
	LockTTL  time.Duration
	Logger   *zap.Logger

	instance string
}

func NewSweeper(engine *ReservationEngine, tenants storage.TenantLister, locker Locker, interval time.Duration, logger *zap.Logger) *Sweeper {
	if logger == nil {
		logger = zap.NewNop()
	}
	if interval <= 0 {
		interval = time.Minute
	}
	return &Sweeper{
		Engine:   engine,
		Tenants:  tenants,
		Locker:   locker,
		Interval: interval,
		LockTTL:  interval,
		Logger:   logger,
		instance: uuid.NewString(),
	}
}

func (s *Sweeper) Run(ctx context.Context) {
	s.Logger.Info("starting reservation sweeper", zap.Duration("interval", s.Interval))
	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	s.SweepOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			s.Logger.Info("reservation sweeper stopped")
			return
		case <-ticker.C:
			s.SweepOnce(ctx)
		}
	}
}

// SweepOnce sweeps each tenant once. One tenant failing does not stop the
// others.
func (s *Sweeper) SweepOnce(ctx context.Context) map[string]*SweepReport {
	tenants, err := s.Tenants.Tenants(ctx)
	if err != nil {
		s.Logger.Error("list tenants", zap.Error(err))
		return nil
	}

	reports := make(map[string]*SweepReport, len(tenants))
	for _, tenantID := range tenants {
		if ctx.Err() != nil {
			break
		}
		report, err := s.sweepTenant(ctx, tenantID)
		if err != nil {
			s.Logger.Error("sweep tenant", zap.String("tenant_id", tenantID), zap.Error(err))
			continue
		}
		if report != nil {
			reports[tenantID] = report
		}
	}
	return reports
}

func (s *Sweeper) sweepTenant(ctx context.Context, tenantID string) (*SweepReport, error) {
	if s.Locker == nil {
		return s.Engine.Sweep(ctx, tenantID)
	}

	key := s.Locker.SweepLockKey(tenantID)
	ok, err := s.Locker.AcquireLock(ctx, key, s.owner(), s.LockTTL)
	if err != nil {
		return nil, err
	}
	if !ok {
		s.Logger.Debug("sweep held by another instance", zap.String("tenant_id", tenantID))
		return nil, nil
	}
	defer func() {
		if err := s.Locker.ReleaseLock(context.WithoutCancel(ctx), key, s.owner()); err != nil {
			s.Logger.Warn("release sweep lock", zap.String("tenant_id", tenantID), zap.Error(err))
		}
	}()
	return s.Engine.Sweep(ctx, tenantID)
}

func (s *Sweeper) owner() string {
	if s.instance == "" {
		s.instance = uuid.NewString()
	}
	return s.instance
}
