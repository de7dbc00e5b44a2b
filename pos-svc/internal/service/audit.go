package service

import (
	"context"
	"fmt"

	"overcooked-pos/pos-svc/internal/domain"
	"overcooked-pos/pos-svc/internal/storage"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type auditLog []domain.AuditEntry

func (a *auditLog) add(actor domain.Actor, action, entityType, entityID, format string, args ...any) {
	*a = append(*a, domain.AuditEntry{
		ActorID:    actor.StaffID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Detail:     fmt.Sprintf(format, args...),
	})
}

// audit writes entries in their own transaction after the operation they
// describe has committed. Failures are logged and dropped.
func (d Deps) audit(ctx context.Context, tenantID string, entries auditLog) {
	if len(entries) == 0 {
		return
	}
	now := d.Clock.Now()
	err := d.UoW.RunInTransaction(ctx, tenantID, func(ctx context.Context, r storage.Repos) error {
		for i := range entries {
			e := entries[i]
			e.ID = uuid.NewString()
			e.CreatedAt = now
			if err := r.Audit().Append(ctx, &e); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		d.Logger.Warn("audit entries dropped",
			zap.String("tenant_id", tenantID), zap.Int("entries", len(entries)), zap.Error(err))
	}
}
