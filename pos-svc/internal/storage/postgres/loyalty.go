package postgres

import (
	"context"

	"overcooked-pos/pos-svc/internal/domain"

	"github.com/jmoiron/sqlx"
)

type LoyaltyRepository struct {
	tx *sqlx.Tx
}

func (r *LoyaltyRepository) Get(ctx context.Context, customerID string) (*domain.LoyaltyAccount, error) {
	return getOne[domain.LoyaltyAccount](ctx, r.tx, `
		SELECT customer_id, points, created_at, updated_at
		FROM loyalty_accounts
		WHERE customer_id = $1`, customerID)
}

func (r *LoyaltyRepository) GetForUpdate(ctx context.Context, customerID string) (*domain.LoyaltyAccount, error) {
	return getOne[domain.LoyaltyAccount](ctx, r.tx, `
		SELECT customer_id, points, created_at, updated_at
		FROM loyalty_accounts
		WHERE customer_id = $1
		FOR UPDATE`, customerID)
}

func (r *LoyaltyRepository) Create(ctx context.Context, a *domain.LoyaltyAccount) error {
	_, err := r.tx.NamedExecContext(ctx, `
		INSERT INTO loyalty_accounts (customer_id, points, created_at, updated_at)
		VALUES (:customer_id, :points, :created_at, :updated_at)`, a)
	return err
}

func (r *LoyaltyRepository) Update(ctx context.Context, a *domain.LoyaltyAccount) error {
	return execOne(ctx, r.tx, `
		UPDATE loyalty_accounts
		SET points = :points, updated_at = :updated_at
		WHERE customer_id = :customer_id`, a)
}

func (r *LoyaltyRepository) AppendEntry(ctx context.Context, e *domain.LoyaltyEntry) error {
	_, err := r.tx.NamedExecContext(ctx, `
		INSERT INTO loyalty_entries (id, customer_id, kind, points, balance_after, reference, created_by, created_at)
		VALUES (:id, :customer_id, :kind, :points, :balance_after, :reference, :created_by, :created_at)`, e)
	return err
}

func (r *LoyaltyRepository) Entries(ctx context.Context, customerID string, limit int) ([]domain.LoyaltyEntry, error) {
	var entries []domain.LoyaltyEntry
	err := r.tx.SelectContext(ctx, &entries, `
		SELECT id, customer_id, kind, points, balance_after, reference, created_by, created_at
		FROM loyalty_entries
		WHERE customer_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2`, customerID, limit)
	return entries, err
}

type AuditRepository struct {
	tx *sqlx.Tx
}

func (r *AuditRepository) Append(ctx context.Context, e *domain.AuditEntry) error {
	_, err := r.tx.NamedExecContext(ctx, `
		INSERT INTO audit_log (id, actor_id, action, entity_type, entity_id, detail, created_at)
		VALUES (:id, :actor_id, :action, :entity_type, :entity_id, :detail, :created_at)`, e)
	return err
}
