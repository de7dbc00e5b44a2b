package postgres

import (
	"context"

	"overcooked-pos/pos-svc/internal/domain"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

const (
	levelColumns    = `product_id, warehouse_id, quantity, average_cost, updated_at`
	movementColumns = `id, product_id, warehouse_id, delta, cause, balance_after, unit_cost,
		reference_type, reference_id, reverses_id, note, created_by, created_at`
)

type StockRepository struct {
	tx *sqlx.Tx
}

func (r *StockRepository) GetLevel(ctx context.Context, productID, warehouseID string) (*domain.StockLevel, error) {
	return getOne[domain.StockLevel](ctx, r.tx, `
		SELECT `+levelColumns+`
		FROM stock_levels
		WHERE product_id = $1 AND warehouse_id = $2`, productID, warehouseID)
}

func (r *StockRepository) LockLevel(ctx context.Context, productID, warehouseID string) (*domain.StockLevel, error) {
	if _, err := r.tx.ExecContext(ctx, `
		INSERT INTO stock_levels (product_id, warehouse_id, quantity, average_cost, updated_at)
		VALUES ($1, $2, 0, 0, now())
		ON CONFLICT (tenant_id, product_id, warehouse_id) DO NOTHING`, productID, warehouseID); err != nil {
		return nil, err
	}
	return getOne[domain.StockLevel](ctx, r.tx, `
		SELECT `+levelColumns+`
		FROM stock_levels
		WHERE product_id = $1 AND warehouse_id = $2
		FOR UPDATE`, productID, warehouseID)
}

func (r *StockRepository) SaveLevel(ctx context.Context, level *domain.StockLevel) error {
	return execOne(ctx, r.tx, `
		UPDATE stock_levels
		SET quantity = :quantity, average_cost = :average_cost, updated_at = :updated_at
		WHERE product_id = :product_id AND warehouse_id = :warehouse_id`, level)
}

func (r *StockRepository) AppendMovement(ctx context.Context, m *domain.Movement) error {
	_, err := r.tx.NamedExecContext(ctx, `
		INSERT INTO stock_movements (`+movementColumns+`)
		VALUES (:id, :product_id, :warehouse_id, :delta, :cause, :balance_after, :unit_cost,
			:reference_type, :reference_id, :reverses_id, :note, :created_by, :created_at)`, m)
	return err
}

func (r *StockRepository) MovementsByReference(ctx context.Context, refType, refID string) ([]domain.Movement, error) {
	var movements []domain.Movement
	err := r.tx.SelectContext(ctx, &movements, `
		SELECT `+movementColumns+`
		FROM stock_movements
		WHERE reference_type = $1 AND reference_id = $2
		ORDER BY created_at, id`, refType, refID)
	return movements, err
}

func (r *StockRepository) ListMovements(ctx context.Context, productID, warehouseID string, limit int) ([]domain.Movement, error) {
	var movements []domain.Movement
	err := r.tx.SelectContext(ctx, &movements, `
		SELECT `+movementColumns+`
		FROM stock_movements
		WHERE product_id = $1 AND warehouse_id = $2
		ORDER BY created_at DESC, id DESC
		LIMIT $3`, productID, warehouseID, limit)
	return movements, err
}

func (r *StockRepository) SumMovements(ctx context.Context, productID, warehouseID string) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := r.tx.GetContext(ctx, &sum, `
		SELECT COALESCE(SUM(delta), 0)
		FROM stock_movements
		WHERE product_id = $1 AND warehouse_id = $2`, productID, warehouseID)
	return sum, err
}
