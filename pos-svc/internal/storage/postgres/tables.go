package postgres

import (
	"context"

	"overcooked-pos/pos-svc/internal/domain"

	"github.com/jmoiron/sqlx"
)

const tableColumns = `id, number, capacity, area, state, tab_id, server_id, party_size, held_by, active, updated_at`

type TableRepository struct {
	tx *sqlx.Tx
}

func (r *TableRepository) Create(ctx context.Context, t *domain.Table) error {
	_, err := r.tx.NamedExecContext(ctx, `
		INSERT INTO dining_tables (`+tableColumns+`)
		VALUES (:id, :number, :capacity, :area, :state, :tab_id, :server_id, :party_size, :held_by, :active, :updated_at)`, t)
	return err
}

func (r *TableRepository) Get(ctx context.Context, id string) (*domain.Table, error) {
	return getOne[domain.Table](ctx, r.tx, `SELECT `+tableColumns+` FROM dining_tables WHERE id = $1`, id)
}

func (r *TableRepository) GetForUpdate(ctx context.Context, id string) (*domain.Table, error) {
	return getOne[domain.Table](ctx, r.tx, `SELECT `+tableColumns+` FROM dining_tables WHERE id = $1 FOR UPDATE`, id)
}

func (r *TableRepository) List(ctx context.Context) ([]domain.Table, error) {
	var tables []domain.Table
	err := r.tx.SelectContext(ctx, &tables, `
		SELECT `+tableColumns+`
		FROM dining_tables
		WHERE active
		ORDER BY number`)
	return tables, err
}

func (r *TableRepository) Update(ctx context.Context, t *domain.Table) error {
	return execOne(ctx, r.tx, `
		UPDATE dining_tables
		SET state = :state, tab_id = :tab_id, server_id = :server_id, party_size = :party_size,
			held_by = :held_by, active = :active, updated_at = :updated_at
		WHERE id = :id`, t)
}
