package postgres

import (
	"context"

	"overcooked-pos/pos-svc/internal/domain"

	"github.com/jmoiron/sqlx"
)

const (
	tabColumns = `id, table_id, state, server_id, party_size, subtotal, tax, tip, total,
		reservation_id, customer_id, payment_method_id, opened_at, closed_at, updated_at`
	itemColumns = `id, tab_id, product_id, name, qty, unit_price, extended, state, warning, notes,
		added_by, sent_at, created_at, voided_at`
)

type TabRepository struct {
	tx *sqlx.Tx
}

func (r *TabRepository) Create(ctx context.Context, tab *domain.Tab) error {
	_, err := r.tx.NamedExecContext(ctx, `
		INSERT INTO tabs (`+tabColumns+`)
		VALUES (:id, :table_id, :state, :server_id, :party_size, :subtotal, :tax, :tip, :total,
			:reservation_id, :customer_id, :payment_method_id, :opened_at, :closed_at, :updated_at)`, tab)
	return err
}

func (r *TabRepository) Get(ctx context.Context, id string) (*domain.Tab, error) {
	return getOne[domain.Tab](ctx, r.tx, `SELECT `+tabColumns+` FROM tabs WHERE id = $1`, id)
}

func (r *TabRepository) GetForUpdate(ctx context.Context, id string) (*domain.Tab, error) {
	return getOne[domain.Tab](ctx, r.tx, `SELECT `+tabColumns+` FROM tabs WHERE id = $1 FOR UPDATE`, id)
}

func (r *TabRepository) Update(ctx context.Context, tab *domain.Tab) error {
	return execOne(ctx, r.tx, `
		UPDATE tabs
		SET state = :state, subtotal = :subtotal, tax = :tax, tip = :tip, total = :total,
			customer_id = :customer_id, payment_method_id = :payment_method_id,
			closed_at = :closed_at, updated_at = :updated_at
		WHERE id = :id`, tab)
}

func (r *TabRepository) CreateItem(ctx context.Context, item *domain.LineItem) error {
	_, err := r.tx.NamedExecContext(ctx, `
		INSERT INTO line_items (`+itemColumns+`)
		VALUES (:id, :tab_id, :product_id, :name, :qty, :unit_price, :extended, :state, :warning, :notes,
			:added_by, :sent_at, :created_at, :voided_at)`, item)
	return err
}

func (r *TabRepository) GetItem(ctx context.Context, id string) (*domain.LineItem, error) {
	return getOne[domain.LineItem](ctx, r.tx, `SELECT `+itemColumns+` FROM line_items WHERE id = $1`, id)
}

func (r *TabRepository) UpdateItem(ctx context.Context, item *domain.LineItem) error {
	return execOne(ctx, r.tx, `
		UPDATE line_items
		SET state = :state, sent_at = :sent_at, voided_at = :voided_at
		WHERE id = :id`, item)
}

func (r *TabRepository) ListItems(ctx context.Context, tabID string) ([]domain.LineItem, error) {
	var items []domain.LineItem
	err := r.tx.SelectContext(ctx, &items, `
		SELECT `+itemColumns+`
		FROM line_items
		WHERE tab_id = $1
		ORDER BY created_at, id`, tabID)
	return items, err
}
