package postgres

import (
	"context"

	"overcooked-pos/pos-svc/internal/domain"

	"github.com/jmoiron/sqlx"
)

const ticketColumns = `id, tab_id, table_number, station, status, items, sent_by, created_at,
	started_at, ready_at, delivered_at`

type TicketRepository struct {
	tx *sqlx.Tx
}

func (r *TicketRepository) Create(ctx context.Context, t *domain.KitchenTicket) error {
	_, err := r.tx.NamedExecContext(ctx, `
		INSERT INTO kitchen_tickets (`+ticketColumns+`)
		VALUES (:id, :tab_id, :table_number, :station, :status, :items, :sent_by, :created_at,
			:started_at, :ready_at, :delivered_at)`, t)
	return err
}

func (r *TicketRepository) GetForUpdate(ctx context.Context, id string) (*domain.KitchenTicket, error) {
	return getOne[domain.KitchenTicket](ctx, r.tx, `SELECT `+ticketColumns+` FROM kitchen_tickets WHERE id = $1 FOR UPDATE`, id)
}

func (r *TicketRepository) Update(ctx context.Context, t *domain.KitchenTicket) error {
	return execOne(ctx, r.tx, `
		UPDATE kitchen_tickets
		SET status = :status, started_at = :started_at, ready_at = :ready_at, delivered_at = :delivered_at
		WHERE id = :id`, t)
}

// ListOpen returns undelivered tickets oldest first. An empty station lists all.
func (r *TicketRepository) ListOpen(ctx context.Context, station string) ([]domain.KitchenTicket, error) {
	var tickets []domain.KitchenTicket
	err := r.tx.SelectContext(ctx, &tickets, `
		SELECT `+ticketColumns+`
		FROM kitchen_tickets
		WHERE status <> 'delivered' AND ($1 = '' OR station = $1)
		ORDER BY created_at, id`, station)
	return tickets, err
}
