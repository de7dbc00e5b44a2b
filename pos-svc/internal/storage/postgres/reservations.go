package postgres

import (
	"context"
	"time"

	"overcooked-pos/pos-svc/internal/domain"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const reservationColumns = `id, starts_at, party_size, table_id, status, confirmation_code, customer_name,
	customer_phone, customer_id, notes, tab_id, created_at, updated_at`

type ReservationRepository struct {
	tx *sqlx.Tx
}

func (r *ReservationRepository) Create(ctx context.Context, res *domain.Reservation) error {
	_, err := r.tx.NamedExecContext(ctx, `
		INSERT INTO reservations (`+reservationColumns+`)
		VALUES (:id, :starts_at, :party_size, :table_id, :status, :confirmation_code, :customer_name,
			:customer_phone, :customer_id, :notes, :tab_id, :created_at, :updated_at)`, res)
	return err
}

func (r *ReservationRepository) Get(ctx context.Context, id string) (*domain.Reservation, error) {
	return getOne[domain.Reservation](ctx, r.tx, `SELECT `+reservationColumns+` FROM reservations WHERE id = $1`, id)
}

func (r *ReservationRepository) GetForUpdate(ctx context.Context, id string) (*domain.Reservation, error) {
	return getOne[domain.Reservation](ctx, r.tx, `SELECT `+reservationColumns+` FROM reservations WHERE id = $1 FOR UPDATE`, id)
}

func (r *ReservationRepository) Update(ctx context.Context, res *domain.Reservation) error {
	return execOne(ctx, r.tx, `
		UPDATE reservations
		SET status = :status, table_id = :table_id, tab_id = :tab_id, notes = :notes, updated_at = :updated_at
		WHERE id = :id`, res)
}

func (r *ReservationRepository) ListBlocking(ctx context.Context, from, to time.Time) ([]domain.Reservation, error) {
	var list []domain.Reservation
	err := r.tx.SelectContext(ctx, &list, `
		SELECT `+reservationColumns+`
		FROM reservations
		WHERE status IN ('pending', 'confirmed', 'seated') AND starts_at >= $1 AND starts_at < $2
		ORDER BY starts_at, id`, from, to)
	return list, err
}

func (r *ReservationRepository) ListDue(ctx context.Context, statuses []domain.ReservationStatus, cutoff time.Time) ([]domain.Reservation, error) {
	names := make([]string, len(statuses))
	for i, s := range statuses {
		names[i] = string(s)
	}
	var list []domain.Reservation
	err := r.tx.SelectContext(ctx, &list, `
		SELECT `+reservationColumns+`
		FROM reservations
		WHERE status = ANY($1) AND starts_at <= $2
		ORDER BY starts_at, id
		FOR UPDATE`, pq.Array(names), cutoff)
	return list, err
}
