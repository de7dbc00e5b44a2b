package postgres

import (
	"context"
	"database/sql"
	"errors"

	"overcooked-pos/pos-svc/internal/storage"
	"overcooked-pos/pos-svc/internal/tenant"

	"github.com/jmoiron/sqlx"
)

// UnitOfWork binds a fresh set of repositories to each broker transaction.
type UnitOfWork struct {
	broker *tenant.Broker
}

func NewUnitOfWork(broker *tenant.Broker) *UnitOfWork {
	return &UnitOfWork{broker: broker}
}

func (u *UnitOfWork) RunInTransaction(ctx context.Context, tenantID string, fn func(ctx context.Context, r storage.Repos) error) error {
	return u.broker.RunInTransaction(ctx, tenantID, func(ctx context.Context, tx *sqlx.Tx) error {
		return fn(ctx, NewRepos(tx))
	})
}

type Repos struct {
	tx *sqlx.Tx
}

func NewRepos(tx *sqlx.Tx) *Repos {
	return &Repos{tx: tx}
}

func (r *Repos) Tables() storage.TableRepository             { return &TableRepository{tx: r.tx} }
func (r *Repos) Tabs() storage.TabRepository                 { return &TabRepository{tx: r.tx} }
func (r *Repos) Products() storage.ProductRepository         { return &ProductRepository{tx: r.tx} }
func (r *Repos) Recipes() storage.RecipeRepository           { return &RecipeRepository{tx: r.tx} }
func (r *Repos) Stock() storage.StockRepository              { return &StockRepository{tx: r.tx} }
func (r *Repos) Tickets() storage.TicketRepository           { return &TicketRepository{tx: r.tx} }
func (r *Repos) Reservations() storage.ReservationRepository { return &ReservationRepository{tx: r.tx} }
func (r *Repos) Loyalty() storage.LoyaltyRepository          { return &LoyaltyRepository{tx: r.tx} }
func (r *Repos) Audit() storage.AuditRepository              { return &AuditRepository{tx: r.tx} }

var (
	_ storage.UnitOfWork = (*UnitOfWork)(nil)
	_ storage.Repos      = (*Repos)(nil)
)

func getOne[T any](ctx context.Context, tx *sqlx.Tx, query string, args ...any) (*T, error) {
	var v T
	if err := tx.GetContext(ctx, &v, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}
	return &v, nil
}

// execOne runs a named statement that must touch exactly one row.
func execOne(ctx context.Context, tx *sqlx.Tx, query string, arg any) error {
	res, err := tx.NamedExecContext(ctx, query, arg)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}
