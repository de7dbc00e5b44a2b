package storage

import (
	"context"
	"errors"
	"time"

	"overcooked-pos/pos-svc/internal/domain"

	"github.com/shopspring/decimal"
)

// ErrNotFound is returned by every repository lookup that matches no row
// visible to the current tenant.
var ErrNotFound = errors.New("storage: not found")

// Methods suffixed ForUpdate take a row lock held until the surrounding
// transaction ends.

type TableRepository interface {
	Create(ctx context.Context, t *domain.Table) error
	Get(ctx context.Context, id string) (*domain.Table, error)
	GetForUpdate(ctx context.Context, id string) (*domain.Table, error)
	List(ctx context.Context) ([]domain.Table, error)
	Update(ctx context.Context, t *domain.Table) error
}

type TabRepository interface {
	Create(ctx context.Context, tab *domain.Tab) error
	Get(ctx context.Context, id string) (*domain.Tab, error)
	GetForUpdate(ctx context.Context, id string) (*domain.Tab, error)
	Update(ctx context.Context, tab *domain.Tab) error

	CreateItem(ctx context.Context, item *domain.LineItem) error
	GetItem(ctx context.Context, id string) (*domain.LineItem, error)
	UpdateItem(ctx context.Context, item *domain.LineItem) error
	ListItems(ctx context.Context, tabID string) ([]domain.LineItem, error)
}

type ProductRepository interface {
	Create(ctx context.Context, p *domain.Product) error
	Get(ctx context.Context, id string) (*domain.Product, error)
}

type RecipeRepository interface {
	Lines(ctx context.Context, productID string) ([]domain.RecipeLine, error)
	Replace(ctx context.Context, productID string, lines []domain.RecipeLine) error
}

type StockRepository interface {
	GetLevel(ctx context.Context, productID, warehouseID string) (*domain.StockLevel, error)
	// LockLevel returns the level row under lock, creating a zero row first
	// when the pair has never been stocked.
	LockLevel(ctx context.Context, productID, warehouseID string) (*domain.StockLevel, error)
	SaveLevel(ctx context.Context, level *domain.StockLevel) error
	AppendMovement(ctx context.Context, m *domain.Movement) error
	MovementsByReference(ctx context.Context, refType, refID string) ([]domain.Movement, error)
	ListMovements(ctx context.Context, productID, warehouseID string, limit int) ([]domain.Movement, error)
	SumMovements(ctx context.Context, productID, warehouseID string) (decimal.Decimal, error)
}

type TicketRepository interface {
	Create(ctx context.Context, t *domain.KitchenTicket) error
	GetForUpdate(ctx context.Context, id string) (*domain.KitchenTicket, error)
	Update(ctx context.Context, t *domain.KitchenTicket) error
	ListOpen(ctx context.Context, station string) ([]domain.KitchenTicket, error)
}

type ReservationRepository interface {
	Create(ctx context.Context, r *domain.Reservation) error
	Get(ctx context.Context, id string) (*domain.Reservation, error)
	GetForUpdate(ctx context.Context, id string) (*domain.Reservation, error)
	Update(ctx context.Context, r *domain.Reservation) error
	// ListBlocking returns reservations still claiming a table whose start
	// falls in [from, to).
	ListBlocking(ctx context.Context, from, to time.Time) ([]domain.Reservation, error)
	// ListDue returns reservations in one of statuses starting at or before
	// cutoff, locked. It feeds the sweep.
	ListDue(ctx context.Context, statuses []domain.ReservationStatus, cutoff time.Time) ([]domain.Reservation, error)
}

type LoyaltyRepository interface {
	GetForUpdate(ctx context.Context, customerID string) (*domain.LoyaltyAccount, error)
	Get(ctx context.Context, customerID string) (*domain.LoyaltyAccount, error)
	Create(ctx context.Context, a *domain.LoyaltyAccount) error
	Update(ctx context.Context, a *domain.LoyaltyAccount) error
	AppendEntry(ctx context.Context, e *domain.LoyaltyEntry) error
	Entries(ctx context.Context, customerID string, limit int) ([]domain.LoyaltyEntry, error)
}

type AuditRepository interface {
	Append(ctx context.Context, e *domain.AuditEntry) error
}

// Repos exposes every repository bound to one tenant-scoped transaction.
type Repos interface {
	Tables() TableRepository
	Tabs() TabRepository
	Products() ProductRepository
	Recipes() RecipeRepository
	Stock() StockRepository
	Tickets() TicketRepository
	Reservations() ReservationRepository
	Loyalty() LoyaltyRepository
	Audit() AuditRepository
}

// UnitOfWork runs fn inside one transaction restricted to tenantID. fn's
// error rolls the transaction back and is returned unchanged when typed.
type UnitOfWork interface {
	RunInTransaction(ctx context.Context, tenantID string, fn func(ctx context.Context, r Repos) error) error
}

// TenantLister enumerates tenants for background jobs that are not driven
// by a request.
type TenantLister interface {
	Tenants(ctx context.Context) ([]string, error)
}
