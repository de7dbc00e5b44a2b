package service

import (
	"context"

	"overcooked-pos/pos-svc/internal/domain"

	"github.com/shopspring/decimal"
)

type TabServiceInterface interface {
	OpenTable(ctx context.Context, in OpenTableInput) (*domain.Tab, error)
	AddLineItem(ctx context.Context, in AddItemInput) (*AddItemResult, error)
	VoidLineItem(ctx context.Context, itemID, reason string) (*domain.Tab, error)
	CompLineItem(ctx context.Context, itemID, reason string) (*domain.Tab, error)
	RequestPreCheck(ctx context.Context, tabID string) (*domain.Tab, error)
	PayTab(ctx context.Context, in PayInput) (*PayResult, error)
	CloseTab(ctx context.Context, in CloseInput) (*domain.Tab, error)
	GetTab(ctx context.Context, tabID string) (*domain.Tab, error)
	ListTables(ctx context.Context) ([]domain.Table, error)
}

type KitchenServiceInterface interface {
	SendToKitchen(ctx context.Context, in SendInput) (*domain.KitchenTicket, error)
	AdvanceTicket(ctx context.Context, ticketID string, next domain.TicketStatus) (*domain.KitchenTicket, error)
	Queue(ctx context.Context, station string) ([]domain.TicketView, error)
}

type StockServiceInterface interface {
	CheckAvailability(ctx context.Context, productID string, qty int) (*domain.Availability, error)
	PostMovement(ctx context.Context, in MovementInput) (*domain.Movement, error)
	Transfer(ctx context.Context, in TransferInput) ([]domain.Movement, error)
	Count(ctx context.Context, in CountInput) (*domain.Movement, error)
	Level(ctx context.Context, productID, warehouseID string) (*domain.StockLevel, error)
	Movements(ctx context.Context, productID, warehouseID string, limit int) ([]domain.Movement, error)
	Reconcile(ctx context.Context, productID, warehouseID string) (Reconciliation, error)
}

type RecipeServiceInterface interface {
	Resolve(ctx context.Context, productID string, qty decimal.Decimal) (*Explosion, error)
	SetRecipe(ctx context.Context, productID string, lines []domain.RecipeLine) error
}

type ReservationServiceInterface interface {
	ComputeAvailability(ctx context.Context, date string, partySize int) ([]Slot, error)
	Create(ctx context.Context, in CreateReservationInput) (*domain.Reservation, error)
	Get(ctx context.Context, id string) (*domain.Reservation, error)
	Confirm(ctx context.Context, id string) (*domain.Reservation, error)
	Cancel(ctx context.Context, id, reason string) (*domain.Reservation, error)
	Seat(ctx context.Context, id, tableID string) (*SeatResult, error)
	ConfirmationQR(ctx context.Context, id string) ([]byte, error)
}

type LoyaltyServiceInterface interface {
	Accrue(ctx context.Context, customerID string, amount int64, reference string) (*LoyaltySummary, error)
	Redeem(ctx context.Context, customerID string, points int64, reference string) (*LoyaltySummary, error)
	Adjust(ctx context.Context, customerID string, delta int64, reason string) (*LoyaltySummary, error)
	Bonus(ctx context.Context, customerID string, points int64, reason string) (*LoyaltySummary, error)
	Account(ctx context.Context, customerID string, limit int) (*LoyaltySummary, error)
}

var (
	_ TabServiceInterface         = (*TabEngine)(nil)
	_ KitchenServiceInterface     = (*KitchenQueue)(nil)
	_ StockServiceInterface       = (*StockLedger)(nil)
	_ RecipeServiceInterface      = (*RecipeResolver)(nil)
	_ ReservationServiceInterface = (*ReservationEngine)(nil)
	_ LoyaltyServiceInterface     = (*LoyaltyEngine)(nil)
)
