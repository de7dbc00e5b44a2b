package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type TableState string
type TabState string
type LineItemState string
type ProductKind string
type StockPolicy string
type MovementCause string
type TicketStatus string
type ReservationStatus string
type LoyaltyEntryKind string

const (
	TableFree     TableState = "free"
	TableOccupied TableState = "occupied"
	TableReserved TableState = "reserved"

	TabOpen     TabState = "open"
	TabPreCheck TabState = "pre_check"
	TabPaid     TabState = "paid"
	TabVoided   TabState = "voided"

	ItemActive        LineItemState = "active"
	ItemVoided        LineItemState = "voided"
	ItemComplimentary LineItemState = "complimentary"

	KindRaw          ProductKind = "raw"
	KindIntermediate ProductKind = "intermediate"
	KindFinished     ProductKind = "finished"

	PolicyHardStop StockPolicy = "hard"
	PolicySoftWarn StockPolicy = "soft"

	CausePurchase        MovementCause = "purchase"
	CauseTransfer        MovementCause = "transfer"
	CauseProduction      MovementCause = "production"
	CauseSale            MovementCause = "sale"
	CauseSpoilage        MovementCause = "spoilage"
	CauseCountAdjustment MovementCause = "count_adjustment"

	TicketPending    TicketStatus = "pending"
	TicketInProgress TicketStatus = "in_progress"
	TicketReady      TicketStatus = "ready"
	TicketDelivered  TicketStatus = "delivered"

	ReservationPending   ReservationStatus = "pending"
	ReservationConfirmed ReservationStatus = "confirmed"
	ReservationSeated    ReservationStatus = "seated"
	ReservationCancelled ReservationStatus = "cancelled"
	ReservationNoShow    ReservationStatus = "no_show"
	ReservationExpired   ReservationStatus = "expired"

	EntryAccrual    LoyaltyEntryKind = "accrual"
	EntryRedemption LoyaltyEntryKind = "redemption"
	EntryAdjustment LoyaltyEntryKind = "adjustment"
	EntryBonus      LoyaltyEntryKind = "bonus"
)

const (
	RefLineItem    = "line_item"
	RefTransfer    = "transfer"
	RefCount       = "count"
	RefReceipt     = "receipt"
	RefTab         = "tab"
	RefReservation = "reservation"
)

type Table struct {
	ID        string     `db:"id" json:"id"`
	Number    int        `db:"number" json:"number"`
	Capacity  int        `db:"capacity" json:"capacity"`
	Area      string     `db:"area" json:"area"`
	State     TableState `db:"state" json:"state"`
	TabID     *string    `db:"tab_id" json:"tab_id,omitempty"`
	ServerID  *string    `db:"server_id" json:"server_id,omitempty"`
	PartySize int        `db:"party_size" json:"party_size"`
	HeldBy    *string    `db:"held_by" json:"held_by,omitempty"`
	Active    bool       `db:"active" json:"active"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
}

// Release returns the table to the free state, dropping every reference.
func (t *Table) Release(now time.Time) {
	t.State = TableFree
	t.TabID = nil
	t.ServerID = nil
	t.PartySize = 0
	t.HeldBy = nil
	t.UpdatedAt = now
}

type Tab struct {
	ID              string     `db:"id" json:"id"`
	TableID         string     `db:"table_id" json:"table_id"`
	State           TabState   `db:"state" json:"state"`
	ServerID        string     `db:"server_id" json:"server_id"`
	PartySize       int        `db:"party_size" json:"party_size"`
	Subtotal        int64      `db:"subtotal" json:"subtotal"`
	Tax             int64      `db:"tax" json:"tax"`
	Tip             int64      `db:"tip" json:"tip"`
	Total           int64      `db:"total" json:"total"`
	ReservationID   *string    `db:"reservation_id" json:"reservation_id,omitempty"`
	CustomerID      *string    `db:"customer_id" json:"customer_id,omitempty"`
	PaymentMethodID *string    `db:"payment_method_id" json:"payment_method_id,omitempty"`
	OpenedAt        time.Time  `db:"opened_at" json:"opened_at"`
	ClosedAt        *time.Time `db:"closed_at" json:"closed_at,omitempty"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`

	Items []LineItem `db:"-" json:"items,omitempty"`
}

// Live reports whether the tab still holds its table.
func (t *Tab) Live() bool {
	return t.State == TabOpen || t.State == TabPreCheck
}

type LineItem struct {
	ID        string        `db:"id" json:"id"`
	TabID     string        `db:"tab_id" json:"tab_id"`
	ProductID string        `db:"product_id" json:"product_id"`
	Name      string        `db:"name" json:"name"`
	Qty       int           `db:"qty" json:"qty"`
	UnitPrice int64         `db:"unit_price" json:"unit_price"`
	Extended  int64         `db:"extended" json:"extended"`
	State     LineItemState `db:"state" json:"state"`
	Warning   bool          `db:"warning" json:"warning"`
	Notes     string        `db:"notes" json:"notes,omitempty"`
	AddedBy   string        `db:"added_by" json:"added_by"`
	SentAt    *time.Time    `db:"sent_at" json:"sent_at,omitempty"`
	CreatedAt time.Time     `db:"created_at" json:"created_at"`
	VoidedAt  *time.Time    `db:"voided_at" json:"voided_at,omitempty"`
}

type Product struct {
	ID           string          `db:"id" json:"id"`
	Name         string          `db:"name" json:"name"`
	Kind         ProductKind     `db:"kind" json:"kind"`
	Price        int64           `db:"price" json:"price"`
	Blocked      bool            `db:"blocked" json:"blocked"`
	Policy       StockPolicy     `db:"stock_policy" json:"stock_policy"`
	TrackStock   bool            `db:"track_stock" json:"track_stock"`
	Unit         string          `db:"unit" json:"unit"`
	ReorderPoint decimal.Decimal `db:"reorder_point" json:"reorder_point"`
}

type RecipeLine struct {
	ProductID    string          `db:"product_id" json:"product_id"`
	IngredientID string          `db:"ingredient_id" json:"ingredient_id"`
	Quantity     decimal.Decimal `db:"quantity" json:"quantity"`
	Unit         string          `db:"unit" json:"unit"`
	Position     int             `db:"position" json:"position"`
}

type StockLevel struct {
	ProductID   string          `db:"product_id" json:"product_id"`
	WarehouseID string          `db:"warehouse_id" json:"warehouse_id"`
	Quantity    decimal.Decimal `db:"quantity" json:"quantity"`
	AverageCost int64           `db:"average_cost" json:"average_cost"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updated_at"`
}

type Movement struct {
	ID            string          `db:"id" json:"id"`
	ProductID     string          `db:"product_id" json:"product_id"`
	WarehouseID   string          `db:"warehouse_id" json:"warehouse_id"`
	Delta         decimal.Decimal `db:"delta" json:"delta"`
	Cause         MovementCause   `db:"cause" json:"cause"`
	BalanceAfter  decimal.Decimal `db:"balance_after" json:"balance_after"`
	UnitCost      int64           `db:"unit_cost" json:"unit_cost"`
	ReferenceType string          `db:"reference_type" json:"reference_type,omitempty"`
	ReferenceID   string          `db:"reference_id" json:"reference_id,omitempty"`
	ReversesID    *string         `db:"reverses_id" json:"reverses_id,omitempty"`
	Note          string          `db:"note" json:"note,omitempty"`
	CreatedBy     string          `db:"created_by" json:"created_by"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
}

type TicketItem struct {
	LineItemID string `json:"line_item_id"`
	ProductID  string `json:"product_id"`
	Name       string `json:"name"`
	Qty        int    `json:"qty"`
	Notes      string `json:"notes,omitempty"`
}

type KitchenTicket struct {
	ID          string       `db:"id" json:"id"`
	TabID       string       `db:"tab_id" json:"tab_id"`
	TableNumber int          `db:"table_number" json:"table_number"`
	Station     string       `db:"station" json:"station"`
	Status      TicketStatus `db:"status" json:"status"`
	Items       TicketItems  `db:"items" json:"items"`
	SentBy      string       `db:"sent_by" json:"sent_by"`
	CreatedAt   time.Time    `db:"created_at" json:"created_at"`
	StartedAt   *time.Time   `db:"started_at" json:"started_at,omitempty"`
	ReadyAt     *time.Time   `db:"ready_at" json:"ready_at,omitempty"`
	DeliveredAt *time.Time   `db:"delivered_at" json:"delivered_at,omitempty"`
}

type Reservation struct {
	ID               string            `db:"id" json:"id"`
	StartsAt         time.Time         `db:"starts_at" json:"starts_at"`
	PartySize        int               `db:"party_size" json:"party_size"`
	TableID          *string           `db:"table_id" json:"table_id,omitempty"`
	Status           ReservationStatus `db:"status" json:"status"`
	ConfirmationCode string            `db:"confirmation_code" json:"confirmation_code"`
	CustomerName     string            `db:"customer_name" json:"customer_name"`
	CustomerPhone    string            `db:"customer_phone" json:"customer_phone"`
	CustomerID       *string           `db:"customer_id" json:"customer_id,omitempty"`
	Notes            string            `db:"notes" json:"notes,omitempty"`
	TabID            *string           `db:"tab_id" json:"tab_id,omitempty"`
	CreatedAt        time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time         `db:"updated_at" json:"updated_at"`
}

// Blocking reports whether the reservation still claims its table window.
func (r *Reservation) Blocking() bool {
	switch r.Status {
	case ReservationPending, ReservationConfirmed, ReservationSeated:
		return true
	}
	return false
}

type LoyaltyAccount struct {
	CustomerID string    `db:"customer_id" json:"customer_id"`
	Points     int64     `db:"points" json:"points"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

type LoyaltyEntry struct {
	ID           string           `db:"id" json:"id"`
	CustomerID   string           `db:"customer_id" json:"customer_id"`
	Kind         LoyaltyEntryKind `db:"kind" json:"kind"`
	Points       int64            `db:"points" json:"points"`
	BalanceAfter int64            `db:"balance_after" json:"balance_after"`
	Reference    string           `db:"reference" json:"reference,omitempty"`
	CreatedBy    string           `db:"created_by" json:"created_by"`
	CreatedAt    time.Time        `db:"created_at" json:"created_at"`
}

type AuditEntry struct {
	ID         string    `db:"id" json:"id"`
	ActorID    string    `db:"actor_id" json:"actor_id"`
	Action     string    `db:"action" json:"action"`
	EntityType string    `db:"entity_type" json:"entity_type"`
	EntityID   string    `db:"entity_id" json:"entity_id"`
	Detail     string    `db:"detail" json:"detail,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
