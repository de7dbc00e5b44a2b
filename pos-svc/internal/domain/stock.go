package domain

import "github.com/shopspring/decimal"

type AvailabilityStatus string

const (
	StockSellable     AvailabilityStatus = "sellable"
	StockInsufficient AvailabilityStatus = "insufficient"
	StockBlocked      AvailabilityStatus = "blocked"
)

// Requirement is the total quantity of one leaf ingredient needed for a sale.
type Requirement struct {
	ProductID string          `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
}

type Shortage struct {
	ProductID string          `json:"product_id"`
	Required  decimal.Decimal `json:"required"`
	OnHand    decimal.Decimal `json:"on_hand"`
	Shortfall decimal.Decimal `json:"shortfall"`
}

type Availability struct {
	ProductID    string             `json:"product_id"`
	Status       AvailabilityStatus `json:"status"`
	Policy       StockPolicy        `json:"policy"`
	Requirements []Requirement      `json:"requirements"`
	Shortages    []Shortage         `json:"shortages,omitempty"`
	BlockedBy    []string           `json:"blocked_by,omitempty"`
}
