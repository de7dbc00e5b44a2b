package domain

import "time"

const (
	EventTableOccupied      = "table.occupied"
	EventTableFreed         = "table.freed"
	EventTableReserved      = "table.reserved"
	EventTabUpdated         = "tab.updated"
	EventTabPaid            = "tab.paid"
	EventTabVoided          = "tab.voided"
	EventTicketCreated      = "ticket.created"
	EventTicketUpdated      = "ticket.updated"
	EventWaiterNotification = "waiter.notification"
	EventStockAlert         = "stock.alert"
	EventReservationCreated = "reservation.created"
	EventReservationUpdated = "reservation.updated"
	EventLoyaltyBalance     = "loyalty.balance"
)

// Event is a committed state change addressed to a single tenant.
type Event struct {
	TenantID   string    `json:"tenant_id"`
	Name       string    `json:"event"`
	Payload    any       `json:"payload"`
	OccurredAt time.Time `json:"occurred_at"`
}

// StockAlertPayload announces a level at or below its reorder point.
type StockAlertPayload struct {
	ProductID    string `json:"product_id"`
	WarehouseID  string `json:"warehouse_id"`
	Quantity     string `json:"quantity"`
	ReorderPoint string `json:"reorder_point"`
}

type WaiterNotificationPayload struct {
	TicketID    string `json:"ticket_id"`
	TabID       string `json:"tab_id"`
	TableNumber int    `json:"table_number"`
	Station     string `json:"station"`
	Message     string `json:"message"`
}
