package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// TicketItems is stored as a jsonb snapshot; later tab edits never touch it.
type TicketItems []TicketItem

func (t TicketItems) Value() (driver.Value, error) {
	if t == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(t)
}

func (t *TicketItems) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*t = nil
		return nil
	case []byte:
		return json.Unmarshal(v, t)
	case string:
		return json.Unmarshal([]byte(v), t)
	}
	return errors.New("ticket items: unsupported source type")
}

var ticketSequence = map[TicketStatus]TicketStatus{
	TicketPending:    TicketInProgress,
	TicketInProgress: TicketReady,
	TicketReady:      TicketDelivered,
}

// Next returns the only legal successor of s, or false when s is terminal.
func (s TicketStatus) Next() (TicketStatus, bool) {
	next, ok := ticketSequence[s]
	return next, ok
}

func (s TicketStatus) Valid() bool {
	switch s {
	case TicketPending, TicketInProgress, TicketReady, TicketDelivered:
		return true
	}
	return false
}

type Urgency string

const (
	UrgencyNormal   Urgency = "normal"
	UrgencyWarning  Urgency = "warning"
	UrgencyCritical Urgency = "critical"
)

// UrgencyFor classifies an elapsed duration against the tenant thresholds.
func UrgencyFor(elapsed, warning, critical time.Duration) Urgency {
	switch {
	case critical > 0 && elapsed >= critical:
		return UrgencyCritical
	case warning > 0 && elapsed >= warning:
		return UrgencyWarning
	}
	return UrgencyNormal
}

// TicketView is a ticket as displayed on a kitchen screen at a given instant.
type TicketView struct {
	KitchenTicket
	Elapsed time.Duration `json:"elapsed"`
	Urgency Urgency       `json:"urgency"`
}
