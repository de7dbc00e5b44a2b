package domain

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// TenantSettings is the per-tenant configuration consumed by the engines.
type TenantSettings struct {
	TaxRate            decimal.Decimal
	SalesWarehouseID   string
	OverrideCodes      []string
	TicketWarning      time.Duration
	TicketCritical     time.Duration
	Location           *time.Location
	OperatingHours     map[time.Weekday]OpeningHours
	SlotGranularity    time.Duration
	ReservationLength  time.Duration
	ReservationGrace   time.Duration
	HoldLead           time.Duration
	PendingTTL         time.Duration
	AutoConfirm        bool
	PointsPerUnit      decimal.Decimal
	MinRedeemable      int64
	Tiers              []Tier
	AlternativeOffered int
}

// OpeningHours are minutes from local midnight. Close may exceed 24h for late services.
type OpeningHours struct {
	Open  int
	Close int
}

func (h OpeningHours) Closed() bool {
	return h.Close <= h.Open
}

type Tier struct {
	Name      string `json:"name"`
	Threshold int64  `json:"threshold"`
}

// TaxOn computes tax for a subtotal, rounding half away from zero to the minor unit.
func TaxOn(subtotal int64, rate decimal.Decimal) int64 {
	return decimal.NewFromInt(subtotal).Mul(rate).Round(0).IntPart()
}

// TierFor returns the highest tier whose threshold is at or below points.
// An empty name means the balance is below every tier.
func TierFor(points int64, tiers []Tier) string {
	sorted := make([]Tier, len(tiers))
	copy(sorted, tiers)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Threshold < sorted[j].Threshold })

	name := ""
	for _, t := range sorted {
		if t.Threshold > points {
			break
		}
		name = t.Name
	}
	return name
}

// PointsFor floors amount × rate.
func PointsFor(amount int64, rate decimal.Decimal) int64 {
	return decimal.NewFromInt(amount).Mul(rate).Floor().IntPart()
}
