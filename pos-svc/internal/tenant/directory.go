package tenant

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"overcooked-pos/pos-svc/internal/domain"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

type tenantsFile struct {
	Tenants []tenantEntry `yaml:"tenants"`
}

type tenantEntry struct {
	ID               string               `yaml:"id"`
	TaxRate          string               `yaml:"tax_rate"`
	SalesWarehouseID string               `yaml:"sales_warehouse_id"`
	OverrideCodes    []string             `yaml:"override_codes"`
	TicketWarning    time.Duration        `yaml:"ticket_warning"`
	TicketCritical   time.Duration        `yaml:"ticket_critical"`
	Timezone         string               `yaml:"timezone"`
	Hours            map[string]hoursSpec `yaml:"hours"`
	Reservations     reservationSpec      `yaml:"reservations"`
	Loyalty          loyaltySpec          `yaml:"loyalty"`
}

// hoursSpec uses HH:MM; close may go past 24:00 for services ending after midnight.
type hoursSpec struct {
	Open  string `yaml:"open"`
	Close string `yaml:"close"`
}

type reservationSpec struct {
	Slot         time.Duration `yaml:"slot"`
	Length       time.Duration `yaml:"length"`
	Grace        time.Duration `yaml:"grace"`
	HoldLead     time.Duration `yaml:"hold_lead"`
	PendingTTL   time.Duration `yaml:"pending_ttl"`
	AutoConfirm  bool          `yaml:"auto_confirm"`
	Alternatives int           `yaml:"alternatives"`
}

type loyaltySpec struct {
	PointsPerUnit string        `yaml:"points_per_unit"`
	MinRedeem     int64         `yaml:"min_redeem"`
	Tiers         []domain.Tier `yaml:"tiers"`
}

var weekdays = map[string]time.Weekday{
	"sunday": time.Sunday, "monday": time.Monday, "tuesday": time.Tuesday, "wednesday": time.Wednesday,
	"thursday": time.Thursday, "friday": time.Friday, "saturday": time.Saturday,
}

// TenantDirectory serves per-tenant settings loaded once at startup.
type TenantDirectory struct {
	settings map[string]domain.TenantSettings
	ids      []string
}

func LoadTenants(path string) (*TenantDirectory, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tenants file: %w", err)
	}
	return ParseTenants(raw)
}

func ParseTenants(raw []byte) (*TenantDirectory, error) {
	var file tenantsFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse tenants file: %w", err)
	}
	dir := &TenantDirectory{settings: make(map[string]domain.TenantSettings, len(file.Tenants))}
	for _, entry := range file.Tenants {
		if entry.ID == "" {
			return nil, fmt.Errorf("tenant without id")
		}
		if _, dup := dir.settings[entry.ID]; dup {
			return nil, fmt.Errorf("tenant %s listed twice", entry.ID)
		}
		s, err := entry.settings()
		if err != nil {
			return nil, fmt.Errorf("tenant %s: %w", entry.ID, err)
		}
		dir.settings[entry.ID] = s
		dir.ids = append(dir.ids, entry.ID)
	}
	sort.Strings(dir.ids)
	return dir, nil
}

func (d *TenantDirectory) Settings(_ context.Context, tenantID string) (domain.TenantSettings, error) {
	s, ok := d.settings[tenantID]
	if !ok {
		return domain.TenantSettings{}, domain.Forbidden("unknown tenant %s", tenantID)
	}
	return s, nil
}

func (d *TenantDirectory) Tenants(context.Context) ([]string, error) {
	return append([]string(nil), d.ids...), nil
}

func (e tenantEntry) settings() (domain.TenantSettings, error) {
	s := domain.TenantSettings{
		SalesWarehouseID:   orDefault(e.SalesWarehouseID, "main"),
		OverrideCodes:      e.OverrideCodes,
		TicketWarning:      durationOr(e.TicketWarning, 10*time.Minute),
		TicketCritical:     durationOr(e.TicketCritical, 20*time.Minute),
		OperatingHours:     make(map[time.Weekday]domain.OpeningHours, len(e.Hours)),
		SlotGranularity:    durationOr(e.Reservations.Slot, 30*time.Minute),
		ReservationLength:  durationOr(e.Reservations.Length, 2*time.Hour),
		ReservationGrace:   durationOr(e.Reservations.Grace, 15*time.Minute),
		HoldLead:           e.Reservations.HoldLead,
		PendingTTL:         e.Reservations.PendingTTL,
		AutoConfirm:        e.Reservations.AutoConfirm,
		AlternativeOffered: e.Reservations.Alternatives,
		MinRedeemable:      e.Loyalty.MinRedeem,
		Tiers:              e.Loyalty.Tiers,
	}
	if s.AlternativeOffered == 0 {
		s.AlternativeOffered = 3
	}
	if s.TicketCritical < s.TicketWarning {
		return s, fmt.Errorf("ticket_critical is below ticket_warning")
	}

	var err error
	if s.TaxRate, err = decimalOr(e.TaxRate, decimal.Zero); err != nil {
		return s, fmt.Errorf("tax_rate: %w", err)
	}
	if s.PointsPerUnit, err = decimalOr(e.Loyalty.PointsPerUnit, decimal.RequireFromString("0.01")); err != nil {
		return s, fmt.Errorf("points_per_unit: %w", err)
	}
	if s.TaxRate.IsNegative() || s.PointsPerUnit.IsNegative() {
		return s, fmt.Errorf("rates must not be negative")
	}

	s.Location = time.UTC
	if e.Timezone != "" {
		if s.Location, err = time.LoadLocation(e.Timezone); err != nil {
			return s, fmt.Errorf("timezone: %w", err)
		}
	}

	for day, spec := range e.Hours {
		wd, ok := weekdays[strings.ToLower(day)]
		if !ok {
			return s, fmt.Errorf("unknown weekday %q", day)
		}
		open, err := clockMinutes(spec.Open)
		if err != nil {
			return s, fmt.Errorf("%s open: %w", day, err)
		}
		closing, err := clockMinutes(spec.Close)
		if err != nil {
			return s, fmt.Errorf("%s close: %w", day, err)
		}
		s.OperatingHours[wd] = domain.OpeningHours{Open: open, Close: closing}
	}
	return s, nil
}

// clockMinutes parses HH:MM into minutes after midnight. Hours up to 47 are allowed.
func clockMinutes(v string) (int, error) {
	var h, m int
	if _, err := fmt.Sscanf(v, "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("%q is not HH:MM", v)
	}
	if h < 0 || h > 47 || m < 0 || m > 59 {
		return 0, fmt.Errorf("%q is out of range", v)
	}
	return h*60 + m, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func durationOr(v, def time.Duration) time.Duration {
	if v <= 0 {
		return def
	}
	return v
}

func decimalOr(v string, def decimal.Decimal) (decimal.Decimal, error) {
	if v == "" {
		return def, nil
	}
	return decimal.NewFromString(v)
}
