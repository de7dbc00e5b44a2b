package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"overcooked-pos/pos-svc/internal/domain"
	"overcooked-pos/pos-svc/internal/storage"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

// sweepHorizon bounds the scan for stale pending reservations.
const sweepHorizon = 366 * 24 * time.Hour

// ReservationEngine books tables ahead of time and hands seated parties over
// to a tab. Every reservation occupies [start, start+length+grace) on its table.
type ReservationEngine struct {
	deps Deps
	qr   QRGenerator
}

func NewReservationEngine(deps Deps, qr QRGenerator) *ReservationEngine {
	if qr == nil {
		qr = DefaultQRGenerator{}
	}
	return &ReservationEngine{deps: deps.withDefaults(), qr: qr}
}

type Slot struct {
	StartsAt  time.Time `json:"starts_at"`
	Available bool      `json:"available"`
	TableIDs  []string  `json:"table_ids"`
}

type CreateReservationInput struct {
	StartsAt      time.Time `json:"starts_at"`
	PartySize     int       `json:"party_size"`
	TableID       string    `json:"table_id"`
	CustomerName  string    `json:"customer_name"`
	CustomerPhone string    `json:"customer_phone"`
	CustomerID    *string   `json:"customer_id"`
	Notes         string    `json:"notes"`
}

type SeatResult struct {
	Reservation domain.Reservation `json:"reservation"`
	Tab         domain.Tab         `json:"tab"`
}

type SweepReport struct {
	NoShows []string `json:"no_shows"`
	Expired []string `json:"expired"`
	Held    []string `json:"held"`
}

func (r *SweepReport) Empty() bool {
	return len(r.NoShows) == 0 && len(r.Expired) == 0 && len(r.Held) == 0
}

// ComputeAvailability lists the day's bookable slots for a party, with the
// tables that could take it. date is a local calendar date (YYYY-MM-DD).
func (e *ReservationEngine) ComputeAvailability(ctx context.Context, date string, partySize int) ([]Slot, error) {
	actor, err := actorFrom(ctx, domain.PrivilegeStaff)
	if err != nil {
		return nil, err
	}
	if partySize <= 0 {
		return nil, domain.Validation("party size must be positive")
	}
	settings, err := e.reservationSettings(ctx, actor.TenantID)
	if err != nil {
		return nil, err
	}
	day, err := time.ParseInLocation(dateLayout, date, settings.Location)
	if err != nil {
		return nil, domain.Validation("date must look like %s", dateLayout)
	}
	opens, closes, ok := serviceHours(day, settings)
	if !ok {
		return []Slot{}, nil
	}

	var slots []Slot
	err = e.deps.UoW.RunInTransaction(ctx, actor.TenantID, func(ctx context.Context, r storage.Repos) error {
		tables, booked, err := loadBookings(ctx, r, opens, closes, window(settings))
		if err != nil {
			return err
		}
		slots = computeSlots(tables, booked, opens, closes, partySize, settings, e.deps.Clock.Now())
		return nil
	})
	return slots, err
}

// Create books a table. Without a table id the smallest free table that
// fits is assigned. A full slot is rejected with the nearest open slots of
// the same service attached as alternatives.
func (e *ReservationEngine) Create(ctx context.Context, in CreateReservationInput) (*domain.Reservation, error) {
	actor, err := actorFrom(ctx, domain.PrivilegeStaff)
	if err != nil {
		return nil, err
	}
	if in.PartySize <= 0 {
		return nil, domain.Validation("party size must be positive")
	}
	if strings.TrimSpace(in.CustomerName) == "" {
		return nil, domain.Validation("customer name is required")
	}
	settings, err := e.reservationSettings(ctx, actor.TenantID)
	if err != nil {
		return nil, err
	}
	now := e.deps.Clock.Now()
	if !in.StartsAt.After(now) {
		return nil, domain.Validation("reservation must start in the future")
	}
	opens, closes, err := slotHours(in.StartsAt, settings)
	if err != nil {
		return nil, err
	}
	win := window(settings)

	var res *domain.Reservation
	err = e.deps.UoW.RunInTransaction(ctx, actor.TenantID, func(ctx context.Context, r storage.Repos) error {
		res = nil
		candidates, err := e.candidateTables(ctx, r, in)
		if err != nil {
			return err
		}

		var chosen *domain.Table
		for _, c := range candidates {
			table, err := r.Tables().GetForUpdate(ctx, c.ID)
			if err != nil {
				return notFound(err, domain.CodeTableNotFound, "table", c.ID)
			}
			// Re-read under the table lock so concurrent bookings serialize here.
			near, err := r.Reservations().ListBlocking(ctx, in.StartsAt.Add(-win), in.StartsAt.Add(win))
			if err != nil {
				return err
			}
			if !tableBooked(near, table.ID, in.StartsAt, win) {
				chosen = table
				break
			}
		}
		if chosen == nil {
			tables, booked, err := loadBookings(ctx, r, opens, closes, win)
			if err != nil {
				return err
			}
			slots := computeSlots(tables, booked, opens, closes, in.PartySize, settings, now)
			return domain.Conflict(domain.CodeSlotUnavailable, "no table for %d at %s", in.PartySize, in.StartsAt.In(settings.Location).Format("15:04")).
				With("alternatives", alternatives(slots, in.StartsAt, settings.AlternativeOffered))
		}

		status := domain.ReservationPending
		if settings.AutoConfirm {
			status = domain.ReservationConfirmed
		}
		res = &domain.Reservation{
			ID:               uuid.NewString(),
			StartsAt:         in.StartsAt.UTC(),
			PartySize:        in.PartySize,
			TableID:          &chosen.ID,
			Status:           status,
			ConfirmationCode: newConfirmationCode(),
			CustomerName:     strings.TrimSpace(in.CustomerName),
			CustomerPhone:    in.CustomerPhone,
			CustomerID:       in.CustomerID,
			Notes:            in.Notes,
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		return r.Reservations().Create(ctx, res)
	})
	if err != nil {
		return nil, err
	}

	e.deps.publish(ctx, actor.TenantID, []domain.Event{
		{Name: domain.EventReservationCreated, Payload: *res, OccurredAt: now},
	})
	return res, nil
}

func (e *ReservationEngine) candidateTables(ctx context.Context, r storage.Repos, in CreateReservationInput) ([]domain.Table, error) {
	if in.TableID != "" {
		table, err := r.Tables().Get(ctx, in.TableID)
		if err != nil {
			return nil, notFound(err, domain.CodeTableNotFound, "table", in.TableID)
		}
		if !table.Active {
			return nil, domain.Conflict(domain.CodeTableNotFree, "table %d is out of service", table.Number)
		}
		if table.Capacity < in.PartySize {
			return nil, domain.ValidationCode(domain.CodeTableTooSmall, "table %d seats %d, party is %d",
				table.Number, table.Capacity, in.PartySize)
		}
		return []domain.Table{*table}, nil
	}
	tables, err := r.Tables().List(ctx)
	if err != nil {
		return nil, err
	}
	return fitting(tables, in.PartySize), nil
}

func (e *ReservationEngine) Get(ctx context.Context, id string) (*domain.Reservation, error) {
	actor, err := actorFrom(ctx, domain.PrivilegeStaff)
	if err != nil {
		return nil, err
	}
	var res *domain.Reservation
	err = e.deps.UoW.RunInTransaction(ctx, actor.TenantID, func(ctx context.Context, r storage.Repos) error {
		res, err = r.Reservations().Get(ctx, id)
		return notFound(err, domain.CodeReservationMissing, "reservation", id)
	})
	return res, err
}

func (e *ReservationEngine) Confirm(ctx context.Context, id string) (*domain.Reservation, error) {
	return e.transition(ctx, id, func(ctx context.Context, r storage.Repos, res *domain.Reservation, now time.Time) ([]domain.Event, error) {
		if res.Status != domain.ReservationPending {
			return nil, illegalReservationMove(res, domain.ReservationConfirmed)
		}
		res.Status = domain.ReservationConfirmed
		return nil, nil
	})
}

// Cancel frees the table if the sweep already held it for this booking.
func (e *ReservationEngine) Cancel(ctx context.Context, id, reason string) (*domain.Reservation, error) {
	return e.transition(ctx, id, func(ctx context.Context, r storage.Repos, res *domain.Reservation, now time.Time) ([]domain.Event, error) {
		if res.Status != domain.ReservationPending && res.Status != domain.ReservationConfirmed {
			return nil, illegalReservationMove(res, domain.ReservationCancelled)
		}
		res.Status = domain.ReservationCancelled
		if reason != "" {
			res.Notes = strings.TrimSpace(res.Notes + "\ncancelled: " + reason)
		}
		ev, err := releaseHoldTx(ctx, r, res, now)
		if err != nil || ev == nil {
			return nil, err
		}
		return []domain.Event{*ev}, nil
	})
}

type reservationStep func(ctx context.Context, r storage.Repos, res *domain.Reservation, now time.Time) ([]domain.Event, error)

func (e *ReservationEngine) transition(ctx context.Context, id string, step reservationStep) (*domain.Reservation, error) {
	actor, err := actorFrom(ctx, domain.PrivilegeStaff)
	if err != nil {
		return nil, err
	}

	var (
		res    *domain.Reservation
		events []domain.Event
	)
	err = e.deps.UoW.RunInTransaction(ctx, actor.TenantID, func(ctx context.Context, r storage.Repos) error {
		now := e.deps.Clock.Now()
		res, err = r.Reservations().GetForUpdate(ctx, id)
		if err != nil {
			return notFound(err, domain.CodeReservationMissing, "reservation", id)
		}
		events, err = step(ctx, r, res, now)
		if err != nil {
			return err
		}
		res.UpdatedAt = now
		if err := r.Reservations().Update(ctx, res); err != nil {
			return err
		}
		events = append(events, domain.Event{Name: domain.EventReservationUpdated, Payload: *res, OccurredAt: now})
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.deps.publish(ctx, actor.TenantID, events)
	return res, nil
}

// Seat opens a tab for the party in the same transaction that marks the
// reservation seated. tableID may differ from the booked table, in which case
// a hold on the booked one is released.
func (e *ReservationEngine) Seat(ctx context.Context, id, tableID string) (*SeatResult, error) {
	actor, err := actorFrom(ctx, domain.PrivilegeStaff)
	if err != nil {
		return nil, err
	}

	var (
		result *SeatResult
		events []domain.Event
	)
	err = e.deps.UoW.RunInTransaction(ctx, actor.TenantID, func(ctx context.Context, r storage.Repos) error {
		result, events = nil, nil
		now := e.deps.Clock.Now()

		res, err := r.Reservations().GetForUpdate(ctx, id)
		if err != nil {
			return notFound(err, domain.CodeReservationMissing, "reservation", id)
		}
		if res.Status != domain.ReservationPending && res.Status != domain.ReservationConfirmed {
			return illegalReservationMove(res, domain.ReservationSeated)
		}
		target := tableID
		if target == "" {
			if res.TableID == nil {
				return domain.Validation("table id is required")
			}
			target = *res.TableID
		}

		ids := []string{target}
		if res.TableID != nil && *res.TableID != target {
			ids = append(ids, *res.TableID)
		}
		sort.Strings(ids)
		locked := make(map[string]*domain.Table, len(ids))
		for _, tid := range ids {
			t, err := r.Tables().GetForUpdate(ctx, tid)
			if err != nil {
				return notFound(err, domain.CodeTableNotFound, "table", tid)
			}
			locked[tid] = t
		}

		if res.TableID != nil && *res.TableID != target {
			if ev, err := releaseHeldTableTx(ctx, r, locked[*res.TableID], res.ID, now); err != nil {
				return err
			} else if ev != nil {
				events = append(events, *ev)
			}
		}

		tab, opened, err := openTabTx(ctx, r, locked[target], openTabArgs{
			serverID:      actor.StaffID,
			partySize:     res.PartySize,
			customerID:    res.CustomerID,
			reservationID: &res.ID,
			now:           now,
		})
		if err != nil {
			return err
		}
		events = append(events, opened...)

		res.Status = domain.ReservationSeated
		res.TableID = &tab.TableID
		res.TabID = &tab.ID
		res.UpdatedAt = now
		if err := r.Reservations().Update(ctx, res); err != nil {
			return err
		}
		events = append(events, domain.Event{Name: domain.EventReservationUpdated, Payload: *res, OccurredAt: now})
		result = &SeatResult{Reservation: *res, Tab: *tab}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.deps.Metrics.TabsOpened.Inc()
	e.deps.publish(ctx, actor.TenantID, events)
	return result, nil
}

// Sweep applies the time-driven transitions for one tenant: confirmed
// reservations unseated past start+grace become no-shows, pending ones past
// start+grace or older than the pending TTL expire, and confirmed ones within
// the hold lead get their table held. Running it twice changes nothing more.
func (e *ReservationEngine) Sweep(ctx context.Context, tenantID string) (*SweepReport, error) {
	settings, err := e.reservationSettings(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	var (
		report *SweepReport
		events []domain.Event
	)
	err = e.deps.UoW.RunInTransaction(ctx, tenantID, func(ctx context.Context, r storage.Repos) error {
		report, events = &SweepReport{}, nil
		now := e.deps.Clock.Now()

		lapse := func(res *domain.Reservation, to domain.ReservationStatus) error {
			res.Status = to
			res.UpdatedAt = now
			if err := r.Reservations().Update(ctx, res); err != nil {
				return err
			}
			events = append(events, domain.Event{Name: domain.EventReservationUpdated, Payload: *res, OccurredAt: now})
			ev, err := releaseHoldTx(ctx, r, res, now)
			if err != nil {
				return err
			}
			if ev != nil {
				events = append(events, *ev)
			}
			if to == domain.ReservationNoShow {
				report.NoShows = append(report.NoShows, res.ID)
			} else {
				report.Expired = append(report.Expired, res.ID)
			}
			return nil
		}

		due, err := r.Reservations().ListDue(ctx,
			[]domain.ReservationStatus{domain.ReservationPending, domain.ReservationConfirmed},
			now.Add(-settings.ReservationGrace))
		if err != nil {
			return err
		}
		for i := range due {
			to := domain.ReservationExpired
			if due[i].Status == domain.ReservationConfirmed {
				to = domain.ReservationNoShow
			}
			if err := lapse(&due[i], to); err != nil {
				return err
			}
		}

		if settings.PendingTTL > 0 {
			pending, err := r.Reservations().ListDue(ctx, []domain.ReservationStatus{domain.ReservationPending}, now.Add(sweepHorizon))
			if err != nil {
				return err
			}
			for i := range pending {
				if pending[i].CreatedAt.Add(settings.PendingTTL).After(now) {
					continue
				}
				if err := lapse(&pending[i], domain.ReservationExpired); err != nil {
					return err
				}
			}
		}

		if settings.HoldLead <= 0 {
			return nil
		}
		upcoming, err := r.Reservations().ListDue(ctx, []domain.ReservationStatus{domain.ReservationConfirmed}, now.Add(settings.HoldLead))
		if err != nil {
			return err
		}
		for _, res := range upcoming {
			if res.TableID == nil {
				continue
			}
			table, err := r.Tables().GetForUpdate(ctx, *res.TableID)
			if errors.Is(err, storage.ErrNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			if !table.Active || table.State != domain.TableFree {
				continue
			}
			table.State = domain.TableReserved
			table.HeldBy = &res.ID
			table.UpdatedAt = now
			if err := r.Tables().Update(ctx, table); err != nil {
				return err
			}
			events = append(events, domain.Event{Name: domain.EventTableReserved, Payload: *table, OccurredAt: now})
			report.Held = append(report.Held, res.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.deps.Metrics.SweepTransitions.WithLabelValues(string(domain.ReservationNoShow)).Add(float64(len(report.NoShows)))
	e.deps.Metrics.SweepTransitions.WithLabelValues(string(domain.ReservationExpired)).Add(float64(len(report.Expired)))
	e.deps.Metrics.SweepTransitions.WithLabelValues("held").Add(float64(len(report.Held)))
	if !report.Empty() {
		e.deps.Logger.Info("reservation sweep",
			zap.String("tenant_id", tenantID),
			zap.Int("no_shows", len(report.NoShows)),
			zap.Int("expired", len(report.Expired)),
			zap.Int("held", len(report.Held)))
	}
	e.deps.publish(ctx, tenantID, events)
	return report, nil
}

// ConfirmationQR renders the reservation's confirmation code as a PNG.
func (e *ReservationEngine) ConfirmationQR(ctx context.Context, id string) ([]byte, error) {
	res, err := e.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	png, err := e.qr.Generate(res.ConfirmationCode)
	if err != nil {
		return nil, domain.Internal(err, "render confirmation code")
	}
	return png, nil
}

func (e *ReservationEngine) reservationSettings(ctx context.Context, tenantID string) (domain.TenantSettings, error) {
	s, err := e.deps.settings(ctx, tenantID)
	if err != nil {
		return s, err
	}
	if s.SlotGranularity <= 0 || s.ReservationLength <= 0 {
		return s, domain.Internal(nil, "reservations are not configured for tenant %s", tenantID)
	}
	if s.Location == nil {
		s.Location = time.UTC
	}
	return s, nil
}

func releaseHoldTx(ctx context.Context, r storage.Repos, res *domain.Reservation, now time.Time) (*domain.Event, error) {
	if res.TableID == nil {
		return nil, nil
	}
	table, err := r.Tables().GetForUpdate(ctx, *res.TableID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return releaseHeldTableTx(ctx, r, table, res.ID, now)
}

// releaseHeldTableTx frees table only if it is held for reservationID.
func releaseHeldTableTx(ctx context.Context, r storage.Repos, table *domain.Table, reservationID string, now time.Time) (*domain.Event, error) {
	if table.State != domain.TableReserved || table.HeldBy == nil || *table.HeldBy != reservationID {
		return nil, nil
	}
	table.Release(now)
	if err := r.Tables().Update(ctx, table); err != nil {
		return nil, err
	}
	return &domain.Event{Name: domain.EventTableFreed, Payload: *table, OccurredAt: now}, nil
}

func illegalReservationMove(res *domain.Reservation, to domain.ReservationStatus) error {
	return domain.Conflict(domain.CodeIllegalTransition, "reservation cannot move from %s to %s", res.Status, to).
		With("from", res.Status).With("to", to)
}

func window(s domain.TenantSettings) time.Duration {
	return s.ReservationLength + s.ReservationGrace
}

// serviceHours returns the opening and closing instants of the service that
// starts on day's local date.
func serviceHours(day time.Time, s domain.TenantSettings) (time.Time, time.Time, bool) {
	y, m, d := day.In(s.Location).Date()
	hours, ok := s.OperatingHours[time.Date(y, m, d, 0, 0, 0, 0, s.Location).Weekday()]
	if !ok || hours.Closed() {
		return time.Time{}, time.Time{}, false
	}
	return time.Date(y, m, d, 0, hours.Open, 0, 0, s.Location),
		time.Date(y, m, d, 0, hours.Close, 0, 0, s.Location), true
}

// slotHours finds the service start belongs to. A service closing after
// midnight owns the early slots of the next date.
func slotHours(start time.Time, s domain.TenantSettings) (time.Time, time.Time, error) {
	local := start.In(s.Location)
	for _, back := range []int{0, -1} {
		opens, closes, ok := serviceHours(local.AddDate(0, 0, back), s)
		if !ok || start.Before(opens) || start.Add(s.ReservationLength).After(closes) {
			continue
		}
		if start.Sub(opens)%s.SlotGranularity == 0 {
			return opens, closes, nil
		}
	}
	return time.Time{}, time.Time{}, domain.Validation("%s is not a bookable slot", local.Format("2006-01-02 15:04"))
}

func loadBookings(ctx context.Context, r storage.Repos, opens, closes time.Time, win time.Duration) ([]domain.Table, []domain.Reservation, error) {
	tables, err := r.Tables().List(ctx)
	if err != nil {
		return nil, nil, err
	}
	booked, err := r.Reservations().ListBlocking(ctx, opens.Add(-win), closes.Add(win))
	if err != nil {
		return nil, nil, err
	}
	return tables, booked, nil
}

func computeSlots(tables []domain.Table, booked []domain.Reservation, opens, closes time.Time, partySize int, s domain.TenantSettings, now time.Time) []Slot {
	win := window(s)
	candidates := fitting(tables, partySize)
	slots := []Slot{}
	for start := opens; !start.Add(s.ReservationLength).After(closes); start = start.Add(s.SlotGranularity) {
		if !start.After(now) {
			continue
		}
		slot := Slot{StartsAt: start.UTC(), TableIDs: []string{}}
		for _, t := range candidates {
			if !tableBooked(booked, t.ID, start, win) {
				slot.TableIDs = append(slot.TableIDs, t.ID)
			}
		}
		slot.Available = len(slot.TableIDs) > 0
		slots = append(slots, slot)
	}
	return slots
}

// fitting returns active tables that seat partySize, smallest first.
func fitting(tables []domain.Table, partySize int) []domain.Table {
	var out []domain.Table
	for _, t := range tables {
		if t.Active && t.Capacity >= partySize {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Capacity != out[j].Capacity {
			return out[i].Capacity < out[j].Capacity
		}
		return out[i].Number < out[j].Number
	})
	return out
}

func tableBooked(booked []domain.Reservation, tableID string, start time.Time, win time.Duration) bool {
	for _, b := range booked {
		if b.TableID == nil || *b.TableID != tableID || !b.Blocking() {
			continue
		}
		if b.StartsAt.Before(start.Add(win)) && start.Before(b.StartsAt.Add(win)) {
			return true
		}
	}
	return false
}

// alternatives picks up to n open slots closest to want.
func alternatives(slots []Slot, want time.Time, n int) []time.Time {
	var free []Slot
	for _, s := range slots {
		if s.Available && !s.StartsAt.Equal(want) {
			free = append(free, s)
		}
	}
	dist := func(t time.Time) time.Duration {
		d := t.Sub(want)
		if d < 0 {
			return -d
		}
		return d
	}
	sort.SliceStable(free, func(i, j int) bool { return dist(free[i].StartsAt) < dist(free[j].StartsAt) })
	out := []time.Time{}
	for i := 0; i < len(free) && i < n; i++ {
		out = append(out, free[i].StartsAt)
	}
	return out
}

func newConfirmationCode() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:8]
}
