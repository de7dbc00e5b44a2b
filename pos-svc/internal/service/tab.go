package service

import (
	"context"
	"crypto/subtle"
	"math"
	"time"

	"overcooked-pos/pos-svc/internal/domain"
	"overcooked-pos/pos-svc/internal/storage"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TabEngine drives the table and tab lifecycle. Every operation that touches
// both a tab and its table does so in one transaction, locking the tab
// before the table.
type TabEngine struct {
	deps Deps
}

// MaxLineQty caps the quantity of one line item.
const MaxLineQty = 999

func NewTabEngine(deps Deps) *TabEngine {
	return &TabEngine{deps: deps.withDefaults()}
}

type OpenTableInput struct {
	TableID    string  `json:"table_id"`
	PartySize  int     `json:"party_size"`
	ServerID   string  `json:"server_id"`
	CustomerID *string `json:"customer_id,omitempty"`
}

type AddItemInput struct {
	TabID        string `json:"tab_id"`
	ProductID    string `json:"product_id"`
	Qty          int    `json:"qty"`
	Notes        string `json:"notes"`
	OverrideCode string `json:"override_code"`
}

type AddItemResult struct {
	Item         *domain.LineItem     `json:"item"`
	Tab          *domain.Tab          `json:"tab"`
	Warning      bool                 `json:"warning"`
	Availability *domain.Availability `json:"availability"`
}

type PayInput struct {
	TabID           string  `json:"tab_id"`
	PaymentMethodID string  `json:"payment_method_id"`
	Tip             int64   `json:"tip"`
	CustomerID      *string `json:"customer_id,omitempty"`
}

type PayResult struct {
	Tab           *domain.Tab `json:"tab"`
	PointsAccrued int64       `json:"points_accrued"`
}

type CloseInput struct {
	TabID        string `json:"tab_id"`
	Reason       string `json:"reason"`
	RestoreStock bool   `json:"restore_stock"`
}

func (e *TabEngine) OpenTable(ctx context.Context, in OpenTableInput) (*domain.Tab, error) {
	actor, err := actorFrom(ctx, domain.PrivilegeStaff)
	if err != nil {
		return nil, err
	}
	if in.TableID == "" {
		return nil, domain.Validation("table id is required")
	}
	if in.PartySize <= 0 {
		return nil, domain.Validation("party size must be positive")
	}
	if in.ServerID == "" {
		in.ServerID = actor.StaffID
	}

	var (
		tab    *domain.Tab
		events []domain.Event
	)
	err = e.deps.UoW.RunInTransaction(ctx, actor.TenantID, func(ctx context.Context, r storage.Repos) error {
		table, err := r.Tables().GetForUpdate(ctx, in.TableID)
		if err != nil {
			return notFound(err, domain.CodeTableNotFound, "table", in.TableID)
		}
		tab, events, err = openTabTx(ctx, r, table, openTabArgs{
			serverID:   in.ServerID,
			partySize:  in.PartySize,
			customerID: in.CustomerID,
			now:        e.deps.Clock.Now(),
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	e.deps.Metrics.TabsOpened.Inc()
	e.deps.publish(ctx, actor.TenantID, events)
	return tab, nil
}

type openTabArgs struct {
	serverID      string
	partySize     int
	customerID    *string
	reservationID *string
	now           time.Time
}

// openTabTx occupies a locked table with a new open tab. A reserved table can
// only be opened by the reservation holding it.
func openTabTx(ctx context.Context, r storage.Repos, table *domain.Table, args openTabArgs) (*domain.Tab, []domain.Event, error) {
	if !table.Active {
		return nil, nil, domain.Conflict(domain.CodeTableNotFree, "table %d is out of service", table.Number)
	}
	switch table.State {
	case domain.TableFree:
	case domain.TableReserved:
		if args.reservationID == nil || table.HeldBy == nil || *table.HeldBy != *args.reservationID {
			return nil, nil, domain.Conflict(domain.CodeTableNotFree, "table %d is held for a reservation", table.Number).
				With("table_id", table.ID)
		}
	default:
		return nil, nil, domain.Conflict(domain.CodeTableNotFree, "table %d is %s", table.Number, table.State).
			With("table_id", table.ID)
	}
	if args.partySize > table.Capacity {
		return nil, nil, domain.ValidationCode(domain.CodeTableTooSmall, "table %d seats %d, party is %d",
			table.Number, table.Capacity, args.partySize)
	}

	tab := &domain.Tab{
		ID:            uuid.NewString(),
		TableID:       table.ID,
		State:         domain.TabOpen,
		ServerID:      args.serverID,
		PartySize:     args.partySize,
		ReservationID: args.reservationID,
		CustomerID:    args.customerID,
		OpenedAt:      args.now,
		UpdatedAt:     args.now,
	}
	if err := r.Tabs().Create(ctx, tab); err != nil {
		return nil, nil, err
	}

	table.State = domain.TableOccupied
	table.TabID = &tab.ID
	table.ServerID = &args.serverID
	table.PartySize = args.partySize
	table.HeldBy = nil
	table.UpdatedAt = args.now
	if err := r.Tables().Update(ctx, table); err != nil {
		return nil, nil, err
	}

	return tab, []domain.Event{
		{Name: domain.EventTableOccupied, Payload: *table, OccurredAt: args.now},
		{Name: domain.EventTabUpdated, Payload: *tab, OccurredAt: args.now},
	}, nil
}

func (e *TabEngine) AddLineItem(ctx context.Context, in AddItemInput) (*AddItemResult, error) {
	actor, err := actorFrom(ctx, domain.PrivilegeStaff)
	if err != nil {
		return nil, err
	}
	if in.TabID == "" || in.ProductID == "" {
		return nil, domain.Validation("tab and product are required")
	}
	if in.Qty <= 0 {
		return nil, domain.Validation("quantity must be positive")
	}
	if in.Qty > MaxLineQty {
		return nil, domain.Validation("quantity must be at most %d", MaxLineQty).With("qty", in.Qty)
	}
	settings, err := e.deps.settings(ctx, actor.TenantID)
	if err != nil {
		return nil, err
	}

	var (
		res    *AddItemResult
		events []domain.Event
		audit  auditLog
	)
	err = e.deps.UoW.RunInTransaction(ctx, actor.TenantID, func(ctx context.Context, r storage.Repos) error {
		events, audit = nil, nil
		now := e.deps.Clock.Now()

		tab, err := r.Tabs().GetForUpdate(ctx, in.TabID)
		if err != nil {
			return notFound(err, domain.CodeTabNotFound, "tab", in.TabID)
		}
		if tab.State != domain.TabOpen {
			return domain.Conflict(domain.CodeTabClosed, "tab is %s, items can only be added while open", tab.State).
				With("tab_id", tab.ID)
		}

		av, ex, err := availabilityTx(ctx, r, settings.SalesWarehouseID, in.ProductID, decimal.NewFromInt(int64(in.Qty)), true)
		if err != nil {
			return err
		}

		warning := false
		switch av.Status {
		case domain.StockBlocked:
			e.deps.Metrics.ItemsRejected.WithLabelValues("blocked").Inc()
			return domain.Conflict(domain.CodeProductBlocked, "product %s is blocked", in.ProductID).
				With("blocked_by", av.BlockedBy)
		case domain.StockInsufficient:
			if av.Policy == domain.PolicyHardStop {
				e.deps.Metrics.ItemsRejected.WithLabelValues("insufficient").Inc()
				return domain.Conflict(domain.CodeInsufficientStock, "not enough stock for %d x %s", in.Qty, ex.Product.Name).
					With("shortages", av.Shortages)
			}
			if in.OverrideCode != "" && validOverride(in.OverrideCode, settings.OverrideCodes) {
				audit.add(actor, "stock_override", "tab", tab.ID, "product %s qty %d", in.ProductID, in.Qty)
			} else {
				warning = true
			}
		}

		if ex.Product.Price > math.MaxInt64/int64(in.Qty) {
			return domain.Validation("line amount out of range").With("qty", in.Qty)
		}

		item := &domain.LineItem{
			ID:        uuid.NewString(),
			TabID:     tab.ID,
			ProductID: ex.Product.ID,
			Name:      ex.Product.Name,
			Qty:       in.Qty,
			UnitPrice: ex.Product.Price,
			Extended:  ex.Product.Price * int64(in.Qty),
			State:     domain.ItemActive,
			Warning:   warning,
			Notes:     in.Notes,
			AddedBy:   actor.StaffID,
			CreatedAt: now,
		}
		if err := r.Tabs().CreateItem(ctx, item); err != nil {
			return err
		}

		alerts, err := consumeTx(ctx, r, settings.SalesWarehouseID, av.Requirements, item.ID, actor.StaffID, now)
		if err != nil {
			return err
		}
		events = append(events, alerts...)

		if err := refreshTotalsTx(ctx, r, tab, settings.TaxRate, now); err != nil {
			return err
		}
		events = append(events, domain.Event{Name: domain.EventTabUpdated, Payload: *tab, OccurredAt: now})

		res = &AddItemResult{Item: item, Tab: tab, Warning: warning, Availability: av}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if res.Warning {
		e.deps.Metrics.StockWarnings.Inc()
	}
	e.deps.publish(ctx, actor.TenantID, events)
	e.deps.audit(ctx, actor.TenantID, audit)
	return res, nil
}

func validOverride(code string, accepted []string) bool {
	for _, c := range accepted {
		if subtle.ConstantTimeCompare([]byte(code), []byte(c)) == 1 {
			return true
		}
	}
	return false
}

// VoidLineItem removes an item from its tab and reverses the stock it
// consumed. Items already sent to the kitchen need a manager.
func (e *TabEngine) VoidLineItem(ctx context.Context, itemID, reason string) (*domain.Tab, error) {
	return e.changeItem(ctx, itemID, domain.ItemVoided, reason)
}

// CompLineItem keeps the item and its stock consumption but drops it from
// the bill.
func (e *TabEngine) CompLineItem(ctx context.Context, itemID, reason string) (*domain.Tab, error) {
	return e.changeItem(ctx, itemID, domain.ItemComplimentary, reason)
}

func (e *TabEngine) changeItem(ctx context.Context, itemID string, target domain.LineItemState, reason string) (*domain.Tab, error) {
	need := domain.PrivilegeStaff
	if target == domain.ItemComplimentary {
		need = domain.PrivilegeManager
	}
	actor, err := actorFrom(ctx, need)
	if err != nil {
		return nil, err
	}
	if itemID == "" {
		return nil, domain.Validation("line item id is required")
	}
	settings, err := e.deps.settings(ctx, actor.TenantID)
	if err != nil {
		return nil, err
	}

	var (
		tab    *domain.Tab
		events []domain.Event
		audit  auditLog
	)
	err = e.deps.UoW.RunInTransaction(ctx, actor.TenantID, func(ctx context.Context, r storage.Repos) error {
		events, audit = nil, nil
		now := e.deps.Clock.Now()

		item, err := r.Tabs().GetItem(ctx, itemID)
		if err != nil {
			return notFound(err, domain.CodeItemNotFound, "line item", itemID)
		}
		tab, err = r.Tabs().GetForUpdate(ctx, item.TabID)
		if err != nil {
			return notFound(err, domain.CodeTabNotFound, "tab", item.TabID)
		}
		if !tab.Live() {
			return domain.Conflict(domain.CodeTabClosed, "tab is already %s", tab.State).With("tab_id", tab.ID)
		}
		// Re-read under the tab lock; a concurrent void may have won.
		item, err = r.Tabs().GetItem(ctx, itemID)
		if err != nil {
			return notFound(err, domain.CodeItemNotFound, "line item", itemID)
		}

		switch {
		case item.State == domain.ItemVoided:
			return domain.Conflict(domain.CodeItemNotActive, "line item is already voided")
		case target == domain.ItemComplimentary && item.State != domain.ItemActive:
			return domain.Conflict(domain.CodeItemNotActive, "line item is %s", item.State)
		case target == domain.ItemVoided && item.SentAt != nil && !actor.Can(domain.PrivilegeManager):
			return domain.Forbidden("voiding an item already sent to the kitchen needs a manager")
		}

		item.State = target
		if target == domain.ItemVoided {
			item.VoidedAt = &now
			if err := reverseTx(ctx, r, domain.RefLineItem, item.ID, actor.StaffID, now); err != nil {
				return err
			}
		}
		if err := r.Tabs().UpdateItem(ctx, item); err != nil {
			return err
		}

		if err := refreshTotalsTx(ctx, r, tab, settings.TaxRate, now); err != nil {
			return err
		}
		audit.add(actor, "line_item_"+string(target), "line_item", item.ID, "%s", reason)
		events = append(events, domain.Event{Name: domain.EventTabUpdated, Payload: *tab, OccurredAt: now})
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.deps.publish(ctx, actor.TenantID, events)
	e.deps.audit(ctx, actor.TenantID, audit)
	return tab, nil
}

// RequestPreCheck freezes the tab for printing the bill. No items can be
// added afterwards.
func (e *TabEngine) RequestPreCheck(ctx context.Context, tabID string) (*domain.Tab, error) {
	actor, err := actorFrom(ctx, domain.PrivilegeStaff)
	if err != nil {
		return nil, err
	}

	var tab *domain.Tab
	err = e.deps.UoW.RunInTransaction(ctx, actor.TenantID, func(ctx context.Context, r storage.Repos) error {
		tab, err = r.Tabs().GetForUpdate(ctx, tabID)
		if err != nil {
			return notFound(err, domain.CodeTabNotFound, "tab", tabID)
		}
		if tab.State != domain.TabOpen {
			return domain.Conflict(domain.CodeIllegalTransition, "cannot pre-check a %s tab", tab.State)
		}
		items, err := r.Tabs().ListItems(ctx, tab.ID)
		if err != nil {
			return err
		}
		if countActive(items) == 0 {
			return domain.Conflict(domain.CodeTabEmpty, "tab has no active items")
		}
		tab.State = domain.TabPreCheck
		tab.UpdatedAt = e.deps.Clock.Now()
		tab.Items = items
		return r.Tabs().Update(ctx, tab)
	})
	if err != nil {
		return nil, err
	}

	e.deps.publish(ctx, actor.TenantID, []domain.Event{{Name: domain.EventTabUpdated, Payload: *tab}})
	return tab, nil
}

// PayTab settles the tab and frees its table in one transaction. When a
// customer is attached, loyalty points accrue on the pre-tip total in the
// same transaction.
func (e *TabEngine) PayTab(ctx context.Context, in PayInput) (*PayResult, error) {
	actor, err := actorFrom(ctx, domain.PrivilegeStaff)
	if err != nil {
		return nil, err
	}
	if in.TabID == "" {
		return nil, domain.Validation("tab id is required")
	}
	if in.Tip < 0 {
		return nil, domain.Validation("tip must not be negative")
	}
	settings, err := e.deps.settings(ctx, actor.TenantID)
	if err != nil {
		return nil, err
	}

	var (
		res    *PayResult
		events []domain.Event
	)
	err = e.deps.UoW.RunInTransaction(ctx, actor.TenantID, func(ctx context.Context, r storage.Repos) error {
		events = nil
		now := e.deps.Clock.Now()

		tab, err := r.Tabs().GetForUpdate(ctx, in.TabID)
		if err != nil {
			return notFound(err, domain.CodeTabNotFound, "tab", in.TabID)
		}
		if !tab.Live() {
			return domain.Conflict(domain.CodeTabClosed, "tab is already %s", tab.State).With("tab_id", tab.ID)
		}

		items, err := r.Tabs().ListItems(ctx, tab.ID)
		if err != nil {
			return err
		}
		if countActive(items) == 0 {
			return domain.Conflict(domain.CodeTabEmpty, "tab has no active items")
		}

		tab.Tip = in.Tip
		applyTotals(tab, items, settings.TaxRate)
		tab.State = domain.TabPaid
		tab.ClosedAt = &now
		tab.UpdatedAt = now
		if in.PaymentMethodID != "" {
			tab.PaymentMethodID = &in.PaymentMethodID
		}
		if in.CustomerID != nil && *in.CustomerID != "" {
			tab.CustomerID = in.CustomerID
		}
		if err := r.Tabs().Update(ctx, tab); err != nil {
			return err
		}
		tab.Items = items

		table, err := releaseTableTx(ctx, r, tab, now)
		if err != nil {
			return err
		}

		res = &PayResult{Tab: tab}
		events = append(events,
			domain.Event{Name: domain.EventTabPaid, Payload: *tab, OccurredAt: now},
			domain.Event{Name: domain.EventTableFreed, Payload: *table, OccurredAt: now},
		)

		if tab.CustomerID != nil && settings.PointsPerUnit.IsPositive() {
			acct, points, err := accrueTx(ctx, r, *tab.CustomerID, tab.Subtotal+tab.Tax, settings.PointsPerUnit,
				domain.RefTab+":"+tab.ID, actor.StaffID, now)
			if err != nil {
				return err
			}
			res.PointsAccrued = points
			events = append(events, balanceEvent(acct, settings, now))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.deps.Metrics.TabsClosed.WithLabelValues(string(domain.TabPaid)).Inc()
	e.deps.publish(ctx, actor.TenantID, events)
	return res, nil
}

// CloseTab is the administrative void of a whole tab. Stock stays consumed
// unless RestoreStock is set.
func (e *TabEngine) CloseTab(ctx context.Context, in CloseInput) (*domain.Tab, error) {
	actor, err := actorFrom(ctx, domain.PrivilegeManager)
	if err != nil {
		return nil, err
	}
	if in.TabID == "" {
		return nil, domain.Validation("tab id is required")
	}

	var (
		tab    *domain.Tab
		events []domain.Event
		audit  auditLog
	)
	err = e.deps.UoW.RunInTransaction(ctx, actor.TenantID, func(ctx context.Context, r storage.Repos) error {
		events, audit = nil, nil
		now := e.deps.Clock.Now()

		tab, err = r.Tabs().GetForUpdate(ctx, in.TabID)
		if err != nil {
			return notFound(err, domain.CodeTabNotFound, "tab", in.TabID)
		}
		if !tab.Live() {
			return domain.Conflict(domain.CodeTabClosed, "tab is already %s", tab.State).With("tab_id", tab.ID)
		}

		if in.RestoreStock {
			items, err := r.Tabs().ListItems(ctx, tab.ID)
			if err != nil {
				return err
			}
			for _, item := range items {
				if item.State == domain.ItemVoided {
					continue
				}
				if err := reverseTx(ctx, r, domain.RefLineItem, item.ID, actor.StaffID, now); err != nil {
					return err
				}
			}
		}

		tab.State = domain.TabVoided
		tab.ClosedAt = &now
		tab.UpdatedAt = now
		if err := r.Tabs().Update(ctx, tab); err != nil {
			return err
		}

		table, err := releaseTableTx(ctx, r, tab, now)
		if err != nil {
			return err
		}

		audit.add(actor, "tab_closed", "tab", tab.ID, "restore_stock=%t %s", in.RestoreStock, in.Reason)
		events = append(events,
			domain.Event{Name: domain.EventTabVoided, Payload: *tab, OccurredAt: now},
			domain.Event{Name: domain.EventTableFreed, Payload: *table, OccurredAt: now},
		)
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.deps.Metrics.TabsClosed.WithLabelValues(string(domain.TabVoided)).Inc()
	e.deps.publish(ctx, actor.TenantID, events)
	e.deps.audit(ctx, actor.TenantID, audit)
	return tab, nil
}

func (e *TabEngine) GetTab(ctx context.Context, tabID string) (*domain.Tab, error) {
	actor, err := actorFrom(ctx, domain.PrivilegeStaff)
	if err != nil {
		return nil, err
	}
	var tab *domain.Tab
	err = e.deps.UoW.RunInTransaction(ctx, actor.TenantID, func(ctx context.Context, r storage.Repos) error {
		tab, err = r.Tabs().Get(ctx, tabID)
		if err != nil {
			return notFound(err, domain.CodeTabNotFound, "tab", tabID)
		}
		tab.Items, err = r.Tabs().ListItems(ctx, tab.ID)
		return err
	})
	return tab, err
}

func (e *TabEngine) ListTables(ctx context.Context) ([]domain.Table, error) {
	actor, err := actorFrom(ctx, domain.PrivilegeStaff)
	if err != nil {
		return nil, err
	}
	var tables []domain.Table
	err = e.deps.UoW.RunInTransaction(ctx, actor.TenantID, func(ctx context.Context, r storage.Repos) error {
		tables, err = r.Tables().List(ctx)
		return err
	})
	return tables, err
}

// releaseTableTx frees the table a tab was holding. A table pointing at some
// other tab means the pairing is already broken, so the transaction aborts.
func releaseTableTx(ctx context.Context, r storage.Repos, tab *domain.Tab, now time.Time) (*domain.Table, error) {
	table, err := r.Tables().GetForUpdate(ctx, tab.TableID)
	if err != nil {
		return nil, notFound(err, domain.CodeTableNotFound, "table", tab.TableID)
	}
	if table.TabID == nil || *table.TabID != tab.ID {
		return nil, domain.Internal(nil, "table %s is not paired with tab %s", table.ID, tab.ID)
	}
	table.Release(now)
	if err := r.Tables().Update(ctx, table); err != nil {
		return nil, err
	}
	return table, nil
}

func refreshTotalsTx(ctx context.Context, r storage.Repos, tab *domain.Tab, rate decimal.Decimal, now time.Time) error {
	items, err := r.Tabs().ListItems(ctx, tab.ID)
	if err != nil {
		return err
	}
	applyTotals(tab, items, rate)
	tab.UpdatedAt = now
	if err := r.Tabs().Update(ctx, tab); err != nil {
		return err
	}
	tab.Items = items
	return nil
}

// applyTotals recomputes subtotal, tax and total from active items. Tip is
// only non-zero once the tab is paid.
func applyTotals(tab *domain.Tab, items []domain.LineItem, rate decimal.Decimal) {
	var subtotal int64
	for _, item := range items {
		if item.State == domain.ItemActive {
			subtotal += item.Extended
		}
	}
	tab.Subtotal = subtotal
	tab.Tax = domain.TaxOn(subtotal, rate)
	tab.Total = subtotal + tab.Tax + tab.Tip
}

func countActive(items []domain.LineItem) int {
	n := 0
	for _, item := range items {
		if item.State == domain.ItemActive {
			n++
		}
	}
	return n
}
