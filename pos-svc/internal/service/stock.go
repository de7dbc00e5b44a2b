package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"overcooked-pos/pos-svc/internal/domain"
	"overcooked-pos/pos-svc/internal/storage"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockLedger owns stock levels. Every change goes through one movement
// posted under the level's row lock, so a level always equals the sum of its
// movements.
type StockLedger struct {
	deps Deps
}

func NewStockLedger(deps Deps) *StockLedger {
	return &StockLedger{deps: deps.withDefaults()}
}

type MovementInput struct {
	ProductID     string               `json:"product_id"`
	WarehouseID   string               `json:"warehouse_id"`
	Delta         decimal.Decimal      `json:"delta"`
	Cause         domain.MovementCause `json:"cause"`
	UnitCost      int64                `json:"unit_cost"`
	ReferenceType string               `json:"reference_type"`
	ReferenceID   string               `json:"reference_id"`
	Note          string               `json:"note"`
}

type TransferInput struct {
	ProductID string          `json:"product_id"`
	From      string          `json:"from_warehouse_id"`
	To        string          `json:"to_warehouse_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	Note      string          `json:"note"`
}

type CountInput struct {
	ProductID   string          `json:"product_id"`
	WarehouseID string          `json:"warehouse_id"`
	Counted     decimal.Decimal `json:"counted"`
	Note        string          `json:"note"`
}

// Reconciliation compares a stored level with the sum of its movements.
type Reconciliation struct {
	Level       decimal.Decimal `json:"level"`
	MovementSum decimal.Decimal `json:"movement_sum"`
}

func (r Reconciliation) Balanced() bool {
	return r.Level.Equal(r.MovementSum)
}

// CheckAvailability reports whether qty units of productID can be sold from
// the tenant's sales warehouse. It takes no locks.
func (l *StockLedger) CheckAvailability(ctx context.Context, productID string, qty int) (*domain.Availability, error) {
	actor, err := actorFrom(ctx, domain.PrivilegeStaff)
	if err != nil {
		return nil, err
	}
	if qty <= 0 {
		return nil, domain.Validation("quantity must be positive")
	}
	settings, err := l.deps.settings(ctx, actor.TenantID)
	if err != nil {
		return nil, err
	}

	var av *domain.Availability
	err = l.deps.UoW.RunInTransaction(ctx, actor.TenantID, func(ctx context.Context, r storage.Repos) error {
		av, _, err = availabilityTx(ctx, r, settings.SalesWarehouseID, productID, decimal.NewFromInt(int64(qty)), false)
		return err
	})
	return av, err
}

// manualCauses are the causes accepted from PostMovement. Sales come only
// from tabs, transfers and counts from their own operations.
var manualCauses = map[domain.MovementCause]bool{
	domain.CausePurchase:   true,
	domain.CauseProduction: true,
	domain.CauseSpoilage:   true,
}

func (l *StockLedger) PostMovement(ctx context.Context, in MovementInput) (*domain.Movement, error) {
	actor, err := actorFrom(ctx, domain.PrivilegeManager)
	if err != nil {
		return nil, err
	}
	if err := validateMovement(in); err != nil {
		return nil, err
	}
	return l.post(ctx, actor.TenantID, actor.StaffID, in)
}

func validateMovement(in MovementInput) error {
	switch {
	case in.ProductID == "" || in.WarehouseID == "":
		return domain.Validation("product and warehouse are required")
	case in.Delta.IsZero():
		return domain.Validation("delta must not be zero")
	case !manualCauses[in.Cause]:
		return domain.Validation("cause %q cannot be posted directly", in.Cause)
	case in.Cause == domain.CauseSpoilage && in.Delta.IsPositive():
		return domain.Validation("spoilage must reduce stock")
	case in.UnitCost < 0:
		return domain.Validation("unit cost must not be negative")
	}
	return nil
}

// post runs one movement in its own transaction.
func (l *StockLedger) post(ctx context.Context, tenantID, actorID string, in MovementInput) (*domain.Movement, error) {
	var (
		movement *domain.Movement
		events   []domain.Event
	)
	err := l.deps.UoW.RunInTransaction(ctx, tenantID, func(ctx context.Context, r storage.Repos) error {
		events = nil
		if _, err := r.Products().Get(ctx, in.ProductID); err != nil {
			return notFound(err, domain.CodeProductNotFound, "product", in.ProductID)
		}
		m, alert, err := postTx(ctx, r, in, actorID, l.deps.Clock.Now(), nil)
		if err != nil {
			return err
		}
		movement = m
		if alert != nil {
			events = append(events, *alert)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	l.deps.publish(ctx, tenantID, events)
	return movement, nil
}

// ReceiptLine is one product delivered by procurement.
type ReceiptLine struct {
	ProductID string          `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitCost  int64           `json:"unit_cost"`
}

// receive books a procurement receipt as purchase movements in one
// transaction. A receipt already on the ledger is skipped, so redelivery is
// harmless. It reports whether anything was posted.
func (l *StockLedger) receive(ctx context.Context, tenantID, receiptID, warehouseID string, lines []ReceiptLine) (bool, error) {
	sorted := make([]ReceiptLine, len(lines))
	copy(sorted, lines)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].ProductID < sorted[j].ProductID })

	var posted bool
	err := l.deps.UoW.RunInTransaction(ctx, tenantID, func(ctx context.Context, r storage.Repos) error {
		posted = false
		seen, err := r.Stock().MovementsByReference(ctx, domain.RefReceipt, receiptID)
		if err != nil {
			return err
		}
		if len(seen) > 0 {
			return nil
		}
		now := l.deps.Clock.Now()
		for _, line := range sorted {
			if _, err := r.Products().Get(ctx, line.ProductID); err != nil {
				return notFound(err, domain.CodeProductNotFound, "product", line.ProductID)
			}
			// Inbound movements never cross the reorder point downwards.
			if _, _, err := postTx(ctx, r, MovementInput{
				ProductID:     line.ProductID,
				WarehouseID:   warehouseID,
				Delta:         line.Quantity,
				Cause:         domain.CausePurchase,
				UnitCost:      line.UnitCost,
				ReferenceType: domain.RefReceipt,
				ReferenceID:   receiptID,
			}, receiptActor, now, nil); err != nil {
				return err
			}
		}
		posted = true
		return nil
	})
	return posted, err
}

// Transfer moves stock between two warehouses as a paired out/in movement.
func (l *StockLedger) Transfer(ctx context.Context, in TransferInput) ([]domain.Movement, error) {
	actor, err := actorFrom(ctx, domain.PrivilegeManager)
	if err != nil {
		return nil, err
	}
	switch {
	case in.ProductID == "" || in.From == "" || in.To == "":
		return nil, domain.Validation("product, source and destination are required")
	case in.From == in.To:
		return nil, domain.Validation("source and destination must differ")
	case !in.Quantity.IsPositive():
		return nil, domain.Validation("quantity must be positive")
	}

	var (
		movements []domain.Movement
		events    []domain.Event
	)
	err = l.deps.UoW.RunInTransaction(ctx, actor.TenantID, func(ctx context.Context, r storage.Repos) error {
		movements, events = nil, nil
		if _, err := r.Products().Get(ctx, in.ProductID); err != nil {
			return notFound(err, domain.CodeProductNotFound, "product", in.ProductID)
		}

		warehouses := []string{in.From, in.To}
		sort.Strings(warehouses)
		levels := make(map[string]*domain.StockLevel, 2)
		for _, wh := range warehouses {
			lvl, err := r.Stock().LockLevel(ctx, in.ProductID, wh)
			if err != nil {
				return err
			}
			levels[wh] = lvl
		}

		src := levels[in.From]
		if src.Quantity.LessThan(in.Quantity) {
			return domain.Conflict(domain.CodeInsufficientStock, "only %s on hand in %s", src.Quantity, in.From).
				With("shortages", []domain.Shortage{{
					ProductID: in.ProductID,
					Required:  in.Quantity,
					OnHand:    src.Quantity,
					Shortfall: in.Quantity.Sub(src.Quantity),
				}})
		}

		now := l.deps.Clock.Now()
		ref := uuid.NewString()
		legs := []MovementInput{
			{ProductID: in.ProductID, WarehouseID: in.From, Delta: in.Quantity.Neg(), Cause: domain.CauseTransfer,
				ReferenceType: domain.RefTransfer, ReferenceID: ref, Note: in.Note},
			{ProductID: in.ProductID, WarehouseID: in.To, Delta: in.Quantity, Cause: domain.CauseTransfer,
				UnitCost: src.AverageCost, ReferenceType: domain.RefTransfer, ReferenceID: ref, Note: in.Note},
		}
		for _, leg := range legs {
			m, alert, err := postTx(ctx, r, leg, actor.StaffID, now, nil)
			if err != nil {
				return err
			}
			movements = append(movements, *m)
			if alert != nil {
				events = append(events, *alert)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	l.deps.publish(ctx, actor.TenantID, events)
	return movements, nil
}

// Count records a physical count. The difference from the recorded level is
// posted as a count adjustment; a matching count posts nothing.
func (l *StockLedger) Count(ctx context.Context, in CountInput) (*domain.Movement, error) {
	actor, err := actorFrom(ctx, domain.PrivilegeManager)
	if err != nil {
		return nil, err
	}
	if in.ProductID == "" || in.WarehouseID == "" {
		return nil, domain.Validation("product and warehouse are required")
	}
	if in.Counted.IsNegative() {
		return nil, domain.Validation("counted quantity must not be negative")
	}

	var (
		movement *domain.Movement
		events   []domain.Event
	)
	err = l.deps.UoW.RunInTransaction(ctx, actor.TenantID, func(ctx context.Context, r storage.Repos) error {
		movement, events = nil, nil
		if _, err := r.Products().Get(ctx, in.ProductID); err != nil {
			return notFound(err, domain.CodeProductNotFound, "product", in.ProductID)
		}
		lvl, err := r.Stock().LockLevel(ctx, in.ProductID, in.WarehouseID)
		if err != nil {
			return err
		}
		delta := in.Counted.Sub(lvl.Quantity)
		if delta.IsZero() {
			return nil
		}
		m, alert, err := postTx(ctx, r, MovementInput{
			ProductID:     in.ProductID,
			WarehouseID:   in.WarehouseID,
			Delta:         delta,
			Cause:         domain.CauseCountAdjustment,
			ReferenceType: domain.RefCount,
			ReferenceID:   uuid.NewString(),
			Note:          in.Note,
		}, actor.StaffID, l.deps.Clock.Now(), nil)
		if err != nil {
			return err
		}
		movement = m
		if alert != nil {
			events = append(events, *alert)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	l.deps.publish(ctx, actor.TenantID, events)
	return movement, nil
}

func (l *StockLedger) Level(ctx context.Context, productID, warehouseID string) (*domain.StockLevel, error) {
	actor, err := actorFrom(ctx, domain.PrivilegeStaff)
	if err != nil {
		return nil, err
	}
	var lvl *domain.StockLevel
	err = l.deps.UoW.RunInTransaction(ctx, actor.TenantID, func(ctx context.Context, r storage.Repos) error {
		lvl, err = r.Stock().GetLevel(ctx, productID, warehouseID)
		if errors.Is(err, storage.ErrNotFound) {
			lvl = &domain.StockLevel{ProductID: productID, WarehouseID: warehouseID}
			return nil
		}
		return err
	})
	return lvl, err
}

func (l *StockLedger) Movements(ctx context.Context, productID, warehouseID string, limit int) ([]domain.Movement, error) {
	actor, err := actorFrom(ctx, domain.PrivilegeManager)
	if err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var out []domain.Movement
	err = l.deps.UoW.RunInTransaction(ctx, actor.TenantID, func(ctx context.Context, r storage.Repos) error {
		out, err = r.Stock().ListMovements(ctx, productID, warehouseID, limit)
		return err
	})
	return out, err
}

func (l *StockLedger) Reconcile(ctx context.Context, productID, warehouseID string) (Reconciliation, error) {
	actor, err := actorFrom(ctx, domain.PrivilegeManager)
	if err != nil {
		return Reconciliation{}, err
	}
	var rec Reconciliation
	err = l.deps.UoW.RunInTransaction(ctx, actor.TenantID, func(ctx context.Context, r storage.Repos) error {
		lvl, err := r.Stock().GetLevel(ctx, productID, warehouseID)
		switch {
		case errors.Is(err, storage.ErrNotFound):
		case err != nil:
			return err
		default:
			rec.Level = lvl.Quantity
		}
		rec.MovementSum, err = r.Stock().SumMovements(ctx, productID, warehouseID)
		return err
	})
	return rec, err
}

// availabilityTx explodes the product and compares each leaf with its level.
// With lock set the levels are locked in product order and returned.
func availabilityTx(ctx context.Context, r storage.Repos, warehouseID, productID string, qty decimal.Decimal, lock bool) (*domain.Availability, *Explosion, error) {
	ex, err := explode(ctx, r, productID, qty)
	if err != nil {
		return nil, nil, err
	}

	policy := ex.Product.Policy
	if policy == "" {
		policy = domain.PolicyHardStop
	}
	av := &domain.Availability{
		ProductID:    productID,
		Status:       domain.StockSellable,
		Policy:       policy,
		Requirements: ex.Requirements,
	}
	if len(ex.BlockedBy) > 0 {
		av.Status = domain.StockBlocked
		av.BlockedBy = ex.BlockedBy
		return av, ex, nil
	}

	for _, req := range ex.Requirements {
		var onHand decimal.Decimal
		if lock {
			lvl, err := r.Stock().LockLevel(ctx, req.ProductID, warehouseID)
			if err != nil {
				return nil, nil, err
			}
			onHand = lvl.Quantity
		} else {
			lvl, err := r.Stock().GetLevel(ctx, req.ProductID, warehouseID)
			switch {
			case errors.Is(err, storage.ErrNotFound):
			case err != nil:
				return nil, nil, err
			default:
				onHand = lvl.Quantity
			}
		}
		if onHand.LessThan(req.Quantity) {
			av.Shortages = append(av.Shortages, domain.Shortage{
				ProductID: req.ProductID,
				Required:  req.Quantity,
				OnHand:    onHand,
				Shortfall: req.Quantity.Sub(onHand),
			})
		}
	}
	if len(av.Shortages) > 0 {
		av.Status = domain.StockInsufficient
	}
	return av, ex, nil
}

// postTx applies one movement to its locked level. Inbound movements with a
// unit cost move the weighted average cost. The returned event is set when
// the level crosses the product's reorder point downwards.
func postTx(ctx context.Context, r storage.Repos, in MovementInput, actorID string, now time.Time, reverses *string) (*domain.Movement, *domain.Event, error) {
	lvl, err := r.Stock().LockLevel(ctx, in.ProductID, in.WarehouseID)
	if err != nil {
		return nil, nil, err
	}

	before := lvl.Quantity
	after := before.Add(in.Delta)
	if in.Delta.IsPositive() && in.UnitCost > 0 {
		lvl.AverageCost = weightedCost(before, lvl.AverageCost, in.Delta, in.UnitCost)
	}
	lvl.Quantity = after
	lvl.UpdatedAt = now
	if err := r.Stock().SaveLevel(ctx, lvl); err != nil {
		return nil, nil, err
	}

	m := &domain.Movement{
		ID:            uuid.NewString(),
		ProductID:     in.ProductID,
		WarehouseID:   in.WarehouseID,
		Delta:         in.Delta,
		Cause:         in.Cause,
		BalanceAfter:  after,
		UnitCost:      in.UnitCost,
		ReferenceType: in.ReferenceType,
		ReferenceID:   in.ReferenceID,
		ReversesID:    reverses,
		Note:          in.Note,
		CreatedBy:     actorID,
		CreatedAt:     now,
	}
	if err := r.Stock().AppendMovement(ctx, m); err != nil {
		return nil, nil, err
	}

	if !in.Delta.IsNegative() {
		return m, nil, nil
	}
	p, err := r.Products().Get(ctx, in.ProductID)
	if err != nil {
		return nil, nil, notFound(err, domain.CodeProductNotFound, "product", in.ProductID)
	}
	if before.GreaterThan(p.ReorderPoint) && !after.GreaterThan(p.ReorderPoint) {
		return m, &domain.Event{
			Name: domain.EventStockAlert,
			Payload: domain.StockAlertPayload{
				ProductID:    p.ID,
				WarehouseID:  in.WarehouseID,
				Quantity:     after.String(),
				ReorderPoint: p.ReorderPoint.String(),
			},
			OccurredAt: now,
		}, nil
	}
	return m, nil, nil
}

func weightedCost(onHand decimal.Decimal, avg int64, inbound decimal.Decimal, unitCost int64) int64 {
	if !onHand.IsPositive() {
		return unitCost
	}
	value := onHand.Mul(decimal.NewFromInt(avg)).Add(inbound.Mul(decimal.NewFromInt(unitCost)))
	return value.Div(onHand.Add(inbound)).Round(0).IntPart()
}

// consumeTx posts one sale movement per requirement against a line item.
func consumeTx(ctx context.Context, r storage.Repos, warehouseID string, reqs []domain.Requirement, lineItemID, actorID string, now time.Time) ([]domain.Event, error) {
	var events []domain.Event
	for _, req := range reqs {
		_, alert, err := postTx(ctx, r, MovementInput{
			ProductID:     req.ProductID,
			WarehouseID:   warehouseID,
			Delta:         req.Quantity.Neg(),
			Cause:         domain.CauseSale,
			ReferenceType: domain.RefLineItem,
			ReferenceID:   lineItemID,
		}, actorID, now, nil)
		if err != nil {
			return nil, err
		}
		if alert != nil {
			events = append(events, *alert)
		}
	}
	return events, nil
}

// reverseTx posts the negation of every not yet reversed movement of a
// reference. Running it twice posts nothing the second time.
func reverseTx(ctx context.Context, r storage.Repos, refType, refID, actorID string, now time.Time) error {
	movements, err := r.Stock().MovementsByReference(ctx, refType, refID)
	if err != nil {
		return err
	}

	reversed := make(map[string]bool)
	for _, m := range movements {
		if m.ReversesID != nil {
			reversed[*m.ReversesID] = true
		}
	}

	var pending []domain.Movement
	for _, m := range movements {
		if m.ReversesID == nil && !reversed[m.ID] {
			pending = append(pending, m)
		}
	}
	sort.Slice(pending, func(i, j int) bool {
		if pending[i].ProductID != pending[j].ProductID {
			return pending[i].ProductID < pending[j].ProductID
		}
		return pending[i].WarehouseID < pending[j].WarehouseID
	})

	for _, m := range pending {
		id := m.ID
		if _, _, err := postTx(ctx, r, MovementInput{
			ProductID:     m.ProductID,
			WarehouseID:   m.WarehouseID,
			Delta:         m.Delta.Neg(),
			Cause:         m.Cause,
			ReferenceType: refType,
			ReferenceID:   refID,
			Note:          "reversal",
		}, actorID, now, &id); err != nil {
			return err
		}
	}
	return nil
}
