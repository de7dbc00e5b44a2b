package service

import (
	"context"
	"errors"
	"time"

	"overcooked-pos/pos-svc/internal/domain"
	"overcooked-pos/pos-svc/internal/storage"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LoyaltyEngine keeps point balances and their ledger. The tier is derived
// from the balance on every read.
type LoyaltyEngine struct {
	deps Deps
}

func NewLoyaltyEngine(deps Deps) *LoyaltyEngine {
	return &LoyaltyEngine{deps: deps.withDefaults()}
}

type LoyaltySummary struct {
	Account domain.LoyaltyAccount `json:"account"`
	Tier    string                `json:"tier"`
	Entries []domain.LoyaltyEntry `json:"entries,omitempty"`
}

type balancePayload struct {
	CustomerID string `json:"customer_id"`
	Points     int64  `json:"points"`
	Tier       string `json:"tier"`
}

// Accrue credits floor(amount × points per unit). The account is opened on
// first accrual.
func (e *LoyaltyEngine) Accrue(ctx context.Context, customerID string, amount int64, reference string) (*LoyaltySummary, error) {
	actor, err := actorFrom(ctx, domain.PrivilegeStaff)
	if err != nil {
		return nil, err
	}
	if customerID == "" {
		return nil, domain.Validation("customer id is required")
	}
	if amount <= 0 {
		return nil, domain.Validation("amount must be positive")
	}
	settings, err := e.deps.settings(ctx, actor.TenantID)
	if err != nil {
		return nil, err
	}

	var acct *domain.LoyaltyAccount
	err = e.deps.UoW.RunInTransaction(ctx, actor.TenantID, func(ctx context.Context, r storage.Repos) error {
		acct, _, err = accrueTx(ctx, r, customerID, amount, settings.PointsPerUnit, reference, actor.StaffID, e.deps.Clock.Now())
		return err
	})
	if err != nil {
		return nil, err
	}
	return e.finish(ctx, actor.TenantID, acct, settings), nil
}

// Redeem spends points. Amounts under the tenant minimum are invalid;
// amounts above the balance conflict.
func (e *LoyaltyEngine) Redeem(ctx context.Context, customerID string, points int64, reference string) (*LoyaltySummary, error) {
	actor, err := actorFrom(ctx, domain.PrivilegeStaff)
	if err != nil {
		return nil, err
	}
	if customerID == "" {
		return nil, domain.Validation("customer id is required")
	}
	if points <= 0 {
		return nil, domain.Validation("points must be positive")
	}
	settings, err := e.deps.settings(ctx, actor.TenantID)
	if err != nil {
		return nil, err
	}
	if points < settings.MinRedeemable {
		return nil, domain.ValidationCode(domain.CodeBelowMinimum, "at least %d points must be redeemed", settings.MinRedeemable).
			With("minimum", settings.MinRedeemable)
	}

	var acct *domain.LoyaltyAccount
	err = e.deps.UoW.RunInTransaction(ctx, actor.TenantID, func(ctx context.Context, r storage.Repos) error {
		acct, err = applyPointsTx(ctx, r, pointsChange{
			customerID: customerID,
			kind:       domain.EntryRedemption,
			points:     -points,
			reference:  reference,
			actorID:    actor.StaffID,
			now:        e.deps.Clock.Now(),
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return e.finish(ctx, actor.TenantID, acct, settings), nil
}

// Adjust applies a signed manual correction.
func (e *LoyaltyEngine) Adjust(ctx context.Context, customerID string, delta int64, reason string) (*LoyaltySummary, error) {
	return e.manual(ctx, customerID, domain.EntryAdjustment, delta, reason)
}

// Bonus grants points outside of a purchase, e.g. a birthday or campaign.
func (e *LoyaltyEngine) Bonus(ctx context.Context, customerID string, points int64, reason string) (*LoyaltySummary, error) {
	if points <= 0 {
		return nil, domain.Validation("bonus points must be positive")
	}
	return e.manual(ctx, customerID, domain.EntryBonus, points, reason)
}

func (e *LoyaltyEngine) manual(ctx context.Context, customerID string, kind domain.LoyaltyEntryKind, delta int64, reason string) (*LoyaltySummary, error) {
	actor, err := actorFrom(ctx, domain.PrivilegeManager)
	if err != nil {
		return nil, err
	}
	if customerID == "" {
		return nil, domain.Validation("customer id is required")
	}
	if delta == 0 {
		return nil, domain.Validation("points must not be zero")
	}
	settings, err := e.deps.settings(ctx, actor.TenantID)
	if err != nil {
		return nil, err
	}

	var (
		acct  *domain.LoyaltyAccount
		audit auditLog
	)
	err = e.deps.UoW.RunInTransaction(ctx, actor.TenantID, func(ctx context.Context, r storage.Repos) error {
		audit = nil
		acct, err = applyPointsTx(ctx, r, pointsChange{
			customerID: customerID,
			kind:       kind,
			points:     delta,
			reference:  reason,
			actorID:    actor.StaffID,
			now:        e.deps.Clock.Now(),
			open:       delta > 0,
		})
		if err != nil {
			return err
		}
		audit.add(actor, "loyalty_"+string(kind), "loyalty_account", customerID, "%+d %s", delta, reason)
		return nil
	})
	if err != nil {
		return nil, err
	}
	e.deps.audit(ctx, actor.TenantID, audit)
	return e.finish(ctx, actor.TenantID, acct, settings), nil
}

// Account returns the balance, derived tier and most recent ledger entries.
func (e *LoyaltyEngine) Account(ctx context.Context, customerID string, limit int) (*LoyaltySummary, error) {
	actor, err := actorFrom(ctx, domain.PrivilegeStaff)
	if err != nil {
		return nil, err
	}
	settings, err := e.deps.settings(ctx, actor.TenantID)
	if err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 200 {
		limit = 20
	}

	var sum *LoyaltySummary
	err = e.deps.UoW.RunInTransaction(ctx, actor.TenantID, func(ctx context.Context, r storage.Repos) error {
		acct, err := r.Loyalty().Get(ctx, customerID)
		if err != nil {
			return notFound(err, domain.CodeAccountNotFound, "loyalty account", customerID)
		}
		entries, err := r.Loyalty().Entries(ctx, customerID, limit)
		if err != nil {
			return err
		}
		sum = &LoyaltySummary{Account: *acct, Tier: domain.TierFor(acct.Points, settings.Tiers), Entries: entries}
		return nil
	})
	return sum, err
}

func (e *LoyaltyEngine) finish(ctx context.Context, tenantID string, acct *domain.LoyaltyAccount, settings domain.TenantSettings) *LoyaltySummary {
	now := e.deps.Clock.Now()
	e.deps.publish(ctx, tenantID, []domain.Event{balanceEvent(acct, settings, now)})
	return &LoyaltySummary{Account: *acct, Tier: domain.TierFor(acct.Points, settings.Tiers)}
}

func balanceEvent(acct *domain.LoyaltyAccount, settings domain.TenantSettings, now time.Time) domain.Event {
	return domain.Event{
		Name: domain.EventLoyaltyBalance,
		Payload: balancePayload{
			CustomerID: acct.CustomerID,
			Points:     acct.Points,
			Tier:       domain.TierFor(acct.Points, settings.Tiers),
		},
		OccurredAt: now,
	}
}

// accrueTx credits points for amount inside an existing transaction. Zero
// points still opens the account but writes no entry.
func accrueTx(ctx context.Context, r storage.Repos, customerID string, amount int64, rate decimal.Decimal, reference, actorID string, now time.Time) (*domain.LoyaltyAccount, int64, error) {
	points := domain.PointsFor(amount, rate)
	acct, err := applyPointsTx(ctx, r, pointsChange{
		customerID: customerID,
		kind:       domain.EntryAccrual,
		points:     points,
		reference:  reference,
		actorID:    actorID,
		now:        now,
		open:       true,
	})
	return acct, points, err
}

type pointsChange struct {
	customerID string
	kind       domain.LoyaltyEntryKind
	points     int64
	reference  string
	actorID    string
	now        time.Time
	// open creates the account when it does not exist yet.
	open bool
}

func applyPointsTx(ctx context.Context, r storage.Repos, c pointsChange) (*domain.LoyaltyAccount, error) {
	acct, err := r.Loyalty().GetForUpdate(ctx, c.customerID)
	switch {
	case errors.Is(err, storage.ErrNotFound) && c.open:
		acct = &domain.LoyaltyAccount{CustomerID: c.customerID, CreatedAt: c.now, UpdatedAt: c.now}
		if err := r.Loyalty().Create(ctx, acct); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, notFound(err, domain.CodeAccountNotFound, "loyalty account", c.customerID)
	}

	if c.points == 0 {
		return acct, nil
	}
	balance := acct.Points + c.points
	if balance < 0 {
		return nil, domain.Conflict(domain.CodeInsufficientPoints, "balance is %d points", acct.Points).
			With("balance", acct.Points).With("requested", -c.points)
	}

	acct.Points = balance
	acct.UpdatedAt = c.now
	if err := r.Loyalty().Update(ctx, acct); err != nil {
		return nil, err
	}
	return acct, r.Loyalty().AppendEntry(ctx, &domain.LoyaltyEntry{
		ID:           uuid.NewString(),
		CustomerID:   c.customerID,
		Kind:         c.kind,
		Points:       c.points,
		BalanceAfter: balance,
		Reference:    c.reference,
		CreatedBy:    c.actorID,
		CreatedAt:    c.now,
	})
}
