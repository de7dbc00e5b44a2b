package service_test

import (
	"testing"

	"overcooked-pos/pos-svc/internal/domain"
	"overcooked-pos/pos-svc/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoyaltyEngine_AccrueAndRedeem(t *testing.T) {
	f := newFixture(t, baseSettings())
	loyalty := service.NewLoyaltyEngine(f.deps)
	ctx := as(domain.PrivilegeStaff)

	sum, err := loyalty.Accrue(ctx, "cust-1", 123456, "order-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1234), sum.Account.Points)
	assert.Equal(t, "silver", sum.Tier)

	_, err = loyalty.Redeem(ctx, "cust-1", 50, "order-2")
	assert.Equal(t, domain.CodeBelowMinimum, codeOf(t, err))

	_, err = loyalty.Redeem(ctx, "cust-1", 5000, "order-2")
	assert.Equal(t, domain.CodeInsufficientPoints, codeOf(t, err))

	sum, err = loyalty.Redeem(ctx, "cust-1", 300, "order-2")
	require.NoError(t, err)
	assert.Equal(t, int64(934), sum.Account.Points)
	assert.Equal(t, "", sum.Tier)

	sum, err = loyalty.Account(ctx, "cust-1", 10)
	require.NoError(t, err)
	require.Len(t, sum.Entries, 2)
	assert.Equal(t, domain.EntryRedemption, sum.Entries[0].Kind)
	assert.Equal(t, int64(-300), sum.Entries[0].Points)
	assert.Equal(t, sum.Account.Points, sum.Entries[0].BalanceAfter)
	assert.Equal(t, domain.EntryAccrual, sum.Entries[1].Kind)

	_, err = loyalty.Account(ctx, "cust-unknown", 10)
	assert.Equal(t, domain.CodeAccountNotFound, codeOf(t, err))
}

func TestLoyaltyEngine_TierFollowsBalance(t *testing.T) {
	f := newFixture(t, baseSettings())
	loyalty := service.NewLoyaltyEngine(f.deps)
	ctx := as(domain.PrivilegeStaff)

	rank := map[string]int{"": 0, "silver": 1, "gold": 2}
	last := 0
	for _, amount := range []int64{40000, 70000, 100000, 300000, 100000} {
		sum, err := loyalty.Accrue(ctx, "cust-2", amount, "")
		require.NoError(t, err)
		assert.GreaterOrEqual(t, rank[sum.Tier], last, "accruing never lowers the tier")
		last = rank[sum.Tier]
	}
	assert.Equal(t, 2, last)
}

func TestLoyaltyEngine_ManualChanges(t *testing.T) {
	f := newFixture(t, baseSettings())
	loyalty := service.NewLoyaltyEngine(f.deps)

	_, err := loyalty.Bonus(as(domain.PrivilegeStaff), "cust-3", 500, "birthday")
	assert.True(t, domain.IsKind(err, domain.KindForbidden))

	manager := as(domain.PrivilegeManager)
	sum, err := loyalty.Bonus(manager, "cust-3", 500, "birthday")
	require.NoError(t, err)
	assert.Equal(t, int64(500), sum.Account.Points)

	_, err = loyalty.Adjust(manager, "cust-3", -600, "correction")
	assert.Equal(t, domain.CodeInsufficientPoints, codeOf(t, err))

	sum, err = loyalty.Adjust(manager, "cust-3", -200, "correction")
	require.NoError(t, err)
	assert.Equal(t, int64(300), sum.Account.Points)

	_, err = loyalty.Adjust(manager, "cust-4", -10, "no account")
	assert.Equal(t, domain.CodeAccountNotFound, codeOf(t, err))

	_, err = loyalty.Bonus(manager, "cust-3", 0, "nothing")
	assert.True(t, domain.IsKind(err, domain.KindValidation))
}

func TestLoyaltyEngine_ZeroPointAccrualOpensAccount(t *testing.T) {
	f := newFixture(t, baseSettings())
	loyalty := service.NewLoyaltyEngine(f.deps)
	ctx := as(domain.PrivilegeStaff)

	sum, err := loyalty.Accrue(ctx, "cust-5", 99, "coffee")
	require.NoError(t, err)
	assert.Equal(t, int64(0), sum.Account.Points)

	sum, err = loyalty.Account(ctx, "cust-5", 0)
	require.NoError(t, err)
	assert.Empty(t, sum.Entries)
}
