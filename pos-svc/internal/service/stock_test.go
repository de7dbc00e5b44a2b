package service_test

import (
	"testing"

	"overcooked-pos/pos-svc/internal/domain"
	"overcooked-pos/pos-svc/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStockFixture(t *testing.T) (*fixture, *service.StockLedger) {
	f := newFixture(t, baseSettings())
	f.addProducts(t,
		domain.Product{ID: "flour", Name: "Flour", Kind: domain.KindRaw, TrackStock: true, Unit: "kg", ReorderPoint: dec("5")},
		domain.Product{ID: "cheese", Name: "Cheese", Kind: domain.KindRaw, TrackStock: true, Unit: "kg"},
	)
	return f, service.NewStockLedger(f.deps)
}

func TestStockLedger_PostMovementValidation(t *testing.T) {
	tests := []struct {
		name    string
		ctx     domain.Privilege
		input   service.MovementInput
		wantErr domain.Kind
	}{
		{
			name:  "purchase",
			ctx:   domain.PrivilegeManager,
			input: service.MovementInput{ProductID: "flour", WarehouseID: "main", Delta: dec("10"), Cause: domain.CausePurchase, UnitCost: 120},
		},
		{
			name:    "staff cannot post",
			ctx:     domain.PrivilegeStaff,
			input:   service.MovementInput{ProductID: "flour", WarehouseID: "main", Delta: dec("10"), Cause: domain.CausePurchase},
			wantErr: domain.KindForbidden,
		},
		{
			name:    "sale is not manual",
			ctx:     domain.PrivilegeManager,
			input:   service.MovementInput{ProductID: "flour", WarehouseID: "main", Delta: dec("-1"), Cause: domain.CauseSale},
			wantErr: domain.KindValidation,
		},
		{
			name:    "positive spoilage",
			ctx:     domain.PrivilegeManager,
			input:   service.MovementInput{ProductID: "flour", WarehouseID: "main", Delta: dec("1"), Cause: domain.CauseSpoilage},
			wantErr: domain.KindValidation,
		},
		{
			name:    "zero delta",
			ctx:     domain.PrivilegeManager,
			input:   service.MovementInput{ProductID: "flour", WarehouseID: "main", Cause: domain.CausePurchase},
			wantErr: domain.KindValidation,
		},
		{
			name:    "unknown product",
			ctx:     domain.PrivilegeManager,
			input:   service.MovementInput{ProductID: "salt", WarehouseID: "main", Delta: dec("1"), Cause: domain.CausePurchase},
			wantErr: domain.KindNotFound,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			_, ledger := newStockFixture(t)
			m, err := ledger.PostMovement(as(testCase.ctx), testCase.input)
			if testCase.wantErr != "" {
				assert.True(t, domain.IsKind(err, testCase.wantErr), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.True(t, testCase.input.Delta.Equal(m.BalanceAfter))
			assert.Equal(t, "staff-1", m.CreatedBy)
		})
	}
}

func TestStockLedger_LevelEqualsMovementSum(t *testing.T) {
	_, ledger := newStockFixture(t)
	manager := as(domain.PrivilegeManager)

	steps := []service.MovementInput{
		{ProductID: "flour", WarehouseID: "main", Delta: dec("20"), Cause: domain.CausePurchase, UnitCost: 100},
		{ProductID: "flour", WarehouseID: "main", Delta: dec("-2.5"), Cause: domain.CauseSpoilage},
		{ProductID: "flour", WarehouseID: "main", Delta: dec("4"), Cause: domain.CauseProduction},
	}
	for _, step := range steps {
		_, err := ledger.PostMovement(manager, step)
		require.NoError(t, err)
	}
	_, err := ledger.Transfer(manager, service.TransferInput{ProductID: "flour", From: "main", To: "bar", Quantity: dec("6")})
	require.NoError(t, err)
	_, err = ledger.Count(manager, service.CountInput{ProductID: "flour", WarehouseID: "main", Counted: dec("15")})
	require.NoError(t, err)

	for _, wh := range []string{"main", "bar"} {
		rec, err := ledger.Reconcile(manager, "flour", wh)
		require.NoError(t, err)
		assert.True(t, rec.Balanced(), "warehouse %s: level %s, movements %s", wh, rec.Level, rec.MovementSum)
	}

	mainLevel, err := ledger.Level(manager, "flour", "main")
	require.NoError(t, err)
	assert.True(t, dec("15").Equal(mainLevel.Quantity))
	bar, err := ledger.Level(manager, "flour", "bar")
	require.NoError(t, err)
	assert.True(t, dec("6").Equal(bar.Quantity))
	assert.Equal(t, int64(100), bar.AverageCost)
}

func TestStockLedger_TransferRejectsShortSource(t *testing.T) {
	_, ledger := newStockFixture(t)
	manager := as(domain.PrivilegeManager)
	_, err := ledger.PostMovement(manager, service.MovementInput{ProductID: "cheese", WarehouseID: "main", Delta: dec("2"), Cause: domain.CausePurchase})
	require.NoError(t, err)

	_, err = ledger.Transfer(manager, service.TransferInput{ProductID: "cheese", From: "main", To: "bar", Quantity: dec("3")})
	assert.Equal(t, domain.CodeInsufficientStock, codeOf(t, err))

	_, err = ledger.Transfer(manager, service.TransferInput{ProductID: "cheese", From: "main", To: "main", Quantity: dec("1")})
	assert.True(t, domain.IsKind(err, domain.KindValidation))

	level, err := ledger.Level(manager, "cheese", "main")
	require.NoError(t, err)
	assert.True(t, dec("2").Equal(level.Quantity))
}

func TestStockLedger_CountMatchingPostsNothing(t *testing.T) {
	_, ledger := newStockFixture(t)
	manager := as(domain.PrivilegeManager)
	_, err := ledger.PostMovement(manager, service.MovementInput{ProductID: "cheese", WarehouseID: "main", Delta: dec("4"), Cause: domain.CausePurchase})
	require.NoError(t, err)

	m, err := ledger.Count(manager, service.CountInput{ProductID: "cheese", WarehouseID: "main", Counted: dec("4")})
	require.NoError(t, err)
	assert.Nil(t, m)

	m, err = ledger.Count(manager, service.CountInput{ProductID: "cheese", WarehouseID: "main", Counted: dec("3.5")})
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, domain.CauseCountAdjustment, m.Cause)
	assert.True(t, dec("-0.5").Equal(m.Delta))

	movements, err := ledger.Movements(manager, "cheese", "main", 10)
	require.NoError(t, err)
	assert.Len(t, movements, 2)
}

func TestStockLedger_WeightedAverageCost(t *testing.T) {
	_, ledger := newStockFixture(t)
	manager := as(domain.PrivilegeManager)
	_, err := ledger.PostMovement(manager, service.MovementInput{ProductID: "cheese", WarehouseID: "main", Delta: dec("10"), Cause: domain.CausePurchase, UnitCost: 100})
	require.NoError(t, err)
	_, err = ledger.PostMovement(manager, service.MovementInput{ProductID: "cheese", WarehouseID: "main", Delta: dec("10"), Cause: domain.CausePurchase, UnitCost: 200})
	require.NoError(t, err)

	level, err := ledger.Level(manager, "cheese", "main")
	require.NoError(t, err)
	assert.Equal(t, int64(150), level.AverageCost)
}

func TestStockLedger_ReorderAlertOnDownwardCrossing(t *testing.T) {
	f, ledger := newStockFixture(t)
	manager := as(domain.PrivilegeManager)
	_, err := ledger.PostMovement(manager, service.MovementInput{ProductID: "flour", WarehouseID: "main", Delta: dec("8"), Cause: domain.CausePurchase})
	require.NoError(t, err)
	assert.NotContains(t, f.published(), domain.EventStockAlert)

	_, err = ledger.PostMovement(manager, service.MovementInput{ProductID: "flour", WarehouseID: "main", Delta: dec("-3"), Cause: domain.CauseSpoilage})
	require.NoError(t, err)
	assert.Contains(t, f.published(), domain.EventStockAlert)

	before := len(f.published())
	_, err = ledger.PostMovement(manager, service.MovementInput{ProductID: "flour", WarehouseID: "main", Delta: dec("-1"), Cause: domain.CauseSpoilage})
	require.NoError(t, err)
	assert.Len(t, f.published(), before, "already below the reorder point")
}

func TestStockLedger_CheckAvailability(t *testing.T) {
	f, ledger := newStockFixture(t)
	f.addProducts(t, domain.Product{ID: "pizza", Name: "Pizza", Kind: domain.KindFinished, Price: 1200, Policy: domain.PolicyHardStop})
	resolver := service.NewRecipeResolver(f.deps)
	require.NoError(t, resolver.SetRecipe(as(domain.PrivilegeManager), "pizza", []domain.RecipeLine{
		{IngredientID: "flour", Quantity: dec("0.25"), Unit: "kg"},
		{IngredientID: "cheese", Quantity: dec("0.1"), Unit: "kg"},
	}))
	_, err := ledger.PostMovement(as(domain.PrivilegeManager), service.MovementInput{ProductID: "flour", WarehouseID: "main", Delta: dec("1"), Cause: domain.CausePurchase})
	require.NoError(t, err)
	_, err = ledger.PostMovement(as(domain.PrivilegeManager), service.MovementInput{ProductID: "cheese", WarehouseID: "main", Delta: dec("0.3"), Cause: domain.CausePurchase})
	require.NoError(t, err)

	av, err := ledger.CheckAvailability(as(domain.PrivilegeStaff), "pizza", 3)
	require.NoError(t, err)
	assert.Equal(t, domain.StockSellable, av.Status)

	av, err = ledger.CheckAvailability(as(domain.PrivilegeStaff), "pizza", 4)
	require.NoError(t, err)
	assert.Equal(t, domain.StockInsufficient, av.Status)
	require.Len(t, av.Shortages, 1)
	assert.Equal(t, "cheese", av.Shortages[0].ProductID)
	assert.True(t, dec("0.1").Equal(av.Shortages[0].Shortfall))
}
