package stock_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appstock "github.com/retailops/backend/internal/application/stock"
	"github.com/retailops/backend/internal/domain/shared"
	"github.com/retailops/backend/internal/domain/stock"
	"github.com/retailops/backend/tests/testutil"
)

func TestLedger_ApplyReceipt(t *testing.T) {
	env := testutil.NewLedgerEnv()
	ctx := context.Background()
	tenantID := uuid.New()
	productID := uuid.New()
	warehouseID := uuid.New()
	actorID := uuid.New()

	err := env.Ledger.ApplyReceipt(ctx, appstock.ReceiptCommand{
		TenantID:       tenantID,
		ActorID:        actorID,
		ProductID:      productID,
		WarehouseID:    warehouseID,
		Quantity:       100,
		UnitCost:       decimal.NewFromInt(1000),
		Reference:      "PO-1",
		IdempotencyKey: "receipt:PO-1:a",
	})
	require.NoError(t, err)

	pos, err := env.Ledger.Position(ctx, tenantID, productID, warehouseID)
	require.NoError(t, err)
	assert.Equal(t, int64(100), pos.Quantity)
	assert.True(t, pos.CostAverage.Equal(decimal.NewFromInt(1000)))

	movements := env.Movements.All()
	require.Len(t, movements, 1)
	assert.Equal(t, stock.MovementPurchase, movements[0].Kind)
	assert.Equal(t, "PO-1", movements[0].Reference)
	require.NotNil(t, movements[0].ToWarehouseID)
	assert.Equal(t, warehouseID, *movements[0].ToWarehouseID)
}

func TestLedger_ApplyReceipt_MovingAverageAcrossReceipts(t *testing.T) {
	env := testutil.NewLedgerEnv()
	ctx := context.Background()
	tenantID := uuid.New()
	productID := uuid.New()
	warehouseID := uuid.New()

	receive := func(qty int64, cost int64, key string) error {
		return env.Ledger.ApplyReceipt(ctx, appstock.ReceiptCommand{
			TenantID:       tenantID,
			ActorID:        uuid.New(),
			ProductID:      productID,
			WarehouseID:    warehouseID,
			Quantity:       qty,
			UnitCost:       decimal.NewFromInt(cost),
			Reference:      "PO-1",
			IdempotencyKey: key,
		})
	}
	require.NoError(t, receive(100, 1000, "r1"))
	require.NoError(t, receive(50, 1200, "r2"))

	pos, err := env.Ledger.Position(ctx, tenantID, productID, warehouseID)
	require.NoError(t, err)
	assert.Equal(t, int64(150), pos.Quantity)
	assert.True(t, pos.CostAverage.Equal(decimal.RequireFromString("1066.6667")), "got %s", pos.CostAverage)
}

func TestLedger_ApplyReceipt_ReplayedKeyRejected(t *testing.T) {
	env := testutil.NewLedgerEnv()
	ctx := context.Background()
	tenantID := uuid.New()
	productID := uuid.New()
	warehouseID := uuid.New()

	cmd := appstock.ReceiptCommand{
		TenantID:       tenantID,
		ActorID:        uuid.New(),
		ProductID:      productID,
		WarehouseID:    warehouseID,
		Quantity:       10,
		UnitCost:       decimal.NewFromInt(100),
		Reference:      "PO-1",
		IdempotencyKey: "receipt:PO-1:a",
	}
	require.NoError(t, env.Ledger.ApplyReceipt(ctx, cmd))

	err := env.Ledger.ApplyReceipt(ctx, cmd)
	assert.ErrorIs(t, err, shared.ErrAlreadyReceived)

	// The movement is appended before the position is touched, so the
	// replay left the quantity alone.
	pos, err := env.Ledger.Position(ctx, tenantID, productID, warehouseID)
	require.NoError(t, err)
	assert.Equal(t, int64(10), pos.Quantity)
}

func TestLedger_ApplyTransfer_CarriesSourceCost(t *testing.T) {
	env := testutil.NewLedgerEnv()
	ctx := context.Background()
	tenantID := uuid.New()
	productID := uuid.New()
	source := uuid.New()
	dest := uuid.New()

	require.NoError(t, env.Ledger.ApplyReceipt(ctx, appstock.ReceiptCommand{
		TenantID: tenantID, ActorID: uuid.New(), ProductID: productID, WarehouseID: source,
		Quantity: 150, UnitCost: decimal.RequireFromString("1066.6667"),
		Reference: "PO-1", IdempotencyKey: "r1",
	}))

	cost, err := env.Ledger.ApplyTransfer(ctx, appstock.TransferCommand{
		TenantID:        tenantID,
		ActorID:         uuid.New(),
		ProductID:       productID,
		FromWarehouseID: source,
		ToWarehouseID:   dest,
		Quantity:        25,
		Reference:       "TX-1",
		IdempotencyKey:  "tx1",
	})
	require.NoError(t, err)
	assert.True(t, cost.Equal(decimal.RequireFromString("1066.6667")))

	srcPos, err := env.Ledger.Position(ctx, tenantID, productID, source)
	require.NoError(t, err)
	assert.Equal(t, int64(125), srcPos.Quantity)
	assert.True(t, srcPos.CostAverage.Equal(cost), "source cost unchanged")

	dstPos, err := env.Ledger.Position(ctx, tenantID, productID, dest)
	require.NoError(t, err)
	assert.Equal(t, int64(25), dstPos.Quantity)
	assert.True(t, dstPos.CostAverage.Equal(cost), "destination priced at source cost")

	movements := env.Movements.All()
	require.Len(t, movements, 2)
	assert.Equal(t, stock.MovementTransfer, movements[1].Kind)
	assert.True(t, movements[1].UnitCost.Equal(cost))
}

func TestLedger_ApplyTransfer_InsufficientStock(t *testing.T) {
	env := testutil.NewLedgerEnv()
	ctx := context.Background()
	tenantID := uuid.New()
	productID := uuid.New()

	_, err := env.Ledger.ApplyTransfer(ctx, appstock.TransferCommand{
		TenantID:        tenantID,
		ActorID:         uuid.New(),
		ProductID:       productID,
		FromWarehouseID: uuid.New(),
		ToWarehouseID:   uuid.New(),
		Quantity:        5,
		Reference:       "TX-1",
		IdempotencyKey:  "tx1",
	})
	assert.ErrorIs(t, err, shared.ErrInsufficientStock)
}

func TestLedger_ReserveAndRelease(t *testing.T) {
	env := testutil.NewLedgerEnv()
	ctx := context.Background()
	tenantID := uuid.New()
	productID := uuid.New()
	warehouseID := uuid.New()

	require.NoError(t, env.Ledger.ApplyReceipt(ctx, appstock.ReceiptCommand{
		TenantID: tenantID, ActorID: uuid.New(), ProductID: productID, WarehouseID: warehouseID,
		Quantity: 20, UnitCost: decimal.NewFromInt(10), Reference: "PO-1", IdempotencyKey: "r1",
	}))

	cmd := appstock.ReservationCommand{
		TenantID: tenantID, ProductID: productID, WarehouseID: warehouseID, Quantity: 15,
	}
	require.NoError(t, env.Ledger.Reserve(ctx, cmd))

	pos, err := env.Ledger.Position(ctx, tenantID, productID, warehouseID)
	require.NoError(t, err)
	assert.Equal(t, int64(15), pos.Reserved)
	assert.Equal(t, int64(5), pos.Available)

	err = env.Ledger.Reserve(ctx, appstock.ReservationCommand{
		TenantID: tenantID, ProductID: productID, WarehouseID: warehouseID, Quantity: 6,
	})
	assert.ErrorIs(t, err, shared.ErrInsufficientStock)

	require.NoError(t, env.Ledger.Release(ctx, cmd))
	pos, err = env.Ledger.Position(ctx, tenantID, productID, warehouseID)
	require.NoError(t, err)
	assert.Zero(t, pos.Reserved)
	assert.Equal(t, int64(20), pos.Available)
}

func TestLedger_Deduct_RecordsSaleAtCostAverage(t *testing.T) {
	env := testutil.NewLedgerEnv()
	ctx := context.Background()
	tenantID := uuid.New()
	productID := uuid.New()
	warehouseID := uuid.New()

	require.NoError(t, env.Ledger.ApplyReceipt(ctx, appstock.ReceiptCommand{
		TenantID: tenantID, ActorID: uuid.New(), ProductID: productID, WarehouseID: warehouseID,
		Quantity: 10, UnitCost: decimal.RequireFromString("4.25"), Reference: "PO-1", IdempotencyKey: "r1",
	}))
	require.NoError(t, env.Ledger.Reserve(ctx, appstock.ReservationCommand{
		TenantID: tenantID, ProductID: productID, WarehouseID: warehouseID, Quantity: 3,
	}))

	require.NoError(t, env.Ledger.Deduct(ctx, appstock.DeductCommand{
		TenantID:       tenantID,
		ActorID:        uuid.New(),
		ProductID:      productID,
		WarehouseID:    warehouseID,
		Quantity:       3,
		Reference:      "ORD-1",
		IdempotencyKey: "serve:ORD-1:a",
	}))

	pos, err := env.Ledger.Position(ctx, tenantID, productID, warehouseID)
	require.NoError(t, err)
	assert.Equal(t, int64(7), pos.Quantity)
	assert.Zero(t, pos.Reserved)

	movements := env.Movements.All()
	require.Len(t, movements, 2)
	sale := movements[1]
	assert.Equal(t, stock.MovementSale, sale.Kind)
	assert.True(t, sale.UnitCost.Equal(decimal.RequireFromString("4.25")))
	require.NotNil(t, sale.FromWarehouseID)
	assert.Equal(t, warehouseID, *sale.FromWarehouseID)
}

func TestLedger_ApplyAdjustment(t *testing.T) {
	env := testutil.NewLedgerEnv()
	ctx := context.Background()
	tenantID := uuid.New()
	productID := uuid.New()
	warehouseID := uuid.New()

	require.NoError(t, env.Ledger.ApplyReceipt(ctx, appstock.ReceiptCommand{
		TenantID: tenantID, ActorID: uuid.New(), ProductID: productID, WarehouseID: warehouseID,
		Quantity: 10, UnitCost: decimal.NewFromInt(100), Reference: "PO-1", IdempotencyKey: "r1",
	}))

	t.Run("negative delta", func(t *testing.T) {
		require.NoError(t, env.Ledger.ApplyAdjustment(ctx, appstock.AdjustmentCommand{
			TenantID:       tenantID,
			ActorID:        uuid.New(),
			ProductID:      productID,
			WarehouseID:    warehouseID,
			Delta:          -2,
			Reference:      "ADJ-1",
			Reason:         "breakage",
			IdempotencyKey: "adj1",
		}))

		pos, err := env.Ledger.Position(ctx, tenantID, productID, warehouseID)
		require.NoError(t, err)
		assert.Equal(t, int64(8), pos.Quantity)

		movements := env.Movements.All()
		adj := movements[len(movements)-1]
		assert.Equal(t, stock.MovementAdjustment, adj.Kind)
		assert.Equal(t, int64(2), adj.Quantity, "movement stores the absolute delta")
		require.NotNil(t, adj.FromWarehouseID)
	})

	t.Run("zero delta rejected", func(t *testing.T) {
		err := env.Ledger.ApplyAdjustment(ctx, appstock.AdjustmentCommand{
			TenantID: tenantID, ActorID: uuid.New(), ProductID: productID, WarehouseID: warehouseID,
			Delta: 0, Reference: "ADJ-2", IdempotencyKey: "adj2",
		})
		assert.ErrorIs(t, err, shared.ErrInvalidQuantity)
	})
}

func TestLedger_StagesDomainEvents(t *testing.T) {
	env := testutil.NewLedgerEnv()
	ctx := context.Background()

	require.NoError(t, env.Ledger.ApplyReceipt(ctx, appstock.ReceiptCommand{
		TenantID: uuid.New(), ActorID: uuid.New(), ProductID: uuid.New(), WarehouseID: uuid.New(),
		Quantity: 5, UnitCost: decimal.NewFromInt(10), Reference: "PO-1", IdempotencyKey: "r1",
	}))

	types := testutil.EventTypesOf(env.Scope.Events)
	assert.Contains(t, types, stock.EventTypeStockReceived)
}

// Summing movements per warehouse, destination side positive and source
// side negative, must reproduce every position's quantity.
func TestLedger_MovementsReconcileWithPositions(t *testing.T) {
	env := testutil.NewLedgerEnv()
	ctx := context.Background()
	tenantID := uuid.New()
	productID := uuid.New()
	actorID := uuid.New()
	wholesale := uuid.New()
	retail := uuid.New()

	require.NoError(t, env.Ledger.ApplyReceipt(ctx, appstock.ReceiptCommand{
		TenantID: tenantID, ActorID: actorID, ProductID: productID, WarehouseID: wholesale,
		Quantity: 100, UnitCost: decimal.NewFromInt(1000), Reference: "PO-1", IdempotencyKey: "r1",
	}))
	require.NoError(t, env.Ledger.ApplyReceipt(ctx, appstock.ReceiptCommand{
		TenantID: tenantID, ActorID: actorID, ProductID: productID, WarehouseID: wholesale,
		Quantity: 50, UnitCost: decimal.NewFromInt(1200), Reference: "PO-2", IdempotencyKey: "r2",
	}))
	_, err := env.Ledger.ApplyTransfer(ctx, appstock.TransferCommand{
		TenantID: tenantID, ActorID: actorID, ProductID: productID,
		FromWarehouseID: wholesale, ToWarehouseID: retail,
		Quantity: 40, Reference: "TX-1", IdempotencyKey: "tx1",
	})
	require.NoError(t, err)
	require.NoError(t, env.Ledger.Reserve(ctx, appstock.ReservationCommand{
		TenantID: tenantID, ProductID: productID, WarehouseID: retail, Quantity: 15,
	}))
	require.NoError(t, env.Ledger.Deduct(ctx, appstock.DeductCommand{
		TenantID: tenantID, ActorID: actorID, ProductID: productID, WarehouseID: retail,
		Quantity: 15, Reference: "ORD-1", IdempotencyKey: "d1",
	}))
	require.NoError(t, env.Ledger.ApplyAdjustment(ctx, appstock.AdjustmentCommand{
		TenantID: tenantID, ActorID: actorID, ProductID: productID, WarehouseID: retail,
		Delta: -3, Reference: "ADJ-1", Reason: "breakage", IdempotencyKey: "adj1",
	}))

	signedSum := func(warehouseID uuid.UUID) int64 {
		var sum int64
		for _, m := range env.Movements.All() {
			if m.ToWarehouseID != nil && *m.ToWarehouseID == warehouseID {
				sum += m.Quantity
			}
			if m.FromWarehouseID != nil && *m.FromWarehouseID == warehouseID {
				sum -= m.Quantity
			}
		}
		return sum
	}

	for _, warehouseID := range []uuid.UUID{wholesale, retail} {
		pos, err := env.Ledger.Position(ctx, tenantID, productID, warehouseID)
		require.NoError(t, err)
		assert.Equal(t, pos.Quantity, signedSum(warehouseID))
		assert.Equal(t, pos.Quantity-pos.Reserved, pos.Available)
	}
}
