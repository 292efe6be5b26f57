package replenishment_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appreplenishment "github.com/retailops/backend/internal/application/replenishment"
	appstock "github.com/retailops/backend/internal/application/stock"
	"github.com/retailops/backend/internal/domain/replenishment"
	"github.com/retailops/backend/internal/domain/shared"
	"github.com/retailops/backend/internal/domain/stock"
	"github.com/retailops/backend/tests/testutil"
)

type replenishmentEnv struct {
	*testutil.LedgerEnv
	transfers *appreplenishment.TransferService
	requests  *appreplenishment.StockRequestService
}

func newReplenishmentEnv() *replenishmentEnv {
	env := testutil.NewLedgerEnv()
	transfers := appreplenishment.NewTransferService(env.Scope, env.Ledger, env.Transfers, zap.NewNop())
	return &replenishmentEnv{
		LedgerEnv: env,
		transfers: transfers,
		requests:  appreplenishment.NewStockRequestService(env.Scope, transfers, env.Requests, zap.NewNop()),
	}
}

// stockIn books a receipt so a warehouse has something to move.
func (e *replenishmentEnv) stockIn(t *testing.T, tenantID, productID, warehouseID uuid.UUID, qty int64, cost string) {
	t.Helper()
	err := e.Ledger.ApplyReceipt(context.Background(), appstock.ReceiptCommand{
		TenantID:       tenantID,
		ActorID:        uuid.New(),
		ProductID:      productID,
		WarehouseID:    warehouseID,
		Quantity:       qty,
		UnitCost:       decimal.RequireFromString(cost),
		Reference:      "SEED",
		IdempotencyKey: "seed:" + uuid.NewString(),
	})
	require.NoError(t, err)
}

func TestTransferService_Execute(t *testing.T) {
	env := newReplenishmentEnv()
	ctx := context.Background()
	tenantID := uuid.New()
	actorID := uuid.New()
	productID := uuid.New()
	source := uuid.New()
	dest := uuid.New()

	env.stockIn(t, tenantID, productID, source, 100, "1066.6667")

	tr, err := env.transfers.Create(ctx, appreplenishment.CreateTransferCommand{
		TenantID:        tenantID,
		ActorID:         actorID,
		FromWarehouseID: source,
		ToWarehouseID:   dest,
		Lines:           []replenishment.TransferLine{{ProductID: productID, Quantity: 25}},
	})
	require.NoError(t, err)
	assert.Equal(t, replenishment.TransferStatusPending, tr.Status)

	tr, err = env.transfers.Approve(ctx, tenantID, tr.ID, actorID)
	require.NoError(t, err)

	tr, err = env.transfers.Execute(ctx, tenantID, tr.ID, actorID)
	require.NoError(t, err)
	assert.Equal(t, replenishment.TransferStatusExecuted, tr.Status)
	assert.True(t, tr.Items[0].UnitCost.Equal(decimal.RequireFromString("1066.6667")),
		"line carries the source cost")

	srcPos, err := env.Ledger.Position(ctx, tenantID, productID, source)
	require.NoError(t, err)
	assert.Equal(t, int64(75), srcPos.Quantity)

	dstPos, err := env.Ledger.Position(ctx, tenantID, productID, dest)
	require.NoError(t, err)
	assert.Equal(t, int64(25), dstPos.Quantity)
	assert.True(t, dstPos.CostAverage.Equal(srcPos.CostAverage))

	types := testutil.EventTypesOf(env.Scope.Events)
	assert.Contains(t, types, replenishment.EventTypeTransferExecuted)
}

func TestTransferService_Execute_AllOrNothing(t *testing.T) {
	env := newReplenishmentEnv()
	ctx := context.Background()
	tenantID := uuid.New()
	actorID := uuid.New()
	stocked := uuid.New()
	empty := uuid.New()
	source := uuid.New()
	dest := uuid.New()

	env.stockIn(t, tenantID, stocked, source, 100, "10")

	tr, err := env.transfers.Create(ctx, appreplenishment.CreateTransferCommand{
		TenantID:        tenantID,
		ActorID:         actorID,
		FromWarehouseID: source,
		ToWarehouseID:   dest,
		Lines: []replenishment.TransferLine{
			{ProductID: stocked, Quantity: 10},
			{ProductID: empty, Quantity: 5},
		},
	})
	require.NoError(t, err)
	_, err = env.transfers.Approve(ctx, tenantID, tr.ID, actorID)
	require.NoError(t, err)

	_, err = env.transfers.Execute(ctx, tenantID, tr.ID, actorID)
	assert.ErrorIs(t, err, shared.ErrInsufficientStock)

	// Availability is verified for every line before anything moves, so
	// the stocked line stayed put.
	pos, err := env.Ledger.Position(ctx, tenantID, stocked, source)
	require.NoError(t, err)
	assert.Equal(t, int64(100), pos.Quantity)
}

func TestTransferService_Execute_RequiresApproval(t *testing.T) {
	env := newReplenishmentEnv()
	ctx := context.Background()
	tenantID := uuid.New()
	productID := uuid.New()
	source := uuid.New()

	env.stockIn(t, tenantID, productID, source, 10, "1")

	tr, err := env.transfers.Create(ctx, appreplenishment.CreateTransferCommand{
		TenantID:        tenantID,
		ActorID:         uuid.New(),
		FromWarehouseID: source,
		ToWarehouseID:   uuid.New(),
		Lines:           []replenishment.TransferLine{{ProductID: productID, Quantity: 5}},
	})
	require.NoError(t, err)

	_, err = env.transfers.Execute(ctx, tenantID, tr.ID, uuid.New())
	assert.ErrorIs(t, err, shared.ErrInvalidStateTransition)
}

func TestTransferService_Receive_Complete(t *testing.T) {
	env := newReplenishmentEnv()
	ctx := context.Background()
	tenantID := uuid.New()
	actorID := uuid.New()
	productID := uuid.New()
	source := uuid.New()
	dest := uuid.New()

	env.stockIn(t, tenantID, productID, source, 50, "20")
	tr := env.executedTransfer(t, tenantID, actorID, source, dest,
		replenishment.TransferLine{ProductID: productID, Quantity: 30})

	tr, err := env.transfers.Receive(ctx, tenantID, tr.ID, actorID, nil)
	require.NoError(t, err)
	assert.Equal(t, replenishment.TransferStatusReceived, tr.Status)
	assert.False(t, tr.HasShortage())

	tr, err = env.transfers.Validate(ctx, tenantID, tr.ID, actorID)
	require.NoError(t, err)
	assert.Equal(t, replenishment.TransferStatusValidated, tr.Status)
}

func TestTransferService_Receive_ShortageAdjustsDestination(t *testing.T) {
	env := newReplenishmentEnv()
	ctx := context.Background()
	tenantID := uuid.New()
	actorID := uuid.New()
	productID := uuid.New()
	source := uuid.New()
	dest := uuid.New()

	env.stockIn(t, tenantID, productID, source, 50, "20")
	tr := env.executedTransfer(t, tenantID, actorID, source, dest,
		replenishment.TransferLine{ProductID: productID, Quantity: 30})

	tr, err := env.transfers.Receive(ctx, tenantID, tr.ID, actorID,
		map[uuid.UUID]int64{tr.Items[0].ID: 28})
	require.NoError(t, err)
	assert.True(t, tr.HasShortage())
	assert.Equal(t, int64(2), tr.Items[0].Shortage())

	// The destination was written down by the two missing units.
	pos, err := env.Ledger.Position(ctx, tenantID, productID, dest)
	require.NoError(t, err)
	assert.Equal(t, int64(28), pos.Quantity)

	movements := env.Movements.All()
	last := movements[len(movements)-1]
	assert.Equal(t, stock.MovementAdjustment, last.Kind)
	assert.Equal(t, int64(2), last.Quantity)

	types := testutil.EventTypesOf(env.Scope.Events)
	assert.Contains(t, types, replenishment.EventTypeTransferShortage)
}

func TestTransferService_Cancel(t *testing.T) {
	env := newReplenishmentEnv()
	ctx := context.Background()
	tenantID := uuid.New()

	tr, err := env.transfers.Create(ctx, appreplenishment.CreateTransferCommand{
		TenantID:        tenantID,
		ActorID:         uuid.New(),
		FromWarehouseID: uuid.New(),
		ToWarehouseID:   uuid.New(),
		Lines:           []replenishment.TransferLine{{ProductID: uuid.New(), Quantity: 1}},
	})
	require.NoError(t, err)

	tr, err = env.transfers.Cancel(ctx, tenantID, tr.ID, "no longer needed")
	require.NoError(t, err)
	assert.Equal(t, replenishment.TransferStatusCancelled, tr.Status)
}

// executedTransfer creates, approves and executes a transfer.
func (e *replenishmentEnv) executedTransfer(t *testing.T, tenantID, actorID, source, dest uuid.UUID, lines ...replenishment.TransferLine) *replenishment.Transfer {
	t.Helper()
	ctx := context.Background()
	tr, err := e.transfers.Create(ctx, appreplenishment.CreateTransferCommand{
		TenantID:        tenantID,
		ActorID:         actorID,
		FromWarehouseID: source,
		ToWarehouseID:   dest,
		Lines:           lines,
	})
	require.NoError(t, err)
	_, err = e.transfers.Approve(ctx, tenantID, tr.ID, actorID)
	require.NoError(t, err)
	tr, err = e.transfers.Execute(ctx, tenantID, tr.ID, actorID)
	require.NoError(t, err)
	return tr
}

// lockRecordingStockRepo wraps a stock repository and records the
// warehouse order of row-lock acquisitions.
type lockRecordingStockRepo struct {
	stock.StockRepository
	locked []uuid.UUID
}

func (r *lockRecordingStockRepo) GetOrCreateForUpdate(ctx context.Context, tenantID, productID, warehouseID uuid.UUID) (*stock.Stock, error) {
	r.locked = append(r.locked, warehouseID)
	return r.StockRepository.GetOrCreateForUpdate(ctx, tenantID, productID, warehouseID)
}

type lockRecordingRepos struct {
	*appstock.NoOpTransactionScope
	stocks *lockRecordingStockRepo
}

func (s *lockRecordingRepos) StockRepo() stock.StockRepository { return s.stocks }

func TestTransferService_Execute_LockOrdering(t *testing.T) {
	env := newReplenishmentEnv()
	ctx := context.Background()
	tenantID := uuid.New()
	actorID := uuid.New()
	productID := uuid.New()

	// Arrange the pair so the transfer moves from the higher warehouse ID
	// to the lower one.
	lower, higher := uuid.New(), uuid.New()
	if higher.String() < lower.String() {
		lower, higher = higher, lower
	}

	env.stockIn(t, tenantID, productID, higher, 100, "10")

	tr, err := env.transfers.Create(ctx, appreplenishment.CreateTransferCommand{
		TenantID:        tenantID,
		ActorID:         actorID,
		FromWarehouseID: higher,
		ToWarehouseID:   lower,
		Lines:           []replenishment.TransferLine{{ProductID: productID, Quantity: 25}},
	})
	require.NoError(t, err)
	tr, err = env.transfers.Approve(ctx, tenantID, tr.ID, actorID)
	require.NoError(t, err)

	recording := &lockRecordingRepos{
		NoOpTransactionScope: env.Scope,
		stocks:               &lockRecordingStockRepo{StockRepository: env.Stocks},
	}
	require.NoError(t, env.transfers.ExecuteInTx(ctx, recording, tr, actorID))

	// The availability pre-check takes no row locks; the only
	// acquisitions are the line's pair in ascending warehouse-ID order,
	// destination before source here.
	require.Equal(t, []uuid.UUID{lower, higher}, recording.stocks.locked)
}
