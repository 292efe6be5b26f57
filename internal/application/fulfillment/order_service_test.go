package fulfillment_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appfulfillment "github.com/retailops/backend/internal/application/fulfillment"
	appstock "github.com/retailops/backend/internal/application/stock"
	"github.com/retailops/backend/internal/domain/fulfillment"
	"github.com/retailops/backend/internal/domain/shared"
	"github.com/retailops/backend/tests/testutil"
)

type orderEnv struct {
	*testutil.LedgerEnv
	service *appfulfillment.OrderService
}

func newOrderEnv() *orderEnv {
	env := testutil.NewLedgerEnv()
	return &orderEnv{
		LedgerEnv: env,
		service:   appfulfillment.NewOrderService(env.Scope, env.Ledger, env.Orders, zap.NewNop()),
	}
}

func (e *orderEnv) stockIn(t *testing.T, tenantID, productID, warehouseID uuid.UUID, qty int64) {
	t.Helper()
	err := e.Ledger.ApplyReceipt(context.Background(), appstock.ReceiptCommand{
		TenantID:       tenantID,
		ActorID:        uuid.New(),
		ProductID:      productID,
		WarehouseID:    warehouseID,
		Quantity:       qty,
		UnitCost:       decimal.NewFromInt(3),
		Reference:      "SEED",
		IdempotencyKey: "seed:" + uuid.NewString(),
	})
	require.NoError(t, err)
}

func TestOrderService_Create_ReservesStock(t *testing.T) {
	env := newOrderEnv()
	ctx := context.Background()
	tenantID := uuid.New()
	productID := uuid.New()
	warehouseID := uuid.New()

	env.stockIn(t, tenantID, productID, warehouseID, 10)

	o, err := env.service.Create(ctx, appfulfillment.CreateOrderCommand{
		TenantID:    tenantID,
		ActorID:     uuid.New(),
		WarehouseID: warehouseID,
		TableNumber: "12",
		Lines: []fulfillment.OrderLine{
			{ProductID: productID, Quantity: 3, UnitPrice: decimal.RequireFromString("4.5")},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, fulfillment.OrderStatusPending, o.Status)
	assert.Regexp(t, `^ORD-\d{8}-\d{4}$`, o.Reference)

	pos, err := env.Ledger.Position(ctx, tenantID, productID, warehouseID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), pos.Reserved)
	assert.Equal(t, int64(7), pos.Available)
	assert.Equal(t, int64(10), pos.Quantity, "reservation moves nothing")
}

func TestOrderService_Create_InsufficientStock(t *testing.T) {
	env := newOrderEnv()
	ctx := context.Background()
	tenantID := uuid.New()
	productID := uuid.New()
	warehouseID := uuid.New()

	env.stockIn(t, tenantID, productID, warehouseID, 2)

	_, err := env.service.Create(ctx, appfulfillment.CreateOrderCommand{
		TenantID:    tenantID,
		ActorID:     uuid.New(),
		WarehouseID: warehouseID,
		Lines: []fulfillment.OrderLine{
			{ProductID: productID, Quantity: 3, UnitPrice: decimal.NewFromInt(1)},
		},
	})
	assert.ErrorIs(t, err, shared.ErrInsufficientStock)
}

func TestOrderService_Serve_DeductsAndSettles(t *testing.T) {
	env := newOrderEnv()
	ctx := context.Background()
	tenantID := uuid.New()
	actorID := uuid.New()
	productID := uuid.New()
	warehouseID := uuid.New()

	env.stockIn(t, tenantID, productID, warehouseID, 10)

	o, err := env.service.Create(ctx, appfulfillment.CreateOrderCommand{
		TenantID:    tenantID,
		ActorID:     actorID,
		WarehouseID: warehouseID,
		Lines: []fulfillment.OrderLine{
			{ProductID: productID, Quantity: 3, UnitPrice: decimal.NewFromInt(5)},
		},
	})
	require.NoError(t, err)
	item := o.Items[0]

	o, err = env.service.Serve(ctx, appfulfillment.ServeCommand{
		TenantID:         tenantID,
		ActorID:          actorID,
		OrderID:          o.ID,
		ServingReference: "SRV-1",
		Lines:            []appfulfillment.ServeLine{{ItemID: item.ID, Quantity: 2}},
	})
	require.NoError(t, err)
	assert.Equal(t, fulfillment.OrderStatusPreparing, o.Status)

	pos, err := env.Ledger.Position(ctx, tenantID, productID, warehouseID)
	require.NoError(t, err)
	assert.Equal(t, int64(8), pos.Quantity)
	assert.Equal(t, int64(1), pos.Reserved, "served quantity released its reservation")

	o, err = env.service.Serve(ctx, appfulfillment.ServeCommand{
		TenantID:         tenantID,
		ActorID:          actorID,
		OrderID:          o.ID,
		ServingReference: "SRV-2",
		Lines:            []appfulfillment.ServeLine{{ItemID: item.ID, Quantity: 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, fulfillment.OrderStatusServed, o.Status)
	assert.NotNil(t, o.ServedAt)

	pos, err = env.Ledger.Position(ctx, tenantID, productID, warehouseID)
	require.NoError(t, err)
	assert.Equal(t, int64(7), pos.Quantity)
	assert.Zero(t, pos.Reserved)
}

func TestOrderService_Serve_OverServeRejected(t *testing.T) {
	env := newOrderEnv()
	ctx := context.Background()
	tenantID := uuid.New()
	productID := uuid.New()
	warehouseID := uuid.New()

	env.stockIn(t, tenantID, productID, warehouseID, 10)

	o, err := env.service.Create(ctx, appfulfillment.CreateOrderCommand{
		TenantID:    tenantID,
		ActorID:     uuid.New(),
		WarehouseID: warehouseID,
		Lines: []fulfillment.OrderLine{
			{ProductID: productID, Quantity: 3, UnitPrice: decimal.NewFromInt(5)},
		},
	})
	require.NoError(t, err)

	_, err = env.service.Serve(ctx, appfulfillment.ServeCommand{
		TenantID:         tenantID,
		ActorID:          uuid.New(),
		OrderID:          o.ID,
		ServingReference: "SRV-1",
		Lines:            []appfulfillment.ServeLine{{ItemID: o.Items[0].ID, Quantity: 4}},
	})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestOrderService_ValidateRequiresPayment(t *testing.T) {
	env := newOrderEnv()
	ctx := context.Background()
	tenantID := uuid.New()
	actorID := uuid.New()
	productID := uuid.New()
	warehouseID := uuid.New()

	env.stockIn(t, tenantID, productID, warehouseID, 10)

	o, err := env.service.Create(ctx, appfulfillment.CreateOrderCommand{
		TenantID:    tenantID,
		ActorID:     actorID,
		WarehouseID: warehouseID,
		Lines: []fulfillment.OrderLine{
			{ProductID: productID, Quantity: 1, UnitPrice: decimal.NewFromInt(5)},
		},
	})
	require.NoError(t, err)

	o, err = env.service.Serve(ctx, appfulfillment.ServeCommand{
		TenantID:         tenantID,
		ActorID:          actorID,
		OrderID:          o.ID,
		ServingReference: "SRV-1",
		Lines:            []appfulfillment.ServeLine{{ItemID: o.Items[0].ID, Quantity: 1}},
	})
	require.NoError(t, err)

	_, err = env.service.Validate(ctx, tenantID, o.ID)
	assert.ErrorIs(t, err, shared.ErrInvalidStateTransition, "unpaid orders cannot be validated")

	o, err = env.service.MarkPaid(ctx, tenantID, o.ID)
	require.NoError(t, err)
	assert.True(t, o.Paid)

	o, err = env.service.Validate(ctx, tenantID, o.ID)
	require.NoError(t, err)
	assert.Equal(t, fulfillment.OrderStatusValidated, o.Status)

	types := testutil.EventTypesOf(env.Scope.Events)
	assert.Contains(t, types, fulfillment.EventTypeOrderValidated)
}

func TestOrderService_Cancel_ReleasesReservations(t *testing.T) {
	env := newOrderEnv()
	ctx := context.Background()
	tenantID := uuid.New()
	productID := uuid.New()
	warehouseID := uuid.New()

	env.stockIn(t, tenantID, productID, warehouseID, 10)

	o, err := env.service.Create(ctx, appfulfillment.CreateOrderCommand{
		TenantID:    tenantID,
		ActorID:     uuid.New(),
		WarehouseID: warehouseID,
		Lines: []fulfillment.OrderLine{
			{ProductID: productID, Quantity: 4, UnitPrice: decimal.NewFromInt(5)},
		},
	})
	require.NoError(t, err)

	o, err = env.service.Cancel(ctx, tenantID, o.ID)
	require.NoError(t, err)
	assert.Equal(t, fulfillment.OrderStatusCancelled, o.Status)

	pos, err := env.Ledger.Position(ctx, tenantID, productID, warehouseID)
	require.NoError(t, err)
	assert.Zero(t, pos.Reserved)
	assert.Equal(t, int64(10), pos.Available)
}
