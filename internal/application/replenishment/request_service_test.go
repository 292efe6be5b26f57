package replenishment_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appreplenishment "github.com/retailops/backend/internal/application/replenishment"
	"github.com/retailops/backend/internal/domain/replenishment"
	"github.com/retailops/backend/internal/domain/shared"
)

func TestStockRequestService_Create(t *testing.T) {
	env := newReplenishmentEnv()
	ctx := context.Background()
	tenantID := uuid.New()

	r, err := env.requests.Create(ctx, appreplenishment.CreateRequestCommand{
		TenantID:        tenantID,
		ActorID:         uuid.New(),
		FromWarehouseID: uuid.New(),
		ToWarehouseID:   uuid.New(),
		Lines:           []replenishment.RequestLine{{ProductID: uuid.New(), Quantity: 40}},
	})
	require.NoError(t, err)
	assert.Equal(t, replenishment.RequestStatusDraft, r.Status)
	assert.Equal(t, replenishment.PriorityNormal, r.Priority)
	assert.Regexp(t, `^REQ-\d{8}-\d{4}$`, r.Reference)

	r, err = env.requests.Submit(ctx, tenantID, r.ID)
	require.NoError(t, err)
	assert.Equal(t, replenishment.RequestStatusRequested, r.Status)
}

func TestStockRequestService_Approve_MovesStock(t *testing.T) {
	env := newReplenishmentEnv()
	ctx := context.Background()
	tenantID := uuid.New()
	actorID := uuid.New()
	productID := uuid.New()
	shop := uuid.New()
	wholesale := uuid.New()

	// The sourcing side is the request's ToWarehouse.
	env.stockIn(t, tenantID, productID, wholesale, 100, "12.5")

	r, err := env.requests.Create(ctx, appreplenishment.CreateRequestCommand{
		TenantID:        tenantID,
		ActorID:         actorID,
		FromWarehouseID: shop,
		ToWarehouseID:   wholesale,
		Submit:          true,
		Lines:           []replenishment.RequestLine{{ProductID: productID, Quantity: 40}},
	})
	require.NoError(t, err)

	r, tr, err := env.requests.Approve(ctx, appreplenishment.ApproveCommand{
		TenantID:  tenantID,
		ActorID:   actorID,
		RequestID: r.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, replenishment.RequestStatusTransferred, r.Status)
	assert.Equal(t, replenishment.TransferStatusExecuted, tr.Status)
	require.NotNil(t, tr.StockRequestID)
	assert.Equal(t, r.ID, *tr.StockRequestID)
	assert.Equal(t, wholesale, tr.FromWarehouseID, "transfer runs from the sourcing warehouse")
	assert.Equal(t, shop, tr.ToWarehouseID)

	shopPos, err := env.Ledger.Position(ctx, tenantID, productID, shop)
	require.NoError(t, err)
	assert.Equal(t, int64(40), shopPos.Quantity)

	wholesalePos, err := env.Ledger.Position(ctx, tenantID, productID, wholesale)
	require.NoError(t, err)
	assert.Equal(t, int64(60), wholesalePos.Quantity)
}

func TestStockRequestService_Approve_PartialGrant(t *testing.T) {
	env := newReplenishmentEnv()
	ctx := context.Background()
	tenantID := uuid.New()
	actorID := uuid.New()
	productID := uuid.New()
	shop := uuid.New()
	wholesale := uuid.New()

	env.stockIn(t, tenantID, productID, wholesale, 100, "10")

	r, err := env.requests.Create(ctx, appreplenishment.CreateRequestCommand{
		TenantID:        tenantID,
		ActorID:         actorID,
		FromWarehouseID: shop,
		ToWarehouseID:   wholesale,
		Submit:          true,
		Lines:           []replenishment.RequestLine{{ProductID: productID, Quantity: 50}},
	})
	require.NoError(t, err)

	_, tr, err := env.requests.Approve(ctx, appreplenishment.ApproveCommand{
		TenantID:  tenantID,
		ActorID:   actorID,
		RequestID: r.ID,
		Approvals: map[uuid.UUID]int64{r.Items[0].ID: 30},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(30), tr.Items[0].Quantity)

	shopPos, err := env.Ledger.Position(ctx, tenantID, productID, shop)
	require.NoError(t, err)
	assert.Equal(t, int64(30), shopPos.Quantity)
}

func TestStockRequestService_Approve_InsufficientSourceStock(t *testing.T) {
	env := newReplenishmentEnv()
	ctx := context.Background()
	tenantID := uuid.New()
	actorID := uuid.New()
	productID := uuid.New()
	shop := uuid.New()
	wholesale := uuid.New()

	env.stockIn(t, tenantID, productID, wholesale, 10, "10")

	r, err := env.requests.Create(ctx, appreplenishment.CreateRequestCommand{
		TenantID:        tenantID,
		ActorID:         actorID,
		FromWarehouseID: shop,
		ToWarehouseID:   wholesale,
		Submit:          true,
		Lines:           []replenishment.RequestLine{{ProductID: productID, Quantity: 40}},
	})
	require.NoError(t, err)

	_, _, err = env.requests.Approve(ctx, appreplenishment.ApproveCommand{
		TenantID:  tenantID,
		ActorID:   actorID,
		RequestID: r.ID,
	})
	assert.ErrorIs(t, err, shared.ErrInsufficientStock)

	// Availability is checked before anything moves, so both positions
	// are untouched.
	pos, err := env.Ledger.Position(ctx, tenantID, productID, wholesale)
	require.NoError(t, err)
	assert.Equal(t, int64(10), pos.Quantity)
}

func TestStockRequestService_Approve_ZeroGrantRejected(t *testing.T) {
	env := newReplenishmentEnv()
	ctx := context.Background()
	tenantID := uuid.New()
	actorID := uuid.New()

	r, err := env.requests.Create(ctx, appreplenishment.CreateRequestCommand{
		TenantID:        tenantID,
		ActorID:         actorID,
		FromWarehouseID: uuid.New(),
		ToWarehouseID:   uuid.New(),
		Submit:          true,
		Lines:           []replenishment.RequestLine{{ProductID: uuid.New(), Quantity: 5}},
	})
	require.NoError(t, err)

	_, _, err = env.requests.Approve(ctx, appreplenishment.ApproveCommand{
		TenantID:  tenantID,
		ActorID:   actorID,
		RequestID: r.ID,
		Approvals: map[uuid.UUID]int64{r.Items[0].ID: 0},
	})
	assert.ErrorIs(t, err, shared.ErrInvalidQuantity)
}

func TestStockRequestService_Reject(t *testing.T) {
	env := newReplenishmentEnv()
	ctx := context.Background()
	tenantID := uuid.New()

	r, err := env.requests.Create(ctx, appreplenishment.CreateRequestCommand{
		TenantID:        tenantID,
		ActorID:         uuid.New(),
		FromWarehouseID: uuid.New(),
		ToWarehouseID:   uuid.New(),
		Submit:          true,
		Lines:           []replenishment.RequestLine{{ProductID: uuid.New(), Quantity: 5}},
	})
	require.NoError(t, err)

	r, err = env.requests.Reject(ctx, tenantID, r.ID, uuid.New(), "out of season")
	require.NoError(t, err)
	assert.Equal(t, replenishment.RequestStatusRejected, r.Status)
	assert.Equal(t, "out of season", r.RejectionReason)
}
