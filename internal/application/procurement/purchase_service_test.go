package procurement_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appprocurement "github.com/retailops/backend/internal/application/procurement"
	"github.com/retailops/backend/internal/domain/procurement"
	"github.com/retailops/backend/internal/domain/shared"
	"github.com/retailops/backend/tests/testutil"
)

type purchaseEnv struct {
	*testutil.LedgerEnv
	service *appprocurement.PurchaseService
}

func newPurchaseEnv() *purchaseEnv {
	env := testutil.NewLedgerEnv()
	return &purchaseEnv{
		LedgerEnv: env,
		service:   appprocurement.NewPurchaseService(env.Scope, env.Ledger, env.Purchases, zap.NewNop()),
	}
}

func (e *purchaseEnv) createPurchase(t *testing.T, tenantID uuid.UUID, submit bool, lines ...procurement.PurchaseLine) *procurement.Purchase {
	t.Helper()
	if len(lines) == 0 {
		lines = []procurement.PurchaseLine{
			{ProductID: uuid.New(), Quantity: 100, UnitCost: decimal.NewFromInt(1000)},
		}
	}
	p, err := e.service.Create(context.Background(), appprocurement.CreatePurchaseCommand{
		TenantID:    tenantID,
		ActorID:     uuid.New(),
		SupplierID:  uuid.New(),
		WarehouseID: uuid.New(),
		Submit:      submit,
		Lines:       lines,
	})
	require.NoError(t, err)
	return p
}

func TestPurchaseService_Create(t *testing.T) {
	env := newPurchaseEnv()
	tenantID := uuid.New()

	p := env.createPurchase(t, tenantID, false)
	assert.Equal(t, procurement.PurchaseStatusDraft, p.Status)
	assert.Regexp(t, `^PO-\d{8}-\d{4}$`, p.Reference)

	second := env.createPurchase(t, tenantID, true)
	assert.Equal(t, procurement.PurchaseStatusSubmitted, second.Status)
	assert.NotEqual(t, p.Reference, second.Reference, "references are allocated per document")
}

func TestPurchaseService_Lifecycle(t *testing.T) {
	env := newPurchaseEnv()
	ctx := context.Background()
	tenantID := uuid.New()

	p := env.createPurchase(t, tenantID, false)

	p, err := env.service.Submit(ctx, tenantID, p.ID)
	require.NoError(t, err)
	assert.Equal(t, procurement.PurchaseStatusSubmitted, p.Status)

	p, err = env.service.Confirm(ctx, tenantID, p.ID)
	require.NoError(t, err)
	p, err = env.service.Ship(ctx, tenantID, p.ID)
	require.NoError(t, err)
	p, err = env.service.Deliver(ctx, tenantID, p.ID)
	require.NoError(t, err)
	assert.Equal(t, procurement.PurchaseStatusDelivered, p.Status)

	_, err = env.service.Cancel(ctx, tenantID, p.ID)
	assert.ErrorIs(t, err, shared.ErrInvalidStateTransition, "only drafts can be cancelled")
}

func TestPurchaseService_Receive(t *testing.T) {
	env := newPurchaseEnv()
	ctx := context.Background()
	tenantID := uuid.New()
	actorID := uuid.New()

	p := env.createPurchase(t, tenantID, true)
	item := p.Items[0]

	p, err := env.service.Receive(ctx, appprocurement.ReceiveCommand{
		TenantID:         tenantID,
		ActorID:          actorID,
		PurchaseID:       p.ID,
		ReceiptReference: "GR-1",
		Lines:            []appprocurement.ReceiptLine{{ItemID: item.ID, Quantity: 60}},
	})
	require.NoError(t, err)
	assert.Equal(t, procurement.PurchaseStatusPartial, p.Status)

	pos, err := env.Ledger.Position(ctx, tenantID, item.ProductID, p.WarehouseID)
	require.NoError(t, err)
	assert.Equal(t, int64(60), pos.Quantity)
	assert.True(t, pos.CostAverage.Equal(decimal.NewFromInt(1000)))

	p, err = env.service.Receive(ctx, appprocurement.ReceiveCommand{
		TenantID:         tenantID,
		ActorID:          actorID,
		PurchaseID:       p.ID,
		ReceiptReference: "GR-2",
		Lines:            []appprocurement.ReceiptLine{{ItemID: item.ID, Quantity: 40}},
	})
	require.NoError(t, err)
	assert.Equal(t, procurement.PurchaseStatusReceived, p.Status)

	pos, err = env.Ledger.Position(ctx, tenantID, item.ProductID, p.WarehouseID)
	require.NoError(t, err)
	assert.Equal(t, int64(100), pos.Quantity)
}

func TestPurchaseService_Receive_OverReceipt(t *testing.T) {
	env := newPurchaseEnv()
	ctx := context.Background()
	tenantID := uuid.New()

	p := env.createPurchase(t, tenantID, true)
	item := p.Items[0]

	_, err := env.service.Receive(ctx, appprocurement.ReceiveCommand{
		TenantID:         tenantID,
		ActorID:          uuid.New(),
		PurchaseID:       p.ID,
		ReceiptReference: "GR-1",
		Lines:            []appprocurement.ReceiptLine{{ItemID: item.ID, Quantity: 101}},
	})
	assert.ErrorIs(t, err, shared.ErrOverReceipt)
}

func TestPurchaseService_Receive_ReplayedReceiptRejected(t *testing.T) {
	env := newPurchaseEnv()
	ctx := context.Background()
	tenantID := uuid.New()

	p := env.createPurchase(t, tenantID, true)
	item := p.Items[0]

	cmd := appprocurement.ReceiveCommand{
		TenantID:         tenantID,
		ActorID:          uuid.New(),
		PurchaseID:       p.ID,
		ReceiptReference: "GR-1",
		Lines:            []appprocurement.ReceiptLine{{ItemID: item.ID, Quantity: 30}},
	}
	_, err := env.service.Receive(ctx, cmd)
	require.NoError(t, err)

	_, err = env.service.Receive(ctx, cmd)
	assert.ErrorIs(t, err, shared.ErrAlreadyReceived, "same receipt reference books once")
}

func TestPurchaseService_Receive_Validation(t *testing.T) {
	env := newPurchaseEnv()
	ctx := context.Background()
	tenantID := uuid.New()
	p := env.createPurchase(t, tenantID, true)

	_, err := env.service.Receive(ctx, appprocurement.ReceiveCommand{
		TenantID: tenantID, ActorID: uuid.New(), PurchaseID: p.ID, ReceiptReference: "GR-1",
	})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	_, err = env.service.Receive(ctx, appprocurement.ReceiveCommand{
		TenantID: tenantID, ActorID: uuid.New(), PurchaseID: p.ID,
		Lines: []appprocurement.ReceiptLine{{ItemID: p.Items[0].ID, Quantity: 1}},
	})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestPurchaseService_PaymentSettlement(t *testing.T) {
	env := newPurchaseEnv()
	ctx := context.Background()
	tenantID := uuid.New()

	p := env.createPurchase(t, tenantID, true)
	item := p.Items[0]

	p, err := env.service.ValidatePayment(ctx, tenantID, p.ID)
	require.NoError(t, err)
	assert.True(t, p.PaymentValidatedBySupplier)
	assert.Equal(t, procurement.PurchaseStatusSubmitted, p.Status, "payment alone does not close the order")

	p, err = env.service.Receive(ctx, appprocurement.ReceiveCommand{
		TenantID:         tenantID,
		ActorID:          uuid.New(),
		PurchaseID:       p.ID,
		ReceiptReference: "GR-1",
		Lines:            []appprocurement.ReceiptLine{{ItemID: item.ID, Quantity: 100}},
	})
	require.NoError(t, err)
	assert.Equal(t, procurement.PurchaseStatusPaid, p.Status, "fully received and payment validated")
	assert.NotNil(t, p.PaidAt)
}

func TestPurchaseService_OrderedValue(t *testing.T) {
	env := newPurchaseEnv()
	ctx := context.Background()
	tenantID := uuid.New()
	supplierID := uuid.New()

	create := func(lines ...procurement.PurchaseLine) *procurement.Purchase {
		p, err := env.service.Create(ctx, appprocurement.CreatePurchaseCommand{
			TenantID:    tenantID,
			ActorID:     uuid.New(),
			SupplierID:  supplierID,
			WarehouseID: uuid.New(),
			Submit:      true,
			Lines:       lines,
		})
		require.NoError(t, err)
		return p
	}
	create(procurement.PurchaseLine{ProductID: uuid.New(), Quantity: 10, UnitCost: decimal.NewFromInt(100)})
	create(procurement.PurchaseLine{ProductID: uuid.New(), Quantity: 5, UnitCost: decimal.NewFromInt(50)})

	// Cancelled orders drop out of the open order value.
	cancelled, err := env.service.Create(ctx, appprocurement.CreatePurchaseCommand{
		TenantID:    tenantID,
		ActorID:     uuid.New(),
		SupplierID:  supplierID,
		WarehouseID: uuid.New(),
		Lines: []procurement.PurchaseLine{
			{ProductID: uuid.New(), Quantity: 99, UnitCost: decimal.NewFromInt(999)},
		},
	})
	require.NoError(t, err)
	_, err = env.service.Cancel(ctx, tenantID, cancelled.ID)
	require.NoError(t, err)

	total, err := env.service.OrderedValue(ctx, tenantID, supplierID)
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.NewFromInt(1250)), "got %s", total)
}
