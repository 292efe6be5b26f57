package procurement

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retailops/backend/internal/domain/shared"
)

func createTestPurchase(t *testing.T, lines ...PurchaseLine) *Purchase {
	if len(lines) == 0 {
		lines = []PurchaseLine{
			{ProductID: uuid.New(), Quantity: 100, UnitCost: decimal.NewFromInt(1000)},
		}
	}
	p, err := NewPurchase(uuid.New(), uuid.New(), uuid.New(), uuid.New(), "PO-20260829-0001", lines)
	require.NoError(t, err)
	return p
}

func submittedPurchase(t *testing.T, lines ...PurchaseLine) *Purchase {
	p := createTestPurchase(t, lines...)
	require.NoError(t, p.Submit())
	return p
}

func TestPurchaseStatus_IsValid(t *testing.T) {
	tests := []struct {
		status  PurchaseStatus
		isValid bool
	}{
		{PurchaseStatusDraft, true},
		{PurchaseStatusSubmitted, true},
		{PurchaseStatusConfirmed, true},
		{PurchaseStatusShipped, true},
		{PurchaseStatusDelivered, true},
		{PurchaseStatusPartial, true},
		{PurchaseStatusReceived, true},
		{PurchaseStatusPaid, true},
		{PurchaseStatusCancelled, true},
		{PurchaseStatus("pending"), false},
		{PurchaseStatus(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.isValid, tt.status.IsValid())
		})
	}
}

func TestPurchaseStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from     PurchaseStatus
		to       PurchaseStatus
		canTrans bool
	}{
		{PurchaseStatusDraft, PurchaseStatusSubmitted, true},
		{PurchaseStatusDraft, PurchaseStatusCancelled, true},
		{PurchaseStatusDraft, PurchaseStatusConfirmed, false},
		{PurchaseStatusSubmitted, PurchaseStatusConfirmed, true},
		{PurchaseStatusSubmitted, PurchaseStatusPartial, true},
		{PurchaseStatusSubmitted, PurchaseStatusCancelled, false},
		{PurchaseStatusConfirmed, PurchaseStatusShipped, true},
		{PurchaseStatusConfirmed, PurchaseStatusDraft, false},
		{PurchaseStatusShipped, PurchaseStatusDelivered, true},
		{PurchaseStatusDelivered, PurchaseStatusReceived, true},
		{PurchaseStatusPartial, PurchaseStatusPartial, true},
		{PurchaseStatusPartial, PurchaseStatusReceived, true},
		{PurchaseStatusReceived, PurchaseStatusPaid, true},
		{PurchaseStatusPaid, PurchaseStatusReceived, false},
		{PurchaseStatusCancelled, PurchaseStatusDraft, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"_to_"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.canTrans, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestNewPurchase_Validation(t *testing.T) {
	line := PurchaseLine{ProductID: uuid.New(), Quantity: 10, UnitCost: decimal.NewFromInt(5)}

	_, err := NewPurchase(uuid.New(), uuid.New(), uuid.Nil, uuid.New(), "PO-1", []PurchaseLine{line})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	_, err = NewPurchase(uuid.New(), uuid.New(), uuid.New(), uuid.New(), "PO-1", nil)
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	_, err = NewPurchase(uuid.New(), uuid.New(), uuid.New(), uuid.New(), "PO-1",
		[]PurchaseLine{{ProductID: uuid.New(), Quantity: 0, UnitCost: decimal.NewFromInt(5)}})
	assert.ErrorIs(t, err, shared.ErrInvalidQuantity)

	_, err = NewPurchase(uuid.New(), uuid.New(), uuid.New(), uuid.New(), "PO-1",
		[]PurchaseLine{{ProductID: uuid.New(), Quantity: 10, UnitCost: decimal.NewFromInt(-5)}})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestPurchase_Total(t *testing.T) {
	p := createTestPurchase(t,
		PurchaseLine{ProductID: uuid.New(), Quantity: 100, UnitCost: decimal.NewFromInt(1000)},
		PurchaseLine{ProductID: uuid.New(), Quantity: 3, UnitCost: decimal.RequireFromString("12.5")},
	)

	assert.True(t, p.Total().Equal(decimal.RequireFromString("100037.5")), "got %s", p.Total())
}

func TestPurchase_Lifecycle(t *testing.T) {
	p := createTestPurchase(t)

	require.NoError(t, p.Submit())
	assert.Equal(t, PurchaseStatusSubmitted, p.Status)
	assert.NotNil(t, p.SubmittedAt)

	require.NoError(t, p.Confirm())
	require.NoError(t, p.Ship())
	require.NoError(t, p.Deliver())
	assert.Equal(t, PurchaseStatusDelivered, p.Status)
	assert.NotNil(t, p.DeliveredAt)
}

func TestPurchase_Cancel_OnlyDraft(t *testing.T) {
	p := createTestPurchase(t)
	require.NoError(t, p.Cancel())
	assert.Equal(t, PurchaseStatusCancelled, p.Status)

	p2 := submittedPurchase(t)
	assert.ErrorIs(t, p2.Cancel(), shared.ErrInvalidStateTransition)
}

func TestPurchase_ReceiveLine(t *testing.T) {
	p := submittedPurchase(t)
	itemID := p.Items[0].ID

	item, err := p.ReceiveLine(itemID, 60)
	require.NoError(t, err)
	assert.Equal(t, int64(60), item.QuantityReceived)
	assert.Equal(t, int64(40), item.Remaining())
	assert.False(t, p.IsFullyReceived())

	_, err = p.ReceiveLine(itemID, 40)
	require.NoError(t, err)
	assert.True(t, p.IsFullyReceived())
}

func TestPurchase_ReceiveLine_OverReceipt(t *testing.T) {
	p := submittedPurchase(t)
	itemID := p.Items[0].ID

	_, err := p.ReceiveLine(itemID, 101)
	assert.ErrorIs(t, err, shared.ErrOverReceipt)

	_, err = p.ReceiveLine(itemID, 100)
	require.NoError(t, err)

	_, err = p.ReceiveLine(itemID, 1)
	assert.ErrorIs(t, err, shared.ErrOverReceipt)
}

func TestPurchase_ReceiveLine_Guards(t *testing.T) {
	p := createTestPurchase(t)

	_, err := p.ReceiveLine(p.Items[0].ID, 10)
	assert.ErrorIs(t, err, shared.ErrInvalidStateTransition, "draft cannot receive")

	require.NoError(t, p.Submit())
	_, err = p.ReceiveLine(uuid.New(), 10)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	_, err = p.ReceiveLine(p.Items[0].ID, 0)
	assert.ErrorIs(t, err, shared.ErrInvalidQuantity)
}

func TestPurchase_SettleAfterReceipt(t *testing.T) {
	t.Run("partial receipt", func(t *testing.T) {
		p := submittedPurchase(t)
		_, err := p.ReceiveLine(p.Items[0].ID, 30)
		require.NoError(t, err)

		require.NoError(t, p.SettleAfterReceipt())
		assert.Equal(t, PurchaseStatusPartial, p.Status)
		assert.Nil(t, p.ReceivedAt)
	})

	t.Run("full receipt", func(t *testing.T) {
		p := submittedPurchase(t)
		_, err := p.ReceiveLine(p.Items[0].ID, 100)
		require.NoError(t, err)

		require.NoError(t, p.SettleAfterReceipt())
		assert.Equal(t, PurchaseStatusReceived, p.Status)
		assert.NotNil(t, p.ReceivedAt)
	})

	t.Run("full receipt with validated payment lands on paid", func(t *testing.T) {
		p := submittedPurchase(t)
		require.NoError(t, p.ValidatePayment())
		_, err := p.ReceiveLine(p.Items[0].ID, 100)
		require.NoError(t, err)

		require.NoError(t, p.SettleAfterReceipt())
		assert.Equal(t, PurchaseStatusPaid, p.Status)
		assert.NotNil(t, p.PaidAt)
	})

	t.Run("repeated partial settles stay partial", func(t *testing.T) {
		p := submittedPurchase(t)
		_, err := p.ReceiveLine(p.Items[0].ID, 10)
		require.NoError(t, err)
		require.NoError(t, p.SettleAfterReceipt())

		_, err = p.ReceiveLine(p.Items[0].ID, 10)
		require.NoError(t, err)
		require.NoError(t, p.SettleAfterReceipt())
		assert.Equal(t, PurchaseStatusPartial, p.Status)
	})
}

func TestPurchase_ValidatePayment(t *testing.T) {
	t.Run("before receipt just flags", func(t *testing.T) {
		p := submittedPurchase(t)
		require.NoError(t, p.ValidatePayment())
		assert.True(t, p.PaymentValidatedBySupplier)
		assert.Equal(t, PurchaseStatusSubmitted, p.Status)
	})

	t.Run("after full receipt moves to paid", func(t *testing.T) {
		p := submittedPurchase(t)
		_, err := p.ReceiveLine(p.Items[0].ID, 100)
		require.NoError(t, err)
		require.NoError(t, p.SettleAfterReceipt())
		require.Equal(t, PurchaseStatusReceived, p.Status)

		require.NoError(t, p.ValidatePayment())
		assert.Equal(t, PurchaseStatusPaid, p.Status)
	})

	t.Run("draft and cancelled rejected", func(t *testing.T) {
		p := createTestPurchase(t)
		assert.ErrorIs(t, p.ValidatePayment(), shared.ErrInvalidStateTransition)

		require.NoError(t, p.Cancel())
		assert.ErrorIs(t, p.ValidatePayment(), shared.ErrInvalidStateTransition)
	})
}
