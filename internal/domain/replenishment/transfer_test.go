package replenishment

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retailops/backend/internal/domain/shared"
)

func createTestTransfer(t *testing.T, lines ...TransferLine) *Transfer {
	if len(lines) == 0 {
		lines = []TransferLine{{ProductID: uuid.New(), Quantity: 25}}
	}
	tr, err := NewTransfer(uuid.New(), uuid.New(), uuid.New(), uuid.New(), "TRF-20260829-0001", lines)
	require.NoError(t, err)
	return tr
}

func approvedTransfer(t *testing.T, lines ...TransferLine) *Transfer {
	tr := createTestTransfer(t, lines...)
	require.NoError(t, tr.Approve(uuid.New()))
	return tr
}

func TestTransferStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from     TransferStatus
		to       TransferStatus
		canTrans bool
	}{
		{TransferStatusPending, TransferStatusApproved, true},
		{TransferStatusPending, TransferStatusCancelled, true},
		{TransferStatusPending, TransferStatusExecuted, false},
		{TransferStatusApproved, TransferStatusExecuted, true},
		{TransferStatusApproved, TransferStatusCancelled, true},
		{TransferStatusExecuted, TransferStatusReceived, true},
		{TransferStatusExecuted, TransferStatusCancelled, false},
		{TransferStatusReceived, TransferStatusValidated, true},
		{TransferStatusValidated, TransferStatusReceived, false},
		{TransferStatusCancelled, TransferStatusApproved, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"_to_"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.canTrans, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestNewTransfer_Validation(t *testing.T) {
	line := TransferLine{ProductID: uuid.New(), Quantity: 10}
	wh := uuid.New()

	_, err := NewTransfer(uuid.New(), uuid.New(), uuid.Nil, uuid.New(), "TRF-1", []TransferLine{line})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	_, err = NewTransfer(uuid.New(), uuid.New(), wh, wh, "TRF-1", []TransferLine{line})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	_, err = NewTransfer(uuid.New(), uuid.New(), uuid.New(), uuid.New(), "TRF-1", nil)
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	_, err = NewTransfer(uuid.New(), uuid.New(), uuid.New(), uuid.New(), "TRF-1",
		[]TransferLine{{ProductID: uuid.New(), Quantity: 0}})
	assert.ErrorIs(t, err, shared.ErrInvalidQuantity)
}

func TestTransfer_ApproveExecuteReceiveValidate(t *testing.T) {
	tr := createTestTransfer(t)
	approver := uuid.New()
	operator := uuid.New()

	require.NoError(t, tr.Approve(approver))
	assert.Equal(t, TransferStatusApproved, tr.Status)
	require.NotNil(t, tr.ApprovedBy)
	assert.Equal(t, approver, *tr.ApprovedBy)

	require.NoError(t, tr.SetItemCost(tr.Items[0].ID, decimal.RequireFromString("1066.6667")))
	require.NoError(t, tr.MarkExecuted(operator))
	assert.Equal(t, TransferStatusExecuted, tr.Status)
	assert.NotNil(t, tr.ExecutedAt)

	require.NoError(t, tr.Receive(operator, nil))
	assert.Equal(t, TransferStatusReceived, tr.Status)
	assert.Equal(t, int64(25), tr.Items[0].QuantityReceived)
	assert.False(t, tr.HasShortage())

	require.NoError(t, tr.Validate(approver))
	assert.Equal(t, TransferStatusValidated, tr.Status)
}

func TestTransfer_Receive_Shortage(t *testing.T) {
	tr := approvedTransfer(t, TransferLine{ProductID: uuid.New(), Quantity: 25})
	require.NoError(t, tr.MarkExecuted(uuid.New()))

	require.NoError(t, tr.Receive(uuid.New(), map[uuid.UUID]int64{tr.Items[0].ID: 20}))
	assert.Equal(t, int64(20), tr.Items[0].QuantityReceived)
	assert.Equal(t, int64(5), tr.Items[0].Shortage())
	assert.True(t, tr.HasShortage())
}

func TestTransfer_Receive_CountAboveShippedRejected(t *testing.T) {
	tr := approvedTransfer(t)
	require.NoError(t, tr.MarkExecuted(uuid.New()))

	err := tr.Receive(uuid.New(), map[uuid.UUID]int64{tr.Items[0].ID: 26})
	assert.ErrorIs(t, err, shared.ErrInvalidQuantity)
}

func TestTransfer_MarkExecuted_RequiresApproval(t *testing.T) {
	tr := createTestTransfer(t)
	assert.ErrorIs(t, tr.MarkExecuted(uuid.New()), shared.ErrInvalidStateTransition)
}

func TestTransfer_SetItemCost_UnknownItem(t *testing.T) {
	tr := createTestTransfer(t)
	err := tr.SetItemCost(uuid.New(), decimal.NewFromInt(10))
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestTransfer_Cancel(t *testing.T) {
	tr := createTestTransfer(t)
	require.NoError(t, tr.Cancel("stock counted wrong, re-raising"))
	assert.Equal(t, TransferStatusCancelled, tr.Status)
	assert.Equal(t, "stock counted wrong, re-raising", tr.CancellationNote)

	executed := approvedTransfer(t)
	require.NoError(t, executed.MarkExecuted(uuid.New()))
	assert.ErrorIs(t, executed.Cancel("too late"), shared.ErrInvalidStateTransition)
}

func TestTransfer_LinkRequest(t *testing.T) {
	tr := createTestTransfer(t)
	requestID := uuid.New()

	tr.LinkRequest(requestID)
	require.NotNil(t, tr.StockRequestID)
	assert.Equal(t, requestID, *tr.StockRequestID)
}
