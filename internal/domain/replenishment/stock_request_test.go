package replenishment

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retailops/backend/internal/domain/shared"
)

func createTestRequest(t *testing.T, lines ...RequestLine) *StockRequest {
	if len(lines) == 0 {
		lines = []RequestLine{{ProductID: uuid.New(), Quantity: 50}}
	}
	r, err := NewStockRequest(uuid.New(), uuid.New(), uuid.New(), uuid.New(),
		"REQ-20260829-0001", PriorityNormal, nil, lines)
	require.NoError(t, err)
	return r
}

func TestRequestStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from     RequestStatus
		to       RequestStatus
		canTrans bool
	}{
		{RequestStatusDraft, RequestStatusRequested, true},
		{RequestStatusDraft, RequestStatusApproved, false},
		{RequestStatusRequested, RequestStatusApproved, true},
		{RequestStatusRequested, RequestStatusRejected, true},
		{RequestStatusRequested, RequestStatusTransferred, false},
		{RequestStatusApproved, RequestStatusTransferred, true},
		{RequestStatusApproved, RequestStatusRejected, false},
		{RequestStatusRejected, RequestStatusRequested, false},
		{RequestStatusTransferred, RequestStatusApproved, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"_to_"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.canTrans, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestRequestPriority_IsValid(t *testing.T) {
	assert.True(t, PriorityLow.IsValid())
	assert.True(t, PriorityUrgent.IsValid())
	assert.False(t, RequestPriority("critical").IsValid())
}

func TestNewStockRequest_Validation(t *testing.T) {
	line := RequestLine{ProductID: uuid.New(), Quantity: 10}
	wh := uuid.New()

	_, err := NewStockRequest(uuid.New(), uuid.New(), uuid.Nil, uuid.New(), "REQ-1", PriorityNormal, nil, []RequestLine{line})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	_, err = NewStockRequest(uuid.New(), uuid.New(), wh, wh, "REQ-1", PriorityNormal, nil, []RequestLine{line})
	assert.ErrorIs(t, err, shared.ErrInvalidInput, "same warehouse on both sides")

	_, err = NewStockRequest(uuid.New(), uuid.New(), uuid.New(), uuid.New(), "REQ-1", PriorityNormal, nil, nil)
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	_, err = NewStockRequest(uuid.New(), uuid.New(), uuid.New(), uuid.New(), "REQ-1", "critical", nil, []RequestLine{line})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	_, err = NewStockRequest(uuid.New(), uuid.New(), uuid.New(), uuid.New(), "REQ-1", PriorityNormal, nil,
		[]RequestLine{{ProductID: uuid.New(), Quantity: -1}})
	assert.ErrorIs(t, err, shared.ErrInvalidQuantity)
}

func TestNewStockRequest_DefaultsPriority(t *testing.T) {
	r, err := NewStockRequest(uuid.New(), uuid.New(), uuid.New(), uuid.New(), "REQ-1", "", nil,
		[]RequestLine{{ProductID: uuid.New(), Quantity: 5}})
	require.NoError(t, err)
	assert.Equal(t, PriorityNormal, r.Priority)
}

func TestStockRequest_Submit(t *testing.T) {
	r := createTestRequest(t)

	require.NoError(t, r.Submit())
	assert.Equal(t, RequestStatusRequested, r.Status)
	assert.NotNil(t, r.RequestedAt)

	assert.ErrorIs(t, r.Submit(), shared.ErrInvalidStateTransition)
}

func TestStockRequest_Approve_FullByDefault(t *testing.T) {
	r := createTestRequest(t,
		RequestLine{ProductID: uuid.New(), Quantity: 50},
		RequestLine{ProductID: uuid.New(), Quantity: 20},
	)
	require.NoError(t, r.Submit())
	approver := uuid.New()

	require.NoError(t, r.Approve(approver, nil))
	assert.Equal(t, RequestStatusApproved, r.Status)
	assert.Equal(t, int64(50), r.Items[0].QuantityApproved)
	assert.Equal(t, int64(20), r.Items[1].QuantityApproved)
	require.NotNil(t, r.DecidedBy)
	assert.Equal(t, approver, *r.DecidedBy)
	assert.NotNil(t, r.DecidedAt)
}

func TestStockRequest_Approve_PartialGrant(t *testing.T) {
	r := createTestRequest(t,
		RequestLine{ProductID: uuid.New(), Quantity: 50},
		RequestLine{ProductID: uuid.New(), Quantity: 20},
	)
	require.NoError(t, r.Submit())

	require.NoError(t, r.Approve(uuid.New(), map[uuid.UUID]int64{
		r.Items[0].ID: 30,
	}))
	assert.Equal(t, int64(30), r.Items[0].QuantityApproved)
	assert.Equal(t, int64(20), r.Items[1].QuantityApproved)
}

func TestStockRequest_Approve_GrantAboveRequestedRejected(t *testing.T) {
	r := createTestRequest(t, RequestLine{ProductID: uuid.New(), Quantity: 50})
	require.NoError(t, r.Submit())

	err := r.Approve(uuid.New(), map[uuid.UUID]int64{r.Items[0].ID: 51})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestStockRequest_Approve_RequiresRequestedStatus(t *testing.T) {
	r := createTestRequest(t)
	assert.ErrorIs(t, r.Approve(uuid.New(), nil), shared.ErrInvalidStateTransition)
}

func TestStockRequest_Reject(t *testing.T) {
	r := createTestRequest(t)
	require.NoError(t, r.Submit())

	require.NoError(t, r.Reject(uuid.New(), "wholesale is out of season stock"))
	assert.Equal(t, RequestStatusRejected, r.Status)
	assert.Equal(t, "wholesale is out of season stock", r.RejectionReason)

	assert.ErrorIs(t, r.MarkTransferred(), shared.ErrInvalidStateTransition)
}

func TestStockRequest_MarkTransferred(t *testing.T) {
	r := createTestRequest(t)
	require.NoError(t, r.Submit())
	require.NoError(t, r.Approve(uuid.New(), nil))

	require.NoError(t, r.MarkTransferred())
	assert.Equal(t, RequestStatusTransferred, r.Status)
}

func TestStockRequest_NeededBy(t *testing.T) {
	needed := time.Now().Add(48 * time.Hour)
	r, err := NewStockRequest(uuid.New(), uuid.New(), uuid.New(), uuid.New(), "REQ-1",
		PriorityUrgent, &needed, []RequestLine{{ProductID: uuid.New(), Quantity: 5}})
	require.NoError(t, err)
	require.NotNil(t, r.NeededBy)
	assert.WithinDuration(t, needed, *r.NeededBy, time.Second)
}
