package stock

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retailops/backend/internal/domain/shared"
)

func TestMovementKind_IsValid(t *testing.T) {
	tests := []struct {
		kind    MovementKind
		isValid bool
	}{
		{MovementPurchase, true},
		{MovementTransfer, true},
		{MovementSale, true},
		{MovementAdjustment, true},
		{MovementReturn, true},
		{MovementKind("restock"), false},
		{MovementKind(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			assert.Equal(t, tt.isValid, tt.kind.IsValid())
		})
	}
}

func TestNewMovement(t *testing.T) {
	tenantID := uuid.New()
	warehouseID := uuid.New()

	m, err := NewMovement(tenantID, MovementSpec{
		ProductID:      uuid.New(),
		ToWarehouseID:  &warehouseID,
		Quantity:       10,
		UnitCost:       decimal.NewFromInt(1000),
		Kind:           MovementPurchase,
		Reference:      "PO-20260829-0001",
		IdempotencyKey: "receipt:PO-20260829-0001:1",
		ActorID:        uuid.New(),
	})
	require.NoError(t, err)
	assert.Equal(t, tenantID, m.TenantID)
	assert.NotEqual(t, uuid.Nil, m.ID)
	assert.False(t, m.OccurredAt.IsZero())
}

func TestNewMovement_Validation(t *testing.T) {
	tenantID := uuid.New()
	warehouseID := uuid.New()
	valid := MovementSpec{
		ProductID:      uuid.New(),
		ToWarehouseID:  &warehouseID,
		Quantity:       10,
		Kind:           MovementPurchase,
		Reference:      "PO-1",
		IdempotencyKey: "key",
		ActorID:        uuid.New(),
	}

	tests := []struct {
		name    string
		mutate  func(*MovementSpec)
		wantErr *shared.DomainError
	}{
		{"zero quantity", func(s *MovementSpec) { s.Quantity = 0 }, shared.ErrInvalidQuantity},
		{"negative quantity", func(s *MovementSpec) { s.Quantity = -3 }, shared.ErrInvalidQuantity},
		{"unknown kind", func(s *MovementSpec) { s.Kind = "restock" }, shared.ErrInvalidInput},
		{"no warehouses", func(s *MovementSpec) { s.ToWarehouseID = nil }, shared.ErrInvalidInput},
		{"missing idempotency key", func(s *MovementSpec) { s.IdempotencyKey = "" }, shared.ErrInvalidInput},
		{"missing actor", func(s *MovementSpec) { s.ActorID = uuid.Nil }, shared.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := valid
			tt.mutate(&spec)
			_, err := NewMovement(tenantID, spec)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
