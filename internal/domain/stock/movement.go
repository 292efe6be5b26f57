package stock

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/retailops/backend/internal/domain/shared"
)

// MovementKind classifies a ledger movement.
type MovementKind string

const (
	MovementPurchase   MovementKind = "purchase"
	MovementTransfer   MovementKind = "transfer"
	MovementSale       MovementKind = "sale"
	MovementAdjustment MovementKind = "adjustment"
	MovementReturn     MovementKind = "return"
)

// IsValid reports whether the kind belongs to the closed set.
func (k MovementKind) IsValid() bool {
	switch k {
	case MovementPurchase, MovementTransfer, MovementSale, MovementAdjustment, MovementReturn:
		return true
	}
	return false
}

// Movement is one append-only ledger line. Quantities are stored positive;
// direction is carried by the kind and the from/to warehouses. Movements
// are never updated or deleted, and the idempotency key is unique per
// tenant so a replayed write surfaces as a constraint violation instead of
// a double booking.
type Movement struct {
	shared.BaseEntity
	TenantID        uuid.UUID       `gorm:"type:uuid;not null;index;uniqueIndex:idx_stock_movements_tenant_idem,priority:1"`
	ProductID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	FromWarehouseID *uuid.UUID      `gorm:"type:uuid;index"`
	ToWarehouseID   *uuid.UUID      `gorm:"type:uuid;index"`
	Quantity        int64           `gorm:"not null"`
	UnitCost        decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Kind            MovementKind    `gorm:"size:16;not null;index"`
	Reference       string          `gorm:"size:64;not null;index"`
	Reason          string          `gorm:"size:255"`
	IdempotencyKey  string          `gorm:"size:128;not null;uniqueIndex:idx_stock_movements_tenant_idem,priority:2"`
	ActorID         uuid.UUID       `gorm:"type:uuid;not null"`
	OccurredAt      time.Time       `gorm:"not null;index"`
}

// TableName returns the database table name.
func (Movement) TableName() string {
	return "stock_movements"
}

// MovementSpec carries the caller-supplied fields of a movement.
type MovementSpec struct {
	ProductID       uuid.UUID
	FromWarehouseID *uuid.UUID
	ToWarehouseID   *uuid.UUID
	Quantity        int64
	UnitCost        decimal.Decimal
	Kind            MovementKind
	Reference       string
	Reason          string
	IdempotencyKey  string
	ActorID         uuid.UUID
}

// NewMovement validates and builds a ledger line.
func NewMovement(tenantID uuid.UUID, spec MovementSpec) (*Movement, error) {
	if spec.Quantity <= 0 {
		return nil, shared.ErrInvalidQuantity
	}
	if !spec.Kind.IsValid() {
		return nil, shared.ErrInvalidInput.WithMessage("unknown movement kind: " + string(spec.Kind))
	}
	if spec.FromWarehouseID == nil && spec.ToWarehouseID == nil {
		return nil, shared.ErrInvalidInput.WithMessage("movement needs a source or destination warehouse")
	}
	if spec.IdempotencyKey == "" {
		return nil, shared.ErrInvalidInput.WithMessage("idempotency key is required")
	}
	if spec.ActorID == uuid.Nil {
		return nil, shared.ErrInvalidInput.WithMessage("actor ID is required")
	}

	return &Movement{
		BaseEntity:      shared.NewBaseEntity(),
		TenantID:        tenantID,
		ProductID:       spec.ProductID,
		FromWarehouseID: spec.FromWarehouseID,
		ToWarehouseID:   spec.ToWarehouseID,
		Quantity:        spec.Quantity,
		UnitCost:        spec.UnitCost,
		Kind:            spec.Kind,
		Reference:       spec.Reference,
		Reason:          spec.Reason,
		IdempotencyKey:  spec.IdempotencyKey,
		ActorID:         spec.ActorID,
		OccurredAt:      time.Now(),
	}, nil
}
