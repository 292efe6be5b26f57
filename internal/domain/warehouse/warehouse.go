package warehouse

import (
	"strings"

	"github.com/google/uuid"

	"github.com/retailops/backend/internal/domain/shared"
)

// Kind classifies a warehouse. The set is closed: wholesale locations feed
// retail locations through transfers, and pos locations serve orders.
type Kind string

const (
	KindWholesale Kind = "wholesale"
	KindRetail    Kind = "retail"
	KindPos       Kind = "pos"
)

// ParseKind validates a kind string against the closed set.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(s)) {
	case KindWholesale:
		return KindWholesale, nil
	case KindRetail:
		return KindRetail, nil
	case KindPos:
		return KindPos, nil
	default:
		return "", shared.ErrInvalidInput.WithMessage("unknown warehouse kind: " + s)
	}
}

// IsValid reports whether the kind belongs to the closed set.
func (k Kind) IsValid() bool {
	switch k {
	case KindWholesale, KindRetail, KindPos:
		return true
	}
	return false
}

// Warehouse is a physical or logical stock location.
type Warehouse struct {
	shared.TenantAggregateRoot
	Code     string `gorm:"size:32;not null;uniqueIndex:idx_warehouses_tenant_code,priority:2"`
	Name     string `gorm:"size:255;not null"`
	Kind     Kind   `gorm:"size:16;not null"`
	Address  string `gorm:"size:500"`
	IsActive bool   `gorm:"not null;default:true"`
}

// TableName returns the database table name.
func (Warehouse) TableName() string {
	return "warehouses"
}

// NewWarehouse creates an active warehouse of the given kind.
func NewWarehouse(tenantID uuid.UUID, code, name string, kind Kind) (*Warehouse, error) {
	if code == "" || name == "" {
		return nil, shared.ErrInvalidInput.WithMessage("warehouse code and name are required")
	}
	if !kind.IsValid() {
		return nil, shared.ErrInvalidInput.WithMessage("unknown warehouse kind: " + string(kind))
	}
	return &Warehouse{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Code:                code,
		Name:                name,
		Kind:                kind,
		IsActive:            true,
	}, nil
}

// Deactivate takes the warehouse out of service. Stock rows remain.
func (w *Warehouse) Deactivate() {
	w.IsActive = false
}

// Activate puts the warehouse back in service.
func (w *Warehouse) Activate() {
	w.IsActive = true
}
