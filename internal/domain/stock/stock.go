package stock

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/retailops/backend/internal/domain/shared"
)

// Stock is the quantity and cost position of one product in one warehouse.
// It is the aggregate root of the ledger: every mutation goes through its
// methods so that Available and CostAverage stay consistent. Rows are
// created on first movement and never deleted.
type Stock struct {
	shared.TenantAggregateRoot
	ProductID     uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_stocks_tenant_product_warehouse,priority:2"`
	WarehouseID   uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_stocks_tenant_product_warehouse,priority:3"`
	Quantity      int64           `gorm:"not null;default:0"`
	Reserved      int64           `gorm:"not null;default:0"`
	Available     int64           `gorm:"not null;default:0"`
	CostAverage   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	LastUnitCost  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	AlertQuantity int64           `gorm:"not null;default:0"`
	LastCountedAt *time.Time
}

// TableName returns the database table name.
func (Stock) TableName() string {
	return "stocks"
}

// NewStock creates an empty position for a product in a warehouse.
func NewStock(tenantID, productID, warehouseID uuid.UUID) (*Stock, error) {
	if productID == uuid.Nil {
		return nil, shared.ErrInvalidInput.WithMessage("product ID cannot be empty")
	}
	if warehouseID == uuid.Nil {
		return nil, shared.ErrInvalidInput.WithMessage("warehouse ID cannot be empty")
	}
	return &Stock{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		ProductID:           productID,
		WarehouseID:         warehouseID,
		CostAverage:         decimal.Zero,
		LastUnitCost:        decimal.Zero,
	}, nil
}

// recompute maintains the Available invariant after every mutation.
func (s *Stock) recompute() {
	s.Available = s.Quantity - s.Reserved
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
}

// absorb folds an incoming quantity at unitCost into the moving weighted
// average: (oldQty*oldCost + qty*unitCost) / (oldQty+qty), rounded to four
// places. A position at or below zero takes the incoming cost outright.
func (s *Stock) absorb(quantity int64, unitCost decimal.Decimal) {
	if s.Quantity <= 0 {
		s.CostAverage = unitCost
		return
	}
	oldQty := decimal.NewFromInt(s.Quantity)
	inQty := decimal.NewFromInt(quantity)
	totalValue := oldQty.Mul(s.CostAverage).Add(inQty.Mul(unitCost))
	s.CostAverage = totalValue.Div(oldQty.Add(inQty)).Round(4)
}

// Receive books an external inbound (purchase receipt) and reprices the
// position with the moving weighted average.
func (s *Stock) Receive(quantity int64, unitCost decimal.Decimal) error {
	if quantity <= 0 {
		return shared.ErrInvalidQuantity
	}
	if unitCost.IsNegative() {
		return shared.ErrInvalidInput.WithMessage("unit cost cannot be negative")
	}

	s.absorb(quantity, unitCost)
	s.Quantity += quantity
	s.LastUnitCost = unitCost
	s.recompute()

	s.AddDomainEvent(NewStockReceivedEvent(s, quantity, unitCost))
	s.alertIfLow()
	return nil
}

// TransferOut removes quantity leaving for another warehouse. The cost
// average of the remaining stock is unchanged.
func (s *Stock) TransferOut(quantity int64) error {
	if quantity <= 0 {
		return shared.ErrInvalidQuantity
	}
	if s.Available < quantity {
		return shared.ErrInsufficientStock
	}

	s.Quantity -= quantity
	s.recompute()
	s.alertIfLow()
	return nil
}

// TransferIn books quantity arriving from another warehouse, priced at the
// source position's cost average. A fresh destination takes the source
// cost; an existing one blends it in.
func (s *Stock) TransferIn(quantity int64, sourceCost decimal.Decimal) error {
	if quantity <= 0 {
		return shared.ErrInvalidQuantity
	}
	if sourceCost.IsNegative() {
		return shared.ErrInvalidInput.WithMessage("source cost cannot be negative")
	}

	s.absorb(quantity, sourceCost)
	s.Quantity += quantity
	s.LastUnitCost = sourceCost
	s.recompute()
	return nil
}

// Reserve earmarks available stock for a pending order.
func (s *Stock) Reserve(quantity int64) error {
	if quantity <= 0 {
		return shared.ErrInvalidQuantity
	}
	if s.Available < quantity {
		return shared.ErrInsufficientStock
	}

	s.Reserved += quantity
	s.recompute()
	return nil
}

// Release frees a reservation without touching physical quantity. The
// reservation is floored at zero so a double release cannot corrupt the
// Available invariant.
func (s *Stock) Release(quantity int64) error {
	if quantity <= 0 {
		return shared.ErrInvalidQuantity
	}

	s.Reserved -= quantity
	if s.Reserved < 0 {
		s.Reserved = 0
	}
	s.recompute()
	return nil
}

// Deduct consumes physical stock for a served order and releases the
// matching reservation in the same step.
func (s *Stock) Deduct(quantity int64) error {
	if quantity <= 0 {
		return shared.ErrInvalidQuantity
	}
	if s.Quantity < quantity {
		return shared.ErrInsufficientStock
	}

	s.Quantity -= quantity
	s.Reserved -= quantity
	if s.Reserved < 0 {
		s.Reserved = 0
	}
	s.recompute()

	s.AddDomainEvent(NewStockDeductedEvent(s, quantity))
	s.alertIfLow()
	return nil
}

// Adjust applies a signed correction (stock count, shortage, damage).
// Positive deltas reprice the position at unitCost; negative deltas leave
// the cost average untouched and may not take the quantity below zero.
func (s *Stock) Adjust(delta int64, unitCost decimal.Decimal) error {
	if delta == 0 {
		return shared.ErrInvalidQuantity
	}
	if delta > 0 {
		if unitCost.IsNegative() {
			return shared.ErrInvalidInput.WithMessage("unit cost cannot be negative")
		}
		s.absorb(delta, unitCost)
	} else if s.Quantity+delta < 0 {
		return shared.ErrInsufficientStock
	}

	s.Quantity += delta
	s.recompute()

	s.AddDomainEvent(NewStockAdjustedEvent(s, delta))
	s.alertIfLow()
	return nil
}

// MarkCounted stamps the position after a physical stock count.
func (s *Stock) MarkCounted(at time.Time) {
	s.LastCountedAt = &at
	s.UpdatedAt = time.Now()
}

// Value is the book value of the position (quantity at cost average).
func (s *Stock) Value() decimal.Decimal {
	return decimal.NewFromInt(s.Quantity).Mul(s.CostAverage)
}

// IsLow reports whether the position sits at or under its alert threshold.
func (s *Stock) IsLow() bool {
	return s.AlertQuantity > 0 && s.Quantity <= s.AlertQuantity
}

func (s *Stock) alertIfLow() {
	if s.IsLow() {
		s.AddDomainEvent(NewLowStockAlertEvent(s))
	}
}
