package fulfillment

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/retailops/backend/internal/domain/shared"
)

// OrderStatus tracks a point-of-sale order. Stock is reserved at creation,
// consumed at serving, and the sale is posted at validation.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPreparing OrderStatus = "preparing"
	OrderStatusServed    OrderStatus = "served"
	OrderStatusValidated OrderStatus = "validated"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// IsValid checks membership in the closed status set.
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusPreparing, OrderStatusServed,
		OrderStatusValidated, OrderStatusCancelled:
		return true
	}
	return false
}

func (s OrderStatus) String() string {
	return string(s)
}

// CanTransitionTo checks whether the target status is reachable in one step.
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	switch s {
	case OrderStatusPending:
		return target == OrderStatusPreparing || target == OrderStatusServed ||
			target == OrderStatusCancelled
	case OrderStatusPreparing:
		return target == OrderStatusPreparing || target == OrderStatusServed
	case OrderStatusServed:
		return target == OrderStatusValidated
	case OrderStatusValidated, OrderStatusCancelled:
		return false
	}
	return false
}

// OrderItem is one ordered line. QuantityServed grows as servings are
// recorded and never exceeds QuantityOrdered.
type OrderItem struct {
	shared.BaseEntity
	OrderID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	QuantityOrdered int64           `gorm:"not null"`
	QuantityServed  int64           `gorm:"not null;default:0"`
	UnitPrice       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the database table name.
func (OrderItem) TableName() string {
	return "pos_order_items"
}

// Remaining is the quantity still to be served.
func (i *OrderItem) Remaining() int64 {
	return i.QuantityOrdered - i.QuantityServed
}

// IsFullyServed reports whether the line is complete.
func (i *OrderItem) IsFullyServed() bool {
	return i.QuantityServed >= i.QuantityOrdered
}

// LineTotal is the sales value of the line.
func (i *OrderItem) LineTotal() decimal.Decimal {
	return decimal.NewFromInt(i.QuantityOrdered).Mul(i.UnitPrice)
}

// Order is a point-of-sale order against one pos warehouse.
type Order struct {
	shared.TenantAggregateRoot
	Reference   string      `gorm:"size:64;not null;uniqueIndex:idx_pos_orders_tenant_ref,priority:2"`
	WarehouseID uuid.UUID   `gorm:"type:uuid;not null;index"`
	Status      OrderStatus `gorm:"size:16;not null;default:'pending';index"`
	Paid        bool        `gorm:"not null;default:false"`
	TableNumber string      `gorm:"size:16"`
	ServedAt    *time.Time
	ValidatedAt *time.Time

	Items []OrderItem `gorm:"foreignKey:OrderID;references:ID"`
}

// TableName returns the database table name.
func (Order) TableName() string {
	return "pos_orders"
}

// OrderLine is the caller-facing shape of an ordered line.
type OrderLine struct {
	ProductID uuid.UUID
	Quantity  int64
	UnitPrice decimal.Decimal
}

// NewOrder creates a pending order with its lines. The reservation against
// the ledger is the workflow's job; the aggregate only checks shapes.
func NewOrder(tenantID, actorID, warehouseID uuid.UUID, reference, tableNumber string, lines []OrderLine) (*Order, error) {
	if warehouseID == uuid.Nil {
		return nil, shared.ErrInvalidInput.WithMessage("warehouse ID is required")
	}
	if len(lines) == 0 {
		return nil, shared.ErrInvalidInput.WithMessage("order needs at least one line")
	}

	o := &Order{
		TenantAggregateRoot: shared.NewTenantAggregateRootWithActor(tenantID, actorID),
		Reference:           reference,
		WarehouseID:         warehouseID,
		Status:              OrderStatusPending,
		TableNumber:         tableNumber,
		Items:               make([]OrderItem, 0, len(lines)),
	}
	for _, line := range lines {
		if line.Quantity <= 0 {
			return nil, shared.ErrInvalidQuantity
		}
		if line.UnitPrice.IsNegative() {
			return nil, shared.ErrInvalidInput.WithMessage("unit price cannot be negative")
		}
		o.Items = append(o.Items, OrderItem{
			BaseEntity:      shared.NewBaseEntity(),
			OrderID:         o.ID,
			ProductID:       line.ProductID,
			QuantityOrdered: line.Quantity,
			UnitPrice:       line.UnitPrice,
		})
	}
	return o, nil
}

// Total is the sales value of the whole order.
func (o *Order) Total() decimal.Decimal {
	total := decimal.Zero
	for i := range o.Items {
		total = total.Add(o.Items[i].LineTotal())
	}
	return total
}

func (o *Order) transition(target OrderStatus) error {
	if !o.Status.CanTransitionTo(target) {
		return shared.ErrInvalidStateTransition.WithMessage(
			"order cannot go from " + o.Status.String() + " to " + target.String())
	}
	o.Status = target
	o.UpdatedAt = time.Now()
	o.IncrementVersion()
	return nil
}

// item returns the line for the given item ID.
func (o *Order) item(itemID uuid.UUID) *OrderItem {
	for i := range o.Items {
		if o.Items[i].ID == itemID {
			return &o.Items[i]
		}
	}
	return nil
}

// ServeLine records a served quantity on one line. Serving beyond the
// ordered remainder is rejected.
func (o *Order) ServeLine(itemID uuid.UUID, quantity int64) (*OrderItem, error) {
	if o.Status != OrderStatusPending && o.Status != OrderStatusPreparing {
		return nil, shared.ErrInvalidStateTransition.WithMessage(
			"order in status " + o.Status.String() + " cannot be served")
	}
	if quantity <= 0 {
		return nil, shared.ErrInvalidQuantity
	}
	item := o.item(itemID)
	if item == nil {
		return nil, shared.ErrNotFound.WithMessage("order item not found on this order")
	}
	if quantity > item.Remaining() {
		return nil, shared.ErrInvalidInput.WithMessage("served quantity exceeds ordered quantity")
	}

	item.QuantityServed += quantity
	item.UpdatedAt = time.Now()
	o.UpdatedAt = time.Now()
	return item, nil
}

// IsFullyServed reports whether every line is complete.
func (o *Order) IsFullyServed() bool {
	for i := range o.Items {
		if !o.Items[i].IsFullyServed() {
			return false
		}
	}
	return true
}

// SettleAfterServing moves the order to served when complete, preparing
// otherwise.
func (o *Order) SettleAfterServing() error {
	if o.IsFullyServed() {
		if err := o.transition(OrderStatusServed); err != nil {
			return err
		}
		now := time.Now()
		o.ServedAt = &now
		return nil
	}
	if o.Status != OrderStatusPreparing {
		return o.transition(OrderStatusPreparing)
	}
	return nil
}

// MarkPaid records payment. Validation requires it.
func (o *Order) MarkPaid() {
	o.Paid = true
	o.UpdatedAt = time.Now()
}

// Validate closes a served and paid order and raises the sale event.
func (o *Order) Validate() error {
	if !o.Paid {
		return shared.ErrInvalidStateTransition.WithMessage("order must be paid before validation")
	}
	if err := o.transition(OrderStatusValidated); err != nil {
		return err
	}
	now := time.Now()
	o.ValidatedAt = &now
	o.AddDomainEvent(NewOrderValidatedEvent(o))
	return nil
}

// Cancel abandons a pending order. Releasing the reservations is the
// workflow's job.
func (o *Order) Cancel() error {
	if o.Status != OrderStatusPending {
		return shared.ErrInvalidStateTransition.WithMessage("only pending orders can be cancelled")
	}
	return o.transition(OrderStatusCancelled)
}
