package procurement

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/retailops/backend/internal/domain/shared"
)

// PurchaseStatus tracks a purchase order through its lifecycle. The
// supplier-facing leg (submitted through delivered) is advanced by
// workflow calls; the receiving leg (partial, received, paid) is derived
// from the recorded receipts.
type PurchaseStatus string

const (
	PurchaseStatusDraft     PurchaseStatus = "draft"
	PurchaseStatusSubmitted PurchaseStatus = "submitted"
	PurchaseStatusConfirmed PurchaseStatus = "confirmed"
	PurchaseStatusShipped   PurchaseStatus = "shipped"
	PurchaseStatusDelivered PurchaseStatus = "delivered"
	PurchaseStatusPartial   PurchaseStatus = "partial"
	PurchaseStatusReceived  PurchaseStatus = "received"
	PurchaseStatusPaid      PurchaseStatus = "paid"
	PurchaseStatusCancelled PurchaseStatus = "cancelled"
)

// IsValid checks membership in the closed status set.
func (s PurchaseStatus) IsValid() bool {
	switch s {
	case PurchaseStatusDraft, PurchaseStatusSubmitted, PurchaseStatusConfirmed,
		PurchaseStatusShipped, PurchaseStatusDelivered, PurchaseStatusPartial,
		PurchaseStatusReceived, PurchaseStatusPaid, PurchaseStatusCancelled:
		return true
	}
	return false
}

func (s PurchaseStatus) String() string {
	return string(s)
}

// CanTransitionTo checks whether the target status is reachable in one step.
func (s PurchaseStatus) CanTransitionTo(target PurchaseStatus) bool {
	switch s {
	case PurchaseStatusDraft:
		return target == PurchaseStatusSubmitted || target == PurchaseStatusCancelled
	case PurchaseStatusSubmitted:
		return target == PurchaseStatusConfirmed || target == PurchaseStatusPartial ||
			target == PurchaseStatusReceived || target == PurchaseStatusPaid
	case PurchaseStatusConfirmed:
		return target == PurchaseStatusShipped || target == PurchaseStatusPartial ||
			target == PurchaseStatusReceived || target == PurchaseStatusPaid
	case PurchaseStatusShipped:
		return target == PurchaseStatusDelivered || target == PurchaseStatusPartial ||
			target == PurchaseStatusReceived || target == PurchaseStatusPaid
	case PurchaseStatusDelivered:
		return target == PurchaseStatusPartial || target == PurchaseStatusReceived ||
			target == PurchaseStatusPaid
	case PurchaseStatusPartial:
		return target == PurchaseStatusPartial || target == PurchaseStatusReceived ||
			target == PurchaseStatusPaid
	case PurchaseStatusReceived:
		return target == PurchaseStatusPaid
	case PurchaseStatusPaid, PurchaseStatusCancelled:
		return false
	}
	return false
}

// CanReceive reports whether goods may be booked in against the order.
func (s PurchaseStatus) CanReceive() bool {
	switch s {
	case PurchaseStatusSubmitted, PurchaseStatusConfirmed, PurchaseStatusShipped,
		PurchaseStatusDelivered, PurchaseStatusPartial:
		return true
	}
	return false
}

// PurchaseItem is one ordered line. QuantityReceived grows monotonically
// and never exceeds QuantityOrdered.
type PurchaseItem struct {
	shared.BaseEntity
	PurchaseID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	QuantityOrdered  int64           `gorm:"not null"`
	QuantityReceived int64           `gorm:"not null;default:0"`
	UnitCost         decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the database table name.
func (PurchaseItem) TableName() string {
	return "purchase_items"
}

// Remaining is the quantity still expected from the supplier.
func (i *PurchaseItem) Remaining() int64 {
	return i.QuantityOrdered - i.QuantityReceived
}

// IsFullyReceived reports whether the line is complete.
func (i *PurchaseItem) IsFullyReceived() bool {
	return i.QuantityReceived >= i.QuantityOrdered
}

// LineTotal is the ordered value of the line.
func (i *PurchaseItem) LineTotal() decimal.Decimal {
	return decimal.NewFromInt(i.QuantityOrdered).Mul(i.UnitCost)
}

// Purchase is a supplier order heading for a destination warehouse.
type Purchase struct {
	shared.TenantAggregateRoot
	Reference                  string         `gorm:"size:64;not null;uniqueIndex:idx_purchases_tenant_ref,priority:2"`
	SupplierID                 uuid.UUID      `gorm:"type:uuid;not null;index"`
	WarehouseID                uuid.UUID      `gorm:"type:uuid;not null;index"`
	Status                     PurchaseStatus `gorm:"size:16;not null;default:'draft';index"`
	PaymentValidatedBySupplier bool           `gorm:"not null;default:false"`
	Notes                      string         `gorm:"size:1000"`
	SubmittedAt                *time.Time
	ConfirmedAt                *time.Time
	ShippedAt                  *time.Time
	DeliveredAt                *time.Time
	ReceivedAt                 *time.Time
	PaidAt                     *time.Time

	Items []PurchaseItem `gorm:"foreignKey:PurchaseID;references:ID"`
}

// TableName returns the database table name.
func (Purchase) TableName() string {
	return "purchases"
}

// PurchaseLine is the caller-facing shape of an ordered line.
type PurchaseLine struct {
	ProductID uuid.UUID
	Quantity  int64
	UnitCost  decimal.Decimal
}

// NewPurchase creates a draft purchase order with its lines.
func NewPurchase(tenantID, actorID, supplierID, warehouseID uuid.UUID, reference string, lines []PurchaseLine) (*Purchase, error) {
	if supplierID == uuid.Nil {
		return nil, shared.ErrInvalidInput.WithMessage("supplier ID is required")
	}
	if warehouseID == uuid.Nil {
		return nil, shared.ErrInvalidInput.WithMessage("warehouse ID is required")
	}
	if len(lines) == 0 {
		return nil, shared.ErrInvalidInput.WithMessage("purchase needs at least one line")
	}

	p := &Purchase{
		TenantAggregateRoot: shared.NewTenantAggregateRootWithActor(tenantID, actorID),
		Reference:           reference,
		SupplierID:          supplierID,
		WarehouseID:         warehouseID,
		Status:              PurchaseStatusDraft,
		Items:               make([]PurchaseItem, 0, len(lines)),
	}
	for _, line := range lines {
		if line.Quantity <= 0 {
			return nil, shared.ErrInvalidQuantity
		}
		if line.UnitCost.IsNegative() {
			return nil, shared.ErrInvalidInput.WithMessage("unit cost cannot be negative")
		}
		p.Items = append(p.Items, PurchaseItem{
			BaseEntity:      shared.NewBaseEntity(),
			PurchaseID:      p.ID,
			ProductID:       line.ProductID,
			QuantityOrdered: line.Quantity,
			UnitCost:        line.UnitCost,
		})
	}
	return p, nil
}

// Total is the ordered value of the whole purchase.
func (p *Purchase) Total() decimal.Decimal {
	total := decimal.Zero
	for i := range p.Items {
		total = total.Add(p.Items[i].LineTotal())
	}
	return total
}

func (p *Purchase) transition(target PurchaseStatus, stamp **time.Time) error {
	if !p.Status.CanTransitionTo(target) {
		return shared.ErrInvalidStateTransition.WithMessage(
			"purchase cannot go from " + p.Status.String() + " to " + target.String())
	}
	old := p.Status
	p.Status = target
	if stamp != nil {
		now := time.Now()
		*stamp = &now
	}
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	p.AddDomainEvent(NewPurchaseStatusChangedEvent(p, old, target))
	return nil
}

// Submit sends the draft to the supplier.
func (p *Purchase) Submit() error {
	return p.transition(PurchaseStatusSubmitted, &p.SubmittedAt)
}

// Confirm records the supplier's acceptance.
func (p *Purchase) Confirm() error {
	return p.transition(PurchaseStatusConfirmed, &p.ConfirmedAt)
}

// Ship records the supplier's dispatch notice.
func (p *Purchase) Ship() error {
	return p.transition(PurchaseStatusShipped, &p.ShippedAt)
}

// Deliver records arrival at the dock, before receiving is booked.
func (p *Purchase) Deliver() error {
	return p.transition(PurchaseStatusDelivered, &p.DeliveredAt)
}

// Cancel abandons the order. Only drafts can be cancelled; anything the
// supplier has seen must run its course.
func (p *Purchase) Cancel() error {
	if p.Status != PurchaseStatusDraft {
		return shared.ErrInvalidStateTransition.WithMessage("only draft purchases can be cancelled")
	}
	return p.transition(PurchaseStatusCancelled, nil)
}

// ValidatePayment records the supplier-side payment confirmation. Once a
// fully received order is payment-validated it lands directly on paid.
func (p *Purchase) ValidatePayment() error {
	if p.Status == PurchaseStatusCancelled || p.Status == PurchaseStatusDraft {
		return shared.ErrInvalidStateTransition.WithMessage("purchase is not with the supplier")
	}
	p.PaymentValidatedBySupplier = true
	p.UpdatedAt = time.Now()
	if p.Status == PurchaseStatusReceived {
		return p.transition(PurchaseStatusPaid, &p.PaidAt)
	}
	return nil
}

// item returns the line for the given item ID.
func (p *Purchase) item(itemID uuid.UUID) *PurchaseItem {
	for i := range p.Items {
		if p.Items[i].ID == itemID {
			return &p.Items[i]
		}
	}
	return nil
}

// ReceiveLine books quantity against one ordered line. Receiving beyond
// the remaining ordered quantity is rejected outright.
func (p *Purchase) ReceiveLine(itemID uuid.UUID, quantity int64) (*PurchaseItem, error) {
	if !p.Status.CanReceive() {
		return nil, shared.ErrInvalidStateTransition.WithMessage(
			"purchase in status " + p.Status.String() + " cannot receive goods")
	}
	if quantity <= 0 {
		return nil, shared.ErrInvalidQuantity
	}
	item := p.item(itemID)
	if item == nil {
		return nil, shared.ErrNotFound.WithMessage("purchase item not found on this order")
	}
	if quantity > item.Remaining() {
		return nil, shared.ErrOverReceipt
	}

	item.QuantityReceived += quantity
	item.UpdatedAt = time.Now()
	p.UpdatedAt = time.Now()
	return item, nil
}

// IsFullyReceived reports whether every line is complete.
func (p *Purchase) IsFullyReceived() bool {
	for i := range p.Items {
		if !p.Items[i].IsFullyReceived() {
			return false
		}
	}
	return true
}

// SettleAfterReceipt recomputes the lifecycle status once a receipt has
// been booked: fully received orders land on received, or straight on
// paid when the supplier payment is already validated; anything else is
// partial.
func (p *Purchase) SettleAfterReceipt() error {
	if p.IsFullyReceived() {
		now := time.Now()
		p.ReceivedAt = &now
		if p.PaymentValidatedBySupplier {
			if err := p.transition(PurchaseStatusPaid, &p.PaidAt); err != nil {
				return err
			}
			p.AddDomainEvent(NewPurchaseReceivedEvent(p, true))
			return nil
		}
		if err := p.transition(PurchaseStatusReceived, nil); err != nil {
			return err
		}
		p.AddDomainEvent(NewPurchaseReceivedEvent(p, true))
		return nil
	}
	if p.Status != PurchaseStatusPartial {
		if err := p.transition(PurchaseStatusPartial, nil); err != nil {
			return err
		}
	}
	p.AddDomainEvent(NewPurchaseReceivedEvent(p, false))
	return nil
}
