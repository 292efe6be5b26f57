package replenishment

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/retailops/backend/internal/domain/shared"
)

// TransferStatus tracks an inter-warehouse transfer. Stock moves exactly
// once, at execution; receive and validate are confirmations on top.
type TransferStatus string

const (
	TransferStatusPending   TransferStatus = "pending"
	TransferStatusApproved  TransferStatus = "approved"
	TransferStatusExecuted  TransferStatus = "executed"
	TransferStatusReceived  TransferStatus = "received"
	TransferStatusValidated TransferStatus = "validated"
	TransferStatusCancelled TransferStatus = "cancelled"
)

// IsValid checks membership in the closed status set.
func (s TransferStatus) IsValid() bool {
	switch s {
	case TransferStatusPending, TransferStatusApproved, TransferStatusExecuted,
		TransferStatusReceived, TransferStatusValidated, TransferStatusCancelled:
		return true
	}
	return false
}

func (s TransferStatus) String() string {
	return string(s)
}

// CanTransitionTo checks whether the target status is reachable in one step.
func (s TransferStatus) CanTransitionTo(target TransferStatus) bool {
	switch s {
	case TransferStatusPending:
		return target == TransferStatusApproved || target == TransferStatusCancelled
	case TransferStatusApproved:
		return target == TransferStatusExecuted || target == TransferStatusCancelled
	case TransferStatusExecuted:
		return target == TransferStatusReceived
	case TransferStatusReceived:
		return target == TransferStatusValidated
	case TransferStatusValidated, TransferStatusCancelled:
		return false
	}
	return false
}

// TransferItem is one transferred line. UnitCost snapshots the source
// position's cost average at execution time; QuantityReceived records what
// the destination actually counted.
type TransferItem struct {
	shared.BaseEntity
	TransferID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	Quantity         int64           `gorm:"not null"`
	QuantityReceived int64           `gorm:"not null;default:0"`
	UnitCost         decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the database table name.
func (TransferItem) TableName() string {
	return "transfer_items"
}

// Shortage is the quantity that left the source but never arrived.
func (i *TransferItem) Shortage() int64 {
	return i.Quantity - i.QuantityReceived
}

// Transfer moves stock from a source warehouse to a destination one.
type Transfer struct {
	shared.TenantAggregateRoot
	Reference         string         `gorm:"size:64;not null;uniqueIndex:idx_transfers_tenant_ref,priority:2"`
	FromWarehouseID   uuid.UUID      `gorm:"type:uuid;not null;index"`
	ToWarehouseID     uuid.UUID      `gorm:"type:uuid;not null;index"`
	Status            TransferStatus `gorm:"size:16;not null;default:'pending';index"`
	StockRequestID    *uuid.UUID     `gorm:"type:uuid;index"`
	ApprovedBy        *uuid.UUID     `gorm:"type:uuid"`
	ApprovedAt        *time.Time
	ExecutedBy        *uuid.UUID `gorm:"type:uuid"`
	ExecutedAt        *time.Time
	ReceivedBy        *uuid.UUID `gorm:"type:uuid"`
	ReceivedAt        *time.Time
	ValidatedBy       *uuid.UUID `gorm:"type:uuid"`
	ValidatedAt       *time.Time
	CancellationNote  string     `gorm:"size:500"`

	Items []TransferItem `gorm:"foreignKey:TransferID;references:ID"`
}

// TableName returns the database table name.
func (Transfer) TableName() string {
	return "transfers"
}

// TransferLine is the caller-facing shape of a transferred line.
type TransferLine struct {
	ProductID uuid.UUID
	Quantity  int64
}

// NewTransfer creates a pending transfer with its lines.
func NewTransfer(tenantID, actorID, fromWarehouseID, toWarehouseID uuid.UUID, reference string, lines []TransferLine) (*Transfer, error) {
	if fromWarehouseID == uuid.Nil || toWarehouseID == uuid.Nil {
		return nil, shared.ErrInvalidInput.WithMessage("both warehouses are required")
	}
	if fromWarehouseID == toWarehouseID {
		return nil, shared.ErrInvalidInput.WithMessage("source and destination warehouses must differ")
	}
	if len(lines) == 0 {
		return nil, shared.ErrInvalidInput.WithMessage("transfer needs at least one line")
	}

	t := &Transfer{
		TenantAggregateRoot: shared.NewTenantAggregateRootWithActor(tenantID, actorID),
		Reference:           reference,
		FromWarehouseID:     fromWarehouseID,
		ToWarehouseID:       toWarehouseID,
		Status:              TransferStatusPending,
		Items:               make([]TransferItem, 0, len(lines)),
	}
	for _, line := range lines {
		if line.Quantity <= 0 {
			return nil, shared.ErrInvalidQuantity
		}
		t.Items = append(t.Items, TransferItem{
			BaseEntity: shared.NewBaseEntity(),
			TransferID: t.ID,
			ProductID:  line.ProductID,
			Quantity:   line.Quantity,
		})
	}
	return t, nil
}

// LinkRequest ties the transfer to the stock request that spawned it.
func (t *Transfer) LinkRequest(requestID uuid.UUID) {
	t.StockRequestID = &requestID
}

func (t *Transfer) transition(target TransferStatus) error {
	if !t.Status.CanTransitionTo(target) {
		return shared.ErrInvalidStateTransition.WithMessage(
			"transfer cannot go from " + t.Status.String() + " to " + target.String())
	}
	t.Status = target
	t.UpdatedAt = time.Now()
	t.IncrementVersion()
	return nil
}

// Approve clears the transfer for execution.
func (t *Transfer) Approve(actorID uuid.UUID) error {
	if err := t.transition(TransferStatusApproved); err != nil {
		return err
	}
	now := time.Now()
	t.ApprovedBy = &actorID
	t.ApprovedAt = &now
	return nil
}

// MarkExecuted stamps the transfer once the ledger mutations committed.
// SetItemCost must have been called for every line beforehand.
func (t *Transfer) MarkExecuted(actorID uuid.UUID) error {
	if err := t.transition(TransferStatusExecuted); err != nil {
		return err
	}
	now := time.Now()
	t.ExecutedBy = &actorID
	t.ExecutedAt = &now
	t.AddDomainEvent(NewTransferExecutedEvent(t))
	return nil
}

// SetItemCost snapshots the source cost average onto one line.
func (t *Transfer) SetItemCost(itemID uuid.UUID, cost decimal.Decimal) error {
	for i := range t.Items {
		if t.Items[i].ID == itemID {
			t.Items[i].UnitCost = cost
			t.Items[i].UpdatedAt = time.Now()
			return nil
		}
	}
	return shared.ErrNotFound.WithMessage("transfer item not found on this transfer")
}

// Receive confirms arrival at the destination. received maps item ID to
// the counted quantity; items missing from the map are taken as complete.
// Counting more than was shipped is rejected.
func (t *Transfer) Receive(actorID uuid.UUID, received map[uuid.UUID]int64) error {
	if err := t.transition(TransferStatusReceived); err != nil {
		return err
	}
	for i := range t.Items {
		item := &t.Items[i]
		counted, ok := received[item.ID]
		if !ok {
			item.QuantityReceived = item.Quantity
			continue
		}
		if counted < 0 || counted > item.Quantity {
			return shared.ErrInvalidQuantity
		}
		item.QuantityReceived = counted
		item.UpdatedAt = time.Now()
	}
	now := time.Now()
	t.ReceivedBy = &actorID
	t.ReceivedAt = &now
	return nil
}

// HasShortage reports whether any line arrived incomplete.
func (t *Transfer) HasShortage() bool {
	for i := range t.Items {
		if t.Items[i].Shortage() > 0 {
			return true
		}
	}
	return false
}

// Validate closes the transfer. No stock moves here.
func (t *Transfer) Validate(actorID uuid.UUID) error {
	if err := t.transition(TransferStatusValidated); err != nil {
		return err
	}
	now := time.Now()
	t.ValidatedBy = &actorID
	t.ValidatedAt = &now
	return nil
}

// Cancel abandons a transfer that has not yet moved stock.
func (t *Transfer) Cancel(note string) error {
	if err := t.transition(TransferStatusCancelled); err != nil {
		return err
	}
	t.CancellationNote = note
	return nil
}
