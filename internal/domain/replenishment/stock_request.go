package replenishment

import (
	"time"

	"github.com/google/uuid"

	"github.com/retailops/backend/internal/domain/shared"
)

// RequestStatus tracks a stock request. Requests are raised by a retail
// location against a wholesale location; approval spawns the transfer.
type RequestStatus string

const (
	RequestStatusDraft       RequestStatus = "draft"
	RequestStatusRequested   RequestStatus = "requested"
	RequestStatusApproved    RequestStatus = "approved"
	RequestStatusRejected    RequestStatus = "rejected"
	RequestStatusTransferred RequestStatus = "transferred"
)

// IsValid checks membership in the closed status set.
func (s RequestStatus) IsValid() bool {
	switch s {
	case RequestStatusDraft, RequestStatusRequested, RequestStatusApproved,
		RequestStatusRejected, RequestStatusTransferred:
		return true
	}
	return false
}

func (s RequestStatus) String() string {
	return string(s)
}

// CanTransitionTo checks whether the target status is reachable in one step.
func (s RequestStatus) CanTransitionTo(target RequestStatus) bool {
	switch s {
	case RequestStatusDraft:
		return target == RequestStatusRequested
	case RequestStatusRequested:
		return target == RequestStatusApproved || target == RequestStatusRejected
	case RequestStatusApproved:
		return target == RequestStatusTransferred
	case RequestStatusRejected, RequestStatusTransferred:
		return false
	}
	return false
}

// RequestPriority orders competing requests for the approver.
type RequestPriority string

const (
	PriorityLow    RequestPriority = "low"
	PriorityNormal RequestPriority = "normal"
	PriorityHigh   RequestPriority = "high"
	PriorityUrgent RequestPriority = "urgent"
)

// IsValid checks membership in the closed priority set.
func (p RequestPriority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// StockRequestItem is one requested line. QuantityApproved is capped at
// QuantityRequested and defaults to it on blanket approvals.
type StockRequestItem struct {
	shared.BaseEntity
	StockRequestID    uuid.UUID `gorm:"type:uuid;not null;index"`
	ProductID         uuid.UUID `gorm:"type:uuid;not null;index"`
	QuantityRequested int64     `gorm:"not null"`
	QuantityApproved  int64     `gorm:"not null;default:0"`
}

// TableName returns the database table name.
func (StockRequestItem) TableName() string {
	return "stock_request_items"
}

// StockRequest asks the wholesale warehouse to replenish a retail one.
// FromWarehouseID is the requesting (destination) location and
// ToWarehouseID the sourcing (wholesale) location, mirroring how the
// requesting side fills in the form.
type StockRequest struct {
	shared.TenantAggregateRoot
	Reference       string          `gorm:"size:64;not null;uniqueIndex:idx_stock_requests_tenant_ref,priority:2"`
	FromWarehouseID uuid.UUID       `gorm:"type:uuid;not null;index"`
	ToWarehouseID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Status          RequestStatus   `gorm:"size:16;not null;default:'draft';index"`
	Priority        RequestPriority `gorm:"size:16;not null;default:'normal'"`
	NeededBy        *time.Time
	RejectionReason string `gorm:"size:500"`
	RequestedAt     *time.Time
	DecidedAt       *time.Time
	DecidedBy       *uuid.UUID `gorm:"type:uuid"`

	Items []StockRequestItem `gorm:"foreignKey:StockRequestID;references:ID"`
}

// TableName returns the database table name.
func (StockRequest) TableName() string {
	return "stock_requests"
}

// RequestLine is the caller-facing shape of a requested line.
type RequestLine struct {
	ProductID uuid.UUID
	Quantity  int64
}

// NewStockRequest creates a draft request with its lines.
func NewStockRequest(tenantID, actorID, fromWarehouseID, toWarehouseID uuid.UUID, reference string, priority RequestPriority, neededBy *time.Time, lines []RequestLine) (*StockRequest, error) {
	if fromWarehouseID == uuid.Nil || toWarehouseID == uuid.Nil {
		return nil, shared.ErrInvalidInput.WithMessage("both warehouses are required")
	}
	if fromWarehouseID == toWarehouseID {
		return nil, shared.ErrInvalidInput.WithMessage("source and destination warehouses must differ")
	}
	if len(lines) == 0 {
		return nil, shared.ErrInvalidInput.WithMessage("request needs at least one line")
	}
	if priority == "" {
		priority = PriorityNormal
	}
	if !priority.IsValid() {
		return nil, shared.ErrInvalidInput.WithMessage("unknown priority: " + string(priority))
	}

	r := &StockRequest{
		TenantAggregateRoot: shared.NewTenantAggregateRootWithActor(tenantID, actorID),
		Reference:           reference,
		FromWarehouseID:     fromWarehouseID,
		ToWarehouseID:       toWarehouseID,
		Status:              RequestStatusDraft,
		Priority:            priority,
		NeededBy:            neededBy,
		Items:               make([]StockRequestItem, 0, len(lines)),
	}
	for _, line := range lines {
		if line.Quantity <= 0 {
			return nil, shared.ErrInvalidQuantity
		}
		r.Items = append(r.Items, StockRequestItem{
			BaseEntity:        shared.NewBaseEntity(),
			StockRequestID:    r.ID,
			ProductID:         line.ProductID,
			QuantityRequested: line.Quantity,
		})
	}
	return r, nil
}

func (r *StockRequest) transition(target RequestStatus) error {
	if !r.Status.CanTransitionTo(target) {
		return shared.ErrInvalidStateTransition.WithMessage(
			"stock request cannot go from " + r.Status.String() + " to " + target.String())
	}
	r.Status = target
	r.UpdatedAt = time.Now()
	r.IncrementVersion()
	return nil
}

// Submit hands the draft to the approver.
func (r *StockRequest) Submit() error {
	if err := r.transition(RequestStatusRequested); err != nil {
		return err
	}
	now := time.Now()
	r.RequestedAt = &now
	r.AddDomainEvent(NewStockRequestSubmittedEvent(r))
	return nil
}

// Approve fixes the approved quantities. approvals maps item ID to the
// granted quantity; items missing from the map are approved in full. A
// grant above the requested quantity is rejected.
func (r *StockRequest) Approve(actorID uuid.UUID, approvals map[uuid.UUID]int64) error {
	if err := r.transition(RequestStatusApproved); err != nil {
		return err
	}
	for i := range r.Items {
		item := &r.Items[i]
		granted, ok := approvals[item.ID]
		if !ok {
			item.QuantityApproved = item.QuantityRequested
			continue
		}
		if granted <= 0 {
			return shared.ErrInvalidQuantity
		}
		if granted > item.QuantityRequested {
			return shared.ErrInvalidInput.WithMessage("approved quantity exceeds requested quantity")
		}
		item.QuantityApproved = granted
	}
	now := time.Now()
	r.DecidedAt = &now
	r.DecidedBy = &actorID
	return nil
}

// Reject declines the request with a reason.
func (r *StockRequest) Reject(actorID uuid.UUID, reason string) error {
	if err := r.transition(RequestStatusRejected); err != nil {
		return err
	}
	now := time.Now()
	r.DecidedAt = &now
	r.DecidedBy = &actorID
	r.RejectionReason = reason
	r.AddDomainEvent(NewStockRequestRejectedEvent(r))
	return nil
}

// MarkTransferred links the request to the transfer spawned by approval.
func (r *StockRequest) MarkTransferred() error {
	return r.transition(RequestStatusTransferred)
}
