package replenishment

import (
	"github.com/google/uuid"

	"github.com/retailops/backend/internal/domain/shared"
)

const (
	AggregateTypeStockRequest = "StockRequest"
	AggregateTypeTransfer     = "Transfer"
)

const (
	EventTypeStockRequestSubmitted = "StockRequestSubmitted"
	EventTypeStockRequestRejected  = "StockRequestRejected"
	EventTypeTransferExecuted      = "TransferExecuted"
	EventTypeTransferShortage      = "TransferShortage"
)

// StockRequestSubmittedEvent notifies the approver of a new request.
type StockRequestSubmittedEvent struct {
	shared.BaseDomainEvent
	StockRequestID  uuid.UUID       `json:"stock_request_id"`
	Reference       string          `json:"reference"`
	FromWarehouseID uuid.UUID       `json:"from_warehouse_id"`
	ToWarehouseID   uuid.UUID       `json:"to_warehouse_id"`
	Priority        RequestPriority `json:"priority"`
}

// NewStockRequestSubmittedEvent creates a StockRequestSubmittedEvent.
func NewStockRequestSubmittedEvent(r *StockRequest) *StockRequestSubmittedEvent {
	return &StockRequestSubmittedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockRequestSubmitted, AggregateTypeStockRequest, r.ID, r.TenantID),
		StockRequestID:  r.ID,
		Reference:       r.Reference,
		FromWarehouseID: r.FromWarehouseID,
		ToWarehouseID:   r.ToWarehouseID,
		Priority:        r.Priority,
	}
}

func (e *StockRequestSubmittedEvent) EventType() string {
	return EventTypeStockRequestSubmitted
}

// StockRequestRejectedEvent informs the requesting location of a refusal.
type StockRequestRejectedEvent struct {
	shared.BaseDomainEvent
	StockRequestID uuid.UUID `json:"stock_request_id"`
	Reference      string    `json:"reference"`
	Reason         string    `json:"reason"`
}

// NewStockRequestRejectedEvent creates a StockRequestRejectedEvent.
func NewStockRequestRejectedEvent(r *StockRequest) *StockRequestRejectedEvent {
	return &StockRequestRejectedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockRequestRejected, AggregateTypeStockRequest, r.ID, r.TenantID),
		StockRequestID:  r.ID,
		Reference:       r.Reference,
		Reason:          r.RejectionReason,
	}
}

func (e *StockRequestRejectedEvent) EventType() string {
	return EventTypeStockRequestRejected
}

// TransferredLine describes one executed line inside a TransferExecutedEvent.
type TransferredLine struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int64     `json:"quantity"`
}

// TransferExecutedEvent is raised once stock has physically moved. The
// accounting handler posts the inter-warehouse movement from it.
type TransferExecutedEvent struct {
	shared.BaseDomainEvent
	TransferID      uuid.UUID         `json:"transfer_id"`
	Reference       string            `json:"reference"`
	FromWarehouseID uuid.UUID         `json:"from_warehouse_id"`
	ToWarehouseID   uuid.UUID         `json:"to_warehouse_id"`
	Lines           []TransferredLine `json:"lines"`
}

// NewTransferExecutedEvent creates a TransferExecutedEvent.
func NewTransferExecutedEvent(t *Transfer) *TransferExecutedEvent {
	lines := make([]TransferredLine, 0, len(t.Items))
	for i := range t.Items {
		lines = append(lines, TransferredLine{
			ProductID: t.Items[i].ProductID,
			Quantity:  t.Items[i].Quantity,
		})
	}
	return &TransferExecutedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTransferExecuted, AggregateTypeTransfer, t.ID, t.TenantID),
		TransferID:      t.ID,
		Reference:       t.Reference,
		FromWarehouseID: t.FromWarehouseID,
		ToWarehouseID:   t.ToWarehouseID,
		Lines:           lines,
	}
}

func (e *TransferExecutedEvent) EventType() string {
	return EventTypeTransferExecuted
}

// ShortLine describes one incomplete line inside a TransferShortageEvent.
type ShortLine struct {
	ProductID uuid.UUID `json:"product_id"`
	Shipped   int64     `json:"shipped"`
	Counted   int64     `json:"counted"`
}

// TransferShortageEvent flags goods lost between warehouses so someone
// can investigate.
type TransferShortageEvent struct {
	shared.BaseDomainEvent
	TransferID uuid.UUID   `json:"transfer_id"`
	Reference  string      `json:"reference"`
	Lines      []ShortLine `json:"lines"`
}

// NewTransferShortageEvent creates a TransferShortageEvent from the
// incomplete lines.
func NewTransferShortageEvent(t *Transfer) *TransferShortageEvent {
	lines := make([]ShortLine, 0)
	for i := range t.Items {
		if t.Items[i].Shortage() > 0 {
			lines = append(lines, ShortLine{
				ProductID: t.Items[i].ProductID,
				Shipped:   t.Items[i].Quantity,
				Counted:   t.Items[i].QuantityReceived,
			})
		}
	}
	return &TransferShortageEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTransferShortage, AggregateTypeTransfer, t.ID, t.TenantID),
		TransferID:      t.ID,
		Reference:       t.Reference,
		Lines:           lines,
	}
}

func (e *TransferShortageEvent) EventType() string {
	return EventTypeTransferShortage
}
