package stock

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/retailops/backend/internal/domain/shared"
)

const AggregateTypeStock = "Stock"

const (
	EventTypeStockReceived = "StockReceived"
	EventTypeStockDeducted = "StockDeducted"
	EventTypeStockAdjusted = "StockAdjusted"
	EventTypeLowStockAlert = "LowStockAlert"
)

// StockReceivedEvent is raised when inbound stock is booked on a position.
type StockReceivedEvent struct {
	shared.BaseDomainEvent
	StockID     uuid.UUID       `json:"stock_id"`
	ProductID   uuid.UUID       `json:"product_id"`
	WarehouseID uuid.UUID       `json:"warehouse_id"`
	Quantity    int64           `json:"quantity"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
	CostAverage decimal.Decimal `json:"cost_average"`
}

// NewStockReceivedEvent creates a StockReceivedEvent from the mutated position.
func NewStockReceivedEvent(s *Stock, quantity int64, unitCost decimal.Decimal) *StockReceivedEvent {
	return &StockReceivedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockReceived, AggregateTypeStock, s.ID, s.TenantID),
		StockID:         s.ID,
		ProductID:       s.ProductID,
		WarehouseID:     s.WarehouseID,
		Quantity:        quantity,
		UnitCost:        unitCost,
		CostAverage:     s.CostAverage,
	}
}

func (e *StockReceivedEvent) EventType() string {
	return EventTypeStockReceived
}

// StockDeductedEvent is raised when physical stock is consumed by a sale.
type StockDeductedEvent struct {
	shared.BaseDomainEvent
	StockID     uuid.UUID       `json:"stock_id"`
	ProductID   uuid.UUID       `json:"product_id"`
	WarehouseID uuid.UUID       `json:"warehouse_id"`
	Quantity    int64           `json:"quantity"`
	CostAverage decimal.Decimal `json:"cost_average"`
}

// NewStockDeductedEvent creates a StockDeductedEvent from the mutated position.
func NewStockDeductedEvent(s *Stock, quantity int64) *StockDeductedEvent {
	return &StockDeductedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockDeducted, AggregateTypeStock, s.ID, s.TenantID),
		StockID:         s.ID,
		ProductID:       s.ProductID,
		WarehouseID:     s.WarehouseID,
		Quantity:        quantity,
		CostAverage:     s.CostAverage,
	}
}

func (e *StockDeductedEvent) EventType() string {
	return EventTypeStockDeducted
}

// StockAdjustedEvent is raised by signed corrections (counts, shortages).
type StockAdjustedEvent struct {
	shared.BaseDomainEvent
	StockID     uuid.UUID `json:"stock_id"`
	ProductID   uuid.UUID `json:"product_id"`
	WarehouseID uuid.UUID `json:"warehouse_id"`
	Delta       int64     `json:"delta"`
	NewQuantity int64     `json:"new_quantity"`
}

// NewStockAdjustedEvent creates a StockAdjustedEvent from the mutated position.
func NewStockAdjustedEvent(s *Stock, delta int64) *StockAdjustedEvent {
	return &StockAdjustedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockAdjusted, AggregateTypeStock, s.ID, s.TenantID),
		StockID:         s.ID,
		ProductID:       s.ProductID,
		WarehouseID:     s.WarehouseID,
		Delta:           delta,
		NewQuantity:     s.Quantity,
	}
}

func (e *StockAdjustedEvent) EventType() string {
	return EventTypeStockAdjusted
}

// LowStockAlertEvent is raised when a position falls to its alert threshold.
type LowStockAlertEvent struct {
	shared.BaseDomainEvent
	StockID       uuid.UUID `json:"stock_id"`
	ProductID     uuid.UUID `json:"product_id"`
	WarehouseID   uuid.UUID `json:"warehouse_id"`
	Quantity      int64     `json:"quantity"`
	AlertQuantity int64     `json:"alert_quantity"`
}

// NewLowStockAlertEvent creates a LowStockAlertEvent from the position.
func NewLowStockAlertEvent(s *Stock) *LowStockAlertEvent {
	return &LowStockAlertEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLowStockAlert, AggregateTypeStock, s.ID, s.TenantID),
		StockID:         s.ID,
		ProductID:       s.ProductID,
		WarehouseID:     s.WarehouseID,
		Quantity:        s.Quantity,
		AlertQuantity:   s.AlertQuantity,
	}
}

func (e *LowStockAlertEvent) EventType() string {
	return EventTypeLowStockAlert
}
