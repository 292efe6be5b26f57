package fulfillment

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/retailops/backend/internal/domain/shared"
)

const AggregateTypeOrder = "PosOrder"

const (
	EventTypeOrderValidated = "OrderValidated"
)

// SoldLine describes one sold line inside an OrderValidatedEvent.
type SoldLine struct {
	ProductID uuid.UUID       `json:"product_id"`
	Quantity  int64           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// OrderValidatedEvent is raised when a paid order is closed. The
// accounting handler posts the sale from it.
type OrderValidatedEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID       `json:"order_id"`
	Reference   string          `json:"reference"`
	WarehouseID uuid.UUID       `json:"warehouse_id"`
	Total       decimal.Decimal `json:"total"`
	Lines       []SoldLine      `json:"lines"`
}

// NewOrderValidatedEvent creates an OrderValidatedEvent from the closed order.
func NewOrderValidatedEvent(o *Order) *OrderValidatedEvent {
	lines := make([]SoldLine, 0, len(o.Items))
	for i := range o.Items {
		lines = append(lines, SoldLine{
			ProductID: o.Items[i].ProductID,
			Quantity:  o.Items[i].QuantityServed,
			UnitPrice: o.Items[i].UnitPrice,
		})
	}
	return &OrderValidatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderValidated, AggregateTypeOrder, o.ID, o.TenantID),
		OrderID:         o.ID,
		Reference:       o.Reference,
		WarehouseID:     o.WarehouseID,
		Total:           o.Total(),
		Lines:           lines,
	}
}

func (e *OrderValidatedEvent) EventType() string {
	return EventTypeOrderValidated
}
