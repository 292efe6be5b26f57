package event

import (
	"github.com/retailops/backend/internal/domain/fulfillment"
	"github.com/retailops/backend/internal/domain/procurement"
	"github.com/retailops/backend/internal/domain/replenishment"
	"github.com/retailops/backend/internal/domain/stock"
)

// RegisterDomainEvents registers every domain event type the outbox
// can carry. New event types must be added here or the processor will
// dead-letter them as unknown.
func RegisterDomainEvents(s *EventSerializer) {
	s.Register(stock.EventTypeStockReceived, &stock.StockReceivedEvent{})
	s.Register(stock.EventTypeStockDeducted, &stock.StockDeductedEvent{})
	s.Register(stock.EventTypeStockAdjusted, &stock.StockAdjustedEvent{})
	s.Register(stock.EventTypeLowStockAlert, &stock.LowStockAlertEvent{})

	s.Register(procurement.EventTypePurchaseStatusChanged, &procurement.PurchaseStatusChangedEvent{})
	s.Register(procurement.EventTypePurchaseReceived, &procurement.PurchaseReceivedEvent{})

	s.Register(replenishment.EventTypeStockRequestSubmitted, &replenishment.StockRequestSubmittedEvent{})
	s.Register(replenishment.EventTypeStockRequestRejected, &replenishment.StockRequestRejectedEvent{})
	s.Register(replenishment.EventTypeTransferExecuted, &replenishment.TransferExecutedEvent{})
	s.Register(replenishment.EventTypeTransferShortage, &replenishment.TransferShortageEvent{})

	s.Register(fulfillment.EventTypeOrderValidated, &fulfillment.OrderValidatedEvent{})
}
