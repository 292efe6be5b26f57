package notification

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/retailops/backend/internal/domain/procurement"
	"github.com/retailops/backend/internal/domain/replenishment"
	"github.com/retailops/backend/internal/domain/shared"
	"github.com/retailops/backend/internal/domain/stock"
)

// EventHandler turns operational events into notifications: low stock
// warnings, new requests for the approver, rejections for the requester,
// receipts and shortages for whoever follows the warehouse.
type EventHandler struct {
	notifier Notifier
	logger   *zap.Logger
}

// NewEventHandler creates an EventHandler.
func NewEventHandler(notifier Notifier, logger *zap.Logger) *EventHandler {
	return &EventHandler{notifier: notifier, logger: logger}
}

// EventTypes lists the events the handler notifies on.
func (h *EventHandler) EventTypes() []string {
	return []string{
		stock.EventTypeLowStockAlert,
		procurement.EventTypePurchaseStatusChanged,
		procurement.EventTypePurchaseReceived,
		replenishment.EventTypeStockRequestSubmitted,
		replenishment.EventTypeStockRequestRejected,
		replenishment.EventTypeTransferShortage,
	}
}

// Supplier-facing lifecycle transitions. Receipt bookings notify through
// PurchaseReceivedEvent instead, so partial/received are not listed here.
var purchaseStatusSubjects = map[procurement.PurchaseStatus]string{
	procurement.PurchaseStatusSubmitted: "Purchase order sent to supplier",
	procurement.PurchaseStatusConfirmed: "Purchase order confirmed by supplier",
	procurement.PurchaseStatusShipped:   "Purchase order shipped",
	procurement.PurchaseStatusDelivered: "Purchase order delivered",
	procurement.PurchaseStatusCancelled: "Purchase order cancelled",
}

// Handle builds and sends the notification for one event.
func (h *EventHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *stock.LowStockAlertEvent:
		return h.notifier.Notify(ctx, Notification{
			TenantID: e.TenantID(),
			Topic:    "stock.low",
			Subject:  "Low stock",
			Body: fmt.Sprintf("product %s in warehouse %s is down to %d (alert at %d)",
				e.ProductID, e.WarehouseID, e.Quantity, e.AlertQuantity),
		})
	case *procurement.PurchaseStatusChangedEvent:
		subject, ok := purchaseStatusSubjects[e.NewStatus]
		if !ok {
			return nil
		}
		return h.notifier.Notify(ctx, Notification{
			TenantID:  e.TenantID(),
			Topic:     "purchase." + string(e.NewStatus),
			Subject:   subject,
			Body:      fmt.Sprintf("purchase %s moved from %s to %s", e.Reference, e.OldStatus, e.NewStatus),
			Reference: e.Reference,
		})
	case *procurement.PurchaseReceivedEvent:
		subject := "Purchase partially received"
		if e.Complete {
			subject = "Purchase fully received"
		}
		return h.notifier.Notify(ctx, Notification{
			TenantID:  e.TenantID(),
			Topic:     "purchase.received",
			Subject:   subject,
			Body:      fmt.Sprintf("purchase %s received into warehouse %s", e.Reference, e.WarehouseID),
			Reference: e.Reference,
		})
	case *replenishment.StockRequestSubmittedEvent:
		return h.notifier.Notify(ctx, Notification{
			TenantID:  e.TenantID(),
			Topic:     "request.submitted",
			Subject:   "Stock request awaiting approval",
			Body:      fmt.Sprintf("request %s (%s priority) from warehouse %s", e.Reference, e.Priority, e.FromWarehouseID),
			Reference: e.Reference,
		})
	case *replenishment.StockRequestRejectedEvent:
		return h.notifier.Notify(ctx, Notification{
			TenantID:  e.TenantID(),
			Topic:     "request.rejected",
			Subject:   "Stock request rejected",
			Body:      fmt.Sprintf("request %s was rejected: %s", e.Reference, e.Reason),
			Reference: e.Reference,
		})
	case *replenishment.TransferShortageEvent:
		return h.notifier.Notify(ctx, Notification{
			TenantID:  e.TenantID(),
			Topic:     "transfer.shortage",
			Subject:   "Transfer arrived short",
			Body:      fmt.Sprintf("transfer %s arrived with %d short line(s)", e.Reference, len(e.Lines)),
			Reference: e.Reference,
		})
	default:
		return fmt.Errorf("unexpected event type %s", event.EventType())
	}
}

var _ shared.EventHandler = (*EventHandler)(nil)
