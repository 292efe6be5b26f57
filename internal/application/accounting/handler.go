package accounting

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/retailops/backend/internal/domain/fulfillment"
	"github.com/retailops/backend/internal/domain/procurement"
	"github.com/retailops/backend/internal/domain/replenishment"
	"github.com/retailops/backend/internal/domain/shared"
	"github.com/retailops/backend/internal/domain/stock"
)

// PostingHandler feeds the Poster from the event bus. It runs on the
// outbox processor, strictly after the producing transaction committed;
// a posting failure is retried by the outbox, never surfaced to the
// workflow that raised the event.
type PostingHandler struct {
	poster Poster
	logger *zap.Logger
}

// NewPostingHandler creates a PostingHandler.
func NewPostingHandler(poster Poster, logger *zap.Logger) *PostingHandler {
	return &PostingHandler{poster: poster, logger: logger}
}

// EventTypes lists the events the handler posts from.
func (h *PostingHandler) EventTypes() []string {
	return []string{
		procurement.EventTypePurchaseReceived,
		replenishment.EventTypeTransferExecuted,
		fulfillment.EventTypeOrderValidated,
		stock.EventTypeStockAdjusted,
	}
}

// Handle dispatches one event to the matching posting call.
func (h *PostingHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *procurement.PurchaseReceivedEvent:
		return h.poster.PostStockIn(ctx, StockInPosting{
			TenantID:    e.TenantID(),
			PurchaseID:  e.PurchaseID,
			Reference:   e.Reference,
			SupplierID:  e.SupplierID,
			WarehouseID: e.WarehouseID,
			Total:       e.Total,
			Complete:    e.Complete,
		})
	case *replenishment.TransferExecutedEvent:
		return h.poster.PostTransfer(ctx, TransferPosting{
			TenantID:        e.TenantID(),
			TransferID:      e.TransferID,
			Reference:       e.Reference,
			FromWarehouseID: e.FromWarehouseID,
			ToWarehouseID:   e.ToWarehouseID,
		})
	case *fulfillment.OrderValidatedEvent:
		return h.poster.PostSale(ctx, SalePosting{
			TenantID:    e.TenantID(),
			OrderID:     e.OrderID,
			Reference:   e.Reference,
			WarehouseID: e.WarehouseID,
			Total:       e.Total,
		})
	case *stock.StockAdjustedEvent:
		return h.poster.PostAdjustment(ctx, AdjustmentPosting{
			TenantID:    e.TenantID(),
			StockID:     e.StockID,
			ProductID:   e.ProductID,
			WarehouseID: e.WarehouseID,
			Delta:       e.Delta,
			NewQuantity: e.NewQuantity,
		})
	default:
		return fmt.Errorf("unexpected event type %s", event.EventType())
	}
}

var _ shared.EventHandler = (*PostingHandler)(nil)
