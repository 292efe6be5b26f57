package accounting_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/retailops/backend/internal/application/accounting"
	"github.com/retailops/backend/internal/domain/fulfillment"
	"github.com/retailops/backend/internal/domain/procurement"
	"github.com/retailops/backend/internal/domain/replenishment"
	"github.com/retailops/backend/internal/domain/shared"
	"github.com/retailops/backend/internal/domain/stock"
)

// recordingPoster collects every posting for assertions.
type recordingPoster struct {
	stockIns    []accounting.StockInPosting
	transfers   []accounting.TransferPosting
	sales       []accounting.SalePosting
	adjustments []accounting.AdjustmentPosting
}

func (p *recordingPoster) PostStockIn(_ context.Context, posting accounting.StockInPosting) error {
	p.stockIns = append(p.stockIns, posting)
	return nil
}

func (p *recordingPoster) PostTransfer(_ context.Context, posting accounting.TransferPosting) error {
	p.transfers = append(p.transfers, posting)
	return nil
}

func (p *recordingPoster) PostSale(_ context.Context, posting accounting.SalePosting) error {
	p.sales = append(p.sales, posting)
	return nil
}

func (p *recordingPoster) PostAdjustment(_ context.Context, posting accounting.AdjustmentPosting) error {
	p.adjustments = append(p.adjustments, posting)
	return nil
}

func TestPostingHandler_EventTypes(t *testing.T) {
	handler := accounting.NewPostingHandler(&recordingPoster{}, zap.NewNop())
	types := handler.EventTypes()

	assert.Contains(t, types, procurement.EventTypePurchaseReceived)
	assert.Contains(t, types, replenishment.EventTypeTransferExecuted)
	assert.Contains(t, types, fulfillment.EventTypeOrderValidated)
	assert.Contains(t, types, stock.EventTypeStockAdjusted)
}

func TestPostingHandler_Adjustment(t *testing.T) {
	poster := &recordingPoster{}
	handler := accounting.NewPostingHandler(poster, zap.NewNop())
	ctx := context.Background()

	s, err := stock.NewStock(uuid.New(), uuid.New(), uuid.New())
	require.NoError(t, err)
	require.NoError(t, s.Receive(20, decimal.NewFromInt(500)))
	s.ClearDomainEvents()
	require.NoError(t, s.Adjust(-3, decimal.Zero))

	var adjusted *stock.StockAdjustedEvent
	for _, ev := range s.GetDomainEvents() {
		if e, ok := ev.(*stock.StockAdjustedEvent); ok {
			adjusted = e
		}
	}
	require.NotNil(t, adjusted)

	require.NoError(t, handler.Handle(ctx, adjusted))

	require.Len(t, poster.adjustments, 1)
	posting := poster.adjustments[0]
	assert.Equal(t, s.TenantID, posting.TenantID)
	assert.Equal(t, s.ProductID, posting.ProductID)
	assert.Equal(t, s.WarehouseID, posting.WarehouseID)
	assert.Equal(t, int64(-3), posting.Delta)
	assert.Equal(t, int64(17), posting.NewQuantity)
}

func TestPostingHandler_UnexpectedEvent(t *testing.T) {
	handler := accounting.NewPostingHandler(&recordingPoster{}, zap.NewNop())

	ev := &stock.LowStockAlertEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(stock.EventTypeLowStockAlert, "Stock", uuid.New(), uuid.New()),
	}
	assert.Error(t, handler.Handle(context.Background(), ev))
}
