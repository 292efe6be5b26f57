package accounting

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// StockInPosting is a goods receipt for the ledger posting system.
type StockInPosting struct {
	TenantID    uuid.UUID
	PurchaseID  uuid.UUID
	Reference   string
	SupplierID  uuid.UUID
	WarehouseID uuid.UUID
	Total       decimal.Decimal
	Complete    bool
}

// TransferPosting is an inter-warehouse movement for the posting system.
type TransferPosting struct {
	TenantID        uuid.UUID
	TransferID      uuid.UUID
	Reference       string
	FromWarehouseID uuid.UUID
	ToWarehouseID   uuid.UUID
}

// SalePosting is a validated sale for the posting system.
type SalePosting struct {
	TenantID    uuid.UUID
	OrderID     uuid.UUID
	Reference   string
	WarehouseID uuid.UUID
	Total       decimal.Decimal
}

// AdjustmentPosting is a signed stock correction for the posting system.
type AdjustmentPosting struct {
	TenantID    uuid.UUID
	StockID     uuid.UUID
	ProductID   uuid.UUID
	WarehouseID uuid.UUID
	Delta       int64
	NewQuantity int64
}

// Poster is the consumed accounting contract. Implementations post to the
// external ledger; this module only guarantees the calls happen after the
// stock mutation committed and never block it.
type Poster interface {
	PostStockIn(ctx context.Context, posting StockInPosting) error
	PostTransfer(ctx context.Context, posting TransferPosting) error
	PostSale(ctx context.Context, posting SalePosting) error
	PostAdjustment(ctx context.Context, posting AdjustmentPosting) error
}

// LogPoster is the default Poster: it records the posting and does
// nothing else. Deployments wire a real implementation in its place.
type LogPoster struct {
	logger *zap.Logger
}

// NewLogPoster creates a LogPoster.
func NewLogPoster(logger *zap.Logger) *LogPoster {
	return &LogPoster{logger: logger}
}

func (p *LogPoster) PostStockIn(_ context.Context, posting StockInPosting) error {
	p.logger.Info("accounting stock-in posting",
		zap.String("reference", posting.Reference),
		zap.String("purchase_id", posting.PurchaseID.String()),
		zap.String("total", posting.Total.String()),
		zap.Bool("complete", posting.Complete))
	return nil
}

func (p *LogPoster) PostTransfer(_ context.Context, posting TransferPosting) error {
	p.logger.Info("accounting transfer posting",
		zap.String("reference", posting.Reference),
		zap.String("transfer_id", posting.TransferID.String()))
	return nil
}

func (p *LogPoster) PostSale(_ context.Context, posting SalePosting) error {
	p.logger.Info("accounting sale posting",
		zap.String("reference", posting.Reference),
		zap.String("order_id", posting.OrderID.String()),
		zap.String("total", posting.Total.String()))
	return nil
}

func (p *LogPoster) PostAdjustment(_ context.Context, posting AdjustmentPosting) error {
	p.logger.Info("accounting adjustment posting",
		zap.String("product_id", posting.ProductID.String()),
		zap.String("warehouse_id", posting.WarehouseID.String()),
		zap.Int64("delta", posting.Delta),
		zap.Int64("new_quantity", posting.NewQuantity))
	return nil
}

var _ Poster = (*LogPoster)(nil)
