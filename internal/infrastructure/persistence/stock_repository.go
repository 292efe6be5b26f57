package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/retailops/backend/internal/domain/shared"
	"github.com/retailops/backend/internal/domain/stock"
)

// GormStockRepository implements stock.StockRepository on GORM.
type GormStockRepository struct {
	db *gorm.DB
}

// NewGormStockRepository creates a repository bound to the given handle.
func NewGormStockRepository(db *gorm.DB) *GormStockRepository {
	return &GormStockRepository{db: db}
}

// FindByID finds a position by its ID.
func (r *GormStockRepository) FindByID(ctx context.Context, id uuid.UUID) (*stock.Stock, error) {
	var s stock.Stock
	if err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return &s, nil
}

// FindByIDForTenant finds a position by ID within a tenant.
func (r *GormStockRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*stock.Stock, error) {
	var s stock.Stock
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&s).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return &s, nil
}

// FindByProductAndWarehouse finds the position for a product in a warehouse.
func (r *GormStockRepository) FindByProductAndWarehouse(ctx context.Context, tenantID, productID, warehouseID uuid.UUID) (*stock.Stock, error) {
	var s stock.Stock
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND product_id = ? AND warehouse_id = ?", tenantID, productID, warehouseID).
		First(&s).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return &s, nil
}

// FindByProductAndWarehouseForUpdate finds the position under a row lock.
func (r *GormStockRepository) FindByProductAndWarehouseForUpdate(ctx context.Context, tenantID, productID, warehouseID uuid.UUID) (*stock.Stock, error) {
	var s stock.Stock
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("tenant_id = ? AND product_id = ? AND warehouse_id = ?", tenantID, productID, warehouseID).
		First(&s).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return &s, nil
}

// FindByWarehouse lists positions in a warehouse.
func (r *GormStockRepository) FindByWarehouse(ctx context.Context, tenantID, warehouseID uuid.UUID, filter shared.Filter) ([]stock.Stock, error) {
	var positions []stock.Stock
	query := applyFilter(
		r.db.WithContext(ctx).Model(&stock.Stock{}).
			Where("tenant_id = ? AND warehouse_id = ?", tenantID, warehouseID),
		filter, stockSortFields,
	)
	if err := query.Find(&positions).Error; err != nil {
		return nil, err
	}
	return positions, nil
}

// FindByProduct lists positions for a product across warehouses.
func (r *GormStockRepository) FindByProduct(ctx context.Context, tenantID, productID uuid.UUID, filter shared.Filter) ([]stock.Stock, error) {
	var positions []stock.Stock
	query := applyFilter(
		r.db.WithContext(ctx).Model(&stock.Stock{}).
			Where("tenant_id = ? AND product_id = ?", tenantID, productID),
		filter, stockSortFields,
	)
	if err := query.Find(&positions).Error; err != nil {
		return nil, err
	}
	return positions, nil
}

// FindLow lists positions at or under their alert threshold.
func (r *GormStockRepository) FindLow(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]stock.Stock, error) {
	var positions []stock.Stock
	query := applyFilter(
		r.db.WithContext(ctx).Model(&stock.Stock{}).
			Where("tenant_id = ? AND alert_quantity > 0 AND quantity <= alert_quantity", tenantID),
		filter, stockSortFields,
	)
	if err := query.Find(&positions).Error; err != nil {
		return nil, err
	}
	return positions, nil
}

// GetOrCreate returns the position, creating an empty one on first touch.
func (r *GormStockRepository) GetOrCreate(ctx context.Context, tenantID, productID, warehouseID uuid.UUID) (*stock.Stock, error) {
	s, err := r.FindByProductAndWarehouse(ctx, tenantID, productID, warehouseID)
	if err == nil {
		return s, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if err := r.createEmpty(ctx, tenantID, productID, warehouseID); err != nil {
		return nil, err
	}
	return r.FindByProductAndWarehouse(ctx, tenantID, productID, warehouseID)
}

// GetOrCreateForUpdate returns the position under a row lock, creating
// an empty one on first touch.
func (r *GormStockRepository) GetOrCreateForUpdate(ctx context.Context, tenantID, productID, warehouseID uuid.UUID) (*stock.Stock, error) {
	s, err := r.FindByProductAndWarehouseForUpdate(ctx, tenantID, productID, warehouseID)
	if err == nil {
		return s, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if err := r.createEmpty(ctx, tenantID, productID, warehouseID); err != nil {
		return nil, err
	}
	return r.FindByProductAndWarehouseForUpdate(ctx, tenantID, productID, warehouseID)
}

// createEmpty inserts a zero position. A concurrent insert of the same
// (tenant, product, warehouse) row is absorbed by ON CONFLICT DO NOTHING
// and the caller re-reads.
func (r *GormStockRepository) createEmpty(ctx context.Context, tenantID, productID, warehouseID uuid.UUID) error {
	s, err := stock.NewStock(tenantID, productID, warehouseID)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(s).Error
}

// Save creates or updates a position.
func (r *GormStockRepository) Save(ctx context.Context, s *stock.Stock) error {
	return r.db.WithContext(ctx).Save(s).Error
}

// SaveWithLock saves with an optimistic version check. The check uses
// "version < new" because a workflow may bump the version more than
// once before saving. The tenant id joins the filter like every other
// write.
func (r *GormStockRepository) SaveWithLock(ctx context.Context, s *stock.Stock) error {
	result := r.db.WithContext(ctx).
		Model(s).
		Where("id = ? AND tenant_id = ? AND version < ?", s.ID, s.TenantID, s.Version).
		Updates(map[string]interface{}{
			"quantity":        s.Quantity,
			"reserved":        s.Reserved,
			"available":       s.Available,
			"cost_average":    s.CostAverage,
			"last_unit_cost":  s.LastUnitCost,
			"alert_quantity":  s.AlertQuantity,
			"last_counted_at": s.LastCountedAt,
			"version":         s.Version,
			"updated_at":      s.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict.WithMessage("stock position was modified by another transaction")
	}
	return nil
}

// SumValueByWarehouse totals quantity * cost_average over a warehouse.
func (r *GormStockRepository) SumValueByWarehouse(ctx context.Context, tenantID, warehouseID uuid.UUID) (decimal.Decimal, error) {
	var row struct {
		Total decimal.Decimal
	}
	if err := r.db.WithContext(ctx).
		Model(&stock.Stock{}).
		Select("COALESCE(SUM(quantity * cost_average), 0) as total").
		Where("tenant_id = ? AND warehouse_id = ?", tenantID, warehouseID).
		Scan(&row).Error; err != nil {
		return decimal.Zero, err
	}
	return row.Total, nil
}

// CountForTenant counts positions for a tenant.
func (r *GormStockRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&stock.Stock{}).
		Where("tenant_id = ?", tenantID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func translateNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.ErrNotFound
	}
	return err
}

var _ stock.StockRepository = (*GormStockRepository)(nil)
