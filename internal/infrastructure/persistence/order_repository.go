package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/retailops/backend/internal/domain/fulfillment"
	"github.com/retailops/backend/internal/domain/shared"
)

// GormOrderRepository implements fulfillment.OrderRepository on GORM.
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a repository bound to the given handle.
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// FindByID finds an order with items preloaded.
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*fulfillment.Order, error) {
	var o fulfillment.Order
	if err := r.db.WithContext(ctx).Preload("Items").First(&o, "id = ?", id).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return &o, nil
}

// FindByIDForTenant finds an order by ID within a tenant.
func (r *GormOrderRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*fulfillment.Order, error) {
	var o fulfillment.Order
	if err := r.db.WithContext(ctx).Preload("Items").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&o).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return &o, nil
}

// FindByReference finds an order by its document reference.
func (r *GormOrderRepository) FindByReference(ctx context.Context, tenantID uuid.UUID, reference string) (*fulfillment.Order, error) {
	var o fulfillment.Order
	if err := r.db.WithContext(ctx).Preload("Items").
		Where("tenant_id = ? AND reference = ?", tenantID, reference).
		First(&o).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return &o, nil
}

// FindByStatus lists orders in a given status.
func (r *GormOrderRepository) FindByStatus(ctx context.Context, tenantID uuid.UUID, status fulfillment.OrderStatus, filter shared.Filter) ([]fulfillment.Order, error) {
	var os []fulfillment.Order
	query := applyFilter(
		r.db.WithContext(ctx).Model(&fulfillment.Order{}).Preload("Items").
			Where("tenant_id = ? AND status = ?", tenantID, status),
		filter, documentSortFields,
	)
	if err := query.Find(&os).Error; err != nil {
		return nil, err
	}
	return os, nil
}

// FindByWarehouse lists orders placed against a warehouse.
func (r *GormOrderRepository) FindByWarehouse(ctx context.Context, tenantID, warehouseID uuid.UUID, filter shared.Filter) ([]fulfillment.Order, error) {
	var os []fulfillment.Order
	query := applyFilter(
		r.db.WithContext(ctx).Model(&fulfillment.Order{}).Preload("Items").
			Where("tenant_id = ? AND warehouse_id = ?", tenantID, warehouseID),
		filter, documentSortFields,
	)
	if err := query.Find(&os).Error; err != nil {
		return nil, err
	}
	return os, nil
}

// FindAllForTenant lists orders for a tenant.
func (r *GormOrderRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]fulfillment.Order, error) {
	var os []fulfillment.Order
	query := applyFilter(
		r.db.WithContext(ctx).Model(&fulfillment.Order{}).Preload("Items").
			Where("tenant_id = ?", tenantID),
		filter, documentSortFields,
	)
	if err := query.Find(&os).Error; err != nil {
		return nil, err
	}
	return os, nil
}

// Save creates or updates an order and its items.
func (r *GormOrderRepository) Save(ctx context.Context, o *fulfillment.Order) error {
	err := r.db.WithContext(ctx).
		Session(&gorm.Session{FullSaveAssociations: true}).
		Save(o).Error
	if err != nil && isUniqueViolation(err) {
		return shared.ErrAlreadyExists.WithMessage("order reference " + o.Reference + " is already in use")
	}
	return err
}

// SaveWithLock saves header and items with an optimistic version check.
func (r *GormOrderRepository) SaveWithLock(ctx context.Context, o *fulfillment.Order) error {
	result := r.db.WithContext(ctx).
		Model(o).
		Where("id = ? AND tenant_id = ? AND version < ?", o.ID, o.TenantID, o.Version).
		Updates(map[string]interface{}{
			"status":       o.Status,
			"paid":         o.Paid,
			"table_number": o.TableNumber,
			"served_at":    o.ServedAt,
			"validated_at": o.ValidatedAt,
			"version":      o.Version,
			"updated_at":   o.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict.WithMessage("order was modified by another transaction")
	}

	for i := range o.Items {
		if err := r.db.WithContext(ctx).Save(&o.Items[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

// NextReference allocates the next ORD-YYYYMMDD-NNNN reference.
func (r *GormOrderRepository) NextReference(ctx context.Context, tenantID uuid.UUID) (string, error) {
	return nextReference(ctx, r.db, fulfillment.Order{}.TableName(), "ORD", tenantID)
}

// CountForTenant counts orders for a tenant.
func (r *GormOrderRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&fulfillment.Order{}).
		Where("tenant_id = ?", tenantID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

var _ fulfillment.OrderRepository = (*GormOrderRepository)(nil)
