package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/retailops/backend/internal/domain/shared"
	"github.com/retailops/backend/internal/domain/warehouse"
)

// GormWarehouseRepository implements warehouse.WarehouseRepository on GORM.
type GormWarehouseRepository struct {
	db *gorm.DB
}

// NewGormWarehouseRepository creates a repository bound to the given handle.
func NewGormWarehouseRepository(db *gorm.DB) *GormWarehouseRepository {
	return &GormWarehouseRepository{db: db}
}

// FindByID finds a warehouse by its ID.
func (r *GormWarehouseRepository) FindByID(ctx context.Context, id uuid.UUID) (*warehouse.Warehouse, error) {
	var w warehouse.Warehouse
	if err := r.db.WithContext(ctx).First(&w, "id = ?", id).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return &w, nil
}

// FindByIDForTenant finds a warehouse by ID within a tenant.
func (r *GormWarehouseRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*warehouse.Warehouse, error) {
	var w warehouse.Warehouse
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&w).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return &w, nil
}

// FindByCode finds a warehouse by its unique code within a tenant.
func (r *GormWarehouseRepository) FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (*warehouse.Warehouse, error) {
	var w warehouse.Warehouse
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND code = ?", tenantID, code).
		First(&w).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return &w, nil
}

// FindAllForTenant lists warehouses for a tenant.
func (r *GormWarehouseRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]warehouse.Warehouse, error) {
	var ws []warehouse.Warehouse
	query := applyFilter(
		r.db.WithContext(ctx).Model(&warehouse.Warehouse{}).
			Where("tenant_id = ?", tenantID),
		filter, warehouseSortFields,
	)
	if err := query.Find(&ws).Error; err != nil {
		return nil, err
	}
	return ws, nil
}

// FindByKind lists warehouses of one kind.
func (r *GormWarehouseRepository) FindByKind(ctx context.Context, tenantID uuid.UUID, kind warehouse.Kind, filter shared.Filter) ([]warehouse.Warehouse, error) {
	var ws []warehouse.Warehouse
	query := applyFilter(
		r.db.WithContext(ctx).Model(&warehouse.Warehouse{}).
			Where("tenant_id = ? AND kind = ?", tenantID, kind),
		filter, warehouseSortFields,
	)
	if err := query.Find(&ws).Error; err != nil {
		return nil, err
	}
	return ws, nil
}

// Save creates or updates a warehouse. A duplicate code within the
// tenant surfaces as shared.ErrAlreadyExists.
func (r *GormWarehouseRepository) Save(ctx context.Context, w *warehouse.Warehouse) error {
	if err := r.db.WithContext(ctx).Save(w).Error; err != nil {
		if isUniqueViolation(err) {
			return shared.ErrAlreadyExists.WithMessage("warehouse code " + w.Code + " is already in use")
		}
		return err
	}
	return nil
}

// CountForTenant counts warehouses for a tenant.
func (r *GormWarehouseRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&warehouse.Warehouse{}).
		Where("tenant_id = ?", tenantID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

var _ warehouse.WarehouseRepository = (*GormWarehouseRepository)(nil)
