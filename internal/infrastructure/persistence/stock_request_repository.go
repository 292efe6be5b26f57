package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/retailops/backend/internal/domain/replenishment"
	"github.com/retailops/backend/internal/domain/shared"
)

// GormStockRequestRepository implements replenishment.StockRequestRepository on GORM.
type GormStockRequestRepository struct {
	db *gorm.DB
}

// NewGormStockRequestRepository creates a repository bound to the given handle.
func NewGormStockRequestRepository(db *gorm.DB) *GormStockRequestRepository {
	return &GormStockRequestRepository{db: db}
}

// FindByID finds a request with items preloaded.
func (r *GormStockRequestRepository) FindByID(ctx context.Context, id uuid.UUID) (*replenishment.StockRequest, error) {
	var req replenishment.StockRequest
	if err := r.db.WithContext(ctx).Preload("Items").First(&req, "id = ?", id).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return &req, nil
}

// FindByIDForTenant finds a request by ID within a tenant.
func (r *GormStockRequestRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*replenishment.StockRequest, error) {
	var req replenishment.StockRequest
	if err := r.db.WithContext(ctx).Preload("Items").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&req).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return &req, nil
}

// FindByReference finds a request by its document reference.
func (r *GormStockRequestRepository) FindByReference(ctx context.Context, tenantID uuid.UUID, reference string) (*replenishment.StockRequest, error) {
	var req replenishment.StockRequest
	if err := r.db.WithContext(ctx).Preload("Items").
		Where("tenant_id = ? AND reference = ?", tenantID, reference).
		First(&req).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return &req, nil
}

// FindByStatus lists requests in a given status.
func (r *GormStockRequestRepository) FindByStatus(ctx context.Context, tenantID uuid.UUID, status replenishment.RequestStatus, filter shared.Filter) ([]replenishment.StockRequest, error) {
	var reqs []replenishment.StockRequest
	query := applyFilter(
		r.db.WithContext(ctx).Model(&replenishment.StockRequest{}).Preload("Items").
			Where("tenant_id = ? AND status = ?", tenantID, status),
		filter, documentSortFields,
	)
	if err := query.Find(&reqs).Error; err != nil {
		return nil, err
	}
	return reqs, nil
}

// FindAllForTenant lists requests for a tenant.
func (r *GormStockRequestRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]replenishment.StockRequest, error) {
	var reqs []replenishment.StockRequest
	query := applyFilter(
		r.db.WithContext(ctx).Model(&replenishment.StockRequest{}).Preload("Items").
			Where("tenant_id = ?", tenantID),
		filter, documentSortFields,
	)
	if err := query.Find(&reqs).Error; err != nil {
		return nil, err
	}
	return reqs, nil
}

// Save creates or updates a request and its items.
func (r *GormStockRequestRepository) Save(ctx context.Context, req *replenishment.StockRequest) error {
	err := r.db.WithContext(ctx).
		Session(&gorm.Session{FullSaveAssociations: true}).
		Save(req).Error
	if err != nil && isUniqueViolation(err) {
		return shared.ErrAlreadyExists.WithMessage("request reference " + req.Reference + " is already in use")
	}
	return err
}

// SaveWithLock saves header and items with an optimistic version check.
func (r *GormStockRequestRepository) SaveWithLock(ctx context.Context, req *replenishment.StockRequest) error {
	result := r.db.WithContext(ctx).
		Model(req).
		Where("id = ? AND tenant_id = ? AND version < ?", req.ID, req.TenantID, req.Version).
		Updates(map[string]interface{}{
			"status":           req.Status,
			"priority":         req.Priority,
			"needed_by":        req.NeededBy,
			"rejection_reason": req.RejectionReason,
			"requested_at":     req.RequestedAt,
			"decided_at":       req.DecidedAt,
			"decided_by":       req.DecidedBy,
			"version":          req.Version,
			"updated_at":       req.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict.WithMessage("stock request was modified by another transaction")
	}

	for i := range req.Items {
		if err := r.db.WithContext(ctx).Save(&req.Items[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

// NextReference allocates the next REQ-YYYYMMDD-NNNN reference.
func (r *GormStockRequestRepository) NextReference(ctx context.Context, tenantID uuid.UUID) (string, error) {
	return nextReference(ctx, r.db, replenishment.StockRequest{}.TableName(), "REQ", tenantID)
}

// CountForTenant counts requests for a tenant.
func (r *GormStockRequestRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&replenishment.StockRequest{}).
		Where("tenant_id = ?", tenantID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

var _ replenishment.StockRequestRepository = (*GormStockRequestRepository)(nil)
