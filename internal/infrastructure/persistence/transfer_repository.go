package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/retailops/backend/internal/domain/replenishment"
	"github.com/retailops/backend/internal/domain/shared"
)

// GormTransferRepository implements replenishment.TransferRepository on GORM.
type GormTransferRepository struct {
	db *gorm.DB
}

// NewGormTransferRepository creates a repository bound to the given handle.
func NewGormTransferRepository(db *gorm.DB) *GormTransferRepository {
	return &GormTransferRepository{db: db}
}

// FindByID finds a transfer with items preloaded.
func (r *GormTransferRepository) FindByID(ctx context.Context, id uuid.UUID) (*replenishment.Transfer, error) {
	var t replenishment.Transfer
	if err := r.db.WithContext(ctx).Preload("Items").First(&t, "id = ?", id).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return &t, nil
}

// FindByIDForTenant finds a transfer by ID within a tenant.
func (r *GormTransferRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*replenishment.Transfer, error) {
	var t replenishment.Transfer
	if err := r.db.WithContext(ctx).Preload("Items").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&t).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return &t, nil
}

// FindByReference finds a transfer by its document reference.
func (r *GormTransferRepository) FindByReference(ctx context.Context, tenantID uuid.UUID, reference string) (*replenishment.Transfer, error) {
	var t replenishment.Transfer
	if err := r.db.WithContext(ctx).Preload("Items").
		Where("tenant_id = ? AND reference = ?", tenantID, reference).
		First(&t).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return &t, nil
}

// FindByStatus lists transfers in a given status.
func (r *GormTransferRepository) FindByStatus(ctx context.Context, tenantID uuid.UUID, status replenishment.TransferStatus, filter shared.Filter) ([]replenishment.Transfer, error) {
	var ts []replenishment.Transfer
	query := applyFilter(
		r.db.WithContext(ctx).Model(&replenishment.Transfer{}).Preload("Items").
			Where("tenant_id = ? AND status = ?", tenantID, status),
		filter, documentSortFields,
	)
	if err := query.Find(&ts).Error; err != nil {
		return nil, err
	}
	return ts, nil
}

// FindByStockRequest lists transfers created from a stock request.
func (r *GormTransferRepository) FindByStockRequest(ctx context.Context, tenantID, requestID uuid.UUID) ([]replenishment.Transfer, error) {
	var ts []replenishment.Transfer
	if err := r.db.WithContext(ctx).Preload("Items").
		Where("tenant_id = ? AND stock_request_id = ?", tenantID, requestID).
		Order("created_at ASC").
		Find(&ts).Error; err != nil {
		return nil, err
	}
	return ts, nil
}

// FindAllForTenant lists transfers for a tenant.
func (r *GormTransferRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]replenishment.Transfer, error) {
	var ts []replenishment.Transfer
	query := applyFilter(
		r.db.WithContext(ctx).Model(&replenishment.Transfer{}).Preload("Items").
			Where("tenant_id = ?", tenantID),
		filter, documentSortFields,
	)
	if err := query.Find(&ts).Error; err != nil {
		return nil, err
	}
	return ts, nil
}

// Save creates or updates a transfer and its items.
func (r *GormTransferRepository) Save(ctx context.Context, t *replenishment.Transfer) error {
	err := r.db.WithContext(ctx).
		Session(&gorm.Session{FullSaveAssociations: true}).
		Save(t).Error
	if err != nil && isUniqueViolation(err) {
		return shared.ErrAlreadyExists.WithMessage("transfer reference " + t.Reference + " is already in use")
	}
	return err
}

// SaveWithLock saves header and items with an optimistic version check.
func (r *GormTransferRepository) SaveWithLock(ctx context.Context, t *replenishment.Transfer) error {
	result := r.db.WithContext(ctx).
		Model(t).
		Where("id = ? AND tenant_id = ? AND version < ?", t.ID, t.TenantID, t.Version).
		Updates(map[string]interface{}{
			"status":            t.Status,
			"stock_request_id":  t.StockRequestID,
			"approved_by":       t.ApprovedBy,
			"approved_at":       t.ApprovedAt,
			"executed_by":       t.ExecutedBy,
			"executed_at":       t.ExecutedAt,
			"received_by":       t.ReceivedBy,
			"received_at":       t.ReceivedAt,
			"validated_by":      t.ValidatedBy,
			"validated_at":      t.ValidatedAt,
			"cancellation_note": t.CancellationNote,
			"version":           t.Version,
			"updated_at":        t.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict.WithMessage("transfer was modified by another transaction")
	}

	for i := range t.Items {
		if err := r.db.WithContext(ctx).Save(&t.Items[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

// NextReference allocates the next TX-YYYYMMDD-NNNN reference.
func (r *GormTransferRepository) NextReference(ctx context.Context, tenantID uuid.UUID) (string, error) {
	return nextReference(ctx, r.db, replenishment.Transfer{}.TableName(), "TX", tenantID)
}

// CountForTenant counts transfers for a tenant.
func (r *GormTransferRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&replenishment.Transfer{}).
		Where("tenant_id = ?", tenantID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

var _ replenishment.TransferRepository = (*GormTransferRepository)(nil)
