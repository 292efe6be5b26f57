package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/retailops/backend/internal/domain/procurement"
	"github.com/retailops/backend/internal/domain/shared"
)

// GormPurchaseRepository implements procurement.PurchaseRepository on GORM.
type GormPurchaseRepository struct {
	db *gorm.DB
}

// NewGormPurchaseRepository creates a repository bound to the given handle.
func NewGormPurchaseRepository(db *gorm.DB) *GormPurchaseRepository {
	return &GormPurchaseRepository{db: db}
}

// FindByID finds a purchase with items preloaded.
func (r *GormPurchaseRepository) FindByID(ctx context.Context, id uuid.UUID) (*procurement.Purchase, error) {
	var p procurement.Purchase
	if err := r.db.WithContext(ctx).Preload("Items").First(&p, "id = ?", id).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return &p, nil
}

// FindByIDForTenant finds a purchase by ID within a tenant.
func (r *GormPurchaseRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*procurement.Purchase, error) {
	var p procurement.Purchase
	if err := r.db.WithContext(ctx).Preload("Items").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&p).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return &p, nil
}

// FindByReference finds a purchase by its document reference.
func (r *GormPurchaseRepository) FindByReference(ctx context.Context, tenantID uuid.UUID, reference string) (*procurement.Purchase, error) {
	var p procurement.Purchase
	if err := r.db.WithContext(ctx).Preload("Items").
		Where("tenant_id = ? AND reference = ?", tenantID, reference).
		First(&p).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return &p, nil
}

// FindByStatus lists purchases in a given status.
func (r *GormPurchaseRepository) FindByStatus(ctx context.Context, tenantID uuid.UUID, status procurement.PurchaseStatus, filter shared.Filter) ([]procurement.Purchase, error) {
	var ps []procurement.Purchase
	query := applyFilter(
		r.db.WithContext(ctx).Model(&procurement.Purchase{}).Preload("Items").
			Where("tenant_id = ? AND status = ?", tenantID, status),
		filter, documentSortFields,
	)
	if err := query.Find(&ps).Error; err != nil {
		return nil, err
	}
	return ps, nil
}

// FindBySupplier lists purchases for a supplier.
func (r *GormPurchaseRepository) FindBySupplier(ctx context.Context, tenantID, supplierID uuid.UUID, filter shared.Filter) ([]procurement.Purchase, error) {
	var ps []procurement.Purchase
	query := applyFilter(
		r.db.WithContext(ctx).Model(&procurement.Purchase{}).Preload("Items").
			Where("tenant_id = ? AND supplier_id = ?", tenantID, supplierID),
		filter, documentSortFields,
	)
	if err := query.Find(&ps).Error; err != nil {
		return nil, err
	}
	return ps, nil
}

// FindAllForTenant lists purchases for a tenant.
func (r *GormPurchaseRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]procurement.Purchase, error) {
	var ps []procurement.Purchase
	query := applyFilter(
		r.db.WithContext(ctx).Model(&procurement.Purchase{}).Preload("Items").
			Where("tenant_id = ?", tenantID),
		filter, documentSortFields,
	)
	if err := query.Find(&ps).Error; err != nil {
		return nil, err
	}
	return ps, nil
}

// Save creates or updates a purchase and its items.
func (r *GormPurchaseRepository) Save(ctx context.Context, p *procurement.Purchase) error {
	err := r.db.WithContext(ctx).
		Session(&gorm.Session{FullSaveAssociations: true}).
		Save(p).Error
	if err != nil && isUniqueViolation(err) {
		return shared.ErrAlreadyExists.WithMessage("purchase reference " + p.Reference + " is already in use")
	}
	return err
}

// SaveWithLock saves header and items with an optimistic version check.
// The check uses "version < new" because a workflow may bump the
// version more than once before saving.
func (r *GormPurchaseRepository) SaveWithLock(ctx context.Context, p *procurement.Purchase) error {
	result := r.db.WithContext(ctx).
		Model(p).
		Where("id = ? AND tenant_id = ? AND version < ?", p.ID, p.TenantID, p.Version).
		Updates(map[string]interface{}{
			"status":                        p.Status,
			"payment_validated_by_supplier": p.PaymentValidatedBySupplier,
			"notes":                         p.Notes,
			"submitted_at":                  p.SubmittedAt,
			"confirmed_at":                  p.ConfirmedAt,
			"shipped_at":                    p.ShippedAt,
			"delivered_at":                  p.DeliveredAt,
			"received_at":                   p.ReceivedAt,
			"paid_at":                       p.PaidAt,
			"version":                       p.Version,
			"updated_at":                    p.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict.WithMessage("purchase was modified by another transaction")
	}

	for i := range p.Items {
		if err := r.db.WithContext(ctx).Save(&p.Items[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

// NextReference allocates the next PO-YYYYMMDD-NNNN reference.
func (r *GormPurchaseRepository) NextReference(ctx context.Context, tenantID uuid.UUID) (string, error) {
	return nextReference(ctx, r.db, procurement.Purchase{}.TableName(), "PO", tenantID)
}

// CountForTenant counts purchases for a tenant.
func (r *GormPurchaseRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&procurement.Purchase{}).
		Where("tenant_id = ?", tenantID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

var _ procurement.PurchaseRepository = (*GormPurchaseRepository)(nil)
