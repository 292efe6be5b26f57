package procurement

import (
	"context"

	"github.com/google/uuid"

	"github.com/retailops/backend/internal/domain/shared"
)

// PurchaseRepository persists purchase orders with their items.
type PurchaseRepository interface {
	// FindByID finds a purchase with items preloaded
	FindByID(ctx context.Context, id uuid.UUID) (*Purchase, error)

	// FindByIDForTenant finds a purchase by ID within a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Purchase, error)

	// FindByReference finds a purchase by its document reference
	FindByReference(ctx context.Context, tenantID uuid.UUID, reference string) (*Purchase, error)

	// FindByStatus lists purchases in a given status
	FindByStatus(ctx context.Context, tenantID uuid.UUID, status PurchaseStatus, filter shared.Filter) ([]Purchase, error)

	// FindBySupplier lists purchases for a supplier
	FindBySupplier(ctx context.Context, tenantID, supplierID uuid.UUID, filter shared.Filter) ([]Purchase, error)

	// FindAllForTenant lists purchases for a tenant
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Purchase, error)

	// Save creates or updates a purchase and its items
	Save(ctx context.Context, p *Purchase) error

	// SaveWithLock saves with an optimistic version check
	SaveWithLock(ctx context.Context, p *Purchase) error

	// NextReference allocates the next PO-YYYYMMDD-NNNN reference
	NextReference(ctx context.Context, tenantID uuid.UUID) (string, error)

	// CountForTenant counts purchases matching the filter
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)
}
