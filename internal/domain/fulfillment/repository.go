package fulfillment

import (
	"context"

	"github.com/google/uuid"

	"github.com/retailops/backend/internal/domain/shared"
)

// OrderRepository persists point-of-sale orders with their items.
type OrderRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Order, error)
	FindByReference(ctx context.Context, tenantID uuid.UUID, reference string) (*Order, error)
	FindByStatus(ctx context.Context, tenantID uuid.UUID, status OrderStatus, filter shared.Filter) ([]Order, error)
	FindByWarehouse(ctx context.Context, tenantID, warehouseID uuid.UUID, filter shared.Filter) ([]Order, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Order, error)
	Save(ctx context.Context, o *Order) error
	SaveWithLock(ctx context.Context, o *Order) error
	// NextReference allocates the next ORD-YYYYMMDD-NNNN reference
	NextReference(ctx context.Context, tenantID uuid.UUID) (string, error)
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)
}
