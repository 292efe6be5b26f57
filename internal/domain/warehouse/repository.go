package warehouse

import (
	"context"

	"github.com/google/uuid"

	"github.com/retailops/backend/internal/domain/shared"
)

// WarehouseRepository persists warehouses.
type WarehouseRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Warehouse, error)
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Warehouse, error)
	FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (*Warehouse, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Warehouse, error)
	FindByKind(ctx context.Context, tenantID uuid.UUID, kind Kind, filter shared.Filter) ([]Warehouse, error)
	Save(ctx context.Context, w *Warehouse) error
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)
}
