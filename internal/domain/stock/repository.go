package stock

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/retailops/backend/internal/domain/shared"
)

// StockRepository persists stock positions.
type StockRepository interface {
	// FindByID finds a position by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Stock, error)

	// FindByIDForTenant finds a position by ID within a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Stock, error)

	// FindByProductAndWarehouse finds the position for a product in a warehouse
	FindByProductAndWarehouse(ctx context.Context, tenantID, productID, warehouseID uuid.UUID) (*Stock, error)

	// FindByProductAndWarehouseForUpdate does the same under a row lock.
	// Only valid inside a transaction scope.
	FindByProductAndWarehouseForUpdate(ctx context.Context, tenantID, productID, warehouseID uuid.UUID) (*Stock, error)

	// FindByWarehouse lists positions in a warehouse
	FindByWarehouse(ctx context.Context, tenantID, warehouseID uuid.UUID, filter shared.Filter) ([]Stock, error)

	// FindByProduct lists positions for a product across warehouses
	FindByProduct(ctx context.Context, tenantID, productID uuid.UUID, filter shared.Filter) ([]Stock, error)

	// FindLow lists positions at or under their alert threshold
	FindLow(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Stock, error)

	// GetOrCreate returns the position, creating an empty one on first touch
	GetOrCreate(ctx context.Context, tenantID, productID, warehouseID uuid.UUID) (*Stock, error)

	// GetOrCreateForUpdate does the same under a row lock
	GetOrCreateForUpdate(ctx context.Context, tenantID, productID, warehouseID uuid.UUID) (*Stock, error)

	// Save creates or updates a position
	Save(ctx context.Context, s *Stock) error

	// SaveWithLock saves with an optimistic version check
	SaveWithLock(ctx context.Context, s *Stock) error

	// SumValueByWarehouse totals quantity*cost_average over a warehouse
	SumValueByWarehouse(ctx context.Context, tenantID, warehouseID uuid.UUID) (decimal.Decimal, error)

	// CountForTenant counts positions matching the filter
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)
}

// MovementRepository persists the append-only ledger lines. There is no
// update or delete; a duplicate idempotency key surfaces as
// shared.ErrAlreadyReceived from Create.
type MovementRepository interface {
	// Create appends one movement
	Create(ctx context.Context, m *Movement) error

	// CreateBatch appends several movements atomically
	CreateBatch(ctx context.Context, ms []*Movement) error

	// FindByID finds a movement by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Movement, error)

	// FindByReference lists movements sharing a document reference
	FindByReference(ctx context.Context, tenantID uuid.UUID, reference string) ([]Movement, error)

	// FindByIdempotencyKey finds the movement recorded under a key, if any
	FindByIdempotencyKey(ctx context.Context, tenantID uuid.UUID, key string) (*Movement, error)

	// FindByProduct lists movements for a product
	FindByProduct(ctx context.Context, tenantID, productID uuid.UUID, filter shared.Filter) ([]Movement, error)

	// FindByWarehouse lists movements touching a warehouse on either side
	FindByWarehouse(ctx context.Context, tenantID, warehouseID uuid.UUID, filter shared.Filter) ([]Movement, error)

	// FindForTenant lists movements for a tenant
	FindForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Movement, error)

	// SumByKindAndDateRange sums moved quantity per kind over a period
	SumByKindAndDateRange(ctx context.Context, tenantID uuid.UUID, kind MovementKind, start, end time.Time) (int64, error)

	// CountForTenant counts movements matching the filter
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)
}
