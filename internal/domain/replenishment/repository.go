package replenishment

import (
	"context"

	"github.com/google/uuid"

	"github.com/retailops/backend/internal/domain/shared"
)

// StockRequestRepository persists stock requests with their items.
type StockRequestRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*StockRequest, error)
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*StockRequest, error)
	FindByReference(ctx context.Context, tenantID uuid.UUID, reference string) (*StockRequest, error)
	FindByStatus(ctx context.Context, tenantID uuid.UUID, status RequestStatus, filter shared.Filter) ([]StockRequest, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]StockRequest, error)
	Save(ctx context.Context, r *StockRequest) error
	SaveWithLock(ctx context.Context, r *StockRequest) error
	// NextReference allocates the next REQ-YYYYMMDD-NNNN reference
	NextReference(ctx context.Context, tenantID uuid.UUID) (string, error)
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)
}

// TransferRepository persists transfers with their items.
type TransferRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Transfer, error)
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Transfer, error)
	FindByReference(ctx context.Context, tenantID uuid.UUID, reference string) (*Transfer, error)
	FindByStatus(ctx context.Context, tenantID uuid.UUID, status TransferStatus, filter shared.Filter) ([]Transfer, error)
	FindByStockRequest(ctx context.Context, tenantID, requestID uuid.UUID) ([]Transfer, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Transfer, error)
	Save(ctx context.Context, t *Transfer) error
	SaveWithLock(ctx context.Context, t *Transfer) error
	// NextReference allocates the next TX-YYYYMMDD-NNNN reference
	NextReference(ctx context.Context, tenantID uuid.UUID) (string, error)
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)
}
