package warehouse

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/retailops/backend/internal/domain/shared"
	"github.com/retailops/backend/internal/domain/warehouse"
	"github.com/retailops/backend/internal/infrastructure/logger"
)

// Service manages the warehouse registry.
type Service struct {
	warehouses warehouse.WarehouseRepository
	logger     *logger.ContextLogger
}

// NewService creates a warehouse service.
func NewService(warehouses warehouse.WarehouseRepository, log *zap.Logger) *Service {
	return &Service{
		warehouses: warehouses,
		logger:     logger.NewContextLogger(log),
	}
}

// CreateCommand carries the fields of a new warehouse.
type CreateCommand struct {
	TenantID uuid.UUID
	Code     string
	Name     string
	Kind     warehouse.Kind
	Address  string
}

// Create registers a warehouse. The code must be unique per tenant.
func (s *Service) Create(ctx context.Context, cmd CreateCommand) (*warehouse.Warehouse, error) {
	w, err := warehouse.NewWarehouse(cmd.TenantID, cmd.Code, cmd.Name, cmd.Kind)
	if err != nil {
		return nil, err
	}
	w.Address = cmd.Address

	if err := s.warehouses.Save(ctx, w); err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "warehouse created",
		zap.String("warehouse_id", w.ID.String()),
		zap.String("code", w.Code),
		zap.String("kind", string(w.Kind)))
	return w, nil
}

// Get returns one warehouse scoped to the tenant.
func (s *Service) Get(ctx context.Context, tenantID, id uuid.UUID) (*warehouse.Warehouse, error) {
	return s.warehouses.FindByIDForTenant(ctx, tenantID, id)
}

// List returns the tenant's warehouses, optionally narrowed to a kind.
func (s *Service) List(ctx context.Context, tenantID uuid.UUID, kind warehouse.Kind, filter shared.Filter) ([]warehouse.Warehouse, int64, error) {
	var (
		items []warehouse.Warehouse
		err   error
	)
	if kind != "" {
		items, err = s.warehouses.FindByKind(ctx, tenantID, kind, filter)
	} else {
		items, err = s.warehouses.FindAllForTenant(ctx, tenantID, filter)
	}
	if err != nil {
		return nil, 0, err
	}

	total, err := s.warehouses.CountForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// SetActive activates or deactivates a warehouse.
func (s *Service) SetActive(ctx context.Context, tenantID, id uuid.UUID, active bool) (*warehouse.Warehouse, error) {
	w, err := s.warehouses.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if active {
		w.Activate()
	} else {
		w.Deactivate()
	}
	if err := s.warehouses.Save(ctx, w); err != nil {
		return nil, err
	}
	return w, nil
}
