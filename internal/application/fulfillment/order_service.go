package fulfillment

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appstock "github.com/retailops/backend/internal/application/stock"
	"github.com/retailops/backend/internal/domain/fulfillment"
	"github.com/retailops/backend/internal/domain/shared"
)

// OrderService drives point-of-sale orders: reserve at creation, deduct
// at serving, post the sale at validation.
type OrderService struct {
	scope  appstock.TransactionScope
	ledger *appstock.Ledger
	orders fulfillment.OrderRepository
	logger *zap.Logger
}

// NewOrderService creates an OrderService.
func NewOrderService(scope appstock.TransactionScope, ledger *appstock.Ledger, orders fulfillment.OrderRepository, logger *zap.Logger) *OrderService {
	return &OrderService{
		scope:  scope,
		ledger: ledger,
		orders: orders,
		logger: logger,
	}
}

// CreateOrderCommand opens an order against one pos warehouse.
type CreateOrderCommand struct {
	TenantID    uuid.UUID
	ActorID     uuid.UUID
	WarehouseID uuid.UUID
	TableNumber string
	Lines       []fulfillment.OrderLine
}

// Create opens the order and reserves every line in one transaction. A
// line that cannot be covered rolls back all prior reservations, so a
// failed order leaves nothing earmarked.
func (s *OrderService) Create(ctx context.Context, cmd CreateOrderCommand) (*fulfillment.Order, error) {
	reference, err := s.orders.NextReference(ctx, cmd.TenantID)
	if err != nil {
		return nil, fmt.Errorf("allocate order reference: %w", err)
	}
	o, err := fulfillment.NewOrder(cmd.TenantID, cmd.ActorID, cmd.WarehouseID, reference, cmd.TableNumber, cmd.Lines)
	if err != nil {
		return nil, err
	}

	err = s.scope.Execute(ctx, func(repos appstock.TransactionalRepositories) error {
		for i := range o.Items {
			item := &o.Items[i]
			if err := s.ledger.ReserveTx(ctx, repos, appstock.ReservationCommand{
				TenantID:    cmd.TenantID,
				ProductID:   item.ProductID,
				WarehouseID: cmd.WarehouseID,
				Quantity:    item.QuantityOrdered,
			}); err != nil {
				return err
			}
		}
		return repos.OrderRepo().Save(ctx, o)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("order created",
		zap.String("order_id", o.ID.String()),
		zap.String("reference", o.Reference))
	return o, nil
}

// ServeLine is one served line of a serving.
type ServeLine struct {
	ItemID   uuid.UUID
	Quantity int64
}

// ServeCommand records served quantities against an order.
type ServeCommand struct {
	TenantID uuid.UUID
	ActorID  uuid.UUID
	OrderID  uuid.UUID
	// ServingReference doubles as the idempotency key of the deductions.
	ServingReference string
	Lines            []ServeLine
}

// Serve deducts the served quantities from the pos warehouse, releases
// the matching reservations and settles the order status.
func (s *OrderService) Serve(ctx context.Context, cmd ServeCommand) (*fulfillment.Order, error) {
	if len(cmd.Lines) == 0 {
		return nil, shared.ErrInvalidInput.WithMessage("serving needs at least one line")
	}
	if cmd.ServingReference == "" {
		return nil, shared.ErrInvalidInput.WithMessage("serving reference is required")
	}

	var o *fulfillment.Order
	err := s.scope.Execute(ctx, func(repos appstock.TransactionalRepositories) error {
		var txErr error
		o, txErr = repos.OrderRepo().FindByIDForTenant(ctx, cmd.TenantID, cmd.OrderID)
		if txErr != nil {
			return txErr
		}

		for _, line := range cmd.Lines {
			item, txErr := o.ServeLine(line.ItemID, line.Quantity)
			if txErr != nil {
				return txErr
			}
			txErr = s.ledger.DeductTx(ctx, repos, appstock.DeductCommand{
				TenantID:       cmd.TenantID,
				ActorID:        cmd.ActorID,
				ProductID:      item.ProductID,
				WarehouseID:    o.WarehouseID,
				Quantity:       line.Quantity,
				Reference:      o.Reference,
				IdempotencyKey: fmt.Sprintf("%s:%s", cmd.ServingReference, line.ItemID),
			})
			if txErr != nil {
				return txErr
			}
		}

		if txErr = o.SettleAfterServing(); txErr != nil {
			return txErr
		}
		return repos.OrderRepo().SaveWithLock(ctx, o)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("order served",
		zap.String("order_id", o.ID.String()),
		zap.String("status", o.Status.String()))
	return o, nil
}

// MarkPaid records payment on the order.
func (s *OrderService) MarkPaid(ctx context.Context, tenantID, orderID uuid.UUID) (*fulfillment.Order, error) {
	return s.transition(ctx, tenantID, orderID, func(o *fulfillment.Order) error {
		o.MarkPaid()
		return nil
	})
}

// Validate closes a served and paid order and stages the sale event for
// the accounting poster.
func (s *OrderService) Validate(ctx context.Context, tenantID, orderID uuid.UUID) (*fulfillment.Order, error) {
	return s.transition(ctx, tenantID, orderID, (*fulfillment.Order).Validate)
}

// Cancel abandons a pending order and releases its reservations.
func (s *OrderService) Cancel(ctx context.Context, tenantID, orderID uuid.UUID) (*fulfillment.Order, error) {
	var o *fulfillment.Order
	err := s.scope.Execute(ctx, func(repos appstock.TransactionalRepositories) error {
		var txErr error
		o, txErr = repos.OrderRepo().FindByIDForTenant(ctx, tenantID, orderID)
		if txErr != nil {
			return txErr
		}
		if txErr = o.Cancel(); txErr != nil {
			return txErr
		}
		for i := range o.Items {
			item := &o.Items[i]
			remaining := item.QuantityOrdered - item.QuantityServed
			if remaining <= 0 {
				continue
			}
			if txErr = s.ledger.ReleaseTx(ctx, repos, appstock.ReservationCommand{
				TenantID:    tenantID,
				ProductID:   item.ProductID,
				WarehouseID: o.WarehouseID,
				Quantity:    remaining,
			}); txErr != nil {
				return txErr
			}
		}
		return repos.OrderRepo().SaveWithLock(ctx, o)
	})
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (s *OrderService) transition(ctx context.Context, tenantID, orderID uuid.UUID, fn func(o *fulfillment.Order) error) (*fulfillment.Order, error) {
	var o *fulfillment.Order
	err := s.scope.Execute(ctx, func(repos appstock.TransactionalRepositories) error {
		var txErr error
		o, txErr = repos.OrderRepo().FindByIDForTenant(ctx, tenantID, orderID)
		if txErr != nil {
			return txErr
		}
		if txErr = fn(o); txErr != nil {
			return txErr
		}
		if txErr = repos.OrderRepo().SaveWithLock(ctx, o); txErr != nil {
			return txErr
		}
		events := o.GetDomainEvents()
		if len(events) > 0 {
			if txErr = repos.SaveEvents(ctx, events...); txErr != nil {
				return txErr
			}
			o.ClearDomainEvents()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return o, nil
}

// Get returns one order with its items.
func (s *OrderService) Get(ctx context.Context, tenantID, orderID uuid.UUID) (*fulfillment.Order, error) {
	return s.orders.FindByIDForTenant(ctx, tenantID, orderID)
}

// List returns orders for a tenant.
func (s *OrderService) List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]fulfillment.Order, error) {
	return s.orders.FindAllForTenant(ctx, tenantID, filter)
}
