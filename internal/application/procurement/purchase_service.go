package procurement

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	appstock "github.com/retailops/backend/internal/application/stock"
	"github.com/retailops/backend/internal/domain/procurement"
	"github.com/retailops/backend/internal/domain/shared"
	"github.com/retailops/backend/internal/domain/stock"
)

// PurchaseService drives the purchase order lifecycle. Receiving is the
// only operation that touches the ledger; everything else is document
// state.
type PurchaseService struct {
	scope     appstock.TransactionScope
	ledger    *appstock.Ledger
	purchases procurement.PurchaseRepository
	logger    *zap.Logger
}

// NewPurchaseService creates a PurchaseService.
func NewPurchaseService(scope appstock.TransactionScope, ledger *appstock.Ledger, purchases procurement.PurchaseRepository, logger *zap.Logger) *PurchaseService {
	return &PurchaseService{
		scope:     scope,
		ledger:    ledger,
		purchases: purchases,
		logger:    logger,
	}
}

// CreatePurchaseCommand opens a purchase order.
type CreatePurchaseCommand struct {
	TenantID    uuid.UUID
	ActorID     uuid.UUID
	SupplierID  uuid.UUID
	WarehouseID uuid.UUID
	Notes       string
	Submit      bool
	Lines       []procurement.PurchaseLine
}

// Create opens a purchase order, optionally submitting it right away.
func (s *PurchaseService) Create(ctx context.Context, cmd CreatePurchaseCommand) (*procurement.Purchase, error) {
	reference, err := s.purchases.NextReference(ctx, cmd.TenantID)
	if err != nil {
		return nil, fmt.Errorf("allocate purchase reference: %w", err)
	}

	p, err := procurement.NewPurchase(cmd.TenantID, cmd.ActorID, cmd.SupplierID, cmd.WarehouseID, reference, cmd.Lines)
	if err != nil {
		return nil, err
	}
	p.Notes = cmd.Notes
	if cmd.Submit {
		if err := p.Submit(); err != nil {
			return nil, err
		}
	}

	err = s.scope.Execute(ctx, func(repos appstock.TransactionalRepositories) error {
		if err := repos.PurchaseRepo().Save(ctx, p); err != nil {
			return err
		}
		return s.flushEvents(ctx, repos, p)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("purchase created",
		zap.String("purchase_id", p.ID.String()),
		zap.String("reference", p.Reference),
		zap.String("status", p.Status.String()))
	return p, nil
}

// transition loads the purchase, applies fn and saves with a version check.
func (s *PurchaseService) transition(ctx context.Context, tenantID, purchaseID uuid.UUID, fn func(p *procurement.Purchase) error) (*procurement.Purchase, error) {
	var p *procurement.Purchase
	err := s.scope.Execute(ctx, func(repos appstock.TransactionalRepositories) error {
		var txErr error
		p, txErr = repos.PurchaseRepo().FindByIDForTenant(ctx, tenantID, purchaseID)
		if txErr != nil {
			return txErr
		}
		if txErr = fn(p); txErr != nil {
			return txErr
		}
		if txErr = repos.PurchaseRepo().SaveWithLock(ctx, p); txErr != nil {
			return txErr
		}
		return s.flushEvents(ctx, repos, p)
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Submit sends a draft to the supplier.
func (s *PurchaseService) Submit(ctx context.Context, tenantID, purchaseID uuid.UUID) (*procurement.Purchase, error) {
	return s.transition(ctx, tenantID, purchaseID, (*procurement.Purchase).Submit)
}

// Confirm records the supplier's acceptance.
func (s *PurchaseService) Confirm(ctx context.Context, tenantID, purchaseID uuid.UUID) (*procurement.Purchase, error) {
	return s.transition(ctx, tenantID, purchaseID, (*procurement.Purchase).Confirm)
}

// Ship records the supplier's dispatch notice.
func (s *PurchaseService) Ship(ctx context.Context, tenantID, purchaseID uuid.UUID) (*procurement.Purchase, error) {
	return s.transition(ctx, tenantID, purchaseID, (*procurement.Purchase).Ship)
}

// Deliver records arrival at the dock.
func (s *PurchaseService) Deliver(ctx context.Context, tenantID, purchaseID uuid.UUID) (*procurement.Purchase, error) {
	return s.transition(ctx, tenantID, purchaseID, (*procurement.Purchase).Deliver)
}

// Cancel abandons a draft.
func (s *PurchaseService) Cancel(ctx context.Context, tenantID, purchaseID uuid.UUID) (*procurement.Purchase, error) {
	return s.transition(ctx, tenantID, purchaseID, (*procurement.Purchase).Cancel)
}

// ValidatePayment records the supplier-side payment confirmation.
func (s *PurchaseService) ValidatePayment(ctx context.Context, tenantID, purchaseID uuid.UUID) (*procurement.Purchase, error) {
	return s.transition(ctx, tenantID, purchaseID, (*procurement.Purchase).ValidatePayment)
}

// ReceiptLine is one received line of a goods receipt.
type ReceiptLine struct {
	ItemID   uuid.UUID
	Quantity int64
}

// ReceiveCommand books a goods receipt against a purchase order. The
// receipt reference doubles as the idempotency key: replaying the same
// receipt yields AlreadyReceived instead of a double booking.
type ReceiveCommand struct {
	TenantID         uuid.UUID
	ActorID          uuid.UUID
	PurchaseID       uuid.UUID
	ReceiptReference string
	Lines            []ReceiptLine
}

// Receive books a receipt: per-line validation against the order, ledger
// receipts with cost absorption, status settlement and the outbox events,
// all in one transaction.
func (s *PurchaseService) Receive(ctx context.Context, cmd ReceiveCommand) (*procurement.Purchase, error) {
	if len(cmd.Lines) == 0 {
		return nil, shared.ErrInvalidInput.WithMessage("receipt needs at least one line")
	}
	if cmd.ReceiptReference == "" {
		return nil, shared.ErrInvalidInput.WithMessage("receipt reference is required")
	}

	var p *procurement.Purchase
	err := s.scope.Execute(ctx, func(repos appstock.TransactionalRepositories) error {
		var txErr error
		p, txErr = repos.PurchaseRepo().FindByIDForTenant(ctx, cmd.TenantID, cmd.PurchaseID)
		if txErr != nil {
			return txErr
		}

		for _, line := range cmd.Lines {
			item, txErr := p.ReceiveLine(line.ItemID, line.Quantity)
			if txErr != nil {
				return txErr
			}
			txErr = s.ledger.ApplyReceiptTx(ctx, repos, appstock.ReceiptCommand{
				TenantID:       cmd.TenantID,
				ActorID:        cmd.ActorID,
				ProductID:      item.ProductID,
				WarehouseID:    p.WarehouseID,
				Quantity:       line.Quantity,
				UnitCost:       item.UnitCost,
				Kind:           stock.MovementPurchase,
				Reference:      p.Reference,
				IdempotencyKey: fmt.Sprintf("%s:%s", cmd.ReceiptReference, line.ItemID),
			})
			if txErr != nil {
				return txErr
			}
		}

		if txErr = p.SettleAfterReceipt(); txErr != nil {
			return txErr
		}
		if txErr = repos.PurchaseRepo().SaveWithLock(ctx, p); txErr != nil {
			return txErr
		}
		return s.flushEvents(ctx, repos, p)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("purchase receipt booked",
		zap.String("purchase_id", p.ID.String()),
		zap.String("receipt_reference", cmd.ReceiptReference),
		zap.String("status", p.Status.String()))
	return p, nil
}

func (s *PurchaseService) flushEvents(ctx context.Context, repos appstock.TransactionalRepositories, p *procurement.Purchase) error {
	events := p.GetDomainEvents()
	if len(events) == 0 {
		return nil
	}
	if err := repos.SaveEvents(ctx, events...); err != nil {
		return err
	}
	p.ClearDomainEvents()
	return nil
}

// Get returns one purchase with its items.
func (s *PurchaseService) Get(ctx context.Context, tenantID, purchaseID uuid.UUID) (*procurement.Purchase, error) {
	return s.purchases.FindByIDForTenant(ctx, tenantID, purchaseID)
}

// List returns purchases for a tenant.
func (s *PurchaseService) List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]procurement.Purchase, error) {
	return s.purchases.FindAllForTenant(ctx, tenantID, filter)
}

// ListByStatus returns purchases in one status.
func (s *PurchaseService) ListByStatus(ctx context.Context, tenantID uuid.UUID, status procurement.PurchaseStatus, filter shared.Filter) ([]procurement.Purchase, error) {
	return s.purchases.FindByStatus(ctx, tenantID, status, filter)
}

// OrderedValue is the open order value of a supplier, for dashboards.
func (s *PurchaseService) OrderedValue(ctx context.Context, tenantID, supplierID uuid.UUID) (decimal.Decimal, error) {
	purchases, err := s.purchases.FindBySupplier(ctx, tenantID, supplierID, shared.DefaultFilter())
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for i := range purchases {
		switch purchases[i].Status {
		case procurement.PurchaseStatusCancelled, procurement.PurchaseStatusPaid:
		default:
			total = total.Add(purchases[i].Total())
		}
	}
	return total, nil
}
