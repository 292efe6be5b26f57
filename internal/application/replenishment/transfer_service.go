package replenishment

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appstock "github.com/retailops/backend/internal/application/stock"
	"github.com/retailops/backend/internal/domain/replenishment"
	"github.com/retailops/backend/internal/domain/shared"
)

// TransferService drives inter-warehouse transfers. Execution is
// all-or-nothing: every line's availability is checked under lock before
// any stock moves.
type TransferService struct {
	scope     appstock.TransactionScope
	ledger    *appstock.Ledger
	transfers replenishment.TransferRepository
	logger    *zap.Logger
}

// NewTransferService creates a TransferService.
func NewTransferService(scope appstock.TransactionScope, ledger *appstock.Ledger, transfers replenishment.TransferRepository, logger *zap.Logger) *TransferService {
	return &TransferService{
		scope:     scope,
		ledger:    ledger,
		transfers: transfers,
		logger:    logger,
	}
}

// CreateTransferCommand opens a pending transfer.
type CreateTransferCommand struct {
	TenantID        uuid.UUID
	ActorID         uuid.UUID
	FromWarehouseID uuid.UUID
	ToWarehouseID   uuid.UUID
	Lines           []replenishment.TransferLine
}

// Create opens a pending transfer.
func (s *TransferService) Create(ctx context.Context, cmd CreateTransferCommand) (*replenishment.Transfer, error) {
	reference, err := s.transfers.NextReference(ctx, cmd.TenantID)
	if err != nil {
		return nil, fmt.Errorf("allocate transfer reference: %w", err)
	}
	t, err := replenishment.NewTransfer(cmd.TenantID, cmd.ActorID, cmd.FromWarehouseID, cmd.ToWarehouseID, reference, cmd.Lines)
	if err != nil {
		return nil, err
	}
	if err := s.transfers.Save(ctx, t); err != nil {
		return nil, err
	}
	s.logger.Info("transfer created",
		zap.String("transfer_id", t.ID.String()),
		zap.String("reference", t.Reference))
	return t, nil
}

// Approve clears a pending transfer for execution.
func (s *TransferService) Approve(ctx context.Context, tenantID, transferID, actorID uuid.UUID) (*replenishment.Transfer, error) {
	return s.transition(ctx, tenantID, transferID, func(t *replenishment.Transfer) error {
		return t.Approve(actorID)
	})
}

// Execute moves the stock of an approved transfer in one transaction.
func (s *TransferService) Execute(ctx context.Context, tenantID, transferID, actorID uuid.UUID) (*replenishment.Transfer, error) {
	var t *replenishment.Transfer
	err := s.scope.Execute(ctx, func(repos appstock.TransactionalRepositories) error {
		var txErr error
		t, txErr = repos.TransferRepo().FindByIDForTenant(ctx, tenantID, transferID)
		if txErr != nil {
			return txErr
		}
		return s.ExecuteInTx(ctx, repos, t, actorID)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("transfer executed",
		zap.String("transfer_id", t.ID.String()),
		zap.String("reference", t.Reference))
	return t, nil
}

// ExecuteInTx runs the execution inside the caller's transaction so
// request approval can ride the same commit. Lines are processed in
// product order to keep the lock order stable across concurrent
// transfers, and every line's availability is verified before the first
// mutation.
func (s *TransferService) ExecuteInTx(ctx context.Context, repos appstock.TransactionalRepositories, t *replenishment.Transfer, actorID uuid.UUID) error {
	if !t.Status.CanTransitionTo(replenishment.TransferStatusExecuted) {
		return shared.ErrInvalidStateTransition.WithMessage(
			"transfer cannot be executed from status " + t.Status.String())
	}

	items := make([]*replenishment.TransferItem, 0, len(t.Items))
	for i := range t.Items {
		items = append(items, &t.Items[i])
	}
	sort.Slice(items, func(a, b int) bool {
		return items[a].ProductID.String() < items[b].ProductID.String()
	})

	// First pass: verify every line's availability so a short line aborts
	// before anything moved. The check takes no row locks; only the
	// per-line execution acquires them, always in ascending warehouse-ID
	// order, so two opposing transfers cannot deadlock. A race lost
	// between the passes is re-caught under the pair locks and fails the
	// whole transaction.
	for _, item := range items {
		var available int64
		pos, err := repos.StockRepo().FindByProductAndWarehouse(ctx, t.TenantID, item.ProductID, t.FromWarehouseID)
		switch {
		case err == nil:
			available = pos.Available
		case !errors.Is(err, shared.ErrNotFound):
			return err
		}
		if available < item.Quantity {
			return shared.ErrInsufficientStock.WithMessage(
				fmt.Sprintf("product %s: %d available, %d requested", item.ProductID, available, item.Quantity))
		}
	}

	// Second pass: move every line.
	for _, item := range items {
		cost, err := s.ledger.ApplyTransferTx(ctx, repos, appstock.TransferCommand{
			TenantID:        t.TenantID,
			ActorID:         actorID,
			ProductID:       item.ProductID,
			FromWarehouseID: t.FromWarehouseID,
			ToWarehouseID:   t.ToWarehouseID,
			Quantity:        item.Quantity,
			Reference:       t.Reference,
			IdempotencyKey:  fmt.Sprintf("%s:%s:execute", t.Reference, item.ID),
		})
		if err != nil {
			return err
		}
		if err := t.SetItemCost(item.ID, cost); err != nil {
			return err
		}
	}

	if err := t.MarkExecuted(actorID); err != nil {
		return err
	}
	if err := repos.TransferRepo().SaveWithLock(ctx, t); err != nil {
		return err
	}
	return s.flushEvents(ctx, repos, t)
}

// Receive confirms arrival. received maps transfer item IDs to counted
// quantities; omitted items count as complete. Shortages shrink the
// destination with a corrective adjustment and raise a shortage event.
func (s *TransferService) Receive(ctx context.Context, tenantID, transferID, actorID uuid.UUID, received map[uuid.UUID]int64) (*replenishment.Transfer, error) {
	var t *replenishment.Transfer
	err := s.scope.Execute(ctx, func(repos appstock.TransactionalRepositories) error {
		var txErr error
		t, txErr = repos.TransferRepo().FindByIDForTenant(ctx, tenantID, transferID)
		if txErr != nil {
			return txErr
		}
		if txErr = t.Receive(actorID, received); txErr != nil {
			return txErr
		}

		for i := range t.Items {
			item := &t.Items[i]
			shortage := item.Shortage()
			if shortage <= 0 {
				continue
			}
			txErr = s.ledger.ApplyAdjustmentTx(ctx, repos, appstock.AdjustmentCommand{
				TenantID:       tenantID,
				ActorID:        actorID,
				ProductID:      item.ProductID,
				WarehouseID:    t.ToWarehouseID,
				Delta:          -shortage,
				Reference:      t.Reference + "-SHORTAGE",
				Reason:         "transfer shortage on receipt",
				IdempotencyKey: fmt.Sprintf("%s:%s:shortage", t.Reference, item.ID),
			})
			if txErr != nil {
				return txErr
			}
		}
		if t.HasShortage() {
			t.AddDomainEvent(replenishment.NewTransferShortageEvent(t))
		}

		if txErr = repos.TransferRepo().SaveWithLock(ctx, t); txErr != nil {
			return txErr
		}
		return s.flushEvents(ctx, repos, t)
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Validate closes a received transfer.
func (s *TransferService) Validate(ctx context.Context, tenantID, transferID, actorID uuid.UUID) (*replenishment.Transfer, error) {
	return s.transition(ctx, tenantID, transferID, func(t *replenishment.Transfer) error {
		return t.Validate(actorID)
	})
}

// Cancel abandons a transfer that has not yet moved stock.
func (s *TransferService) Cancel(ctx context.Context, tenantID, transferID uuid.UUID, note string) (*replenishment.Transfer, error) {
	return s.transition(ctx, tenantID, transferID, func(t *replenishment.Transfer) error {
		return t.Cancel(note)
	})
}

func (s *TransferService) transition(ctx context.Context, tenantID, transferID uuid.UUID, fn func(t *replenishment.Transfer) error) (*replenishment.Transfer, error) {
	var t *replenishment.Transfer
	err := s.scope.Execute(ctx, func(repos appstock.TransactionalRepositories) error {
		var txErr error
		t, txErr = repos.TransferRepo().FindByIDForTenant(ctx, tenantID, transferID)
		if txErr != nil {
			return txErr
		}
		if txErr = fn(t); txErr != nil {
			return txErr
		}
		if txErr = repos.TransferRepo().SaveWithLock(ctx, t); txErr != nil {
			return txErr
		}
		return s.flushEvents(ctx, repos, t)
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (s *TransferService) flushEvents(ctx context.Context, repos appstock.TransactionalRepositories, t *replenishment.Transfer) error {
	events := t.GetDomainEvents()
	if len(events) == 0 {
		return nil
	}
	if err := repos.SaveEvents(ctx, events...); err != nil {
		return err
	}
	t.ClearDomainEvents()
	return nil
}

// Get returns one transfer with its items.
func (s *TransferService) Get(ctx context.Context, tenantID, transferID uuid.UUID) (*replenishment.Transfer, error) {
	return s.transfers.FindByIDForTenant(ctx, tenantID, transferID)
}

// List returns transfers for a tenant.
func (s *TransferService) List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]replenishment.Transfer, error) {
	return s.transfers.FindAllForTenant(ctx, tenantID, filter)
}
