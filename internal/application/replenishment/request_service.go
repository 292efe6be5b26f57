package replenishment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appstock "github.com/retailops/backend/internal/application/stock"
	"github.com/retailops/backend/internal/domain/replenishment"
	"github.com/retailops/backend/internal/domain/shared"
)

// StockRequestService drives replenishment requests. Approval is the
// interesting operation: it spawns the mirrored transfer and executes it
// in the same transaction, so an approval either moves the stock or rolls
// back entirely.
type StockRequestService struct {
	scope           appstock.TransactionScope
	transferService *TransferService
	requests        replenishment.StockRequestRepository
	logger          *zap.Logger
}

// NewStockRequestService creates a StockRequestService.
func NewStockRequestService(scope appstock.TransactionScope, transferService *TransferService, requests replenishment.StockRequestRepository, logger *zap.Logger) *StockRequestService {
	return &StockRequestService{
		scope:           scope,
		transferService: transferService,
		requests:        requests,
		logger:          logger,
	}
}

// CreateRequestCommand opens a stock request.
type CreateRequestCommand struct {
	TenantID        uuid.UUID
	ActorID         uuid.UUID
	FromWarehouseID uuid.UUID
	ToWarehouseID   uuid.UUID
	Priority        replenishment.RequestPriority
	NeededBy        *time.Time
	Submit          bool
	Lines           []replenishment.RequestLine
}

// Create opens a request, optionally submitting it right away.
func (s *StockRequestService) Create(ctx context.Context, cmd CreateRequestCommand) (*replenishment.StockRequest, error) {
	reference, err := s.requests.NextReference(ctx, cmd.TenantID)
	if err != nil {
		return nil, fmt.Errorf("allocate request reference: %w", err)
	}
	r, err := replenishment.NewStockRequest(cmd.TenantID, cmd.ActorID, cmd.FromWarehouseID, cmd.ToWarehouseID, reference, cmd.Priority, cmd.NeededBy, cmd.Lines)
	if err != nil {
		return nil, err
	}
	if cmd.Submit {
		if err := r.Submit(); err != nil {
			return nil, err
		}
	}

	err = s.scope.Execute(ctx, func(repos appstock.TransactionalRepositories) error {
		if err := repos.RequestRepo().Save(ctx, r); err != nil {
			return err
		}
		return s.flushEvents(ctx, repos, r)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("stock request created",
		zap.String("request_id", r.ID.String()),
		zap.String("reference", r.Reference),
		zap.String("status", r.Status.String()))
	return r, nil
}

// Submit hands a draft to the approver.
func (s *StockRequestService) Submit(ctx context.Context, tenantID, requestID uuid.UUID) (*replenishment.StockRequest, error) {
	return s.transition(ctx, tenantID, requestID, (*replenishment.StockRequest).Submit)
}

// ApproveCommand grants a request, possibly with reduced quantities.
type ApproveCommand struct {
	TenantID  uuid.UUID
	ActorID   uuid.UUID
	RequestID uuid.UUID
	// Approvals maps request item IDs to granted quantities. Items not in
	// the map are granted in full.
	Approvals map[uuid.UUID]int64
}

// Approve grants the request and moves the stock. The transfer runs from
// the sourcing warehouse (the request's ToWarehouse) back to the
// requesting one, and executes inside the same transaction: insufficient
// wholesale stock rolls the approval back.
func (s *StockRequestService) Approve(ctx context.Context, cmd ApproveCommand) (*replenishment.StockRequest, *replenishment.Transfer, error) {
	var (
		r *replenishment.StockRequest
		t *replenishment.Transfer
	)
	err := s.scope.Execute(ctx, func(repos appstock.TransactionalRepositories) error {
		var txErr error
		r, txErr = repos.RequestRepo().FindByIDForTenant(ctx, cmd.TenantID, cmd.RequestID)
		if txErr != nil {
			return txErr
		}
		if txErr = r.Approve(cmd.ActorID, cmd.Approvals); txErr != nil {
			return txErr
		}

		lines := make([]replenishment.TransferLine, 0, len(r.Items))
		for i := range r.Items {
			if r.Items[i].QuantityApproved > 0 {
				lines = append(lines, replenishment.TransferLine{
					ProductID: r.Items[i].ProductID,
					Quantity:  r.Items[i].QuantityApproved,
				})
			}
		}
		if len(lines) == 0 {
			return shared.ErrInvalidInput.WithMessage("approval granted no quantity")
		}

		reference, txErr := repos.TransferRepo().NextReference(ctx, cmd.TenantID)
		if txErr != nil {
			return fmt.Errorf("allocate transfer reference: %w", txErr)
		}
		t, txErr = replenishment.NewTransfer(cmd.TenantID, cmd.ActorID, r.ToWarehouseID, r.FromWarehouseID, reference, lines)
		if txErr != nil {
			return txErr
		}
		t.LinkRequest(r.ID)
		if txErr = t.Approve(cmd.ActorID); txErr != nil {
			return txErr
		}
		if txErr = repos.TransferRepo().Save(ctx, t); txErr != nil {
			return txErr
		}
		if txErr = s.transferService.ExecuteInTx(ctx, repos, t, cmd.ActorID); txErr != nil {
			return txErr
		}

		if txErr = r.MarkTransferred(); txErr != nil {
			return txErr
		}
		if txErr = repos.RequestRepo().SaveWithLock(ctx, r); txErr != nil {
			return txErr
		}
		return s.flushEvents(ctx, repos, r)
	})
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info("stock request approved and transferred",
		zap.String("request_id", r.ID.String()),
		zap.String("transfer_id", t.ID.String()),
		zap.String("transfer_reference", t.Reference))
	return r, t, nil
}

// Reject declines a request with a reason.
func (s *StockRequestService) Reject(ctx context.Context, tenantID, requestID, actorID uuid.UUID, reason string) (*replenishment.StockRequest, error) {
	return s.transition(ctx, tenantID, requestID, func(r *replenishment.StockRequest) error {
		return r.Reject(actorID, reason)
	})
}

func (s *StockRequestService) transition(ctx context.Context, tenantID, requestID uuid.UUID, fn func(r *replenishment.StockRequest) error) (*replenishment.StockRequest, error) {
	var r *replenishment.StockRequest
	err := s.scope.Execute(ctx, func(repos appstock.TransactionalRepositories) error {
		var txErr error
		r, txErr = repos.RequestRepo().FindByIDForTenant(ctx, tenantID, requestID)
		if txErr != nil {
			return txErr
		}
		if txErr = fn(r); txErr != nil {
			return txErr
		}
		if txErr = repos.RequestRepo().SaveWithLock(ctx, r); txErr != nil {
			return txErr
		}
		return s.flushEvents(ctx, repos, r)
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (s *StockRequestService) flushEvents(ctx context.Context, repos appstock.TransactionalRepositories, r *replenishment.StockRequest) error {
	events := r.GetDomainEvents()
	if len(events) == 0 {
		return nil
	}
	if err := repos.SaveEvents(ctx, events...); err != nil {
		return err
	}
	r.ClearDomainEvents()
	return nil
}

// Get returns one request with its items.
func (s *StockRequestService) Get(ctx context.Context, tenantID, requestID uuid.UUID) (*replenishment.StockRequest, error) {
	return s.requests.FindByIDForTenant(ctx, tenantID, requestID)
}

// List returns requests for a tenant.
func (s *StockRequestService) List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]replenishment.StockRequest, error) {
	return s.requests.FindAllForTenant(ctx, tenantID, filter)
}
