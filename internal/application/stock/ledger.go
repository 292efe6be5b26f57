package stock

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/retailops/backend/internal/domain/shared"
	"github.com/retailops/backend/internal/domain/stock"
)

// Ledger is the single write path for stock quantities and costs. Every
// mutation locks the affected positions, appends a movement and stages the
// resulting events, all inside one transaction scope.
type Ledger struct {
	scope     TransactionScope
	stocks    stock.StockRepository
	movements stock.MovementRepository
	logger    *zap.Logger
}

// NewLedger creates a Ledger around the given scope. The plain
// repositories serve the read-side queries.
func NewLedger(scope TransactionScope, stocks stock.StockRepository, movements stock.MovementRepository, logger *zap.Logger) *Ledger {
	return &Ledger{
		scope:     scope,
		stocks:    stocks,
		movements: movements,
		logger:    logger,
	}
}

// ReceiptCommand books external inbound stock into a warehouse.
type ReceiptCommand struct {
	TenantID       uuid.UUID
	ActorID        uuid.UUID
	ProductID      uuid.UUID
	WarehouseID    uuid.UUID
	Quantity       int64
	UnitCost       decimal.Decimal
	Kind           stock.MovementKind
	Reference      string
	IdempotencyKey string
}

// ApplyReceipt runs ApplyReceiptTx in its own transaction.
func (l *Ledger) ApplyReceipt(ctx context.Context, cmd ReceiptCommand) error {
	return l.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		return l.ApplyReceiptTx(ctx, repos, cmd)
	})
}

// ApplyReceiptTx books inbound stock inside the caller's transaction. The
// movement is appended first so a replayed idempotency key aborts before
// the position is touched.
func (l *Ledger) ApplyReceiptTx(ctx context.Context, repos TransactionalRepositories, cmd ReceiptCommand) error {
	kind := cmd.Kind
	if kind == "" {
		kind = stock.MovementPurchase
	}
	movement, err := stock.NewMovement(cmd.TenantID, stock.MovementSpec{
		ProductID:      cmd.ProductID,
		ToWarehouseID:  &cmd.WarehouseID,
		Quantity:       cmd.Quantity,
		UnitCost:       cmd.UnitCost,
		Kind:           kind,
		Reference:      cmd.Reference,
		IdempotencyKey: cmd.IdempotencyKey,
		ActorID:        cmd.ActorID,
	})
	if err != nil {
		return err
	}
	if err := repos.MovementRepo().Create(ctx, movement); err != nil {
		return err
	}

	pos, err := repos.StockRepo().GetOrCreateForUpdate(ctx, cmd.TenantID, cmd.ProductID, cmd.WarehouseID)
	if err != nil {
		return err
	}
	if err := pos.Receive(cmd.Quantity, cmd.UnitCost); err != nil {
		return err
	}
	return l.savePosition(ctx, repos, pos)
}

// TransferCommand moves stock between two warehouses of the same tenant.
type TransferCommand struct {
	TenantID        uuid.UUID
	ActorID         uuid.UUID
	ProductID       uuid.UUID
	FromWarehouseID uuid.UUID
	ToWarehouseID   uuid.UUID
	Quantity        int64
	Reference       string
	IdempotencyKey  string
}

// ApplyTransferTx moves stock between warehouses inside the caller's
// transaction and returns the cost the destination was charged. Both
// positions are locked in ascending warehouse-ID order so two opposing
// transfers cannot deadlock.
func (l *Ledger) ApplyTransferTx(ctx context.Context, repos TransactionalRepositories, cmd TransferCommand) (decimal.Decimal, error) {
	movement, err := stock.NewMovement(cmd.TenantID, stock.MovementSpec{
		ProductID:       cmd.ProductID,
		FromWarehouseID: &cmd.FromWarehouseID,
		ToWarehouseID:   &cmd.ToWarehouseID,
		Quantity:        cmd.Quantity,
		Kind:            stock.MovementTransfer,
		Reference:       cmd.Reference,
		IdempotencyKey:  cmd.IdempotencyKey,
		ActorID:         cmd.ActorID,
	})
	if err != nil {
		return decimal.Zero, err
	}

	source, dest, err := l.lockPair(ctx, repos, cmd.TenantID, cmd.ProductID, cmd.FromWarehouseID, cmd.ToWarehouseID)
	if err != nil {
		return decimal.Zero, err
	}

	cost := source.CostAverage
	if err := source.TransferOut(cmd.Quantity); err != nil {
		return decimal.Zero, err
	}
	if err := dest.TransferIn(cmd.Quantity, cost); err != nil {
		return decimal.Zero, err
	}

	movement.UnitCost = cost
	if err := repos.MovementRepo().Create(ctx, movement); err != nil {
		return decimal.Zero, err
	}
	if err := l.savePosition(ctx, repos, source); err != nil {
		return decimal.Zero, err
	}
	if err := l.savePosition(ctx, repos, dest); err != nil {
		return decimal.Zero, err
	}
	return cost, nil
}

// ApplyTransfer runs ApplyTransferTx in its own transaction.
func (l *Ledger) ApplyTransfer(ctx context.Context, cmd TransferCommand) (decimal.Decimal, error) {
	var cost decimal.Decimal
	err := l.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var txErr error
		cost, txErr = l.ApplyTransferTx(ctx, repos, cmd)
		return txErr
	})
	return cost, err
}

// lockPair locks the source and destination positions in ascending
// warehouse-ID order, then returns them as (source, destination).
func (l *Ledger) lockPair(ctx context.Context, repos TransactionalRepositories, tenantID, productID, fromID, toID uuid.UUID) (*stock.Stock, *stock.Stock, error) {
	firstID, secondID := fromID, toID
	if toID.String() < fromID.String() {
		firstID, secondID = toID, fromID
	}

	first, err := repos.StockRepo().GetOrCreateForUpdate(ctx, tenantID, productID, firstID)
	if err != nil {
		return nil, nil, err
	}
	second, err := repos.StockRepo().GetOrCreateForUpdate(ctx, tenantID, productID, secondID)
	if err != nil {
		return nil, nil, err
	}

	if firstID == fromID {
		return first, second, nil
	}
	return second, first, nil
}

// ReservationCommand earmarks or frees stock for an order.
type ReservationCommand struct {
	TenantID    uuid.UUID
	ProductID   uuid.UUID
	WarehouseID uuid.UUID
	Quantity    int64
}

// ReserveTx earmarks available stock inside the caller's transaction.
// Reservations move no physical stock, so no movement is appended.
func (l *Ledger) ReserveTx(ctx context.Context, repos TransactionalRepositories, cmd ReservationCommand) error {
	pos, err := repos.StockRepo().GetOrCreateForUpdate(ctx, cmd.TenantID, cmd.ProductID, cmd.WarehouseID)
	if err != nil {
		return err
	}
	if err := pos.Reserve(cmd.Quantity); err != nil {
		return err
	}
	return l.savePosition(ctx, repos, pos)
}

// Reserve runs ReserveTx in its own transaction.
func (l *Ledger) Reserve(ctx context.Context, cmd ReservationCommand) error {
	return l.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		return l.ReserveTx(ctx, repos, cmd)
	})
}

// ReleaseTx frees a reservation inside the caller's transaction.
func (l *Ledger) ReleaseTx(ctx context.Context, repos TransactionalRepositories, cmd ReservationCommand) error {
	pos, err := repos.StockRepo().GetOrCreateForUpdate(ctx, cmd.TenantID, cmd.ProductID, cmd.WarehouseID)
	if err != nil {
		return err
	}
	if pos.Reserved < cmd.Quantity {
		l.logger.Warn("releasing more than reserved",
			zap.String("product_id", cmd.ProductID.String()),
			zap.String("warehouse_id", cmd.WarehouseID.String()),
			zap.Int64("reserved", pos.Reserved),
			zap.Int64("quantity", cmd.Quantity))
	}
	if err := pos.Release(cmd.Quantity); err != nil {
		return err
	}
	return l.savePosition(ctx, repos, pos)
}

// Release runs ReleaseTx in its own transaction.
func (l *Ledger) Release(ctx context.Context, cmd ReservationCommand) error {
	return l.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		return l.ReleaseTx(ctx, repos, cmd)
	})
}

// DeductCommand consumes physical stock for a served order line.
type DeductCommand struct {
	TenantID       uuid.UUID
	ActorID        uuid.UUID
	ProductID      uuid.UUID
	WarehouseID    uuid.UUID
	Quantity       int64
	Reference      string
	IdempotencyKey string
}

// DeductTx consumes stock inside the caller's transaction, appending a
// sale movement priced at the position's cost average.
func (l *Ledger) DeductTx(ctx context.Context, repos TransactionalRepositories, cmd DeductCommand) error {
	pos, err := repos.StockRepo().GetOrCreateForUpdate(ctx, cmd.TenantID, cmd.ProductID, cmd.WarehouseID)
	if err != nil {
		return err
	}
	if pos.Reserved < cmd.Quantity {
		l.logger.Warn("deducting beyond reservation",
			zap.String("product_id", cmd.ProductID.String()),
			zap.String("warehouse_id", cmd.WarehouseID.String()),
			zap.Int64("reserved", pos.Reserved),
			zap.Int64("quantity", cmd.Quantity))
	}

	movement, err := stock.NewMovement(cmd.TenantID, stock.MovementSpec{
		ProductID:       cmd.ProductID,
		FromWarehouseID: &cmd.WarehouseID,
		Quantity:        cmd.Quantity,
		UnitCost:        pos.CostAverage,
		Kind:            stock.MovementSale,
		Reference:       cmd.Reference,
		IdempotencyKey:  cmd.IdempotencyKey,
		ActorID:         cmd.ActorID,
	})
	if err != nil {
		return err
	}
	if err := repos.MovementRepo().Create(ctx, movement); err != nil {
		return err
	}
	if err := pos.Deduct(cmd.Quantity); err != nil {
		return err
	}
	return l.savePosition(ctx, repos, pos)
}

// Deduct runs DeductTx in its own transaction.
func (l *Ledger) Deduct(ctx context.Context, cmd DeductCommand) error {
	return l.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		return l.DeductTx(ctx, repos, cmd)
	})
}

// AdjustmentCommand applies a signed correction to one position.
type AdjustmentCommand struct {
	TenantID       uuid.UUID
	ActorID        uuid.UUID
	ProductID      uuid.UUID
	WarehouseID    uuid.UUID
	Delta          int64
	UnitCost       decimal.Decimal
	Reference      string
	Reason         string
	IdempotencyKey string
}

// ApplyAdjustmentTx corrects a position inside the caller's transaction.
// The movement stores the absolute delta; direction is carried by which
// warehouse side is set.
func (l *Ledger) ApplyAdjustmentTx(ctx context.Context, repos TransactionalRepositories, cmd AdjustmentCommand) error {
	if cmd.Delta == 0 {
		return shared.ErrInvalidQuantity
	}

	spec := stock.MovementSpec{
		ProductID:      cmd.ProductID,
		Quantity:       cmd.Delta,
		UnitCost:       cmd.UnitCost,
		Kind:           stock.MovementAdjustment,
		Reference:      cmd.Reference,
		Reason:         cmd.Reason,
		IdempotencyKey: cmd.IdempotencyKey,
		ActorID:        cmd.ActorID,
	}
	if cmd.Delta > 0 {
		spec.ToWarehouseID = &cmd.WarehouseID
	} else {
		spec.Quantity = -cmd.Delta
		spec.FromWarehouseID = &cmd.WarehouseID
	}
	movement, err := stock.NewMovement(cmd.TenantID, spec)
	if err != nil {
		return err
	}
	if err := repos.MovementRepo().Create(ctx, movement); err != nil {
		return err
	}

	pos, err := repos.StockRepo().GetOrCreateForUpdate(ctx, cmd.TenantID, cmd.ProductID, cmd.WarehouseID)
	if err != nil {
		return err
	}
	if err := pos.Adjust(cmd.Delta, cmd.UnitCost); err != nil {
		return err
	}
	return l.savePosition(ctx, repos, pos)
}

// ApplyAdjustment runs ApplyAdjustmentTx in its own transaction.
func (l *Ledger) ApplyAdjustment(ctx context.Context, cmd AdjustmentCommand) error {
	return l.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		return l.ApplyAdjustmentTx(ctx, repos, cmd)
	})
}

// savePosition persists the mutated position with a version check and
// stages its events in the outbox.
func (l *Ledger) savePosition(ctx context.Context, repos TransactionalRepositories, pos *stock.Stock) error {
	if err := repos.StockRepo().SaveWithLock(ctx, pos); err != nil {
		return err
	}
	events := pos.GetDomainEvents()
	if len(events) > 0 {
		if err := repos.SaveEvents(ctx, events...); err != nil {
			return err
		}
		pos.ClearDomainEvents()
	}
	return nil
}

// Position returns the current position for a product in a warehouse.
func (l *Ledger) Position(ctx context.Context, tenantID, productID, warehouseID uuid.UUID) (*stock.Stock, error) {
	return l.stocks.FindByProductAndWarehouse(ctx, tenantID, productID, warehouseID)
}

// WarehousePositions lists the positions held in a warehouse.
func (l *Ledger) WarehousePositions(ctx context.Context, tenantID, warehouseID uuid.UUID, filter shared.Filter) ([]stock.Stock, error) {
	return l.stocks.FindByWarehouse(ctx, tenantID, warehouseID, filter)
}

// WarehouseValue totals the book value of a warehouse.
func (l *Ledger) WarehouseValue(ctx context.Context, tenantID, warehouseID uuid.UUID) (decimal.Decimal, error) {
	return l.stocks.SumValueByWarehouse(ctx, tenantID, warehouseID)
}

// LowPositions lists positions at or under their alert threshold.
func (l *Ledger) LowPositions(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]stock.Stock, error) {
	return l.stocks.FindLow(ctx, tenantID, filter)
}

// MovementsByReference lists the ledger lines of one document.
func (l *Ledger) MovementsByReference(ctx context.Context, tenantID uuid.UUID, reference string) ([]stock.Movement, error) {
	return l.movements.FindByReference(ctx, tenantID, reference)
}

// ProductMovements lists the ledger lines of one product.
func (l *Ledger) ProductMovements(ctx context.Context, tenantID, productID uuid.UUID, filter shared.Filter) ([]stock.Movement, error) {
	return l.movements.FindByProduct(ctx, tenantID, productID, filter)
}
