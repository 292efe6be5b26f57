package persistence

import (
	"context"

	"gorm.io/gorm"

	appstock "github.com/retailops/backend/internal/application/stock"
	"github.com/retailops/backend/internal/domain/fulfillment"
	"github.com/retailops/backend/internal/domain/procurement"
	"github.com/retailops/backend/internal/domain/replenishment"
	"github.com/retailops/backend/internal/domain/shared"
	"github.com/retailops/backend/internal/domain/stock"
)

// GormTransactionScope implements the application TransactionScope on
// GORM transactions. Repositories handed to the closure share the
// transaction, and SaveEvents stages outbox entries in it as well.
type GormTransactionScope struct {
	db    *gorm.DB
	saver shared.OutboxEventSaver
}

// NewGormTransactionScope creates a scope over the given database. The
// saver writes domain events to the outbox inside each transaction.
func NewGormTransactionScope(db *gorm.DB, saver shared.OutboxEventSaver) *GormTransactionScope {
	return &GormTransactionScope{db: db, saver: saver}
}

// Execute runs fn inside one transaction, rolling back on error.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appstock.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx, saver: s.saver})
	})
}

type gormTransactionalRepositories struct {
	tx    *gorm.DB
	saver shared.OutboxEventSaver
}

func (r *gormTransactionalRepositories) StockRepo() stock.StockRepository {
	return NewGormStockRepository(r.tx)
}

func (r *gormTransactionalRepositories) MovementRepo() stock.MovementRepository {
	return NewGormMovementRepository(r.tx)
}

func (r *gormTransactionalRepositories) PurchaseRepo() procurement.PurchaseRepository {
	return NewGormPurchaseRepository(r.tx)
}

func (r *gormTransactionalRepositories) RequestRepo() replenishment.StockRequestRepository {
	return NewGormStockRequestRepository(r.tx)
}

func (r *gormTransactionalRepositories) TransferRepo() replenishment.TransferRepository {
	return NewGormTransferRepository(r.tx)
}

func (r *gormTransactionalRepositories) OrderRepo() fulfillment.OrderRepository {
	return NewGormOrderRepository(r.tx)
}

// SaveEvents stages domain events in the outbox within the transaction.
func (r *gormTransactionalRepositories) SaveEvents(ctx context.Context, events ...shared.DomainEvent) error {
	if r.saver == nil || len(events) == 0 {
		return nil
	}
	return r.saver.SaveEvents(ctx, r.tx, events...)
}

var (
	_ appstock.TransactionScope          = (*GormTransactionScope)(nil)
	_ appstock.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
)
