package stock

import (
	"context"

	"github.com/retailops/backend/internal/domain/fulfillment"
	"github.com/retailops/backend/internal/domain/procurement"
	"github.com/retailops/backend/internal/domain/replenishment"
	"github.com/retailops/backend/internal/domain/shared"
	"github.com/retailops/backend/internal/domain/stock"
)

// TransactionScope runs a closure inside one database transaction. Every
// repository obtained from the TransactionalRepositories argument shares
// that transaction, so ledger mutations, document updates and outbox
// writes commit or roll back together.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories hands out transaction-bound repositories plus
// the outbox writer for the same transaction.
type TransactionalRepositories interface {
	StockRepo() stock.StockRepository
	MovementRepo() stock.MovementRepository
	PurchaseRepo() procurement.PurchaseRepository
	RequestRepo() replenishment.StockRequestRepository
	TransferRepo() replenishment.TransferRepository
	OrderRepo() fulfillment.OrderRepository

	// SaveEvents stages domain events in the outbox within the transaction.
	SaveEvents(ctx context.Context, events ...shared.DomainEvent) error
}

// NoOpTransactionScope wires repositories without real transactions, for
// tests running against in-memory fakes.
type NoOpTransactionScope struct {
	Stocks    stock.StockRepository
	Movements stock.MovementRepository
	Purchases procurement.PurchaseRepository
	Requests  replenishment.StockRequestRepository
	Transfers replenishment.TransferRepository
	Orders    fulfillment.OrderRepository
	Events    []shared.DomainEvent
}

// Execute runs the closure directly against the wired repositories.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

func (s *NoOpTransactionScope) StockRepo() stock.StockRepository                { return s.Stocks }
func (s *NoOpTransactionScope) MovementRepo() stock.MovementRepository          { return s.Movements }
func (s *NoOpTransactionScope) PurchaseRepo() procurement.PurchaseRepository    { return s.Purchases }
func (s *NoOpTransactionScope) RequestRepo() replenishment.StockRequestRepository {
	return s.Requests
}
func (s *NoOpTransactionScope) TransferRepo() replenishment.TransferRepository { return s.Transfers }
func (s *NoOpTransactionScope) OrderRepo() fulfillment.OrderRepository         { return s.Orders }

// SaveEvents collects events in memory so tests can assert on them.
func (s *NoOpTransactionScope) SaveEvents(_ context.Context, events ...shared.DomainEvent) error {
	s.Events = append(s.Events, events...)
	return nil
}

var (
	_ TransactionScope          = (*NoOpTransactionScope)(nil)
	_ TransactionalRepositories = (*NoOpTransactionScope)(nil)
)
