package testutil

import (
	"go.uber.org/zap"

	appstock "github.com/retailops/backend/internal/application/stock"
)

// LedgerEnv bundles the in-memory fakes behind a no-op transaction scope
// plus a ledger wired over them, the usual arrangement of the workflow
// tests.
type LedgerEnv struct {
	Stocks    *FakeStockRepository
	Movements *FakeMovementRepository
	Purchases *FakePurchaseRepository
	Requests  *FakeStockRequestRepository
	Transfers *FakeTransferRepository
	Orders    *FakeOrderRepository
	Scope     *appstock.NoOpTransactionScope
	Ledger    *appstock.Ledger
}

// NewLedgerEnv wires a fresh environment.
func NewLedgerEnv() *LedgerEnv {
	env := &LedgerEnv{
		Stocks:    NewFakeStockRepository(),
		Movements: NewFakeMovementRepository(),
		Purchases: NewFakePurchaseRepository(),
		Requests:  NewFakeStockRequestRepository(),
		Transfers: NewFakeTransferRepository(),
		Orders:    NewFakeOrderRepository(),
	}
	env.Scope = &appstock.NoOpTransactionScope{
		Stocks:    env.Stocks,
		Movements: env.Movements,
		Purchases: env.Purchases,
		Requests:  env.Requests,
		Transfers: env.Transfers,
		Orders:    env.Orders,
	}
	env.Ledger = appstock.NewLedger(env.Scope, env.Stocks, env.Movements, zap.NewNop())
	return env
}
