package persistence

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appstock "github.com/retailops/backend/internal/application/stock"
	"github.com/retailops/backend/internal/domain/shared"
	"github.com/retailops/backend/internal/domain/stock"
	"github.com/retailops/backend/internal/infrastructure/event"
	"github.com/retailops/backend/tests/testutil"
)

func receiptSpec(warehouseID uuid.UUID) stock.MovementSpec {
	return stock.MovementSpec{
		ProductID:      uuid.New(),
		ToWarehouseID:  &warehouseID,
		Quantity:       10,
		UnitCost:       decimal.NewFromInt(300),
		Kind:           stock.MovementPurchase,
		Reference:      "PO-2001",
		IdempotencyKey: "PO-2001:recv:1",
		ActorID:        uuid.New(),
	}
}

func TestGormTransactionScope_Commit(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	scope := NewGormTransactionScope(db, nil)
	ctx := context.Background()

	tenantID := uuid.New()
	warehouseID := uuid.New()
	spec := receiptSpec(warehouseID)

	err := scope.Execute(ctx, func(repos appstock.TransactionalRepositories) error {
		m, err := stock.NewMovement(tenantID, spec)
		if err != nil {
			return err
		}
		if err := repos.MovementRepo().Create(ctx, m); err != nil {
			return err
		}

		s, err := repos.StockRepo().GetOrCreate(ctx, tenantID, spec.ProductID, warehouseID)
		if err != nil {
			return err
		}
		if err := s.Receive(spec.Quantity, spec.UnitCost); err != nil {
			return err
		}
		return repos.StockRepo().SaveWithLock(ctx, s)
	})
	require.NoError(t, err)

	s, err := NewGormStockRepository(db).FindByProductAndWarehouse(ctx, tenantID, spec.ProductID, warehouseID)
	require.NoError(t, err)
	assert.Equal(t, int64(10), s.Quantity)

	m, err := NewGormMovementRepository(db).FindByIdempotencyKey(ctx, tenantID, spec.IdempotencyKey)
	require.NoError(t, err)
	assert.Equal(t, stock.MovementPurchase, m.Kind)
}

func TestGormTransactionScope_RollbackOnError(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	scope := NewGormTransactionScope(db, nil)
	ctx := context.Background()

	tenantID := uuid.New()
	warehouseID := uuid.New()
	spec := receiptSpec(warehouseID)

	boom := errors.New("boom")
	err := scope.Execute(ctx, func(repos appstock.TransactionalRepositories) error {
		m, err := stock.NewMovement(tenantID, spec)
		if err != nil {
			return err
		}
		if err := repos.MovementRepo().Create(ctx, m); err != nil {
			return err
		}
		if _, err := repos.StockRepo().GetOrCreate(ctx, tenantID, spec.ProductID, warehouseID); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	// Nothing written by the failed transaction survives.
	_, err = NewGormMovementRepository(db).FindByIdempotencyKey(ctx, tenantID, spec.IdempotencyKey)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	_, err = NewGormStockRepository(db).FindByProductAndWarehouse(ctx, tenantID, spec.ProductID, warehouseID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormTransactionScope_SaveEvents(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	saver := event.NewOutboxPublisher(event.NewEventSerializer())
	scope := NewGormTransactionScope(db, saver)
	ctx := context.Background()

	tenantID := uuid.New()
	warehouseID := uuid.New()
	spec := receiptSpec(warehouseID)

	err := scope.Execute(ctx, func(repos appstock.TransactionalRepositories) error {
		s, err := repos.StockRepo().GetOrCreate(ctx, tenantID, spec.ProductID, warehouseID)
		if err != nil {
			return err
		}
		if err := s.Receive(spec.Quantity, spec.UnitCost); err != nil {
			return err
		}
		if err := repos.StockRepo().SaveWithLock(ctx, s); err != nil {
			return err
		}
		return repos.SaveEvents(ctx, s.GetDomainEvents()...)
	})
	require.NoError(t, err)

	var entries []shared.OutboxEntry
	require.NoError(t, db.Find(&entries).Error)
	require.Len(t, entries, 1)
	assert.Equal(t, stock.EventTypeStockReceived, entries[0].EventType)
	assert.Equal(t, tenantID, entries[0].TenantID)
	assert.Equal(t, shared.OutboxStatusPending, entries[0].Status)
	assert.NotEmpty(t, entries[0].Payload)
}

func TestGormTransactionScope_SaveEvents_RolledBackWithTransaction(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	saver := event.NewOutboxPublisher(event.NewEventSerializer())
	scope := NewGormTransactionScope(db, saver)
	ctx := context.Background()

	tenantID := uuid.New()
	warehouseID := uuid.New()
	spec := receiptSpec(warehouseID)

	boom := errors.New("boom")
	err := scope.Execute(ctx, func(repos appstock.TransactionalRepositories) error {
		s, err := repos.StockRepo().GetOrCreate(ctx, tenantID, spec.ProductID, warehouseID)
		if err != nil {
			return err
		}
		if err := s.Receive(spec.Quantity, spec.UnitCost); err != nil {
			return err
		}
		if err := repos.SaveEvents(ctx, s.GetDomainEvents()...); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	var count int64
	require.NoError(t, db.Model(&shared.OutboxEntry{}).Count(&count).Error)
	assert.Zero(t, count)
}
