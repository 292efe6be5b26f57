// Package testutil provides shared helpers for the backend test suites:
// mock databases, in-memory repository fakes and event capture.
package testutil

import (
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/retailops/backend/internal/domain/fulfillment"
	"github.com/retailops/backend/internal/domain/procurement"
	"github.com/retailops/backend/internal/domain/replenishment"
	"github.com/retailops/backend/internal/domain/shared"
	"github.com/retailops/backend/internal/domain/stock"
	"github.com/retailops/backend/internal/domain/warehouse"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// MockDB wraps a GORM database over sqlmock for tests that assert on the
// exact SQL issued.
type MockDB struct {
	DB    *gorm.DB
	Mock  sqlmock.Sqlmock
	SqlDB *sql.DB
}

// NewMockDB creates a mock database. The caller closes it when done.
func NewMockDB(t *testing.T) *MockDB {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err, "create sqlmock")

	dialector := postgres.New(postgres.Config{
		Conn:       sqlDB,
		DriverName: "postgres",
	})
	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err, "open gorm over sqlmock")

	return &MockDB{DB: gormDB, Mock: mock, SqlDB: sqlDB}
}

// Close closes the underlying connection.
func (m *MockDB) Close() error {
	return m.SqlDB.Close()
}

// ExpectationsWereMet verifies that all SQL expectations were met.
func (m *MockDB) ExpectationsWereMet(t *testing.T) {
	t.Helper()
	require.NoError(t, m.Mock.ExpectationsWereMet(), "unmet database expectations")
}

// NewSQLiteDB opens an in-memory SQLite database with the full schema
// migrated, for repository tests that need real SQL semantics.
func NewSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()

	// One shared-cache memory database per test, so the pool's connections
	// see the same data without leaking across tests.
	dsn := "file:" + t.Name() + "?mode=memory&cache=shared&_fk=1"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err, "open in-memory sqlite")

	err = db.AutoMigrate(
		&warehouse.Warehouse{},
		&stock.Stock{},
		&stock.Movement{},
		&procurement.Purchase{},
		&procurement.PurchaseItem{},
		&replenishment.StockRequest{},
		&replenishment.StockRequestItem{},
		&replenishment.Transfer{},
		&replenishment.TransferItem{},
		&fulfillment.Order{},
		&fulfillment.OrderItem{},
		&shared.OutboxEntry{},
	)
	require.NoError(t, err, "migrate schema")

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}
