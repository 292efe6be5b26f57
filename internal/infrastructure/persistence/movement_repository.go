package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/retailops/backend/internal/domain/shared"
	"github.com/retailops/backend/internal/domain/stock"
)

// GormMovementRepository implements stock.MovementRepository on GORM.
// The ledger table is append-only; the repository exposes no update or
// delete.
type GormMovementRepository struct {
	db *gorm.DB
}

// NewGormMovementRepository creates a repository bound to the given handle.
func NewGormMovementRepository(db *gorm.DB) *GormMovementRepository {
	return &GormMovementRepository{db: db}
}

// Create appends one movement. A replayed idempotency key trips the
// unique index on (tenant_id, idempotency_key) and surfaces as
// shared.ErrAlreadyReceived.
func (r *GormMovementRepository) Create(ctx context.Context, m *stock.Movement) error {
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		if isUniqueViolation(err) {
			return shared.ErrAlreadyReceived.WithMessage(
				"movement with idempotency key " + m.IdempotencyKey + " was already recorded")
		}
		return err
	}
	return nil
}

// CreateBatch appends several movements atomically.
func (r *GormMovementRepository) CreateBatch(ctx context.Context, ms []*stock.Movement) error {
	if len(ms) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Create(ms).Error; err != nil {
		if isUniqueViolation(err) {
			return shared.ErrAlreadyReceived
		}
		return err
	}
	return nil
}

// FindByID finds a movement by its ID.
func (r *GormMovementRepository) FindByID(ctx context.Context, id uuid.UUID) (*stock.Movement, error) {
	var m stock.Movement
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return &m, nil
}

// FindByReference lists movements sharing a document reference.
func (r *GormMovementRepository) FindByReference(ctx context.Context, tenantID uuid.UUID, reference string) ([]stock.Movement, error) {
	var ms []stock.Movement
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND reference = ?", tenantID, reference).
		Order("occurred_at ASC").
		Find(&ms).Error; err != nil {
		return nil, err
	}
	return ms, nil
}

// FindByIdempotencyKey finds the movement recorded under a key, if any.
func (r *GormMovementRepository) FindByIdempotencyKey(ctx context.Context, tenantID uuid.UUID, key string) (*stock.Movement, error) {
	var m stock.Movement
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND idempotency_key = ?", tenantID, key).
		First(&m).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return &m, nil
}

// FindByProduct lists movements for a product.
func (r *GormMovementRepository) FindByProduct(ctx context.Context, tenantID, productID uuid.UUID, filter shared.Filter) ([]stock.Movement, error) {
	var ms []stock.Movement
	query := applyFilter(
		r.db.WithContext(ctx).Model(&stock.Movement{}).
			Where("tenant_id = ? AND product_id = ?", tenantID, productID),
		filter, movementSortFields,
	)
	if err := query.Find(&ms).Error; err != nil {
		return nil, err
	}
	return ms, nil
}

// FindByWarehouse lists movements touching a warehouse on either side.
func (r *GormMovementRepository) FindByWarehouse(ctx context.Context, tenantID, warehouseID uuid.UUID, filter shared.Filter) ([]stock.Movement, error) {
	var ms []stock.Movement
	query := applyFilter(
		r.db.WithContext(ctx).Model(&stock.Movement{}).
			Where("tenant_id = ? AND (from_warehouse_id = ? OR to_warehouse_id = ?)", tenantID, warehouseID, warehouseID),
		filter, movementSortFields,
	)
	if err := query.Find(&ms).Error; err != nil {
		return nil, err
	}
	return ms, nil
}

// FindForTenant lists movements for a tenant.
func (r *GormMovementRepository) FindForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]stock.Movement, error) {
	var ms []stock.Movement
	query := applyFilter(
		r.db.WithContext(ctx).Model(&stock.Movement{}).
			Where("tenant_id = ?", tenantID),
		filter, movementSortFields,
	)
	if err := query.Find(&ms).Error; err != nil {
		return nil, err
	}
	return ms, nil
}

// SumByKindAndDateRange sums moved quantity per kind over a period.
func (r *GormMovementRepository) SumByKindAndDateRange(ctx context.Context, tenantID uuid.UUID, kind stock.MovementKind, start, end time.Time) (int64, error) {
	var row struct {
		Total int64
	}
	if err := r.db.WithContext(ctx).
		Model(&stock.Movement{}).
		Select("COALESCE(SUM(quantity), 0) as total").
		Where("tenant_id = ? AND kind = ? AND occurred_at >= ? AND occurred_at < ?", tenantID, kind, start, end).
		Scan(&row).Error; err != nil {
		return 0, err
	}
	return row.Total, nil
}

// CountForTenant counts movements for a tenant.
func (r *GormMovementRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&stock.Movement{}).
		Where("tenant_id = ?", tenantID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// isUniqueViolation detects a unique-constraint violation across the
// drivers in use: the translated GORM error, the raw PostgreSQL 23505,
// and the SQLite message used by tests.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

var _ stock.MovementRepository = (*GormMovementRepository)(nil)
