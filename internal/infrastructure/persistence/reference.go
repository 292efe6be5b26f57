package persistence

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// nextReference allocates the next document reference of the form
// <prefix>-YYYYMMDD-NNNN, where NNNN restarts at 0001 each day per
// tenant. Callers run inside a transaction; the unique index on
// (tenant_id, reference) catches the rare concurrent allocation and
// the request is retried by the client.
func nextReference(ctx context.Context, db *gorm.DB, table, prefix string, tenantID uuid.UUID) (string, error) {
	datePart := time.Now().Format("20060102")
	pattern := fmt.Sprintf("%s-%s-%%", prefix, datePart)

	var last string
	err := db.WithContext(ctx).
		Table(table).
		Select("reference").
		Where("tenant_id = ? AND reference LIKE ?", tenantID, pattern).
		Order("reference DESC").
		Limit(1).
		Scan(&last).Error
	if err != nil {
		return "", fmt.Errorf("find last reference: %w", err)
	}

	seq := 1
	if last != "" {
		parts := strings.Split(last, "-")
		if n, err := strconv.Atoi(parts[len(parts)-1]); err == nil {
			seq = n + 1
		}
	}

	return fmt.Sprintf("%s-%s-%04d", prefix, datePart, seq), nil
}
