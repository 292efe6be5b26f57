package persistence

import (
	"strings"

	"gorm.io/gorm"

	"github.com/retailops/backend/internal/domain/shared"
)

// sortFields whitelists the columns each table may be ordered by.
// Anything outside the whitelist falls back to created_at.
var (
	stockSortFields = map[string]bool{
		"id": true, "created_at": true, "updated_at": true,
		"product_id": true, "warehouse_id": true,
		"quantity": true, "reserved": true, "available": true,
		"cost_average": true, "alert_quantity": true,
	}
	movementSortFields = map[string]bool{
		"id": true, "created_at": true, "occurred_at": true,
		"product_id": true, "kind": true, "quantity": true, "reference": true,
	}
	documentSortFields = map[string]bool{
		"id": true, "created_at": true, "updated_at": true,
		"reference": true, "status": true,
	}
	warehouseSortFields = map[string]bool{
		"id": true, "created_at": true, "updated_at": true,
		"code": true, "name": true, "kind": true, "is_active": true,
	}
)

func normalizeSortDir(dir string) string {
	if strings.EqualFold(strings.TrimSpace(dir), "asc") {
		return "ASC"
	}
	return "DESC"
}

func normalizeSortField(field string, allowed map[string]bool) string {
	field = strings.TrimSpace(field)
	if field == "" || !allowed[field] {
		return "created_at"
	}
	return field
}

// applyFilter adds ordering and pagination to a query. The sort column
// is validated against the whitelist to keep user input out of SQL.
func applyFilter(query *gorm.DB, filter shared.Filter, allowed map[string]bool) *gorm.DB {
	query = query.Order(normalizeSortField(filter.OrderBy, allowed) + " " + normalizeSortDir(filter.OrderDir))

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}
	return query
}
