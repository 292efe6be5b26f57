package shared

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultFilter(t *testing.T) {
	f := DefaultFilter()

	assert.Equal(t, 1, f.Page)
	assert.Equal(t, 20, f.PageSize)
	assert.Equal(t, "created_at", f.OrderBy)
	assert.Equal(t, "desc", f.OrderDir)
	assert.NotNil(t, f.Filters)
}

func TestNewPaginated(t *testing.T) {
	tests := []struct {
		name       string
		total      int64
		page       int
		pageSize   int
		totalPages int
	}{
		{"exact pages", 40, 1, 20, 2},
		{"partial last page", 41, 1, 20, 3},
		{"empty", 0, 1, 20, 0},
		{"single short page", 5, 1, 20, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPaginated([]string{}, tt.total, tt.page, tt.pageSize)
			assert.Equal(t, tt.total, p.Total)
			assert.Equal(t, tt.totalPages, p.TotalPages)
			assert.Equal(t, tt.page, p.Page)
		})
	}
}
