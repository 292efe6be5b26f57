package warehouse

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retailops/backend/internal/domain/shared"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		input   string
		want    Kind
		wantErr bool
	}{
		{"wholesale", KindWholesale, false},
		{"retail", KindRetail, false},
		{"pos", KindPos, false},
		{"POS", KindPos, false},
		{"Retail", KindRetail, false},
		{"depot", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseKind(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, shared.ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewWarehouse(t *testing.T) {
	tenantID := uuid.New()

	w, err := NewWarehouse(tenantID, "WH-MAIN", "Main depot", KindWholesale)
	require.NoError(t, err)
	assert.Equal(t, tenantID, w.TenantID)
	assert.Equal(t, "WH-MAIN", w.Code)
	assert.True(t, w.IsActive)
}

func TestNewWarehouse_Validation(t *testing.T) {
	_, err := NewWarehouse(uuid.New(), "", "Main depot", KindWholesale)
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	_, err = NewWarehouse(uuid.New(), "WH-MAIN", "", KindWholesale)
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	_, err = NewWarehouse(uuid.New(), "WH-MAIN", "Main depot", Kind("depot"))
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestWarehouse_ActivateDeactivate(t *testing.T) {
	w, err := NewWarehouse(uuid.New(), "POS-01", "Counter one", KindPos)
	require.NoError(t, err)

	w.Deactivate()
	assert.False(t, w.IsActive)

	w.Activate()
	assert.True(t, w.IsActive)
}
