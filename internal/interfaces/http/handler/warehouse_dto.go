package handler

import (
	"time"

	"github.com/google/uuid"

	"github.com/retailops/backend/internal/domain/warehouse"
)

// CreateWarehouseRequest registers a warehouse.
type CreateWarehouseRequest struct {
	Code    string `json:"code" binding:"required,max=32"`
	Name    string `json:"name" binding:"required,max=255"`
	Kind    string `json:"kind" binding:"required,oneof=wholesale retail pos"`
	Address string `json:"address" binding:"max=500"`
}

// WarehouseResponse is the API shape of a warehouse.
type WarehouseResponse struct {
	ID        uuid.UUID `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Kind      string    `json:"kind"`
	Address   string    `json:"address,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toWarehouseResponse(w *warehouse.Warehouse) WarehouseResponse {
	return WarehouseResponse{
		ID:        w.ID,
		Code:      w.Code,
		Name:      w.Name,
		Kind:      string(w.Kind),
		Address:   w.Address,
		IsActive:  w.IsActive,
		CreatedAt: w.CreatedAt,
		UpdatedAt: w.UpdatedAt,
	}
}

func toWarehouseResponses(items []warehouse.Warehouse) []WarehouseResponse {
	out := make([]WarehouseResponse, 0, len(items))
	for i := range items {
		out = append(out, toWarehouseResponse(&items[i]))
	}
	return out
}

// WarehouseValueResponse is the aggregated stock value of a warehouse.
type WarehouseValueResponse struct {
	WarehouseID uuid.UUID `json:"warehouse_id"`
	StockValue  string    `json:"stock_value"`
}
