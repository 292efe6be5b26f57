package handler

import (
	"time"

	"github.com/google/uuid"

	"github.com/retailops/backend/internal/domain/stock"
)

// StockResponse is the API shape of a stock position.
type StockResponse struct {
	ID            uuid.UUID  `json:"id"`
	ProductID     uuid.UUID  `json:"product_id"`
	WarehouseID   uuid.UUID  `json:"warehouse_id"`
	Quantity      int64      `json:"quantity"`
	Reserved      int64      `json:"reserved"`
	Available     int64      `json:"available"`
	CostAverage   string     `json:"cost_average"`
	LastUnitCost  string     `json:"last_unit_cost"`
	AlertQuantity int64      `json:"alert_quantity"`
	LastCountedAt *time.Time `json:"last_counted_at,omitempty"`
	Version       int        `json:"version"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func toStockResponse(s *stock.Stock) StockResponse {
	return StockResponse{
		ID:            s.ID,
		ProductID:     s.ProductID,
		WarehouseID:   s.WarehouseID,
		Quantity:      s.Quantity,
		Reserved:      s.Reserved,
		Available:     s.Available,
		CostAverage:   s.CostAverage.String(),
		LastUnitCost:  s.LastUnitCost.String(),
		AlertQuantity: s.AlertQuantity,
		LastCountedAt: s.LastCountedAt,
		Version:       s.Version,
		UpdatedAt:     s.UpdatedAt,
	}
}

func toStockResponses(positions []stock.Stock) []StockResponse {
	out := make([]StockResponse, 0, len(positions))
	for i := range positions {
		out = append(out, toStockResponse(&positions[i]))
	}
	return out
}

// MovementResponse is the API shape of a ledger movement.
type MovementResponse struct {
	ID              uuid.UUID  `json:"id"`
	ProductID       uuid.UUID  `json:"product_id"`
	FromWarehouseID *uuid.UUID `json:"from_warehouse_id,omitempty"`
	ToWarehouseID   *uuid.UUID `json:"to_warehouse_id,omitempty"`
	Quantity        int64      `json:"quantity"`
	UnitCost        string     `json:"unit_cost"`
	Kind            string     `json:"kind"`
	Reference       string     `json:"reference"`
	Reason          string     `json:"reason,omitempty"`
	ActorID         uuid.UUID  `json:"actor_id"`
	OccurredAt      time.Time  `json:"occurred_at"`
}

func toMovementResponse(m *stock.Movement) MovementResponse {
	return MovementResponse{
		ID:              m.ID,
		ProductID:       m.ProductID,
		FromWarehouseID: m.FromWarehouseID,
		ToWarehouseID:   m.ToWarehouseID,
		Quantity:        m.Quantity,
		UnitCost:        m.UnitCost.String(),
		Kind:            string(m.Kind),
		Reference:       m.Reference,
		Reason:          m.Reason,
		ActorID:         m.ActorID,
		OccurredAt:      m.OccurredAt,
	}
}

func toMovementResponses(movements []stock.Movement) []MovementResponse {
	out := make([]MovementResponse, 0, len(movements))
	for i := range movements {
		out = append(out, toMovementResponse(&movements[i]))
	}
	return out
}

// ReceiptRequest books a direct goods receipt into a warehouse.
type ReceiptRequest struct {
	ProductID      string `json:"product_id" binding:"required,uuid"`
	WarehouseID    string `json:"warehouse_id" binding:"required,uuid"`
	Quantity       int64  `json:"quantity" binding:"required,gt=0"`
	UnitCost       string `json:"unit_cost" binding:"required"`
	Kind           string `json:"kind" binding:"omitempty,oneof=purchase return"`
	Reference      string `json:"reference" binding:"required,max=64"`
	IdempotencyKey string `json:"idempotency_key" binding:"required,max=128"`
}

// AdjustmentRequest corrects a stock position.
type AdjustmentRequest struct {
	ProductID      string `json:"product_id" binding:"required,uuid"`
	WarehouseID    string `json:"warehouse_id" binding:"required,uuid"`
	Delta          int64  `json:"delta" binding:"required"`
	UnitCost       string `json:"unit_cost"`
	Reference      string `json:"reference" binding:"required,max=64"`
	Reason         string `json:"reason" binding:"required,max=255"`
	IdempotencyKey string `json:"idempotency_key" binding:"required,max=128"`
}
