package handler

import (
	"time"

	"github.com/google/uuid"

	"github.com/retailops/backend/internal/domain/fulfillment"
)

// OrderLineRequest is one ordered line.
type OrderLineRequest struct {
	ProductID string `json:"product_id" binding:"required,uuid"`
	Quantity  int64  `json:"quantity" binding:"required,gt=0"`
	UnitPrice string `json:"unit_price" binding:"required"`
}

// CreateOrderRequest opens a point-of-sale order, reserving every line.
type CreateOrderRequest struct {
	WarehouseID string             `json:"warehouse_id" binding:"required,uuid"`
	TableNumber string             `json:"table_number" binding:"max=16"`
	Lines       []OrderLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// ServeOrderLineRequest records a served quantity against one line.
type ServeOrderLineRequest struct {
	ItemID   string `json:"item_id" binding:"required,uuid"`
	Quantity int64  `json:"quantity" binding:"required,gt=0"`
}

// ServeOrderRequest records served quantities. The serving reference is
// the idempotency key of the deductions.
type ServeOrderRequest struct {
	ServingReference string                  `json:"serving_reference" binding:"required,max=64"`
	Lines            []ServeOrderLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// OrderItemResponse is the API shape of an order line.
type OrderItemResponse struct {
	ID              uuid.UUID `json:"id"`
	ProductID       uuid.UUID `json:"product_id"`
	QuantityOrdered int64     `json:"quantity_ordered"`
	QuantityServed  int64     `json:"quantity_served"`
	UnitPrice       string    `json:"unit_price"`
	LineTotal       string    `json:"line_total"`
}

// OrderResponse is the API shape of a point-of-sale order.
type OrderResponse struct {
	ID          uuid.UUID           `json:"id"`
	Reference   string              `json:"reference"`
	WarehouseID uuid.UUID           `json:"warehouse_id"`
	Status      string              `json:"status"`
	Paid        bool                `json:"paid"`
	TableNumber string              `json:"table_number,omitempty"`
	Total       string              `json:"total"`
	ServedAt    *time.Time          `json:"served_at,omitempty"`
	ValidatedAt *time.Time          `json:"validated_at,omitempty"`
	Items       []OrderItemResponse `json:"items"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

func toOrderResponse(o *fulfillment.Order) OrderResponse {
	items := make([]OrderItemResponse, 0, len(o.Items))
	for i := range o.Items {
		item := &o.Items[i]
		items = append(items, OrderItemResponse{
			ID:              item.ID,
			ProductID:       item.ProductID,
			QuantityOrdered: item.QuantityOrdered,
			QuantityServed:  item.QuantityServed,
			UnitPrice:       item.UnitPrice.String(),
			LineTotal:       item.LineTotal().String(),
		})
	}
	return OrderResponse{
		ID:          o.ID,
		Reference:   o.Reference,
		WarehouseID: o.WarehouseID,
		Status:      string(o.Status),
		Paid:        o.Paid,
		TableNumber: o.TableNumber,
		Total:       o.Total().String(),
		ServedAt:    o.ServedAt,
		ValidatedAt: o.ValidatedAt,
		Items:       items,
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
	}
}

func toOrderResponses(items []fulfillment.Order) []OrderResponse {
	out := make([]OrderResponse, 0, len(items))
	for i := range items {
		out = append(out, toOrderResponse(&items[i]))
	}
	return out
}
