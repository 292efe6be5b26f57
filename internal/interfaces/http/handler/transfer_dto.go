package handler

import (
	"time"

	"github.com/google/uuid"

	"github.com/retailops/backend/internal/domain/replenishment"
)

// TransferLineRequest is one transferred line.
type TransferLineRequest struct {
	ProductID string `json:"product_id" binding:"required,uuid"`
	Quantity  int64  `json:"quantity" binding:"required,gt=0"`
}

// CreateTransferRequest opens a manual transfer between warehouses.
type CreateTransferRequest struct {
	FromWarehouseID string                `json:"from_warehouse_id" binding:"required,uuid"`
	ToWarehouseID   string                `json:"to_warehouse_id" binding:"required,uuid"`
	Lines           []TransferLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// ReceiveTransferLineRequest records the arrived quantity of one line.
type ReceiveTransferLineRequest struct {
	ItemID   string `json:"item_id" binding:"required,uuid"`
	Quantity int64  `json:"quantity" binding:"min=0"`
}

// ReceiveTransferRequest records arrival at the destination. Lines absent
// from the list are considered received in full.
type ReceiveTransferRequest struct {
	Lines []ReceiveTransferLineRequest `json:"lines" binding:"omitempty,dive"`
}

// CancelTransferRequest voids a pending transfer.
type CancelTransferRequest struct {
	Note string `json:"note" binding:"max=500"`
}

// TransferItemResponse is the API shape of a transferred line.
type TransferItemResponse struct {
	ID               uuid.UUID `json:"id"`
	ProductID        uuid.UUID `json:"product_id"`
	Quantity         int64     `json:"quantity"`
	QuantityReceived int64     `json:"quantity_received"`
	UnitCost         string    `json:"unit_cost"`
}

// TransferResponse is the API shape of a transfer.
type TransferResponse struct {
	ID               uuid.UUID              `json:"id"`
	Reference        string                 `json:"reference"`
	FromWarehouseID  uuid.UUID              `json:"from_warehouse_id"`
	ToWarehouseID    uuid.UUID              `json:"to_warehouse_id"`
	Status           string                 `json:"status"`
	StockRequestID   *uuid.UUID             `json:"stock_request_id,omitempty"`
	ApprovedBy       *uuid.UUID             `json:"approved_by,omitempty"`
	ApprovedAt       *time.Time             `json:"approved_at,omitempty"`
	ExecutedBy       *uuid.UUID             `json:"executed_by,omitempty"`
	ExecutedAt       *time.Time             `json:"executed_at,omitempty"`
	ReceivedBy       *uuid.UUID             `json:"received_by,omitempty"`
	ReceivedAt       *time.Time             `json:"received_at,omitempty"`
	ValidatedBy      *uuid.UUID             `json:"validated_by,omitempty"`
	ValidatedAt      *time.Time             `json:"validated_at,omitempty"`
	CancellationNote string                 `json:"cancellation_note,omitempty"`
	Items            []TransferItemResponse `json:"items"`
	CreatedAt        time.Time              `json:"created_at"`
	UpdatedAt        time.Time              `json:"updated_at"`
}

func toTransferResponse(t *replenishment.Transfer) TransferResponse {
	items := make([]TransferItemResponse, 0, len(t.Items))
	for i := range t.Items {
		item := &t.Items[i]
		items = append(items, TransferItemResponse{
			ID:               item.ID,
			ProductID:        item.ProductID,
			Quantity:         item.Quantity,
			QuantityReceived: item.QuantityReceived,
			UnitCost:         item.UnitCost.String(),
		})
	}
	return TransferResponse{
		ID:               t.ID,
		Reference:        t.Reference,
		FromWarehouseID:  t.FromWarehouseID,
		ToWarehouseID:    t.ToWarehouseID,
		Status:           string(t.Status),
		StockRequestID:   t.StockRequestID,
		ApprovedBy:       t.ApprovedBy,
		ApprovedAt:       t.ApprovedAt,
		ExecutedBy:       t.ExecutedBy,
		ExecutedAt:       t.ExecutedAt,
		ReceivedBy:       t.ReceivedBy,
		ReceivedAt:       t.ReceivedAt,
		ValidatedBy:      t.ValidatedBy,
		ValidatedAt:      t.ValidatedAt,
		CancellationNote: t.CancellationNote,
		Items:            items,
		CreatedAt:        t.CreatedAt,
		UpdatedAt:        t.UpdatedAt,
	}
}

func toTransferResponses(items []replenishment.Transfer) []TransferResponse {
	out := make([]TransferResponse, 0, len(items))
	for i := range items {
		out = append(out, toTransferResponse(&items[i]))
	}
	return out
}
