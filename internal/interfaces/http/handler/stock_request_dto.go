package handler

import (
	"time"

	"github.com/google/uuid"

	"github.com/retailops/backend/internal/domain/replenishment"
)

// RequestLineRequest is one requested line.
type RequestLineRequest struct {
	ProductID string `json:"product_id" binding:"required,uuid"`
	Quantity  int64  `json:"quantity" binding:"required,gt=0"`
}

// CreateStockRequestRequest opens a replenishment request. The from
// warehouse is the requesting location, the to warehouse the sourcing one.
type CreateStockRequestRequest struct {
	FromWarehouseID string               `json:"from_warehouse_id" binding:"required,uuid"`
	ToWarehouseID   string               `json:"to_warehouse_id" binding:"required,uuid"`
	Priority        string               `json:"priority" binding:"omitempty,oneof=low normal high urgent"`
	NeededBy        *time.Time           `json:"needed_by"`
	Submit          bool                 `json:"submit"`
	Lines           []RequestLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// ApprovalLineRequest grants a quantity to one request item. Items absent
// from the approval are granted in full.
type ApprovalLineRequest struct {
	ItemID   string `json:"item_id" binding:"required,uuid"`
	Quantity int64  `json:"quantity" binding:"min=0"`
}

// ApproveStockRequestRequest approves a submitted request.
type ApproveStockRequestRequest struct {
	Approvals []ApprovalLineRequest `json:"approvals" binding:"omitempty,dive"`
}

// RejectStockRequestRequest rejects a submitted request.
type RejectStockRequestRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

// StockRequestItemResponse is the API shape of a requested line.
type StockRequestItemResponse struct {
	ID                uuid.UUID `json:"id"`
	ProductID         uuid.UUID `json:"product_id"`
	QuantityRequested int64     `json:"quantity_requested"`
	QuantityApproved  int64     `json:"quantity_approved"`
}

// StockRequestResponse is the API shape of a replenishment request.
type StockRequestResponse struct {
	ID              uuid.UUID                  `json:"id"`
	Reference       string                     `json:"reference"`
	FromWarehouseID uuid.UUID                  `json:"from_warehouse_id"`
	ToWarehouseID   uuid.UUID                  `json:"to_warehouse_id"`
	Status          string                     `json:"status"`
	Priority        string                     `json:"priority"`
	NeededBy        *time.Time                 `json:"needed_by,omitempty"`
	RejectionReason string                     `json:"rejection_reason,omitempty"`
	RequestedAt     *time.Time                 `json:"requested_at,omitempty"`
	DecidedAt       *time.Time                 `json:"decided_at,omitempty"`
	DecidedBy       *uuid.UUID                 `json:"decided_by,omitempty"`
	Items           []StockRequestItemResponse `json:"items"`
	CreatedAt       time.Time                  `json:"created_at"`
	UpdatedAt       time.Time                  `json:"updated_at"`
}

func toStockRequestResponse(r *replenishment.StockRequest) StockRequestResponse {
	items := make([]StockRequestItemResponse, 0, len(r.Items))
	for i := range r.Items {
		item := &r.Items[i]
		items = append(items, StockRequestItemResponse{
			ID:                item.ID,
			ProductID:         item.ProductID,
			QuantityRequested: item.QuantityRequested,
			QuantityApproved:  item.QuantityApproved,
		})
	}
	return StockRequestResponse{
		ID:              r.ID,
		Reference:       r.Reference,
		FromWarehouseID: r.FromWarehouseID,
		ToWarehouseID:   r.ToWarehouseID,
		Status:          string(r.Status),
		Priority:        string(r.Priority),
		NeededBy:        r.NeededBy,
		RejectionReason: r.RejectionReason,
		RequestedAt:     r.RequestedAt,
		DecidedAt:       r.DecidedAt,
		DecidedBy:       r.DecidedBy,
		Items:           items,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

func toStockRequestResponses(items []replenishment.StockRequest) []StockRequestResponse {
	out := make([]StockRequestResponse, 0, len(items))
	for i := range items {
		out = append(out, toStockRequestResponse(&items[i]))
	}
	return out
}

// ApprovedRequestResponse couples the approved request with the transfer
// that moved the stock.
type ApprovedRequestResponse struct {
	Request  StockRequestResponse `json:"request"`
	Transfer TransferResponse     `json:"transfer"`
}
