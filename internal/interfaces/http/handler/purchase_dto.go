package handler

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/retailops/backend/internal/domain/procurement"
	"github.com/retailops/backend/internal/domain/shared"
)

// PurchaseLineRequest is one ordered line.
type PurchaseLineRequest struct {
	ProductID string `json:"product_id" binding:"required,uuid"`
	Quantity  int64  `json:"quantity" binding:"required,gt=0"`
	UnitCost  string `json:"unit_cost" binding:"required"`
}

// CreatePurchaseRequest opens a purchase order.
type CreatePurchaseRequest struct {
	SupplierID  string                `json:"supplier_id" binding:"required,uuid"`
	WarehouseID string                `json:"warehouse_id" binding:"required,uuid"`
	Notes       string                `json:"notes" binding:"max=1000"`
	Submit      bool                  `json:"submit"`
	Lines       []PurchaseLineRequest `json:"lines" binding:"required,min=1,dive"`
}

func (r *CreatePurchaseRequest) toLines() ([]procurement.PurchaseLine, error) {
	lines := make([]procurement.PurchaseLine, 0, len(r.Lines))
	for _, l := range r.Lines {
		cost, err := decimal.NewFromString(l.UnitCost)
		if err != nil {
			return nil, shared.ErrInvalidInput.WithMessage("invalid unit_cost on line")
		}
		lines = append(lines, procurement.PurchaseLine{
			ProductID: uuid.MustParse(l.ProductID),
			Quantity:  l.Quantity,
			UnitCost:  cost,
		})
	}
	return lines, nil
}

// ReceiveLineRequest is one received line of a goods receipt.
type ReceiveLineRequest struct {
	ItemID   string `json:"item_id" binding:"required,uuid"`
	Quantity int64  `json:"quantity" binding:"required,gt=0"`
}

// ReceivePurchaseRequest books a goods receipt against a purchase order.
// The receipt reference is the idempotency key of the booking.
type ReceivePurchaseRequest struct {
	ReceiptReference string               `json:"receipt_reference" binding:"required,max=64"`
	Lines            []ReceiveLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// PurchaseItemResponse is the API shape of an ordered line.
type PurchaseItemResponse struct {
	ID               uuid.UUID `json:"id"`
	ProductID        uuid.UUID `json:"product_id"`
	QuantityOrdered  int64     `json:"quantity_ordered"`
	QuantityReceived int64     `json:"quantity_received"`
	UnitCost         string    `json:"unit_cost"`
	LineTotal        string    `json:"line_total"`
}

// PurchaseResponse is the API shape of a purchase order.
type PurchaseResponse struct {
	ID                         uuid.UUID              `json:"id"`
	Reference                  string                 `json:"reference"`
	SupplierID                 uuid.UUID              `json:"supplier_id"`
	WarehouseID                uuid.UUID              `json:"warehouse_id"`
	Status                     string                 `json:"status"`
	PaymentValidatedBySupplier bool                   `json:"payment_validated_by_supplier"`
	Notes                      string                 `json:"notes,omitempty"`
	Total                      string                 `json:"total"`
	SubmittedAt                *time.Time             `json:"submitted_at,omitempty"`
	ConfirmedAt                *time.Time             `json:"confirmed_at,omitempty"`
	ShippedAt                  *time.Time             `json:"shipped_at,omitempty"`
	DeliveredAt                *time.Time             `json:"delivered_at,omitempty"`
	ReceivedAt                 *time.Time             `json:"received_at,omitempty"`
	PaidAt                     *time.Time             `json:"paid_at,omitempty"`
	Items                      []PurchaseItemResponse `json:"items"`
	CreatedAt                  time.Time              `json:"created_at"`
	UpdatedAt                  time.Time              `json:"updated_at"`
}

func toPurchaseResponse(p *procurement.Purchase) PurchaseResponse {
	items := make([]PurchaseItemResponse, 0, len(p.Items))
	for i := range p.Items {
		item := &p.Items[i]
		items = append(items, PurchaseItemResponse{
			ID:               item.ID,
			ProductID:        item.ProductID,
			QuantityOrdered:  item.QuantityOrdered,
			QuantityReceived: item.QuantityReceived,
			UnitCost:         item.UnitCost.String(),
			LineTotal:        item.LineTotal().String(),
		})
	}
	return PurchaseResponse{
		ID:                         p.ID,
		Reference:                  p.Reference,
		SupplierID:                 p.SupplierID,
		WarehouseID:                p.WarehouseID,
		Status:                     string(p.Status),
		PaymentValidatedBySupplier: p.PaymentValidatedBySupplier,
		Notes:                      p.Notes,
		Total:                      p.Total().String(),
		SubmittedAt:                p.SubmittedAt,
		ConfirmedAt:                p.ConfirmedAt,
		ShippedAt:                  p.ShippedAt,
		DeliveredAt:                p.DeliveredAt,
		ReceivedAt:                 p.ReceivedAt,
		PaidAt:                     p.PaidAt,
		Items:                      items,
		CreatedAt:                  p.CreatedAt,
		UpdatedAt:                  p.UpdatedAt,
	}
}

func toPurchaseResponses(items []procurement.Purchase) []PurchaseResponse {
	out := make([]PurchaseResponse, 0, len(items))
	for i := range items {
		out = append(out, toPurchaseResponse(&items[i]))
	}
	return out
}
