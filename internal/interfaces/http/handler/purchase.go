package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appprocurement "github.com/retailops/backend/internal/application/procurement"
	"github.com/retailops/backend/internal/domain/procurement"
	"github.com/retailops/backend/internal/domain/shared"
	"github.com/retailops/backend/internal/interfaces/http/middleware"
)

// PurchaseHandler exposes the purchase workflow.
type PurchaseHandler struct {
	BaseHandler
	service *appprocurement.PurchaseService
}

// NewPurchaseHandler creates a purchase handler.
func NewPurchaseHandler(service *appprocurement.PurchaseService) *PurchaseHandler {
	return &PurchaseHandler{service: service}
}

// RegisterRoutes attaches the purchase routes.
func (h *PurchaseHandler) RegisterRoutes(rg *gin.RouterGroup) {
	purchases := rg.Group("/purchases")
	{
		purchases.POST("", h.Create)
		purchases.GET("", h.List)
		purchases.GET("/:id", h.Get)
		purchases.POST("/:id/submit", h.Submit)
		purchases.POST("/:id/confirm", h.Confirm)
		purchases.POST("/:id/ship", h.Ship)
		purchases.POST("/:id/deliver", h.Deliver)
		purchases.POST("/:id/cancel", h.Cancel)
		purchases.POST("/:id/validate-payment", h.ValidatePayment)
		purchases.POST("/:id/receipts", h.Receive)
	}
}

// Create opens a purchase order, optionally submitting it right away.
func (h *PurchaseHandler) Create(c *gin.Context) {
	var req CreatePurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindingError(c, err)
		return
	}
	lines, err := req.toLines()
	if err != nil {
		h.HandleError(c, err)
		return
	}

	p, err := h.service.Create(c.Request.Context(), appprocurement.CreatePurchaseCommand{
		TenantID:    middleware.TenantID(c),
		ActorID:     middleware.ActorID(c),
		SupplierID:  uuid.MustParse(req.SupplierID),
		WarehouseID: uuid.MustParse(req.WarehouseID),
		Notes:       req.Notes,
		Submit:      req.Submit,
		Lines:       lines,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toPurchaseResponse(p))
}

// List returns purchase orders, optionally narrowed by status.
func (h *PurchaseHandler) List(c *gin.Context) {
	filter, err := bindFilter(c)
	if err != nil {
		h.HandleBindingError(c, err)
		return
	}
	tenantID := middleware.TenantID(c)

	if raw := c.Query("status"); raw != "" {
		status := procurement.PurchaseStatus(raw)
		if !status.IsValid() {
			h.HandleError(c, shared.ErrInvalidInput.WithMessage("unknown purchase status: "+raw))
			return
		}
		items, err := h.service.ListByStatus(c.Request.Context(), tenantID, status, filter)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		h.Success(c, toPurchaseResponses(items))
		return
	}

	items, err := h.service.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toPurchaseResponses(items))
}

// Get returns one purchase order with its lines.
func (h *PurchaseHandler) Get(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		h.HandleError(c, err)
		return
	}
	p, err := h.service.Get(c.Request.Context(), middleware.TenantID(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toPurchaseResponse(p))
}

func (h *PurchaseHandler) transition(c *gin.Context, fn func(tenantID, id uuid.UUID) (*procurement.Purchase, error)) {
	id, err := uuidParam(c, "id")
	if err != nil {
		h.HandleError(c, err)
		return
	}
	p, err := fn(middleware.TenantID(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toPurchaseResponse(p))
}

// Submit sends the draft to the supplier.
func (h *PurchaseHandler) Submit(c *gin.Context) {
	h.transition(c, func(tenantID, id uuid.UUID) (*procurement.Purchase, error) {
		return h.service.Submit(c.Request.Context(), tenantID, id)
	})
}

// Confirm records the supplier's confirmation.
func (h *PurchaseHandler) Confirm(c *gin.Context) {
	h.transition(c, func(tenantID, id uuid.UUID) (*procurement.Purchase, error) {
		return h.service.Confirm(c.Request.Context(), tenantID, id)
	})
}

// Ship records the supplier's dispatch.
func (h *PurchaseHandler) Ship(c *gin.Context) {
	h.transition(c, func(tenantID, id uuid.UUID) (*procurement.Purchase, error) {
		return h.service.Ship(c.Request.Context(), tenantID, id)
	})
}

// Deliver records arrival at the warehouse dock.
func (h *PurchaseHandler) Deliver(c *gin.Context) {
	h.transition(c, func(tenantID, id uuid.UUID) (*procurement.Purchase, error) {
		return h.service.Deliver(c.Request.Context(), tenantID, id)
	})
}

// Cancel voids the order before any receipt.
func (h *PurchaseHandler) Cancel(c *gin.Context) {
	h.transition(c, func(tenantID, id uuid.UUID) (*procurement.Purchase, error) {
		return h.service.Cancel(c.Request.Context(), tenantID, id)
	})
}

// ValidatePayment records the supplier's payment confirmation.
func (h *PurchaseHandler) ValidatePayment(c *gin.Context) {
	h.transition(c, func(tenantID, id uuid.UUID) (*procurement.Purchase, error) {
		return h.service.ValidatePayment(c.Request.Context(), tenantID, id)
	})
}

// Receive books a goods receipt against the order.
func (h *PurchaseHandler) Receive(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		h.HandleError(c, err)
		return
	}
	var req ReceivePurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindingError(c, err)
		return
	}

	lines := make([]appprocurement.ReceiptLine, 0, len(req.Lines))
	for _, l := range req.Lines {
		lines = append(lines, appprocurement.ReceiptLine{
			ItemID:   uuid.MustParse(l.ItemID),
			Quantity: l.Quantity,
		})
	}

	p, err := h.service.Receive(c.Request.Context(), appprocurement.ReceiveCommand{
		TenantID:         middleware.TenantID(c),
		ActorID:          middleware.ActorID(c),
		PurchaseID:       id,
		ReceiptReference: req.ReceiptReference,
		Lines:            lines,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toPurchaseResponse(p))
}
