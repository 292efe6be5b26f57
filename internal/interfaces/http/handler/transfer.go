package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appreplenishment "github.com/retailops/backend/internal/application/replenishment"
	"github.com/retailops/backend/internal/domain/replenishment"
	"github.com/retailops/backend/internal/interfaces/http/middleware"
)

// TransferHandler exposes the transfer workflow.
type TransferHandler struct {
	BaseHandler
	service *appreplenishment.TransferService
}

// NewTransferHandler creates a transfer handler.
func NewTransferHandler(service *appreplenishment.TransferService) *TransferHandler {
	return &TransferHandler{service: service}
}

// RegisterRoutes attaches the transfer routes.
func (h *TransferHandler) RegisterRoutes(rg *gin.RouterGroup) {
	transfers := rg.Group("/transfers")
	{
		transfers.POST("", h.Create)
		transfers.GET("", h.List)
		transfers.GET("/:id", h.Get)
		transfers.POST("/:id/approve", h.Approve)
		transfers.POST("/:id/execute", h.Execute)
		transfers.POST("/:id/receive", h.Receive)
		transfers.POST("/:id/validate", h.Validate)
		transfers.POST("/:id/cancel", h.Cancel)
	}
}

// Create opens a pending manual transfer.
func (h *TransferHandler) Create(c *gin.Context) {
	var req CreateTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindingError(c, err)
		return
	}

	lines := make([]replenishment.TransferLine, 0, len(req.Lines))
	for _, l := range req.Lines {
		lines = append(lines, replenishment.TransferLine{
			ProductID: uuid.MustParse(l.ProductID),
			Quantity:  l.Quantity,
		})
	}

	t, err := h.service.Create(c.Request.Context(), appreplenishment.CreateTransferCommand{
		TenantID:        middleware.TenantID(c),
		ActorID:         middleware.ActorID(c),
		FromWarehouseID: uuid.MustParse(req.FromWarehouseID),
		ToWarehouseID:   uuid.MustParse(req.ToWarehouseID),
		Lines:           lines,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toTransferResponse(t))
}

// List returns the tenant's transfers.
func (h *TransferHandler) List(c *gin.Context) {
	filter, err := bindFilter(c)
	if err != nil {
		h.HandleBindingError(c, err)
		return
	}
	items, err := h.service.List(c.Request.Context(), middleware.TenantID(c), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toTransferResponses(items))
}

// Get returns one transfer with its lines.
func (h *TransferHandler) Get(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		h.HandleError(c, err)
		return
	}
	t, err := h.service.Get(c.Request.Context(), middleware.TenantID(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toTransferResponse(t))
}

func (h *TransferHandler) transition(c *gin.Context, fn func(tenantID, id, actorID uuid.UUID) (*replenishment.Transfer, error)) {
	id, err := uuidParam(c, "id")
	if err != nil {
		h.HandleError(c, err)
		return
	}
	t, err := fn(middleware.TenantID(c), id, middleware.ActorID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toTransferResponse(t))
}

// Approve clears the transfer for execution.
func (h *TransferHandler) Approve(c *gin.Context) {
	h.transition(c, func(tenantID, id, actorID uuid.UUID) (*replenishment.Transfer, error) {
		return h.service.Approve(c.Request.Context(), tenantID, id, actorID)
	})
}

// Execute moves the stock between the warehouses.
func (h *TransferHandler) Execute(c *gin.Context) {
	h.transition(c, func(tenantID, id, actorID uuid.UUID) (*replenishment.Transfer, error) {
		return h.service.Execute(c.Request.Context(), tenantID, id, actorID)
	})
}

// Receive records arrival at the destination, booking shortages for
// quantities that never arrived.
func (h *TransferHandler) Receive(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		h.HandleError(c, err)
		return
	}
	var req ReceiveTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindingError(c, err)
		return
	}

	received := make(map[uuid.UUID]int64, len(req.Lines))
	for _, l := range req.Lines {
		received[uuid.MustParse(l.ItemID)] = l.Quantity
	}

	t, err := h.service.Receive(c.Request.Context(), middleware.TenantID(c), id, middleware.ActorID(c), received)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toTransferResponse(t))
}

// Validate closes the transfer after a destination check.
func (h *TransferHandler) Validate(c *gin.Context) {
	h.transition(c, func(tenantID, id, actorID uuid.UUID) (*replenishment.Transfer, error) {
		return h.service.Validate(c.Request.Context(), tenantID, id, actorID)
	})
}

// Cancel voids a transfer that has not moved stock yet.
func (h *TransferHandler) Cancel(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		h.HandleError(c, err)
		return
	}
	var req CancelTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindingError(c, err)
		return
	}

	t, err := h.service.Cancel(c.Request.Context(), middleware.TenantID(c), id, req.Note)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toTransferResponse(t))
}
