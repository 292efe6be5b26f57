package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appreplenishment "github.com/retailops/backend/internal/application/replenishment"
	"github.com/retailops/backend/internal/domain/replenishment"
	"github.com/retailops/backend/internal/interfaces/http/middleware"
)

// StockRequestHandler exposes the replenishment request workflow.
type StockRequestHandler struct {
	BaseHandler
	service *appreplenishment.StockRequestService
}

// NewStockRequestHandler creates a stock request handler.
func NewStockRequestHandler(service *appreplenishment.StockRequestService) *StockRequestHandler {
	return &StockRequestHandler{service: service}
}

// RegisterRoutes attaches the stock request routes.
func (h *StockRequestHandler) RegisterRoutes(rg *gin.RouterGroup) {
	requests := rg.Group("/stock-requests")
	{
		requests.POST("", h.Create)
		requests.GET("", h.List)
		requests.GET("/:id", h.Get)
		requests.POST("/:id/submit", h.Submit)
		requests.POST("/:id/approve", h.Approve)
		requests.POST("/:id/reject", h.Reject)
	}
}

// Create opens a request, optionally submitting it right away.
func (h *StockRequestHandler) Create(c *gin.Context) {
	var req CreateStockRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindingError(c, err)
		return
	}

	lines := make([]replenishment.RequestLine, 0, len(req.Lines))
	for _, l := range req.Lines {
		lines = append(lines, replenishment.RequestLine{
			ProductID: uuid.MustParse(l.ProductID),
			Quantity:  l.Quantity,
		})
	}
	var neededBy *time.Time
	if req.NeededBy != nil && !req.NeededBy.IsZero() {
		neededBy = req.NeededBy
	}

	r, err := h.service.Create(c.Request.Context(), appreplenishment.CreateRequestCommand{
		TenantID:        middleware.TenantID(c),
		ActorID:         middleware.ActorID(c),
		FromWarehouseID: uuid.MustParse(req.FromWarehouseID),
		ToWarehouseID:   uuid.MustParse(req.ToWarehouseID),
		Priority:        replenishment.RequestPriority(req.Priority),
		NeededBy:        neededBy,
		Submit:          req.Submit,
		Lines:           lines,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toStockRequestResponse(r))
}

// List returns the tenant's requests.
func (h *StockRequestHandler) List(c *gin.Context) {
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
	h.Success(c, toStockRequestResponses(items))
}

// Get returns one request with its lines.
func (h *StockRequestHandler) Get(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		h.HandleError(c, err)
		return
	}
	r, err := h.service.Get(c.Request.Context(), middleware.TenantID(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toStockRequestResponse(r))
}

// Submit sends the draft for approval.
func (h *StockRequestHandler) Submit(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		h.HandleError(c, err)
		return
	}
	r, err := h.service.Submit(c.Request.Context(), middleware.TenantID(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toStockRequestResponse(r))
}

// Approve grants the request and executes the backing transfer in the
// same transaction. Insufficient sourcing stock rolls everything back.
func (h *StockRequestHandler) Approve(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		h.HandleError(c, err)
		return
	}
	var req ApproveStockRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindingError(c, err)
		return
	}

	approvals := make(map[uuid.UUID]int64, len(req.Approvals))
	for _, a := range req.Approvals {
		approvals[uuid.MustParse(a.ItemID)] = a.Quantity
	}

	r, t, err := h.service.Approve(c.Request.Context(), appreplenishment.ApproveCommand{
		TenantID:  middleware.TenantID(c),
		ActorID:   middleware.ActorID(c),
		RequestID: id,
		Approvals: approvals,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ApprovedRequestResponse{
		Request:  toStockRequestResponse(r),
		Transfer: toTransferResponse(t),
	})
}

// Reject declines the request with a reason.
func (h *StockRequestHandler) Reject(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		h.HandleError(c, err)
		return
	}
	var req RejectStockRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindingError(c, err)
		return
	}

	r, err := h.service.Reject(c.Request.Context(), middleware.TenantID(c), id, middleware.ActorID(c), req.Reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toStockRequestResponse(r))
}
