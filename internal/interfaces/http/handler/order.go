package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	appfulfillment "github.com/retailops/backend/internal/application/fulfillment"
	"github.com/retailops/backend/internal/domain/fulfillment"
	"github.com/retailops/backend/internal/domain/shared"
	"github.com/retailops/backend/internal/interfaces/http/middleware"
)

// OrderHandler exposes the point-of-sale order workflow.
type OrderHandler struct {
	BaseHandler
	service *appfulfillment.OrderService
}

// NewOrderHandler creates an order handler.
func NewOrderHandler(service *appfulfillment.OrderService) *OrderHandler {
	return &OrderHandler{service: service}
}

// RegisterRoutes attaches the order routes.
func (h *OrderHandler) RegisterRoutes(rg *gin.RouterGroup) {
	orders := rg.Group("/orders")
	{
		orders.POST("", h.Create)
		orders.GET("", h.List)
		orders.GET("/:id", h.Get)
		orders.POST("/:id/serve", h.Serve)
		orders.POST("/:id/pay", h.MarkPaid)
		orders.POST("/:id/validate", h.Validate)
		orders.POST("/:id/cancel", h.Cancel)
	}
}

// Create opens an order and reserves every line. A line that cannot be
// covered fails the whole order.
func (h *OrderHandler) Create(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindingError(c, err)
		return
	}

	lines := make([]fulfillment.OrderLine, 0, len(req.Lines))
	for _, l := range req.Lines {
		price, err := decimal.NewFromString(l.UnitPrice)
		if err != nil {
			h.HandleError(c, shared.ErrInvalidInput.WithMessage("invalid unit_price on line"))
			return
		}
		lines = append(lines, fulfillment.OrderLine{
			ProductID: uuid.MustParse(l.ProductID),
			Quantity:  l.Quantity,
			UnitPrice: price,
		})
	}

	o, err := h.service.Create(c.Request.Context(), appfulfillment.CreateOrderCommand{
		TenantID:    middleware.TenantID(c),
		ActorID:     middleware.ActorID(c),
		WarehouseID: uuid.MustParse(req.WarehouseID),
		TableNumber: req.TableNumber,
		Lines:       lines,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toOrderResponse(o))
}

// List returns the tenant's orders.
func (h *OrderHandler) List(c *gin.Context) {
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
	h.Success(c, toOrderResponses(items))
}

// Get returns one order with its lines.
func (h *OrderHandler) Get(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		h.HandleError(c, err)
		return
	}
	o, err := h.service.Get(c.Request.Context(), middleware.TenantID(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toOrderResponse(o))
}

// Serve deducts the served quantities and releases their reservations.
func (h *OrderHandler) Serve(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		h.HandleError(c, err)
		return
	}
	var req ServeOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindingError(c, err)
		return
	}

	lines := make([]appfulfillment.ServeLine, 0, len(req.Lines))
	for _, l := range req.Lines {
		lines = append(lines, appfulfillment.ServeLine{
			ItemID:   uuid.MustParse(l.ItemID),
			Quantity: l.Quantity,
		})
	}

	o, err := h.service.Serve(c.Request.Context(), appfulfillment.ServeCommand{
		TenantID:         middleware.TenantID(c),
		ActorID:          middleware.ActorID(c),
		OrderID:          id,
		ServingReference: req.ServingReference,
		Lines:            lines,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toOrderResponse(o))
}

func (h *OrderHandler) transition(c *gin.Context, fn func(tenantID, id uuid.UUID) (*fulfillment.Order, error)) {
	id, err := uuidParam(c, "id")
	if err != nil {
		h.HandleError(c, err)
		return
	}
	o, err := fn(middleware.TenantID(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toOrderResponse(o))
}

// MarkPaid records payment against the order.
func (h *OrderHandler) MarkPaid(c *gin.Context) {
	h.transition(c, func(tenantID, id uuid.UUID) (*fulfillment.Order, error) {
		return h.service.MarkPaid(c.Request.Context(), tenantID, id)
	})
}

// Validate closes a served and paid order.
func (h *OrderHandler) Validate(c *gin.Context) {
	h.transition(c, func(tenantID, id uuid.UUID) (*fulfillment.Order, error) {
		return h.service.Validate(c.Request.Context(), tenantID, id)
	})
}

// Cancel voids the order and releases the remaining reservations.
func (h *OrderHandler) Cancel(c *gin.Context) {
	h.transition(c, func(tenantID, id uuid.UUID) (*fulfillment.Order, error) {
		return h.service.Cancel(c.Request.Context(), tenantID, id)
	})
}
