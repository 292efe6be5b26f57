package handler

import (
	"github.com/gin-gonic/gin"

	appstock "github.com/retailops/backend/internal/application/stock"
	appwarehouse "github.com/retailops/backend/internal/application/warehouse"
	"github.com/retailops/backend/internal/domain/warehouse"
	"github.com/retailops/backend/internal/interfaces/http/middleware"
)

// WarehouseHandler exposes the warehouse registry and its dashboards.
type WarehouseHandler struct {
	BaseHandler
	service *appwarehouse.Service
	ledger  *appstock.Ledger
}

// NewWarehouseHandler creates a warehouse handler.
func NewWarehouseHandler(service *appwarehouse.Service, ledger *appstock.Ledger) *WarehouseHandler {
	return &WarehouseHandler{service: service, ledger: ledger}
}

// RegisterRoutes attaches the warehouse routes.
func (h *WarehouseHandler) RegisterRoutes(rg *gin.RouterGroup) {
	warehouses := rg.Group("/warehouses")
	{
		warehouses.POST("", h.Create)
		warehouses.GET("", h.List)
		warehouses.GET("/:id", h.Get)
		warehouses.POST("/:id/activate", h.Activate)
		warehouses.POST("/:id/deactivate", h.Deactivate)
		warehouses.GET("/:id/stocks", h.ListStocks)
		warehouses.GET("/:id/value", h.StockValue)
	}
}

// Create registers a warehouse.
func (h *WarehouseHandler) Create(c *gin.Context) {
	var req CreateWarehouseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindingError(c, err)
		return
	}

	w, err := h.service.Create(c.Request.Context(), appwarehouse.CreateCommand{
		TenantID: middleware.TenantID(c),
		Code:     req.Code,
		Name:     req.Name,
		Kind:     warehouse.Kind(req.Kind),
		Address:  req.Address,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toWarehouseResponse(w))
}

// List returns the tenant's warehouses, optionally narrowed by kind.
func (h *WarehouseHandler) List(c *gin.Context) {
	filter, err := bindFilter(c)
	if err != nil {
		h.HandleBindingError(c, err)
		return
	}

	var kind warehouse.Kind
	if raw := c.Query("kind"); raw != "" {
		kind, err = warehouse.ParseKind(raw)
		if err != nil {
			h.HandleError(c, err)
			return
		}
	}

	items, total, err := h.service.List(c.Request.Context(), middleware.TenantID(c), kind, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, toWarehouseResponses(items), total, filter.Page, filter.PageSize)
}

// Get returns one warehouse.
func (h *WarehouseHandler) Get(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		h.HandleError(c, err)
		return
	}

	w, err := h.service.Get(c.Request.Context(), middleware.TenantID(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toWarehouseResponse(w))
}

// Activate reactivates a warehouse.
func (h *WarehouseHandler) Activate(c *gin.Context) {
	h.setActive(c, true)
}

// Deactivate pauses a warehouse.
func (h *WarehouseHandler) Deactivate(c *gin.Context) {
	h.setActive(c, false)
}

func (h *WarehouseHandler) setActive(c *gin.Context, active bool) {
	id, err := uuidParam(c, "id")
	if err != nil {
		h.HandleError(c, err)
		return
	}

	w, err := h.service.SetActive(c.Request.Context(), middleware.TenantID(c), id, active)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toWarehouseResponse(w))
}

// ListStocks returns the positions held in the warehouse.
func (h *WarehouseHandler) ListStocks(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		h.HandleError(c, err)
		return
	}
	filter, err := bindFilter(c)
	if err != nil {
		h.HandleBindingError(c, err)
		return
	}

	positions, err := h.ledger.WarehousePositions(c.Request.Context(), middleware.TenantID(c), id, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toStockResponses(positions))
}

// StockValue returns the warehouse's stock value at average cost.
func (h *WarehouseHandler) StockValue(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		h.HandleError(c, err)
		return
	}

	value, err := h.ledger.WarehouseValue(c.Request.Context(), middleware.TenantID(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, WarehouseValueResponse{WarehouseID: id, StockValue: value.String()})
}
