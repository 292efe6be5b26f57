package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	appstock "github.com/retailops/backend/internal/application/stock"
	"github.com/retailops/backend/internal/domain/shared"
	"github.com/retailops/backend/internal/domain/stock"
	"github.com/retailops/backend/internal/interfaces/http/middleware"
)

// StockHandler exposes the stock ledger: positions, movements, direct
// receipts and adjustments.
type StockHandler struct {
	BaseHandler
	ledger *appstock.Ledger
}

// NewStockHandler creates a stock handler.
func NewStockHandler(ledger *appstock.Ledger) *StockHandler {
	return &StockHandler{ledger: ledger}
}

// RegisterRoutes attaches the stock routes.
func (h *StockHandler) RegisterRoutes(rg *gin.RouterGroup) {
	stocks := rg.Group("/stocks")
	{
		stocks.GET("/low", h.ListLow)
		stocks.GET("/:productID/:warehouseID", h.GetPosition)
		stocks.POST("/receipts", h.Receive)
		stocks.POST("/adjustments", h.Adjust)
	}

	movements := rg.Group("/movements")
	{
		movements.GET("", h.ListMovements)
	}
}

// GetPosition returns the position of one product in one warehouse.
func (h *StockHandler) GetPosition(c *gin.Context) {
	productID, err := uuidParam(c, "productID")
	if err != nil {
		h.HandleError(c, err)
		return
	}
	warehouseID, err := uuidParam(c, "warehouseID")
	if err != nil {
		h.HandleError(c, err)
		return
	}

	pos, err := h.ledger.Position(c.Request.Context(), middleware.TenantID(c), productID, warehouseID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toStockResponse(pos))
}

// ListLow returns positions at or below their alert threshold.
func (h *StockHandler) ListLow(c *gin.Context) {
	filter, err := bindFilter(c)
	if err != nil {
		h.HandleBindingError(c, err)
		return
	}

	positions, err := h.ledger.LowPositions(c.Request.Context(), middleware.TenantID(c), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toStockResponses(positions))
}

// ListMovements returns ledger movements filtered by reference or product.
func (h *StockHandler) ListMovements(c *gin.Context) {
	tenantID := middleware.TenantID(c)
	ctx := c.Request.Context()

	if ref := c.Query("reference"); ref != "" {
		movements, err := h.ledger.MovementsByReference(ctx, tenantID, ref)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		h.Success(c, toMovementResponses(movements))
		return
	}

	rawProduct := c.Query("product_id")
	if rawProduct == "" {
		h.BadRequest(c, "either reference or product_id is required")
		return
	}
	productID, err := uuid.Parse(rawProduct)
	if err != nil {
		h.HandleError(c, shared.ErrInvalidInput.WithMessage("invalid product_id parameter"))
		return
	}

	filter, err := bindFilter(c)
	if err != nil {
		h.HandleBindingError(c, err)
		return
	}
	movements, err := h.ledger.ProductMovements(ctx, tenantID, productID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toMovementResponses(movements))
}

// Receive books a direct goods receipt outside any purchase order.
func (h *StockHandler) Receive(c *gin.Context) {
	var req ReceiptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindingError(c, err)
		return
	}

	unitCost, err := decimal.NewFromString(req.UnitCost)
	if err != nil {
		h.HandleError(c, shared.ErrInvalidInput.WithMessage("invalid unit_cost"))
		return
	}
	kind := stock.MovementPurchase
	if req.Kind != "" {
		kind = stock.MovementKind(req.Kind)
	}

	cmd := appstock.ReceiptCommand{
		TenantID:       middleware.TenantID(c),
		ActorID:        middleware.ActorID(c),
		ProductID:      uuid.MustParse(req.ProductID),
		WarehouseID:    uuid.MustParse(req.WarehouseID),
		Quantity:       req.Quantity,
		UnitCost:       unitCost,
		Kind:           kind,
		Reference:      req.Reference,
		IdempotencyKey: req.IdempotencyKey,
	}
	if err := h.ledger.ApplyReceipt(c.Request.Context(), cmd); err != nil {
		h.HandleError(c, err)
		return
	}

	pos, err := h.ledger.Position(c.Request.Context(), cmd.TenantID, cmd.ProductID, cmd.WarehouseID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toStockResponse(pos))
}

// Adjust corrects a position after a physical count.
func (h *StockHandler) Adjust(c *gin.Context) {
	var req AdjustmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindingError(c, err)
		return
	}

	unitCost := decimal.Zero
	if req.UnitCost != "" {
		var err error
		unitCost, err = decimal.NewFromString(req.UnitCost)
		if err != nil {
			h.HandleError(c, shared.ErrInvalidInput.WithMessage("invalid unit_cost"))
			return
		}
	}

	cmd := appstock.AdjustmentCommand{
		TenantID:       middleware.TenantID(c),
		ActorID:        middleware.ActorID(c),
		ProductID:      uuid.MustParse(req.ProductID),
		WarehouseID:    uuid.MustParse(req.WarehouseID),
		Delta:          req.Delta,
		UnitCost:       unitCost,
		Reference:      req.Reference,
		Reason:         req.Reason,
		IdempotencyKey: req.IdempotencyKey,
	}
	if err := h.ledger.ApplyAdjustment(c.Request.Context(), cmd); err != nil {
		h.HandleError(c, err)
		return
	}

	pos, err := h.ledger.Position(c.Request.Context(), cmd.TenantID, cmd.ProductID, cmd.WarehouseID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toStockResponse(pos))
}
