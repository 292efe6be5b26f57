package handler

import (
	"github.com/gin-gonic/gin"

	appevent "github.com/retailops/backend/internal/application/event"
)

// OutboxHandler exposes the outbox operations endpoints: dead-letter
// inspection, manual retry and delivery statistics.
type OutboxHandler struct {
	BaseHandler
	service *appevent.OutboxService
}

// NewOutboxHandler creates an outbox handler.
func NewOutboxHandler(service *appevent.OutboxService) *OutboxHandler {
	return &OutboxHandler{service: service}
}

// RegisterRoutes attaches the outbox routes.
func (h *OutboxHandler) RegisterRoutes(rg *gin.RouterGroup) {
	outbox := rg.Group("/outbox")
	{
		outbox.GET("/stats", h.Stats)
		outbox.GET("/dead-letters", h.ListDeadLetters)
		outbox.GET("/dead-letters/:id", h.GetEntry)
		outbox.POST("/dead-letters/:id/retry", h.RetryEntry)
		outbox.POST("/dead-letters/retry-all", h.RetryAll)
	}
}

// Stats returns per-status entry counts.
func (h *OutboxHandler) Stats(c *gin.Context) {
	stats, err := h.service.GetStats(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stats)
}

// ListDeadLetters returns dead-lettered entries, newest first.
func (h *OutboxHandler) ListDeadLetters(c *gin.Context) {
	var filter appevent.OutboxFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.HandleBindingError(c, err)
		return
	}

	result, err := h.service.GetDeadLetterEntries(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, result.Entries, result.Total, result.Page, result.PageSize)
}

// GetEntry returns one outbox entry.
func (h *OutboxHandler) GetEntry(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		h.HandleError(c, err)
		return
	}
	entry, err := h.service.GetEntry(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entry)
}

// RetryEntry requeues a dead-lettered entry for delivery.
func (h *OutboxHandler) RetryEntry(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		h.HandleError(c, err)
		return
	}
	entry, err := h.service.RetryDeadEntry(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entry)
}

// RetryAll requeues every dead-lettered entry.
func (h *OutboxHandler) RetryAll(c *gin.Context) {
	count, err := h.service.RetryAllDeadEntries(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"requeued": count})
}
