package event

import (
	"context"

	"go.uber.org/zap"

	"github.com/retailops/backend/internal/domain/shared"
)

// IdempotentHandler wraps an EventHandler so each event is processed at
// most once per idempotency TTL, even when the outbox redelivers it.
type IdempotentHandler struct {
	handler shared.EventHandler
	store   shared.IdempotencyStore
	config  shared.IdempotencyConfig
	logger  *zap.Logger
}

// NewIdempotentHandler wraps the handler with duplicate suppression.
func NewIdempotentHandler(
	handler shared.EventHandler,
	store shared.IdempotencyStore,
	config shared.IdempotencyConfig,
	logger *zap.Logger,
) *IdempotentHandler {
	return &IdempotentHandler{
		handler: handler,
		store:   store,
		config:  config,
		logger:  logger,
	}
}

// EventTypes delegates to the wrapped handler.
func (h *IdempotentHandler) EventTypes() []string {
	return h.handler.EventTypes()
}

// Handle processes the event unless its ID was already seen. A store
// failure is logged and the event is processed anyway; duplicate work
// is preferable to dropped events.
func (h *IdempotentHandler) Handle(ctx context.Context, ev shared.DomainEvent) error {
	if !h.config.Enabled {
		return h.handler.Handle(ctx, ev)
	}

	eventID := ev.EventID().String()
	isNew, err := h.store.MarkProcessed(ctx, eventID, h.config.TTL)
	if err != nil {
		h.logger.Warn("idempotency check failed, processing anyway",
			zap.String("event_id", eventID),
			zap.String("event_type", ev.EventType()),
			zap.Error(err),
		)
	} else if !isNew {
		h.logger.Debug("duplicate event skipped",
			zap.String("event_id", eventID),
			zap.String("event_type", ev.EventType()),
		)
		return nil
	}

	// The idempotency key is kept on failure so the TTL acts as a
	// retry cooldown.
	return h.handler.Handle(ctx, ev)
}

// WrapHandlers wraps each handler with idempotency checking.
func WrapHandlers(
	handlers []shared.EventHandler,
	store shared.IdempotencyStore,
	config shared.IdempotencyConfig,
	logger *zap.Logger,
) []shared.EventHandler {
	wrapped := make([]shared.EventHandler, len(handlers))
	for i, h := range handlers {
		wrapped[i] = NewIdempotentHandler(h, store, config, logger)
	}
	return wrapped
}

var _ shared.EventHandler = (*IdempotentHandler)(nil)
