package testutil

import (
	"context"
	"sync"

	"github.com/retailops/backend/internal/domain/shared"
)

// CapturingEventHandler records every event it is handed, for asserting on
// what the bus dispatched.
type CapturingEventHandler struct {
	mu         sync.Mutex
	eventTypes []string
	handled    []shared.DomainEvent
	err        error
}

// NewCapturingEventHandler creates a handler subscribed to the given event
// types. No types means all.
func NewCapturingEventHandler(eventTypes ...string) *CapturingEventHandler {
	return &CapturingEventHandler{eventTypes: eventTypes}
}

// EventTypes lists the subscribed event types.
func (h *CapturingEventHandler) EventTypes() []string {
	return h.eventTypes
}

// Handle records the event and returns the configured error, if any.
func (h *CapturingEventHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handled = append(h.handled, event)
	return h.err
}

// Handled returns a copy of the recorded events.
func (h *CapturingEventHandler) Handled() []shared.DomainEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]shared.DomainEvent, len(h.handled))
	copy(out, h.handled)
	return out
}

// HandledCount returns how many events were recorded.
func (h *CapturingEventHandler) HandledCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.handled)
}

// FailWith makes subsequent Handle calls return err.
func (h *CapturingEventHandler) FailWith(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.err = err
}

// EventTypesOf extracts the type strings of a slice of events, in order.
func EventTypesOf(events []shared.DomainEvent) []string {
	out := make([]string, 0, len(events))
	for _, e := range events {
		out = append(out, e.EventType())
	}
	return out
}
