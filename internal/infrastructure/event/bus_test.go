package event

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/retailops/backend/internal/domain/shared"
)

type busTestEvent struct {
	shared.BaseDomainEvent
	Data string `json:"data"`
}

func newBusTestEvent(eventType string) *busTestEvent {
	return &busTestEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "TestAggregate", uuid.New(), uuid.New()),
		Data:            "payload",
	}
}

type busTestHandler struct {
	mu         sync.Mutex
	eventTypes []string
	handled    []shared.DomainEvent
	err        error
	panics     bool
}

func newBusTestHandler(eventTypes ...string) *busTestHandler {
	return &busTestHandler{eventTypes: eventTypes}
}

func (h *busTestHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.panics {
		panic("handler exploded")
	}
	h.handled = append(h.handled, event)
	return h.err
}

func (h *busTestHandler) EventTypes() []string {
	return h.eventTypes
}

func (h *busTestHandler) getHandled() []shared.DomainEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]shared.DomainEvent(nil), h.handled...)
}

func TestInMemoryEventBus_Publish(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := newBusTestHandler("TestEvent")
	bus.Subscribe(handler, "TestEvent")

	event := newBusTestEvent("TestEvent")
	err := bus.Publish(context.Background(), event)

	require.NoError(t, err)
	require.Len(t, handler.getHandled(), 1)
	assert.Equal(t, event, handler.getHandled()[0])
}

func TestInMemoryEventBus_Publish_HandlerError(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	failing := newBusTestHandler("TestEvent")
	failing.err = errors.New("posting rejected")
	healthy := newBusTestHandler("TestEvent")
	bus.Subscribe(failing, "TestEvent")
	bus.Subscribe(healthy, "TestEvent")

	err := bus.Publish(context.Background(), newBusTestEvent("TestEvent"))

	// The failure surfaces so the outbox can mark the entry failed and
	// retry it, and the other handler is still delivered to.
	require.Error(t, err)
	assert.ErrorIs(t, err, failing.err)
	assert.Len(t, healthy.getHandled(), 1)
}

func TestInMemoryEventBus_Publish_HandlerPanic(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	panicking := newBusTestHandler("TestEvent")
	panicking.panics = true
	healthy := newBusTestHandler("TestEvent")
	bus.Subscribe(panicking, "TestEvent")
	bus.Subscribe(healthy, "TestEvent")

	err := bus.Publish(context.Background(), newBusTestEvent("TestEvent"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "handler panic")
	assert.Len(t, healthy.getHandled(), 1)
}

func TestInMemoryEventBus_Publish_NoSubscribers(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	assert.NoError(t, bus.Publish(context.Background(), newBusTestEvent("Unrouted")))
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := newBusTestHandler("TestEvent")
	bus.Subscribe(handler, "TestEvent")
	bus.Unsubscribe(handler)

	require.NoError(t, bus.Publish(context.Background(), newBusTestEvent("TestEvent")))
	assert.Empty(t, handler.getHandled())
}
