package notification_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/retailops/backend/internal/application/notification"
	"github.com/retailops/backend/internal/domain/procurement"
	"github.com/retailops/backend/internal/infrastructure/event"
)

// recordingNotifier collects every notification for assertions.
type recordingNotifier struct {
	sent []notification.Notification
}

func (n *recordingNotifier) Notify(_ context.Context, msg notification.Notification) error {
	n.sent = append(n.sent, msg)
	return nil
}

func (n *recordingNotifier) topics() []string {
	topics := make([]string, len(n.sent))
	for i, msg := range n.sent {
		topics[i] = msg.Topic
	}
	return topics
}

func TestEventHandler_PurchaseLifecycle(t *testing.T) {
	notifier := &recordingNotifier{}
	bus := event.NewInMemoryEventBus(zap.NewNop())
	bus.Subscribe(notification.NewEventHandler(notifier, zap.NewNop()))
	ctx := context.Background()

	p, err := procurement.NewPurchase(uuid.New(), uuid.New(), uuid.New(), uuid.New(), "PO-20260829-0001",
		[]procurement.PurchaseLine{{ProductID: uuid.New(), Quantity: 5, UnitCost: decimal.NewFromInt(100)}})
	require.NoError(t, err)

	require.NoError(t, p.Submit())
	require.NoError(t, p.Confirm())
	require.NoError(t, p.Ship())
	require.NoError(t, p.Deliver())

	require.NoError(t, bus.Publish(ctx, p.GetDomainEvents()...))

	assert.Equal(t, []string{
		"purchase.submitted",
		"purchase.confirmed",
		"purchase.shipped",
		"purchase.delivered",
	}, notifier.topics())
	for _, msg := range notifier.sent {
		assert.Equal(t, p.TenantID, msg.TenantID)
		assert.Equal(t, p.Reference, msg.Reference)
	}
}

func TestEventHandler_PurchaseStatusChanged_ReceiptTransitionsSkipped(t *testing.T) {
	notifier := &recordingNotifier{}
	handler := notification.NewEventHandler(notifier, zap.NewNop())
	ctx := context.Background()

	p, err := procurement.NewPurchase(uuid.New(), uuid.New(), uuid.New(), uuid.New(), "PO-20260829-0002",
		[]procurement.PurchaseLine{{ProductID: uuid.New(), Quantity: 5, UnitCost: decimal.NewFromInt(100)}})
	require.NoError(t, err)

	// Receipt bookings notify through PurchaseReceivedEvent, so the
	// partial/received status changes stay quiet here.
	ev := procurement.NewPurchaseStatusChangedEvent(p, procurement.PurchaseStatusConfirmed, procurement.PurchaseStatusPartial)
	require.NoError(t, handler.Handle(ctx, ev))
	assert.Empty(t, notifier.sent)
}

func TestEventHandler_EventTypes(t *testing.T) {
	handler := notification.NewEventHandler(&recordingNotifier{}, zap.NewNop())
	assert.Contains(t, handler.EventTypes(), procurement.EventTypePurchaseStatusChanged)
}
