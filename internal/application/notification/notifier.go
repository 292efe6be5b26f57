package notification

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Notification is one outbound message.
type Notification struct {
	TenantID  uuid.UUID
	Topic     string
	Subject   string
	Body      string
	Reference string
}

// Notifier is the consumed notification contract. Implementations fan the
// message out to mail, chat or whatever the deployment uses; failures are
// retried by the outbox and never reach the workflows.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// LogNotifier is the default Notifier: it records the message and does
// nothing else.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a LogNotifier.
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(_ context.Context, msg Notification) error {
	n.logger.Info("notification",
		zap.String("topic", msg.Topic),
		zap.String("subject", msg.Subject),
		zap.String("reference", msg.Reference))
	return nil
}

var _ Notifier = (*LogNotifier)(nil)
