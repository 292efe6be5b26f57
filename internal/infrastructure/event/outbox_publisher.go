package event

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/retailops/backend/internal/domain/shared"
)

// OutboxPublisher stages domain events in the outbox table inside the
// caller's transaction so they commit or roll back with the state
// change that produced them.
type OutboxPublisher struct {
	serializer *EventSerializer
	maxRetries int
}

// PublisherOption customizes the publisher.
type PublisherOption func(*OutboxPublisher)

// WithMaxRetries overrides the retry budget stamped on staged entries.
func WithMaxRetries(n int) PublisherOption {
	return func(p *OutboxPublisher) {
		p.maxRetries = n
	}
}

// NewOutboxPublisher creates a publisher backed by the given serializer.
func NewOutboxPublisher(serializer *EventSerializer, opts ...PublisherOption) *OutboxPublisher {
	p := &OutboxPublisher{serializer: serializer}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// PublishWithTx writes the events to the outbox using the provided
// transaction handle.
func (p *OutboxPublisher) PublishWithTx(ctx context.Context, tx *gorm.DB, events ...shared.DomainEvent) error {
	if len(events) == 0 {
		return nil
	}

	entries := make([]*shared.OutboxEntry, 0, len(events))
	for _, ev := range events {
		payload, err := p.serializer.Serialize(ev)
		if err != nil {
			return fmt.Errorf("serialize %s: %w", ev.EventType(), err)
		}
		entry := shared.NewOutboxEntry(ev.TenantID(), ev, payload)
		if p.maxRetries > 0 {
			entry.MaxRetries = p.maxRetries
		}
		entries = append(entries, entry)
	}

	return NewGormOutboxRepository(tx).Save(ctx, entries...)
}

// SaveEvents implements shared.OutboxEventSaver. txProvider must be the
// open *gorm.DB transaction.
func (p *OutboxPublisher) SaveEvents(ctx context.Context, txProvider interface{}, events ...shared.DomainEvent) error {
	if len(events) == 0 {
		return nil
	}

	tx, ok := txProvider.(*gorm.DB)
	if !ok {
		return fmt.Errorf("txProvider must be *gorm.DB, got %T", txProvider)
	}
	return p.PublishWithTx(ctx, tx, events...)
}

var _ shared.OutboxEventSaver = (*OutboxPublisher)(nil)
