package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers processed event IDs so handlers with side
// effects are not run twice for the same event.
type IdempotencyStore interface {
	// MarkProcessed records an event ID with a TTL. It returns true when
	// the ID was newly recorded and false when it was already present.
	MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error)

	// IsProcessed reports whether the event ID was already recorded.
	IsProcessed(ctx context.Context, eventID string) (bool, error)

	Close() error
}

// IdempotencyConfig tunes handler-level deduplication.
type IdempotencyConfig struct {
	// TTL bounds how long processed event IDs are remembered.
	TTL time.Duration

	Enabled bool
}

// DefaultIdempotencyConfig remembers event IDs for a day.
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		TTL:     24 * time.Hour,
		Enabled: true,
	}
}
