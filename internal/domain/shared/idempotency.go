package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers which event IDs a handler has already
// processed. The outbox retries delivery on failure, so a handler that
// has side effects must be able to tell a redelivery from a new event.
type IdempotencyStore interface {
	// MarkProcessed records the event ID with a TTL. It returns false if
	// the ID was already recorded, meaning this delivery is a duplicate.
	MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error)

	// IsProcessed checks for the event ID without recording it.
	IsProcessed(ctx context.Context, eventID string) (bool, error)

	Close() error
}

// IdempotencyConfig controls duplicate suppression for event handlers.
// Disabled suppression means every redelivery runs the handler again.
type IdempotencyConfig struct {
	TTL     time.Duration
	Enabled bool
}
