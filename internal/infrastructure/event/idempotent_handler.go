package event

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/orderpost/backend/internal/domain/shared"
)

// Processed event IDs are kept this long by default. Longer than the
// outbox retry horizon, so a redelivery always finds the mark.
const defaultIdempotencyTTL = 24 * time.Hour

// IdempotentHandler wraps a follow-up handler with duplicate suppression.
// The outbox redelivers events after failures and restarts, so a handler
// with side effects (financial recalculation, outgoing documents) sees
// the same event ID more than once; the wrapper turns redelivery into a
// no-op.
type IdempotentHandler struct {
	inner   shared.EventHandler
	store   shared.IdempotencyStore
	config  shared.IdempotencyConfig
	log     *zap.Logger
	metrics IdempotencyMetrics
}

var _ shared.EventHandler = (*IdempotentHandler)(nil)

// IdempotencyMetrics counts deliveries by outcome.
type IdempotencyMetrics struct {
	EventsProcessed atomic.Int64
	EventsDuplicate atomic.Int64
	EventsFailed    atomic.Int64
}

// IdempotencyStats is a point-in-time copy of the counters.
type IdempotencyStats struct {
	EventsProcessed int64 `json:"events_processed"`
	EventsDuplicate int64 `json:"events_duplicate"`
	EventsFailed    int64 `json:"events_failed"`
}

// Stats snapshots the counters.
func (m *IdempotencyMetrics) Stats() IdempotencyStats {
	return IdempotencyStats{
		EventsProcessed: m.EventsProcessed.Load(),
		EventsDuplicate: m.EventsDuplicate.Load(),
		EventsFailed:    m.EventsFailed.Load(),
	}
}

// IdempotentHandlerOption configures an IdempotentHandler.
type IdempotentHandlerOption func(*IdempotentHandler)

// WithIdempotencyConfig overrides the default TTL and enablement.
func WithIdempotencyConfig(config shared.IdempotencyConfig) IdempotentHandlerOption {
	return func(h *IdempotentHandler) {
		h.config = config
	}
}

// NewIdempotentHandler wraps inner with duplicate suppression backed by
// store.
func NewIdempotentHandler(
	inner shared.EventHandler,
	store shared.IdempotencyStore,
	log *zap.Logger,
	opts ...IdempotentHandlerOption,
) *IdempotentHandler {
	h := &IdempotentHandler{
		inner:  inner,
		store:  store,
		config: shared.IdempotencyConfig{TTL: defaultIdempotencyTTL, Enabled: true},
		log:    log,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// EventTypes delegates to the wrapped handler.
func (h *IdempotentHandler) EventTypes() []string {
	return h.inner.EventTypes()
}

// Handle runs the wrapped handler unless the event ID was already seen
// within the TTL. A store failure is logged and the event is processed
// anyway: a duplicate side effect beats a dropped one.
func (h *IdempotentHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	if !h.config.Enabled {
		return h.inner.Handle(ctx, event)
	}

	eventID := event.EventID().String()
	fresh, err := h.store.MarkProcessed(ctx, eventID, h.config.TTL)
	switch {
	case err != nil:
		h.log.Warn("idempotency check failed, processing anyway",
			zap.String("event_id", eventID),
			zap.String("event_type", event.EventType()),
			zap.Error(err),
		)
	case !fresh:
		h.metrics.EventsDuplicate.Add(1)
		h.log.Debug("duplicate delivery skipped",
			zap.String("event_id", eventID),
			zap.String("event_type", event.EventType()),
		)
		return nil
	}

	if err := h.inner.Handle(ctx, event); err != nil {
		h.metrics.EventsFailed.Add(1)
		// The idempotency mark stays set; its TTL acts as a retry
		// cooldown.
		return err
	}
	h.metrics.EventsProcessed.Add(1)
	return nil
}

// GetMetrics exposes the delivery counters.
func (h *IdempotentHandler) GetMetrics() *IdempotencyMetrics {
	return &h.metrics
}

// WrapHandlersWithIdempotency wraps each handler, sharing the store but
// giving every handler its own counters.
func WrapHandlersWithIdempotency(
	handlers []shared.EventHandler,
	store shared.IdempotencyStore,
	log *zap.Logger,
	opts ...IdempotentHandlerOption,
) []shared.EventHandler {
	wrapped := make([]shared.EventHandler, len(handlers))
	for i, h := range handlers {
		wrapped[i] = NewIdempotentHandler(h, store, log, opts...)
	}
	return wrapped
}
