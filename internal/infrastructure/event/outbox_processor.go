package event

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/orderpost/backend/internal/domain/shared"
)

// OutboxProcessorConfig tunes the polling and cleanup loops.
type OutboxProcessorConfig struct {
	BatchSize        int
	PollInterval     time.Duration
	CleanupEnabled   bool
	CleanupRetention time.Duration
	CleanupInterval  time.Duration
}

// DefaultOutboxProcessorConfig polls every five seconds and keeps sent
// entries for a week so delivery history stays inspectable.
func DefaultOutboxProcessorConfig() OutboxProcessorConfig {
	return OutboxProcessorConfig{
		BatchSize:        100,
		PollInterval:     5 * time.Second,
		CleanupEnabled:   true,
		CleanupRetention: 7 * 24 * time.Hour,
		CleanupInterval:  time.Hour,
	}
}

// OutboxProcessor is the read side of the outbox. It polls for entries
// the posting transactions committed, republishes them on the event bus
// and records the outcome. Delivery failures back off exponentially until
// the entry goes dead. Claiming uses SKIP LOCKED, so several instances
// can run against the same table.
type OutboxProcessor struct {
	outbox     shared.OutboxRepository
	bus        shared.EventBus
	serializer *EventSerializer
	config     OutboxProcessorConfig
	log        *zap.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewOutboxProcessor wires the processor; Start launches its loops.
func NewOutboxProcessor(
	outbox shared.OutboxRepository,
	bus shared.EventBus,
	serializer *EventSerializer,
	config OutboxProcessorConfig,
	log *zap.Logger,
) *OutboxProcessor {
	return &OutboxProcessor{
		outbox:     outbox,
		bus:        bus,
		serializer: serializer,
		config:     config,
		log:        log.Named("outbox"),
	}
}

// Start launches the polling loop, and the cleanup loop when enabled.
func (p *OutboxProcessor) Start(ctx context.Context) error {
	ctx, p.cancel = context.WithCancel(ctx)

	p.wg.Add(1)
	go p.loop(ctx, p.config.PollInterval, p.deliverDueEntries)

	if p.config.CleanupEnabled {
		p.wg.Add(1)
		go p.loop(ctx, p.config.CleanupInterval, p.pruneSentEntries)
	}

	p.log.Info("outbox processor started",
		zap.Int("batch_size", p.config.BatchSize),
		zap.Duration("poll_interval", p.config.PollInterval),
	)
	return nil
}

// Stop cancels the loops and waits for the in-flight batch, up to the
// context deadline.
func (p *OutboxProcessor) Stop(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.log.Info("outbox processor stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *OutboxProcessor) loop(ctx context.Context, interval time.Duration, tick func(context.Context)) {
	defer p.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			tick(ctx)
		}
	}
}

// deliverDueEntries drains one batch of fresh entries and one batch whose
// retry backoff has elapsed.
func (p *OutboxProcessor) deliverDueEntries(ctx context.Context) {
	pending, err := p.outbox.FindPending(ctx, p.config.BatchSize)
	if err != nil {
		p.log.Error("find pending entries", zap.Error(err))
		return
	}
	p.claimAndDeliver(ctx, pending)

	retryable, err := p.outbox.FindRetryable(ctx, time.Now(), p.config.BatchSize)
	if err != nil {
		p.log.Error("find retryable entries", zap.Error(err))
		return
	}
	p.claimAndDeliver(ctx, retryable)
}

func (p *OutboxProcessor) claimAndDeliver(ctx context.Context, entries []*shared.OutboxEntry) {
	if len(entries) == 0 {
		return
	}

	ids := make([]uuid.UUID, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
	}

	// Another instance may have claimed some of these in the meantime;
	// only the ones that come back are ours.
	claimed, err := p.outbox.MarkProcessing(ctx, ids)
	if err != nil {
		p.log.Error("claim outbox entries", zap.Error(err))
		return
	}
	for _, entry := range claimed {
		p.deliver(ctx, entry)
	}
}

func (p *OutboxProcessor) deliver(ctx context.Context, entry *shared.OutboxEntry) {
	event, err := p.serializer.Deserialize(entry.EventType, entry.Payload)
	if err != nil {
		p.recordFailure(ctx, entry, err)
		return
	}
	if err := p.bus.Publish(ctx, event); err != nil {
		p.recordFailure(ctx, entry, err)
		return
	}

	entry.MarkSent()
	if err := p.outbox.Update(ctx, entry); err != nil {
		p.log.Error("mark entry sent",
			zap.String("event_id", entry.EventID.String()),
			zap.Error(err),
		)
		return
	}
	p.log.Debug("event delivered",
		zap.String("event_id", entry.EventID.String()),
		zap.String("event_type", entry.EventType),
	)
}

func (p *OutboxProcessor) recordFailure(ctx context.Context, entry *shared.OutboxEntry, cause error) {
	p.log.Error("event delivery failed",
		zap.String("event_id", entry.EventID.String()),
		zap.String("event_type", entry.EventType),
		zap.Error(cause),
	)

	entry.MarkFailed(cause.Error())
	if entry.IsDead() {
		p.log.Warn("event moved to dead letter queue",
			zap.String("event_id", entry.EventID.String()),
			zap.String("event_type", entry.EventType),
			zap.String("aggregate_type", entry.AggregateType),
			zap.String("aggregate_id", entry.AggregateID.String()),
			zap.Int("retry_count", entry.RetryCount),
		)
	}
	if err := p.outbox.Update(ctx, entry); err != nil {
		p.log.Error("record delivery failure", zap.Error(err))
	}
}

// pruneSentEntries deletes delivered entries past the retention window.
// Dead entries are never pruned; they hold the evidence an operator needs.
func (p *OutboxProcessor) pruneSentEntries(ctx context.Context) {
	cutoff := time.Now().Add(-p.config.CleanupRetention)
	deleted, err := p.outbox.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		p.log.Error("prune sent entries", zap.Error(err))
		return
	}
	if deleted > 0 {
		p.log.Info("pruned sent outbox entries",
			zap.Int64("deleted", deleted),
			zap.Time("cutoff", cutoff),
		)
	}
}
