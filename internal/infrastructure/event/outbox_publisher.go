package event

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/orderpost/backend/internal/domain/shared"
)

// OutboxPublisher is the write side of the outbox: the posting unit of
// work hands it the events raised during posting, and it stores them in
// the outbox table on the same transaction. Commit makes the posting and
// its follow-up triggers durable together; rollback discards both.
type OutboxPublisher struct {
	serializer *EventSerializer
}

var _ shared.OutboxEventSaver = (*OutboxPublisher)(nil)

// NewOutboxPublisher builds a publisher over the given serializer.
func NewOutboxPublisher(serializer *EventSerializer) *OutboxPublisher {
	return &OutboxPublisher{serializer: serializer}
}

// SaveEvents implements shared.OutboxEventSaver. The tx argument must be
// the *gorm.DB transaction the posting is running in.
func (p *OutboxPublisher) SaveEvents(ctx context.Context, tx interface{}, events ...shared.DomainEvent) error {
	if len(events) == 0 {
		return nil
	}

	gormTx, ok := tx.(*gorm.DB)
	if !ok {
		return fmt.Errorf("outbox publisher needs a *gorm.DB transaction, got %T", tx)
	}

	entries := make([]*shared.OutboxEntry, 0, len(events))
	for _, ev := range events {
		payload, err := p.serializer.Serialize(ev)
		if err != nil {
			return fmt.Errorf("serialize %s: %w", ev.EventType(), err)
		}
		entries = append(entries, shared.NewOutboxEntry(ev, payload))
	}

	return NewGormOutboxRepository(gormTx).Save(ctx, entries...)
}
