package shared

import "context"

// EventHandler reacts to domain events delivered by the bus.
type EventHandler interface {
	Handle(ctx context.Context, event DomainEvent) error
	// EventTypes names the event types this handler wants. An empty slice
	// subscribes it to everything.
	EventTypes() []string
}

// EventPublisher delivers domain events to subscribed handlers.
type EventPublisher interface {
	Publish(ctx context.Context, events ...DomainEvent) error
}

// EventSubscriber manages handler registrations.
type EventSubscriber interface {
	// Subscribe registers a handler. With no explicit event types the
	// handler's own EventTypes decide what it receives.
	Subscribe(handler EventHandler, eventTypes ...string)
	Unsubscribe(handler EventHandler)
}

// EventBus is the in-process delivery fabric the outbox processor feeds:
// entries are read from the database and published here, where the
// follow-up handlers (financial recalculation, outgoing documents) run.
type EventBus interface {
	EventPublisher
	EventSubscriber
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// OutboxEventSaver writes domain events to the outbox inside the caller's
// transaction. The tx argument is the *gorm.DB transaction the posting
// unit of work is running in.
type OutboxEventSaver interface {
	SaveEvents(ctx context.Context, tx interface{}, events ...DomainEvent) error
}
