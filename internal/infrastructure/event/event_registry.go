package event

import (
	"github.com/orderpost/backend/internal/domain/sales"
)

// RegisterAllEvents registers every domain event type with the serializer.
// The OutboxProcessor needs this to deserialize payloads read back from the
// outbox table.
func RegisterAllEvents(serializer *EventSerializer) {
	serializer.Register(sales.EventTypeOrderPosted, &sales.OrderPostedEvent{})
	serializer.Register(sales.EventTypeOrderReposted, &sales.OrderRepostedEvent{})
	serializer.Register(sales.EventTypeOrderStateChanged, &sales.OrderStateChangedEvent{})
}
