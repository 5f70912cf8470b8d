package sales

// OrderState represents the fulfillment workflow state of a sales order.
// It is independent of posting: ledgers and balances are written when the
// order is created, while the workflow tracks picking and delivery.
type OrderState string

const (
	OrderStateReceived   OrderState = "received"
	OrderStateProcessed  OrderState = "processed"
	OrderStateCollecting OrderState = "collecting"
	OrderStateCollected  OrderState = "collected"
	OrderStatePicked     OrderState = "picked"
	OrderStateDelivered  OrderState = "delivered"
	OrderStateClosed     OrderState = "closed"
	OrderStateSuccess    OrderState = "success"
)

// String returns the string representation of OrderState
func (s OrderState) String() string {
	return string(s)
}

// IsValid checks if the state is a known OrderState
func (s OrderState) IsValid() bool {
	switch s {
	case OrderStateReceived, OrderStateProcessed, OrderStateCollecting,
		OrderStateCollected, OrderStatePicked, OrderStateDelivered,
		OrderStateClosed, OrderStateSuccess:
		return true
	}
	return false
}

// IsTerminal returns true for states that allow no further transitions
func (s OrderState) IsTerminal() bool {
	return s == OrderStateClosed || s == OrderStateSuccess
}

// CanTransitionTo checks if the state can transition to the target state.
// The workflow is linear; "closed" is an escape hatch reachable from any
// non-terminal state.
func (s OrderState) CanTransitionTo(target OrderState) bool {
	if s.IsTerminal() {
		return false
	}
	if target == OrderStateClosed {
		return true
	}
	switch s {
	case OrderStateReceived:
		return target == OrderStateProcessed
	case OrderStateProcessed:
		return target == OrderStateCollecting
	case OrderStateCollecting:
		return target == OrderStateCollected
	case OrderStateCollected:
		return target == OrderStatePicked
	case OrderStatePicked:
		return target == OrderStateDelivered
	case OrderStateDelivered:
		return target == OrderStateSuccess
	}
	return false
}
