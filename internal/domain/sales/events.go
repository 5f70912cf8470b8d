package sales

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/orderpost/backend/internal/domain/shared"
)

// Event type constants for the sales order aggregate
const (
	EventTypeOrderPosted       = "sales_order.posted"
	EventTypeOrderReposted     = "sales_order.reposted"
	EventTypeOrderStateChanged = "sales_order.state_changed"
)

const aggregateTypeSalesOrder = "SalesOrder"

// OrderPostedEvent is emitted after an order and its dependent ledger rows
// commit. Follow-up work (financial recalculation, outgoing warehouse
// document, customer notification) is driven from this event via the outbox.
type OrderPostedEvent struct {
	shared.BaseDomainEvent
	Number         string          `json:"number"`
	OrganizationID uuid.UUID       `json:"organization_id"`
	ContragentID   uuid.UUID       `json:"contragent_id"`
	WarehouseID    *uuid.UUID      `json:"warehouse_id,omitempty"`
	Sum            decimal.Decimal `json:"sum"`
	PaidRubles     decimal.Decimal `json:"paid_rubles"`
	PaidLoyalty    decimal.Decimal `json:"paid_lt"`
	CashbackSum    decimal.Decimal `json:"cashback_sum"`
}

// NewOrderPostedEvent creates a new OrderPostedEvent
func NewOrderPostedEvent(order *SalesOrder, cashbackSum decimal.Decimal) *OrderPostedEvent {
	return &OrderPostedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderPosted, aggregateTypeSalesOrder, order.ID),
		Number:          order.Number,
		OrganizationID:  order.OrganizationID,
		ContragentID:    order.ContragentID,
		WarehouseID:     order.WarehouseID,
		Sum:             order.Sum,
		PaidRubles:      order.PaidRubles,
		PaidLoyalty:     order.PaidLoyalty,
		CashbackSum:     cashbackSum,
	}
}

// OrderRepostedEvent is emitted after an edit replaced the lines and re-posted
// the dependent ledgers
type OrderRepostedEvent struct {
	shared.BaseDomainEvent
	Number         string          `json:"number"`
	OrganizationID uuid.UUID       `json:"organization_id"`
	ContragentID   uuid.UUID       `json:"contragent_id"`
	Sum            decimal.Decimal `json:"sum"`
}

// NewOrderRepostedEvent creates a new OrderRepostedEvent
func NewOrderRepostedEvent(order *SalesOrder) *OrderRepostedEvent {
	return &OrderRepostedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderReposted, aggregateTypeSalesOrder, order.ID),
		Number:          order.Number,
		OrganizationID:  order.OrganizationID,
		ContragentID:    order.ContragentID,
		Sum:             order.Sum,
	}
}

// OrderStateChangedEvent is emitted on every workflow transition
type OrderStateChangedEvent struct {
	shared.BaseDomainEvent
	Number     string     `json:"number"`
	From       OrderState `json:"from"`
	To         OrderState `json:"to"`
	OperatorID *uuid.UUID `json:"operator_id,omitempty"`
}

// NewOrderStateChangedEvent creates a new OrderStateChangedEvent
func NewOrderStateChangedEvent(order *SalesOrder, from, to OrderState, operatorID *uuid.UUID) *OrderStateChangedEvent {
	return &OrderStateChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderStateChanged, aggregateTypeSalesOrder, order.ID),
		Number:          order.Number,
		From:            from,
		To:              to,
		OperatorID:      operatorID,
	}
}
