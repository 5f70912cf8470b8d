package sales

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/orderpost/backend/internal/domain/sales"
	"github.com/orderpost/backend/internal/domain/shared"
)

// FinancialRecalcRequester asks the financial collaborator to recompute the
// contragent's balances and loyalty card totals after a posting
type FinancialRecalcRequester interface {
	RequestRecalc(ctx context.Context, contragentID uuid.UUID) error
}

// OutgoingDocumentCreator asks the warehouse collaborator to create the
// outgoing goods document for a posted order
type OutgoingDocumentCreator interface {
	CreateOutgoingDocument(ctx context.Context, orderID uuid.UUID, warehouseID uuid.UUID) error
}

// CustomerNotifier informs the customer that their order was accepted
type CustomerNotifier interface {
	NotifyOrderPosted(ctx context.Context, orderID uuid.UUID, number string) error
}

// OrderPostedHandler runs the follow-up work after an order posting committed:
// financial recalculation, the outgoing warehouse document and the customer
// notification. It is driven from the outbox, so a crashed follow-up is
// retried rather than lost.
type OrderPostedHandler struct {
	logger   *zap.Logger
	recalc   FinancialRecalcRequester
	outgoing OutgoingDocumentCreator
	notifier CustomerNotifier
}

// NewOrderPostedHandler creates a new handler for posted order events
func NewOrderPostedHandler(logger *zap.Logger) *OrderPostedHandler {
	return &OrderPostedHandler{logger: logger}
}

// WithRecalcRequester sets the financial recalculation collaborator
func (h *OrderPostedHandler) WithRecalcRequester(r FinancialRecalcRequester) *OrderPostedHandler {
	h.recalc = r
	return h
}

// WithOutgoingDocumentCreator sets the warehouse document collaborator
func (h *OrderPostedHandler) WithOutgoingDocumentCreator(c OutgoingDocumentCreator) *OrderPostedHandler {
	h.outgoing = c
	return h
}

// WithCustomerNotifier sets the customer notification collaborator
func (h *OrderPostedHandler) WithCustomerNotifier(n CustomerNotifier) *OrderPostedHandler {
	h.notifier = n
	return h
}

// EventTypes returns the event types this handler is interested in
func (h *OrderPostedHandler) EventTypes() []string {
	return []string{sales.EventTypeOrderPosted, sales.EventTypeOrderReposted}
}

// Handle processes a posted or reposted order event
func (h *OrderPostedHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *sales.OrderPostedEvent:
		return h.handlePosted(ctx, e.AggregateID(), e.Number, e.ContragentID, e.WarehouseID)
	case *sales.OrderRepostedEvent:
		// A repost re-runs the financial recalculation only; the outgoing
		// document and the notification were produced by the first posting.
		if h.recalc == nil {
			return nil
		}
		return h.recalc.RequestRecalc(ctx, e.ContragentID)
	default:
		return fmt.Errorf("unexpected event type: %s", event.EventType())
	}
}

func (h *OrderPostedHandler) handlePosted(ctx context.Context, orderID uuid.UUID, number string, contragentID uuid.UUID, warehouseID *uuid.UUID) error {
	if h.recalc != nil {
		if err := h.recalc.RequestRecalc(ctx, contragentID); err != nil {
			h.logger.Error("financial recalc request failed",
				zap.String("order_id", orderID.String()),
				zap.Error(err),
			)
			return err
		}
	}

	if h.outgoing != nil && warehouseID != nil {
		if err := h.outgoing.CreateOutgoingDocument(ctx, orderID, *warehouseID); err != nil {
			h.logger.Error("outgoing document creation failed",
				zap.String("order_id", orderID.String()),
				zap.Error(err),
			)
			return err
		}
	}

	if h.notifier != nil {
		if err := h.notifier.NotifyOrderPosted(ctx, orderID, number); err != nil {
			h.logger.Error("customer notification failed",
				zap.String("order_id", orderID.String()),
				zap.Error(err),
			)
			return err
		}
	}
	return nil
}
