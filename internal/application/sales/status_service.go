package sales

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/orderpost/backend/internal/domain/sales"
	"github.com/orderpost/backend/internal/domain/shared"
)

// OrderStatusService moves orders along the fulfillment workflow
type OrderStatusService struct {
	uow    PostingUnitOfWork
	logger *zap.Logger
}

// NewOrderStatusService creates a new order status service
func NewOrderStatusService(uow PostingUnitOfWork, logger *zap.Logger) *OrderStatusService {
	return &OrderStatusService{uow: uow, logger: logger}
}

// Transition moves the order to the target state. The state change, the
// operator assignment and the outbox entry commit together.
func (s *OrderStatusService) Transition(ctx context.Context, orderID uuid.UUID, target string, operatorID *uuid.UUID) (*OrderResponse, error) {
	state := sales.OrderState(target)
	if !state.IsValid() {
		return nil, shared.NewDomainError("INVALID_STATUS", "Unknown order status: "+target)
	}

	var response OrderResponse
	err := s.uow.Execute(ctx, func(tx PostingTx) error {
		order, err := tx.Orders().FindByID(ctx, orderID)
		if err != nil {
			return err
		}

		from := order.State
		if err := order.Transition(state, operatorID); err != nil {
			return err
		}

		if err := tx.Orders().Update(ctx, order); err != nil {
			return err
		}
		if err := tx.SaveEvents(ctx, order.GetDomainEvents()...); err != nil {
			return err
		}
		order.ClearDomainEvents()

		s.logger.Info("Sales order state changed",
			zap.String("order_id", order.ID.String()),
			zap.String("from", from.String()),
			zap.String("to", order.State.String()),
		)

		response = ToOrderResponse(order)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &response, nil
}

// Delete soft-deletes an order that has not entered fulfillment yet. Its
// number becomes reusable; posted ledger rows stay untouched.
func (s *OrderStatusService) Delete(ctx context.Context, orderID uuid.UUID) error {
	return s.uow.Execute(ctx, func(tx PostingTx) error {
		order, err := tx.Orders().FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		if order.State != sales.OrderStateReceived {
			return shared.NewDomainError("INVALID_STATUS",
				"Only orders in the received state can be deleted")
		}

		if err := tx.Orders().SoftDelete(ctx, order.ID); err != nil {
			return err
		}

		s.logger.Info("Sales order deleted",
			zap.String("order_id", order.ID.String()),
			zap.String("number", order.Number),
		)
		return nil
	})
}
