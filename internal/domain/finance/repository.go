package finance

import (
	"context"

	"github.com/google/uuid"
)

// PaymentRepository persists payment ledger rows.
// Implementations bound to a transaction perform all writes within it.
type PaymentRepository interface {
	// Create inserts a payment
	Create(ctx context.Context, payment *Payment) error

	// CreateLink inserts a payment-to-order link
	CreateLink(ctx context.Context, link *PaymentLink) error

	// FindByOrderID returns the payments linked to an order
	FindByOrderID(ctx context.Context, orderID uuid.UUID) ([]Payment, error)
}

// LoyaltyLinkRepository persists loyalty-transaction-to-order links
type LoyaltyLinkRepository interface {
	// Create inserts a loyalty transaction link
	Create(ctx context.Context, link *LoyaltyTransactionLink) error
}
