package loyalty

import (
	"context"

	"github.com/google/uuid"
)

// CardReader provides read access to loyalty cards. The posting engine never
// mutates card rows.
type CardReader interface {
	// Get returns the card or shared.ErrNotFound
	Get(ctx context.Context, id uuid.UUID) (*LoyaltyCard, error)
}

// TransactionRepository persists loyalty transactions.
// Implementations bound to a transaction perform all writes within it.
type TransactionRepository interface {
	// Create inserts a loyalty transaction
	Create(ctx context.Context, tx *LoyaltyTransaction) error

	// FindByOrderID returns the transactions posted for an order
	FindByOrderID(ctx context.Context, orderID uuid.UUID) ([]LoyaltyTransaction, error)
}
