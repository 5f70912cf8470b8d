package sales

import (
	"context"

	"github.com/google/uuid"

	"github.com/orderpost/backend/internal/domain/shared"
)

// SalesOrderRepository defines the interface for sales order persistence.
// Implementations bound to a transaction perform all writes within it.
type SalesOrderRepository interface {
	// FindByID finds a sales order with its lines by ID
	FindByID(ctx context.Context, id uuid.UUID) (*SalesOrder, error)

	// FindByNumber finds a sales order by document number within an organization
	FindByNumber(ctx context.Context, organizationID uuid.UUID, number string) (*SalesOrder, error)

	// FindAll finds sales orders with filtering and pagination
	FindAll(ctx context.Context, filter shared.Filter) ([]SalesOrder, error)

	// Count counts sales orders matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// NextNumber produces the next sequential document number for the
	// organization. The read locks the latest non-deleted order row so that
	// concurrent batches for the same organization serialize.
	NextNumber(ctx context.Context, organizationID uuid.UUID) (string, error)

	// Create inserts the order row and its lines. A duplicate number for the
	// organization surfaces as *NumberConflictError.
	Create(ctx context.Context, order *SalesOrder) error

	// Update persists the order row fields (not the lines)
	Update(ctx context.Context, order *SalesOrder) error

	// ReplaceLines deletes the order's lines and inserts the given set
	ReplaceLines(ctx context.Context, orderID uuid.UUID, lines []OrderLine) error

	// SoftDelete marks the order deleted; its number becomes reusable
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

// ReferenceChecker verifies that referenced entities exist.
// One bulk query per kind; validation sets are per request, never cached
// across requests.
type ReferenceChecker interface {
	// MissingIDs returns the subset of ids that do not exist for the kind
	MissingIDs(ctx context.Context, kind RefKind, ids []uuid.UUID) ([]uuid.UUID, error)
}
