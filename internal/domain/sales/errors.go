package sales

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// RefKind identifies a referenced table checked during batch validation
type RefKind string

const (
	RefContragent   RefKind = "contragent"
	RefOrganization RefKind = "organization"
	RefContract     RefKind = "contract"
	RefWarehouse    RefKind = "warehouse"
	RefNomenclature RefKind = "nomenclature"
	RefPriceType    RefKind = "price_type"
	RefUnit         RefKind = "unit"
	RefSalesManager RefKind = "sales_manager"
	RefLoyaltyCard  RefKind = "loyalty_card"
)

// String returns the string representation of RefKind
func (k RefKind) String() string {
	return string(k)
}

// ValidationError reports referenced entities that do not exist.
// The whole batch is rejected before any row is written; MissingIDs carries
// the complete missing set for the offending table.
type ValidationError struct {
	Kind       RefKind
	MissingIDs []uuid.UUID
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	ids := make([]string, len(e.MissingIDs))
	for i, id := range e.MissingIDs {
		ids[i] = id.String()
	}
	return fmt.Sprintf("unknown %s: %s", e.Kind, strings.Join(ids, ", "))
}

// NumberConflictError signals a duplicate order number detected on insert.
// The conflict is transient: the caller may retry the order's transaction,
// which re-reads the latest number under lock.
type NumberConflictError struct {
	OrganizationID uuid.UUID
	Number         string
}

// Error implements the error interface
func (e *NumberConflictError) Error() string {
	return fmt.Sprintf("order number %q already taken for organization %s", e.Number, e.OrganizationID)
}

// StatusTransitionError names a disallowed workflow transition
type StatusTransitionError struct {
	From OrderState
	To   OrderState
}

// Error implements the error interface
func (e *StatusTransitionError) Error() string {
	return fmt.Sprintf("cannot transition order from %s to %s", e.From, e.To)
}
