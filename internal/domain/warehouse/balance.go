package warehouse

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/orderpost/backend/internal/domain/shared"
)

// BalanceEntry is one row of the append-only stock running balance for an
// (organization, warehouse, nomenclature) key. CurrentAmount carries the
// running total after this movement; history is never rewritten. Two
// organizations selling from a shared warehouse keep separate chains.
type BalanceEntry struct {
	shared.BaseEntity
	OrganizationID uuid.UUID       `gorm:"type:uuid;not null;index:idx_balance_key,priority:1"`
	WarehouseID    uuid.UUID       `gorm:"type:uuid;not null;index:idx_balance_key,priority:2"`
	NomenclatureID uuid.UUID       `gorm:"type:uuid;not null;index:idx_balance_key,priority:3"`
	OrderID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	OutgoingAmount decimal.Decimal `gorm:"type:decimal(18,3);not null"`
	CurrentAmount  decimal.Decimal `gorm:"type:decimal(18,3);not null"`
}

// TableName returns the table name for GORM
func (BalanceEntry) TableName() string {
	return "warehouse_balances"
}

// BalancePostingError wraps a failure while extending a stock running balance.
// The surrounding transaction rolls back.
type BalancePostingError struct {
	WarehouseID    uuid.UUID
	NomenclatureID uuid.UUID
	Err            error
}

// Error implements the error interface
func (e *BalancePostingError) Error() string {
	return fmt.Sprintf("balance posting failed for warehouse %s nomenclature %s: %v",
		e.WarehouseID, e.NomenclatureID, e.Err)
}

// Unwrap returns the underlying error
func (e *BalancePostingError) Unwrap() error {
	return e.Err
}

// BalanceRepository persists stock running balance entries.
// Implementations bound to a transaction perform all reads and writes within
// it.
type BalanceRepository interface {
	// LatestForUpdate returns the newest entry for the key with a row lock so
	// concurrent postings for the same key serialize. Returns nil when the key
	// has no history.
	LatestForUpdate(ctx context.Context, organizationID, warehouseID, nomenclatureID uuid.UUID) (*BalanceEntry, error)

	// Create appends a balance entry
	Create(ctx context.Context, entry *BalanceEntry) error

	// FindByOrderID returns the entries posted for an order
	FindByOrderID(ctx context.Context, orderID uuid.UUID) ([]BalanceEntry, error)
}

// BalancePoster is a domain service that extends the running balance for each
// tracked line of a posted order. Each posting reads the latest entry for the
// key under lock and appends one row with the decremented total. A key with no
// history starts from zero, so balances may go negative.
type BalancePoster struct {
	balances BalanceRepository
}

// NewBalancePoster creates a new balance poster
func NewBalancePoster(balances BalanceRepository) *BalancePoster {
	return &BalancePoster{balances: balances}
}

// PostOutgoing appends one balance entry recording quantity leaving the
// warehouse for the organization's order
func (p *BalancePoster) PostOutgoing(ctx context.Context, organizationID, warehouseID, nomenclatureID, orderID uuid.UUID, quantity decimal.Decimal) (*BalanceEntry, error) {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, &BalancePostingError{
			WarehouseID:    warehouseID,
			NomenclatureID: nomenclatureID,
			Err:            shared.NewDomainError("INVALID_QUANTITY", "Outgoing quantity must be positive"),
		}
	}

	latest, err := p.balances.LatestForUpdate(ctx, organizationID, warehouseID, nomenclatureID)
	if err != nil {
		return nil, &BalancePostingError{WarehouseID: warehouseID, NomenclatureID: nomenclatureID, Err: err}
	}

	previous := decimal.Zero
	if latest != nil {
		previous = latest.CurrentAmount
	}

	entry := &BalanceEntry{
		BaseEntity:     shared.NewBaseEntity(),
		OrganizationID: organizationID,
		WarehouseID:    warehouseID,
		NomenclatureID: nomenclatureID,
		OrderID:        orderID,
		OutgoingAmount: quantity,
		CurrentAmount:  previous.Sub(quantity),
	}
	if err := p.balances.Create(ctx, entry); err != nil {
		return nil, &BalancePostingError{WarehouseID: warehouseID, NomenclatureID: nomenclatureID, Err: err}
	}
	return entry, nil
}
