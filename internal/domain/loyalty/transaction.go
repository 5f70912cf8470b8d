package loyalty

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/orderpost/backend/internal/domain/shared"
)

// TransactionType distinguishes spending points from earning them
type TransactionType string

const (
	// TransactionWithdraw spends card balance as part of the order payment
	TransactionWithdraw TransactionType = "withdraw"
	// TransactionAccrual earns cashback computed from the order lines
	TransactionAccrual TransactionType = "accrual"
)

// String returns the string representation of TransactionType
func (t TransactionType) String() string {
	return string(t)
}

// LoyaltyTransaction is an immutable record of points moving on a card.
// Corrections are made with new transactions, never by mutation.
type LoyaltyTransaction struct {
	shared.BaseEntity
	CardID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	OrderID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Type    TransactionType `gorm:"type:varchar(20);not null"`
	Amount  decimal.Decimal `gorm:"type:decimal(18,2);not null"`
}

// TableName returns the table name for GORM
func (LoyaltyTransaction) TableName() string {
	return "loyalty_transactions"
}

// NewWithdraw creates a withdraw transaction for an order paid with points
func NewWithdraw(cardID, orderID uuid.UUID, amount decimal.Decimal) (*LoyaltyTransaction, error) {
	return newTransaction(cardID, orderID, TransactionWithdraw, amount)
}

// NewAccrual creates an accrual transaction for earned cashback
func NewAccrual(cardID, orderID uuid.UUID, amount decimal.Decimal) (*LoyaltyTransaction, error) {
	return newTransaction(cardID, orderID, TransactionAccrual, amount)
}

func newTransaction(cardID, orderID uuid.UUID, txType TransactionType, amount decimal.Decimal) (*LoyaltyTransaction, error) {
	if cardID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_LOYALTY_CARD", "Loyalty card ID cannot be empty")
	}
	if orderID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORDER", "Order ID cannot be empty")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Transaction amount must be positive")
	}
	return &LoyaltyTransaction{
		BaseEntity: shared.NewBaseEntity(),
		CardID:     cardID,
		OrderID:    orderID,
		Type:       txType,
		Amount:     amount,
	}, nil
}
