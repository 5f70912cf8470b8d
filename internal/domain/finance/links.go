package finance

import (
	"github.com/google/uuid"

	"github.com/orderpost/backend/internal/domain/shared"
)

// PaymentLink ties a payment to the sales order that produced it. Links are
// created in the same transaction as the payment and are never updated.
type PaymentLink struct {
	shared.BaseEntity
	PaymentID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	OrderID   uuid.UUID `gorm:"type:uuid;not null;index"`
}

// TableName returns the table name for GORM
func (PaymentLink) TableName() string {
	return "payment_links"
}

// NewPaymentLink creates a link from a payment to its source order
func NewPaymentLink(paymentID, orderID uuid.UUID) *PaymentLink {
	return &PaymentLink{
		BaseEntity: shared.NewBaseEntity(),
		PaymentID:  paymentID,
		OrderID:    orderID,
	}
}

// LoyaltyTransactionLink ties a loyalty transaction to its source order
type LoyaltyTransactionLink struct {
	shared.BaseEntity
	TransactionID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	OrderID       uuid.UUID `gorm:"type:uuid;not null;index"`
}

// TableName returns the table name for GORM
func (LoyaltyTransactionLink) TableName() string {
	return "loyalty_transaction_links"
}

// NewLoyaltyTransactionLink creates a link from a loyalty transaction to its
// source order
func NewLoyaltyTransactionLink(transactionID, orderID uuid.UUID) *LoyaltyTransactionLink {
	return &LoyaltyTransactionLink{
		BaseEntity:    shared.NewBaseEntity(),
		TransactionID: transactionID,
		OrderID:       orderID,
	}
}
