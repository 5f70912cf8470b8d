package finance

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/orderpost/backend/internal/domain/shared"
)

// PaymentDirection distinguishes money coming in from money going out
type PaymentDirection string

const (
	// PaymentIncoming is money received from the contragent
	PaymentIncoming PaymentDirection = "incoming"
	// PaymentOutgoing is money paid to the contragent
	PaymentOutgoing PaymentDirection = "outgoing"
)

// String returns the string representation of PaymentDirection
func (d PaymentDirection) String() string {
	return string(d)
}

// IsValid checks if the payment direction is valid
func (d PaymentDirection) IsValid() bool {
	return d == PaymentIncoming || d == PaymentOutgoing
}

// Payment is a ledger record of money moving for an order. Payments are
// append-only; corrections are posted as new rows.
type Payment struct {
	shared.BaseEntity
	OrganizationID uuid.UUID        `gorm:"type:uuid;not null;index"`
	ContragentID   uuid.UUID        `gorm:"type:uuid;not null;index"`
	Direction      PaymentDirection `gorm:"type:varchar(20);not null"`
	Amount         decimal.Decimal  `gorm:"type:decimal(18,2);not null"`
	AccountID      *uuid.UUID       `gorm:"type:uuid"`
	PayboxID       *uuid.UUID       `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (Payment) TableName() string {
	return "payments"
}

// NewIncomingPayment creates a payment record for money received on an order
func NewIncomingPayment(organizationID, contragentID uuid.UUID, amount decimal.Decimal) (*Payment, error) {
	if organizationID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORGANIZATION", "Organization ID cannot be empty")
	}
	if contragentID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CONTRAGENT", "Contragent ID cannot be empty")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	return &Payment{
		BaseEntity:     shared.NewBaseEntity(),
		OrganizationID: organizationID,
		ContragentID:   contragentID,
		Direction:      PaymentIncoming,
		Amount:         amount,
	}, nil
}
