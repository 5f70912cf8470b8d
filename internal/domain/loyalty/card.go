package loyalty

import (
	"github.com/shopspring/decimal"

	"github.com/orderpost/backend/internal/domain/shared"
)

// LoyaltyCard holds a customer's point balance and personal cashback rate.
// The posting engine only reads cards; balance adjustments are made by the
// external financial recalculation collaborator.
type LoyaltyCard struct {
	shared.BaseEntity
	CardNumber      string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	Balance         decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	CashbackPercent decimal.Decimal `gorm:"type:decimal(8,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (LoyaltyCard) TableName() string {
	return "loyalty_cards"
}
