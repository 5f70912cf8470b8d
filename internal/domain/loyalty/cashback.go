package loyalty

import (
	"github.com/shopspring/decimal"

	"github.com/orderpost/backend/internal/domain/catalog"
)

var oneHundred = decimal.NewFromInt(100)

// ShareRatio returns the cash fraction of the order payment:
// paid_rubles / (paid_rubles + paid_lt), or zero when both are zero.
func ShareRatio(paidRubles, paidLoyalty decimal.Decimal) decimal.Decimal {
	total := paidRubles.Add(paidLoyalty)
	if total.IsZero() {
		return decimal.Zero
	}
	return paidRubles.Div(total)
}

// LineCashback computes the cashback earned by one order line under the
// nomenclature's policy:
//
//	no_cashback    -> 0
//	percent        -> price*quantity * (nomenclature value / 100) * shareRatio
//	const          -> quantity * nomenclature value (not scaled by shareRatio)
//	lcard_cashback -> price*quantity * (card percent / 100) * shareRatio
//
// Unknown policy values fall back to the card formula. A nil card yields zero
// for card-based policies.
func LineCashback(price, quantity decimal.Decimal, nom *catalog.Nomenclature, card *LoyaltyCard, shareRatio decimal.Decimal) decimal.Decimal {
	if nom == nil {
		return decimal.Zero
	}

	switch nom.CashbackType {
	case catalog.CashbackNone:
		return decimal.Zero
	case catalog.CashbackPercent:
		return price.Mul(quantity).
			Mul(nom.CashbackValue.Div(oneHundred)).
			Mul(shareRatio)
	case catalog.CashbackConst:
		return quantity.Mul(nom.CashbackValue)
	default:
		if card == nil {
			return decimal.Zero
		}
		return price.Mul(quantity).
			Mul(card.CashbackPercent.Div(oneHundred)).
			Mul(shareRatio)
	}
}
