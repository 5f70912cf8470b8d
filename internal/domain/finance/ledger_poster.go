package finance

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/orderpost/backend/internal/domain/loyalty"
)

// LedgerPostingError wraps a failure while writing a dependent ledger row.
// The surrounding transaction rolls back, so a ledger failure never leaves a
// committed order without its postings.
type LedgerPostingError struct {
	Ledger string
	Err    error
}

// Error implements the error interface
func (e *LedgerPostingError) Error() string {
	return fmt.Sprintf("posting to %s ledger failed: %v", e.Ledger, e.Err)
}

// Unwrap returns the underlying error
func (e *LedgerPostingError) Unwrap() error {
	return e.Err
}

// LedgerPoster is a domain service that writes the payment and loyalty ledger
// rows cascading from a posted order, each with its link back to the order.
// Every posting is append-only. The repositories are expected to be bound to
// the order's transaction.
type LedgerPoster struct {
	payments     PaymentRepository
	transactions loyalty.TransactionRepository
	loyaltyLinks LoyaltyLinkRepository
}

// NewLedgerPoster creates a new ledger poster
func NewLedgerPoster(payments PaymentRepository, transactions loyalty.TransactionRepository, loyaltyLinks LoyaltyLinkRepository) *LedgerPoster {
	return &LedgerPoster{
		payments:     payments,
		transactions: transactions,
		loyaltyLinks: loyaltyLinks,
	}
}

// PostPayment records the cash part of the order payment and links it to the
// order
func (p *LedgerPoster) PostPayment(ctx context.Context, organizationID, contragentID, orderID uuid.UUID, amount decimal.Decimal) (*Payment, error) {
	payment, err := NewIncomingPayment(organizationID, contragentID, amount)
	if err != nil {
		return nil, &LedgerPostingError{Ledger: "payment", Err: err}
	}
	if err := p.payments.Create(ctx, payment); err != nil {
		return nil, &LedgerPostingError{Ledger: "payment", Err: err}
	}
	if err := p.payments.CreateLink(ctx, NewPaymentLink(payment.ID, orderID)); err != nil {
		return nil, &LedgerPostingError{Ledger: "payment", Err: err}
	}
	return payment, nil
}

// PostLoyaltyWithdraw records points spent on the order and links the
// transaction to the order
func (p *LedgerPoster) PostLoyaltyWithdraw(ctx context.Context, cardID, orderID uuid.UUID, amount decimal.Decimal) (*loyalty.LoyaltyTransaction, error) {
	tx, err := loyalty.NewWithdraw(cardID, orderID, amount)
	if err != nil {
		return nil, &LedgerPostingError{Ledger: "loyalty", Err: err}
	}
	return p.postLoyalty(ctx, tx, orderID)
}

// PostLoyaltyAccrual records cashback earned by the order and links the
// transaction to the order
func (p *LedgerPoster) PostLoyaltyAccrual(ctx context.Context, cardID, orderID uuid.UUID, amount decimal.Decimal) (*loyalty.LoyaltyTransaction, error) {
	tx, err := loyalty.NewAccrual(cardID, orderID, amount)
	if err != nil {
		return nil, &LedgerPostingError{Ledger: "loyalty", Err: err}
	}
	return p.postLoyalty(ctx, tx, orderID)
}

func (p *LedgerPoster) postLoyalty(ctx context.Context, tx *loyalty.LoyaltyTransaction, orderID uuid.UUID) (*loyalty.LoyaltyTransaction, error) {
	if err := p.transactions.Create(ctx, tx); err != nil {
		return nil, &LedgerPostingError{Ledger: "loyalty", Err: err}
	}
	if err := p.loyaltyLinks.Create(ctx, NewLoyaltyTransactionLink(tx.ID, orderID)); err != nil {
		return nil, &LedgerPostingError{Ledger: "loyalty", Err: err}
	}
	return tx, nil
}
