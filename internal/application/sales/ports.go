package sales

import (
	"context"

	"github.com/orderpost/backend/internal/domain/finance"
	"github.com/orderpost/backend/internal/domain/loyalty"
	"github.com/orderpost/backend/internal/domain/sales"
	"github.com/orderpost/backend/internal/domain/shared"
	"github.com/orderpost/backend/internal/domain/warehouse"
)

// PostingTx bundles the repositories bound to one database transaction.
// Everything an order posting writes (the order row, its lines, the ledger
// rows, the outbox entries) goes through the same PostingTx, so a failure
// anywhere rolls the whole posting back.
type PostingTx interface {
	Orders() sales.SalesOrderRepository
	Payments() finance.PaymentRepository
	LoyaltyTransactions() loyalty.TransactionRepository
	LoyaltyLinks() finance.LoyaltyLinkRepository
	Balances() warehouse.BalanceRepository

	// SaveEvents writes domain events to the transactional outbox
	SaveEvents(ctx context.Context, events ...shared.DomainEvent) error
}

// PostingUnitOfWork opens a transaction and runs fn inside it. fn returning an
// error rolls the transaction back and the error is returned as-is.
type PostingUnitOfWork interface {
	Execute(ctx context.Context, fn func(tx PostingTx) error) error
}
