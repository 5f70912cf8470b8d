package persistence

import (
	"context"

	"gorm.io/gorm"

	appsales "github.com/orderpost/backend/internal/application/sales"
	"github.com/orderpost/backend/internal/domain/finance"
	"github.com/orderpost/backend/internal/domain/loyalty"
	"github.com/orderpost/backend/internal/domain/sales"
	"github.com/orderpost/backend/internal/domain/shared"
	"github.com/orderpost/backend/internal/domain/warehouse"
)

// GormPostingUnitOfWork opens one database transaction per posting and hands
// the caller a PostingTx whose repositories are all bound to it
type GormPostingUnitOfWork struct {
	db         *gorm.DB
	eventSaver shared.OutboxEventSaver
}

var _ appsales.PostingUnitOfWork = (*GormPostingUnitOfWork)(nil)

// NewGormPostingUnitOfWork creates a new GormPostingUnitOfWork
func NewGormPostingUnitOfWork(db *gorm.DB, eventSaver shared.OutboxEventSaver) *GormPostingUnitOfWork {
	return &GormPostingUnitOfWork{db: db, eventSaver: eventSaver}
}

// Execute runs fn inside a transaction. fn returning an error rolls the
// transaction back and the error is returned as-is.
func (u *GormPostingUnitOfWork) Execute(ctx context.Context, fn func(tx appsales.PostingTx) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormPostingTx{tx: tx, eventSaver: u.eventSaver})
	})
}

// gormPostingTx bundles repositories bound to one transaction
type gormPostingTx struct {
	tx         *gorm.DB
	eventSaver shared.OutboxEventSaver
}

var _ appsales.PostingTx = (*gormPostingTx)(nil)

func (t *gormPostingTx) Orders() sales.SalesOrderRepository {
	return NewGormSalesOrderRepository(t.tx)
}

func (t *gormPostingTx) Payments() finance.PaymentRepository {
	return NewGormPaymentRepository(t.tx)
}

func (t *gormPostingTx) LoyaltyTransactions() loyalty.TransactionRepository {
	return NewGormLoyaltyTransactionRepository(t.tx)
}

func (t *gormPostingTx) LoyaltyLinks() finance.LoyaltyLinkRepository {
	return NewGormLoyaltyLinkRepository(t.tx)
}

func (t *gormPostingTx) Balances() warehouse.BalanceRepository {
	return NewGormBalanceRepository(t.tx)
}

// SaveEvents writes domain events to the transactional outbox
func (t *gormPostingTx) SaveEvents(ctx context.Context, events ...shared.DomainEvent) error {
	if len(events) == 0 {
		return nil
	}
	return t.eventSaver.SaveEvents(ctx, t.tx, events...)
}
