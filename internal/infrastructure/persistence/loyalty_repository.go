package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/orderpost/backend/internal/domain/loyalty"
	"github.com/orderpost/backend/internal/domain/shared"
)

// GormLoyaltyTransactionRepository implements TransactionRepository using GORM
type GormLoyaltyTransactionRepository struct {
	db *gorm.DB
}

var _ loyalty.TransactionRepository = (*GormLoyaltyTransactionRepository)(nil)

// NewGormLoyaltyTransactionRepository creates a new GormLoyaltyTransactionRepository
func NewGormLoyaltyTransactionRepository(db *gorm.DB) *GormLoyaltyTransactionRepository {
	return &GormLoyaltyTransactionRepository{db: db}
}

// Create inserts a loyalty transaction
func (r *GormLoyaltyTransactionRepository) Create(ctx context.Context, tx *loyalty.LoyaltyTransaction) error {
	return r.db.WithContext(ctx).Create(tx).Error
}

// FindByOrderID returns the transactions posted for an order
func (r *GormLoyaltyTransactionRepository) FindByOrderID(ctx context.Context, orderID uuid.UUID) ([]loyalty.LoyaltyTransaction, error) {
	var txs []loyalty.LoyaltyTransaction
	err := r.db.WithContext(ctx).
		Joins("JOIN loyalty_transaction_links ON loyalty_transaction_links.transaction_id = loyalty_transactions.id").
		Where("loyalty_transaction_links.order_id = ?", orderID).
		Find(&txs).Error
	if err != nil {
		return nil, err
	}
	return txs, nil
}

// GormLoyaltyCardReader implements CardReader using GORM
type GormLoyaltyCardReader struct {
	db *gorm.DB
}

var _ loyalty.CardReader = (*GormLoyaltyCardReader)(nil)

// NewGormLoyaltyCardReader creates a new GormLoyaltyCardReader
func NewGormLoyaltyCardReader(db *gorm.DB) *GormLoyaltyCardReader {
	return &GormLoyaltyCardReader{db: db}
}

// Get returns the card or shared.ErrNotFound
func (r *GormLoyaltyCardReader) Get(ctx context.Context, id uuid.UUID) (*loyalty.LoyaltyCard, error) {
	var card loyalty.LoyaltyCard
	if err := r.db.WithContext(ctx).First(&card, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &card, nil
}
