package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/orderpost/backend/internal/domain/finance"
)

// GormPaymentRepository implements PaymentRepository using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

var _ finance.PaymentRepository = (*GormPaymentRepository)(nil)

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// Create inserts a payment
func (r *GormPaymentRepository) Create(ctx context.Context, payment *finance.Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

// CreateLink inserts a payment-to-order link
func (r *GormPaymentRepository) CreateLink(ctx context.Context, link *finance.PaymentLink) error {
	return r.db.WithContext(ctx).Create(link).Error
}

// FindByOrderID returns the payments linked to an order
func (r *GormPaymentRepository) FindByOrderID(ctx context.Context, orderID uuid.UUID) ([]finance.Payment, error) {
	var payments []finance.Payment
	err := r.db.WithContext(ctx).
		Joins("JOIN payment_links ON payment_links.payment_id = payments.id").
		Where("payment_links.order_id = ?", orderID).
		Find(&payments).Error
	if err != nil {
		return nil, err
	}
	return payments, nil
}

// GormLoyaltyLinkRepository implements LoyaltyLinkRepository using GORM
type GormLoyaltyLinkRepository struct {
	db *gorm.DB
}

var _ finance.LoyaltyLinkRepository = (*GormLoyaltyLinkRepository)(nil)

// NewGormLoyaltyLinkRepository creates a new GormLoyaltyLinkRepository
func NewGormLoyaltyLinkRepository(db *gorm.DB) *GormLoyaltyLinkRepository {
	return &GormLoyaltyLinkRepository{db: db}
}

// Create inserts a loyalty transaction link
func (r *GormLoyaltyLinkRepository) Create(ctx context.Context, link *finance.LoyaltyTransactionLink) error {
	return r.db.WithContext(ctx).Create(link).Error
}
