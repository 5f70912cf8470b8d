package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/orderpost/backend/internal/domain/warehouse"
)

// GormBalanceRepository implements BalanceRepository using GORM
type GormBalanceRepository struct {
	db *gorm.DB
}

var _ warehouse.BalanceRepository = (*GormBalanceRepository)(nil)

// NewGormBalanceRepository creates a new GormBalanceRepository
func NewGormBalanceRepository(db *gorm.DB) *GormBalanceRepository {
	return &GormBalanceRepository{db: db}
}

// LatestForUpdate returns the newest entry for the key under FOR UPDATE, or
// nil when the key has no history
func (r *GormBalanceRepository) LatestForUpdate(ctx context.Context, organizationID, warehouseID, nomenclatureID uuid.UUID) (*warehouse.BalanceEntry, error) {
	var entry warehouse.BalanceEntry
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("organization_id = ? AND warehouse_id = ? AND nomenclature_id = ?", organizationID, warehouseID, nomenclatureID).
		Order("created_at DESC, id DESC").
		First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// Create appends a balance entry
func (r *GormBalanceRepository) Create(ctx context.Context, entry *warehouse.BalanceEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// FindByOrderID returns the entries posted for an order
func (r *GormBalanceRepository) FindByOrderID(ctx context.Context, orderID uuid.UUID) ([]warehouse.BalanceEntry, error) {
	var entries []warehouse.BalanceEntry
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}
