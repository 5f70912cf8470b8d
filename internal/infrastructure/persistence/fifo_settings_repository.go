package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/orderpost/backend/internal/domain/finance"
)

// GormFifoSettingsReader implements FifoSettingsReader using GORM
type GormFifoSettingsReader struct {
	db *gorm.DB
}

var _ finance.FifoSettingsReader = (*GormFifoSettingsReader)(nil)

// NewGormFifoSettingsReader creates a new GormFifoSettingsReader
func NewGormFifoSettingsReader(db *gorm.DB) *GormFifoSettingsReader {
	return &GormFifoSettingsReader{db: db}
}

// Get returns the settings for the organization, or nil when none exist
func (r *GormFifoSettingsReader) Get(ctx context.Context, organizationID uuid.UUID) (*finance.FifoSettings, error) {
	var settings finance.FifoSettings
	err := r.db.WithContext(ctx).First(&settings, "organization_id = ?", organizationID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &settings, nil
}
