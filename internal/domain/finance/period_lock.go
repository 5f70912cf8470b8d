package finance

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// FifoSettings holds the per-organization accounting close configuration.
// Documents dated on or before BlockedDate may not be posted or edited.
type FifoSettings struct {
	OrganizationID uuid.UUID  `gorm:"type:uuid;primaryKey"`
	BlockedDate    *time.Time `gorm:"type:date"`
	UpdatedAt      time.Time
}

// TableName returns the table name for GORM
func (FifoSettings) TableName() string {
	return "fifo_settings"
}

// PeriodLockedError signals that a document falls into a closed accounting
// period. The write is rejected with no side effects.
type PeriodLockedError struct {
	OrganizationID uuid.UUID
	BlockedDate    time.Time
}

// Error implements the error interface
func (e *PeriodLockedError) Error() string {
	return fmt.Sprintf("period locked for organization %s through %s",
		e.OrganizationID, e.BlockedDate.Format("2006-01-02"))
}

// FifoSettingsReader provides read access to the accounting close settings
type FifoSettingsReader interface {
	// Get returns the settings for the organization, or nil when none exist
	Get(ctx context.Context, organizationID uuid.UUID) (*FifoSettings, error)
}

// PeriodLockChecker is a domain service that rejects writes into closed
// accounting periods. An organization without settings, or with a nil blocked
// date, is always open.
type PeriodLockChecker struct {
	settings FifoSettingsReader
}

// NewPeriodLockChecker creates a new period lock checker
func NewPeriodLockChecker(settings FifoSettingsReader) *PeriodLockChecker {
	return &PeriodLockChecker{settings: settings}
}

// Check returns *PeriodLockedError when dated falls on or before the
// organization's blocked date. Comparison is by calendar day.
func (c *PeriodLockChecker) Check(ctx context.Context, organizationID uuid.UUID, dated time.Time) error {
	settings, err := c.settings.Get(ctx, organizationID)
	if err != nil {
		return err
	}
	if settings == nil || settings.BlockedDate == nil {
		return nil
	}

	day := func(t time.Time) time.Time {
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	}
	if !day(dated).After(day(*settings.BlockedDate)) {
		return &PeriodLockedError{
			OrganizationID: organizationID,
			BlockedDate:    *settings.BlockedDate,
		}
	}
	return nil
}
