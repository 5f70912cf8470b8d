package finance

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockFifoSettingsReader struct {
	mock.Mock
}

func (m *mockFifoSettingsReader) Get(ctx context.Context, organizationID uuid.UUID) (*FifoSettings, error) {
	args := m.Called(ctx, organizationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*FifoSettings), args.Error(1)
}

func TestPeriodLockChecker_Check(t *testing.T) {
	orgID := uuid.New()
	blocked := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)

	t.Run("no settings means open period", func(t *testing.T) {
		reader := new(mockFifoSettingsReader)
		reader.On("Get", mock.Anything, orgID).Return(nil, nil)

		checker := NewPeriodLockChecker(reader)
		err := checker.Check(context.Background(), orgID, time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC))

		assert.NoError(t, err)
		reader.AssertExpectations(t)
	})

	t.Run("nil blocked date means open period", func(t *testing.T) {
		reader := new(mockFifoSettingsReader)
		reader.On("Get", mock.Anything, orgID).Return(&FifoSettings{OrganizationID: orgID}, nil)

		checker := NewPeriodLockChecker(reader)
		err := checker.Check(context.Background(), orgID, time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC))

		assert.NoError(t, err)
	})

	t.Run("date before blocked date is rejected", func(t *testing.T) {
		reader := new(mockFifoSettingsReader)
		reader.On("Get", mock.Anything, orgID).Return(&FifoSettings{OrganizationID: orgID, BlockedDate: &blocked}, nil)

		checker := NewPeriodLockChecker(reader)
		err := checker.Check(context.Background(), orgID, time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC))

		var lockErr *PeriodLockedError
		assert.ErrorAs(t, err, &lockErr)
		assert.Equal(t, orgID, lockErr.OrganizationID)
	})

	t.Run("date equal to blocked date is rejected", func(t *testing.T) {
		reader := new(mockFifoSettingsReader)
		reader.On("Get", mock.Anything, orgID).Return(&FifoSettings{OrganizationID: orgID, BlockedDate: &blocked}, nil)

		checker := NewPeriodLockChecker(reader)
		err := checker.Check(context.Background(), orgID, time.Date(2026, 3, 31, 23, 59, 0, 0, time.UTC))

		var lockErr *PeriodLockedError
		assert.ErrorAs(t, err, &lockErr)
	})

	t.Run("date after blocked date passes", func(t *testing.T) {
		reader := new(mockFifoSettingsReader)
		reader.On("Get", mock.Anything, orgID).Return(&FifoSettings{OrganizationID: orgID, BlockedDate: &blocked}, nil)

		checker := NewPeriodLockChecker(reader)
		err := checker.Check(context.Background(), orgID, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC))

		assert.NoError(t, err)
	})

	t.Run("reader error propagates", func(t *testing.T) {
		reader := new(mockFifoSettingsReader)
		reader.On("Get", mock.Anything, orgID).Return(nil, errors.New("db down"))

		checker := NewPeriodLockChecker(reader)
		err := checker.Check(context.Background(), orgID, time.Now())

		assert.Error(t, err)
		var lockErr *PeriodLockedError
		assert.False(t, errors.As(err, &lockErr))
	})
}
