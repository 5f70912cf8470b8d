package warehouse

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/orderpost/backend/internal/domain/shared"
)

type mockBalanceRepository struct {
	mock.Mock
}

func (m *mockBalanceRepository) LatestForUpdate(ctx context.Context, organizationID, warehouseID, nomenclatureID uuid.UUID) (*BalanceEntry, error) {
	args := m.Called(ctx, organizationID, warehouseID, nomenclatureID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*BalanceEntry), args.Error(1)
}

func (m *mockBalanceRepository) Create(ctx context.Context, entry *BalanceEntry) error {
	return m.Called(ctx, entry).Error(0)
}

func (m *mockBalanceRepository) FindByOrderID(ctx context.Context, orderID uuid.UUID) ([]BalanceEntry, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]BalanceEntry), args.Error(1)
}

func TestBalancePoster_PostOutgoing(t *testing.T) {
	organizationID := uuid.New()
	warehouseID := uuid.New()
	nomenclatureID := uuid.New()
	orderID := uuid.New()

	t.Run("first movement starts from zero", func(t *testing.T) {
		repo := new(mockBalanceRepository)
		repo.On("LatestForUpdate", mock.Anything, organizationID, warehouseID, nomenclatureID).Return(nil, nil)
		repo.On("Create", mock.Anything, mock.MatchedBy(func(e *BalanceEntry) bool {
			return e.CurrentAmount.Equal(decimal.NewFromInt(-3)) && e.OrganizationID == organizationID
		})).Return(nil)

		poster := NewBalancePoster(repo)
		entry, err := poster.PostOutgoing(context.Background(), organizationID, warehouseID, nomenclatureID, orderID, decimal.NewFromInt(3))

		assert.NoError(t, err)
		assert.True(t, entry.OutgoingAmount.Equal(decimal.NewFromInt(3)))
		assert.True(t, entry.CurrentAmount.Equal(decimal.NewFromInt(-3)))
		repo.AssertExpectations(t)
	})

	t.Run("decrements the latest running total", func(t *testing.T) {
		repo := new(mockBalanceRepository)
		repo.On("LatestForUpdate", mock.Anything, organizationID, warehouseID, nomenclatureID).Return(&BalanceEntry{
			BaseEntity:    shared.NewBaseEntity(),
			CurrentAmount: decimal.NewFromInt(10),
		}, nil)
		repo.On("Create", mock.Anything, mock.Anything).Return(nil)

		poster := NewBalancePoster(repo)
		entry, err := poster.PostOutgoing(context.Background(), organizationID, warehouseID, nomenclatureID, orderID, decimal.NewFromInt(4))

		assert.NoError(t, err)
		assert.True(t, entry.CurrentAmount.Equal(decimal.NewFromInt(6)), "got %s", entry.CurrentAmount)
	})

	t.Run("balance may go negative", func(t *testing.T) {
		repo := new(mockBalanceRepository)
		repo.On("LatestForUpdate", mock.Anything, organizationID, warehouseID, nomenclatureID).Return(&BalanceEntry{
			BaseEntity:    shared.NewBaseEntity(),
			CurrentAmount: decimal.NewFromInt(2),
		}, nil)
		repo.On("Create", mock.Anything, mock.Anything).Return(nil)

		poster := NewBalancePoster(repo)
		entry, err := poster.PostOutgoing(context.Background(), organizationID, warehouseID, nomenclatureID, orderID, decimal.NewFromInt(5))

		assert.NoError(t, err)
		assert.True(t, entry.CurrentAmount.Equal(decimal.NewFromInt(-3)))
	})

	t.Run("organizations sharing a warehouse keep separate chains", func(t *testing.T) {
		otherOrg := uuid.New()
		repo := new(mockBalanceRepository)
		repo.On("LatestForUpdate", mock.Anything, organizationID, warehouseID, nomenclatureID).Return(&BalanceEntry{
			BaseEntity:     shared.NewBaseEntity(),
			OrganizationID: organizationID,
			CurrentAmount:  decimal.NewFromInt(-3),
		}, nil)
		repo.On("LatestForUpdate", mock.Anything, otherOrg, warehouseID, nomenclatureID).Return(nil, nil)
		repo.On("Create", mock.Anything, mock.Anything).Return(nil)

		poster := NewBalancePoster(repo)
		first, err := poster.PostOutgoing(context.Background(), organizationID, warehouseID, nomenclatureID, orderID, decimal.NewFromInt(2))
		assert.NoError(t, err)
		second, err := poster.PostOutgoing(context.Background(), otherOrg, warehouseID, nomenclatureID, uuid.New(), decimal.NewFromInt(2))
		assert.NoError(t, err)

		assert.True(t, first.CurrentAmount.Equal(decimal.NewFromInt(-5)))
		assert.True(t, second.CurrentAmount.Equal(decimal.NewFromInt(-2)),
			"second organization must start its own chain, got %s", second.CurrentAmount)
		repo.AssertExpectations(t)
	})

	t.Run("non-positive quantity is rejected", func(t *testing.T) {
		poster := NewBalancePoster(new(mockBalanceRepository))
		_, err := poster.PostOutgoing(context.Background(), organizationID, warehouseID, nomenclatureID, orderID, decimal.Zero)

		var postErr *BalancePostingError
		assert.ErrorAs(t, err, &postErr)
		assert.Equal(t, warehouseID, postErr.WarehouseID)
	})

	t.Run("lock failure surfaces as posting error", func(t *testing.T) {
		repo := new(mockBalanceRepository)
		repo.On("LatestForUpdate", mock.Anything, organizationID, warehouseID, nomenclatureID).Return(nil, errors.New("lock timeout"))

		poster := NewBalancePoster(repo)
		_, err := poster.PostOutgoing(context.Background(), organizationID, warehouseID, nomenclatureID, orderID, decimal.NewFromInt(1))

		var postErr *BalancePostingError
		assert.ErrorAs(t, err, &postErr)
	})
}
