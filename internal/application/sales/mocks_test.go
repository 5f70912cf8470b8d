package sales

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/orderpost/backend/internal/domain/catalog"
	"github.com/orderpost/backend/internal/domain/finance"
	"github.com/orderpost/backend/internal/domain/loyalty"
	"github.com/orderpost/backend/internal/domain/sales"
	"github.com/orderpost/backend/internal/domain/shared"
	"github.com/orderpost/backend/internal/domain/warehouse"
)

type mockOrderRepository struct {
	mock.Mock
}

func (m *mockOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*sales.SalesOrder, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sales.SalesOrder), args.Error(1)
}

func (m *mockOrderRepository) FindByNumber(ctx context.Context, organizationID uuid.UUID, number string) (*sales.SalesOrder, error) {
	args := m.Called(ctx, organizationID, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sales.SalesOrder), args.Error(1)
}

func (m *mockOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]sales.SalesOrder, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]sales.SalesOrder), args.Error(1)
}

func (m *mockOrderRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockOrderRepository) NextNumber(ctx context.Context, organizationID uuid.UUID) (string, error) {
	args := m.Called(ctx, organizationID)
	return args.String(0), args.Error(1)
}

func (m *mockOrderRepository) Create(ctx context.Context, order *sales.SalesOrder) error {
	return m.Called(ctx, order).Error(0)
}

func (m *mockOrderRepository) Update(ctx context.Context, order *sales.SalesOrder) error {
	return m.Called(ctx, order).Error(0)
}

func (m *mockOrderRepository) ReplaceLines(ctx context.Context, orderID uuid.UUID, lines []sales.OrderLine) error {
	return m.Called(ctx, orderID, lines).Error(0)
}

func (m *mockOrderRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type mockPaymentRepository struct {
	mock.Mock
}

func (m *mockPaymentRepository) Create(ctx context.Context, payment *finance.Payment) error {
	return m.Called(ctx, payment).Error(0)
}

func (m *mockPaymentRepository) CreateLink(ctx context.Context, link *finance.PaymentLink) error {
	return m.Called(ctx, link).Error(0)
}

func (m *mockPaymentRepository) FindByOrderID(ctx context.Context, orderID uuid.UUID) ([]finance.Payment, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]finance.Payment), args.Error(1)
}

type mockLoyaltyTxRepository struct {
	mock.Mock
}

func (m *mockLoyaltyTxRepository) Create(ctx context.Context, tx *loyalty.LoyaltyTransaction) error {
	return m.Called(ctx, tx).Error(0)
}

func (m *mockLoyaltyTxRepository) FindByOrderID(ctx context.Context, orderID uuid.UUID) ([]loyalty.LoyaltyTransaction, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]loyalty.LoyaltyTransaction), args.Error(1)
}

type mockLoyaltyLinkRepository struct {
	mock.Mock
}

func (m *mockLoyaltyLinkRepository) Create(ctx context.Context, link *finance.LoyaltyTransactionLink) error {
	return m.Called(ctx, link).Error(0)
}

type mockBalanceRepository struct {
	mock.Mock
}

func (m *mockBalanceRepository) LatestForUpdate(ctx context.Context, organizationID, warehouseID, nomenclatureID uuid.UUID) (*warehouse.BalanceEntry, error) {
	args := m.Called(ctx, organizationID, warehouseID, nomenclatureID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*warehouse.BalanceEntry), args.Error(1)
}

func (m *mockBalanceRepository) Create(ctx context.Context, entry *warehouse.BalanceEntry) error {
	return m.Called(ctx, entry).Error(0)
}

func (m *mockBalanceRepository) FindByOrderID(ctx context.Context, orderID uuid.UUID) ([]warehouse.BalanceEntry, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]warehouse.BalanceEntry), args.Error(1)
}

type mockReferenceChecker struct {
	mock.Mock
}

func (m *mockReferenceChecker) MissingIDs(ctx context.Context, kind sales.RefKind, ids []uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(ctx, kind, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

type mockNomenclatureReader struct {
	mock.Mock
}

func (m *mockNomenclatureReader) Get(ctx context.Context, id uuid.UUID) (*catalog.Nomenclature, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Nomenclature), args.Error(1)
}

func (m *mockNomenclatureReader) GetBatch(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*catalog.Nomenclature, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID]*catalog.Nomenclature), args.Error(1)
}

type mockCardReader struct {
	mock.Mock
}

func (m *mockCardReader) Get(ctx context.Context, id uuid.UUID) (*loyalty.LoyaltyCard, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*loyalty.LoyaltyCard), args.Error(1)
}

type mockFifoSettingsReader struct {
	mock.Mock
}

func (m *mockFifoSettingsReader) Get(ctx context.Context, organizationID uuid.UUID) (*finance.FifoSettings, error) {
	args := m.Called(ctx, organizationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*finance.FifoSettings), args.Error(1)
}

// fakeTx bundles the repository mocks the way a real transaction would and
// records every outbox save
type fakeTx struct {
	orders       *mockOrderRepository
	payments     *mockPaymentRepository
	loyaltyTxs   *mockLoyaltyTxRepository
	loyaltyLinks *mockLoyaltyLinkRepository
	balances     *mockBalanceRepository
	savedEvents  []shared.DomainEvent
}

func newFakeTx() *fakeTx {
	return &fakeTx{
		orders:       new(mockOrderRepository),
		payments:     new(mockPaymentRepository),
		loyaltyTxs:   new(mockLoyaltyTxRepository),
		loyaltyLinks: new(mockLoyaltyLinkRepository),
		balances:     new(mockBalanceRepository),
	}
}

func (f *fakeTx) Orders() sales.SalesOrderRepository               { return f.orders }
func (f *fakeTx) Payments() finance.PaymentRepository              { return f.payments }
func (f *fakeTx) LoyaltyTransactions() loyalty.TransactionRepository { return f.loyaltyTxs }
func (f *fakeTx) LoyaltyLinks() finance.LoyaltyLinkRepository      { return f.loyaltyLinks }
func (f *fakeTx) Balances() warehouse.BalanceRepository            { return f.balances }

func (f *fakeTx) SaveEvents(ctx context.Context, events ...shared.DomainEvent) error {
	f.savedEvents = append(f.savedEvents, events...)
	return nil
}

// fakeUnitOfWork runs fn against the fake transaction and counts executions
type fakeUnitOfWork struct {
	tx         *fakeTx
	executions int
}

func (u *fakeUnitOfWork) Execute(ctx context.Context, fn func(tx PostingTx) error) error {
	u.executions++
	return fn(u.tx)
}
