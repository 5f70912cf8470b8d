package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appsales "github.com/orderpost/backend/internal/application/sales"
	"github.com/orderpost/backend/internal/domain/finance"
	"github.com/orderpost/backend/internal/domain/sales"
	"github.com/orderpost/backend/internal/infrastructure/event"
	"github.com/orderpost/backend/internal/infrastructure/persistence"
)

// services bundles the application services wired against the test database,
// the same way cmd/server wires them against the real one.
type services struct {
	posting *appsales.OrderPostingService
	status  *appsales.OrderStatusService
	query   *appsales.OrderQueryService
}

func newServices(tdb *TestDB) *services {
	serializer := event.NewEventSerializer()
	event.RegisterAllEvents(serializer)
	publisher := event.NewOutboxPublisher(serializer)

	uow := persistence.NewGormPostingUnitOfWork(tdb.DB, publisher)
	validator := appsales.NewReferenceValidator(persistence.NewGormReferenceChecker(tdb.DB))
	periodLock := finance.NewPeriodLockChecker(persistence.NewGormFifoSettingsReader(tdb.DB))
	logger := zap.NewNop()

	return &services{
		posting: appsales.NewOrderPostingService(
			uow,
			validator,
			periodLock,
			persistence.NewGormNomenclatureReader(tdb.DB),
			persistence.NewGormLoyaltyCardReader(tdb.DB),
			logger,
		),
		status: appsales.NewOrderStatusService(uow, logger),
		query:  appsales.NewOrderQueryService(persistence.NewGormSalesOrderRepository(tdb.DB)),
	}
}

// refs holds the seeded reference rows shared by the posting tests
type refs struct {
	organization uuid.UUID
	contragent   uuid.UUID
	warehouse    uuid.UUID
	unit         uuid.UUID
	widget       uuid.UUID // tracked product, 10% cashback
	delivery     uuid.UUID // service, no cashback, no stock
	card         uuid.UUID
}

func seedRefs(tdb *TestDB) refs {
	return refs{
		organization: tdb.SeedOrganization("Main Org"),
		contragent:   tdb.SeedContragent("Retail Customer"),
		warehouse:    tdb.SeedWarehouse("Central Warehouse"),
		unit:         tdb.SeedUnit("pcs"),
		widget:       tdb.SeedNomenclature("Widget", "product", "percent", "10"),
		delivery:     tdb.SeedNomenclature("Delivery", "service", "no_cashback", "0"),
		card:         tdb.SeedLoyaltyCard("CARD-0001", "500", "5"),
	}
}

// orderRequest builds a two-line order: 2 widgets at 100 plus one delivery at
// 50, paid 200 in cash and 50 in points. Cash share is 0.8, so the 10%
// widget cashback comes out to 200 * 0.10 * 0.8 = 16.
func orderRequest(r refs, dated time.Time) appsales.CreateOrderRequest {
	return appsales.CreateOrderRequest{
		Dated:          dated,
		OrganizationID: r.organization,
		ContragentID:   r.contragent,
		WarehouseID:    &r.warehouse,
		LoyaltyCardID:  &r.card,
		PaidRubles:     decimal.NewFromInt(200),
		PaidLoyalty:    decimal.NewFromInt(50),
		Goods: []appsales.GoodsItem{
			{
				NomenclatureID: r.widget,
				Price:          decimal.NewFromInt(100),
				Quantity:       decimal.NewFromInt(2),
				UnitID:         r.unit,
			},
			{
				NomenclatureID: r.delivery,
				Price:          decimal.NewFromInt(50),
				Quantity:       decimal.NewFromInt(1),
				UnitID:         r.unit,
			},
		},
	}
}

func countRows(t *testing.T, tdb *TestDB, query string, args ...interface{}) int64 {
	t.Helper()
	var count int64
	err := tdb.DB.Raw(query, args...).Scan(&count).Error
	require.NoError(t, err)
	return count
}

func TestOrderPosting_CreateBatch_PostsFullCascade(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	tdb := NewTestDB(t)
	svc := newServices(tdb)
	r := seedRefs(tdb)
	ctx := context.Background()

	dated := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	responses, err := svc.posting.CreateBatch(ctx, []appsales.CreateOrderRequest{orderRequest(r, dated)})
	require.NoError(t, err)
	require.Len(t, responses, 1)

	order := responses[0]
	assert.Equal(t, "1", order.Number)
	assert.True(t, decimal.NewFromInt(250).Equal(order.Sum), "sum = %s", order.Sum)
	assert.True(t, order.Paid)
	assert.Equal(t, "received", order.Status)
	require.Len(t, order.Goods, 2)
	assert.True(t, decimal.NewFromInt(200).Equal(order.Goods[0].Amount))

	// order and lines
	assert.EqualValues(t, 1, countRows(t, tdb, `SELECT COUNT(*) FROM sales_orders`))
	assert.EqualValues(t, 2, countRows(t, tdb, `SELECT COUNT(*) FROM sales_order_lines WHERE order_id = ?`, order.ID))

	// cash leg: one incoming payment linked back to the order
	var payment struct {
		ID        uuid.UUID
		Amount    decimal.Decimal
		Direction string
	}
	err = tdb.DB.Raw(`SELECT id, amount, direction FROM payments`).Scan(&payment).Error
	require.NoError(t, err)
	assert.Equal(t, "incoming", payment.Direction)
	assert.True(t, decimal.NewFromInt(200).Equal(payment.Amount))
	assert.EqualValues(t, 1, countRows(t, tdb,
		`SELECT COUNT(*) FROM payment_links WHERE payment_id = ? AND order_id = ?`, payment.ID, order.ID))

	// loyalty leg: withdraw of the points paid plus the cashback accrual
	assert.EqualValues(t, 1, countRows(t, tdb,
		`SELECT COUNT(*) FROM loyalty_transactions WHERE card_id = ? AND type = 'withdraw' AND amount = 50`, r.card))
	assert.EqualValues(t, 1, countRows(t, tdb,
		`SELECT COUNT(*) FROM loyalty_transactions WHERE card_id = ? AND type = 'accrual' AND amount = 16`, r.card))
	assert.EqualValues(t, 2, countRows(t, tdb,
		`SELECT COUNT(*) FROM loyalty_transaction_links WHERE order_id = ?`, order.ID))

	// stock leg: only the tracked product hits the running balance
	var balance struct {
		OutgoingAmount decimal.Decimal
		CurrentAmount  decimal.Decimal
	}
	err = tdb.DB.Raw(`
		SELECT outgoing_amount, current_amount FROM warehouse_balances
		WHERE organization_id = ? AND nomenclature_id = ?
	`, r.organization, r.widget).Scan(&balance).Error
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(2).Equal(balance.OutgoingAmount))
	assert.True(t, decimal.NewFromInt(-2).Equal(balance.CurrentAmount))
	assert.EqualValues(t, 0, countRows(t, tdb,
		`SELECT COUNT(*) FROM warehouse_balances WHERE nomenclature_id = ?`, r.delivery))

	// the posted event is committed with the order
	assert.EqualValues(t, 1, countRows(t, tdb,
		`SELECT COUNT(*) FROM outbox_entries WHERE event_type = 'sales_order.posted' AND status = 'PENDING'`))
}

func TestOrderPosting_RunningBalanceAccumulates(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	tdb := NewTestDB(t)
	svc := newServices(tdb)
	r := seedRefs(tdb)
	ctx := context.Background()

	dated := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		_, err := svc.posting.CreateBatch(ctx, []appsales.CreateOrderRequest{orderRequest(r, dated)})
		require.NoError(t, err)
	}

	var totals []decimal.Decimal
	err := tdb.DB.Raw(`
		SELECT current_amount FROM warehouse_balances
		WHERE organization_id = ? AND warehouse_id = ? AND nomenclature_id = ?
		ORDER BY created_at
	`, r.organization, r.warehouse, r.widget).Scan(&totals).Error
	require.NoError(t, err)
	require.Len(t, totals, 3)

	for i, want := range []int64{-2, -4, -6} {
		assert.True(t, decimal.NewFromInt(want).Equal(totals[i]), "entry %d = %s", i, totals[i])
	}
}

func TestOrderPosting_BalanceChainsPerOrganization(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	tdb := NewTestDB(t)
	svc := newServices(tdb)
	r := seedRefs(tdb)
	otherOrg := tdb.SeedOrganization("Second Org")
	ctx := context.Background()

	dated := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

	// both organizations sell the same nomenclature from the same warehouse
	_, err := svc.posting.CreateBatch(ctx, []appsales.CreateOrderRequest{orderRequest(r, dated)})
	require.NoError(t, err)

	otherReq := orderRequest(r, dated)
	otherReq.OrganizationID = otherOrg
	_, err = svc.posting.CreateBatch(ctx, []appsales.CreateOrderRequest{otherReq})
	require.NoError(t, err)

	chainTail := func(org uuid.UUID) decimal.Decimal {
		var current decimal.Decimal
		err := tdb.DB.Raw(`
			SELECT current_amount FROM warehouse_balances
			WHERE organization_id = ? AND warehouse_id = ? AND nomenclature_id = ?
			ORDER BY created_at DESC LIMIT 1
		`, org, r.warehouse, r.widget).Scan(&current).Error
		require.NoError(t, err)
		return current
	}

	assert.True(t, decimal.NewFromInt(-2).Equal(chainTail(r.organization)))
	assert.True(t, decimal.NewFromInt(-2).Equal(chainTail(otherOrg)),
		"second organization must not continue the first one's chain")
}

func TestOrderPosting_SequentialNumbersPerOrganization(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	tdb := NewTestDB(t)
	svc := newServices(tdb)
	r := seedRefs(tdb)
	otherOrg := tdb.SeedOrganization("Second Org")
	ctx := context.Background()

	dated := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

	first, err := svc.posting.CreateBatch(ctx, []appsales.CreateOrderRequest{orderRequest(r, dated)})
	require.NoError(t, err)
	second, err := svc.posting.CreateBatch(ctx, []appsales.CreateOrderRequest{orderRequest(r, dated)})
	require.NoError(t, err)

	otherReq := orderRequest(r, dated)
	otherReq.OrganizationID = otherOrg
	third, err := svc.posting.CreateBatch(ctx, []appsales.CreateOrderRequest{otherReq})
	require.NoError(t, err)

	assert.Equal(t, "1", first[0].Number)
	assert.Equal(t, "2", second[0].Number)
	assert.Equal(t, "1", third[0].Number, "numbering is independent per organization")

	found, err := svc.query.GetByNumber(ctx, r.organization, "2")
	require.NoError(t, err)
	assert.Equal(t, second[0].ID, found.ID)
}

func TestOrderPosting_NumberReuseAfterDelete(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	tdb := NewTestDB(t)
	svc := newServices(tdb)
	r := seedRefs(tdb)
	ctx := context.Background()

	dated := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	first, err := svc.posting.CreateBatch(ctx, []appsales.CreateOrderRequest{orderRequest(r, dated)})
	require.NoError(t, err)
	require.Equal(t, "1", first[0].Number)

	require.NoError(t, svc.status.Delete(ctx, first[0].ID))

	// the deleted row keeps its number but leaves the live namespace
	assert.EqualValues(t, 1, countRows(t, tdb,
		`SELECT COUNT(*) FROM sales_orders WHERE deleted_at IS NOT NULL`))

	second, err := svc.posting.CreateBatch(ctx, []appsales.CreateOrderRequest{orderRequest(r, dated)})
	require.NoError(t, err)
	assert.Equal(t, "1", second[0].Number, "number of a deleted order is reissued")

	_, err = svc.query.GetByID(ctx, first[0].ID)
	assert.Error(t, err, "deleted order is not readable")
}

func TestOrderPosting_PeriodLockRejectsWithoutSideEffects(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	tdb := NewTestDB(t)
	svc := newServices(tdb)
	r := seedRefs(tdb)
	ctx := context.Background()

	blocked := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)
	tdb.SeedBlockedPeriod(r.organization, blocked)

	// dated inside the closed period
	_, err := svc.posting.CreateBatch(ctx, []appsales.CreateOrderRequest{
		orderRequest(r, time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)),
	})
	var locked *finance.PeriodLockedError
	require.ErrorAs(t, err, &locked)
	assert.Equal(t, r.organization, locked.OrganizationID)

	for _, table := range []string{
		"sales_orders", "sales_order_lines", "payments", "payment_links",
		"loyalty_transactions", "warehouse_balances", "outbox_entries",
	} {
		assert.EqualValues(t, 0, countRows(t, tdb, fmt.Sprintf(`SELECT COUNT(*) FROM %s`, table)),
			"table %s must stay empty", table)
	}

	// the day after the blocked date posts fine
	_, err = svc.posting.CreateBatch(ctx, []appsales.CreateOrderRequest{
		orderRequest(r, time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)),
	})
	require.NoError(t, err)
}

func TestOrderPosting_UnknownReferenceRejectsBatch(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	tdb := NewTestDB(t)
	svc := newServices(tdb)
	r := seedRefs(tdb)
	ctx := context.Background()

	dated := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	good := orderRequest(r, dated)
	bad := orderRequest(r, dated)
	bad.ContragentID = uuid.New()

	// one bad order fails the whole batch before any write
	_, err := svc.posting.CreateBatch(ctx, []appsales.CreateOrderRequest{good, bad})
	var validation *sales.ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, sales.RefContragent, validation.Kind)
	assert.Contains(t, validation.MissingIDs, bad.ContragentID)

	assert.EqualValues(t, 0, countRows(t, tdb, `SELECT COUNT(*) FROM sales_orders`))
	assert.EqualValues(t, 0, countRows(t, tdb, `SELECT COUNT(*) FROM outbox_entries`))
}

func TestOrderPosting_UpdateBatchAppendsLedgers(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	tdb := NewTestDB(t)
	svc := newServices(tdb)
	r := seedRefs(tdb)
	ctx := context.Background()

	dated := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	created, err := svc.posting.CreateBatch(ctx, []appsales.CreateOrderRequest{orderRequest(r, dated)})
	require.NoError(t, err)
	orderID := created[0].ID

	// replace the goods with a single widget line, fully cash paid
	updated, err := svc.posting.UpdateBatch(ctx, []appsales.UpdateOrderRequest{{
		ID:            orderID,
		Dated:         dated,
		WarehouseID:   &r.warehouse,
		LoyaltyCardID: &r.card,
		PaidRubles:    decimal.NewFromInt(300),
		PaidLoyalty:   decimal.Zero,
		Goods: []appsales.GoodsItem{{
			NomenclatureID: r.widget,
			Price:          decimal.NewFromInt(100),
			Quantity:       decimal.NewFromInt(3),
			UnitID:         r.unit,
		}},
	}})
	require.NoError(t, err)
	assert.Equal(t, "1", updated[0].Number, "re-posting keeps the assigned number")
	assert.True(t, decimal.NewFromInt(300).Equal(updated[0].Sum))

	// lines are replaced, ledgers are appended next to the original rows
	assert.EqualValues(t, 1, countRows(t, tdb, `SELECT COUNT(*) FROM sales_order_lines WHERE order_id = ?`, orderID))
	assert.EqualValues(t, 2, countRows(t, tdb, `SELECT COUNT(*) FROM payments`))
	assert.EqualValues(t, 2, countRows(t, tdb, `SELECT COUNT(*) FROM payment_links WHERE order_id = ?`, orderID))

	// the original withdraw and accrual stay; the re-post adds a full-share
	// cashback accrual of 300 * 0.10 = 30
	assert.EqualValues(t, 1, countRows(t, tdb,
		`SELECT COUNT(*) FROM loyalty_transactions WHERE type = 'withdraw'`))
	assert.EqualValues(t, 1, countRows(t, tdb,
		`SELECT COUNT(*) FROM loyalty_transactions WHERE type = 'accrual' AND amount = 30`))

	// the balance keeps running across postings: -2 from create, -5 after
	var current decimal.Decimal
	err = tdb.DB.Raw(`
		SELECT current_amount FROM warehouse_balances
		WHERE organization_id = ? AND warehouse_id = ? AND nomenclature_id = ?
		ORDER BY created_at DESC LIMIT 1
	`, r.organization, r.warehouse, r.widget).Scan(&current).Error
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(-5).Equal(current), "current = %s", current)

	assert.EqualValues(t, 1, countRows(t, tdb,
		`SELECT COUNT(*) FROM outbox_entries WHERE event_type = 'sales_order.reposted'`))
}

func TestOrderStatus_WorkflowTransitions(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	tdb := NewTestDB(t)
	svc := newServices(tdb)
	r := seedRefs(tdb)
	ctx := context.Background()

	dated := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	created, err := svc.posting.CreateBatch(ctx, []appsales.CreateOrderRequest{orderRequest(r, dated)})
	require.NoError(t, err)
	orderID := created[0].ID
	picker := uuid.New()

	resp, err := svc.status.Transition(ctx, orderID, "processed", nil)
	require.NoError(t, err)
	assert.Equal(t, "processed", resp.Status)

	resp, err = svc.status.Transition(ctx, orderID, "collecting", &picker)
	require.NoError(t, err)
	assert.Equal(t, "collecting", resp.Status)
	require.NotNil(t, resp.PickerID)
	assert.Equal(t, picker, *resp.PickerID)

	// skipping ahead in the workflow is rejected
	_, err = svc.status.Transition(ctx, orderID, "delivered", nil)
	var transition *sales.StatusTransitionError
	require.ErrorAs(t, err, &transition)
	assert.Equal(t, sales.OrderStateCollecting, transition.From)
	assert.Equal(t, sales.OrderStateDelivered, transition.To)

	// closing is allowed from any non-terminal state and is final
	resp, err = svc.status.Transition(ctx, orderID, "closed", nil)
	require.NoError(t, err)
	assert.Equal(t, "closed", resp.Status)

	_, err = svc.status.Transition(ctx, orderID, "received", nil)
	require.ErrorAs(t, err, &transition)

	found, err := svc.query.GetByID(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, "closed", found.Status)
}
