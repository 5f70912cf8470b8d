package sales

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/orderpost/backend/internal/domain/catalog"
	"github.com/orderpost/backend/internal/domain/finance"
	"github.com/orderpost/backend/internal/domain/loyalty"
	"github.com/orderpost/backend/internal/domain/sales"
	"github.com/orderpost/backend/internal/domain/warehouse"
)

// maxNumberRetries bounds how often one order's transaction is re-run after a
// duplicate number was detected on insert. Every retry re-reads the latest
// number under lock, so a second conflict is already unlikely.
const maxNumberRetries = 3

// OrderPostingService turns batches of order requests into committed orders
// with their cascading ledger postings. Each order runs in its own
// transaction covering number assignment, the order row and lines, payment
// and loyalty postings, warehouse balances and the outbox entries.
type OrderPostingService struct {
	uow           PostingUnitOfWork
	validator     *ReferenceValidator
	periodLock    *finance.PeriodLockChecker
	nomenclatures catalog.NomenclatureReader
	cards         loyalty.CardReader
	logger        *zap.Logger
}

// NewOrderPostingService creates a new order posting service
func NewOrderPostingService(
	uow PostingUnitOfWork,
	validator *ReferenceValidator,
	periodLock *finance.PeriodLockChecker,
	nomenclatures catalog.NomenclatureReader,
	cards loyalty.CardReader,
	logger *zap.Logger,
) *OrderPostingService {
	return &OrderPostingService{
		uow:           uow,
		validator:     validator,
		periodLock:    periodLock,
		nomenclatures: nomenclatures,
		cards:         cards,
		logger:        logger,
	}
}

// CreateBatch posts a batch of new orders. The whole batch is validated
// before any write; each order then commits in its own transaction, so a
// failing order does not undo the ones posted before it.
func (s *OrderPostingService) CreateBatch(ctx context.Context, reqs []CreateOrderRequest) ([]OrderResponse, error) {
	if len(reqs) == 0 {
		return []OrderResponse{}, nil
	}

	if err := s.validator.ValidateCreateBatch(ctx, reqs); err != nil {
		return nil, err
	}
	for i := range reqs {
		if err := s.periodLock.Check(ctx, reqs[i].OrganizationID, reqs[i].Dated); err != nil {
			return nil, err
		}
	}

	noms, err := s.loadNomenclatures(ctx, goodsOf(reqs))
	if err != nil {
		return nil, err
	}

	responses := make([]OrderResponse, 0, len(reqs))
	for i := range reqs {
		order, err := s.postCreate(ctx, &reqs[i], noms)
		if err != nil {
			return nil, err
		}
		s.logger.Info("Sales order posted",
			zap.String("order_id", order.ID.String()),
			zap.String("number", order.Number),
			zap.String("organization_id", order.OrganizationID.String()),
			zap.String("sum", order.Sum.String()),
		)
		responses = append(responses, ToOrderResponse(order))
	}
	return responses, nil
}

// UpdateBatch replaces the goods and header fields of existing orders and
// re-posts their ledger cascades. Postings are append-only: re-posting adds
// new ledger rows next to the old ones rather than reversing them.
func (s *OrderPostingService) UpdateBatch(ctx context.Context, reqs []UpdateOrderRequest) ([]OrderResponse, error) {
	if len(reqs) == 0 {
		return []OrderResponse{}, nil
	}

	if err := s.validator.ValidateUpdateBatch(ctx, reqs); err != nil {
		return nil, err
	}

	noms, err := s.loadNomenclatures(ctx, goodsOfUpdate(reqs))
	if err != nil {
		return nil, err
	}

	responses := make([]OrderResponse, 0, len(reqs))
	for i := range reqs {
		order, err := s.postUpdate(ctx, &reqs[i], noms)
		if err != nil {
			return nil, err
		}
		s.logger.Info("Sales order reposted",
			zap.String("order_id", order.ID.String()),
			zap.String("number", order.Number),
			zap.String("sum", order.Sum.String()),
		)
		responses = append(responses, ToOrderResponse(order))
	}
	return responses, nil
}

func (s *OrderPostingService) postCreate(ctx context.Context, req *CreateOrderRequest, noms map[uuid.UUID]*catalog.Nomenclature) (*sales.SalesOrder, error) {
	card, err := s.loadCard(ctx, req.LoyaltyCardID)
	if err != nil {
		return nil, err
	}

	var posted *sales.SalesOrder
	for attempt := 0; ; attempt++ {
		err = s.uow.Execute(ctx, func(tx PostingTx) error {
			order, err := s.buildOrder(req)
			if err != nil {
				return err
			}

			number := req.Number
			if number == "" {
				number, err = tx.Orders().NextNumber(ctx, order.OrganizationID)
				if err != nil {
					return err
				}
			}
			if err := order.AssignNumber(number); err != nil {
				return err
			}

			if err := tx.Orders().Create(ctx, order); err != nil {
				return err
			}

			cashback, err := s.postLedgers(ctx, tx, order, noms, card)
			if err != nil {
				return err
			}
			if err := s.postBalances(ctx, tx, order, noms); err != nil {
				return err
			}

			if err := tx.SaveEvents(ctx, sales.NewOrderPostedEvent(order, cashback)); err != nil {
				return err
			}

			posted = order
			return nil
		})

		// A caller-supplied number is not retried: re-running the
		// transaction would reuse the same number and fail again.
		var conflict *sales.NumberConflictError
		if errors.As(err, &conflict) && req.Number == "" && attempt < maxNumberRetries {
			s.logger.Warn("Order number conflict, retrying",
				zap.String("organization_id", conflict.OrganizationID.String()),
				zap.String("number", conflict.Number),
				zap.Int("attempt", attempt+1),
			)
			continue
		}
		if err != nil {
			return nil, err
		}
		return posted, nil
	}
}

func (s *OrderPostingService) postUpdate(ctx context.Context, req *UpdateOrderRequest, noms map[uuid.UUID]*catalog.Nomenclature) (*sales.SalesOrder, error) {
	card, err := s.loadCard(ctx, req.LoyaltyCardID)
	if err != nil {
		return nil, err
	}

	var posted *sales.SalesOrder
	err = s.uow.Execute(ctx, func(tx PostingTx) error {
		order, err := tx.Orders().FindByID(ctx, req.ID)
		if err != nil {
			return err
		}

		// Both the stored date and the new one must be outside the closed
		// period.
		if err := s.periodLock.Check(ctx, order.OrganizationID, order.Dated); err != nil {
			return err
		}
		if err := s.periodLock.Check(ctx, order.OrganizationID, req.Dated); err != nil {
			return err
		}

		order.Dated = req.Dated
		order.ContractID = req.ContractID
		order.WarehouseID = req.WarehouseID
		order.SalesManagerID = req.SalesManagerID
		order.LoyaltyCardID = req.LoyaltyCardID
		if err := order.SetPaymentSplit(req.PaidRubles, req.PaidLoyalty); err != nil {
			return err
		}
		if err := order.SetPriority(req.Priority); err != nil {
			return err
		}
		if req.Tags != nil {
			order.Tags = req.Tags
		}

		lines, err := buildLines(req.Goods)
		if err != nil {
			return err
		}
		order.ReplaceLines(lines)
		order.RefreshPaidFlag()

		if err := tx.Orders().ReplaceLines(ctx, order.ID, order.Lines); err != nil {
			return err
		}
		if err := tx.Orders().Update(ctx, order); err != nil {
			return err
		}

		if _, err := s.postLedgers(ctx, tx, order, noms, card); err != nil {
			return err
		}
		if err := s.postBalances(ctx, tx, order, noms); err != nil {
			return err
		}

		if err := tx.SaveEvents(ctx, sales.NewOrderRepostedEvent(order)); err != nil {
			return err
		}

		posted = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return posted, nil
}

func (s *OrderPostingService) buildOrder(req *CreateOrderRequest) (*sales.SalesOrder, error) {
	order, err := sales.NewSalesOrder(req.OrganizationID, req.ContragentID, req.Dated)
	if err != nil {
		return nil, err
	}
	order.ContractID = req.ContractID
	order.WarehouseID = req.WarehouseID
	order.SalesManagerID = req.SalesManagerID
	if req.LoyaltyCardID != nil {
		if err := order.AttachLoyaltyCard(*req.LoyaltyCardID); err != nil {
			return nil, err
		}
	}
	if err := order.SetPaymentSplit(req.PaidRubles, req.PaidLoyalty); err != nil {
		return nil, err
	}
	if err := order.SetPriority(req.Priority); err != nil {
		return nil, err
	}
	if req.Tags != nil {
		order.Tags = req.Tags
	}

	lines, err := buildLines(req.Goods)
	if err != nil {
		return nil, err
	}
	order.ReplaceLines(lines)
	order.RefreshPaidFlag()
	return order, nil
}

// postLedgers writes the payment and loyalty rows for the order and returns
// the accrued cashback sum
func (s *OrderPostingService) postLedgers(ctx context.Context, tx PostingTx, order *sales.SalesOrder, noms map[uuid.UUID]*catalog.Nomenclature, card *loyalty.LoyaltyCard) (decimal.Decimal, error) {
	poster := finance.NewLedgerPoster(tx.Payments(), tx.LoyaltyTransactions(), tx.LoyaltyLinks())

	if order.PaidRubles.GreaterThan(decimal.Zero) {
		if _, err := poster.PostPayment(ctx, order.OrganizationID, order.ContragentID, order.ID, order.PaidRubles); err != nil {
			return decimal.Zero, err
		}
	}

	if !order.HasLoyaltyCard() || card == nil {
		return decimal.Zero, nil
	}

	if order.PaidLoyalty.GreaterThan(decimal.Zero) {
		if _, err := poster.PostLoyaltyWithdraw(ctx, card.ID, order.ID, order.PaidLoyalty); err != nil {
			return decimal.Zero, err
		}
	}

	cashback := s.cashbackSum(order, noms, card)
	if cashback.GreaterThan(decimal.Zero) {
		if _, err := poster.PostLoyaltyAccrual(ctx, card.ID, order.ID, cashback); err != nil {
			return decimal.Zero, err
		}
	}
	return cashback, nil
}

func (s *OrderPostingService) cashbackSum(order *sales.SalesOrder, noms map[uuid.UUID]*catalog.Nomenclature, card *loyalty.LoyaltyCard) decimal.Decimal {
	share := order.CashShareRatio()
	total := decimal.Zero
	for i := range order.Lines {
		line := &order.Lines[i]
		total = total.Add(loyalty.LineCashback(line.Price, line.Quantity, noms[line.NomenclatureID], card, share))
	}
	return total.Round(2)
}

// postBalances extends the stock running balance for every tracked line.
// Orders without a warehouse, and intangible nomenclatures, post nothing.
func (s *OrderPostingService) postBalances(ctx context.Context, tx PostingTx, order *sales.SalesOrder, noms map[uuid.UUID]*catalog.Nomenclature) error {
	if order.WarehouseID == nil {
		return nil
	}
	poster := warehouse.NewBalancePoster(tx.Balances())
	for i := range order.Lines {
		line := &order.Lines[i]
		nom := noms[line.NomenclatureID]
		if nom == nil || !nom.PhysicalType.Tracked() {
			continue
		}
		if _, err := poster.PostOutgoing(ctx, order.OrganizationID, *order.WarehouseID, line.NomenclatureID, order.ID, line.Quantity); err != nil {
			return err
		}
	}
	return nil
}

func (s *OrderPostingService) loadNomenclatures(ctx context.Context, goods []GoodsItem) (map[uuid.UUID]*catalog.Nomenclature, error) {
	set := make(map[uuid.UUID]struct{})
	for i := range goods {
		set[goods[i].NomenclatureID] = struct{}{}
	}
	ids := make([]uuid.UUID, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	return s.nomenclatures.GetBatch(ctx, ids)
}

func (s *OrderPostingService) loadCard(ctx context.Context, cardID *uuid.UUID) (*loyalty.LoyaltyCard, error) {
	if cardID == nil {
		return nil, nil
	}
	return s.cards.Get(ctx, *cardID)
}

func buildLines(goods []GoodsItem) ([]sales.OrderLine, error) {
	lines := make([]sales.OrderLine, 0, len(goods))
	for i := range goods {
		item := &goods[i]
		line, err := sales.NewOrderLine(uuid.Nil, item.NomenclatureID, item.UnitID, item.Price, item.Quantity)
		if err != nil {
			return nil, err
		}
		line.PriceTypeID = item.PriceTypeID
		line.Tax = item.Tax
		line.Discount = item.Discount
		lines = append(lines, *line)
	}
	return lines, nil
}

func goodsOf(reqs []CreateOrderRequest) []GoodsItem {
	var goods []GoodsItem
	for i := range reqs {
		goods = append(goods, reqs[i].Goods...)
	}
	return goods
}

func goodsOfUpdate(reqs []UpdateOrderRequest) []GoodsItem {
	var goods []GoodsItem
	for i := range reqs {
		goods = append(goods, reqs[i].Goods...)
	}
	return goods
}
