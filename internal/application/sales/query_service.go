package sales

import (
	"context"

	"github.com/google/uuid"

	"github.com/orderpost/backend/internal/domain/sales"
	"github.com/orderpost/backend/internal/domain/shared"
)

// OrderQueryService serves the read side of the order surface
type OrderQueryService struct {
	orders sales.SalesOrderRepository
}

// NewOrderQueryService creates a new order query service
func NewOrderQueryService(orders sales.SalesOrderRepository) *OrderQueryService {
	return &OrderQueryService{orders: orders}
}

// GetByID returns one order with its lines
func (s *OrderQueryService) GetByID(ctx context.Context, id uuid.UUID) (*OrderResponse, error) {
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToOrderResponse(order)
	return &response, nil
}

// GetByNumber returns one order by its document number within an organization
func (s *OrderQueryService) GetByNumber(ctx context.Context, organizationID uuid.UUID, number string) (*OrderResponse, error) {
	order, err := s.orders.FindByNumber(ctx, organizationID, number)
	if err != nil {
		return nil, err
	}
	response := ToOrderResponse(order)
	return &response, nil
}

// List returns a page of orders matching the filter
func (s *OrderQueryService) List(ctx context.Context, filter OrderListFilter) (shared.Paginated[OrderListItemResponse], error) {
	domainFilter := shared.DefaultFilter()
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	if filter.OrderBy != "" {
		domainFilter.OrderBy = filter.OrderBy
	}
	if filter.OrderDir != "" {
		domainFilter.OrderDir = filter.OrderDir
	}
	if filter.OrganizationID != nil {
		domainFilter.Filters["organization_id"] = *filter.OrganizationID
	}
	if filter.ContragentID != nil {
		domainFilter.Filters["contragent_id"] = *filter.ContragentID
	}
	if filter.Status != nil {
		domainFilter.Filters["state"] = *filter.Status
	}
	if filter.Paid != nil {
		domainFilter.Filters["paid"] = *filter.Paid
	}

	orders, err := s.orders.FindAll(ctx, domainFilter)
	if err != nil {
		return shared.Paginated[OrderListItemResponse]{}, err
	}
	total, err := s.orders.Count(ctx, domainFilter)
	if err != nil {
		return shared.Paginated[OrderListItemResponse]{}, err
	}

	items := make([]OrderListItemResponse, len(orders))
	for i := range orders {
		items[i] = ToOrderListItemResponse(&orders[i])
	}
	return shared.NewPaginated(items, total, domainFilter.Page, domainFilter.PageSize), nil
}
