package sales

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/orderpost/backend/internal/domain/sales"
)

// GoodsItem is one order line on the wire
type GoodsItem struct {
	NomenclatureID uuid.UUID       `json:"nomenclature" binding:"required"`
	Price          decimal.Decimal `json:"price"`
	Quantity       decimal.Decimal `json:"quantity" binding:"required"`
	UnitID         uuid.UUID       `json:"unit" binding:"required"`
	PriceTypeID    *uuid.UUID      `json:"price_type,omitempty"`
	Tax            decimal.Decimal `json:"tax"`
	Discount       decimal.Decimal `json:"discount"`
}

// CreateOrderRequest is one order of a createBatch call.
// Number is optional; when empty the organization's sequencer assigns the
// next one. The field loyality_card_id keeps its historical spelling on the
// wire.
type CreateOrderRequest struct {
	Number         string          `json:"number,omitempty"`
	Dated          time.Time       `json:"dated" binding:"required"`
	OrganizationID uuid.UUID       `json:"organization" binding:"required"`
	ContragentID   uuid.UUID       `json:"contragent" binding:"required"`
	ContractID     *uuid.UUID      `json:"contract,omitempty"`
	WarehouseID    *uuid.UUID      `json:"warehouse,omitempty"`
	SalesManagerID *uuid.UUID      `json:"sales_manager,omitempty"`
	LoyaltyCardID  *uuid.UUID      `json:"loyality_card_id,omitempty"`
	PaidRubles     decimal.Decimal `json:"paid_rubles"`
	PaidLoyalty    decimal.Decimal `json:"paid_lt"`
	Priority       int             `json:"priority"`
	Tags           []string        `json:"tags,omitempty"`
	Goods          []GoodsItem     `json:"goods" binding:"required,min=1"`
}

// UpdateOrderRequest is one order of an updateBatch call. The goods set
// replaces the stored lines wholesale.
type UpdateOrderRequest struct {
	ID             uuid.UUID       `json:"id" binding:"required"`
	Dated          time.Time       `json:"dated" binding:"required"`
	ContractID     *uuid.UUID      `json:"contract,omitempty"`
	WarehouseID    *uuid.UUID      `json:"warehouse,omitempty"`
	SalesManagerID *uuid.UUID      `json:"sales_manager,omitempty"`
	LoyaltyCardID  *uuid.UUID      `json:"loyality_card_id,omitempty"`
	PaidRubles     decimal.Decimal `json:"paid_rubles"`
	PaidLoyalty    decimal.Decimal `json:"paid_lt"`
	Priority       int             `json:"priority"`
	Tags           []string        `json:"tags,omitempty"`
	Goods          []GoodsItem     `json:"goods" binding:"required,min=1"`
}

// TransitionRequest moves an order along the workflow
type TransitionRequest struct {
	Status     string     `json:"status" binding:"required"`
	OperatorID *uuid.UUID `json:"operator_id,omitempty"`
}

// OrderLineResponse is one stored order line
type OrderLineResponse struct {
	ID             uuid.UUID       `json:"id"`
	NomenclatureID uuid.UUID       `json:"nomenclature"`
	Price          decimal.Decimal `json:"price"`
	Quantity       decimal.Decimal `json:"quantity"`
	UnitID         uuid.UUID       `json:"unit"`
	PriceTypeID    *uuid.UUID      `json:"price_type,omitempty"`
	Tax            decimal.Decimal `json:"tax"`
	Discount       decimal.Decimal `json:"discount"`
	Amount         decimal.Decimal `json:"amount"`
}

// OrderResponse is a stored sales order
type OrderResponse struct {
	ID             uuid.UUID           `json:"id"`
	Number         string              `json:"number"`
	Dated          time.Time           `json:"dated"`
	OrganizationID uuid.UUID           `json:"organization"`
	ContragentID   uuid.UUID           `json:"contragent"`
	ContractID     *uuid.UUID          `json:"contract,omitempty"`
	WarehouseID    *uuid.UUID          `json:"warehouse,omitempty"`
	SalesManagerID *uuid.UUID          `json:"sales_manager,omitempty"`
	LoyaltyCardID  *uuid.UUID          `json:"loyality_card_id,omitempty"`
	Sum            decimal.Decimal     `json:"sum"`
	PaidRubles     decimal.Decimal     `json:"paid_rubles"`
	PaidLoyalty    decimal.Decimal     `json:"paid_lt"`
	Paid           bool                `json:"paid"`
	Status         string              `json:"status"`
	Priority       int                 `json:"priority"`
	Tags           []string            `json:"tags"`
	PickerID       *uuid.UUID          `json:"picker,omitempty"`
	CourierID      *uuid.UUID          `json:"courier,omitempty"`
	Goods          []OrderLineResponse `json:"goods"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

// OrderListItemResponse is the list view of an order, without lines
type OrderListItemResponse struct {
	ID             uuid.UUID       `json:"id"`
	Number         string          `json:"number"`
	Dated          time.Time       `json:"dated"`
	OrganizationID uuid.UUID       `json:"organization"`
	ContragentID   uuid.UUID       `json:"contragent"`
	Sum            decimal.Decimal `json:"sum"`
	Paid           bool            `json:"paid"`
	Status         string          `json:"status"`
	Priority       int             `json:"priority"`
	CreatedAt      time.Time       `json:"created_at"`
}

// OrderListFilter narrows the order list
type OrderListFilter struct {
	Page           int
	PageSize       int
	OrderBy        string
	OrderDir       string
	OrganizationID *uuid.UUID
	ContragentID   *uuid.UUID
	Status         *string
	Paid           *bool
}

// ToOrderResponse converts a domain order to a response DTO
func ToOrderResponse(order *sales.SalesOrder) OrderResponse {
	goods := make([]OrderLineResponse, len(order.Lines))
	for i := range order.Lines {
		line := &order.Lines[i]
		goods[i] = OrderLineResponse{
			ID:             line.ID,
			NomenclatureID: line.NomenclatureID,
			Price:          line.Price,
			Quantity:       line.Quantity,
			UnitID:         line.UnitID,
			PriceTypeID:    line.PriceTypeID,
			Tax:            line.Tax,
			Discount:       line.Discount,
			Amount:         line.Amount(),
		}
	}
	return OrderResponse{
		ID:             order.ID,
		Number:         order.Number,
		Dated:          order.Dated,
		OrganizationID: order.OrganizationID,
		ContragentID:   order.ContragentID,
		ContractID:     order.ContractID,
		WarehouseID:    order.WarehouseID,
		SalesManagerID: order.SalesManagerID,
		LoyaltyCardID:  order.LoyaltyCardID,
		Sum:            order.Sum,
		PaidRubles:     order.PaidRubles,
		PaidLoyalty:    order.PaidLoyalty,
		Paid:           order.Paid,
		Status:         order.State.String(),
		Priority:       order.Priority,
		Tags:           order.Tags,
		PickerID:       order.PickerID,
		CourierID:      order.CourierID,
		Goods:          goods,
		CreatedAt:      order.CreatedAt,
		UpdatedAt:      order.UpdatedAt,
	}
}

// ToOrderListItemResponse converts a domain order to its list view
func ToOrderListItemResponse(order *sales.SalesOrder) OrderListItemResponse {
	return OrderListItemResponse{
		ID:             order.ID,
		Number:         order.Number,
		Dated:          order.Dated,
		OrganizationID: order.OrganizationID,
		ContragentID:   order.ContragentID,
		Sum:            order.Sum,
		Paid:           order.Paid,
		Status:         order.State.String(),
		Priority:       order.Priority,
		CreatedAt:      order.CreatedAt,
	}
}
