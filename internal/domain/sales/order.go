package sales

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/orderpost/backend/internal/domain/shared"
)

// OrderLine represents a single goods position of a sales order.
// Lines are created atomically with the order and replaced wholesale on edit.
type OrderLine struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OrderID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	NomenclatureID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Price          decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Quantity       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitID         uuid.UUID       `gorm:"type:uuid;not null"`
	PriceTypeID    *uuid.UUID      `gorm:"type:uuid"`
	Tax            decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Discount       decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TableName returns the table name for GORM
func (OrderLine) TableName() string {
	return "sales_order_lines"
}

// NewOrderLine creates a new order line
func NewOrderLine(orderID, nomenclatureID, unitID uuid.UUID, price, quantity decimal.Decimal) (*OrderLine, error) {
	if nomenclatureID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_NOMENCLATURE", "Nomenclature ID cannot be empty")
	}
	if unitID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_UNIT", "Unit ID cannot be empty")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if price.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}

	now := time.Now()
	return &OrderLine{
		ID:             uuid.New(),
		OrderID:        orderID,
		NomenclatureID: nomenclatureID,
		Price:          price,
		Quantity:       quantity,
		UnitID:         unitID,
		Tax:            decimal.Zero,
		Discount:       decimal.Zero,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// Amount returns the line total (price * quantity)
func (l *OrderLine) Amount() decimal.Decimal {
	return l.Price.Mul(l.Quantity)
}

// SalesOrder is the aggregate root of the posting pipeline.
// Its Sum is always the 2-decimal rounded total of price*quantity over the
// current lines; the invariant is re-established on every line replacement.
type SalesOrder struct {
	shared.BaseAggregateRoot
	Number         string          `gorm:"type:varchar(50);not null;uniqueIndex:uq_orders_org_number,where:deleted_at IS NULL"`
	Dated          time.Time       `gorm:"type:date;not null;index"`
	OrganizationID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:uq_orders_org_number,where:deleted_at IS NULL;index"`
	ContragentID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ContractID     *uuid.UUID      `gorm:"type:uuid"`
	WarehouseID    *uuid.UUID      `gorm:"type:uuid;index"`
	SalesManagerID *uuid.UUID      `gorm:"type:uuid"`
	LoyaltyCardID  *uuid.UUID      `gorm:"type:uuid;index"`
	Lines          []OrderLine     `gorm:"foreignKey:OrderID"`
	Sum            decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	PaidRubles     decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	PaidLoyalty    decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Paid           bool            `gorm:"not null;default:false"`
	State          OrderState      `gorm:"type:varchar(20);not null;index"`
	Priority       int             `gorm:"not null;default:0"`
	Tags           []string        `gorm:"serializer:json;type:jsonb"`
	PickerID       *uuid.UUID      `gorm:"type:uuid"`
	CourierID      *uuid.UUID      `gorm:"type:uuid"`
	ProcessedAt    *time.Time
	CollectingAt   *time.Time
	CollectedAt    *time.Time
	PickedAt       *time.Time
	DeliveredAt    *time.Time
	ClosedAt       *time.Time
	SucceededAt    *time.Time
	DeletedAt      gorm.DeletedAt `gorm:"index"`
}

// TableName returns the table name for GORM
func (SalesOrder) TableName() string {
	return "sales_orders"
}

// NewSalesOrder creates a new sales order in the received state with Sum zero.
// The number is assigned by the sequencer just before persistence.
func NewSalesOrder(organizationID, contragentID uuid.UUID, dated time.Time) (*SalesOrder, error) {
	if organizationID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORGANIZATION", "Organization ID cannot be empty")
	}
	if contragentID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CONTRAGENT", "Contragent ID cannot be empty")
	}
	if dated.IsZero() {
		return nil, shared.NewDomainError("INVALID_DATE", "Order date cannot be empty")
	}

	return &SalesOrder{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Dated:             dated,
		OrganizationID:    organizationID,
		ContragentID:      contragentID,
		Lines:             make([]OrderLine, 0),
		Sum:               decimal.Zero,
		PaidRubles:        decimal.Zero,
		PaidLoyalty:       decimal.Zero,
		State:             OrderStateReceived,
		Tags:              make([]string, 0),
	}, nil
}

// AssignNumber sets the sequential document number
func (o *SalesOrder) AssignNumber(number string) error {
	if number == "" {
		return shared.NewDomainError("INVALID_NUMBER", "Order number cannot be empty")
	}
	o.Number = number
	o.UpdatedAt = time.Now()
	return nil
}

// SetPriority sets the order priority (0-10 inclusive)
func (o *SalesOrder) SetPriority(priority int) error {
	if priority < 0 || priority > 10 {
		return shared.NewDomainError("INVALID_PRIORITY", "Priority must be between 0 and 10")
	}
	o.Priority = priority
	o.UpdatedAt = time.Now()
	return nil
}

// SetPaymentSplit records how much of the order is paid in cash and in
// loyalty points
func (o *SalesOrder) SetPaymentSplit(paidRubles, paidLoyalty decimal.Decimal) error {
	if paidRubles.IsNegative() || paidLoyalty.IsNegative() {
		return shared.NewDomainError("INVALID_PAYMENT", "Paid amounts cannot be negative")
	}
	o.PaidRubles = paidRubles
	o.PaidLoyalty = paidLoyalty
	o.UpdatedAt = time.Now()
	return nil
}

// AttachLoyaltyCard attaches the loyalty card used for this order
func (o *SalesOrder) AttachLoyaltyCard(cardID uuid.UUID) error {
	if cardID == uuid.Nil {
		return shared.NewDomainError("INVALID_LOYALTY_CARD", "Loyalty card ID cannot be empty")
	}
	o.LoyaltyCardID = &cardID
	o.UpdatedAt = time.Now()
	return nil
}

// AddLine appends a new line to the order without recalculating the sum;
// callers finish with RecalculateSum
func (o *SalesOrder) AddLine(nomenclatureID, unitID uuid.UUID, price, quantity decimal.Decimal) (*OrderLine, error) {
	line, err := NewOrderLine(o.ID, nomenclatureID, unitID, price, quantity)
	if err != nil {
		return nil, err
	}
	o.Lines = append(o.Lines, *line)
	o.UpdatedAt = time.Now()
	return line, nil
}

// ReplaceLines replaces all lines wholesale and recalculates the sum
func (o *SalesOrder) ReplaceLines(lines []OrderLine) {
	for i := range lines {
		lines[i].OrderID = o.ID
	}
	o.Lines = lines
	o.RecalculateSum()
}

// RecalculateSum re-derives Sum from the current lines, rounded to 2 decimals
func (o *SalesOrder) RecalculateSum() {
	total := decimal.Zero
	for i := range o.Lines {
		total = total.Add(o.Lines[i].Amount())
	}
	o.Sum = total.Round(2)
	o.UpdatedAt = time.Now()
}

// CashShareRatio returns paid_rubles / (paid_rubles + paid_lt), or zero when
// nothing is paid. Certain cashback formulas scale by this ratio.
func (o *SalesOrder) CashShareRatio() decimal.Decimal {
	total := o.PaidRubles.Add(o.PaidLoyalty)
	if total.IsZero() {
		return decimal.Zero
	}
	return o.PaidRubles.Div(total)
}

// RefreshPaidFlag marks the order paid when the recorded payments cover the sum
func (o *SalesOrder) RefreshPaidFlag() {
	paidTotal := o.PaidRubles.Add(o.PaidLoyalty)
	o.Paid = o.Sum.GreaterThan(decimal.Zero) && paidTotal.GreaterThanOrEqual(o.Sum)
}

// HasLoyaltyCard returns true if a loyalty card is attached
func (o *SalesOrder) HasLoyaltyCard() bool {
	return o.LoyaltyCardID != nil && *o.LoyaltyCardID != uuid.Nil
}

// Transition moves the order to the target workflow state. The operator, when
// provided, is recorded as picker for the collecting stages and as courier for
// delivery. Invalid pairs fail with StatusTransitionError.
func (o *SalesOrder) Transition(target OrderState, operatorID *uuid.UUID) error {
	if !o.State.CanTransitionTo(target) {
		return &StatusTransitionError{From: o.State, To: target}
	}

	from := o.State
	now := time.Now()
	o.State = target
	o.UpdatedAt = now

	switch target {
	case OrderStateProcessed:
		o.ProcessedAt = &now
	case OrderStateCollecting:
		o.CollectingAt = &now
		if operatorID != nil {
			o.PickerID = operatorID
		}
	case OrderStateCollected:
		o.CollectedAt = &now
		if operatorID != nil {
			o.PickerID = operatorID
		}
	case OrderStatePicked:
		o.PickedAt = &now
		if operatorID != nil {
			o.PickerID = operatorID
		}
	case OrderStateDelivered:
		o.DeliveredAt = &now
		if operatorID != nil {
			o.CourierID = operatorID
		}
	case OrderStateClosed:
		o.ClosedAt = &now
	case OrderStateSuccess:
		o.SucceededAt = &now
	}

	o.AddDomainEvent(NewOrderStateChangedEvent(o, from, target, operatorID))

	return nil
}
