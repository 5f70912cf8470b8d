package persistence

import (
	"context"
	"errors"
	"strconv"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/orderpost/backend/internal/domain/sales"
	"github.com/orderpost/backend/internal/domain/shared"
)

// GormSalesOrderRepository implements SalesOrderRepository using GORM
type GormSalesOrderRepository struct {
	db *gorm.DB
}

var _ sales.SalesOrderRepository = (*GormSalesOrderRepository)(nil)

// NewGormSalesOrderRepository creates a new GormSalesOrderRepository
func NewGormSalesOrderRepository(db *gorm.DB) *GormSalesOrderRepository {
	return &GormSalesOrderRepository{db: db}
}

// FindByID finds a sales order with its lines by ID
func (r *GormSalesOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*sales.SalesOrder, error) {
	var order sales.SalesOrder
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// FindByNumber finds a sales order by document number within an organization
func (r *GormSalesOrderRepository) FindByNumber(ctx context.Context, organizationID uuid.UUID, number string) (*sales.SalesOrder, error) {
	var order sales.SalesOrder
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("organization_id = ? AND number = ?", organizationID, number).
		First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// FindAll finds sales orders with filtering and pagination
func (r *GormSalesOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]sales.SalesOrder, error) {
	var orders []sales.SalesOrder
	query := r.applyFilter(r.db.WithContext(ctx).Model(&sales.SalesOrder{}), filter)
	if err := query.Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// Count counts sales orders matching the filter
func (r *GormSalesOrderRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&sales.SalesOrder{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// NextNumber produces the next sequential document number for the
// organization. The latest non-deleted order row is read under FOR UPDATE so
// concurrent postings for the same organization serialize on it. Numbers of
// soft-deleted orders are not counted and may be reissued. A latest number
// that is not numeric restarts the sequence at "1", same as an organization
// with no orders.
func (r *GormSalesOrderRepository) NextNumber(ctx context.Context, organizationID uuid.UUID) (string, error) {
	var last sales.SalesOrder
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("number").
		Where("organization_id = ?", organizationID).
		Order("length(number) DESC, number DESC").
		First(&last).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "1", nil
	}
	if err != nil {
		return "", err
	}

	n, err := strconv.ParseInt(last.Number, 10, 64)
	if err != nil {
		return "1", nil
	}
	return strconv.FormatInt(n+1, 10), nil
}

// Create inserts the order row and its lines. A duplicate number for the
// organization surfaces as *sales.NumberConflictError.
func (r *GormSalesOrderRepository) Create(ctx context.Context, order *sales.SalesOrder) error {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return &sales.NumberConflictError{OrganizationID: order.OrganizationID, Number: order.Number}
		}
		return err
	}
	return nil
}

// Update persists the order row fields. Lines are managed separately through
// ReplaceLines.
func (r *GormSalesOrderRepository) Update(ctx context.Context, order *sales.SalesOrder) error {
	order.IncrementVersion()
	result := r.db.WithContext(ctx).
		Omit("Lines").
		Where("id = ? AND version = ?", order.ID, order.Version-1).
		Save(order)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// ReplaceLines deletes the order's lines and inserts the given set
func (r *GormSalesOrderRepository) ReplaceLines(ctx context.Context, orderID uuid.UUID, lines []sales.OrderLine) error {
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Delete(&sales.OrderLine{}).Error; err != nil {
		return err
	}
	if len(lines) == 0 {
		return nil
	}
	for i := range lines {
		lines[i].OrderID = orderID
	}
	return r.db.WithContext(ctx).Create(&lines).Error
}

// SoftDelete marks the order deleted; its number becomes reusable
func (r *GormSalesOrderRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&sales.SalesOrder{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// applyFilter applies filter options to the query
func (r *GormSalesOrderRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, SalesOrderSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)
	return query.Order(orderBy + " " + orderDir)
}

// applyFilterWithoutPagination applies the field filters only
func (r *GormSalesOrderRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for field, value := range filter.Filters {
		switch field {
		case "organization_id", "contragent_id", "state", "paid", "warehouse_id", "loyalty_card_id":
			query = query.Where(field+" = ?", value)
		}
	}
	if filter.Search != "" {
		query = query.Where("number ILIKE ?", "%"+filter.Search+"%")
	}
	return query
}
