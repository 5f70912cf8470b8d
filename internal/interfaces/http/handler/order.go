package handler

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appsales "github.com/orderpost/backend/internal/application/sales"
	"github.com/orderpost/backend/internal/domain/shared"
	"github.com/orderpost/backend/internal/interfaces/http/dto"
)

// orderPoster posts batches of new and changed orders
type orderPoster interface {
	CreateBatch(ctx context.Context, reqs []appsales.CreateOrderRequest) ([]appsales.OrderResponse, error)
	UpdateBatch(ctx context.Context, reqs []appsales.UpdateOrderRequest) ([]appsales.OrderResponse, error)
}

// orderTransitioner moves orders along the fulfillment workflow
type orderTransitioner interface {
	Transition(ctx context.Context, orderID uuid.UUID, target string, operatorID *uuid.UUID) (*appsales.OrderResponse, error)
	Delete(ctx context.Context, orderID uuid.UUID) error
}

// orderReader serves the read side of the order surface
type orderReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*appsales.OrderResponse, error)
	GetByNumber(ctx context.Context, organizationID uuid.UUID, number string) (*appsales.OrderResponse, error)
	List(ctx context.Context, filter appsales.OrderListFilter) (shared.Paginated[appsales.OrderListItemResponse], error)
}

// defaultMaxBatchSize bounds batch bodies when no limit is configured
const defaultMaxBatchSize = 100

// OrderHandler handles sales order HTTP requests
type OrderHandler struct {
	BaseHandler
	posting      orderPoster
	status       orderTransitioner
	queries      orderReader
	maxBatchSize int
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(posting orderPoster, status orderTransitioner, queries orderReader) *OrderHandler {
	return &OrderHandler{
		posting:      posting,
		status:       status,
		queries:      queries,
		maxBatchSize: defaultMaxBatchSize,
	}
}

// WithMaxBatchSize caps how many orders one batch call may carry
func (h *OrderHandler) WithMaxBatchSize(limit int) *OrderHandler {
	if limit > 0 {
		h.maxBatchSize = limit
	}
	return h
}

// RegisterRoutes registers order routes
func (h *OrderHandler) RegisterRoutes(rg *gin.RouterGroup) {
	orders := rg.Group("/orders")
	{
		orders.POST("", h.CreateBatch)
		orders.PUT("", h.UpdateBatch)
		orders.GET("", h.List)
		orders.GET("/by-number", h.GetByNumber)
		orders.GET("/:id", h.GetByID)
		orders.DELETE("/:id", h.Delete)
		orders.POST("/:id/status", h.Transition)
	}
}

// CreateBatch handles POST /orders.
// The body is an array of orders; the whole batch is validated before any
// write, then each order posts in its own transaction.
func (h *OrderHandler) CreateBatch(c *gin.Context) {
	var reqs []appsales.CreateOrderRequest
	if err := c.ShouldBindJSON(&reqs); err != nil {
		h.Error(c, dto.GetHTTPStatus(dto.ErrCodeInvalidJSON), dto.ErrCodeInvalidJSON, err.Error())
		return
	}
	if len(reqs) == 0 {
		h.BadRequest(c, "Batch must contain at least one order")
		return
	}
	if len(reqs) > h.maxBatchSize {
		h.BadRequest(c, fmt.Sprintf("Batch exceeds the limit of %d orders", h.maxBatchSize))
		return
	}

	responses, err := h.posting.CreateBatch(c.Request.Context(), reqs)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, responses)
}

// UpdateBatch handles PUT /orders
func (h *OrderHandler) UpdateBatch(c *gin.Context) {
	var reqs []appsales.UpdateOrderRequest
	if err := c.ShouldBindJSON(&reqs); err != nil {
		h.Error(c, dto.GetHTTPStatus(dto.ErrCodeInvalidJSON), dto.ErrCodeInvalidJSON, err.Error())
		return
	}
	if len(reqs) == 0 {
		h.BadRequest(c, "Batch must contain at least one order")
		return
	}
	if len(reqs) > h.maxBatchSize {
		h.BadRequest(c, fmt.Sprintf("Batch exceeds the limit of %d orders", h.maxBatchSize))
		return
	}

	responses, err := h.posting.UpdateBatch(c.Request.Context(), reqs)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, responses)
}

// Transition handles POST /orders/:id/status
func (h *OrderHandler) Transition(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	var req appsales.TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Error(c, dto.GetHTTPStatus(dto.ErrCodeInvalidJSON), dto.ErrCodeInvalidJSON, err.Error())
		return
	}

	response, err := h.status.Transition(c.Request.Context(), orderID, req.Status, req.OperatorID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, response)
}

// Delete handles DELETE /orders/:id
func (h *OrderHandler) Delete(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	if err := h.status.Delete(c.Request.Context(), orderID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"id": orderID})
}

// GetByID handles GET /orders/:id
func (h *OrderHandler) GetByID(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	response, err := h.queries.GetByID(c.Request.Context(), orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, response)
}

// GetByNumber handles GET /orders/by-number
func (h *OrderHandler) GetByNumber(c *gin.Context) {
	organizationID, err := uuid.Parse(c.Query("organization"))
	if err != nil {
		h.BadRequest(c, "Invalid organization ID format")
		return
	}
	number := c.Query("number")
	if number == "" {
		h.BadRequest(c, "Order number is required")
		return
	}

	response, err := h.queries.GetByNumber(c.Request.Context(), organizationID, number)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, response)
}

// listOrdersQuery binds the order list query parameters
type listOrdersQuery struct {
	dto.ListRequest
	OrganizationID string `form:"organization"`
	ContragentID   string `form:"contragent"`
	Status         string `form:"status"`
	Paid           *bool  `form:"paid"`
}

// List handles GET /orders
func (h *OrderHandler) List(c *gin.Context) {
	query := listOrdersQuery{ListRequest: dto.DefaultListRequest()}
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filter := appsales.OrderListFilter{
		Page:     query.Page,
		PageSize: query.PageSize,
		OrderBy:  query.OrderBy,
		OrderDir: query.OrderDir,
		Paid:     query.Paid,
	}
	if query.OrganizationID != "" {
		id, err := uuid.Parse(query.OrganizationID)
		if err != nil {
			h.BadRequest(c, "Invalid organization ID format")
			return
		}
		filter.OrganizationID = &id
	}
	if query.ContragentID != "" {
		id, err := uuid.Parse(query.ContragentID)
		if err != nil {
			h.BadRequest(c, "Invalid contragent ID format")
			return
		}
		filter.ContragentID = &id
	}
	if query.Status != "" {
		filter.Status = &query.Status
	}

	page, err := h.queries.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}
