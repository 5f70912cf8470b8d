package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/orderpost/backend/internal/domain/finance"
	"github.com/orderpost/backend/internal/domain/sales"
	"github.com/orderpost/backend/internal/domain/shared"
	"github.com/orderpost/backend/internal/domain/warehouse"
	"github.com/orderpost/backend/internal/interfaces/http/dto"
	"github.com/orderpost/backend/internal/interfaces/http/middleware"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// getRequestID extracts the request ID from the context
func getRequestID(c *gin.Context) string {
	if id := c.GetString(middleware.RequestIDKey); id != "" {
		return id
	}
	return c.GetHeader("X-Request-ID")
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta sends a success response with pagination meta
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, page, pageSize))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// Error sends an error response with the given status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, getRequestID(c)))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// NotFound sends a 404 not found response
func (h *BaseHandler) NotFound(c *gin.Context, message string) {
	h.Error(c, http.StatusNotFound, dto.ErrCodeNotFound, message)
}

// InternalError sends a 500 internal server error response
func (h *BaseHandler) InternalError(c *gin.Context, message string) {
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, message)
}

// HandleError converts posting and domain errors to HTTP responses.
// Reference and period failures are semantic (422), number and transition
// conflicts are state conflicts (409), ledger write failures are server
// faults (500).
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var validationErr *sales.ValidationError
	if errors.As(err, &validationErr) {
		h.Error(c, dto.GetHTTPStatus(dto.ErrCodeUnknownReference), dto.ErrCodeUnknownReference, validationErr.Error())
		return
	}

	var lockedErr *finance.PeriodLockedError
	if errors.As(err, &lockedErr) {
		h.Error(c, dto.GetHTTPStatus(dto.ErrCodePeriodLocked), dto.ErrCodePeriodLocked, lockedErr.Error())
		return
	}

	var numberErr *sales.NumberConflictError
	if errors.As(err, &numberErr) {
		h.Error(c, dto.GetHTTPStatus(dto.ErrCodeNumberConflict), dto.ErrCodeNumberConflict, numberErr.Error())
		return
	}

	var transitionErr *sales.StatusTransitionError
	if errors.As(err, &transitionErr) {
		h.Error(c, dto.GetHTTPStatus(dto.ErrCodeInvalidTransition), dto.ErrCodeInvalidTransition, transitionErr.Error())
		return
	}

	var ledgerErr *finance.LedgerPostingError
	if errors.As(err, &ledgerErr) {
		h.Error(c, dto.GetHTTPStatus(dto.ErrCodePostingFailed), dto.ErrCodePostingFailed, ledgerErr.Error())
		return
	}

	var balanceErr *warehouse.BalancePostingError
	if errors.As(err, &balanceErr) {
		h.Error(c, dto.GetHTTPStatus(dto.ErrCodePostingFailed), dto.ErrCodePostingFailed, balanceErr.Error())
		return
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		code := dto.NormalizeErrorCode(domainErr.Code)
		h.Error(c, dto.GetHTTPStatus(code), code, domainErr.Message)
		return
	}

	h.InternalError(c, "An unexpected error occurred")
}
