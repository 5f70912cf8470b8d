package dto

import "net/http"

// Error code constants.
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	ErrCodeUnknown  = "ERR_UNKNOWN"
	ErrCodeInternal = "ERR_INTERNAL"
)

// Input error codes
const (
	ErrCodeBadRequest   = "ERR_BAD_REQUEST"
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	ErrCodeInvalidJSON  = "ERR_INVALID_JSON"
)

// Resource error codes
const (
	ErrCodeNotFound            = "ERR_NOT_FOUND"
	ErrCodeConflict            = "ERR_CONFLICT"
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
)

// Posting error codes
const (
	// ErrCodeUnknownReference is used when a batch references a missing entity
	ErrCodeUnknownReference = "ERR_UNKNOWN_REFERENCE"
	// ErrCodePeriodLocked is used when the order date falls into a closed period
	ErrCodePeriodLocked = "ERR_PERIOD_LOCKED"
	// ErrCodeNumberConflict is used when number retries are exhausted
	ErrCodeNumberConflict = "ERR_NUMBER_CONFLICT"
	// ErrCodeInvalidTransition is used for disallowed workflow transitions
	ErrCodeInvalidTransition = "ERR_INVALID_TRANSITION"
	// ErrCodePostingFailed is used when a dependent ledger write failed
	ErrCodePostingFailed = "ERR_POSTING_FAILED"
	// ErrCodeInvalidState is used when an operation is invalid for the state
	ErrCodeInvalidState = "ERR_INVALID_STATE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidInput: http.StatusBadRequest,
	ErrCodeInvalidJSON:  http.StatusBadRequest,

	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeConflict:            http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,

	ErrCodeUnknownReference:  http.StatusUnprocessableEntity,
	ErrCodePeriodLocked:      http.StatusUnprocessableEntity,
	ErrCodeNumberConflict:    http.StatusConflict,
	ErrCodeInvalidTransition: http.StatusConflict,
	ErrCodePostingFailed:     http.StatusInternalServerError,
	ErrCodeInvalidState:      http.StatusUnprocessableEntity,
}

// GetHTTPStatus returns the HTTP status code for an error code, defaulting to
// 500 for unknown codes
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainErrorCodeMapping maps domain error codes to API error codes
var DomainErrorCodeMapping = map[string]string{
	"NOT_FOUND":            ErrCodeNotFound,
	"CONCURRENCY_CONFLICT": ErrCodeConcurrencyConflict,
	"INVALID_STATUS":       ErrCodeInvalidState,
	"INVALID_INPUT":        ErrCodeInvalidInput,
}

// NormalizeErrorCode converts a domain error code to the API format; unknown
// domain codes map to the generic business-rule bucket
func NormalizeErrorCode(code string) string {
	if apiCode, ok := DomainErrorCodeMapping[code]; ok {
		return apiCode
	}
	return ErrCodeInvalidState
}
