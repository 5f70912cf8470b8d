package shared

// DomainError is a validation or state failure with a stable code. The
// HTTP layer maps codes onto API error responses, so codes are part of
// the wire contract and must not change casually.
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError builds a DomainError with the given code and message.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

var (
	// ErrNotFound is returned by repositories when an order or a document
	// it references does not exist.
	ErrNotFound = NewDomainError("NOT_FOUND", "Resource not found")

	// ErrConcurrencyConflict reports a failed optimistic version check on
	// update; the caller saw a stale copy of the order.
	ErrConcurrencyConflict = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
)
