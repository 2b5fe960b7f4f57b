package shared

import "errors"

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound                = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists           = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput            = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrConcurrencyConflict     = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrInvalidState            = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
	ErrInsufficientStock       = NewDomainError("INSUFFICIENT_STOCK", "Insufficient stock available")
	ErrInvalidDiscount         = NewDomainError("INVALID_DISCOUNT", "Discount exceeds the pre-tax subtotal")
	ErrPaymentMismatch         = NewDomainError("PAYMENT_MISMATCH", "Payment allocation does not match the payable amount")
	ErrMissingInstrumentDetail = NewDomainError("MISSING_INSTRUMENT_DETAIL", "Required payment instrument detail is missing")
	ErrInactiveAccount         = NewDomainError("INACTIVE_ACCOUNT", "Account is not active")
	ErrPersistence             = NewDomainError("PERSISTENCE_ERROR", "Storage failure, operation rolled back")
)

// IsDomainError returns the DomainError carried by err, unwrapping as
// needed, or nil when there is none.
func IsDomainError(err error) *DomainError {
	var de *DomainError
	if errors.As(err, &de) {
		return de
	}
	return nil
}
