package dto

import "net/http"

// Error codes the API surfaces. Domain errors carry these codes verbatim;
// the transport layer only decides the HTTP status.
const (
	// ErrCodeInternal is used for unexpected server errors
	ErrCodeInternal = "INTERNAL_ERROR"
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "BAD_REQUEST"
	// ErrCodeValidation is used when request binding or validation fails
	ErrCodeValidation = "VALIDATION_ERROR"
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "NOT_FOUND"
	// ErrCodeConcurrencyConflict is used when optimistic locking fails
	ErrCodeConcurrencyConflict = "CONCURRENCY_CONFLICT"
	// ErrCodeCommitInProgress is used when a commit token is held by a
	// concurrent request
	ErrCodeCommitInProgress = "COMMIT_IN_PROGRESS"
	// ErrCodeMissingToken is used when the Idempotency-Key header is absent
	ErrCodeMissingToken = "MISSING_COMMIT_TOKEN"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes. Codes not
// listed here default to 400 through GetHTTPStatus, so validation-style
// domain rejections need no individual entry.
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:     http.StatusInternalServerError,
	"PERSISTENCE_ERROR": http.StatusInternalServerError,

	ErrCodeNotFound:  http.StatusNotFound,
	"LINE_NOT_FOUND": http.StatusNotFound,

	// Conflicts -> 409
	ErrCodeConcurrencyConflict: http.StatusConflict,
	ErrCodeCommitInProgress:    http.StatusConflict,
	"ALREADY_EXISTS":           http.StatusConflict,
	"SALE_IMMUTABLE":           http.StatusConflict,

	// Business rule violations -> 422
	"INVALID_STATE":             http.StatusUnprocessableEntity,
	"INSUFFICIENT_STOCK":        http.StatusUnprocessableEntity,
	"INVALID_DISCOUNT":          http.StatusUnprocessableEntity,
	"PAYMENT_MISMATCH":          http.StatusUnprocessableEntity,
	"MISSING_INSTRUMENT_DETAIL": http.StatusUnprocessableEntity,
	"INACTIVE_ACCOUNT":          http.StatusUnprocessableEntity,
	"CHEQUE_DUE_DATE_PAST":      http.StatusUnprocessableEntity,
	"NO_LINES":                  http.StatusUnprocessableEntity,
	"NO_PAYMENTS":               http.StatusUnprocessableEntity,
	"DUPLICATE_PRODUCT":         http.StatusUnprocessableEntity,
	"INVALID_RETURN_LINE":       http.StatusUnprocessableEntity,
	"INVALID_AMOUNT":            http.StatusUnprocessableEntity,
	"INVALID_ACCOUNT":           http.StatusUnprocessableEntity,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes are treated as client input problems.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusBadRequest
}
