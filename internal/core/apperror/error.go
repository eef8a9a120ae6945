// Package apperror is the error vocabulary shared by services and the HTTP
// layer. A service returns an *AppError for every outcome a client should
// see; anything else is rendered as INTERNAL_ERROR.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	CodeValidation        = "VALIDATION_ERROR"
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeForbidden         = "FORBIDDEN"
	CodeNotFound          = "NOT_FOUND"
	CodeInsufficientStock = "INSUFFICIENT_STOCK"
	CodeConflict          = "CONFLICT"
	CodeDuplicate         = "DUPLICATE_ENTRY"
	CodeIdempotency       = "IDEMPOTENCY_CONFLICT"
	CodeBusinessRule      = "BUSINESS_RULE_VIOLATION"

	CodeInternal         = "INTERNAL_ERROR"
	CodeDatabase         = "DATABASE_ERROR"
	CodeStoreUnavailable = "STORE_UNAVAILABLE"
	CodeTimeout          = "TIMEOUT_ERROR"
)

// statusByCode is the single place codes are mapped to HTTP statuses.
var statusByCode = map[string]int{
	CodeValidation:        http.StatusBadRequest,
	CodeUnauthorized:      http.StatusUnauthorized,
	CodeForbidden:         http.StatusForbidden,
	CodeNotFound:          http.StatusNotFound,
	CodeInsufficientStock: http.StatusConflict,
	CodeConflict:          http.StatusConflict,
	CodeDuplicate:         http.StatusConflict,
	CodeIdempotency:       http.StatusConflict,
	CodeBusinessRule:      http.StatusUnprocessableEntity,
	CodeInternal:          http.StatusInternalServerError,
	CodeDatabase:          http.StatusInternalServerError,
	CodeStoreUnavailable:  http.StatusServiceUnavailable,
	CodeTimeout:           http.StatusGatewayTimeout,
}

// AppError carries a client-facing code and message. Err is the internal
// cause; it is logged and never serialized.
type AppError struct {
	Code       string         `json:"code"`
	Message    string         `json:"message"`
	Details    map[string]any `json:"details,omitempty"`
	HTTPStatus int            `json:"-"`
	Err        error          `json:"-"`
}

// New builds an AppError whose status follows from code.
func New(code, message string) *AppError {
	status, ok := statusByCode[code]
	if !ok {
		status = http.StatusInternalServerError
	}
	return &AppError{Code: code, Message: message, HTTPStatus: status}
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Code + ": " + e.Message + ": " + e.Err.Error()
	}
	return e.Code + ": " + e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any, 2)
	}
	e.Details[key] = value
	return e
}

func (e *AppError) WithCause(err error) *AppError {
	e.Err = err
	return e
}

// Retryable reports whether repeating the same request may succeed. Tills
// show a "try again" prompt for these instead of discarding the sale.
func (e *AppError) Retryable() bool {
	v, _ := e.Details["retryable"].(bool)
	return v
}

func (e *AppError) retryable() *AppError {
	return e.WithDetail("retryable", true)
}

func NewValidation(message string) *AppError {
	return New(CodeValidation, message)
}

func NewUnauthorized(message string) *AppError {
	return New(CodeUnauthorized, message)
}

func NewForbidden(message string) *AppError {
	return New(CodeForbidden, message)
}

func NewBusinessRule(message string) *AppError {
	return New(CodeBusinessRule, message)
}

// NewNotFound reports a missing product, bill, customer and so on.
func NewNotFound(entity string, id any) *AppError {
	return New(CodeNotFound, entity+" not found").
		WithDetail("entity", entity).
		WithDetail("id", id)
}

// NewInsufficientStock rejects a sale line that asks for more than is on
// the shelf. The message names the product so the cashier can act on it.
func NewInsufficientStock(productID, productName string, requested, available int) *AppError {
	return New(CodeInsufficientStock, "Insufficient stock for "+productName).
		WithDetail("product_id", productID).
		WithDetail("product_name", productName).
		WithDetail("requested", requested).
		WithDetail("available", available)
}

// NewConflict is a lost race, such as two tills taking the same bill number.
func NewConflict(message string) *AppError {
	return New(CodeConflict, message).retryable()
}

func NewDuplicate(entity, field, value string) *AppError {
	return New(CodeDuplicate, fmt.Sprintf("%s with this %s already exists", entity, field)).
		WithDetail("entity", entity).
		WithDetail("field", field).
		WithDetail("value", value)
}

// NewIdempotencyConflict means the first request with this key is still
// running.
func NewIdempotencyConflict(key string) *AppError {
	return New(CodeIdempotency, "Operation already in progress").
		WithDetail("idempotency_key", key).
		retryable()
}

// NewIdempotencyMismatch means the key was already used for a different
// request body or user.
func NewIdempotencyMismatch(key string) *AppError {
	return New(CodeIdempotency, "Idempotency key mismatch").
		WithDetail("idempotency_key", key)
}

// Server-side failures. The cause stays in Err.

func NewInternal(err error) *AppError {
	return New(CodeInternal, "Internal server error").WithCause(err)
}

func NewStore(err error) *AppError {
	return New(CodeDatabase, "Database operation failed").WithCause(err)
}

// NewStoreUnavailable reports a pool with no free connection within the
// acquire timeout.
func NewStoreUnavailable(err error) *AppError {
	return New(CodeStoreUnavailable, "Database is busy, please retry").WithCause(err).retryable()
}

// NewTimeout reports a statement cancelled by statement_timeout.
func NewTimeout(err error) *AppError {
	return New(CodeTimeout, "Database operation timed out").WithCause(err).retryable()
}

// AsAppError finds the first AppError in err's chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	ok := errors.As(err, &appErr)
	return appErr, ok
}

func IsAppError(err error) bool {
	_, ok := AsAppError(err)
	return ok
}

// GetHTTPStatus is the status err renders with; 500 for plain errors.
func GetHTTPStatus(err error) int {
	if appErr, ok := AsAppError(err); ok {
		return appErr.HTTPStatus
	}
	return http.StatusInternalServerError
}

// HasCode reports whether err's AppError carries code.
func HasCode(err error, code string) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == code
}

func IsNotFound(err error) bool          { return HasCode(err, CodeNotFound) }
func IsValidation(err error) bool        { return HasCode(err, CodeValidation) }
func IsInsufficientStock(err error) bool { return HasCode(err, CodeInsufficientStock) }

// IsConflict covers both lost races and unique violations.
func IsConflict(err error) bool {
	return HasCode(err, CodeConflict) || HasCode(err, CodeDuplicate)
}
