/*
Package errors converts domain failures into application error codes.

Domain packages only know sentinels. FromDomainError classifies an error
with errors.Is and attaches field details for validation failures; the
HTTP status for each code is decided by api/response.
*/
package errors

import (
	"errors"
	"fmt"

	"github.com/SChris-dev/EcoShop-API/domain/catalog"
	"github.com/SChris-dev/EcoShop-API/domain/order"
	"github.com/SChris-dev/EcoShop-API/domain/shared"
)

// ErrorCode is the machine-readable code sent in the "error" field.
type ErrorCode string

const (
	CodeInternal       ErrorCode = "INTERNAL_ERROR"
	CodeBadRequest     ErrorCode = "BAD_REQUEST"
	CodeUnauthorized   ErrorCode = "UNAUTHORIZED"
	CodeForbidden      ErrorCode = "FORBIDDEN"
	CodeNotFound       ErrorCode = "NOT_FOUND"
	CodeConflict       ErrorCode = "CONFLICT"
	CodeTooManyRequest ErrorCode = "TOO_MANY_REQUESTS"
	CodeValidation     ErrorCode = "VALIDATION_ERROR"

	CodeProductNotFound       ErrorCode = "PRODUCT_NOT_FOUND"
	CodeInsufficientStock     ErrorCode = "INSUFFICIENT_STOCK"
	CodeStockChanged          ErrorCode = "STOCK_CHANGED"
	CodeOrderNotFound         ErrorCode = "ORDER_NOT_FOUND"
	CodeInvalidOrderState     ErrorCode = "INVALID_ORDER_STATE"
	CodeConcurrentModify      ErrorCode = "CONCURRENT_MODIFICATION"
	CodeIdempotencyInProgress ErrorCode = "IDEMPOTENCY_IN_PROGRESS"
)

// AppError is an error that maps onto an HTTP status and response code.
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`

	// Details maps request fields to messages, e.g. "items.0.quantity".
	Details map[string][]string `json:"errors,omitempty"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail appends a message for field and returns e.
func (e *AppError) WithDetail(field, message string) *AppError {
	if e.Details == nil {
		e.Details = make(map[string][]string)
	}
	e.Details[field] = append(e.Details[field], message)
	return e
}

func New(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

func BadRequest(message string) *AppError      { return New(CodeBadRequest, message) }
func NotFound(message string) *AppError        { return New(CodeNotFound, message) }
func Internal(message string) *AppError        { return New(CodeInternal, message) }
func Unauthorized(message string) *AppError    { return New(CodeUnauthorized, message) }
func Forbidden(message string) *AppError       { return New(CodeForbidden, message) }
func Conflict(message string) *AppError        { return New(CodeConflict, message) }
func TooManyRequests(message string) *AppError { return New(CodeTooManyRequest, message) }
func Validation(message string) *AppError      { return New(CodeValidation, message) }

// Is reports whether err is an AppError carrying code.
func Is(err error, code ErrorCode) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// FromDomainError classifies err. Anything unknown becomes CodeInternal
// with the original error kept in Err for logging.
func FromDomainError(err error) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	msg := err.Error()
	switch {
	case errors.Is(err, order.ErrStorageFailure):
		return Wrap(err, CodeInternal, msg)

	case errors.Is(err, catalog.ErrProductNotFound):
		if field := fieldOf(err); field != "" {
			return Wrap(err, CodeValidation, msg).WithDetail(field, msg)
		}
		return Wrap(err, CodeProductNotFound, msg)

	case errors.Is(err, order.ErrInsufficientStock):
		return Wrap(err, CodeInsufficientStock, msg)
	case errors.Is(err, order.ErrStockChanged):
		return Wrap(err, CodeStockChanged, msg)
	case errors.Is(err, order.ErrAccessDenied), errors.Is(err, shared.ErrForbidden):
		return Wrap(err, CodeForbidden, msg)
	case errors.Is(err, order.ErrOrderNotFound):
		return Wrap(err, CodeOrderNotFound, msg)
	case errors.Is(err, order.ErrInvalidOrderState):
		return Wrap(err, CodeInvalidOrderState, msg)
	case errors.Is(err, order.ErrConcurrentModification):
		return Wrap(err, CodeConcurrentModify, msg)
	case errors.Is(err, order.ErrPlacementInProgress):
		return Wrap(err, CodeIdempotencyInProgress, msg)

	case errors.Is(err, order.ErrInvalidStatus),
		errors.Is(err, order.ErrEmptyOrderItems),
		errors.Is(err, order.ErrInvalidQuantity),
		errors.Is(err, catalog.ErrInvalidProduct),
		errors.Is(err, shared.ErrInvalidInput):
		appErr := Wrap(err, CodeValidation, msg)
		if field := fieldOf(err); field != "" {
			appErr.WithDetail(field, msg)
		}
		return appErr

	case errors.Is(err, shared.ErrNotFound):
		return Wrap(err, CodeNotFound, msg)
	case errors.Is(err, shared.ErrConflict):
		return Wrap(err, CodeConflict, msg)
	}

	return Wrap(err, CodeInternal, msg)
}

func fieldOf(err error) string {
	var fe shared.FieldError
	if errors.As(err, &fe) {
		return fe.FieldName()
	}
	return ""
}
