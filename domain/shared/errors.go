/*
Package shared holds the building blocks every subdomain uses: money, the
caller principal, structured domain errors, events, specifications and the
unit of work contract.

Domain errors are sentinels for errors.Is plus a structured type that
captures the stack where the error was created. Formatting the stack is
deferred until a log line actually needs it. No transport concepts (HTTP
status codes) live here.
*/
package shared

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidInput = errors.New("invalid input")
	ErrForbidden    = errors.New("forbidden")
)

// DomainError carries business context and the stack of the failure point.
type DomainError struct {
	// Err is the sentinel used by errors.Is.
	Err error

	// Entity names the aggregate or entity involved ("order", "product").
	Entity string

	// Message is safe to show to API clients.
	Message string

	// Field is an optional request path such as "items.0.product_id".
	Field string

	stack []uintptr
}

func (e *DomainError) Error() string {
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// Stack formats the captured frames on demand.
func (e *DomainError) Stack() []string {
	return FormatStack(e.stack)
}

// FieldName implements FieldError.
func (e *DomainError) FieldName() string {
	return e.Field
}

// NewDomainError builds a DomainError capturing the caller's stack.
func NewDomainError(sentinel error, entity, field, message string) *DomainError {
	return &DomainError{
		Err:     sentinel,
		Entity:  entity,
		Field:   field,
		Message: message,
		stack:   CaptureStack(3),
	}
}

// CaptureStack skip: runtime.Callers, CaptureStack, and the constructor.
func CaptureStack(skip int) []uintptr {
	var pcs [32]uintptr
	n := runtime.Callers(skip, pcs[:])
	return pcs[:n]
}

// FormatStack drops runtime frames and keeps at most 10.
func FormatStack(stack []uintptr) []string {
	if len(stack) == 0 {
		return nil
	}

	frames := runtime.CallersFrames(stack)
	var result []string
	for {
		frame, more := frames.Next()
		if !strings.Contains(frame.File, "runtime/") {
			result = append(result, fmt.Sprintf("%s:%d %s", frame.File, frame.Line, frame.Function))
		}
		if !more || len(result) >= 10 {
			break
		}
	}
	return result
}

func NewNotFoundError(entity string) error {
	return &DomainError{
		Err:     ErrNotFound,
		Entity:  entity,
		Message: entity + " not found",
		stack:   CaptureStack(3),
	}
}

func NewValidationError(entity, field, reason string) error {
	return &DomainError{
		Err:     ErrInvalidInput,
		Entity:  entity,
		Field:   field,
		Message: reason,
		stack:   CaptureStack(3),
	}
}

func NewForbiddenError(entity, reason string) error {
	return &DomainError{
		Err:     ErrForbidden,
		Entity:  entity,
		Message: reason,
		stack:   CaptureStack(3),
	}
}

// Stacker is implemented by errors that captured their creation stack.
type Stacker interface {
	Stack() []string
}

// FieldError is implemented by errors tied to one request field.
type FieldError interface {
	FieldName() string
}
