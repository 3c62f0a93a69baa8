// Package apperr defines the error kinds returned by the order item workflow.
//
// Every error produced by the service matches exactly one of the sentinel
// errors below via errors.Is. Transports map the sentinel to a status code and
// show the error message to the caller.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidState      = errors.New("invalid state")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrValidation        = errors.New("validation failed")
	ErrInternal          = errors.New("internal error")
	ErrConnectivity      = errors.New("store unavailable")
	ErrLockTimeout       = errors.New("lock wait timeout")
)

var kinds = []error{
	ErrNotFound,
	ErrInvalidState,
	ErrInsufficientStock,
	ErrValidation,
	ErrInternal,
	ErrConnectivity,
	ErrLockTimeout,
}

// Error is a classified error with a caller facing detail message.
type Error struct {
	kind   error
	Detail string
	Cause  error
}

func (e *Error) Error() string {
	return e.Detail
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.kind}
	}

	return []error{e.kind, e.Cause}
}

// Kind returns the sentinel error this error is classified as.
func (e *Error) Kind() error {
	return e.kind
}

func newError(kind error, cause error, format string, args ...any) *Error {
	return &Error{
		kind:   kind,
		Detail: fmt.Sprintf(format, args...),
		Cause:  cause,
	}
}

// NotFound returns an error of kind ErrNotFound.
func NotFound(format string, args ...any) error {
	return newError(ErrNotFound, nil, format, args...)
}

// InvalidState returns an error of kind ErrInvalidState.
func InvalidState(format string, args ...any) error {
	return newError(ErrInvalidState, nil, format, args...)
}

// Validation returns an error of kind ErrValidation.
func Validation(format string, args ...any) error {
	return newError(ErrValidation, nil, format, args...)
}

// Internal returns an error of kind ErrInternal. Cause may be nil.
func Internal(cause error, format string, args ...any) error {
	return newError(ErrInternal, cause, format, args...)
}

// Connectivity returns an error of kind ErrConnectivity.
func Connectivity(cause error, format string, args ...any) error {
	return newError(ErrConnectivity, cause, format, args...)
}

// LockTimeout returns an error of kind ErrLockTimeout.
func LockTimeout(cause error, format string, args ...any) error {
	return newError(ErrLockTimeout, cause, format, args...)
}

// InsufficientStockError reports a stock shortfall for a product.
type InsufficientStockError struct {
	ProductID int64
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf(
		"Insufficient product quantity. Available: %d, requested: %d",
		e.Available,
		e.Requested,
	)
}

// Is makes the error match ErrInsufficientStock.
func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// KindOf returns the sentinel the error is classified as, or nil when err is
// nil or unclassified. The outermost classified error wins.
func KindOf(err error) error {
	if err == nil {
		return nil
	}

	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.kind
	}

	for _, kind := range kinds {
		if errors.Is(err, kind) {
			return kind
		}
	}

	return nil
}

// IsClassified reports whether err already carries one of the error kinds.
func IsClassified(err error) bool {
	return KindOf(err) != nil
}

// Public reports whether the message of err may be shown to callers.
// Internal errors wrapping an unclassified cause carry driver text and stay
// in logs only.
func Public(err error) bool {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.kind != ErrInternal || appErr.Cause == nil
	}

	return IsClassified(err)
}

// Wrap classifies err as ErrInternal unless it already has a kind.
// The original message is kept for diagnostics.
func Wrap(err error) error {
	if err == nil || IsClassified(err) {
		return err
	}

	return Internal(err, "%s", err.Error())
}

// Code returns a short snake_case name for the error kind, "ok" for nil.
func Code(err error) string {
	switch KindOf(err) {
	case nil:
		if err == nil {
			return "ok"
		}

		return "internal"
	case ErrNotFound:
		return "not_found"
	case ErrInvalidState:
		return "invalid_state"
	case ErrInsufficientStock:
		return "insufficient_stock"
	case ErrValidation:
		return "validation"
	case ErrConnectivity:
		return "connectivity"
	case ErrLockTimeout:
		return "lock_timeout"
	default:
		return "internal"
	}
}

// Retryable reports whether the caller may retry the same request.
func Retryable(err error) bool {
	kind := KindOf(err)

	return kind == ErrLockTimeout || kind == ErrConnectivity
}
