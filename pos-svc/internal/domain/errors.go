package domain

import (
	"errors"
	"fmt"
)

// Kind is the business category of an error; handlers map it to a status code.
type Kind string

const (
	KindValidation Kind = "validation"
	KindNotFound   Kind = "not_found"
	KindConflict   Kind = "conflict"
	KindForbidden  Kind = "forbidden"
	KindInternal   Kind = "internal"
)

// Codes carried by Error. Clients branch on these, not on messages.
const (
	CodeInvalidInput       = "INVALID_INPUT"
	CodeTableNotFound      = "TABLE_NOT_FOUND"
	CodeTableNotFree       = "TABLE_NOT_FREE"
	CodeTabNotFound        = "TAB_NOT_FOUND"
	CodeTabClosed          = "TAB_CLOSED"
	CodeTabEmpty           = "TAB_EMPTY"
	CodeItemNotFound       = "LINE_ITEM_NOT_FOUND"
	CodeItemNotActive      = "LINE_ITEM_NOT_ACTIVE"
	CodeItemAlreadySent    = "LINE_ITEM_ALREADY_SENT"
	CodeProductNotFound    = "PRODUCT_NOT_FOUND"
	CodeProductBlocked     = "PRODUCT_BLOCKED"
	CodeInsufficientStock  = "INSUFFICIENT_STOCK"
	CodeRecipeCycle        = "RECIPE_CYCLE"
	CodeTicketNotFound     = "TICKET_NOT_FOUND"
	CodeIllegalTransition  = "ILLEGAL_TRANSITION"
	CodeReservationMissing = "RESERVATION_NOT_FOUND"
	CodeSlotUnavailable    = "SLOT_UNAVAILABLE"
	CodeTableTooSmall      = "TABLE_TOO_SMALL"
	CodeAccountNotFound    = "LOYALTY_ACCOUNT_NOT_FOUND"
	CodeInsufficientPoints = "INSUFFICIENT_POINTS"
	CodeBelowMinimum       = "BELOW_MINIMUM_REDEMPTION"
	CodeForbidden          = "FORBIDDEN"
	CodeResourceBusy       = "RESOURCE_BUSY"
	CodeDuplicate          = "DUPLICATE"
	CodeInternal           = "INTERNAL"
)

// Error is the typed business error returned by every engine operation.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Details map[string]any
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// With attaches one detail entry and returns the same error.
func (e *Error) With(key string, value any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

func newError(kind Kind, code, format string, args ...any) *Error {
	return &Error{Kind: kind, Code: code, Message: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...any) *Error {
	return newError(KindValidation, CodeInvalidInput, format, args...)
}

func ValidationCode(code, format string, args ...any) *Error {
	return newError(KindValidation, code, format, args...)
}

func NotFound(code, format string, args ...any) *Error {
	return newError(KindNotFound, code, format, args...)
}

func Conflict(code, format string, args ...any) *Error {
	return newError(KindConflict, code, format, args...)
}

func Forbidden(format string, args ...any) *Error {
	return newError(KindForbidden, CodeForbidden, format, args...)
}

// Internal wraps an infrastructure failure. The message is safe to show; err is not.
func Internal(err error, format string, args ...any) *Error {
	e := newError(KindInternal, CodeInternal, format, args...)
	e.Err = err
	return e
}

// AsError extracts the typed error from a wrapped chain.
func AsError(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// KindOf returns the business kind of err; untyped errors are internal.
func KindOf(err error) Kind {
	if de, ok := AsError(err); ok {
		return de.Kind
	}
	return KindInternal
}

func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

func HasCode(err error, code string) bool {
	de, ok := AsError(err)
	return ok && de.Code == code
}
