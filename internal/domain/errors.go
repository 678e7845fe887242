package domain

import (
	"errors"
	"fmt"
)

// Kind classifies engine errors.
type Kind int

const (
	KindValidation Kind = iota
	KindInvalidOperation
	KindNotFound
	KindFetch
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "ValidationError"
	case KindInvalidOperation:
		return "InvalidOperation"
	case KindNotFound:
		return "NotFound"
	case KindFetch:
		return "FetchError"
	default:
		return "Unknown"
	}
}

// Error messages shared by the engine and its adapters.
const (
	ErrMsgQuantityPositive = "quantity must be at least 1"
	ErrMsgQuantityTooLarge = "quantity exceeds the per-line limit"
	ErrMsgOutOfStock       = "out of stock"
	ErrMsgCartEmpty        = "cart is empty"
	ErrMsgLineNotInCart    = "product not in cart"
	ErrMsgProductNotFound  = "product not found"
	ErrMsgProductIDMissing = "product id is required"
)

// Error is the engine error type. Op names the failing operation.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NewValidation(op, message string) *Error {
	return &Error{Kind: KindValidation, Op: op, Message: message}
}

func NewInvalidOperation(op, message string) *Error {
	return &Error{Kind: KindInvalidOperation, Op: op, Message: message}
}

func NewNotFound(op, message string) *Error {
	return &Error{Kind: KindNotFound, Op: op, Message: message}
}

func NewFetch(op string, err error) *Error {
	return &Error{Kind: KindFetch, Op: op, Message: "catalog fetch failed", Err: err}
}

// IsKind reports whether err wraps an engine *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
