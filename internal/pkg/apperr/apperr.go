package apperr

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Kind classifies an error for HTTP mapping and retry decisions.
type Kind int

const (
	// Validation: bad input shape or range; the caller can fix and retry.
	Validation Kind = iota
	// NotFound: unknown farm, holding or user.
	NotFound
	// Conflict: the operation contradicts current state (AlreadyTokenized, Oversubscribed).
	Conflict
	// External: an asset-ledger or payment call failed with a known outcome.
	External
	// Indeterminate: an external call timed out with the remote outcome unknown.
	// Never coerced to success or plain failure; retry-or-not is the caller's call.
	Indeterminate
)

// Error carries a kind plus optional field detail for validation failures.
type Error struct {
	Kind    Kind
	Message string
	Field   string
	Err     error
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s (field %q)", e.Message, e.Field)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap attaches a kind to an underlying error.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// Field builds a validation error naming the offending field.
func Field(field, message string) *Error {
	return &Error{Kind: Validation, Message: message, Field: field}
}

// KindOf extracts the kind, defaulting to External for untyped errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return External
}

// StatusCode maps an error kind to the HTTP status used by handlers.
func StatusCode(err error) int {
	switch KindOf(err) {
	case Validation:
		return fiber.StatusBadRequest
	case NotFound:
		return fiber.StatusNotFound
	case Conflict:
		return fiber.StatusConflict
	case Indeterminate:
		return fiber.StatusGatewayTimeout
	default:
		return fiber.StatusBadGateway
	}
}
