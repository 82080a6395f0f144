package shared

import (
	"errors"
	"fmt"
)

// Kind classifies a domain error so the boundary layer can translate it
// into a user-facing response without inspecting error strings.
type Kind string

const (
	KindNotFound             Kind = "not_found"
	KindDuplicateSKU         Kind = "duplicate_sku"
	KindInsufficientQuantity Kind = "insufficient_quantity"
	KindInvalidInput         Kind = "invalid_input"
	KindNoEligibleProducts   Kind = "no_eligible_products"
	KindStorageUnavailable   Kind = "storage_unavailable"
	KindUnauthorized         Kind = "unauthorized"
	KindForbidden            Kind = "forbidden"
	KindConflict             Kind = "conflict"
)

// Error is a recoverable, caller-correctable domain error. Field names
// the offending input where one exists.
type Error struct {
	Kind  Kind
	Field string
	Msg   string
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Field, e.Msg)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

// Is lets errors.Is match any *Error of the same kind.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Kind == t.Kind
}

// NewError builds a domain error with an offending field.
func NewError(kind Kind, field, msg string) *Error {
	return &Error{Kind: kind, Field: field, Msg: msg}
}

// Kind sentinels for errors.Is checks.
var (
	ErrNotFound             = &Error{Kind: KindNotFound, Msg: "resource not found"}
	ErrDuplicateSKU         = &Error{Kind: KindDuplicateSKU, Field: "sku", Msg: "sku already exists"}
	ErrInsufficientQuantity = &Error{Kind: KindInsufficientQuantity, Field: "quantity", Msg: "insufficient quantity"}
	ErrInvalidInput         = &Error{Kind: KindInvalidInput, Msg: "invalid input"}
	ErrNoEligibleProducts   = &Error{Kind: KindNoEligibleProducts, Msg: "no eligible products"}
	ErrStorageUnavailable   = &Error{Kind: KindStorageUnavailable, Msg: "storage unavailable"}
	ErrUnauthorized         = &Error{Kind: KindUnauthorized, Msg: "unauthorized"}
	ErrForbidden            = &Error{Kind: KindForbidden, Msg: "forbidden"}
	ErrConflict             = &Error{Kind: KindConflict, Msg: "conflict"}
)

// Invalid reports an invalid-input error for a named field.
func Invalid(field, msg string) *Error {
	return NewError(KindInvalidInput, field, msg)
}

// Storage wraps an infrastructure failure from the persistence layer.
// The underlying error stays reachable through Unwrap for logging.
func Storage(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
}
