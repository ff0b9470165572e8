package domain

import (
	"errors"
	"fmt"
)

var (
	// Lookup errors
	ErrAccountNotFound     = errors.New("account not found")
	ErrCurrencyNotFound    = errors.New("currency not found")
	ErrTransactionNotFound = errors.New("transaction not found")

	// Conflict errors
	ErrAccountExists = errors.New("account already exists")

	// Idempotency errors
	ErrIdempotencyKeyInFlight = errors.New("request with this idempotency key is still being processed")
)

// ValidationError is the single error kind raised by the bookkeeping core.
// Reason is short and stable enough for callers to match on.
type ValidationError struct {
	Reason string
}

// NewValidationError builds a ValidationError from a formatted reason.
func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// Is reports whether target is a ValidationError with the same reason.
func (e *ValidationError) Is(target error) bool {
	var other *ValidationError
	if !errors.As(target, &other) {
		return false
	}
	return other.Reason == e.Reason
}

// IsValidationError reports whether err (or anything it wraps) is a ValidationError.
func IsValidationError(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// Fixed-reason validation errors.
var (
	ErrNoEntryLines           = &ValidationError{Reason: "no entry lines"}
	ErrNonPositiveAmount      = &ValidationError{Reason: "non-positive amount"}
	ErrNonPositiveRate        = &ValidationError{Reason: "non-positive rate"}
	ErrUnbalancedTransaction  = &ValidationError{Reason: "unbalanced transaction"}
	ErrMissingOccurredAt      = &ValidationError{Reason: "missing occurred_at"}
	ErrEmptyAccount           = &ValidationError{Reason: "empty account"}
	ErrEmptyCurrencyCode      = &ValidationError{Reason: "empty currency code"}
	ErrEmptyBaseCurrencyCode  = &ValidationError{Reason: "empty base currency code"}
	ErrBaseCurrencyNotDefined = &ValidationError{Reason: "base currency is not defined"}
	ErrInconsistentTTLPlan    = &ValidationError{Reason: "inconsistent TTL plan"}
)
