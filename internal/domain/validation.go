package domain

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/Rhymond/go-money"
)

// Validation errors
var (
	ErrInvalidAccountName = errors.New("invalid account name")
	ErrInvalidCurrency    = errors.New("invalid currency code")
	ErrMetadataTooLarge   = errors.New("metadata size exceeds limit")
)

// Validation constants
const (
	MaxAccountNameLength = 255
	MaxAccountDepth      = 10
	MaxMetadataSize      = 10240 // 10KB
	MaxMemoLength        = 1024
)

var currencyCodeRegex = regexp.MustCompile(`^[A-Z][A-Z0-9]{1,9}$`)

// ValidateAccountName validates a colon-separated account full name.
func ValidateAccountName(fullName string) error {
	fullName = strings.TrimSpace(fullName)

	if fullName == "" {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidAccountName)
	}

	if len(fullName) > MaxAccountNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidAccountName, MaxAccountNameLength)
	}

	for _, pattern := range []string{"--", "/*", "*/", ";"} {
		if strings.Contains(fullName, pattern) {
			return fmt.Errorf("%w: contains forbidden characters", ErrInvalidAccountName)
		}
	}

	segments := strings.Split(fullName, AccountNameSeparator)
	if len(segments) > MaxAccountDepth {
		return fmt.Errorf("%w: more than %d levels", ErrInvalidAccountName, MaxAccountDepth)
	}

	for _, s := range segments {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%w: empty segment in %q", ErrInvalidAccountName, fullName)
		}
		if s != strings.TrimSpace(s) {
			return fmt.Errorf("%w: segment %q has surrounding spaces", ErrInvalidAccountName, s)
		}
	}

	return nil
}

// ValidateCurrencyCode checks that code is a short uppercase identifier.
// Non-ISO codes (e.g. BTC) are accepted; see IsISOCurrency.
func ValidateCurrencyCode(code string) error {
	code = NormalizeCurrencyCode(code)

	if !currencyCodeRegex.MatchString(code) {
		return fmt.Errorf("%w: %q", ErrInvalidCurrency, code)
	}

	return nil
}

// IsISOCurrency reports whether code is a known ISO 4217 currency.
func IsISOCurrency(code string) bool {
	return money.GetCurrency(NormalizeCurrencyCode(code)) != nil
}

// ValidateMetadata validates metadata size
func ValidateMetadata(metadata map[string]string) error {
	size := 0
	for k, v := range metadata {
		size += len(k) + len(v)
	}

	if size > MaxMetadataSize {
		return fmt.Errorf("%w: metadata size %d bytes exceeds limit of %d bytes", ErrMetadataTooLarge, size, MaxMetadataSize)
	}

	return nil
}

// ValidatePagination validates and limits pagination parameters
func ValidatePagination(limit, offset int) (int, int) {
	const MaxPageSize = 1000
	const DefaultPageSize = 50

	if limit <= 0 {
		limit = DefaultPageSize
	}

	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	if offset < 0 {
		offset = 0
	}

	// Offsets are bound as int4 in SQL.
	if offset > math.MaxInt32 {
		offset = math.MaxInt32
	}

	return limit, offset
}
