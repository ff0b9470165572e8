package domain

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func TestValidateAccountName(t *testing.T) {
	t.Parallel()

	t.Run("valid name", func(t *testing.T) {
		if err := ValidateAccountName("Assets:Bank:Checking"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	})

	t.Run("root account", func(t *testing.T) {
		if err := ValidateAccountName("Equity"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	})

	t.Run("empty name rejected", func(t *testing.T) {
		err := ValidateAccountName("   ")
		if !errors.Is(err, ErrInvalidAccountName) {
			t.Fatalf("expected ErrInvalidAccountName, got %v", err)
		}
	})

	t.Run("name too long", func(t *testing.T) {
		tooLong := strings.Repeat("a", MaxAccountNameLength+1)
		err := ValidateAccountName(tooLong)
		if !errors.Is(err, ErrInvalidAccountName) {
			t.Fatalf("expected ErrInvalidAccountName, got %v", err)
		}
	})

	t.Run("too deep", func(t *testing.T) {
		deep := strings.Repeat("a:", MaxAccountDepth) + "a"
		err := ValidateAccountName(deep)
		if !errors.Is(err, ErrInvalidAccountName) {
			t.Fatalf("expected ErrInvalidAccountName, got %v", err)
		}
	})

	t.Run("empty segment", func(t *testing.T) {
		err := ValidateAccountName("Assets::Bank")
		if !errors.Is(err, ErrInvalidAccountName) {
			t.Fatalf("expected ErrInvalidAccountName, got %v", err)
		}
	})

	t.Run("padded segment", func(t *testing.T) {
		err := ValidateAccountName("Assets: Bank")
		if !errors.Is(err, ErrInvalidAccountName) {
			t.Fatalf("expected ErrInvalidAccountName, got %v", err)
		}
	})

	t.Run("name with dangerous tokens", func(t *testing.T) {
		err := ValidateAccountName("savings; DROP TABLE accounts;")
		if !errors.Is(err, ErrInvalidAccountName) {
			t.Fatalf("expected ErrInvalidAccountName, got %v", err)
		}
	})
}

func TestValidateCurrencyCode(t *testing.T) {
	t.Parallel()

	for _, code := range []string{"usd", "EUR", "BTC", "USDT"} {
		if err := ValidateCurrencyCode(code); err != nil {
			t.Fatalf("expected %q to be accepted, got %v", code, err)
		}
	}

	for _, code := range []string{"", "U", "1USD", "US-D", "TOOLONGCODE1"} {
		if err := ValidateCurrencyCode(code); !errors.Is(err, ErrInvalidCurrency) {
			t.Fatalf("expected ErrInvalidCurrency for %q, got %v", code, err)
		}
	}
}

func TestIsISOCurrency(t *testing.T) {
	t.Parallel()

	if !IsISOCurrency("eur") {
		t.Fatal("expected EUR to be an ISO currency")
	}
	if IsISOCurrency("BTC") {
		t.Fatal("expected BTC not to be an ISO currency")
	}
}

func TestValidateMetadata(t *testing.T) {
	t.Parallel()

	if err := ValidateMetadata(nil); err != nil {
		t.Fatalf("expected nil metadata to be allowed, got %v", err)
	}

	valid := map[string]string{"project": "alpha", "desk": "emea"}
	if err := ValidateMetadata(valid); err != nil {
		t.Fatalf("expected valid metadata, got %v", err)
	}

	oversized := map[string]string{
		"payload": strings.Repeat("x", MaxMetadataSize),
	}
	if err := ValidateMetadata(oversized); !errors.Is(err, ErrMetadataTooLarge) {
		t.Fatalf("expected ErrMetadataTooLarge, got %v", err)
	}
}

func TestValidatePagination(t *testing.T) {
	t.Parallel()

	tests := []struct {
		limit, offset         int
		wantLimit, wantOffset int
	}{
		{0, 0, 50, 0},
		{-1, -5, 50, 0},
		{20, 40, 20, 40},
		{5000, 0, 1000, 0},
		{10, math.MaxInt32, 10, math.MaxInt32},
		{10, 1 << 40, 10, math.MaxInt32},
	}

	for _, tt := range tests {
		l, o := ValidatePagination(tt.limit, tt.offset)
		if l != tt.wantLimit || o != tt.wantOffset {
			t.Errorf("ValidatePagination(%d, %d) = (%d, %d), want (%d, %d)", tt.limit, tt.offset, l, o, tt.wantLimit, tt.wantOffset)
		}
	}
}
