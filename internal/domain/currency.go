package domain

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Currency is an entry of the currency directory.
type Currency struct {
	Code       string
	IsBase     bool
	RateToBase decimal.NullDecimal
	UpdatedAt  time.Time
}

// NormalizeCurrencyCode trims and upper-cases a currency code.
func NormalizeCurrencyCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// CurrencyDirectory is a read-only, materialized view of the known currencies.
type CurrencyDirectory struct {
	byCode map[string]Currency
}

// NewCurrencyDirectory indexes currencies by normalized code.
// A later entry with the same code replaces an earlier one.
func NewCurrencyDirectory(currencies []Currency) CurrencyDirectory {
	byCode := make(map[string]Currency, len(currencies))
	for _, c := range currencies {
		c.Code = NormalizeCurrencyCode(c.Code)
		byCode[c.Code] = c
	}
	return CurrencyDirectory{byCode: byCode}
}

// Lookup returns the currency for code.
func (d CurrencyDirectory) Lookup(code string) (Currency, bool) {
	c, ok := d.byCode[NormalizeCurrencyCode(code)]
	return c, ok
}

// Len returns the number of currencies in the directory.
func (d CurrencyDirectory) Len() int {
	return len(d.byCode)
}

// Currencies returns all currencies ordered by code.
func (d CurrencyDirectory) Currencies() []Currency {
	out := make([]Currency, 0, len(d.byCode))
	for _, c := range d.byCode {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// Base returns the sole base currency. None or more than one is an error.
func (d CurrencyDirectory) Base() (Currency, error) {
	var (
		base  Currency
		found int
	)
	for _, c := range d.byCode {
		if c.IsBase {
			base = c
			found++
		}
	}
	if found != 1 {
		return Currency{}, ErrBaseCurrencyNotDefined
	}
	return base, nil
}

// BaseCurrency selects the conversion target: either an explicit code or
// whatever the directory marks as base.
type BaseCurrency struct {
	code     string
	explicit bool
}

// ExplicitBase selects code as the base currency.
func ExplicitBase(code string) BaseCurrency {
	return BaseCurrency{code: code, explicit: true}
}

// DirectoryBase selects the directory's base currency.
func DirectoryBase() BaseCurrency {
	return BaseCurrency{}
}

// Explicit returns the requested code and whether one was given.
func (b BaseCurrency) Explicit() (string, bool) {
	return b.code, b.explicit
}

// Resolve returns the base currency selected by sel.
func (d CurrencyDirectory) Resolve(sel BaseCurrency) (Currency, error) {
	code, explicit := sel.Explicit()
	if !explicit {
		return d.Base()
	}

	code = NormalizeCurrencyCode(code)
	if code == "" {
		return Currency{}, ErrEmptyBaseCurrencyCode
	}

	c, ok := d.byCode[code]
	if !ok {
		return Currency{}, NewValidationError("base currency not found: %s", code)
	}
	return c, nil
}

// RateToBaseFor returns the validated conversion rate of c into base.
func RateToBaseFor(c Currency, base Currency) (decimal.Decimal, error) {
	if c.Code == base.Code {
		return QuantizeRate(decimal.NewFromInt(1)), nil
	}
	if !c.RateToBase.Valid {
		return decimal.Zero, NewValidationError("missing rate_to_base for currency: %s", c.Code)
	}
	rate := QuantizeRate(c.RateToBase.Decimal)
	if !rate.IsPositive() {
		return decimal.Zero, NewValidationError("non-positive rate_to_base for currency: %s", c.Code)
	}
	return rate, nil
}
