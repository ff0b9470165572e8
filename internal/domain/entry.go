package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Side is the side of the ledger an entry line posts to.
type Side string

const (
	Debit  Side = "DEBIT"
	Credit Side = "CREDIT"
)

// ParseSide parses a side name case-insensitively.
func ParseSide(s string) (Side, error) {
	switch Side(strings.ToUpper(strings.TrimSpace(s))) {
	case Debit:
		return Debit, nil
	case Credit:
		return Credit, nil
	default:
		return "", NewValidationError("invalid side: %s", s)
	}
}

// RateSource tells where the exchange rate of a line comes from.
// It is either ExplicitRate or PolicyRate; a nil RateSource means PolicyRate.
type RateSource interface {
	rateSource()
}

// ExplicitRate overrides the rate derived from the currency directory.
type ExplicitRate struct {
	Value decimal.Decimal
}

// PolicyRate derives the rate from the currency directory.
type PolicyRate struct{}

func (ExplicitRate) rateSource() {}
func (PolicyRate) rateSource()   {}

// EntryLine is one posting of a transaction.
type EntryLine struct {
	Side     Side
	Account  string
	Amount   decimal.Decimal
	Currency string
	Rate     RateSource
}

// ExplicitRate returns the line's explicit rate, if it carries one.
func (l EntryLine) ExplicitRate() (decimal.Decimal, bool) {
	if r, ok := l.Rate.(ExplicitRate); ok {
		return r.Value, true
	}
	return decimal.Zero, false
}

// Rate policy tags recorded on exchange-rate events.
const (
	RatePolicyExplicit  = "explicit"
	RatePolicyBase      = "base"
	RatePolicyDirectory = "directory"
	RatePolicyManual    = "manual"
)

// AppliedRate is the rate used for a line together with how it was obtained.
type AppliedRate struct {
	Currency string
	Rate     decimal.Decimal
	Policy   string
}

// ResolveLineRate returns the rate that applies to line when converting into
// base. An explicit rate wins; otherwise the directory decides.
func ResolveLineRate(line EntryLine, dir CurrencyDirectory, base Currency) (AppliedRate, error) {
	code := NormalizeCurrencyCode(line.Currency)

	if v, ok := line.ExplicitRate(); ok {
		rate := QuantizeRate(v)
		if !rate.IsPositive() {
			return AppliedRate{}, ErrNonPositiveRate
		}
		return AppliedRate{Currency: code, Rate: rate, Policy: RatePolicyExplicit}, nil
	}

	c, ok := dir.Lookup(code)
	if !ok {
		return AppliedRate{}, NewValidationError("unknown currency in entry: %s", code)
	}

	rate, err := RateToBaseFor(c, base)
	if err != nil {
		return AppliedRate{}, err
	}

	policy := RatePolicyDirectory
	if c.Code == base.Code {
		policy = RatePolicyBase
	}

	return AppliedRate{Currency: code, Rate: rate, Policy: policy}, nil
}
