package domain

import "github.com/shopspring/decimal"

// Fixed fractional digits for money and exchange rates.
const (
	MoneyScale = 2
	RateScale  = 6
)

// QuantizeMoney rounds d to MoneyScale digits using round-half-to-even.
// decimal.Decimal is immutable and RoundBank reads no package state, so the
// call is safe from any goroutine.
func QuantizeMoney(d decimal.Decimal) decimal.Decimal {
	return d.RoundBank(MoneyScale)
}

// QuantizeRate rounds d to RateScale digits using round-half-to-even.
func QuantizeRate(d decimal.Decimal) decimal.Decimal {
	return d.RoundBank(RateScale)
}

// FormatMoney renders d at money scale, e.g. "56.17".
func FormatMoney(d decimal.Decimal) string {
	return QuantizeMoney(d).StringFixedBank(MoneyScale)
}

// FormatRate renders d at rate scale, e.g. "1.123400".
func FormatRate(d decimal.Decimal) string {
	return QuantizeRate(d).StringFixedBank(RateScale)
}
