package domain

import (
	"sort"

	"github.com/shopspring/decimal"
)

// TradingBalanceLine holds per-currency totals of a set of transactions.
type TradingBalanceLine struct {
	CurrencyCode string
	Debit        decimal.Decimal
	Credit       decimal.Decimal
	Net          decimal.Decimal
}

// ConvertedTradingBalanceLine is a TradingBalanceLine converted into a base currency.
type ConvertedTradingBalanceLine struct {
	TradingBalanceLine
	BaseCurrencyCode string
	UsedRate         decimal.Decimal
	DebitBase        decimal.Decimal
	CreditBase       decimal.Decimal
	NetBase          decimal.Decimal
}

// AggregateRaw groups the lines of txs by currency and sums each side.
// The result is ordered by currency code and does not depend on input order.
func AggregateRaw(txs []Transaction) []TradingBalanceLine {
	type sums struct {
		debit, credit decimal.Decimal
	}

	groups := make(map[string]*sums)
	for _, t := range txs {
		for _, l := range t.Lines {
			code := NormalizeCurrencyCode(l.Currency)
			g, ok := groups[code]
			if !ok {
				g = &sums{}
				groups[code] = g
			}
			switch l.Side {
			case Debit:
				g.debit = g.debit.Add(l.Amount)
			case Credit:
				g.credit = g.credit.Add(l.Amount)
			}
		}
	}

	codes := make([]string, 0, len(groups))
	for code := range groups {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	out := make([]TradingBalanceLine, 0, len(codes))
	for _, code := range codes {
		g := groups[code]
		out = append(out, TradingBalanceLine{
			CurrencyCode: code,
			Debit:        QuantizeMoney(g.debit),
			Credit:       QuantizeMoney(g.credit),
			Net:          QuantizeMoney(g.debit.Sub(g.credit)),
		})
	}

	return out
}

// AggregateConverted aggregates txs like AggregateRaw and converts every
// currency group into the base currency selected by base.
func AggregateConverted(txs []Transaction, dir CurrencyDirectory, base BaseCurrency) ([]ConvertedTradingBalanceLine, error) {
	baseCurrency, err := dir.Resolve(base)
	if err != nil {
		return nil, err
	}

	raw := AggregateRaw(txs)
	out := make([]ConvertedTradingBalanceLine, 0, len(raw))

	for _, line := range raw {
		c, ok := dir.Lookup(line.CurrencyCode)
		if !ok {
			return nil, NewValidationError("unknown currency in entry: %s", line.CurrencyCode)
		}

		rate, err := RateToBaseFor(c, baseCurrency)
		if err != nil {
			return nil, err
		}

		debitBase := QuantizeMoney(line.Debit.Mul(rate))
		creditBase := QuantizeMoney(line.Credit.Mul(rate))

		out = append(out, ConvertedTradingBalanceLine{
			TradingBalanceLine: line,
			BaseCurrencyCode:   baseCurrency.Code,
			UsedRate:           rate,
			DebitBase:          debitBase,
			CreditBase:         creditBase,
			NetBase:            QuantizeMoney(debitBase.Sub(creditBase)),
		})
	}

	return out, nil
}
