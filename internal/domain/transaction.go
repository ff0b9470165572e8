package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is a balanced, immutable set of entry lines.
// Corrections are posted as new transactions.
type Transaction struct {
	ID         string
	Lines      []EntryLine
	Memo       string
	OccurredAt time.Time
	Meta       map[string]string
}

// WithID returns a copy of t carrying id.
func (t Transaction) WithID(id string) Transaction {
	t.ID = id
	return t
}

// Totals returns the debit and credit sums of t.
func (t Transaction) Totals() (debit, credit decimal.Decimal) {
	for _, l := range t.Lines {
		switch l.Side {
		case Debit:
			debit = debit.Add(l.Amount)
		case Credit:
			credit = credit.Add(l.Amount)
		}
	}
	return debit, credit
}

// Currencies returns the distinct currency codes of t in line order.
func (t Transaction) Currencies() []string {
	seen := make(map[string]bool, len(t.Lines))
	var out []string
	for _, l := range t.Lines {
		if !seen[l.Currency] {
			seen[l.Currency] = true
			out = append(out, l.Currency)
		}
	}
	return out
}

type buildOptions struct {
	forbidSelfReference bool
}

// BuildOption tunes BuildTransaction.
type BuildOption func(*buildOptions)

// WithSelfReferenceCheck rejects transactions that debit and credit the same account.
func WithSelfReferenceCheck() BuildOption {
	return func(o *buildOptions) {
		o.forbidSelfReference = true
	}
}

// BuildTransaction validates lines and returns a new balanced transaction.
// Amounts are quantized to money scale exactly once, here.
func BuildTransaction(lines []EntryLine, memo string, occurredAt time.Time, meta map[string]string, opts ...BuildOption) (Transaction, error) {
	var o buildOptions
	for _, opt := range opts {
		opt(&o)
	}

	if len(lines) == 0 {
		return Transaction{}, ErrNoEntryLines
	}

	if occurredAt.IsZero() {
		return Transaction{}, ErrMissingOccurredAt
	}

	built := make([]EntryLine, 0, len(lines))
	debit, credit := decimal.Zero, decimal.Zero
	debited := make(map[string]bool)
	credited := make(map[string]bool)

	for _, l := range lines {
		line, err := normalizeLine(l)
		if err != nil {
			return Transaction{}, err
		}

		switch line.Side {
		case Debit:
			debit = debit.Add(line.Amount)
			debited[line.Account] = true
		case Credit:
			credit = credit.Add(line.Amount)
			credited[line.Account] = true
		}

		built = append(built, line)
	}

	if !debit.Equal(credit) {
		return Transaction{}, ErrUnbalancedTransaction
	}

	if o.forbidSelfReference {
		for _, l := range built {
			if debited[l.Account] && credited[l.Account] {
				return Transaction{}, NewValidationError("self-referencing account: %s", l.Account)
			}
		}
	}

	var copied map[string]string
	if meta != nil {
		copied = make(map[string]string, len(meta))
		for k, v := range meta {
			copied[k] = v
		}
	}

	return Transaction{
		Lines:      built,
		Memo:       memo,
		OccurredAt: occurredAt.UTC(),
		Meta:       copied,
	}, nil
}

func normalizeLine(l EntryLine) (EntryLine, error) {
	side, err := ParseSide(string(l.Side))
	if err != nil {
		return EntryLine{}, err
	}

	account := strings.TrimSpace(l.Account)
	if account == "" {
		return EntryLine{}, ErrEmptyAccount
	}

	code := NormalizeCurrencyCode(l.Currency)
	if code == "" {
		return EntryLine{}, ErrEmptyCurrencyCode
	}

	amount := QuantizeMoney(l.Amount)
	if !amount.IsPositive() {
		return EntryLine{}, ErrNonPositiveAmount
	}

	var rate RateSource = PolicyRate{}
	if v, ok := l.ExplicitRate(); ok {
		q := QuantizeRate(v)
		if !q.IsPositive() {
			return EntryLine{}, ErrNonPositiveRate
		}
		rate = ExplicitRate{Value: q}
	}

	return EntryLine{
		Side:     side,
		Account:  account,
		Amount:   amount,
		Currency: code,
		Rate:     rate,
	}, nil
}

// TransactionFilter selects transactions by time window and meta values.
type TransactionFilter struct {
	From *time.Time // inclusive
	To   *time.Time // exclusive
	Meta map[string]string
}

// Matches reports whether t passes the filter.
func (f TransactionFilter) Matches(t Transaction) bool {
	if f.From != nil && t.OccurredAt.Before(*f.From) {
		return false
	}
	if f.To != nil && !t.OccurredAt.Before(*f.To) {
		return false
	}
	for k, v := range f.Meta {
		if got, ok := t.Meta[k]; !ok || got != v {
			return false
		}
	}
	return true
}
