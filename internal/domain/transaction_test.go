package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var occurred = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func line(side Side, account, amount, currency string) EntryLine {
	return EntryLine{
		Side:     side,
		Account:  account,
		Amount:   decimal.RequireFromString(amount),
		Currency: currency,
	}
}

func TestBuildTransaction_Validation(t *testing.T) {
	tests := []struct {
		name        string
		lines       []EntryLine
		occurredAt  time.Time
		expectError error
	}{
		{
			name: "balanced",
			lines: []EntryLine{
				line(Debit, "Assets:Bank", "100.00", "USD"),
				line(Credit, "Income:Salary", "100.00", "USD"),
			},
			occurredAt: occurred,
		},
		{
			name:        "no lines",
			lines:       nil,
			occurredAt:  occurred,
			expectError: ErrNoEntryLines,
		},
		{
			name: "unbalanced",
			lines: []EntryLine{
				line(Debit, "Assets:Bank", "100.00", "USD"),
				line(Credit, "Income:Salary", "99.99", "USD"),
			},
			occurredAt:  occurred,
			expectError: ErrUnbalancedTransaction,
		},
		{
			name: "zero amount",
			lines: []EntryLine{
				line(Debit, "Assets:Bank", "0", "USD"),
				line(Credit, "Income:Salary", "0", "USD"),
			},
			occurredAt:  occurred,
			expectError: ErrNonPositiveAmount,
		},
		{
			name: "amount rounds to zero",
			lines: []EntryLine{
				line(Debit, "Assets:Bank", "0.004", "USD"),
				line(Credit, "Income:Salary", "0.004", "USD"),
			},
			occurredAt:  occurred,
			expectError: ErrNonPositiveAmount,
		},
		{
			name: "negative amount",
			lines: []EntryLine{
				line(Debit, "Assets:Bank", "-5", "USD"),
				line(Credit, "Income:Salary", "-5", "USD"),
			},
			occurredAt:  occurred,
			expectError: ErrNonPositiveAmount,
		},
		{
			name: "empty account",
			lines: []EntryLine{
				line(Debit, "  ", "1", "USD"),
				line(Credit, "Income:Salary", "1", "USD"),
			},
			occurredAt:  occurred,
			expectError: ErrEmptyAccount,
		},
		{
			name: "empty currency",
			lines: []EntryLine{
				line(Debit, "Assets:Bank", "1", ""),
				line(Credit, "Income:Salary", "1", "USD"),
			},
			occurredAt:  occurred,
			expectError: ErrEmptyCurrencyCode,
		},
		{
			name: "missing occurred_at",
			lines: []EntryLine{
				line(Debit, "Assets:Bank", "1", "USD"),
				line(Credit, "Income:Salary", "1", "USD"),
			},
			expectError: ErrMissingOccurredAt,
		},
		{
			name: "non-positive explicit rate",
			lines: []EntryLine{
				{Side: Debit, Account: "Assets:Bank", Amount: decimal.NewFromInt(1), Currency: "EUR", Rate: ExplicitRate{Value: decimal.Zero}},
				line(Credit, "Income:Salary", "1", "EUR"),
			},
			occurredAt:  occurred,
			expectError: ErrNonPositiveRate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildTransaction(tt.lines, "memo", tt.occurredAt, nil)

			if tt.expectError == nil && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if tt.expectError != nil && !errors.Is(err, tt.expectError) {
				t.Errorf("expected error %v, got %v", tt.expectError, err)
			}
			if err != nil && !IsValidationError(err) {
				t.Errorf("expected a ValidationError, got %T", err)
			}
		})
	}
}

func TestBuildTransaction_UnbalancedReason(t *testing.T) {
	_, err := BuildTransaction([]EntryLine{
		line(Debit, "Assets:Cash", "100.00", "USD"),
		line(Credit, "Equity:Opening", "99.99", "USD"),
	}, "", occurred, nil)

	require.Error(t, err)
	assert.Equal(t, "unbalanced transaction", err.Error())
}

func TestBuildTransaction_QuantizesAmountsOnce(t *testing.T) {
	inputs := []EntryLine{
		line(Debit, "Assets:Bank", "10.125", "usd"),
		line(Debit, "Assets:Cash", "5.005", "USD"),
		line(Credit, "Income:Sales", "15.12", " USD "),
	}

	tx, err := BuildTransaction(inputs, "sale", occurred, map[string]string{"ref": "A1"})
	require.NoError(t, err)
	require.Len(t, tx.Lines, 3)

	for i, l := range tx.Lines {
		assert.True(t, l.Amount.Equal(QuantizeMoney(inputs[i].Amount)), "line %d amount %s", i, l.Amount)
		assert.Equal(t, "USD", l.Currency)
		assert.IsType(t, PolicyRate{}, l.Rate)
	}

	debit, credit := tx.Totals()
	assert.True(t, debit.Equal(credit))
	assert.Equal(t, "sale", tx.Memo)
	assert.Equal(t, "A1", tx.Meta["ref"])
	assert.Empty(t, tx.ID)
}

func TestBuildTransaction_DoesNotAliasInputs(t *testing.T) {
	meta := map[string]string{"k": "v"}
	lines := []EntryLine{
		line(Debit, "Assets:Bank", "1", "USD"),
		line(Credit, "Income:Sales", "1", "USD"),
	}

	tx, err := BuildTransaction(lines, "", occurred, meta)
	require.NoError(t, err)

	meta["k"] = "changed"
	lines[0].Amount = decimal.NewFromInt(999)

	assert.Equal(t, "v", tx.Meta["k"])
	assert.True(t, tx.Lines[0].Amount.Equal(decimal.NewFromInt(1)))
}

func TestBuildTransaction_NormalizesToUTC(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)
	at := time.Date(2024, 3, 1, 15, 0, 0, 0, loc)

	tx, err := BuildTransaction([]EntryLine{
		line(Debit, "Assets:Bank", "1", "USD"),
		line(Credit, "Income:Sales", "1", "USD"),
	}, "", at, nil)
	require.NoError(t, err)

	assert.Equal(t, time.UTC, tx.OccurredAt.Location())
	assert.True(t, tx.OccurredAt.Equal(at))
}

func TestBuildTransaction_ExplicitRateQuantized(t *testing.T) {
	tx, err := BuildTransaction([]EntryLine{
		{Side: Debit, Account: "Assets:EUR", Amount: decimal.NewFromInt(10), Currency: "EUR", Rate: ExplicitRate{Value: decimal.RequireFromString("1.12345678")}},
		line(Credit, "Income:EUR", "10", "EUR"),
	}, "", occurred, nil)
	require.NoError(t, err)

	rate, ok := tx.Lines[0].ExplicitRate()
	require.True(t, ok)
	assert.Equal(t, "1.123457", FormatRate(rate))

	_, ok = tx.Lines[1].ExplicitRate()
	assert.False(t, ok)
}

func TestBuildTransaction_SelfReference(t *testing.T) {
	lines := []EntryLine{
		line(Debit, "Assets:Bank", "10", "USD"),
		line(Credit, "Assets:Bank", "10", "USD"),
	}

	// Allowed unless the check is switched on.
	_, err := BuildTransaction(lines, "", occurred, nil)
	require.NoError(t, err)

	_, err = BuildTransaction(lines, "", occurred, nil, WithSelfReferenceCheck())
	require.Error(t, err)
	assert.Equal(t, "self-referencing account: Assets:Bank", err.Error())
	assert.True(t, IsValidationError(err))
}

func TestBuildTransaction_InvalidSide(t *testing.T) {
	_, err := BuildTransaction([]EntryLine{
		{Side: "SIDEWAYS", Account: "Assets:Bank", Amount: decimal.NewFromInt(1), Currency: "USD"},
	}, "", occurred, nil)

	require.Error(t, err)
	assert.Equal(t, "invalid side: SIDEWAYS", err.Error())
}

func TestTransaction_WithIDReturnsCopy(t *testing.T) {
	tx := Transaction{Memo: "m"}
	withID := tx.WithID("tx-1")

	assert.Equal(t, "tx-1", withID.ID)
	assert.Empty(t, tx.ID)
}

func TestTransactionFilter_Matches(t *testing.T) {
	from := occurred.Add(-time.Hour)
	to := occurred.Add(time.Hour)
	tx := Transaction{OccurredAt: occurred, Meta: map[string]string{"project": "alpha", "env": "prod"}}

	tests := []struct {
		name   string
		filter TransactionFilter
		want   bool
	}{
		{"empty filter", TransactionFilter{}, true},
		{"inside window", TransactionFilter{From: &from, To: &to}, true},
		{"from is inclusive", TransactionFilter{From: &occurred}, true},
		{"to is exclusive", TransactionFilter{To: &occurred}, false},
		{"before window", TransactionFilter{From: &to}, false},
		{"meta match", TransactionFilter{Meta: map[string]string{"project": "alpha"}}, true},
		{"meta mismatch", TransactionFilter{Meta: map[string]string{"project": "beta"}}, false},
		{"meta missing key", TransactionFilter{Meta: map[string]string{"team": "x"}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Matches(tx))
		})
	}
}

func TestParseSide(t *testing.T) {
	s, err := ParseSide(" debit ")
	require.NoError(t, err)
	assert.Equal(t, Debit, s)

	s, err = ParseSide("CREDIT")
	require.NoError(t, err)
	assert.Equal(t, Credit, s)

	_, err = ParseSide("both")
	assert.True(t, IsValidationError(err))
}
