package domain

import (
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustBuild(t *testing.T, lines ...EntryLine) Transaction {
	t.Helper()
	tx, err := BuildTransaction(lines, "", occurred, nil)
	require.NoError(t, err)
	return tx
}

func rate(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

func testDirectory() CurrencyDirectory {
	return NewCurrencyDirectory([]Currency{
		{Code: "USD", IsBase: true},
		{Code: "EUR", RateToBase: rate("1.1234")},
		{Code: "GBP", RateToBase: rate("1.27")},
	})
}

func TestAggregateRaw_Empty(t *testing.T) {
	out := AggregateRaw(nil)
	require.NotNil(t, out)
	assert.Empty(t, out)
}

func TestAggregateRaw_GroupsAndSorts(t *testing.T) {
	txs := []Transaction{
		mustBuild(t,
			line(Debit, "Assets:EUR", "50.00", "EUR"),
			line(Credit, "Income:EUR", "50.00", "EUR"),
		),
		mustBuild(t,
			line(Debit, "Assets:USD", "20.00", "USD"),
			line(Credit, "Income:USD", "15.00", "USD"),
			line(Credit, "Assets:EUR", "5.00", "EUR"),
		),
		mustBuild(t,
			line(Debit, "Expenses:Fees", "0.10", "CHF"),
			line(Credit, "Assets:CHF", "0.10", "CHF"),
		),
	}

	out := AggregateRaw(txs)
	require.Len(t, out, 3)

	assert.Equal(t, "CHF", out[0].CurrencyCode)
	assert.Equal(t, "EUR", out[1].CurrencyCode)
	assert.Equal(t, "USD", out[2].CurrencyCode)

	eur := out[1]
	assert.Equal(t, "50.00", FormatMoney(eur.Debit))
	assert.Equal(t, "55.00", FormatMoney(eur.Credit))
	assert.Equal(t, "-5.00", FormatMoney(eur.Net))

	usd := out[2]
	assert.Equal(t, "20.00", FormatMoney(usd.Debit))
	assert.Equal(t, "15.00", FormatMoney(usd.Credit))
	assert.Equal(t, "5.00", FormatMoney(usd.Net))
}

func TestAggregateRaw_PermutationInvariant(t *testing.T) {
	txs := []Transaction{
		mustBuild(t, line(Debit, "A", "1.10", "USD"), line(Credit, "B", "1.10", "USD")),
		mustBuild(t, line(Debit, "A", "2.20", "EUR"), line(Credit, "B", "2.20", "EUR")),
		mustBuild(t, line(Debit, "A", "3.30", "JPY"), line(Credit, "B", "3.30", "JPY")),
		mustBuild(t, line(Debit, "A", "4.40", "EUR"), line(Credit, "B", "4.40", "EUR")),
		mustBuild(t, line(Debit, "A", "5.50", "AUD"), line(Credit, "B", "5.50", "AUD")),
	}

	want := AggregateRaw(txs)

	r := rand.New(rand.NewSource(42))
	for i := 0; i < 20; i++ {
		shuffled := append([]Transaction(nil), txs...)
		r.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })

		got := AggregateRaw(shuffled)
		require.Len(t, got, len(want))
		for j := range want {
			assert.Equal(t, want[j].CurrencyCode, got[j].CurrencyCode)
			assert.True(t, want[j].Debit.Equal(got[j].Debit))
			assert.True(t, want[j].Credit.Equal(got[j].Credit))
			assert.True(t, want[j].Net.Equal(got[j].Net))
		}
	}
}

func TestAggregateConverted_ConvertsIntoBase(t *testing.T) {
	txs := []Transaction{
		mustBuild(t,
			line(Debit, "Assets:EUR", "50.00", "EUR"),
			line(Credit, "Income:EUR", "10.00", "EUR"),
			line(Credit, "Trading:USD", "40.00", "USD"),
		),
	}

	out, err := AggregateConverted(txs, testDirectory(), ExplicitBase("usd"))
	require.NoError(t, err)
	require.Len(t, out, 2)

	eur := out[0]
	assert.Equal(t, "EUR", eur.CurrencyCode)
	assert.Equal(t, "USD", eur.BaseCurrencyCode)
	assert.Equal(t, "1.123400", FormatRate(eur.UsedRate))
	assert.Equal(t, "56.17", FormatMoney(eur.DebitBase))
	assert.Equal(t, "11.23", FormatMoney(eur.CreditBase))
	assert.Equal(t, "44.94", FormatMoney(eur.NetBase))
}

func TestAggregateConverted_BaseCurrencyUsesRateOne(t *testing.T) {
	txs := []Transaction{
		mustBuild(t, line(Debit, "Assets:USD", "12.34", "USD"), line(Credit, "Income:USD", "12.34", "USD")),
	}

	out, err := AggregateConverted(txs, testDirectory(), DirectoryBase())
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "1.000000", FormatRate(out[0].UsedRate))
	assert.Equal(t, "12.34", FormatMoney(out[0].DebitBase))
	assert.Equal(t, "0.00", FormatMoney(out[0].NetBase))
}

func TestAggregateConverted_SortedByCurrency(t *testing.T) {
	txs := []Transaction{
		mustBuild(t, line(Debit, "A", "1", "USD"), line(Credit, "B", "1", "USD")),
		mustBuild(t, line(Debit, "A", "1", "GBP"), line(Credit, "B", "1", "GBP")),
		mustBuild(t, line(Debit, "A", "1", "EUR"), line(Credit, "B", "1", "EUR")),
	}

	out, err := AggregateConverted(txs, testDirectory(), DirectoryBase())
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, []string{"EUR", "GBP", "USD"}, []string{out[0].CurrencyCode, out[1].CurrencyCode, out[2].CurrencyCode})
}

func TestAggregateConverted_Errors(t *testing.T) {
	eurTx := mustBuild(t, line(Debit, "A", "5", "EUR"), line(Credit, "B", "5", "EUR"))
	xyzTx := mustBuild(t, line(Debit, "A", "5", "XYZ"), line(Credit, "B", "5", "XYZ"))

	tests := []struct {
		name   string
		txs    []Transaction
		dir    CurrencyDirectory
		base   BaseCurrency
		reason string
	}{
		{
			name:   "empty explicit base",
			txs:    []Transaction{eurTx},
			dir:    testDirectory(),
			base:   ExplicitBase("   "),
			reason: "empty base currency code",
		},
		{
			name:   "explicit base not in directory",
			txs:    []Transaction{eurTx},
			dir:    testDirectory(),
			base:   ExplicitBase("chf"),
			reason: "base currency not found: CHF",
		},
		{
			name:   "no base in directory",
			txs:    []Transaction{eurTx},
			dir:    NewCurrencyDirectory([]Currency{{Code: "EUR", RateToBase: rate("1.1")}}),
			base:   DirectoryBase(),
			reason: "base currency is not defined",
		},
		{
			name:   "ambiguous base in directory",
			txs:    []Transaction{eurTx},
			dir:    NewCurrencyDirectory([]Currency{{Code: "USD", IsBase: true}, {Code: "EUR", IsBase: true}}),
			base:   DirectoryBase(),
			reason: "base currency is not defined",
		},
		{
			name:   "missing rate",
			txs:    []Transaction{eurTx},
			dir:    NewCurrencyDirectory([]Currency{{Code: "USD", IsBase: true}, {Code: "EUR"}}),
			base:   ExplicitBase("USD"),
			reason: "missing rate_to_base for currency: EUR",
		},
		{
			name:   "zero rate",
			txs:    []Transaction{eurTx},
			dir:    NewCurrencyDirectory([]Currency{{Code: "USD", IsBase: true}, {Code: "EUR", RateToBase: rate("0")}}),
			base:   DirectoryBase(),
			reason: "non-positive rate_to_base for currency: EUR",
		},
		{
			name:   "negative rate",
			txs:    []Transaction{eurTx},
			dir:    NewCurrencyDirectory([]Currency{{Code: "USD", IsBase: true}, {Code: "EUR", RateToBase: rate("-1.5")}}),
			base:   DirectoryBase(),
			reason: "non-positive rate_to_base for currency: EUR",
		},
		{
			name:   "unknown currency in entry",
			txs:    []Transaction{xyzTx},
			dir:    testDirectory(),
			base:   DirectoryBase(),
			reason: "unknown currency in entry: XYZ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := AggregateConverted(tt.txs, tt.dir, tt.base)
			require.Error(t, err)
			assert.True(t, IsValidationError(err))
			assert.Equal(t, tt.reason, err.Error())
		})
	}
}

func TestAggregateConverted_EmptyInputStillResolvesBase(t *testing.T) {
	out, err := AggregateConverted(nil, testDirectory(), DirectoryBase())
	require.NoError(t, err)
	assert.NotNil(t, out)
	assert.Empty(t, out)

	_, err = AggregateConverted(nil, NewCurrencyDirectory(nil), DirectoryBase())
	assert.ErrorIs(t, err, ErrBaseCurrencyNotDefined)
}
