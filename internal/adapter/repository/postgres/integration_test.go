package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/fxledger/internal/domain"
	infra "github.com/iho/fxledger/internal/infrastructure/postgres"
	"github.com/iho/fxledger/internal/usecase"
)

// TestLedgerAgainstPostgres runs the posting, balance and TTL flows against
// the database named by FXLEDGER_TEST_DATABASE_URL.
func TestLedgerAgainstPostgres(t *testing.T) {
	dsn := os.Getenv("FXLEDGER_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("FXLEDGER_TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	logger := zerolog.Nop()

	require.NoError(t, infra.RunMigrations(dsn, "", logger))
	t.Cleanup(func() { _ = infra.RunMigrationsDown(dsn, "", logger) })

	pool, err := infra.NewPool(ctx, dsn, 4, 1)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	txManager := NewTxManager(pool)
	accounts := NewAccountRepository(pool)
	currencies := NewCurrencyRepository(pool)
	journal := NewJournalRepository(pool)
	events := NewRateEventRepository(pool)
	idGen := NewULIDGenerator()

	currencyUC := usecase.NewCurrencyUseCase(txManager, currencies, events, idGen, domain.SystemClock, logger)
	accountUC := usecase.NewAccountUseCase(accounts, currencies, idGen, domain.SystemClock)
	ledgerUC := usecase.NewLedgerUseCase(txManager, accounts, currencies, journal, events, idGen, NewRetrier(logger), nil, usecase.LedgerOptions{})
	balanceUC := usecase.NewBalanceUseCase(journal, currencies, nil)

	_, err = currencyUC.SetCurrency(ctx, usecase.SetCurrencyInput{Code: "USD", MakeBase: true})
	require.NoError(t, err)
	eurRate := decimal.RequireFromString("1.1234")
	_, err = currencyUC.SetCurrency(ctx, usecase.SetCurrencyInput{Code: "EUR", RateToBase: &eurRate})
	require.NoError(t, err)

	for _, name := range []string{"Assets:EUR", "Trading:EUR"} {
		_, err := accountUC.CreateAccount(ctx, usecase.CreateAccountInput{FullName: name, Currency: "EUR"})
		require.NoError(t, err)
	}

	occurred := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	input := usecase.PostTransactionInput{
		Lines: []usecase.PostLineInput{
			{Side: "DEBIT", Account: "Assets:EUR", Amount: decimal.RequireFromString("50")},
			{Side: "CREDIT", Account: "Trading:EUR", Amount: decimal.RequireFromString("50")},
		},
		OccurredAt:     occurred,
		Meta:           map[string]string{"desk": "emea"},
		IdempotencyKey: "it-1",
	}

	posted, err := ledgerUC.PostTransaction(ctx, input)
	require.NoError(t, err)

	replay, err := ledgerUC.PostTransaction(ctx, input)
	require.NoError(t, err)
	assert.True(t, replay.Replayed)
	assert.Equal(t, posted.Transaction.ID, replay.Transaction.ID)

	lines, err := balanceUC.ConvertedTradingBalance(ctx, domain.TransactionFilter{Meta: map[string]string{"desk": "emea"}}, domain.DirectoryBase())
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "56.17", domain.FormatMoney(lines[0].DebitBase))
	assert.True(t, lines[0].NetBase.IsZero())

	fxUC := usecase.NewFXAuditUseCase(txManager, events, domain.ClockFunc(func() time.Time {
		return time.Now().UTC().AddDate(1, 0, 0)
	}), nil, logger)

	run, err := fxUC.RunTTL(ctx, usecase.TTLInput{RetentionDays: 30, BatchSize: 1, Mode: "archive"})
	require.NoError(t, err)
	assert.Equal(t, run.Plan.TotalOld, run.Result.ArchivedCount)
	assert.Equal(t, run.Plan.TotalOld, run.Result.DeletedCount)

	left, err := events.CountOlderThan(ctx, time.Now().UTC().AddDate(2, 0, 0))
	require.NoError(t, err)
	assert.Zero(t, left)
}
