package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"go.uber.org/mock/gomock"

	"github.com/iho/fxledger/internal/domain"
	"github.com/iho/fxledger/internal/usecase"
	"github.com/iho/fxledger/internal/usecase/gomocks"
)

func eurTransaction(t *testing.T) domain.Transaction {
	t.Helper()
	tx, err := domain.BuildTransaction([]domain.EntryLine{
		{Side: domain.Debit, Account: "Assets:EUR", Amount: decimal.RequireFromString("50.00"), Currency: "EUR"},
		{Side: domain.Credit, Account: "Income:EUR", Amount: decimal.RequireFromString("10.00"), Currency: "EUR"},
		{Side: domain.Credit, Account: "Trading:USD", Amount: decimal.RequireFromString("40.00"), Currency: "USD"},
	}, "", postedAt, map[string]string{"desk": "emea"})
	if err != nil {
		t.Fatalf("building transaction: %v", err)
	}
	return tx.WithID("tx-1")
}

func TestBalanceUseCase_TradingBalance(t *testing.T) {
	ctrl := gomock.NewController(t)

	journal := gomocks.NewMockJournalRepository(ctrl)
	currencies := gomocks.NewMockCurrencyRepository(ctrl)
	metrics := gomocks.NewMockMetricsRecorder(ctrl)

	filter := domain.TransactionFilter{Meta: map[string]string{"desk": "emea"}}
	journal.EXPECT().List(gomock.Any(), filter).Return([]domain.Transaction{eurTransaction(t)}, nil)
	metrics.EXPECT().BalanceReported(usecase.BalanceKindRaw)

	uc := usecase.NewBalanceUseCase(journal, currencies, metrics)
	lines, err := uc.TradingBalance(context.Background(), filter)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if lines[0].CurrencyCode != "EUR" || domain.FormatMoney(lines[0].Net) != "40.00" {
		t.Errorf("unexpected EUR line: %+v", lines[0])
	}
	if lines[1].CurrencyCode != "USD" || domain.FormatMoney(lines[1].Net) != "-40.00" {
		t.Errorf("unexpected USD line: %+v", lines[1])
	}
}

func TestBalanceUseCase_ConvertedTradingBalance(t *testing.T) {
	ctrl := gomock.NewController(t)

	journal := gomocks.NewMockJournalRepository(ctrl)
	currencies := gomocks.NewMockCurrencyRepository(ctrl)
	metrics := gomocks.NewMockMetricsRecorder(ctrl)

	currencies.EXPECT().List(gomock.Any()).Return([]domain.Currency{
		{Code: "USD", IsBase: true},
		{Code: "EUR", RateToBase: decimal.NewNullDecimal(decimal.RequireFromString("1.1234"))},
	}, nil)
	journal.EXPECT().List(gomock.Any(), gomock.Any()).Return([]domain.Transaction{eurTransaction(t)}, nil)
	metrics.EXPECT().BalanceReported(usecase.BalanceKindConverted)

	uc := usecase.NewBalanceUseCase(journal, currencies, metrics)
	lines, err := uc.ConvertedTradingBalance(context.Background(), domain.TransactionFilter{}, domain.DirectoryBase())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	eur := lines[0]
	if got := domain.FormatMoney(eur.DebitBase); got != "56.17" {
		t.Errorf("DebitBase = %s, want 56.17", got)
	}
	if got := domain.FormatMoney(eur.CreditBase); got != "11.23" {
		t.Errorf("CreditBase = %s, want 11.23", got)
	}
	if got := domain.FormatMoney(eur.NetBase); got != "44.94" {
		t.Errorf("NetBase = %s, want 44.94", got)
	}
}

func TestBalanceUseCase_ConvertedTradingBalance_MissingRate(t *testing.T) {
	ctrl := gomock.NewController(t)

	journal := gomocks.NewMockJournalRepository(ctrl)
	currencies := gomocks.NewMockCurrencyRepository(ctrl)
	metrics := gomocks.NewMockMetricsRecorder(ctrl)

	currencies.EXPECT().List(gomock.Any()).Return([]domain.Currency{
		{Code: "USD", IsBase: true},
		{Code: "EUR"},
	}, nil)
	journal.EXPECT().List(gomock.Any(), gomock.Any()).Return([]domain.Transaction{eurTransaction(t)}, nil)

	uc := usecase.NewBalanceUseCase(journal, currencies, metrics)
	_, err := uc.ConvertedTradingBalance(context.Background(), domain.TransactionFilter{}, domain.ExplicitBase("USD"))
	if err == nil || err.Error() != "missing rate_to_base for currency: EUR" {
		t.Fatalf("expected missing rate error, got %v", err)
	}
}

func TestBalanceUseCase_RepositoryError(t *testing.T) {
	ctrl := gomock.NewController(t)

	journal := gomocks.NewMockJournalRepository(ctrl)
	currencies := gomocks.NewMockCurrencyRepository(ctrl)

	journal.EXPECT().List(gomock.Any(), gomock.Any()).Return(nil, errors.New("db down"))

	uc := usecase.NewBalanceUseCase(journal, currencies, nil)
	if _, err := uc.TradingBalance(context.Background(), domain.TransactionFilter{}); err == nil {
		t.Fatal("expected error")
	}
}
