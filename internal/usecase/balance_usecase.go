package usecase

import (
	"context"
	"fmt"

	"github.com/iho/fxledger/internal/domain"
)

// Balance report kinds, as recorded in metrics.
const (
	BalanceKindRaw       = "raw"
	BalanceKindConverted = "converted"
)

// BalanceUseCase builds trading balance reports.
type BalanceUseCase struct {
	journalRepo  JournalRepository
	currencyRepo CurrencyRepository
	metrics      MetricsRecorder
}

// NewBalanceUseCase creates a new BalanceUseCase. metrics may be nil.
func NewBalanceUseCase(journalRepo JournalRepository, currencyRepo CurrencyRepository, metrics MetricsRecorder) *BalanceUseCase {
	return &BalanceUseCase{
		journalRepo:  journalRepo,
		currencyRepo: currencyRepo,
		metrics:      metricsOrNoop(metrics),
	}
}

// TradingBalance returns per-currency debit, credit and net totals.
func (uc *BalanceUseCase) TradingBalance(ctx context.Context, filter domain.TransactionFilter) ([]domain.TradingBalanceLine, error) {
	txs, err := uc.journalRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("loading transactions: %w", err)
	}

	uc.metrics.BalanceReported(BalanceKindRaw)
	return domain.AggregateRaw(txs), nil
}

// ConvertedTradingBalance returns the trading balance converted into base.
func (uc *BalanceUseCase) ConvertedTradingBalance(ctx context.Context, filter domain.TransactionFilter, base domain.BaseCurrency) ([]domain.ConvertedTradingBalanceLine, error) {
	currencies, err := uc.currencyRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading currencies: %w", err)
	}

	txs, err := uc.journalRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("loading transactions: %w", err)
	}

	out, err := domain.AggregateConverted(txs, domain.NewCurrencyDirectory(currencies), base)
	if err != nil {
		return nil, err
	}

	uc.metrics.BalanceReported(BalanceKindConverted)
	return out, nil
}
