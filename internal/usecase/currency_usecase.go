package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/fxledger/internal/domain"
)

// CurrencyUseCase maintains the currency directory.
type CurrencyUseCase struct {
	txManager    TransactionManager
	currencyRepo CurrencyRepository
	eventRepo    RateEventRepository
	idGen        IDGenerator
	clock        domain.Clock
	logger       zerolog.Logger
}

// NewCurrencyUseCase creates a new CurrencyUseCase.
func NewCurrencyUseCase(
	txManager TransactionManager,
	currencyRepo CurrencyRepository,
	eventRepo RateEventRepository,
	idGen IDGenerator,
	clock domain.Clock,
	logger zerolog.Logger,
) *CurrencyUseCase {
	return &CurrencyUseCase{
		txManager:    txManager,
		currencyRepo: currencyRepo,
		eventRepo:    eventRepo,
		idGen:        idGen,
		clock:        clock,
		logger:       logger,
	}
}

// SetCurrencyInput represents input for SetCurrency.
type SetCurrencyInput struct {
	Code string
	// RateToBase keeps the stored rate when nil.
	RateToBase *decimal.Decimal
	// MakeBase turns this currency into the sole base currency. A base
	// currency stops being base only when another one is promoted.
	MakeBase bool
}

// SetCurrency creates or updates a directory entry. Every rate it sets is
// also recorded as a manual exchange-rate event.
func (uc *CurrencyUseCase) SetCurrency(ctx context.Context, input SetCurrencyInput) (*domain.Currency, error) {
	code := domain.NormalizeCurrencyCode(input.Code)
	if code == "" {
		return nil, domain.ErrEmptyCurrencyCode
	}
	if err := domain.ValidateCurrencyCode(code); err != nil {
		return nil, err
	}
	if !domain.IsISOCurrency(code) {
		uc.logger.Warn().Str("currency", code).Msg("currency code is not in ISO 4217")
	}

	now := uc.clock.Now().UTC().Truncate(time.Microsecond)

	currency := domain.Currency{Code: code, UpdatedAt: now}
	existing, err := uc.currencyRepo.GetByCode(ctx, code)
	switch {
	case err == nil:
		currency.IsBase = existing.IsBase
		currency.RateToBase = existing.RateToBase
	case !errors.Is(err, domain.ErrCurrencyNotFound):
		return nil, err
	}

	if input.MakeBase {
		currency.IsBase = true
	}

	var events []domain.ExchangeRateEvent
	if input.RateToBase != nil {
		rate := domain.QuantizeRate(*input.RateToBase)
		if !rate.IsPositive() {
			return nil, domain.NewValidationError("non-positive rate_to_base for currency: %s", code)
		}
		currency.RateToBase = decimal.NewNullDecimal(rate)
		events = append(events, domain.ExchangeRateEvent{
			ID:            uc.idGen.Generate(),
			CurrencyCode:  code,
			Rate:          rate,
			OccurredAt:    now,
			PolicyApplied: domain.RatePolicyManual,
			Source:        EventSourceDirectory,
		})
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := uc.currencyRepo.Upsert(ctx, tx, &currency); err != nil {
		return nil, fmt.Errorf("storing currency: %w", err)
	}

	if input.MakeBase {
		if err := uc.currencyRepo.SetBase(ctx, tx, code); err != nil {
			return nil, fmt.Errorf("setting base currency: %w", err)
		}
	}

	if len(events) > 0 {
		if err := uc.eventRepo.Create(ctx, tx, events); err != nil {
			return nil, fmt.Errorf("recording rate event: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return &currency, nil
}

// ListCurrencies returns the currency directory ordered by code.
func (uc *CurrencyUseCase) ListCurrencies(ctx context.Context) ([]domain.Currency, error) {
	currencies, err := uc.currencyRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	return domain.NewCurrencyDirectory(currencies).Currencies(), nil
}
