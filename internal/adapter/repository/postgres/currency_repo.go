package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/iho/fxledger/internal/domain"
	"github.com/iho/fxledger/internal/infrastructure/postgres/generated"
	"github.com/iho/fxledger/internal/usecase"
)

// CurrencyRepository implements usecase.CurrencyRepository.
type CurrencyRepository struct {
	queries *generated.Queries
}

// NewCurrencyRepository creates a new CurrencyRepository.
func NewCurrencyRepository(db generated.DBTX) *CurrencyRepository {
	return &CurrencyRepository{queries: generated.New(db)}
}

// Upsert inserts or updates the rate of a currency. The base flag is only
// changed through SetBase.
func (r *CurrencyRepository) Upsert(ctx context.Context, tx usecase.Transaction, currency *domain.Currency) error {
	return txQueries(tx).UpsertCurrency(ctx, generated.UpsertCurrencyParams{
		Code:       currency.Code,
		RateToBase: nullDecimalToNumeric(currency.RateToBase),
		UpdatedAt:  timeToPgTimestamptz(currency.UpdatedAt),
	})
}

// SetBase marks code as the only base currency.
func (r *CurrencyRepository) SetBase(ctx context.Context, tx usecase.Transaction, code string) error {
	queries := txQueries(tx)

	if err := queries.ClearBaseCurrency(ctx, code); err != nil {
		return err
	}

	n, err := queries.SetBaseCurrency(ctx, code)
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrCurrencyNotFound
	}

	return nil
}

// GetByCode retrieves a currency by code.
func (r *CurrencyRepository) GetByCode(ctx context.Context, code string) (*domain.Currency, error) {
	row, err := r.queries.GetCurrency(ctx, code)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCurrencyNotFound
		}

		return nil, err
	}

	c := rowToCurrency(row)
	return &c, nil
}

// List returns the whole directory ordered by code.
func (r *CurrencyRepository) List(ctx context.Context) ([]domain.Currency, error) {
	rows, err := r.queries.ListCurrencies(ctx)
	if err != nil {
		return nil, err
	}

	currencies := make([]domain.Currency, 0, len(rows))
	for _, row := range rows {
		currencies = append(currencies, rowToCurrency(row))
	}

	return currencies, nil
}

func rowToCurrency(row generated.Currency) domain.Currency {
	return domain.Currency{
		Code:       row.Code,
		IsBase:     row.IsBase,
		RateToBase: numericToNullDecimal(row.RateToBase),
		UpdatedAt:  row.UpdatedAt.Time,
	}
}
