package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/fxledger/internal/domain"
	"github.com/iho/fxledger/internal/usecase"
)

const currencyDirectoryKey = "currencies"

type cachedCurrency struct {
	Code       string              `json:"code"`
	IsBase     bool                `json:"is_base"`
	RateToBase decimal.NullDecimal `json:"rate_to_base"`
	UpdatedAt  time.Time           `json:"updated_at"`
}

// CurrencyCache caches the currency directory in front of another
// usecase.CurrencyRepository. Writes drop the cached directory; the TTL
// bounds how long a concurrent reader may see the previous one.
type CurrencyCache struct {
	next   usecase.CurrencyRepository
	cache  usecase.Cache
	ttl    time.Duration
	logger zerolog.Logger
}

// NewCurrencyCache wraps next with cache.
func NewCurrencyCache(next usecase.CurrencyRepository, cache usecase.Cache, ttl time.Duration, logger zerolog.Logger) *CurrencyCache {
	return &CurrencyCache{
		next:   next,
		cache:  cache,
		ttl:    ttl,
		logger: logger.With().Str("component", "currency_cache").Logger(),
	}
}

// Upsert writes through and invalidates the directory.
func (r *CurrencyCache) Upsert(ctx context.Context, tx usecase.Transaction, currency *domain.Currency) error {
	if err := r.next.Upsert(ctx, tx, currency); err != nil {
		return err
	}
	r.invalidate(ctx)
	return nil
}

// SetBase writes through and invalidates the directory.
func (r *CurrencyCache) SetBase(ctx context.Context, tx usecase.Transaction, code string) error {
	if err := r.next.SetBase(ctx, tx, code); err != nil {
		return err
	}
	r.invalidate(ctx)
	return nil
}

// GetByCode is served from the cached directory when present.
func (r *CurrencyCache) GetByCode(ctx context.Context, code string) (*domain.Currency, error) {
	if list, ok := r.cached(ctx); ok {
		for _, c := range list {
			if c.Code == code {
				return &c, nil
			}
		}
		return nil, domain.ErrCurrencyNotFound
	}
	return r.next.GetByCode(ctx, code)
}

// List returns the cached directory, loading it on a miss.
func (r *CurrencyCache) List(ctx context.Context) ([]domain.Currency, error) {
	if list, ok := r.cached(ctx); ok {
		return list, nil
	}

	list, err := r.next.List(ctx)
	if err != nil {
		return nil, err
	}

	r.store(ctx, list)
	return list, nil
}

func (r *CurrencyCache) cached(ctx context.Context) ([]domain.Currency, bool) {
	raw, err := r.cache.Get(ctx, currencyDirectoryKey)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			r.logger.Warn().Err(err).Msg("reading currency cache")
		}
		return nil, false
	}

	var entries []cachedCurrency
	if err := json.Unmarshal(raw, &entries); err != nil {
		r.logger.Warn().Err(err).Msg("decoding currency cache")
		return nil, false
	}

	list := make([]domain.Currency, len(entries))
	for i, e := range entries {
		list[i] = domain.Currency{Code: e.Code, IsBase: e.IsBase, RateToBase: e.RateToBase, UpdatedAt: e.UpdatedAt}
	}
	return list, true
}

func (r *CurrencyCache) store(ctx context.Context, list []domain.Currency) {
	entries := make([]cachedCurrency, len(list))
	for i, c := range list {
		entries[i] = cachedCurrency{Code: c.Code, IsBase: c.IsBase, RateToBase: c.RateToBase, UpdatedAt: c.UpdatedAt}
	}

	raw, err := json.Marshal(entries)
	if err != nil {
		return
	}
	if err := r.cache.Set(ctx, currencyDirectoryKey, raw, r.ttl); err != nil {
		r.logger.Warn().Err(err).Msg("writing currency cache")
	}
}

func (r *CurrencyCache) invalidate(ctx context.Context) {
	if err := r.cache.Delete(ctx, currencyDirectoryKey); err != nil {
		r.logger.Warn().Err(err).Msg("invalidating currency cache")
	}
}
