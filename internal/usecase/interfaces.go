package usecase

import (
	"context"
	"time"

	"github.com/iho/fxledger/internal/domain"
)

// AccountRepository defines data access for accounts.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByFullName(ctx context.Context, fullName string) (*domain.Account, error)
	GetByFullNames(ctx context.Context, fullNames []string) ([]*domain.Account, error)
	List(ctx context.Context, limit, offset int) ([]*domain.Account, error)
}

// CurrencyRepository defines data access for the currency directory.
type CurrencyRepository interface {
	Upsert(ctx context.Context, tx Transaction, currency *domain.Currency) error
	// SetBase marks code as the only base currency.
	SetBase(ctx context.Context, tx Transaction, code string) error
	GetByCode(ctx context.Context, code string) (*domain.Currency, error)
	List(ctx context.Context) ([]domain.Currency, error)
}

// JournalRepository defines data access for posted transactions.
type JournalRepository interface {
	// Create stores t with its lines. A non-empty idempotencyKey must be unique;
	// a duplicate surfaces as domain.ErrIdempotencyKeyInFlight.
	Create(ctx context.Context, tx Transaction, t *domain.Transaction, idempotencyKey string) error
	GetByID(ctx context.Context, id string) (*domain.Transaction, error)
	GetByIdempotencyKey(ctx context.Context, key string) (*domain.Transaction, error)
	List(ctx context.Context, filter domain.TransactionFilter) ([]domain.Transaction, error)
}

// RateEventFilter narrows ListEvents.
type RateEventFilter struct {
	CurrencyCode string
	Limit        int
	Offset       int
}

// RateEventRepository defines data access for exchange-rate events and their archive.
type RateEventRepository interface {
	Create(ctx context.Context, tx Transaction, events []domain.ExchangeRateEvent) error
	List(ctx context.Context, filter RateEventFilter) ([]domain.ExchangeRateEvent, error)
	CountOlderThan(ctx context.Context, cutoff time.Time) (int, error)
	// ListIDsOlderThan returns IDs oldest first; limit 0 returns all of them.
	ListIDsOlderThan(ctx context.Context, cutoff time.Time, limit int) ([]string, error)
	ArchiveByIDs(ctx context.Context, tx Transaction, ids []string, archivedAt time.Time) (int, error)
	DeleteByIDs(ctx context.Context, tx Transaction, ids []string) (int, error)
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Retrier re-runs operation on transient storage failures.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Release drops the key so a failed request can be retried.
	Release(ctx context.Context, key string) error
}

// MetricsRecorder receives business metrics from the use cases.
type MetricsRecorder interface {
	TransactionPosted(lines int, elapsed time.Duration)
	TransactionRejected(reason string)
	BalanceReported(kind string)
	TTLBatchApplied(mode string, archived, deleted int)
}

type noopMetrics struct{}

func (noopMetrics) TransactionPosted(int, time.Duration) {}
func (noopMetrics) TransactionRejected(string) {}
func (noopMetrics) BalanceReported(string) {}
func (noopMetrics) TTLBatchApplied(string, int, int) {}

func metricsOrNoop(m MetricsRecorder) MetricsRecorder {
	if m == nil {
		return noopMetrics{}
	}
	return m
}
