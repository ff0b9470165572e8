package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/fxledger/internal/domain"
)

// LedgerOptions tunes transaction posting.
type LedgerOptions struct {
	ForbidSelfReference bool
}

// LedgerUseCase posts and reads journal transactions.
type LedgerUseCase struct {
	txManager    TransactionManager
	accountRepo  AccountRepository
	currencyRepo CurrencyRepository
	journalRepo  JournalRepository
	eventRepo    RateEventRepository
	idGen        IDGenerator
	retrier      Retrier
	metrics      MetricsRecorder
	buildOpts    []domain.BuildOption
}

// NewLedgerUseCase creates a new LedgerUseCase. metrics may be nil.
func NewLedgerUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	currencyRepo CurrencyRepository,
	journalRepo JournalRepository,
	eventRepo RateEventRepository,
	idGen IDGenerator,
	retrier Retrier,
	metrics MetricsRecorder,
	opts LedgerOptions,
) *LedgerUseCase {
	var buildOpts []domain.BuildOption
	if opts.ForbidSelfReference {
		buildOpts = append(buildOpts, domain.WithSelfReferenceCheck())
	}

	return &LedgerUseCase{
		txManager:    txManager,
		accountRepo:  accountRepo,
		currencyRepo: currencyRepo,
		journalRepo:  journalRepo,
		eventRepo:    eventRepo,
		idGen:        idGen,
		retrier:      retrier,
		metrics:      metricsOrNoop(metrics),
		buildOpts:    buildOpts,
	}
}

// PostLineInput is one line of a transaction to post.
type PostLineInput struct {
	Side    string
	Account string
	Amount  decimal.Decimal
	// Currency defaults to the account currency when empty.
	Currency string
	Rate     *decimal.Decimal
}

// PostTransactionInput represents input for posting a transaction.
type PostTransactionInput struct {
	Lines          []PostLineInput
	Memo           string
	OccurredAt     time.Time
	Meta           map[string]string
	IdempotencyKey string
}

// PostTransactionResult is the outcome of PostTransaction.
type PostTransactionResult struct {
	Transaction  *domain.Transaction
	AppliedRates []domain.AppliedRate
	// Replayed is set when the idempotency key matched an earlier posting.
	Replayed bool
}

// PostTransaction validates and stores a balanced transaction together with
// the exchange-rate events for the rates it applied.
func (uc *LedgerUseCase) PostTransaction(ctx context.Context, input PostTransactionInput) (*PostTransactionResult, error) {
	start := time.Now()

	result, err := uc.postTransaction(ctx, input)
	if err != nil {
		uc.metrics.TransactionRejected(rejectionReason(err))
		return nil, err
	}

	if !result.Replayed {
		uc.metrics.TransactionPosted(len(result.Transaction.Lines), time.Since(start))
	}

	return result, nil
}

func (uc *LedgerUseCase) postTransaction(ctx context.Context, input PostTransactionInput) (*PostTransactionResult, error) {
	ctx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	key := strings.TrimSpace(input.IdempotencyKey)
	if key != "" {
		prior, err := uc.replay(ctx, key)
		if err != nil || prior != nil {
			return prior, err
		}
	}

	if len(input.Memo) > domain.MaxMemoLength {
		return nil, domain.NewValidationError("memo exceeds %d characters", domain.MaxMemoLength)
	}
	if err := domain.ValidateMetadata(input.Meta); err != nil {
		return nil, err
	}

	lines, err := uc.resolveLines(ctx, input.Lines)
	if err != nil {
		return nil, err
	}

	built, err := domain.BuildTransaction(lines, input.Memo, input.OccurredAt, input.Meta, uc.buildOpts...)
	if err != nil {
		return nil, err
	}

	currencies, err := uc.currencyRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading currencies: %w", err)
	}
	dir := domain.NewCurrencyDirectory(currencies)

	for _, code := range built.Currencies() {
		if _, ok := dir.Lookup(code); !ok {
			return nil, domain.NewValidationError("unknown currency in entry: %s", code)
		}
	}

	txn := built.WithID(uc.idGen.Generate())
	applied := appliedRates(txn, dir)
	events := uc.rateEvents(txn, applied)

	err = uc.retrier.Retry(ctx, func() error {
		return uc.persist(ctx, &txn, events, key)
	})
	if errors.Is(err, domain.ErrIdempotencyKeyInFlight) {
		// Lost a race with a concurrent posting of the same key.
		prior, replayErr := uc.replay(ctx, key)
		if replayErr == nil && prior != nil {
			return prior, nil
		}
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("storing transaction: %w", err)
	}

	return &PostTransactionResult{Transaction: &txn, AppliedRates: applied}, nil
}

func (uc *LedgerUseCase) replay(ctx context.Context, key string) (*PostTransactionResult, error) {
	prior, err := uc.journalRepo.GetByIdempotencyKey(ctx, key)
	if errors.Is(err, domain.ErrTransactionNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("idempotency lookup: %w", err)
	}
	return &PostTransactionResult{Transaction: prior, Replayed: true}, nil
}

// resolveLines maps inputs onto domain lines, filling in account currencies.
func (uc *LedgerUseCase) resolveLines(ctx context.Context, inputs []PostLineInput) ([]domain.EntryLine, error) {
	names := make([]string, 0, len(inputs))
	seen := make(map[string]bool, len(inputs))
	for _, in := range inputs {
		name := strings.TrimSpace(in.Account)
		if name != "" && !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}

	accounts := make(map[string]*domain.Account, len(names))
	if len(names) > 0 {
		found, err := uc.accountRepo.GetByFullNames(ctx, names)
		if err != nil {
			return nil, fmt.Errorf("loading accounts: %w", err)
		}
		for _, a := range found {
			accounts[a.FullName] = a
		}
	}

	lines := make([]domain.EntryLine, 0, len(inputs))
	for _, in := range inputs {
		name := strings.TrimSpace(in.Account)

		line := domain.EntryLine{
			Side:     domain.Side(in.Side),
			Account:  name,
			Amount:   in.Amount,
			Currency: in.Currency,
			Rate:     domain.PolicyRate{},
		}
		if in.Rate != nil {
			line.Rate = domain.ExplicitRate{Value: *in.Rate}
		}

		if name != "" {
			acc, ok := accounts[name]
			if !ok {
				return nil, fmt.Errorf("%w: %s", domain.ErrAccountNotFound, name)
			}
			if strings.TrimSpace(line.Currency) == "" {
				line.Currency = acc.Currency
			}
		}

		lines = append(lines, line)
	}

	return lines, nil
}

// appliedRates returns one rate per distinct currency and policy of txn.
// Lines whose rate does not resolve are skipped.
func appliedRates(txn domain.Transaction, dir domain.CurrencyDirectory) []domain.AppliedRate {
	base, err := dir.Base()
	if err != nil {
		base = domain.Currency{}
	}

	var out []domain.AppliedRate
	seen := make(map[string]bool)
	for _, l := range txn.Lines {
		r, err := domain.ResolveLineRate(l, dir, base)
		if err != nil {
			continue
		}
		k := r.Currency + "|" + r.Policy + "|" + r.Rate.String()
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, r)
	}
	return out
}

func (uc *LedgerUseCase) rateEvents(txn domain.Transaction, applied []domain.AppliedRate) []domain.ExchangeRateEvent {
	events := make([]domain.ExchangeRateEvent, 0, len(applied))
	for _, r := range applied {
		events = append(events, domain.ExchangeRateEvent{
			ID:            uc.idGen.Generate(),
			CurrencyCode:  r.Currency,
			Rate:          r.Rate,
			OccurredAt:    txn.OccurredAt,
			PolicyApplied: r.Policy,
			Source:        EventSourceTransaction + ":" + txn.ID,
		})
	}
	return events
}

func (uc *LedgerUseCase) persist(ctx context.Context, txn *domain.Transaction, events []domain.ExchangeRateEvent, key string) error {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := uc.journalRepo.Create(ctx, tx, txn, key); err != nil {
		return err
	}

	if len(events) > 0 {
		if err := uc.eventRepo.Create(ctx, tx, events); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// GetTransaction retrieves a posted transaction by ID.
func (uc *LedgerUseCase) GetTransaction(ctx context.Context, id string) (*domain.Transaction, error) {
	return uc.journalRepo.GetByID(ctx, id)
}

func rejectionReason(err error) string {
	switch {
	case domain.IsValidationError(err),
		errors.Is(err, domain.ErrMetadataTooLarge):
		return "validation"
	case errors.Is(err, domain.ErrAccountNotFound):
		return "account_not_found"
	default:
		return "storage"
	}
}
