package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/fxledger/internal/domain"
)

// FXAuditUseCase reads exchange-rate events and enforces their retention.
type FXAuditUseCase struct {
	txManager TransactionManager
	eventRepo RateEventRepository
	clock     domain.Clock
	metrics   MetricsRecorder
	logger    zerolog.Logger
}

// NewFXAuditUseCase creates a new FXAuditUseCase. metrics may be nil.
func NewFXAuditUseCase(
	txManager TransactionManager,
	eventRepo RateEventRepository,
	clock domain.Clock,
	metrics MetricsRecorder,
	logger zerolog.Logger,
) *FXAuditUseCase {
	return &FXAuditUseCase{
		txManager: txManager,
		eventRepo: eventRepo,
		clock:     clock,
		metrics:   metricsOrNoop(metrics),
		logger:    logger.With().Str("component", "fx_ttl").Logger(),
	}
}

// TTLInput represents the parameters of a TTL run.
type TTLInput struct {
	RetentionDays int
	BatchSize     int
	Mode          string
	Limit         int
	DryRun        bool
}

// TTLRunResult pairs the executed plan with its outcome.
type TTLRunResult struct {
	Plan   domain.TTLPlan
	Result domain.TTLResult
}

// PlanTTL computes the TTL plan without touching any event.
func (uc *FXAuditUseCase) PlanTTL(ctx context.Context, input TTLInput) (domain.TTLPlan, error) {
	mode, err := domain.ParseTTLMode(input.Mode)
	if err != nil {
		return domain.TTLPlan{}, err
	}

	params := domain.TTLParams{
		Now:           uc.clock.Now(),
		RetentionDays: input.RetentionDays,
		BatchSize:     input.BatchSize,
		Mode:          mode,
		Limit:         input.Limit,
		DryRun:        input.DryRun,
	}
	if err := domain.ValidateTTLParams(params); err != nil {
		return domain.TTLPlan{}, err
	}

	cutoff := domain.TTLCutoff(params.Now, params.RetentionDays)

	count, err := uc.eventRepo.CountOlderThan(ctx, cutoff)
	if err != nil {
		return domain.TTLPlan{}, fmt.Errorf("counting old events: %w", err)
	}

	var ids []string
	if mode != domain.TTLModeNone && count > 0 {
		ids, err = uc.eventRepo.ListIDsOlderThan(ctx, cutoff, params.Limit)
		if err != nil {
			return domain.TTLPlan{}, fmt.Errorf("listing old events: %w", err)
		}
	}

	return domain.PlanTTL(params, domain.TTLCandidates{Count: count, IDs: ids})
}

// RunTTL plans and executes a TTL run. Each batch commits on its own; a
// failure leaves earlier batches applied and reports what they did.
func (uc *FXAuditUseCase) RunTTL(ctx context.Context, input TTLInput) (*TTLRunResult, error) {
	plan, err := uc.PlanTTL(ctx, input)
	if err != nil {
		return nil, err
	}

	log := uc.logger.With().
		Str("mode", string(plan.Mode)).
		Time("cutoff", plan.Cutoff).
		Bool("dry_run", plan.DryRun).
		Logger()

	if plan.Mode == domain.TTLModeNone || plan.TotalOld == 0 {
		log.Info().Int("total_old", plan.TotalOld).Msg("nothing to expire")
		return &TTLRunResult{Plan: plan, Result: domain.TTLResult{DryRun: plan.DryRun}}, nil
	}

	runner := &txBatchRunner{
		txManager: uc.txManager,
		eventRepo: uc.eventRepo,
		metrics:   uc.metrics,
		mode:      plan.Mode,
		logger:    log,
	}

	start := time.Now()
	result, err := domain.ExecuteTTL(ctx, plan, uc.clock, runner)
	if err != nil {
		log.Error().Err(err).
			Int("batches_applied", result.BatchesApplied).
			Msg("ttl run stopped")
		return &TTLRunResult{Plan: plan, Result: result}, err
	}

	log.Info().
		Int("total_old", plan.TotalOld).
		Int("archived", result.ArchivedCount).
		Int("deleted", result.DeletedCount).
		Int("batches", result.BatchesApplied).
		Dur("elapsed", time.Since(start)).
		Msg("ttl run finished")

	return &TTLRunResult{Plan: plan, Result: result}, nil
}

// ListEvents lists exchange-rate events, newest first.
func (uc *FXAuditUseCase) ListEvents(ctx context.Context, filter RateEventFilter) ([]domain.ExchangeRateEvent, error) {
	if filter.Limit <= 0 {
		filter.Limit = DefaultEventListLimit
	}
	filter.Limit, filter.Offset = domain.ValidatePagination(filter.Limit, filter.Offset)
	filter.CurrencyCode = domain.NormalizeCurrencyCode(filter.CurrencyCode)

	return uc.eventRepo.List(ctx, filter)
}

// txBatchRunner opens one database transaction per TTL batch.
type txBatchRunner struct {
	txManager TransactionManager
	eventRepo RateEventRepository
	metrics   MetricsRecorder
	mode      domain.TTLMode
	logger    zerolog.Logger
	batches   int
}

func (r *txBatchRunner) WithinBatch(ctx context.Context, fn func(ctx context.Context, store domain.TTLStore) error) error {
	tx, err := r.txManager.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin ttl batch: %w", err)
	}
	defer tx.Rollback(ctx)

	store := &txTTLStore{tx: tx, eventRepo: r.eventRepo}
	if err := fn(ctx, store); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit ttl batch: %w", err)
	}

	r.batches++
	r.metrics.TTLBatchApplied(string(r.mode), store.archived, store.deleted)
	r.logger.Debug().
		Int("batch", r.batches).
		Int("archived", store.archived).
		Int("deleted", store.deleted).
		Msg("ttl batch committed")

	return nil
}

// txTTLStore binds the event primitives to one open transaction.
type txTTLStore struct {
	tx        Transaction
	eventRepo RateEventRepository
	archived  int
	deleted   int
}

func (s *txTTLStore) ArchiveEvents(ctx context.Context, ids []string, archivedAt time.Time) (int, error) {
	n, err := s.eventRepo.ArchiveByIDs(ctx, s.tx, ids, archivedAt)
	if err != nil {
		return 0, fmt.Errorf("archiving events: %w", err)
	}
	s.archived += n
	return n, nil
}

func (s *txTTLStore) DeleteEventsByIDs(ctx context.Context, ids []string) (int, error) {
	n, err := s.eventRepo.DeleteByIDs(ctx, s.tx, ids)
	if err != nil {
		return 0, fmt.Errorf("deleting events: %w", err)
	}
	s.deleted += n
	return n, nil
}
