package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/iho/fxledger/internal/domain"
	"github.com/iho/fxledger/internal/usecase"
	"github.com/iho/fxledger/internal/usecase/gomocks"
	"github.com/iho/fxledger/internal/usecase/mocks"
)

var ttlNow = time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)

func oldEvents(n int) []domain.ExchangeRateEvent {
	events := make([]domain.ExchangeRateEvent, n)
	for i := range events {
		events[i] = domain.ExchangeRateEvent{
			ID:            fmt.Sprintf("evt-%02d", i),
			CurrencyCode:  "EUR",
			Rate:          decimal.RequireFromString("1.1"),
			OccurredAt:    ttlNow.AddDate(0, -2, 0).Add(time.Duration(i) * time.Minute),
			PolicyApplied: domain.RatePolicyDirectory,
			Source:        "transaction:tx",
		}
	}
	return events
}

type ttlFixture struct {
	txMgr   *mocks.MockTransactionManager
	events  *mocks.MockRateEventRepository
	metrics *mocks.MockMetricsRecorder
	uc      *usecase.FXAuditUseCase
}

func newTTLFixture(events ...domain.ExchangeRateEvent) *ttlFixture {
	f := &ttlFixture{
		txMgr:   mocks.NewMockTransactionManager(),
		events:  mocks.NewMockRateEventRepository(events...),
		metrics: mocks.NewMockMetricsRecorder(),
	}
	clock := domain.ClockFunc(func() time.Time { return ttlNow })
	f.uc = usecase.NewFXAuditUseCase(f.txMgr, f.events, clock, f.metrics, zerolog.Nop())
	return f
}

func TestFXAuditUseCase_PlanTTL(t *testing.T) {
	recent := domain.ExchangeRateEvent{ID: "fresh", CurrencyCode: "EUR", OccurredAt: ttlNow.Add(-time.Hour)}
	f := newTTLFixture(append(oldEvents(25), recent)...)

	plan, err := f.uc.PlanTTL(context.Background(), usecase.TTLInput{
		RetentionDays: 30,
		BatchSize:     10,
		Mode:          "archive",
	})
	require.NoError(t, err)

	assert.Equal(t, 25, plan.TotalOld)
	assert.Equal(t, []domain.TTLBatch{{Offset: 0, Limit: 10}, {Offset: 10, Limit: 10}, {Offset: 20, Limit: 5}}, plan.Batches)
	assert.Equal(t, ttlNow.AddDate(0, 0, -30), plan.Cutoff)
	assert.Equal(t, "evt-00", plan.OldEventIDs[0], "oldest first")
	assert.NotContains(t, plan.OldEventIDs, "fresh")
	assert.Empty(t, f.txMgr.Txs)
}

func TestFXAuditUseCase_RunTTL_Archive(t *testing.T) {
	f := newTTLFixture(oldEvents(25)...)

	run, err := f.uc.RunTTL(context.Background(), usecase.TTLInput{
		RetentionDays: 30,
		BatchSize:     10,
		Mode:          "archive",
	})
	require.NoError(t, err)

	assert.Equal(t, 25, run.Result.ArchivedCount)
	assert.Equal(t, 25, run.Result.DeletedCount)
	assert.Equal(t, 3, run.Result.BatchesApplied)
	assert.Equal(t, 3, f.txMgr.Committed(), "one transaction per batch")
	assert.Empty(t, f.events.Events())

	archived, ok := f.events.Archived("evt-07")
	require.True(t, ok)
	assert.Equal(t, ttlNow, archived.ArchivedAt)

	assert.Equal(t, 3, f.metrics.Batches)
	assert.Equal(t, 25, f.metrics.Archived)
	assert.Equal(t, 25, f.metrics.Deleted)
}

func TestFXAuditUseCase_RunTTL_DryRun(t *testing.T) {
	f := newTTLFixture(oldEvents(25)...)

	run, err := f.uc.RunTTL(context.Background(), usecase.TTLInput{
		RetentionDays: 0,
		BatchSize:     10,
		Mode:          "delete",
		DryRun:        true,
	})
	require.NoError(t, err)

	assert.True(t, run.Result.DryRun)
	assert.Equal(t, run.Plan.TotalOld, run.Result.DeletedCount)
	assert.Zero(t, f.events.ArchiveCalls)
	assert.Zero(t, f.events.DeleteCalls)
	assert.Empty(t, f.txMgr.Txs)
	assert.Len(t, f.events.Events(), 25)
}

func TestFXAuditUseCase_RunTTL_ModeNone(t *testing.T) {
	f := newTTLFixture(oldEvents(5)...)

	run, err := f.uc.RunTTL(context.Background(), usecase.TTLInput{BatchSize: 10, Mode: "none"})
	require.NoError(t, err)

	assert.Equal(t, 5, run.Plan.TotalOld)
	assert.Empty(t, run.Plan.Batches)
	assert.Equal(t, domain.TTLResult{}, run.Result)
	assert.Empty(t, f.txMgr.Txs)
}

func TestFXAuditUseCase_RunTTL_NothingOld(t *testing.T) {
	f := newTTLFixture()

	run, err := f.uc.RunTTL(context.Background(), usecase.TTLInput{RetentionDays: 1, BatchSize: 10, Mode: "delete"})
	require.NoError(t, err)
	assert.Zero(t, run.Result.DeletedCount)
	assert.Empty(t, f.txMgr.Txs)
}

func TestFXAuditUseCase_RunTTL_Limit(t *testing.T) {
	f := newTTLFixture(oldEvents(25)...)

	run, err := f.uc.RunTTL(context.Background(), usecase.TTLInput{BatchSize: 10, Mode: "delete", Limit: 15})
	require.NoError(t, err)

	assert.Equal(t, 15, run.Result.DeletedCount)
	assert.Equal(t, 2, run.Result.BatchesApplied)
	assert.Len(t, f.events.Events(), 10)
}

func TestFXAuditUseCase_RunTTL_FailedBatchStops(t *testing.T) {
	f := newTTLFixture(oldEvents(25)...)

	calls := 0
	f.events.DeleteByIDsFunc = func(ctx context.Context, tx usecase.Transaction, ids []string) (int, error) {
		calls++
		if calls == 2 {
			return 0, errors.New("connection reset")
		}
		return len(ids), nil
	}

	run, err := f.uc.RunTTL(context.Background(), usecase.TTLInput{BatchSize: 10, Mode: "delete"})
	require.Error(t, err)

	assert.Equal(t, 10, run.Result.DeletedCount)
	assert.Equal(t, 1, run.Result.BatchesApplied)
	assert.Equal(t, 1, f.txMgr.Committed())
	assert.Len(t, f.txMgr.Txs, 2)
}

func TestFXAuditUseCase_PlanTTL_InvalidInput(t *testing.T) {
	f := newTTLFixture()

	tests := []struct {
		input  usecase.TTLInput
		reason string
	}{
		{usecase.TTLInput{RetentionDays: -1, BatchSize: 1, Mode: "delete"}, "retention_days must be >= 0"},
		{usecase.TTLInput{BatchSize: 0, Mode: "delete"}, "batch_size must be > 0"},
		{usecase.TTLInput{BatchSize: 1, Mode: "shred"}, "invalid ttl mode: shred"},
	}

	for _, tt := range tests {
		_, err := f.uc.PlanTTL(context.Background(), tt.input)
		require.Error(t, err)
		assert.True(t, domain.IsValidationError(err))
		assert.Equal(t, tt.reason, err.Error())
	}
}

func TestFXAuditUseCase_PlanTTL_RepositoryErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := gomocks.NewMockRateEventRepository(ctrl)
	txMgr := gomocks.NewMockTransactionManager(ctrl)

	clock := domain.ClockFunc(func() time.Time { return ttlNow })
	uc := usecase.NewFXAuditUseCase(txMgr, repo, clock, nil, zerolog.Nop())

	repo.EXPECT().CountOlderThan(gomock.Any(), ttlNow).Return(3, nil)
	repo.EXPECT().ListIDsOlderThan(gomock.Any(), ttlNow, 0).Return(nil, errors.New("timeout"))

	_, err := uc.PlanTTL(context.Background(), usecase.TTLInput{BatchSize: 1, Mode: "archive"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listing old events")
}

func TestFXAuditUseCase_ListEvents(t *testing.T) {
	events := oldEvents(3)
	events = append(events, domain.ExchangeRateEvent{ID: "gbp", CurrencyCode: "GBP", OccurredAt: ttlNow})
	f := newTTLFixture(events...)

	got, err := f.uc.ListEvents(context.Background(), usecase.RateEventFilter{CurrencyCode: "eur"})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "evt-02", got[0].ID, "newest first")

	all, err := f.uc.ListEvents(context.Background(), usecase.RateEventFilter{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
