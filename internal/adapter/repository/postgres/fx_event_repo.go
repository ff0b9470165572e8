package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/iho/fxledger/internal/domain"
	"github.com/iho/fxledger/internal/infrastructure/postgres/generated"
	"github.com/iho/fxledger/internal/usecase"
)

// RateEventRepository implements usecase.RateEventRepository.
type RateEventRepository struct {
	queries *generated.Queries
}

// NewRateEventRepository creates a new RateEventRepository.
func NewRateEventRepository(db generated.DBTX) *RateEventRepository {
	return &RateEventRepository{queries: generated.New(db)}
}

// Create appends events inside tx.
func (r *RateEventRepository) Create(ctx context.Context, tx usecase.Transaction, events []domain.ExchangeRateEvent) error {
	queries := txQueries(tx)

	for _, e := range events {
		err := queries.CreateFxRateEvent(ctx, generated.CreateFxRateEventParams{
			ID:            e.ID,
			CurrencyCode:  e.CurrencyCode,
			Rate:          decimalToNumeric(e.Rate),
			OccurredAt:    timeToPgTimestamptz(e.OccurredAt),
			PolicyApplied: e.PolicyApplied,
			Source:        e.Source,
		})
		if err != nil {
			return err
		}
	}

	return nil
}

// List returns events newest first.
func (r *RateEventRepository) List(ctx context.Context, filter usecase.RateEventFilter) ([]domain.ExchangeRateEvent, error) {
	rows, err := r.queries.ListFxRateEvents(ctx, generated.ListFxRateEventsParams{
		CurrencyCode: optionalText(filter.CurrencyCode),
		Limit:        int32(filter.Limit),
		Offset:       int32(filter.Offset),
	})
	if err != nil {
		return nil, err
	}

	events := make([]domain.ExchangeRateEvent, 0, len(rows))
	for _, row := range rows {
		events = append(events, domain.ExchangeRateEvent{
			ID:            row.ID,
			CurrencyCode:  row.CurrencyCode,
			Rate:          numericToDecimal(row.Rate),
			OccurredAt:    row.OccurredAt.Time.UTC(),
			PolicyApplied: row.PolicyApplied,
			Source:        row.Source,
		})
	}

	return events, nil
}

// CountOlderThan counts events that occurred strictly before cutoff.
func (r *RateEventRepository) CountOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	n, err := r.queries.CountFxRateEventsOlderThan(ctx, timeToPgTimestamptz(cutoff))
	return int(n), err
}

// ListIDsOlderThan returns IDs of events older than cutoff, oldest first.
// A zero limit returns all of them.
func (r *RateEventRepository) ListIDsOlderThan(ctx context.Context, cutoff time.Time, limit int) ([]string, error) {
	var pgLimit pgtype.Int8
	if limit > 0 {
		pgLimit = pgtype.Int8{Int64: int64(limit), Valid: true}
	}

	return r.queries.ListFxRateEventIDsOlderThan(ctx, generated.ListFxRateEventIDsOlderThanParams{
		OccurredAt: timeToPgTimestamptz(cutoff),
		Limit:      pgLimit,
	})
}

// ArchiveByIDs copies the events into the archive. Events archived by an
// earlier, interrupted run are skipped.
func (r *RateEventRepository) ArchiveByIDs(ctx context.Context, tx usecase.Transaction, ids []string, archivedAt time.Time) (int, error) {
	n, err := txQueries(tx).ArchiveFxRateEvents(ctx, generated.ArchiveFxRateEventsParams{
		Ids:        ids,
		ArchivedAt: timeToPgTimestamptz(archivedAt),
	})
	return int(n), err
}

// DeleteByIDs removes the events from the live table.
func (r *RateEventRepository) DeleteByIDs(ctx context.Context, tx usecase.Transaction, ids []string) (int, error) {
	n, err := txQueries(tx).DeleteFxRateEvents(ctx, ids)
	return int(n), err
}
