package domain

import (
	"context"
	"strings"
	"time"
)

// TTLMode selects what happens to exchange-rate events past retention.
type TTLMode string

const (
	TTLModeNone    TTLMode = "none"
	TTLModeDelete  TTLMode = "delete"
	TTLModeArchive TTLMode = "archive"
)

// ParseTTLMode parses a TTL mode name.
func ParseTTLMode(s string) (TTLMode, error) {
	m := TTLMode(strings.ToLower(strings.TrimSpace(s)))
	switch m {
	case TTLModeNone, TTLModeDelete, TTLModeArchive:
		return m, nil
	default:
		return "", NewValidationError("invalid ttl mode: %s", s)
	}
}

// TTLBatch is a window of old events processed as one atomic unit.
type TTLBatch struct {
	Offset int
	Limit  int
}

// TTLParams are the inputs of a TTL run.
type TTLParams struct {
	Now           time.Time
	RetentionDays int
	BatchSize     int
	Mode          TTLMode
	Limit         int // 0 means no limit
	DryRun        bool
}

// TTLCandidates are the events older than the cutoff, as found by storage.
type TTLCandidates struct {
	Count int
	IDs   []string
}

// TTLPlan describes which events a TTL run will touch and in which batches.
// It is computed without side effects and consumed once by ExecuteTTL.
type TTLPlan struct {
	PlannedAt     time.Time
	Cutoff        time.Time
	Mode          TTLMode
	RetentionDays int
	BatchSize     int
	Limit         int
	DryRun        bool
	TotalOld      int
	Batches       []TTLBatch
	OldEventIDs   []string
}

// TTLResult reports what ExecuteTTL did, or would do for a dry run.
type TTLResult struct {
	ArchivedCount  int
	DeletedCount   int
	BatchesApplied int
	DryRun         bool
}

// MaxTTLRetentionDays keeps the cutoff inside the range PostgreSQL timestamps
// can hold.
const MaxTTLRetentionDays = 365_000

// TTLCutoff returns the instant before which events are past retention.
func TTLCutoff(now time.Time, retentionDays int) time.Time {
	return now.UTC().AddDate(0, 0, -retentionDays)
}

// ValidateTTLParams checks the TTL parameters.
func ValidateTTLParams(p TTLParams) error {
	if p.RetentionDays < 0 {
		return NewValidationError("retention_days must be >= 0")
	}
	if p.RetentionDays > MaxTTLRetentionDays {
		return NewValidationError("retention_days must be <= %d", MaxTTLRetentionDays)
	}
	if p.BatchSize <= 0 {
		return NewValidationError("batch_size must be > 0")
	}
	if _, err := ParseTTLMode(string(p.Mode)); err != nil {
		return err
	}
	if p.Limit < 0 {
		return NewValidationError("limit must be >= 0")
	}
	return nil
}

// PlanTTL builds the plan for a TTL run over the given candidates.
func PlanTTL(p TTLParams, c TTLCandidates) (TTLPlan, error) {
	if err := ValidateTTLParams(p); err != nil {
		return TTLPlan{}, err
	}
	if c.Count < 0 {
		return TTLPlan{}, NewValidationError("candidate count must be >= 0")
	}

	mode, _ := ParseTTLMode(string(p.Mode))
	plan := TTLPlan{
		PlannedAt:     p.Now.UTC(),
		Cutoff:        TTLCutoff(p.Now, p.RetentionDays),
		Mode:          mode,
		RetentionDays: p.RetentionDays,
		BatchSize:     p.BatchSize,
		Limit:         p.Limit,
		DryRun:        p.DryRun,
		TotalOld:      c.Count,
		Batches:       []TTLBatch{},
		OldEventIDs:   []string{},
	}

	if mode == TTLModeNone {
		return plan, nil
	}

	plan.Batches = SplitBatches(c.Count, p.BatchSize)

	ids := c.IDs
	if p.Limit > 0 && len(ids) > p.Limit {
		ids = ids[:p.Limit]
	}
	plan.OldEventIDs = append(plan.OldEventIDs, ids...)

	return plan, nil
}

// ExecutableBatches returns the prefix of Batches backed by event IDs, with
// the last window clipped to the IDs left. It differs from Batches only when
// Limit capped the run.
func (p TTLPlan) ExecutableBatches() []TTLBatch {
	batches := []TTLBatch{}
	n := len(p.OldEventIDs)
	for _, b := range p.Batches {
		if b.Offset >= n {
			break
		}
		b.Limit = min(b.Limit, n-b.Offset)
		batches = append(batches, b)
	}
	return batches
}

// SplitBatches partitions total into consecutive windows of size, the last
// one holding the remainder.
func SplitBatches(total, size int) []TTLBatch {
	if total <= 0 || size <= 0 {
		return []TTLBatch{}
	}

	batches := make([]TTLBatch, 0, (total+size-1)/size)
	for offset := 0; offset < total; offset += size {
		batches = append(batches, TTLBatch{Offset: offset, Limit: min(size, total-offset)})
	}
	return batches
}

// Validate re-checks the plan before any mutation.
func (p TTLPlan) Validate() error {
	if p.Mode == TTLModeNone {
		return nil
	}
	if _, err := ParseTTLMode(string(p.Mode)); err != nil {
		return err
	}
	if len(p.OldEventIDs) == 0 {
		return ErrInconsistentTTLPlan
	}

	next := 0
	for _, b := range p.Batches {
		if b.Offset != next || b.Limit <= 0 {
			return ErrInconsistentTTLPlan
		}
		next += b.Limit
	}
	if next != p.TotalOld {
		return ErrInconsistentTTLPlan
	}

	return nil
}

// BatchIDs returns the event IDs covered by b, clipped to the IDs in the plan.
func (p TTLPlan) BatchIDs(b TTLBatch) []string {
	if b.Offset >= len(p.OldEventIDs) {
		return nil
	}
	end := min(b.Offset+b.Limit, len(p.OldEventIDs))
	return p.OldEventIDs[b.Offset:end]
}

// EventArchiver copies events into the archive.
type EventArchiver interface {
	ArchiveEvents(ctx context.Context, ids []string, archivedAt time.Time) (int, error)
}

// EventDeleter removes events.
type EventDeleter interface {
	DeleteEventsByIDs(ctx context.Context, ids []string) (int, error)
}

// TTLStore is the set of primitives available inside one batch.
type TTLStore interface {
	EventArchiver
	EventDeleter
}

// TTLUnitOfWork runs fn atomically: every mutation made through store is
// committed together or not at all.
type TTLUnitOfWork interface {
	WithinBatch(ctx context.Context, fn func(ctx context.Context, store TTLStore) error) error
}

// ExecuteTTL applies plan batch by batch. Batches run in order, each in its
// own unit of work; a dry run computes the counts without calling uow.
func ExecuteTTL(ctx context.Context, plan TTLPlan, clock Clock, uow TTLUnitOfWork) (TTLResult, error) {
	result := TTLResult{DryRun: plan.DryRun}

	if plan.Mode == TTLModeNone {
		return result, nil
	}

	if err := plan.Validate(); err != nil {
		return result, err
	}

	archivedAt := clock.Now().UTC()

	for _, b := range plan.ExecutableBatches() {
		ids := plan.BatchIDs(b)

		if plan.DryRun {
			if plan.Mode == TTLModeArchive {
				result.ArchivedCount += len(ids)
			}
			result.DeletedCount += len(ids)
			result.BatchesApplied++
			continue
		}

		if err := ctx.Err(); err != nil {
			return result, err
		}

		var archived, deleted int
		err := uow.WithinBatch(ctx, func(ctx context.Context, store TTLStore) error {
			if plan.Mode == TTLModeArchive {
				n, err := store.ArchiveEvents(ctx, ids, archivedAt)
				if err != nil {
					return err
				}
				archived = n
			}

			n, err := store.DeleteEventsByIDs(ctx, ids)
			if err != nil {
				return err
			}
			deleted = n

			return nil
		})
		if err != nil {
			return result, err
		}

		result.ArchivedCount += archived
		result.DeletedCount += deleted
		result.BatchesApplied++
	}

	return result, nil
}
