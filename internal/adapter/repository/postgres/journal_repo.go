package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/iho/fxledger/internal/domain"
	"github.com/iho/fxledger/internal/infrastructure/postgres/generated"
	"github.com/iho/fxledger/internal/usecase"
)

// JournalRepository implements usecase.JournalRepository.
type JournalRepository struct {
	queries *generated.Queries
}

// NewJournalRepository creates a new JournalRepository.
func NewJournalRepository(db generated.DBTX) *JournalRepository {
	return &JournalRepository{queries: generated.New(db)}
}

// Create stores t and its lines inside tx.
func (r *JournalRepository) Create(ctx context.Context, tx usecase.Transaction, t *domain.Transaction, idempotencyKey string) error {
	queries := txQueries(tx)

	meta, err := encodeMeta(t.Meta)
	if err != nil {
		return err
	}

	err = queries.CreateTransaction(ctx, generated.CreateTransactionParams{
		ID:             t.ID,
		Memo:           t.Memo,
		OccurredAt:     timeToPgTimestamptz(t.OccurredAt),
		Meta:           meta,
		IdempotencyKey: optionalText(idempotencyKey),
	})
	if err != nil {
		if idempotencyKey != "" && pgErrorCode(err) == pgErrUniqueViolation {
			return domain.ErrIdempotencyKeyInFlight
		}
		return err
	}

	for i, line := range t.Lines {
		params := generated.CreateEntryLineParams{
			TransactionID: t.ID,
			LineNo:        int32(i),
			Side:          string(line.Side),
			Account:       line.Account,
			Amount:        decimalToNumeric(line.Amount),
			Currency:      line.Currency,
		}
		if rate, ok := line.ExplicitRate(); ok {
			params.Rate = decimalToNumeric(rate)
		}

		if err := queries.CreateEntryLine(ctx, params); err != nil {
			if pgErrorCode(err) == pgErrForeignKeyViolation {
				return fmt.Errorf("%w: %s", domain.ErrAccountNotFound, line.Account)
			}
			return err
		}
	}

	return nil
}

// GetByID retrieves a transaction with its lines.
func (r *JournalRepository) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	row, err := r.queries.GetTransaction(ctx, id)
	return r.loadOne(ctx, row, err)
}

// GetByIdempotencyKey retrieves the transaction stored under key.
func (r *JournalRepository) GetByIdempotencyKey(ctx context.Context, key string) (*domain.Transaction, error) {
	row, err := r.queries.GetTransactionByIdempotencyKey(ctx, optionalText(key))
	return r.loadOne(ctx, row, err)
}

// List returns the transactions matching filter ordered by occurred_at.
func (r *JournalRepository) List(ctx context.Context, filter domain.TransactionFilter) ([]domain.Transaction, error) {
	meta, err := encodeMeta(filter.Meta)
	if err != nil {
		return nil, err
	}

	rows, err := r.queries.ListTransactions(ctx, generated.ListTransactionsParams{
		FromTime: optionalTimestamptz(filter.From),
		ToTime:   optionalTimestamptz(filter.To),
		Meta:     meta,
	})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	ids := make([]string, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
	}

	lineRows, err := r.queries.GetEntryLinesByTransactionIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	lines := make(map[string][]domain.EntryLine, len(rows))
	for _, lr := range lineRows {
		lines[lr.TransactionID] = append(lines[lr.TransactionID], rowToEntryLine(lr))
	}

	txs := make([]domain.Transaction, 0, len(rows))
	for _, row := range rows {
		t, err := rowToTransaction(row, lines[row.ID])
		if err != nil {
			return nil, err
		}
		txs = append(txs, t)
	}

	return txs, nil
}

func (r *JournalRepository) loadOne(ctx context.Context, row generated.Transaction, err error) (*domain.Transaction, error) {
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, err
	}

	lineRows, err := r.queries.GetEntryLinesByTransactionIDs(ctx, []string{row.ID})
	if err != nil {
		return nil, err
	}

	lines := make([]domain.EntryLine, 0, len(lineRows))
	for _, lr := range lineRows {
		lines = append(lines, rowToEntryLine(lr))
	}

	t, err := rowToTransaction(row, lines)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func rowToTransaction(row generated.Transaction, lines []domain.EntryLine) (domain.Transaction, error) {
	meta, err := decodeMeta(row.Meta)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("decoding meta of transaction %s: %w", row.ID, err)
	}

	return domain.Transaction{
		ID:         row.ID,
		Lines:      lines,
		Memo:       row.Memo,
		OccurredAt: row.OccurredAt.Time.UTC(),
		Meta:       meta,
	}, nil
}

func rowToEntryLine(row generated.EntryLine) domain.EntryLine {
	line := domain.EntryLine{
		Side:     domain.Side(row.Side),
		Account:  row.Account,
		Amount:   numericToDecimal(row.Amount),
		Currency: row.Currency,
		Rate:     domain.PolicyRate{},
	}
	if row.Rate.Valid {
		line.Rate = domain.ExplicitRate{Value: numericToDecimal(row.Rate)}
	}
	return line
}

func encodeMeta(meta map[string]string) ([]byte, error) {
	if len(meta) == 0 {
		return []byte("{}"), nil
	}
	return json.Marshal(meta)
}

func decodeMeta(raw []byte) (map[string]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	var meta map[string]string
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, err
	}
	if len(meta) == 0 {
		return nil, nil
	}
	return meta, nil
}
