package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/fxledger/internal/usecase"
)

// IdempotencyKeyHeader carries the client's idempotency key for mutating requests.
const IdempotencyKeyHeader = "Idempotency-Key"

// EntryLineRequest is one line of a posted transaction.
type EntryLineRequest struct {
	Side    string          `json:"side"`
	Account string          `json:"account"`
	Amount  decimal.Decimal `json:"amount"`
	// Currency defaults to the account currency when empty.
	Currency string           `json:"currency,omitempty"`
	Rate     *decimal.Decimal `json:"rate,omitempty"`
}

// PostTransactionRequest represents a request to post a journal transaction.
type PostTransactionRequest struct {
	Lines      []EntryLineRequest `json:"lines"`
	Memo       string             `json:"memo,omitempty"`
	OccurredAt time.Time          `json:"occurred_at"`
	Meta       map[string]string  `json:"meta,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *PostTransactionRequest) ToUseCaseInput(idempotencyKey string) usecase.PostTransactionInput {
	lines := make([]usecase.PostLineInput, len(r.Lines))
	for i, l := range r.Lines {
		lines[i] = usecase.PostLineInput{
			Side:     l.Side,
			Account:  l.Account,
			Amount:   l.Amount,
			Currency: l.Currency,
			Rate:     l.Rate,
		}
	}
	return usecase.PostTransactionInput{
		Lines:          lines,
		Memo:           r.Memo,
		OccurredAt:     r.OccurredAt,
		Meta:           r.Meta,
		IdempotencyKey: idempotencyKey,
	}
}

// CreateAccountRequest represents a request to create an account.
type CreateAccountRequest struct {
	FullName string `json:"full_name"`
	Currency string `json:"currency"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateAccountRequest) ToUseCaseInput() usecase.CreateAccountInput {
	return usecase.CreateAccountInput{
		FullName: r.FullName,
		Currency: r.Currency,
	}
}

// SetCurrencyRequest creates or updates a currency directory entry.
type SetCurrencyRequest struct {
	RateToBase *decimal.Decimal `json:"rate_to_base,omitempty"`
	MakeBase   bool             `json:"make_base,omitempty"`
}

// ToUseCaseInput converts to use case input for the currency code taken from the path.
func (r *SetCurrencyRequest) ToUseCaseInput(code string) usecase.SetCurrencyInput {
	return usecase.SetCurrencyInput{
		Code:       code,
		RateToBase: r.RateToBase,
		MakeBase:   r.MakeBase,
	}
}

// TTLRequest holds FX audit retention parameters. Omitted fields fall back
// to the configured defaults.
type TTLRequest struct {
	RetentionDays *int   `json:"retention_days,omitempty"`
	BatchSize     *int   `json:"batch_size,omitempty"`
	Mode          string `json:"mode,omitempty"`
	Limit         int    `json:"limit,omitempty"`
	DryRun        bool   `json:"dry_run,omitempty"`
}

// TTLDefaults are applied to fields a TTLRequest leaves out.
type TTLDefaults struct {
	RetentionDays int
	BatchSize     int
	Mode          string
}

// ToUseCaseInput converts to use case input.
func (r *TTLRequest) ToUseCaseInput(defaults TTLDefaults) usecase.TTLInput {
	input := usecase.TTLInput{
		RetentionDays: defaults.RetentionDays,
		BatchSize:     defaults.BatchSize,
		Mode:          defaults.Mode,
		Limit:         r.Limit,
		DryRun:        r.DryRun,
	}
	if r.RetentionDays != nil {
		input.RetentionDays = *r.RetentionDays
	}
	if r.BatchSize != nil {
		input.BatchSize = *r.BatchSize
	}
	if r.Mode != "" {
		input.Mode = r.Mode
	}
	return input
}
