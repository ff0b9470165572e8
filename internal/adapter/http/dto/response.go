package dto

import (
	"time"

	"github.com/iho/fxledger/internal/domain"
	"github.com/iho/fxledger/internal/usecase"
)

// EntryLineResponse represents one journal line in API responses.
type EntryLineResponse struct {
	Side     string `json:"side"`
	Account  string `json:"account"`
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
	Rate     string `json:"rate,omitempty"`
}

// AppliedRateResponse reports the rate resolved for one currency of a posting.
type AppliedRateResponse struct {
	Currency string `json:"currency"`
	Rate     string `json:"rate"`
	Policy   string `json:"policy"`
}

// TransactionResponse represents a journal transaction in API responses.
type TransactionResponse struct {
	ID           string                `json:"id"`
	Memo         string                `json:"memo,omitempty"`
	OccurredAt   time.Time             `json:"occurred_at"`
	Meta         map[string]string     `json:"meta,omitempty"`
	Lines        []EntryLineResponse   `json:"lines"`
	AppliedRates []AppliedRateResponse `json:"applied_rates,omitempty"`
	Replayed     bool                  `json:"replayed,omitempty"`
}

// TransactionFromDomain converts a domain transaction to a response.
func TransactionFromDomain(t *domain.Transaction) *TransactionResponse {
	lines := make([]EntryLineResponse, len(t.Lines))
	for i, l := range t.Lines {
		lines[i] = EntryLineResponse{
			Side:     string(l.Side),
			Account:  l.Account,
			Amount:   domain.FormatMoney(l.Amount),
			Currency: l.Currency,
		}
		if rate, ok := l.ExplicitRate(); ok {
			lines[i].Rate = domain.FormatRate(rate)
		}
	}

	return &TransactionResponse{
		ID:         t.ID,
		Memo:       t.Memo,
		OccurredAt: t.OccurredAt.UTC(),
		Meta:       t.Meta,
		Lines:      lines,
	}
}

// PostTransactionFromResult converts a posting result to a response.
func PostTransactionFromResult(r *usecase.PostTransactionResult) *TransactionResponse {
	resp := TransactionFromDomain(r.Transaction)
	resp.Replayed = r.Replayed
	for _, a := range r.AppliedRates {
		resp.AppliedRates = append(resp.AppliedRates, AppliedRateResponse{
			Currency: a.Currency,
			Rate:     domain.FormatRate(a.Rate),
			Policy:   a.Policy,
		})
	}
	return resp
}

// TradingBalanceLineResponse is one currency row of a trading balance.
// The base fields are set only for converted reports.
type TradingBalanceLineResponse struct {
	Currency   string `json:"currency"`
	Debit      string `json:"debit"`
	Credit     string `json:"credit"`
	Net        string `json:"net"`
	UsedRate   string `json:"used_rate,omitempty"`
	DebitBase  string `json:"debit_base,omitempty"`
	CreditBase string `json:"credit_base,omitempty"`
	NetBase    string `json:"net_base,omitempty"`
}

// TradingBalanceResponse represents a trading balance report.
type TradingBalanceResponse struct {
	BaseCurrency string                       `json:"base_currency,omitempty"`
	Lines        []TradingBalanceLineResponse `json:"lines"`
}

// TradingBalanceFromDomain converts raw trading balance lines to a response.
func TradingBalanceFromDomain(lines []domain.TradingBalanceLine) *TradingBalanceResponse {
	resp := &TradingBalanceResponse{Lines: make([]TradingBalanceLineResponse, len(lines))}
	for i, l := range lines {
		resp.Lines[i] = rawLine(l)
	}
	return resp
}

// ConvertedTradingBalanceFromDomain converts base-currency trading balance lines to a response.
func ConvertedTradingBalanceFromDomain(lines []domain.ConvertedTradingBalanceLine) *TradingBalanceResponse {
	resp := &TradingBalanceResponse{Lines: make([]TradingBalanceLineResponse, len(lines))}
	for i, l := range lines {
		row := rawLine(l.TradingBalanceLine)
		row.UsedRate = domain.FormatRate(l.UsedRate)
		row.DebitBase = domain.FormatMoney(l.DebitBase)
		row.CreditBase = domain.FormatMoney(l.CreditBase)
		row.NetBase = domain.FormatMoney(l.NetBase)
		resp.Lines[i] = row
		resp.BaseCurrency = l.BaseCurrencyCode
	}
	return resp
}

func rawLine(l domain.TradingBalanceLine) TradingBalanceLineResponse {
	return TradingBalanceLineResponse{
		Currency: l.CurrencyCode,
		Debit:    domain.FormatMoney(l.Debit),
		Credit:   domain.FormatMoney(l.Credit),
		Net:      domain.FormatMoney(l.Net),
	}
}

// AccountResponse represents an account in API responses.
type AccountResponse struct {
	ID        string    `json:"id"`
	FullName  string    `json:"full_name"`
	Currency  string    `json:"currency"`
	CreatedAt time.Time `json:"created_at"`
}

// AccountFromDomain converts domain account to response.
func AccountFromDomain(a *domain.Account) *AccountResponse {
	return &AccountResponse{
		ID:        a.ID,
		FullName:  a.FullName,
		Currency:  a.Currency,
		CreatedAt: a.CreatedAt.UTC(),
	}
}

// AccountsFromDomain converts domain accounts to responses.
func AccountsFromDomain(accounts []*domain.Account) []*AccountResponse {
	result := make([]*AccountResponse, len(accounts))
	for i, a := range accounts {
		result[i] = AccountFromDomain(a)
	}
	return result
}

// ListAccountsResponse represents a paginated list of accounts.
type ListAccountsResponse struct {
	Accounts []*AccountResponse `json:"accounts"`
	Total    int64              `json:"total"`
}

// CurrencyResponse represents a currency directory entry.
type CurrencyResponse struct {
	Code       string    `json:"code"`
	IsBase     bool      `json:"is_base"`
	RateToBase string    `json:"rate_to_base,omitempty"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// CurrencyFromDomain converts a domain currency to response.
func CurrencyFromDomain(c domain.Currency) CurrencyResponse {
	resp := CurrencyResponse{
		Code:      c.Code,
		IsBase:    c.IsBase,
		UpdatedAt: c.UpdatedAt.UTC(),
	}
	if c.RateToBase.Valid {
		resp.RateToBase = domain.FormatRate(c.RateToBase.Decimal)
	}
	return resp
}

// ListCurrenciesResponse represents the currency directory.
type ListCurrenciesResponse struct {
	Currencies []CurrencyResponse `json:"currencies"`
}

// CurrenciesFromDomain converts the directory to a response.
func CurrenciesFromDomain(currencies []domain.Currency) ListCurrenciesResponse {
	resp := ListCurrenciesResponse{Currencies: make([]CurrencyResponse, len(currencies))}
	for i, c := range currencies {
		resp.Currencies[i] = CurrencyFromDomain(c)
	}
	return resp
}

// TTLBatchResponse is one planned batch.
type TTLBatchResponse struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// TTLPlanResponse represents a retention plan.
type TTLPlanResponse struct {
	PlannedAt     time.Time          `json:"planned_at"`
	Cutoff        time.Time          `json:"cutoff"`
	Mode          string             `json:"mode"`
	RetentionDays int                `json:"retention_days"`
	BatchSize     int                `json:"batch_size"`
	Limit         int                `json:"limit,omitempty"`
	DryRun        bool               `json:"dry_run"`
	TotalOld      int                `json:"total_old"`
	Batches       []TTLBatchResponse `json:"batches"`
	// ExecutableBatches are the batches a run applies; shorter than Batches
	// when limit caps the run.
	ExecutableBatches []TTLBatchResponse `json:"executable_batches"`
	OldEventIDs       []string           `json:"old_event_ids"`
}

// TTLPlanFromDomain converts a domain plan to response.
func TTLPlanFromDomain(p domain.TTLPlan) TTLPlanResponse {
	ids := p.OldEventIDs
	if ids == nil {
		ids = []string{}
	}

	return TTLPlanResponse{
		PlannedAt:     p.PlannedAt.UTC(),
		Cutoff:        p.Cutoff.UTC(),
		Mode:          string(p.Mode),
		RetentionDays: p.RetentionDays,
		BatchSize:     p.BatchSize,
		Limit:         p.Limit,
		DryRun:        p.DryRun,
		TotalOld:      p.TotalOld,
		Batches:       ttlBatchesFromDomain(p.Batches),

		ExecutableBatches: ttlBatchesFromDomain(p.ExecutableBatches()),
		OldEventIDs:       ids,
	}
}

func ttlBatchesFromDomain(in []domain.TTLBatch) []TTLBatchResponse {
	out := make([]TTLBatchResponse, len(in))
	for i, b := range in {
		out[i] = TTLBatchResponse{Offset: b.Offset, Limit: b.Limit}
	}
	return out
}

// TTLResultResponse reports what a retention run changed.
type TTLResultResponse struct {
	ArchivedCount  int  `json:"archived_count"`
	DeletedCount   int  `json:"deleted_count"`
	BatchesApplied int  `json:"batches_applied"`
	DryRun         bool `json:"dry_run"`
}

// TTLRunResponse represents a retention run.
type TTLRunResponse struct {
	Plan   TTLPlanResponse   `json:"plan"`
	Result TTLResultResponse `json:"result"`
}

// TTLRunFromResult converts a run result to response.
func TTLRunFromResult(r *usecase.TTLRunResult) TTLRunResponse {
	return TTLRunResponse{
		Plan: TTLPlanFromDomain(r.Plan),
		Result: TTLResultResponse{
			ArchivedCount:  r.Result.ArchivedCount,
			DeletedCount:   r.Result.DeletedCount,
			BatchesApplied: r.Result.BatchesApplied,
			DryRun:         r.Result.DryRun,
		},
	}
}

// RateEventResponse represents an FX audit event.
type RateEventResponse struct {
	ID            string    `json:"id"`
	CurrencyCode  string    `json:"currency_code"`
	Rate          string    `json:"rate"`
	OccurredAt    time.Time `json:"occurred_at"`
	PolicyApplied string    `json:"policy_applied"`
	Source        string    `json:"source"`
}

// ListRateEventsResponse represents a page of FX audit events.
type ListRateEventsResponse struct {
	Events []RateEventResponse `json:"events"`
}

// RateEventsFromDomain converts domain events to response.
func RateEventsFromDomain(events []domain.ExchangeRateEvent) ListRateEventsResponse {
	resp := ListRateEventsResponse{Events: make([]RateEventResponse, len(events))}
	for i, e := range events {
		resp.Events[i] = RateEventResponse{
			ID:            e.ID,
			CurrencyCode:  e.CurrencyCode,
			Rate:          domain.FormatRate(e.Rate),
			OccurredAt:    e.OccurredAt.UTC(),
			PolicyApplied: e.PolicyApplied,
			Source:        e.Source,
		}
	}
	return resp
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
