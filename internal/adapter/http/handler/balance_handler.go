package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/iho/fxledger/internal/adapter/http/dto"
	"github.com/iho/fxledger/internal/domain"
)

// BalanceService defines the behavior needed by BalanceHandler.
type BalanceService interface {
	TradingBalance(ctx context.Context, filter domain.TransactionFilter) ([]domain.TradingBalanceLine, error)
	ConvertedTradingBalance(ctx context.Context, filter domain.TransactionFilter, base domain.BaseCurrency) ([]domain.ConvertedTradingBalanceLine, error)
}

// BalanceHandler serves trading balance reports.
type BalanceHandler struct {
	balanceUC BalanceService
}

// NewBalanceHandler creates a new BalanceHandler.
func NewBalanceHandler(balanceUC BalanceService) *BalanceHandler {
	return &BalanceHandler{balanceUC: balanceUC}
}

// Trading reports per-currency debit, credit and net totals.
//
// Query parameters: from and to (RFC 3339, from inclusive, to exclusive),
// meta=key:value (repeatable, all must match), convert=true to express the
// totals in a base currency, and base to pick that currency explicitly
// instead of using the directory base.
func (h *BalanceHandler) Trading(w http.ResponseWriter, r *http.Request) {
	filter, err := parseTransactionFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid query", err.Error())
		return
	}

	q := r.URL.Query()
	convert := false
	if v := q.Get("convert"); v != "" {
		convert, err = strconv.ParseBool(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid query", "convert must be a boolean")
			return
		}
	}

	if !convert {
		lines, err := h.balanceUC.TradingBalance(r.Context(), filter)
		if err != nil {
			writeDomainError(w, "failed to compute trading balance", err)
			return
		}
		writeJSON(w, http.StatusOK, dto.TradingBalanceFromDomain(lines))
		return
	}

	base := domain.DirectoryBase()
	if code := q.Get("base"); code != "" {
		base = domain.ExplicitBase(code)
	}

	lines, err := h.balanceUC.ConvertedTradingBalance(r.Context(), filter, base)
	if err != nil {
		writeDomainError(w, "failed to compute trading balance", err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ConvertedTradingBalanceFromDomain(lines))
}

func parseTransactionFilter(r *http.Request) (domain.TransactionFilter, error) {
	var filter domain.TransactionFilter
	q := r.URL.Query()

	for _, p := range []struct {
		key string
		dst **time.Time
	}{{"from", &filter.From}, {"to", &filter.To}} {
		v := q.Get(p.key)
		if v == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return filter, fmt.Errorf("%s must be an RFC 3339 timestamp", p.key)
		}
		*p.dst = &t
	}

	for _, kv := range q["meta"] {
		key, value, ok := strings.Cut(kv, ":")
		if !ok || key == "" {
			return filter, fmt.Errorf("meta filter %q must be key:value", kv)
		}
		if filter.Meta == nil {
			filter.Meta = make(map[string]string)
		}
		filter.Meta[key] = value
	}

	return filter, nil
}
