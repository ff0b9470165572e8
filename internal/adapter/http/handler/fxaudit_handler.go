package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/iho/fxledger/internal/adapter/http/dto"
	"github.com/iho/fxledger/internal/domain"
	"github.com/iho/fxledger/internal/usecase"
)

// FXAuditService defines the behavior needed by FXAuditHandler.
type FXAuditService interface {
	PlanTTL(ctx context.Context, input usecase.TTLInput) (domain.TTLPlan, error)
	RunTTL(ctx context.Context, input usecase.TTLInput) (*usecase.TTLRunResult, error)
	ListEvents(ctx context.Context, filter usecase.RateEventFilter) ([]domain.ExchangeRateEvent, error)
}

// FXAuditHandler exposes the exchange-rate audit log and its retention.
type FXAuditHandler struct {
	fxUC     FXAuditService
	defaults dto.TTLDefaults
}

// NewFXAuditHandler creates a new FXAuditHandler. defaults fill any
// retention parameter a request leaves out.
func NewFXAuditHandler(fxUC FXAuditService, defaults dto.TTLDefaults) *FXAuditHandler {
	return &FXAuditHandler{fxUC: fxUC, defaults: defaults}
}

// PlanTTL computes a retention plan without touching storage.
func (h *FXAuditHandler) PlanTTL(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeTTL(w, r)
	if !ok {
		return
	}

	plan, err := h.fxUC.PlanTTL(r.Context(), req.ToUseCaseInput(h.defaults))
	if err != nil {
		writeDomainError(w, "failed to plan retention", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TTLPlanFromDomain(plan))
}

// RunTTL plans and executes retention. A failed batch still reports the
// batches committed before it, with status 500.
func (h *FXAuditHandler) RunTTL(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeTTL(w, r)
	if !ok {
		return
	}

	run, err := h.fxUC.RunTTL(r.Context(), req.ToUseCaseInput(h.defaults))
	if err != nil {
		if run != nil && run.Result.BatchesApplied > 0 {
			writeJSON(w, http.StatusInternalServerError, dto.TTLRunFromResult(run))
			return
		}
		writeDomainError(w, "failed to run retention", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TTLRunFromResult(run))
}

// ListEvents lists recorded rate events, newest first.
func (h *FXAuditHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.fxUC.ListEvents(r.Context(), usecase.RateEventFilter{
		CurrencyCode: r.URL.Query().Get("currency"),
		Limit:        parseIntQuery(r, "limit", usecase.DefaultEventListLimit),
		Offset:       parseIntQuery(r, "offset", 0),
	})
	if err != nil {
		writeDomainError(w, "failed to list rate events", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.RateEventsFromDomain(events))
}

func (h *FXAuditHandler) decodeTTL(w http.ResponseWriter, r *http.Request) (dto.TTLRequest, bool) {
	var req dto.TTLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return req, false
	}
	return req, true
}
