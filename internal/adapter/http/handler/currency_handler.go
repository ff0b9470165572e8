package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/fxledger/internal/adapter/http/dto"
	"github.com/iho/fxledger/internal/domain"
	"github.com/iho/fxledger/internal/usecase"
)

// CurrencyService defines the behavior needed by CurrencyHandler.
type CurrencyService interface {
	SetCurrency(ctx context.Context, input usecase.SetCurrencyInput) (*domain.Currency, error)
	ListCurrencies(ctx context.Context) ([]domain.Currency, error)
}

// CurrencyHandler maintains the currency directory.
type CurrencyHandler struct {
	currencyUC CurrencyService
}

// NewCurrencyHandler creates a new CurrencyHandler.
func NewCurrencyHandler(currencyUC CurrencyService) *CurrencyHandler {
	return &CurrencyHandler{currencyUC: currencyUC}
}

// Set creates or updates the currency named in the path.
func (h *CurrencyHandler) Set(w http.ResponseWriter, r *http.Request) {
	var req dto.SetCurrencyRequest
	// An empty body registers the code without touching its rate.
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	currency, err := h.currencyUC.SetCurrency(r.Context(), req.ToUseCaseInput(chi.URLParam(r, "code")))
	if err != nil {
		writeDomainError(w, "failed to set currency", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.CurrencyFromDomain(*currency))
}

// List returns the directory ordered by code.
func (h *CurrencyHandler) List(w http.ResponseWriter, r *http.Request) {
	currencies, err := h.currencyUC.ListCurrencies(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list currencies", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.CurrenciesFromDomain(currencies))
}
