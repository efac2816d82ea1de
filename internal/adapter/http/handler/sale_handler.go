package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mpavlik/tillbook/internal/adapter/http/dto"
	"github.com/mpavlik/tillbook/internal/usecase"
)

// SaleHandler handles sale requests.
type SaleHandler struct {
	saleUC *usecase.SaleUseCase
}

// NewSaleHandler creates a new SaleHandler.
func NewSaleHandler(saleUC *usecase.SaleUseCase) *SaleHandler {
	return &SaleHandler{saleUC: saleUC}
}

// Create records a new sale.
func (h *SaleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.RecordSaleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	sale, err := h.saleUC.RecordSale(r.Context(), req.Amount, req.SoldGoods, actingUser(r))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to record sale", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.SaleFromDomain(sale))
}

// List lists sales.
func (h *SaleHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := parseIntQuery(r, "limit", usecase.DefaultRecentLimit)
	offset := parseIntQuery(r, "offset", 0)

	sales, err := h.saleUC.ListSales(r.Context(), limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list sales", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.SalesFromDomain(sales))
}

// Get retrieves a sale by id.
func (h *SaleHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid sale ID", err.Error())
		return
	}

	sale, err := h.saleUC.GetSale(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get sale", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.SaleFromDomain(sale))
}

// Delete removes a sale together with its ledger effect.
func (h *SaleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid sale ID", err.Error())
		return
	}

	if err := h.saleUC.RemoveSale(r.Context(), id, actingUser(r)); err != nil {
		writeError(w, mapDomainError(err), "failed to remove sale", err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DeleteAll removes every sale.
func (h *SaleHandler) DeleteAll(w http.ResponseWriter, r *http.Request) {
	removed, err := h.saleUC.RemoveAllSales(r.Context(), actingUser(r))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to remove sales", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.RemovedResponse{Removed: removed})
}
