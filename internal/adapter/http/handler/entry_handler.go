package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mpavlik/tillbook/internal/adapter/http/dto"
	"github.com/mpavlik/tillbook/internal/usecase"
)

// EntryHandler handles ledger entry requests.
type EntryHandler struct {
	ledgerUC *usecase.LedgerUseCase
}

// NewEntryHandler creates a new EntryHandler.
func NewEntryHandler(ledgerUC *usecase.LedgerUseCase) *EntryHandler {
	return &EntryHandler{ledgerUC: ledgerUC}
}

// List lists entries ordered by id. `order=asc` returns the oldest entries
// first; the default is the most recent first.
func (h *EntryHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := parseIntQuery(r, "limit", usecase.DefaultRecentLimit)
	ascending := r.URL.Query().Get("order") == "asc"

	entries, err := h.ledgerUC.RecentEntries(r.Context(), limit, ascending)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list entries", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.EntriesFromDomain(entries))
}

// Get retrieves an entry by id.
func (h *EntryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid entry ID", err.Error())
		return
	}

	entry, err := h.ledgerUC.GetEntry(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get entry", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.EntryFromDomain(entry))
}

// Delete removes an entry by compensation.
func (h *EntryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid entry ID", err.Error())
		return
	}

	if err := h.ledgerUC.RemoveEntry(r.Context(), id, actingUser(r)); err != nil {
		writeError(w, mapDomainError(err), "failed to remove entry", err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DeleteAll removes every not-yet-deleted entry by compensation.
func (h *EntryHandler) DeleteAll(w http.ResponseWriter, r *http.Request) {
	removed, err := h.ledgerUC.RemoveAllEntries(r.Context(), actingUser(r))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to remove entries", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.RemovedResponse{Removed: removed})
}
