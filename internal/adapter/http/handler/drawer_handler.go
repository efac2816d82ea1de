package handler

import (
	"encoding/json"
	"net/http"

	"github.com/mpavlik/tillbook/internal/adapter/http/dto"
	"github.com/mpavlik/tillbook/internal/usecase"
)

// DrawerHandler handles drawer-level requests: the current balance and the
// manual money movements.
type DrawerHandler struct {
	ledgerUC *usecase.LedgerUseCase
}

// NewDrawerHandler creates a new DrawerHandler.
func NewDrawerHandler(ledgerUC *usecase.LedgerUseCase) *DrawerHandler {
	return &DrawerHandler{ledgerUC: ledgerUC}
}

// Balance returns the current drawer balance.
func (h *DrawerHandler) Balance(w http.ResponseWriter, r *http.Request) {
	balance, err := h.ledgerUC.CurrentBalance(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get balance", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.BalanceResponse{Balance: balance})
}

// Deposit puts money into the drawer.
func (h *DrawerHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	var req dto.MoveMoneyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	entry, err := h.ledgerUC.Deposit(r.Context(), req.Amount, actingUser(r))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to deposit", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.EntryFromDomain(entry))
}

// Withdraw takes money out of the drawer.
func (h *DrawerHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	var req dto.MoveMoneyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	entry, err := h.ledgerUC.Withdraw(r.Context(), req.Amount, actingUser(r))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to withdraw", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.EntryFromDomain(entry))
}
