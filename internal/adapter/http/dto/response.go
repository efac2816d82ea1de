package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/mpavlik/tillbook/internal/domain"
)

// EntryResponse represents a ledger entry in API responses.
type EntryResponse struct {
	ID            int64           `json:"id"`
	Description   string          `json:"description"`
	Amount        decimal.Decimal `json:"amount"`
	BalanceBefore decimal.Decimal `json:"balance_before"`
	BalanceAfter  decimal.Decimal `json:"balance_after"`
	Deleted       bool            `json:"deleted"`
	SaleID        *int64          `json:"sale_id,omitempty"`
	UserID        *int64          `json:"user_id,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// EntryFromDomain converts a domain entry to a response.
func EntryFromDomain(e *domain.Entry) *EntryResponse {
	return &EntryResponse{
		ID:            e.ID,
		Description:   e.Description,
		Amount:        e.Amount,
		BalanceBefore: e.BalanceBefore,
		BalanceAfter:  e.BalanceAfter,
		Deleted:       e.Deleted,
		SaleID:        e.SaleID,
		UserID:        e.UserID,
		CreatedAt:     e.CreatedAt,
	}
}

// EntriesFromDomain converts domain entries to responses.
func EntriesFromDomain(entries []*domain.Entry) []*EntryResponse {
	result := make([]*EntryResponse, len(entries))
	for i, e := range entries {
		result[i] = EntryFromDomain(e)
	}
	return result
}

// SaleResponse represents a sale in API responses.
type SaleResponse struct {
	ID        int64           `json:"id"`
	SoldGoods string          `json:"sold_goods"`
	Amount    decimal.Decimal `json:"amount"`
	UserID    *int64          `json:"user_id,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// SaleFromDomain converts a domain sale to a response.
func SaleFromDomain(s *domain.Sale) *SaleResponse {
	return &SaleResponse{
		ID:        s.ID,
		SoldGoods: s.SoldGoods,
		Amount:    s.Amount,
		UserID:    s.UserID,
		CreatedAt: s.CreatedAt,
	}
}

// SalesFromDomain converts domain sales to responses.
func SalesFromDomain(sales []*domain.Sale) []*SaleResponse {
	result := make([]*SaleResponse, len(sales))
	for i, s := range sales {
		result[i] = SaleFromDomain(s)
	}
	return result
}

// BalanceResponse represents the current drawer balance.
type BalanceResponse struct {
	Balance decimal.Decimal `json:"balance"`
}

// RemovedResponse represents the result of a bulk removal.
type RemovedResponse struct {
	Removed int `json:"removed"`
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
