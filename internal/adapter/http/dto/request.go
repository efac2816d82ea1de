package dto

import (
	"github.com/shopspring/decimal"
)

// MoveMoneyRequest represents a deposit or withdrawal request. The amount is
// always given positive; the operation decides the sign.
type MoveMoneyRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// RecordSaleRequest represents a request to record a sale.
type RecordSaleRequest struct {
	SoldGoods string          `json:"sold_goods"`
	Amount    decimal.Decimal `json:"amount"`
}
