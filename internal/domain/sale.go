package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sale is a recorded sale of goods. Every sale produces exactly one ledger
// entry at creation time; removing a sale compensates that entry and then
// hard-deletes the sale row.
type Sale struct {
	CreatedAt time.Time
	ID        int64
	SoldGoods string
	Amount    decimal.Decimal
	UserID    *int64
}

// Validate validates a sale before it is recorded. The sign of the amount is
// intentionally not restricted; a zero amount or blank goods description is
// rejected as malformed input.
func (s *Sale) Validate() error {
	if s.Amount.IsZero() {
		return ErrInvalidAmount
	}

	if err := ValidateDescription(s.SoldGoods); err != nil {
		return err
	}

	return nil
}
