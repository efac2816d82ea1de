package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Description texts produced by the core. Kept in one place so reversal
// markers stay consistent across the single and bulk delete paths.
const (
	DepositDescription    = "Cash deposit"
	WithdrawalDescription = "Cash withdrawal"
	ReversedMarker        = "(reversed) "
)

// Entry is a single ledger entry of the cash drawer. Entries are append-only:
// once committed, the only permitted mutation is the one-way compensation
// flip (Deleted false -> true, description prefixed, sale reference cleared).
type Entry struct {
	CreatedAt     time.Time
	ID            int64
	Description   string
	Amount        decimal.Decimal
	BalanceBefore decimal.Decimal
	BalanceAfter  decimal.Decimal
	SaleID        *int64
	UserID        *int64
	Deleted       bool
}

// Validate checks the balance-chain invariant of the entry itself.
func (e *Entry) Validate() error {
	if !e.BalanceAfter.Equal(e.BalanceBefore.Add(e.Amount)) {
		return fmt.Errorf("%w: %s != %s + %s", ErrBalanceMismatch,
			e.BalanceAfter, e.BalanceBefore, e.Amount)
	}

	return nil
}

// SaleDescription builds the ledger description for a newly recorded sale.
func SaleDescription(soldGoods string) string {
	return "Sale - goods sold: " + soldGoods
}

// ReversalDescription builds the ledger description for the compensating
// entry that negates the entry with the given id.
func ReversalDescription(entryID int64, originalDescription string) string {
	return fmt.Sprintf("Reversal of entry %d - %s", entryID, originalDescription)
}
