package domain

import "errors"

var (
	// Ledger errors
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrInsufficientFunds   = errors.New("not enough money in the cash drawer")
	ErrEntryNotFound       = errors.New("ledger entry not found")
	ErrEntryAlreadyDeleted = errors.New("ledger entry has already been deleted")
	ErrBalanceMismatch     = errors.New("balance after does not equal balance before plus amount")

	// Sale errors
	ErrSaleNotFound = errors.New("sale not found")
)
