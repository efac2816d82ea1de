package usecase

import "time"

const (
	// DefaultTransactionTimeout is the maximum duration for a database transaction.
	// This prevents long-running transactions from blocking the ledger lock.
	DefaultTransactionTimeout = 10 * time.Second

	// DefaultRecentLimit matches the drawer overview page size.
	DefaultRecentLimit = 20
)
