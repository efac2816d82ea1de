package usecase

import (
	"context"

	"github.com/mpavlik/tillbook/internal/domain"
)

// EntryRepository defines data access for ledger entries. Entries are never
// physically removed; MarkDeleted is the only mutation of a committed row.
type EntryRepository interface {
	Create(ctx context.Context, tx Transaction, entry *domain.Entry) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.Entry, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id int64) (*domain.Entry, error)
	GetBySaleIDForUpdate(ctx context.Context, tx Transaction, saleID int64) (*domain.Entry, error)
	// Tail returns the entry with the highest id regardless of its deleted
	// flag, or nil when the ledger is empty.
	Tail(ctx context.Context) (*domain.Entry, error)
	TailForUpdate(ctx context.Context, tx Transaction) (*domain.Entry, error)
	ListActiveForUpdate(ctx context.Context, tx Transaction) ([]*domain.Entry, error)
	ListRecent(ctx context.Context, limit int, ascending bool) ([]*domain.Entry, error)
	// MarkDeleted flips the deleted flag, clears the sale reference and
	// replaces the description. Historic balances stay untouched.
	MarkDeleted(ctx context.Context, tx Transaction, id int64, description string) error
	DetachUser(ctx context.Context, tx Transaction, userID int64) error
	// LockLedger serializes read-tail-then-append sections across
	// concurrent units of work.
	LockLedger(ctx context.Context, tx Transaction) error
}

// SaleRepository defines data access for sales.
type SaleRepository interface {
	Create(ctx context.Context, tx Transaction, sale *domain.Sale) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.Sale, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id int64) (*domain.Sale, error)
	List(ctx context.Context, limit, offset int) ([]*domain.Sale, error)
	ListForUpdate(ctx context.Context, tx Transaction) ([]*domain.Sale, error)
	Delete(ctx context.Context, tx Transaction, id int64) error
	DetachUser(ctx context.Context, tx Transaction, userID int64) error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Retrier retries an operation on transient store errors.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}
