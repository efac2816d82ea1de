package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mpavlik/tillbook/internal/domain"
	"github.com/mpavlik/tillbook/internal/infrastructure/metrics"
)

// LedgerUseCase handles the cash-drawer ledger: balance derivation, deposits,
// withdrawals and compensating deletion of entries.
type LedgerUseCase struct {
	txManager TransactionManager
	entryRepo EntryRepository
	saleUC    *SaleUseCase
	retrier   Retrier
	metrics   *metrics.Metrics
}

// NewLedgerUseCase creates a new LedgerUseCase. The sale use case handles
// entries that originate from a sale; deleting such an entry is always
// expressed as deleting its sale.
func NewLedgerUseCase(
	txManager TransactionManager,
	entryRepo EntryRepository,
	saleUC *SaleUseCase,
	m *metrics.Metrics,
) *LedgerUseCase {
	return &LedgerUseCase{
		txManager: txManager,
		entryRepo: entryRepo,
		saleUC:    saleUC,
		metrics:   m,
	}
}

// WithRetrier wraps every unit of work with the given retrier.
func (uc *LedgerUseCase) WithRetrier(r Retrier) *LedgerUseCase {
	uc.retrier = r
	return uc
}

// CurrentBalance returns the balance after the most recently appended entry,
// regardless of its deleted flag, or zero for an empty ledger.
func (uc *LedgerUseCase) CurrentBalance(ctx context.Context) (decimal.Decimal, error) {
	tail, err := uc.entryRepo.Tail(ctx)
	if err != nil {
		return decimal.Zero, err
	}

	if tail == nil {
		return decimal.Zero, nil
	}

	return tail.BalanceAfter, nil
}

// Deposit puts money into the drawer.
func (uc *LedgerUseCase) Deposit(ctx context.Context, amount decimal.Decimal, userID *int64) (*domain.Entry, error) {
	if err := domain.ValidatePositiveAmount(amount); err != nil {
		return nil, err
	}

	var entry *domain.Entry

	err := runLedgerTx(ctx, uc.txManager, uc.entryRepo, uc.retrier, func(ctx context.Context, tx Transaction) error {
		balance, err := tailBalance(ctx, tx, uc.entryRepo)
		if err != nil {
			return err
		}

		entry = &domain.Entry{
			Description:   domain.DepositDescription,
			Amount:        amount,
			BalanceBefore: balance,
			BalanceAfter:  balance.Add(amount),
			UserID:        userID,
			CreatedAt:     time.Now().UTC(),
		}

		if err := entry.Validate(); err != nil {
			return err
		}

		id, err := uc.entryRepo.Create(ctx, tx, entry)
		if err != nil {
			return err
		}

		entry.ID = id

		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.recordAppend(entry)

	return entry, nil
}

// Withdraw takes money out of the drawer. Fails with ErrInsufficientFunds
// when the drawer holds less than the requested amount.
func (uc *LedgerUseCase) Withdraw(ctx context.Context, amount decimal.Decimal, userID *int64) (*domain.Entry, error) {
	if err := domain.ValidatePositiveAmount(amount); err != nil {
		return nil, err
	}

	var entry *domain.Entry

	err := runLedgerTx(ctx, uc.txManager, uc.entryRepo, uc.retrier, func(ctx context.Context, tx Transaction) error {
		balance, err := tailBalance(ctx, tx, uc.entryRepo)
		if err != nil {
			return err
		}

		if balance.LessThan(amount) {
			return domain.ErrInsufficientFunds
		}

		entry = &domain.Entry{
			Description:   domain.WithdrawalDescription,
			Amount:        amount.Neg(),
			BalanceBefore: balance,
			BalanceAfter:  balance.Sub(amount),
			UserID:        userID,
			CreatedAt:     time.Now().UTC(),
		}

		if err := entry.Validate(); err != nil {
			return err
		}

		id, err := uc.entryRepo.Create(ctx, tx, entry)
		if err != nil {
			return err
		}

		entry.ID = id

		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.recordAppend(entry)

	return entry, nil
}

// RemoveEntry deletes an entry by compensation: the original is flagged
// deleted and a negating entry is appended at the tail. An entry that
// originates from a sale is removed through its sale instead, so the sale
// record disappears together with its ledger effect.
func (uc *LedgerUseCase) RemoveEntry(ctx context.Context, entryID int64, actor *int64) error {
	err := runLedgerTx(ctx, uc.txManager, uc.entryRepo, uc.retrier, func(ctx context.Context, tx Transaction) error {
		entry, err := uc.entryRepo.GetByIDForUpdate(ctx, tx, entryID)
		if err != nil {
			return err
		}

		if entry.Deleted {
			return domain.ErrEntryAlreadyDeleted
		}

		if entry.SaleID != nil {
			return uc.saleUC.removeSaleTx(ctx, tx, *entry.SaleID, actor)
		}

		_, err = compensateEntry(ctx, tx, uc.entryRepo, entry, actor)

		return err
	})
	if err != nil {
		return err
	}

	if uc.metrics != nil {
		uc.metrics.EntriesCompensated.Inc()
	}

	return nil
}

// RemoveAllEntries compensates every not-yet-deleted entry in one unit of
// work. Plain deposits and withdrawals are unwound first, sale-linked entries
// afterwards through their sales, each group in ascending id order. The
// summed amounts are checked against the current balance up front; the
// running balance may dip below zero while the batch unwinds.
func (uc *LedgerUseCase) RemoveAllEntries(ctx context.Context, actor *int64) (int, error) {
	var removed int

	err := runLedgerTx(ctx, uc.txManager, uc.entryRepo, uc.retrier, func(ctx context.Context, tx Transaction) error {
		removed = 0

		entries, err := uc.entryRepo.ListActiveForUpdate(ctx, tx)
		if err != nil {
			return err
		}

		balance, err := tailBalance(ctx, tx, uc.entryRepo)
		if err != nil {
			return err
		}

		total := decimal.Zero
		for _, entry := range entries {
			total = total.Add(entry.Amount)
		}

		if total.GreaterThan(balance) {
			return domain.ErrInsufficientFunds
		}

		var plain, saleLinked []*domain.Entry
		for _, entry := range entries {
			if entry.SaleID != nil {
				saleLinked = append(saleLinked, entry)
			} else {
				plain = append(plain, entry)
			}
		}

		for _, entry := range plain {
			balance, err := tailBalance(ctx, tx, uc.entryRepo)
			if err != nil {
				return err
			}

			if _, err := reverseEntry(ctx, tx, uc.entryRepo, entry, balance, actor); err != nil {
				return err
			}
			removed++
		}

		for _, entry := range saleLinked {
			if err := uc.saleUC.unwindSaleTx(ctx, tx, *entry.SaleID, actor); err != nil {
				return err
			}
			removed++
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	if uc.metrics != nil {
		uc.metrics.EntriesCompensated.Add(float64(removed))
	}

	return removed, nil
}

// GetEntry retrieves an entry by id.
func (uc *LedgerUseCase) GetEntry(ctx context.Context, id int64) (*domain.Entry, error) {
	return uc.entryRepo.GetByID(ctx, id)
}

// RecentEntries lists up to limit entries ordered by id.
func (uc *LedgerUseCase) RecentEntries(ctx context.Context, limit int, ascending bool) ([]*domain.Entry, error) {
	limit = domain.ValidateLimit(limit)

	return uc.entryRepo.ListRecent(ctx, limit, ascending)
}

// DetachUserFromEntries clears the weak user reference on all entries of the
// given user. Called when the external user management removes a user.
func (uc *LedgerUseCase) DetachUserFromEntries(ctx context.Context, userID int64) error {
	return runLedgerTx(ctx, uc.txManager, uc.entryRepo, uc.retrier, func(ctx context.Context, tx Transaction) error {
		return uc.entryRepo.DetachUser(ctx, tx, userID)
	})
}

func (uc *LedgerUseCase) recordAppend(entry *domain.Entry) {
	if uc.metrics == nil {
		return
	}

	uc.metrics.EntriesCreated.Inc()
	uc.metrics.DrawerBalance.Set(entry.BalanceAfter.InexactFloat64())
}

// compensateEntry removes a single entry by negation. It refuses to drive
// the balance below zero.
func compensateEntry(
	ctx context.Context,
	tx Transaction,
	entries EntryRepository,
	entry *domain.Entry,
	actor *int64,
) (*domain.Entry, error) {
	if entry.Deleted {
		return nil, domain.ErrEntryAlreadyDeleted
	}

	balance, err := tailBalance(ctx, tx, entries)
	if err != nil {
		return nil, err
	}

	if balance.Sub(entry.Amount).IsNegative() {
		return nil, domain.ErrInsufficientFunds
	}

	return reverseEntry(ctx, tx, entries, entry, balance, actor)
}

// reverseEntry performs the soft delete via negation: the original entry is
// flagged deleted in place (sale reference cleared, description prefixed,
// historic balances untouched) and a new entry with the negated amount is
// appended at the tail. The reversal entry is itself born deleted.
//
// balance must be the current tail balance under the ledger lock. No funds
// check happens here; callers decide whether a negative result is acceptable.
func reverseEntry(
	ctx context.Context,
	tx Transaction,
	entries EntryRepository,
	entry *domain.Entry,
	balance decimal.Decimal,
	actor *int64,
) (*domain.Entry, error) {
	originalDescription := entry.Description

	err := entries.MarkDeleted(ctx, tx, entry.ID, domain.ReversedMarker+originalDescription)
	if err != nil {
		return nil, err
	}

	reversal := &domain.Entry{
		Description:   domain.ReversalDescription(entry.ID, originalDescription),
		Amount:        entry.Amount.Neg(),
		BalanceBefore: balance,
		BalanceAfter:  balance.Sub(entry.Amount),
		UserID:        actor,
		Deleted:       true,
		CreatedAt:     time.Now().UTC(),
	}

	if err := reversal.Validate(); err != nil {
		return nil, err
	}

	id, err := entries.Create(ctx, tx, reversal)
	if err != nil {
		return nil, err
	}

	reversal.ID = id

	return reversal, nil
}

// tailBalance reads the current balance from the ledger tail inside a unit of
// work. It must only be called after the ledger lock is held.
func tailBalance(ctx context.Context, tx Transaction, entries EntryRepository) (decimal.Decimal, error) {
	tail, err := entries.TailForUpdate(ctx, tx)
	if err != nil {
		return decimal.Zero, err
	}

	if tail == nil {
		return decimal.Zero, nil
	}

	return tail.BalanceAfter, nil
}

// runLedgerTx runs fn as one atomic unit of work. Reading the tail and
// appending the next entry form a critical section per ledger, so the ledger
// lock is taken before fn runs. A configured retrier absorbs transient
// serialization failures by re-running the whole section.
func runLedgerTx(
	ctx context.Context,
	txManager TransactionManager,
	entries EntryRepository,
	retrier Retrier,
	fn func(ctx context.Context, tx Transaction) error,
) error {
	operation := func() error {
		txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
		defer cancel()

		tx, err := txManager.Begin(txCtx)
		if err != nil {
			return err
		}
		defer tx.Rollback(txCtx)

		if err := entries.LockLedger(txCtx, tx); err != nil {
			return err
		}

		if err := fn(txCtx, tx); err != nil {
			return err
		}

		return tx.Commit(txCtx)
	}

	if retrier != nil {
		return retrier.Retry(ctx, operation)
	}

	return operation()
}
