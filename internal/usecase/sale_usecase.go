package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mpavlik/tillbook/internal/domain"
	"github.com/mpavlik/tillbook/internal/infrastructure/metrics"
)

// SaleUseCase ties sales to the ledger: every sale creates exactly one entry,
// and removing a sale compensates that entry before the sale row disappears.
type SaleUseCase struct {
	txManager TransactionManager
	saleRepo  SaleRepository
	entryRepo EntryRepository
	retrier   Retrier
	metrics   *metrics.Metrics
}

// NewSaleUseCase creates a new SaleUseCase.
func NewSaleUseCase(
	txManager TransactionManager,
	saleRepo SaleRepository,
	entryRepo EntryRepository,
	m *metrics.Metrics,
) *SaleUseCase {
	return &SaleUseCase{
		txManager: txManager,
		saleRepo:  saleRepo,
		entryRepo: entryRepo,
		metrics:   m,
	}
}

// WithRetrier wraps every unit of work with the given retrier.
func (uc *SaleUseCase) WithRetrier(r Retrier) *SaleUseCase {
	uc.retrier = r
	return uc
}

// RecordSale persists a sale together with its originating ledger entry in
// one unit of work.
func (uc *SaleUseCase) RecordSale(ctx context.Context, amount decimal.Decimal, soldGoods string, userID *int64) (*domain.Sale, error) {
	sale := &domain.Sale{
		Amount:    amount,
		SoldGoods: strings.TrimSpace(soldGoods),
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}

	if err := sale.Validate(); err != nil {
		return nil, err
	}

	var entry *domain.Entry

	err := runLedgerTx(ctx, uc.txManager, uc.entryRepo, uc.retrier, func(ctx context.Context, tx Transaction) error {
		saleID, err := uc.saleRepo.Create(ctx, tx, sale)
		if err != nil {
			return err
		}

		sale.ID = saleID

		balance, err := tailBalance(ctx, tx, uc.entryRepo)
		if err != nil {
			return err
		}

		balanceAfter := balance.Add(sale.Amount)
		if balanceAfter.IsNegative() {
			return domain.ErrInsufficientFunds
		}

		entry = &domain.Entry{
			Description:   domain.SaleDescription(sale.SoldGoods),
			Amount:        sale.Amount,
			BalanceBefore: balance,
			BalanceAfter:  balanceAfter,
			SaleID:        &sale.ID,
			UserID:        userID,
			CreatedAt:     sale.CreatedAt,
		}

		if err := entry.Validate(); err != nil {
			return err
		}

		entryID, err := uc.entryRepo.Create(ctx, tx, entry)
		if err != nil {
			return err
		}

		entry.ID = entryID

		return nil
	})
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.SalesCreated.Inc()
		uc.metrics.EntriesCreated.Inc()
		uc.metrics.DrawerBalance.Set(entry.BalanceAfter.InexactFloat64())
	}

	return sale, nil
}

// RemoveSale compensates the sale's linked entry and hard-deletes the sale.
func (uc *SaleUseCase) RemoveSale(ctx context.Context, saleID int64, actor *int64) error {
	err := runLedgerTx(ctx, uc.txManager, uc.entryRepo, uc.retrier, func(ctx context.Context, tx Transaction) error {
		return uc.removeSaleTx(ctx, tx, saleID, actor)
	})
	if err != nil {
		return err
	}

	if uc.metrics != nil {
		uc.metrics.SalesRemoved.Inc()
	}

	return nil
}

// RemoveAllSales removes every sale in one unit of work. The summed sale
// amounts are checked against the current balance up front; the running
// balance may dip below zero while the batch unwinds.
func (uc *SaleUseCase) RemoveAllSales(ctx context.Context, actor *int64) (int, error) {
	var removed int

	err := runLedgerTx(ctx, uc.txManager, uc.entryRepo, uc.retrier, func(ctx context.Context, tx Transaction) error {
		removed = 0

		sales, err := uc.saleRepo.ListForUpdate(ctx, tx)
		if err != nil {
			return err
		}

		balance, err := tailBalance(ctx, tx, uc.entryRepo)
		if err != nil {
			return err
		}

		total := decimal.Zero
		for _, sale := range sales {
			total = total.Add(sale.Amount)
		}

		if total.GreaterThan(balance) {
			return domain.ErrInsufficientFunds
		}

		for _, sale := range sales {
			if err := uc.unwindSaleTx(ctx, tx, sale.ID, actor); err != nil {
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
		uc.metrics.SalesRemoved.Add(float64(removed))
	}

	return removed, nil
}

// GetSale retrieves a sale by id.
func (uc *SaleUseCase) GetSale(ctx context.Context, id int64) (*domain.Sale, error) {
	return uc.saleRepo.GetByID(ctx, id)
}

// ListSales lists sales for the drawer overview.
func (uc *SaleUseCase) ListSales(ctx context.Context, limit, offset int) ([]*domain.Sale, error) {
	limit = domain.ValidateLimit(limit)

	if offset < 0 {
		offset = 0
	}

	return uc.saleRepo.List(ctx, limit, offset)
}

// DetachUserFromSales clears the weak user reference on all sales of the
// given user.
func (uc *SaleUseCase) DetachUserFromSales(ctx context.Context, userID int64) error {
	return runLedgerTx(ctx, uc.txManager, uc.entryRepo, uc.retrier, func(ctx context.Context, tx Transaction) error {
		return uc.saleRepo.DetachUser(ctx, tx, userID)
	})
}

// removeSaleTx removes one sale inside an already running unit of work.
//
// When the linked entry is still active it is compensated like any other
// entry. When it is already flagged deleted the ledger is intentionally left
// untouched and only the sale row is removed.
func (uc *SaleUseCase) removeSaleTx(ctx context.Context, tx Transaction, saleID int64, actor *int64) error {
	sale, err := uc.saleRepo.GetByIDForUpdate(ctx, tx, saleID)
	if err != nil {
		return err
	}

	entry, err := uc.entryRepo.GetBySaleIDForUpdate(ctx, tx, saleID)
	if err != nil {
		return err
	}

	if !entry.Deleted {
		if _, err := compensateEntry(ctx, tx, uc.entryRepo, entry, actor); err != nil {
			return err
		}
	}

	return uc.saleRepo.Delete(ctx, tx, sale.ID)
}

// unwindSaleTx is the bulk form of removeSaleTx. The per-sale funds check is
// skipped; callers have already checked the summed amounts up front, and the
// running balance may dip below zero while the batch unwinds.
func (uc *SaleUseCase) unwindSaleTx(ctx context.Context, tx Transaction, saleID int64, actor *int64) error {
	sale, err := uc.saleRepo.GetByIDForUpdate(ctx, tx, saleID)
	if err != nil {
		return err
	}

	entry, err := uc.entryRepo.GetBySaleIDForUpdate(ctx, tx, saleID)
	if err != nil {
		return err
	}

	if !entry.Deleted {
		balance, err := tailBalance(ctx, tx, uc.entryRepo)
		if err != nil {
			return err
		}

		if _, err := reverseEntry(ctx, tx, uc.entryRepo, entry, balance, actor); err != nil {
			return err
		}
	}

	return uc.saleRepo.Delete(ctx, tx, sale.ID)
}
