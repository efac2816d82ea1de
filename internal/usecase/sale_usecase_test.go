package usecase_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mpavlik/tillbook/internal/domain"
)

func TestSaleUseCase_RecordSale(t *testing.T) {
	f := newLedgerFixture()
	ctx := context.Background()

	sale, err := f.saleUC.RecordSale(ctx, decimal.NewFromInt(300), "coffee", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sale.ID == 0 {
		t.Error("expected sale id to be assigned")
	}
	if sale.SoldGoods != "coffee" {
		t.Errorf("unexpected goods %q", sale.SoldGoods)
	}

	entries, err := f.ledgerUC.RecentEntries(ctx, 10, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}

	entry := entries[0]
	if entry.SaleID == nil || *entry.SaleID != sale.ID {
		t.Error("expected entry to reference the sale")
	}
	if entry.Description != domain.SaleDescription("coffee") {
		t.Errorf("unexpected description %q", entry.Description)
	}
	if !entry.Amount.Equal(decimal.NewFromInt(300)) {
		t.Errorf("expected amount 300, got %s", entry.Amount)
	}

	f.mustBalance(t, 300)
}

func TestSaleUseCase_RecordSaleTrimsAndValidatesGoods(t *testing.T) {
	f := newLedgerFixture()
	ctx := context.Background()

	sale, err := f.saleUC.RecordSale(ctx, decimal.NewFromInt(10), "  tea  ", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sale.SoldGoods != "tea" {
		t.Errorf("expected trimmed goods, got %q", sale.SoldGoods)
	}

	_, err = f.saleUC.RecordSale(ctx, decimal.NewFromInt(10), "   ", nil)
	if !errors.Is(err, domain.ErrInvalidDescription) {
		t.Errorf("expected ErrInvalidDescription, got %v", err)
	}

	_, err = f.saleUC.RecordSale(ctx, decimal.Zero, "coffee", nil)
	if !errors.Is(err, domain.ErrInvalidAmount) {
		t.Errorf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestSaleUseCase_RecordSaleNegativeAmount(t *testing.T) {
	f := newLedgerFixture()
	ctx := context.Background()

	if _, err := f.ledgerUC.Deposit(ctx, decimal.NewFromInt(100), nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// A correction sale with a negative amount is allowed while covered.
	if _, err := f.saleUC.RecordSale(ctx, decimal.NewFromInt(-50), "refund", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	f.mustBalance(t, 50)

	_, err := f.saleUC.RecordSale(ctx, decimal.NewFromInt(-200), "refund", nil)
	if !errors.Is(err, domain.ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}

	f.mustBalance(t, 50)
}

func TestSaleUseCase_RemoveSaleCompensatesEntry(t *testing.T) {
	f := newLedgerFixture()
	ctx := context.Background()

	if _, err := f.ledgerUC.Deposit(ctx, decimal.NewFromInt(500), nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sale, err := f.saleUC.RecordSale(ctx, decimal.NewFromInt(300), "coffee", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	f.mustBalance(t, 800)

	if err := f.saleUC.RemoveSale(ctx, sale.ID, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	f.mustBalance(t, 500)

	if _, err := f.saleUC.GetSale(ctx, sale.ID); !errors.Is(err, domain.ErrSaleNotFound) {
		t.Errorf("expected ErrSaleNotFound, got %v", err)
	}

	entries, err := f.ledgerUC.RecentEntries(ctx, 10, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}

	original := entries[1]
	if !original.Deleted {
		t.Error("expected original sale entry to be flagged deleted")
	}
	if original.SaleID != nil {
		t.Error("expected sale reference to be cleared")
	}
	if !strings.HasPrefix(original.Description, domain.ReversedMarker) {
		t.Errorf("expected reversed marker prefix, got %q", original.Description)
	}

	reversal := entries[2]
	if !reversal.Amount.Equal(decimal.NewFromInt(-300)) {
		t.Errorf("expected reversal amount -300, got %s", reversal.Amount)
	}
	if !reversal.Deleted {
		t.Error("expected reversal entry to be born deleted")
	}
}

func TestSaleUseCase_RemoveSaleNotFound(t *testing.T) {
	f := newLedgerFixture()

	err := f.saleUC.RemoveSale(context.Background(), 42, nil)
	if !errors.Is(err, domain.ErrSaleNotFound) {
		t.Fatalf("expected ErrSaleNotFound, got %v", err)
	}
}

func TestSaleUseCase_RemoveSaleInsufficientFunds(t *testing.T) {
	f := newLedgerFixture()
	ctx := context.Background()

	if _, err := f.ledgerUC.Deposit(ctx, decimal.NewFromInt(500), nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sale, err := f.saleUC.RecordSale(ctx, decimal.NewFromInt(300), "coffee", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := f.ledgerUC.Withdraw(ctx, decimal.NewFromInt(600), nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Balance is 200; unwinding the 300 sale would make it -100.
	err = f.saleUC.RemoveSale(ctx, sale.ID, nil)
	if !errors.Is(err, domain.ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}

	// The sale must survive the failed removal.
	if _, err := f.saleUC.GetSale(ctx, sale.ID); err != nil {
		t.Errorf("expected sale to still exist, got %v", err)
	}

	f.mustBalance(t, 200)
}

func TestSaleUseCase_RemoveSaleWithAlreadyDeletedEntry(t *testing.T) {
	f := newLedgerFixture()
	ctx := context.Background()

	// A sale whose linked entry was already flagged deleted: only the sale
	// row goes away, the ledger stays untouched.
	saleID, err := f.saleRepo.Create(ctx, nil, &domain.Sale{
		Amount:    decimal.NewFromInt(300),
		SoldGoods: "coffee",
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := f.entryRepo.Create(ctx, nil, &domain.Entry{
		Description:   domain.ReversedMarker + domain.SaleDescription("coffee"),
		Amount:        decimal.NewFromInt(300),
		BalanceBefore: decimal.Zero,
		BalanceAfter:  decimal.NewFromInt(300),
		SaleID:        &saleID,
		Deleted:       true,
		CreatedAt:     time.Now().UTC(),
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := f.saleUC.RemoveSale(ctx, saleID, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := f.saleUC.GetSale(ctx, saleID); !errors.Is(err, domain.ErrSaleNotFound) {
		t.Errorf("expected ErrSaleNotFound, got %v", err)
	}

	entries, err := f.ledgerUC.RecentEntries(ctx, 10, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("expected no new ledger entry, got %d entries", len(entries))
	}

	f.mustBalance(t, 300)
}

func TestSaleUseCase_RemoveAllSales(t *testing.T) {
	f := newLedgerFixture()
	ctx := context.Background()

	if _, err := f.saleUC.RecordSale(ctx, decimal.NewFromInt(300), "coffee", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := f.saleUC.RecordSale(ctx, decimal.NewFromInt(200), "tea", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := f.ledgerUC.Deposit(ctx, decimal.NewFromInt(100), nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	removed, err := f.saleUC.RemoveAllSales(ctx, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if removed != 2 {
		t.Errorf("expected 2 removed, got %d", removed)
	}

	sales, err := f.saleUC.ListSales(ctx, 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sales) != 0 {
		t.Errorf("expected no sales, got %d", len(sales))
	}

	// The plain deposit survives untouched.
	f.mustBalance(t, 100)
}

func TestSaleUseCase_RemoveAllSalesWithRefund(t *testing.T) {
	f := newLedgerFixture()
	ctx := context.Background()

	if _, err := f.saleUC.RecordSale(ctx, decimal.NewFromInt(100), "coffee", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := f.saleUC.RecordSale(ctx, decimal.NewFromInt(-50), "coffee refund", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Unwinding the sale dips the running balance to -50 before the refund's
	// reversal brings it back; only the summed amounts are checked.
	removed, err := f.saleUC.RemoveAllSales(ctx, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if removed != 2 {
		t.Errorf("expected 2 removed, got %d", removed)
	}

	sales, err := f.saleUC.ListSales(ctx, 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sales) != 0 {
		t.Errorf("expected no sales, got %d", len(sales))
	}

	f.mustBalance(t, 0)
}

func TestSaleUseCase_RemoveAllSalesInsufficientBalance(t *testing.T) {
	f := newLedgerFixture()
	ctx := context.Background()

	sale, err := f.saleUC.RecordSale(ctx, decimal.NewFromInt(300), "coffee", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := f.ledgerUC.Withdraw(ctx, decimal.NewFromInt(100), nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Summed sale amounts (300) exceed the remaining balance (200).
	_, err = f.saleUC.RemoveAllSales(ctx, nil)
	if !errors.Is(err, domain.ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}

	if _, err := f.saleUC.GetSale(ctx, sale.ID); err != nil {
		t.Errorf("expected sale to still exist, got %v", err)
	}

	f.mustBalance(t, 200)
}

func TestSaleUseCase_ListSalesClampsLimit(t *testing.T) {
	f := newLedgerFixture()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := f.saleUC.RecordSale(ctx, decimal.NewFromInt(10), "coffee", nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	sales, err := f.saleUC.ListSales(ctx, 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sales) != 3 {
		t.Errorf("expected 3 sales, got %d", len(sales))
	}

	sales, err = f.saleUC.ListSales(ctx, 2, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sales) != 2 {
		t.Fatalf("expected 2 sales, got %d", len(sales))
	}
	if sales[0].ID != 2 {
		t.Errorf("expected offset to skip the first sale, got id %d", sales[0].ID)
	}
}

func TestSaleUseCase_DetachUserFromSales(t *testing.T) {
	f := newLedgerFixture()
	ctx := context.Background()

	userID := int64(7)
	sale, err := f.saleUC.RecordSale(ctx, decimal.NewFromInt(100), "coffee", &userID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := f.saleUC.DetachUserFromSales(ctx, userID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	detached, err := f.saleUC.GetSale(ctx, sale.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if detached.UserID != nil {
		t.Errorf("expected user reference to be cleared, got %d", *detached.UserID)
	}
}
