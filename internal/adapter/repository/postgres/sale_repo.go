package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mpavlik/tillbook/internal/domain"
	"github.com/mpavlik/tillbook/internal/usecase"
)

const saleColumns = "id, amount, sold_goods, user_id, created_at"

// SaleRepository implements usecase.SaleRepository. Sales are the only rows
// the service hard-deletes; their ledger effect survives as entries.
type SaleRepository struct {
	pool *pgxpool.Pool
}

// NewSaleRepository creates a new SaleRepository.
func NewSaleRepository(pool *pgxpool.Pool) *SaleRepository {
	return &SaleRepository{pool: pool}
}

// Create persists a sale and returns its generated id.
func (r *SaleRepository) Create(ctx context.Context, tx usecase.Transaction, sale *domain.Sale) (int64, error) {
	query := `
		INSERT INTO sales (amount, sold_goods, user_id, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	var id int64
	err := tx.(*Tx).PgxTx().QueryRow(ctx, query,
		sale.Amount,
		sale.SoldGoods,
		sale.UserID,
		sale.CreatedAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create sale: %w", err)
	}

	return id, nil
}

// GetByID retrieves a sale by id.
func (r *SaleRepository) GetByID(ctx context.Context, id int64) (*domain.Sale, error) {
	query := "SELECT " + saleColumns + " FROM sales WHERE id = $1"

	return scanSale(r.pool.QueryRow(ctx, query, id))
}

// GetByIDForUpdate retrieves a sale by id with a row lock.
func (r *SaleRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id int64) (*domain.Sale, error) {
	query := "SELECT " + saleColumns + " FROM sales WHERE id = $1 FOR UPDATE"

	return scanSale(tx.(*Tx).PgxTx().QueryRow(ctx, query, id))
}

// List returns sales in ascending id order.
func (r *SaleRepository) List(ctx context.Context, limit, offset int) ([]*domain.Sale, error) {
	query := "SELECT " + saleColumns + " FROM sales ORDER BY id ASC LIMIT $1 OFFSET $2"

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list sales: %w", err)
	}
	defer rows.Close()

	return collectSales(rows)
}

// ListForUpdate returns all sales in ascending id order, locked for the
// remainder of the transaction.
func (r *SaleRepository) ListForUpdate(ctx context.Context, tx usecase.Transaction) ([]*domain.Sale, error) {
	query := "SELECT " + saleColumns + " FROM sales ORDER BY id ASC FOR UPDATE"

	rows, err := tx.(*Tx).PgxTx().Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list sales: %w", err)
	}
	defer rows.Close()

	return collectSales(rows)
}

// Delete hard-deletes a sale.
func (r *SaleRepository) Delete(ctx context.Context, tx usecase.Transaction, id int64) error {
	tag, err := tx.(*Tx).PgxTx().Exec(ctx, "DELETE FROM sales WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete sale: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrSaleNotFound
	}

	return nil
}

// DetachUser clears the weak user reference on all sales of the user.
func (r *SaleRepository) DetachUser(ctx context.Context, tx usecase.Transaction, userID int64) error {
	query := "UPDATE sales SET user_id = NULL WHERE user_id = $1"

	_, err := tx.(*Tx).PgxTx().Exec(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("failed to detach user from sales: %w", err)
	}

	return nil
}

func scanSale(row pgx.Row) (*domain.Sale, error) {
	var sale domain.Sale
	err := row.Scan(
		&sale.ID,
		&sale.Amount,
		&sale.SoldGoods,
		&sale.UserID,
		&sale.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSaleNotFound
		}

		return nil, fmt.Errorf("failed to scan sale: %w", err)
	}

	return &sale, nil
}

func collectSales(rows pgx.Rows) ([]*domain.Sale, error) {
	sales := make([]*domain.Sale, 0)

	for rows.Next() {
		sale, err := scanSale(rows)
		if err != nil {
			return nil, err
		}

		sales = append(sales, sale)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read sales: %w", err)
	}

	return sales, nil
}
