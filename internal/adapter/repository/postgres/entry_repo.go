// Package postgres implements the store interfaces of the usecase layer.
// Queries are handwritten; every write path runs inside a transaction handed
// down from the usecase layer so a unit of work commits or rolls back as one.
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

// ledgerLockID keys the advisory lock that serializes read-tail-then-append
// sections. A single drawer means a single fixed key.
const ledgerLockID int64 = 874201

const entryColumns = "id, description, amount, balance_before, balance_after, deleted, sale_id, user_id, created_at"

// EntryRepository implements usecase.EntryRepository.
type EntryRepository struct {
	pool *pgxpool.Pool
}

// NewEntryRepository creates a new EntryRepository.
func NewEntryRepository(pool *pgxpool.Pool) *EntryRepository {
	return &EntryRepository{pool: pool}
}

// Create appends a new entry and returns its generated id.
func (r *EntryRepository) Create(ctx context.Context, tx usecase.Transaction, entry *domain.Entry) (int64, error) {
	query := `
		INSERT INTO entries (description, amount, balance_before, balance_after, deleted, sale_id, user_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	var id int64
	err := tx.(*Tx).PgxTx().QueryRow(ctx, query,
		entry.Description,
		entry.Amount,
		entry.BalanceBefore,
		entry.BalanceAfter,
		entry.Deleted,
		entry.SaleID,
		entry.UserID,
		entry.CreatedAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create entry: %w", err)
	}

	return id, nil
}

// GetByID retrieves an entry by id.
func (r *EntryRepository) GetByID(ctx context.Context, id int64) (*domain.Entry, error) {
	query := "SELECT " + entryColumns + " FROM entries WHERE id = $1"

	return scanEntry(r.pool.QueryRow(ctx, query, id))
}

// GetByIDForUpdate retrieves an entry by id with a row lock.
func (r *EntryRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id int64) (*domain.Entry, error) {
	query := "SELECT " + entryColumns + " FROM entries WHERE id = $1 FOR UPDATE"

	return scanEntry(tx.(*Tx).PgxTx().QueryRow(ctx, query, id))
}

// GetBySaleIDForUpdate retrieves the entry that originates from the given
// sale, with a row lock.
func (r *EntryRepository) GetBySaleIDForUpdate(ctx context.Context, tx usecase.Transaction, saleID int64) (*domain.Entry, error) {
	query := "SELECT " + entryColumns + " FROM entries WHERE sale_id = $1 FOR UPDATE"

	return scanEntry(tx.(*Tx).PgxTx().QueryRow(ctx, query, saleID))
}

// Tail returns the entry with the highest id, deleted or not, or nil for an
// empty ledger.
func (r *EntryRepository) Tail(ctx context.Context) (*domain.Entry, error) {
	query := "SELECT " + entryColumns + " FROM entries ORDER BY id DESC LIMIT 1"

	entry, err := scanEntry(r.pool.QueryRow(ctx, query))
	if errors.Is(err, domain.ErrEntryNotFound) {
		return nil, nil
	}

	return entry, err
}

// TailForUpdate returns the tail entry inside a transaction.
func (r *EntryRepository) TailForUpdate(ctx context.Context, tx usecase.Transaction) (*domain.Entry, error) {
	query := "SELECT " + entryColumns + " FROM entries ORDER BY id DESC LIMIT 1"

	entry, err := scanEntry(tx.(*Tx).PgxTx().QueryRow(ctx, query))
	if errors.Is(err, domain.ErrEntryNotFound) {
		return nil, nil
	}

	return entry, err
}

// ListActiveForUpdate returns all not-yet-deleted entries in ascending id
// order, locked for the remainder of the transaction.
func (r *EntryRepository) ListActiveForUpdate(ctx context.Context, tx usecase.Transaction) ([]*domain.Entry, error) {
	query := "SELECT " + entryColumns + " FROM entries WHERE deleted = FALSE ORDER BY id ASC FOR UPDATE"

	rows, err := tx.(*Tx).PgxTx().Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list active entries: %w", err)
	}
	defer rows.Close()

	return collectEntries(rows)
}

// ListRecent returns up to limit entries ordered by id.
func (r *EntryRepository) ListRecent(ctx context.Context, limit int, ascending bool) ([]*domain.Entry, error) {
	direction := "DESC"
	if ascending {
		direction = "ASC"
	}

	query := "SELECT " + entryColumns + " FROM entries ORDER BY id " + direction + " LIMIT $1"

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	defer rows.Close()

	return collectEntries(rows)
}

// MarkDeleted flips the deleted flag, clears the sale reference and replaces
// the description. The historic balance_before/balance_after stay untouched.
func (r *EntryRepository) MarkDeleted(ctx context.Context, tx usecase.Transaction, id int64, description string) error {
	query := `
		UPDATE entries
		SET deleted = TRUE, sale_id = NULL, description = $2
		WHERE id = $1
	`

	tag, err := tx.(*Tx).PgxTx().Exec(ctx, query, id, description)
	if err != nil {
		return fmt.Errorf("failed to mark entry deleted: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrEntryNotFound
	}

	return nil
}

// DetachUser clears the weak user reference on all entries of the user.
func (r *EntryRepository) DetachUser(ctx context.Context, tx usecase.Transaction, userID int64) error {
	query := "UPDATE entries SET user_id = NULL WHERE user_id = $1"

	_, err := tx.(*Tx).PgxTx().Exec(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("failed to detach user from entries: %w", err)
	}

	return nil
}

// LockLedger takes the ledger-scoped advisory lock for the duration of the
// transaction, serializing concurrent read-tail-then-append sections.
func (r *EntryRepository) LockLedger(ctx context.Context, tx usecase.Transaction) error {
	_, err := tx.(*Tx).PgxTx().Exec(ctx, "SELECT pg_advisory_xact_lock($1)", ledgerLockID)
	if err != nil {
		return fmt.Errorf("failed to lock ledger: %w", err)
	}

	return nil
}

func scanEntry(row pgx.Row) (*domain.Entry, error) {
	var entry domain.Entry
	err := row.Scan(
		&entry.ID,
		&entry.Description,
		&entry.Amount,
		&entry.BalanceBefore,
		&entry.BalanceAfter,
		&entry.Deleted,
		&entry.SaleID,
		&entry.UserID,
		&entry.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrEntryNotFound
		}

		return nil, fmt.Errorf("failed to scan entry: %w", err)
	}

	return &entry, nil
}

func collectEntries(rows pgx.Rows) ([]*domain.Entry, error) {
	entries := make([]*domain.Entry, 0)

	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}

		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read entries: %w", err)
	}

	return entries, nil
}
