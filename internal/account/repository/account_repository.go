package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/corebank/services/shared/errs"
	"github.com/corebank/services/shared/models"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx so repository methods can run
// inside or outside an explicit transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// AccountRepository persists accounts in PostgreSQL. It is the only owner of
// account rows.
type AccountRepository struct {
	db DBTX
}

func NewAccountRepository(db DBTX) *AccountRepository {
	return &AccountRepository{db: db}
}

// WithTx returns a copy of the repository bound to tx.
func (r *AccountRepository) WithTx(tx *sql.Tx) *AccountRepository {
	return &AccountRepository{db: tx}
}

const accountColumns = "id, customer_id, account_number, type, balance, status, created_at, updated_at"

func (r *AccountRepository) Create(ctx context.Context, account *models.Account) error {
	query := `
		INSERT INTO accounts (customer_id, account_number, type, balance, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	err := r.db.QueryRowContext(ctx, query,
		account.CustomerID, account.AccountNumber, account.Type,
		account.Balance, account.Status, account.CreatedAt, account.UpdatedAt,
	).Scan(&account.ID)
	if isUniqueViolation(err) {
		// Randomized suffix collision on account_number; the caller retries.
		return errs.ErrAccountNumberTaken
	}
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

func (r *AccountRepository) GetByID(ctx context.Context, id int64) (*models.Account, error) {
	query := fmt.Sprintf("SELECT %s FROM accounts WHERE id = $1", accountColumns)
	return scanAccount(r.db.QueryRowContext(ctx, query, id))
}

func (r *AccountRepository) ExistsByID(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM accounts WHERE id = $1)", id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check account existence: %w", err)
	}
	return exists, nil
}

func (r *AccountRepository) List(ctx context.Context) ([]models.Account, error) {
	query := fmt.Sprintf("SELECT %s FROM accounts ORDER BY id", accountColumns)
	return r.queryAccounts(ctx, query)
}

// CountByCustomerID reads the current account count. The admission pipeline
// calls this immediately before the limit check; there is no lock, so a race
// against concurrent creations for the same customer is possible and accepted.
func (r *AccountRepository) CountByCustomerID(ctx context.Context, customerID int64) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM accounts WHERE customer_id = $1", customerID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count accounts: %w", err)
	}
	return count, nil
}

// FindByCustomerIDAndType returns the customer's account of the given type,
// or nil when none exists.
func (r *AccountRepository) FindByCustomerIDAndType(ctx context.Context, customerID int64, accountType string) (*models.Account, error) {
	query := fmt.Sprintf("SELECT %s FROM accounts WHERE customer_id = $1 AND type = $2", accountColumns)
	account, err := scanAccount(r.db.QueryRowContext(ctx, query, customerID, accountType))
	if err == errs.ErrNoSuchAccount {
		return nil, nil
	}
	return account, err
}

func (r *AccountRepository) FindAllByCustomerID(ctx context.Context, customerID int64) ([]models.Account, error) {
	query := fmt.Sprintf("SELECT %s FROM accounts WHERE customer_id = $1 ORDER BY id", accountColumns)
	return r.queryAccounts(ctx, query, customerID)
}

func (r *AccountRepository) Update(ctx context.Context, account *models.Account) error {
	query := `
		UPDATE accounts
		SET balance = $2, status = $3, updated_at = $4
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query, account.ID, account.Balance, account.Status, account.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update account: %w", err)
	}
	return checkFound(result, errs.ErrNoSuchAccount)
}

func (r *AccountRepository) DeleteByID(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM accounts WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	return checkFound(result, errs.ErrNoSuchAccount)
}

// DeleteAll removes the given account ids as one batch.
func (r *AccountRepository) DeleteAll(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.db.ExecContext(ctx, "DELETE FROM accounts WHERE id = ANY($1)", pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to delete accounts: %w", err)
	}
	return nil
}

func (r *AccountRepository) queryAccounts(ctx context.Context, query string, args ...any) ([]models.Account, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	var accounts []models.Account
	for rows.Next() {
		var a models.Account
		if err := rows.Scan(&a.ID, &a.CustomerID, &a.AccountNumber, &a.Type, &a.Balance, &a.Status, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func scanAccount(row *sql.Row) (*models.Account, error) {
	var a models.Account
	err := row.Scan(&a.ID, &a.CustomerID, &a.AccountNumber, &a.Type, &a.Balance, &a.Status, &a.CreatedAt, &a.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, errs.ErrNoSuchAccount
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return &a, nil
}

func checkFound(result sql.Result, notFound error) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return notFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	pqErr, ok := err.(*pq.Error)
	return ok && pqErr.Code == "23505"
}
