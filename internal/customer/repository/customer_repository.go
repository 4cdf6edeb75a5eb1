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

// CustomerRepository persists customers in PostgreSQL.
type CustomerRepository struct {
	db DBTX
}

func NewCustomerRepository(db DBTX) *CustomerRepository {
	return &CustomerRepository{db: db}
}

// WithTx returns a copy of the repository bound to tx.
func (r *CustomerRepository) WithTx(tx *sql.Tx) *CustomerRepository {
	return &CustomerRepository{db: tx}
}

const customerColumns = "id, name, legal_id, type, status, address, created_at, updated_at"

func (r *CustomerRepository) Create(ctx context.Context, customer *models.Customer) error {
	query := `
		INSERT INTO customers (name, legal_id, type, status, address, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	err := r.db.QueryRowContext(ctx, query,
		customer.Name, customer.LegalID, customer.Type, customer.Status,
		customer.Address, customer.CreatedAt, customer.UpdatedAt,
	).Scan(&customer.ID)
	if isUniqueViolation(err) {
		return errs.ErrLegalIDUsed
	}
	if err != nil {
		return fmt.Errorf("failed to create customer: %w", err)
	}
	return nil
}

func (r *CustomerRepository) GetByID(ctx context.Context, id int64) (*models.Customer, error) {
	query := fmt.Sprintf("SELECT %s FROM customers WHERE id = $1", customerColumns)
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *CustomerRepository) GetByLegalID(ctx context.Context, legalID string) (*models.Customer, error) {
	query := fmt.Sprintf("SELECT %s FROM customers WHERE legal_id = $1", customerColumns)
	return r.scanOne(r.db.QueryRowContext(ctx, query, legalID))
}

func (r *CustomerRepository) List(ctx context.Context) ([]models.Customer, error) {
	query := fmt.Sprintf("SELECT %s FROM customers ORDER BY id", customerColumns)
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	defer rows.Close()

	var customers []models.Customer
	for rows.Next() {
		var c models.Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.LegalID, &c.Type, &c.Status, &c.Address, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan customer: %w", err)
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

func (r *CustomerRepository) Update(ctx context.Context, customer *models.Customer) error {
	query := `
		UPDATE customers
		SET name = $2, legal_id = $3, type = $4, status = $5, address = $6, updated_at = $7
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query,
		customer.ID, customer.Name, customer.LegalID, customer.Type,
		customer.Status, customer.Address, customer.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return errs.ErrLegalIDUsed
	}
	if err != nil {
		return fmt.Errorf("failed to update customer: %w", err)
	}
	return checkFound(result, errs.ErrNoSuchCustomer)
}

func (r *CustomerRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM customers WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete customer: %w", err)
	}
	return checkFound(result, errs.ErrNoSuchCustomer)
}

func (r *CustomerRepository) ExistsByID(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM customers WHERE id = $1)", id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check customer existence: %w", err)
	}
	return exists, nil
}

func (r *CustomerRepository) scanOne(row *sql.Row) (*models.Customer, error) {
	var c models.Customer
	err := row.Scan(&c.ID, &c.Name, &c.LegalID, &c.Type, &c.Status, &c.Address, &c.CreatedAt, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, errs.ErrNoSuchCustomer
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	return &c, nil
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
