package customer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"creditline/internal/lending/models"
	id "creditline/pkg/domain"
	"creditline/pkg/platform/sentinel"
	"creditline/pkg/platform/tx"
)

// PostgresStore persists customers in PostgreSQL. Queries join the lending
// transaction carried by the context when there is one.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, c *models.Customer) error {
	const query = `
		INSERT INTO customers (first_name, last_name, age, phone_number, monthly_salary, approved_limit, current_debt, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING customer_id`
	var customerID int64
	err := tx.Use(ctx, s.db).QueryRowContext(ctx, query,
		c.FirstName, c.LastName, c.Age, c.PhoneNumber,
		c.MonthlyIncome, c.ApprovedLimit, c.CurrentDebt, c.CreatedAt,
	).Scan(&customerID)
	if err != nil {
		return fmt.Errorf("insert customer: %w", err)
	}
	c.ID = id.CustomerID(customerID)
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, customerID id.CustomerID) (*models.Customer, error) {
	const query = `
		SELECT customer_id, first_name, last_name, age, phone_number, monthly_salary, approved_limit, current_debt, created_at
		FROM customers
		WHERE customer_id = $1`
	var (
		c   models.Customer
		cid int64
	)
	err := tx.Use(ctx, s.db).QueryRowContext(ctx, query, int64(customerID)).Scan(
		&cid, &c.FirstName, &c.LastName, &c.Age, &c.PhoneNumber,
		&c.MonthlyIncome, &c.ApprovedLimit, &c.CurrentDebt, &c.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find customer: %w", err)
	}
	c.ID = id.CustomerID(cid)
	return &c, nil
}

// LockForUpdate takes a row lock on the customer inside the context's
// transaction, serializing originations for that customer.
func (s *PostgresStore) LockForUpdate(ctx context.Context, customerID id.CustomerID) error {
	if _, ok := tx.From(ctx); !ok {
		return errors.New("lock customer: no transaction in context")
	}
	var one int
	err := tx.Use(ctx, s.db).QueryRowContext(ctx,
		`SELECT 1 FROM customers WHERE customer_id = $1 FOR UPDATE`, int64(customerID),
	).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return sentinel.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("lock customer: %w", err)
	}
	return nil
}
