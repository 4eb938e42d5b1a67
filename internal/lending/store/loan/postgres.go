package loan

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

const loanColumns = `loan_id, customer_id, loan_amount, tenure, interest_rate, monthly_repayment,
	emis_paid_on_time, start_date, end_date, is_active`

// PostgresStore persists loans in PostgreSQL. Queries join the lending
// transaction carried by the context when there is one.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, l *models.Loan) error {
	const query = `
		INSERT INTO loans (customer_id, loan_amount, tenure, interest_rate, monthly_repayment,
			emis_paid_on_time, start_date, end_date, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING loan_id`
	var loanID int64
	err := tx.Use(ctx, s.db).QueryRowContext(ctx, query,
		int64(l.CustomerID), l.Principal, l.TenureMonths, l.AnnualRate, l.MonthlyInstallment,
		l.InstallmentsPaid, l.StartDate, l.EndDate, l.Active,
	).Scan(&loanID)
	if err != nil {
		return fmt.Errorf("insert loan: %w", err)
	}
	l.ID = id.LoanID(loanID)
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, loanID id.LoanID) (*models.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE loan_id = $1`
	l, err := scanLoan(tx.Use(ctx, s.db).QueryRowContext(ctx, query, int64(loanID)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find loan: %w", err)
	}
	return l, nil
}

func (s *PostgresStore) ListByCustomer(ctx context.Context, customerID id.CustomerID) ([]*models.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE customer_id = $1 ORDER BY loan_id`
	return s.list(ctx, query, customerID)
}

func (s *PostgresStore) ListActiveByCustomer(ctx context.Context, customerID id.CustomerID) ([]*models.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE customer_id = $1 AND is_active ORDER BY loan_id`
	return s.list(ctx, query, customerID)
}

func (s *PostgresStore) list(ctx context.Context, query string, customerID id.CustomerID) ([]*models.Loan, error) {
	rows, err := tx.Use(ctx, s.db).QueryContext(ctx, query, int64(customerID))
	if err != nil {
		return nil, fmt.Errorf("list loans: %w", err)
	}
	defer rows.Close()

	var loans []*models.Loan
	for rows.Next() {
		l, err := scanLoan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan loan: %w", err)
		}
		loans = append(loans, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list loans: %w", err)
	}
	return loans, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLoan(row rowScanner) (*models.Loan, error) {
	var (
		l          models.Loan
		loanID     int64
		customerID int64
	)
	err := row.Scan(&loanID, &customerID, &l.Principal, &l.TenureMonths, &l.AnnualRate,
		&l.MonthlyInstallment, &l.InstallmentsPaid, &l.StartDate, &l.EndDate, &l.Active)
	if err != nil {
		return nil, err
	}
	l.ID = id.LoanID(loanID)
	l.CustomerID = id.CustomerID(customerID)
	return &l, nil
}
