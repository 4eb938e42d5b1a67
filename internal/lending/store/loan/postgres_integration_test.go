//go:build integration

package loan_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"creditline/internal/lending/models"
	"creditline/internal/lending/store/customer"
	"creditline/internal/lending/store/loan"
	id "creditline/pkg/domain"
	"creditline/pkg/platform/sentinel"
	"creditline/pkg/platform/tx"
	"creditline/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres  *containers.PostgresContainer
	customers *customer.PostgresStore
	store     *loan.PostgresStore
	owner     id.CustomerID
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.customers = customer.NewPostgres(s.postgres.DB)
	s.store = loan.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	ctx := context.Background()
	s.Require().NoError(s.postgres.TruncateTables(ctx, "loans", "customers"))

	c, err := models.NewCustomer("Ada", "Lovelace", 36, "9876543210", decimal.NewFromInt(50000), time.Now().UTC())
	s.Require().NoError(err)
	s.Require().NoError(s.customers.Create(ctx, c))
	s.owner = c.ID
}

func (s *PostgresStoreSuite) newLoan(principal string, active bool) *models.Loan {
	start := time.Date(2025, time.January, 31, 0, 0, 0, 0, time.UTC)
	return &models.Loan{
		CustomerID:         s.owner,
		Principal:          decimal.RequireFromString(principal),
		TenureMonths:       13,
		AnnualRate:         decimal.RequireFromString("12.5"),
		MonthlyInstallment: decimal.RequireFromString("8123.45"),
		InstallmentsPaid:   3,
		StartDate:          start,
		EndDate:            time.Date(2026, time.February, 28, 0, 0, 0, 0, time.UTC),
		Active:             active,
	}
}

// TestRoundTrip verifies decimals and calendar dates survive storage exactly.
func (s *PostgresStoreSuite) TestRoundTrip() {
	ctx := context.Background()
	l := s.newLoan("100000.10", true)
	s.Require().NoError(s.store.Create(ctx, l))

	found, err := s.store.FindByID(ctx, l.ID)
	s.Require().NoError(err)
	s.True(l.Principal.Equal(found.Principal))
	s.True(l.AnnualRate.Equal(found.AnnualRate))
	s.True(l.MonthlyInstallment.Equal(found.MonthlyInstallment))
	s.Equal(3, found.InstallmentsPaid)
	s.Equal("2025-01-31", found.StartDate.Format(time.DateOnly))
	s.Equal("2026-02-28", found.EndDate.Format(time.DateOnly))
}

func (s *PostgresStoreSuite) TestNotFoundError() {
	_, err := s.store.FindByID(context.Background(), 424242)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestListings() {
	ctx := context.Background()
	s.Require().NoError(s.store.Create(ctx, s.newLoan("1000", true)))
	s.Require().NoError(s.store.Create(ctx, s.newLoan("2000", false)))

	all, err := s.store.ListByCustomer(ctx, s.owner)
	s.Require().NoError(err)
	s.Len(all, 2)

	active, err := s.store.ListActiveByCustomer(ctx, s.owner)
	s.Require().NoError(err)
	s.Require().Len(active, 1)
	s.True(active[0].Principal.Equal(decimal.NewFromInt(1000)))
}

// TestInvariantCheck verifies the database rejects paid installments above tenure.
func (s *PostgresStoreSuite) TestInvariantCheck() {
	l := s.newLoan("1000", true)
	l.InstallmentsPaid = l.TenureMonths + 1
	s.Error(s.store.Create(context.Background(), l))
}

// TestRowLockSerializesWriters verifies a second transaction waits on the
// customer row lock until the first commits.
func (s *PostgresStoreSuite) TestRowLockSerializesWriters() {
	ctx := context.Background()
	db := s.postgres.DB

	first, err := db.BeginTx(ctx, nil)
	s.Require().NoError(err)
	s.Require().NoError(s.customers.LockForUpdate(tx.WithTx(ctx, first), s.owner))

	var wg sync.WaitGroup
	var secondSaw int
	wg.Add(1)
	go func() {
		defer wg.Done()
		second, err := db.BeginTx(ctx, nil)
		if err != nil {
			return
		}
		defer func() { _ = second.Rollback() }()
		txCtx := tx.WithTx(ctx, second)
		if err := s.customers.LockForUpdate(txCtx, s.owner); err != nil {
			return
		}
		loans, _ := s.store.ListActiveByCustomer(txCtx, s.owner)
		secondSaw = len(loans)
	}()

	time.Sleep(200 * time.Millisecond)
	s.Require().NoError(s.store.Create(tx.WithTx(ctx, first), s.newLoan("5000", true)))
	s.Require().NoError(first.Commit())
	wg.Wait()

	s.Equal(1, secondSaw, "second transaction sees the first one's loan")
}
