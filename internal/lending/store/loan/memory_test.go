package loan

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"creditline/internal/lending/models"
	id "creditline/pkg/domain"
	"creditline/pkg/platform/sentinel"
)

type LoanStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func (s *LoanStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func TestLoanStoreSuite(t *testing.T) {
	suite.Run(t, new(LoanStoreSuite))
}

func newLoan(customerID id.CustomerID, principal int64, active bool) *models.Loan {
	start := time.Date(2025, time.January, 10, 0, 0, 0, 0, time.UTC)
	return &models.Loan{
		CustomerID:         customerID,
		Principal:          decimal.NewFromInt(principal),
		TenureMonths:       12,
		AnnualRate:         decimal.NewFromInt(12),
		MonthlyInstallment: decimal.NewFromInt(principal / 12),
		StartDate:          start,
		EndDate:            start.AddDate(1, 0, 0),
		Active:             active,
	}
}

// TestCreationAndLookups verifies ids are assigned and lookups return stored values.
func (s *LoanStoreSuite) TestCreationAndLookups() {
	s.Run("creates and finds loan by id", func() {
		l := newLoan(1, 120000, true)
		s.Require().NoError(s.store.Create(s.ctx, l))
		s.EqualValues(1, l.ID)

		found, err := s.store.FindByID(s.ctx, l.ID)
		s.Require().NoError(err)
		s.True(found.Principal.Equal(l.Principal))
		s.EqualValues(1, found.CustomerID)
	})

	s.Run("returns ErrNotFound for unknown id", func() {
		_, err := s.store.FindByID(s.ctx, 404)
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}

// TestListings verifies customer isolation and the active partition.
func (s *LoanStoreSuite) TestListings() {
	s.Require().NoError(s.store.Create(s.ctx, newLoan(1, 100000, true)))
	s.Require().NoError(s.store.Create(s.ctx, newLoan(2, 200000, true)))
	s.Require().NoError(s.store.Create(s.ctx, newLoan(1, 300000, false)))
	s.Require().NoError(s.store.Create(s.ctx, newLoan(1, 400000, true)))

	s.Run("lists every loan of the customer in id order", func() {
		loans, err := s.store.ListByCustomer(s.ctx, 1)
		s.Require().NoError(err)
		s.Require().Len(loans, 3)
		s.EqualValues(1, loans[0].ID)
		s.EqualValues(3, loans[1].ID)
		s.EqualValues(4, loans[2].ID)
	})

	s.Run("lists only active loans", func() {
		loans, err := s.store.ListActiveByCustomer(s.ctx, 1)
		s.Require().NoError(err)
		s.Require().Len(loans, 2)
		for _, l := range loans {
			s.True(l.Active)
		}
	})

	s.Run("unknown customer has an empty history", func() {
		loans, err := s.store.ListByCustomer(s.ctx, 99)
		s.Require().NoError(err)
		s.Empty(loans)
	})
}
