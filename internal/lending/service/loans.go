package service

import (
	"context"
	"errors"

	"creditline/internal/lending/models"
	id "creditline/pkg/domain"
	dErrors "creditline/pkg/domain-errors"
	"creditline/pkg/platform/sentinel"
)

// GetLoan returns a loan together with its owner.
func (s *Service) GetLoan(ctx context.Context, loanID id.LoanID) (_ *models.LoanDetail, err error) {
	ctx, span := s.tracer.Start(ctx, "lending.GetLoan")
	defer func() { endSpan(span, err) }()

	loan, err := s.loans.FindByID(ctx, loanID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "loan not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load loan")
	}
	customer, err := s.findCustomer(ctx, loan.CustomerID)
	if err != nil {
		return nil, err
	}
	return &models.LoanDetail{Loan: loan, Customer: customer}, nil
}

// ListCustomerLoans returns every loan of an existing customer, oldest first.
func (s *Service) ListCustomerLoans(ctx context.Context, customerID id.CustomerID) (_ []*models.Loan, err error) {
	ctx, span := s.tracer.Start(ctx, "lending.ListCustomerLoans")
	defer func() { endSpan(span, err) }()

	if _, err := s.findCustomer(ctx, customerID); err != nil {
		return nil, err
	}
	loans, err := s.loans.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list loans")
	}
	return loans, nil
}
