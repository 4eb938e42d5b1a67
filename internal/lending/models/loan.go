package models

import (
	"time"

	"github.com/shopspring/decimal"

	"creditline/internal/credit"
	id "creditline/pkg/domain"
	dErrors "creditline/pkg/domain-errors"
)

// Loan is a loan record owned by one customer.
//
// Invariants:
//   - 0 <= InstallmentsPaid <= TenureMonths
//   - EndDate = StartDate + TenureMonths calendar months
type Loan struct {
	ID                 id.LoanID
	CustomerID         id.CustomerID
	Principal          decimal.Decimal
	TenureMonths       int
	AnnualRate         decimal.Decimal
	MonthlyInstallment decimal.Decimal
	InstallmentsPaid   int
	StartDate          time.Time
	EndDate            time.Time
	Active             bool
}

// NewLoan builds an unsaved active loan from approved terms.
func NewLoan(customerID id.CustomerID, o credit.Origination) (*Loan, error) {
	if customerID.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "loan requires a customer")
	}
	if !o.Principal.IsPositive() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "loan principal must be positive")
	}
	if o.TenureMonths <= 0 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "loan tenure must be positive")
	}
	return &Loan{
		CustomerID:         customerID,
		Principal:          o.Principal,
		TenureMonths:       o.TenureMonths,
		AnnualRate:         o.AnnualRate,
		MonthlyInstallment: o.MonthlyInstallment,
		InstallmentsPaid:   0,
		StartDate:          o.StartDate,
		EndDate:            o.EndDate,
		Active:             true,
	}, nil
}

// RepaymentsLeft is the number of installments still due.
func (l *Loan) RepaymentsLeft() int {
	if left := l.TenureMonths - l.InstallmentsPaid; left > 0 {
		return left
	}
	return 0
}

// Facts projects the loan onto the fields the credit engine reads.
func (l *Loan) Facts() credit.LoanFacts {
	return credit.LoanFacts{
		Principal:          l.Principal,
		TenureMonths:       l.TenureMonths,
		InstallmentsPaid:   l.InstallmentsPaid,
		MonthlyInstallment: l.MonthlyInstallment,
		StartDate:          l.StartDate,
		Active:             l.Active,
	}
}

// FactsOf projects a loan list.
func FactsOf(loans []*Loan) []credit.LoanFacts {
	facts := make([]credit.LoanFacts, len(loans))
	for i, l := range loans {
		facts[i] = l.Facts()
	}
	return facts
}
