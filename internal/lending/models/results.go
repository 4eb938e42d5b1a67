package models

import (
	"github.com/shopspring/decimal"

	"creditline/internal/credit"
	id "creditline/pkg/domain"
)

// Outcome messages returned by loan creation.
const (
	MessageLoanApproved = "Loan approved successfully"
	MessageLoanRejected = "Loan not approved due to low credit score or high debt"
)

// EligibilityResult is the verdict of a check that creates no record.
type EligibilityResult struct {
	CustomerID         id.CustomerID
	Approved           bool
	InterestRate       decimal.Decimal
	CorrectedRate      decimal.Decimal
	TenureMonths       int
	MonthlyInstallment decimal.Decimal
	Score              decimal.Decimal
	Tier               credit.Tier
	Vetoes             []credit.Veto
}

// OriginationResult is the outcome of loan creation. LoanID is zero and
// MonthlyInstallment is zero when the loan was not approved.
type OriginationResult struct {
	LoanID             id.LoanID
	CustomerID         id.CustomerID
	Approved           bool
	Message            string
	MonthlyInstallment decimal.Decimal
}

// LoanDetail is a loan together with its owner.
type LoanDetail struct {
	Loan     *Loan
	Customer *Customer
}

// NewEligibilityResult copies an assessment into a result.
func NewEligibilityResult(customerID id.CustomerID, a credit.Assessment) *EligibilityResult {
	return &EligibilityResult{
		CustomerID:         customerID,
		Approved:           a.Approved,
		InterestRate:       a.RequestedRate,
		CorrectedRate:      a.CorrectedRate,
		TenureMonths:       a.TenureMonths,
		MonthlyInstallment: a.MonthlyInstallment,
		Score:              a.Score,
		Tier:               a.Tier,
		Vetoes:             a.Vetoes,
	}
}

// Rejected builds the result for a loan that was not approved.
func Rejected(customerID id.CustomerID) *OriginationResult {
	return &OriginationResult{
		CustomerID:         customerID,
		Approved:           false,
		Message:            MessageLoanRejected,
		MonthlyInstallment: decimal.Zero,
	}
}

// Approved builds the result for a persisted loan.
func Approved(loan *Loan) *OriginationResult {
	return &OriginationResult{
		LoanID:             loan.ID,
		CustomerID:         loan.CustomerID,
		Approved:           true,
		Message:            MessageLoanApproved,
		MonthlyInstallment: loan.MonthlyInstallment,
	}
}
