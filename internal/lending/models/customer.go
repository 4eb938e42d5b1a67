package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"creditline/internal/credit"
	id "creditline/pkg/domain"
	dErrors "creditline/pkg/domain-errors"
)

var (
	limitIncomeMultiple = decimal.NewFromInt(36)
	limitStep           = decimal.NewFromInt(100_000)
)

// Customer is a registered borrower.
//
// Invariants:
//   - FirstName and LastName are non-empty
//   - Age and MonthlyIncome are positive
//   - ApprovedLimit is fixed at registration and never recomputed
type Customer struct {
	ID            id.CustomerID
	FirstName     string
	LastName      string
	Age           int
	PhoneNumber   string
	MonthlyIncome decimal.Decimal
	ApprovedLimit decimal.Decimal
	CurrentDebt   decimal.Decimal
	CreatedAt     time.Time
}

// NewCustomer builds an unsaved customer with its approved limit derived from income.
func NewCustomer(firstName, lastName string, age int, phoneNumber string, monthlyIncome decimal.Decimal, now time.Time) (*Customer, error) {
	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)
	if firstName == "" || lastName == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "customer name cannot be empty")
	}
	if age <= 0 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "customer age must be positive")
	}
	if !monthlyIncome.IsPositive() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "monthly income must be positive")
	}
	return &Customer{
		FirstName:     firstName,
		LastName:      lastName,
		Age:           age,
		PhoneNumber:   phoneNumber,
		MonthlyIncome: monthlyIncome,
		ApprovedLimit: ApprovedLimitFor(monthlyIncome),
		CurrentDebt:   decimal.Zero,
		CreatedAt:     now,
	}, nil
}

// ApprovedLimitFor derives the credit limit: 36 months of income rounded to the
// nearest 100,000, ties to even.
func ApprovedLimitFor(monthlyIncome decimal.Decimal) decimal.Decimal {
	return monthlyIncome.Mul(limitIncomeMultiple).Div(limitStep).RoundBank(0).Mul(limitStep)
}

func (c *Customer) FullName() string {
	return c.FirstName + " " + c.LastName
}

// Applicant is the snapshot the credit engine evaluates. Income is read at
// evaluation time, so a salary update affects the next affordability check.
func (c *Customer) Applicant() credit.Applicant {
	return credit.Applicant{
		MonthlyIncome: c.MonthlyIncome,
		ApprovedLimit: c.ApprovedLimit,
	}
}
