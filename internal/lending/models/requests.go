package models

import (
	"strings"

	"github.com/shopspring/decimal"

	"creditline/internal/credit"
	id "creditline/pkg/domain"
	dErrors "creditline/pkg/domain-errors"
)

const (
	maxNameLength   = 100
	minAge          = 18
	maxAge          = 120
	minPhoneDigits  = 7
	maxPhoneDigits  = 15
	maxTenureMonths = 600
	moneyPlaces     = 2
)

var maxAnnualRate = decimal.NewFromInt(100)

// Registration is a request to register a customer.
type Registration struct {
	FirstName     string
	LastName      string
	Age           int
	MonthlyIncome decimal.Decimal
	PhoneNumber   string
}

// Normalize trims free-text fields.
func (r *Registration) Normalize() {
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.PhoneNumber = strings.TrimSpace(r.PhoneNumber)
}

// Validate reports every offending field at once.
func (r *Registration) Validate() error {
	fields := map[string]string{}
	validateName(fields, "first_name", r.FirstName)
	validateName(fields, "last_name", r.LastName)
	if r.Age < minAge || r.Age > maxAge {
		fields["age"] = "must be between 18 and 120"
	}
	switch {
	case !r.MonthlyIncome.IsPositive():
		fields["monthly_income"] = "must be positive"
	case !withinMoneyPlaces(r.MonthlyIncome):
		fields["monthly_income"] = "must have at most 2 decimal places"
	}
	if !validPhone(r.PhoneNumber) {
		fields["phone_number"] = "must be 7 to 15 digits"
	}
	if len(fields) > 0 {
		return dErrors.NewValidation(fields)
	}
	return nil
}

func validateName(fields map[string]string, key, value string) {
	switch {
	case value == "":
		fields[key] = "is required"
	case len(value) > maxNameLength:
		fields[key] = "must be at most 100 characters"
	}
}

func validPhone(phone string) bool {
	digits := strings.TrimPrefix(phone, "+")
	if len(digits) < minPhoneDigits || len(digits) > maxPhoneDigits {
		return false
	}
	for _, c := range digits {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// withinMoneyPlaces reports whether d is stored exactly at two decimal places.
// Trailing zeros beyond the second place are accepted.
func withinMoneyPlaces(d decimal.Decimal) bool {
	return d.Equal(d.Truncate(moneyPlaces))
}

// LoanApplication is a request to check eligibility for, or originate, a loan.
type LoanApplication struct {
	CustomerID   id.CustomerID
	Principal    decimal.Decimal
	AnnualRate   decimal.Decimal
	TenureMonths int
}

// Validate reports every offending field at once.
func (a *LoanApplication) Validate() error {
	fields := map[string]string{}
	if a.CustomerID <= 0 {
		fields["customer_id"] = "must be a positive integer"
	}
	switch {
	case !a.Principal.IsPositive():
		fields["loan_amount"] = "must be positive"
	case !withinMoneyPlaces(a.Principal):
		fields["loan_amount"] = "must have at most 2 decimal places"
	}
	switch {
	case a.AnnualRate.IsNegative() || a.AnnualRate.GreaterThan(maxAnnualRate):
		fields["interest_rate"] = "must be between 0 and 100"
	case !withinMoneyPlaces(a.AnnualRate):
		fields["interest_rate"] = "must have at most 2 decimal places"
	}
	if a.TenureMonths <= 0 || a.TenureMonths > maxTenureMonths {
		fields["tenure"] = "must be between 1 and 600 months"
	}
	if len(fields) > 0 {
		return dErrors.NewValidation(fields)
	}
	return nil
}

// Terms converts the request to the engine's input.
func (a *LoanApplication) Terms() credit.Application {
	return credit.Application{
		Principal:    a.Principal,
		AnnualRate:   a.AnnualRate,
		TenureMonths: a.TenureMonths,
	}
}
