package handler

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"

	"creditline/internal/lending/models"
	id "creditline/pkg/domain"
	dErrors "creditline/pkg/domain-errors"
)

// phoneNumber accepts a JSON string or a bare integer, since clients often
// send numeric phone numbers.
type phoneNumber string

func (p *phoneNumber) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*p = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*p = phoneNumber(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	if strings.ContainsAny(n.String(), ".eE-") {
		return dErrors.NewValidation(map[string]string{"phone_number": "must be 7 to 15 digits"})
	}
	*p = phoneNumber(n.String())
	return nil
}

// RegisterRequest is the body of POST /api/register. Monetary fields accept
// numbers or numeric strings.
type RegisterRequest struct {
	FirstName     string          `json:"first_name"`
	LastName      string          `json:"last_name"`
	Age           int             `json:"age"`
	MonthlyIncome decimal.Decimal `json:"monthly_income"`
	PhoneNumber   phoneNumber     `json:"phone_number"`
}

func (r *RegisterRequest) Registration() *models.Registration {
	reg := &models.Registration{
		FirstName:     r.FirstName,
		LastName:      r.LastName,
		Age:           r.Age,
		MonthlyIncome: r.MonthlyIncome,
		PhoneNumber:   string(r.PhoneNumber),
	}
	reg.Normalize()
	return reg
}

func (r *RegisterRequest) Validate() error {
	return r.Registration().Validate()
}

// LoanRequest is the body of POST /api/check-eligibility and /api/create-loan.
type LoanRequest struct {
	CustomerID   int64           `json:"customer_id"`
	LoanAmount   decimal.Decimal `json:"loan_amount"`
	InterestRate decimal.Decimal `json:"interest_rate"`
	Tenure       int             `json:"tenure"`
}

func (r *LoanRequest) Application() *models.LoanApplication {
	return &models.LoanApplication{
		CustomerID:   id.CustomerID(r.CustomerID),
		Principal:    r.LoanAmount,
		AnnualRate:   r.InterestRate,
		TenureMonths: r.Tenure,
	}
}

func (r *LoanRequest) Validate() error {
	return r.Application().Validate()
}
