package handler

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"creditline/internal/lending/models"
)

// money renders a decimal as an exact JSON number with two places.
func money(d decimal.Decimal) json.Number {
	return json.Number(d.StringFixed(2))
}

type registerResponse struct {
	CustomerID    int64       `json:"customer_id"`
	Name          string      `json:"name"`
	Age           int         `json:"age"`
	MonthlyIncome json.Number `json:"monthly_income"`
	ApprovedLimit json.Number `json:"approved_limit"`
	PhoneNumber   string      `json:"phone_number"`
}

func toRegisterResponse(c *models.Customer) registerResponse {
	return registerResponse{
		CustomerID:    int64(c.ID),
		Name:          c.FullName(),
		Age:           c.Age,
		MonthlyIncome: money(c.MonthlyIncome),
		ApprovedLimit: money(c.ApprovedLimit),
		PhoneNumber:   c.PhoneNumber,
	}
}

type eligibilityResponse struct {
	CustomerID            int64       `json:"customer_id"`
	Approval              bool        `json:"approval"`
	InterestRate          json.Number `json:"interest_rate"`
	CorrectedInterestRate json.Number `json:"corrected_interest_rate"`
	Tenure                int         `json:"tenure"`
	MonthlyInstallment    json.Number `json:"monthly_installment"`
}

func toEligibilityResponse(r *models.EligibilityResult) eligibilityResponse {
	return eligibilityResponse{
		CustomerID:            int64(r.CustomerID),
		Approval:              r.Approved,
		InterestRate:          money(r.InterestRate),
		CorrectedInterestRate: money(r.CorrectedRate),
		Tenure:                r.TenureMonths,
		MonthlyInstallment:    money(r.MonthlyInstallment),
	}
}

// createLoanResponse has a null loan_id when the loan was not approved.
type createLoanResponse struct {
	LoanID             *int64      `json:"loan_id"`
	CustomerID         int64       `json:"customer_id"`
	LoanApproved       bool        `json:"loan_approved"`
	Message            string      `json:"message"`
	MonthlyInstallment json.Number `json:"monthly_installment"`
}

func toCreateLoanResponse(r *models.OriginationResult) createLoanResponse {
	resp := createLoanResponse{
		CustomerID:         int64(r.CustomerID),
		LoanApproved:       r.Approved,
		Message:            r.Message,
		MonthlyInstallment: money(r.MonthlyInstallment),
	}
	if !r.LoanID.IsZero() {
		loanID := int64(r.LoanID)
		resp.LoanID = &loanID
	}
	return resp
}

type loanCustomer struct {
	ID          int64  `json:"id"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	PhoneNumber string `json:"phone_number"`
	Age         int    `json:"age"`
}

type loanDetailResponse struct {
	LoanID             int64        `json:"loan_id"`
	Customer           loanCustomer `json:"customer"`
	LoanAmount         json.Number  `json:"loan_amount"`
	InterestRate       json.Number  `json:"interest_rate"`
	MonthlyInstallment json.Number  `json:"monthly_installment"`
	Tenure             int          `json:"tenure"`
	EMIsPaidOnTime     int          `json:"emis_paid_on_time"`
	StartDate          string       `json:"start_date"`
	EndDate            string       `json:"end_date"`
	IsActive           bool         `json:"is_active"`
}

func toLoanDetailResponse(d *models.LoanDetail) loanDetailResponse {
	return loanDetailResponse{
		LoanID: int64(d.Loan.ID),
		Customer: loanCustomer{
			ID:          int64(d.Customer.ID),
			FirstName:   d.Customer.FirstName,
			LastName:    d.Customer.LastName,
			PhoneNumber: d.Customer.PhoneNumber,
			Age:         d.Customer.Age,
		},
		LoanAmount:         money(d.Loan.Principal),
		InterestRate:       money(d.Loan.AnnualRate),
		MonthlyInstallment: money(d.Loan.MonthlyInstallment),
		Tenure:             d.Loan.TenureMonths,
		EMIsPaidOnTime:     d.Loan.InstallmentsPaid,
		StartDate:          d.Loan.StartDate.Format(time.DateOnly),
		EndDate:            d.Loan.EndDate.Format(time.DateOnly),
		IsActive:           d.Loan.Active,
	}
}

type loanSummaryResponse struct {
	LoanID             int64       `json:"loan_id"`
	LoanAmount         json.Number `json:"loan_amount"`
	InterestRate       json.Number `json:"interest_rate"`
	MonthlyInstallment json.Number `json:"monthly_installment"`
	RepaymentsLeft     int         `json:"repayments_left"`
	IsActive           bool        `json:"is_active"`
}

func toLoanSummaries(loans []*models.Loan) []loanSummaryResponse {
	out := make([]loanSummaryResponse, 0, len(loans))
	for _, l := range loans {
		out = append(out, loanSummaryResponse{
			LoanID:             int64(l.ID),
			LoanAmount:         money(l.Principal),
			InterestRate:       money(l.AnnualRate),
			MonthlyInstallment: money(l.MonthlyInstallment),
			RepaymentsLeft:     l.RepaymentsLeft(),
			IsActive:           l.Active,
		})
	}
	return out
}
