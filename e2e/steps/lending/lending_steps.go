package lending

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POST(path string, body interface{}) error
	GET(path string, headers map[string]string) error
	GetResponseField(field string) (interface{}, error)
	GetLastResponseStatus() int
	GetLastResponseBody() []byte
	GetCustomerID() string
	SetCustomerID(id string)
	GetLoanID() string
	SetLoanID(id string)
}

// RegisterSteps registers lending step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &lendingSteps{tc: tc}

	// Customers
	ctx.Step(`^I register a customer earning (\d+) per month$`, steps.registerCustomer)
	ctx.Step(`^a registered customer earning (\d+) per month$`, steps.registeredCustomer)

	// Loans
	ctx.Step(`^I check eligibility for (\d+) at (\d+(?:\.\d+)?)% over (\d+) months$`, steps.checkEligibility)
	ctx.Step(`^I apply for (\d+) at (\d+(?:\.\d+)?)% over (\d+) months$`, steps.createLoan)
	ctx.Step(`^I apply for (\d+) at (\d+(?:\.\d+)?)% over (\d+) months for customer (\d+)$`, steps.createLoanFor)
	ctx.Step(`^I view the created loan$`, steps.viewCreatedLoan)
	ctx.Step(`^I view the customer's loans$`, steps.viewCustomerLoans)

	// Assertions
	ctx.Step(`^the customer's loan list should have (\d+) entr(?:y|ies)$`, steps.loanListShouldHave)
}

type lendingSteps struct {
	tc TestContext
}

func (s *lendingSteps) registerCustomer(ctx context.Context, income int) error {
	body := map[string]interface{}{
		"first_name":     "Nisha",
		"last_name":      "Rao",
		"age":            31,
		"monthly_income": income,
		"phone_number":   9812345678,
	}
	if err := s.tc.POST("/api/register", body); err != nil {
		return err
	}
	if s.tc.GetLastResponseStatus() != 201 {
		return nil
	}
	id, err := s.tc.GetResponseField("customer_id")
	if err != nil {
		return err
	}
	s.tc.SetCustomerID(fmt.Sprint(id))
	return nil
}

func (s *lendingSteps) registeredCustomer(ctx context.Context, income int) error {
	if err := s.registerCustomer(ctx, income); err != nil {
		return err
	}
	if s.tc.GetCustomerID() == "" {
		return fmt.Errorf("registration failed with %d: %s", s.tc.GetLastResponseStatus(), s.tc.GetLastResponseBody())
	}
	return nil
}

func (s *lendingSteps) application(customerID string, amount int, rate string, tenure int) (map[string]interface{}, error) {
	id, err := strconv.ParseInt(customerID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("no customer registered in this scenario")
	}
	return map[string]interface{}{
		"customer_id":   id,
		"loan_amount":   amount,
		"interest_rate": json.Number(rate),
		"tenure":        tenure,
	}, nil
}

func (s *lendingSteps) checkEligibility(ctx context.Context, amount int, rate string, tenure int) error {
	body, err := s.application(s.tc.GetCustomerID(), amount, rate, tenure)
	if err != nil {
		return err
	}
	return s.tc.POST("/api/check-eligibility", body)
}

func (s *lendingSteps) createLoan(ctx context.Context, amount int, rate string, tenure int) error {
	return s.createLoanFor(ctx, amount, rate, tenure, s.tc.GetCustomerID())
}

func (s *lendingSteps) createLoanFor(ctx context.Context, amount int, rate string, tenure int, customerID string) error {
	body, err := s.application(customerID, amount, rate, tenure)
	if err != nil {
		return err
	}
	if err := s.tc.POST("/api/create-loan", body); err != nil {
		return err
	}
	if s.tc.GetLastResponseStatus() == 201 {
		id, err := s.tc.GetResponseField("loan_id")
		if err != nil {
			return err
		}
		s.tc.SetLoanID(fmt.Sprint(id))
	}
	return nil
}

func (s *lendingSteps) viewCreatedLoan(ctx context.Context) error {
	if s.tc.GetLoanID() == "" {
		return fmt.Errorf("no loan created in this scenario")
	}
	return s.tc.GET("/api/view-loan/"+s.tc.GetLoanID(), nil)
}

func (s *lendingSteps) viewCustomerLoans(ctx context.Context) error {
	return s.tc.GET("/api/view-loans/"+s.tc.GetCustomerID(), nil)
}

func (s *lendingSteps) loanListShouldHave(ctx context.Context, count int) error {
	if err := s.viewCustomerLoans(ctx); err != nil {
		return err
	}
	var loans []map[string]interface{}
	if err := json.Unmarshal(s.tc.GetLastResponseBody(), &loans); err != nil {
		return fmt.Errorf("loan list is not a JSON array: %w", err)
	}
	if len(loans) != count {
		return fmt.Errorf("expected %d loans, got %d", count, len(loans))
	}
	return nil
}
