package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"creditline/internal/lending/models"
	"creditline/internal/lending/service/mocks"
	id "creditline/pkg/domain"
	dErrors "creditline/pkg/domain-errors"
	audit "creditline/pkg/platform/audit"
	"creditline/pkg/platform/sentinel"
	"creditline/pkg/requestcontext"
)

// ServiceSuite covers error translation and store interaction with mocked
// ports. Decision arithmetic is covered by internal/credit; end-to-end flows
// over the in-memory stores live in lending_test.go.
type ServiceSuite struct {
	suite.Suite
	ctrl      *gomock.Controller
	customers *mocks.MockCustomerStore
	loans     *mocks.MockLoanStore
	tx        *mocks.MockLendingTx
	auditor   *mocks.MockAuditPublisher
	service   *Service
	ctx       context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.customers = mocks.NewMockCustomerStore(s.ctrl)
	s.loans = mocks.NewMockLoanStore(s.ctrl)
	s.tx = mocks.NewMockLendingTx(s.ctrl)
	s.auditor = mocks.NewMockAuditPublisher(s.ctrl)

	svc, err := New(s.customers, s.loans, s.tx, WithAuditPublisher(s.auditor))
	s.Require().NoError(err)
	s.service = svc
	s.ctx = requestcontext.WithTime(context.Background(), time.Date(2025, time.June, 15, 10, 0, 0, 0, time.UTC))
}

func (s *ServiceSuite) TearDownTest() {
	s.ctrl.Finish()
}

// passThroughTx runs the callback directly, as a transaction without contention would.
func (s *ServiceSuite) passThroughTx(customerID id.CustomerID) {
	s.tx.EXPECT().RunInTx(gomock.Any(), customerID, gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ id.CustomerID, fn func(context.Context) error) error {
			return fn(ctx)
		})
}

func customerFixture(customerID id.CustomerID, income string) *models.Customer {
	monthly := decimal.RequireFromString(income)
	return &models.Customer{
		ID:            customerID,
		FirstName:     "Asha",
		LastName:      "Verma",
		Age:           34,
		PhoneNumber:   "9876543210",
		MonthlyIncome: monthly,
		ApprovedLimit: models.ApprovedLimitFor(monthly),
		CurrentDebt:   decimal.Zero,
	}
}

func application(customerID id.CustomerID, principal, rate string, tenure int) *models.LoanApplication {
	return &models.LoanApplication{
		CustomerID:   customerID,
		Principal:    decimal.RequireFromString(principal),
		AnnualRate:   decimal.RequireFromString(rate),
		TenureMonths: tenure,
	}
}

// =============================================================================
// Constructor
// =============================================================================

func (s *ServiceSuite) TestNew_RequiresDependencies() {
	_, err := New(nil, s.loans, s.tx)
	s.EqualError(err, "customer store is required")

	_, err = New(s.customers, nil, s.tx)
	s.EqualError(err, "loan store is required")

	_, err = New(s.customers, s.loans, nil)
	s.EqualError(err, "lending tx is required")
}

// =============================================================================
// Register
// =============================================================================

func (s *ServiceSuite) TestRegister() {
	s.Run("invalid request reports every field without touching the store", func() {
		_, err := s.service.Register(s.ctx, &models.Registration{Age: 12})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))

		de, ok := dErrors.As(err)
		s.Require().True(ok)
		s.Contains(de.Fields, "first_name")
		s.Contains(de.Fields, "age")
		s.Contains(de.Fields, "monthly_income")
	})

	s.Run("store failure is internal", func() {
		s.customers.EXPECT().Create(gomock.Any(), gomock.Any()).Return(errors.New("connection reset"))

		_, err := s.service.Register(s.ctx, &models.Registration{
			FirstName: "Asha", LastName: "Verma", Age: 34,
			MonthlyIncome: decimal.NewFromInt(50000), PhoneNumber: "9876543210",
		})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})

	s.Run("audit failure does not fail registration", func() {
		s.customers.EXPECT().Create(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, c *models.Customer) error {
				c.ID = 7
				return nil
			})
		s.auditor.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(errors.New("audit buffer full"))

		c, err := s.service.Register(s.ctx, &models.Registration{
			FirstName: " Asha ", LastName: "Verma", Age: 34,
			MonthlyIncome: decimal.NewFromInt(50000), PhoneNumber: "9876543210",
		})
		s.Require().NoError(err)
		s.Equal(id.CustomerID(7), c.ID)
		s.Equal("Asha", c.FirstName)
		s.True(decimal.NewFromInt(1_800_000).Equal(c.ApprovedLimit))
	})
}

// =============================================================================
// CheckEligibility
// =============================================================================

func (s *ServiceSuite) TestCheckEligibility_ErrorTranslation() {
	s.Run("validation error reads nothing", func() {
		_, err := s.service.CheckEligibility(s.ctx, application(1, "0", "10", 0))
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("unknown customer is not found", func() {
		s.customers.EXPECT().FindByID(gomock.Any(), id.CustomerID(404)).Return(nil, sentinel.ErrNotFound)
		s.loans.EXPECT().ListByCustomer(gomock.Any(), id.CustomerID(404)).Return(nil, nil).AnyTimes()
		s.loans.EXPECT().ListActiveByCustomer(gomock.Any(), id.CustomerID(404)).Return(nil, nil).AnyTimes()

		_, err := s.service.CheckEligibility(s.ctx, application(404, "100000", "10", 12))
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("history read failure is internal", func() {
		s.customers.EXPECT().FindByID(gomock.Any(), id.CustomerID(1)).Return(customerFixture(1, "50000"), nil).AnyTimes()
		s.loans.EXPECT().ListByCustomer(gomock.Any(), id.CustomerID(1)).Return(nil, errors.New("timeout")).AnyTimes()
		s.loans.EXPECT().ListActiveByCustomer(gomock.Any(), id.CustomerID(1)).Return(nil, nil).AnyTimes()

		_, err := s.service.CheckEligibility(s.ctx, application(1, "100000", "10", 12))
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})
}

func (s *ServiceSuite) TestCheckEligibility_EmitsOperationsEvent() {
	s.customers.EXPECT().FindByID(gomock.Any(), id.CustomerID(1)).Return(customerFixture(1, "50000"), nil)
	s.loans.EXPECT().ListByCustomer(gomock.Any(), id.CustomerID(1)).Return(nil, nil)
	s.loans.EXPECT().ListActiveByCustomer(gomock.Any(), id.CustomerID(1)).Return(nil, nil)

	var emitted audit.Event
	s.auditor.EXPECT().Emit(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, e audit.Event) error {
			emitted = e
			return nil
		})

	result, err := s.service.CheckEligibility(s.ctx, application(1, "100000", "10", 12))
	s.Require().NoError(err)
	s.True(result.Approved)

	s.Equal(string(audit.EventEligibilityChecked), emitted.Action)
	s.Equal(audit.CategoryOperations, emitted.Category)
	s.Equal("approved", emitted.Decision)
	s.Equal("standard", emitted.Attributes["tier"])
}

// =============================================================================
// CreateLoan
// =============================================================================

func (s *ServiceSuite) TestCreateLoan_ErrorTranslation() {
	s.Run("lock on a missing customer row is not found", func() {
		s.tx.EXPECT().RunInTx(gomock.Any(), id.CustomerID(404), gomock.Any()).Return(sentinel.ErrNotFound)

		_, err := s.service.CreateLoan(s.ctx, application(404, "100000", "10", 12))
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("deadline exceeded is a timeout", func() {
		s.tx.EXPECT().RunInTx(gomock.Any(), id.CustomerID(1), gomock.Any()).Return(context.DeadlineExceeded)

		_, err := s.service.CreateLoan(s.ctx, application(1, "100000", "10", 12))
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeTimeout))
	})

	s.Run("insert failure is internal and nothing is audited", func() {
		s.passThroughTx(1)
		s.customers.EXPECT().FindByID(gomock.Any(), id.CustomerID(1)).Return(customerFixture(1, "50000"), nil)
		s.loans.EXPECT().ListByCustomer(gomock.Any(), id.CustomerID(1)).Return(nil, nil)
		s.loans.EXPECT().ListActiveByCustomer(gomock.Any(), id.CustomerID(1)).Return(nil, nil)
		s.loans.EXPECT().Create(gomock.Any(), gomock.Any()).Return(errors.New("disk full"))

		_, err := s.service.CreateLoan(s.ctx, application(1, "100000", "10", 12))
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})
}

func (s *ServiceSuite) TestCreateLoan_PersistsApprovedTerms() {
	s.passThroughTx(1)
	s.customers.EXPECT().FindByID(gomock.Any(), id.CustomerID(1)).Return(customerFixture(1, "50000"), nil)
	s.loans.EXPECT().ListByCustomer(gomock.Any(), id.CustomerID(1)).Return(nil, nil)
	s.loans.EXPECT().ListActiveByCustomer(gomock.Any(), id.CustomerID(1)).Return(nil, nil)

	var stored *models.Loan
	s.loans.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, l *models.Loan) error {
			l.ID = 31
			stored = l
			return nil
		})
	s.auditor.EXPECT().Emit(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, e audit.Event) error {
			s.Equal(string(audit.EventLoanOriginated), e.Action)
			s.Equal(audit.CategoryCompliance, e.Category)
			s.Equal(id.LoanID(31), e.LoanID)
			return nil
		})

	result, err := s.service.CreateLoan(s.ctx, application(1, "100000", "10", 12))
	s.Require().NoError(err)

	s.True(result.Approved)
	s.Equal(id.LoanID(31), result.LoanID)
	s.Equal(models.MessageLoanApproved, result.Message)
	s.Equal("8884.88", result.MonthlyInstallment.StringFixed(2))

	s.Require().NotNil(stored)
	s.True(stored.Active)
	s.Equal(0, stored.InstallmentsPaid)
	s.Equal("12", stored.AnnualRate.String(), "no-history score 50 is standard tier and floors the rate at 12")
	s.Equal(time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC), stored.StartDate)
	s.Equal(time.Date(2026, time.June, 15, 0, 0, 0, 0, time.UTC), stored.EndDate)
}

func (s *ServiceSuite) TestCreateLoan_RejectionCreatesNoRecord() {
	customer := customerFixture(1, "20000")
	// An active loan above the 700,000 limit vetoes regardless of score.
	active := &models.Loan{
		ID: 3, CustomerID: 1,
		Principal:          decimal.NewFromInt(800_000),
		TenureMonths:       24,
		AnnualRate:         decimal.NewFromInt(12),
		MonthlyInstallment: decimal.NewFromInt(5_000),
		InstallmentsPaid:   20,
		StartDate:          time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC),
		EndDate:            time.Date(2026, time.January, 10, 0, 0, 0, 0, time.UTC),
		Active:             true,
	}
	s.passThroughTx(1)
	s.customers.EXPECT().FindByID(gomock.Any(), id.CustomerID(1)).Return(customer, nil)
	s.loans.EXPECT().ListByCustomer(gomock.Any(), id.CustomerID(1)).Return([]*models.Loan{active}, nil)
	s.loans.EXPECT().ListActiveByCustomer(gomock.Any(), id.CustomerID(1)).Return([]*models.Loan{active}, nil)
	s.loans.EXPECT().Create(gomock.Any(), gomock.Any()).Times(0)
	s.auditor.EXPECT().Emit(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, e audit.Event) error {
			s.Equal(string(audit.EventLoanRejected), e.Action)
			s.Equal("true", e.Attributes["veto.active_debt_exceeds_limit"])
			return nil
		})

	result, err := s.service.CreateLoan(s.ctx, application(1, "100000", "10", 12))
	s.Require().NoError(err)
	s.False(result.Approved)
	s.True(result.LoanID.IsZero())
	s.True(result.MonthlyInstallment.IsZero())
	s.Equal(models.MessageLoanRejected, result.Message)
}

// =============================================================================
// Loan views
// =============================================================================

func (s *ServiceSuite) TestGetLoan() {
	s.Run("unknown loan is not found", func() {
		s.loans.EXPECT().FindByID(gomock.Any(), id.LoanID(9)).Return(nil, sentinel.ErrNotFound)

		_, err := s.service.GetLoan(s.ctx, 9)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("returns loan with owner", func() {
		s.loans.EXPECT().FindByID(gomock.Any(), id.LoanID(2)).Return(&models.Loan{ID: 2, CustomerID: 5}, nil)
		s.customers.EXPECT().FindByID(gomock.Any(), id.CustomerID(5)).Return(customerFixture(5, "50000"), nil)

		detail, err := s.service.GetLoan(s.ctx, 2)
		s.Require().NoError(err)
		s.Equal(id.LoanID(2), detail.Loan.ID)
		s.Equal(id.CustomerID(5), detail.Customer.ID)
	})
}

func (s *ServiceSuite) TestListCustomerLoans_UnknownCustomer() {
	s.customers.EXPECT().FindByID(gomock.Any(), id.CustomerID(404)).Return(nil, sentinel.ErrNotFound)

	_, err := s.service.ListCustomerLoans(s.ctx, 404)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}
