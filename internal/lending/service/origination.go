package service

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"creditline/internal/credit"
	"creditline/internal/lending/models"
	dErrors "creditline/pkg/domain-errors"
	audit "creditline/pkg/platform/audit"
	"creditline/pkg/platform/sentinel"
	"creditline/pkg/requestcontext"
)

// CreateLoan evaluates the application and, when approved, persists the loan.
// Reading the history, deciding and inserting run in one lending transaction
// so concurrent originations for a customer cannot both pass the capacity
// guards on the same snapshot.
func (s *Service) CreateLoan(ctx context.Context, req *models.LoanApplication) (_ *models.OriginationResult, err error) {
	ctx, span := s.tracer.Start(ctx, "lending.CreateLoan")
	defer func() { endSpan(span, err) }()

	if err := req.Validate(); err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int64("customer.id", int64(req.CustomerID)))

	start := time.Now()
	today := requestcontext.Now(ctx)
	var (
		assessment credit.Assessment
		loan       *models.Loan
	)
	err = s.tx.RunInTx(ctx, req.CustomerID, func(txCtx context.Context) error {
		customer, err := s.findCustomer(txCtx, req.CustomerID)
		if err != nil {
			return err
		}
		all, err := s.loans.ListByCustomer(txCtx, req.CustomerID)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load loan history")
		}
		active, err := s.loans.ListActiveByCustomer(txCtx, req.CustomerID)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load active loans")
		}

		history := credit.History{Loans: models.FactsOf(all), Active: models.FactsOf(active)}
		assessment = credit.Assess(customer.Applicant(), req.Terms(), history, today)
		origination, ok := credit.NewLoan(req.Terms(), assessment, today)
		if !ok {
			return nil
		}

		loan, err = models.NewLoan(customer.ID, origination)
		if err != nil {
			return err
		}
		if err := s.loans.Create(txCtx, loan); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create loan")
		}
		return nil
	})
	s.metrics.ObserveOriginationLatency(time.Since(start))
	if err != nil {
		if s.logger != nil && dErrors.CodeOf(err) != dErrors.CodeNotFound {
			s.logger.ErrorContext(ctx, "loan origination failed",
				"customer_id", req.CustomerID,
				"error", err,
			)
		}
		return nil, translateTxErr(err)
	}

	s.recordAssessment(ctx, operationOrigination, req.CustomerID, assessment)
	attrs := assessmentAttributes(assessment)

	if loan == nil {
		event := newAuditEvent(audit.EventLoanRejected, req.CustomerID, "rejected")
		event.Attributes = attrs
		s.emitAudit(ctx, event)
		return models.Rejected(req.CustomerID), nil
	}

	span.SetAttributes(attribute.Int64("loan.id", int64(loan.ID)))
	principal, _ := loan.Principal.Float64()
	s.metrics.AddOriginatedPrincipal(principal)

	attrs["loan_amount"] = loan.Principal.String()
	attrs["monthly_installment"] = loan.MonthlyInstallment.StringFixed(2)
	event := newAuditEvent(audit.EventLoanOriginated, req.CustomerID, "approved")
	event.LoanID = loan.ID
	event.Attributes = attrs
	s.emitAudit(ctx, event)

	return models.Approved(loan), nil
}

func translateTxErr(err error) error {
	if _, ok := dErrors.As(err); ok {
		return err
	}
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "customer not found")
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return dErrors.Wrap(err, dErrors.CodeTimeout, "lending transaction timed out")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create loan")
}
