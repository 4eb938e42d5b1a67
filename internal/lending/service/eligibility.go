package service

import (
	"context"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"creditline/internal/credit"
	"creditline/internal/lending/models"
	id "creditline/pkg/domain"
	dErrors "creditline/pkg/domain-errors"
	audit "creditline/pkg/platform/audit"
	"creditline/pkg/requestcontext"
)

const (
	operationEligibility = "check_eligibility"
	operationOrigination = "create_loan"
)

// snapshot is what the engine reads for one customer.
type snapshot struct {
	customer *models.Customer
	history  credit.History
}

// CheckEligibility evaluates an application without creating a record.
func (s *Service) CheckEligibility(ctx context.Context, req *models.LoanApplication) (_ *models.EligibilityResult, err error) {
	ctx, span := s.tracer.Start(ctx, "lending.CheckEligibility")
	defer func() { endSpan(span, err) }()

	if err := req.Validate(); err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int64("customer.id", int64(req.CustomerID)))

	snap, err := s.gatherSnapshot(ctx, req.CustomerID)
	if err != nil {
		return nil, err
	}

	assessment := credit.Assess(snap.customer.Applicant(), req.Terms(), snap.history, requestcontext.Now(ctx))
	s.recordAssessment(ctx, operationEligibility, req.CustomerID, assessment)

	event := newAuditEvent(audit.EventEligibilityChecked, req.CustomerID, decisionLabel(assessment.Approved))
	event.Attributes = assessmentAttributes(assessment)
	s.emitAudit(ctx, event)

	return models.NewEligibilityResult(req.CustomerID, assessment), nil
}

// gatherSnapshot reads the customer, the full history and the active subset in
// parallel. Each read is an independent snapshot.
func (s *Service) gatherSnapshot(ctx context.Context, customerID id.CustomerID) (*snapshot, error) {
	g, gctx := errgroup.WithContext(ctx)

	var (
		customer *models.Customer
		all      []*models.Loan
		active   []*models.Loan
	)
	g.Go(func() error {
		start := time.Now()
		c, err := s.findCustomer(gctx, customerID)
		s.metrics.ObserveSnapshotLatency("customer", time.Since(start))
		if err != nil {
			return err
		}
		customer = c
		return nil
	})
	g.Go(func() error {
		start := time.Now()
		loans, err := s.loans.ListByCustomer(gctx, customerID)
		s.metrics.ObserveSnapshotLatency("loans", time.Since(start))
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load loan history")
		}
		all = loans
		return nil
	})
	g.Go(func() error {
		start := time.Now()
		loans, err := s.loans.ListActiveByCustomer(gctx, customerID)
		s.metrics.ObserveSnapshotLatency("active_loans", time.Since(start))
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load active loans")
		}
		active = loans
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &snapshot{
		customer: customer,
		history: credit.History{
			Loans:  models.FactsOf(all),
			Active: models.FactsOf(active),
		},
	}, nil
}

func (s *Service) recordAssessment(ctx context.Context, operation string, customerID id.CustomerID, a credit.Assessment) {
	s.metrics.IncrementDecision(operation, a.Approved, string(a.Tier))
	for _, v := range a.Vetoes {
		s.metrics.IncrementVeto(string(v))
	}
	if s.logger != nil {
		s.logger.InfoContext(ctx, "credit assessment",
			"operation", operation,
			"customer_id", customerID,
			"score", a.Score.StringFixed(2),
			"payment_score", a.Breakdown.Payment.StringFixed(2),
			"volume_score", a.Breakdown.Volume.StringFixed(2),
			"activity_score", a.Breakdown.Activity.StringFixed(2),
			"size_score", a.Breakdown.Size.StringFixed(2),
			"vetoes", a.Vetoes,
			"tier", a.Tier,
			"approved", a.Approved,
		)
	}
}

func decisionLabel(approved bool) string {
	if approved {
		return "approved"
	}
	return "rejected"
}

func assessmentAttributes(a credit.Assessment) map[string]string {
	attrs := map[string]string{
		"score":          a.Score.StringFixed(2),
		"tier":           string(a.Tier),
		"interest_rate":  a.RequestedRate.String(),
		"corrected_rate": a.CorrectedRate.String(),
		"tenure":         strconv.Itoa(a.TenureMonths),
	}
	for _, v := range a.Vetoes {
		attrs["veto."+string(v)] = "true"
	}
	return attrs
}
