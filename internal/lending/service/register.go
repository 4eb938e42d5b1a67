package service

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"creditline/internal/lending/models"
	dErrors "creditline/pkg/domain-errors"
	audit "creditline/pkg/platform/audit"
	"creditline/pkg/requestcontext"
)

// Register validates the request and stores a new customer with an approved
// limit derived from monthly income.
func (s *Service) Register(ctx context.Context, req *models.Registration) (_ *models.Customer, err error) {
	ctx, span := s.tracer.Start(ctx, "lending.Register")
	defer func() { endSpan(span, err) }()

	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	c, err := models.NewCustomer(req.FirstName, req.LastName, req.Age, req.PhoneNumber, req.MonthlyIncome, requestcontext.Now(ctx))
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
			return nil, dErrors.New(dErrors.CodeValidation, err.Error())
		}
		return nil, err
	}
	if err := s.customers.Create(ctx, c); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to register customer")
	}
	span.SetAttributes(attribute.Int64("customer.id", int64(c.ID)))

	s.metrics.IncrementCustomersRegistered()
	event := newAuditEvent(audit.EventCustomerRegistered, c.ID, "registered")
	event.Attributes = map[string]string{"approved_limit": c.ApprovedLimit.String()}
	s.emitAudit(ctx, event)
	return c, nil
}
