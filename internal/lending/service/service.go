package service

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"creditline/internal/lending/metrics"
	"creditline/internal/lending/models"
	id "creditline/pkg/domain"
	dErrors "creditline/pkg/domain-errors"
	audit "creditline/pkg/platform/audit"
	"creditline/pkg/platform/sentinel"
)

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks

const tracerName = "creditline/lending"

type CustomerStore interface {
	Create(ctx context.Context, c *models.Customer) error
	FindByID(ctx context.Context, customerID id.CustomerID) (*models.Customer, error)
}

type LoanStore interface {
	Create(ctx context.Context, l *models.Loan) error
	FindByID(ctx context.Context, loanID id.LoanID) (*models.Loan, error)
	ListByCustomer(ctx context.Context, customerID id.CustomerID) ([]*models.Loan, error)
	ListActiveByCustomer(ctx context.Context, customerID id.CustomerID) ([]*models.Loan, error)
}

// LendingTx runs fn as one atomic unit for a customer. Concurrent units for the
// same customer are serialized; the context passed to fn carries whatever the
// stores need to join the unit.
type LendingTx interface {
	RunInTx(ctx context.Context, customerID id.CustomerID, fn func(ctx context.Context) error) error
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service orchestrates customer registration, eligibility checks and loan
// origination around the pure credit engine.
type Service struct {
	customers CustomerStore
	loans     LoanStore
	tx        LendingTx
	logger    *slog.Logger
	auditor   AuditPublisher
	metrics   *metrics.Metrics
	tracer    trace.Tracer
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditor = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tracer
	}
}

// New constructs a Service.
func New(customers CustomerStore, loans LoanStore, tx LendingTx, opts ...Option) (*Service, error) {
	if customers == nil {
		return nil, errors.New("customer store is required")
	}
	if loans == nil {
		return nil, errors.New("loan store is required")
	}
	if tx == nil {
		return nil, errors.New("lending tx is required")
	}
	s := &Service{
		customers: customers,
		loans:     loans,
		tx:        tx,
		tracer:    otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Service) findCustomer(ctx context.Context, customerID id.CustomerID) (*models.Customer, error) {
	c, err := s.customers.FindByID(ctx, customerID)
	if err != nil {
		return nil, translateCustomerErr(err)
	}
	return c, nil
}

func translateCustomerErr(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "customer not found")
	}
	if _, ok := dErrors.As(err); ok {
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load customer")
}

// endSpan records err on the span before ending it.
func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(dErrors.CodeOf(err)))
	}
	span.End()
}
