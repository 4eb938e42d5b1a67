package audit

import (
	"context"
	"time"

	id "creditline/pkg/domain"
)

// EventCategory classifies audit events by their primary purpose.
// This enables different retention policies and routing.
type EventCategory string

const (
	// CategoryCompliance covers events with regulatory significance: who was
	// registered, which loans were granted or refused. Long retention.
	CategoryCompliance EventCategory = "compliance"

	// CategoryOperations covers routine activity such as eligibility checks.
	// Shorter retention, may be sampled downstream.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from lending logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	ID         string
	Category   EventCategory
	Timestamp  time.Time
	CustomerID id.CustomerID
	// LoanID is set for originated loans only.
	LoanID    id.LoanID
	Action    string
	Decision  string
	Reason    string
	RequestID string
	// Attributes carries decision inputs (score, tier, rates) as strings so
	// decimal values keep their exact form.
	Attributes map[string]string
}

type AuditEvent string

const (
	EventCustomerRegistered AuditEvent = "customer_registered"
	EventEligibilityChecked AuditEvent = "eligibility_checked"
	EventLoanOriginated     AuditEvent = "loan_originated"
	EventLoanRejected       AuditEvent = "loan_rejected"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventCustomerRegistered: CategoryCompliance,
	EventLoanOriginated:     CategoryCompliance,
	EventLoanRejected:       CategoryCompliance,
	EventEligibilityChecked: CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// Appender accepts audit events. Sinks that only forward (Kafka) implement
// Appender; queryable stores implement Store.
type Appender interface {
	Append(ctx context.Context, event Event) error
}

// Store is an Appender that can list a customer's trail.
type Store interface {
	Appender
	ListByCustomer(ctx context.Context, customerID id.CustomerID) ([]Event, error)
}
