package service

import (
	"context"

	id "creditline/pkg/domain"
	audit "creditline/pkg/platform/audit"
	"creditline/pkg/requestcontext"
)

// emitAudit logs the event and hands it to the publisher. Publisher failures
// are logged and never fail the operation.
func (s *Service) emitAudit(ctx context.Context, event audit.Event) {
	event.RequestID = requestcontext.RequestID(ctx)
	if s.logger != nil {
		s.logger.InfoContext(ctx, event.Action,
			"customer_id", event.CustomerID,
			"decision", event.Decision,
			"request_id", event.RequestID,
			"log_type", "audit",
		)
	}
	if s.auditor == nil {
		return
	}
	if err := s.auditor.Emit(ctx, event); err != nil && s.logger != nil {
		s.logger.ErrorContext(ctx, "failed to emit audit event",
			"action", event.Action,
			"customer_id", event.CustomerID,
			"error", err,
		)
	}
}

func newAuditEvent(kind audit.AuditEvent, customerID id.CustomerID, decision string) audit.Event {
	return audit.Event{
		Category:   kind.Category(),
		CustomerID: customerID,
		Action:     string(kind),
		Decision:   decision,
	}
}
