package worker

import (
	"context"
	"log/slog"

	audit "creditline/pkg/platform/audit"
)

// Worker consumes audit events from a channel and appends them to a sink.
// Append failures are logged and the worker moves on; audit delivery never
// blocks lending operations.
type Worker struct {
	store  audit.Appender
	inbox  <-chan audit.Event
	logger *slog.Logger
}

func NewWorker(store audit.Appender, inbox <-chan audit.Event, logger *slog.Logger) *Worker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker{store: store, inbox: inbox, logger: logger}
}

// Run processes events until the inbox is closed and drained, or ctx is done.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.inbox:
			if !ok {
				return nil
			}
			if err := w.store.Append(ctx, event); err != nil {
				w.logger.ErrorContext(ctx, "failed to append audit event",
					"action", event.Action,
					"customer_id", event.CustomerID,
					"request_id", event.RequestID,
					"error", err,
				)
			}
		}
	}
}
