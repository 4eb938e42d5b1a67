package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	id "creditline/pkg/domain"
	audit "creditline/pkg/platform/audit"
	"creditline/pkg/platform/tx"
)

// Store implements audit.Store on the audit_events table. Appends join the
// lending transaction in the context, so a loan and its loan_originated event
// commit or roll back together.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Append inserts the event. Duplicate ids are ignored so redelivery is harmless.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	eventID := event.ID
	if eventID == "" {
		eventID = uuid.NewString()
	}
	attrs, err := json.Marshal(event.Attributes)
	if err != nil {
		return fmt.Errorf("marshal audit attributes: %w", err)
	}

	var loanID sql.NullInt64
	if !event.LoanID.IsZero() {
		loanID = sql.NullInt64{Int64: int64(event.LoanID), Valid: true}
	}

	const query = `
		INSERT INTO audit_events (
			id, category, occurred_at, customer_id, loan_id, action,
			decision, reason, request_id, attributes
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO NOTHING`
	_, err = tx.Use(ctx, s.db).ExecContext(ctx, query,
		eventID,
		string(event.Category),
		event.Timestamp,
		int64(event.CustomerID),
		loanID,
		event.Action,
		event.Decision,
		event.Reason,
		event.RequestID,
		attrs,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// ListByCustomer returns a customer's events oldest first.
func (s *Store) ListByCustomer(ctx context.Context, customerID id.CustomerID) ([]audit.Event, error) {
	const query = `
		SELECT id, category, occurred_at, customer_id, loan_id, action,
			decision, reason, request_id, attributes
		FROM audit_events
		WHERE customer_id = $1
		ORDER BY occurred_at, id`
	rows, err := tx.Use(ctx, s.db).QueryContext(ctx, query, int64(customerID))
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	var events []audit.Event
	for rows.Next() {
		var (
			event      audit.Event
			category   string
			customer   int64
			loanID     sql.NullInt64
			attributes []byte
		)
		if err := rows.Scan(&event.ID, &category, &event.Timestamp, &customer, &loanID,
			&event.Action, &event.Decision, &event.Reason, &event.RequestID, &attributes); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		event.Category = audit.EventCategory(category)
		event.CustomerID = id.CustomerID(customer)
		if loanID.Valid {
			event.LoanID = id.LoanID(loanID.Int64)
		}
		if len(attributes) > 0 {
			if err := json.Unmarshal(attributes, &event.Attributes); err != nil {
				return nil, fmt.Errorf("decode audit attributes: %w", err)
			}
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}
