package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/apexrecon/internal/event"
	"github.com/MrJamesThe3rd/apexrecon/internal/outbox"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Execer is satisfied by *sql.DB and *sql.Tx.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Insert writes events as PENDING. Callers pass the *sql.Tx of the state
// change the events describe.
func Insert(ctx context.Context, tx Execer, events []event.Notification) error {
	query := `
		INSERT INTO outbox_events (id, event_type, organization_id, aggregate_id, payload, status, occurred_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
	`

	for _, e := range events {
		_, err := tx.ExecContext(ctx, query,
			e.ID,
			e.Type,
			e.OrganizationID,
			e.AggregateID,
			[]byte(e.Payload),
			outbox.StatusPending,
			e.OccurredAt,
		)
		if err != nil {
			return fmt.Errorf("inserting outbox event %s: %w", e.Type, err)
		}
	}

	return nil
}

func (s *Store) ClaimPending(ctx context.Context, limit, maxAttempts int) ([]*outbox.Event, error) {
	query := `
		UPDATE outbox_events
		SET status = $1, updated_at = NOW()
		WHERE id IN (
			SELECT id FROM outbox_events
			WHERE status IN ($2, $3) AND attempts < $4
			ORDER BY created_at ASC
			LIMIT $5
			FOR UPDATE SKIP LOCKED
		)
		RETURNING id, event_type, organization_id, aggregate_id, payload, status, attempts,
			last_error, occurred_at, published_at, created_at, updated_at
	`

	rows, err := s.db.QueryContext(ctx, query,
		outbox.StatusProcessing, outbox.StatusPending, outbox.StatusFailed, maxAttempts, limit)
	if err != nil {
		return nil, fmt.Errorf("claiming outbox events: %w", err)
	}
	defer rows.Close()

	var events []*outbox.Event

	for rows.Next() {
		var (
			e         outbox.Event
			eventType string
			status    string
			payload   []byte
			lastError sql.NullString
		)

		if err := rows.Scan(
			&e.ID, &eventType, &e.OrganizationID, &e.AggregateID, &payload, &status, &e.Attempts,
			&lastError, &e.OccurredAt, &e.PublishedAt, &e.CreatedAt, &e.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning outbox event: %w", err)
		}

		e.Type = event.Type(eventType)
		e.Status = outbox.Status(status)
		e.Payload = payload
		e.LastError = lastError.String

		events = append(events, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating outbox rows: %w", err)
	}

	return events, nil
}

func (s *Store) MarkPublished(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := `
		UPDATE outbox_events
		SET status = $1, published_at = $2, last_error = NULL, updated_at = NOW()
		WHERE id = $3
	`

	if _, err := s.db.ExecContext(ctx, query, outbox.StatusPublished, at, id); err != nil {
		return fmt.Errorf("marking event published: %w", err)
	}

	return nil
}

func (s *Store) MarkFailed(ctx context.Context, id uuid.UUID, errMsg string, maxAttempts int) error {
	query := `
		UPDATE outbox_events
		SET attempts = attempts + 1,
			last_error = $1,
			status = CASE WHEN attempts + 1 >= $2 THEN $3 ELSE $4 END,
			updated_at = NOW()
		WHERE id = $5
	`

	_, err := s.db.ExecContext(ctx, query, errMsg, maxAttempts, outbox.StatusDead, outbox.StatusFailed, id)
	if err != nil {
		return fmt.Errorf("marking event failed: %w", err)
	}

	return nil
}

func (s *Store) ResetStuck(ctx context.Context, before time.Time) (int, error) {
	query := `
		UPDATE outbox_events
		SET status = $1, updated_at = NOW()
		WHERE status = $2 AND updated_at < $3
	`

	res, err := s.db.ExecContext(ctx, query, outbox.StatusPending, outbox.StatusProcessing, before)
	if err != nil {
		return 0, fmt.Errorf("resetting stuck events: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting reset events: %w", err)
	}

	return int(n), nil
}
