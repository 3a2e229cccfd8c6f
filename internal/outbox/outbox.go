// Package outbox delivers domain notifications after the transaction that
// produced them has committed. Stores write notifications into the
// outbox_events table in the same SQL transaction as the state change; the
// Dispatcher later claims pending rows and hands them to registered handlers.
package outbox

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/apexrecon/internal/event"
)

type Status string

const (
	StatusPending    Status = "PENDING"
	StatusProcessing Status = "PROCESSING"
	StatusPublished  Status = "PUBLISHED"
	StatusFailed     Status = "FAILED"
	StatusDead       Status = "DEAD"
)

// Event is a stored notification with its delivery state.
type Event struct {
	event.Notification

	Status      Status
	Attempts    int
	LastError   string
	PublishedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

//go:generate mockgen -source=outbox.go -destination=repository_mock.go -package=outbox
type Repository interface {
	// ClaimPending moves up to limit deliverable events to PROCESSING and returns them.
	ClaimPending(ctx context.Context, limit, maxAttempts int) ([]*Event, error)
	MarkPublished(ctx context.Context, id uuid.UUID, at time.Time) error
	// MarkFailed records a failed attempt. Events reaching maxAttempts become DEAD.
	MarkFailed(ctx context.Context, id uuid.UUID, errMsg string, maxAttempts int) error
	// ResetStuck returns PROCESSING events untouched since before to PENDING.
	ResetStuck(ctx context.Context, before time.Time) (int, error)
}
