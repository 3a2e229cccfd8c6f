// Package bank holds the bank-side records that feed reconciliation: the
// connections statements are pulled from and the incoming transactions they
// deliver.
package bank

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/apexrecon/internal/apperrors"
	"github.com/MrJamesThe3rd/apexrecon/internal/event"
)

const connectionEntity = "bank connection"

type Provider string

const (
	ProviderCGD    Provider = "cgd"
	ProviderManual Provider = "manual"
)

func (p Provider) IsValid() bool {
	switch p {
	case ProviderCGD, ProviderManual:
		return true
	default:
		return false
	}
}

// Connection is an organization's link to one bank account. SecretRef names
// the stored credential; it is never resolved here.
type Connection struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
	Provider       Provider
	AccountName    string
	AccountMask    string
	CreatedAt      time.Time
	UpdatedAt      time.Time

	secretRef string
	lastSync  *time.Time
	active    bool
}

type ConnectionParams struct {
	OrganizationID uuid.UUID
	Provider       Provider
	SecretRef      string
	AccountName    string
	AccountMask    string
}

// NewConnection returns an active connection that has never synced.
func NewConnection(id uuid.UUID, p ConnectionParams) (*Connection, error) {
	if id == uuid.Nil || p.OrganizationID == uuid.Nil {
		return nil, &apperrors.InvariantError{Entity: connectionEntity, Message: "missing identity"}
	}

	if !p.Provider.IsValid() {
		return nil, &apperrors.ValidationError{Field: "provider", Message: "unknown provider " + string(p.Provider)}
	}

	if strings.TrimSpace(p.SecretRef) == "" {
		return nil, apperrors.Required("secret_ref")
	}

	if strings.TrimSpace(p.AccountName) == "" {
		return nil, apperrors.Required("account_name")
	}

	if strings.TrimSpace(p.AccountMask) == "" {
		return nil, apperrors.Required("account_mask")
	}

	return &Connection{
		ID:             id,
		OrganizationID: p.OrganizationID,
		Provider:       p.Provider,
		AccountName:    p.AccountName,
		AccountMask:    p.AccountMask,
		secretRef:      p.SecretRef,
		active:         true,
	}, nil
}

// RestoreConnection rebuilds a persisted connection.
func RestoreConnection(id uuid.UUID, p ConnectionParams, lastSync *time.Time, active bool) (*Connection, error) {
	c, err := NewConnection(id, p)
	if err != nil {
		return nil, err
	}

	c.lastSync = lastSync
	c.active = active

	return c, nil
}

func (c *Connection) SecretRef() string    { return c.secretRef }
func (c *Connection) LastSync() *time.Time { return c.lastSync }
func (c *Connection) Active() bool         { return c.active }

func (c *Connection) status() string {
	if c.active {
		return "active"
	}

	return "revoked"
}

// RevokeAccess deactivates the connection. Transactions are no longer
// accepted from it until it is reactivated.
func (c *Connection) RevokeAccess(now time.Time) (event.Notification, error) {
	if !c.active {
		return event.Notification{}, &apperrors.InvalidTransitionError{
			Entity: connectionEntity, ID: c.ID, Status: c.status(), Operation: "revoke",
		}
	}

	revoked, err := event.New(event.TypeConnectionRevoked, c.OrganizationID, c.ID, now, event.ConnectionRevoked{
		ConnectionID: c.ID,
		Provider:     string(c.Provider),
	})
	if err != nil {
		return event.Notification{}, err
	}

	c.active = false

	return revoked, nil
}

// Reactivate swaps in a new credential and forgets the last sync, so the next
// pull starts over.
func (c *Connection) Reactivate(secretRef string) error {
	if strings.TrimSpace(secretRef) == "" {
		return apperrors.Required("secret_ref")
	}

	c.active = true
	c.secretRef = secretRef
	c.lastSync = nil

	return nil
}

func (c *Connection) UpdateLastSync(ts, now time.Time) error {
	if ts.After(now) {
		return &apperrors.ValidationError{Field: "last_sync", Message: "cannot be in the future"}
	}

	c.lastSync = &ts

	return nil
}
