// Package event defines the notifications that domain operations hand back to
// their callers. Entities never publish anything themselves: a service
// receives the Notification value and persists it to the outbox alongside the
// state change that produced it.
package event

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	TypeInvoiceSent           Type = "invoice.sent"
	TypeInvoiceVoided         Type = "invoice.voided"
	TypeConnectionRevoked     Type = "bank_connection.revoked"
	TypeAllocationApplied     Type = "allocation.applied"
	TypeBankTransactionsAdded Type = "bank_transactions.ingested"
)

type Notification struct {
	ID             uuid.UUID
	Type           Type
	OrganizationID uuid.UUID
	AggregateID    uuid.UUID
	OccurredAt     time.Time
	Payload        json.RawMessage
}

// New builds a notification with a JSON-encoded payload.
func New(t Type, orgID, aggregateID uuid.UUID, at time.Time, payload any) (Notification, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Notification{}, fmt.Errorf("encoding %s payload: %w", t, err)
	}

	return Notification{
		ID:             uuid.New(),
		Type:           t,
		OrganizationID: orgID,
		AggregateID:    aggregateID,
		OccurredAt:     at,
		Payload:        raw,
	}, nil
}

// Must is New for payloads that are known to encode.
func Must(t Type, orgID, aggregateID uuid.UUID, at time.Time, payload any) Notification {
	n, err := New(t, orgID, aggregateID, at, payload)
	if err != nil {
		panic(err)
	}

	return n
}

// Decode unmarshals the payload into dst.
func (n Notification) Decode(dst any) error {
	if err := json.Unmarshal(n.Payload, dst); err != nil {
		return fmt.Errorf("decoding %s payload: %w", n.Type, err)
	}

	return nil
}

type InvoiceVoided struct {
	InvoiceID uuid.UUID `json:"invoice_id"`
	Reason    string    `json:"reason"`
}

type InvoiceSent struct {
	InvoiceID   uuid.UUID `json:"invoice_id"`
	TotalAmount string    `json:"total_amount"`
	DueDate     string    `json:"due_date"`
}

type ConnectionRevoked struct {
	ConnectionID uuid.UUID `json:"connection_id"`
	Provider     string    `json:"provider"`
}

type AllocationApplied struct {
	AllocationID      uuid.UUID `json:"allocation_id"`
	PaymentID         uuid.UUID `json:"payment_id"`
	InvoiceID         uuid.UUID `json:"invoice_id"`
	BankTransactionID uuid.UUID `json:"bank_transaction_id"`
	Amount            string    `json:"amount"`
	// InvoicePaid is the invoice ledger's cumulative paid amount after this allocation.
	InvoicePaid string `json:"invoice_paid"`
}

type BankTransactionsIngested struct {
	ConnectionID uuid.UUID   `json:"connection_id"`
	Transactions []uuid.UUID `json:"transactions"`
}
