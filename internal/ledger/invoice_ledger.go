package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/apexrecon/internal/apperrors"
	"github.com/MrJamesThe3rd/apexrecon/internal/money"
)

const invoiceLedgerEntity = "invoice ledger"

type InvoiceStatus string

const (
	InvoiceOpen          InvoiceStatus = "OPEN"
	InvoicePartiallyPaid InvoiceStatus = "PARTIALLY_PAID"
	InvoicePaid          InvoiceStatus = "PAID"
	// InvoiceVoid closes the ledger of a voided invoice. Its balance is kept
	// for auditing but is no longer owed.
	InvoiceVoid InvoiceStatus = "VOID"
)

// InvoiceLedger is the payable balance of one invoice. It shares the invoice's id.
type InvoiceLedger struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
	CustomerID     uuid.UUID
	DueDate        time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time

	originalAmount decimal.Decimal
	amountDue      decimal.Decimal
	void           bool
}

type InvoiceLedgerParams struct {
	InvoiceID      uuid.UUID
	OrganizationID uuid.UUID
	CustomerID     uuid.UUID
	DueDate        time.Time
	Amount         decimal.Decimal
}

// OpenInvoiceLedger starts a ledger owing the full invoice amount.
func OpenInvoiceLedger(p InvoiceLedgerParams) (*InvoiceLedger, error) {
	if p.InvoiceID == uuid.Nil || p.OrganizationID == uuid.Nil {
		return nil, &apperrors.InvariantError{Entity: invoiceLedgerEntity, Message: "missing identity"}
	}

	if err := money.RequireNonNegative("amount", p.Amount); err != nil {
		return nil, err
	}

	return &InvoiceLedger{
		ID:             p.InvoiceID,
		OrganizationID: p.OrganizationID,
		CustomerID:     p.CustomerID,
		DueDate:        p.DueDate,
		originalAmount: p.Amount,
		amountDue:      p.Amount,
	}, nil
}

// RestoreInvoiceLedger rebuilds a ledger from persisted balances.
func RestoreInvoiceLedger(p InvoiceLedgerParams, amountDue decimal.Decimal) (*InvoiceLedger, error) {
	l, err := OpenInvoiceLedger(p)
	if err != nil {
		return nil, err
	}

	if err := checkBounds(invoiceLedgerEntity, p.Amount, amountDue); err != nil {
		return nil, err
	}

	l.amountDue = amountDue

	return l, nil
}

func (l *InvoiceLedger) OriginalAmount() decimal.Decimal { return l.originalAmount }
func (l *InvoiceLedger) AmountDue() decimal.Decimal      { return l.amountDue }

// Outstanding is what can still be collected: the amount due, or zero once void.
func (l *InvoiceLedger) Outstanding() decimal.Decimal {
	if l.void {
		return decimal.Zero
	}

	return l.amountDue
}

// Paid is how much has been applied so far.
func (l *InvoiceLedger) Paid() decimal.Decimal {
	return l.originalAmount.Sub(l.amountDue)
}

func (l *InvoiceLedger) Status() InvoiceStatus {
	switch {
	case l.void:
		return InvoiceVoid
	case l.amountDue.IsZero():
		return InvoicePaid
	case l.amountDue.LessThan(l.originalAmount):
		return InvoicePartiallyPaid
	default:
		return InvoiceOpen
	}
}

// CheckPayment reports the error ApplyPayment would return, without applying.
func (l *InvoiceLedger) CheckPayment(amount decimal.Decimal) error {
	status := l.Status()
	return drawDown(invoiceLedgerEntity, l.ID, string(status), status == InvoicePaid || status == InvoiceVoid, l.amountDue, amount)
}

func (l *InvoiceLedger) ApplyPayment(amount decimal.Decimal) error {
	if err := l.CheckPayment(amount); err != nil {
		return err
	}

	l.amountDue = l.amountDue.Sub(amount)

	return nil
}

// Void closes the ledger so it accepts no further payments. A fully paid
// ledger cannot be voided.
func (l *InvoiceLedger) Void() error {
	if status := l.Status(); status == InvoicePaid || status == InvoiceVoid {
		return &apperrors.InvalidTransitionError{Entity: invoiceLedgerEntity, ID: l.ID, Status: string(status), Operation: "void"}
	}

	l.void = true

	return nil
}
