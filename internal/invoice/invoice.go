package invoice

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/apexrecon/internal/apperrors"
	"github.com/MrJamesThe3rd/apexrecon/internal/clock"
	"github.com/MrJamesThe3rd/apexrecon/internal/event"
	"github.com/MrJamesThe3rd/apexrecon/internal/money"
)

const entity = "invoice"

// Invoice is a bill issued to a customer. Amounts and status only change
// through its methods; TotalAmount always equals the sum of its items.
type Invoice struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
	CustomerID     uuid.UUID
	IssueDate      time.Time
	DueDate        time.Time
	Version        int
	CreatedAt      time.Time
	UpdatedAt      time.Time

	items       []*Item
	totalAmount decimal.Decimal
	amountDue   decimal.Decimal
	status      Status
	paymentDate *time.Time
	voidReason  string
}

type Params struct {
	OrganizationID uuid.UUID
	CustomerID     uuid.UUID
	IssueDate      time.Time
	DueDate        time.Time
	Items          []*Item
}

// New creates a DRAFT invoice whose amount due equals its total.
func New(id uuid.UUID, p Params) (*Invoice, error) {
	if id == uuid.Nil || p.OrganizationID == uuid.Nil {
		return nil, &apperrors.InvariantError{Entity: entity, Message: "missing identity"}
	}

	if p.CustomerID == uuid.Nil {
		return nil, apperrors.Required("customer_id")
	}

	if p.IssueDate.IsZero() {
		return nil, apperrors.Required("issue_date")
	}

	if p.DueDate.IsZero() {
		return nil, apperrors.Required("due_date")
	}

	if p.DueDate.Before(p.IssueDate) {
		return nil, &apperrors.ValidationError{Field: "due_date", Message: "must not be before issue_date"}
	}

	if len(p.Items) == 0 {
		return nil, &apperrors.ValidationError{Field: "items", Message: "at least one item is required"}
	}

	inv := &Invoice{
		ID:             id,
		OrganizationID: p.OrganizationID,
		CustomerID:     p.CustomerID,
		IssueDate:      clock.Date(p.IssueDate),
		DueDate:        clock.Date(p.DueDate),
		items:          slices.Clone(p.Items),
		status:         StatusDraft,
	}
	inv.recalculate()

	return inv, nil
}

// Snapshot carries persisted invoice state back into the domain.
type Snapshot struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
	CustomerID     uuid.UUID
	Items          []*Item
	TotalAmount    decimal.Decimal
	AmountDue      decimal.Decimal
	Status         Status
	IssueDate      time.Time
	DueDate        time.Time
	PaymentDate    *time.Time
	VoidReason     string
	Version        int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Restore rebuilds an invoice from storage, rejecting states the methods
// could never have produced.
func Restore(s Snapshot) (*Invoice, error) {
	if !s.Status.IsValid() {
		return nil, &apperrors.InvariantError{Entity: entity, Message: fmt.Sprintf("unknown status %q", s.Status)}
	}

	total := money.Sum(itemTotals(s.Items)...)
	if !total.Equal(s.TotalAmount) {
		return nil, &apperrors.InvariantError{
			Entity:  entity,
			Message: fmt.Sprintf("total %s does not match items %s", money.Format(s.TotalAmount), money.Format(total)),
		}
	}

	if s.AmountDue.IsNegative() || s.AmountDue.GreaterThan(s.TotalAmount) {
		return nil, &apperrors.InvariantError{Entity: entity, Message: "amount due outside [0, total]"}
	}

	return &Invoice{
		ID:             s.ID,
		OrganizationID: s.OrganizationID,
		CustomerID:     s.CustomerID,
		IssueDate:      s.IssueDate,
		DueDate:        s.DueDate,
		Version:        s.Version,
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
		items:          slices.Clone(s.Items),
		totalAmount:    s.TotalAmount,
		amountDue:      s.AmountDue,
		status:         s.Status,
		paymentDate:    s.PaymentDate,
		voidReason:     s.VoidReason,
	}, nil
}

func (inv *Invoice) Items() []*Item               { return slices.Clone(inv.items) }
func (inv *Invoice) TotalAmount() decimal.Decimal { return inv.totalAmount }
func (inv *Invoice) AmountDue() decimal.Decimal   { return inv.amountDue }
func (inv *Invoice) Status() Status               { return inv.status }
func (inv *Invoice) PaymentDate() *time.Time      { return inv.paymentDate }
func (inv *Invoice) VoidReason() string           { return inv.voidReason }

func (inv *Invoice) AddItem(item *Item) error {
	if err := inv.requireStatus("add item", StatusDraft); err != nil {
		return err
	}

	inv.items = append(inv.items, item)
	inv.recalculate()

	return nil
}

func (inv *Invoice) RemoveItem(itemID uuid.UUID) error {
	if err := inv.requireStatus("remove item", StatusDraft); err != nil {
		return err
	}

	idx := slices.IndexFunc(inv.items, func(it *Item) bool { return it.ID() == itemID })
	if idx < 0 {
		return fmt.Errorf("item %s: %w", itemID, apperrors.ErrNotFound)
	}

	if len(inv.items) == 1 {
		return &apperrors.ValidationError{Field: "items", Message: "cannot remove the last item"}
	}

	inv.items = slices.Delete(inv.items, idx, idx+1)
	inv.recalculate()

	return nil
}

func (inv *Invoice) MarkAsSent() error {
	return inv.transition("send", StatusSent, StatusDraft)
}

// MarkAsPaid settles the whole remaining amount.
func (inv *Invoice) MarkAsPaid(now time.Time) error {
	if err := inv.requirePayable("mark as paid"); err != nil {
		return err
	}

	inv.amountDue = decimal.Zero
	inv.status = StatusPaid
	inv.stampPayment(now)

	return nil
}

// ApplyPartialPayment reduces the amount due. Reaching zero settles the invoice.
func (inv *Invoice) ApplyPartialPayment(amount decimal.Decimal, now time.Time) error {
	if err := inv.requirePayable("apply payment"); err != nil {
		return err
	}

	if err := money.RequirePositive("amount", amount); err != nil {
		return err
	}

	newDue := inv.amountDue.Sub(amount)
	if newDue.IsNegative() {
		return &apperrors.OverpaymentError{Entity: entity, ID: inv.ID, Remaining: inv.amountDue, Attempted: amount}
	}

	inv.amountDue = newDue
	inv.status = StatusPartiallyPaid

	if newDue.IsZero() {
		inv.status = StatusPaid
	}

	inv.stampPayment(now)

	return nil
}

// MarkAsOverdue moves a SENT or PARTIALLY_PAID invoice to OVERDUE once the
// due date has passed. It reports whether the status changed and is a no-op
// otherwise.
func (inv *Invoice) MarkAsOverdue(now time.Time) bool {
	if !inv.status.CanBecomeOverdue() {
		return false
	}

	if !clock.Date(now).After(inv.DueDate) {
		return false
	}

	inv.status = StatusOverdue

	return true
}

// Void cancels the invoice. The returned notification must be handed to the
// outbox by the caller.
func (inv *Invoice) Void(reason string, now time.Time) (event.Notification, error) {
	if inv.status == StatusPaid {
		return event.Notification{}, inv.invalid("void")
	}

	reason = strings.TrimSpace(reason)
	if reason == "" {
		return event.Notification{}, &apperrors.ValidationError{Field: "reason", Message: "must not be blank"}
	}

	inv.status = StatusVoid
	inv.amountDue = decimal.Zero
	inv.voidReason = reason

	return event.New(event.TypeInvoiceVoided, inv.OrganizationID, inv.ID, now, event.InvoiceVoided{
		InvoiceID: inv.ID,
		Reason:    reason,
	})
}

func (inv *Invoice) requirePayable(op string) error {
	if !inv.status.AcceptsPayment() {
		return inv.invalid(op)
	}

	return nil
}

func (inv *Invoice) requireStatus(op string, allowed ...Status) error {
	if !slices.Contains(allowed, inv.status) {
		return inv.invalid(op)
	}

	return nil
}

func (inv *Invoice) transition(op string, to Status, from ...Status) error {
	if err := inv.requireStatus(op, from...); err != nil {
		return err
	}

	inv.status = to

	return nil
}

func (inv *Invoice) invalid(op string) error {
	return &apperrors.InvalidTransitionError{Entity: entity, ID: inv.ID, Status: string(inv.status), Operation: op}
}

func (inv *Invoice) stampPayment(now time.Time) {
	inv.paymentDate = new(clock.Date(now))
}

func (inv *Invoice) recalculate() {
	inv.totalAmount = money.Sum(itemTotals(inv.items)...)

	if inv.status == StatusDraft {
		inv.amountDue = inv.totalAmount
	}
}

func itemTotals(items []*Item) []decimal.Decimal {
	totals := make([]decimal.Decimal, len(items))
	for i, it := range items {
		totals[i] = it.Total()
	}

	return totals
}
