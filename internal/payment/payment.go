package payment

import (
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/apexrecon/internal/apperrors"
	"github.com/MrJamesThe3rd/apexrecon/internal/money"
)

// Allocation records that part of a payment, backed by a bank transaction,
// settles part of an invoice. Allocations are values and never change.
type Allocation struct {
	ID                uuid.UUID
	PaymentID         uuid.UUID
	InvoiceID         uuid.UUID
	BankTransactionID uuid.UUID
	Amount            decimal.Decimal
	CreatedAt         time.Time
}

type AllocationParams struct {
	ID                uuid.UUID
	PaymentID         uuid.UUID
	InvoiceID         uuid.UUID
	BankTransactionID uuid.UUID
	Amount            decimal.Decimal
	CreatedAt         time.Time
}

func NewAllocation(p AllocationParams) (Allocation, error) {
	if p.ID == uuid.Nil || p.PaymentID == uuid.Nil || p.InvoiceID == uuid.Nil || p.BankTransactionID == uuid.Nil {
		return Allocation{}, &apperrors.InvariantError{Entity: "allocation", Message: "missing identity"}
	}

	if err := money.RequirePositive("amount", p.Amount); err != nil {
		return Allocation{}, err
	}

	return Allocation(p), nil
}

// Payment is money received from a customer, distributed to invoices through
// allocations. The allocated sum never exceeds TotalAmount; any remainder
// stays on account.
type Payment struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
	PaymentDate    time.Time
	TotalAmount    decimal.Decimal
	Reference      string
	CreatedAt      time.Time

	allocations []Allocation
}

type Params struct {
	OrganizationID uuid.UUID
	PaymentDate    time.Time
	TotalAmount    decimal.Decimal
	Reference      string
}

func New(id uuid.UUID, p Params) (*Payment, error) {
	if id == uuid.Nil || p.OrganizationID == uuid.Nil {
		return nil, &apperrors.InvariantError{Entity: "payment", Message: "missing identity"}
	}

	if p.PaymentDate.IsZero() {
		return nil, apperrors.Required("payment_date")
	}

	if err := money.RequirePositive("total_amount", p.TotalAmount); err != nil {
		return nil, err
	}

	return &Payment{
		ID:             id,
		OrganizationID: p.OrganizationID,
		PaymentDate:    p.PaymentDate,
		TotalAmount:    p.TotalAmount,
		Reference:      p.Reference,
	}, nil
}

// Restore rebuilds a payment with its existing allocations.
func Restore(pay *Payment, allocations []Allocation) (*Payment, error) {
	for _, a := range allocations {
		if err := pay.AddAllocation(a); err != nil {
			return nil, &apperrors.InvariantError{Entity: "payment", Message: err.Error()}
		}
	}

	return pay, nil
}

func (p *Payment) Allocations() []Allocation {
	return slices.Clone(p.allocations)
}

func (p *Payment) Allocated() decimal.Decimal {
	total := decimal.Zero
	for _, a := range p.allocations {
		total = total.Add(a.Amount)
	}

	return total
}

func (p *Payment) Unallocated() decimal.Decimal {
	return p.TotalAmount.Sub(p.Allocated())
}

func (p *Payment) FullyAllocated() bool {
	return p.Unallocated().IsZero()
}

// CheckAllocation reports the error AddAllocation would return for amount.
func (p *Payment) CheckAllocation(amount decimal.Decimal) error {
	if err := money.RequirePositive("amount", amount); err != nil {
		return err
	}

	remaining := p.Unallocated()
	if amount.GreaterThan(remaining) {
		return &apperrors.OverpaymentError{Entity: "payment", ID: p.ID, Remaining: remaining, Attempted: amount}
	}

	return nil
}

// AddAllocation appends a to the payment.
func (p *Payment) AddAllocation(a Allocation) error {
	if a.PaymentID != p.ID {
		return &apperrors.ValidationError{Field: "payment_id", Message: "allocation belongs to another payment"}
	}

	if err := p.CheckAllocation(a.Amount); err != nil {
		return err
	}

	p.allocations = append(p.allocations, a)

	return nil
}
