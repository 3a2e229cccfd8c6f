package reconciliation

import (
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/apexrecon/internal/ledger"
	"github.com/MrJamesThe3rd/apexrecon/internal/money"
	"github.com/MrJamesThe3rd/apexrecon/internal/payment"
	"github.com/MrJamesThe3rd/apexrecon/internal/reconciliation"
)

type paymentResponse struct {
	ID             uuid.UUID            `json:"id"`
	PaymentDate    string               `json:"payment_date"`
	TotalAmount    string               `json:"total_amount"`
	Allocated      string               `json:"allocated"`
	Unallocated    string               `json:"unallocated"`
	FullyAllocated bool                 `json:"fully_allocated"`
	Reference      string               `json:"reference,omitempty"`
	Allocations    []allocationResponse `json:"allocations"`
	CreatedAt      time.Time            `json:"created_at"`
}

func toPaymentResponse(p *payment.Payment) paymentResponse {
	allocs := p.Allocations()

	resp := paymentResponse{
		ID:             p.ID,
		PaymentDate:    p.PaymentDate.Format(time.DateOnly),
		TotalAmount:    money.Format(p.TotalAmount),
		Allocated:      money.Format(p.Allocated()),
		Unallocated:    money.Format(p.Unallocated()),
		FullyAllocated: p.FullyAllocated(),
		Reference:      p.Reference,
		Allocations:    make([]allocationResponse, len(allocs)),
		CreatedAt:      p.CreatedAt,
	}

	for i, a := range allocs {
		resp.Allocations[i] = toAllocationResponse(a)
	}

	return resp
}

type allocationResponse struct {
	ID                uuid.UUID `json:"id"`
	PaymentID         uuid.UUID `json:"payment_id"`
	InvoiceID         uuid.UUID `json:"invoice_id"`
	BankTransactionID uuid.UUID `json:"bank_transaction_id"`
	Amount            string    `json:"amount"`
	CreatedAt         time.Time `json:"created_at"`
}

func toAllocationResponse(a payment.Allocation) allocationResponse {
	return allocationResponse{
		ID:                a.ID,
		PaymentID:         a.PaymentID,
		InvoiceID:         a.InvoiceID,
		BankTransactionID: a.BankTransactionID,
		Amount:            money.Format(a.Amount),
		CreatedAt:         a.CreatedAt,
	}
}

type invoiceLedgerResponse struct {
	InvoiceID      uuid.UUID            `json:"invoice_id"`
	CustomerID     uuid.UUID            `json:"customer_id"`
	DueDate        string               `json:"due_date"`
	OriginalAmount string               `json:"original_amount"`
	AmountDue      string               `json:"amount_due"`
	Paid           string               `json:"paid"`
	Status         ledger.InvoiceStatus `json:"status"`
	UpdatedAt      time.Time            `json:"updated_at"`
}

func toInvoiceLedgerResponse(l *ledger.InvoiceLedger) invoiceLedgerResponse {
	return invoiceLedgerResponse{
		InvoiceID:      l.ID,
		CustomerID:     l.CustomerID,
		DueDate:        l.DueDate.Format(time.DateOnly),
		OriginalAmount: money.Format(l.OriginalAmount()),
		AmountDue:      money.Format(l.Outstanding()),
		Paid:           money.Format(l.Paid()),
		Status:         l.Status(),
		UpdatedAt:      l.UpdatedAt,
	}
}

func toInvoiceLedgerList(ledgers []*ledger.InvoiceLedger) []invoiceLedgerResponse {
	resp := make([]invoiceLedgerResponse, len(ledgers))
	for i, l := range ledgers {
		resp[i] = toInvoiceLedgerResponse(l)
	}

	return resp
}

type bankLedgerResponse struct {
	BankTransactionID uuid.UUID         `json:"bank_transaction_id"`
	TransactionDate   string            `json:"transaction_date"`
	Description       string            `json:"description"`
	RawDescription    string            `json:"raw_description,omitempty"`
	Amount            string            `json:"amount"`
	AmountUnmatched   string            `json:"amount_unmatched"`
	Matched           string            `json:"matched"`
	Status            ledger.BankStatus `json:"status"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

func toBankLedgerResponse(l *ledger.BankTransactionLedger) bankLedgerResponse {
	return bankLedgerResponse{
		BankTransactionID: l.BankTransactionID,
		TransactionDate:   l.TransactionDate.Format(time.DateOnly),
		Description:       l.Description,
		RawDescription:    l.RawDescription,
		Amount:            money.Format(l.Amount()),
		AmountUnmatched:   money.Format(l.AmountUnmatched()),
		Matched:           money.Format(l.Matched()),
		Status:            l.Status(),
		UpdatedAt:         l.UpdatedAt,
	}
}

type candidatesResponse struct {
	BankLedger          bankLedgerResponse      `json:"bank_ledger"`
	SuggestedCustomerID *uuid.UUID              `json:"suggested_customer_id,omitempty"`
	Invoices            []invoiceLedgerResponse `json:"invoices"`
}

type auditResponse struct {
	LedgerID    uuid.UUID `json:"ledger_id"`
	Consumed    string    `json:"consumed"`
	Allocated   string    `json:"allocated"`
	Allocations int       `json:"allocations"`
	Balanced    bool      `json:"balanced"`
}

func toAuditResponse(a reconciliation.Audit) auditResponse {
	return auditResponse{
		LedgerID:    a.LedgerID,
		Consumed:    money.Format(a.Consumed),
		Allocated:   money.Format(a.Allocated),
		Allocations: a.Count,
		Balanced:    a.Balanced(),
	}
}
