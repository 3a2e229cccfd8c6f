// Package reconciliation applies allocations: it moves part of a payment,
// backed by a bank transaction, onto an invoice. Each allocation changes three
// records (the allocation itself, the invoice ledger and the bank transaction
// ledger) and either all three change or none does.
package reconciliation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/apexrecon/internal/apperrors"
	"github.com/MrJamesThe3rd/apexrecon/internal/clock"
	"github.com/MrJamesThe3rd/apexrecon/internal/event"
	"github.com/MrJamesThe3rd/apexrecon/internal/identity"
	"github.com/MrJamesThe3rd/apexrecon/internal/ledger"
	"github.com/MrJamesThe3rd/apexrecon/internal/money"
	"github.com/MrJamesThe3rd/apexrecon/internal/payment"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=reconciliation
type Repository interface {
	Begin(ctx context.Context) (UnitOfWork, error)

	CreatePayment(ctx context.Context, p *payment.Payment) error
	GetPayment(ctx context.Context, id uuid.UUID) (*payment.Payment, error)
	GetInvoiceLedger(ctx context.Context, id uuid.UUID) (*ledger.InvoiceLedger, error)
	GetBankLedger(ctx context.Context, bankTransactionID uuid.UUID) (*ledger.BankTransactionLedger, error)
	ListAllocationsByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]payment.Allocation, error)
	ListAllocationsByBankTransaction(ctx context.Context, bankTransactionID uuid.UUID) ([]payment.Allocation, error)
}

// UnitOfWork is one database transaction. Lock methods hold the row until
// Commit or Rollback, so concurrent allocations touching the same ledger or
// payment run one after the other.
type UnitOfWork interface {
	LockInvoiceLedger(ctx context.Context, id uuid.UUID) (*ledger.InvoiceLedger, error)
	LockBankLedger(ctx context.Context, bankTransactionID uuid.UUID) (*ledger.BankTransactionLedger, error)
	LockPayment(ctx context.Context, id uuid.UUID) (*payment.Payment, error)

	CreateAllocation(ctx context.Context, a payment.Allocation) error
	SaveInvoiceLedger(ctx context.Context, l *ledger.InvoiceLedger) error
	SaveBankLedger(ctx context.Context, l *ledger.BankTransactionLedger) error
	AddNotifications(ctx context.Context, events []event.Notification) error

	Commit() error
	Rollback() error
}

type Service struct {
	repo  Repository
	clock clock.Clock
	ids   identity.Generator
}

func NewService(repo Repository, clk clock.Clock, ids identity.Generator) *Service {
	return &Service{repo: repo, clock: clk, ids: ids}
}

type CreatePaymentParams struct {
	OrganizationID uuid.UUID
	PaymentDate    time.Time
	TotalAmount    decimal.Decimal
	Reference      string
}

func (s *Service) CreatePayment(ctx context.Context, params CreatePaymentParams) (*payment.Payment, error) {
	p, err := payment.New(s.ids.New(), payment.Params{
		OrganizationID: params.OrganizationID,
		PaymentDate:    clock.Date(params.PaymentDate),
		TotalAmount:    params.TotalAmount,
		Reference:      params.Reference,
	})
	if err != nil {
		return nil, err
	}

	if err := s.repo.CreatePayment(ctx, p); err != nil {
		return nil, err
	}

	return p, nil
}

func (s *Service) GetPayment(ctx context.Context, orgID, id uuid.UUID) (*payment.Payment, error) {
	p, err := s.repo.GetPayment(ctx, id)
	if err != nil {
		return nil, err
	}

	if p.OrganizationID != orgID {
		return nil, fmt.Errorf("payment %s: %w", id, apperrors.ErrNotFound)
	}

	return p, nil
}

type AllocateParams struct {
	OrganizationID    uuid.UUID
	PaymentID         uuid.UUID
	InvoiceID         uuid.UUID
	BankTransactionID uuid.UUID
	Amount            decimal.Decimal
}

// Allocate applies amount from the payment and bank transaction to the
// invoice. Every balance is checked before anything is changed, and all
// writes commit together.
func (s *Service) Allocate(ctx context.Context, params AllocateParams) (payment.Allocation, error) {
	if err := money.RequirePositive("amount", params.Amount); err != nil {
		return payment.Allocation{}, err
	}

	uow, err := s.repo.Begin(ctx)
	if err != nil {
		return payment.Allocation{}, fmt.Errorf("beginning allocation: %w", err)
	}
	defer uow.Rollback()

	// Lock order is fixed: invoice ledger, bank ledger, payment.
	invLedger, err := uow.LockInvoiceLedger(ctx, params.InvoiceID)
	if err != nil {
		return payment.Allocation{}, err
	}

	bankLedger, err := uow.LockBankLedger(ctx, params.BankTransactionID)
	if err != nil {
		return payment.Allocation{}, err
	}

	pay, err := uow.LockPayment(ctx, params.PaymentID)
	if err != nil {
		return payment.Allocation{}, err
	}

	if err := sameOrganization(params, invLedger, bankLedger, pay); err != nil {
		return payment.Allocation{}, err
	}

	if err := invLedger.CheckPayment(params.Amount); err != nil {
		return payment.Allocation{}, err
	}

	if err := bankLedger.CheckAllocation(params.Amount); err != nil {
		return payment.Allocation{}, err
	}

	if err := pay.CheckAllocation(params.Amount); err != nil {
		return payment.Allocation{}, err
	}

	now := s.clock.Now()

	alloc, err := payment.NewAllocation(payment.AllocationParams{
		ID:                s.ids.New(),
		PaymentID:         pay.ID,
		InvoiceID:         invLedger.ID,
		BankTransactionID: bankLedger.BankTransactionID,
		Amount:            params.Amount,
		CreatedAt:         now,
	})
	if err != nil {
		return payment.Allocation{}, err
	}

	if err := apply(alloc, pay, invLedger, bankLedger); err != nil {
		return payment.Allocation{}, err
	}

	applied, err := event.New(event.TypeAllocationApplied, params.OrganizationID, alloc.ID, now, event.AllocationApplied{
		AllocationID:      alloc.ID,
		PaymentID:         alloc.PaymentID,
		InvoiceID:         alloc.InvoiceID,
		BankTransactionID: alloc.BankTransactionID,
		Amount:            money.Format(alloc.Amount),
		InvoicePaid:       money.Format(invLedger.Paid()),
	})
	if err != nil {
		return payment.Allocation{}, err
	}

	if err := uow.CreateAllocation(ctx, alloc); err != nil {
		return payment.Allocation{}, fmt.Errorf("creating allocation: %w", err)
	}

	if err := uow.SaveInvoiceLedger(ctx, invLedger); err != nil {
		return payment.Allocation{}, fmt.Errorf("saving invoice ledger: %w", err)
	}

	if err := uow.SaveBankLedger(ctx, bankLedger); err != nil {
		return payment.Allocation{}, fmt.Errorf("saving bank ledger: %w", err)
	}

	if err := uow.AddNotifications(ctx, []event.Notification{applied}); err != nil {
		return payment.Allocation{}, fmt.Errorf("recording notification: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return payment.Allocation{}, fmt.Errorf("committing allocation: %w", err)
	}

	return alloc, nil
}

// apply mutates the in-memory records. The balances were checked by the
// caller, so an error here means the records changed underneath us.
func apply(alloc payment.Allocation, pay *payment.Payment, inv *ledger.InvoiceLedger, bank *ledger.BankTransactionLedger) error {
	if err := pay.AddAllocation(alloc); err != nil {
		return &apperrors.InvariantError{Entity: "allocation", Message: err.Error()}
	}

	if err := inv.ApplyPayment(alloc.Amount); err != nil {
		return &apperrors.InvariantError{Entity: "allocation", Message: err.Error()}
	}

	if err := bank.ApplyAllocation(alloc.Amount); err != nil {
		return &apperrors.InvariantError{Entity: "allocation", Message: err.Error()}
	}

	return nil
}

func sameOrganization(params AllocateParams, inv *ledger.InvoiceLedger, bank *ledger.BankTransactionLedger, pay *payment.Payment) error {
	if params.OrganizationID == uuid.Nil {
		return apperrors.Required("organization_id")
	}

	if inv.OrganizationID != params.OrganizationID {
		return fmt.Errorf("invoice ledger %s: %w", inv.ID, apperrors.ErrNotFound)
	}

	if bank.OrganizationID != params.OrganizationID {
		return fmt.Errorf("bank transaction ledger %s: %w", bank.BankTransactionID, apperrors.ErrNotFound)
	}

	if pay.OrganizationID != params.OrganizationID {
		return fmt.Errorf("payment %s: %w", pay.ID, apperrors.ErrNotFound)
	}

	return nil
}

type AutoAllocateParams struct {
	OrganizationID    uuid.UUID
	PaymentID         uuid.UUID
	BankTransactionID uuid.UUID
	InvoiceIDs        []uuid.UUID
}

// AutoAllocate spreads the payment over the invoices in the given order,
// allocating to each the smallest of what the payment has left, what the bank
// transaction has left and what the invoice still owes. Each allocation is
// its own unit of work; it stops once the funds run out.
func (s *Service) AutoAllocate(ctx context.Context, params AutoAllocateParams) ([]payment.Allocation, error) {
	var allocs []payment.Allocation

	for _, invoiceID := range params.InvoiceIDs {
		amount, exhausted, err := s.allocatable(ctx, params, invoiceID)
		if err != nil {
			return allocs, err
		}

		if exhausted {
			break
		}

		if amount.IsZero() {
			continue
		}

		alloc, err := s.Allocate(ctx, AllocateParams{
			OrganizationID:    params.OrganizationID,
			PaymentID:         params.PaymentID,
			InvoiceID:         invoiceID,
			BankTransactionID: params.BankTransactionID,
			Amount:            amount,
		})
		if err != nil {
			return allocs, fmt.Errorf("allocating to invoice %s: %w", invoiceID, err)
		}

		allocs = append(allocs, alloc)
	}

	return allocs, nil
}

// allocatable reports how much can go to invoiceID, and whether the payment
// or bank transaction has nothing left at all.
func (s *Service) allocatable(ctx context.Context, params AutoAllocateParams, invoiceID uuid.UUID) (decimal.Decimal, bool, error) {
	pay, err := s.GetPayment(ctx, params.OrganizationID, params.PaymentID)
	if err != nil {
		return decimal.Zero, false, err
	}

	bank, err := s.repo.GetBankLedger(ctx, params.BankTransactionID)
	if err != nil {
		return decimal.Zero, false, err
	}

	if pay.Unallocated().IsZero() || bank.AmountUnmatched().IsZero() {
		return decimal.Zero, true, nil
	}

	inv, err := s.repo.GetInvoiceLedger(ctx, invoiceID)
	if err != nil {
		return decimal.Zero, false, err
	}

	return decimal.Min(pay.Unallocated(), bank.AmountUnmatched(), inv.Outstanding()), false, nil
}

// Audit compares a ledger's consumed amount with the sum of its allocations.
type Audit struct {
	LedgerID  uuid.UUID
	Consumed  decimal.Decimal
	Allocated decimal.Decimal
	Count     int
}

func (a Audit) Balanced() bool {
	return a.Consumed.Equal(a.Allocated)
}

// AuditInvoice checks that the allocations for an invoice add up to
// original amount minus amount due.
func (s *Service) AuditInvoice(ctx context.Context, orgID, invoiceID uuid.UUID) (Audit, error) {
	l, err := s.repo.GetInvoiceLedger(ctx, invoiceID)
	if err != nil {
		return Audit{}, err
	}

	if l.OrganizationID != orgID {
		return Audit{}, fmt.Errorf("invoice ledger %s: %w", invoiceID, apperrors.ErrNotFound)
	}

	allocs, err := s.repo.ListAllocationsByInvoice(ctx, invoiceID)
	if err != nil {
		return Audit{}, fmt.Errorf("listing allocations: %w", err)
	}

	return audit("invoice ledger", invoiceID, l.Paid(), allocs)
}

func (s *Service) AuditBankTransaction(ctx context.Context, orgID, bankTransactionID uuid.UUID) (Audit, error) {
	l, err := s.repo.GetBankLedger(ctx, bankTransactionID)
	if err != nil {
		return Audit{}, err
	}

	if l.OrganizationID != orgID {
		return Audit{}, fmt.Errorf("bank transaction ledger %s: %w", bankTransactionID, apperrors.ErrNotFound)
	}

	allocs, err := s.repo.ListAllocationsByBankTransaction(ctx, bankTransactionID)
	if err != nil {
		return Audit{}, fmt.Errorf("listing allocations: %w", err)
	}

	return audit("bank transaction ledger", bankTransactionID, l.Matched(), allocs)
}

func audit(entity string, id uuid.UUID, consumed decimal.Decimal, allocs []payment.Allocation) (Audit, error) {
	a := Audit{LedgerID: id, Consumed: consumed, Allocated: decimal.Zero, Count: len(allocs)}

	for _, alloc := range allocs {
		a.Allocated = a.Allocated.Add(alloc.Amount)
	}

	if !a.Balanced() {
		return a, &apperrors.InvariantError{
			Entity: entity,
			Message: fmt.Sprintf("%s: allocations total %s but ledger consumed %s",
				id, money.Format(a.Allocated), money.Format(a.Consumed)),
		}
	}

	return a, nil
}
