package invoice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/apexrecon/internal/apperrors"
	"github.com/MrJamesThe3rd/apexrecon/internal/clock"
	"github.com/MrJamesThe3rd/apexrecon/internal/event"
	"github.com/MrJamesThe3rd/apexrecon/internal/identity"
	"github.com/MrJamesThe3rd/apexrecon/internal/ledger"
	"github.com/MrJamesThe3rd/apexrecon/internal/money"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=invoice
type Repository interface {
	CreateInvoice(ctx context.Context, inv *Invoice) error
	GetInvoice(ctx context.Context, id uuid.UUID) (*Invoice, error)
	ListInvoices(ctx context.Context, filter ListFilter) ([]*Invoice, error)

	// UpdateInvoice persists inv if its Version still matches the stored row,
	// writing events to the outbox in the same transaction.
	UpdateInvoice(ctx context.Context, inv *Invoice, events []event.Notification) error

	// SendInvoice updates inv and opens its ledger atomically.
	SendInvoice(ctx context.Context, inv *Invoice, l *ledger.InvoiceLedger, events []event.Notification) error

	// UpdateWithLedger locks the ledger of inv, runs apply on it and persists
	// both with events in one transaction. An error from apply aborts the write.
	UpdateWithLedger(ctx context.Context, inv *Invoice, apply func(*ledger.InvoiceLedger) error, events []event.Notification) error
}

type Service struct {
	repo  Repository
	clock clock.Clock
	ids   identity.Generator
}

func NewService(repo Repository, clk clock.Clock, ids identity.Generator) *Service {
	return &Service{repo: repo, clock: clk, ids: ids}
}

type CreateParams struct {
	OrganizationID uuid.UUID
	CustomerID     uuid.UUID
	IssueDate      time.Time
	DueDate        time.Time
	Items          []ItemParams
}

type ListFilter struct {
	OrganizationID uuid.UUID
	CustomerID     *uuid.UUID
	Statuses       []Status
	DueBefore      *time.Time
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Invoice, error) {
	items, err := s.newItems(params.Items)
	if err != nil {
		return nil, err
	}

	inv, err := New(s.ids.New(), Params{
		OrganizationID: params.OrganizationID,
		CustomerID:     params.CustomerID,
		IssueDate:      params.IssueDate,
		DueDate:        params.DueDate,
		Items:          items,
	})
	if err != nil {
		return nil, err
	}

	if err := s.repo.CreateInvoice(ctx, inv); err != nil {
		return nil, err
	}

	return inv, nil
}

// Get returns the invoice if it belongs to orgID.
func (s *Service) Get(ctx context.Context, orgID, id uuid.UUID) (*Invoice, error) {
	inv, err := s.repo.GetInvoice(ctx, id)
	if err != nil {
		return nil, err
	}

	if inv.OrganizationID != orgID {
		return nil, fmt.Errorf("invoice %s: %w", id, apperrors.ErrNotFound)
	}

	return inv, nil
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Invoice, error) {
	return s.repo.ListInvoices(ctx, filter)
}

func (s *Service) AddItem(ctx context.Context, orgID, id uuid.UUID, params ItemParams) (*Invoice, error) {
	item, err := NewItem(s.ids.New(), params)
	if err != nil {
		return nil, err
	}

	return s.mutate(ctx, orgID, id, func(inv *Invoice) ([]event.Notification, error) {
		return nil, inv.AddItem(item)
	})
}

func (s *Service) RemoveItem(ctx context.Context, orgID, id, itemID uuid.UUID) (*Invoice, error) {
	return s.mutate(ctx, orgID, id, func(inv *Invoice) ([]event.Notification, error) {
		return nil, inv.RemoveItem(itemID)
	})
}

// Send issues the invoice and opens its ledger with the final total.
func (s *Service) Send(ctx context.Context, orgID, id uuid.UUID) (*Invoice, error) {
	inv, err := s.Get(ctx, orgID, id)
	if err != nil {
		return nil, err
	}

	if err := inv.MarkAsSent(); err != nil {
		return nil, err
	}

	l, err := ledger.OpenInvoiceLedger(ledger.InvoiceLedgerParams{
		InvoiceID:      inv.ID,
		OrganizationID: inv.OrganizationID,
		CustomerID:     inv.CustomerID,
		DueDate:        inv.DueDate,
		Amount:         inv.TotalAmount(),
	})
	if err != nil {
		return nil, err
	}

	sent, err := event.New(event.TypeInvoiceSent, inv.OrganizationID, inv.ID, s.clock.Now(), event.InvoiceSent{
		InvoiceID:   inv.ID,
		TotalAmount: money.Format(inv.TotalAmount()),
		DueDate:     inv.DueDate.Format(time.DateOnly),
	})
	if err != nil {
		return nil, err
	}

	if err := s.repo.SendInvoice(ctx, inv, l, []event.Notification{sent}); err != nil {
		return nil, fmt.Errorf("sending invoice: %w", err)
	}

	return inv, nil
}

// MarkPaid settles a sent invoice whose ledger has already been paid in full
// by allocations. Payments are only ever taken through the ledger, so an
// invoice with an outstanding ledger balance cannot be marked paid.
func (s *Service) MarkPaid(ctx context.Context, orgID, id uuid.UUID) (*Invoice, error) {
	inv, err := s.Get(ctx, orgID, id)
	if err != nil {
		return nil, err
	}

	if inv.Status() == StatusDraft {
		return nil, inv.invalid("mark as paid")
	}

	if err := inv.MarkAsPaid(s.clock.Now()); err != nil {
		return nil, err
	}

	settled := func(l *ledger.InvoiceLedger) error {
		if status := l.Status(); status != ledger.InvoicePaid {
			return &apperrors.InvalidTransitionError{Entity: "invoice ledger", ID: l.ID, Status: string(status), Operation: "mark as paid"}
		}

		return nil
	}

	if err := s.repo.UpdateWithLedger(ctx, inv, settled, nil); err != nil {
		return nil, fmt.Errorf("marking invoice paid: %w", err)
	}

	return inv, nil
}

// Void cancels the invoice. Once sent, its ledger is voided in the same
// transaction so no further allocation can reach it.
func (s *Service) Void(ctx context.Context, orgID, id uuid.UUID, reason string) (*Invoice, error) {
	inv, err := s.Get(ctx, orgID, id)
	if err != nil {
		return nil, err
	}

	draft := inv.Status() == StatusDraft

	n, err := inv.Void(reason, s.clock.Now())
	if err != nil {
		return nil, err
	}

	events := []event.Notification{n}

	if draft {
		err = s.repo.UpdateInvoice(ctx, inv, events)
	} else {
		err = s.repo.UpdateWithLedger(ctx, inv, (*ledger.InvoiceLedger).Void, events)
	}

	if err != nil {
		return nil, fmt.Errorf("voiding invoice: %w", err)
	}

	return inv, nil
}

// MarkOverdue runs the overdue check for one invoice and reports whether it changed.
func (s *Service) MarkOverdue(ctx context.Context, orgID, id uuid.UUID) (bool, error) {
	inv, err := s.Get(ctx, orgID, id)
	if err != nil {
		return false, err
	}

	if !inv.MarkAsOverdue(s.clock.Now()) {
		return false, nil
	}

	if err := s.repo.UpdateInvoice(ctx, inv, nil); err != nil {
		return false, fmt.Errorf("updating invoice: %w", err)
	}

	return true, nil
}

// MarkOverdueBatch runs the overdue check as of asOf for every open invoice of
// the organization. Invoices modified concurrently are skipped.
func (s *Service) MarkOverdueBatch(ctx context.Context, orgID uuid.UUID, asOf time.Time) ([]*Invoice, error) {
	invs, err := s.repo.ListInvoices(ctx, ListFilter{
		OrganizationID: orgID,
		Statuses:       []Status{StatusSent, StatusPartiallyPaid},
		DueBefore:      new(clock.Date(asOf)),
	})
	if err != nil {
		return nil, fmt.Errorf("listing open invoices: %w", err)
	}

	var changed []*Invoice

	for _, inv := range invs {
		if !inv.MarkAsOverdue(asOf) {
			continue
		}

		if err := s.repo.UpdateInvoice(ctx, inv, nil); err != nil {
			if errors.Is(err, apperrors.ErrConflict) {
				slog.Warn("skipping invoice modified during overdue sweep", "invoice_id", inv.ID)
				continue
			}

			return changed, fmt.Errorf("updating invoice %s: %w", inv.ID, err)
		}

		changed = append(changed, inv)
	}

	return changed, nil
}

// HandleAllocationApplied mirrors a reconciliation allocation onto the invoice.
// It applies only the difference between the ledger's paid amount and what the
// invoice already reflects. The invoice never reflects more than its ledger, so
// a non-positive difference means the event was already applied.
func (s *Service) HandleAllocationApplied(ctx context.Context, n event.Notification) error {
	var payload event.AllocationApplied
	if err := n.Decode(&payload); err != nil {
		return err
	}

	ledgerPaid, err := money.Parse(payload.InvoicePaid)
	if err != nil {
		return err
	}

	inv, err := s.Get(ctx, n.OrganizationID, payload.InvoiceID)
	if err != nil {
		return err
	}

	delta := ledgerPaid.Sub(inv.TotalAmount().Sub(inv.AmountDue()))
	if !delta.IsPositive() {
		return nil
	}

	err = inv.ApplyPartialPayment(delta, n.OccurredAt)
	if errors.Is(err, apperrors.ErrInvalidTransition) || errors.Is(err, apperrors.ErrOverpayment) {
		slog.Warn("allocation not mirrored onto invoice",
			"invoice_id", payload.InvoiceID, "allocation_id", payload.AllocationID, "error", err)

		return nil
	}

	if err != nil {
		return err
	}

	if err := s.repo.UpdateInvoice(ctx, inv, nil); err != nil {
		return fmt.Errorf("updating invoice: %w", err)
	}

	return nil
}

func (s *Service) mutate(ctx context.Context, orgID, id uuid.UUID, fn func(*Invoice) ([]event.Notification, error)) (*Invoice, error) {
	inv, err := s.Get(ctx, orgID, id)
	if err != nil {
		return nil, err
	}

	events, err := fn(inv)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateInvoice(ctx, inv, events); err != nil {
		return nil, fmt.Errorf("updating invoice: %w", err)
	}

	return inv, nil
}

func (s *Service) newItems(params []ItemParams) ([]*Item, error) {
	items := make([]*Item, 0, len(params))

	for i, p := range params {
		item, err := NewItem(s.ids.New(), p)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i+1, err)
		}

		items = append(items, item)
	}

	return items, nil
}
