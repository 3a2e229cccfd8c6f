package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/apexrecon/internal/apperrors"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=ledger
type Repository interface {
	GetInvoiceLedger(ctx context.Context, id uuid.UUID) (*InvoiceLedger, error)
	ListInvoiceLedgers(ctx context.Context, filter InvoiceFilter) ([]*InvoiceLedger, error)
	GetBankLedger(ctx context.Context, bankTransactionID uuid.UUID) (*BankTransactionLedger, error)
	ListBankLedgers(ctx context.Context, filter BankFilter) ([]*BankTransactionLedger, error)
}

type InvoiceFilter struct {
	OrganizationID uuid.UUID
	CustomerID     *uuid.UUID
	Statuses       []InvoiceStatus
}

type BankFilter struct {
	OrganizationID uuid.UUID
	Statuses       []BankStatus
}

// Service is the read side of the ledgers. Writes happen through the
// invoice, bank and reconciliation services.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) GetInvoiceLedger(ctx context.Context, orgID, id uuid.UUID) (*InvoiceLedger, error) {
	l, err := s.repo.GetInvoiceLedger(ctx, id)
	if err != nil {
		return nil, err
	}

	if l.OrganizationID != orgID {
		return nil, fmt.Errorf("invoice ledger %s: %w", id, apperrors.ErrNotFound)
	}

	return l, nil
}

func (s *Service) ListInvoiceLedgers(ctx context.Context, filter InvoiceFilter) ([]*InvoiceLedger, error) {
	return s.repo.ListInvoiceLedgers(ctx, filter)
}

// OpenInvoiceLedgers lists ledgers that can still receive payments.
func (s *Service) OpenInvoiceLedgers(ctx context.Context, orgID uuid.UUID, customerID *uuid.UUID) ([]*InvoiceLedger, error) {
	return s.repo.ListInvoiceLedgers(ctx, InvoiceFilter{
		OrganizationID: orgID,
		CustomerID:     customerID,
		Statuses:       []InvoiceStatus{InvoiceOpen, InvoicePartiallyPaid},
	})
}

func (s *Service) GetBankLedger(ctx context.Context, orgID, id uuid.UUID) (*BankTransactionLedger, error) {
	l, err := s.repo.GetBankLedger(ctx, id)
	if err != nil {
		return nil, err
	}

	if l.OrganizationID != orgID {
		return nil, fmt.Errorf("bank transaction ledger %s: %w", id, apperrors.ErrNotFound)
	}

	return l, nil
}

func (s *Service) ListBankLedgers(ctx context.Context, filter BankFilter) ([]*BankTransactionLedger, error) {
	return s.repo.ListBankLedgers(ctx, filter)
}

// UnmatchedBankLedgers lists ledgers with funds left to allocate.
func (s *Service) UnmatchedBankLedgers(ctx context.Context, orgID uuid.UUID) ([]*BankTransactionLedger, error) {
	return s.repo.ListBankLedgers(ctx, BankFilter{
		OrganizationID: orgID,
		Statuses:       []BankStatus{BankUnmatched, BankPartiallyMatched},
	})
}
