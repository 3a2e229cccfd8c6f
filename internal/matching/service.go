// Package matching learns which customer a bank transaction's raw text
// belongs to and proposes the invoices it most likely pays.
package matching

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/apexrecon/internal/apperrors"
	"github.com/MrJamesThe3rd/apexrecon/internal/ledger"
)

const minPatternLength = 3

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=matching
type Repository interface {
	// FindCustomer returns the customer of the longest pattern contained in
	// rawDescription, or uuid.Nil when none matches.
	FindCustomer(ctx context.Context, orgID uuid.UUID, rawDescription string) (uuid.UUID, error)
	CreateMapping(ctx context.Context, m Mapping) error
	ListMappings(ctx context.Context, orgID uuid.UUID) ([]Mapping, error)
}

// Ledgers is the read access matching needs to the ledger balances.
type Ledgers interface {
	GetBankLedger(ctx context.Context, orgID, id uuid.UUID) (*ledger.BankTransactionLedger, error)
	OpenInvoiceLedgers(ctx context.Context, orgID uuid.UUID, customerID *uuid.UUID) ([]*ledger.InvoiceLedger, error)
}

// Mapping ties a fragment of bank description text to a customer.
type Mapping struct {
	OrganizationID uuid.UUID
	RawPattern     string
	CustomerID     uuid.UUID
	CreatedAt      time.Time
}

type Service struct {
	repo    Repository
	ledgers Ledgers
}

func NewService(repo Repository, ledgers Ledgers) *Service {
	return &Service{repo: repo, ledgers: ledgers}
}

// Suggest returns the customer for the raw description, or nil when no
// mapping matches.
func (s *Service) Suggest(ctx context.Context, orgID uuid.UUID, rawDescription string) (*uuid.UUID, error) {
	customerID, err := s.repo.FindCustomer(ctx, orgID, rawDescription)
	if err != nil {
		return nil, err
	}

	if customerID == uuid.Nil {
		return nil, nil
	}

	return &customerID, nil
}

// Learn remembers that descriptions containing rawPattern come from customerID.
func (s *Service) Learn(ctx context.Context, orgID uuid.UUID, rawPattern string, customerID uuid.UUID) error {
	pattern := strings.TrimSpace(rawPattern)
	if len([]rune(pattern)) < minPatternLength {
		return &apperrors.ValidationError{
			Field:   "raw_pattern",
			Message: fmt.Sprintf("must be at least %d characters", minPatternLength),
		}
	}

	if customerID == uuid.Nil {
		return apperrors.Required("customer_id")
	}

	return s.repo.CreateMapping(ctx, Mapping{OrganizationID: orgID, RawPattern: pattern, CustomerID: customerID})
}

func (s *Service) Mappings(ctx context.Context, orgID uuid.UUID) ([]Mapping, error) {
	return s.repo.ListMappings(ctx, orgID)
}

type Candidates struct {
	BankLedger *ledger.BankTransactionLedger
	// CustomerID is nil when no mapping matched; Invoices then spans every
	// customer of the organization.
	CustomerID *uuid.UUID
	Invoices   []*ledger.InvoiceLedger
}

// Candidates lists the open invoice ledgers a bank transaction could settle.
// Invoices owing exactly the unmatched amount come first, then the rest by
// due date.
func (s *Service) Candidates(ctx context.Context, orgID, bankTransactionID uuid.UUID) (*Candidates, error) {
	bl, err := s.ledgers.GetBankLedger(ctx, orgID, bankTransactionID)
	if err != nil {
		return nil, err
	}

	raw := bl.RawDescription
	if raw == "" {
		raw = bl.Description
	}

	customerID, err := s.Suggest(ctx, orgID, raw)
	if err != nil {
		return nil, fmt.Errorf("suggesting customer: %w", err)
	}

	invoices, err := s.ledgers.OpenInvoiceLedgers(ctx, orgID, customerID)
	if err != nil {
		return nil, fmt.Errorf("listing open invoice ledgers: %w", err)
	}

	unmatched := bl.AmountUnmatched()

	slices.SortStableFunc(invoices, func(a, b *ledger.InvoiceLedger) int {
		aExact, bExact := a.AmountDue().Equal(unmatched), b.AmountDue().Equal(unmatched)
		if aExact != bExact {
			if aExact {
				return -1
			}

			return 1
		}

		return a.DueDate.Compare(b.DueDate)
	})

	return &Candidates{BankLedger: bl, CustomerID: customerID, Invoices: invoices}, nil
}
