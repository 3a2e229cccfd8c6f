// Package report summarizes how far an organization's invoices have been
// settled by reconciled bank funds.
package report

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/apexrecon/internal/clock"
	"github.com/MrJamesThe3rd/apexrecon/internal/ledger"
	"github.com/MrJamesThe3rd/apexrecon/internal/money"
	"github.com/MrJamesThe3rd/apexrecon/internal/payment"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=report
type Ledgers interface {
	ListInvoiceLedgers(ctx context.Context, filter ledger.InvoiceFilter) ([]*ledger.InvoiceLedger, error)
	UnmatchedBankLedgers(ctx context.Context, orgID uuid.UUID) ([]*ledger.BankTransactionLedger, error)
}

type Allocations interface {
	ListAllocationsByOrganization(ctx context.Context, orgID uuid.UUID) ([]payment.Allocation, error)
}

// Line is one invoice ledger in the report.
type Line struct {
	InvoiceID     uuid.UUID
	CustomerID    uuid.UUID
	DueDate       time.Time
	Original      decimal.Decimal
	Paid          decimal.Decimal
	Due           decimal.Decimal
	Status        ledger.InvoiceStatus
	Allocations   int
	LastPaymentAt *time.Time
	Overdue       bool
}

type Report struct {
	OrganizationID uuid.UUID
	GeneratedAt    time.Time
	Lines          []Line
	Outstanding    decimal.Decimal
	Collected      decimal.Decimal
	UnmatchedFunds decimal.Decimal
}

type Service struct {
	ledgers     Ledgers
	allocations Allocations
	clock       clock.Clock
}

func NewService(ledgers Ledgers, allocations Allocations, clk clock.Clock) *Service {
	return &Service{ledgers: ledgers, allocations: allocations, clock: clk}
}

// Build reports every invoice ledger of the organization, ordered by due date.
func (s *Service) Build(ctx context.Context, orgID uuid.UUID) (*Report, error) {
	invoices, err := s.ledgers.ListInvoiceLedgers(ctx, ledger.InvoiceFilter{OrganizationID: orgID})
	if err != nil {
		return nil, fmt.Errorf("listing invoice ledgers: %w", err)
	}

	allocs, err := s.allocations.ListAllocationsByOrganization(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("listing allocations: %w", err)
	}

	unmatched, err := s.ledgers.UnmatchedBankLedgers(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("listing unmatched bank ledgers: %w", err)
	}

	byInvoice := make(map[uuid.UUID][]payment.Allocation, len(invoices))
	for _, a := range allocs {
		byInvoice[a.InvoiceID] = append(byInvoice[a.InvoiceID], a)
	}

	now := s.clock.Now()
	today := clock.Today(s.clock)

	rep := &Report{
		OrganizationID: orgID,
		GeneratedAt:    now,
		Lines:          make([]Line, 0, len(invoices)),
		Outstanding:    decimal.Zero,
		Collected:      decimal.Zero,
		UnmatchedFunds: decimal.Zero,
	}

	for _, l := range invoices {
		line := Line{
			InvoiceID:  l.ID,
			CustomerID: l.CustomerID,
			DueDate:    l.DueDate,
			Original:   l.OriginalAmount(),
			Paid:       l.Paid(),
			Due:        l.Outstanding(),
			Status:     l.Status(),
			Overdue:    l.Outstanding().IsPositive() && l.DueDate.Before(today),
		}

		for _, a := range byInvoice[l.ID] {
			line.Allocations++

			if line.LastPaymentAt == nil || a.CreatedAt.After(*line.LastPaymentAt) {
				createdAt := a.CreatedAt
				line.LastPaymentAt = &createdAt
			}
		}

		rep.Lines = append(rep.Lines, line)
		rep.Outstanding = rep.Outstanding.Add(line.Due)
		rep.Collected = rep.Collected.Add(line.Paid)
	}

	for _, b := range unmatched {
		rep.UnmatchedFunds = rep.UnmatchedFunds.Add(b.AmountUnmatched())
	}

	sort.SliceStable(rep.Lines, func(i, j int) bool {
		return rep.Lines[i].DueDate.Before(rep.Lines[j].DueDate)
	})

	return rep, nil
}

var csvHeader = []string{
	"invoice_id", "customer_id", "due_date", "original", "paid", "due",
	"status", "allocations", "last_payment_at", "overdue",
}

func WriteCSV(w io.Writer, rep *Report) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for _, l := range rep.Lines {
		lastPayment := ""
		if l.LastPaymentAt != nil {
			lastPayment = l.LastPaymentAt.UTC().Format(time.RFC3339)
		}

		record := []string{
			l.InvoiceID.String(),
			l.CustomerID.String(),
			l.DueDate.Format(time.DateOnly),
			money.Format(l.Original),
			money.Format(l.Paid),
			money.Format(l.Due),
			string(l.Status),
			strconv.Itoa(l.Allocations),
			lastPayment,
			strconv.FormatBool(l.Overdue),
		}

		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing line for invoice %s: %w", l.InvoiceID, err)
		}
	}

	cw.Flush()

	return cw.Error()
}

// Summary renders the report as plain text for email or the terminal.
func Summary(rep *Report) string {
	var sb strings.Builder

	for _, l := range rep.Lines {
		marker := ""
		if l.Overdue {
			marker = " | OVERDUE"
		}

		fmt.Fprintf(&sb, "* %s | %s | %s / %s € | %s%s\n",
			l.DueDate.Format(time.DateOnly),
			l.InvoiceID,
			money.Format(l.Paid),
			money.Format(l.Original),
			l.Status,
			marker,
		)
	}

	fmt.Fprintf(&sb, "\nCollected: %s €\nOutstanding: %s €\nUnmatched bank funds: %s €\n",
		money.Format(rep.Collected), money.Format(rep.Outstanding), money.Format(rep.UnmatchedFunds))

	return sb.String()
}
