package report_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/apexrecon/internal/clock"
	"github.com/MrJamesThe3rd/apexrecon/internal/ledger"
	"github.com/MrJamesThe3rd/apexrecon/internal/payment"
	"github.com/MrJamesThe3rd/apexrecon/internal/report"
)

var now = time.Date(2024, 5, 10, 9, 30, 0, 0, time.UTC)

func invoiceLedger(t *testing.T, orgID uuid.UUID, original, due string, dueDate time.Time) *ledger.InvoiceLedger {
	t.Helper()

	l, err := ledger.RestoreInvoiceLedger(ledger.InvoiceLedgerParams{
		InvoiceID:      uuid.New(),
		OrganizationID: orgID,
		CustomerID:     uuid.New(),
		DueDate:        dueDate,
		Amount:         decimal.RequireFromString(original),
	}, decimal.RequireFromString(due))
	require.NoError(t, err)

	return l
}

type fixture struct {
	orgID    uuid.UUID
	paid     *ledger.InvoiceLedger
	overdue  *ledger.InvoiceLedger
	upcoming *ledger.InvoiceLedger
	bank     *ledger.BankTransactionLedger
	allocs   []payment.Allocation
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	orgID := uuid.New()
	f := fixture{
		orgID:    orgID,
		paid:     invoiceLedger(t, orgID, "100.00", "0", time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)),
		overdue:  invoiceLedger(t, orgID, "250.00", "150.00", time.Date(2024, 4, 20, 0, 0, 0, 0, time.UTC)),
		upcoming: invoiceLedger(t, orgID, "80.00", "80.00", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)),
	}

	bank, err := ledger.RestoreBankTransactionLedger(ledger.BankLedgerParams{
		BankTransactionID: uuid.New(),
		OrganizationID:    orgID,
		TransactionDate:   time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC),
		Description:       "TRF ACME",
		Amount:            decimal.RequireFromString("300.00"),
	}, decimal.RequireFromString("100.00"))
	require.NoError(t, err)

	f.bank = bank

	alloc := func(invoiceID uuid.UUID, amount string, at time.Time) payment.Allocation {
		return payment.Allocation{
			ID:                uuid.New(),
			PaymentID:         uuid.New(),
			InvoiceID:         invoiceID,
			BankTransactionID: bank.BankTransactionID,
			Amount:            decimal.RequireFromString(amount),
			CreatedAt:         at,
		}
	}

	f.allocs = []payment.Allocation{
		alloc(f.paid.ID, "60.00", now.Add(-72*time.Hour)),
		alloc(f.paid.ID, "40.00", now.Add(-48*time.Hour)),
		alloc(f.overdue.ID, "100.00", now.Add(-24*time.Hour)),
	}

	return f
}

func (f fixture) service(ctrl *gomock.Controller) *report.Service {
	ledgers := report.NewMockLedgers(ctrl)
	allocations := report.NewMockAllocations(ctrl)

	ledgers.EXPECT().ListInvoiceLedgers(gomock.Any(), ledger.InvoiceFilter{OrganizationID: f.orgID}).
		Return([]*ledger.InvoiceLedger{f.upcoming, f.overdue, f.paid}, nil)
	allocations.EXPECT().ListAllocationsByOrganization(gomock.Any(), f.orgID).Return(f.allocs, nil)
	ledgers.EXPECT().UnmatchedBankLedgers(gomock.Any(), f.orgID).
		Return([]*ledger.BankTransactionLedger{f.bank}, nil)

	return report.NewService(ledgers, allocations, clock.Fixed(now))
}

func TestService_Build(t *testing.T) {
	f := newFixture(t)
	ctrl := gomock.NewController(t)

	rep, err := f.service(ctrl).Build(context.Background(), f.orgID)
	require.NoError(t, err)

	assert.Equal(t, now, rep.GeneratedAt)
	require.Len(t, rep.Lines, 3)

	paid, overdue, upcoming := rep.Lines[0], rep.Lines[1], rep.Lines[2]

	assert.Equal(t, f.paid.ID, paid.InvoiceID)
	assert.Equal(t, ledger.InvoicePaid, paid.Status)
	assert.Equal(t, 2, paid.Allocations)
	require.NotNil(t, paid.LastPaymentAt)
	assert.Equal(t, now.Add(-48*time.Hour), *paid.LastPaymentAt)
	assert.False(t, paid.Overdue)

	assert.Equal(t, f.overdue.ID, overdue.InvoiceID)
	assert.True(t, overdue.Overdue)
	assert.Equal(t, "100", overdue.Paid.String())
	assert.Equal(t, 1, overdue.Allocations)

	assert.Equal(t, f.upcoming.ID, upcoming.InvoiceID)
	assert.False(t, upcoming.Overdue)
	assert.Nil(t, upcoming.LastPaymentAt)
	assert.Zero(t, upcoming.Allocations)

	assert.True(t, rep.Outstanding.Equal(decimal.RequireFromString("230")))
	assert.True(t, rep.Collected.Equal(decimal.RequireFromString("200")))
	assert.True(t, rep.UnmatchedFunds.Equal(decimal.RequireFromString("100")))
}

func TestService_Build_VoidedLedgerOwesNothing(t *testing.T) {
	orgID := uuid.New()
	voided := invoiceLedger(t, orgID, "250.00", "150.00", time.Date(2024, 4, 20, 0, 0, 0, 0, time.UTC))
	require.NoError(t, voided.Void())
	upcoming := invoiceLedger(t, orgID, "80.00", "80.00", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))

	ctrl := gomock.NewController(t)
	ledgers := report.NewMockLedgers(ctrl)
	allocations := report.NewMockAllocations(ctrl)

	ledgers.EXPECT().ListInvoiceLedgers(gomock.Any(), ledger.InvoiceFilter{OrganizationID: orgID}).
		Return([]*ledger.InvoiceLedger{upcoming, voided}, nil)
	allocations.EXPECT().ListAllocationsByOrganization(gomock.Any(), orgID).Return(nil, nil)
	ledgers.EXPECT().UnmatchedBankLedgers(gomock.Any(), orgID).Return(nil, nil)

	rep, err := report.NewService(ledgers, allocations, clock.Fixed(now)).Build(context.Background(), orgID)
	require.NoError(t, err)
	require.Len(t, rep.Lines, 2)

	line := rep.Lines[0]
	assert.Equal(t, voided.ID, line.InvoiceID)
	assert.Equal(t, ledger.InvoiceVoid, line.Status)
	assert.True(t, line.Due.IsZero())
	assert.False(t, line.Overdue)
	assert.Equal(t, "100", line.Paid.String())

	assert.True(t, rep.Outstanding.Equal(decimal.RequireFromString("80")))
	assert.True(t, rep.Collected.Equal(decimal.RequireFromString("100")))
}

func TestService_Build_Errors(t *testing.T) {
	orgID := uuid.New()
	dbErr := errors.New("db down")

	tests := []struct {
		name      string
		setupMock func(l *report.MockLedgers, a *report.MockAllocations)
	}{
		{
			name: "InvoiceLedgers",
			setupMock: func(l *report.MockLedgers, _ *report.MockAllocations) {
				l.EXPECT().ListInvoiceLedgers(gomock.Any(), gomock.Any()).Return(nil, dbErr)
			},
		},
		{
			name: "Allocations",
			setupMock: func(l *report.MockLedgers, a *report.MockAllocations) {
				l.EXPECT().ListInvoiceLedgers(gomock.Any(), gomock.Any()).Return(nil, nil)
				a.EXPECT().ListAllocationsByOrganization(gomock.Any(), orgID).Return(nil, dbErr)
			},
		},
		{
			name: "BankLedgers",
			setupMock: func(l *report.MockLedgers, a *report.MockAllocations) {
				l.EXPECT().ListInvoiceLedgers(gomock.Any(), gomock.Any()).Return(nil, nil)
				a.EXPECT().ListAllocationsByOrganization(gomock.Any(), orgID).Return(nil, nil)
				l.EXPECT().UnmatchedBankLedgers(gomock.Any(), orgID).Return(nil, dbErr)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			l := report.NewMockLedgers(ctrl)
			a := report.NewMockAllocations(ctrl)
			tt.setupMock(l, a)

			_, err := report.NewService(l, a, clock.Fixed(now)).Build(context.Background(), orgID)
			assert.ErrorIs(t, err, dbErr)
		})
	}
}

func TestWriteCSV(t *testing.T) {
	f := newFixture(t)
	ctrl := gomock.NewController(t)

	rep, err := f.service(ctrl).Build(context.Background(), f.orgID)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, report.WriteCSV(&buf, rep))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)

	assert.Equal(t, "invoice_id", records[0][0])
	assert.Equal(t, []string{
		f.overdue.ID.String(),
		f.overdue.CustomerID.String(),
		"2024-04-20",
		"250.00",
		"100.00",
		"150.00",
		"PARTIALLY_PAID",
		"1",
		"2024-05-09T09:30:00Z",
		"true",
	}, records[2])
	assert.Equal(t, "", records[3][8])
}

func TestSummary(t *testing.T) {
	f := newFixture(t)
	ctrl := gomock.NewController(t)

	rep, err := f.service(ctrl).Build(context.Background(), f.orgID)
	require.NoError(t, err)

	got := report.Summary(rep)

	assert.Contains(t, got, "* 2024-04-20 | "+f.overdue.ID.String()+" | 100.00 / 250.00 € | PARTIALLY_PAID | OVERDUE\n")
	assert.Contains(t, got, "* 2024-06-01 | "+f.upcoming.ID.String()+" | 0.00 / 80.00 € | OPEN\n")
	assert.Contains(t, got, "Collected: 200.00 €")
	assert.Contains(t, got, "Outstanding: 230.00 €")
	assert.Contains(t, got, "Unmatched bank funds: 100.00 €")
}
