package reconciliation_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/apexrecon/internal/apperrors"
	"github.com/MrJamesThe3rd/apexrecon/internal/clock"
	"github.com/MrJamesThe3rd/apexrecon/internal/event"
	"github.com/MrJamesThe3rd/apexrecon/internal/identity"
	"github.com/MrJamesThe3rd/apexrecon/internal/ledger"
	"github.com/MrJamesThe3rd/apexrecon/internal/payment"
	"github.com/MrJamesThe3rd/apexrecon/internal/reconciliation"
)

var now = time.Date(2024, 3, 10, 9, 30, 0, 0, time.UTC)

type fixture struct {
	orgID   uuid.UUID
	invoice *ledger.InvoiceLedger
	bank    *ledger.BankTransactionLedger
	payment *payment.Payment
}

func newFixture(t *testing.T, invoiceAmount, bankAmount, paymentAmount string) fixture {
	t.Helper()

	orgID := uuid.New()

	inv, err := ledger.OpenInvoiceLedger(ledger.InvoiceLedgerParams{
		InvoiceID:      uuid.New(),
		OrganizationID: orgID,
		CustomerID:     uuid.New(),
		DueDate:        time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
		Amount:         decimal.RequireFromString(invoiceAmount),
	})
	require.NoError(t, err)

	bank, err := ledger.OpenBankTransactionLedger(ledger.BankLedgerParams{
		BankTransactionID: uuid.New(),
		OrganizationID:    orgID,
		TransactionDate:   time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC),
		Description:       "TRF ACME LDA",
		Amount:            decimal.RequireFromString(bankAmount),
	})
	require.NoError(t, err)

	pay, err := payment.New(uuid.New(), payment.Params{
		OrganizationID: orgID,
		PaymentDate:    time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC),
		TotalAmount:    decimal.RequireFromString(paymentAmount),
	})
	require.NoError(t, err)

	return fixture{orgID: orgID, invoice: inv, bank: bank, payment: pay}
}

func (f fixture) params(amount string) reconciliation.AllocateParams {
	return reconciliation.AllocateParams{
		OrganizationID:    f.orgID,
		PaymentID:         f.payment.ID,
		InvoiceID:         f.invoice.ID,
		BankTransactionID: f.bank.BankTransactionID,
		Amount:            decimal.RequireFromString(amount),
	}
}

func (f fixture) expectLocks(uow *reconciliation.MockUnitOfWork) {
	gomock.InOrder(
		uow.EXPECT().LockInvoiceLedger(gomock.Any(), f.invoice.ID).Return(f.invoice, nil),
		uow.EXPECT().LockBankLedger(gomock.Any(), f.bank.BankTransactionID).Return(f.bank, nil),
		uow.EXPECT().LockPayment(gomock.Any(), f.payment.ID).Return(f.payment, nil),
	)
}

func (f fixture) expectWrites(uow *reconciliation.MockUnitOfWork) {
	uow.EXPECT().CreateAllocation(gomock.Any(), gomock.Any()).Return(nil)
	uow.EXPECT().SaveInvoiceLedger(gomock.Any(), f.invoice).Return(nil)
	uow.EXPECT().SaveBankLedger(gomock.Any(), f.bank).Return(nil)
	uow.EXPECT().AddNotifications(gomock.Any(), gomock.Len(1)).Return(nil)
	uow.EXPECT().Commit().Return(nil)
}

func newService(repo reconciliation.Repository, ids ...uuid.UUID) *reconciliation.Service {
	return reconciliation.NewService(repo, clock.Fixed(now), identity.NewSequence(ids...))
}

func TestService_Allocate(t *testing.T) {
	f := newFixture(t, "100.00", "150.00", "150.00")
	allocID := uuid.New()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := reconciliation.NewMockRepository(ctrl)
	uow := reconciliation.NewMockUnitOfWork(ctrl)

	repo.EXPECT().Begin(gomock.Any()).Return(uow, nil)
	f.expectLocks(uow)

	var recorded []event.Notification

	uow.EXPECT().CreateAllocation(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, a payment.Allocation) error {
			assert.Equal(t, allocID, a.ID)
			assert.Equal(t, now, a.CreatedAt)

			return nil
		})
	uow.EXPECT().SaveInvoiceLedger(gomock.Any(), f.invoice).Return(nil)
	uow.EXPECT().SaveBankLedger(gomock.Any(), f.bank).Return(nil)
	uow.EXPECT().AddNotifications(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, events []event.Notification) error {
			recorded = events
			return nil
		})
	uow.EXPECT().Commit().Return(nil)
	uow.EXPECT().Rollback().Return(nil)

	alloc, err := newService(repo, allocID).Allocate(context.Background(), f.params("60.00"))
	require.NoError(t, err)

	assert.Equal(t, allocID, alloc.ID)
	assert.True(t, decimal.RequireFromString("60").Equal(alloc.Amount))

	assert.Equal(t, "40", f.invoice.AmountDue().String())
	assert.Equal(t, ledger.InvoicePartiallyPaid, f.invoice.Status())
	assert.Equal(t, "90", f.bank.AmountUnmatched().String())
	assert.Equal(t, ledger.BankPartiallyMatched, f.bank.Status())
	assert.Equal(t, "90", f.payment.Unallocated().String())

	require.Len(t, recorded, 1)
	assert.Equal(t, event.TypeAllocationApplied, recorded[0].Type)
	assert.Equal(t, f.orgID, recorded[0].OrganizationID)

	var payload event.AllocationApplied
	require.NoError(t, recorded[0].Decode(&payload))
	assert.Equal(t, f.invoice.ID, payload.InvoiceID)
	assert.Equal(t, "60.00", payload.Amount)
	assert.Equal(t, "60.00", payload.InvoicePaid)
}

func TestService_Allocate_BankLedgerExhausted(t *testing.T) {
	f := newFixture(t, "300.00", "100.00", "300.00")

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := reconciliation.NewMockRepository(ctrl)
	uow := reconciliation.NewMockUnitOfWork(ctrl)

	repo.EXPECT().Begin(gomock.Any()).Return(uow, nil).Times(2)
	uow.EXPECT().LockInvoiceLedger(gomock.Any(), f.invoice.ID).Return(f.invoice, nil).Times(2)
	uow.EXPECT().LockBankLedger(gomock.Any(), f.bank.BankTransactionID).Return(f.bank, nil).Times(2)
	uow.EXPECT().LockPayment(gomock.Any(), f.payment.ID).Return(f.payment, nil).Times(2)
	uow.EXPECT().Rollback().Return(nil).Times(2)
	f.expectWrites(uow)

	svc := newService(repo)

	_, err := svc.Allocate(context.Background(), f.params("100.00"))
	require.NoError(t, err)
	assert.Equal(t, ledger.BankMatched, f.bank.Status())

	_, err = svc.Allocate(context.Background(), f.params("10.00"))
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)
	assert.Equal(t, ledger.BankMatched, f.bank.Status())
	assert.Equal(t, "200", f.invoice.AmountDue().String())
}

func TestService_Allocate_Rejected(t *testing.T) {
	type testCase struct {
		name        string
		invoice     string
		bank        string
		payment     string
		amount      string
		otherOrg    string
		voided      bool
		wantErr     error
		wantNoBegin bool
	}

	tests := []testCase{
		{
			name:        "ZeroAmount",
			invoice:     "100",
			bank:        "100",
			payment:     "100",
			amount:      "0",
			wantErr:     apperrors.ErrValidation,
			wantNoBegin: true,
		},
		{
			name:        "NegativeAmount",
			invoice:     "100",
			bank:        "100",
			payment:     "100",
			amount:      "-5",
			wantErr:     apperrors.ErrValidation,
			wantNoBegin: true,
		},
		{
			name:    "ExceedsInvoice",
			invoice: "50",
			bank:    "100",
			payment: "100",
			amount:  "60",
			wantErr: apperrors.ErrOverpayment,
		},
		{
			name:    "ExceedsBankTransaction",
			invoice: "100",
			bank:    "40",
			payment: "100",
			amount:  "60",
			wantErr: apperrors.ErrOverpayment,
		},
		{
			name:    "ExceedsPayment",
			invoice: "100",
			bank:    "100",
			payment: "30",
			amount:  "60",
			wantErr: apperrors.ErrOverpayment,
		},
		{
			name:    "VoidedInvoice",
			invoice: "100",
			bank:    "100",
			payment: "100",
			amount:  "60",
			voided:  true,
			wantErr: apperrors.ErrInvalidTransition,
		},
		{
			name:     "InvoiceFromAnotherOrganization",
			invoice:  "100",
			bank:     "100",
			payment:  "100",
			amount:   "60",
			otherOrg: "invoice",
			wantErr:  apperrors.ErrNotFound,
		},
		{
			name:     "BankTransactionFromAnotherOrganization",
			invoice:  "100",
			bank:     "100",
			payment:  "100",
			amount:   "60",
			otherOrg: "bank",
			wantErr:  apperrors.ErrNotFound,
		},
		{
			name:     "PaymentFromAnotherOrganization",
			invoice:  "100",
			bank:     "100",
			payment:  "100",
			amount:   "60",
			otherOrg: "payment",
			wantErr:  apperrors.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			f := newFixture(t, tt.invoice, tt.bank, tt.payment)

			switch tt.otherOrg {
			case "invoice":
				f.invoice.OrganizationID = uuid.New()
			case "bank":
				f.bank.OrganizationID = uuid.New()
			case "payment":
				f.payment.OrganizationID = uuid.New()
			}

			if tt.voided {
				require.NoError(t, f.invoice.Void())
			}

			repo := reconciliation.NewMockRepository(ctrl)
			uow := reconciliation.NewMockUnitOfWork(ctrl)

			if !tt.wantNoBegin {
				repo.EXPECT().Begin(gomock.Any()).Return(uow, nil)
				f.expectLocks(uow)
				uow.EXPECT().Rollback().Return(nil)
			}

			_, err := newService(repo).Allocate(context.Background(), f.params(tt.amount))
			assert.ErrorIs(t, err, tt.wantErr)

			assert.True(t, f.invoice.AmountDue().Equal(f.invoice.OriginalAmount()))
			assert.True(t, f.bank.AmountUnmatched().Equal(f.bank.Amount()))
			assert.Empty(t, f.payment.Allocations())
		})
	}
}

func TestService_Allocate_WriteFailureSkipsCommit(t *testing.T) {
	f := newFixture(t, "100", "100", "100")

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := reconciliation.NewMockRepository(ctrl)
	uow := reconciliation.NewMockUnitOfWork(ctrl)

	repo.EXPECT().Begin(gomock.Any()).Return(uow, nil)
	f.expectLocks(uow)
	uow.EXPECT().CreateAllocation(gomock.Any(), gomock.Any()).Return(nil)
	uow.EXPECT().SaveInvoiceLedger(gomock.Any(), f.invoice).Return(nil)
	uow.EXPECT().SaveBankLedger(gomock.Any(), f.bank).Return(errors.New("connection reset"))
	uow.EXPECT().Rollback().Return(nil)

	_, err := newService(repo).Allocate(context.Background(), f.params("100"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "saving bank ledger")
}

func TestService_Allocate_LockNotFound(t *testing.T) {
	f := newFixture(t, "100", "100", "100")

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := reconciliation.NewMockRepository(ctrl)
	uow := reconciliation.NewMockUnitOfWork(ctrl)

	repo.EXPECT().Begin(gomock.Any()).Return(uow, nil)
	uow.EXPECT().LockInvoiceLedger(gomock.Any(), f.invoice.ID).Return(nil, apperrors.ErrNotFound)
	uow.EXPECT().Rollback().Return(nil)

	_, err := newService(repo).Allocate(context.Background(), f.params("10"))
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestService_CreatePayment(t *testing.T) {
	type testCase struct {
		name      string
		params    reconciliation.CreatePaymentParams
		setupMock func(m *reconciliation.MockRepository)
		wantErr   error
	}

	orgID := uuid.New()
	id := uuid.New()

	tests := []testCase{
		{
			name: "Success",
			params: reconciliation.CreatePaymentParams{
				OrganizationID: orgID,
				PaymentDate:    time.Date(2024, 3, 9, 15, 4, 0, 0, time.UTC),
				TotalAmount:    decimal.RequireFromString("250.00"),
				Reference:      "TRF 0042",
			},
			setupMock: func(m *reconciliation.MockRepository) {
				m.EXPECT().CreatePayment(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, p *payment.Payment) error {
						assert.Equal(t, id, p.ID)
						assert.Equal(t, time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC), p.PaymentDate)

						return nil
					})
			},
		},
		{
			name: "ZeroTotal",
			params: reconciliation.CreatePaymentParams{
				OrganizationID: orgID,
				PaymentDate:    now,
				TotalAmount:    decimal.Zero,
			},
			wantErr: apperrors.ErrValidation,
		},
		{
			name: "MissingDate",
			params: reconciliation.CreatePaymentParams{
				OrganizationID: orgID,
				TotalAmount:    decimal.NewFromInt(10),
			},
			wantErr: apperrors.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := reconciliation.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			got, err := newService(repo, id).CreatePayment(context.Background(), tt.params)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, id, got.ID)
			assert.Equal(t, "250", got.Unallocated().String())
		})
	}
}

func TestService_GetPayment_ScopedToOrganization(t *testing.T) {
	f := newFixture(t, "1", "1", "1")

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := reconciliation.NewMockRepository(ctrl)
	repo.EXPECT().GetPayment(gomock.Any(), f.payment.ID).Return(f.payment, nil).Times(2)

	svc := newService(repo)

	got, err := svc.GetPayment(context.Background(), f.orgID, f.payment.ID)
	require.NoError(t, err)
	assert.Same(t, f.payment, got)

	_, err = svc.GetPayment(context.Background(), uuid.New(), f.payment.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestService_AutoAllocate(t *testing.T) {
	f := newFixture(t, "80.00", "120.00", "120.00")

	second, err := ledger.OpenInvoiceLedger(ledger.InvoiceLedgerParams{
		InvoiceID:      uuid.New(),
		OrganizationID: f.orgID,
		CustomerID:     f.invoice.CustomerID,
		Amount:         decimal.RequireFromString("70.00"),
	})
	require.NoError(t, err)

	third, err := ledger.OpenInvoiceLedger(ledger.InvoiceLedgerParams{
		InvoiceID:      uuid.New(),
		OrganizationID: f.orgID,
		CustomerID:     f.invoice.CustomerID,
		Amount:         decimal.RequireFromString("10.00"),
	})
	require.NoError(t, err)

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := reconciliation.NewMockRepository(ctrl)
	uow := reconciliation.NewMockUnitOfWork(ctrl)

	repo.EXPECT().GetPayment(gomock.Any(), f.payment.ID).Return(f.payment, nil).AnyTimes()
	repo.EXPECT().GetBankLedger(gomock.Any(), f.bank.BankTransactionID).Return(f.bank, nil).AnyTimes()
	repo.EXPECT().GetInvoiceLedger(gomock.Any(), f.invoice.ID).Return(f.invoice, nil)
	repo.EXPECT().GetInvoiceLedger(gomock.Any(), second.ID).Return(second, nil)

	repo.EXPECT().Begin(gomock.Any()).Return(uow, nil).Times(2)
	uow.EXPECT().LockInvoiceLedger(gomock.Any(), f.invoice.ID).Return(f.invoice, nil)
	uow.EXPECT().LockInvoiceLedger(gomock.Any(), second.ID).Return(second, nil)
	uow.EXPECT().LockBankLedger(gomock.Any(), f.bank.BankTransactionID).Return(f.bank, nil).Times(2)
	uow.EXPECT().LockPayment(gomock.Any(), f.payment.ID).Return(f.payment, nil).Times(2)
	uow.EXPECT().CreateAllocation(gomock.Any(), gomock.Any()).Return(nil).Times(2)
	uow.EXPECT().SaveInvoiceLedger(gomock.Any(), gomock.Any()).Return(nil).Times(2)
	uow.EXPECT().SaveBankLedger(gomock.Any(), f.bank).Return(nil).Times(2)
	uow.EXPECT().AddNotifications(gomock.Any(), gomock.Len(1)).Return(nil).Times(2)
	uow.EXPECT().Commit().Return(nil).Times(2)
	uow.EXPECT().Rollback().Return(nil).Times(2)

	allocs, err := newService(repo).AutoAllocate(context.Background(), reconciliation.AutoAllocateParams{
		OrganizationID:    f.orgID,
		PaymentID:         f.payment.ID,
		BankTransactionID: f.bank.BankTransactionID,
		InvoiceIDs:        []uuid.UUID{f.invoice.ID, second.ID, third.ID},
	})
	require.NoError(t, err)
	require.Len(t, allocs, 2)

	assert.Equal(t, "80", allocs[0].Amount.String())
	assert.Equal(t, "40", allocs[1].Amount.String())
	assert.Equal(t, ledger.InvoicePaid, f.invoice.Status())
	assert.Equal(t, ledger.InvoicePartiallyPaid, second.Status())
	assert.Equal(t, ledger.InvoiceOpen, third.Status())
	assert.Equal(t, ledger.BankMatched, f.bank.Status())
	assert.True(t, f.payment.FullyAllocated())
}

func TestService_AutoAllocate_SkipsSettledInvoices(t *testing.T) {
	f := newFixture(t, "30.00", "50.00", "50.00")
	require.NoError(t, f.invoice.ApplyPayment(decimal.RequireFromString("30.00")))

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := reconciliation.NewMockRepository(ctrl)
	repo.EXPECT().GetPayment(gomock.Any(), f.payment.ID).Return(f.payment, nil)
	repo.EXPECT().GetBankLedger(gomock.Any(), f.bank.BankTransactionID).Return(f.bank, nil)
	repo.EXPECT().GetInvoiceLedger(gomock.Any(), f.invoice.ID).Return(f.invoice, nil)

	allocs, err := newService(repo).AutoAllocate(context.Background(), reconciliation.AutoAllocateParams{
		OrganizationID:    f.orgID,
		PaymentID:         f.payment.ID,
		BankTransactionID: f.bank.BankTransactionID,
		InvoiceIDs:        []uuid.UUID{f.invoice.ID},
	})
	require.NoError(t, err)
	assert.Empty(t, allocs)
}

func allocation(f fixture, amount string) payment.Allocation {
	return payment.Allocation{
		ID:                uuid.New(),
		PaymentID:         f.payment.ID,
		InvoiceID:         f.invoice.ID,
		BankTransactionID: f.bank.BankTransactionID,
		Amount:            decimal.RequireFromString(amount),
	}
}

func TestService_AuditInvoice(t *testing.T) {
	type testCase struct {
		name    string
		paid    string
		allocs  []string
		wantErr error
	}

	tests := []testCase{
		{name: "Balanced", paid: "60", allocs: []string{"25", "35"}},
		{name: "NoActivity", paid: "0"},
		{name: "Mismatch", paid: "60", allocs: []string{"25"}, wantErr: apperrors.ErrInvariant},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			f := newFixture(t, "100", "100", "100")
			if paid := decimal.RequireFromString(tt.paid); paid.IsPositive() {
				require.NoError(t, f.invoice.ApplyPayment(paid))
			}

			var allocs []payment.Allocation
			for _, a := range tt.allocs {
				allocs = append(allocs, allocation(f, a))
			}

			repo := reconciliation.NewMockRepository(ctrl)
			repo.EXPECT().GetInvoiceLedger(gomock.Any(), f.invoice.ID).Return(f.invoice, nil)
			repo.EXPECT().ListAllocationsByInvoice(gomock.Any(), f.invoice.ID).Return(allocs, nil)

			got, err := newService(repo).AuditInvoice(context.Background(), f.orgID, f.invoice.ID)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.False(t, got.Balanced())

				return
			}

			require.NoError(t, err)
			assert.True(t, got.Balanced())
			assert.Equal(t, len(tt.allocs), got.Count)
		})
	}
}

func TestService_AuditBankTransaction(t *testing.T) {
	f := newFixture(t, "100", "100", "100")
	require.NoError(t, f.bank.ApplyAllocation(decimal.RequireFromString("40")))

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := reconciliation.NewMockRepository(ctrl)
	repo.EXPECT().GetBankLedger(gomock.Any(), f.bank.BankTransactionID).Return(f.bank, nil).Times(2)
	repo.EXPECT().ListAllocationsByBankTransaction(gomock.Any(), f.bank.BankTransactionID).
		Return([]payment.Allocation{allocation(f, "40")}, nil)

	svc := newService(repo)

	got, err := svc.AuditBankTransaction(context.Background(), f.orgID, f.bank.BankTransactionID)
	require.NoError(t, err)
	assert.Equal(t, "40", got.Allocated.String())

	_, err = svc.AuditBankTransaction(context.Background(), uuid.New(), f.bank.BankTransactionID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
