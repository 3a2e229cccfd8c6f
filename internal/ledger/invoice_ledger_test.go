package ledger_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/apexrecon/internal/apperrors"
	"github.com/MrJamesThe3rd/apexrecon/internal/ledger"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func openInvoiceLedger(t *testing.T, amount string) *ledger.InvoiceLedger {
	t.Helper()

	l, err := ledger.OpenInvoiceLedger(ledger.InvoiceLedgerParams{
		InvoiceID:      uuid.New(),
		OrganizationID: uuid.New(),
		CustomerID:     uuid.New(),
		DueDate:        time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
		Amount:         dec(amount),
	})
	require.NoError(t, err)

	return l
}

func TestOpenInvoiceLedger(t *testing.T) {
	l := openInvoiceLedger(t, "30.00")

	assert.Equal(t, ledger.InvoiceOpen, l.Status())
	assert.True(t, l.AmountDue().Equal(dec("30")))
	assert.True(t, l.Paid().IsZero())

	_, err := ledger.OpenInvoiceLedger(ledger.InvoiceLedgerParams{OrganizationID: uuid.New(), Amount: dec("1")})
	assert.ErrorIs(t, err, apperrors.ErrInvariant)

	_, err = ledger.OpenInvoiceLedger(ledger.InvoiceLedgerParams{
		InvoiceID:      uuid.New(),
		OrganizationID: uuid.New(),
		Amount:         dec("-1"),
	})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestInvoiceLedger_ApplyPayment(t *testing.T) {
	type testCase struct {
		name       string
		payments   []string
		wantDue    string
		wantStatus ledger.InvoiceStatus
		wantErr    error
	}

	tests := []testCase{
		{
			name:       "Partial",
			payments:   []string{"20"},
			wantDue:    "10",
			wantStatus: ledger.InvoicePartiallyPaid,
		},
		{
			name:       "PartialThenRest",
			payments:   []string{"20", "10"},
			wantDue:    "0",
			wantStatus: ledger.InvoicePaid,
		},
		{
			name:       "OverpaymentLeavesBalance",
			payments:   []string{"20", "15"},
			wantDue:    "10",
			wantStatus: ledger.InvoicePartiallyPaid,
			wantErr:    apperrors.ErrOverpayment,
		},
		{
			name:       "SecondApplicationOnPaid",
			payments:   []string{"30", "0.01"},
			wantDue:    "0",
			wantStatus: ledger.InvoicePaid,
			wantErr:    apperrors.ErrInvalidTransition,
		},
		{
			name:       "ZeroAmount",
			payments:   []string{"0"},
			wantDue:    "30",
			wantStatus: ledger.InvoiceOpen,
			wantErr:    apperrors.ErrValidation,
		},
		{
			name:       "NegativeAmount",
			payments:   []string{"-5"},
			wantDue:    "30",
			wantStatus: ledger.InvoiceOpen,
			wantErr:    apperrors.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := openInvoiceLedger(t, "30.00")

			var err error
			for _, p := range tt.payments {
				if err = l.ApplyPayment(dec(p)); err != nil {
					break
				}
			}

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}

			assert.True(t, l.AmountDue().Equal(dec(tt.wantDue)), "due = %s", l.AmountDue())
			assert.Equal(t, tt.wantStatus, l.Status())
		})
	}
}

func TestInvoiceLedger_OverpaymentDetails(t *testing.T) {
	l := openInvoiceLedger(t, "30.00")
	require.NoError(t, l.ApplyPayment(dec("20")))

	err := l.ApplyPayment(dec("15"))

	var overpay *apperrors.OverpaymentError
	require.ErrorAs(t, err, &overpay)
	assert.Equal(t, l.ID, overpay.ID)
	assert.True(t, overpay.Remaining.Equal(dec("10")))
	assert.True(t, overpay.Attempted.Equal(dec("15")))
}

func TestInvoiceLedger_BalanceNeverIncreases(t *testing.T) {
	l := openInvoiceLedger(t, "100.00")
	previous := l.AmountDue()

	for _, p := range []string{"12.34", "500", "0", "40", "-3", "47.66", "0.01"} {
		_ = l.ApplyPayment(dec(p))

		assert.False(t, l.AmountDue().GreaterThan(previous))
		assert.False(t, l.AmountDue().IsNegative())
		assert.True(t, l.Paid().Add(l.AmountDue()).Equal(l.OriginalAmount()))

		previous = l.AmountDue()
	}

	assert.Equal(t, ledger.InvoicePaid, l.Status())
}

func TestInvoiceLedger_CheckPaymentDoesNotMutate(t *testing.T) {
	l := openInvoiceLedger(t, "30.00")

	require.NoError(t, l.CheckPayment(dec("30")))
	assert.True(t, l.AmountDue().Equal(dec("30")))
	assert.ErrorIs(t, l.CheckPayment(dec("30.01")), apperrors.ErrOverpayment)
}

func TestRestoreInvoiceLedger(t *testing.T) {
	params := ledger.InvoiceLedgerParams{
		InvoiceID:      uuid.New(),
		OrganizationID: uuid.New(),
		Amount:         dec("50"),
	}

	l, err := ledger.RestoreInvoiceLedger(params, dec("20"))
	require.NoError(t, err)
	assert.Equal(t, ledger.InvoicePartiallyPaid, l.Status())
	assert.True(t, l.Paid().Equal(dec("30")))

	_, err = ledger.RestoreInvoiceLedger(params, dec("50.01"))
	assert.ErrorIs(t, err, apperrors.ErrInvariant)

	_, err = ledger.RestoreInvoiceLedger(params, dec("-1"))
	assert.ErrorIs(t, err, apperrors.ErrInvariant)
}

func TestInvoiceLedger_Void(t *testing.T) {
	type testCase struct {
		name    string
		paid    string
		wantErr error
	}

	tests := []testCase{
		{name: "Open"},
		{name: "PartiallyPaid", paid: "10"},
		{name: "Paid", paid: "30", wantErr: apperrors.ErrInvalidTransition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := openInvoiceLedger(t, "30.00")
			if tt.paid != "" {
				require.NoError(t, l.ApplyPayment(dec(tt.paid)))
			}

			before := l.Status()

			err := l.Void()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, before, l.Status())

				return
			}

			require.NoError(t, err)
			assert.Equal(t, ledger.InvoiceVoid, l.Status())
			assert.True(t, l.Outstanding().IsZero())
			assert.True(t, l.AmountDue().Equal(dec("30").Sub(l.Paid())), "balance kept for audit")
		})
	}
}

func TestInvoiceLedger_VoidRejectsPayments(t *testing.T) {
	l := openInvoiceLedger(t, "50.00")
	require.NoError(t, l.Void())

	assert.ErrorIs(t, l.CheckPayment(dec("50")), apperrors.ErrInvalidTransition)
	assert.ErrorIs(t, l.ApplyPayment(dec("50")), apperrors.ErrInvalidTransition)
	assert.True(t, l.AmountDue().Equal(dec("50")))
	assert.Equal(t, ledger.InvoiceVoid, l.Status())

	assert.ErrorIs(t, l.Void(), apperrors.ErrInvalidTransition)
}
