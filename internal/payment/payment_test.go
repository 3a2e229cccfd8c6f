package payment_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/apexrecon/internal/apperrors"
	"github.com/MrJamesThe3rd/apexrecon/internal/payment"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newPayment(t *testing.T, total string) *payment.Payment {
	t.Helper()

	p, err := payment.New(uuid.New(), payment.Params{
		OrganizationID: uuid.New(),
		PaymentDate:    time.Date(2026, 2, 4, 0, 0, 0, 0, time.UTC),
		TotalAmount:    dec(total),
	})
	require.NoError(t, err)

	return p
}

func allocationFor(t *testing.T, p *payment.Payment, amount string) payment.Allocation {
	t.Helper()

	a, err := payment.NewAllocation(payment.AllocationParams{
		ID:                uuid.New(),
		PaymentID:         p.ID,
		InvoiceID:         uuid.New(),
		BankTransactionID: uuid.New(),
		Amount:            dec(amount),
	})
	require.NoError(t, err)

	return a
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		id      uuid.UUID
		params  payment.Params
		wantErr error
	}{
		{
			name:    "MissingID",
			id:      uuid.Nil,
			params:  payment.Params{OrganizationID: uuid.New(), PaymentDate: time.Now(), TotalAmount: dec("1")},
			wantErr: apperrors.ErrInvariant,
		},
		{
			name:    "MissingDate",
			id:      uuid.New(),
			params:  payment.Params{OrganizationID: uuid.New(), TotalAmount: dec("1")},
			wantErr: apperrors.ErrValidation,
		},
		{
			name:    "ZeroTotal",
			id:      uuid.New(),
			params:  payment.Params{OrganizationID: uuid.New(), PaymentDate: time.Now(), TotalAmount: dec("0")},
			wantErr: apperrors.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := payment.New(tt.id, tt.params)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestNewAllocation(t *testing.T) {
	_, err := payment.NewAllocation(payment.AllocationParams{
		ID:                uuid.New(),
		PaymentID:         uuid.New(),
		InvoiceID:         uuid.New(),
		BankTransactionID: uuid.New(),
		Amount:            dec("0"),
	})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = payment.NewAllocation(payment.AllocationParams{
		ID:        uuid.New(),
		PaymentID: uuid.New(),
		Amount:    dec("5"),
	})
	assert.ErrorIs(t, err, apperrors.ErrInvariant)
}

func TestPayment_AddAllocation(t *testing.T) {
	p := newPayment(t, "100")

	require.NoError(t, p.AddAllocation(allocationFor(t, p, "60")))
	assert.True(t, p.Unallocated().Equal(dec("40")))
	assert.False(t, p.FullyAllocated())

	err := p.AddAllocation(allocationFor(t, p, "40.01"))
	assert.ErrorIs(t, err, apperrors.ErrOverpayment)
	assert.Len(t, p.Allocations(), 1)

	require.NoError(t, p.AddAllocation(allocationFor(t, p, "40")))
	assert.True(t, p.FullyAllocated())
	assert.True(t, p.Allocated().Equal(dec("100")))
}

func TestPayment_AddAllocationFromOtherPayment(t *testing.T) {
	p := newPayment(t, "100")
	other := newPayment(t, "100")

	err := p.AddAllocation(allocationFor(t, other, "10"))
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Empty(t, p.Allocations())
}

func TestPayment_AllocationsIsACopy(t *testing.T) {
	p := newPayment(t, "100")
	require.NoError(t, p.AddAllocation(allocationFor(t, p, "10")))

	got := p.Allocations()
	got[0].Amount = dec("99")

	assert.True(t, p.Allocated().Equal(dec("10")))
}

func TestRestore_RejectsOverAllocatedHistory(t *testing.T) {
	p := newPayment(t, "10")
	a := allocationFor(t, p, "6")
	b := allocationFor(t, p, "6")

	_, err := payment.Restore(newPaymentWithID(t, p), []payment.Allocation{a, b})
	assert.ErrorIs(t, err, apperrors.ErrInvariant)
}

func newPaymentWithID(t *testing.T, src *payment.Payment) *payment.Payment {
	t.Helper()

	p, err := payment.New(src.ID, payment.Params{
		OrganizationID: src.OrganizationID,
		PaymentDate:    src.PaymentDate,
		TotalAmount:    src.TotalAmount,
	})
	require.NoError(t, err)

	return p
}
