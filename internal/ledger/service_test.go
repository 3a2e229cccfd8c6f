package ledger_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/apexrecon/internal/apperrors"
	"github.com/MrJamesThe3rd/apexrecon/internal/ledger"
)

func TestService_GetInvoiceLedger_ScopedToOrganization(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	l := openInvoiceLedger(t, "10")

	repo := ledger.NewMockRepository(ctrl)
	repo.EXPECT().GetInvoiceLedger(gomock.Any(), l.ID).Return(l, nil).Times(2)

	svc := ledger.NewService(repo)

	got, err := svc.GetInvoiceLedger(context.Background(), l.OrganizationID, l.ID)
	require.NoError(t, err)
	assert.Same(t, l, got)

	_, err = svc.GetInvoiceLedger(context.Background(), uuid.New(), l.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestService_OpenInvoiceLedgers(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	orgID, customerID := uuid.New(), uuid.New()

	repo := ledger.NewMockRepository(ctrl)
	repo.EXPECT().
		ListInvoiceLedgers(gomock.Any(), ledger.InvoiceFilter{
			OrganizationID: orgID,
			CustomerID:     &customerID,
			Statuses:       []ledger.InvoiceStatus{ledger.InvoiceOpen, ledger.InvoicePartiallyPaid},
		}).
		Return([]*ledger.InvoiceLedger{openInvoiceLedger(t, "5")}, nil)

	got, err := ledger.NewService(repo).OpenInvoiceLedgers(context.Background(), orgID, &customerID)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestService_OpenInvoiceLedgers_ExcludesClosed(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := ledger.NewMockRepository(ctrl)
	repo.EXPECT().
		ListInvoiceLedgers(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, filter ledger.InvoiceFilter) ([]*ledger.InvoiceLedger, error) {
			assert.NotContains(t, filter.Statuses, ledger.InvoiceVoid)
			assert.NotContains(t, filter.Statuses, ledger.InvoicePaid)
			return nil, nil
		})

	_, err := ledger.NewService(repo).OpenInvoiceLedgers(context.Background(), uuid.New(), nil)
	require.NoError(t, err)
}

func TestService_UnmatchedBankLedgers(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	orgID := uuid.New()

	repo := ledger.NewMockRepository(ctrl)
	repo.EXPECT().
		ListBankLedgers(gomock.Any(), ledger.BankFilter{
			OrganizationID: orgID,
			Statuses:       []ledger.BankStatus{ledger.BankUnmatched, ledger.BankPartiallyMatched},
		}).
		Return(nil, nil)

	got, err := ledger.NewService(repo).UnmatchedBankLedgers(context.Background(), orgID)
	require.NoError(t, err)
	assert.Empty(t, got)
}
