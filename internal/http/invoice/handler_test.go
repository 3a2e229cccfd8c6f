package invoice_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/apexrecon/internal/clock"
	"github.com/MrJamesThe3rd/apexrecon/internal/event"
	"github.com/MrJamesThe3rd/apexrecon/internal/http/auth"
	invoicehttp "github.com/MrJamesThe3rd/apexrecon/internal/http/invoice"
	"github.com/MrJamesThe3rd/apexrecon/internal/identity"
	"github.com/MrJamesThe3rd/apexrecon/internal/invoice"
	"github.com/MrJamesThe3rd/apexrecon/internal/ledger"
)

var now = time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC)

func newRouter(repo invoice.Repository, orgID uuid.UUID, ids ...uuid.UUID) http.Handler {
	svc := invoice.NewService(repo, clock.Fixed(now), identity.NewSequence(ids...))

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(auth.WithOrganization(req.Context(), orgID)))
		})
	})
	r.Route("/invoices", invoicehttp.NewHandler(svc).Routes)

	return r
}

func draftInvoice(t *testing.T, orgID uuid.UUID) *invoice.Invoice {
	t.Helper()

	item, err := invoice.NewItem(uuid.New(), invoice.ItemParams{
		Description: "Consulting",
		Quantity:    2,
		UnitPrice:   decimal.RequireFromString("125.00"),
	})
	require.NoError(t, err)

	inv, err := invoice.New(uuid.New(), invoice.Params{
		OrganizationID: orgID,
		CustomerID:     uuid.New(),
		IssueDate:      now,
		DueDate:        now.AddDate(0, 0, 30),
		Items:          []*invoice.Item{item},
	})
	require.NoError(t, err)

	return inv
}

func TestHandler_Create(t *testing.T) {
	orgID := uuid.New()
	invoiceID, itemID := uuid.New(), uuid.New()

	tests := []struct {
		name           string
		body           string
		setupMock      func(m *invoice.MockRepository)
		expectedStatus int
	}{
		{
			name: "Success",
			body: `{"customer_id":"` + uuid.NewString() + `","issue_date":"2024-05-02T00:00:00Z","due_date":"2024-06-01T00:00:00Z",
				"items":[{"description":"Consulting","quantity":2,"unit_price":"125.00"}]}`,
			setupMock: func(m *invoice.MockRepository) {
				m.EXPECT().CreateInvoice(gomock.Any(), gomock.Any()).Return(nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "NoItems",
			body:           `{"customer_id":"` + uuid.NewString() + `","issue_date":"2024-05-02T00:00:00Z","due_date":"2024-06-01T00:00:00Z"}`,
			setupMock:      func(*invoice.MockRepository) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "MalformedBody",
			body:           `{"customer_id":`,
			setupMock:      func(*invoice.MockRepository) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := invoice.NewMockRepository(ctrl)
			tt.setupMock(repo)

			req := httptest.NewRequest(http.MethodPost, "/invoices/", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			newRouter(repo, orgID, itemID, invoiceID).ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)

			if tt.expectedStatus == http.StatusCreated {
				var resp map[string]any
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
				assert.Equal(t, invoiceID.String(), resp["id"])
				assert.Equal(t, "DRAFT", resp["status"])
				assert.Equal(t, "250.00", resp["total_amount"])
				assert.Equal(t, "2024-06-01", resp["due_date"])
			}
		})
	}
}

func TestHandler_Get(t *testing.T) {
	orgID := uuid.New()
	own := draftInvoice(t, orgID)
	foreign := draftInvoice(t, uuid.New())

	tests := []struct {
		name           string
		path           string
		setupMock      func(m *invoice.MockRepository)
		expectedStatus int
	}{
		{
			name: "Found",
			path: "/invoices/" + own.ID.String(),
			setupMock: func(m *invoice.MockRepository) {
				m.EXPECT().GetInvoice(gomock.Any(), own.ID).Return(own, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "OtherOrganization",
			path: "/invoices/" + foreign.ID.String(),
			setupMock: func(m *invoice.MockRepository) {
				m.EXPECT().GetInvoice(gomock.Any(), foreign.ID).Return(foreign, nil)
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "InvalidID",
			path:           "/invoices/not-a-uuid",
			setupMock:      func(*invoice.MockRepository) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := invoice.NewMockRepository(ctrl)
			tt.setupMock(repo)

			rec := httptest.NewRecorder()
			newRouter(repo, orgID).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.expectedStatus, rec.Code)
		})
	}
}

func TestHandler_MarkPaidDraftConflicts(t *testing.T) {
	orgID := uuid.New()
	inv := draftInvoice(t, orgID)

	ctrl := gomock.NewController(t)
	repo := invoice.NewMockRepository(ctrl)
	repo.EXPECT().GetInvoice(gomock.Any(), inv.ID).Return(inv, nil)

	rec := httptest.NewRecorder()
	newRouter(repo, orgID).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/invoices/"+inv.ID.String()+"/pay", nil))

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestHandler_MarkPaidOpenLedgerConflicts(t *testing.T) {
	orgID := uuid.New()
	inv := draftInvoice(t, orgID)
	require.NoError(t, inv.MarkAsSent())

	l, err := ledger.OpenInvoiceLedger(ledger.InvoiceLedgerParams{
		InvoiceID:      inv.ID,
		OrganizationID: orgID,
		CustomerID:     inv.CustomerID,
		DueDate:        inv.DueDate,
		Amount:         inv.TotalAmount(),
	})
	require.NoError(t, err)

	ctrl := gomock.NewController(t)
	repo := invoice.NewMockRepository(ctrl)
	repo.EXPECT().GetInvoice(gomock.Any(), inv.ID).Return(inv, nil)
	repo.EXPECT().
		UpdateWithLedger(gomock.Any(), inv, gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ *invoice.Invoice, apply func(*ledger.InvoiceLedger) error, _ []event.Notification) error {
			return apply(l)
		})

	rec := httptest.NewRecorder()
	newRouter(repo, orgID).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/invoices/"+inv.ID.String()+"/pay", nil))

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, ledger.InvoiceOpen, l.Status())
}

func TestHandler_NoDirectPartialPayments(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := invoice.NewMockRepository(ctrl)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/invoices/"+uuid.NewString()+"/partial-payments", strings.NewReader(`{"amount":"10.00"}`))
	newRouter(repo, uuid.New()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_Void(t *testing.T) {
	orgID := uuid.New()
	inv := draftInvoice(t, orgID)

	ctrl := gomock.NewController(t)
	repo := invoice.NewMockRepository(ctrl)
	repo.EXPECT().GetInvoice(gomock.Any(), inv.ID).Return(inv, nil)
	repo.EXPECT().UpdateInvoice(gomock.Any(), inv, gomock.Len(1)).Return(nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/invoices/"+inv.ID.String()+"/void", strings.NewReader(`{"reason":"duplicate"}`))
	newRouter(repo, orgID, uuid.New()).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "VOID", resp["status"])
	assert.Equal(t, "0.00", resp["amount_due"])
	assert.Equal(t, "duplicate", resp["void_reason"])
}
