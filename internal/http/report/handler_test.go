package report_test

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"errors"
	"io"
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
	"github.com/MrJamesThe3rd/apexrecon/internal/http/auth"
	reporthttp "github.com/MrJamesThe3rd/apexrecon/internal/http/report"
	"github.com/MrJamesThe3rd/apexrecon/internal/ledger"
	"github.com/MrJamesThe3rd/apexrecon/internal/payment"
	"github.com/MrJamesThe3rd/apexrecon/internal/report"
)

var now = time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

func newRouter(t *testing.T, orgID uuid.UUID, ledgersErr error) http.Handler {
	t.Helper()

	ctrl := gomock.NewController(t)
	ledgers := report.NewMockLedgers(ctrl)
	allocations := report.NewMockAllocations(ctrl)

	inv, err := ledger.OpenInvoiceLedger(ledger.InvoiceLedgerParams{
		InvoiceID:      uuid.New(),
		OrganizationID: orgID,
		CustomerID:     uuid.New(),
		DueDate:        time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		Amount:         decimal.RequireFromString("150.00"),
	})
	require.NoError(t, err)

	if ledgersErr != nil {
		ledgers.EXPECT().ListInvoiceLedgers(gomock.Any(), gomock.Any()).Return(nil, ledgersErr)
	} else {
		ledgers.EXPECT().ListInvoiceLedgers(gomock.Any(), ledger.InvoiceFilter{OrganizationID: orgID}).
			Return([]*ledger.InvoiceLedger{inv}, nil)
		allocations.EXPECT().ListAllocationsByOrganization(gomock.Any(), orgID).Return([]payment.Allocation{}, nil)
		ledgers.EXPECT().UnmatchedBankLedgers(gomock.Any(), orgID).Return(nil, nil)
	}

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(auth.WithOrganization(req.Context(), orgID)))
		})
	})
	r.Route("/reports", reporthttp.NewHandler(report.NewService(ledgers, allocations, clock.Fixed(now))).Routes)

	return r
}

func get(router http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

	return rec
}

func TestHandler_Reconciliation_JSON(t *testing.T) {
	rec := get(newRouter(t, uuid.New(), nil), "/reports/reconciliation")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Lines []struct {
			Due     string `json:"due"`
			Overdue bool   `json:"overdue"`
		} `json:"lines"`
		Outstanding string `json:"outstanding"`
		Summary     string `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	require.Len(t, body.Lines, 1)
	assert.Equal(t, "150.00", body.Lines[0].Due)
	assert.True(t, body.Lines[0].Overdue)
	assert.Equal(t, "150.00", body.Outstanding)
	assert.Contains(t, body.Summary, "OVERDUE")
}

func TestHandler_Reconciliation_CSV(t *testing.T) {
	rec := get(newRouter(t, uuid.New(), nil), "/reports/reconciliation?format=csv")
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "invoice_id,"))
}

func TestHandler_Reconciliation_StoreFailure(t *testing.T) {
	rec := get(newRouter(t, uuid.New(), errors.New("db down")), "/reports/reconciliation")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "db down")
}

func TestHandler_Download(t *testing.T) {
	rec := get(newRouter(t, uuid.New(), nil), "/reports/reconciliation/download")
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, "application/zip", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "reconciliation_20240510.zip")

	zr, err := zip.NewReader(bytes.NewReader(rec.Body.Bytes()), int64(rec.Body.Len()))
	require.NoError(t, err)

	files := map[string]string{}

	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)

		content, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())

		files[f.Name] = string(content)
	}

	require.Contains(t, files, "report.csv")
	require.Contains(t, files, "summary.txt")
	assert.Contains(t, files["summary.txt"], "150.00")
}
