package report

import (
	"archive/zip"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/apexrecon/internal/http/auth"
	"github.com/MrJamesThe3rd/apexrecon/internal/http/httperr"
	"github.com/MrJamesThe3rd/apexrecon/internal/ledger"
	"github.com/MrJamesThe3rd/apexrecon/internal/money"
	"github.com/MrJamesThe3rd/apexrecon/internal/report"
)

type Handler struct {
	svc *report.Service
}

func NewHandler(svc *report.Service) *Handler {
	return &Handler{svc: svc}
}

// Routes mounts under /reports.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/reconciliation", h.reconciliation)
	r.Get("/reconciliation/download", h.download)
}

type lineResponse struct {
	InvoiceID     uuid.UUID            `json:"invoice_id"`
	CustomerID    uuid.UUID            `json:"customer_id"`
	DueDate       string               `json:"due_date"`
	Original      string               `json:"original"`
	Paid          string               `json:"paid"`
	Due           string               `json:"due"`
	Status        ledger.InvoiceStatus `json:"status"`
	Allocations   int                  `json:"allocations"`
	LastPaymentAt *time.Time           `json:"last_payment_at,omitempty"`
	Overdue       bool                 `json:"overdue"`
}

type reportResponse struct {
	GeneratedAt    time.Time      `json:"generated_at"`
	Lines          []lineResponse `json:"lines"`
	Outstanding    string         `json:"outstanding"`
	Collected      string         `json:"collected"`
	UnmatchedFunds string         `json:"unmatched_funds"`
	Summary        string         `json:"summary"`
}

func toReportResponse(rep *report.Report) reportResponse {
	resp := reportResponse{
		GeneratedAt:    rep.GeneratedAt,
		Lines:          make([]lineResponse, len(rep.Lines)),
		Outstanding:    money.Format(rep.Outstanding),
		Collected:      money.Format(rep.Collected),
		UnmatchedFunds: money.Format(rep.UnmatchedFunds),
		Summary:        report.Summary(rep),
	}

	for i, l := range rep.Lines {
		resp.Lines[i] = lineResponse{
			InvoiceID:     l.InvoiceID,
			CustomerID:    l.CustomerID,
			DueDate:       l.DueDate.Format(time.DateOnly),
			Original:      money.Format(l.Original),
			Paid:          money.Format(l.Paid),
			Due:           money.Format(l.Due),
			Status:        l.Status,
			Allocations:   l.Allocations,
			LastPaymentAt: l.LastPaymentAt,
			Overdue:       l.Overdue,
		}
	}

	return resp
}

func (h *Handler) reconciliation(w http.ResponseWriter, r *http.Request) {
	rep, err := h.svc.Build(r.Context(), auth.MustOrganizationID(r.Context()))
	if err != nil {
		httperr.Write(w, r, err)
		return
	}

	switch r.URL.Query().Get("format") {
	case "", "json":
		httperr.JSON(w, http.StatusOK, toReportResponse(rep))
	case "csv":
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")

		if err := report.WriteCSV(w, rep); err != nil {
			slog.Error("failed to write report csv", "error", err)
		}
	default:
		http.Error(w, "format must be json or csv", http.StatusBadRequest)
	}
}

func (h *Handler) download(w http.ResponseWriter, r *http.Request) {
	rep, err := h.svc.Build(r.Context(), auth.MustOrganizationID(r.Context()))
	if err != nil {
		httperr.Write(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=\"reconciliation_%s.zip\"", rep.GeneratedAt.Format("20060102")))

	zipWriter := zip.NewWriter(w)
	defer zipWriter.Close()

	csvFile, err := zipWriter.Create("report.csv")
	if err != nil {
		slog.Error("failed to create zip", "error", err)
		return
	}

	if err := report.WriteCSV(csvFile, rep); err != nil {
		slog.Error("failed to write report csv", "error", err)
		return
	}

	summaryFile, err := zipWriter.Create("summary.txt")
	if err != nil {
		slog.Error("failed to create zip", "error", err)
		return
	}

	if _, err := summaryFile.Write([]byte(report.Summary(rep))); err != nil {
		slog.Error("failed to write summary", "error", err)
	}
}
