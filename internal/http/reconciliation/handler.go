package reconciliation

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/apexrecon/internal/apperrors"
	"github.com/MrJamesThe3rd/apexrecon/internal/http/auth"
	"github.com/MrJamesThe3rd/apexrecon/internal/http/httperr"
	"github.com/MrJamesThe3rd/apexrecon/internal/http/request"
	"github.com/MrJamesThe3rd/apexrecon/internal/ledger"
	"github.com/MrJamesThe3rd/apexrecon/internal/matching"
	"github.com/MrJamesThe3rd/apexrecon/internal/reconciliation"
)

type Handler struct {
	reconSvc  *reconciliation.Service
	ledgerSvc *ledger.Service
	matchSvc  *matching.Service
}

func NewHandler(reconSvc *reconciliation.Service, ledgerSvc *ledger.Service, matchSvc *matching.Service) *Handler {
	return &Handler{
		reconSvc:  reconSvc,
		ledgerSvc: ledgerSvc,
		matchSvc:  matchSvc,
	}
}

// PaymentRoutes mounts under /payments.
func (h *Handler) PaymentRoutes(r chi.Router) {
	r.Post("/", h.createPayment)
	r.Get("/{id}", h.getPayment)
	r.Post("/{id}/allocations", h.allocate)
	r.Post("/{id}/auto-allocate", h.autoAllocate)
}

// InvoiceLedgerRoutes mounts under /invoice-ledgers.
func (h *Handler) InvoiceLedgerRoutes(r chi.Router) {
	r.Get("/", h.listInvoiceLedgers)
	r.Get("/{id}", h.getInvoiceLedger)
	r.Get("/{id}/audit", h.auditInvoice)
}

// BankLedgerRoutes mounts under /bank-ledgers.
func (h *Handler) BankLedgerRoutes(r chi.Router) {
	r.Get("/", h.listBankLedgers)
	r.Get("/{id}", h.getBankLedger)
	r.Get("/{id}/audit", h.auditBankTransaction)
	r.Get("/{id}/candidates", h.candidates)
}

type createPaymentRequest struct {
	PaymentDate time.Time       `json:"payment_date" validate:"required"`
	TotalAmount decimal.Decimal `json:"total_amount" validate:"positive_decimal"`
	Reference   string          `json:"reference" validate:"max=140"`
}

func (h *Handler) createPayment(w http.ResponseWriter, r *http.Request) {
	var req createPaymentRequest
	if err := request.Decode(r, &req); err != nil {
		httperr.Write(w, r, err)
		return
	}

	p, err := h.reconSvc.CreatePayment(r.Context(), reconciliation.CreatePaymentParams{
		OrganizationID: auth.MustOrganizationID(r.Context()),
		PaymentDate:    req.PaymentDate,
		TotalAmount:    req.TotalAmount,
		Reference:      req.Reference,
	})
	if err != nil {
		httperr.Write(w, r, err)
		return
	}

	httperr.JSON(w, http.StatusCreated, toPaymentResponse(p))
}

func (h *Handler) getPayment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	p, err := h.reconSvc.GetPayment(r.Context(), auth.MustOrganizationID(r.Context()), id)
	if err != nil {
		httperr.Write(w, r, err)
		return
	}

	httperr.JSON(w, http.StatusOK, toPaymentResponse(p))
}

type allocateRequest struct {
	InvoiceID         uuid.UUID       `json:"invoice_id" validate:"required"`
	BankTransactionID uuid.UUID       `json:"bank_transaction_id" validate:"required"`
	Amount            decimal.Decimal `json:"amount" validate:"positive_decimal"`
}

func (h *Handler) allocate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req allocateRequest
	if err := request.Decode(r, &req); err != nil {
		httperr.Write(w, r, err)
		return
	}

	a, err := h.reconSvc.Allocate(r.Context(), reconciliation.AllocateParams{
		OrganizationID:    auth.MustOrganizationID(r.Context()),
		PaymentID:         id,
		InvoiceID:         req.InvoiceID,
		BankTransactionID: req.BankTransactionID,
		Amount:            req.Amount,
	})
	if err != nil {
		httperr.Write(w, r, err)
		return
	}

	httperr.JSON(w, http.StatusCreated, toAllocationResponse(a))
}

type autoAllocateRequest struct {
	BankTransactionID uuid.UUID   `json:"bank_transaction_id" validate:"required"`
	InvoiceIDs        []uuid.UUID `json:"invoice_ids" validate:"required,min=1"`
}

func (h *Handler) autoAllocate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req autoAllocateRequest
	if err := request.Decode(r, &req); err != nil {
		httperr.Write(w, r, err)
		return
	}

	allocs, err := h.reconSvc.AutoAllocate(r.Context(), reconciliation.AutoAllocateParams{
		OrganizationID:    auth.MustOrganizationID(r.Context()),
		PaymentID:         id,
		BankTransactionID: req.BankTransactionID,
		InvoiceIDs:        req.InvoiceIDs,
	})
	if err != nil {
		httperr.Write(w, r, err)
		return
	}

	resp := make([]allocationResponse, len(allocs))
	for i, a := range allocs {
		resp[i] = toAllocationResponse(a)
	}

	httperr.JSON(w, http.StatusCreated, resp)
}

func (h *Handler) listInvoiceLedgers(w http.ResponseWriter, r *http.Request) {
	filter := ledger.InvoiceFilter{OrganizationID: auth.MustOrganizationID(r.Context())}

	if s := r.URL.Query().Get("customer_id"); s != "" {
		customerID, err := uuid.Parse(s)
		if err != nil {
			http.Error(w, "invalid customer_id", http.StatusBadRequest)
			return
		}

		filter.CustomerID = &customerID
	}

	for _, s := range r.URL.Query()["status"] {
		filter.Statuses = append(filter.Statuses, ledger.InvoiceStatus(s))
	}

	ledgers, err := h.ledgerSvc.ListInvoiceLedgers(r.Context(), filter)
	if err != nil {
		httperr.Write(w, r, err)
		return
	}

	httperr.JSON(w, http.StatusOK, toInvoiceLedgerList(ledgers))
}

func (h *Handler) getInvoiceLedger(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	l, err := h.ledgerSvc.GetInvoiceLedger(r.Context(), auth.MustOrganizationID(r.Context()), id)
	if err != nil {
		httperr.Write(w, r, err)
		return
	}

	httperr.JSON(w, http.StatusOK, toInvoiceLedgerResponse(l))
}

func (h *Handler) auditInvoice(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	audit, err := h.reconSvc.AuditInvoice(r.Context(), auth.MustOrganizationID(r.Context()), id)
	writeAudit(w, r, audit, err)
}

func (h *Handler) listBankLedgers(w http.ResponseWriter, r *http.Request) {
	filter := ledger.BankFilter{OrganizationID: auth.MustOrganizationID(r.Context())}

	for _, s := range r.URL.Query()["status"] {
		filter.Statuses = append(filter.Statuses, ledger.BankStatus(s))
	}

	ledgers, err := h.ledgerSvc.ListBankLedgers(r.Context(), filter)
	if err != nil {
		httperr.Write(w, r, err)
		return
	}

	resp := make([]bankLedgerResponse, len(ledgers))
	for i, l := range ledgers {
		resp[i] = toBankLedgerResponse(l)
	}

	httperr.JSON(w, http.StatusOK, resp)
}

func (h *Handler) getBankLedger(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	l, err := h.ledgerSvc.GetBankLedger(r.Context(), auth.MustOrganizationID(r.Context()), id)
	if err != nil {
		httperr.Write(w, r, err)
		return
	}

	httperr.JSON(w, http.StatusOK, toBankLedgerResponse(l))
}

func (h *Handler) auditBankTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	audit, err := h.reconSvc.AuditBankTransaction(r.Context(), auth.MustOrganizationID(r.Context()), id)
	writeAudit(w, r, audit, err)
}

func (h *Handler) candidates(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	c, err := h.matchSvc.Candidates(r.Context(), auth.MustOrganizationID(r.Context()), id)
	if err != nil {
		httperr.Write(w, r, err)
		return
	}

	httperr.JSON(w, http.StatusOK, candidatesResponse{
		BankLedger:          toBankLedgerResponse(c.BankLedger),
		SuggestedCustomerID: c.CustomerID,
		Invoices:            toInvoiceLedgerList(c.Invoices),
	})
}

// writeAudit reports an unbalanced ledger as 500 with the audit body, since
// stored balances and allocations disagree.
func writeAudit(w http.ResponseWriter, r *http.Request, audit reconciliation.Audit, err error) {
	if err != nil && !errors.Is(err, apperrors.ErrInvariant) {
		httperr.Write(w, r, err)
		return
	}

	status := http.StatusOK
	if err != nil {
		slog.Error("ledger audit failed", "ledger_id", audit.LedgerID, "error", err)

		status = http.StatusInternalServerError
	}

	httperr.JSON(w, status, toAuditResponse(audit))
}

func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return uuid.Nil, false
	}

	return id, true
}
