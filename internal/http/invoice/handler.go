package invoice

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/apexrecon/internal/http/auth"
	"github.com/MrJamesThe3rd/apexrecon/internal/http/httperr"
	"github.com/MrJamesThe3rd/apexrecon/internal/invoice"
)

type Handler struct {
	svc *invoice.Service
}

func NewHandler(svc *invoice.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Post("/overdue", h.markOverdueBatch)
	r.Get("/{id}", h.get)
	r.Post("/{id}/items", h.addItem)
	r.Delete("/{id}/items/{itemID}", h.removeItem)
	r.Post("/{id}/send", h.send)
	r.Post("/{id}/pay", h.markPaid)
	r.Post("/{id}/void", h.void)
	r.Post("/{id}/overdue", h.markOverdue)
}

type itemRequest struct {
	Description string          `json:"description"`
	Quantity    int64           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

func (i itemRequest) params() invoice.ItemParams {
	return invoice.ItemParams{Description: i.Description, Quantity: i.Quantity, UnitPrice: i.UnitPrice}
}

type createInvoiceRequest struct {
	CustomerID uuid.UUID     `json:"customer_id"`
	IssueDate  time.Time     `json:"issue_date"`
	DueDate    time.Time     `json:"due_date"`
	Items      []itemRequest `json:"items"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createInvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	items := make([]invoice.ItemParams, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, it.params())
	}

	inv, err := h.svc.Create(r.Context(), invoice.CreateParams{
		OrganizationID: auth.MustOrganizationID(r.Context()),
		CustomerID:     req.CustomerID,
		IssueDate:      req.IssueDate,
		DueDate:        req.DueDate,
		Items:          items,
	})
	if err != nil {
		httperr.Write(w, r, err)
		return
	}

	httperr.JSON(w, http.StatusCreated, toResponse(inv))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter := invoice.ListFilter{OrganizationID: auth.MustOrganizationID(r.Context())}

	if s := r.URL.Query().Get("customer_id"); s != "" {
		customerID, err := uuid.Parse(s)
		if err != nil {
			http.Error(w, "invalid customer_id", http.StatusBadRequest)
			return
		}

		filter.CustomerID = &customerID
	}

	for _, s := range r.URL.Query()["status"] {
		status := invoice.Status(s)
		if !status.IsValid() {
			http.Error(w, "invalid status", http.StatusBadRequest)
			return
		}

		filter.Statuses = append(filter.Statuses, status)
	}

	if s := r.URL.Query().Get("due_before"); s != "" {
		if t, err := time.Parse(time.DateOnly, s); err == nil {
			filter.DueBefore = &t
		}
	}

	invs, err := h.svc.List(r.Context(), filter)
	if err != nil {
		httperr.Write(w, r, err)
		return
	}

	httperr.JSON(w, http.StatusOK, toResponseList(invs))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	inv, err := h.svc.Get(r.Context(), auth.MustOrganizationID(r.Context()), id)
	if err != nil {
		httperr.Write(w, r, err)
		return
	}

	httperr.JSON(w, http.StatusOK, toResponse(inv))
}

func (h *Handler) addItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req itemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	inv, err := h.svc.AddItem(r.Context(), auth.MustOrganizationID(r.Context()), id, req.params())
	h.respond(w, r, inv, err)
}

func (h *Handler) removeItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	itemID, ok := pathID(w, r, "itemID")
	if !ok {
		return
	}

	inv, err := h.svc.RemoveItem(r.Context(), auth.MustOrganizationID(r.Context()), id, itemID)
	h.respond(w, r, inv, err)
}

func (h *Handler) send(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	inv, err := h.svc.Send(r.Context(), auth.MustOrganizationID(r.Context()), id)
	h.respond(w, r, inv, err)
}

func (h *Handler) markPaid(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	inv, err := h.svc.MarkPaid(r.Context(), auth.MustOrganizationID(r.Context()), id)
	h.respond(w, r, inv, err)
}

type voidRequest struct {
	Reason string `json:"reason"`
}

func (h *Handler) void(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req voidRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	inv, err := h.svc.Void(r.Context(), auth.MustOrganizationID(r.Context()), id, req.Reason)
	h.respond(w, r, inv, err)
}

type overdueResponse struct {
	Changed bool `json:"changed"`
}

func (h *Handler) markOverdue(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	changed, err := h.svc.MarkOverdue(r.Context(), auth.MustOrganizationID(r.Context()), id)
	if err != nil {
		httperr.Write(w, r, err)
		return
	}

	httperr.JSON(w, http.StatusOK, overdueResponse{Changed: changed})
}

type overdueBatchRequest struct {
	AsOf time.Time `json:"as_of"`
}

func (h *Handler) markOverdueBatch(w http.ResponseWriter, r *http.Request) {
	var req overdueBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if req.AsOf.IsZero() {
		http.Error(w, "as_of is required", http.StatusBadRequest)
		return
	}

	invs, err := h.svc.MarkOverdueBatch(r.Context(), auth.MustOrganizationID(r.Context()), req.AsOf)
	if err != nil {
		httperr.Write(w, r, err)
		return
	}

	httperr.JSON(w, http.StatusOK, toResponseList(invs))
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request, inv *invoice.Invoice, err error) {
	if err != nil {
		httperr.Write(w, r, err)
		return
	}

	httperr.JSON(w, http.StatusOK, toResponse(inv))
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		http.Error(w, "invalid "+name, http.StatusBadRequest)
		return uuid.Nil, false
	}

	return id, true
}
