package matching

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/apexrecon/internal/http/auth"
	"github.com/MrJamesThe3rd/apexrecon/internal/http/httperr"
	"github.com/MrJamesThe3rd/apexrecon/internal/http/request"
	"github.com/MrJamesThe3rd/apexrecon/internal/matching"
)

type Handler struct {
	svc *matching.Service
}

func NewHandler(svc *matching.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/suggest", h.suggest)
	r.Post("/", h.learn)
}

type suggestResponse struct {
	RawDescription      string     `json:"raw_description"`
	SuggestedCustomerID *uuid.UUID `json:"suggested_customer_id"`
}

func (h *Handler) suggest(w http.ResponseWriter, r *http.Request) {
	rawDesc := r.URL.Query().Get("raw_description")
	if rawDesc == "" {
		http.Error(w, "raw_description query parameter is required", http.StatusBadRequest)
		return
	}

	customerID, err := h.svc.Suggest(r.Context(), auth.MustOrganizationID(r.Context()), rawDesc)
	if err != nil {
		httperr.Write(w, r, err)
		return
	}

	httperr.JSON(w, http.StatusOK, suggestResponse{
		RawDescription:      rawDesc,
		SuggestedCustomerID: customerID,
	})
}

type learnRequest struct {
	RawPattern string    `json:"raw_pattern" validate:"required,max=255"`
	CustomerID uuid.UUID `json:"customer_id" validate:"required"`
}

func (h *Handler) learn(w http.ResponseWriter, r *http.Request) {
	var req learnRequest
	if err := request.Decode(r, &req); err != nil {
		httperr.Write(w, r, err)
		return
	}

	if err := h.svc.Learn(r.Context(), auth.MustOrganizationID(r.Context()), req.RawPattern, req.CustomerID); err != nil {
		httperr.Write(w, r, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
}

type mappingResponse struct {
	RawPattern string    `json:"raw_pattern"`
	CustomerID uuid.UUID `json:"customer_id"`
	CreatedAt  time.Time `json:"created_at"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	mappings, err := h.svc.Mappings(r.Context(), auth.MustOrganizationID(r.Context()))
	if err != nil {
		httperr.Write(w, r, err)
		return
	}

	resp := make([]mappingResponse, len(mappings))
	for i, m := range mappings {
		resp[i] = mappingResponse{RawPattern: m.RawPattern, CustomerID: m.CustomerID, CreatedAt: m.CreatedAt}
	}

	httperr.JSON(w, http.StatusOK, resp)
}
