package bank

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/apexrecon/internal/bank"
	"github.com/MrJamesThe3rd/apexrecon/internal/http/auth"
	"github.com/MrJamesThe3rd/apexrecon/internal/http/httperr"
	"github.com/MrJamesThe3rd/apexrecon/internal/importer"
	"github.com/MrJamesThe3rd/apexrecon/internal/matching"
)

const maxUploadSize = 10 << 20

type Handler struct {
	bankSvc   *bank.Service
	importSvc *importer.Service
	matchSvc  *matching.Service
}

func NewHandler(bankSvc *bank.Service, importSvc *importer.Service, matchSvc *matching.Service) *Handler {
	return &Handler{
		bankSvc:   bankSvc,
		importSvc: importSvc,
		matchSvc:  matchSvc,
	}
}

// ConnectionRoutes mounts under /bank-connections.
func (h *Handler) ConnectionRoutes(r chi.Router) {
	r.Post("/", h.createConnection)
	r.Get("/", h.listConnections)
	r.Get("/{id}", h.getConnection)
	r.Post("/{id}/revoke", h.revokeConnection)
	r.Post("/{id}/reactivate", h.reactivateConnection)
	r.Post("/{id}/import", h.importStatement)
	r.Post("/{id}/transactions", h.ingest)
}

// TransactionRoutes mounts under /bank-transactions.
func (h *Handler) TransactionRoutes(r chi.Router) {
	r.Get("/", h.listTransactions)
	r.Get("/{id}", h.getTransaction)
	r.Post("/{id}/processed", h.markProcessed)
}

type createConnectionRequest struct {
	Provider    bank.Provider `json:"provider"`
	SecretRef   string        `json:"secret_ref"`
	AccountName string        `json:"account_name"`
	AccountMask string        `json:"account_mask"`
}

func (h *Handler) createConnection(w http.ResponseWriter, r *http.Request) {
	var req createConnectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	c, err := h.bankSvc.CreateConnection(r.Context(), bank.ConnectionParams{
		OrganizationID: auth.MustOrganizationID(r.Context()),
		Provider:       req.Provider,
		SecretRef:      req.SecretRef,
		AccountName:    req.AccountName,
		AccountMask:    req.AccountMask,
	})
	if err != nil {
		httperr.Write(w, r, err)
		return
	}

	httperr.JSON(w, http.StatusCreated, toConnectionResponse(c))
}

func (h *Handler) listConnections(w http.ResponseWriter, r *http.Request) {
	conns, err := h.bankSvc.ListConnections(r.Context(), auth.MustOrganizationID(r.Context()))
	if err != nil {
		httperr.Write(w, r, err)
		return
	}

	resp := make([]connectionResponse, len(conns))
	for i, c := range conns {
		resp[i] = toConnectionResponse(c)
	}

	httperr.JSON(w, http.StatusOK, resp)
}

func (h *Handler) getConnection(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	c, err := h.bankSvc.GetConnection(r.Context(), auth.MustOrganizationID(r.Context()), id)
	if err != nil {
		httperr.Write(w, r, err)
		return
	}

	httperr.JSON(w, http.StatusOK, toConnectionResponse(c))
}

func (h *Handler) revokeConnection(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	c, err := h.bankSvc.RevokeConnection(r.Context(), auth.MustOrganizationID(r.Context()), id)
	if err != nil {
		httperr.Write(w, r, err)
		return
	}

	httperr.JSON(w, http.StatusOK, toConnectionResponse(c))
}

type reactivateRequest struct {
	SecretRef string `json:"secret_ref"`
}

func (h *Handler) reactivateConnection(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req reactivateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	c, err := h.bankSvc.ReactivateConnection(r.Context(), auth.MustOrganizationID(r.Context()), id, req.SecretRef)
	if err != nil {
		httperr.Write(w, r, err)
		return
	}

	httperr.JSON(w, http.StatusOK, toConnectionResponse(c))
}

// importStatement parses an uploaded bank export with the connection's
// provider format and ingests its incoming rows.
func (h *Handler) importStatement(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	orgID := auth.MustOrganizationID(r.Context())

	conn, err := h.bankSvc.GetConnection(r.Context(), orgID, id)
	if err != nil {
		httperr.Write(w, r, err)
		return
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		http.Error(w, "failed to parse form: "+err.Error(), http.StatusBadRequest)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file field is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	stmt, err := h.importSvc.Import(conn.Provider, file)
	if err != nil {
		httperr.Write(w, r, err)
		return
	}

	slog.Info("parsed bank statement",
		"connection_id", conn.ID,
		"provider", conn.Provider,
		"charset", stmt.Charset,
		"incoming", len(stmt.Incoming),
		"skipped_outgoing", stmt.SkippedOutgoing,
	)

	h.ingestBatch(w, r, bank.IngestParams{
		OrganizationID:  orgID,
		ConnectionID:    conn.ID,
		Transactions:    stmt.Incoming,
		AllowDuplicates: forced(r),
	}, stmt.SkippedOutgoing)
}

type ingestRequest struct {
	Transactions []transactionParamsDTO `json:"transactions"`
}

// ingest accepts transactions already normalized by a provider integration,
// or a reviewed batch re-submitted with force=true after a conflict.
func (h *Handler) ingest(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	params := make([]bank.TransactionParams, 0, len(req.Transactions))
	for _, p := range req.Transactions {
		params = append(params, p.params())
	}

	h.ingestBatch(w, r, bank.IngestParams{
		OrganizationID:  auth.MustOrganizationID(r.Context()),
		ConnectionID:    id,
		Transactions:    params,
		AllowDuplicates: forced(r),
	}, 0)
}

func (h *Handler) ingestBatch(w http.ResponseWriter, r *http.Request, params bank.IngestParams, skippedOutgoing int) {
	result, err := h.bankSvc.Ingest(r.Context(), params)
	if err != nil {
		httperr.Write(w, r, err)
		return
	}

	if len(result.Conflicts) > 0 {
		resp := ingestConflictResponse{
			New:       make([]transactionParamsDTO, 0, len(result.New)),
			Conflicts: make([]conflictDTO, 0, len(result.Conflicts)),
		}

		for _, p := range result.New {
			resp.New = append(resp.New, toParamsDTO(p))
		}

		for _, c := range result.Conflicts {
			resp.Conflicts = append(resp.Conflicts, conflictDTO{
				Incoming: toParamsDTO(c.Incoming),
				Existing: toTransactionResponse(c.Existing),
			})
		}

		httperr.JSON(w, http.StatusConflict, resp)

		return
	}

	resp := ingestSuccessResponse{
		Imported:        len(result.Imported),
		SkippedOutgoing: skippedOutgoing,
		Transactions:    make([]transactionResponse, 0, len(result.Imported)),
	}

	for _, tx := range result.Imported {
		txResp := toTransactionResponse(tx)

		raw := tx.RawDescription
		if raw == "" {
			raw = tx.Description
		}

		suggested, err := h.matchSvc.Suggest(r.Context(), params.OrganizationID, raw)
		if err != nil {
			slog.Warn("failed to suggest customer", "transaction_id", tx.ID, "error", err)
		}

		txResp.SuggestedCustomerID = suggested
		resp.Transactions = append(resp.Transactions, txResp)
	}

	httperr.JSON(w, http.StatusCreated, resp)
}

func (h *Handler) listTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := bank.ListFilter{OrganizationID: auth.MustOrganizationID(r.Context())}

	if s := q.Get("connection_id"); s != "" {
		connectionID, err := uuid.Parse(s)
		if err != nil {
			http.Error(w, "invalid connection_id", http.StatusBadRequest)
			return
		}

		filter.ConnectionID = &connectionID
	}

	if s := q.Get("processed"); s != "" {
		processed, err := strconv.ParseBool(s)
		if err != nil {
			http.Error(w, "invalid processed", http.StatusBadRequest)
			return
		}

		filter.Processed = &processed
	}

	if s := q.Get("start_date"); s != "" {
		if t, err := time.Parse(time.DateOnly, s); err == nil {
			filter.StartDate = &t
		}
	}

	if s := q.Get("end_date"); s != "" {
		if t, err := time.Parse(time.DateOnly, s); err == nil {
			filter.EndDate = &t
		}
	}

	txs, err := h.bankSvc.ListTransactions(r.Context(), filter)
	if err != nil {
		httperr.Write(w, r, err)
		return
	}

	resp := make([]transactionResponse, len(txs))
	for i, tx := range txs {
		resp[i] = toTransactionResponse(tx)
	}

	httperr.JSON(w, http.StatusOK, resp)
}

func (h *Handler) getTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	tx, err := h.bankSvc.GetTransaction(r.Context(), auth.MustOrganizationID(r.Context()), id)
	if err != nil {
		httperr.Write(w, r, err)
		return
	}

	httperr.JSON(w, http.StatusOK, toTransactionResponse(tx))
}

func (h *Handler) markProcessed(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	tx, err := h.bankSvc.MarkProcessed(r.Context(), auth.MustOrganizationID(r.Context()), id)
	if err != nil {
		httperr.Write(w, r, err)
		return
	}

	httperr.JSON(w, http.StatusOK, toTransactionResponse(tx))
}

func forced(r *http.Request) bool {
	force, _ := strconv.ParseBool(r.URL.Query().Get("force"))
	return force
}

func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return uuid.Nil, false
	}

	return id, true
}

type transactionParamsDTO struct {
	Amount          decimal.Decimal `json:"amount"`
	TransactionDate time.Time       `json:"transaction_date"`
	Description     string          `json:"description"`
	RawDescription  string          `json:"raw_description,omitempty"`
}

func (p transactionParamsDTO) params() bank.TransactionParams {
	return bank.TransactionParams{
		Amount:          p.Amount,
		TransactionDate: p.TransactionDate,
		Description:     p.Description,
		RawDescription:  p.RawDescription,
	}
}
