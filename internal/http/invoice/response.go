package invoice

import (
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/apexrecon/internal/invoice"
	"github.com/MrJamesThe3rd/apexrecon/internal/money"
)

type invoiceResponse struct {
	ID          uuid.UUID      `json:"id"`
	CustomerID  uuid.UUID      `json:"customer_id"`
	Status      invoice.Status `json:"status"`
	IssueDate   string         `json:"issue_date"`
	DueDate     string         `json:"due_date"`
	TotalAmount string         `json:"total_amount"`
	AmountDue   string         `json:"amount_due"`
	PaymentDate *string        `json:"payment_date,omitempty"`
	VoidReason  string         `json:"void_reason,omitempty"`
	Items       []itemResponse `json:"items"`
	Version     int            `json:"version"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

type itemResponse struct {
	ID          uuid.UUID `json:"id"`
	Description string    `json:"description"`
	Quantity    int64     `json:"quantity"`
	UnitPrice   string    `json:"unit_price"`
	Total       string    `json:"total"`
}

func toResponse(inv *invoice.Invoice) invoiceResponse {
	resp := invoiceResponse{
		ID:          inv.ID,
		CustomerID:  inv.CustomerID,
		Status:      inv.Status(),
		IssueDate:   inv.IssueDate.Format(time.DateOnly),
		DueDate:     inv.DueDate.Format(time.DateOnly),
		TotalAmount: money.Format(inv.TotalAmount()),
		AmountDue:   money.Format(inv.AmountDue()),
		VoidReason:  inv.VoidReason(),
		Version:     inv.Version,
		CreatedAt:   inv.CreatedAt,
		UpdatedAt:   inv.UpdatedAt,
	}

	if pd := inv.PaymentDate(); pd != nil {
		resp.PaymentDate = new(pd.Format(time.DateOnly))
	}

	items := inv.Items()
	resp.Items = make([]itemResponse, len(items))

	for i, it := range items {
		resp.Items[i] = itemResponse{
			ID:          it.ID(),
			Description: it.Description(),
			Quantity:    it.Quantity(),
			UnitPrice:   money.Format(it.UnitPrice()),
			Total:       money.Format(it.Total()),
		}
	}

	return resp
}

func toResponseList(invs []*invoice.Invoice) []invoiceResponse {
	resp := make([]invoiceResponse, len(invs))
	for i, inv := range invs {
		resp[i] = toResponse(inv)
	}

	return resp
}
