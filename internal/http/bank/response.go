package bank

import (
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/apexrecon/internal/bank"
	"github.com/MrJamesThe3rd/apexrecon/internal/money"
)

type connectionResponse struct {
	ID          uuid.UUID     `json:"id"`
	Provider    bank.Provider `json:"provider"`
	AccountName string        `json:"account_name"`
	AccountMask string        `json:"account_mask"`
	Active      bool          `json:"active"`
	LastSync    *time.Time    `json:"last_sync,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

func toConnectionResponse(c *bank.Connection) connectionResponse {
	return connectionResponse{
		ID:          c.ID,
		Provider:    c.Provider,
		AccountName: c.AccountName,
		AccountMask: c.AccountMask,
		Active:      c.Active(),
		LastSync:    c.LastSync(),
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

type transactionResponse struct {
	ID                  uuid.UUID     `json:"id"`
	ConnectionID        uuid.UUID     `json:"connection_id"`
	Provider            bank.Provider `json:"provider"`
	Amount              string        `json:"amount"`
	TransactionDate     string        `json:"transaction_date"`
	Description         string        `json:"description"`
	RawDescription      string        `json:"raw_description,omitempty"`
	IngestedAt          time.Time     `json:"ingested_at"`
	ProcessedAt         *time.Time    `json:"processed_at,omitempty"`
	SuggestedCustomerID *uuid.UUID    `json:"suggested_customer_id,omitempty"`
}

func toTransactionResponse(tx *bank.Transaction) transactionResponse {
	return transactionResponse{
		ID:              tx.ID,
		ConnectionID:    tx.ConnectionID,
		Provider:        tx.Provider,
		Amount:          money.Format(tx.Amount),
		TransactionDate: tx.TransactionDate.Format(time.DateOnly),
		Description:     tx.Description,
		RawDescription:  tx.RawDescription,
		IngestedAt:      tx.IngestedAt,
		ProcessedAt:     tx.ProcessedAt(),
	}
}

type ingestSuccessResponse struct {
	Imported        int                   `json:"imported"`
	SkippedOutgoing int                   `json:"skipped_outgoing"`
	Transactions    []transactionResponse `json:"transactions"`
}

type conflictDTO struct {
	Incoming transactionParamsDTO `json:"incoming"`
	Existing transactionResponse  `json:"existing"`
}

type ingestConflictResponse struct {
	New       []transactionParamsDTO `json:"new"`
	Conflicts []conflictDTO          `json:"conflicts"`
}

func toParamsDTO(p bank.TransactionParams) transactionParamsDTO {
	return transactionParamsDTO{
		Amount:          p.Amount,
		TransactionDate: p.TransactionDate,
		Description:     p.Description,
		RawDescription:  p.RawDescription,
	}
}
