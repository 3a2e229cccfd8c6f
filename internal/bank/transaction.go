package bank

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/apexrecon/internal/apperrors"
	"github.com/MrJamesThe3rd/apexrecon/internal/clock"
	"github.com/MrJamesThe3rd/apexrecon/internal/ledger"
	"github.com/MrJamesThe3rd/apexrecon/internal/money"
)

const transactionEntity = "bank transaction"

// Transaction is one incoming credit on a connected account.
type Transaction struct {
	ID              uuid.UUID
	OrganizationID  uuid.UUID
	ConnectionID    uuid.UUID
	Provider        Provider
	Amount          decimal.Decimal
	TransactionDate time.Time
	Description     string
	RawDescription  string
	IngestedAt      time.Time

	processedAt *time.Time
}

type TransactionParams struct {
	Amount          decimal.Decimal
	TransactionDate time.Time
	Description     string
	RawDescription  string
}

// Validate checks the fields every incoming transaction needs.
func (p TransactionParams) Validate() error {
	if err := money.RequirePositive("amount", p.Amount); err != nil {
		return err
	}

	if p.TransactionDate.IsZero() {
		return apperrors.Required("transaction_date")
	}

	if p.description() == "" {
		return apperrors.Required("description")
	}

	return nil
}

// description falls back to the raw bank text when no cleaned-up one is given.
func (p TransactionParams) description() string {
	if desc := strings.TrimSpace(p.Description); desc != "" {
		return desc
	}

	return strings.TrimSpace(p.RawDescription)
}

func newTransaction(id uuid.UUID, c *Connection, p TransactionParams, now time.Time) (*Transaction, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	return &Transaction{
		ID:              id,
		OrganizationID:  c.OrganizationID,
		ConnectionID:    c.ID,
		Provider:        c.Provider,
		Amount:          p.Amount,
		TransactionDate: clock.Date(p.TransactionDate),
		Description:     p.description(),
		RawDescription:  p.RawDescription,
		IngestedAt:      now,
	}, nil
}

// RestoreTransaction sets the processing stamp on a transaction loaded from storage.
func RestoreTransaction(tx *Transaction, processedAt *time.Time) *Transaction {
	tx.processedAt = processedAt
	return tx
}

func (t *Transaction) ProcessedAt() *time.Time { return t.processedAt }
func (t *Transaction) Processed() bool         { return t.processedAt != nil }

// MarkAsProcessed stamps the transaction once; a second call fails.
func (t *Transaction) MarkAsProcessed(now time.Time) error {
	if t.processedAt != nil {
		return &apperrors.InvalidTransitionError{
			Entity: transactionEntity, ID: t.ID, Status: "processed", Operation: "mark as processed",
		}
	}

	t.processedAt = &now

	return nil
}

// Ledger opens the receivable balance for the transaction.
func (t *Transaction) Ledger() (*ledger.BankTransactionLedger, error) {
	return ledger.OpenBankTransactionLedger(ledger.BankLedgerParams{
		BankTransactionID: t.ID,
		OrganizationID:    t.OrganizationID,
		TransactionDate:   t.TransactionDate,
		Description:       t.Description,
		RawDescription:    t.RawDescription,
		Amount:            t.Amount,
	})
}

// Statement is the result of parsing a bank export. Only credits are
// reconciled against invoices; debits are counted and dropped.
type Statement struct {
	Incoming        []TransactionParams
	SkippedOutgoing int
	// Charset the export was decoded from.
	Charset string
}
