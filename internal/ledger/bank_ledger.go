package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/apexrecon/internal/apperrors"
	"github.com/MrJamesThe3rd/apexrecon/internal/money"
)

const bankLedgerEntity = "bank transaction ledger"

type BankStatus string

const (
	BankUnmatched        BankStatus = "UNMATCHED"
	BankPartiallyMatched BankStatus = "PARTIALLY_MATCHED"
	BankMatched          BankStatus = "MATCHED"
)

// BankTransactionLedger is the receivable balance of one incoming bank transaction.
type BankTransactionLedger struct {
	BankTransactionID uuid.UUID
	OrganizationID    uuid.UUID
	TransactionDate   time.Time
	Description       string
	RawDescription    string
	CreatedAt         time.Time
	UpdatedAt         time.Time

	amount          decimal.Decimal
	amountUnmatched decimal.Decimal
}

type BankLedgerParams struct {
	BankTransactionID uuid.UUID
	OrganizationID    uuid.UUID
	TransactionDate   time.Time
	Description       string
	RawDescription    string
	Amount            decimal.Decimal
}

func OpenBankTransactionLedger(p BankLedgerParams) (*BankTransactionLedger, error) {
	if p.BankTransactionID == uuid.Nil || p.OrganizationID == uuid.Nil {
		return nil, &apperrors.InvariantError{Entity: bankLedgerEntity, Message: "missing identity"}
	}

	if err := money.RequirePositive("amount", p.Amount); err != nil {
		return nil, err
	}

	return &BankTransactionLedger{
		BankTransactionID: p.BankTransactionID,
		OrganizationID:    p.OrganizationID,
		TransactionDate:   p.TransactionDate,
		Description:       p.Description,
		RawDescription:    p.RawDescription,
		amount:            p.Amount,
		amountUnmatched:   p.Amount,
	}, nil
}

func RestoreBankTransactionLedger(p BankLedgerParams, amountUnmatched decimal.Decimal) (*BankTransactionLedger, error) {
	l, err := OpenBankTransactionLedger(p)
	if err != nil {
		return nil, err
	}

	if err := checkBounds(bankLedgerEntity, p.Amount, amountUnmatched); err != nil {
		return nil, err
	}

	l.amountUnmatched = amountUnmatched

	return l, nil
}

func (l *BankTransactionLedger) Amount() decimal.Decimal          { return l.amount }
func (l *BankTransactionLedger) AmountUnmatched() decimal.Decimal { return l.amountUnmatched }

func (l *BankTransactionLedger) Matched() decimal.Decimal {
	return l.amount.Sub(l.amountUnmatched)
}

func (l *BankTransactionLedger) Status() BankStatus {
	switch {
	case l.amountUnmatched.IsZero():
		return BankMatched
	case l.amountUnmatched.LessThan(l.amount):
		return BankPartiallyMatched
	default:
		return BankUnmatched
	}
}

func (l *BankTransactionLedger) CheckAllocation(amount decimal.Decimal) error {
	status := l.Status()
	return drawDown(bankLedgerEntity, l.BankTransactionID, string(status), status == BankMatched, l.amountUnmatched, amount)
}

func (l *BankTransactionLedger) ApplyAllocation(amount decimal.Decimal) error {
	if err := l.CheckAllocation(amount); err != nil {
		return err
	}

	l.amountUnmatched = l.amountUnmatched.Sub(amount)

	return nil
}
