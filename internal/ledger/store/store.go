package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/apexrecon/internal/apperrors"
	"github.com/MrJamesThe3rd/apexrecon/internal/ledger"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Querier is satisfied by *sql.DB and *sql.Tx, letting other stores reuse
// these queries inside their own transactions.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type scanner interface {
	Scan(dest ...any) error
}

const invoiceLedgerColumns = `
	invoice_id, organization_id, customer_id, due_date, original_amount, amount_due, status, created_at, updated_at
`

// scanInvoiceLedger expects invoiceLedgerColumns order.
func scanInvoiceLedger(s scanner) (*ledger.InvoiceLedger, error) {
	var (
		p          ledger.InvoiceLedgerParams
		due        decimal.Decimal
		customerID uuid.NullUUID
		status     string
		createdAt  time.Time
		updatedAt  time.Time
	)

	if err := s.Scan(&p.InvoiceID, &p.OrganizationID, &customerID, &p.DueDate, &p.Amount, &due, &status, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	p.CustomerID = customerID.UUID

	l, err := ledger.RestoreInvoiceLedger(p, due)
	if err != nil {
		return nil, err
	}

	// VOID is the one status not derived from the balance.
	if ledger.InvoiceStatus(status) == ledger.InvoiceVoid {
		if err := l.Void(); err != nil {
			return nil, err
		}
	}

	l.CreatedAt = createdAt
	l.UpdatedAt = updatedAt

	return l, nil
}

const bankLedgerColumns = `
	bank_transaction_id, organization_id, transaction_date, description, raw_description,
	amount, amount_unmatched, created_at, updated_at
`

func scanBankLedger(s scanner) (*ledger.BankTransactionLedger, error) {
	var (
		p         ledger.BankLedgerParams
		unmatched decimal.Decimal
		rawDesc   sql.NullString
		createdAt time.Time
		updatedAt time.Time
	)

	if err := s.Scan(
		&p.BankTransactionID, &p.OrganizationID, &p.TransactionDate, &p.Description, &rawDesc,
		&p.Amount, &unmatched, &createdAt, &updatedAt,
	); err != nil {
		return nil, err
	}

	p.RawDescription = rawDesc.String

	l, err := ledger.RestoreBankTransactionLedger(p, unmatched)
	if err != nil {
		return nil, err
	}

	l.CreatedAt = createdAt
	l.UpdatedAt = updatedAt

	return l, nil
}

func InsertInvoiceLedger(ctx context.Context, q Querier, l *ledger.InvoiceLedger) error {
	query := `
		INSERT INTO invoice_ledgers (invoice_id, organization_id, customer_id, due_date, original_amount, amount_due, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING created_at, updated_at
	`

	err := q.QueryRowContext(ctx, query,
		l.ID,
		l.OrganizationID,
		l.CustomerID,
		l.DueDate,
		l.OriginalAmount(),
		l.AmountDue(),
		l.Status(),
	).Scan(&l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting invoice ledger: %w", err)
	}

	return nil
}

// UpdateInvoiceLedger writes the balance and its derived status.
func UpdateInvoiceLedger(ctx context.Context, q Querier, l *ledger.InvoiceLedger) error {
	query := `
		UPDATE invoice_ledgers
		SET amount_due = $1, status = $2, updated_at = NOW()
		WHERE invoice_id = $3
	`

	if _, err := q.ExecContext(ctx, query, l.AmountDue(), l.Status(), l.ID); err != nil {
		return fmt.Errorf("updating invoice ledger: %w", err)
	}

	return nil
}

// LockInvoiceLedger loads the ledger and holds its row lock until the
// surrounding transaction ends.
func LockInvoiceLedger(ctx context.Context, q Querier, id uuid.UUID) (*ledger.InvoiceLedger, error) {
	query := `SELECT ` + invoiceLedgerColumns + ` FROM invoice_ledgers WHERE invoice_id = $1 FOR UPDATE`

	l, err := scanInvoiceLedger(q.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFound("invoice ledger", id, err)
	}

	return l, nil
}

func InsertBankLedger(ctx context.Context, q Querier, l *ledger.BankTransactionLedger) error {
	query := `
		INSERT INTO bank_transaction_ledgers (bank_transaction_id, organization_id, transaction_date, description, raw_description,
			amount, amount_unmatched, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		RETURNING created_at, updated_at
	`

	err := q.QueryRowContext(ctx, query,
		l.BankTransactionID,
		l.OrganizationID,
		l.TransactionDate,
		l.Description,
		l.RawDescription,
		l.Amount(),
		l.AmountUnmatched(),
		l.Status(),
	).Scan(&l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting bank transaction ledger: %w", err)
	}

	return nil
}

func UpdateBankLedger(ctx context.Context, q Querier, l *ledger.BankTransactionLedger) error {
	query := `
		UPDATE bank_transaction_ledgers
		SET amount_unmatched = $1, status = $2, updated_at = NOW()
		WHERE bank_transaction_id = $3
	`

	if _, err := q.ExecContext(ctx, query, l.AmountUnmatched(), l.Status(), l.BankTransactionID); err != nil {
		return fmt.Errorf("updating bank transaction ledger: %w", err)
	}

	return nil
}

func LockBankLedger(ctx context.Context, q Querier, id uuid.UUID) (*ledger.BankTransactionLedger, error) {
	query := `SELECT ` + bankLedgerColumns + ` FROM bank_transaction_ledgers WHERE bank_transaction_id = $1 FOR UPDATE`

	l, err := scanBankLedger(q.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFound("bank transaction ledger", id, err)
	}

	return l, nil
}

func (s *Store) GetInvoiceLedger(ctx context.Context, id uuid.UUID) (*ledger.InvoiceLedger, error) {
	query := `SELECT ` + invoiceLedgerColumns + ` FROM invoice_ledgers WHERE invoice_id = $1`

	l, err := scanInvoiceLedger(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFound("invoice ledger", id, err)
	}

	return l, nil
}

func (s *Store) ListInvoiceLedgers(ctx context.Context, filter ledger.InvoiceFilter) ([]*ledger.InvoiceLedger, error) {
	query := `SELECT ` + invoiceLedgerColumns + ` FROM invoice_ledgers WHERE organization_id = $1`
	args := []any{filter.OrganizationID}

	if filter.CustomerID != nil {
		args = append(args, *filter.CustomerID)
		query += fmt.Sprintf(" AND customer_id = $%d", len(args))
	}

	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, st := range filter.Statuses {
			statuses[i] = string(st)
		}

		var clause string

		clause, args = inClause("status", statuses, args)
		query += " AND " + clause
	}

	query += " ORDER BY due_date ASC, invoice_id ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing invoice ledgers: %w", err)
	}
	defer rows.Close()

	var ledgers []*ledger.InvoiceLedger

	for rows.Next() {
		l, err := scanInvoiceLedger(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning invoice ledger: %w", err)
		}

		ledgers = append(ledgers, l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating invoice ledgers: %w", err)
	}

	return ledgers, nil
}

func (s *Store) GetBankLedger(ctx context.Context, id uuid.UUID) (*ledger.BankTransactionLedger, error) {
	query := `SELECT ` + bankLedgerColumns + ` FROM bank_transaction_ledgers WHERE bank_transaction_id = $1`

	l, err := scanBankLedger(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFound("bank transaction ledger", id, err)
	}

	return l, nil
}

func (s *Store) ListBankLedgers(ctx context.Context, filter ledger.BankFilter) ([]*ledger.BankTransactionLedger, error) {
	query := `SELECT ` + bankLedgerColumns + ` FROM bank_transaction_ledgers WHERE organization_id = $1`
	args := []any{filter.OrganizationID}

	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, st := range filter.Statuses {
			statuses[i] = string(st)
		}

		var clause string

		clause, args = inClause("status", statuses, args)
		query += " AND " + clause
	}

	query += " ORDER BY transaction_date ASC, bank_transaction_id ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing bank ledgers: %w", err)
	}
	defer rows.Close()

	var ledgers []*ledger.BankTransactionLedger

	for rows.Next() {
		l, err := scanBankLedger(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning bank ledger: %w", err)
		}

		ledgers = append(ledgers, l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating bank ledgers: %w", err)
	}

	return ledgers, nil
}

// inClause renders "col IN ($n, ...)" continuing the placeholder numbering of args.
func inClause(col string, values []string, args []any) (string, []any) {
	placeholders := make([]string, len(values))

	for i, v := range values {
		args = append(args, v)
		placeholders[i] = fmt.Sprintf("$%d", len(args))
	}

	return col + " IN (" + strings.Join(placeholders, ", ") + ")", args
}

func notFound(entity string, id uuid.UUID, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %s: %w", entity, id, apperrors.ErrNotFound)
	}

	return fmt.Errorf("loading %s %s: %w", entity, id, err)
}
