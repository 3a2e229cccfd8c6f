package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/apexrecon/internal/apperrors"
	"github.com/MrJamesThe3rd/apexrecon/internal/event"
	"github.com/MrJamesThe3rd/apexrecon/internal/ledger"
	ledgerstore "github.com/MrJamesThe3rd/apexrecon/internal/ledger/store"
	outboxstore "github.com/MrJamesThe3rd/apexrecon/internal/outbox/store"
	"github.com/MrJamesThe3rd/apexrecon/internal/payment"
	"github.com/MrJamesThe3rd/apexrecon/internal/reconciliation"
)

type Store struct {
	db      *sql.DB
	ledgers *ledgerstore.Store
}

func New(db *sql.DB) *Store {
	return &Store{db: db, ledgers: ledgerstore.New(db)}
}

type scanner interface {
	Scan(dest ...any) error
}

const paymentColumns = `id, organization_id, payment_date, total_amount, reference, created_at`

const allocationColumns = `id, payment_id, invoice_id, bank_transaction_id, amount, created_at`

func scanPayment(s scanner) (*payment.Payment, error) {
	var (
		p   payment.Payment
		ref sql.NullString
	)

	if err := s.Scan(&p.ID, &p.OrganizationID, &p.PaymentDate, &p.TotalAmount, &ref, &p.CreatedAt); err != nil {
		return nil, err
	}

	p.Reference = ref.String

	return &p, nil
}

func scanAllocation(s scanner) (payment.Allocation, error) {
	var a payment.Allocation

	err := s.Scan(&a.ID, &a.PaymentID, &a.InvoiceID, &a.BankTransactionID, &a.Amount, &a.CreatedAt)

	return a, err
}

func (s *Store) CreatePayment(ctx context.Context, p *payment.Payment) error {
	query := `
		INSERT INTO payments (id, organization_id, payment_date, total_amount, reference, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING created_at
	`

	err := s.db.QueryRowContext(ctx, query,
		p.ID,
		p.OrganizationID,
		p.PaymentDate,
		p.TotalAmount,
		p.Reference,
	).Scan(&p.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating payment: %w", err)
	}

	return nil
}

func (s *Store) GetPayment(ctx context.Context, id uuid.UUID) (*payment.Payment, error) {
	return loadPayment(ctx, s.db, id, false)
}

func (s *Store) GetInvoiceLedger(ctx context.Context, id uuid.UUID) (*ledger.InvoiceLedger, error) {
	return s.ledgers.GetInvoiceLedger(ctx, id)
}

func (s *Store) GetBankLedger(ctx context.Context, bankTransactionID uuid.UUID) (*ledger.BankTransactionLedger, error) {
	return s.ledgers.GetBankLedger(ctx, bankTransactionID)
}

func (s *Store) ListAllocationsByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]payment.Allocation, error) {
	return listAllocations(ctx, s.db, `WHERE invoice_id = $1`, invoiceID)
}

func (s *Store) ListAllocationsByBankTransaction(ctx context.Context, bankTransactionID uuid.UUID) ([]payment.Allocation, error) {
	return listAllocations(ctx, s.db, `WHERE bank_transaction_id = $1`, bankTransactionID)
}

// ListAllocationsByOrganization returns every allocation of the
// organization's payments.
func (s *Store) ListAllocationsByOrganization(ctx context.Context, orgID uuid.UUID) ([]payment.Allocation, error) {
	return listAllocations(ctx, s.db,
		`WHERE payment_id IN (SELECT id FROM payments WHERE organization_id = $1)`, orgID)
}

// loadPayment reads the payment row and its allocations. With lock set the
// payment row stays locked until q's transaction ends.
func loadPayment(ctx context.Context, q ledgerstore.Querier, id uuid.UUID, lock bool) (*payment.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`
	if lock {
		query += ` FOR UPDATE`
	}

	p, err := scanPayment(q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("payment %s: %w", id, apperrors.ErrNotFound)
		}

		return nil, fmt.Errorf("getting payment: %w", err)
	}

	allocs, err := listAllocations(ctx, q, `WHERE payment_id = $1`, id)
	if err != nil {
		return nil, err
	}

	return payment.Restore(p, allocs)
}

// listAllocations filters on column, which must be one of the allocation
// foreign keys.
func listAllocations(ctx context.Context, q ledgerstore.Querier, where string, id uuid.UUID) ([]payment.Allocation, error) {
	query := `SELECT ` + allocationColumns + ` FROM allocations ` + where + ` ORDER BY created_at ASC, id ASC`

	rows, err := q.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("listing allocations: %w", err)
	}
	defer rows.Close()

	var allocs []payment.Allocation

	for rows.Next() {
		a, err := scanAllocation(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning allocation: %w", err)
		}

		allocs = append(allocs, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating allocations: %w", err)
	}

	return allocs, nil
}

type unitOfWork struct {
	tx *sql.Tx
}

func (s *Store) Begin(ctx context.Context) (reconciliation.UnitOfWork, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}

	return &unitOfWork{tx: dbTx}, nil
}

func (u *unitOfWork) Commit() error { return u.tx.Commit() }

// Rollback is a no-op after Commit.
func (u *unitOfWork) Rollback() error {
	if err := u.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return err
	}

	return nil
}

func (u *unitOfWork) LockInvoiceLedger(ctx context.Context, id uuid.UUID) (*ledger.InvoiceLedger, error) {
	return ledgerstore.LockInvoiceLedger(ctx, u.tx, id)
}

func (u *unitOfWork) LockBankLedger(ctx context.Context, bankTransactionID uuid.UUID) (*ledger.BankTransactionLedger, error) {
	return ledgerstore.LockBankLedger(ctx, u.tx, bankTransactionID)
}

func (u *unitOfWork) LockPayment(ctx context.Context, id uuid.UUID) (*payment.Payment, error) {
	return loadPayment(ctx, u.tx, id, true)
}

func (u *unitOfWork) CreateAllocation(ctx context.Context, a payment.Allocation) error {
	query := `
		INSERT INTO allocations (` + allocationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := u.tx.ExecContext(ctx, query,
		a.ID,
		a.PaymentID,
		a.InvoiceID,
		a.BankTransactionID,
		a.Amount,
		a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting allocation: %w", err)
	}

	return nil
}

func (u *unitOfWork) SaveInvoiceLedger(ctx context.Context, l *ledger.InvoiceLedger) error {
	return ledgerstore.UpdateInvoiceLedger(ctx, u.tx, l)
}

func (u *unitOfWork) SaveBankLedger(ctx context.Context, l *ledger.BankTransactionLedger) error {
	return ledgerstore.UpdateBankLedger(ctx, u.tx, l)
}

func (u *unitOfWork) AddNotifications(ctx context.Context, events []event.Notification) error {
	return outboxstore.Insert(ctx, u.tx, events)
}
