package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/apexrecon/internal/apperrors"
	"github.com/MrJamesThe3rd/apexrecon/internal/event"
	"github.com/MrJamesThe3rd/apexrecon/internal/invoice"
	"github.com/MrJamesThe3rd/apexrecon/internal/ledger"
	ledgerStore "github.com/MrJamesThe3rd/apexrecon/internal/ledger/store"
	outboxStore "github.com/MrJamesThe3rd/apexrecon/internal/outbox/store"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

const selectInvoiceColumns = `
	id, organization_id, customer_id, total_amount, amount_due, status, issue_date, due_date,
	payment_date, void_reason, version, created_at, updated_at
`

// scanSnapshot reads an invoice row without its items.
func scanSnapshot(s scanner) (invoice.Snapshot, error) {
	var (
		snap       invoice.Snapshot
		status     string
		voidReason sql.NullString
	)

	if err := s.Scan(
		&snap.ID, &snap.OrganizationID, &snap.CustomerID, &snap.TotalAmount, &snap.AmountDue, &status,
		&snap.IssueDate, &snap.DueDate, &snap.PaymentDate, &voidReason, &snap.Version,
		&snap.CreatedAt, &snap.UpdatedAt,
	); err != nil {
		return invoice.Snapshot{}, err
	}

	snap.Status = invoice.Status(status)
	snap.VoidReason = voidReason.String

	return snap, nil
}

func (s *Store) CreateInvoice(ctx context.Context, inv *invoice.Invoice) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer dbTx.Rollback()

	query := `
		INSERT INTO invoices (id, organization_id, customer_id, total_amount, amount_due, status, issue_date, due_date,
			payment_date, void_reason, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, 1, NOW(), NOW())
		RETURNING version, created_at, updated_at
	`

	err = dbTx.QueryRowContext(ctx, query,
		inv.ID,
		inv.OrganizationID,
		inv.CustomerID,
		inv.TotalAmount(),
		inv.AmountDue(),
		inv.Status(),
		inv.IssueDate,
		inv.DueDate,
		inv.PaymentDate(),
		nullString(inv.VoidReason()),
	).Scan(&inv.Version, &inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		return fmt.Errorf("creating invoice: %w", err)
	}

	if err := insertItems(ctx, dbTx, inv); err != nil {
		return err
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

func (s *Store) GetInvoice(ctx context.Context, id uuid.UUID) (*invoice.Invoice, error) {
	query := `SELECT ` + selectInvoiceColumns + ` FROM invoices WHERE id = $1`

	snap, err := scanSnapshot(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("invoice %s: %w", id, apperrors.ErrNotFound)
		}

		return nil, fmt.Errorf("getting invoice: %w", err)
	}

	return s.restore(ctx, snap)
}

func (s *Store) ListInvoices(ctx context.Context, filter invoice.ListFilter) ([]*invoice.Invoice, error) {
	query := `SELECT ` + selectInvoiceColumns + ` FROM invoices WHERE organization_id = $1`
	args := []any{filter.OrganizationID}

	if filter.CustomerID != nil {
		args = append(args, *filter.CustomerID)
		query += fmt.Sprintf(" AND customer_id = $%d", len(args))
	}

	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, st := range filter.Statuses {
			args = append(args, string(st))
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}

		query += " AND status IN (" + strings.Join(placeholders, ", ") + ")"
	}

	if filter.DueBefore != nil {
		args = append(args, *filter.DueBefore)
		query += fmt.Sprintf(" AND due_date < $%d", len(args))
	}

	query += " ORDER BY due_date ASC, id ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing invoices: %w", err)
	}
	defer rows.Close()

	var snaps []invoice.Snapshot

	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning invoice: %w", err)
		}

		snaps = append(snaps, snap)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating invoices: %w", err)
	}

	invs := make([]*invoice.Invoice, 0, len(snaps))

	for _, snap := range snaps {
		inv, err := s.restore(ctx, snap)
		if err != nil {
			return nil, err
		}

		invs = append(invs, inv)
	}

	return invs, nil
}

func (s *Store) UpdateInvoice(ctx context.Context, inv *invoice.Invoice, events []event.Notification) error {
	return s.inTx(ctx, inv, nil, func(dbTx *sql.Tx) error {
		return outboxStore.Insert(ctx, dbTx, events)
	})
}

func (s *Store) SendInvoice(ctx context.Context, inv *invoice.Invoice, l *ledger.InvoiceLedger, events []event.Notification) error {
	return s.inTx(ctx, inv, nil, func(dbTx *sql.Tx) error {
		if err := ledgerStore.InsertInvoiceLedger(ctx, dbTx, l); err != nil {
			return err
		}

		return outboxStore.Insert(ctx, dbTx, events)
	})
}

// UpdateWithLedger locks the invoice's ledger, runs apply on it and writes
// the ledger, inv and events in one transaction. An error from apply rolls
// everything back.
func (s *Store) UpdateWithLedger(ctx context.Context, inv *invoice.Invoice, apply func(*ledger.InvoiceLedger) error, events []event.Notification) error {
	before := func(dbTx *sql.Tx) error {
		l, err := ledgerStore.LockInvoiceLedger(ctx, dbTx, inv.ID)
		if err != nil {
			return err
		}

		if err := apply(l); err != nil {
			return err
		}

		return ledgerStore.UpdateInvoiceLedger(ctx, dbTx, l)
	}

	return s.inTx(ctx, inv, before, func(dbTx *sql.Tx) error {
		return outboxStore.Insert(ctx, dbTx, events)
	})
}

// inTx runs before, writes inv under its version check, runs after in the
// same transaction and bumps inv.Version once committed.
func (s *Store) inTx(ctx context.Context, inv *invoice.Invoice, before, after func(*sql.Tx) error) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer dbTx.Rollback()

	if before != nil {
		if err := before(dbTx); err != nil {
			return err
		}
	}

	query := `
		UPDATE invoices
		SET total_amount = $1, amount_due = $2, status = $3, payment_date = $4, void_reason = $5,
			version = version + 1, updated_at = NOW()
		WHERE id = $6 AND version = $7
		RETURNING version, updated_at
	`

	var (
		version   int
		updatedAt time.Time
	)

	err = dbTx.QueryRowContext(ctx, query,
		inv.TotalAmount(),
		inv.AmountDue(),
		inv.Status(),
		inv.PaymentDate(),
		nullString(inv.VoidReason()),
		inv.ID,
		inv.Version,
	).Scan(&version, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("invoice %s at version %d: %w", inv.ID, inv.Version, apperrors.ErrConflict)
		}

		return fmt.Errorf("updating invoice: %w", err)
	}

	if inv.Status() == invoice.StatusDraft {
		if _, err := dbTx.ExecContext(ctx, `DELETE FROM invoice_items WHERE invoice_id = $1`, inv.ID); err != nil {
			return fmt.Errorf("clearing invoice items: %w", err)
		}

		if err := insertItems(ctx, dbTx, inv); err != nil {
			return err
		}
	}

	if err := after(dbTx); err != nil {
		return err
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	inv.Version = version
	inv.UpdatedAt = updatedAt

	return nil
}

func insertItems(ctx context.Context, dbTx *sql.Tx, inv *invoice.Invoice) error {
	query := `
		INSERT INTO invoice_items (id, invoice_id, position, description, quantity, unit_price)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	for i, it := range inv.Items() {
		_, err := dbTx.ExecContext(ctx, query, it.ID(), inv.ID, i, it.Description(), it.Quantity(), it.UnitPrice())
		if err != nil {
			return fmt.Errorf("inserting invoice item: %w", err)
		}
	}

	return nil
}

func (s *Store) restore(ctx context.Context, snap invoice.Snapshot) (*invoice.Invoice, error) {
	items, err := s.loadItems(ctx, snap.ID)
	if err != nil {
		return nil, err
	}

	snap.Items = items

	inv, err := invoice.Restore(snap)
	if err != nil {
		return nil, fmt.Errorf("restoring invoice %s: %w", snap.ID, err)
	}

	return inv, nil
}

func (s *Store) loadItems(ctx context.Context, invoiceID uuid.UUID) ([]*invoice.Item, error) {
	query := `
		SELECT id, description, quantity, unit_price
		FROM invoice_items
		WHERE invoice_id = $1
		ORDER BY position ASC
	`

	rows, err := s.db.QueryContext(ctx, query, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("loading invoice items: %w", err)
	}
	defer rows.Close()

	var items []*invoice.Item

	for rows.Next() {
		var (
			id uuid.UUID
			p  invoice.ItemParams
		)

		if err := rows.Scan(&id, &p.Description, &p.Quantity, &p.UnitPrice); err != nil {
			return nil, fmt.Errorf("scanning invoice item: %w", err)
		}

		item, err := invoice.NewItem(id, p)
		if err != nil {
			return nil, fmt.Errorf("restoring invoice item %s: %w", id, err)
		}

		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating invoice items: %w", err)
	}

	return items, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
