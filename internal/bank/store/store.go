package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/apexrecon/internal/apperrors"
	"github.com/MrJamesThe3rd/apexrecon/internal/bank"
	"github.com/MrJamesThe3rd/apexrecon/internal/clock"
	"github.com/MrJamesThe3rd/apexrecon/internal/event"
	"github.com/MrJamesThe3rd/apexrecon/internal/ledger"
	ledgerstore "github.com/MrJamesThe3rd/apexrecon/internal/ledger/store"
	outboxstore "github.com/MrJamesThe3rd/apexrecon/internal/outbox/store"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

const connectionColumns = `
	id, organization_id, provider, secret_ref, account_name, account_mask, last_sync, active, created_at, updated_at
`

func scanConnection(s scanner) (*bank.Connection, error) {
	var (
		id        uuid.UUID
		p         bank.ConnectionParams
		provider  string
		lastSync  *time.Time
		active    bool
		createdAt time.Time
		updatedAt time.Time
	)

	if err := s.Scan(&id, &p.OrganizationID, &provider, &p.SecretRef, &p.AccountName, &p.AccountMask,
		&lastSync, &active, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	p.Provider = bank.Provider(provider)

	c, err := bank.RestoreConnection(id, p, lastSync, active)
	if err != nil {
		return nil, err
	}

	c.CreatedAt = createdAt
	c.UpdatedAt = updatedAt

	return c, nil
}

const transactionColumns = `
	id, organization_id, connection_id, provider, amount, transaction_date,
	description, raw_description, ingested_at, processed_at
`

func scanTransaction(s scanner) (*bank.Transaction, error) {
	var (
		tx          bank.Transaction
		provider    string
		rawDesc     sql.NullString
		processedAt *time.Time
	)

	if err := s.Scan(&tx.ID, &tx.OrganizationID, &tx.ConnectionID, &provider, &tx.Amount, &tx.TransactionDate,
		&tx.Description, &rawDesc, &tx.IngestedAt, &processedAt); err != nil {
		return nil, err
	}

	tx.Provider = bank.Provider(provider)
	tx.RawDescription = rawDesc.String

	return bank.RestoreTransaction(&tx, processedAt), nil
}

func (s *Store) CreateConnection(ctx context.Context, c *bank.Connection) error {
	query := `
		INSERT INTO bank_connections (id, organization_id, provider, secret_ref, account_name, account_mask, last_sync, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		RETURNING created_at, updated_at
	`

	err := s.db.QueryRowContext(ctx, query,
		c.ID,
		c.OrganizationID,
		c.Provider,
		c.SecretRef(),
		c.AccountName,
		c.AccountMask,
		c.LastSync(),
		c.Active(),
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("creating bank connection: %w", err)
	}

	return nil
}

func (s *Store) GetConnection(ctx context.Context, id uuid.UUID) (*bank.Connection, error) {
	return getConnection(ctx, s.db, id, false)
}

func getConnection(ctx context.Context, q ledgerstore.Querier, id uuid.UUID, lock bool) (*bank.Connection, error) {
	query := `SELECT ` + connectionColumns + ` FROM bank_connections WHERE id = $1`
	if lock {
		query += ` FOR UPDATE`
	}

	c, err := scanConnection(q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("bank connection %s: %w", id, apperrors.ErrNotFound)
		}

		return nil, fmt.Errorf("getting bank connection: %w", err)
	}

	return c, nil
}

func (s *Store) ListConnections(ctx context.Context, orgID uuid.UUID) ([]*bank.Connection, error) {
	query := `SELECT ` + connectionColumns + ` FROM bank_connections WHERE organization_id = $1 ORDER BY account_name ASC`

	rows, err := s.db.QueryContext(ctx, query, orgID)
	if err != nil {
		return nil, fmt.Errorf("listing bank connections: %w", err)
	}
	defer rows.Close()

	var conns []*bank.Connection

	for rows.Next() {
		c, err := scanConnection(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning bank connection: %w", err)
		}

		conns = append(conns, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating bank connections: %w", err)
	}

	return conns, nil
}

// UpdateConnection saves c and queues events in one transaction.
func (s *Store) UpdateConnection(ctx context.Context, c *bank.Connection, events []event.Notification) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer dbTx.Rollback()

	if err := saveConnection(ctx, dbTx, c); err != nil {
		return err
	}

	if err := outboxstore.Insert(ctx, dbTx, events); err != nil {
		return err
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

func saveConnection(ctx context.Context, q ledgerstore.Querier, c *bank.Connection) error {
	query := `
		UPDATE bank_connections
		SET secret_ref = $1, last_sync = $2, active = $3, updated_at = NOW()
		WHERE id = $4
		RETURNING updated_at
	`

	err := q.QueryRowContext(ctx, query, c.SecretRef(), c.LastSync(), c.Active(), c.ID).Scan(&c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("bank connection %s: %w", c.ID, apperrors.ErrNotFound)
		}

		return fmt.Errorf("updating bank connection: %w", err)
	}

	return nil
}

func (s *Store) GetTransaction(ctx context.Context, id uuid.UUID) (*bank.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM bank_transactions WHERE id = $1`

	tx, err := scanTransaction(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("bank transaction %s: %w", id, apperrors.ErrNotFound)
		}

		return nil, fmt.Errorf("getting bank transaction: %w", err)
	}

	return tx, nil
}

func (s *Store) ListTransactions(ctx context.Context, filter bank.ListFilter) ([]*bank.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM bank_transactions WHERE organization_id = $1`
	args := []any{filter.OrganizationID}

	if filter.ConnectionID != nil {
		args = append(args, *filter.ConnectionID)
		query += fmt.Sprintf(" AND connection_id = $%d", len(args))
	}

	if filter.Processed != nil {
		if *filter.Processed {
			query += " AND processed_at IS NOT NULL"
		} else {
			query += " AND processed_at IS NULL"
		}
	}

	if filter.StartDate != nil {
		args = append(args, *filter.StartDate)
		query += fmt.Sprintf(" AND transaction_date >= $%d", len(args))
	}

	if filter.EndDate != nil {
		args = append(args, *filter.EndDate)
		query += fmt.Sprintf(" AND transaction_date <= $%d", len(args))
	}

	query += " ORDER BY transaction_date ASC, id ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing bank transactions: %w", err)
	}
	defer rows.Close()

	var txs []*bank.Transaction

	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning bank transaction: %w", err)
		}

		txs = append(txs, tx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating bank transactions: %w", err)
	}

	return txs, nil
}

func (s *Store) MarkTransactionProcessed(ctx context.Context, tx *bank.Transaction) error {
	query := `
		UPDATE bank_transactions
		SET processed_at = $1
		WHERE id = $2 AND processed_at IS NULL
	`

	res, err := s.db.ExecContext(ctx, query, tx.ProcessedAt(), tx.ID)
	if err != nil {
		return fmt.Errorf("marking bank transaction processed: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("marking bank transaction processed: %w", err)
	}

	if n == 0 {
		return &apperrors.InvalidTransitionError{
			Entity: "bank transaction", ID: tx.ID, Status: "processed", Operation: "mark as processed",
		}
	}

	return nil
}

func ingestLockKey(connectionID uuid.UUID, minDate, maxDate time.Time) int64 {
	h := fnv.New64a()
	h.Write(connectionID[:])
	h.Write([]byte(minDate.Format(time.DateOnly)))
	h.Write([]byte{0})
	h.Write([]byte(maxDate.Format(time.DateOnly)))

	return int64(h.Sum64())
}

type ingestTx struct {
	tx *sql.Tx
}

func (s *Store) BeginIngest(ctx context.Context, connectionID uuid.UUID, minDate, maxDate time.Time) (bank.IngestTx, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning ingest tx: %w", err)
	}

	lockKey := ingestLockKey(connectionID, minDate, maxDate)
	if _, err := dbTx.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", lockKey); err != nil {
		dbTx.Rollback()
		return nil, fmt.Errorf("acquiring ingest lock: %w", err)
	}

	return &ingestTx{tx: dbTx}, nil
}

func (itx *ingestTx) Commit() error { return itx.tx.Commit() }

func (itx *ingestTx) Rollback() error {
	if err := itx.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return err
	}

	return nil
}

func (itx *ingestTx) LockConnection(ctx context.Context, id uuid.UUID) (*bank.Connection, error) {
	return getConnection(ctx, itx.tx, id, true)
}

func (itx *ingestTx) SaveConnection(ctx context.Context, c *bank.Connection) error {
	return saveConnection(ctx, itx.tx, c)
}

func (itx *ingestTx) FindDuplicates(ctx context.Context, connectionID uuid.UUID, params []bank.TransactionParams) ([]*bank.Transaction, error) {
	if len(params) == 0 {
		return nil, nil
	}

	type lookupKey struct {
		Date           string
		Amount         string
		RawDescription string
	}

	minDate := clock.Date(params[0].TransactionDate)
	maxDate := minDate
	keySet := make(map[lookupKey]struct{}, len(params))

	for _, p := range params {
		date := clock.Date(p.TransactionDate)

		if date.Before(minDate) {
			minDate = date
		}

		if date.After(maxDate) {
			maxDate = date
		}

		keySet[lookupKey{
			Date:           date.Format(time.DateOnly),
			Amount:         p.Amount.String(),
			RawDescription: p.RawDescription,
		}] = struct{}{}
	}

	query := `SELECT ` + transactionColumns + `
		FROM bank_transactions
		WHERE connection_id = $1 AND transaction_date >= $2 AND transaction_date <= $3
		ORDER BY transaction_date ASC`

	rows, err := itx.tx.QueryContext(ctx, query, connectionID, minDate, maxDate)
	if err != nil {
		return nil, fmt.Errorf("finding duplicates: %w", err)
	}
	defer rows.Close()

	var duplicates []*bank.Transaction

	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning bank transaction: %w", err)
		}

		k := lookupKey{
			Date:           tx.TransactionDate.Format(time.DateOnly),
			Amount:         tx.Amount.String(),
			RawDescription: tx.RawDescription,
		}

		if _, found := keySet[k]; !found {
			continue
		}

		duplicates = append(duplicates, tx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating duplicate rows: %w", err)
	}

	return duplicates, nil
}

func (itx *ingestTx) CreateTransactions(ctx context.Context, txs []*bank.Transaction) error {
	query := `
		INSERT INTO bank_transactions (id, organization_id, connection_id, provider, amount, transaction_date,
			description, raw_description, ingested_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	for _, tx := range txs {
		_, err := itx.tx.ExecContext(ctx, query,
			tx.ID,
			tx.OrganizationID,
			tx.ConnectionID,
			tx.Provider,
			tx.Amount,
			tx.TransactionDate,
			tx.Description,
			tx.RawDescription,
			tx.IngestedAt,
		)
		if err != nil {
			return fmt.Errorf("creating bank transaction: %w", err)
		}
	}

	return nil
}

func (itx *ingestTx) CreateLedgers(ctx context.Context, ledgers []*ledger.BankTransactionLedger) error {
	for _, l := range ledgers {
		if err := ledgerstore.InsertBankLedger(ctx, itx.tx, l); err != nil {
			return err
		}
	}

	return nil
}

func (itx *ingestTx) AddNotifications(ctx context.Context, events []event.Notification) error {
	return outboxstore.Insert(ctx, itx.tx, events)
}
