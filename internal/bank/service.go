package bank

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/apexrecon/internal/apperrors"
	"github.com/MrJamesThe3rd/apexrecon/internal/clock"
	"github.com/MrJamesThe3rd/apexrecon/internal/event"
	"github.com/MrJamesThe3rd/apexrecon/internal/identity"
	"github.com/MrJamesThe3rd/apexrecon/internal/ledger"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=bank
type Repository interface {
	CreateConnection(ctx context.Context, c *Connection) error
	GetConnection(ctx context.Context, id uuid.UUID) (*Connection, error)
	ListConnections(ctx context.Context, orgID uuid.UUID) ([]*Connection, error)
	UpdateConnection(ctx context.Context, c *Connection, events []event.Notification) error

	GetTransaction(ctx context.Context, id uuid.UUID) (*Transaction, error)
	ListTransactions(ctx context.Context, filter ListFilter) ([]*Transaction, error)
	MarkTransactionProcessed(ctx context.Context, tx *Transaction) error

	// BeginIngest starts a transaction serialized against other ingests of
	// the same connection and date range.
	BeginIngest(ctx context.Context, connectionID uuid.UUID, minDate, maxDate time.Time) (IngestTx, error)
}

type IngestTx interface {
	// LockConnection holds the connection row so a concurrent revoke waits
	// for the ingest to finish.
	LockConnection(ctx context.Context, id uuid.UUID) (*Connection, error)
	FindDuplicates(ctx context.Context, connectionID uuid.UUID, params []TransactionParams) ([]*Transaction, error)
	CreateTransactions(ctx context.Context, txs []*Transaction) error
	CreateLedgers(ctx context.Context, ledgers []*ledger.BankTransactionLedger) error
	SaveConnection(ctx context.Context, c *Connection) error
	AddNotifications(ctx context.Context, events []event.Notification) error
	Commit() error
	Rollback() error
}

type Service struct {
	repo  Repository
	clock clock.Clock
	ids   identity.Generator
}

func NewService(repo Repository, clk clock.Clock, ids identity.Generator) *Service {
	return &Service{repo: repo, clock: clk, ids: ids}
}

type ListFilter struct {
	OrganizationID uuid.UUID
	ConnectionID   *uuid.UUID
	Processed      *bool
	StartDate      *time.Time
	EndDate        *time.Time
}

func (s *Service) CreateConnection(ctx context.Context, params ConnectionParams) (*Connection, error) {
	c, err := NewConnection(s.ids.New(), params)
	if err != nil {
		return nil, err
	}

	if err := s.repo.CreateConnection(ctx, c); err != nil {
		return nil, err
	}

	return c, nil
}

// GetConnection returns the connection if it belongs to orgID.
func (s *Service) GetConnection(ctx context.Context, orgID, id uuid.UUID) (*Connection, error) {
	c, err := s.repo.GetConnection(ctx, id)
	if err != nil {
		return nil, err
	}

	if c.OrganizationID != orgID {
		return nil, fmt.Errorf("%s %s: %w", connectionEntity, id, apperrors.ErrNotFound)
	}

	return c, nil
}

func (s *Service) ListConnections(ctx context.Context, orgID uuid.UUID) ([]*Connection, error) {
	return s.repo.ListConnections(ctx, orgID)
}

func (s *Service) RevokeConnection(ctx context.Context, orgID, id uuid.UUID) (*Connection, error) {
	c, err := s.GetConnection(ctx, orgID, id)
	if err != nil {
		return nil, err
	}

	revoked, err := c.RevokeAccess(s.clock.Now())
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateConnection(ctx, c, []event.Notification{revoked}); err != nil {
		return nil, fmt.Errorf("updating connection: %w", err)
	}

	return c, nil
}

func (s *Service) ReactivateConnection(ctx context.Context, orgID, id uuid.UUID, secretRef string) (*Connection, error) {
	c, err := s.GetConnection(ctx, orgID, id)
	if err != nil {
		return nil, err
	}

	if err := c.Reactivate(secretRef); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateConnection(ctx, c, nil); err != nil {
		return nil, fmt.Errorf("updating connection: %w", err)
	}

	return c, nil
}

func (s *Service) GetTransaction(ctx context.Context, orgID, id uuid.UUID) (*Transaction, error) {
	tx, err := s.repo.GetTransaction(ctx, id)
	if err != nil {
		return nil, err
	}

	if tx.OrganizationID != orgID {
		return nil, fmt.Errorf("%s %s: %w", transactionEntity, id, apperrors.ErrNotFound)
	}

	return tx, nil
}

func (s *Service) ListTransactions(ctx context.Context, filter ListFilter) ([]*Transaction, error) {
	return s.repo.ListTransactions(ctx, filter)
}

// MarkProcessed records that the transaction has been handed on downstream.
func (s *Service) MarkProcessed(ctx context.Context, orgID, id uuid.UUID) (*Transaction, error) {
	tx, err := s.GetTransaction(ctx, orgID, id)
	if err != nil {
		return nil, err
	}

	if err := tx.MarkAsProcessed(s.clock.Now()); err != nil {
		return nil, err
	}

	if err := s.repo.MarkTransactionProcessed(ctx, tx); err != nil {
		return nil, fmt.Errorf("marking transaction processed: %w", err)
	}

	return tx, nil
}

type IngestParams struct {
	OrganizationID uuid.UUID
	ConnectionID   uuid.UUID
	Transactions   []TransactionParams
	// AllowDuplicates skips duplicate detection, for re-submitting a batch
	// whose conflicts the user has reviewed.
	AllowDuplicates bool
}

type IngestResult struct {
	Imported  []*Transaction
	New       []TransactionParams
	Conflicts []Conflict
}

type Conflict struct {
	Incoming TransactionParams
	Existing *Transaction
}

// Ingest stores a batch of incoming transactions and opens a ledger for each.
// Nothing is written if the connection is revoked or, unless duplicates are
// allowed, if any transaction matches one already stored; the conflicts are
// returned for review instead.
func (s *Service) Ingest(ctx context.Context, params IngestParams) (*IngestResult, error) {
	if len(params.Transactions) == 0 {
		return &IngestResult{}, nil
	}

	for i, p := range params.Transactions {
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("transaction %d: %w", i+1, err)
		}
	}

	minDate, maxDate := dateRange(params.Transactions)

	itx, err := s.repo.BeginIngest(ctx, params.ConnectionID, minDate, maxDate)
	if err != nil {
		return nil, fmt.Errorf("beginning ingest: %w", err)
	}
	defer itx.Rollback()

	conn, err := itx.LockConnection(ctx, params.ConnectionID)
	if err != nil {
		return nil, err
	}

	if conn.OrganizationID != params.OrganizationID {
		return nil, fmt.Errorf("%s %s: %w", connectionEntity, params.ConnectionID, apperrors.ErrNotFound)
	}

	if !conn.Active() {
		return nil, &apperrors.InvalidTransitionError{
			Entity: connectionEntity, ID: conn.ID, Status: conn.status(), Operation: "ingest transactions",
		}
	}

	if !params.AllowDuplicates {
		conflicts, fresh, err := s.findConflicts(ctx, itx, conn.ID, params.Transactions)
		if err != nil {
			return nil, err
		}

		if len(conflicts) > 0 {
			return &IngestResult{New: fresh, Conflicts: conflicts}, nil
		}
	}

	now := s.clock.Now()

	txs, ledgers, err := s.build(conn, params.Transactions, now)
	if err != nil {
		return nil, err
	}

	if err := itx.CreateTransactions(ctx, txs); err != nil {
		return nil, fmt.Errorf("creating transactions: %w", err)
	}

	if err := itx.CreateLedgers(ctx, ledgers); err != nil {
		return nil, fmt.Errorf("opening ledgers: %w", err)
	}

	if err := conn.UpdateLastSync(now, now); err != nil {
		return nil, err
	}

	if err := itx.SaveConnection(ctx, conn); err != nil {
		return nil, fmt.Errorf("saving connection: %w", err)
	}

	ids := make([]uuid.UUID, len(txs))
	for i, tx := range txs {
		ids[i] = tx.ID
	}

	ingested, err := event.New(event.TypeBankTransactionsAdded, conn.OrganizationID, conn.ID, now, event.BankTransactionsIngested{
		ConnectionID: conn.ID,
		Transactions: ids,
	})
	if err != nil {
		return nil, err
	}

	if err := itx.AddNotifications(ctx, []event.Notification{ingested}); err != nil {
		return nil, fmt.Errorf("recording notification: %w", err)
	}

	if err := itx.Commit(); err != nil {
		return nil, fmt.Errorf("committing ingest: %w", err)
	}

	return &IngestResult{Imported: txs}, nil
}

type dupKey struct {
	Date           string
	Amount         string
	RawDescription string
}

func keyOf(date time.Time, amount fmt.Stringer, raw string) dupKey {
	return dupKey{Date: date.Format(time.DateOnly), Amount: amount.String(), RawDescription: raw}
}

func (s *Service) findConflicts(ctx context.Context, itx IngestTx, connectionID uuid.UUID, params []TransactionParams) ([]Conflict, []TransactionParams, error) {
	duplicates, err := itx.FindDuplicates(ctx, connectionID, params)
	if err != nil {
		return nil, nil, fmt.Errorf("finding duplicates: %w", err)
	}

	lookup := make(map[dupKey]*Transaction, len(duplicates))
	for _, d := range duplicates {
		lookup[keyOf(d.TransactionDate, d.Amount, d.RawDescription)] = d
	}

	var (
		fresh     []TransactionParams
		conflicts []Conflict
	)

	for _, p := range params {
		existing, found := lookup[keyOf(clock.Date(p.TransactionDate), p.Amount, p.RawDescription)]
		if found {
			conflicts = append(conflicts, Conflict{Incoming: p, Existing: existing})
			continue
		}

		fresh = append(fresh, p)
	}

	return conflicts, fresh, nil
}

func (s *Service) build(conn *Connection, params []TransactionParams, now time.Time) ([]*Transaction, []*ledger.BankTransactionLedger, error) {
	txs := make([]*Transaction, len(params))
	ledgers := make([]*ledger.BankTransactionLedger, len(params))

	for i, p := range params {
		tx, err := newTransaction(s.ids.New(), conn, p, now)
		if err != nil {
			return nil, nil, fmt.Errorf("transaction %d: %w", i+1, err)
		}

		l, err := tx.Ledger()
		if err != nil {
			return nil, nil, err
		}

		txs[i] = tx
		ledgers[i] = l
	}

	return txs, ledgers, nil
}

func dateRange(params []TransactionParams) (time.Time, time.Time) {
	minDate := clock.Date(params[0].TransactionDate)
	maxDate := minDate

	for _, p := range params[1:] {
		d := clock.Date(p.TransactionDate)

		if d.Before(minDate) {
			minDate = d
		}

		if d.After(maxDate) {
			maxDate = d
		}
	}

	return minDate, maxDate
}
