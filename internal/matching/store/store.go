package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/apexrecon/internal/matching"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) FindCustomer(ctx context.Context, orgID uuid.UUID, rawDescription string) (uuid.UUID, error) {
	query := `
		SELECT customer_id
		FROM customer_mappings
		WHERE organization_id = $1 AND $2 ILIKE '%' || raw_pattern || '%'
		ORDER BY LENGTH(raw_pattern) DESC, created_at DESC
		LIMIT 1
	`

	var customerID uuid.UUID

	err := s.db.QueryRowContext(ctx, query, orgID, rawDescription).Scan(&customerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return uuid.Nil, nil
		}

		return uuid.Nil, fmt.Errorf("finding match: %w", err)
	}

	return customerID, nil
}

// CreateMapping replaces any earlier mapping of the same pattern.
func (s *Store) CreateMapping(ctx context.Context, m matching.Mapping) error {
	query := `
		INSERT INTO customer_mappings (organization_id, raw_pattern, customer_id, created_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (organization_id, raw_pattern) DO UPDATE
		SET customer_id = EXCLUDED.customer_id, created_at = EXCLUDED.created_at
	`

	_, err := s.db.ExecContext(ctx, query, m.OrganizationID, m.RawPattern, m.CustomerID)
	if err != nil {
		return fmt.Errorf("creating mapping: %w", err)
	}

	return nil
}

func (s *Store) ListMappings(ctx context.Context, orgID uuid.UUID) ([]matching.Mapping, error) {
	query := `
		SELECT organization_id, raw_pattern, customer_id, created_at
		FROM customer_mappings
		WHERE organization_id = $1
		ORDER BY raw_pattern ASC
	`

	rows, err := s.db.QueryContext(ctx, query, orgID)
	if err != nil {
		return nil, fmt.Errorf("listing mappings: %w", err)
	}
	defer rows.Close()

	var mappings []matching.Mapping

	for rows.Next() {
		var m matching.Mapping
		if err := rows.Scan(&m.OrganizationID, &m.RawPattern, &m.CustomerID, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning mapping: %w", err)
		}

		mappings = append(mappings, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating mappings: %w", err)
	}

	return mappings, nil
}
