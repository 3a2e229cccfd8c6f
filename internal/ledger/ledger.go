// Package ledger tracks the open balances that reconciliation draws down:
// the amount still owed on an invoice and the amount of a bank deposit not
// yet matched to any invoice.
//
// Balances only ever decrease, never below zero, and each ledger's status is
// derived from its balance rather than stored independently.
package ledger

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/apexrecon/internal/apperrors"
	"github.com/MrJamesThe3rd/apexrecon/internal/money"
)

// drawDown validates taking amount out of remaining. terminal is true once
// the ledger is fully consumed.
func drawDown(entity string, id uuid.UUID, status string, terminal bool, remaining, amount decimal.Decimal) error {
	if err := money.RequirePositive("amount", amount); err != nil {
		return err
	}

	if terminal {
		return &apperrors.InvalidTransitionError{Entity: entity, ID: id, Status: status, Operation: "apply amount"}
	}

	if remaining.Sub(amount).IsNegative() {
		return &apperrors.OverpaymentError{Entity: entity, ID: id, Remaining: remaining, Attempted: amount}
	}

	return nil
}

func checkBounds(entity string, original, remaining decimal.Decimal) error {
	if remaining.IsNegative() || remaining.GreaterThan(original) {
		return &apperrors.InvariantError{
			Entity:  entity,
			Message: "remaining " + money.Format(remaining) + " outside [0, " + money.Format(original) + "]",
		}
	}

	return nil
}
