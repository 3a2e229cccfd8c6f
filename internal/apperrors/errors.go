// Package apperrors defines the error kinds shared across the domain packages.
//
// Each concrete error type matches its sentinel through errors.Is, so callers
// can branch on the kind without caring about the details:
//
//	if errors.Is(err, apperrors.ErrOverpayment) { ... }
//
// and extract the details with errors.As when they do.
package apperrors

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrValidation        = errors.New("validation failed")
	ErrInvalidTransition = errors.New("invalid state transition")
	ErrOverpayment       = errors.New("overpayment")
	ErrInvariant         = errors.New("domain invariant violated")
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("concurrent modification")
)

// ValidationError reports a malformed input value.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Message
	}

	return fmt.Sprintf("validation failed: %s %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// InvalidTransitionError reports an operation that is not permitted from the
// entity's current status.
type InvalidTransitionError struct {
	Entity    string
	ID        uuid.UUID
	Status    string
	Operation string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("%s %s: cannot %s while %s", e.Entity, e.ID, e.Operation, e.Status)
}

func (e *InvalidTransitionError) Is(target error) bool { return target == ErrInvalidTransition }

// OverpaymentError reports an amount that exceeds the remaining balance.
type OverpaymentError struct {
	Entity    string
	ID        uuid.UUID
	Remaining decimal.Decimal
	Attempted decimal.Decimal
}

func (e *OverpaymentError) Error() string {
	return fmt.Sprintf("%s %s: amount %s exceeds remaining balance %s",
		e.Entity, e.ID, e.Attempted.StringFixed(2), e.Remaining.StringFixed(2))
}

func (e *OverpaymentError) Is(target error) bool { return target == ErrOverpayment }

// InvariantError reports a state that should be impossible, such as a missing
// identity or a stored balance outside its bounds.
type InvariantError struct {
	Entity  string
	Message string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("%s: invariant violated: %s", e.Entity, e.Message)
}

func (e *InvariantError) Is(target error) bool { return target == ErrInvariant }

// Required returns a ValidationError for a missing field.
func Required(field string) error {
	return &ValidationError{Field: field, Message: "is required"}
}
