// Package money holds the decimal helpers shared by every amount in the
// system. Amounts are never represented as floats.
package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/apexrecon/internal/apperrors"
)

// Parse reads a plain decimal string such as "1234.56".
func Parse(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing amount %q: %w", s, err)
	}

	return d, nil
}

// ParseEuropean reads amounts formatted with a dot thousands separator and a
// comma decimal separator, as found in bank statement exports.
// "1.234,56" -> 1234.56, "-588,74" -> -588.74.
func ParseEuropean(s string) (decimal.Decimal, error) {
	clean := strings.ReplaceAll(strings.TrimSpace(s), ".", "")
	clean = strings.ReplaceAll(clean, ",", ".")

	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing amount %q: %w", s, err)
	}

	return d, nil
}

func Sum(values ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}

	return total
}

// RequirePositive returns a validation error naming field unless d > 0.
func RequirePositive(field string, d decimal.Decimal) error {
	if !d.IsPositive() {
		return &apperrors.ValidationError{Field: field, Message: "must be greater than zero"}
	}

	return nil
}

// RequireNonNegative returns a validation error naming field when d < 0.
func RequireNonNegative(field string, d decimal.Decimal) error {
	if d.IsNegative() {
		return &apperrors.ValidationError{Field: field, Message: "must not be negative"}
	}

	return nil
}

func Format(d decimal.Decimal) string {
	return d.StringFixed(2)
}
