package httperr_test

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/MrJamesThe3rd/apexrecon/internal/apperrors"
	"github.com/MrJamesThe3rd/apexrecon/internal/http/httperr"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{name: "Validation", err: apperrors.Required("amount"), expected: http.StatusBadRequest},
		{name: "WrappedNotFound", err: fmt.Errorf("payment %s: %w", uuid.New(), apperrors.ErrNotFound), expected: http.StatusNotFound},
		{
			name:     "InvalidTransition",
			err:      &apperrors.InvalidTransitionError{Entity: "invoice", Status: "VOID", Operation: "send"},
			expected: http.StatusConflict,
		},
		{name: "Conflict", err: apperrors.ErrConflict, expected: http.StatusConflict},
		{
			name:     "Overpayment",
			err:      &apperrors.OverpaymentError{Entity: "invoice ledger", Remaining: decimal.NewFromInt(1), Attempted: decimal.NewFromInt(2)},
			expected: http.StatusUnprocessableEntity,
		},
		{name: "Invariant", err: &apperrors.InvariantError{Entity: "payment", Message: "broken"}, expected: http.StatusInternalServerError},
		{name: "Unknown", err: errors.New("boom"), expected: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, httperr.Status(tt.err))
		})
	}
}

func TestWrite_HidesInternalErrors(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/payments", nil)

	httperr.Write(rec, req, errors.New("pq: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal error\n", rec.Body.String())
}

func TestWrite_ShowsDomainErrors(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments", nil)

	httperr.Write(rec, req, apperrors.Required("amount"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "amount")
}
