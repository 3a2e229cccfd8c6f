package money_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/apexrecon/internal/apperrors"
	"github.com/MrJamesThe3rd/apexrecon/internal/money"
)

func TestParseEuropean(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{input: "1.234,56", want: "1234.56"},
		{input: "-588,74", want: "-588.74"},
		{input: "10,00", want: "10"},
		{input: "0,01", want: "0.01"},
		{input: "8.608,52", want: "8608.52"},
		{input: "", wantErr: true},
		{input: "abc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := money.ParseEuropean(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "got %s", got)
		})
	}
}

func TestParse(t *testing.T) {
	got, err := money.Parse(" 30.00 ")
	require.NoError(t, err)
	assert.Equal(t, "30.00", money.Format(got))

	_, err = money.Parse("1,5")
	assert.Error(t, err)
}

func TestSum(t *testing.T) {
	got := money.Sum(
		decimal.RequireFromString("10.10"),
		decimal.RequireFromString("0.20"),
		decimal.RequireFromString("-0.30"),
	)
	assert.Equal(t, "10.00", money.Format(got))
	assert.True(t, money.Sum().IsZero())
}

func TestRequirePositive(t *testing.T) {
	assert.NoError(t, money.RequirePositive("amount", decimal.RequireFromString("0.01")))

	for _, v := range []string{"0", "-1"} {
		err := money.RequirePositive("amount", decimal.RequireFromString(v))
		require.Error(t, err)
		assert.True(t, errors.Is(err, apperrors.ErrValidation))

		var verr *apperrors.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "amount", verr.Field)
	}
}

func TestRequireNonNegative(t *testing.T) {
	assert.NoError(t, money.RequireNonNegative("unit_price", decimal.Zero))
	assert.ErrorIs(t, money.RequireNonNegative("unit_price", decimal.RequireFromString("-0.01")), apperrors.ErrValidation)
}
