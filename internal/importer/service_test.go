package importer_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/apexrecon/internal/apperrors"
	"github.com/MrJamesThe3rd/apexrecon/internal/bank"
	"github.com/MrJamesThe3rd/apexrecon/internal/importer"
)

func TestService_Import(t *testing.T) {
	type testCase struct {
		name     string
		provider bank.Provider
		content  string
		wantLen  int
		wantErr  error
	}

	tests := []testCase{
		{
			name:     "CGD",
			provider: bank.ProviderCGD,
			content:  "Data mov.;Descrição;Montante\n30-01-2026;TRF ACME;150,00\n",
			wantLen:  1,
		},
		{
			name:     "Manual",
			provider: bank.ProviderManual,
			content:  "date,description,amount\n2026-01-30,TRF ACME,150.00\n",
			wantLen:  1,
		},
		{
			name:     "UnknownProvider",
			provider: "plaid",
			wantErr:  apperrors.ErrValidation,
		},
		{
			name:     "Unparseable",
			provider: bank.ProviderCGD,
			content:  "not,a,statement\n",
			wantErr:  apperrors.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmt, err := importer.NewService().Import(tt.provider, strings.NewReader(tt.content))

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Len(t, stmt.Incoming, tt.wantLen)
		})
	}
}
