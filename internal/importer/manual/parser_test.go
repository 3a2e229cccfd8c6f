package manual_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/apexrecon/internal/importer/manual"
)

func TestParser_Parse(t *testing.T) {
	type testCase struct {
		name         string
		csv          string
		wantIncoming int
		wantSkipped  int
		wantErr      string
	}

	tests := []testCase{
		{
			name: "CreditsAndDebits",
			csv: `date,description,amount
2024-04-02,ACME LDA,1250.00
2024-04-03,Office rent,-800.00
2024-04-05,Globex,99.90
`,
			wantIncoming: 2,
			wantSkipped:  1,
		},
		{
			name: "HeaderCaseAndOrder",
			csv: `Amount, Date, Description
10.00, 2024-04-02, ACME
`,
			wantIncoming: 1,
		},
		{
			name: "BlankAndZeroRowsIgnored",
			csv: `date,description,amount
,,
2024-04-02,Fee reversal,0.00
`,
		},
		{
			name:    "Empty",
			csv:     "",
			wantErr: "missing header row",
		},
		{
			name:    "MissingAmountColumn",
			csv:     "date,description\n2024-04-02,ACME\n",
			wantErr: `missing "amount" column`,
		},
		{
			name:    "BadDate",
			csv:     "date,description,amount\n02-04-2024,ACME,10.00\n",
			wantErr: "line 2: invalid date",
		},
		{
			name:    "BadAmount",
			csv:     "date,description,amount\n2024-04-02,ACME,12o.00\n",
			wantErr: "line 2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmt, err := manual.NewParser().Parse(strings.NewReader(tt.csv))

			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)

				return
			}

			require.NoError(t, err)
			assert.Len(t, stmt.Incoming, tt.wantIncoming)
			assert.Equal(t, tt.wantSkipped, stmt.SkippedOutgoing)
		})
	}
}

func TestParser_Reference(t *testing.T) {
	csv := `date,description,amount,reference
2024-04-02,ACME LDA,1250.00,INV-0042
2024-04-03,Globex,20.00,
`

	stmt, err := manual.NewParser().Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, stmt.Incoming, 2)

	first := stmt.Incoming[0]
	assert.Equal(t, "ACME LDA", first.Description)
	assert.Equal(t, "ACME LDA INV-0042", first.RawDescription)
	assert.Equal(t, time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC), first.TransactionDate)
	assert.Equal(t, "1250", first.Amount.String())

	assert.Equal(t, "Globex", stmt.Incoming[1].RawDescription)
}
