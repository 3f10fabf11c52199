package parsers

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fundtrack/fundtrack-core/internal/domain/entities"
)

func TestFundsCSV_RoundTrip(t *testing.T) {
	funds := []entities.Fund{
		{CIK: 1000066160, Name: "Renaissance Technologies", MatchedName: "RENAISSANCE TECHNOLOGIES LLC", Score: 100},
		{CIK: 1350694, Name: "Bridgewater", MatchedName: "BRIDGEWATER ASSOCIATES, LP", Score: 96.5},
	}

	var buf bytes.Buffer
	require.NoError(t, FundsCSV{}.Write(&buf, funds))

	parsed, err := FundsCSV{}.Parse(&buf)
	require.NoError(t, err)
	assert.Equal(t, funds, parsed)
}

func TestFundsCSV_Parse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []entities.Fund
		wantErr string
	}{
		{
			name:  "columns in any order",
			input: "name,cik\nCitadel,1423053\n",
			want:  []entities.Fund{{CIK: 1423053, Name: "Citadel"}},
		},
		{
			name:  "empty body",
			input: "cik,name,matched_name,score\n",
		},
		{
			name:    "missing cik column",
			input:   "name,score\nCitadel,100\n",
			wantErr: "missing required column: cik",
		},
		{
			name:    "non-numeric cik",
			input:   "cik,name\nabc,Citadel\n",
			wantErr: "invalid cik",
		},
		{
			name:    "non-numeric score",
			input:   "cik,name,score\n1423053,Citadel,high\n",
			wantErr: "invalid score",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FundsCSV{}.Parse(strings.NewReader(tt.input))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHoldingsCSV_RoundTrip(t *testing.T) {
	holdings := []entities.ExtractedHolding{
		{
			Cusip:      "0378331005",
			Name:       "APPLE INC",
			Ticker:     "AAPL",
			ClassTitle: "COM",
			Shares:     10000,
			Value:      5000000,
			CIK:        1000066160,
			FiledOn:    time.Date(2024, time.November, 14, 0, 0, 0, 0, time.UTC),
		},
		{
			Cusip:  "594918104",
			Name:   "MICROSOFT CORP",
			Shares: 0,
			Value:  800000,
			CIK:    1000066160,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, HoldingsCSV{}.Write(&buf, holdings))

	parsed, err := HoldingsCSV{}.Parse(&buf)
	require.NoError(t, err)
	assert.Equal(t, holdings, parsed)
}

func TestHoldingsCSV_Parse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{
			name:    "missing cusip column",
			input:   "shares,value,cik\n100,200,300\n",
			wantErr: "missing required column: cusip",
		},
		{
			name:    "invalid shares",
			input:   "cusip,shares,value,cik\n0378331005,many,200,300\n",
			wantErr: "invalid shares",
		},
		{
			name:    "invalid filing date",
			input:   "cusip,shares,value,cik,filing_date\n0378331005,1,200,300,14/11/2024\n",
			wantErr: "invalid filing_date",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := HoldingsCSV{}.Parse(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
