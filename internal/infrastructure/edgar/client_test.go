package edgar

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fundtrack/fundtrack-core/internal/domain/entities"
)

const sampleFormIndex = `Description:           Form Index
Last Data Received:    November 30, 2024
Form Type   Company Name                     CIK         Date Filed  File Name
---------------------------------------------------------------------------------
13F-HR      RENAISSANCE TECHNOLOGIES LLC     1037389     2024-11-14  edgar/data/1037389/0001037389-24-000123.txt
13F-HR/A    RENAISSANCE TECHNOLOGIES LLC     1037389     2024-11-20  edgar/data/1037389/0001037389-24-000130.txt
13F-HR      BRIDGEWATER ASSOCIATES, LP       1350694     2024-11-12  edgar/data/1350694/0001350694-24-000045.txt
10-K        SOME OPERATING CO                9999999     2024-11-01  edgar/data/9999999/0009999999-24-000001.txt
13F-HR      BAD ROW CAPITAL                  notacik     2024-11-01  edgar/data/1/bad.txt
13F-HR      BAD DATE CAPITAL                 1234567     2024-13-40  edgar/data/1234567/bad.txt
`

func TestParseFormIndex(t *testing.T) {
	refs, err := parseFormIndex(strings.NewReader(sampleFormIndex))
	require.NoError(t, err)

	// Amendments, other form types and malformed rows are all skipped.
	require.Len(t, refs, 2)

	assert.Equal(t, entities.FilingRef{
		Company: "RENAISSANCE TECHNOLOGIES LLC",
		CIK:     1037389,
		FiledOn: time.Date(2024, time.November, 14, 0, 0, 0, 0, time.UTC),
		Path:    "edgar/data/1037389/0001037389-24-000123.txt",
	}, refs[0])
	assert.Equal(t, "BRIDGEWATER ASSOCIATES, LP", refs[1].Company)
	assert.Equal(t, int64(1350694), refs[1].CIK)
}

func TestParseFormIndex_Empty(t *testing.T) {
	refs, err := parseFormIndex(strings.NewReader("no separator, no body"))
	require.NoError(t, err)
	assert.Empty(t, refs)
}

func TestClient_FilingIndex(t *testing.T) {
	var gotPath, gotAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAgent = r.Header.Get("User-Agent")
		fmt.Fprint(w, sampleFormIndex)
	}))
	defer server.Close()

	client := NewClientWithBaseURL("fundtrack ops@example.com", server.URL)
	refs, err := client.FilingIndex(context.Background(), entities.Quarter{Year: 2024, Q: 4})
	require.NoError(t, err)

	assert.Equal(t, "/Archives/edgar/full-index/2024/QTR4/form.idx", gotPath)
	assert.Equal(t, "fundtrack ops@example.com", gotAgent)
	assert.Len(t, refs, 2)
}

func TestClient_FilingIndex_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "slow down", http.StatusForbidden)
	}))
	defer server.Close()

	client := NewClientWithBaseURL("fundtrack ops@example.com", server.URL)
	_, err := client.FilingIndex(context.Background(), entities.Quarter{Year: 2024, Q: 4})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status")
}
