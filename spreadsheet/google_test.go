package spreadsheet

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"axiapac.com/attendance/attendance/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

type sheetsServer struct {
	mu      sync.Mutex
	values  [][]interface{}
	updates map[string][][]interface{}
	options []string
}

func (s *sheetsServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prefix := "/v4/spreadsheets/sheet-1/values/"
	if !strings.HasPrefix(r.URL.Path, prefix) {
		http.NotFound(w, r)
		return
	}
	rng := strings.TrimPrefix(r.URL.Path, prefix)
	w.Header().Set("Content-Type", "application/json")

	switch r.Method {
	case http.MethodGet:
		json.NewEncoder(w).Encode(sheets.ValueRange{Range: rng, MajorDimension: "ROWS", Values: s.values})
	case http.MethodPut:
		var body sheets.ValueRange
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		s.updates[rng] = body.Values
		s.options = append(s.options, r.URL.Query().Get("valueInputOption"))
		json.NewEncoder(w).Encode(sheets.UpdateValuesResponse{UpdatedRange: rng})
	default:
		http.Error(w, "unexpected method", http.StatusMethodNotAllowed)
	}
}

func newTestGoogleSheet(t *testing.T, s *sheetsServer) *GoogleSheet {
	server := httptest.NewServer(s)
	t.Cleanup(server.Close)
	g, err := NewGoogleSheet(context.Background(), "sheet-1", "Sheet1",
		option.WithEndpoint(server.URL+"/"),
		option.WithoutAuthentication(),
		option.WithHTTPClient(server.Client()),
	)
	require.NoError(t, err)
	return g
}

func TestGoogleSheetReadRows(t *testing.T) {
	s := &sheetsServer{updates: map[string][][]interface{}{}, values: [][]interface{}{
		{"Date", "Employee ID"},
		{"16 Dec 25", "E1", "Ann", "", 8},
	}}
	g := newTestGoogleSheet(t, s)

	rows, err := g.ReadRows(context.Background())
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Date", "Employee ID"}, {"16 Dec 25", "E1", "Ann", "", "8"}}, rows)
	assert.Equal(t, "https://docs.google.com/spreadsheets/d/sheet-1", g.URL())
}

func TestGoogleSheetWrites(t *testing.T) {
	s := &sheetsServer{updates: map[string][][]interface{}{}}
	g := newTestGoogleSheet(t, s)
	ctx := context.Background()

	require.NoError(t, g.WriteColumn(ctx, core.ColStatus, 2, []string{"saved", "failed", "saved"}))
	require.NoError(t, g.WriteRows(ctx, 5, [][]string{{"2024-01-15", "E1"}}))
	require.NoError(t, g.WriteRows(ctx, 9, nil))

	assert.Equal(t, [][]interface{}{{"saved"}, {"failed"}, {"saved"}}, s.updates["'Sheet1'!I2:I4"])
	assert.Equal(t, [][]interface{}{{"2024-01-15", "E1"}}, s.updates["'Sheet1'!A5"])
	assert.Len(t, s.updates, 2)
	assert.Equal(t, []string{"RAW", "RAW"}, s.options)
}

func TestGoogleSheetQuotesName(t *testing.T) {
	g := &GoogleSheet{sheetName: "Bob's Roster"}
	assert.Equal(t, "'Bob''s Roster'!A1", g.a1("A1"))
}
