package sheets

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/testlify/tenderstack/config"
	"github.com/testlify/tenderstack/internal/enum"
	"github.com/testlify/tenderstack/internal/logger"
	"github.com/testlify/tenderstack/internal/models"
	"github.com/testlify/tenderstack/internal/utils"
)

func testLogger() logger.Logger {
	l := logger.NewAppLogger(&logger.Config{DevMode: true})
	l.InitLogger()
	return l
}

type recordedRequest struct {
	method string
	path   string
	body   valueRange
}

func sheetsStub(t *testing.T, firstRow [][]interface{}, recorded *[]recordedRequest) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recordedRequest{method: r.Method, path: r.URL.Path}
		if r.Body != nil {
			json.NewDecoder(r.Body).Decode(&rec.body)
		}
		*recorded = append(*recorded, rec)

		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodGet:
			json.NewEncoder(w).Encode(valueRange{Values: firstRow})
		case r.Method == http.MethodPost:
			json.NewEncoder(w).Encode(map[string]interface{}{
				"updates": map[string]int{"updatedRows": len(rec.body.Values)},
			})
		default:
			w.Write([]byte("{}"))
		}
	}))
}

func testService(serverURL string) *sheetsService {
	return &sheetsService{
		cfg: &config.GoogleSheetsConfig{
			SpreadsheetID: "sheet-123",
			SheetName:     "filtered rfps",
		},
		log:        testLogger(),
		httpClient: http.DefaultClient,
		baseURL:    serverURL,
	}
}

func sampleEmail() *models.TenderEmail {
	received := time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC)
	return &models.TenderEmail{
		ID:               "email_abc",
		FromAddress:      "bid@sam.gov",
		TenderTitle:      utils.StringPtr("Assessment Platform"),
		IssuingAuthority: utils.StringPtr("GSA"),
		Deadline:         utils.StringPtr("2026-04-01"),
		Description:      utils.StringPtr("Platform procurement."),
		ExtractedLinks:   []string{"https://sam.gov/opp/1", "https://sam.gov/opp/2"},
		ReceivedAt:       &received,
		RelevanceScore:   utils.IntPtr(85),
		Classification:   enum.TierHigh,
	}
}

func TestAppendTenders_WritesHeadersWhenSheetEmpty(t *testing.T) {
	var recorded []recordedRequest
	server := sheetsStub(t, nil, &recorded)
	defer server.Close()

	svc := testService(server.URL)

	n, err := svc.AppendTenders(context.Background(), []*models.TenderEmail{sampleEmail()})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	// GET headers, PUT headers, POST append
	require.Len(t, recorded, 3)
	assert.Equal(t, http.MethodGet, recorded[0].method)
	assert.Equal(t, http.MethodPut, recorded[1].method)
	assert.Equal(t, http.MethodPost, recorded[2].method)

	require.Len(t, recorded[1].body.Values, 1)
	assert.Equal(t, "From Email", recorded[1].body.Values[0][0])
}

func TestAppendTenders_SkipsHeadersWhenPresent(t *testing.T) {
	var recorded []recordedRequest
	server := sheetsStub(t, [][]interface{}{{"From Email"}}, &recorded)
	defer server.Close()

	svc := testService(server.URL)

	n, err := svc.AppendTenders(context.Background(), []*models.TenderEmail{sampleEmail()})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.Len(t, recorded, 2)
	assert.Equal(t, http.MethodGet, recorded[0].method)
	assert.Equal(t, http.MethodPost, recorded[1].method)
}

func TestAppendTenders_EmptyInput(t *testing.T) {
	svc := testService("http://unused")

	n, err := svc.AppendTenders(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestBuildRow(t *testing.T) {
	row := buildRow(sampleEmail())

	require.Len(t, row, len(sheetHeaders))
	assert.Equal(t, "bid@sam.gov", row[0])
	assert.Equal(t, "Assessment Platform", row[1])
	assert.Equal(t, "GSA", row[2])
	assert.Equal(t, "2026-04-01", row[3])
	assert.Equal(t, "", row[4])
	assert.Equal(t, "https://sam.gov/opp/1, https://sam.gov/opp/2", row[6])
	assert.Equal(t, "2026-03-01T10:30:00Z", row[7])
	assert.Equal(t, "85", row[8])
	assert.Equal(t, "high", row[9])
}

func TestAppendTenders_UpstreamFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	svc := testService(server.URL)

	_, err := svc.AppendTenders(context.Background(), []*models.TenderEmail{sampleEmail()})
	assert.Error(t, err)
}
