package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/testlify/tenderstack/internal/enum"
	"github.com/testlify/tenderstack/internal/logger"
	"github.com/testlify/tenderstack/internal/models"
	"github.com/testlify/tenderstack/internal/repository"
	"github.com/testlify/tenderstack/internal/utils"
	"github.com/testlify/tenderstack/services"
	"github.com/testlify/tenderstack/services/filter"
	"github.com/testlify/tenderstack/services/parser"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testLogger() logger.Logger {
	l := logger.NewAppLogger(&logger.Config{DevMode: true})
	l.InitLogger()
	return l
}

type memEmailRepo struct {
	emails    []*models.TenderEmail
	createErr error
}

func (r *memEmailRepo) Create(_ context.Context, email *models.TenderEmail) (bool, error) {
	if r.createErr != nil {
		return false, r.createErr
	}
	for _, e := range r.emails {
		if e.MessageID == email.MessageID {
			email.ID = e.ID
			return false, nil
		}
	}
	if email.ID == "" {
		email.ID = utils.GenerateNanoIDWithPrefix("email", 24)
	}
	r.emails = append(r.emails, email)
	return true, nil
}

func (r *memEmailRepo) GetByID(_ context.Context, id string) (*models.TenderEmail, error) {
	for _, e := range r.emails {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, nil
}

func (r *memEmailRepo) GetByMessageID(_ context.Context, messageID string) (*models.TenderEmail, error) {
	for _, e := range r.emails {
		if e.MessageID == messageID {
			return e, nil
		}
	}
	return nil, nil
}

func (r *memEmailRepo) ListAll(_ context.Context, limit int) ([]*models.TenderEmail, error) {
	if limit > len(r.emails) {
		limit = len(r.emails)
	}
	return r.emails[:limit], nil
}

func (r *memEmailRepo) ListTenders(_ context.Context, limit int) ([]*models.TenderEmail, error) {
	var out []*models.TenderEmail
	for _, e := range r.emails {
		if e.IsTender && len(out) < limit {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *memEmailRepo) ListUnfiltered(_ context.Context) ([]*models.TenderEmail, error) {
	var out []*models.TenderEmail
	for _, e := range r.emails {
		if !e.IsFiltered {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *memEmailRepo) MarkFiltered(_ context.Context, ids []string) error {
	for _, id := range ids {
		for _, e := range r.emails {
			if e.ID == id {
				e.IsFiltered = true
			}
		}
	}
	return nil
}

func (r *memEmailRepo) UpdateScore(_ context.Context, id string, score int, tier enum.ClassificationTier, reasoning string) error {
	for _, e := range r.emails {
		if e.ID == id {
			e.RelevanceScore = &score
			e.Classification = tier
			e.MatchReasoning = reasoning
		}
	}
	return nil
}

// fakeDedup mirrors the Redis filter's set-if-absent behavior in memory.
type fakeDedup struct {
	seen map[string]bool
}

func newFakeDedup() *fakeDedup {
	return &fakeDedup{seen: make(map[string]bool)}
}

func (d *fakeDedup) FirstSeen(_ context.Context, messageID string) bool {
	if d.seen[messageID] {
		return false
	}
	d.seen[messageID] = true
	return true
}

func (d *fakeDedup) Forget(_ context.Context, messageID string) {
	delete(d.seen, messageID)
}

func (d *fakeDedup) Close() error { return nil }

type memLogRepo struct {
	logs []*models.ProcessingLog
}

func (r *memLogRepo) Create(_ context.Context, log *models.ProcessingLog) error {
	r.logs = append(r.logs, log)
	return nil
}

func (r *memLogRepo) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

func testSetup() (*repository.Repositories, *services.Services, *memEmailRepo, *memLogRepo) {
	log := testLogger()
	emailRepo := &memEmailRepo{}
	logRepo := &memLogRepo{}
	repos := &repository.Repositories{
		EmailRepository: emailRepo,
		LogRepository:   logRepo,
	}

	svc := &services.Services{
		ParserService: parser.NewService(nil, log),
	}
	svc.FilterService = filter.NewService(emailRepo, nil, nil, nil, log)

	return repos, svc, emailRepo, logRepo
}

func testRouter(repos *repository.Repositories, svc *services.Services) *gin.Engine {
	r := gin.New()
	h := InitHandlers(repos, svc, testLogger())
	r.GET("/health", HealthCheck)
	r.Any("/api/inbound-email", h.Inbound.Handle())
	r.GET("/api/emails", h.Emails.ListAll())
	r.GET("/api/emails/tenders", h.Emails.ListTenders())
	r.GET("/api/emails/:id", h.Emails.GetByID())
	r.POST("/api/export-to-sheets", h.Export.Trigger())
	return r
}

const samplePayload = `{
	"From": "bid@cityofspringfield.us",
	"FromFull": {"Email": "bid@cityofspringfield.us", "Name": "City Procurement"},
	"Subject": "Invitation to Bid: Road Maintenance",
	"MessageID": "msg-001",
	"Date": "Mon, 02 Mar 2026 10:00:00 -0500",
	"TextBody": "Submission deadline: 15 April 2026. Details: https://bids.springfield.us/itb/22",
	"Attachments": [{"Name": "itb.pdf", "ContentType": "application/pdf", "ContentLength": 1024}]
}`

func TestInbound_MethodNotAllowed(t *testing.T) {
	repos, svc, _, _ := testSetup()
	router := testRouter(repos, svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/inbound-email", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestInbound_InvalidPayload(t *testing.T) {
	repos, svc, _, _ := testSetup()
	router := testRouter(repos, svc)

	for _, body := range []string{"not json", "{}"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/inbound-email", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	}
}

func TestInbound_Success(t *testing.T) {
	repos, svc, emailRepo, logRepo := testSetup()
	router := testRouter(repos, svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/inbound-email", strings.NewReader(samplePayload))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, "msg-001", resp["messageId"])
	assert.Contains(t, resp["dbId"], "email")

	require.Len(t, emailRepo.emails, 1)
	saved := emailRepo.emails[0]
	assert.Equal(t, "msg-001", saved.MessageID)
	assert.Equal(t, "bid@cityofspringfield.us", saved.FromAddress)
	assert.True(t, saved.IsTender)
	assert.Equal(t, enum.MatchChannelEmailPattern, saved.DetectedBy)
	assert.Equal(t, enum.ParsingMethodStructural, saved.ParsingMethod)
	require.NotNil(t, saved.Deadline)
	assert.Equal(t, "15 April 2026", *saved.Deadline)
	assert.Equal(t, []string{"https://bids.springfield.us/itb/22"}, []string(saved.ExtractedLinks))
	require.Len(t, saved.Attachments, 1)
	assert.Equal(t, "itb.pdf", saved.Attachments[0].Name)
	assert.Empty(t, saved.Attachments[0].StorageKey)

	require.Len(t, logRepo.logs, 1)
	assert.Equal(t, enum.LogStatusSuccess, logRepo.logs[0].Status)
}

func TestInbound_DuplicateMessageID(t *testing.T) {
	repos, svc, emailRepo, logRepo := testSetup()
	router := testRouter(repos, svc)

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/inbound-email", strings.NewReader(samplePayload))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)

		if i == 1 {
			var resp map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, true, resp["duplicate"])
		}
	}

	assert.Len(t, emailRepo.emails, 1)
	require.Len(t, logRepo.logs, 2)
	assert.Equal(t, enum.LogStatusSkipped, logRepo.logs[1].Status)
}

func TestInbound_RetryAfterSaveFailure(t *testing.T) {
	repos, svc, emailRepo, logRepo := testSetup()
	dedup := newFakeDedup()
	svc.DedupFilter = dedup
	router := testRouter(repos, svc)

	emailRepo.createErr = errors.New("connection refused")
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/inbound-email", strings.NewReader(samplePayload))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.False(t, dedup.seen["msg-001"], "marker must be released when the save fails")

	// Postmark retries the same delivery once the database is back.
	emailRepo.createErr = nil
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/inbound-email", strings.NewReader(samplePayload))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["success"])
	assert.Nil(t, resp["duplicate"])

	require.Len(t, emailRepo.emails, 1)
	assert.Equal(t, "msg-001", emailRepo.emails[0].MessageID)

	require.Len(t, logRepo.logs, 2)
	assert.Equal(t, enum.LogStatusError, logRepo.logs[0].Status)
	assert.Equal(t, enum.LogStatusSuccess, logRepo.logs[1].Status)
}

func TestInbound_DedupSkipReturnsExistingID(t *testing.T) {
	repos, svc, emailRepo, _ := testSetup()
	dedup := newFakeDedup()
	svc.DedupFilter = dedup
	router := testRouter(repos, svc)

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/inbound-email", strings.NewReader(samplePayload))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)

		if i == 1 {
			var resp map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, true, resp["duplicate"])
			assert.Equal(t, emailRepo.emails[0].ID, resp["dbId"])
		}
	}

	assert.Len(t, emailRepo.emails, 1)
}

func TestInbound_StaleDedupMarker(t *testing.T) {
	repos, svc, emailRepo, _ := testSetup()
	dedup := newFakeDedup()
	dedup.seen["msg-001"] = true
	svc.DedupFilter = dedup
	router := testRouter(repos, svc)

	// Marker present but nothing persisted: the delivery must still be processed.
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/inbound-email", strings.NewReader(samplePayload))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["success"])
	assert.Nil(t, resp["duplicate"])
	require.Len(t, emailRepo.emails, 1)
}

func TestInbound_SubjectDefault(t *testing.T) {
	repos, svc, emailRepo, _ := testSetup()
	router := testRouter(repos, svc)

	payload := `{"From": "someone@example.com", "MessageID": "msg-002"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/inbound-email", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, emailRepo.emails, 1)
	assert.Equal(t, "(No Subject)", emailRepo.emails[0].Subject)
	assert.False(t, emailRepo.emails[0].IsTender)
}

func TestEmails_List(t *testing.T) {
	repos, svc, emailRepo, _ := testSetup()
	emailRepo.emails = []*models.TenderEmail{
		{ID: "email_1", MessageID: "m1", IsTender: true},
		{ID: "email_2", MessageID: "m2"},
	}
	router := testRouter(repos, svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/emails", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Success bool                  `json:"success"`
		Count   int                   `json:"count"`
		Data    []*models.TenderEmail `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 2, resp.Count)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/emails/tenders", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Count)
	assert.Equal(t, "email_1", resp.Data[0].ID)
}

func TestEmails_GetByID(t *testing.T) {
	repos, svc, emailRepo, _ := testSetup()
	emailRepo.emails = []*models.TenderEmail{
		{ID: "email_1", MessageID: "m1", IsTender: true},
	}
	router := testRouter(repos, svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/emails/email_1", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Success bool                `json:"success"`
		Data    *models.TenderEmail `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "email_1", resp.Data.ID)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/emails/email_missing", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestExport_Trigger(t *testing.T) {
	repos, svc, emailRepo, logRepo := testSetup()
	emailRepo.emails = []*models.TenderEmail{
		{ID: "email_1", MessageID: "m1", Subject: "psychometric assessment RFP", IsTender: true},
		{ID: "email_2", MessageID: "m2", Subject: "Road resurfacing"},
	}
	router := testRouter(repos, svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/export-to-sheets", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, float64(2), resp["candidates"])
	assert.Equal(t, float64(1), resp["filtered"])

	selected, _ := emailRepo.GetByID(context.Background(), "email_1")
	assert.True(t, selected.IsFiltered)

	require.Len(t, logRepo.logs, 1)
	assert.Equal(t, enum.LogStatusSuccess, logRepo.logs[0].Status)
}

func TestHealth(t *testing.T) {
	repos, svc, _, _ := testSetup()
	router := testRouter(repos, svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}
