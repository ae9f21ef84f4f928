// Package sheets appends filtered tenders to a Google Sheet through the Sheets v4
// values API, authenticating with a service-account JWT.
package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	"golang.org/x/oauth2/google"

	"github.com/testlify/tenderstack/config"
	er "github.com/testlify/tenderstack/internal/errors"
	"github.com/testlify/tenderstack/internal/logger"
	"github.com/testlify/tenderstack/internal/models"
	"github.com/testlify/tenderstack/internal/tracing"
)

const (
	spreadsheetsScope = "https://www.googleapis.com/auth/spreadsheets"
	defaultBaseURL    = "https://sheets.googleapis.com"
)

// Column order is fixed; sheetHeaders must match the row projection in buildRow.
var sheetHeaders = []interface{}{
	"From Email",
	"Tender Title",
	"Issuing Authority",
	"Deadline",
	"Contract Value",
	"Description",
	"Extracted Links",
	"Date Received",
	"Relevance Score",
	"Classification",
}

type sheetsService struct {
	cfg        *config.GoogleSheetsConfig
	log        logger.Logger
	httpClient *http.Client
	baseURL    string
}

func NewSheetsService(cfg *config.GoogleSheetsConfig, log logger.Logger) (*sheetsService, error) {
	if cfg.SpreadsheetID == "" || cfg.ServiceAccountJSON == "" {
		return nil, errors.New("google sheets credentials not configured")
	}

	jwtCfg, err := google.JWTConfigFromJSON([]byte(cfg.ServiceAccountJSON), spreadsheetsScope)
	if err != nil {
		return nil, errors.Wrap(err, "invalid service account credentials")
	}

	return &sheetsService{
		cfg:        cfg,
		log:        log,
		httpClient: jwtCfg.Client(context.Background()),
		baseURL:    defaultBaseURL,
	}, nil
}

type valueRange struct {
	Range  string          `json:"range,omitempty"`
	Values [][]interface{} `json:"values"`
}

type appendResponse struct {
	Updates struct {
		UpdatedRows int `json:"updatedRows"`
	} `json:"updates"`
}

// AppendTenders writes one row per tender to the configured sheet, creating the
// header row first if the sheet is empty. Returns the number of rows appended.
func (s *sheetsService) AppendTenders(ctx context.Context, emails []*models.TenderEmail) (int, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "SheetsService.AppendTenders")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	span.SetTag("count", len(emails))

	if len(emails) == 0 {
		return 0, nil
	}

	if err := s.ensureHeaders(ctx); err != nil {
		tracing.TraceErr(span, err)
		return 0, err
	}

	rows := make([][]interface{}, 0, len(emails))
	for _, email := range emails {
		rows = append(rows, buildRow(email))
	}

	appendURL := fmt.Sprintf(
		"%s/v4/spreadsheets/%s/values/%s:append?valueInputOption=USER_ENTERED&insertDataOption=INSERT_ROWS",
		s.baseURL, s.cfg.SpreadsheetID, url.PathEscape(s.cfg.SheetName+"!A1"),
	)

	body, err := json.Marshal(valueRange{Values: rows})
	if err != nil {
		return 0, err
	}

	respBody, err := s.do(ctx, http.MethodPost, appendURL, body)
	if err != nil {
		tracing.TraceErr(span, err)
		return 0, errors.Wrap(er.ErrSheetAppendFailed, err.Error())
	}

	var parsed appendResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		tracing.TraceErr(span, err)
		return 0, err
	}

	updated := parsed.Updates.UpdatedRows
	if updated == 0 {
		updated = len(rows)
	}
	s.log.Infof("appended %d rows to sheet %s", updated, s.cfg.SheetName)
	return updated, nil
}

func (s *sheetsService) ensureHeaders(ctx context.Context) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "SheetsService.ensureHeaders")
	defer span.Finish()

	getURL := fmt.Sprintf(
		"%s/v4/spreadsheets/%s/values/%s",
		s.baseURL, s.cfg.SpreadsheetID, url.PathEscape(s.cfg.SheetName+"!A1:Z1"),
	)

	respBody, err := s.do(ctx, http.MethodGet, getURL, nil)
	if err != nil {
		tracing.TraceErr(span, err)
		return err
	}

	var firstRow valueRange
	if err := json.Unmarshal(respBody, &firstRow); err != nil {
		return err
	}
	if len(firstRow.Values) > 0 && len(firstRow.Values[0]) > 0 {
		return nil
	}

	updateURL := fmt.Sprintf(
		"%s/v4/spreadsheets/%s/values/%s?valueInputOption=RAW",
		s.baseURL, s.cfg.SpreadsheetID, url.PathEscape(s.cfg.SheetName+"!A1"),
	)
	body, err := json.Marshal(valueRange{Values: [][]interface{}{sheetHeaders}})
	if err != nil {
		return err
	}

	if _, err := s.do(ctx, http.MethodPut, updateURL, body); err != nil {
		tracing.TraceErr(span, err)
		return err
	}
	s.log.Info("sheet header row written")
	return nil
}

func (s *sheetsService) do(ctx context.Context, method, rawURL string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "sheets request failed")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.Errorf("sheets api returned status %d: %s", resp.StatusCode, string(respBody))
	}
	return respBody, nil
}

func buildRow(email *models.TenderEmail) []interface{} {
	receivedAt := ""
	if email.ReceivedAt != nil {
		receivedAt = email.ReceivedAt.UTC().Format(time.RFC3339)
	}
	score := ""
	if email.RelevanceScore != nil {
		score = strconv.Itoa(*email.RelevanceScore)
	}

	return []interface{}{
		email.FromAddress,
		deref(email.TenderTitle),
		deref(email.IssuingAuthority),
		deref(email.Deadline),
		deref(email.ContractValue),
		deref(email.Description),
		strings.Join(email.ExtractedLinks, ", "),
		receivedAt,
		score,
		email.Classification.String(),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
