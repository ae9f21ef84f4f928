package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	"github.com/testlify/tenderstack/config"
	"github.com/testlify/tenderstack/dto"
	er "github.com/testlify/tenderstack/internal/errors"
	"github.com/testlify/tenderstack/internal/logger"
	"github.com/testlify/tenderstack/internal/tracing"
)

type geminiService struct {
	cfg        *config.GeminiConfig
	log        logger.Logger
	httpClient *http.Client
}

func NewGeminiService(cfg *config.GeminiConfig, log logger.Logger) *geminiService {
	return &geminiService{
		cfg: cfg,
		log: log,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

const extractionPrompt = `Role: You are a highly accurate Procurement Data Extraction specialist. Your task is to parse inbound email payloads from tender notification services and convert them into a valid JSON array of objects.

Input Format: You will receive a JSON payload from a Postmark inbound webhook.

Instructions:

Analyze the Subject, TextBody, and HtmlBody fields of the input JSON.

Identify all individual contract opportunities (tenders) listed in the email.

For each tender identified, extract the following specific fields:

tenderTitle: The specific name or title of the solicitation.

issuingAuthority: The name of the agency, government body, or department that issued the bid.

deadline: The response deadline or proposed deadline or closing date. Format as DD-MM-YYYY if possible.

contractValue: The estimated budget or value (if mentioned). Include the currency.

description: A concise 2-3 sentence summary of the scope of work.

extractedLinks: The primary URL provided to view the notice or download the bid documents. Ignore any links related to 'Unsubscribe', 'Email Preferences', 'Account Settings', or 'Help Center'. Only extract URLs that link directly to a specific solicitation or project folder.

Constraint: If a field is not present, set its value to null.

Output Format: Return ONLY a valid JSON array. Do not include conversational text, markdown formatting blocks, or explanations.

Input Data:
%s
`

const scoringPrompt = `Role: You are a Strategic Procurement Analyst for Testlify, a company specializing in talent assessment, psychometric testing, and AI-powered recruitment software. Your goal is to filter a list of tenders and identify only those that align with the company's core business.

Company Profile & Alignment Criteria:
Testlify is a match if the tender falls into EITHER of the following groups:

Technical Software Services (NAICS Focus): Any project involving custom software development, IT systems design, cloud hosting, or infrastructure.

Target Codes: 541511, 541512, 513210, 541519, 541513, 541330, 518210.

Assessment & Talent Services (Keyword Focus): Any project involving the following terms or their semantic equivalents:

Keywords: psychometric, assessment centre, recruitment services, talent development, CPV 79600000, 79600000, 79635000, CPV 79635000, AI interviewing, Workforce development, Leadership assessment.

Instructions:

Review the tenderTitle, subject, and description of each object in the provided JSON array.

Assign a Relevance Score (0-100) based on how closely the requirements match Testlify's services.

Assign a Classification:

High Priority: Score 80-100 (Direct match for assessment software or custom programming).

Medium: Score 50-79 (Broad HR services or general IT support that might include a software component).

Low: Score 20-49 (Tangentially related, e.g., general consulting).

Irrelevant: Score 0-19 (Construction, manual labor, hardware-only, or unrelated sectors).

Negative Filter: Explicitly reject tenders for "Staff Augmentation" or "Temporary Staffing" unless they specifically require an assessment platform or AI screening tool.

Output Format:
Return ONLY a valid JSON array containing the original data plus three new keys: relevanceScore, classification, and matchReasoning. Do not include markdown formatting or conversational text.

Input Data:
%s
`

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

func (s *geminiService) ExtractTenderFields(ctx context.Context, email *dto.InboundEmail) ([]dto.TenderFields, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "GeminiService.ExtractTenderFields")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	payload, err := json.Marshal(email)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	raw, err := s.generateContent(ctx, fmt.Sprintf(extractionPrompt, string(payload)))
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	var fields []dto.TenderFields
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &fields); err != nil {
		tracing.TraceErr(span, err)
		return nil, errors.Wrap(err, "failed to parse extraction response")
	}

	if len(fields) == 0 {
		return nil, er.ErrEmptyExtraction
	}

	span.SetTag("tenders", len(fields))
	return fields, nil
}

func (s *geminiService) ScoreTenders(ctx context.Context, candidates []dto.TenderCandidate) ([]dto.ScoredTender, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "GeminiService.ScoreTenders")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	span.SetTag("candidates", len(candidates))

	payload, err := json.Marshal(candidates)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	raw, err := s.generateContent(ctx, fmt.Sprintf(scoringPrompt, string(payload)))
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	var scored []dto.ScoredTender
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &scored); err != nil {
		tracing.TraceErr(span, err)
		return nil, errors.Wrap(err, "failed to parse scoring response")
	}

	if len(scored) == 0 {
		return nil, er.ErrNoUsableScores
	}

	return scored, nil
}

func (s *geminiService) generateContent(ctx context.Context, prompt string) (string, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "GeminiService.generateContent")
	defer span.Finish()

	reqBody := generateRequest{
		Contents: []content{
			{
				Role:  "user",
				Parts: []part{{Text: prompt}},
			},
		},
		GenerationConfig: generationConfig{
			Temperature:     0.1,
			MaxOutputTokens: 2000,
		},
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", strings.TrimSuffix(s.cfg.Url, "/"), s.cfg.Model, s.cfg.ApiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		tracing.TraceErr(span, err)
		return "", errors.Wrap(err, "gemini request failed")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		err = errors.Errorf("gemini returned status %d: %s", resp.StatusCode, string(respBody))
		tracing.TraceErr(span, err)
		return "", err
	}

	var parsed generateResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		tracing.TraceErr(span, err)
		return "", errors.Wrap(err, "failed to decode gemini response")
	}

	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		err = errors.New("gemini response contained no candidates")
		tracing.TraceErr(span, err)
		return "", err
	}

	return parsed.Candidates[0].Content.Parts[0].Text, nil
}

// stripCodeFence removes a surrounding markdown code block. The model is told not to
// emit one but does anyway on occasion.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```json") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "\n")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	} else if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimPrefix(s, "\n")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}
