package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/testlify/tenderstack/config"
	"github.com/testlify/tenderstack/dto"
	"github.com/testlify/tenderstack/internal/logger"
)

func testLogger() logger.Logger {
	l := logger.NewAppLogger(&logger.Config{DevMode: true})
	l.InitLogger()
	return l
}

func geminiStub(t *testing.T, responseText string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Contains(t, r.URL.Path, ":generateContent")

		body := map[string]interface{}{
			"candidates": []map[string]interface{}{
				{
					"content": map[string]interface{}{
						"parts": []map[string]string{{"text": responseText}},
					},
				},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(body)
	}))
}

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain json", `[{"a":1}]`, `[{"a":1}]`},
		{"json fence", "```json\n[{\"a\":1}]\n```", `[{"a":1}]`},
		{"bare fence", "```\n[{\"a\":1}]\n```", `[{"a":1}]`},
		{"leading whitespace", "  \n```json\n[]\n```  ", "[]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, stripCodeFence(tt.input))
		})
	}
}

func TestExtractTenderFields_FencedResponse(t *testing.T) {
	payload := "```json\n[{\"tenderTitle\":\"Network Upgrade\",\"issuingAuthority\":\"City of Springfield\",\"deadline\":\"15-03-2025\",\"contractValue\":null,\"description\":\"Citywide network refresh.\",\"extractedLinks\":\"https://procurement.example.gov/notice/123\"}]\n```"
	server := geminiStub(t, payload)
	defer server.Close()

	svc := NewGeminiService(&config.GeminiConfig{
		Url:    server.URL,
		ApiKey: "test-key",
		Model:  "gemini-2.5-flash",
	}, testLogger())

	fields, err := svc.ExtractTenderFields(context.Background(), &dto.InboundEmail{
		Subject:  "RFP: Network Upgrade",
		TextBody: "See attached.",
	})
	require.NoError(t, err)
	require.Len(t, fields, 1)

	assert.Equal(t, "Network Upgrade", *fields[0].TenderTitle)
	assert.Equal(t, "City of Springfield", *fields[0].IssuingAuthority)
	assert.Nil(t, fields[0].ContractValue)
	assert.Equal(t, []string{"https://procurement.example.gov/notice/123"}, []string(fields[0].ExtractedLinks))
}

func TestExtractTenderFields_EmptyArray(t *testing.T) {
	server := geminiStub(t, "[]")
	defer server.Close()

	svc := NewGeminiService(&config.GeminiConfig{Url: server.URL, ApiKey: "k", Model: "gemini-2.5-flash"}, testLogger())

	fields, err := svc.ExtractTenderFields(context.Background(), &dto.InboundEmail{Subject: "hello"})
	assert.Error(t, err)
	assert.Nil(t, fields)
}

func TestExtractTenderFields_UpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"error":{"message":"quota exceeded"}}`)
	}))
	defer server.Close()

	svc := NewGeminiService(&config.GeminiConfig{Url: server.URL, ApiKey: "k", Model: "gemini-2.5-flash"}, testLogger())

	_, err := svc.ExtractTenderFields(context.Background(), &dto.InboundEmail{Subject: "hello"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestScoreTenders(t *testing.T) {
	payload := `[{"id":"email_abc","relevanceScore":85,"classification":"High Priority","matchReasoning":"Direct match for assessment software."}]`
	server := geminiStub(t, payload)
	defer server.Close()

	svc := NewGeminiService(&config.GeminiConfig{Url: server.URL, ApiKey: "k", Model: "gemini-2.5-flash"}, testLogger())

	scored, err := svc.ScoreTenders(context.Background(), []dto.TenderCandidate{
		{ID: "email_abc", Subject: "RFP: Assessment Platform"},
	})
	require.NoError(t, err)
	require.Len(t, scored, 1)

	assert.Equal(t, "email_abc", scored[0].ID)
	assert.Equal(t, 85, scored[0].RelevanceScore)
	assert.Equal(t, "High Priority", scored[0].Classification)
}
