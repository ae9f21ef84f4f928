package parser

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/testlify/tenderstack/dto"
	"github.com/testlify/tenderstack/internal/enum"
	"github.com/testlify/tenderstack/internal/logger"
)

func testLogger() logger.Logger {
	l := logger.NewAppLogger(&logger.Config{DevMode: true})
	l.InitLogger()
	return l
}

type fakeAI struct {
	fields []dto.TenderFields
	err    error
}

func (f *fakeAI) ExtractTenderFields(_ context.Context, _ *dto.InboundEmail) ([]dto.TenderFields, error) {
	return f.fields, f.err
}

func (f *fakeAI) ScoreTenders(_ context.Context, _ []dto.TenderCandidate) ([]dto.ScoredTender, error) {
	return nil, errors.New("not used")
}

func TestExtractLinks(t *testing.T) {
	body := `<a href="https://procurement.example.gov/notice/123">View</a>
<img src="https://cdn.example.com/logo.png">
<a href="https://procurement.example.gov/notice/123">View again</a>
Plain link: https://bids.example.org/rfp/55
Tracker: https://mailer.example.com/wf/open?id=9
Campaign: https://example.com/page?utm_source=mail`

	links := ExtractLinks(body)

	assert.Equal(t, []string{
		"https://procurement.example.gov/notice/123",
		"https://bids.example.org/rfp/55",
	}, links)
}

func TestExtractLinks_Empty(t *testing.T) {
	assert.Nil(t, ExtractLinks(""))
	assert.Nil(t, ExtractLinks("no urls here"))
}

func TestExtractDeadline(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		expected string
	}{
		{"iso after signal", "Submission deadline: 2026-03-15", "2026-03-15"},
		{"day month year", "Closing date - 15 January 2026", "15 January 2026"},
		{"month day year", "Due date: January 15, 2026 at 5:00 PM EST", "January 15, 2026"},
		{"numeric", "Submit by 15/01/2026", "15/01/2026"},
		{"ordinal day", "Deadline: 3rd March, 2026", "3rd March, 2026"},
		{"no signal phrase", "The event was held on 15 January 2026.", ""},
		{"bare date elsewhere", "Published 2026-01-01. No closing information.", ""},
		{"empty body", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExtractDeadline(tt.body))
		})
	}
}

func TestParseStructural_Table(t *testing.T) {
	html := `<table>
<tr><td>Solicitation Title:</td><td>Statewide <b>Assessment</b> Platform</td></tr>
<tr><td>Buying Organization</td><td>Department of Administration</td></tr>
<tr><td>Description:</td><td>Line one<br>Line two &amp; three</td></tr>
<tr><td>Estimated Value:</td><td>$250,000 USD</td></tr>
<tr><td>Closing Date:</td><td>2026-04-01</td></tr>
</table>
<a href="https://procure.example.gov/sol/991">Notice</a>`

	fields := ParseStructural(html)
	require.NotNil(t, fields)

	require.NotNil(t, fields.TenderTitle)
	assert.Equal(t, "Statewide Assessment Platform", *fields.TenderTitle)
	require.NotNil(t, fields.IssuingAuthority)
	assert.Equal(t, "Department of Administration", *fields.IssuingAuthority)
	require.NotNil(t, fields.Description)
	assert.Equal(t, "Line one\nLine two & three", *fields.Description)
	require.NotNil(t, fields.ContractValue)
	assert.Equal(t, "$250,000 USD", *fields.ContractValue)
	require.NotNil(t, fields.Deadline)
	assert.Equal(t, "2026-04-01", *fields.Deadline)
	assert.Equal(t, []string{"https://procure.example.gov/sol/991"}, []string(fields.ExtractedLinks))
}

func TestParseStructural_InlineContractValue(t *testing.T) {
	html := `<p>New opportunity. Estimated Budget: $1,200,000 over three years. Deadline: 10/05/2026.</p>`

	fields := ParseStructural(html)
	require.NotNil(t, fields)

	assert.Nil(t, fields.TenderTitle)
	require.NotNil(t, fields.ContractValue)
	assert.Equal(t, "$1,200,000", *fields.ContractValue)
	require.NotNil(t, fields.Deadline)
	assert.Equal(t, "10/05/2026", *fields.Deadline)
}

func TestParseStructural_MoneyTokenFallback(t *testing.T) {
	html := `<p>The project budget is EUR 500,000 over two years.</p>`

	fields := ParseStructural(html)
	require.NotNil(t, fields)
	require.NotNil(t, fields.ContractValue)
	assert.Equal(t, "EUR 500,000", *fields.ContractValue)
}

func TestParseStructural_EmptyMarkup(t *testing.T) {
	assert.Nil(t, ParseStructural(""))
	assert.Nil(t, ParseStructural("   \n "))
}

func TestParse_PrimaryStrategy(t *testing.T) {
	title := "Network Upgrade"
	svc := NewService(&fakeAI{
		fields: []dto.TenderFields{{TenderTitle: &title}},
	}, testLogger())

	results := svc.Parse(context.Background(), &dto.InboundEmail{Subject: "RFP"})

	require.Len(t, results, 1)
	assert.Equal(t, enum.ParsingMethodPrimary, results[0].Method)
	assert.Equal(t, "Network Upgrade", *results[0].TenderTitle)
}

func TestParse_FallbackOnModelError(t *testing.T) {
	svc := NewService(&fakeAI{err: errors.New("quota exceeded")}, testLogger())

	results := svc.Parse(context.Background(), &dto.InboundEmail{
		TextBody: "Bids close on submission deadline: 15 January 2026. Details: https://bids.example.org/rfp/7",
	})

	require.Len(t, results, 1)
	assert.Equal(t, enum.ParsingMethodStructural, results[0].Method)
	require.NotNil(t, results[0].Deadline)
	assert.Equal(t, "15 January 2026", *results[0].Deadline)
	assert.Equal(t, []string{"https://bids.example.org/rfp/7"}, []string(results[0].ExtractedLinks))
}

func TestParse_NoAIConfigured(t *testing.T) {
	svc := NewService(nil, testLogger())

	results := svc.Parse(context.Background(), &dto.InboundEmail{
		HtmlBody: `<tr><td>Solicitation Title:</td><td>Bridge Inspection</td></tr>`,
	})

	require.Len(t, results, 1)
	assert.Equal(t, enum.ParsingMethodStructural, results[0].Method)
	require.NotNil(t, results[0].TenderTitle)
	assert.Equal(t, "Bridge Inspection", *results[0].TenderTitle)
}
