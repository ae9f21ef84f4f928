package detector

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/testlify/tenderstack/dto"
	"github.com/testlify/tenderstack/internal/enum"
)

func email(from, subject string) *dto.InboundEmail {
	e := &dto.InboundEmail{Subject: subject}
	e.FromFull.Email = from
	return e
}

func TestDetect_DomainMatch(t *testing.T) {
	d := Detect(email("noreply@sam.gov", "Weekly digest"))

	assert.True(t, d.IsTender)
	assert.Equal(t, enum.MatchChannelDomain, d.MatchedBy)
	assert.Equal(t, "sam.gov", d.MatchedValue)
}

func TestDetect_EmailPatternMatch(t *testing.T) {
	d := Detect(email("bid@cityofspringfield.us", "Road maintenance"))

	assert.True(t, d.IsTender)
	assert.Equal(t, enum.MatchChannelEmailPattern, d.MatchedBy)
	assert.Contains(t, d.MatchedValue, "bid@")
}

func TestDetect_SubjectKeywordMatch(t *testing.T) {
	d := Detect(email("newsletter@example.com", "New Opportunity: IT Services RFQ"))

	assert.True(t, d.IsTender)
	assert.Equal(t, enum.MatchChannelSubjectKeyword, d.MatchedBy)
	assert.Equal(t, "new opportunity", d.MatchedValue)
}

func TestDetect_NoMatch(t *testing.T) {
	d := Detect(email("friend@gmail.com", "Lunch tomorrow?"))

	assert.False(t, d.IsTender)
	assert.Empty(t, d.MatchedBy)
	assert.Empty(t, d.MatchedValue)
}

// Domain wins over a sender pattern that would also match.
func TestDetect_LayerPrecedence(t *testing.T) {
	d := Detect(email("rfp@sam.gov", "request for proposal"))

	assert.True(t, d.IsTender)
	assert.Equal(t, enum.MatchChannelDomain, d.MatchedBy)
	assert.Equal(t, "sam.gov", d.MatchedValue)
}

func TestDetect_SubjectCaseInsensitive(t *testing.T) {
	d := Detect(email("someone@example.com", "SOURCES SOUGHT - cyber services"))

	assert.True(t, d.IsTender)
	assert.Equal(t, enum.MatchChannelSubjectKeyword, d.MatchedBy)
}
