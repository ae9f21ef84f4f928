package dto

import (
	"time"

	"github.com/customeros/mailsherpa/mailvalidate"

	"github.com/testlify/tenderstack/internal/utils"
)

// InboundEmail is the Postmark inbound webhook payload. Field names follow the wire
// format Postmark sends.
type InboundEmail struct {
	FromName string `json:"FromName"`
	From     string `json:"From"`
	FromFull struct {
		Email       string `json:"Email"`
		Name        string `json:"Name"`
		MailboxHash string `json:"MailboxHash"`
	} `json:"FromFull"`
	To          string              `json:"To"`
	Subject     string              `json:"Subject"`
	MessageID   string              `json:"MessageID"`
	Date        string              `json:"Date"`
	TextBody    string              `json:"TextBody"`
	HtmlBody    string              `json:"HtmlBody"`
	Tag         string              `json:"Tag"`
	Attachments []InboundAttachment `json:"Attachments"`
}

type InboundAttachment struct {
	Name          string `json:"Name"`
	Content       string `json:"Content"`
	ContentType   string `json:"ContentType"`
	ContentLength int    `json:"ContentLength"`
}

// IsEmpty reports whether the payload carries none of the fields a real Postmark
// delivery always has. Used to reject empty/garbage webhook bodies.
func (p *InboundEmail) IsEmpty() bool {
	return p.From == "" && p.FromFull.Email == "" && p.Subject == "" && p.MessageID == ""
}

// FromEmail returns the sender address, preferring the structured FromFull block.
func (p *InboundEmail) FromEmail() string {
	return utils.FirstNonEmpty(p.FromFull.Email, p.From)
}

func (p *InboundEmail) SenderName() string {
	return utils.FirstNonEmpty(p.FromFull.Name, p.FromName)
}

// FromDomain returns the lowercased sender domain, or "" for malformed addresses.
func (p *InboundEmail) FromDomain() string {
	validation := mailvalidate.ValidateEmailSyntax(p.FromEmail())
	return validation.Domain
}

// SubjectOrDefault mirrors the ingestion default for subject-less emails.
func (p *InboundEmail) SubjectOrDefault() string {
	if p.Subject == "" {
		return "(No Subject)"
	}
	return p.Subject
}

var dateLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05 -0700 (MST)",
	time.RFC3339,
}

// ReceivedAt parses the Postmark Date header, falling back to the current time when
// the header is absent or unparseable.
func (p *InboundEmail) ReceivedAt() time.Time {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, p.Date); err == nil {
			return t
		}
	}
	return time.Now().UTC()
}
