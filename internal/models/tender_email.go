package models

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/testlify/tenderstack/internal/enum"
	"github.com/testlify/tenderstack/internal/utils"
)

// TenderEmail is an inbound tender notification email plus everything derived from it:
// the extracted tender fields, the ingestion-time detection verdict and the filter-time
// relevance score.
type TenderEmail struct {
	ID        string `gorm:"column:id;type:varchar(50);primaryKey"`
	MessageID string `gorm:"column:message_id;uniqueIndex;type:varchar(255);not null"`

	// Core email metadata
	Subject     string     `gorm:"column:subject;type:varchar(1000)"`
	FromAddress string     `gorm:"column:from_address;type:varchar(255);index"`
	FromName    string     `gorm:"column:from_name;type:varchar(255)"`
	FromDomain  string     `gorm:"column:from_domain;type:varchar(255);index"`
	ReceivedAt  *time.Time `gorm:"column:received_at;type:timestamp;index"`

	// Content
	BodyText    string         `gorm:"column:body_text;type:text"`
	BodyHTML    string         `gorm:"column:body_html;type:text"`
	Attachments AttachmentList `gorm:"column:attachments;type:jsonb"`

	// Raw payload for debugging / re-processing
	RawPayload JSONMap `gorm:"column:raw_payload;type:jsonb"`

	// Extracted tender fields. NULL means the extractor could not find the field.
	TenderTitle      *string            `gorm:"column:tender_title;type:text"`
	IssuingAuthority *string            `gorm:"column:issuing_authority;type:text"`
	Deadline         *string            `gorm:"column:deadline;type:varchar(255)"`
	ContractValue    *string            `gorm:"column:contract_value;type:varchar(255)"`
	Description      *string            `gorm:"column:description;type:text"`
	ExtractedLinks   pq.StringArray     `gorm:"column:extracted_links;type:text[]"`
	ParsingMethod    enum.ParsingMethod `gorm:"column:parsing_method;type:varchar(50)"`

	// Ingestion-time detection
	IsTender      bool              `gorm:"column:is_tender;index;default:false"`
	DetectedBy    enum.MatchChannel `gorm:"column:detected_by;type:varchar(50)"`
	DetectedValue string            `gorm:"column:detected_value;type:varchar(500)"`

	// Filter-time scoring
	RelevanceScore *int                    `gorm:"column:relevance_score"`
	Classification enum.ClassificationTier `gorm:"column:classification;type:varchar(50);index"`
	MatchReasoning string                  `gorm:"column:match_reasoning;type:text"`

	// IsFiltered is monotonic: once true it never reverts.
	IsFiltered bool `gorm:"column:is_filtered;index;default:false"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamp;default:current_timestamp;index"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamp;default:current_timestamp"`
}

func (TenderEmail) TableName() string {
	return "tender_emails"
}

func (e *TenderEmail) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = utils.GenerateNanoIDWithPrefix("email", 24)
	}
	return nil
}
