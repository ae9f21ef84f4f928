package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/testlify/tenderstack/internal/enum"
)

// ProcessingLog is an append-only audit record for webhook and filter-cycle runs.
// Rows older than the retention window are purged by a scheduled job.
type ProcessingLog struct {
	ID           string         `gorm:"column:id;type:uuid;primaryKey"`
	Status       enum.LogStatus `gorm:"column:status;type:varchar(20);not null"`
	Sender       string         `gorm:"column:sender;type:varchar(255)"`
	Subject      string         `gorm:"column:subject;type:varchar(1000)"`
	Reason       string         `gorm:"column:reason;type:text"`
	ErrorMessage string         `gorm:"column:error_message;type:text"`
	CreatedAt    time.Time      `gorm:"column:created_at;type:timestamp;default:current_timestamp;index"`
}

// LogRetention is how long processing logs are kept before the purge job removes them.
const LogRetention = 30 * 24 * time.Hour

func (ProcessingLog) TableName() string {
	return "processing_logs"
}

func (l *ProcessingLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}
