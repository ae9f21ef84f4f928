package models

import (
	"database/sql/driver"
	"encoding/json"
)

// JSONMap represents a JSON object that can be stored in PostgreSQL
type JSONMap map[string]interface{}

// Value implements the driver.Valuer interface for JSONMap
func (j JSONMap) Value() (driver.Value, error) {
	return json.Marshal(j)
}

// Scan implements the sql.Scanner interface for JSONMap
func (j *JSONMap) Scan(value interface{}) error {
	if value == nil {
		*j = make(JSONMap)
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}

	return json.Unmarshal(bytes, j)
}

// Attachment is the stored projection of an inbound attachment. Binary content is
// never persisted here; when object storage is configured the upload key is kept instead.
type Attachment struct {
	Name        string `json:"name"`
	ContentType string `json:"contentType"`
	StorageKey  string `json:"storageKey,omitempty"`
}

// AttachmentList stores attachments as a jsonb array.
type AttachmentList []Attachment

func (a AttachmentList) Value() (driver.Value, error) {
	return json.Marshal(a)
}

func (a *AttachmentList) Scan(value interface{}) error {
	if value == nil {
		*a = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}

	return json.Unmarshal(bytes, a)
}
