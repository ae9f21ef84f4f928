package dto

import (
	"bytes"
	"encoding/json"
)

// TenderFields is one extracted tender opportunity. A nil pointer means the field was
// not present in the email — absence is always explicit, never an empty string.
type TenderFields struct {
	TenderTitle      *string  `json:"tenderTitle"`
	IssuingAuthority *string  `json:"issuingAuthority"`
	Deadline         *string  `json:"deadline"`
	ContractValue    *string  `json:"contractValue"`
	Description      *string  `json:"description"`
	ExtractedLinks   LinkList `json:"extractedLinks"`
}

// LinkList tolerates the extraction model returning either a single URL string or an
// array of URLs for extractedLinks.
type LinkList []string

func (l *LinkList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*l = nil
		return nil
	}
	if data[0] == '"' {
		var single string
		if err := json.Unmarshal(data, &single); err != nil {
			return err
		}
		if single == "" {
			*l = nil
			return nil
		}
		*l = LinkList{single}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*l = many
	return nil
}

// TenderCandidate is the per-record projection handed to the relevance classifier.
type TenderCandidate struct {
	ID          string  `json:"id"`
	Subject     string  `json:"subject"`
	TenderTitle *string `json:"tenderTitle"`
	Description *string `json:"description"`
}

// ScoredTender is the classifier verdict for one candidate.
type ScoredTender struct {
	ID             string `json:"id"`
	RelevanceScore int    `json:"relevanceScore"`
	Classification string `json:"classification"`
	MatchReasoning string `json:"matchReasoning"`
}
