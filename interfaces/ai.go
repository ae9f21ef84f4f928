package interfaces

import (
	"context"

	"github.com/testlify/tenderstack/dto"
)

// AIService is the opaque text-understanding capability. Implementations are a live
// generative-language client or a deterministic test double; pipeline code never
// depends on a concrete provider.
type AIService interface {
	// ExtractTenderFields parses an inbound email payload into structured tender
	// fields. A non-nil error or an empty slice triggers the structural fallback.
	ExtractTenderFields(ctx context.Context, payload *dto.InboundEmail) ([]dto.TenderFields, error)

	// ScoreTenders assigns a 0-100 relevance score to every candidate in one batch
	// request. Failure disables scoring for the cycle, it is never silently defaulted.
	ScoreTenders(ctx context.Context, candidates []dto.TenderCandidate) ([]dto.ScoredTender, error)
}
