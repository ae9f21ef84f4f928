package interfaces

import (
	"context"

	"github.com/testlify/tenderstack/internal/models"
)

// SheetsService is the append-only spreadsheet sink. Duplicate appends across
// overlapping filter cycles are tolerated by the sheet, never deduplicated here.
type SheetsService interface {
	// AppendTenders writes one row per record as a single batched append, ensuring
	// the header row exists first. Returns the number of rows appended.
	AppendTenders(ctx context.Context, emails []*models.TenderEmail) (int, error)
}
