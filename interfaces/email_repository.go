package interfaces

import (
	"context"

	"github.com/testlify/tenderstack/internal/enum"
	"github.com/testlify/tenderstack/internal/models"
)

type EmailRepository interface {
	// Create persists a new record unless one with the same message id already
	// exists. Returns false when the record was a duplicate.
	Create(ctx context.Context, email *models.TenderEmail) (bool, error)
	GetByID(ctx context.Context, id string) (*models.TenderEmail, error)
	GetByMessageID(ctx context.Context, messageID string) (*models.TenderEmail, error)
	ListAll(ctx context.Context, limit int) ([]*models.TenderEmail, error)
	ListTenders(ctx context.Context, limit int) ([]*models.TenderEmail, error)
	ListUnfiltered(ctx context.Context) ([]*models.TenderEmail, error)
	// MarkFiltered flips is_filtered to true for the given ids. The flip is
	// idempotent and never reversed.
	MarkFiltered(ctx context.Context, ids []string) error
	UpdateScore(ctx context.Context, id string, score int, tier enum.ClassificationTier, reasoning string) error
}
