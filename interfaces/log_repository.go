package interfaces

import (
	"context"
	"time"

	"github.com/testlify/tenderstack/internal/models"
)

type LogRepository interface {
	Create(ctx context.Context, log *models.ProcessingLog) error
	// DeleteOlderThan purges audit rows created before the cutoff, returning the
	// number of rows removed.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
