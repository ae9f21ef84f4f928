package interfaces

import "context"

// DedupService suppresses retried webhook deliveries by message id. Markers are
// best effort; the database duplicate check remains the durable guard.
type DedupService interface {
	// FirstSeen records messageID and reports whether this is the first delivery.
	FirstSeen(ctx context.Context, messageID string) bool
	// Forget releases the marker so a retried delivery is processed again. Called
	// when persistence fails after FirstSeen already claimed the id.
	Forget(ctx context.Context, messageID string)
	Close() error
}
