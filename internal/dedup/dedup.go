// Package dedup provides a best-effort first-seen filter for inbound message ids,
// backed by Redis. It sits in front of the database duplicate check so retried
// webhook deliveries can be skipped without a round trip to Postgres.
package dedup

import (
	"context"
	"time"

	"github.com/opentracing/opentracing-go"
	"github.com/redis/go-redis/v9"

	"github.com/testlify/tenderstack/internal/tracing"
)

const keyPrefix = "tenderstack:seen:"

// Seen entries expire after this window; the database unique index remains the
// durable guard.
const defaultTTL = 14 * 24 * time.Hour

type Filter struct {
	client *redis.Client
	ttl    time.Duration
}

// NewFilter connects to the Redis instance described by rawURL
// (redis://[:password@]host:port[/db]).
func NewFilter(rawURL string) (*Filter, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, err
	}
	return &Filter{
		client: redis.NewClient(opts),
		ttl:    defaultTTL,
	}, nil
}

// FirstSeen records messageID and reports whether this is the first time it was
// observed. Redis errors are swallowed: on any failure the message is treated as
// unseen and flows through to the database check.
func (f *Filter) FirstSeen(ctx context.Context, messageID string) bool {
	span, ctx := opentracing.StartSpanFromContext(ctx, "dedup.FirstSeen")
	defer span.Finish()

	if messageID == "" {
		return true
	}

	created, err := f.client.SetNX(ctx, keyPrefix+messageID, 1, f.ttl).Result()
	if err != nil {
		tracing.TraceErr(span, err)
		return true
	}
	span.SetTag("firstSeen", created)
	return created
}

// Forget deletes the marker for messageID. It is called when the delivery could
// not be persisted, so the retry is not mistaken for a duplicate. Best effort:
// Redis errors are swallowed and the key expires on its own TTL.
func (f *Filter) Forget(ctx context.Context, messageID string) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "dedup.Forget")
	defer span.Finish()

	if messageID == "" {
		return
	}

	if err := f.client.Del(ctx, keyPrefix+messageID).Err(); err != nil {
		tracing.TraceErr(span, err)
	}
}

func (f *Filter) Close() error {
	return f.client.Close()
}
