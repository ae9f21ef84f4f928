package dedup

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFilter(t *testing.T) (*Filter, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	f, err := NewFilter("redis://" + mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f, mr
}

func TestNewFilter_BadURL(t *testing.T) {
	_, err := NewFilter("not-a-redis-url")
	assert.Error(t, err)
}

func TestFirstSeen(t *testing.T) {
	f, _ := testFilter(t)
	ctx := context.Background()

	assert.True(t, f.FirstSeen(ctx, "msg-1"))
	assert.False(t, f.FirstSeen(ctx, "msg-1"))
	assert.True(t, f.FirstSeen(ctx, "msg-2"))
}

func TestFirstSeen_EmptyMessageID(t *testing.T) {
	f, _ := testFilter(t)
	ctx := context.Background()

	// Empty ids are never tracked; each delivery flows through to the database.
	assert.True(t, f.FirstSeen(ctx, ""))
	assert.True(t, f.FirstSeen(ctx, ""))
}

func TestFirstSeen_RedisDownFailsOpen(t *testing.T) {
	f, mr := testFilter(t)
	mr.Close()

	ctx := context.Background()
	assert.True(t, f.FirstSeen(ctx, "msg-1"))
	assert.True(t, f.FirstSeen(ctx, "msg-1"))
}

func TestForget(t *testing.T) {
	f, _ := testFilter(t)
	ctx := context.Background()

	require.True(t, f.FirstSeen(ctx, "msg-1"))
	require.False(t, f.FirstSeen(ctx, "msg-1"))

	f.Forget(ctx, "msg-1")
	assert.True(t, f.FirstSeen(ctx, "msg-1"))
}

func TestSeenMarkerExpires(t *testing.T) {
	f, mr := testFilter(t)
	ctx := context.Background()

	require.True(t, f.FirstSeen(ctx, "msg-1"))
	mr.FastForward(defaultTTL + time.Minute)
	assert.True(t, f.FirstSeen(ctx, "msg-1"))
}
