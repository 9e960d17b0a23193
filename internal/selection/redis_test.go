package selection

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hunterjsb/clubscout/internal/club"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set, skipping redis store tests")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })

	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("redis not reachable: %v", err)
	}
	return client
}

func TestRedisStore_RoundTripAndTTL(t *testing.T) {
	client := newTestRedis(t)
	store := NewRedisStore(client, time.Minute)
	ctx := context.Background()
	user := "test-" + uuid.NewString()
	t.Cleanup(func() { _ = store.Delete(ctx, user) })

	sel := club.PendingSelection{
		SearchID:   "s1",
		User:       user,
		Query:      "FC",
		Candidates: []club.Candidate{{SourceID: "nx", ClubID: "1", Name: "One"}},
		CreatedAt:  time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, store.Set(ctx, sel))

	got, ok, err := store.Get(ctx, user)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, sel.SearchID, got.SearchID)
	assert.Equal(t, sel.Candidates, got.Candidates)
	assert.True(t, sel.CreatedAt.Equal(got.CreatedAt))

	ttl, err := client.TTL(ctx, redisKey(user)).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	require.NoError(t, store.Delete(ctx, user))
	_, ok, err = store.Get(ctx, user)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisStore_BacksGate(t *testing.T) {
	client := newTestRedis(t)
	store := NewRedisStore(client, time.Minute)
	gate := NewGate(store, 0)
	ctx := context.Background()
	user := "test-" + uuid.NewString()
	t.Cleanup(func() { _ = store.Delete(ctx, user) })

	out, err := gate.Begin(ctx, user, "FC", candidates(7))
	require.NoError(t, err)
	require.Equal(t, StateAwaitingSelection, out.State)

	got, err := gate.Select(ctx, user, out.SearchID, 5)
	require.NoError(t, err)
	assert.Equal(t, "104", got.ClubID)
}
