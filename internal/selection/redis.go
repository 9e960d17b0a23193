package selection

import (
	"context"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"
	"github.com/hunterjsb/clubscout/internal/club"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "clubscout:selection:"

// RedisStore keeps pending selections in Redis, letting key expiry enforce the TTL
type RedisStore struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &RedisStore{redis: client, ttl: ttl}
}

func redisKey(user string) string {
	return redisKeyPrefix + user
}

func (s *RedisStore) Get(ctx context.Context, user string) (club.PendingSelection, bool, error) {
	data, err := s.redis.Get(ctx, redisKey(user)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return club.PendingSelection{}, false, nil
		}
		return club.PendingSelection{}, false, fmt.Errorf("redis get selection: %w", err)
	}

	var sel club.PendingSelection
	if err := sonic.Unmarshal(data, &sel); err != nil {
		return club.PendingSelection{}, false, fmt.Errorf("unmarshal cached selection: %w", err)
	}
	return sel, true, nil
}

func (s *RedisStore) Set(ctx context.Context, sel club.PendingSelection) error {
	if sel.User == "" {
		return ErrNoUser
	}

	data, err := sonic.Marshal(sel)
	if err != nil {
		return fmt.Errorf("marshal selection for cache: %w", err)
	}
	if err := s.redis.Set(ctx, redisKey(sel.User), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set selection: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, user string) error {
	if err := s.redis.Del(ctx, redisKey(user)).Err(); err != nil {
		return fmt.Errorf("redis delete selection: %w", err)
	}
	return nil
}
