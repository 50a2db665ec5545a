package dedupe

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const seenSetKey = "resume:seen_messages"

// RedisCache shares the seen-message set across replicas. Entries live in a
// single set; Clear drops the whole key.
type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func (r *RedisCache) MarkSeen(ctx context.Context, messageID string) error {
	if err := r.client.SAdd(ctx, seenSetKey, messageID).Err(); err != nil {
		return fmt.Errorf("mark message seen: %w", err)
	}
	return nil
}

func (r *RedisCache) HasSeen(ctx context.Context, messageID string) (bool, error) {
	ok, err := r.client.SIsMember(ctx, seenSetKey, messageID).Result()
	if err != nil {
		return false, fmt.Errorf("check message seen: %w", err)
	}
	return ok, nil
}

func (r *RedisCache) Clear(ctx context.Context) error {
	if err := r.client.Del(ctx, seenSetKey).Err(); err != nil {
		return fmt.Errorf("clear seen messages: %w", err)
	}
	return nil
}
