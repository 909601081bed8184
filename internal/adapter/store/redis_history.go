package store

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisHistory stores each user's recent queries in a capped list.
type RedisHistory struct {
	client   *redis.Client
	prefix   string
	maxTurns int
	ttl      time.Duration
}

func NewRedisHistory(client *redis.Client, prefix string, maxTurns int, ttl time.Duration) *RedisHistory {
	if prefix == "" {
		prefix = "faqbot:history:"
	}
	if maxTurns <= 0 {
		maxTurns = 10
	}
	return &RedisHistory{client: client, prefix: prefix, maxTurns: maxTurns, ttl: ttl}
}

func (h *RedisHistory) key(userID string) string {
	return h.prefix + userID
}

func (h *RedisHistory) History(ctx context.Context, userID string) ([]string, error) {
	turns, err := h.client.LRange(ctx, h.key(userID), 0, -1).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis history read: %w", err)
	}
	return turns, nil
}

// Append pushes, trims and refreshes the TTL in one MULTI so concurrent
// turns from the same user cannot interleave.
func (h *RedisHistory) Append(ctx context.Context, userID, query string) error {
	key := h.key(userID)
	_, err := h.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, key, query)
		pipe.LTrim(ctx, key, int64(-h.maxTurns), -1)
		if h.ttl > 0 {
			pipe.Expire(ctx, key, h.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis history append: %w", err)
	}
	return nil
}
