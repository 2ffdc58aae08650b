package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	pollKeyPrefix      = "poll:%d"
	pollsListKey       = "polls:list"
	pollCommentsPrefix = "poll:%d:comments:first"
)

const (
	// PollTTL is short: vote counters are the hot, frequently-changing read.
	PollTTL         = 2 * time.Minute
	PollsListTTL    = 30 * time.Second
	PollCommentsTTL = time.Minute
)

// PollKey is the cache key for a single poll aggregate.
func PollKey(pollID uint) string {
	return fmt.Sprintf(pollKeyPrefix, pollID)
}

// PollsListKey is the cache key for the anonymous poll listing.
func PollsListKey() string {
	return pollsListKey
}

// PollCommentsKey is the cache key for the first page of a poll's comment
// thread, the page every viewer loads. Deeper pages always hit the database.
func PollCommentsKey(pollID uint) string {
	return fmt.Sprintf(pollCommentsPrefix, pollID)
}

// GetJSON attempts to get the key from Redis and unmarshal into dest.
// Returns (true, nil) if found and unmarshaled, (false, nil) if not found.
func GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	if client == nil {
		return false, nil
	}
	s, err := client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal([]byte(s), dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON marshals v and sets the key with TTL.
func SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	if client == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return client.Set(ctx, key, b, ttl).Err()
}

// Aside tries Redis first, on miss it calls fetch (which must populate dest),
// then stores the result in Redis with ttl. Cache errors fall through to fetch
// so a degraded Redis never fails a read.
func Aside(ctx context.Context, key string, dest any, ttl time.Duration, fetch func() error) error {
	found, err := GetJSON(ctx, key, dest)
	if err == nil && found {
		return nil
	}

	if err := fetch(); err != nil {
		return err
	}

	// Store into cache (best-effort)
	_ = SetJSON(ctx, key, dest, ttl)
	return nil
}

// Invalidate removes a single key.
func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

// InvalidatePoll drops the cached aggregate and the listing that embeds it.
func InvalidatePoll(ctx context.Context, pollID uint) {
	Invalidate(ctx, PollKey(pollID))
	Invalidate(ctx, pollsListKey)
}
