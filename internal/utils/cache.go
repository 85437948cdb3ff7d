package utils

import (
	"context"       // Context for Redis operations
	"encoding/json" // JSON encoding/decoding
	"strings"       // Pattern escaping
	"time"          // Time durations

	"github.com/redis/go-redis/v9" // Redis client
)

// scanBatch is the COUNT hint passed to SCAN
const scanBatch = 100

// GetCache retrieves a value from Redis and unmarshals it into dest
func GetCache(ctx context.Context, rdb *redis.Client, key string, dest any) (bool, error) {
	val, err := rdb.Get(ctx, key).Result() // Get value from Redis
	if err == redis.Nil {
		return false, nil // Key does not exist
	} else if err != nil {
		return false, err // Other Redis error
	}
	return true, json.Unmarshal([]byte(val), dest) // Unmarshal JSON into dest
}

// SetCache sets a value in Redis with a specified TTL. rdb may be a pipeline.
func SetCache(ctx context.Context, rdb redis.Cmdable, key string, value any, ttl time.Duration) error {
	b, err := json.Marshal(value) // Marshal value to JSON
	if err != nil {
		return err // Return error if marshaling fails
	}
	return rdb.Set(ctx, key, b, ttl).Err() // Set value in Redis with TTL
}

// HasCache reports whether a key exists in Redis
func HasCache(ctx context.Context, rdb *redis.Client, key string) (bool, error) {
	n, err := rdb.Exists(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// DeleteCacheByPattern deletes every key matching a glob pattern and returns how many were removed
func DeleteCacheByPattern(ctx context.Context, rdb *redis.Client, pattern string) (int64, error) {
	var keys []string
	iter := rdb.Scan(ctx, 0, pattern, scanBatch).Iterator() // Iterate over matching keys
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return 0, err
	}
	if len(keys) == 0 {
		return 0, nil // Nothing to delete
	}
	return rdb.Del(ctx, keys...).Result()
}

// EscapePattern escapes glob metacharacters so s matches only itself in a SCAN pattern
func EscapePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)
	return r.Replace(s)
}
