// Package cache holds the Redis-backed caches of computed net worth and validated symbols.
package cache

import (
	"context" // Context for Redis operations
	"strings" // Currency normalisation
	"time"    // Time durations

	"networth/internal/domain"  // Net worth response
	"networth/internal/metrics" // Cache metrics
	"networth/internal/utils"   // Redis helpers

	"github.com/pkg/errors"        // Error inspection
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging
)

const (
	networthPrefix = "networth:"         // networth:<user>:<currency>
	versionPrefix  = "networth_version:" // networth_version:<user>
)

// NetWorthCache stores computed net worth responses per (user, currency)
type NetWorthCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewNetWorthCache creates a net worth cache whose entries expire after ttl
func NewNetWorthCache(rdb *redis.Client, ttl time.Duration) *NetWorthCache {
	return &NetWorthCache{rdb: rdb, ttl: ttl}
}

// NetWorthKey returns the Redis key of a (user, currency) entry
func NetWorthKey(user, currency string) string {
	return networthPrefix + user + ":" + strings.ToLower(currency)
}

// VersionKey returns the Redis key holding the invalidation counter of user
func VersionKey(user string) string {
	return versionPrefix + user
}

// Get returns the cached net worth or false on a miss. Redis errors are logged and reported as a miss.
func (c *NetWorthCache) Get(ctx context.Context, user, currency string) (*domain.NetWorth, bool) {
	var nw domain.NetWorth
	found, err := utils.GetCache(ctx, c.rdb, NetWorthKey(user, currency), &nw) // Read and decode entry
	if err != nil {
		metrics.CacheLookups.WithLabelValues("networth", "error").Inc()
		logrus.WithFields(logrus.Fields{
			"user":     user,
			"currency": currency,
			"error":    err.Error(),
		}).Warn("Net worth cache read failed")
		return nil, false // Treat as a miss
	}
	if !found {
		metrics.CacheLookups.WithLabelValues("networth", "miss").Inc()
		return nil, false
	}
	if nw.Details == nil {
		nw.Details = map[string]domain.AssetValue{} // Always answer with an object
	}
	metrics.CacheLookups.WithLabelValues("networth", "hit").Inc()
	return &nw, true
}

// Version returns the invalidation counter of user, zero when none is recorded
func (c *NetWorthCache) Version(ctx context.Context, user string) (int64, error) {
	v, err := c.rdb.Get(ctx, VersionKey(user)).Int64()
	if err == redis.Nil {
		return 0, nil // Never invalidated, or the counter expired
	}
	return v, err
}

// Put stores a net worth response for the TTL unless user was invalidated after version was read.
// It reports whether the entry was written.
func (c *NetWorthCache) Put(ctx context.Context, user, currency string, nw *domain.NetWorth, version int64) (bool, error) {
	versionKey := VersionKey(user)
	stored := false
	err := c.rdb.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, versionKey).Int64()
		if err != nil && err != redis.Nil {
			return err
		}
		if current != version {
			return nil // Balances changed while the response was computed
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			return utils.SetCache(ctx, pipe, NetWorthKey(user, currency), nw, c.ttl) // Queued until EXEC
		})
		stored = err == nil
		return err
	}, versionKey)
	if errors.Is(err, redis.TxFailedErr) {
		return false, nil // Counter moved between WATCH and EXEC
	}
	return stored, err
}

// InvalidateAll deletes the cached net worth of user in every currency.
// The invalidation counter is bumped first so that responses computed before the change are not stored afterwards.
func (c *NetWorthCache) InvalidateAll(ctx context.Context, user string) (int64, error) {
	versionKey := VersionKey(user)
	_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, versionKey)
		pipe.Expire(ctx, versionKey, c.ttl) // Counter only has to outlive in-flight calculations
		return nil
	})
	if err != nil {
		return 0, err
	}
	n, err := utils.DeleteCacheByPattern(ctx, c.rdb, networthPrefix+utils.EscapePattern(user)+":*") // Every currency of user
	if err != nil {
		return 0, err
	}
	metrics.CacheInvalidations.Add(float64(n))
	return n, nil
}
