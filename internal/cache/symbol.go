package cache

import (
	"context" // Context for Redis operations
	"strings" // Symbol normalisation
	"time"    // Time durations

	"networth/internal/metrics" // Cache metrics
	"networth/internal/utils"   // Redis helpers

	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging
)

const symbolPrefix = "symbol:" // symbol:<lowercase symbol>

// SymbolCache remembers symbols the price provider has confirmed. Absence only means "not yet confirmed".
type SymbolCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewSymbolCache creates a symbol cache whose entries expire after ttl
func NewSymbolCache(rdb *redis.Client, ttl time.Duration) *SymbolCache {
	return &SymbolCache{rdb: rdb, ttl: ttl}
}

// SymbolKey returns the Redis key of a symbol
func SymbolKey(symbol string) string {
	return symbolPrefix + strings.ToLower(symbol)
}

// Has reports whether symbol is known valid. Redis errors are logged and reported as a miss.
func (c *SymbolCache) Has(ctx context.Context, symbol string) bool {
	ok, err := utils.HasCache(ctx, c.rdb, SymbolKey(symbol)) // EXISTS symbol:<s>
	if err != nil {
		metrics.CacheLookups.WithLabelValues("symbol", "error").Inc()
		logrus.WithField("symbol", symbol).WithError(err).Warn("Symbol cache read failed")
		return false // Fall back to the provider
	}
	if ok {
		metrics.CacheLookups.WithLabelValues("symbol", "hit").Inc()
	} else {
		metrics.CacheLookups.WithLabelValues("symbol", "miss").Inc()
	}
	return ok
}

// Put marks symbol as valid for the TTL
func (c *SymbolCache) Put(ctx context.Context, symbol string) error {
	return c.rdb.Set(ctx, SymbolKey(symbol), "1", c.ttl).Err() // Set marker with TTL
}
