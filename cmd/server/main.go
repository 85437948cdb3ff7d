package main

import (
	"context" // context package is needed for Redis operations

	"networth/internal/api"       // Custom package for API handlers
	"networth/internal/cache"     // Redis backed caches
	"networth/internal/coingecko" // Price provider client
	"networth/internal/config"    // Custom package for configuration
	"networth/internal/db"        // Database connection
	"networth/internal/service"   // Business logic
	"networth/internal/store"     // User and balance persistence

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
)

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Setup logger
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if cfg.IsProd {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logrus.SetLevel(level)
	}

	// Connect to the database
	gdb, err := db.Open(cfg.DSN(), cfg.IsProd)
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err) // Fatal error if DB connection fails
	}
	if err := db.Migrate(gdb); err != nil {
		logrus.Fatalf("migration failed: %v", err)
	}
	st := store.New(gdb)

	// Setup Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr, // Redis server address
		Password: cfg.RedisPass, // Redis password
		DB:       cfg.RedisDB,   // Redis database number
	})

	// Test Redis connection
	_, err = redisClient.Ping(context.Background()).Result()
	if err != nil {
		logrus.Fatalf("failed to connect to Redis: %v", err)
	}

	prices := coingecko.NewClient(cfg.CoinGeckoBaseURL, cfg.CoinGeckoAPIKey, cfg.CoinGeckoTimeout)
	svc := service.New(
		st,
		prices,
		cache.NewSymbolCache(redisClient, cfg.CacheTTL),
		cache.NewNetWorthCache(redisClient, cfg.CacheTTL),
		service.Options{BcryptCost: cfg.BcryptCost, StrictSymbolCheck: cfg.StrictSymbolCheck},
	)

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	pingRedis := func(ctx context.Context) error {
		return redisClient.Ping(ctx).Err()
	}
	r := api.NewRouter(svc, svc, api.RouterOptions{
		CORSOrigins:  cfg.CORSOrigins,
		HealthChecks: map[string]api.HealthCheck{"database": st.Ping, "redis": pingRedis},
	})

	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}

	logrus.Info("Server running on " + cfg.AppPort) // Log server start
	if err := r.Run(":" + cfg.AppPort); err != nil { // Start the server on port cfg.AppPort
		logrus.Fatalf("server stopped: %v", err)
	}
}
