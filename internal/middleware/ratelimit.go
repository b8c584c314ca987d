package middleware

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"spotted-backend/internal/config"
)

// RateLimiter throttles requests per (scope, username) with fixed one-minute
// windows backed by redis counters. Each throttled endpoint gets its own
// scope so a burst of submissions can't starve moderator actions.
type RateLimiter struct {
	rdb    *redis.Client
	scopes map[string]int
	logger *zap.Logger
}

// NewRateLimiter connects to redis, or returns nil when rate limiting is
// disabled in config.
func NewRateLimiter(cfg *config.Config, logger *zap.Logger) (*RateLimiter, error) {
	if !cfg.RateLimit.Enabled {
		logger.Info("Rate limiting is disabled")
		return nil, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RateLimit.RedisAddr,
		Password: cfg.RateLimit.RedisPassword,
		DB:       cfg.RateLimit.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("Rate limiter connected to redis", zap.String("addr", cfg.RateLimit.RedisAddr))
	return &RateLimiter{rdb: rdb, scopes: cfg.RateLimit.Scopes, logger: logger}, nil
}

// Scope returns a middleware enforcing the named scope's per-minute limit.
// Unknown scopes pass through unlimited. A nil limiter also passes through,
// so routes can be registered the same way with limiting disabled.
func (rl *RateLimiter) Scope(name string) gin.HandlerFunc {
	if rl == nil {
		return func(c *gin.Context) { c.Next() }
	}

	limit, ok := rl.scopes[name]
	if !ok || limit <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		username := c.GetString("username")
		if username == "" {
			username = c.ClientIP()
		}
		window := time.Now().Unix() / 60
		key := fmt.Sprintf("throttle:%s:%s:%d", name, username, window)

		count, err := rl.rdb.Incr(c.Request.Context(), key).Result()
		if err != nil {
			// Redis being down should not take the API down with it.
			rl.logger.Error("Rate limit check failed, allowing request", zap.Error(err))
			c.Next()
			return
		}
		if count == 1 {
			rl.rdb.Expire(c.Request.Context(), key, time.Minute)
		}

		if count > int64(limit) {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Request was throttled"})
			c.Abort()
			return
		}

		c.Next()
	}
}
