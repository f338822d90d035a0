// middleware/rate_limiter.go

package middleware

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/acemetillidie0001/obd-premium-apps/db"
	obd_errors "github.com/acemetillidie0001/obd-premium-apps/errors"
	logger "github.com/acemetillidie0001/obd-premium-apps/logging"
	"github.com/acemetillidie0001/obd-premium-apps/util"
)

// Limiter decides whether key may make another request.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// RedisLimiter is a sliding window shared by every replica.
type RedisLimiter struct {
	Limit int
	Per   time.Duration
}

func (l RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	return db.RateLimit(ctx, key, l.Limit, l.Per)
}

// LocalLimiter keeps a token bucket per key in process memory.
type LocalLimiter struct {
	mu      sync.Mutex
	limit   rate.Limit
	burst   int
	buckets map[string]*rate.Limiter
}

func NewLocalLimiter(limit int, per time.Duration) *LocalLimiter {
	if limit <= 0 {
		limit = 1
	}
	return &LocalLimiter{
		limit:   rate.Every(per / time.Duration(limit)),
		burst:   limit,
		buckets: make(map[string]*rate.Limiter),
	}
}

func (l *LocalLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	bucket, ok := l.buckets[key]
	if !ok {
		bucket = rate.NewLimiter(l.limit, l.burst)
		l.buckets[key] = bucket
	}
	l.mu.Unlock()
	return bucket.Allow(), nil
}

// NewLimiter picks the Redis window when Redis is connected.
func NewLimiter(limit int, per time.Duration) Limiter {
	if db.RedisEnabled() {
		return RedisLimiter{Limit: limit, Per: per}
	}
	return NewLocalLimiter(limit, per)
}

// RateLimiter keys on the authenticated user when there is one, else the
// client IP. It must run after SessionAuth. A limiter failure lets the
// request through.
func RateLimiter(limiter Limiter, limit int, per time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := "ip:" + c.ClientIP()
		if userID := util.GetUserIDFromContext(c); userID != "" {
			key = "user:" + userID
		}

		allowed, err := limiter.Allow(c.Request.Context(), key)
		if err != nil {
			logger.Error("Rate limiting failed", zap.Error(err), zap.String("key", key))
			c.Next()
			return
		}

		// Set rate limit headers
		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Header("X-RateLimit-Duration", per.String())

		if !allowed {
			logger.Warn("Rate limit exceeded",
				zap.String("key", key),
				zap.Int("limit", limit),
				zap.Duration("per", per))
			util.RespondWithError(c, obd_errors.RateLimited())
			return
		}
		c.Next()
	}
}
