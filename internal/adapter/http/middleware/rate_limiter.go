package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	. "todoapi/internal/adapter/http/helper"
	"todoapi/internal/core/telemetry"
)

type RateLimitEndpointConfig struct {
	Requests int
	Window   time.Duration
	KeyFunc  func(*gin.Context) string
}

// RateLimitStore counts hits for a key within a fixed window.
type RateLimitStore interface {
	Increment(ctx context.Context, key string, window time.Duration) (count int, resetTime time.Time, err error)
	Name() string
}

type RateLimiter struct {
	store   RateLimitStore
	config  map[string]RateLimitEndpointConfig
	logger  *zap.Logger
	metrics *telemetry.AppMetrics
	mutex   sync.RWMutex
}

func DefaultRateLimits() map[string]RateLimitEndpointConfig {
	return map[string]RateLimitEndpointConfig{
		"POST /todos": {
			Requests: 20,
			Window:   time.Minute,
			KeyFunc:  clientIP,
		},
		"GET /todos": {
			Requests: 100,
			Window:   time.Minute,
			KeyFunc:  clientIP,
		},
		"PUT /todos/:id": {
			Requests: 30,
			Window:   time.Minute,
			KeyFunc:  clientIP,
		},
		"DELETE /todos/:id": {
			Requests: 30,
			Window:   time.Minute,
			KeyFunc:  clientIP,
		},
		"default": {
			Requests: 60,
			Window:   time.Minute,
			KeyFunc:  clientIP,
		},
	}
}

// NewRateLimiter uses store for counting, or an in-process store when store
// is nil. metrics may be nil.
func NewRateLimiter(store RateLimitStore, logger *zap.Logger, metrics *telemetry.AppMetrics) *RateLimiter {
	if store == nil {
		store = NewMemoryRateLimitStore()
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &RateLimiter{
		store:   store,
		config:  DefaultRateLimits(),
		logger:  logger,
		metrics: metrics,
	}
}

// RateLimitMiddleware answers 429 once a client exceeds the limit of the
// route. Requests pass through when the store fails.
func (rl *RateLimiter) RateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		methodPath := c.Request.Method + " " + path
		config := rl.configFor(methodPath)
		key := fmt.Sprintf("rate_limit:%s:%s", methodPath, config.KeyFunc(c))

		count, resetTime, err := rl.store.Increment(c.Request.Context(), key, config.Window)
		if err != nil {
			rl.logger.Error("Rate limit check failed",
				zap.String("key", key),
				zap.String("store", rl.store.Name()),
				zap.Error(err))
			c.Next()
			return
		}

		remaining := config.Requests - count
		if remaining < 0 {
			remaining = 0
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(config.Requests))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(resetTime.Unix(), 10))

		if count > config.Requests {
			if rl.metrics != nil {
				rl.metrics.RecordRateLimitHit(c.Request.Context(), path, rl.store.Name())
			}

			rl.logger.Warn("Rate limit exceeded",
				zap.String("key", key),
				zap.Int("limit", config.Requests),
				zap.Duration("window", config.Window))

			retryAfter := int(time.Until(resetTime).Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.Itoa(retryAfter))

			SendMessage(c, http.StatusTooManyRequests,
				fmt.Sprintf("Too many requests. Limit: %d per %v", config.Requests, config.Window))
			c.Abort()
			return
		}

		if rl.metrics != nil {
			rl.metrics.RecordRateLimitAllowed(c.Request.Context(), path, rl.store.Name())
		}

		c.Next()
	}
}

func (rl *RateLimiter) SetConfig(methodPath string, config RateLimitEndpointConfig) {
	if config.KeyFunc == nil {
		config.KeyFunc = clientIP
	}

	rl.mutex.Lock()
	defer rl.mutex.Unlock()
	rl.config[methodPath] = config
}

func (rl *RateLimiter) configFor(methodPath string) RateLimitEndpointConfig {
	rl.mutex.RLock()
	defer rl.mutex.RUnlock()

	if config, exists := rl.config[methodPath]; exists {
		return config
	}

	return rl.config["default"]
}

func clientIP(c *gin.Context) string {
	return c.ClientIP()
}

type rateLimitEntry struct {
	Count     int
	ResetTime time.Time
}

// MemoryRateLimitStore keeps counters in process memory.
type MemoryRateLimitStore struct {
	cache *cache.Cache
	mutex sync.Mutex
	now   func() time.Time
}

func NewMemoryRateLimitStore() *MemoryRateLimitStore {
	return &MemoryRateLimitStore{
		cache: cache.New(5*time.Minute, 10*time.Minute),
		now:   time.Now,
	}
}

func (s *MemoryRateLimitStore) Name() string {
	return "memory"
}

func (s *MemoryRateLimitStore) Increment(_ context.Context, key string, window time.Duration) (int, time.Time, error) {
	now := s.now()

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if item, found := s.cache.Get(key); found {
		entry := item.(rateLimitEntry)

		if now.Before(entry.ResetTime) {
			entry.Count++
			s.cache.Set(key, entry, entry.ResetTime.Sub(now))
			return entry.Count, entry.ResetTime, nil
		}
	}

	entry := rateLimitEntry{Count: 1, ResetTime: now.Add(window)}
	s.cache.Set(key, entry, window)

	return entry.Count, entry.ResetTime, nil
}

func (s *MemoryRateLimitStore) ItemCount() int {
	return s.cache.ItemCount()
}

// RedisRateLimitStore shares counters between instances. The window starts
// with the first hit of a key.
type RedisRateLimitStore struct {
	client redis.UniversalClient
}

func NewRedisRateLimitStore(client redis.UniversalClient) *RedisRateLimitStore {
	return &RedisRateLimitStore{client: client}
}

func (s *RedisRateLimitStore) Name() string {
	return "redis"
}

func (s *RedisRateLimitStore) Increment(ctx context.Context, key string, window time.Duration) (int, time.Time, error) {
	count, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, time.Time{}, err
	}

	if count == 1 {
		if err := s.client.Expire(ctx, key, window).Err(); err != nil {
			return 0, time.Time{}, err
		}

		return 1, time.Now().Add(window), nil
	}

	ttl, err := s.client.PTTL(ctx, key).Result()
	if err != nil {
		return 0, time.Time{}, err
	}

	// A key left without expiry would never reset.
	if ttl < 0 {
		if err := s.client.Expire(ctx, key, window).Err(); err != nil {
			return 0, time.Time{}, err
		}
		ttl = window
	}

	return int(count), time.Now().Add(ttl), nil
}
