package server

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	redis "github.com/redis/go-redis/v9"
)

// WindowCounter counts hits on key within a fixed window starting at the first hit.
type WindowCounter interface {
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
}

const redisCallTimeout = 2 * time.Second

// noExpiry is what TTL reports for a key that exists without an expiry.
const noExpiry = time.Duration(-1)

// RedisCounter shares rate-limit windows between replicas using INCR/EXPIRE.
type RedisCounter struct {
	Client *redis.Client
}

// NewRedisCounter connects to Redis and checks it answers a PING.
func NewRedisCounter(ctx context.Context, addr, password string, db int) (*RedisCounter, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	pingCtx, cancel := context.WithTimeout(ctx, redisCallTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return &RedisCounter{Client: client}, nil
}

// Incr counts the hit and reads the key's TTL in one transaction. A key left
// without a TTL, whichever hit it was, gets the window set again so that it
// cannot block the caller forever. The commands outlive a cancelled request.
func (c *RedisCounter) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), redisCallTimeout)
	defer cancel()

	var incr *redis.IntCmd
	var ttl *redis.DurationCmd
	if _, err := c.Client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		ttl = pipe.TTL(ctx, key)
		return nil
	}); err != nil {
		return 0, err
	}

	val := incr.Val()
	if ttl.Val() == noExpiry {
		if err := c.Client.Expire(ctx, key, window).Err(); err != nil {
			return val, err
		}
	}
	return val, nil
}

// Close releases the Redis connection pool.
func (c *RedisCounter) Close() error {
	return c.Client.Close()
}

// MemoryCounter is a single-process WindowCounter.
type MemoryCounter struct {
	mu      sync.Mutex
	now     func() time.Time
	windows map[string]memoryWindow
}

type memoryWindow struct {
	count   int64
	expires time.Time
}

// NewMemoryCounter creates an empty MemoryCounter.
func NewMemoryCounter() *MemoryCounter {
	return &MemoryCounter{now: time.Now, windows: make(map[string]memoryWindow)}
}

func (c *MemoryCounter) Incr(_ context.Context, key string, window time.Duration) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	w, ok := c.windows[key]
	if !ok || !now.Before(w.expires) {
		c.sweep(now)
		w = memoryWindow{expires: now.Add(window)}
	}
	w.count++
	c.windows[key] = w
	return w.count, nil
}

func (c *MemoryCounter) sweep(now time.Time) {
	for key, w := range c.windows {
		if !now.Before(w.expires) {
			delete(c.windows, key)
		}
	}
}

// rateLimit rejects a client IP once it exceeds limit requests in window.
// Counter errors fail open so that an unavailable Redis never takes the API down.
func rateLimit(logger *slog.Logger, counter WindowCounter, limit int, window time.Duration, metrics *Metrics) gin.HandlerFunc {
	windowKey := strconv.FormatInt(int64(window.Seconds()), 10)
	return func(c *gin.Context) {
		key := "rl:" + windowKey + ":" + c.ClientIP()
		count, err := counter.Incr(c.Request.Context(), key, window)
		if err != nil {
			logger.Warn("rate limiter unavailable", "error", err)
			c.Header("X-RateLimit-Error", "counter-error")
			c.Next()
			return
		}

		remaining := int64(limit) - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

		if count > int64(limit) {
			if metrics != nil {
				metrics.RateLimited.WithLabelValues(c.FullPath()).Inc()
			}
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
