// file: internal/server/middleware/ratelimit.go
// version: 2.0.0
// guid: 1331705a-85cb-4158-92f5-5ce203d8a0e7

package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// KeyFunc picks the bucket a request draws from.
type KeyFunc func(c *gin.Context) string

// ClientUpstreamKey gives each client one bucket per museum, so a client
// hammering one catalog does not starve its requests to the others. Routes
// without a :catalog param share the client's "images" bucket.
func ClientUpstreamKey(c *gin.Context) string {
	ip := c.ClientIP()
	if ip == "" {
		ip = "unknown"
	}
	upstream := c.Param("catalog")
	if upstream == "" {
		upstream = "images"
	}
	return ip + "|" + upstream
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// UpstreamRateLimiter holds a token bucket per key. Each key is refilled at
// requestsPerMinute and idle buckets are swept at most once per sweepEvery.
type UpstreamRateLimiter struct {
	mu         sync.Mutex
	buckets    map[string]*bucket
	limit      rate.Limit
	burst      int
	retryAfter string
	idleTTL    time.Duration
	sweepEvery time.Duration
	lastSweep  time.Time
	key        KeyFunc
	now        func() time.Time
}

// NewUpstreamRateLimiter creates a limiter. A nil key uses ClientUpstreamKey.
func NewUpstreamRateLimiter(requestsPerMinute, burst int, key KeyFunc) *UpstreamRateLimiter {
	if requestsPerMinute < 1 {
		requestsPerMinute = 1
	}
	if burst < 1 {
		burst = 1
	}
	if key == nil {
		key = ClientUpstreamKey
	}
	return &UpstreamRateLimiter{
		buckets:    make(map[string]*bucket),
		limit:      rate.Limit(float64(requestsPerMinute) / 60.0),
		burst:      burst,
		retryAfter: strconv.Itoa(int(math.Ceil(60.0 / float64(requestsPerMinute)))),
		idleTTL:    15 * time.Minute,
		sweepEvery: time.Minute,
		key:        key,
		now:        time.Now,
	}
}

// Allow takes a token from key's bucket.
func (r *UpstreamRateLimiter) Allow(key string) bool {
	now := r.now()

	r.mu.Lock()
	defer r.mu.Unlock()

	if now.Sub(r.lastSweep) >= r.sweepEvery {
		for k, b := range r.buckets {
			if now.Sub(b.lastSeen) > r.idleTTL {
				delete(r.buckets, k)
			}
		}
		r.lastSweep = now
	}

	b, ok := r.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(r.limit, r.burst)}
		r.buckets[key] = b
	}
	b.lastSeen = now
	return b.limiter.AllowN(now, 1)
}

// Len returns the number of live buckets.
func (r *UpstreamRateLimiter) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.buckets)
}

// Middleware rejects requests over budget with 429 and a Retry-After hint.
func (r *UpstreamRateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !r.Allow(r.key(c)) {
			c.Header("Retry-After", r.retryAfter)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":  "rate limit exceeded",
				"code":   "RATE_LIMITED",
				"status": http.StatusTooManyRequests,
			})
			return
		}
		c.Next()
	}
}
