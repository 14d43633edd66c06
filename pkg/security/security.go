package security

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// CORSPolicy holds the origin whitelist. The whitelist can be swapped while
// the server runs.
type CORSPolicy struct {
	mu      sync.RWMutex
	origins map[string]bool
}

func NewCORSPolicy(allowedOrigins []string) *CORSPolicy {
	p := &CORSPolicy{}
	p.SetOrigins(allowedOrigins)
	return p
}

func (p *CORSPolicy) SetOrigins(allowedOrigins []string) {
	originSet := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		originSet[o] = true
	}
	p.mu.Lock()
	p.origins = originSet
	p.mu.Unlock()
}

func (p *CORSPolicy) Allowed(origin string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.origins[origin]
}

// Middleware only echoes whitelisted origins and allows credentials for them.
func (p *CORSPolicy) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		if origin != "" && p.Allowed(origin) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		}

		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func Secure() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-XSS-Protection", "1; mode=block")
		if c.Request.TLS != nil {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains; preload")
		}

		c.Next()
	}
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter is a per-IP token bucket. Idle visitors are dropped by a
// janitor goroutine that runs until Stop.
type RateLimiter struct {
	mu          sync.Mutex
	store       map[string]*visitor
	limit       rate.Limit
	burst       int
	window      time.Duration
	stop        chan struct{}
	stopOnce    sync.Once
	janitorTick time.Duration
}

func NewRateLimiter(maxRequests int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		store:       make(map[string]*visitor),
		stop:        make(chan struct{}),
		janitorTick: time.Minute,
	}
	rl.Update(maxRequests, window)
	go rl.janitor()
	return rl
}

// Update changes the limit for all clients. Existing buckets are discarded.
func (rl *RateLimiter) Update(maxRequests int, window time.Duration) {
	if maxRequests <= 0 {
		maxRequests = 1
	}
	if window <= 0 {
		window = time.Minute
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.limit = rate.Every(window / time.Duration(maxRequests))
	rl.burst = maxRequests
	rl.window = window
	rl.store = make(map[string]*visitor)
}

func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	v, exists := rl.store[key]
	if !exists {
		v = &visitor{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.store[key] = v
	}
	v.lastSeen = time.Now()
	rl.mu.Unlock()

	return v.limiter.Allow()
}

func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.Allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"code": http.StatusTooManyRequests, "message": "too many requests"})
			return
		}
		c.Next()
	}
}

func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

func (rl *RateLimiter) janitor() {
	ticker := time.NewTicker(rl.janitorTick)
	defer ticker.Stop()
	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			rl.mu.Lock()
			expiry := rl.window * 3
			if expiry < time.Minute {
				expiry = time.Minute
			}
			for ip, v := range rl.store {
				if time.Since(v.lastSeen) > expiry {
					delete(rl.store, ip)
				}
			}
			rl.mu.Unlock()
		}
	}
}
