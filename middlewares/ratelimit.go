package middlewares

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimiterConfig holds the configuration for the rate limiter
type RateLimiterConfig struct {
	RequestsPerSecond float64
	Burst             int
	// IdleTTL drops the limiter of a client that has been quiet this long.
	IdleTTL time.Duration
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// rateLimiterStore keeps one token bucket per client IP.
type rateLimiterStore struct {
	mu      sync.Mutex
	clients map[string]*clientLimiter
	config  RateLimiterConfig
	swept   time.Time
}

func (s *rateLimiterStore) allow(ip string, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if now.Sub(s.swept) > s.config.IdleTTL {
		for key, cl := range s.clients {
			if now.Sub(cl.lastSeen) > s.config.IdleTTL {
				delete(s.clients, key)
			}
		}
		s.swept = now
	}

	cl, ok := s.clients[ip]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(rate.Limit(s.config.RequestsPerSecond), s.config.Burst)}
		s.clients[ip] = cl
	}
	cl.lastSeen = now
	return cl.limiter.AllowN(now, 1)
}

// NewRateLimiterMiddleware limits each client IP to the configured rate.
func NewRateLimiterMiddleware(config RateLimiterConfig) gin.HandlerFunc {
	if config.IdleTTL <= 0 {
		config.IdleTTL = 10 * time.Minute
	}
	store := &rateLimiterStore{
		clients: make(map[string]*clientLimiter),
		config:  config,
		swept:   time.Now(),
	}

	return func(c *gin.Context) {
		if !store.allow(c.ClientIP(), time.Now()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "rate limit exceeded",
			})
			return
		}
		c.Next()
	}
}
