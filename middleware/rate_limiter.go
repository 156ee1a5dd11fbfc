package middleware

import (
	"net/http"
	"sync"
	"time"

	"creatorhub/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// rateLimiterStore holds a map of IP addresses to their rate limiters.
type rateLimiterStore struct {
	mu       sync.Mutex
	limiters map[string]*limiterEntry
	perMin   int
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newRateLimiterStore(perMin int) *rateLimiterStore {
	if perMin <= 0 {
		perMin = 200
	}
	return &rateLimiterStore{limiters: make(map[string]*limiterEntry), perMin: perMin}
}

// getLimiter returns the rate limiter for a given IP, creating one if it doesn't exist.
func (s *rateLimiterStore) getLimiter(ip string, now time.Time) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, exists := s.limiters[ip]
	if !exists {
		e = &limiterEntry{limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(s.perMin)), s.perMin)}
		s.limiters[ip] = e
	}
	e.lastSeen = now
	return e.limiter
}

// prune forgets IPs not seen since cutoff.
func (s *rateLimiterStore) prune(cutoff time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for ip, e := range s.limiters {
		if e.lastSeen.Before(cutoff) {
			delete(s.limiters, ip)
			n++
		}
	}
	return n
}

// RateLimitMiddleware limits requests per IP address to perMin requests per minute.
func RateLimitMiddleware(perMin int) gin.HandlerFunc {
	store := newRateLimiterStore(perMin)
	var lastPrune time.Time
	var pruneMu sync.Mutex

	return func(c *gin.Context) {
		now := time.Now()
		pruneMu.Lock()
		if now.Sub(lastPrune) > 10*time.Minute {
			lastPrune = now
			store.prune(now.Add(-10 * time.Minute))
		}
		pruneMu.Unlock()

		ip := getClientIP(c)
		if !store.getLimiter(ip, now).Allow() {
			zap.L().Warn("Rate limit exceeded", zap.String("ip", ip))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, utils.ErrorResponse{Error: "Rate limit exceeded. Try again later."})
			return
		}
		c.Next()
	}
}
