package http

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// clientLimiter hands out one token bucket per caller. Keys are user ids
// when authenticated, client IPs otherwise.
type clientLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rps      rate.Limit
	burst    int
}

func newClientLimiter(rps rate.Limit, burst int) *clientLimiter {
	return &clientLimiter{
		limiters: make(map[string]*rate.Limiter),
		rps:      rps,
		burst:    burst,
	}
}

func (l *clientLimiter) get(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	lim, ok := l.limiters[key]
	if !ok {
		lim = rate.NewLimiter(l.rps, l.burst)
		l.limiters[key] = lim
	}
	return lim
}

// RateLimitMiddleware throttles write endpoints per caller. This is
// plain request throttling; the mileage ledger's 2h cooldown is enforced
// separately in the service layer.
func RateLimitMiddleware(rps float64, burst int) gin.HandlerFunc {
	limiter := newClientLimiter(rate.Limit(rps), burst)
	return func(c *gin.Context) {
		key := c.ClientIP()
		if payload, ok := getAuthPayload(c, authorizationPayloadKey); ok {
			key = payload.UserID.String()
		}
		if !limiter.get(key).Allow() {
			newErrorResponse(c, http.StatusTooManyRequests, "Too many requests")
			return
		}
		c.Next()
	}
}
