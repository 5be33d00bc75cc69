package mw

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"lostfound-desk/internal/model"
)

// limiterIdleTTL is how long a client's limiter survives without requests.
const limiterIdleTTL = 10 * time.Minute

// ClientLimiters hands out one token bucket per client address. Buckets of
// clients that stop calling expire.
type ClientLimiters struct {
	buckets *cache.Cache
	r       rate.Limit
	b       int
}

// NewClientLimiters creates limiters allowing r requests per second with
// bursts of b.
func NewClientLimiters(r rate.Limit, b int) *ClientLimiters {
	return &ClientLimiters{
		buckets: cache.New(limiterIdleTTL, 2*limiterIdleTTL),
		r:       r,
		b:       b,
	}
}

// For returns the limiter of client, creating it on first use. Each call
// pushes the client's expiry forward.
func (l *ClientLimiters) For(client string) *rate.Limiter {
	if v, ok := l.buckets.Get(client); ok {
		limiter := v.(*rate.Limiter)
		l.buckets.Set(client, limiter, cache.DefaultExpiration)
		return limiter
	}
	limiter := rate.NewLimiter(l.r, l.b)
	if err := l.buckets.Add(client, limiter, cache.DefaultExpiration); err != nil {
		// Another request created it first.
		if v, ok := l.buckets.Get(client); ok {
			return v.(*rate.Limiter)
		}
	}
	return limiter
}

// RateLimiter rejects clients that exceed r requests per second (burst b)
// with a 429.
func RateLimiter(r rate.Limit, b int) gin.HandlerFunc {
	limiters := NewClientLimiters(r, b)
	return func(c *gin.Context) {
		if !limiters.For(c.ClientIP()).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, model.ErrorBody{
				Message: "Demasiadas solicitudes. Intente nuevamente en unos segundos.",
			})
			return
		}
		c.Next()
	}
}
