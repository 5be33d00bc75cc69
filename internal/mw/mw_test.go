package mw

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestResponseCache_HitMissAndInvalidate(t *testing.T) {
	rc := NewResponseCache(time.Minute)
	calls := 0

	router := gin.New()
	router.GET("/api/buscar", rc.Read(), func(c *gin.Context) {
		calls++
		c.JSON(http.StatusOK, gin.H{"count": calls})
	})
	router.PATCH("/api/prendas/:id/estado", rc.Invalidate(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	})
	router.PUT("/api/prendas/:id/estado", rc.Invalidate(), func(c *gin.Context) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "no"})
	})

	get := func(target string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
		return w
	}
	write := func(method string) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(method, "/api/prendas/1/estado", nil))
	}

	first := get("/api/buscar?rut=1-9&x=1")
	assert.Equal(t, "MISS", first.Header().Get(CacheHeader))
	assert.JSONEq(t, `{"count":1}`, first.Body.String())

	// Same query, other parameter order.
	second := get("/api/buscar?x=1&rut=1-9")
	assert.Equal(t, "HIT", second.Header().Get(CacheHeader))
	assert.Equal(t, "application/json; charset=utf-8", second.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"count":1}`, second.Body.String())
	assert.Equal(t, 1, calls)

	write(http.MethodPut) // failed writes keep the cache
	assert.Equal(t, "HIT", get("/api/buscar?rut=1-9&x=1").Header().Get(CacheHeader))

	write(http.MethodPatch)
	third := get("/api/buscar?rut=1-9&x=1")
	assert.Equal(t, "MISS", third.Header().Get(CacheHeader))
	assert.JSONEq(t, `{"count":2}`, third.Body.String())
}

func TestClientLimiters_PerClient(t *testing.T) {
	limiters := NewClientLimiters(rate.Limit(0.001), 1)
	a := limiters.For("10.0.0.1")
	assert.Same(t, a, limiters.For("10.0.0.1"))
	assert.NotSame(t, a, limiters.For("10.0.0.2"))

	assert.True(t, a.Allow())
	assert.False(t, limiters.For("10.0.0.1").Allow())
	assert.True(t, limiters.For("10.0.0.2").Allow())
}

func TestRateLimiter(t *testing.T) {
	router := gin.New()
	router.Use(RateLimiter(rate.Limit(0.001), 2))
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusNoContent, http.StatusNoContent, http.StatusTooManyRequests}, codes)
}

func TestRequestID(t *testing.T) {
	var seen string
	router := gin.New()
	router.Use(RequestID())
	router.GET("/", func(c *gin.Context) {
		seen = GetRequestID(c)
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", seen)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
	assert.Equal(t, seen, w.Header().Get(RequestIDHeader))
}
