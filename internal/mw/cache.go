package mw

import (
	"bytes"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
)

// CacheHeader reports whether a GET was served from the cache.
const CacheHeader = "X-Cache"

type cachedResponse struct {
	status      int
	contentType string
	body        []byte
}

// recordingWriter keeps a copy of everything written to the client.
type recordingWriter struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *recordingWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *recordingWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// ResponseCache keeps successful GET responses in memory until they expire
// or a write invalidates them.
type ResponseCache struct {
	store *cache.Cache
	ttl   time.Duration
}

// NewResponseCache creates a cache whose entries live for ttl.
func NewResponseCache(ttl time.Duration) *ResponseCache {
	return &ResponseCache{store: cache.New(ttl, 2*ttl), ttl: ttl}
}

// cacheKey ignores query parameter order.
func cacheKey(r *http.Request) string {
	return r.URL.Path + "?" + r.URL.Query().Encode()
}

// Read serves GETs from the cache and stores fresh 2xx answers.
func (rc *ResponseCache) Read() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		key := cacheKey(c.Request)
		if v, found := rc.store.Get(key); found {
			cached := v.(cachedResponse)
			c.Header(CacheHeader, "HIT")
			c.Data(cached.status, cached.contentType, cached.body)
			c.Abort()
			return
		}

		c.Header(CacheHeader, "MISS")
		rec := &recordingWriter{ResponseWriter: c.Writer}
		c.Writer = rec
		c.Next()

		if status := rec.Status(); status >= 200 && status < 300 {
			rc.store.Set(key, cachedResponse{
				status:      status,
				contentType: rec.Header().Get("Content-Type"),
				body:        bytes.Clone(rec.body.Bytes()),
			}, rc.ttl)
		}
	}
}

// Invalidate drops every cached response after a successful write.
func (rc *ResponseCache) Invalidate() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if c.Request.Method == http.MethodGet {
			return
		}
		if status := c.Writer.Status(); status >= 200 && status < 300 {
			rc.store.Flush()
		}
	}
}
