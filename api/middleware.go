package api

import (
	"bytes"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"workforce-engine/logx"
	"workforce-engine/metrics"
)

const requestIDHeader = "X-Request-ID"

// limiterIdleTTL is how long an idle client keeps its token bucket.
const limiterIdleTTL = 10 * time.Minute

// clientLimiters hands out one token bucket per client IP. Buckets of clients
// that stay idle for limiterIdleTTL are evicted.
type clientLimiters struct {
	mu      sync.Mutex
	buckets *cache.Cache
	limit   rate.Limit
	burst   int
}

func newClientLimiters(limit rate.Limit, burst int) *clientLimiters {
	return &clientLimiters{
		buckets: cache.New(limiterIdleTTL, 2*limiterIdleTTL),
		limit:   limit,
		burst:   burst,
	}
}

func (l *clientLimiters) forIP(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if v, ok := l.buckets.Get(ip); ok {
		limiter := v.(*rate.Limiter)
		l.buckets.SetDefault(ip, limiter)
		return limiter
	}
	limiter := rate.NewLimiter(l.limit, l.burst)
	l.buckets.SetDefault(ip, limiter)
	return limiter
}

// RateLimiter rejects clients exceeding limit requests per second (with
// burst) with 429 and a Retry-After hint.
func RateLimiter(limit rate.Limit, burst int) gin.HandlerFunc {
	limiters := newClientLimiters(limit, burst)
	return func(c *gin.Context) {
		limiter := limiters.forIP(c.ClientIP())
		if !limiter.Allow() {
			if limit > 0 {
				retry := math.Ceil(1 / float64(limit))
				c.Header("Retry-After", strconv.FormatFloat(retry, 'f', 0, 64))
			}
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}

type cachedResponse struct {
	status      int
	contentType string
	body        []byte
}

// recordingWriter tees the response body into buf.
type recordingWriter struct {
	gin.ResponseWriter
	buf bytes.Buffer
}

func (w *recordingWriter) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *recordingWriter) WriteString(s string) (int, error) {
	w.buf.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// responseKey identifies a GET by path and query. Query parameters are
// sorted so ?to=..&from=.. and ?from=..&to=.. share an entry.
func responseKey(u *url.URL) string {
	return u.Path + "?" + u.Query().Encode()
}

// Cache serves successful GET responses from store until they expire or the
// store is flushed. Responses carry X-Cache: HIT or MISS.
func Cache(store *cache.Cache, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		key := responseKey(c.Request.URL)
		if v, found := store.Get(key); found {
			cached := v.(cachedResponse)
			c.Header("X-Cache", "HIT")
			c.Data(cached.status, cached.contentType, cached.body)
			c.Abort()
			return
		}

		c.Header("X-Cache", "MISS")
		rw := &recordingWriter{ResponseWriter: c.Writer}
		c.Writer = rw
		c.Next()

		if status := rw.Status(); status >= 200 && status < 300 {
			store.Set(key, cachedResponse{
				status:      status,
				contentType: rw.Header().Get("Content-Type"),
				body:        bytes.Clone(rw.buf.Bytes()),
			}, ttl)
		}
	}
}

// RequestID propagates or assigns an X-Request-ID.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDHeader, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// Instrument records request counts and latency by route.
func Instrument() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		metrics.HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		metrics.HTTPRequestDurationSeconds.WithLabelValues(c.Request.Method, path, status).Observe(time.Since(start).Seconds())
	}
}

// RequestLog writes one structured entry per request.
func RequestLog(l logx.Logger, skipPaths ...string) gin.HandlerFunc {
	skip := make(map[string]bool, len(skipPaths))
	for _, p := range skipPaths {
		skip[p] = true
	}
	return func(c *gin.Context) {
		if skip[c.Request.URL.Path] {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		attrs := []slog.Attr{
			slog.String("request_id", c.GetString(requestIDHeader)),
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", c.Writer.Status()),
			slog.Int64("duration_ms", time.Since(start).Milliseconds()),
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			l.Error(c.Request.Context(), "http_request", "request failed", attrs...)
			return
		}
		l.Info(c.Request.Context(), "http_request", "request completed", attrs...)
	}
}
