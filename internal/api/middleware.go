package api

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/page-audit/auditor/internal/monitoring"
)

// clientLimiter tracks per-IP rate limiters, dropping idle entries so the
// map does not grow without bound.
type clientLimiter struct {
	mu       sync.Mutex
	clients  map[string]*clientEntry
	rps      rate.Limit
	burst    int
	lastSeen time.Duration
}

type clientEntry struct {
	limiter *rate.Limiter
	seen    time.Time
}

func newClientLimiter(rps float64, burst int) *clientLimiter {
	cl := &clientLimiter{
		clients:  make(map[string]*clientEntry),
		rps:      rate.Limit(rps),
		burst:    burst,
		lastSeen: 10 * time.Minute,
	}
	go cl.cleanupLoop()
	return cl
}

func (cl *clientLimiter) allow(ip string) bool {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	entry, ok := cl.clients[ip]
	if !ok {
		entry = &clientEntry{limiter: rate.NewLimiter(cl.rps, cl.burst)}
		cl.clients[ip] = entry
	}
	entry.seen = time.Now()
	return entry.limiter.Allow()
}

func (cl *clientLimiter) cleanupLoop() {
	for range time.Tick(time.Minute) {
		cl.mu.Lock()
		for ip, entry := range cl.clients {
			if time.Since(entry.seen) > cl.lastSeen {
				delete(cl.clients, ip)
			}
		}
		cl.mu.Unlock()
	}
}

// rateLimitMiddleware rejects clients exceeding the configured request rate.
func rateLimitMiddleware(rps float64, burst int) gin.HandlerFunc {
	limiter := newClientLimiter(rps, burst)
	return func(c *gin.Context) {
		if !limiter.allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "rate limit exceeded",
			})
			return
		}
		c.Next()
	}
}

// metricsMiddleware records request counts and latencies.
func metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		monitoring.HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		monitoring.HTTPRequestDuration.WithLabelValues(c.Request.Method, path, status).
			Observe(time.Since(start).Seconds())
	}
}

// corsMiddleware allows browser clients on other origins to call the API.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
