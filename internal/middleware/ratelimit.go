package middleware

import (
	"context"
	"net"
	"net/http"

	"github.com/farmease/farmease-ai/internal/service/ratelimit"
	"github.com/farmease/farmease-ai/pkg/utils"
)

// Limiter reports whether a client key is within its request budget.
type Limiter interface {
	Allow(ctx context.Context, key string) bool
}

// ClientIP returns the host part of r.RemoteAddr.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// Allow checks the client against l and writes a 429 when the budget is
// spent. A nil limiter allows everything.
func Allow(l Limiter, w http.ResponseWriter, r *http.Request) bool {
	if l == nil || l.Allow(r.Context(), ClientIP(r)) {
		return true
	}
	utils.RespondDetail(w, r, http.StatusTooManyRequests, ratelimit.TooManyRequests)
	return false
}

// RateLimit rejects requests from clients over budget.
func RateLimit(l Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if Allow(l, w, r) {
				next.ServeHTTP(w, r)
			}
		})
	}
}
