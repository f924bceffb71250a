package middleware

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	internalerrors "github.com/jamesprial/storefront-api/internal/errors"
	"github.com/jamesprial/storefront-api/internal/logging"
	"github.com/jamesprial/storefront-api/internal/transport/transportcore"
	"github.com/jamesprial/storefront-api/pkg/api"
)

// RateLimiter provides per-client rate limiting keyed by remote IP.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*clientLimiter
	rate     rate.Limit
	burst    int
	logger   logrus.FieldLogger
	now      func() time.Time
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter creates a limiter allowing requestsPerSecond with burst per client.
func NewRateLimiter(requestsPerSecond float64, burst int, logger logrus.FieldLogger) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*clientLimiter),
		rate:     rate.Limit(requestsPerSecond),
		burst:    burst,
		logger:   logging.OrDefault(logger),
		now:      time.Now,
	}
}

// getLimiter returns the limiter for key, creating it on first use.
func (rl *RateLimiter) getLimiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cl, exists := rl.limiters[key]
	if !exists {
		cl = &clientLimiter{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.limiters[key] = cl
	}
	cl.lastSeen = rl.now()
	return cl.limiter
}

// Middleware returns the rate limiting middleware. Rejected requests are
// answered by responder with 429 and a Retry-After hint.
func (rl *RateLimiter) Middleware(responder transportcore.ErrorResponder) transportcore.Middleware {
	if responder == nil {
		panic("responder cannot be nil")
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := clientKey(r)
			if !rl.getLimiter(key).Allow() {
				rl.logger.WithFields(logrus.Fields{
					"client":     key,
					"method":     r.Method,
					"path":       r.URL.Path,
					"request_id": transportcore.RequestIDFromContext(r.Context()),
				}).Warn("rate limit exceeded")

				w.Header().Set(api.HeaderRetryAfter, strconv.Itoa(rl.retryAfterSeconds()))
				responder.Respond(w, r, internalerrors.TooManyRequests(""))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Cleanup removes limiters idle for longer than maxIdle and returns how many
// were removed.
func (rl *RateLimiter) Cleanup(maxIdle time.Duration) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-maxIdle)
	removed := 0
	for key, cl := range rl.limiters {
		if cl.lastSeen.Before(cutoff) {
			delete(rl.limiters, key)
			removed++
		}
	}
	return removed
}

// StartCleanup runs Cleanup every interval until ctx is done.
func (rl *RateLimiter) StartCleanup(ctx context.Context, interval, maxIdle time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := rl.Cleanup(maxIdle); n > 0 {
					rl.logger.WithField("removed", n).Debug("rate limiter cleanup")
				}
			}
		}
	}()
}

// retryAfterSeconds is the time to refill one token, rounded up.
func (rl *RateLimiter) retryAfterSeconds() int {
	if rl.rate <= 0 {
		return 1
	}
	secs := int(1/float64(rl.rate) + 0.999)
	if secs < 1 {
		secs = 1
	}
	return secs
}

// clientKey identifies the caller by remote IP.
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
