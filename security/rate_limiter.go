// ABOUTME: Outbound request throttle protecting the backend from bursty clients
// ABOUTME: Token bucket built on golang.org/x/time/rate, disabled unless configured

package security

import (
	"context"
	"log/slog"

	"golang.org/x/time/rate"
)

// ClientRateLimiter throttles outgoing requests with a token bucket.
type ClientRateLimiter struct {
	limiter *rate.Limiter
	enabled bool
	logger  *slog.Logger
}

// NewClientRateLimiter creates a limiter admitting requestsPerSecond with
// the given burst. A disabled limiter admits everything immediately.
func NewClientRateLimiter(requestsPerSecond float64, burst int, enabled bool, logger *slog.Logger) *ClientRateLimiter {
	if logger == nil {
		logger = slog.Default()
	}
	if requestsPerSecond <= 0 {
		requestsPerSecond = 10
	}
	if burst <= 0 {
		burst = 1
	}

	return &ClientRateLimiter{
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
		enabled: enabled,
		logger:  logger,
	}
}

// Wait blocks until the limiter admits the request or the context ends.
func (l *ClientRateLimiter) Wait(ctx context.Context) error {
	if l == nil || !l.enabled {
		return nil
	}

	if err := l.limiter.Wait(ctx); err != nil {
		l.logger.Debug("Rate limiter wait aborted", "error", err)
		return err
	}
	return nil
}

// Allow reports whether a request may proceed right now without blocking.
func (l *ClientRateLimiter) Allow() bool {
	if l == nil || !l.enabled {
		return true
	}
	return l.limiter.Allow()
}
