// Package limiter throttles outgoing requests to the remote API.
package limiter

import (
	"context"

	"golang.org/x/time/rate"
)

// Limiter blocks until a request may be sent.
type Limiter interface {
	// Wait blocks until the next request is allowed or ctx is done.
	Wait(ctx context.Context) error
}

// New returns a token-bucket limiter. rps <= 0 disables limiting.
func New(rps float64, burst int) Limiter {
	if rps <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}
