// Package ratelimit gates request admission with a shared token bucket.
package ratelimit

import (
	"context"
	"sync/atomic"

	"github.com/pkg/errors"
	"golang.org/x/time/rate"
)

// DefaultRate is the default number of admissions per second
const DefaultRate = 1000

// Limiter admits at most rate requests per second across all callers.
// The bucket holds up to rate permits and refills continuously.
type Limiter struct {
	limiter  *rate.Limiter
	admitted atomic.Uint64
}

// New creates a limiter admitting perSecond permits per second
func New(perSecond int) (*Limiter, error) {
	if perSecond <= 0 {
		return nil, errors.Errorf("rate must be positive, got %d", perSecond)
	}
	return &Limiter{
		limiter: rate.NewLimiter(rate.Limit(perSecond), perSecond),
	}, nil
}

// Acquire blocks until a permit is available. It only returns an error when
// ctx is cancelled before the permit is granted.
func (l *Limiter) Acquire(ctx context.Context) error {
	if err := l.limiter.Wait(ctx); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		// Wait refuses when the deadline is shorter than the expected delay
		<-ctx.Done()
		return ctx.Err()
	}
	l.admitted.Add(1)
	return nil
}

// Rate returns the configured permits per second
func (l *Limiter) Rate() int {
	return l.limiter.Burst()
}

// Admitted returns the number of permits granted so far
func (l *Limiter) Admitted() uint64 {
	return l.admitted.Load()
}
