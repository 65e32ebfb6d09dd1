package provider

import (
	"context"
	"sync"
	"time"
)

// rateLimiter implements a sliding window rate limiter.
type rateLimiter struct {
	mu          sync.Mutex
	requests    []time.Time
	maxRequests int
	window      time.Duration
	now         func() time.Time
}

func newRateLimiter(maxRequests int, window time.Duration) *rateLimiter {
	return &rateLimiter{
		maxRequests: maxRequests,
		window:      window,
		requests:    make([]time.Time, 0, maxRequests),
		now:         time.Now,
	}
}

// reserve records a request when the window has room and otherwise returns
// how long to wait before trying again.
func (r *rateLimiter) reserve() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	cutoff := now.Add(-r.window)
	kept := r.requests[:0]
	for _, req := range r.requests {
		if req.After(cutoff) {
			kept = append(kept, req)
		}
	}
	r.requests = kept

	if len(r.requests) < r.maxRequests {
		r.requests = append(r.requests, now)
		return 0
	}
	// Wait for the oldest request to leave the window, plus a little slack.
	return r.window - now.Sub(r.requests[0]) + 10*time.Millisecond
}

// wait blocks until a request fits in the window or ctx is done.
func (r *rateLimiter) wait(ctx context.Context) error {
	for {
		d := r.reserve()
		if d <= 0 {
			return nil
		}
		timer := time.NewTimer(d)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// LimitedResolver spaces out calls to the wrapped resolver so concurrent
// workers stay within the catalog's request rate.
type LimitedResolver struct {
	next    Resolver
	limiter *rateLimiter
}

// NewLimitedResolver allows at most maxRequests calls per window. A
// non-positive maxRequests disables limiting.
func NewLimitedResolver(next Resolver, maxRequests int, window time.Duration) Resolver {
	if maxRequests <= 0 || window <= 0 {
		return next
	}
	return &LimitedResolver{next: next, limiter: newRateLimiter(maxRequests, window)}
}

func (l *LimitedResolver) Resolve(ctx context.Context, id string, kind Kind) (Result, error) {
	if err := l.limiter.wait(ctx); err != nil {
		return Result{}, err
	}
	return l.next.Resolve(ctx, id, kind)
}
