// Package pacer spaces out calls against rate limited upstreams.
package pacer

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Pacer hands out call slots at a fixed interval.
type Pacer struct {
	limiter *rate.Limiter
}

// New builds a pacer releasing one slot every interval, allowing burst slots up front.
// A non-positive interval disables pacing.
func New(interval time.Duration, burst int) *Pacer {
	if burst <= 0 {
		burst = 1
	}
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &Pacer{limiter: rate.NewLimiter(limit, burst)}
}

// Wait blocks until the next slot or ctx is done.
func (p *Pacer) Wait(ctx context.Context) error {
	if p == nil {
		return ctx.Err()
	}
	return p.limiter.Wait(ctx)
}

// Allow reports whether a slot is available right now, consuming it when it is.
func (p *Pacer) Allow() bool {
	if p == nil {
		return true
	}
	return p.limiter.Allow()
}
