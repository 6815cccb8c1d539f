package util

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// RescanLimiter paces full-graph rescans so a burst of file events (branch
// switch, mass format) cannot pin the CPU on repeated detection runs.
type RescanLimiter struct {
	inner *rate.Limiter
}

// NewRescanLimiter allows perSecond rescans sustained with the given burst.
// perSecond <= 0 disables limiting.
func NewRescanLimiter(perSecond float64, burst int) *RescanLimiter {
	if perSecond <= 0 {
		return &RescanLimiter{inner: rate.NewLimiter(rate.Inf, 0)}
	}
	if burst < 1 {
		burst = 1
	}
	return &RescanLimiter{inner: rate.NewLimiter(rate.Limit(perSecond), burst)}
}

// Allow reports whether a rescan may start now.
func (l *RescanLimiter) Allow() bool {
	return l.inner.AllowN(time.Now(), 1)
}

// Wait blocks until a rescan slot is available or the context ends.
func (l *RescanLimiter) Wait(ctx context.Context) error {
	return l.inner.WaitN(ctx, 1)
}
