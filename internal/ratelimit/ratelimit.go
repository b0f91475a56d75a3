// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ratelimit spaces outbound calls per source. Each source gets a
// strict minimum interval between consecutive calls; sources never wait
// on each other and idle sources do not bank extra calls.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/pdiddy/litfetch/pkg/types"
)

// DefaultFallback applies to sources missing from the interval table.
const DefaultFallback = 100 * time.Millisecond

// DefaultIntervals returns the minimum spacing per source. PubMed allows
// about three requests per second without an API key.
func DefaultIntervals() map[types.Source]time.Duration {
	return map[types.Source]time.Duration{
		types.SourcePubMed:    340 * time.Millisecond,
		types.SourceArxiv:     500 * time.Millisecond,
		types.SourceBiorxiv:   500 * time.Millisecond,
		types.SourceUnpaywall: 100 * time.Millisecond,
		types.SourceCrossref:  100 * time.Millisecond,
	}
}

// Limiter holds one rate.Limiter per source. The zero value is not
// usable; call New.
type Limiter struct {
	mu        sync.Mutex
	intervals map[types.Source]time.Duration
	fallback  time.Duration
	limiters  map[types.Source]*rate.Limiter
}

// New returns a Limiter. Intervals override DefaultIntervals entry by
// entry; a zero or negative fallback uses DefaultFallback.
func New(intervals map[types.Source]time.Duration, fallback time.Duration) *Limiter {
	merged := DefaultIntervals()
	for src, d := range intervals {
		merged[src] = d
	}
	if fallback <= 0 {
		fallback = DefaultFallback
	}
	return &Limiter{
		intervals: merged,
		fallback:  fallback,
		limiters:  make(map[types.Source]*rate.Limiter),
	}
}

// Interval reports the minimum spacing enforced for src.
func (l *Limiter) Interval(src types.Source) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.intervalLocked(src)
}

func (l *Limiter) intervalLocked(src types.Source) time.Duration {
	if d, ok := l.intervals[src]; ok {
		return d
	}
	return l.fallback
}

// Wait blocks until a call tagged src may proceed, then records it. It
// returns ctx.Err() if the context ends first, in which case no call is
// recorded.
func (l *Limiter) Wait(ctx context.Context, src types.Source) error {
	return l.limiterFor(src).Wait(ctx)
}

// limiterFor returns the per-source limiter, creating it on first use.
// The map lock is held only for the lookup, so a wait on one source never
// blocks callers of another.
func (l *Limiter) limiterFor(src types.Source) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	lim, ok := l.limiters[src]
	if !ok {
		d := l.intervalLocked(src)
		r := rate.Inf
		if d > 0 {
			r = rate.Every(d)
		}
		// Burst 1: at most one immediate call, then strict spacing.
		lim = rate.NewLimiter(r, 1)
		l.limiters[src] = lim
	}
	return lim
}
