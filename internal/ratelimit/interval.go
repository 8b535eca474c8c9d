// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ratelimit spaces outbound calls to an external API with a
// fixed minimum delay. One Interval is shared per source; the limiter is
// advisory, so a race at worst lets one extra request through early.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Interval enforces a fixed minimum delay between consecutive calls.
// The zero value (or a nil *Interval) imposes no delay.
type Interval struct {
	mu    sync.Mutex
	delay time.Duration
	last  time.Time
}

// NewInterval returns a limiter that keeps at least delay between calls.
func NewInterval(delay time.Duration) *Interval {
	return &Interval{delay: delay}
}

// Wait blocks until the configured delay since the previous call has
// elapsed, or until the context is cancelled. The reservation is taken
// before sleeping so concurrent callers queue behind each other.
func (i *Interval) Wait(ctx context.Context) error {
	if i == nil || i.delay <= 0 {
		return nil
	}

	i.mu.Lock()
	now := time.Now()
	next := i.last.Add(i.delay)
	if next.Before(now) {
		next = now
	}
	i.last = next
	i.mu.Unlock()

	wait := time.Until(next)
	if wait <= 0 {
		return nil
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(wait):
		return nil
	}
}
