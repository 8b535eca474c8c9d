// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestIntervalSpacesCalls(t *testing.T) {
	lim := NewInterval(20 * time.Millisecond)

	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := lim.Wait(context.Background()); err != nil {
			t.Fatalf("Wait: %v", err)
		}
	}
	elapsed := time.Since(start)

	// First call is free; the next two wait 20ms each.
	if elapsed < 40*time.Millisecond {
		t.Errorf("three calls took %v, want >= 40ms", elapsed)
	}
}

func TestIntervalZeroDelay(t *testing.T) {
	lim := NewInterval(0)

	start := time.Now()
	for i := 0; i < 100; i++ {
		if err := lim.Wait(context.Background()); err != nil {
			t.Fatalf("Wait: %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("zero-delay limiter slept: %v", elapsed)
	}
}

func TestIntervalNil(t *testing.T) {
	var lim *Interval
	if err := lim.Wait(context.Background()); err != nil {
		t.Errorf("nil limiter should be a no-op, got %v", err)
	}
}

func TestIntervalContextCancelled(t *testing.T) {
	lim := NewInterval(time.Second)
	if err := lim.Wait(context.Background()); err != nil {
		t.Fatalf("first Wait: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := lim.Wait(ctx)
	if err != context.DeadlineExceeded {
		t.Errorf("Wait = %v, want context.DeadlineExceeded", err)
	}
}
