package client

import (
	"testing"
	"time"
)

func TestExponentialBackoffGrowth(t *testing.T) {
	b := &ExponentialBackoff{Base: 100 * time.Millisecond, Max: 2 * time.Second, Factor: 2.0}

	if got := b.Next(0); got != 100*time.Millisecond {
		t.Errorf("attempt 0: expected 100ms, got %v", got)
	}
	if got := b.Next(1); got != 200*time.Millisecond {
		t.Errorf("attempt 1: expected 200ms, got %v", got)
	}
	if got := b.Next(2); got != 400*time.Millisecond {
		t.Errorf("attempt 2: expected 400ms, got %v", got)
	}
	// Capped.
	if got := b.Next(10); got != 2*time.Second {
		t.Errorf("attempt 10: expected cap 2s, got %v", got)
	}
	// Negative attempt falls back to base.
	if got := b.Next(-1); got != 100*time.Millisecond {
		t.Errorf("negative attempt: expected base, got %v", got)
	}
}

func TestExponentialBackoffJitterBounds(t *testing.T) {
	b := &ExponentialBackoff{Base: 100 * time.Millisecond, Max: 5 * time.Second, Factor: 2.0, Jitter: 0.2}

	for i := 0; i < 100; i++ {
		d := b.Next(2) // nominal 400ms
		min := 320 * time.Millisecond
		max := 480 * time.Millisecond
		if d < min || d > max {
			t.Fatalf("jittered delay %v outside [%v, %v]", d, min, max)
		}
	}
}

func TestDefaultBackoff(t *testing.T) {
	b := DefaultBackoff()
	if b.Base != 100*time.Millisecond || b.Factor != 2.0 {
		t.Errorf("unexpected defaults: %+v", b)
	}
}
