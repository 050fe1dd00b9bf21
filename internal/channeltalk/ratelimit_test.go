package channeltalk

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestRateGateSpacesCalls(t *testing.T) {
	gate := NewRateGate(20 * time.Millisecond)

	start := time.Now()
	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := gate.Wait(context.Background()); err != nil {
				t.Errorf("Wait() error = %v", err)
			}
		}()
	}
	wg.Wait()

	// Three reserved slots: 0ms, 20ms, 40ms.
	if elapsed := time.Since(start); elapsed < 40*time.Millisecond {
		t.Errorf("three waiters finished in %v, want >= 40ms", elapsed)
	}
}

func TestRateGateWaitHonorsContext(t *testing.T) {
	gate := NewRateGate(time.Hour)
	if err := gate.Wait(context.Background()); err != nil {
		t.Fatalf("first Wait() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if err := gate.Wait(ctx); err != context.DeadlineExceeded {
		t.Fatalf("Wait() error = %v, want context.DeadlineExceeded", err)
	}
}

func TestRateGateBackoffDoublesAndCaps(t *testing.T) {
	gate := NewRateGate(time.Millisecond)

	want := []time.Duration{
		100 * time.Millisecond,
		200 * time.Millisecond,
		400 * time.Millisecond,
		800 * time.Millisecond,
		1600 * time.Millisecond,
		2 * time.Second,
		2 * time.Second,
	}
	for i, w := range want {
		if got := gate.Penalize(); got != w {
			t.Errorf("Penalize() #%d = %v, want %v", i+1, got, w)
		}
	}

	gate.Reset()
	if got := gate.Backoff(); got != 0 {
		t.Errorf("Backoff() after Reset = %v, want 0", got)
	}
	if got := gate.Penalize(); got != 100*time.Millisecond {
		t.Errorf("Penalize() after Reset = %v, want 100ms", got)
	}
}
