package whatsapp

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestCountdown(t *testing.T) {
	t.Parallel()

	t.Run("completes and reports zero at the deadline", func(t *testing.T) {
		t.Parallel()

		var mu sync.Mutex
		var ticks []time.Duration
		err := Countdown(context.Background(), 50*time.Millisecond, 10*time.Millisecond, func(remaining time.Duration) {
			mu.Lock()
			ticks = append(ticks, remaining)
			mu.Unlock()
		})
		if err != nil {
			t.Fatalf("Countdown returned %v", err)
		}

		mu.Lock()
		defer mu.Unlock()
		if len(ticks) < 2 {
			t.Fatalf("expected at least 2 ticks, got %d", len(ticks))
		}
		if ticks[0] != 50*time.Millisecond {
			t.Errorf("first tick = %v, want full duration", ticks[0])
		}
		if ticks[len(ticks)-1] != 0 {
			t.Errorf("last tick = %v, want 0", ticks[len(ticks)-1])
		}
	})

	t.Run("cancellation interrupts the wait", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		go func() {
			time.Sleep(20 * time.Millisecond)
			cancel()
		}()

		start := time.Now()
		err := Countdown(ctx, 5*time.Second, 10*time.Millisecond, nil)
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("Countdown returned %v, want context.Canceled", err)
		}
		if elapsed := time.Since(start); elapsed > time.Second {
			t.Errorf("cancellation took %v, should be nearly immediate", elapsed)
		}
	})

	t.Run("non-positive duration returns immediately", func(t *testing.T) {
		t.Parallel()

		called := false
		err := Countdown(context.Background(), 0, time.Second, func(remaining time.Duration) {
			called = true
			if remaining != 0 {
				t.Errorf("remaining = %v, want 0", remaining)
			}
		})
		if err != nil {
			t.Fatalf("Countdown returned %v", err)
		}
		if !called {
			t.Error("onTick was not called for zero duration")
		}
	})
}
