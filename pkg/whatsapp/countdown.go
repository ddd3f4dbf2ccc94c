package whatsapp

import (
	"context"
	"time"
)

// Countdown blocks for d, invoking onTick with the remaining time once per
// tick and a final zero at the deadline. It is the one timer primitive the
// send loop uses: progress reporting and the deadline share a clock, and
// cancellation arrives through ctx.
func Countdown(ctx context.Context, d time.Duration, tick time.Duration, onTick func(remaining time.Duration)) error {
	if onTick == nil {
		onTick = func(time.Duration) {}
	}
	if d <= 0 {
		onTick(0)
		return ctx.Err()
	}
	if tick <= 0 {
		tick = time.Second
	}

	deadline := time.Now().Add(d)
	timer := time.NewTimer(d)
	defer timer.Stop()
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	onTick(d)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
			onTick(0)
			return nil
		case <-ticker.C:
			remaining := time.Until(deadline)
			if remaining < 0 {
				remaining = 0
			}
			onTick(remaining)
		}
	}
}
