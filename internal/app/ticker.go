package app

import (
	"context"
	"time"
)

// StartTicker launches a background goroutine that emits the current time
// at a fixed cadence until ctx is cancelled. It returns immediately. A
// non-positive interval disables ticking and returns nil, which blocks
// forever in a select.
func StartTicker(ctx context.Context, interval time.Duration) <-chan time.Time {
	if interval <= 0 {
		return nil
	}
	out := make(chan time.Time)
	go func() {
		defer close(out)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case at := <-ticker.C:
				select {
				case out <- at:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}
