package origin

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrDelayInterrupted is returned when a simulated delay ends early because
// the request context was cancelled. Handlers answer it with 503.
var ErrDelayInterrupted = errors.New("simulated delay interrupted")

// SimulateLatency holds the calling request for d. Only the calling
// goroutine waits; other requests keep being served.
func SimulateLatency(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", ErrDelayInterrupted, ctx.Err())
	}
}
