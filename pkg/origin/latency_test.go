package origin

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestSimulateLatency(t *testing.T) {
	tests := []struct {
		name    string
		delay   time.Duration
		minWait time.Duration
	}{
		{name: "zero", delay: 0, minWait: 0},
		{name: "negative", delay: -time.Second, minWait: 0},
		{name: "short", delay: 20 * time.Millisecond, minWait: 20 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start := time.Now()
			if err := SimulateLatency(context.Background(), tt.delay); err != nil {
				t.Fatalf("SimulateLatency() error = %v", err)
			}
			if elapsed := time.Since(start); elapsed < tt.minWait {
				t.Errorf("returned after %v, want at least %v", elapsed, tt.minWait)
			}
		})
	}
}

func TestSimulateLatency_Interrupted(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := SimulateLatency(ctx, 5*time.Second)
	if !errors.Is(err, ErrDelayInterrupted) {
		t.Fatalf("error = %v, want ErrDelayInterrupted", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("interrupted delay took %v", elapsed)
	}
}

func TestSimulateLatency_DoesNotSerialize(t *testing.T) {
	const (
		workers = 20
		delay   = 50 * time.Millisecond
	)

	start := time.Now()
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = SimulateLatency(context.Background(), delay)
		}()
	}
	wg.Wait()

	// Serialized waits would need workers*delay = 1s.
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Errorf("%d concurrent delays took %v", workers, elapsed)
	}
}
