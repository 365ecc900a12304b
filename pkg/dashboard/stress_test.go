package dashboard

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Sternrassler/edge-cache-lab/pkg/client"
	"github.com/rs/zerolog"
)

type fakeProber struct {
	mu    sync.Mutex
	calls []time.Time
	fail  func(n int) bool
}

func (p *fakeProber) Probe(_ context.Context, path string, _ client.Options) (client.Result, error) {
	p.mu.Lock()
	p.calls = append(p.calls, time.Now())
	n := len(p.calls)
	p.mu.Unlock()

	if p.fail != nil && p.fail(n) {
		return client.Result{}, errors.New("connection refused")
	}
	return client.Result{
		Timestamp:    time.Now(),
		Endpoint:     path,
		CacheStatus:  client.StatusHit,
		ResponseTime: 3 * time.Millisecond,
	}, nil
}

func (p *fakeProber) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.calls)
}

func TestRunBurst_AllSucceed(t *testing.T) {
	prober := &fakeProber{}
	session := NewSession()
	driver := NewStressDriver(prober, session, zerolog.Nop())

	report, err := driver.RunBurst(context.Background(), BurstConfig{Size: 10, Spacing: time.Millisecond})
	if err != nil {
		t.Fatalf("RunBurst() error = %v", err)
	}

	if report.Attempted != 10 || report.Failed != 0 {
		t.Errorf("report = %+v, want 10 attempted 0 failed", report)
	}
	state := session.State()
	if state.TotalRequests != 10 || state.CacheHits != 10 {
		t.Errorf("state = %+v, want 10 hits of 10", state)
	}
}

func TestRunBurst_FailuresDoNotAbort(t *testing.T) {
	// Only the fourth probe succeeds.
	prober := &fakeProber{fail: func(n int) bool { return n != 4 }}
	session := NewSession()
	driver := NewStressDriver(prober, session, zerolog.Nop())

	report, err := driver.RunBurst(context.Background(), BurstConfig{Size: 10, Spacing: time.Millisecond})
	if err != nil {
		t.Fatalf("RunBurst() error = %v", err)
	}

	if prober.count() != 10 {
		t.Errorf("probes = %d, want 10", prober.count())
	}
	if report.Failed != 9 {
		t.Errorf("Failed = %d, want 9", report.Failed)
	}

	state := session.State()
	if state.TotalRequests != 10 {
		t.Errorf("TotalRequests = %d, want 10", state.TotalRequests)
	}
	if state.CacheHits != 1 {
		t.Errorf("CacheHits = %d, want 1", state.CacheHits)
	}

	for _, entry := range session.Snapshot().History {
		if entry.CacheStatus == client.StatusUnknown && (!entry.Failed || entry.Endpoint != client.PathFastData) {
			t.Errorf("failed entry not normalised: %+v", entry)
		}
	}
}

func TestRunBurst_Spacing(t *testing.T) {
	prober := &fakeProber{}
	driver := NewStressDriver(prober, NewSession(), zerolog.Nop())

	spacing := 20 * time.Millisecond
	if _, err := driver.RunBurst(context.Background(), BurstConfig{Size: 4, Spacing: spacing}); err != nil {
		t.Fatalf("RunBurst() error = %v", err)
	}

	for i := 1; i < len(prober.calls); i++ {
		if gap := prober.calls[i].Sub(prober.calls[i-1]); gap < spacing {
			t.Errorf("gap between probe %d and %d = %v, want >= %v", i, i+1, gap, spacing)
		}
	}
}

func TestRunBurst_Cancelled(t *testing.T) {
	prober := &fakeProber{}
	driver := NewStressDriver(prober, NewSession(), zerolog.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	report, err := driver.RunBurst(ctx, BurstConfig{Size: 100, Spacing: 30 * time.Millisecond})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("RunBurst() error = %v, want deadline exceeded", err)
	}
	if report.Attempted >= 100 {
		t.Errorf("Attempted = %d, burst should have stopped early", report.Attempted)
	}
}

func TestDefaultBurstConfig(t *testing.T) {
	cfg := DefaultBurstConfig()
	if cfg.Size != 10 || cfg.Spacing != 100*time.Millisecond || cfg.Path != client.PathFastData {
		t.Errorf("DefaultBurstConfig() = %+v", cfg)
	}
}
