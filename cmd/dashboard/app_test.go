package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/Sternrassler/edge-cache-lab/internal/config"
	"github.com/Sternrassler/edge-cache-lab/internal/testutil"
	"github.com/Sternrassler/edge-cache-lab/pkg/client"
	"github.com/rs/zerolog"
)

func newTestApp(t *testing.T) (*app, *testutil.MockEdge, *bytes.Buffer) {
	t.Helper()

	edge := testutil.NewMockEdge("X-Cache")
	t.Cleanup(edge.Close)

	var out bytes.Buffer
	a, err := newApp(config.Dashboard{
		EdgeURL:           edge.URL(),
		CacheStatusHeader: "X-Cache",
		ProbeTimeout:      5 * time.Second,
		BurstSize:         10,
		BurstSpacing:      time.Millisecond,
		UptimeTick:        time.Second,
		UptimeResync:      10 * time.Second,
	}, &out, zerolog.Nop())
	if err != nil {
		t.Fatalf("newApp() error = %v", err)
	}
	return a, edge, &out
}

func TestExecute_FastMissThenHit(t *testing.T) {
	a, edge, _ := newTestApp(t)
	edge.SetCacheSequence(client.PathFastData, "MISS", "HIT")

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if err := a.execute(ctx, "fast"); err != nil {
			t.Fatalf("execute(fast) error = %v", err)
		}
	}

	state := a.session.State()
	if state.CacheHits != 1 || state.CacheMisses != 1 || state.TotalRequests != 2 {
		t.Errorf("state = %+v, want 1 hit 1 miss of 2", state)
	}
}

func TestExecute_DynamicIsBypassed(t *testing.T) {
	a, _, _ := newTestApp(t)

	if err := a.execute(context.Background(), "d"); err != nil {
		t.Fatalf("execute(d) error = %v", err)
	}

	snap := a.session.Snapshot()
	if snap.History[0].CacheStatus != client.StatusBypassed {
		t.Errorf("status = %s, want BYPASSED", snap.History[0].CacheStatus)
	}
	if snap.State.CacheMisses != 0 || !snap.State.HasLastMiss {
		t.Errorf("state = %+v, want miss baseline without a miss count", snap.State)
	}
}

func TestExecute_PurgeRecordsSystemEntry(t *testing.T) {
	a, edge, _ := newTestApp(t)

	if err := a.execute(context.Background(), "p"); err != nil {
		t.Fatalf("execute(p) error = %v", err)
	}

	if edge.PurgeCount() != 1 {
		t.Errorf("PurgeCount = %d, want 1", edge.PurgeCount())
	}
	snap := a.session.Snapshot()
	if snap.State.TotalRequests != 0 {
		t.Errorf("TotalRequests = %d, purge must not count", snap.State.TotalRequests)
	}
	if len(snap.History) != 1 || snap.History[0].CacheStatus != client.StatusPurged {
		t.Errorf("history = %+v, want one PURGED entry", snap.History)
	}
}

func TestExecute_FailedProbeIsRecorded(t *testing.T) {
	a, edge, _ := newTestApp(t)
	edge.SetResponse(client.PathFastData, testutil.NewServerErrorResponse())

	if err := a.execute(context.Background(), "f"); err == nil {
		t.Fatal("execute(f) expected error")
	}
	if got := a.session.State().TotalRequests; got != 1 {
		t.Errorf("TotalRequests = %d, want 1", got)
	}
}

func TestExecute_UnknownAction(t *testing.T) {
	a, _, _ := newTestApp(t)
	if err := a.execute(context.Background(), "x"); err == nil {
		t.Fatal("execute(x) expected error")
	}
}

func TestCmdStress(t *testing.T) {
	a, edge, out := newTestApp(t)
	edge.SetCacheSequence(client.PathFastData, "MISS", "HIT")

	if err := a.cmdStress(context.Background(), []string{"-n", "3", "-spacing", "1ms"}); err != nil {
		t.Fatalf("cmdStress() error = %v", err)
	}

	state := a.session.State()
	if state.TotalRequests != 3 || state.CacheHits != 2 {
		t.Errorf("state = %+v, want 2 hits of 3", state)
	}
	if !strings.Contains(out.String(), "Burst: 3 probes, 0 failed") {
		t.Errorf("output missing burst summary:\n%s", out.String())
	}
}

func TestCmdStress_InvalidSize(t *testing.T) {
	a, _, _ := newTestApp(t)
	if err := a.cmdStress(context.Background(), []string{"-n", "0"}); err == nil {
		t.Fatal("cmdStress() expected error for -n 0")
	}
}

func TestCmdStatus(t *testing.T) {
	a, edge, out := newTestApp(t)
	edge.SetUptime(3725.4)

	if err := a.cmdStatus(context.Background()); err != nil {
		t.Fatalf("cmdStatus() error = %v", err)
	}
	if !strings.Contains(out.String(), "healthy, up 01:02:05") {
		t.Errorf("unexpected status output: %q", out.String())
	}
}

func TestCmdWatch_RunsActionsUntilQuit(t *testing.T) {
	a, edge, out := newTestApp(t)
	edge.SetUptime(100)
	edge.SetCacheSequence(client.PathFastData, "HIT")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	stdin := strings.NewReader("f\nd\nq\n")
	if err := a.cmdWatch(ctx, []string{"-refresh", "1h"}, stdin); err != nil {
		t.Fatalf("cmdWatch() error = %v", err)
	}

	if a.syncer.Running() {
		t.Error("synchronizer still running after watch returned")
	}
	if got := a.session.State().TotalRequests; got != 2 {
		t.Errorf("TotalRequests = %d, want 2", got)
	}
	if !strings.Contains(out.String(), "HIT") {
		t.Errorf("output missing HIT entry:\n%s", out.String())
	}
}

func TestRun_UnknownCommand(t *testing.T) {
	var out bytes.Buffer
	err := run(context.Background(), []string{"bogus"}, strings.NewReader(""), &out)
	if err == nil || !strings.Contains(err.Error(), "unknown command") {
		t.Errorf("run() error = %v, want unknown command", err)
	}
}
