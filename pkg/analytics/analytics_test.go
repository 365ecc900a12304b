package analytics

import (
	"context"
	"sync"
	"testing"
)

func TestCounter_RecordAndSnapshot(t *testing.T) {
	c := NewCounter()
	ctx := context.Background()

	for _, path := range []string{"/fast-data", "/fast-data", "/health"} {
		if err := c.Record(ctx, path); err != nil {
			t.Fatalf("Record(%s) error = %v", path, err)
		}
	}

	state, err := c.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if state.TotalRequests != 3 {
		t.Errorf("TotalRequests = %d, want 3", state.TotalRequests)
	}
	if state.ByEndpoint["/fast-data"] != 2 {
		t.Errorf("ByEndpoint[/fast-data] = %d, want 2", state.ByEndpoint["/fast-data"])
	}
	if state.ByEndpoint["/health"] != 1 {
		t.Errorf("ByEndpoint[/health] = %d, want 1", state.ByEndpoint["/health"])
	}
}

func TestCounter_SnapshotIsCopy(t *testing.T) {
	c := NewCounter()
	ctx := context.Background()
	_ = c.Record(ctx, "/analytics")

	state, _ := c.Snapshot(ctx)
	state.ByEndpoint["/analytics"] = 100

	again, _ := c.Snapshot(ctx)
	if again.ByEndpoint["/analytics"] != 1 {
		t.Errorf("Snapshot shares map with counter: got %d, want 1", again.ByEndpoint["/analytics"])
	}
}

func TestCounter_ConcurrentRecord(t *testing.T) {
	c := NewCounter()
	ctx := context.Background()

	paths := []string{"/fast-data", "/dynamic-data", "/health", "/analytics"}
	const perPath = 250

	var wg sync.WaitGroup
	for _, path := range paths {
		for i := 0; i < perPath; i++ {
			wg.Add(1)
			go func(p string) {
				defer wg.Done()
				_ = c.Record(ctx, p)
			}(path)
		}
	}

	// Snapshots taken mid-flight must stay internally consistent.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 50; i++ {
			s, _ := c.Snapshot(ctx)
			var sum int64
			for _, n := range s.ByEndpoint {
				sum += n
			}
			if sum != s.TotalRequests {
				t.Errorf("inconsistent snapshot: total %d, sum %d", s.TotalRequests, sum)
				return
			}
		}
	}()

	wg.Wait()
	<-done

	state, _ := c.Snapshot(ctx)
	if want := int64(len(paths) * perPath); state.TotalRequests != want {
		t.Errorf("TotalRequests = %d, want %d", state.TotalRequests, want)
	}
	for _, path := range paths {
		if state.ByEndpoint[path] != perPath {
			t.Errorf("ByEndpoint[%s] = %d, want %d", path, state.ByEndpoint[path], perPath)
		}
	}
}
