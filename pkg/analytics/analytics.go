// Package analytics counts inbound origin requests.
//
// A Store is owned by the origin server and handed to its request
// middleware; it is never reset while the process lives.
package analytics

import (
	"context"
	"maps"
	"sync"
)

// State is a point-in-time copy of the request counters.
type State struct {
	TotalRequests int64            `json:"totalRequests"`
	ByEndpoint    map[string]int64 `json:"requestsByEndpoint"`
}

// Store records requests and returns consistent snapshots.
// Implementations must not lose increments under concurrent Record calls.
type Store interface {
	Record(ctx context.Context, path string) error
	Snapshot(ctx context.Context) (State, error)
}

// Counter is the in-memory Store.
type Counter struct {
	mu         sync.Mutex
	total      int64
	byEndpoint map[string]int64
}

// NewCounter returns an empty Counter.
func NewCounter() *Counter {
	return &Counter{byEndpoint: make(map[string]int64)}
}

// Record increments the total and then the per-path count.
func (c *Counter) Record(_ context.Context, path string) error {
	c.mu.Lock()
	c.total++
	c.byEndpoint[path]++
	c.mu.Unlock()
	return nil
}

// Snapshot copies the counters under the same lock Record uses,
// so the total always equals the sum of ByEndpoint.
func (c *Counter) Snapshot(_ context.Context) (State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{
		TotalRequests: c.total,
		ByEndpoint:    maps.Clone(c.byEndpoint),
	}, nil
}
