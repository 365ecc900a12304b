package dashboard

import (
	"sync"

	"github.com/Sternrassler/edge-cache-lab/pkg/client"
)

// Snapshot is a consistent copy of a Session.
type Snapshot struct {
	State   State
	HitRate float64
	History []client.Result
}

// Session owns one dashboard's State and HistoryLog. Probes, the stress
// driver and the uptime timers may call it from different goroutines;
// every update is applied under one lock, in the order calls arrive.
type Session struct {
	mu      sync.Mutex
	state   State
	history HistoryLog
}

// NewSession returns an empty session.
func NewSession() *Session {
	return &Session{}
}

// Apply folds result into the state and pushes it onto the history in
// one step, so the two never disagree about which results were seen.
func (s *Session) Apply(result client.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = Fold(result, s.state)
	s.history.Push(result)
}

// Tick advances the local uptime by one second.
func (s *Session) Tick() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = Tick(s.state)
}

// Resync replaces the local uptime with the server's.
func (s *Session) Resync(serverUptimeSeconds float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = Resync(s.state, serverUptimeSeconds)
}

// State returns the current aggregate.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Snapshot returns state, hit rate and history taken together.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		State:   s.state,
		HitRate: HitRate(s.state),
		History: s.history.Entries(),
	}
}
