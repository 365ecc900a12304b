// Package dashboard turns probe results into rolling cache statistics.
//
// The State reduction is pure: Fold, Tick and Resync take a State and
// return the next one. Session owns the live State and HistoryLog and is
// the only place they change.
package dashboard

import (
	"fmt"
	"math"

	"github.com/Sternrassler/edge-cache-lab/pkg/client"
)

// State is the client-side rolling aggregate.
type State struct {
	CacheHits     int64
	CacheMisses   int64
	TotalRequests int64

	// LastHitTimeMs and LastMissTimeMs are valid only when the
	// matching Has flag is set.
	LastHitTimeMs  int64
	HasLastHit     bool
	LastMissTimeMs int64
	HasLastMiss    bool

	UptimeSeconds int64
}

// Fold returns state with result applied.
//
// System results (purge) leave the state untouched. Every other result
// counts towards TotalRequests. A dynamic-endpoint probe refreshes the
// miss latency as the uncached baseline, but only a MISS status counts
// as a cache miss.
func Fold(result client.Result, state State) State {
	if result.System {
		return state
	}

	state.TotalRequests++
	latency := result.ResponseTimeMs()

	switch result.CacheStatus {
	case client.StatusHit:
		state.CacheHits++
		state.LastHitTimeMs, state.HasLastHit = latency, true
	case client.StatusMiss:
		state.CacheMisses++
		state.LastMissTimeMs, state.HasLastMiss = latency, true
	}

	if result.Dynamic && !result.Failed {
		state.LastMissTimeMs, state.HasLastMiss = latency, true
	}
	return state
}

// HitRate returns CacheHits as a percentage of TotalRequests, or 0 when
// nothing has been probed yet.
func HitRate(state State) float64 {
	if state.TotalRequests == 0 {
		return 0
	}
	return float64(state.CacheHits) / float64(state.TotalRequests) * 100
}

// Tick advances the local uptime by one second.
func Tick(state State) State {
	state.UptimeSeconds++
	return state
}

// Resync replaces the local uptime with the floor of the server value.
func Resync(state State, serverUptimeSeconds float64) State {
	if serverUptimeSeconds < 0 || math.IsNaN(serverUptimeSeconds) || math.IsInf(serverUptimeSeconds, 0) {
		return state
	}
	state.UptimeSeconds = int64(math.Floor(serverUptimeSeconds))
	return state
}

// FormatUptime renders seconds as HH:MM:SS.
func FormatUptime(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, (seconds%3600)/60, seconds%60)
}
