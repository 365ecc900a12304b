package dashboard

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

var (
	uptimeResyncsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "edge_uptime_resyncs_total",
		Help: "Total successful uptime resynchronisations",
	})

	uptimeResyncFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "edge_uptime_resync_failures_total",
		Help: "Total absorbed uptime resync failures",
	})
)

// UptimeSource reports the origin's authoritative uptime in seconds.
// *client.Client implements it.
type UptimeSource interface {
	Uptime(ctx context.Context) (float64, error)
}

// UptimeSink receives ticks and resync samples. *Session implements it.
type UptimeSink interface {
	Tick()
	Resync(serverUptimeSeconds float64)
}

// SynchronizerConfig holds the two timer periods.
type SynchronizerConfig struct {
	TickInterval   time.Duration
	ResyncInterval time.Duration
	ResyncTimeout  time.Duration
}

// DefaultSynchronizerConfig ticks every second and resyncs every ten.
func DefaultSynchronizerConfig() SynchronizerConfig {
	return SynchronizerConfig{
		TickInterval:   time.Second,
		ResyncInterval: 10 * time.Second,
		ResyncTimeout:  5 * time.Second,
	}
}

// UptimeSynchronizer keeps a locally ticking uptime close to the origin's.
// It runs two independent tasks, a local tick and a periodic resync, both
// bound to the Start/Stop lifecycle.
type UptimeSynchronizer struct {
	source UptimeSource
	sink   UptimeSink
	cfg    SynchronizerConfig
	logger zerolog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewUptimeSynchronizer creates a stopped synchronizer.
func NewUptimeSynchronizer(source UptimeSource, sink UptimeSink, cfg SynchronizerConfig, logger zerolog.Logger) *UptimeSynchronizer {
	def := DefaultSynchronizerConfig()
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = def.TickInterval
	}
	if cfg.ResyncInterval <= 0 {
		cfg.ResyncInterval = def.ResyncInterval
	}
	if cfg.ResyncTimeout <= 0 {
		cfg.ResyncTimeout = def.ResyncTimeout
	}
	return &UptimeSynchronizer{
		source: source,
		sink:   sink,
		cfg:    cfg,
		logger: logger.With().Str("component", "uptime").Logger(),
	}
}

// Start performs an initial resync and launches both timers. Calling
// Start on a running synchronizer does nothing.
func (u *UptimeSynchronizer) Start(ctx context.Context) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	u.cancel = cancel

	u.wg.Add(2)
	go u.tickLoop(ctx)
	go u.resyncLoop(ctx)
}

// Stop cancels both timers and waits for them to exit. It is safe to call
// more than once, and no tick or resync is applied after it returns.
// The lock is held until the loops are gone so a concurrent Start cannot
// join a WaitGroup that is being drained.
func (u *UptimeSynchronizer) Stop() {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.cancel == nil {
		return
	}
	u.cancel()
	u.cancel = nil
	u.wg.Wait()
}

// Running reports whether the timers are active.
func (u *UptimeSynchronizer) Running() bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.cancel != nil
}

// ResyncOnce fetches the server uptime and applies it. On failure the
// local counter is left alone and the error is returned for callers that
// care; the resync loop ignores it.
func (u *UptimeSynchronizer) ResyncOnce(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, u.cfg.ResyncTimeout)
	defer cancel()

	uptime, err := u.source.Uptime(ctx)
	if err != nil {
		uptimeResyncFailures.Inc()
		u.logger.Debug().Err(err).Msg("Uptime resync failed, keeping local counter")
		return err
	}

	// A resync that lands after Stop must not touch the sink.
	if ctx.Err() != nil {
		return ctx.Err()
	}

	u.sink.Resync(uptime)
	uptimeResyncsTotal.Inc()
	u.logger.Debug().Float64("server_uptime", uptime).Msg("Uptime resynced")
	return nil
}

func (u *UptimeSynchronizer) tickLoop(ctx context.Context) {
	defer u.wg.Done()
	ticker := time.NewTicker(u.cfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if ctx.Err() != nil {
				return
			}
			u.sink.Tick()
		case <-ctx.Done():
			return
		}
	}
}

func (u *UptimeSynchronizer) resyncLoop(ctx context.Context) {
	defer u.wg.Done()
	_ = u.ResyncOnce(ctx)

	ticker := time.NewTicker(u.cfg.ResyncInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			_ = u.ResyncOnce(ctx)
		case <-ctx.Done():
			return
		}
	}
}
