package dashboard

import (
	"context"
	"time"

	"github.com/Sternrassler/edge-cache-lab/pkg/client"
	"github.com/rs/zerolog"
)

// Prober issues a single probe. *client.Client implements it.
type Prober interface {
	Probe(ctx context.Context, path string, opts client.Options) (client.Result, error)
}

// Recorder receives probe results. *Session implements it.
type Recorder interface {
	Apply(result client.Result)
}

// BurstConfig describes one stress burst.
type BurstConfig struct {
	Size    int
	Spacing time.Duration
	Path    string
}

// DefaultBurstConfig returns ten probes of /fast-data spaced 100ms apart.
func DefaultBurstConfig() BurstConfig {
	return BurstConfig{
		Size:    10,
		Spacing: 100 * time.Millisecond,
		Path:    client.PathFastData,
	}
}

// BurstReport summarises a finished burst.
type BurstReport struct {
	Attempted int
	Failed    int
	Statuses  map[client.CacheStatus]int
	Duration  time.Duration
}

// StressDriver runs sequential probe bursts.
type StressDriver struct {
	prober Prober
	sink   Recorder
	logger zerolog.Logger
}

// NewStressDriver creates a driver that folds every result into sink.
func NewStressDriver(prober Prober, sink Recorder, logger zerolog.Logger) *StressDriver {
	return &StressDriver{
		prober: prober,
		sink:   sink,
		logger: logger.With().Str("component", "stress").Logger(),
	}
}

// RunBurst issues cfg.Size probes one after another, waiting cfg.Spacing
// after each. A failed probe is logged and recorded as a failed UNKNOWN
// result; it never ends the burst. Only ctx cancellation stops early.
func (d *StressDriver) RunBurst(ctx context.Context, cfg BurstConfig) (BurstReport, error) {
	if cfg.Path == "" {
		cfg.Path = client.PathFastData
	}

	report := BurstReport{Statuses: make(map[client.CacheStatus]int)}
	start := time.Now()

	d.logger.Info().
		Int("size", cfg.Size).
		Dur("spacing", cfg.Spacing).
		Str("endpoint", cfg.Path).
		Msg("Stress burst started")

	for i := 0; i < cfg.Size; i++ {
		result, err := d.prober.Probe(ctx, cfg.Path, client.Options{})
		if err != nil {
			report.Failed++
			d.logger.Warn().Err(err).Int("probe", i+1).Msg("Stress probe failed, continuing")
			result = asFailed(result, cfg.Path)
		}

		d.sink.Apply(result)
		report.Attempted++
		report.Statuses[result.CacheStatus]++

		if err := sleep(ctx, cfg.Spacing); err != nil {
			d.logger.Info().Int("completed", report.Attempted).Msg("Stress burst cancelled")
			report.Duration = time.Since(start)
			return report, err
		}
	}

	report.Duration = time.Since(start)
	d.logger.Info().
		Int("attempted", report.Attempted).
		Int("failed", report.Failed).
		Dur("duration", report.Duration).
		Msg("Stress burst finished")
	return report, nil
}

// asFailed normalises the result of a failed probe.
func asFailed(result client.Result, path string) client.Result {
	if result.Endpoint == "" {
		result.Endpoint = path
	}
	if result.Timestamp.IsZero() {
		result.Timestamp = time.Now()
	}
	result.CacheStatus = client.StatusUnknown
	result.Failed = true
	return result
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
