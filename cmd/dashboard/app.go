package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Sternrassler/edge-cache-lab/internal/config"
	"github.com/Sternrassler/edge-cache-lab/pkg/client"
	"github.com/Sternrassler/edge-cache-lab/pkg/dashboard"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

var errQuit = errors.New("quit")

// app wires one dashboard session to the probe client.
type app struct {
	client  *client.Client
	session *dashboard.Session
	driver  *dashboard.StressDriver
	syncer  *dashboard.UptimeSynchronizer
	burst   dashboard.BurstConfig
	out     io.Writer
	logger  zerolog.Logger
}

func newApp(cfg config.Dashboard, out io.Writer, logger zerolog.Logger) (*app, error) {
	c, err := client.New(client.Config{
		BaseURL:           cfg.EdgeURL,
		CacheStatusHeader: cfg.CacheStatusHeader,
		Timeout:           cfg.ProbeTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("create probe client: %w", err)
	}

	session := dashboard.NewSession()
	burst := dashboard.DefaultBurstConfig()
	burst.Size = cfg.BurstSize
	burst.Spacing = cfg.BurstSpacing

	return &app{
		client:  c,
		session: session,
		driver:  dashboard.NewStressDriver(c, session, logger),
		syncer: dashboard.NewUptimeSynchronizer(c, session, dashboard.SynchronizerConfig{
			TickInterval:   cfg.UptimeTick,
			ResyncInterval: cfg.UptimeResync,
		}, logger),
		burst:  burst,
		out:    out,
		logger: logger,
	}, nil
}

// execute performs one dashboard action against the session.
func (a *app) execute(ctx context.Context, action string) error {
	switch action {
	case "fast", "f":
		result, err := a.client.ProbeFastData(ctx)
		a.session.Apply(result)
		return err
	case "dynamic", "d":
		result, err := a.client.ProbeDynamicData(ctx)
		a.session.Apply(result)
		return err
	case "stress", "s":
		_, err := a.driver.RunBurst(ctx, a.burst)
		return err
	case "purge", "p":
		result, err := a.client.Purge(ctx, client.PathFastData)
		if err != nil {
			return err
		}
		a.session.Apply(result)
		return nil
	case "quit", "q":
		return errQuit
	case "":
		return nil
	default:
		return fmt.Errorf("unknown action %q (f=fast d=dynamic s=stress p=purge q=quit)", action)
	}
}

func (a *app) cmdOnce(ctx context.Context, action string) error {
	err := a.execute(ctx, action)
	render(a.out, a.session.Snapshot())
	return err
}

func (a *app) cmdStress(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("stress", flag.ContinueOnError)
	fs.SetOutput(a.out)
	fs.IntVar(&a.burst.Size, "n", a.burst.Size, "number of sequential probes")
	fs.DurationVar(&a.burst.Spacing, "spacing", a.burst.Spacing, "delay after each probe")
	fs.StringVar(&a.burst.Path, "path", a.burst.Path, "endpoint to probe")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if a.burst.Size <= 0 {
		return fmt.Errorf("-n must be positive (got %d)", a.burst.Size)
	}

	report, err := a.driver.RunBurst(ctx, a.burst)
	render(a.out, a.session.Snapshot())
	fmt.Fprintf(a.out, "Burst: %d probes, %d failed, %s\n",
		report.Attempted, report.Failed, report.Duration.Round(time.Millisecond))
	return err
}

func (a *app) cmdStatus(ctx context.Context) error {
	h, err := a.client.Health(ctx)
	if err != nil {
		return fmt.Errorf("health: %w", err)
	}
	fmt.Fprintf(a.out, "Origin %s: %s, up %s\n",
		h.Service, h.Status, dashboard.FormatUptime(int64(h.Uptime)))
	return nil
}

// cmdWatch keeps the uptime in sync, redraws on an interval and runs
// single-letter actions read from stdin until "q", EOF or ctx ends.
func (a *app) cmdWatch(ctx context.Context, args []string, stdin io.Reader) error {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	fs.SetOutput(a.out)
	refresh := fs.Duration("refresh", 5*time.Second, "redraw interval")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *refresh <= 0 {
		return fmt.Errorf("-refresh must be positive (got %s)", *refresh)
	}

	a.syncer.Start(ctx)
	defer a.syncer.Stop()

	g, gctx := errgroup.WithContext(ctx)

	// Scan blocks without a context, so the reader lives outside the group.
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(stdin)
		for scanner.Scan() {
			select {
			case lines <- strings.ToLower(strings.TrimSpace(scanner.Text())):
			case <-gctx.Done():
				return
			}
		}
	}()

	g.Go(func() error {
		ticker := time.NewTicker(*refresh)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				render(a.out, a.session.Snapshot())
			case <-gctx.Done():
				return nil
			}
		}
	})

	g.Go(func() error {
		for {
			select {
			case line, ok := <-lines:
				if !ok {
					return errQuit
				}
				err := a.execute(gctx, line)
				if errors.Is(err, errQuit) {
					return errQuit
				}
				if err != nil {
					fmt.Fprintf(a.out, "error: %v\n", err)
				}
				render(a.out, a.session.Snapshot())
			case <-gctx.Done():
				return nil
			}
		}
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errQuit) {
		return err
	}
	return nil
}
