package main

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Sternrassler/edge-cache-lab/internal/config"
	"github.com/Sternrassler/edge-cache-lab/pkg/analytics"
	"github.com/Sternrassler/edge-cache-lab/pkg/logging"
	"github.com/Sternrassler/edge-cache-lab/pkg/origin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logger := logging.Setup(logging.ConfigFromEnv(origin.ServiceName))

	cfg, warnings := config.LoadOrigin()
	for _, w := range warnings {
		logger.Warn().Str("key", w.Key).Str("value", w.Value).Str("fallback", w.Fallback).Msg(w.String())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("Origin server failed")
	}
}

func run(ctx context.Context, cfg config.Origin, logger zerolog.Logger) error {
	store, closeStore, err := newStore(ctx, cfg.RedisURL, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	srv := origin.NewServer(origin.Config{
		Store:          store,
		SimulatedDelay: cfg.SimulatedDelay,
		Logger:         logger,
	})

	ln, err := net.Listen("tcp", cfg.Addr())
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.Addr(), err)
	}

	logger.Info().
		Str("addr", ln.Addr().String()).
		Dur("simulated_delay", cfg.SimulatedDelay).
		Str("service", origin.ServiceName).
		Str("version", origin.ServiceVersion).
		Msg("Starting origin server")

	return serve(ctx, ln, newHTTPServer(srv.Handler(), cfg.SimulatedDelay), logger)
}

// newStore returns the analytics backend: Redis when redisURL is set,
// otherwise an in-process counter.
func newStore(ctx context.Context, redisURL string, logger zerolog.Logger) (analytics.Store, func(), error) {
	if redisURL == "" {
		logger.Info().Msg("Using in-memory analytics")
		return analytics.NewCounter(), func() {}, nil
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	redisClient := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		redisClient.Close()
		return nil, nil, fmt.Errorf("connect to redis at %s: %w", opts.Addr, err)
	}

	store := analytics.NewRedisStore(redisClient)
	logger.Info().Str("addr", opts.Addr).Str("instance", store.InstanceID()).Msg("Using Redis analytics")
	return store, func() { redisClient.Close() }, nil
}

// newHTTPServer sizes the write timeout around the simulated delay so a
// slow response is never cut off by the server itself.
func newHTTPServer(handler http.Handler, delay time.Duration) *http.Server {
	const writeSlack = 30 * time.Second

	// Zero disables the write timeout for delays too close to the limit.
	var writeTimeout time.Duration
	if delay <= math.MaxInt64-writeSlack {
		writeTimeout = delay + writeSlack
	}
	return &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       120 * time.Second,
	}
}

// serve runs srv on ln until ctx is cancelled, then shuts it down.
func serve(ctx context.Context, ln net.Listener, srv *http.Server, logger zerolog.Logger) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("Shutting down origin server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
