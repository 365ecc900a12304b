package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/Sternrassler/edge-cache-lab/internal/config"
	"github.com/Sternrassler/edge-cache-lab/pkg/logging"
)

const usage = "Usage: edge-dashboard [watch|fast|dynamic|stress|purge|status] [flags]"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "edge-dashboard: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer) error {
	subcmd := "watch"
	if len(args) > 0 && args[0] != "" && args[0][0] != '-' {
		subcmd = args[0]
		args = args[1:]
	}

	logger := logging.Setup(logging.ConfigFromEnv("edge-dashboard"))
	cfg, warnings := config.LoadDashboard()
	for _, w := range warnings {
		logger.Warn().Str("key", w.Key).Str("value", w.Value).Str("fallback", w.Fallback).Msg(w.String())
	}

	a, err := newApp(cfg, stdout, logger)
	if err != nil {
		return err
	}

	switch subcmd {
	case "watch":
		return a.cmdWatch(ctx, args, stdin)
	case "fast", "dynamic", "purge":
		return a.cmdOnce(ctx, subcmd)
	case "stress":
		return a.cmdStress(ctx, args)
	case "status":
		return a.cmdStatus(ctx)
	default:
		return fmt.Errorf("unknown command: %s\n%s", subcmd, usage)
	}
}
