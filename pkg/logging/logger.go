// Package logging provides structured logging configuration using zerolog.
package logging

import (
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogLevel represents the logging level.
type LogLevel string

const (
	// LevelDebug logs debug messages and above.
	LevelDebug LogLevel = "debug"

	// LevelInfo logs info messages and above.
	LevelInfo LogLevel = "info"

	// LevelWarn logs warning messages and above.
	LevelWarn LogLevel = "warn"

	// LevelError logs error messages only.
	LevelError LogLevel = "error"
)

// Config holds logger configuration.
type Config struct {
	// Level is the minimum level written. Unknown values mean info.
	Level LogLevel

	// Pretty switches from JSON lines to zerolog's console format.
	Pretty bool

	// Output receives the log stream. Nil means os.Stderr.
	Output io.Writer

	// Service, when set, is attached to every line as "service".
	Service string
}

// DefaultConfig returns JSON logging at info level on stderr.
func DefaultConfig() Config {
	return Config{
		Level:  LevelInfo,
		Output: os.Stderr,
	}
}

// ConfigFromEnv builds a Config for service from LOG_LEVEL and LOG_PRETTY.
func ConfigFromEnv(service string) Config {
	cfg := DefaultConfig()
	cfg.Service = service
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		cfg.Level = LogLevel(strings.ToLower(level))
	}
	if pretty, err := strconv.ParseBool(os.Getenv("LOG_PRETTY")); err == nil {
		cfg.Pretty = pretty
	}
	return cfg
}

// Setup builds the process logger from cfg, installs it as zerolog's
// global logger and sets the global level.
func Setup(cfg Config) zerolog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	if cfg.Pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05.000"}
	}

	zerolog.SetGlobalLevel(parseLevel(cfg.Level))

	ctx := zerolog.New(out).With().Timestamp()
	if cfg.Service != "" {
		ctx = ctx.Str("service", cfg.Service)
	}
	logger := ctx.Logger()
	log.Logger = logger
	return logger
}

// parseLevel maps a LogLevel onto zerolog, accepting "warning" for warn.
func parseLevel(level LogLevel) zerolog.Level {
	name := strings.ToLower(string(level))
	if name == "warning" {
		name = "warn"
	}
	switch lvl, err := zerolog.ParseLevel(name); {
	case err != nil, name == "":
		return zerolog.InfoLevel
	case lvl < zerolog.DebugLevel, lvl > zerolog.ErrorLevel:
		return zerolog.InfoLevel
	default:
		return lvl
	}
}

// NewLogger derives a component logger from the global logger.
func NewLogger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

// Log Level Guidelines:
//
// Debug: Detailed information for debugging
//   - Probe classification (cache status, header value)
//   - Per-request simulated delay
//   - Uptime resync samples and absorbed resync failures
//
// Info: Normal operation events
//   - Served origin requests (access log)
//   - Purge requests
//   - Stress burst start/finish
//   - Server startup/shutdown
//
// Warn: Warning conditions that don't prevent operation
//   - Configuration values replaced by defaults
//   - Failed probes (recorded as UNKNOWN)
//   - Analytics backend errors
//   - Interrupted simulated delays
//
// Error: Error conditions requiring attention
//   - Recovered handler panics
//   - Server failures
//
// Context Fields:
//   - component: emitting component (origin, analytics, probe, stress, uptime)
//   - endpoint: request path
//   - status_code: HTTP status code
//   - duration: request or probe duration
//   - cache_status: HIT, MISS, BYPASSED, PURGED, UNKNOWN
//   - error_class: probe error classification (network, client, server, decode)
//   - request_id: X-Request-ID of the origin request
