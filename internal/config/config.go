// Package config loads origin and dashboard settings from the environment.
//
// Invalid values never abort startup: they are replaced by the default and
// reported as a Warning so the caller can log them once a logger exists.
package config

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"time"
)

// Origin defaults.
const (
	DefaultPort           = 3000
	DefaultSimulatedDelay = 5000 * time.Millisecond
)

// Dashboard defaults.
const (
	DefaultEdgeURL           = "http://localhost:8081"
	DefaultCacheStatusHeader = "X-Cache"
	DefaultProbeTimeout      = 30 * time.Second
	DefaultBurstSize         = 10
	DefaultBurstSpacing      = 100 * time.Millisecond
	DefaultUptimeTick        = time.Second
	DefaultUptimeResync      = 10 * time.Second
)

// Warning describes an environment value that was rejected in favour of its default.
type Warning struct {
	Key      string
	Value    string
	Fallback string
	Reason   string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s=%q %s, using %s", w.Key, w.Value, w.Reason, w.Fallback)
}

// Origin holds the origin service configuration.
type Origin struct {
	Port           int
	SimulatedDelay time.Duration
	RedisURL       string
}

// Addr returns the listen address for Port.
func (o Origin) Addr() string {
	return ":" + strconv.Itoa(o.Port)
}

// Dashboard holds the probe client configuration.
type Dashboard struct {
	EdgeURL           string
	CacheStatusHeader string
	ProbeTimeout      time.Duration
	BurstSize         int
	BurstSpacing      time.Duration
	UptimeTick        time.Duration
	UptimeResync      time.Duration
}

// LoadOrigin reads PORT, SIMULATED_DELAY (milliseconds) and REDIS_URL.
func LoadOrigin() (Origin, []Warning) {
	var l loader
	cfg := Origin{
		Port:           l.port("PORT", DefaultPort),
		SimulatedDelay: l.millis("SIMULATED_DELAY", DefaultSimulatedDelay),
		RedisURL:       os.Getenv("REDIS_URL"),
	}
	return cfg, l.warnings
}

// LoadDashboard reads the dashboard settings.
func LoadDashboard() (Dashboard, []Warning) {
	var l loader
	cfg := Dashboard{
		EdgeURL:           getEnv("EDGE_URL", DefaultEdgeURL),
		CacheStatusHeader: getEnv("CACHE_STATUS_HEADER", DefaultCacheStatusHeader),
		ProbeTimeout:      l.duration("PROBE_TIMEOUT", DefaultProbeTimeout),
		BurstSize:         l.positiveInt("BURST_SIZE", DefaultBurstSize),
		BurstSpacing:      l.duration("BURST_SPACING", DefaultBurstSpacing),
		UptimeTick:        l.duration("UPTIME_TICK", DefaultUptimeTick),
		UptimeResync:      l.duration("UPTIME_RESYNC", DefaultUptimeResync),
	}
	return cfg, l.warnings
}

type loader struct {
	warnings []Warning
}

func (l *loader) warn(key, value, fallback, reason string) {
	l.warnings = append(l.warnings, Warning{Key: key, Value: value, Fallback: fallback, Reason: reason})
}

func (l *loader) port(key string, def int) int {
	value := os.Getenv(key)
	if value == "" {
		return def
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		l.warn(key, value, strconv.Itoa(def), "is not a number")
		return def
	}
	if n <= 0 || n > 65535 {
		l.warn(key, value, strconv.Itoa(def), "is out of range")
		return def
	}
	return n
}

func (l *loader) positiveInt(key string, def int) int {
	value := os.Getenv(key)
	if value == "" {
		return def
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		l.warn(key, value, strconv.Itoa(def), "is not a positive integer")
		return def
	}
	return n
}

// millis parses a non-negative integer number of milliseconds.
func (l *loader) millis(key string, def time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return def
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		l.warn(key, value, def.String(), "is not a number")
		return def
	}
	if n < 0 {
		l.warn(key, value, def.String(), "is negative")
		return def
	}
	if int64(n) > math.MaxInt64/int64(time.Millisecond) {
		l.warn(key, value, def.String(), "is out of range")
		return def
	}
	return time.Duration(n) * time.Millisecond
}

func (l *loader) duration(key string, def time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return def
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		l.warn(key, value, def.String(), "is not a positive duration")
		return def
	}
	return d
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
