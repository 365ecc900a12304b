// Package client probes the origin through the edge cache and classifies
// each response as HIT, MISS, BYPASSED, PURGED or UNKNOWN.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for probe operations.
var (
	probeResultsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "edge_probe_results_total",
		Help: "Total probes by endpoint and cache status",
	}, []string{"endpoint", "cache_status"})

	probeDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "edge_probe_duration_seconds",
		Help:    "Probe duration in seconds by cache status",
		Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10},
	}, []string{"cache_status"})

	probeErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "edge_probe_errors_total",
		Help: "Total failed probes by error class",
	}, []string{"class"})
)

// Well-known origin paths.
const (
	PathFastData    = "/fast-data"
	PathDynamicData = "/dynamic-data"
	PathHealth      = "/health"
)

// UniqueParam is the query parameter added to dynamic probes so that no
// intermediary can coalesce two of them into one request.
const UniqueParam = "t"

// Client issues probes against the edge cache.
type Client struct {
	httpClient        *http.Client
	baseURL           *url.URL
	cacheStatusHeader string
	logger            zerolog.Logger
	now               func() time.Time
}

// Config holds the client configuration.
type Config struct {
	// BaseURL of the edge cache fronting the origin (e.g. "http://localhost:8081").
	BaseURL string

	// CacheStatusHeader is the response header carrying the cache outcome.
	CacheStatusHeader string

	// Timeout bounds each probe, including reading the body.
	Timeout time.Duration

	// HTTPClient overrides the default client (optional).
	HTTPClient *http.Client
}

// DefaultConfig returns a configuration for the given edge URL.
func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL:           baseURL,
		CacheStatusHeader: "X-Cache",
		Timeout:           30 * time.Second,
	}
}

// Options tune a single probe.
type Options struct {
	// Dynamic marks the endpoint as deliberately non-cacheable: a
	// uniquifying query parameter is added and an absent cache header is
	// classified BYPASSED instead of UNKNOWN.
	Dynamic bool
}

// Health is the decoded /health body.
type Health struct {
	Status    string  `json:"status"`
	Service   string  `json:"service"`
	Timestamp int64   `json:"timestamp"`
	Uptime    float64 `json:"uptime"`
}

// New creates a new probe client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base url is required")
	}
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("base url must be http or https (got %q)", cfg.BaseURL)
	}
	if cfg.CacheStatusHeader == "" {
		return nil, fmt.Errorf("cache status header is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &Client{
		httpClient:        httpClient,
		baseURL:           base,
		cacheStatusHeader: cfg.CacheStatusHeader,
		logger:            log.With().Str("component", "probe").Logger(),
		now:               time.Now,
	}, nil
}

// Probe issues a GET for path and classifies the response. The elapsed
// time covers issuing the request through reading the full body.
//
// A failed probe still returns a Result (UNKNOWN, Failed) together with
// an *Error, so callers can record it without special casing.
func (c *Client) Probe(ctx context.Context, path string, opts Options) (Result, error) {
	start := c.now()
	result := Result{
		Timestamp:   start,
		Endpoint:    path,
		CacheStatus: StatusUnknown,
		Dynamic:     opts.Dynamic,
	}

	target := c.resolve(path)
	if opts.Dynamic {
		q := target.Query()
		q.Set(UniqueParam, uuid.NewString())
		target.RawQuery = q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return c.fail(result, &Error{Endpoint: path, Class: ErrorClassClient, Err: fmt.Errorf("create request: %w", err)})
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		result.ResponseTime = c.now().Sub(start)
		return c.fail(result, &Error{Endpoint: path, Class: ErrorClassNetwork, Err: err})
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	result.ResponseTime = c.now().Sub(start)
	if err != nil {
		return c.fail(result, &Error{Endpoint: path, Class: ErrorClassNetwork, Err: fmt.Errorf("read body: %w", err)})
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.fail(result, &Error{
			Endpoint:   path,
			StatusCode: resp.StatusCode,
			Class:      classifyStatus(resp.StatusCode),
			Err:        ErrUnexpectedStatus,
		})
	}

	headerValue := resp.Header.Get(c.cacheStatusHeader)
	result.CacheStatus = Classify(headerValue, opts.Dynamic)
	result.PayloadPreview = Preview(body)

	probeResultsTotal.WithLabelValues(path, string(result.CacheStatus)).Inc()
	probeDuration.WithLabelValues(string(result.CacheStatus)).Observe(result.ResponseTime.Seconds())

	c.logger.Debug().
		Str("endpoint", path).
		Str("cache_status", string(result.CacheStatus)).
		Str("header", headerValue).
		Dur("duration", result.ResponseTime).
		Msg("Probe classified")

	return result, nil
}

// ProbeFastData probes the cacheable endpoint.
func (c *Client) ProbeFastData(ctx context.Context) (Result, error) {
	return c.Probe(ctx, PathFastData, Options{})
}

// ProbeDynamicData probes the non-cacheable endpoint.
func (c *Client) ProbeDynamicData(ctx context.Context) (Result, error) {
	return c.Probe(ctx, PathDynamicData, Options{Dynamic: true})
}

// Purge asks the edge cache to evict path. The returned Result is a
// system entry with status PURGED.
func (c *Client) Purge(ctx context.Context, path string) (Result, error) {
	req, err := http.NewRequestWithContext(ctx, "PURGE", c.resolve(path).String(), nil)
	if err != nil {
		return Result{}, fmt.Errorf("create purge request: %w", err)
	}

	start := c.now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		probeErrorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		return Result{}, &Error{Endpoint: path, Class: ErrorClassNetwork, Err: err}
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		class := classifyStatus(resp.StatusCode)
		probeErrorsTotal.WithLabelValues(string(class)).Inc()
		return Result{}, &Error{Endpoint: path, StatusCode: resp.StatusCode, Class: class, Err: ErrUnexpectedStatus}
	}

	c.logger.Info().Str("endpoint", path).Msg("Cache purged")
	return Result{
		Timestamp:      start,
		Endpoint:       SystemEndpoint,
		CacheStatus:    StatusPurged,
		PayloadPreview: "Cache cleared successfully",
		System:         true,
	}, nil
}

// Health fetches the origin's authoritative health and uptime.
func (c *Client) Health(ctx context.Context) (Health, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.resolve(PathHealth).String(), nil)
	if err != nil {
		return Health{}, fmt.Errorf("create health request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Health{}, &Error{Endpoint: PathHealth, Class: ErrorClassNetwork, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Health{}, &Error{
			Endpoint:   PathHealth,
			StatusCode: resp.StatusCode,
			Class:      classifyStatus(resp.StatusCode),
			Err:        ErrUnexpectedStatus,
		}
	}

	var health Health
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return Health{}, &Error{Endpoint: PathHealth, Class: ErrorClassDecode, Err: err}
	}
	return health, nil
}

// Uptime returns the origin uptime in seconds.
func (c *Client) Uptime(ctx context.Context) (float64, error) {
	health, err := c.Health(ctx)
	if err != nil {
		return 0, err
	}
	return health.Uptime, nil
}

func (c *Client) resolve(path string) *url.URL {
	ref, err := url.Parse(path)
	if err != nil {
		ref = &url.URL{Path: path}
	}
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + ref.Path
	u.RawQuery = ref.RawQuery
	return &u
}

func (c *Client) fail(result Result, perr *Error) (Result, error) {
	result.Failed = true
	result.CacheStatus = StatusUnknown
	result.PayloadPreview = perr.Error()

	probeErrorsTotal.WithLabelValues(string(perr.Class)).Inc()
	probeResultsTotal.WithLabelValues(perr.Endpoint, string(StatusUnknown)).Inc()

	c.logger.Warn().
		Err(perr.Err).
		Str("endpoint", perr.Endpoint).
		Int("status_code", perr.StatusCode).
		Str("error_class", string(perr.Class)).
		Msg("Probe failed")

	return result, perr
}
