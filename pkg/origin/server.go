// Package origin implements the origin service fronted by the edge cache.
//
// Every request is counted in the analytics Store before it is dispatched,
// then held by the latency simulator, then answered with the header
// contract of its EndpointPolicy.
package origin

import (
	"math/rand/v2"
	"net/http"
	"sync"
	"time"

	"github.com/Sternrassler/edge-cache-lab/pkg/analytics"
	"github.com/Sternrassler/edge-cache-lab/pkg/metrics"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

// Service identity reported by / and /health.
const (
	ServiceName    = "edge-cache-origin"
	ServiceVersion = "1.0.0"
)

// MethodPurge is the cache invalidation verb understood by the edge cache.
const MethodPurge = "PURGE"

// Config holds the origin server configuration.
type Config struct {
	// Store receives one Record call per inbound request (required).
	Store analytics.Store

	// SimulatedDelay is applied to /fast-data and /dynamic-data.
	SimulatedDelay time.Duration

	Logger zerolog.Logger
}

// Server is the origin HTTP service.
type Server struct {
	store     analytics.Store
	delay     time.Duration
	logger    zerolog.Logger
	startedAt time.Time
	random    *randomSource
	now       func() time.Time
}

// NewServer creates an origin server. Uptime is measured from this call.
func NewServer(cfg Config) *Server {
	if cfg.Store == nil {
		panic("analytics store cannot be nil")
	}
	return &Server{
		store:     cfg.Store,
		delay:     cfg.SimulatedDelay,
		logger:    cfg.Logger.With().Str("component", "origin").Logger(),
		startedAt: time.Now(),
		random:    &randomSource{},
		now:       time.Now,
	}
}

// Uptime returns how long the server has existed.
func (s *Server) Uptime() time.Duration {
	return s.now().Sub(s.startedAt)
}

// Handler returns the full middleware chain around the router:
// count -> request id -> access log -> recover -> routes.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(instrument)

	r.HandleFunc(FastDataPolicy.Path, s.handleFastData).Methods(http.MethodGet)
	r.HandleFunc(FastDataPolicy.Path, s.handlePurge).Methods(MethodPurge)
	r.HandleFunc(DynamicDataPolicy.Path, s.handleDynamicData).Methods(http.MethodGet)
	r.HandleFunc(AnalyticsPolicy.Path, s.handleAnalytics).Methods(http.MethodGet)
	r.HandleFunc(HealthPolicy.Path, s.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/", s.handleRoot).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "Not Found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})

	var handler http.Handler = r
	handler = s.recoverMiddleware(handler)
	handler = s.loggingMiddleware(handler)
	handler = requestIDMiddleware(handler)
	handler = s.countMiddleware(handler)
	return handler
}

// randomSource hands out values that never repeat back to back.
type randomSource struct {
	mu      sync.Mutex
	last    float64
	hasLast bool
}

func (r *randomSource) Next() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	v := rand.Float64()
	for r.hasLast && v == r.last {
		v = rand.Float64()
	}
	r.last, r.hasLast = v, true
	return v
}
