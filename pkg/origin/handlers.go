package origin

import (
	"errors"
	"fmt"
	"net/http"
)

type endpointMetadata struct {
	Endpoint  string `json:"endpoint"`
	Cacheable bool   `json:"cacheable"`
	TTL       int    `json:"ttl"`
}

type fastDataResponse struct {
	Data         string           `json:"data"`
	Timestamp    int64            `json:"timestamp"`
	ISOTimestamp string           `json:"isoTimestamp"`
	ResponseTime string           `json:"responseTime"`
	Message      string           `json:"message"`
	Metadata     endpointMetadata `json:"metadata"`
}

type dynamicDataResponse struct {
	Data         string  `json:"data"`
	Timestamp    int64   `json:"timestamp"`
	RandomValue  float64 `json:"randomValue"`
	ResponseTime string  `json:"responseTime"`
	Message      string  `json:"message"`
}

type analyticsResponse struct {
	TotalRequests      int64            `json:"totalRequests"`
	RequestsByEndpoint map[string]int64 `json:"requestsByEndpoint"`
	Uptime             float64          `json:"uptime"`
	Timestamp          int64            `json:"timestamp"`
}

type healthResponse struct {
	Status    string  `json:"status"`
	Service   string  `json:"service"`
	Timestamp int64   `json:"timestamp"`
	Uptime    float64 `json:"uptime"`
}

type rootResponse struct {
	Service        string            `json:"service"`
	Version        string            `json:"version"`
	Endpoints      map[string]string `json:"endpoints"`
	SimulatedDelay string            `json:"simulatedDelay"`
}

func (s *Server) handleFastData(w http.ResponseWriter, r *http.Request) {
	start := s.now()
	if !s.delayed(w, r) {
		return
	}

	now := s.now()
	diag := Diagnostics{ProcessingTime: now.Sub(start), RequestID: requestIDFrom(r.Context())}
	payload := fastDataResponse{
		Data:         "This is cached content from the edge",
		Timestamp:    now.UnixMilli(),
		ISOTimestamp: now.UTC().Format("2006-01-02T15:04:05.000Z"),
		ResponseTime: fmt.Sprintf("%dms", diag.ProcessingTime.Milliseconds()),
		Message:      "Backend processed this request (should be cached)",
		Metadata: endpointMetadata{
			Endpoint:  FastDataPolicy.Path,
			Cacheable: FastDataPolicy.Cacheable,
			TTL:       FastDataPolicy.TTLSeconds,
		},
	}

	writeEnvelope(w, NewEnvelope(FastDataPolicy, diag, payload, now))
}

func (s *Server) handleDynamicData(w http.ResponseWriter, r *http.Request) {
	start := s.now()
	if !s.delayed(w, r) {
		return
	}

	now := s.now()
	diag := Diagnostics{ProcessingTime: now.Sub(start), RequestID: requestIDFrom(r.Context())}
	payload := dynamicDataResponse{
		Data:         "This is always fresh, never cached",
		Timestamp:    now.UnixMilli(),
		RandomValue:  s.random.Next(),
		ResponseTime: fmt.Sprintf("%dms", diag.ProcessingTime.Milliseconds()),
		Message:      "This endpoint bypasses the cache",
	}

	writeEnvelope(w, NewEnvelope(DynamicDataPolicy, diag, payload, now))
}

// delayed runs the latency simulator and answers 503 if it was cut short.
func (s *Server) delayed(w http.ResponseWriter, r *http.Request) bool {
	err := SimulateLatency(r.Context(), s.delay)
	if err == nil {
		return true
	}
	if errors.Is(err, ErrDelayInterrupted) {
		originDelayInterrupted.Inc()
	}
	s.logger.Warn().Err(err).Str("endpoint", r.URL.Path).Msg("Simulated delay interrupted")
	writeError(w, http.StatusServiceUnavailable, "Service Unavailable")
	return false
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	start := s.now()
	state, err := s.store.Snapshot(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("Analytics snapshot failed")
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	now := s.now()
	diag := Diagnostics{ProcessingTime: now.Sub(start), RequestID: requestIDFrom(r.Context())}
	payload := analyticsResponse{
		TotalRequests:      state.TotalRequests,
		RequestsByEndpoint: state.ByEndpoint,
		Uptime:             s.Uptime().Seconds(),
		Timestamp:          now.UnixMilli(),
	}

	writeEnvelope(w, NewEnvelope(AnalyticsPolicy, diag, payload, now))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	now := s.now()
	diag := Diagnostics{RequestID: requestIDFrom(r.Context())}
	payload := healthResponse{
		Status:    "healthy",
		Service:   ServiceName,
		Timestamp: now.UnixMilli(),
		Uptime:    s.Uptime().Seconds(),
	}

	writeEnvelope(w, NewEnvelope(HealthPolicy, diag, payload, now))
}

// handlePurge acknowledges a purge. Eviction itself is done by the edge
// cache; a PURGE that reaches the origin only needs a success answer.
func (s *Server) handlePurge(w http.ResponseWriter, r *http.Request) {
	originPurgesTotal.Inc()
	s.logger.Info().Str("endpoint", r.URL.Path).Msg("Purge request received")

	w.Header().Set(HeaderCacheControl, noStoreDirectives)
	writeJSON(w, http.StatusOK, map[string]string{
		"status":   "purged",
		"endpoint": r.URL.Path,
	})
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, rootResponse{
		Service: ServiceName,
		Version: ServiceVersion,
		Endpoints: map[string]string{
			FastDataPolicy.Path:    fmt.Sprintf("Cacheable endpoint (%dms delay, ttl %ds)", s.delay.Milliseconds(), FastDataPolicy.TTLSeconds),
			DynamicDataPolicy.Path: fmt.Sprintf("Non-cacheable endpoint (%dms delay)", s.delay.Milliseconds()),
			AnalyticsPolicy.Path:   "Request analytics",
			HealthPolicy.Path:      "Health check",
		},
		SimulatedDelay: fmt.Sprintf("%dms", s.delay.Milliseconds()),
	})
}
