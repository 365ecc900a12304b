// Package testutil provides testing utilities for the edge cache dashboard.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"
)

// MockResponse defines the behavior for a mock edge response.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// MockEdge is a configurable stand-in for an edge cache in front of the
// origin. It never stores anything: each path answers from a scripted
// sequence of cache-status header values.
type MockEdge struct {
	server *httptest.Server
	header string

	mu        sync.RWMutex
	handlers  map[string]http.HandlerFunc
	sequences map[string][]string
	uptime    float64

	// Tracking
	requestCount int
	purgeCount   int
	queries      []string
}

// NewMockEdge creates a mock edge that reports cache outcomes in header
// (for example "X-Cache").
func NewMockEdge(header string) *MockEdge {
	m := &MockEdge{
		header:    header,
		handlers:  make(map[string]http.HandlerFunc),
		sequences: make(map[string][]string),
	}

	m.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.mu.Lock()
		m.requestCount++
		m.queries = append(m.queries, r.URL.RawQuery)
		if r.Method == "PURGE" {
			m.purgeCount++
		}
		handler, exists := m.handlers[r.URL.Path]
		m.mu.Unlock()

		if exists {
			handler(w, r)
			return
		}
		m.defaultHandler(w, r)
	}))

	return m
}

// URL returns the mock server URL.
func (m *MockEdge) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockEdge) Close() {
	m.server.Close()
}

// SetHandler sets a custom handler for a specific path.
func (m *MockEdge) SetHandler(path string, handler http.HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetResponse configures a fixed response for a path.
func (m *MockEdge) SetResponse(path string, resp MockResponse) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		if resp.Delay > 0 {
			time.Sleep(resp.Delay)
		}
		for key, value := range resp.Headers {
			w.Header().Set(key, value)
		}
		w.WriteHeader(resp.StatusCode)
		if resp.Body != "" {
			w.Write([]byte(resp.Body))
		}
	})
}

// SetCacheSequence scripts the cache-status values returned for path.
// Once exhausted the last value repeats. An empty string omits the header.
func (m *MockEdge) SetCacheSequence(path string, values ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sequences[path] = values
}

// SetUptime sets the uptime reported by /health.
func (m *MockEdge) SetUptime(seconds float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.uptime = seconds
}

// DropConnections makes every request to path fail at the transport level.
func (m *MockEdge) DropConnections(path string) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		hj, ok := w.(http.Hijacker)
		if !ok {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		conn, _, err := hj.Hijack()
		if err == nil {
			conn.Close()
		}
	})
}

// RequestCount returns the number of requests made to the server.
func (m *MockEdge) RequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.requestCount
}

// PurgeCount returns the number of PURGE requests received.
func (m *MockEdge) PurgeCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.purgeCount
}

// Queries returns the raw query strings seen so far, in arrival order.
func (m *MockEdge) Queries() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.queries...)
}

func (m *MockEdge) nextCacheValue(path string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	seq := m.sequences[path]
	if len(seq) == 0 {
		return ""
	}
	v := seq[0]
	if len(seq) > 1 {
		m.sequences[path] = seq[1:]
	}
	return v
}

// defaultHandler answers like an origin behind a cache.
func (m *MockEdge) defaultHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == "PURGE":
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, `{"status":"purged"}`)
		return
	case r.URL.Path == "/health":
		m.mu.RLock()
		uptime := m.uptime
		m.mu.RUnlock()
		json.NewEncoder(w).Encode(map[string]any{
			"status":    "healthy",
			"uptime":    uptime,
			"timestamp": time.Now().UnixMilli(),
		})
		return
	}

	if v := m.nextCacheValue(r.URL.Path); v != "" {
		w.Header().Set(m.header, v)
	}
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]any{
		"data":      "mock payload for " + r.URL.Path,
		"timestamp": time.Now().UnixMilli(),
	})
}

// NewServerErrorResponse creates a 500 Internal Server Error response.
func NewServerErrorResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       `{"error": "Internal Server Error"}`,
		Headers:    map[string]string{"Content-Type": "application/json"},
	}
}

// NewServiceUnavailableResponse creates a 503 response, as sent when the
// origin's simulated delay is interrupted.
func NewServiceUnavailableResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusServiceUnavailable,
		Body:       `{"error": "Service Unavailable"}`,
		Headers:    map[string]string{"Content-Type": "application/json"},
	}
}
