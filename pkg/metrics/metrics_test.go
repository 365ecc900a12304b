package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var testCounter = promauto.NewCounter(prometheus.CounterOpts{
	Name: "edge_metrics_test_total",
	Help: "Counter registered by the metrics package tests",
})

func TestGatherer(t *testing.T) {
	if Gatherer != prometheus.DefaultGatherer {
		t.Error("Gatherer should be the default Prometheus gatherer")
	}
}

func TestHandler(t *testing.T) {
	testCounter.Add(3)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	Handler().ServeHTTP(w, req)

	resp := w.Result()
	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}

	out := string(body)
	if !strings.Contains(out, "# HELP") || !strings.Contains(out, "# TYPE") {
		t.Error("Expected Prometheus format metrics output")
	}
	if !strings.Contains(out, "edge_metrics_test_total 3") {
		t.Errorf("Expected edge_metrics_test_total 3 in output")
	}
}
