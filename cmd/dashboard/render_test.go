package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/Sternrassler/edge-cache-lab/pkg/client"
	"github.com/Sternrassler/edge-cache-lab/pkg/dashboard"
)

func TestRender_Empty(t *testing.T) {
	var buf bytes.Buffer
	render(&buf, dashboard.NewSession().Snapshot())

	out := buf.String()
	for _, want := range []string{"Hit rate 0.0%", "Uptime 00:00:00", "Last hit -", "No requests yet"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRender_WithHistory(t *testing.T) {
	session := dashboard.NewSession()
	session.Resync(61)
	session.Apply(client.Result{
		Timestamp:      time.Date(2026, 1, 2, 13, 4, 5, 0, time.Local),
		Endpoint:       client.PathFastData,
		CacheStatus:    client.StatusHit,
		ResponseTime:   12 * time.Millisecond,
		PayloadPreview: `{"data":"x"}...`,
	})

	var buf bytes.Buffer
	render(&buf, session.Snapshot())

	out := buf.String()
	for _, want := range []string{"Hit rate 100.0%", "Uptime 00:01:01", "Last hit 12ms", "13:04:05", "/fast-data", "HIT"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
