package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/Sternrassler/edge-cache-lab/pkg/dashboard"
)

func render(w io.Writer, snap dashboard.Snapshot) {
	s := snap.State

	fmt.Fprintln(w, strings.Repeat("-", 60))
	fmt.Fprintf(w, "Hits %d  Misses %d  Total %d  Hit rate %.1f%%  Uptime %s\n",
		s.CacheHits, s.CacheMisses, s.TotalRequests, snap.HitRate, dashboard.FormatUptime(s.UptimeSeconds))
	fmt.Fprintf(w, "Last hit %s  Last miss %s\n",
		latency(s.LastHitTimeMs, s.HasLastHit), latency(s.LastMissTimeMs, s.HasLastMiss))

	if len(snap.History) == 0 {
		fmt.Fprintln(w, "No requests yet")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tENDPOINT\tSTATUS\tLATENCY\tPREVIEW")
	for _, r := range snap.History {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%dms\t%s\n",
			r.Timestamp.Format("15:04:05"), r.Endpoint, r.CacheStatus, r.ResponseTimeMs(), r.PayloadPreview)
	}
	tw.Flush()
}

func latency(ms int64, ok bool) string {
	if !ok {
		return "-"
	}
	return fmt.Sprintf("%dms", ms)
}
