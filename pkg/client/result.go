package client

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
	"unicode/utf8"
)

// CacheStatus is the cache outcome of a single probe.
type CacheStatus string

const (
	StatusHit      CacheStatus = "HIT"
	StatusMiss     CacheStatus = "MISS"
	StatusBypassed CacheStatus = "BYPASSED"
	StatusPurged   CacheStatus = "PURGED"
	StatusUnknown  CacheStatus = "UNKNOWN"
)

// SystemEndpoint is the Endpoint of results produced by control actions such as purge.
const SystemEndpoint = "SYSTEM"

const previewLength = 50

// Result is one client-observed probe outcome. It is a value type and is
// never modified after Probe returns it.
type Result struct {
	Timestamp      time.Time
	Endpoint       string
	CacheStatus    CacheStatus
	ResponseTime   time.Duration
	PayloadPreview string

	// Dynamic marks probes of a deliberately non-cacheable endpoint.
	Dynamic bool

	// System marks control actions (purge) that must not affect counters.
	System bool

	// Failed marks probes whose request did not complete successfully.
	Failed bool
}

// ResponseTimeMs returns ResponseTime rounded to whole milliseconds.
func (r Result) ResponseTimeMs() int64 {
	return r.ResponseTime.Round(time.Millisecond).Milliseconds()
}

// Classify maps the edge cache's status header value to a CacheStatus.
// An absent header means BYPASSED on a dynamic endpoint and UNKNOWN
// anywhere else; it is never guessed as HIT or MISS.
func Classify(headerValue string, dynamic bool) CacheStatus {
	fields := strings.FieldsFunc(headerValue, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	if len(fields) == 0 {
		if dynamic {
			return StatusBypassed
		}
		return StatusUnknown
	}

	switch strings.ToUpper(fields[0]) {
	case "HIT":
		return StatusHit
	case "MISS":
		return StatusMiss
	case "PASS", "BYPASS", "BYPASSED":
		return StatusBypassed
	default:
		return StatusUnknown
	}
}

// Preview returns the first 50 characters of the compacted body followed by "...".
func Preview(body []byte) string {
	var buf bytes.Buffer
	text := string(body)
	if err := json.Compact(&buf, body); err == nil {
		text = buf.String()
	}

	if utf8.RuneCountInString(text) > previewLength {
		text = string([]rune(text)[:previewLength])
	}
	return text + "..."
}
