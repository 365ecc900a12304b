package origin

import (
	"net/http"
	"strconv"
	"time"
)

// Header names written by the origin.
const (
	HeaderCacheControl        = "Cache-Control"
	HeaderPragma              = "Pragma"
	HeaderExpires             = "Expires"
	HeaderContentType         = "Content-Type"
	HeaderRequestID           = "X-Request-ID"
	HeaderBackendResponseTime = "X-Backend-Response-Time"
)

const noStoreDirectives = "no-cache, no-store, must-revalidate"

// EndpointPolicy is the static caching contract of one route.
// TTLSeconds is ignored when Cacheable is false.
type EndpointPolicy struct {
	Path       string
	Cacheable  bool
	TTLSeconds int
}

// Diagnostics are the per-request values allowed into the header set.
type Diagnostics struct {
	ProcessingTime time.Duration
	RequestID      string
}

// ResponseEnvelope is what an origin handler produces before it is written.
type ResponseEnvelope struct {
	Payload                any
	ServerProcessingTimeMs int64
	GeneratedAtEpochMs     int64
	CacheHeaders           http.Header
}

// Policies of the built-in endpoints.
var (
	FastDataPolicy    = EndpointPolicy{Path: "/fast-data", Cacheable: true, TTLSeconds: 60}
	DynamicDataPolicy = EndpointPolicy{Path: "/dynamic-data"}
	AnalyticsPolicy   = EndpointPolicy{Path: "/analytics"}
	HealthPolicy      = EndpointPolicy{Path: "/health"}
)

// BuildHeaders returns the header set for policy. The result depends only
// on the policy and diag, never on the payload, so an edge cache can decide
// on storage before reading the body.
func BuildHeaders(policy EndpointPolicy, diag Diagnostics) http.Header {
	h := make(http.Header)

	if policy.Cacheable {
		ttl := strconv.Itoa(max(policy.TTLSeconds, 0))
		h.Set(HeaderCacheControl, "public, max-age="+ttl+", s-maxage="+ttl)
	} else {
		h.Set(HeaderCacheControl, noStoreDirectives)
		h.Set(HeaderPragma, "no-cache")
		h.Set(HeaderExpires, "0")
	}

	h.Set(HeaderContentType, "application/json")
	h.Set(HeaderBackendResponseTime, strconv.FormatInt(diag.ProcessingTime.Milliseconds(), 10)+"ms")
	if diag.RequestID != "" {
		h.Set(HeaderRequestID, diag.RequestID)
	}
	return h
}

// NewEnvelope assembles an envelope for payload generated at now.
func NewEnvelope(policy EndpointPolicy, diag Diagnostics, payload any, now time.Time) ResponseEnvelope {
	return ResponseEnvelope{
		Payload:                payload,
		ServerProcessingTimeMs: diag.ProcessingTime.Milliseconds(),
		GeneratedAtEpochMs:     now.UnixMilli(),
		CacheHeaders:           BuildHeaders(policy, diag),
	}
}
