package origin

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
)

// errorResponse is the uniform error body. It never carries internal detail.
type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set(HeaderContentType, "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set(HeaderCacheControl, noStoreDirectives)
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeEnvelope sends the envelope headers exactly as built by the contract.
func writeEnvelope(w http.ResponseWriter, env ResponseEnvelope) {
	h := w.Header()
	for key, values := range env.CacheHeaders {
		h[key] = values
	}
	writeJSON(w, http.StatusOK, env.Payload)
}
