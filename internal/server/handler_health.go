package server

import (
	"net/http"
	"runtime"
	"time"
)

const version = "0.1.0"

// handleHealth reports server liveness and basic build info.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())

	respondOK(w, reqID, map[string]any{
		"status":     "healthy",
		"version":    version,
		"go_version": runtime.Version(),
		"uptime":     time.Since(s.startTime).String(),
		"exercises":  s.catalog.Len(),
	})
}
