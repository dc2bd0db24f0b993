package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// Pinger is a connectivity check on one backing service.
type Pinger func(ctx context.Context) error

// HealthHandler serves the health-check endpoint.
type HealthHandler struct {
	checks map[string]Pinger
	logger *slog.Logger
}

// NewHealthHandler creates a HealthHandler. The checks map names backing
// services (postgres, redis, blob) to their connectivity probes; nil entries
// are skipped.
func NewHealthHandler(checks map[string]Pinger, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{checks: checks, logger: logger}
}

// HealthCheck reports the server status and the state of each backing
// service. The endpoint returns 200 as long as the server itself is up;
// degraded dependencies show up in the body.
// GET /api/health
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	services := make(map[string]string, len(h.checks))
	for name, ping := range h.checks {
		if ping == nil {
			continue
		}
		if err := ping(ctx); err != nil {
			services[name] = "down: " + err.Error()
			continue
		}
		services[name] = "ok"
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"services":  services,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
