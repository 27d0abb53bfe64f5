package api

import (
	"context"
	"net/http"

	"github.com/okian/fairway/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Pinger is a dependency the health check probes.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles health check requests.
type HealthHandler struct {
	checks map[string]Pinger
}

// NewHealthHandler creates a health handler probing checks by name.
func NewHealthHandler(checks ...NamedCheck) *HealthHandler {
	h := &HealthHandler{checks: make(map[string]Pinger, len(checks))}
	for _, c := range checks {
		h.checks[c.Name] = c.Pinger
	}
	return h
}

// NamedCheck labels a Pinger in the health response.
type NamedCheck struct {
	Name   string
	Pinger Pinger
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// HandleHealth handles GET /healthz.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok"}
	status := http.StatusOK
	if len(h.checks) > 0 {
		resp.Checks = make(map[string]string, len(h.checks))
	}
	for name, p := range h.checks {
		if err := p.Ping(r.Context()); err != nil {
			resp.Checks[name] = err.Error()
			resp.Status = "degraded"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[name] = "ok"
	}
	writeJSON(w, status, resp)
}

// MetricsHandler serves the engine's Prometheus registry.
func MetricsHandler() http.Handler {
	return promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{})
}
