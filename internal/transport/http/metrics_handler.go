package http

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsHandler exposes the Prometheus registry
type MetricsHandler struct {
	handler http.Handler
}

// NewMetricsHandler creates a new metrics handler backed by the default
// Prometheus registry.
func NewMetricsHandler() *MetricsHandler {
	return &MetricsHandler{handler: promhttp.Handler()}
}

// Metrics handles GET /metrics
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	h.handler.ServeHTTP(w, r)
}
