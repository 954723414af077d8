package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"
)

// HealthHandler handles health and service documentation requests
type HealthHandler struct {
	logger  *slog.Logger
	version string
	started time.Time
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(logger *slog.Logger, version string) *HealthHandler {
	return &HealthHandler{
		logger:  logger.With(slog.String("handler", "health")),
		version: version,
		started: time.Now(),
	}
}

// HealthCheck handles GET /api/health
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]interface{}{
		"status":    "healthy",
		"service":   "xmlsheet",
		"version":   h.version,
		"uptime":    time.Since(h.started).Round(time.Second).String(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// Index handles GET / with a short service description for clients
// poking at the root.
func (h *HealthHandler) Index(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]interface{}{
		"service": "XML to Excel Converter",
		"version": h.version,
		"endpoints": map[string]string{
			"POST /api/convert": "Convert an XML document to an XLSX workbook. Accepts JSON {\"xml_content\": ...}, a multipart file upload, a form field, or a raw XML body.",
			"GET /api/health":   "Service health check",
			"GET /metrics":      "Prometheus metrics",
		},
	})
}
