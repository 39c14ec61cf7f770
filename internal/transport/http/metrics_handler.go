package http

import (
	"net/http"

	"github.com/go-chi/render"

	apierrors "mtracecli/internal/errors"
)

// MetricsHandler serves the Prometheus scrape endpoint
type MetricsHandler struct {
	exporter http.Handler
}

// NewMetricsHandler wraps the exporter's scrape handler. A nil exporter
// means metrics export is disabled and the endpoint answers 503.
func NewMetricsHandler(exporter http.Handler) *MetricsHandler {
	return &MetricsHandler{exporter: exporter}
}

// ServeHTTP handles GET /metrics
func (h *MetricsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.exporter == nil {
		problem := apierrors.NewProblemDetails(
			http.StatusServiceUnavailable,
			apierrors.TypeInternal,
			"Metrics Disabled",
			"The metrics exporter is not enabled",
			r.URL.Path,
		)
		render.Render(w, r, problem)
		return
	}
	h.exporter.ServeHTTP(w, r)
}
