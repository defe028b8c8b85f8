package handler

import (
	"fmt"
	"net/http"

	"github.com/formapi/formapi/internal/metrics"
	"github.com/formapi/formapi/internal/store"
)

// MetricsHandler exposes in-memory metrics.
type MetricsHandler struct {
	snapshotter metrics.Snapshotter
	state       store.StateSource
}

// NewMetricsHandler creates a new MetricsHandler. state may be nil.
func NewMetricsHandler(snapshotter metrics.Snapshotter, state store.StateSource) *MetricsHandler {
	return &MetricsHandler{snapshotter: snapshotter, state: state}
}

// Metrics returns metrics in Prometheus exposition format.
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.snapshotter == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	snap := h.snapshotter.Snapshot()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	writeMetric(w, "formapi_forms_created_total %d\n", snap.FormsCreated)
	writeMetric(w, "formapi_forms_updated_total %d\n", snap.FormsUpdated)
	writeMetric(w, "formapi_forms_deleted_total %d\n", snap.FormsDeleted)
	writeMetric(w, "formapi_rate_limited_total %d\n", snap.RateLimited)

	for _, op := range snap.StoreOps {
		writeMetric(w, "formapi_store_duration_seconds_count{op=%q} %d\n", op.Op, op.Count)
		writeMetric(w, "formapi_store_duration_seconds_sum{op=%q} %.6f\n", op.Op, float64(op.TotalNs)/1e9)
	}
	for _, e := range snap.StoreErrors {
		writeMetric(w, "formapi_store_errors_total{kind=%q} %d\n", e.Kind, e.Count)
	}

	if h.state != nil {
		writeMetric(w, "formapi_store_ready_state %d\n", int(h.state.ReadyState()))
	}
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
