package handler

import (
	"fmt"
	"net/http"

	"github.com/contactdex/contactdex/internal/metrics"
)

// MetricsHandler exposes in-memory metrics.
type MetricsHandler struct {
	snapshotter metrics.Snapshotter
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(snapshotter metrics.Snapshotter) *MetricsHandler {
	return &MetricsHandler{snapshotter: snapshotter}
}

// Metrics returns metrics in Prometheus exposition format.
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.snapshotter == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	snap := h.snapshotter.Snapshot()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	writeMetric(w, "contactdex_user_cache_hits_total %d\n", snap.UserCacheHits)
	writeMetric(w, "contactdex_user_cache_misses_total %d\n", snap.UserCacheMisses)
	writeMetric(w, "contactdex_user_cache_invalidations_total{status=\"success\"} %d\n", snap.UserCacheInvalidations)
	writeMetric(w, "contactdex_user_cache_invalidations_total{status=\"failed\"} %d\n", snap.UserCacheInvalidationErrors)

	writeMetric(w, "contactdex_contacts_created_total %d\n", snap.ContactsCreated)
	writeMetric(w, "contactdex_contacts_updated_total %d\n", snap.ContactsUpdated)
	writeMetric(w, "contactdex_contacts_deleted_total %d\n", snap.ContactsDeleted)

	writeMetric(w, "contactdex_contact_list_duration_seconds_count %d\n", snap.ContactListCount)
	writeMetric(w, "contactdex_contact_list_duration_seconds_sum %.6f\n", float64(snap.ContactListTotalNs)/1e9)
	writeMetric(w, "contactdex_birthday_window_duration_seconds_count %d\n", snap.BirthdayWindowCount)
	writeMetric(w, "contactdex_birthday_window_duration_seconds_sum %.6f\n", float64(snap.BirthdayWindowTotalNs)/1e9)
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
