package handler

import (
	"fmt"
	"net/http"

	"github.com/kmtracker/kmtracker/internal/metrics"
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

	writeMetric(w, "kmtracker_trips_created_total{estimated=\"false\"} %d\n", snap.TripsCreated-snap.TripsCreatedEstimated)
	writeMetric(w, "kmtracker_trips_created_total{estimated=\"true\"} %d\n", snap.TripsCreatedEstimated)
	writeMetric(w, "kmtracker_trips_deleted_total %d\n", snap.TripsDeleted)

	writeMetric(w, "kmtracker_distance_lookups_total{source=\"maps\"} %d\n", snap.DistanceLookupsMaps)
	writeMetric(w, "kmtracker_distance_lookups_total{source=\"cache\"} %d\n", snap.DistanceLookupsCache)
	writeMetric(w, "kmtracker_distance_lookups_total{source=\"fallback\"} %d\n", snap.DistanceLookupsFallback)
	writeMetric(w, "kmtracker_distance_duration_seconds_count %d\n", snap.DistanceDurationCount)
	writeMetric(w, "kmtracker_distance_duration_seconds_sum %.6f\n", float64(snap.DistanceDurationTotalNs)/1e9)

	writeMetric(w, "kmtracker_maps_loads_total{status=\"success\"} %d\n", snap.MapsLoadSuccess)
	writeMetric(w, "kmtracker_maps_loads_total{status=\"failed\"} %d\n", snap.MapsLoadFailed)

	writeMetric(w, "kmtracker_favorites_created_total %d\n", snap.FavoritesCreated)
	writeMetric(w, "kmtracker_favorites_deleted_total %d\n", snap.FavoritesDeleted)
	writeMetric(w, "kmtracker_home_address_changes_total %d\n", snap.HomeAddressChanges)

	writeMetric(w, "kmtracker_exports_total{format=\"csv\"} %d\n", snap.ExportsCSV)
	writeMetric(w, "kmtracker_exports_total{format=\"json\"} %d\n", snap.ExportsJSON)
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
