// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Trip metrics
	IncTripCreated(estimated bool)
	IncTripDeleted()

	// Distance resolution metrics
	IncDistanceLookup(source string) // source: "maps", "cache", "fallback"
	ObserveDistanceDuration(duration time.Duration)
	IncMapsLoad(status string) // status: "success" or "failed"

	// Favorites and home address
	IncFavoriteCreated()
	IncFavoriteDeleted()
	IncHomeAddressChanged()

	// Reports
	IncExport(format string) // format: "csv" or "json"
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
