package metrics

import (
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	TripsCreated          uint64
	TripsCreatedEstimated uint64
	TripsDeleted          uint64

	DistanceLookupsMaps     uint64
	DistanceLookupsCache    uint64
	DistanceLookupsFallback uint64
	DistanceDurationCount   uint64
	DistanceDurationTotalNs int64

	MapsLoadSuccess uint64
	MapsLoadFailed  uint64

	FavoritesCreated   uint64
	FavoritesDeleted   uint64
	HomeAddressChanges uint64
	ExportsCSV         uint64
	ExportsJSON        uint64
}

// InMemoryRecorder stores metrics in memory. It backs the /metrics endpoint
// and is handy in tests.
type InMemoryRecorder struct {
	tripsCreated          atomic.Uint64
	tripsCreatedEstimated atomic.Uint64
	tripsDeleted          atomic.Uint64

	lookupsMaps     atomic.Uint64
	lookupsCache    atomic.Uint64
	lookupsFallback atomic.Uint64
	durationCount   atomic.Uint64
	durationTotalNs atomic.Int64

	mapsLoadSuccess atomic.Uint64
	mapsLoadFailed  atomic.Uint64

	favoritesCreated   atomic.Uint64
	favoritesDeleted   atomic.Uint64
	homeAddressChanges atomic.Uint64
	exportsCSV         atomic.Uint64
	exportsJSON        atomic.Uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		TripsCreated:            m.tripsCreated.Load(),
		TripsCreatedEstimated:   m.tripsCreatedEstimated.Load(),
		TripsDeleted:            m.tripsDeleted.Load(),
		DistanceLookupsMaps:     m.lookupsMaps.Load(),
		DistanceLookupsCache:    m.lookupsCache.Load(),
		DistanceLookupsFallback: m.lookupsFallback.Load(),
		DistanceDurationCount:   m.durationCount.Load(),
		DistanceDurationTotalNs: m.durationTotalNs.Load(),
		MapsLoadSuccess:         m.mapsLoadSuccess.Load(),
		MapsLoadFailed:          m.mapsLoadFailed.Load(),
		FavoritesCreated:        m.favoritesCreated.Load(),
		FavoritesDeleted:        m.favoritesDeleted.Load(),
		HomeAddressChanges:      m.homeAddressChanges.Load(),
		ExportsCSV:              m.exportsCSV.Load(),
		ExportsJSON:             m.exportsJSON.Load(),
	}
}

// IncTripCreated counts a saved trip, separately tracking estimated distances.
func (m *InMemoryRecorder) IncTripCreated(estimated bool) {
	m.tripsCreated.Add(1)
	if estimated {
		m.tripsCreatedEstimated.Add(1)
	}
}

func (m *InMemoryRecorder) IncTripDeleted() {
	m.tripsDeleted.Add(1)
}

// IncDistanceLookup counts a resolved distance by where it came from.
// Unknown sources are ignored.
func (m *InMemoryRecorder) IncDistanceLookup(source string) {
	switch source {
	case "maps":
		m.lookupsMaps.Add(1)
	case "cache":
		m.lookupsCache.Add(1)
	case "fallback":
		m.lookupsFallback.Add(1)
	}
}

func (m *InMemoryRecorder) ObserveDistanceDuration(duration time.Duration) {
	m.durationCount.Add(1)
	m.durationTotalNs.Add(duration.Nanoseconds())
}

func (m *InMemoryRecorder) IncMapsLoad(status string) {
	if status == "success" {
		m.mapsLoadSuccess.Add(1)
		return
	}
	m.mapsLoadFailed.Add(1)
}

func (m *InMemoryRecorder) IncFavoriteCreated() {
	m.favoritesCreated.Add(1)
}

func (m *InMemoryRecorder) IncFavoriteDeleted() {
	m.favoritesDeleted.Add(1)
}

func (m *InMemoryRecorder) IncHomeAddressChanged() {
	m.homeAddressChanges.Add(1)
}

func (m *InMemoryRecorder) IncExport(format string) {
	switch format {
	case "csv":
		m.exportsCSV.Add(1)
	case "json":
		m.exportsJSON.Add(1)
	}
}
