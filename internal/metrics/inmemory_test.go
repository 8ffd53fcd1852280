package metrics

import (
	"testing"
	"time"
)

func TestInMemoryRecorder_Snapshot(t *testing.T) {
	t.Parallel()

	m := NewInMemory()
	m.IncTripCreated(false)
	m.IncTripCreated(true)
	m.IncTripDeleted()
	m.IncDistanceLookup("maps")
	m.IncDistanceLookup("cache")
	m.IncDistanceLookup("cache")
	m.IncDistanceLookup("fallback")
	m.IncDistanceLookup("bogus")
	m.ObserveDistanceDuration(1500 * time.Millisecond)
	m.IncMapsLoad("success")
	m.IncMapsLoad("failed")
	m.IncExport("csv")
	m.IncExport("json")
	m.IncExport("xml")

	s := m.Snapshot()
	if s.TripsCreated != 2 || s.TripsCreatedEstimated != 1 || s.TripsDeleted != 1 {
		t.Errorf("trip counters = %+v", s)
	}
	if s.DistanceLookupsMaps != 1 || s.DistanceLookupsCache != 2 || s.DistanceLookupsFallback != 1 {
		t.Errorf("lookup counters = %+v", s)
	}
	if s.DistanceDurationCount != 1 || s.DistanceDurationTotalNs != int64(1500*time.Millisecond) {
		t.Errorf("duration = %d/%d", s.DistanceDurationCount, s.DistanceDurationTotalNs)
	}
	if s.MapsLoadSuccess != 1 || s.MapsLoadFailed != 1 {
		t.Errorf("maps load = %d/%d", s.MapsLoadSuccess, s.MapsLoadFailed)
	}
	if s.ExportsCSV != 1 || s.ExportsJSON != 1 {
		t.Errorf("exports = %d/%d", s.ExportsCSV, s.ExportsJSON)
	}
}

func TestNoopRecorder(t *testing.T) {
	t.Parallel()

	r := NewNoop()
	r.IncTripCreated(true)
	r.IncDistanceLookup("maps")
	r.IncMapsLoad("failed")
}
