package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/kmtracker/kmtracker/internal/distance"
	"github.com/kmtracker/kmtracker/internal/export"
	"github.com/kmtracker/kmtracker/internal/metrics"
	"github.com/kmtracker/kmtracker/internal/model"
)

func newTripService(store *memStore, res distance.Result) (*TripService, *metrics.InMemoryRecorder) {
	rec := metrics.NewInMemory()
	svc := NewTripService(store, stubResolver{result: res}, rec, nil)
	svc.now = fixedNow(time.Date(2024, 2, 20, 15, 4, 5, 0, time.UTC))
	return svc, rec
}

func TestCreateTrip_SavesResolvedDistance(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	svc, rec := newTripService(store, distance.Result{Km: 12.3, Duration: "18 mins", Source: distance.SourceMaps})

	out, err := svc.CreateTrip(context.Background(), CreateTripInput{
		OwnerID:      "u1",
		Date:         "2024-02-14",
		StartAddress: "  1 Main St ",
		EndAddress:   "2 High St",
		Purpose:      "Site visit",
		Notes:        "Line one\nLine two",
	})
	if err != nil {
		t.Fatalf("CreateTrip: %v", err)
	}

	trip := out.Trip
	if trip.ID == "" || trip.OwnerID != "u1" {
		t.Errorf("trip identity = %q/%q", trip.ID, trip.OwnerID)
	}
	if trip.DateString() != "2024-02-14" || trip.StartAddress != "1 Main St" {
		t.Errorf("trip = %+v", trip)
	}
	if trip.Km != 12.3 || trip.Duration != "18 mins" || trip.Estimated {
		t.Errorf("distance fields = %+v", trip)
	}
	if out.Warning != "" {
		t.Errorf("Warning = %q", out.Warning)
	}
	if _, ok := store.trips[trip.ID]; !ok {
		t.Error("trip not persisted")
	}
	if s := rec.Snapshot(); s.TripsCreated != 1 || s.TripsCreatedEstimated != 0 {
		t.Errorf("metrics = %+v", s)
	}
}

func TestCreateTrip_EstimatedCarriesWarning(t *testing.T) {
	t.Parallel()

	svc, rec := newTripService(newMemStore(), distance.Result{
		Km: 22.5, Duration: "45 mins", Estimated: true, Warning: distance.WarningNoAPI,
	})

	out, err := svc.CreateTrip(context.Background(), CreateTripInput{OwnerID: "u1", StartAddress: "A", EndAddress: "B"})
	if err != nil {
		t.Fatalf("CreateTrip: %v", err)
	}
	if !out.Trip.Estimated || out.Warning != distance.WarningNoAPI {
		t.Errorf("out = %+v", out)
	}
	// Empty date defaults to today.
	if out.Trip.DateString() != "2024-02-20" {
		t.Errorf("date = %s", out.Trip.DateString())
	}
	if rec.Snapshot().TripsCreatedEstimated != 1 {
		t.Error("estimated trip not counted")
	}
}

func TestCreateTrip_Validation(t *testing.T) {
	t.Parallel()

	svc, _ := newTripService(newMemStore(), distance.Result{Km: 1})

	tests := []struct {
		name  string
		input CreateTripInput
	}{
		{"missing start", CreateTripInput{StartAddress: " ", EndAddress: "B"}},
		{"missing end", CreateTripInput{StartAddress: "A"}},
		{"bad date", CreateTripInput{Date: "14/02/2024", StartAddress: "A", EndAddress: "B"}},
		{"long purpose", CreateTripInput{StartAddress: "A", EndAddress: "B", Purpose: strings.Repeat("p", MaxPurposeLength+1)}},
		{"control chars", CreateTripInput{StartAddress: "A\x00", EndAddress: "B"}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := svc.CreateTrip(context.Background(), tt.input)
			if !errors.Is(err, ErrInvalidInput) {
				t.Errorf("err = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestCreateTrip_BackendFailure(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	store.fail = true
	svc, rec := newTripService(store, distance.Result{Km: 3})

	_, err := svc.CreateTrip(context.Background(), CreateTripInput{OwnerID: "u1", StartAddress: "A", EndAddress: "B"})
	if !errors.Is(err, ErrBackendOperation) {
		t.Fatalf("err = %v, want ErrBackendOperation", err)
	}
	if rec.Snapshot().TripsCreated != 0 {
		t.Error("failed save must not be counted")
	}
}

func TestCreateTrip_ZeroDistanceRejected(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	svc, rec := newTripService(store, distance.Result{Km: 0, Duration: "1 min", Source: distance.SourceMaps})

	_, err := svc.CreateTrip(context.Background(), CreateTripInput{OwnerID: "u1", StartAddress: "1 Main St", EndAddress: "1 Main St"})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
	if !strings.Contains(err.Error(), "same place") {
		t.Errorf("err = %v", err)
	}
	if len(store.trips) != 0 || rec.Snapshot().TripsCreated != 0 {
		t.Error("zero distance trip must not be saved")
	}
}

func TestCreateTrip_DefaultDateInThisMonthAcrossZones(t *testing.T) {
	t.Parallel()

	// 08:00 on 1 November in Brisbane is still 31 October in UTC.
	brisbane := time.FixedZone("AEST", 10*60*60)
	store := newMemStore()
	svc, _ := newTripService(store, distance.Result{Km: 4.2, Duration: "9 mins"})
	svc.now = fixedNow(time.Date(2024, 11, 1, 8, 0, 0, 0, brisbane))

	out, err := svc.CreateTrip(context.Background(), CreateTripInput{OwnerID: "u1", StartAddress: "A", EndAddress: "B"})
	if err != nil {
		t.Fatalf("CreateTrip: %v", err)
	}

	sum, err := svc.Report(context.Background(), ReportInput{OwnerID: "u1", Period: "this-month"})
	if err != nil {
		t.Fatalf("Report: %v", err)
	}
	if sum.Count != 1 || sum.Trips[0].ID != out.Trip.ID {
		t.Errorf("this-month count = %d for trip dated %s", sum.Count, out.Trip.DateString())
	}
}

func TestDeleteTrip_OtherOwner(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	svc, _ := newTripService(store, distance.Result{Km: 3})
	out, _ := svc.CreateTrip(context.Background(), CreateTripInput{OwnerID: "alice", StartAddress: "A", EndAddress: "B"})

	if err := svc.DeleteTrip(context.Background(), out.Trip.ID, "bob"); !errors.Is(err, ErrTripNotFound) {
		t.Errorf("err = %v, want ErrTripNotFound", err)
	}
	if len(store.trips) != 1 {
		t.Error("foreign delete removed the trip")
	}
	if err := svc.DeleteTrip(context.Background(), out.Trip.ID, "alice"); err != nil {
		t.Errorf("DeleteTrip: %v", err)
	}
}

func seedTrips(t *testing.T, store *memStore, owner string, dates ...string) {
	t.Helper()
	for i, d := range dates {
		date, err := model.ParseDate(d)
		if err != nil {
			t.Fatal(err)
		}
		id := owner + d + string(rune('a'+i))
		store.trips[id] = &model.Trip{ID: id, OwnerID: owner, Date: date, StartAddress: "A", EndAddress: "B", Km: 10}
	}
}

func TestReport_Periods(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	seedTrips(t, store, "u1", "2024-01-15", "2024-02-01", "2024-02-29", "2024-03-01")
	seedTrips(t, store, "u2", "2024-02-10")
	svc, _ := newTripService(store, distance.Result{})

	tests := []struct {
		name  string
		input ReportInput
		count int
		total float64
	}{
		{"all", ReportInput{OwnerID: "u1"}, 4, 40},
		{"this month", ReportInput{OwnerID: "u1", Period: "this-month"}, 2, 20},
		{"custom january", ReportInput{OwnerID: "u1", Period: "custom", From: "2024-01-01", To: "2024-01-31"}, 1, 10},
		{"custom missing bound", ReportInput{OwnerID: "u1", Period: "custom", From: "2024-01-01"}, 0, 0},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			sum, err := svc.Report(context.Background(), tt.input)
			if err != nil {
				t.Fatalf("Report: %v", err)
			}
			if sum.Count != tt.count || sum.TotalKm != tt.total {
				t.Errorf("count/total = %d/%v, want %d/%v", sum.Count, sum.TotalKm, tt.count, tt.total)
			}
		})
	}
}

func TestReport_InvalidInput(t *testing.T) {
	t.Parallel()

	svc, _ := newTripService(newMemStore(), distance.Result{})

	for _, in := range []ReportInput{
		{Period: "last-year"},
		{Period: "custom", From: "01/01/2024", To: "2024-01-31"},
	} {
		if _, err := svc.Report(context.Background(), in); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("Report(%+v) err = %v", in, err)
		}
	}
}

func TestExportCSV(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	seedTrips(t, store, "u1", "2024-02-05")
	svc, rec := newTripService(store, distance.Result{})

	out, err := svc.ExportCSV(context.Background(), ReportInput{OwnerID: "u1", Period: "this-month"})
	if err != nil {
		t.Fatalf("ExportCSV: %v", err)
	}
	if out.Filename != "km-report-2024-02-20.csv" || out.Count != 1 {
		t.Errorf("out = %+v", out)
	}
	if !strings.HasPrefix(string(out.Data), `"Date","Start Address"`) {
		t.Errorf("data = %q", out.Data)
	}
	if rec.Snapshot().ExportsCSV != 1 {
		t.Error("export not counted")
	}

	_, err = svc.ExportCSV(context.Background(), ReportInput{OwnerID: "nobody"})
	if !errors.Is(err, export.ErrNoTrips) {
		t.Errorf("empty export err = %v, want ErrNoTrips", err)
	}
}
